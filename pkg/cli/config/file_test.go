package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-kurita/promptreg/pkg/cli/config"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := `
addr: "0.0.0.0:9090"
database:
  backend: sqlite
  sqlite_path: /tmp/registry.db
firestore:
  project_id: my-project
`
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600))

	f, err := config.LoadFile(path)
	gt.NoError(t, err)
	gt.Equal(t, f.Addr, "0.0.0.0:9090")
	gt.Equal(t, f.Database.Backend, "sqlite")
	gt.Equal(t, f.Database.SQLitePath, "/tmp/registry.db")
	gt.Equal(t, f.Firestore.ProjectID, "my-project")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "no-such.yml"))
	gt.Error(t, err)
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	gt.NoError(t, os.WriteFile(path, []byte("addr: [unclosed"), 0600))

	_, err := config.LoadFile(path)
	gt.Error(t, err)
}

func TestDatabaseConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := &config.Database{Backend: "memory"}
		repo, closer, err := cfg.Configure(ctx, &config.Firestore{})
		gt.NoError(t, err)
		gt.V(t, repo).NotNil()
		closer()
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.Database{
			Backend:    "sqlite",
			SQLitePath: filepath.Join(t.TempDir(), "test.db"),
		}
		repo, closer, err := cfg.Configure(ctx, &config.Firestore{})
		gt.NoError(t, err)
		gt.V(t, repo).NotNil()
		closer()
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := &config.Database{Backend: "cassandra"}
		_, _, err := cfg.Configure(ctx, &config.Firestore{})
		gt.Error(t, err)
	})

	t.Run("firestore without project", func(t *testing.T) {
		cfg := &config.Database{Backend: "firestore"}
		_, _, err := cfg.Configure(ctx, &config.Firestore{})
		gt.Error(t, err)
	})
}
