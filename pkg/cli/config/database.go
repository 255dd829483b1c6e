package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/interfaces"
	"github.com/m-kurita/promptreg/pkg/repository/database/firestore"
	"github.com/m-kurita/promptreg/pkg/repository/database/memory"
	"github.com/m-kurita/promptreg/pkg/repository/database/sqlite"
	"github.com/urfave/cli/v3"
)

// Database selects and configures the registry's backing store
type Database struct {
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Flags returns CLI flags for database configuration
func (d *Database) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db-backend",
			Category:    "database",
			Usage:       "Storage backend [memory|sqlite|firestore]",
			Sources:     cli.EnvVars("PROMPTREG_DB_BACKEND"),
			Value:       "memory",
			Destination: &d.Backend,
		},
		&cli.StringFlag{
			Name:        "db-sqlite-path",
			Category:    "database",
			Usage:       "SQLite database file path (sqlite backend only)",
			Sources:     cli.EnvVars("PROMPTREG_DB_SQLITE_PATH"),
			Value:       "promptreg.db",
			Destination: &d.SQLitePath,
		},
	}
}

// LogValue returns the database configuration as a slog.Value for logging
func (d Database) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", d.Backend),
		slog.String("sqlite_path", d.SQLitePath),
	)
}

// Configure builds the repository for the selected backend. The returned
// closer releases backend resources and is a no-op for the memory backend.
func (d *Database) Configure(ctx context.Context, fsCfg *Firestore) (interfaces.PromptRepository, func(), error) {
	switch d.Backend {
	case "memory":
		return memory.New(), func() {}, nil

	case "sqlite":
		if d.SQLitePath == "" {
			return nil, nil, goerr.New("sqlite backend requires a database path")
		}
		client, err := sqlite.New(ctx, d.SQLitePath)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to open sqlite database")
		}
		return client, func() { _ = client.Close() }, nil

	case "firestore":
		if !fsCfg.IsValid() {
			return nil, nil, goerr.New("firestore backend requires a project ID",
				goerr.V("project_id", fsCfg.ProjectID))
		}
		client, err := firestore.New(ctx, fsCfg.ProjectID, fsCfg.DatabaseID)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create firestore client")
		}
		return client, func() { _ = client.Close() }, nil

	default:
		return nil, nil, goerr.New("unknown database backend",
			goerr.V("backend", d.Backend),
			goerr.V("valid_backends", []string{"memory", "sqlite", "firestore"}))
	}
}
