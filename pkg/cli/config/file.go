package config

import (
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// File is the YAML configuration file for the serve command. Explicit CLI
// flags take precedence over values loaded from the file.
type File struct {
	Addr      string    `yaml:"addr"`
	Database  Database  `yaml:"database"`
	Firestore Firestore `yaml:"firestore"`
}

// LoadFile reads and parses a YAML configuration file
func LoadFile(path string) (*File, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file",
			goerr.V("path", path))
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file",
			goerr.V("path", path))
	}

	return &f, nil
}
