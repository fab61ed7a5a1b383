package config

import (
	"fmt"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"

	"github.com/travelpass/dashboard/core/query"
	errs "github.com/travelpass/dashboard/errors"
	"github.com/travelpass/dashboard/sqlite"
)

// Record sources the dashboard can read its snapshot from.
const (
	SourceSeed    = "seed"
	SourceSQLite  = "sqlite"
	SourceMongoDB = "mongodb"
)

var DefaultConfig = []byte(`
application: "travelpass-dashboard"

logger:
  level: "info"

source: "seed"

sqlite:
  dsn: "travelpass.db"
  table_prefix: ""
  if_not_exists: true
  create_indexes: true

mongo:
  uri: "mongodb://localhost:27017"
  database: "travelpass"

engine:
  strict_sums: false
`)

type Config struct {
	Application string              `koanf:"application"`
	Logger      Logger              `koanf:"logger"`
	Source      string              `koanf:"source"`
	SQLite      SQLite              `koanf:"sqlite"`
	Mongo       Mongo               `koanf:"mongo"`
	Engine      query.EngineOptions `koanf:"engine"`
}

type Logger struct {
	Level string `koanf:"level"`
}

type SQLite struct {
	DSN            string `koanf:"dsn"`
	sqlite.Options `koanf:",squash"`
}

type Mongo struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

// Load reads the embedded defaults and overlays the YAML file at path, if
// one is given.
func Load(path string) (*Config, *koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(DefaultConfig), yaml.Parser()); err != nil {
		return nil, nil, fmt.Errorf("failed to load default config: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, k, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	ve := errs.ValidationErrs()

	if c.Application == "" {
		ve.Add("application", "cannot be empty")
	}
	if c.Logger.Level == "" {
		ve.Add("logger.level", "cannot be empty")
	}

	switch c.Source {
	case SourceSeed:
	case SourceSQLite:
		if c.SQLite.DSN == "" {
			ve.Add("sqlite.dsn", "cannot be empty")
		}
	case SourceMongoDB:
		if c.Mongo.URI == "" {
			ve.Add("mongo.uri", "cannot be empty")
		}
		if c.Mongo.Database == "" {
			ve.Add("mongo.database", "cannot be empty")
		}
	default:
		ve.Add("source", fmt.Sprintf("must be one of %v", Sources()))
	}

	return ve.Err()
}

// Sources lists the accepted values of the source key.
func Sources() []string {
	return []string{SourceSeed, SourceSQLite, SourceMongoDB}
}
