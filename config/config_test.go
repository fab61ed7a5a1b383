package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/travelpass/dashboard/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, k, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "travelpass-dashboard", cfg.Application)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, SourceSeed, cfg.Source)
	assert.Equal(t, "travelpass.db", cfg.SQLite.DSN)
	assert.True(t, cfg.SQLite.IfNotExists)
	assert.True(t, cfg.SQLite.CreateIndexes)
	assert.Equal(t, "travelpass", cfg.Mongo.Database)
	assert.False(t, cfg.Engine.StrictSums)
	assert.Equal(t, "info", k.String("logger.level"))
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: "debug"
source: "sqlite"
sqlite:
  dsn: ":memory:"
  table_prefix: "tp_"
engine:
  strict_sums: true
`)
	cfg, _, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, SourceSQLite, cfg.Source)
	assert.Equal(t, ":memory:", cfg.SQLite.DSN)
	assert.Equal(t, "tp_", cfg.SQLite.TablePrefix)
	assert.True(t, cfg.SQLite.IfNotExists, "untouched keys keep their defaults")
	assert.True(t, cfg.Engine.StrictSums)
	assert.Equal(t, "travelpass-dashboard", cfg.Application)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		fields []string
	}{
		{"valid", func(c *Config) {}, nil},
		{"no application", func(c *Config) { c.Application = "" }, []string{"application"}},
		{"no level", func(c *Config) { c.Logger.Level = "" }, []string{"logger.level"}},
		{"unknown source", func(c *Config) { c.Source = "redis" }, []string{"source"}},
		{"sqlite without dsn", func(c *Config) {
			c.Source = SourceSQLite
			c.SQLite.DSN = ""
		}, []string{"sqlite.dsn"}},
		{"mongo without uri or database", func(c *Config) {
			c.Source = SourceMongoDB
			c.Mongo = Mongo{}
		}, []string{"mongo.database", "mongo.uri"}},
		{"mongo settings ignored for seed", func(c *Config) { c.Mongo = Mongo{} }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var ve *errs.ValidationErrors
			require.ErrorAs(t, err, &ve)
			got := make([]string, 0, ve.Len())
			for f := range ve.Fields() {
				got = append(got, f)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}
