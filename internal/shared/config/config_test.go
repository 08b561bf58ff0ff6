package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGeneration(t *testing.T) {
	generation := DefaultGeneration()

	assert.Equal(t, 10, generation.Fanout)
	assert.Equal(t, 10.0, generation.Threshold)
	assert.Equal(t, 4.0, generation.LinksPerStar)
	assert.NotEmpty(t, generation.StarNames)
	require.NoError(t, generation.Validate())
}

func TestGenerationValidate(t *testing.T) {
	generation := DefaultGeneration()
	generation.Fanout = 1
	assert.Error(t, generation.Validate())

	generation = DefaultGeneration()
	generation.Threshold = 0
	assert.Error(t, generation.Validate())

	generation = DefaultGeneration()
	generation.StarNames = nil
	assert.Error(t, generation.Validate())
}

func TestLoadGenerationProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	content := "fanout = 8\nlinks_per_star = 2.5\nstar_names = [\"Vega\", \"Deneb\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	generation, err := LoadGenerationProfile(path, DefaultGeneration())
	require.NoError(t, err)

	assert.Equal(t, 8, generation.Fanout)
	assert.Equal(t, 10.0, generation.Threshold, "threshold keeps its base value when absent")
	assert.Equal(t, 2.5, generation.LinksPerStar)
	assert.Equal(t, []string{"Vega", "Deneb"}, generation.StarNames)
	assert.Equal(t, path, generation.ProfilePath)
}

func TestLoadGenerationProfileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	require.NoError(t, os.WriteFile(path, []byte("fanuot = 3\n"), 0o600))

	_, err := LoadGenerationProfile(path, DefaultGeneration())
	assert.Error(t, err)
}

func TestValidateDriver(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())

	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.validate())

	cfg = Default()
	cfg.Auth.JWTSecret = "short"
	assert.Error(t, cfg.validate())
}

func TestConnectionString(t *testing.T) {
	cfg := Default()
	cfg.Database.SQLitePath = "/tmp/g.db"
	assert.Contains(t, cfg.ConnectionString(), "file:/tmp/g.db?")
	assert.Contains(t, cfg.ConnectionString(), "foreign_keys(1)")

	cfg.Database.Driver = DriverPostgres
	cfg.Database.Host = "db"
	cfg.Database.Name = "galaxy"
	assert.Contains(t, cfg.ConnectionString(), "host=db")
	assert.Contains(t, cfg.ConnectionString(), "dbname=galaxy")
}
