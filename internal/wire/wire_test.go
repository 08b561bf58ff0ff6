package wire_test

import (
	"context"
	"path/filepath"
	"testing"

	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMigratesAndGenerates(t *testing.T) {
	cfg := config.Default()
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "wire.db")

	app, err := wire.Open(cfg, true)
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Redis, "redis is disabled by default")

	report, err := app.Galaxy.Generate(context.Background(), 10, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, report.Systems)

	count, err := app.Systems.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}
