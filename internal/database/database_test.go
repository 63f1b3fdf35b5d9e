package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/damoang/angple-plugins/internal/config"
	"github.com/damoang/angple-plugins/internal/pluginstore/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

type failingMigrator struct{ calls *int }

func (f failingMigrator) AutoMigrate() error {
	*f.calls++
	return errors.New("boom")
}

func TestOpenSQLite(t *testing.T) {
	cfg := config.Default().Database
	cfg.Path = filepath.Join(t.TempDir(), "plugins.db")
	cfg.LogLevel = "silent"

	db, err := Open(cfg)
	require.NoError(t, err)

	repo := repository.NewPluginRepository(db)
	require.NoError(t, Migrate(repo))
	points, plugins := repo.HasTables()
	assert.True(t, points)
	assert.True(t, plugins)

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestMigrateStopsOnError(t *testing.T) {
	calls := 0
	err := Migrate(failingMigrator{&calls}, failingMigrator{&calls})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, LogLevel("silent"))
	assert.Equal(t, gormlogger.Info, LogLevel("INFO"))
	assert.Equal(t, gormlogger.Warn, LogLevel(""))
	assert.Equal(t, "x.db?_foreign_keys=on", sqliteDSN("x.db"))
	assert.Equal(t, "x.db?cache=shared&_foreign_keys=on", sqliteDSN("x.db?cache=shared"))
}
