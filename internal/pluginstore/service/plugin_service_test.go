package service

import (
	"strings"
	"testing"

	"github.com/damoang/angple-plugins/internal/plugin"
	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
	"github.com/damoang/angple-plugins/internal/pluginstore/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type ServicePoint struct{}

type FirstPlugin struct{}

func (FirstPlugin) PluginName() string { return "first" }

type SecondPlugin struct{}

func setupService(t *testing.T) (*PluginService, *plugin.Manager) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := repository.NewPluginRepository(db)
	require.NoError(t, repo.AutoMigrate())

	registry := plugin.NewRegistry()
	registry.RegisterPlugin(ServicePoint{}, func() interface{} { return &FirstPlugin{} })
	registry.RegisterPlugin(ServicePoint{}, func() interface{} { return &SecondPlugin{} }, plugin.WithTitle("Second"))

	manager := plugin.NewManager(registry, repo)
	return NewPluginService(manager, ""), manager
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestPluginService_Sync(t *testing.T) {
	svc, _ := setupService(t)

	var out strings.Builder
	result, err := svc.Sync(false, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Points.Created)
	assert.Equal(t, 2, result.Plugins.Created)
	assert.Contains(t, out.String(), "Registering PluginPoint for")

	out.Reset()
	result, err = svc.Sync(false, &out)
	require.NoError(t, err)
	assert.Equal(t, plugin.SyncStats{}, result.Plugins)
	assert.Empty(t, out.String())
}

func TestPluginService_ListPoints(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.Sync(false, nil)
	require.NoError(t, err)

	all, err := svc.ListPoints(nil)
	require.NoError(t, err)
	require.Len(t, all, 1)

	removed, err := svc.ListPoints(domain.StatusRemoved.Filter())
	require.NoError(t, err)
	assert.Empty(t, removed)

	point, err := svc.GetPoint(all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "ServicePoint", point.Title)

	list, total, err := svc.ListPlugins(domain.PluginFilter{PointID: point.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.EqualValues(t, 2, total)
}

func TestPluginService_UpdatePlugin(t *testing.T) {
	svc, manager := setupService(t)
	_, err := svc.Sync(false, nil)
	require.NoError(t, err)

	rec, err := manager.PluginRecord(SecondPlugin{})
	require.NoError(t, err)

	updated, err := svc.UpdatePlugin(rec.ID, UpdatePluginInput{
		Status: strPtr("disabled"),
		Index:  intPtr(5),
		Title:  strPtr("Renamed"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDisabled, updated.Status)
	assert.Equal(t, 5, updated.Index)

	got, err := svc.GetPlugin(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, domain.StatusDisabled, got.Status)

	_, err = svc.UpdatePlugin(rec.ID, UpdatePluginInput{Status: strPtr("removed")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdatePlugin(rec.ID, UpdatePluginInput{Index: intPtr(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdatePlugin(9999, UpdatePluginInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPluginService_UpdateRemovedPlugin(t *testing.T) {
	svc, manager := setupService(t)
	_, err := svc.Sync(false, nil)
	require.NoError(t, err)

	rec, err := manager.PluginRecord(FirstPlugin{})
	require.NoError(t, err)
	require.NoError(t, manager.SetPluginStatus(rec, domain.StatusRemoved))

	_, err = svc.UpdatePlugin(rec.ID, UpdatePluginInput{Status: strPtr("enabled")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
