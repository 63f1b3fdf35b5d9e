package plugin

import "github.com/damoang/angple-plugins/internal/pluginstore/domain"

// Store 포인트/플러그인 레코드 저장소
// 조회 결과가 없으면 domain.ErrNotFound 를 감싼 에러를 반환해야 한다.
type Store interface {
	HasTables() (points bool, plugins bool)

	ListPoints() ([]domain.PluginPoint, error)
	FindPoint(importString string) (*domain.PluginPoint, error)
	FindPointByID(id int64) (*domain.PluginPoint, error)
	SavePoint(p *domain.PluginPoint) error
	CountPoints(status *domain.Status) (int64, error)

	ListPlugins(f domain.PluginFilter) ([]domain.Plugin, error)
	FindPlugin(f domain.PluginFilter) (*domain.Plugin, error)
	FindPluginByID(id int64) (*domain.Plugin, error)
	SavePlugin(p *domain.Plugin) error
	CountPlugins(f domain.PluginFilter) (int64, error)

	DeleteRemovedPlugins() (int64, error)
	DeleteRemovedPoints() (int64, error)
}
