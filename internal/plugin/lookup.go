package plugin

import (
	"fmt"
	"iter"

	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
)

// Choice 선택 필드용 항목 (이름이 있는 활성 플러그인)
type Choice struct {
	PluginID int64  `json:"plugin_id"`
	Name     string `json:"name"`
	Title    string `json:"title"`
}

// requirePoint 포인트 전용 연산 인자 검사
func (m *Manager) requirePoint(v interface{}, op string) (string, error) {
	id := identityArg(v)
	if _, isPlugin := m.registry.Plugin(id); isPlugin {
		return "", fmt.Errorf("%w: %s called on plugin %s, expected a plugin point", domain.ErrUsage, op, id)
	}
	return id, nil
}

// requirePlugin 플러그인 전용 연산 인자 검사
func (m *Manager) requirePlugin(v interface{}, op string) (string, error) {
	id := identityArg(v)
	if _, isPoint := m.registry.Point(id); isPoint {
		return "", fmt.Errorf("%w: %s called on plugin point %s, expected a plugin", domain.ErrUsage, op, id)
	}
	return id, nil
}

// identityArg 문자열은 식별자 그대로, 그 외에는 타입 식별자
func identityArg(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return IdentityOf(v)
}

// PointRecord 포인트의 DB 레코드 조회
func (m *Manager) PointRecord(point interface{}) (*domain.PluginPoint, error) {
	id, err := m.requirePoint(point, "PointRecord")
	if err != nil {
		return nil, err
	}
	return m.store.FindPoint(id)
}

// PluginRecord 플러그인의 DB 레코드 조회
func (m *Manager) PluginRecord(plugin interface{}) (*domain.Plugin, error) {
	id, err := m.requirePlugin(plugin, "PluginRecord")
	if err != nil {
		return nil, err
	}
	return m.store.FindPlugin(domain.PluginFilter{ImportString: id})
}

// PluginByName 포인트에 속한 name 플러그인 레코드 조회 (status 가 nil 이면 상태 무관)
func (m *Manager) PluginByName(point interface{}, name string, status *domain.Status) (*domain.Plugin, error) {
	id, err := m.requirePoint(point, "PluginByName")
	if err != nil {
		return nil, err
	}
	return m.store.FindPlugin(domain.PluginFilter{
		PointImportString: id,
		Name:              &name,
		Status:            status,
	})
}

// PointOf 플러그인이 선언된 포인트
func (m *Manager) PointOf(plugin interface{}) (*PointDescriptor, error) {
	id, err := m.requirePlugin(plugin, "PointOf")
	if err != nil {
		return nil, err
	}
	desc, ok := m.registry.Plugin(id)
	if !ok {
		return nil, fmt.Errorf("%w: plugin %s is not registered", domain.ErrNotFound, id)
	}
	point, ok := m.registry.Point(desc.Point)
	if !ok {
		return nil, fmt.Errorf("%w: plugin point %s is not registered", domain.ErrNotFound, desc.Point)
	}
	return point, nil
}

// PointRecordOf 플러그인이 속한 포인트의 DB 레코드
func (m *Manager) PointRecordOf(plugin interface{}) (*domain.PluginPoint, error) {
	rec, err := m.PluginRecord(plugin)
	if err != nil {
		return nil, err
	}
	return m.store.FindPointByID(rec.PointID)
}

// Instantiate 레코드의 식별자로 플러그인 인스턴스 생성
func (m *Manager) Instantiate(rec *domain.Plugin) (interface{}, error) {
	factory, ok := m.registry.Factory(rec.ImportString)
	if !ok {
		return nil, fmt.Errorf("%w: no factory registered for %s", domain.ErrUnresolvable, rec.ImportString)
	}
	return factory(), nil
}

// GetPlugin 포인트의 name 플러그인 인스턴스
func (m *Manager) GetPlugin(point interface{}, name string, status *domain.Status) (interface{}, error) {
	rec, err := m.PluginByName(point, name, status)
	if err != nil {
		return nil, err
	}
	return m.Instantiate(rec)
}

// IsActive 플러그인 활성화 여부
func (m *Manager) IsActive(plugin interface{}) (bool, error) {
	rec, err := m.PluginRecord(plugin)
	if err != nil {
		return false, err
	}
	return rec.IsActive(), nil
}

// PluginName 플러그인 레코드의 이름
func (m *Manager) PluginName(plugin interface{}) (string, error) {
	rec, err := m.PluginRecord(plugin)
	if err != nil {
		return "", err
	}
	return rec.NameOrEmpty(), nil
}

// PluginTitle 플러그인 레코드의 제목
func (m *Manager) PluginTitle(plugin interface{}) (string, error) {
	rec, err := m.PluginRecord(plugin)
	if err != nil {
		return "", err
	}
	return rec.Title, nil
}

// PluginModels status 상태인 포인트의 플러그인 레코드 (index, id 순)
// 순회할 때마다 다시 조회한다. 플러그인 테이블이 없으면 비어 있다.
func (m *Manager) PluginModels(point interface{}, status domain.Status) iter.Seq2[*domain.Plugin, error] {
	return func(yield func(*domain.Plugin, error) bool) {
		id, err := m.requirePoint(point, "PluginModels")
		if err != nil {
			yield(nil, err)
			return
		}
		if _, hasPlugins := m.store.HasTables(); !hasPlugins {
			return
		}

		list, err := m.store.ListPlugins(domain.PluginFilter{
			PointImportString: id,
			Status:            &status,
		})
		if err != nil {
			yield(nil, err)
			return
		}
		for i := range list {
			if !yield(&list[i], nil) {
				return
			}
		}
	}
}

// Plugins status 상태인 포인트의 플러그인 인스턴스 (순회 시 생성)
func (m *Manager) Plugins(point interface{}, status domain.Status) iter.Seq2[interface{}, error] {
	return func(yield func(interface{}, error) bool) {
		for rec, err := range m.PluginModels(point, status) {
			if err != nil {
				yield(nil, err)
				return
			}
			instance, err := m.Instantiate(rec)
			if !yield(instance, err) {
				return
			}
		}
	}
}

// ActivePlugins 활성화된 플러그인 인스턴스
func (m *Manager) ActivePlugins(point interface{}) iter.Seq2[interface{}, error] {
	return m.Plugins(point, domain.StatusEnabled)
}

// Choices 이름이 있는 활성 플러그인 목록
func (m *Manager) Choices(point interface{}) ([]Choice, error) {
	id, err := m.requirePoint(point, "Choices")
	if err != nil {
		return nil, err
	}
	if _, hasPlugins := m.store.HasTables(); !hasPlugins {
		return nil, nil
	}

	list, err := m.store.ListPlugins(domain.PluginFilter{
		PointImportString: id,
		Status:            domain.StatusEnabled.Filter(),
		NamedOnly:         true,
	})
	if err != nil {
		return nil, err
	}
	choices := make([]Choice, 0, len(list))
	for _, rec := range list {
		choices = append(choices, Choice{PluginID: rec.ID, Name: rec.NameOrEmpty(), Title: rec.String()})
	}
	return choices, nil
}
