package plugin

import (
	"strings"

	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
	"github.com/gin-gonic/gin"
)

// DefaultMountPattern 플러그인 라우트 기본 경로 ({plugin} 은 플러그인 이름)
const DefaultMountPattern = "/{plugin}/"

// ContextKeyPlugin 마운트된 핸들러 컨텍스트의 플러그인 이름 키
const ContextKeyPlugin = "plugin"

// RouteProvider 자체 라우트를 가진 플러그인
type RouteProvider interface {
	RegisterRoutes(router gin.IRouter)
}

// MountedPlugin 마운트 결과
type MountedPlugin struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Mount 포인트의 활성 플러그인 중 이름이 있고 RouteProvider 를 구현한 것을
// pattern 경로 아래에 마운트한다. 핸들러에서는 c.GetString("plugin") 으로 이름을 얻는다.
//
// Gin 라우트는 한 번 등록하면 제거할 수 없으므로 시작 시 한 번만 호출한다.
func Mount(router gin.IRouter, m *Manager, point interface{}, pattern string) ([]MountedPlugin, error) {
	var mounted []MountedPlugin
	for rec, err := range m.PluginModels(point, domain.StatusEnabled) {
		if err != nil {
			return mounted, err
		}
		if rec.Name == nil || *rec.Name == "" {
			continue
		}

		instance, err := m.Instantiate(rec)
		if err != nil {
			return mounted, err
		}
		provider, ok := instance.(RouteProvider)
		if !ok {
			continue
		}

		name := *rec.Name
		path := MountPath(pattern, name)
		group := router.Group(path)
		group.Use(func(c *gin.Context) {
			c.Set(ContextKeyPlugin, name)
			c.Next()
		})
		provider.RegisterRoutes(group)

		m.logger.Debug("Mounted plugin %s at %s", name, path)
		mounted = append(mounted, MountedPlugin{Name: name, Path: path})
	}

	if len(mounted) == 0 {
		m.logger.Debug("No routable plugins for %s", identityArg(point))
	}
	return mounted, nil
}

// MountPath 플러그인 이름에 대한 마운트 경로
func MountPath(pattern, name string) string {
	if pattern == "" {
		pattern = DefaultMountPattern
	}
	return "/" + strings.Trim(strings.ReplaceAll(pattern, "{plugin}", name), "/")
}
