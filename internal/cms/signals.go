package cms

import (
	"context"

	"github.com/damoang/angple-plugins/internal/plugin"
	"github.com/damoang/angple-plugins/pkg/cache"
)

const subscriberName = "cms"

// Subscribe 콘텐츠 종류 활성/비활성 이벤트 구독
func (a *App) Subscribe(bus *plugin.EventBus) {
	bus.Subscribe(subscriberName, plugin.TopicPluginEnabled, a.onEnabled)
	bus.Subscribe(subscriberName, plugin.TopicPluginDisabled, a.onDisabled)
}

// Unsubscribe 구독 해제 (종료 시)
func (a *App) Unsubscribe(bus *plugin.EventBus) {
	bus.Unsubscribe(subscriberName)
}

func (a *App) onEnabled(e plugin.Event) {
	if !a.ownsEvent(e) {
		return
	}
	a.logger.Info("Content type %s enabled", e.Plugin.String())
}

// onDisabled 비활성화된 종류의 목록 캐시를 비운다
func (a *App) onDisabled(e plugin.Event) {
	if !a.ownsEvent(e) {
		return
	}
	a.logger.Info("Content type %s disabled (status %s)", e.Plugin.String(), e.Plugin.Status)

	name := e.Plugin.NameOrEmpty()
	if name == "" {
		return
	}
	if err := a.cache.DeletePrefix(context.Background(), cache.ContentsPrefix(name)); err != nil {
		a.logger.Warn("Content cache invalidation failed for %s: %v", name, err)
	}
}

func (a *App) ownsEvent(e plugin.Event) bool {
	if e.Plugin == nil {
		return false
	}
	point, err := a.manager.PointOf(e.Plugin.ImportString)
	return err == nil && point.Identity == plugin.IdentityOf(ContentType{})
}
