package plugin

import (
	"time"

	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
)

// SavePoint 포인트 레코드 저장
func (m *Manager) SavePoint(rec *domain.PluginPoint) error {
	return m.store.SavePoint(rec)
}

// SavePlugin 플러그인 레코드 저장
// 기존 레코드의 상태가 바뀐 경우에만 저장 후 enabled/disabled 이벤트를 보낸다.
func (m *Manager) SavePlugin(rec *domain.Plugin) error {
	changed := rec.StatusChanged()
	if err := m.store.SavePlugin(rec); err != nil {
		return err
	}
	if changed {
		m.emitStatusChange(rec)
	}
	return nil
}

// SetPluginStatus 상태 변경 후 저장
func (m *Manager) SetPluginStatus(rec *domain.Plugin, status domain.Status) error {
	rec.Status = status
	return m.SavePlugin(rec)
}

func (m *Manager) emitStatusChange(rec *domain.Plugin) {
	if m.emitter == nil {
		return
	}

	topic := TopicPluginDisabled
	if rec.Status == domain.StatusEnabled {
		topic = TopicPluginEnabled
	}

	instance, err := m.Instantiate(rec)
	if err != nil {
		m.logger.Warn("Plugin %s has no registered factory, emitting %s without instance", rec.ImportString, topic)
	}

	m.emitter.Emit(Event{
		Topic:     topic,
		Plugin:    rec,
		Instance:  instance,
		Timestamp: time.Now(),
	})
}
