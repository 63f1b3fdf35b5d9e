package plugin

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
)

// SyncOptions 동기화 옵션
type SyncOptions struct {
	Module        string    // 선언을 읽어올 모듈 (빈 값이면 Load 생략)
	DeleteRemoved bool      // Removed 레코드 영구 삭제
	Verbosity     int       // 1 이상이면 Out 으로 진행 메시지 출력
	Out           io.Writer // 진행 메시지 출력 대상
}

// SyncStats 레코드 종류별 동기화 통계
type SyncStats struct {
	Created     int `json:"created"`
	Reactivated int `json:"reactivated"`
	Updated     int `json:"updated"`
	Removed     int `json:"removed"`
	Deleted     int `json:"deleted"`
}

// SyncResult 동기화 결과
type SyncResult struct {
	Points  SyncStats `json:"points"`
	Plugins SyncStats `json:"plugins"`
	Skipped bool      `json:"skipped"` // 테이블이 없어 아무것도 하지 않음
}

// Sync 레지스트리 선언을 DB 레코드에 반영
//
// 여러 번 실행해도 결과가 같다. 저장소 에러가 나면 그 자리에서 중단하고,
// 다시 실행하면 같은 상태로 수렴한다.
func (m *Manager) Sync(opts SyncOptions) (*SyncResult, error) {
	if opts.Module != "" {
		if n := m.registry.Load(opts.Module); n > 0 {
			m.logger.Debug("Loaded %d plugin declarations from module %s", n, opts.Module)
		}
	}

	result := &SyncResult{}
	if hasPoints, hasPlugins := m.store.HasTables(); !hasPoints || !hasPlugins {
		m.logger.Warn("Plugin tables are missing, skipping synchronization")
		result.Skipped = true
		m.metrics.observe(result, nil, 0)
		return result, nil
	}

	start := time.Now()
	s := &syncer{m: m, opts: opts, result: result}
	err := s.points()
	m.metrics.observe(result, err, time.Since(start))
	if err != nil {
		return result, err
	}

	m.logger.Info("Plugins synchronized: points %+v, plugins %+v", result.Points, result.Plugins)
	return result, nil
}

type syncer struct {
	m      *Manager
	opts   SyncOptions
	result *SyncResult
}

func (s *syncer) print(format string, args ...interface{}) {
	if s.opts.Verbosity >= 1 && s.opts.Out != nil {
		fmt.Fprintf(s.opts.Out, format+"\n", args...)
	}
}

func (s *syncer) points() error {
	store := s.m.store

	records, err := store.ListPoints()
	if err != nil {
		return err
	}
	dst := make(map[string]*domain.PluginPoint, len(records))
	for i := range records {
		dst[records[i].ImportString] = &records[i]
	}

	for point := range s.m.registry.Points() {
		rec, err := s.availablePoint(point, dst)
		if err != nil {
			return err
		}
		if err := s.plugins(point, rec); err != nil {
			return err
		}
	}

	if err := s.missingPoints(dst); err != nil {
		return err
	}

	if s.opts.DeleteRemoved {
		return s.deleteRemoved()
	}
	return nil
}

func (s *syncer) availablePoint(point *PointDescriptor, dst map[string]*domain.PluginPoint) (*domain.PluginPoint, error) {
	stats := &s.result.Points

	rec, ok := dst[point.Identity]
	delete(dst, point.Identity)
	if !ok {
		found, err := s.m.store.FindPoint(point.Identity)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		rec = found
	}

	dirty := false
	if rec == nil {
		s.print("Registering PluginPoint for %s", point.Identity)
		rec = &domain.PluginPoint{ImportString: point.Identity, Status: domain.StatusEnabled}
		stats.Created++
		dirty = true
	} else if rec.Status == domain.StatusRemoved {
		s.print("Updating PluginPoint for %s", point.Identity)
		rec.Status = domain.StatusEnabled
		stats.Reactivated++
		dirty = true
	}

	title := point.Title
	if title == "" {
		title = shortName(point.Identity)
	}
	if rec.Title != title {
		rec.Title = title
		if !dirty {
			stats.Updated++
		}
		dirty = true
	}

	if dirty {
		if err := s.m.SavePoint(rec); err != nil {
			return nil, fmt.Errorf("save plugin point %s: %w", point.Identity, err)
		}
	}
	return rec, nil
}

func (s *syncer) plugins(point *PointDescriptor, pointRec *domain.PluginPoint) error {
	records, err := s.m.store.ListPlugins(domain.PluginFilter{PointID: pointRec.ID})
	if err != nil {
		return err
	}
	dst := make(map[string]*domain.Plugin, len(records))
	for i := range records {
		dst[records[i].ImportString] = &records[i]
	}

	for desc := range s.m.registry.Plugins(point.Identity) {
		if err := s.availablePlugin(desc, pointRec, dst); err != nil {
			return err
		}
	}

	return s.missingPlugins(dst)
}

func (s *syncer) availablePlugin(desc *PluginDescriptor, pointRec *domain.PluginPoint, dst map[string]*domain.Plugin) error {
	stats := &s.result.Plugins

	rec, ok := dst[desc.Identity]
	delete(dst, desc.Identity)
	if !ok {
		// 다른 포인트 소속 레코드도 찾아 옮긴다. 앞선 포인트 처리에서 이미 Removed 가 된
		// 레코드라면 재활성화로 집계된다.
		found, err := s.m.store.FindPlugin(domain.PluginFilter{ImportString: desc.Identity})
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		rec = found
	}

	dirty := false
	if rec == nil {
		s.print("Registering Plugin for %s", desc.Identity)
		rec = &domain.Plugin{
			PointID:      pointRec.ID,
			ImportString: desc.Identity,
			Status:       domain.StatusEnabled,
		}
		stats.Created++
		dirty = true
	} else if rec.Status == domain.StatusRemoved {
		s.print("Updating Plugin for %s", desc.Identity)
		rec.Status = domain.StatusEnabled
		stats.Reactivated++
		dirty = true
	}

	changed := false
	if rec.PointID != pointRec.ID {
		rec.PointID = pointRec.ID
		changed = true
	}
	var name *string
	if desc.Name != "" {
		n := desc.Name
		name = &n
	}
	if rec.NameOrEmpty() != desc.Name || (rec.Name == nil) != (name == nil) {
		rec.Name = name
		changed = true
	}
	if desc.Title != "" && rec.Title != desc.Title {
		rec.Title = desc.Title
		changed = true
	}
	if changed {
		if !dirty {
			stats.Updated++
		}
		dirty = true
	}

	if dirty {
		if err := s.m.SavePlugin(rec); err != nil {
			return fmt.Errorf("save plugin %s: %w", desc.Identity, err)
		}
	}
	return nil
}

func (s *syncer) missingPoints(dst map[string]*domain.PluginPoint) error {
	for _, rec := range orderedPoints(dst) {
		if rec.Status == domain.StatusRemoved {
			continue
		}
		rec.Status = domain.StatusRemoved
		if err := s.m.SavePoint(rec); err != nil {
			return fmt.Errorf("remove plugin point %s: %w", rec.ImportString, err)
		}
		s.result.Points.Removed++
	}
	return nil
}

func (s *syncer) missingPlugins(dst map[string]*domain.Plugin) error {
	for _, rec := range orderedPlugins(dst) {
		if rec.Status == domain.StatusRemoved {
			continue
		}
		rec.Status = domain.StatusRemoved
		if err := s.m.SavePlugin(rec); err != nil {
			return fmt.Errorf("remove plugin %s: %w", rec.ImportString, err)
		}
		s.result.Plugins.Removed++
	}
	return nil
}

func (s *syncer) deleteRemoved() error {
	n, err := s.m.store.DeleteRemovedPlugins()
	if err != nil {
		return err
	}
	if n > 0 {
		s.print("Deleting %d Removed Plugins", n)
	}
	s.result.Plugins.Deleted += int(n)

	n, err = s.m.store.DeleteRemovedPoints()
	if err != nil {
		return err
	}
	if n > 0 {
		s.print("Deleting %d Removed PluginPoints", n)
	}
	s.result.Points.Deleted += int(n)
	return nil
}

// 남은 레코드는 ID 순으로 처리
func orderedPoints(m map[string]*domain.PluginPoint) []*domain.PluginPoint {
	list := make([]*domain.PluginPoint, 0, len(m))
	for _, rec := range m {
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func orderedPlugins(m map[string]*domain.Plugin) []*domain.Plugin {
	list := make([]*domain.Plugin, 0, len(m))
	for _, rec := range m {
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
