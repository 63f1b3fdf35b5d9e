package service

import (
	"fmt"
	"io"

	"github.com/damoang/angple-plugins/internal/plugin"
	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
)

// PluginService 관리자용 플러그인 관리 서비스
type PluginService struct {
	manager *plugin.Manager
	module  string
}

// NewPluginService 생성자 (module 은 수동 동기화 시 읽을 선언 모듈)
func NewPluginService(manager *plugin.Manager, module string) *PluginService {
	return &PluginService{
		manager: manager,
		module:  module,
	}
}

// UpdatePluginInput 관리자가 변경할 수 있는 필드 (nil 은 변경 안 함)
// Name 은 선언에서 동기화되므로 변경 대상이 아니다.
type UpdatePluginInput struct {
	Status *string `json:"status" binding:"omitempty,oneof=enabled disabled"`
	Index  *int    `json:"index" binding:"omitempty,min=0"`
	Title  *string `json:"title" binding:"omitempty,max=255"`
}

// ListPoints 포인트 목록 (status 가 nil 이면 전체)
func (s *PluginService) ListPoints(status *domain.Status) ([]domain.PluginPoint, error) {
	points, err := s.manager.GetStore().ListPoints()
	if err != nil {
		return nil, err
	}
	if status == nil {
		return points, nil
	}
	filtered := points[:0]
	for _, p := range points {
		if p.Status == *status {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// GetPoint 포인트 조회
func (s *PluginService) GetPoint(id int64) (*domain.PluginPoint, error) {
	return s.manager.GetStore().FindPointByID(id)
}

// ListPlugins 플러그인 목록 (index, id 순)
func (s *PluginService) ListPlugins(f domain.PluginFilter) ([]domain.Plugin, int64, error) {
	store := s.manager.GetStore()
	list, err := store.ListPlugins(f)
	if err != nil {
		return nil, 0, err
	}
	total, err := store.CountPlugins(f)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// GetPlugin 플러그인 조회
func (s *PluginService) GetPlugin(id int64) (*domain.Plugin, error) {
	return s.manager.GetStore().FindPluginByID(id)
}

// UpdatePlugin 상태/순서/제목 변경
// 상태가 바뀌면 enabled/disabled 이벤트가 발생한다.
func (s *PluginService) UpdatePlugin(id int64, in UpdatePluginInput) (*domain.Plugin, error) {
	rec, err := s.manager.GetStore().FindPluginByID(id)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		status, err := domain.ParseStatus(*in.Status)
		if err != nil || status == domain.StatusRemoved {
			return nil, fmt.Errorf("%w: status must be enabled or disabled", domain.ErrInvalidInput)
		}
		if rec.Status == domain.StatusRemoved {
			return nil, fmt.Errorf("%w: plugin %s is removed from code", domain.ErrInvalidInput, rec.ImportString)
		}
		rec.Status = status
	}
	if in.Index != nil {
		if *in.Index < 0 {
			return nil, fmt.Errorf("%w: index must not be negative", domain.ErrInvalidInput)
		}
		rec.Index = *in.Index
	}
	if in.Title != nil {
		rec.Title = *in.Title
	}

	if err := s.manager.SavePlugin(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Sync 수동 동기화
func (s *PluginService) Sync(deleteRemoved bool, out io.Writer) (*plugin.SyncResult, error) {
	return s.manager.Sync(plugin.SyncOptions{
		Module:        s.module,
		DeleteRemoved: deleteRemoved,
		Verbosity:     1,
		Out:           out,
	})
}
