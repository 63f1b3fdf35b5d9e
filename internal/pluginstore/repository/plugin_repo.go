package repository

import (
	"errors"
	"fmt"

	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PluginRepository 플러그인 포인트/플러그인 레코드 저장소
type PluginRepository struct {
	db *gorm.DB
}

// NewPluginRepository 생성자
func NewPluginRepository(db *gorm.DB) *PluginRepository {
	return &PluginRepository{db: db}
}

// AutoMigrate 테이블 생성/갱신
func (r *PluginRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.PluginPoint{}, &domain.Plugin{})
}

// HasTables 포인트/플러그인 테이블 존재 여부
func (r *PluginRepository) HasTables() (points bool, plugins bool) {
	m := r.db.Migrator()
	return m.HasTable(&domain.PluginPoint{}), m.HasTable(&domain.Plugin{})
}

// ListPoints 전체 포인트 조회
func (r *PluginRepository) ListPoints() ([]domain.PluginPoint, error) {
	var list []domain.PluginPoint
	if err := r.db.Order("id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list plugin points: %w", err)
	}
	return list, nil
}

// FindPoint import string 으로 포인트 조회
func (r *PluginRepository) FindPoint(importString string) (*domain.PluginPoint, error) {
	var p domain.PluginPoint
	err := r.db.Where("import_string = ?", importString).First(&p).Error
	if err != nil {
		return nil, notFound(err, "plugin point %s", importString)
	}
	return &p, nil
}

// FindPointByID ID로 포인트 조회
func (r *PluginRepository) FindPointByID(id int64) (*domain.PluginPoint, error) {
	var p domain.PluginPoint
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, notFound(err, "plugin point #%d", id)
	}
	return &p, nil
}

// SavePoint 포인트 저장 (ID가 없으면 생성)
func (r *PluginRepository) SavePoint(p *domain.PluginPoint) error {
	if err := r.db.Save(p).Error; err != nil {
		return fmt.Errorf("save plugin point %s: %w", p.ImportString, err)
	}
	return nil
}

// CountPoints 포인트 수 (status 가 nil 이면 전체)
func (r *PluginRepository) CountPoints(status *domain.Status) (int64, error) {
	var count int64
	q := r.db.Model(&domain.PluginPoint{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count plugin points: %w", err)
	}
	return count, nil
}

// ListPlugins 조건에 맞는 플러그인 조회 (index, id 오름차순)
func (r *PluginRepository) ListPlugins(f domain.PluginFilter) ([]domain.Plugin, error) {
	var list []domain.Plugin
	if err := r.filter(f).Order("sort_index ASC").Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list plugins: %w", err)
	}
	return list, nil
}

// FindPlugin 조건에 맞는 첫 번째 플러그인 조회
func (r *PluginRepository) FindPlugin(f domain.PluginFilter) (*domain.Plugin, error) {
	var p domain.Plugin
	err := r.filter(f).Order("id ASC").First(&p).Error
	if err != nil {
		return nil, notFound(err, "plugin %+v", f)
	}
	return &p, nil
}

// FindPluginByID ID로 플러그인 조회
func (r *PluginRepository) FindPluginByID(id int64) (*domain.Plugin, error) {
	var p domain.Plugin
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, notFound(err, "plugin #%d", id)
	}
	return &p, nil
}

// SavePlugin 플러그인 저장 (연관 포인트는 저장하지 않음)
func (r *PluginRepository) SavePlugin(p *domain.Plugin) error {
	if err := r.db.Omit(clause.Associations).Save(p).Error; err != nil {
		return fmt.Errorf("save plugin %s: %w", p.ImportString, err)
	}
	return nil
}

// CountPlugins 조건에 맞는 플러그인 수
func (r *PluginRepository) CountPlugins(f domain.PluginFilter) (int64, error) {
	var count int64
	if err := r.filter(f).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count plugins: %w", err)
	}
	return count, nil
}

// DeleteRemovedPlugins Removed 상태 플러그인 삭제
func (r *PluginRepository) DeleteRemovedPlugins() (int64, error) {
	res := r.db.Where("status = ?", domain.StatusRemoved).Delete(&domain.Plugin{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete removed plugins: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteRemovedPoints Removed 상태 포인트 삭제 (소속 플러그인 함께 삭제)
func (r *PluginRepository) DeleteRemovedPoints() (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		removed := tx.Model(&domain.PluginPoint{}).Select("id").Where("status = ?", domain.StatusRemoved)
		if err := tx.Where("point_id IN (?)", removed).Delete(&domain.Plugin{}).Error; err != nil {
			return err
		}
		res := tx.Where("status = ?", domain.StatusRemoved).Delete(&domain.PluginPoint{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete removed plugin points: %w", err)
	}
	return deleted, nil
}

// filter PluginFilter → 쿼리 조건
func (r *PluginRepository) filter(f domain.PluginFilter) *gorm.DB {
	q := r.db.Model(&domain.Plugin{})
	if f.PointID != 0 {
		q = q.Where("point_id = ?", f.PointID)
	}
	if f.PointImportString != "" {
		points := r.db.Model(&domain.PluginPoint{}).Select("id").Where("import_string = ?", f.PointImportString)
		q = q.Where("point_id IN (?)", points)
	}
	if f.ImportString != "" {
		q = q.Where("import_string = ?", f.ImportString)
	}
	if f.Name != nil {
		q = q.Where("name = ?", *f.Name)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.NamedOnly {
		q = q.Where("name IS NOT NULL")
	}
	return q
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, fmt.Sprintf(format, args...))
	}
	return fmt.Errorf("find %s: %w", fmt.Sprintf(format, args...), err)
}
