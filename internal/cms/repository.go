package cms

import (
	"errors"
	"fmt"

	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
	"gorm.io/gorm"
)

// ContentRepository 콘텐츠 저장소
type ContentRepository struct {
	db *gorm.DB
}

// NewContentRepository 생성자
func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// AutoMigrate 콘텐츠 테이블 생성 (plugins 테이블이 먼저 있어야 함)
func (r *ContentRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&Content{})
}

// ListByPlugin 플러그인의 콘텐츠 목록 (최신순)
func (r *ContentRepository) ListByPlugin(pluginID int64, offset, limit int) ([]Content, int64, error) {
	var total int64
	q := r.db.Model(&Content{}).Where("plugin_id = ?", pluginID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []Content
	err := r.db.Where("plugin_id = ?", pluginID).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}

// FindByID 플러그인에 속한 콘텐츠 조회
func (r *ContentRepository) FindByID(pluginID, id int64) (*Content, error) {
	var c Content
	err := r.db.Where("id = ? AND plugin_id = ?", id, pluginID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: content %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create 콘텐츠 생성
func (r *ContentRepository) Create(c *Content) error {
	return r.db.Create(c).Error
}
