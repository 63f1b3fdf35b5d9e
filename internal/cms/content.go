package cms

import (
	"time"

	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
)

// Content 콘텐츠 종류 플러그인에 속한 글
type Content struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Body      string         `gorm:"type:text" json:"content"`
	PluginID  int64          `gorm:"not null;index" json:"plugin_id"`
	Plugin    *domain.Plugin `gorm:"foreignKey:PluginID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName GORM 테이블명
func (Content) TableName() string {
	return "cms_contents"
}
