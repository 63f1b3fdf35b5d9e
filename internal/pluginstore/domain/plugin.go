package domain

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Status 플러그인 포인트/플러그인 상태 (값은 기존 스키마와 동일)
type Status int16

const (
	StatusEnabled  Status = 0
	StatusDisabled Status = 1
	StatusRemoved  Status = 2
)

// String 상태 이름 반환
func (s Status) String() string {
	switch s {
	case StatusEnabled:
		return "enabled"
	case StatusDisabled:
		return "disabled"
	case StatusRemoved:
		return "removed"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Filter 조회 필터용 포인터 반환
func (s Status) Filter() *Status {
	return &s
}

// Valid 정의된 상태인지 확인
func (s Status) Valid() bool {
	return s == StatusEnabled || s == StatusDisabled || s == StatusRemoved
}

// MarshalText JSON 에서는 상태 이름으로 표시
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText 상태 이름 또는 숫자 문자열
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStatus "enabled" 같은 이름 또는 "0" 같은 숫자 문자열을 Status로 변환
func ParseStatus(v string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "enabled":
		return StatusEnabled, nil
	case "disabled":
		return StatusDisabled, nil
	case "removed":
		return StatusRemoved, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || !Status(n).Valid() {
		return 0, fmt.Errorf("unknown status %q", v)
	}
	return Status(n), nil
}

// PluginPoint 플러그인 포인트 DB 레코드
type PluginPoint struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	ImportString string `gorm:"size:255;uniqueIndex" json:"import_string"`
	Title        string `gorm:"size:255" json:"title"`
	Status       Status `gorm:"type:smallint;default:0;index" json:"status"`
}

// TableName GORM 테이블명
func (PluginPoint) TableName() string {
	return "plugin_points"
}

func (p *PluginPoint) String() string {
	return p.Title
}

// Plugin 플러그인 DB 레코드
//
// Name, Title 은 선언된 플러그인에서 동기화되고 Index, Status 는 관리자가 변경한다.
// Name 은 같은 포인트 안에서 유일해야 한다.
type Plugin struct {
	ID           int64        `gorm:"primaryKey" json:"id"`
	PointID      int64        `gorm:"not null;uniqueIndex:uk_plugin_point_name" json:"point_id"`
	Point        *PluginPoint `gorm:"foreignKey:PointID;constraint:OnDelete:CASCADE" json:"-"`
	ImportString string       `gorm:"size:255;uniqueIndex" json:"import_string"`
	Name         *string      `gorm:"size:255;uniqueIndex:uk_plugin_point_name" json:"name"`
	Title        string       `gorm:"size:255;default:''" json:"title"`
	Index        int          `gorm:"column:sort_index;default:0" json:"index"`
	Status       Status       `gorm:"type:smallint;default:0;index" json:"status"`

	// 마지막으로 로드/저장된 시점의 상태
	loadedStatus Status
	loaded       bool
}

// TableName GORM 테이블명
func (Plugin) TableName() string {
	return "plugins"
}

// AfterFind 조회 직후 상태 기록
func (p *Plugin) AfterFind(_ *gorm.DB) error {
	p.MarkClean()
	return nil
}

// AfterSave 저장 직후 상태 기록
func (p *Plugin) AfterSave(_ *gorm.DB) error {
	p.MarkClean()
	return nil
}

// MarkClean 현재 상태를 기준 상태로 기록
func (p *Plugin) MarkClean() {
	p.loadedStatus = p.Status
	p.loaded = true
}

// StatusChanged 이미 저장된 레코드의 상태가 변경되었는지 여부
func (p *Plugin) StatusChanged() bool {
	return p.loaded && p.ID != 0 && p.Status != p.loadedStatus
}

// IsActive 활성화 상태 여부
func (p *Plugin) IsActive() bool {
	return p.Status == StatusEnabled
}

// NameOrEmpty 슬러그 이름 (없으면 빈 문자열)
func (p *Plugin) NameOrEmpty() string {
	if p.Name == nil {
		return ""
	}
	return *p.Name
}

func (p *Plugin) String() string {
	if p.Title != "" {
		return p.Title
	}
	if p.Name != nil && *p.Name != "" {
		return *p.Name
	}
	return p.ImportString
}

// PluginFilter 플러그인 조회 조건 (빈 필드는 조건 없음)
type PluginFilter struct {
	PointID           int64
	PointImportString string
	ImportString      string
	Name              *string
	Status            *Status
	NamedOnly         bool
}
