package plugin

import (
	"iter"
	"sync"
)

// Factory 플러그인 인스턴스 생성 함수 (부작용 없는 생성자여야 함)
type Factory func() interface{}

// Named 선택적 인터페이스 - 플러그인 슬러그 이름 선언
type Named interface {
	PluginName() string
}

// Titled 선택적 인터페이스 - 포인트/플러그인 제목 선언
type Titled interface {
	PluginTitle() string
}

// PointDescriptor 선언된 플러그인 포인트
type PointDescriptor struct {
	Identity string
	Title    string
	Parent   string // Extends 로 지정한 상위 포인트 식별자

	depth   int
	plugins []*PluginDescriptor
}

// Depth 루트로부터의 포인트 깊이 (직접 선언된 포인트는 1)
func (p *PointDescriptor) Depth() int {
	return p.depth
}

// PluginDescriptor 선언된 플러그인
type PluginDescriptor struct {
	Identity string
	Name     string // 슬러그 (선택)
	Title    string // 제목 (선택)
	Point    string // 소속 포인트 식별자
	Factory  Factory
}

// Option 선언 옵션
type Option func(*declaration)

type declaration struct {
	title  string
	name   string
	parent interface{}
}

// WithTitle 제목 지정
func WithTitle(title string) Option {
	return func(d *declaration) { d.title = title }
}

// WithName 플러그인 슬러그 지정
func WithName(name string) Option {
	return func(d *declaration) { d.name = name }
}

// Extends 상위 포인트를 확장하는 하위 포인트로 선언
func Extends(parent interface{}) Option {
	return func(d *declaration) { d.parent = parent }
}

// Registry 선언된 플러그인 포인트/플러그인 레지스트리
//
// 프로세스 시작 시 한 번 채워지고 이후에는 읽기 전용으로 사용한다.
type Registry struct {
	points      []*PointDescriptor
	pointIndex  map[string]*PointDescriptor
	pluginIndex map[string]*PluginDescriptor
	loaded      map[string]bool
	sublevels   int
	logger      Logger
	mu          sync.RWMutex
}

// RegistryOption 레지스트리 옵션
type RegistryOption func(*Registry)

// WithPointSublevels 포인트로 취급할 최대 깊이 (기본 1)
func WithPointSublevels(n int) RegistryOption {
	return func(r *Registry) {
		if n < 1 {
			n = 1
		}
		r.sublevels = n
	}
}

// WithRegistryLogger 로거 지정
func WithRegistryLogger(l Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry 새 레지스트리 생성
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		pointIndex:  make(map[string]*PointDescriptor),
		pluginIndex: make(map[string]*PluginDescriptor),
		loaded:      make(map[string]bool),
		sublevels:   1,
		logger:      NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterPoint 플러그인 포인트 등록 (같은 식별자는 한 번만 등록됨)
func (r *Registry) RegisterPoint(point interface{}, opts ...Option) *PointDescriptor {
	d := newDeclaration(point, opts)

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerPointLocked(IdentityOf(point), d)
}

func (r *Registry) registerPointLocked(id string, d declaration) *PointDescriptor {
	if p, exists := r.pointIndex[id]; exists {
		return p
	}

	p := &PointDescriptor{Identity: id, Title: d.title, depth: 1}
	if d.parent != nil {
		parentID := IdentityOf(d.parent)
		parent := r.registerPointLocked(parentID, declaration{})
		p.Parent = parentID
		p.depth = parent.depth + 1
	}
	if p.depth > r.sublevels {
		r.logger.Warn("Plugin point %s is %d levels deep (allowed: %d), it will not be synchronized", id, p.depth, r.sublevels)
	}

	r.points = append(r.points, p)
	r.pointIndex[id] = p
	r.logger.Debug("Registered plugin point: %s", id)
	return p
}

// RegisterPlugin 포인트에 플러그인 등록
// 식별자는 factory 가 반환하는 값의 타입에서 결정된다.
func (r *Registry) RegisterPlugin(point interface{}, factory Factory, opts ...Option) *PluginDescriptor {
	proto := factory()
	d := newDeclaration(proto, opts)
	id := IdentityOf(proto)
	pointID := IdentityOf(point)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.pluginIndex[id]; exists {
		if existing.Point != pointID {
			r.logger.Warn("Plugin %s already registered for %s, ignoring %s", id, existing.Point, pointID)
		}
		return existing
	}
	if _, isPoint := r.pointIndex[id]; isPoint {
		r.logger.Error("Cannot register plugin point %s as a plugin", id)
		return nil
	}

	p := r.registerPointLocked(pointID, newDeclaration(point, nil))
	desc := &PluginDescriptor{
		Identity: id,
		Name:     d.name,
		Title:    d.title,
		Point:    pointID,
		Factory:  factory,
	}
	p.plugins = append(p.plugins, desc)
	r.pluginIndex[id] = desc
	r.logger.Debug("Registered plugin: %s (point: %s)", id, pointID)
	return desc
}

// IsPluginPoint v 가 maxDepth 이내의 등록된 포인트인지 여부 (maxDepth < 1 이면 1)
func (r *Registry) IsPluginPoint(v interface{}, maxDepth int) bool {
	if maxDepth < 1 {
		maxDepth = 1
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, exists := r.pointIndex[IdentityOf(v)]
	return exists && p.depth <= maxDepth
}

// IsPoint 레지스트리 설정 깊이 기준 포인트 여부
func (r *Registry) IsPoint(v interface{}) bool {
	return r.IsPluginPoint(v, r.sublevels)
}

// IsPlugin 등록된 플러그인 여부
func (r *Registry) IsPlugin(v interface{}) bool {
	_, ok := r.Plugin(IdentityOf(v))
	return ok
}

// Point 식별자로 포인트 조회
func (r *Registry) Point(identity string) (*PointDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pointIndex[identity]
	return p, ok
}

// Plugin 식별자로 플러그인 조회
func (r *Registry) Plugin(identity string) (*PluginDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pluginIndex[identity]
	return p, ok
}

// Factory 식별자에 등록된 팩토리 조회
func (r *Registry) Factory(identity string) (Factory, bool) {
	p, ok := r.Plugin(identity)
	if !ok || p.Factory == nil {
		return nil, false
	}
	return p.Factory, true
}

// Points 동기화 대상 포인트 (선언 순서)
func (r *Registry) Points() iter.Seq[*PointDescriptor] {
	return func(yield func(*PointDescriptor) bool) {
		r.mu.RLock()
		snapshot := make([]*PointDescriptor, 0, len(r.points))
		for _, p := range r.points {
			if p.depth <= r.sublevels {
				snapshot = append(snapshot, p)
			}
		}
		r.mu.RUnlock()

		for _, p := range snapshot {
			if !yield(p) {
				return
			}
		}
	}
}

// Plugins 포인트에 선언된 플러그인 (선언 순서)
func (r *Registry) Plugins(point interface{}) iter.Seq[*PluginDescriptor] {
	id, ok := point.(string)
	if !ok {
		id = IdentityOf(point)
	}
	return func(yield func(*PluginDescriptor) bool) {
		r.mu.RLock()
		p, exists := r.pointIndex[id]
		var snapshot []*PluginDescriptor
		if exists {
			snapshot = append(snapshot, p.plugins...)
		}
		r.mu.RUnlock()

		for _, desc := range snapshot {
			if !yield(desc) {
				return
			}
		}
	}
}

// Reset 모든 선언 제거 (테스트용)
// 이미 적용된 모듈 선언은 기록이 남아 Load 로 다시 적용되지 않는다.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.points = nil
	r.pointIndex = make(map[string]*PointDescriptor)
	r.pluginIndex = make(map[string]*PluginDescriptor)
}

// ResetLoaded 모듈 선언 적용 기록 제거 (다음 Load 에서 다시 적용)
func (r *Registry) ResetLoaded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = make(map[string]bool)
}

func newDeclaration(v interface{}, opts []Option) declaration {
	var d declaration
	if t, ok := v.(Titled); ok {
		d.title = t.PluginTitle()
	}
	if n, ok := v.(Named); ok {
		d.name = n.PluginName()
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
