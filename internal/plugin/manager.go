package plugin

// Manager 플러그인 매니저 - 선언(레지스트리)과 DB 레코드(저장소)를 연결
type Manager struct {
	registry *Registry
	store    Store
	emitter  Emitter
	logger   Logger
	metrics  *SyncMetrics
}

// ManagerOption 매니저 옵션
type ManagerOption func(*Manager)

// WithEmitter 상태 전환 이벤트 전달 대상 지정
func WithEmitter(e Emitter) ManagerOption {
	return func(m *Manager) { m.emitter = e }
}

// WithLogger 로거 지정
func WithLogger(l Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics 동기화 메트릭 수집기 지정
func WithMetrics(sm *SyncMetrics) ManagerOption {
	return func(m *Manager) { m.metrics = sm }
}

// NewManager 새 매니저 생성
func NewManager(registry *Registry, store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		registry: registry,
		store:    store,
		logger:   NopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetRegistry 레지스트리 반환
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// GetStore 저장소 반환
func (m *Manager) GetStore() Store {
	return m.store
}
