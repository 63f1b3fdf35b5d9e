package plugin

import (
	"sync"

	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
	"github.com/damoang/angple-plugins/internal/pluginstore/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 테스트용 포인트/플러그인
type MyPluginPoint struct{}

type MyPlugin struct{}

type MyPluginFull struct{}

func (MyPluginFull) PluginName() string  { return "my-plugin-full" }
func (MyPluginFull) PluginTitle() string { return "My Plugin Full" }

type MyPlugin2 struct{}

func (MyPlugin2) PluginName() string { return "my-plugin-2" }

type OtherPoint struct{}

type OtherPlugin struct{}

func (OtherPlugin) PluginName() string { return "other" }

// testingT *testing.T 와 *rapid.T 공통 부분
type testingT interface {
	Helper()
	Fatalf(format string, args ...interface{})
}

func setupTestDB(t testingT) *gorm.DB {
	t.Helper()
	db := openTestDB(t)
	if err := repository.NewPluginRepository(db).AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func openTestDB(t testingT) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// :memory: DB 는 커넥션마다 분리되므로 하나만 사용
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db
}

func declareMyPlugins(r *Registry) {
	r.RegisterPoint(MyPluginPoint{})
	r.RegisterPlugin(MyPluginPoint{}, func() interface{} { return &MyPlugin{} })
	r.RegisterPlugin(MyPluginPoint{}, func() interface{} { return &MyPluginFull{} })
	r.RegisterPlugin(MyPluginPoint{}, func() interface{} { return &MyPlugin2{} })
}

type testEnv struct {
	registry *Registry
	repo     *repository.PluginRepository
	manager  *Manager
	events   *recordingEmitter
}

func newTestEnv(t testingT, opts ...ManagerOption) *testEnv {
	t.Helper()
	repo := repository.NewPluginRepository(setupTestDB(t))
	registry := NewRegistry()
	events := &recordingEmitter{}
	opts = append([]ManagerOption{WithEmitter(events)}, opts...)
	return &testEnv{
		registry: registry,
		repo:     repo,
		manager:  NewManager(registry, repo, opts...),
		events:   events,
	}
}

func (e *testEnv) sync(t testingT, opts SyncOptions) *SyncResult {
	t.Helper()
	result, err := e.manager.Sync(opts)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	return result
}

func (e *testEnv) countPlugins(t testingT, status *domain.Status) int64 {
	t.Helper()
	n, err := e.repo.CountPlugins(domain.PluginFilter{Status: status})
	if err != nil {
		t.Fatalf("count plugins: %v", err)
	}
	return n
}

func (e *testEnv) countPoints(t testingT, status *domain.Status) int64 {
	t.Helper()
	n, err := e.repo.CountPoints(status)
	if err != nil {
		t.Fatalf("count points: %v", err)
	}
	return n
}

// recordingEmitter 받은 이벤트 기록
type recordingEmitter struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingEmitter) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	topics := make([]string, 0, len(r.events))
	for _, e := range r.events {
		topics = append(topics, e.Topic)
	}
	return topics
}

func (r *recordingEmitter) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
