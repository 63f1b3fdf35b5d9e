package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/damoang/angple-plugins/internal/plugin"
	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
	"github.com/damoang/angple-plugins/internal/pluginstore/repository"
	"github.com/damoang/angple-plugins/pkg/cache"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// memCache 테스트용 인메모리 캐시
type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
	hits  int
}

func newMemCache() *memCache {
	return &memCache{items: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.items[key]
	if !ok {
		return cache.ErrMiss
	}
	m.hits++
	return json.Unmarshal(data, dest)
}

func (m *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = data
	return nil
}

func (m *memCache) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	return nil
}

func (m *memCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type cmsEnv struct {
	router  *gin.Engine
	manager *plugin.Manager
	app     *App
	bus     *plugin.EventBus
	cache   *memCache
	mounted []plugin.MountedPlugin
}

func setupCMS(t *testing.T) *cmsEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := repository.NewPluginRepository(db)
	require.NoError(t, repo.AutoMigrate())

	registry := plugin.NewRegistry()
	require.Equal(t, 1, registry.Load("plugins"))

	bus := plugin.NewEventBus(nil)
	manager := plugin.NewManager(registry, repo, plugin.WithEmitter(bus))
	_, err = manager.Sync(plugin.SyncOptions{})
	require.NoError(t, err)

	mc := newMemCache()
	app := NewApp(manager, db, mc, nil)
	require.NoError(t, app.AutoMigrate())
	app.Subscribe(bus)

	router := gin.New()
	mounted, err := app.Mount(router)
	require.NoError(t, err)
	return &cmsEnv{router: router, manager: manager, app: app, bus: bus, cache: mc, mounted: mounted}
}

func (e *cmsEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func TestDeclare(t *testing.T) {
	registry := plugin.NewRegistry()
	Declare(registry)

	point, ok := registry.Point(plugin.IdentityOf(ContentType{}))
	require.True(t, ok)
	assert.Equal(t, "Content Type", point.Title)

	var names []string
	for desc := range registry.Plugins(ContentType{}) {
		names = append(names, desc.Name)
	}
	assert.Equal(t, []string{"article", "notice"}, names)
}

func TestURLs(t *testing.T) {
	assert.Equal(t, "/content/article/", ListURL("article"))
	assert.Equal(t, "/content/article/create", CreateURL("article"))
	assert.Equal(t, "/content/notice/7", ReadURL("notice", 7))
}

func TestMount(t *testing.T) {
	e := setupCMS(t)
	assert.Equal(t, []plugin.MountedPlugin{
		{Name: "article", Path: "/content/article"},
		{Name: "notice", Path: "/content/notice"},
	}, e.mounted)
}

func TestContentFlow(t *testing.T) {
	e := setupCMS(t)

	w, resp := e.do(t, http.MethodPost, CreateURL("article"), gin.H{"title": "Hello", "content": "first post"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := resp["data"].(map[string]interface{})
	id := int64(data["id"].(float64))
	assert.Equal(t, ReadURL("article", id), data["url"])
	assert.Equal(t, "Hello", data["title"])
	assert.Equal(t, ReadURL("article", id), w.Header().Get("Location"))

	w, resp = e.do(t, http.MethodGet, ListURL("article"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := resp["data"].(map[string]interface{})
	assert.Equal(t, "Article", list["title"])
	assert.Len(t, list["contents"], 1)
	assert.Equal(t, 1, e.cache.len())

	// 두 번째 조회는 캐시
	w, _ = e.do(t, http.MethodGet, ListURL("article"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, e.cache.hits)

	w, resp = e.do(t, http.MethodGet, ReadURL("article", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "first post", resp["data"].(map[string]interface{})["content"])

	// 다른 종류의 글은 보이지 않음
	w, _ = e.do(t, http.MethodGet, ReadURL("notice", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = e.do(t, http.MethodGet, ListURL("notice"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp["data"].(map[string]interface{})["contents"])
}

func TestCreateValidation(t *testing.T) {
	e := setupCMS(t)

	w, _ := e.do(t, http.MethodPost, CreateURL("notice"), gin.H{"title": "no body"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(t, http.MethodGet, "/content/notice/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(t, http.MethodGet, ReadURL("notice", 99), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDisabledContentType(t *testing.T) {
	e := setupCMS(t)

	w, _ := e.do(t, http.MethodGet, ListURL("notice"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, e.cache.len())

	rec, err := e.manager.PluginRecord(Notice{})
	require.NoError(t, err)
	require.NoError(t, e.manager.SetPluginStatus(rec, domain.StatusDisabled))

	// 이벤트 구독자가 캐시를 비움
	assert.Equal(t, 0, e.cache.len())

	w, _ = e.do(t, http.MethodGet, ListURL("notice"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = e.do(t, http.MethodPost, CreateURL("notice"), gin.H{"title": "t", "content": "c"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, e.manager.SetPluginStatus(rec, domain.StatusEnabled))
	w, _ = e.do(t, http.MethodGet, ListURL("notice"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnsubscribe(t *testing.T) {
	e := setupCMS(t)

	w, _ := e.do(t, http.MethodGet, ListURL("notice"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, e.cache.len())

	e.app.Unsubscribe(e.bus)
	rec, err := e.manager.PluginRecord(Notice{})
	require.NoError(t, err)
	require.NoError(t, e.manager.SetPluginStatus(rec, domain.StatusDisabled))

	// 구독 해제 후에는 캐시가 남고 요청 시점 검사로만 차단됨
	assert.Equal(t, 1, e.cache.len())
	w, _ = e.do(t, http.MethodGet, ListURL("notice"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPagination(t *testing.T) {
	e := setupCMS(t)
	for i := 0; i < 5; i++ {
		w, _ := e.do(t, http.MethodPost, CreateURL("article"), gin.H{"title": fmt.Sprintf("post %d", i), "content": "x"})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, resp := e.do(t, http.MethodGet, ListURL("article")+"?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	contents := data["contents"].([]interface{})
	require.Len(t, contents, 2)
	assert.Equal(t, "post 2", contents[0].(map[string]interface{})["title"])
	assert.EqualValues(t, 5, resp["meta"].(map[string]interface{})["total"])
}

func TestListContentTypes(t *testing.T) {
	e := setupCMS(t)
	api := gin.New()
	NewApp(e.manager, nil, nil, nil).RegisterAPI(api.Group("/api"))

	req := httptest.NewRequest(http.MethodGet, "/api/content-types", nil)
	w := httptest.NewRecorder()
	api.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			Name    string `json:"name"`
			Title   string `json:"title"`
			ListURL string `json:"list_url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "article", resp.Data[0].Name)
	assert.Equal(t, "Article", resp.Data[0].Title)
	assert.Equal(t, "/content/article/", resp.Data[0].ListURL)

	rec, err := e.manager.PluginRecord(Article{})
	require.NoError(t, err)
	require.NoError(t, e.manager.SetPluginStatus(rec, domain.StatusDisabled))

	w = httptest.NewRecorder()
	api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/content-types", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "notice", resp.Data[0].Name)
}
