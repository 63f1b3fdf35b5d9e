package cms

import (
	"github.com/damoang/angple-plugins/internal/common"
	"github.com/damoang/angple-plugins/internal/plugin"
	"github.com/damoang/angple-plugins/pkg/cache"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const contextKeyApp = "cms.app"

// App 콘텐츠 앱 (핸들러가 공유하는 의존성)
type App struct {
	manager *plugin.Manager
	repo    *ContentRepository
	cache   cache.Service
	logger  plugin.Logger
}

// NewApp 생성자 (cacheSvc 가 nil 이면 캐시 없이 동작)
func NewApp(manager *plugin.Manager, db *gorm.DB, cacheSvc cache.Service, logger plugin.Logger) *App {
	if cacheSvc == nil {
		cacheSvc = cache.NewService(nil)
	}
	if logger == nil {
		logger = plugin.NopLogger{}
	}
	return &App{
		manager: manager,
		repo:    NewContentRepository(db),
		cache:   cacheSvc,
		logger:  logger,
	}
}

// AutoMigrate 콘텐츠 테이블 마이그레이션
func (a *App) AutoMigrate() error {
	return a.repo.AutoMigrate()
}

// Mount 활성 콘텐츠 종류마다 /content/{plugin}/ 라우트 등록
func (a *App) Mount(router gin.IRouter) ([]plugin.MountedPlugin, error) {
	group := router.Group("")
	group.Use(func(c *gin.Context) {
		c.Set(contextKeyApp, a)
		c.Next()
	})
	return plugin.Mount(group, a.manager, ContentType{}, MountPattern)
}

func appFrom(c *gin.Context) *App {
	v, _ := c.Get(contextKeyApp)
	a, _ := v.(*App)
	return a
}

// contentTypeInfo 콘텐츠 종류 목록 항목
type contentTypeInfo struct {
	plugin.Choice
	ListURL   string `json:"list_url"`
	CreateURL string `json:"create_url"`
}

// RegisterAPI 콘텐츠 종류 조회 API 등록
func (a *App) RegisterAPI(r gin.IRouter) {
	r.GET("/content-types", a.ListContentTypes)
}

// ListContentTypes 활성 콘텐츠 종류 목록
// GET /api/content-types
func (a *App) ListContentTypes(c *gin.Context) {
	choices, err := a.manager.Choices(ContentType{})
	if err != nil {
		common.HandleError(c, "콘텐츠 종류 조회 실패", err)
		return
	}
	items := make([]contentTypeInfo, 0, len(choices))
	for _, ch := range choices {
		items = append(items, contentTypeInfo{
			Choice:    ch,
			ListURL:   ListURL(ch.Name),
			CreateURL: CreateURL(ch.Name),
		})
	}
	common.SuccessResponse(c, items, &common.Meta{Total: int64(len(items))})
}
