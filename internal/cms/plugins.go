package cms

import (
	"fmt"

	"github.com/damoang/angple-plugins/internal/plugin"
	"github.com/gin-gonic/gin"
)

// MountPattern 콘텐츠 종류별 라우트 경로
const MountPattern = "/content/{plugin}/"

func init() {
	plugin.DeclareModule("plugins", "cms", Declare)
}

// Declare 콘텐츠 종류 포인트와 기본 플러그인 선언
func Declare(r *plugin.Registry) {
	r.RegisterPoint(ContentType{})
	r.RegisterPlugin(ContentType{}, func() interface{} { return &Article{} })
	r.RegisterPlugin(ContentType{}, func() interface{} { return &Notice{} })
}

// ContentType 콘텐츠 종류 플러그인 포인트
type ContentType struct{}

// PluginTitle 포인트 제목
func (ContentType) PluginTitle() string { return "Content Type" }

// contentRoutes 모든 콘텐츠 종류가 공유하는 라우트
type contentRoutes struct{}

// RegisterRoutes 목록/작성/조회 라우트 등록
func (contentRoutes) RegisterRoutes(r gin.IRouter) {
	r.GET("/", listContents)
	r.POST("/create", createContent)
	r.GET("/:id", readContent)
}

// Article 일반 글
type Article struct{ contentRoutes }

func (Article) PluginName() string  { return "article" }
func (Article) PluginTitle() string { return "Article" }

// Notice 공지
type Notice struct{ contentRoutes }

func (Notice) PluginName() string  { return "notice" }
func (Notice) PluginTitle() string { return "Notice" }

// ListURL 콘텐츠 목록 경로
func ListURL(name string) string {
	return plugin.MountPath(MountPattern, name) + "/"
}

// CreateURL 콘텐츠 작성 경로
func CreateURL(name string) string {
	return plugin.MountPath(MountPattern, name) + "/create"
}

// ReadURL 콘텐츠 조회 경로
func ReadURL(name string, id int64) string {
	return fmt.Sprintf("%s/%d", plugin.MountPath(MountPattern, name), id)
}
