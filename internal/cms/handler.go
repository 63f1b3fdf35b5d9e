package cms

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/damoang/angple-plugins/internal/common"
	"github.com/damoang/angple-plugins/internal/plugin"
	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
	"github.com/damoang/angple-plugins/pkg/cache"
	"github.com/damoang/angple-plugins/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// ContentRequest 콘텐츠 작성 요청
type ContentRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}

// contentList 목록 응답 (캐시 단위)
type contentList struct {
	Plugin   string    `json:"plugin"`
	Title    string    `json:"title"`
	Contents []Content `json:"contents"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// createdContent 작성 응답 (조회 URL 포함)
type createdContent struct {
	*Content
	URL string `json:"url"`
}

// activePlugin 현재 요청의 콘텐츠 종류 레코드
// 라우트는 시작 시 마운트되므로 이후 비활성화된 종류는 여기서 404 처리한다.
func activePlugin(c *gin.Context) (*App, *domain.Plugin, bool) {
	a := appFrom(c)
	if a == nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "콘텐츠 앱이 설정되지 않았습니다", nil)
		return nil, nil, false
	}
	name := c.GetString(plugin.ContextKeyPlugin)
	rec, err := a.manager.PluginByName(ContentType{}, name, domain.StatusEnabled.Filter())
	if err != nil {
		common.HandleError(c, fmt.Sprintf("콘텐츠 종류를 찾을 수 없습니다: %s", name), err)
		return nil, nil, false
	}
	return a, rec, true
}

// listContents 콘텐츠 목록
// GET /content/{plugin}/?page=1&limit=20
func listContents(c *gin.Context) {
	a, rec, ok := activePlugin(c)
	if !ok {
		return
	}
	name := rec.NameOrEmpty()
	page, limit := ginutil.Page(c, 20, 100)
	key := cache.ContentsKey(name, page, limit)

	var resp contentList
	err := a.cache.Get(c.Request.Context(), key, &resp)
	if err == nil {
		common.SuccessResponse(c, resp, &common.Meta{Total: resp.Total})
		return
	}
	if !errors.Is(err, cache.ErrMiss) {
		a.logger.Warn("Content cache read failed for %s: %v", key, err)
	}

	list, total, err := a.repo.ListByPlugin(rec.ID, (page-1)*limit, limit)
	if err != nil {
		common.HandleError(c, "콘텐츠 조회 실패", err)
		return
	}
	resp = contentList{
		Plugin:   name,
		Title:    rec.String(),
		Contents: list,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}
	if err := a.cache.Set(c.Request.Context(), key, resp, cache.TTLContents); err != nil {
		a.logger.Warn("Content cache write failed for %s: %v", key, err)
	}
	common.SuccessResponse(c, resp, &common.Meta{Total: total})
}

// createContent 콘텐츠 작성
// POST /content/{plugin}/create
func createContent(c *gin.Context) {
	a, rec, ok := activePlugin(c)
	if !ok {
		return
	}

	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "잘못된 요청입니다", err)
		return
	}

	content := &Content{Title: req.Title, Body: req.Content, PluginID: rec.ID}
	if err := a.repo.Create(content); err != nil {
		common.HandleError(c, "콘텐츠 작성 실패", err)
		return
	}
	a.invalidate(c, rec.NameOrEmpty())

	url := ReadURL(rec.NameOrEmpty(), content.ID)
	c.Header("Location", url)
	common.CreatedResponse(c, createdContent{Content: content, URL: url})
}

// readContent 콘텐츠 조회
// GET /content/{plugin}/:id
func readContent(c *gin.Context) {
	a, rec, ok := activePlugin(c)
	if !ok {
		return
	}
	id, err := ginutil.ParamInt64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "잘못된 ID입니다", err)
		return
	}

	content, err := a.repo.FindByID(rec.ID, id)
	if err != nil {
		common.HandleError(c, "콘텐츠를 찾을 수 없습니다", err)
		return
	}
	common.SuccessResponse(c, content, nil)
}

func (a *App) invalidate(c *gin.Context, name string) {
	if err := a.cache.DeletePrefix(c.Request.Context(), cache.ContentsPrefix(name)); err != nil {
		a.logger.Warn("Content cache invalidation failed for %s: %v", name, err)
	}
}
