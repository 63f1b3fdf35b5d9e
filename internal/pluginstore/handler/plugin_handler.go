package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/damoang/angple-plugins/internal/common"
	"github.com/damoang/angple-plugins/internal/pluginstore/domain"
	"github.com/damoang/angple-plugins/internal/pluginstore/service"
	"github.com/damoang/angple-plugins/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// PluginHandler 플러그인 포인트/플러그인 관리 핸들러
type PluginHandler struct {
	svc *service.PluginService
}

// NewPluginHandler 생성자
func NewPluginHandler(svc *service.PluginService) *PluginHandler {
	return &PluginHandler{svc: svc}
}

// RegisterRoutes 관리자 라우트 등록
func (h *PluginHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/points", h.ListPoints)
	r.GET("/points/:id", h.GetPoint)
	r.GET("/points/:id/plugins", h.ListPointPlugins)
	r.GET("/plugins", h.ListPlugins)
	r.GET("/plugins/:id", h.GetPlugin)
	r.PATCH("/plugins/:id", h.UpdatePlugin)
	r.POST("/sync", h.Sync)
}

// ListPoints 포인트 목록
// GET /api/admin/plugins/points?status=enabled
func (h *PluginHandler) ListPoints(c *gin.Context) {
	status, ok := statusQuery(c)
	if !ok {
		return
	}
	points, err := h.svc.ListPoints(status)
	if err != nil {
		common.HandleError(c, "포인트 조회 실패", err)
		return
	}
	common.SuccessResponse(c, points, &common.Meta{Total: int64(len(points))})
}

// GetPoint 포인트 상세
// GET /api/admin/plugins/points/:id
func (h *PluginHandler) GetPoint(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	point, err := h.svc.GetPoint(id)
	if err != nil {
		common.HandleError(c, "포인트를 찾을 수 없습니다", err)
		return
	}
	common.SuccessResponse(c, point, nil)
}

// ListPointPlugins 포인트의 플러그인 목록
// GET /api/admin/plugins/points/:id/plugins?status=enabled
func (h *PluginHandler) ListPointPlugins(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	status, ok := statusQuery(c)
	if !ok {
		return
	}
	if _, err := h.svc.GetPoint(id); err != nil {
		common.HandleError(c, "포인트를 찾을 수 없습니다", err)
		return
	}
	h.listPlugins(c, domain.PluginFilter{PointID: id, Status: status})
}

// ListPlugins 플러그인 목록
// GET /api/admin/plugins/plugins?point=<import string>&status=enabled
func (h *PluginHandler) ListPlugins(c *gin.Context) {
	status, ok := statusQuery(c)
	if !ok {
		return
	}
	h.listPlugins(c, domain.PluginFilter{
		PointImportString: c.Query("point"),
		Status:            status,
	})
}

func (h *PluginHandler) listPlugins(c *gin.Context, f domain.PluginFilter) {
	list, total, err := h.svc.ListPlugins(f)
	if err != nil {
		common.HandleError(c, "플러그인 조회 실패", err)
		return
	}
	common.SuccessResponse(c, list, &common.Meta{Total: total})
}

// GetPlugin 플러그인 상세
// GET /api/admin/plugins/plugins/:id
func (h *PluginHandler) GetPlugin(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rec, err := h.svc.GetPlugin(id)
	if err != nil {
		common.HandleError(c, "플러그인을 찾을 수 없습니다", err)
		return
	}
	common.SuccessResponse(c, rec, nil)
}

// UpdatePlugin 플러그인 상태/순서/제목 변경
// PATCH /api/admin/plugins/plugins/:id
func (h *PluginHandler) UpdatePlugin(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req service.UpdatePluginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "잘못된 요청입니다", err)
		return
	}

	rec, err := h.svc.UpdatePlugin(id, req)
	if err != nil {
		common.HandleError(c, "플러그인 변경 실패", err)
		return
	}
	common.SuccessResponse(c, rec, nil)
}

type syncRequest struct {
	DeleteRemoved bool `json:"delete_removed"`
}

// Sync 선언을 DB 에 다시 동기화
// POST /api/admin/plugins/sync
func (h *PluginHandler) Sync(c *gin.Context) {
	var req syncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "잘못된 요청입니다", err)
			return
		}
	}

	var out strings.Builder
	result, err := h.svc.Sync(req.DeleteRemoved, &out)
	if err != nil {
		common.HandleError(c, "동기화 실패", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"result": result,
		"log":    splitLines(out.String()),
	}})
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := ginutil.ParamInt64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "잘못된 ID입니다", err)
		return 0, false
	}
	return id, true
}

func statusQuery(c *gin.Context) (*domain.Status, bool) {
	v := c.Query("status")
	if v == "" {
		return nil, true
	}
	status, err := domain.ParseStatus(v)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("알 수 없는 상태: %s", v), err)
		return nil, false
	}
	return &status, true
}

func splitLines(s string) []string {
	lines := []string{}
	for _, l := range strings.Split(s, "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
