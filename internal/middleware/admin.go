package middleware

import (
	"net/http"

	"github.com/damoang/angple-plugins/internal/common"
	"github.com/gin-gonic/gin"
)

// AdminLevel 관리자 최소 레벨
const AdminLevel = 10

// RequireAdmin checks that the authenticated user has admin level (>= 10)
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserLevel(c) < AdminLevel {
			common.ErrorResponse(c, http.StatusForbidden, "관리자 권한이 필요합니다", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
