package middleware

import (
	"errors"
	"strings"

	"github.com/damoang/angple-plugins/internal/common"
	"github.com/damoang/angple-plugins/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// TokenVerifier 토큰 검증기
type TokenVerifier interface {
	VerifyToken(tokenString string) (*jwt.Claims, error)
}

// JWTAuth Bearer 토큰 인증 미들웨어
func JWTAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, 401, "Missing authorization header", nil)
			c.Abort()
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || tokenString == "" {
			common.ErrorResponse(c, 401, "Invalid authorization header format", nil)
			c.Abort()
			return
		}

		claims, err := verifier.VerifyToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, 401, "Token expired", err)
			} else {
				common.ErrorResponse(c, 401, "Invalid token", err)
			}
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("nickname", claims.Nickname)
		c.Set("level", claims.Level)

		c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) string {
	return c.GetString("userID")
}

// GetUserLevel extracts user level from context
func GetUserLevel(c *gin.Context) int {
	return c.GetInt("level")
}
