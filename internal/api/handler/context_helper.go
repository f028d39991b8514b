package handler

import (
	"github.com/gin-gonic/gin"

	"scholchat/backend/pkg/jwt"
)

// getUserID 从上下文取当前用户 ID（由 JWTAuth 中间件注入）
func getUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// getClaims 从上下文取完整 JWT Claims，登出时需要 jti 与过期时间
func getClaims(c *gin.Context) *jwt.Claims {
	v, exists := c.Get("claims")
	if !exists {
		return nil
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		return nil
	}
	return claims
}
