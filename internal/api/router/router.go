package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scholchat/backend/config"
	"scholchat/backend/internal/api/handler"
	"scholchat/backend/internal/api/middleware"
	"scholchat/backend/internal/model"
	"scholchat/backend/pkg/jwt"
	"scholchat/backend/pkg/redis"
	"scholchat/backend/pkg/response"
)

// New 组装 gin 引擎与全部路由
func New(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// ── 认证（无需登录） ──
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}

	// ── 需登录 ──
	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		authed.POST("/auth/logout", h.Auth.Logout)
		authed.GET("/auth/me", h.Auth.GetCurrentUser)
		authed.PUT("/auth/password", h.Auth.ChangePassword)

		// 班级准入：提交与状态查询，所有登录用户可用
		access := authed.Group("/access")
		{
			access.POST("/requests",
				middleware.RateLimit(rdb, cfg.Access.SubmitRatePerMin, time.Minute),
				h.Access.Submit,
			)
			access.GET("/classes", h.Access.AccessibleClasses)
			access.GET("/classes/:id/status", h.Access.Status)
		}

		// 班级准入：审批与管理侧查询，仅教师/管理员
		moderation := authed.Group("/access")
		moderation.Use(middleware.RoleAuth(string(model.RoleProfessor), string(model.RoleAdmin)))
		{
			moderation.PUT("/requests/:id/approve", h.Access.Approve)
			moderation.PUT("/requests/:id/reject", h.Access.Reject)
			moderation.DELETE("/classes/:id/members/:userId", h.Access.RevokeMember)
			moderation.GET("/classes/:id/requests", h.Access.PendingRequests)
			moderation.GET("/classes/:id/members", h.Access.Members)
		}

		// 班级管理，仅教师/管理员
		classes := authed.Group("/classes")
		classes.Use(middleware.RoleAuth(string(model.RoleProfessor), string(model.RoleAdmin)))
		{
			classes.POST("", h.Class.Create)
			classes.GET("/mine", h.Class.ListMine)
			classes.GET("/:id", h.Class.GetByID)
			classes.PUT("/:id", h.Class.Update)
			classes.POST("/:id/rotate-code", h.Class.RotateCode)
			classes.GET("/:id/roster", h.Class.Roster)
			classes.GET("/:id/access/export", h.Export.ExportClassAccess)
		}
	}

	return r
}
