package router

import (
	"fmt"
	"strings"

	"github.com/giftlink-next/internal/cache"
	"github.com/giftlink-next/internal/config"
	adminhandlers "github.com/giftlink-next/internal/http/handlers/admin"
	publichandlers "github.com/giftlink-next/internal/http/handlers/public"
	"github.com/giftlink-next/internal/logger"
	"github.com/giftlink-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按公开/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "gl"
	}
	redisClient := cache.Client()
	frameRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:frame", redisPrefix),
		WindowSeconds: cfg.Security.FrameRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.FrameRateLimit.MaxRequests,
		Message:       "too many frame requests",
	}
	hashRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:hash", redisPrefix),
		WindowSeconds: cfg.Security.HashRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.HashRateLimit.MaxRequests,
		Message:       "too many hash requests",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
		Message:       "too many login attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// frame 交互入口
	frame := r.Group("/api/frame")
	frame.Use(RateLimitMiddleware(redisClient, frameRule, KeyByIPAndParam("id")))
	{
		frame.GET("/:id", publicHandler.GetFrame)
		frame.POST("/:id", publicHandler.PostFrame)
		frame.POST("/:id/tx", publicHandler.ClaimTx)
		frame.GET("/:id/image", publicHandler.GetFrameImage)
	}

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.POST("/gift/hash", RateLimitMiddleware(redisClient, hashRule, KeyByIP), publicHandler.ComputeClaimHash)
			public.POST("/gift/register", publicHandler.RegisterGift)
			public.GET("/gift/:id/status", publicHandler.GetGiftStatus)
			public.POST("/gift/:id/refund", publicHandler.AuthorizeRefund)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.Login)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, cfg.Admin.Username))
			{
				authorized.GET("/gifts", adminHandler.GetAdminGifts)
				authorized.GET("/gifts/:id/claims", adminHandler.GetAdminGiftClaims)
				authorized.GET("/stats", adminHandler.GetAdminStats)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
