package router

import (
	"fmt"
	"strings"

	"github.com/hausmarkt/internal/cache"
	"github.com/hausmarkt/internal/config"
	adminhandlers "github.com/hausmarkt/internal/http/handlers/admin"
	publichandlers "github.com/hausmarkt/internal/http/handlers/public"
	"github.com/hausmarkt/internal/logger"
	"github.com/hausmarkt/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "hm"
	}
	redisClient := cache.Client()
	webhookRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:webhook", redisPrefix),
		WindowSeconds: cfg.Security.WebhookRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.WebhookRateLimit.MaxAttempts,
		Message:       "webhook 请求过于频繁",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "登录尝试过于频繁",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/listings", publicHandler.GetListings)
			public.GET("/listings/:listing_no", publicHandler.GetListingByNo)
		}

		// 结账接口
		apiV1.POST("/checkout/sessions", publicHandler.CreateCheckoutSession)

		// 支付回调接口
		apiV1.POST("/payments/webhook/stripe",
			RateLimitMiddleware(redisClient, webhookRule, KeyByIP),
			publicHandler.StripeWebhook,
		)

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				authorized.GET("/me", adminHandler.GetAdminProfile)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 房源管理
				authorized.GET("/listings", adminHandler.GetAdminListings)
				authorized.GET("/listings/:listing_no", adminHandler.GetAdminListing)
				authorized.POST("/listings", adminHandler.CreateListing)

				// 支付台账与人工复核
				authorized.GET("/fulfillments", adminHandler.GetPaymentRecords)
				authorized.GET("/fulfillments/needs-review", adminHandler.GetNeedsReviewRecords)
				authorized.GET("/fulfillments/:session_id", adminHandler.GetPaymentRecord)
				authorized.POST("/fulfillments/:session_id/reprocess", adminHandler.ReprocessFulfillment)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
