package api

import (
	"context"
	"net/http"
	"time"

	analysisHandler "nutrition-planner/internal/api/handlers/analysis"
	catalogHandler "nutrition-planner/internal/api/handlers/catalog"
	"nutrition-planner/internal/api/handlers/health"
	ingestionHandler "nutrition-planner/internal/api/handlers/ingestion"
	"nutrition-planner/internal/api/middleware"
	"nutrition-planner/internal/core/cache"
	"nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/core/ingest"
	"nutrition-planner/internal/core/lookup"
	"nutrition-planner/internal/infrastructure/config"
	"nutrition-planner/internal/pkg/common"
	"nutrition-planner/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 60 * time.Second
	// 請求體大小限制 (1MB)
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, docStore store.Store, cacheManager *cache.Manager) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("store_backend", cfg.Store.Backend),
		zap.Bool("lookup_enabled", cfg.Nutritionix.Enabled),
		zap.Bool("generation_enabled", cfg.OpenRouter.Enabled),
	)

	// 初始化服務
	catalogSvc := catalog.NewService(docStore)
	lookupClient := lookup.NewClient(cfg, cacheManager)
	generator := ingest.NewGenerator(cfg, cacheManager)
	ingestSvc := ingest.NewService(catalogSvc, generator, lookupClient)

	// 全局中間件：設置超時並注入設定與儲存層
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)
		c.Set("store", docStore)

		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		catalogH := catalogHandler.NewHandler(catalogSvc)
		analysisH := analysisHandler.NewHandler(catalogSvc)
		ingestionH := ingestionHandler.NewHandler(ingestSvc, lookupClient)

		// 食物目錄
		foods := api.Group("/foods")
		{
			foods.POST("", catalogH.CreateFood)
			foods.GET("", catalogH.ListFoods)
			foods.GET("/:id", catalogH.GetFood)
			foods.PUT("/:id", catalogH.UpdateFood)
			foods.DELETE("/:id", catalogH.DeleteFood)
			foods.GET("/:id/nutrition", analysisH.FoodNutrition)
		}

		// 食譜
		recipes := api.Group("/recipes")
		{
			recipes.POST("", catalogH.CreateRecipe)
			recipes.GET("", catalogH.ListRecipes)
			recipes.GET("/:id", catalogH.GetRecipe)
			recipes.PUT("/:id", catalogH.UpdateRecipe)
			recipes.DELETE("/:id", catalogH.DeleteRecipe)
			recipes.GET("/:id/nutrition", analysisH.RecipeNutrition)
		}

		// 菜單
		menus := api.Group("/menus")
		{
			menus.POST("", catalogH.CreateMenu)
			menus.GET("", catalogH.ListMenus)
			menus.GET("/:id", catalogH.GetMenu)
			menus.PUT("/:id", catalogH.UpdateMenu)
			menus.DELETE("/:id", catalogH.DeleteMenu)
			menus.GET("/:id/nutrition", analysisH.MenuNutrition)
			menus.GET("/:id/shopping-list", analysisH.ShoppingList)
		}

		// 匯入與外部查詢：成本較高，加上去重與限流
		ingestGroup := api.Group("/ingest")
		ingestGroup.Use(middleware.Deduplication(cfg))
		if cfg.RateLimit.Enabled {
			ingestGroup.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
		}
		{
			ingestGroup.POST("/recipe", ingestionH.IngestRecipe)
			ingestGroup.POST("/generate", ingestionH.GenerateRecipe)
		}

		lookupGroup := api.Group("/lookup")
		lookupGroup.Use(middleware.Deduplication(cfg))
		if cfg.RateLimit.Enabled {
			lookupGroup.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
		}
		{
			lookupGroup.POST("/nutrition", ingestionH.LookupNutrition)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.String("store_backend", cfg.Store.Backend),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
