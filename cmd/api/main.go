package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutrition-planner/internal/api"
	"nutrition-planner/internal/core/cache"
	"nutrition-planner/internal/infrastructure/config"
	"nutrition-planner/internal/pkg/common"
	"nutrition-planner/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("store_backend", cfg.Store.Backend),
		zap.Bool("lookup_enabled", cfg.Nutritionix.Enabled),
		zap.Bool("generation_enabled", cfg.OpenRouter.Enabled),
	)

	// 初始化儲存層
	docStore := newStore(cfg)
	defer docStore.Close()

	// 初始化快取
	cacheManager := cache.NewManager(cfg)
	// 只在快取開啟但初始化失敗時才 Fatal
	if cfg.Cache.Enabled && cacheManager == nil {
		common.LogFatal("Failed to initialize cache manager")
	}
	defer cacheManager.Close()

	// 設置路由
	router, err := api.SetupRouter(cfg, docStore, cacheManager)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}

// newStore 依設定建立儲存層；redis 連不上時依 fallback_memory 決定退回或終止
func newStore(cfg *config.Config) store.Store {
	if cfg.Store.Backend != "redis" {
		common.LogInfo("Using in-memory document store")
		return store.NewMemoryStore()
	}

	redisStore, err := store.NewRedisStore(&cfg.Store)
	if err == nil {
		common.LogInfo("Connected to redis document store",
			zap.String("addr", cfg.Store.RedisAddr),
			zap.Int("db", cfg.Store.RedisDB),
		)
		return redisStore
	}

	if cfg.Store.FallbackMemory {
		common.LogWarn("Redis unavailable; falling back to in-memory store",
			zap.Error(err),
			zap.String("addr", cfg.Store.RedisAddr),
		)
		return store.NewMemoryStore()
	}

	common.LogFatal("Failed to connect to redis document store",
		zap.Error(err),
		zap.String("addr", cfg.Store.RedisAddr),
	)
	return nil
}
