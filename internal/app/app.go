package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"studypulse_backend/internal/config"
	"studypulse_backend/internal/controller"
	"studypulse_backend/internal/middleware"
	"studypulse_backend/internal/repository"
	"studypulse_backend/internal/service"
	"studypulse_backend/pkg/configwatcher"
	"studypulse_backend/pkg/database"
	"studypulse_backend/pkg/firebase"
	"studypulse_backend/pkg/genai"
	"studypulse_backend/pkg/logger"
	"studypulse_backend/pkg/monitoring"
	"studypulse_backend/pkg/security"
	"studypulse_backend/pkg/tracing"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	// ConfigPath 为空时不监听配置变更
	ConfigPath string

	verifier        middleware.TokenVerifier
	services        *services
	origins         *security.Origins
	limiter         *security.Limiter
	tracer          *sdktrace.TracerProvider
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type services struct {
	identity *service.IdentityService
	profile  *service.ProfileService
	content  *service.ContentService
	progress *service.ProgressService
	quiz     *service.QuizService
	storage  *service.StorageService
	ai       *service.AIService
}

type controllers struct {
	health   *controller.HealthController
	course   *controller.CourseController
	progress *controller.ProgressController
	quiz     *controller.QuizController
	tools    *controller.ToolsController
	profile  *controller.ProfileController
}

// RegisterConfigCallback 配置文件热更新后按注册顺序回调
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initServices(db *gorm.DB, rdb *redis.Client, ai genai.Client, cfg *config.Config) *services {
	content := service.NewContentService(repository.NewContentRepository(db), rdb, cfg.Redis.CacheTTL)
	storage := service.NewStorageService(&cfg.Storage)
	return &services{
		identity: service.NewIdentityService(db),
		profile:  service.NewProfileService(db),
		content:  content,
		progress: service.NewProgressService(db),
		quiz:     service.NewQuizService(db),
		storage:  storage,
		ai:       service.NewAIService(ai, cfg.AI, storage),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		health:   controller.NewHealthController(db, rdb),
		course:   controller.NewCourseController(s.content),
		progress: controller.NewProgressController(s.progress),
		quiz:     controller.NewQuizController(s.quiz),
		tools:    controller.NewToolsController(s.ai, a.Config.AI.MaxUploadMB),
		profile:  controller.NewProfileController(s.profile),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestIDMiddleware())
	router.Use(security.CORS(a.origins))
	router.Use(security.Secure())
	a.limiter = security.NewLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute,
		"/api/health", "/api/health/", "/metrics")
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// buildRouter 依赖 a.verifier 与 a.services 已初始化
func (a *App) buildRouter() *gin.Engine {
	if a.Config.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	// 同时注册带与不带结尾斜杠的路由，不做重定向
	router.RedirectTrailingSlash = false

	a.origins = security.NewOrigins(a.Config.CORS.AllowedOrigins)
	a.setupMiddlewares(router, a.Config)
	a.registerRoutes(router, a.initControllers(a.services, a.DB, a.Redis))

	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.origins.Set(cfg.CORS.AllowedOrigins)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.services.ai.SetMediaModels(cfg.AI.MediaModels)
	})
	return router
}

func newGenAIClient(cfg *config.AIConfig) (genai.Client, error) {
	switch cfg.Provider {
	case "openai":
		return genai.NewOpenAIClient(cfg.BaseURL, cfg.APIKey, &http.Client{}), nil
	default:
		return genai.NewGeminiClient(context.Background(), cfg.APIKey)
	}
}

func newVerifier(cfg *config.Config, rdb *redis.Client) (*firebase.Verifier, error) {
	var store firebase.RevocationStore = firebase.NewMemoryRevocationStore()
	if rdb != nil {
		store = firebase.NewRedisRevocationStore(rdb)
	}
	return firebase.NewVerifier(firebase.Config{
		ProjectID:   cfg.Firebase.ProjectID,
		JWKSURL:     cfg.Firebase.JWKSURL,
		HTTPClient:  &http.Client{Timeout: cfg.Firebase.Timeout},
		Revocations: store,
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.ForceMigrate || cfg.Server.Mode != "release" {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Log.Info("Database migrated")
	}

	app := &App{Config: cfg, DB: db}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			// 缓存与吊销检查降级为进程内实现
			logger.Log.Error("Failed to initialize redis, continuing without it", zap.Error(err))
		} else {
			app.Redis = rdb
		}
	}

	verifier, err := newVerifier(cfg, app.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize identity verifier", zap.Error(err))
	}
	app.verifier = verifier

	aiClient, err := newGenAIClient(&cfg.AI)
	if err != nil {
		logger.Log.Fatal("Failed to initialize AI client", zap.Error(err))
	}
	app.services = app.initServices(db, app.Redis, aiClient, cfg)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.Router = app.buildRouter()
	app.ConfigPath = filepath.Join("configs", "config.yaml")
	return app
}

// RunSeed 只初始化数据库与缓存并导入 YAML 内容文件，不依赖身份校验与 AI 配置
func RunSeed(ctx context.Context, cfg *config.Config, path string) (*service.SeedReport, error) {
	logger.InitLogger(cfg)

	catalog, err := service.LoadSeedCatalog(path)
	if err != nil {
		return nil, err
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		if rdb, err = database.InitRedis(&cfg.Redis); err != nil {
			logger.Log.Warn("Redis unavailable, catalog cache not invalidated", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	content := service.NewContentService(repository.NewContentRepository(db), rdb, cfg.Redis.CacheTTL)
	return service.NewSeedService(db, content).Seed(ctx, catalog)
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.ConfigPath != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.ConfigPath, a.applyConfig); err != nil {
				logger.Log.Warn("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	go a.limiter.Sweep(ctx, time.Minute)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
