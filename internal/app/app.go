package app

import (
	"context"
	"errors"
	"learning_system_backend/internal/config"
	"learning_system_backend/internal/controller"
	"learning_system_backend/internal/repository"
	"learning_system_backend/internal/service"
	"learning_system_backend/internal/util"
	"learning_system_backend/pkg/configwatcher"
	"learning_system_backend/pkg/database"
	"learning_system_backend/pkg/locker"
	"learning_system_backend/pkg/logger"
	"learning_system_backend/pkg/monitoring"
	"learning_system_backend/pkg/security"
	"learning_system_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
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

	services        *services
	tracer          *sdktrace.TracerProvider
	cancel          context.CancelFunc
	ctx             context.Context
	configCallbacks []configwatcher.Reloader
}

type repositories struct {
	user          *repository.UserRepository
	changeRequest *repository.ChangeRequestRepository
	syllabus      *repository.SyllabusRepository
	quiz          *repository.QuizRepository
	attempt       *repository.AttemptRepository
	weakArea      *repository.WeakAreaRepository
	chat          *repository.ChatRepository
}

type services struct {
	auth          *service.AuthService
	user          *service.UserService
	changeRequest *service.ChangeRequestService
	syllabus      *service.SyllabusService
	storage       *service.StorageService
	quiz          *service.QuizService
	weakArea      *service.WeakAreaService
	quizExport    *service.QuizExportService
	ai            *service.AIService
	chatHub       *service.ChatHub
	chat          *service.ChatService
}

type controllers struct {
	auth          *controller.AuthController
	user          *controller.UserController
	changeRequest *controller.ChangeRequestController
	syllabus      *controller.SyllabusController
	quiz          *controller.QuizController
	chat          *controller.ChatController
	health        *controller.HealthController
}

// RegisterConfigCallback runs callback with every configuration reloaded from disk.
func (a *App) RegisterConfigCallback(callback configwatcher.Reloader) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:          repository.NewUserRepository(db),
		changeRequest: repository.NewChangeRequestRepository(db),
		syllabus:      repository.NewSyllabusRepository(db),
		quiz:          repository.NewQuizRepository(db),
		attempt:       repository.NewAttemptRepository(db),
		weakArea:      repository.NewWeakAreaRepository(db),
		chat:          repository.NewChatRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.changeRequest = service.NewChangeRequestService(repos.changeRequest)
	s.syllabus = service.NewSyllabusService(repos.syllabus)
	s.storage = service.NewStorageService(cfg)

	s.quiz = service.NewQuizService(repos.quiz, repos.attempt)
	s.weakArea = service.NewWeakAreaService(
		repos.quiz,
		repos.attempt,
		repos.weakArea,
		locker.New(rdb, cfg.Analytics.LockTTL()),
		cfg.Analytics.LockWait(),
	)
	s.quizExport = service.NewQuizExportService(s.quiz, s.storage)

	s.ai = service.NewAIService(cfg.AI)
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.ai.Update(newCfg.AI)
	})

	s.chatHub = service.NewChatHub(rdb)
	go s.chatHub.Run(a.ctx)
	s.chat = service.NewChatService(repos.chat, repos.syllabus, s.chatHub, s.ai)

	return s
}

func (a *App) initControllers(s *services, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:          controller.NewAuthController(s.auth),
		user:          controller.NewUserController(s.user),
		changeRequest: controller.NewChangeRequestController(s.changeRequest),
		syllabus:      controller.NewSyllabusController(s.syllabus),
		quiz:          controller.NewQuizController(s.quiz, s.weakArea, s.quizExport, cfg.Quiz),
		chat:          controller.NewChatController(s.chat, s.chatHub),
		health:        controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// newApp wires repositories, services, controllers and routes on top of an
// already opened database.
func newApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		ctx:    ctx,
		cancel: cancel,
	}
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
	})

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(app.services, cfg, db, rdb)

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode != gin.TestMode {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	monitoring.Init()

	app := newApp(cfg, db, rdb)

	if cfg.MigrateOnly {
		return app
	}

	if err := app.services.auth.EnsureAdmin(); err != nil {
		logger.Log.Fatal("Failed to ensure default admin", zap.Error(err))
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("learning-system", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	if cfg.Path != "" {
		watcher := configwatcher.New(cfg.Path)
		for _, cb := range app.configCallbacks {
			watcher.OnChange(cb)
		}
		go func() {
			if err := watcher.Run(app.ctx); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	return app
}

// Close stops background work and releases connections.
func (a *App) Close() {
	a.cancel()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close()
	logger.Log.Info("Server exiting")
}
