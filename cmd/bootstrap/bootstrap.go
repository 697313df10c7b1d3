package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediconnect/config"
	deliveryHttp "mediconnect/internal/delivery/http"
	domainRepo "mediconnect/internal/domain/repository"
	"mediconnect/internal/delivery/http/handler"
	"mediconnect/internal/delivery/http/middleware"
	"mediconnect/internal/infrastructure/cache"
	"mediconnect/internal/infrastructure/database"
	"mediconnect/internal/infrastructure/functions"
	"mediconnect/internal/infrastructure/realtime"
	"mediconnect/internal/infrastructure/storage"
	"mediconnect/internal/repository"
	"mediconnect/internal/service"
	"mediconnect/internal/usecase"
	"mediconnect/pkg/jwt"
	"mediconnect/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	CartStore   *service.CartStore
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	setupLogger(cfg.App.LogLevel)
	config.WatchLogLevel(setLogLevel)
	logrus.Info("Configuration loaded successfully")

	// Apply schema migrations before the pool is opened
	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(cfg.DB); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	if err := app.initializeServer(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	setLogLevel(level)
}

func setLogLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", level)
		parsed = logrus.InfoLevel
	}
	if parsed != logrus.GetLevel() {
		logrus.SetLevel(parsed)
		logrus.Infof("Log level set to %s", parsed)
	}
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer() error {
	cfg, db, redisClient := app.Config, app.DB, app.RedisClient

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize stores
	tokenStore := cache.NewTokenStore(redisClient)
	broker := newBroker(cfg.App.RealtimeBroker, redisClient, log)
	blobStore, err := storage.NewLocalBlobStore(cfg.Storage.Root)
	if err != nil {
		return fmt.Errorf("failed to open blob storage: %w", err)
	}
	functionsClient := functions.NewClient(cfg.Functions)
	app.CartStore = service.NewCartStore(cache.NewKeyValueStore(redisClient), log, cfg.Shop.ShippingFee, cfg.Shop.CartTTL)

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	profileRepo := repository.NewProfileRepository()
	documentRepo := repository.NewMedicalDocumentRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	consultationRepo := repository.NewConsultationRepository()
	communityRepo := repository.NewCommunityRepository()
	messageRepo := repository.NewMessageRepository()
	notificationRepo := repository.NewNotificationRepository()
	productRepo := repository.NewProductRepository(db)
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)

	// Initialize usecases
	sessionUsecase := usecase.NewSessionUsecase(db, log, userRepo, profileRepo, auditService)
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, profileRepo, auditService, jwtService, tokenStore, sessionUsecase)
	profileUsecase := usecase.NewProfileUsecase(db, log, profileRepo, sessionUsecase, auditService)
	documentUsecase := usecase.NewDocumentUsecase(db, log, documentRepo, profileRepo, auditService, blobStore, cfg.Storage.DocumentBucket, cfg.Storage.MaxUploadBytes)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, profileRepo, auditService, broker)
	consultationUsecase := usecase.NewConsultationUsecase(db, log, consultationRepo, appointmentRepo, profileRepo, functionsClient, broker)
	communityUsecase := usecase.NewCommunityUsecase(db, log, communityRepo, profileRepo, broker)
	messageUsecase := usecase.NewMessageUsecase(db, log, messageRepo, notificationRepo, profileRepo, broker)
	notificationUsecase := usecase.NewNotificationUsecase(db, log, notificationRepo)
	productUsecase := usecase.NewProductUsecase(db, log, productRepo, auditService)
	cartUsecase := usecase.NewCartUsecase(log, productRepo, app.CartStore, functionsClient, cfg.Shop.Currency)
	adminUsecase := usecase.NewAdminUsecase(db, log, profileRepo, appointmentRepo, documentRepo, communityRepo, productRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)
	assistantUsecase := usecase.NewAssistantUsecase(log, functionsClient)

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Auth:         handler.NewAuthHandler(authUsecase, customValidator, jwtService),
		Session:      handler.NewSessionHandler(),
		Profile:      handler.NewProfileHandler(profileUsecase, customValidator),
		Document:     handler.NewDocumentHandler(documentUsecase, log, cfg.Storage.MaxUploadBytes),
		Appointment:  handler.NewAppointmentHandler(appointmentUsecase, customValidator),
		Consultation: handler.NewConsultationHandler(consultationUsecase, customValidator),
		Community:    handler.NewCommunityHandler(communityUsecase, customValidator),
		Message:      handler.NewMessageHandler(messageUsecase, notificationUsecase, customValidator),
		Product:      handler.NewProductHandler(productUsecase, customValidator),
		Cart:         handler.NewCartHandler(cartUsecase, customValidator),
		Admin:        handler.NewAdminHandler(adminUsecase, auditLogUsecase),
		Assistant:    handler.NewAssistantHandler(assistantUsecase, customValidator),
		Realtime:     handler.NewRealtimeHandler(broker, log),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore, log)
	roleMiddleware := middleware.NewRoleMiddleware(sessionUsecase)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.AllowedOrigins...)

	// Initialize router
	router := deliveryHttp.NewRouter(handlers, authMiddleware, roleMiddleware, corsMiddleware)

	// Create server. No write timeout: realtime streams stay open.
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return nil
}

type changeBroker interface {
	domainRepo.ChangePublisher
	domainRepo.ChangeSubscriber
}

func newBroker(kind string, redisClient *redis.Client, log *logrus.Logger) changeBroker {
	if kind == "memory" {
		log.Info("Realtime changes are delivered in-process only")
		return realtime.NewMemoryBroker()
	}
	return realtime.NewRedisBroker(redisClient, log)
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close stops background workers and closes all connections
func (app *App) Close() {
	if app.CartStore != nil {
		app.CartStore.Stop()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
