package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harsh11x/pulsecal.web-sub000/config"
	deliveryHttp "github.com/harsh11x/pulsecal.web-sub000/internal/delivery/http"
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/http/handler"
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/http/middleware"
	"github.com/harsh11x/pulsecal.web-sub000/internal/infrastructure/cache"
	"github.com/harsh11x/pulsecal.web-sub000/internal/infrastructure/database"
	"github.com/harsh11x/pulsecal.web-sub000/internal/repository"
	"github.com/harsh11x/pulsecal.web-sub000/internal/service"
	"github.com/harsh11x/pulsecal.web-sub000/internal/usecase"
	"github.com/harsh11x/pulsecal.web-sub000/internal/ws"
	"github.com/harsh11x/pulsecal.web-sub000/pkg/jwt"
	"github.com/harsh11x/pulsecal.web-sub000/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Hub         *ws.Hub
	Locker      *service.ScopeLocker
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	// Apply schema migrations before opening the pool
	if err := database.RunMigrations(cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	app.initializeServer()

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initializeServer wires every layer and configures the HTTP server
func (app *App) initializeServer() {
	cfg := app.Config
	db := app.DB
	redisClient := app.RedisClient
	log := logrus.StandardLogger()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Realtime hub and coordination services
	hub := ws.NewHub(log)
	notifier := service.NewNotifier(hub)
	locker := service.NewScopeLocker(redisClient, log, cfg.Queue.LockTTL)
	app.Hub = hub
	app.Locker = locker

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	patientProfileRepo := repository.NewPatientProfileRepository()
	queueRepo := repository.NewQueueRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	chatRepo := repository.NewChatRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, doctorProfileRepo, patientProfileRepo, auditService, jwtService, redisClient)
	doctorUsecase := usecase.NewDoctorUsecase(db, log, doctorProfileRepo, auditService)
	availabilityUsecase := usecase.NewAvailabilityUsecase(db, log, doctorProfileRepo, appointmentRepo)
	queueUsecase := usecase.NewQueueUsecase(db, log, queueRepo, doctorProfileRepo, locker, auditService, notifier, cfg.Queue.MinutesPerPatient)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, doctorProfileRepo, auditService, notifier)
	chatUsecase := usecase.NewChatUsecase(db, log, chatRepo, notifier)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator, jwtService)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, availabilityUsecase, customValidator)
	queueHandler := handler.NewQueueHandler(queueUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	chatHandler := handler.NewChatHandler(chatUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)
	wsHandler := handler.NewWSHandler(hub, jwtService, redisClient, queueUsecase, chatUsecase, log, cfg.WS.SendBuffer)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.AllowedOrigin)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		doctorHandler,
		queueHandler,
		appointmentHandler,
		chatHandler,
		auditLogHandler,
		wsHandler,
		authMiddleware,
		corsMiddleware,
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	app.Server = &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}
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

// Close releases the realtime hub, lock manager, and connections
func (app *App) Close() {
	// Disconnect websocket clients
	if app.Hub != nil {
		app.Hub.Shutdown()
	}

	// Stop the lock janitor
	if app.Locker != nil {
		app.Locker.Stop()
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
