package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medibook/config"
	deliveryHttp "medibook/internal/delivery/http"
	"medibook/internal/delivery/http/handler"
	"medibook/internal/delivery/http/middleware"
	"medibook/internal/infrastructure/cache"
	"medibook/internal/service"
	"medibook/internal/usecase"
	"medibook/pkg/jwt"
	"medibook/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	Storage     *Storage
	RedisClient *redis.Client
	Server      *http.Server

	locker *service.RedisSlotLocker
}

// New creates a new App instance with all dependencies initialized
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := SetupLogger(cfg.Log, cfg.App.Env)
	log.Info("Configuration loaded successfully")

	app := &App{Config: cfg, Log: log}

	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Storage = storage
	log.Infof("Database connected successfully (driver=%s)", cfg.DB.Driver)

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	app.Server = app.initializeServer()
	return app, nil
}

// initializeServer wires services, usecases and handlers into the HTTP server
func (app *App) initializeServer() *http.Server {
	cfg, log, storage := app.Config, app.Log, app.Storage

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Services
	sessions := service.NewRedisSessionStore(app.RedisClient)
	availabilityCache := service.NewRedisAvailabilityCache(app.RedisClient, log, cfg.Booking.AvailabilityTTL)
	app.locker = service.NewRedisSlotLocker(app.RedisClient, log, cfg.Booking.LockTTL)
	auditService := service.NewAuditService(log, storage.AuditLogs)

	// Usecases
	authUsecase := usecase.NewAuthUsecase(log, storage.Users, sessions, jwtService, auditService)
	doctorUsecase := usecase.NewDoctorUsecase(log, storage.Users, auditService)
	availabilityUsecase := usecase.NewAvailabilityUsecase(log, storage.Users, storage.Availability, storage.Bookings, availabilityCache, auditService)
	bookingUsecase := usecase.NewBookingUsecase(log, storage.Users, storage.Bookings, storage.Availability, app.locker, availabilityCache, auditService)
	reportUsecase := usecase.NewReportUsecase(log, storage.Bookings)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, storage.AuditLogs)

	// Handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)
	doctorScheduleHandler := handler.NewDoctorScheduleHandler(availabilityUsecase, customValidator)
	bookingHandler := handler.NewBookingHandler(bookingUsecase, customValidator)
	adminHandler := handler.NewAdminHandler(authUsecase, reportUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, sessions, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins)

	router := deliveryHttp.NewRouter(
		log,
		authHandler,
		doctorHandler,
		doctorScheduleHandler,
		bookingHandler,
		adminHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
	)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and blocks until shutdown
func (app *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
		app.Log.Errorf("Server failed: %v", serveErr)
	}

	app.shutdown()
	return serveErr
}

func (app *App) shutdown() {
	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()
	app.Log.Info("Server shutdown complete")
}

// Close releases every connection held by the app
func (app *App) Close() {
	if app.locker != nil {
		app.locker.Stop()
	}
	if app.Storage != nil {
		app.Storage.Close()
	}
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

// SeedAdmin creates an admin account directly in storage.
func SeedAdmin(ctx context.Context, email, password, fullName string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := SetupLogger(cfg.Log, cfg.App.Env)

	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer storage.Close()

	// account creation never touches sessions or tokens
	authUsecase := usecase.NewAuthUsecase(log, storage.Users, nil, nil, service.NewAuditService(log, storage.AuditLogs))
	admin, err := authUsecase.CreateAdmin(ctx, email, password, fullName)
	if err != nil {
		return err
	}

	log.Infof("Admin %s created with id %s", admin.Email, admin.ID)
	return nil
}
