package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dental-booking/config"
	"dental-booking/internal/calendar"
	deliveryHttp "dental-booking/internal/delivery/http"
	"dental-booking/internal/delivery/http/handler"
	"dental-booking/internal/delivery/http/middleware"
	domainRepo "dental-booking/internal/domain/repository"
	"dental-booking/internal/infrastructure/cache"
	"dental-booking/internal/infrastructure/database"
	"dental-booking/internal/infrastructure/mailer"
	"dental-booking/internal/infrastructure/metrics"
	"dental-booking/internal/repository"
	"dental-booking/internal/service"
	"dental-booking/internal/usecase"
	"dental-booking/pkg/clock"
	"dental-booking/pkg/jwt"
	"dental-booking/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Sweep       *service.SweepService
	SlotLocks   *service.SlotLockService
	Log         *logrus.Logger
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
	log := setupLogger(cfg.App.LogLevel)
	app.Log = log
	log.Info("Configuration loaded successfully")

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(cfg.DB); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Database migrations applied")
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, database.GormLogLevel(log.GetLevel()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	// Redis is optional: without it logout is unavailable, the sweep dedup
	// falls back to memory and there is no cross-instance leader lease.
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
	} else {
		log.Warn("REDIS_HOST is not set, running without Redis")
	}

	if err := app.initialize(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	return logrus.StandardLogger()
}

// initialize wires every layer and builds the HTTP server and the sweep
func (app *App) initialize() error {
	cfg := app.Config
	log := app.Log
	clk := clock.Real()

	policy, err := calendar.LoadPolicy(cfg.Clinic.Timezone, cfg.Clinic.AllowCloseHourBooking)
	if err != nil {
		return fmt.Errorf("failed to load clinic calendar: %w", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	schedulingMetrics := metrics.NewSchedulingMetrics(registry)

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository(app.DB)
	serviceRepo := repository.NewServiceRepository(app.DB)
	appointmentRepo := repository.NewAppointmentRepository(app.DB)
	auditLogRepo := repository.NewAuditLogRepository(app.DB)

	// Initialize services
	sender := mailer.NewSender(cfg.Mail, log)
	notifier, err := service.NewNotificationService(sender, cfg.Clinic.Name, log, schedulingMetrics)
	if err != nil {
		return fmt.Errorf("failed to load email templates: %w", err)
	}
	auditService := service.NewAuditService(log, auditLogRepo)
	app.SlotLocks = service.NewSlotLockService(log, clk)

	// Initialize usecases
	availabilityUsecase := usecase.NewAvailabilityUsecase(log, policy, appointmentRepo)
	appointmentUsecase := usecase.NewAppointmentUsecase(
		log, policy, clk,
		appointmentRepo, serviceRepo, userRepo,
		availabilityUsecase, app.SlotLocks, notifier, auditService, schedulingMetrics,
		usecase.AppointmentOptions{
			MinDaysAhead:      cfg.Booking.MinDaysAhead,
			StrictTransitions: cfg.Booking.StrictTransitions,
		},
	)
	serviceUsecase := usecase.NewServiceUsecase(log, serviceRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo)
	authUsecase := usecase.NewAuthUsecase(log, userRepo, app.RedisClient, clk)

	if cfg.Sweep.Enabled {
		app.Sweep = app.newSweep(policy, clk, appointmentRepo, notifier, auditService, schedulingMetrics)
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityUsecase, customValidator)
	serviceHandler := handler.NewServiceHandler(serviceUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, app.RedisClient, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler, appointmentHandler, availabilityHandler, serviceHandler, auditLogHandler,
		authMiddleware, corsMiddleware,
	)
	if cfg.Metrics.Enabled {
		router.WithMetrics(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	// Create server
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

func (app *App) newSweep(
	policy *calendar.Policy,
	clk clock.Clock,
	appointmentRepo domainRepo.AppointmentRepository,
	notifier service.Notifier,
	audit service.AuditService,
	m *metrics.SchedulingMetrics,
) *service.SweepService {
	cfg := app.Config.Sweep

	var dedup service.DedupStore
	var locker service.Locker
	if app.RedisClient != nil {
		locker = service.NewLockerService(app.RedisClient, app.Log)
	}
	switch {
	case cfg.DedupBackend == "redis" && app.RedisClient != nil:
		dedup = service.NewRedisDedupStore(app.RedisClient, cfg.DedupTTL)
	default:
		if cfg.DedupBackend == "redis" {
			app.Log.Warn("SWEEP_DEDUP_BACKEND=redis but Redis is not configured, using in-memory dedup")
		}
		dedup = service.NewMemoryDedupStore()
	}

	return service.NewSweepService(
		app.Log, appointmentRepo, notifier, dedup, locker, audit, policy, clk, m,
		service.SweepOptions{
			CronSpec:      cfg.CronSpec,
			LockTTL:       cfg.LockTTL,
			IncludeGuests: cfg.IncludeGuests,
		},
	)
}

// Run starts the HTTP server and the sweep, and blocks until a shutdown
// signal arrives or the server fails.
func (app *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if app.Sweep != nil {
		app.Sweep.Start(gctx)
	}

	g.Go(func() error {
		<-gctx.Done()
		app.Log.Info("Shutting down server...")

		// Create shutdown context with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if app.Sweep != nil {
			app.Sweep.Stop()
		}
		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			app.Log.Errorf("Server forced to shutdown: %v", err)
		}
		return nil
	})

	err := g.Wait()
	app.Close()
	app.Log.Info("Server shutdown complete")
	return err
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.SlotLocks != nil {
		app.SlotLocks.Stop()
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
