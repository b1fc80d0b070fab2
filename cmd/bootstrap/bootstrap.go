package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/config"
	deliveryHttp "github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/http"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/http/handler"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/http/middleware"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/infrastructure/cache"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/infrastructure/database"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/infrastructure/messaging"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/infrastructure/payment"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/infrastructure/storage"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/repository"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/service"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/usecase"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/jwt"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/metrics"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/validator"

	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	MinioClient *minio.Client
	KafkaWriter *kafka.Writer
	Server      *http.Server

	slotLocker     *service.SlotLocker
	publisher      *service.OutboxPublisher
	stopBackground context.CancelFunc
	backgroundCtx  context.Context
	backgroundDone chan struct{}
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

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Timezone)
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

	// Initialize media storage
	minioClient, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	app.MinioClient = minioClient

	// Kafka is optional; without brokers events stay in the outbox
	if len(cfg.Kafka.Brokers) > 0 {
		app.KafkaWriter = messaging.NewKafkaWriter(cfg.Kafka)
		logrus.Infof("Kafka writer configured for topic %s", cfg.Kafka.Topic)
	} else {
		logrus.Warn("No Kafka brokers configured, outbox publishing disabled")
	}

	// Initialize all layers
	if err := app.initializeServer(); err != nil {
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer() error {
	cfg := app.Config
	loc := cfg.App.Location()

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize metrics
	collector := metrics.NewCollector("vespera")

	// Initialize repositories
	tx := database.NewTransactor(app.DB)
	userRepo := repository.NewUserRepository()
	hospitalRepo := repository.NewHospitalRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	patientProfileRepo := repository.NewPatientProfileRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	bookedSlotRepo := repository.NewBookedSlotRepository()
	customSlotRepo := repository.NewCustomSlotRepository()
	reviewRepo := repository.NewReviewRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Initialize collaborators
	mediaStorage := storage.NewMinioStorage(app.MinioClient, cfg.Storage, log)
	paymentGateway := payment.NewStripeGateway(cfg.Payment, log)

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	eventRecorder := service.NewEventRecorder(outboxRepo)
	app.slotLocker = service.NewSlotLocker(log)
	slotCache := service.NewRedisSlotCache(tx, bookedSlotRepo, app.RedisClient, log, loc)

	var writer service.MessageWriter
	if app.KafkaWriter != nil {
		writer = app.KafkaWriter
	}
	app.publisher = service.NewOutboxPublisher(tx, outboxRepo, writer, log, service.OutboxPublisherConfig{
		PollEvery: cfg.Kafka.PollInterval,
		BatchSize: cfg.Kafka.BatchSize,
	})

	app.backgroundCtx, app.stopBackground = context.WithCancel(context.Background())

	syncCtx, cancelSync := context.WithTimeout(app.backgroundCtx, 30*time.Second)
	defer cancelSync()
	if err := slotCache.SyncOnStartup(syncCtx); err != nil {
		// Availability reads fall back to Postgres while the cache is cold
		log.Warnf("Failed to sync slot cache on startup: %+v", err)
	}

	// Initialize usecases
	bookingUsecase := usecase.NewBookingUsecase(tx, log, userRepo, doctorProfileRepo, patientProfileRepo, appointmentRepo, bookedSlotRepo, customSlotRepo, mediaStorage, app.slotLocker, slotCache, auditService, eventRecorder, collector, loc)
	calendarUsecase := usecase.NewSlotCalendarUsecase(tx, log, doctorProfileRepo, bookedSlotRepo, customSlotRepo, slotCache, auditService, loc)
	appointmentUsecase := usecase.NewAppointmentUsecase(tx, log, appointmentRepo, bookedSlotRepo, slotCache, auditService, eventRecorder, collector, loc)
	ratingUsecase := usecase.NewRatingUsecase(tx, log, appointmentRepo, doctorProfileRepo, reviewRepo, auditService, eventRecorder, collector)
	paymentUsecase := usecase.NewPaymentUsecase(tx, log, appointmentRepo, paymentGateway, auditService, eventRecorder, collector)
	dashboardUsecase := usecase.NewDashboardUsecase(tx, log, appointmentRepo, doctorProfileRepo, cfg.Booking.PlatformShare)
	doctorUsecase := usecase.NewDoctorUsecase(tx, log, doctorProfileRepo, bookedSlotRepo, customSlotRepo, reviewRepo, auditService, loc)
	hospitalUsecase := usecase.NewHospitalUsecase(tx, log, hospitalRepo, doctorProfileRepo, auditService)
	adminUsecase := usecase.NewAdminUsecase(tx, log, hospitalRepo, doctorProfileRepo, auditService)
	patientUsecase := usecase.NewPatientUsecase(tx, log, userRepo, patientProfileRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(tx, log, auditLogRepo)

	// Initialize handlers
	bookingHandler := handler.NewBookingHandler(bookingUsecase, ratingUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase)
	paymentHandler := handler.NewPaymentHandler(paymentUsecase, customValidator)
	slotHandler := handler.NewSlotHandler(calendarUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)
	hospitalHandler := handler.NewHospitalHandler(hospitalUsecase, customValidator)
	adminHandler := handler.NewAdminHandler(adminUsecase)
	patientHandler := handler.NewPatientHandler(patientUsecase, customValidator)
	dashboardHandler := handler.NewDashboardHandler(dashboardUsecase)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	corsMiddleware := middleware.NewCORSMiddleware()
	metricsMiddleware := middleware.NewMetricsMiddleware(collector)
	bookingLimiter := middleware.NewRateLimiter(cfg.Booking.RateLimit, cfg.Booking.RateBurst)

	// Initialize router
	router := deliveryHttp.NewRouter(
		bookingHandler,
		appointmentHandler,
		paymentHandler,
		slotHandler,
		doctorHandler,
		hospitalHandler,
		adminHandler,
		patientHandler,
		dashboardHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		metricsMiddleware,
		bookingLimiter,
		collector.Handler(),
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	app.Server = &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start outbox relay
	app.backgroundDone = make(chan struct{})
	go func() {
		defer close(app.backgroundDone)
		app.publisher.Run(app.backgroundCtx)
	}()

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

// Close stops background workers, then closes connections (database, redis, kafka)
func (app *App) Close() {
	if app.stopBackground != nil {
		app.stopBackground()
	}
	if app.backgroundDone != nil {
		<-app.backgroundDone
	}
	if app.slotLocker != nil {
		app.slotLocker.Stop()
	}

	// Close Kafka writer
	if app.KafkaWriter != nil {
		if err := app.KafkaWriter.Close(); err != nil {
			logrus.Warnf("Failed to close kafka writer: %v", err)
		}
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
