package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/auth"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/config"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/db"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/health"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/logger"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/messaging"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/metrics"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/middleware"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/reservation"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/telemetry"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/user"

	"github.com/go-chi/chi/v5"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type App struct {
	config        *config.Config
	router        chi.Router
	server        *http.Server
	logger        *slog.Logger
	meterProvider *sdkmetric.MeterProvider
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, ServiceVersion)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	ctx := context.Background()

	// Without a collector the periodic reader just fails to export; the
	// service itself keeps running either way
	if meterProvider, err := telemetry.InitMeterProvider(ctx, ServiceName, ServiceVersion, slogLogger); err != nil {
		slogLogger.Warn("failed to initialize OTel meter provider, metrics will not be exported", "error", err)
	} else {
		app.meterProvider = meterProvider
	}

	m, err := metrics.New(ctx, ServiceName, slogLogger)
	if err != nil {
		log.Fatal("failed to initialize metrics:", err)
	}

	database, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := m.RegisterDB(database.DB); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}

	if err := runMigrations(ctx, database); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Health endpoints
	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	// Registration and signin
	userRepo := user.NewRepository(database, m)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService, slogLogger, m)
	userHandler.RegisterRoutes(app.router)

	authService := auth.NewService(userRepo)
	authHandler := auth.NewHandler(authService, slogLogger)
	authHandler.RegisterRoutes(app.router)

	// NATS producer is optional; the reservation workflow degrades to not
	// publishing loan-created events when it is unavailable
	var producer reservation.Producer
	if natsProducer, err := newProducer(cfg, slogLogger, m); err != nil {
		slogLogger.Warn("failed to initialize NATS producer", "error", err)
	} else {
		producer = natsProducer
	}

	// Reservation lifecycle, behind the JWT guard
	reservationService := reservation.NewService(database, producer, slogLogger, m)
	reservationHandler := reservation.NewHandler(reservationService, slogLogger, m)
	app.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(slogLogger))
		reservationHandler.RegisterRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app
}

func newProducer(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*messaging.Producer, error) {
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("nats url not configured")
	}
	return messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, logger, m)
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")
	if err := a.server.Shutdown(ctx); err != nil {
		return err
	}
	if a.meterProvider != nil {
		if err := telemetry.Shutdown(ctx, a.meterProvider, a.logger); err != nil {
			a.logger.Warn("failed to shutdown meter provider", "error", err)
		}
	}
	return nil
}
