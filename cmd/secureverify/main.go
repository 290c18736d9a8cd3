package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/boltdb/bolt"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/secureverify/internal/access"
	"github.com/richxcame/secureverify/internal/auth"
	"github.com/richxcame/secureverify/internal/intake"
	"github.com/richxcame/secureverify/internal/notifications"
	"github.com/richxcame/secureverify/internal/sessionstore"
	"github.com/richxcame/secureverify/internal/verification"
	"github.com/richxcame/secureverify/pkg/common"
	"github.com/richxcame/secureverify/pkg/config"
	"github.com/richxcame/secureverify/pkg/eventbus"
	"github.com/richxcame/secureverify/pkg/health"
	"github.com/richxcame/secureverify/pkg/logger"
	"github.com/richxcame/secureverify/pkg/middleware"
	redisclient "github.com/richxcame/secureverify/pkg/redis"
	"go.uber.org/zap"
)

const (
	serviceName     = "secureverify"
	serviceVersion  = "1.0.0"
	shutdownTimeout = 15 * time.Second
)

// dependencies are the opened backends the router reports health for
type dependencies struct {
	redis *redisclient.Client
	bolt  *bolt.DB
	bus   *eventbus.Bus
}

// handlers groups every HTTP surface of the service
type handlers struct {
	auth          *auth.Handler
	verification  *verification.Handler
	notifications *notifications.Handler
}

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Starting secureverify service",
		zap.String("version", serviceVersion),
		zap.String("session_store", cfg.Session.Store))

	deps, err := openDependencies(cfg)
	if err != nil {
		logger.Fatal("Failed to open dependencies", zap.Error(err))
	}
	defer deps.close()

	store, err := sessionstore.New(cfg.Session, sessionstore.Backends{Redis: deps.redis, Bolt: deps.bolt})
	if err != nil {
		logger.Fatal("Failed to create session store", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inbox := notifications.NewService(cfg.Verification.InboxSize)
	if err := notifications.NewEventHandler(inbox).RegisterSubscriptions(ctx, deps.bus); err != nil {
		logger.Fatal("Failed to subscribe notifications", zap.Error(err))
	}

	verificationService := verification.NewService(store, deps.bus, cfg)
	authService := auth.NewService(auth.NewRepository(), cfg.JWT)

	h := handlers{
		auth:          auth.NewHandler(authService),
		verification:  verification.NewHandler(verificationService, access.NewAuthorizer(), intake.NewFileRules(cfg.Verification)),
		notifications: notifications.NewHandler(inbox),
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg, deps, h)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

func openDependencies(cfg *config.Config) (*dependencies, error) {
	deps := &dependencies{}

	switch cfg.Session.Store {
	case config.StoreRedis:
		client, err := redisclient.NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		deps.redis = client
		logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.RedisAddr()))
	case config.StoreBolt:
		db, err := sessionstore.OpenBolt(cfg.Session.BoltPath)
		if err != nil {
			return nil, err
		}
		deps.bolt = db
		logger.Info("Opened bolt session store", zap.String("path", cfg.Session.BoltPath))
	}

	bus, err := eventbus.New(cfg.NATS.URL, cfg.NATS.Source)
	if err != nil {
		deps.close()
		return nil, err
	}
	deps.bus = bus
	if cfg.NATS.URL == "" {
		logger.Info("NATS_URL not set, using in-process event bus")
	} else {
		logger.Info("Connected to NATS", zap.String("url", cfg.NATS.URL))
	}

	return deps, nil
}

func (d *dependencies) close() {
	if d.bus != nil {
		if err := d.bus.Close(); err != nil {
			logger.Warn("Failed to close event bus", zap.Error(err))
		}
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			logger.Warn("Failed to close Redis", zap.Error(err))
		}
	}
	if d.bolt != nil {
		if err := d.bolt.Close(); err != nil {
			logger.Warn("Failed to close bolt database", zap.Error(err))
		}
	}
}

// healthChecks returns one readiness check per opened dependency
func (d *dependencies) healthChecks() map[string]func() error {
	checks := make(map[string]func() error)

	storage := make(map[string]health.Checker)
	if d.redis != nil {
		storage["redis"] = health.NewCachedChecker(health.RedisChecker(d.redis.Client), 5*time.Second).Check
	}
	if d.bolt != nil {
		storage["bolt"] = health.AsyncChecker(health.BoltChecker(d.bolt), 2*time.Second)
	}
	if len(storage) > 0 {
		checks["session_store"] = health.CompositeChecker("session_store", storage)
	}

	if d.bus != nil {
		checks["eventbus"] = health.ConnectionChecker("eventbus", d.bus)
	}
	return checks
}

func setupRouter(cfg *config.Config, deps *dependencies, h handlers) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(serviceName))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitOrigins(cfg.Server.CORSOrigins)
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Accept-Language", middleware.CorrelationIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.CorrelationIDHeader}
	router.Use(cors.New(corsConfig))

	maxBody := int64(cfg.Server.MaxBodySizeMB) * 1024 * 1024
	if maxBody <= 0 {
		maxBody = 1024 * 1024
	}
	router.Use(middleware.MaxBodySize(maxBody))

	router.GET("/healthz", common.HealthCheck(serviceName, serviceVersion))
	router.GET("/health/ready", common.HealthCheckWithDeps(serviceName, serviceVersion, deps.healthChecks()))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.auth.RegisterRoutes(router, cfg.JWT.Secret)
	h.verification.RegisterRoutes(router, cfg.JWT.Secret)
	h.notifications.RegisterRoutes(router, cfg.JWT.Secret)

	return router
}

func splitOrigins(origins string) []string {
	var out []string
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
