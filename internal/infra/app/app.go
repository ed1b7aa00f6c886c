package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
	"github.com/Deaglesso/Second/internal/infra/config"
	"github.com/Deaglesso/Second/internal/infra/database"
	"github.com/Deaglesso/Second/internal/infra/email"
	kafkainfra "github.com/Deaglesso/Second/internal/infra/kafka"
	"github.com/Deaglesso/Second/internal/infra/logger"
	redisinfra "github.com/Deaglesso/Second/internal/infra/redis"
	"github.com/Deaglesso/Second/internal/infra/security"
	postgresrepo "github.com/Deaglesso/Second/internal/repository/postgres"
	redisrepo "github.com/Deaglesso/Second/internal/repository/redis"
	"github.com/Deaglesso/Second/internal/transport/http/middleware"
	"github.com/Deaglesso/Second/internal/transport/http/routes"
	"github.com/Deaglesso/Second/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	issuer, err := security.NewTokenIssuer(security.TokenIssuerOptions{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.AccessTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("init token issuer: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	revocationPolicy := domain.ParseRevocationPolicy(cfg.Redis.RevocationPolicy)
	revocationStore := redisrepo.NewRevocationRepository(redisClient.Client(), cfg.Redis.RevocationPrefix, revocationPolicy, log)

	repos := postgresrepo.NewRepositories(pool)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	var mailSender port.EmailSender
	if cfg.Email.Enabled {
		mailSender = email.NewSMTPSender(cfg.Email, log)
	} else {
		log.Info("email delivery disabled, logging outbound mail instead")
		mailSender = email.NewLogSender(log)
	}

	passwordValidator := security.DefaultPasswordValidator()

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "second:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Namespace: "second"})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	authService := usecase.NewAuthService(cfg, repos.Users, revocationStore, issuer, passwordValidator, mailSender, eventPublisher, log)
	productService := usecase.NewProductService(repos.Users, repos.Products, eventPublisher, log)
	chatService := usecase.NewChatService(repos.Products, repos.ChatRooms, repos.Messages)
	reportService := usecase.NewReportService(repos.Users, repos.Products, repos.Reports, eventPublisher, log)
	adminService := usecase.NewAdminService(repos.Users, log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:     authService,
			Products: productService,
			Chats:    chatService,
			Reports:  reportService,
			Admin:    adminService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting marketplace API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
