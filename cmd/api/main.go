package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/marketinghub/internal/config"
	"github.com/xavierca1/marketinghub/internal/entity"
	"github.com/xavierca1/marketinghub/internal/infra/cache"
	"github.com/xavierca1/marketinghub/internal/infra/database"
	"github.com/xavierca1/marketinghub/internal/infra/http/handlers"
	"github.com/xavierca1/marketinghub/internal/infra/http/middleware"
	"github.com/xavierca1/marketinghub/internal/infra/integration/googleads"
	"github.com/xavierca1/marketinghub/internal/infra/integration/metaads"
	"github.com/xavierca1/marketinghub/internal/infra/mail"
	"github.com/xavierca1/marketinghub/internal/infra/queue"
	"github.com/xavierca1/marketinghub/internal/infra/worker"
	"github.com/xavierca1/marketinghub/internal/usecase"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Banco
	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logger.WithError(err).Fatal("database migration failed")
	}

	leadRepo := database.NewLeadRepository(db)
	automationRepo := database.NewAutomationRepository(db)
	templateRepo := database.NewTemplateRepository(db)
	emailLogRepo := database.NewEmailLogRepository(db)
	tokenRepo := database.NewOAuthTokenRepository(db)
	campaignDataRepo := database.NewCampaignDataRepository(db)

	// 2. Fila e cache são opcionais: sem URL o serviço sobe sem eles.
	var (
		rabbitMQ  *queue.RabbitMQ
		publisher usecase.SweepPublisher
		broker    handlers.BrokerConn
	)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, sweep requests disabled")
		} else {
			defer rabbitMQ.Close()
			publisher = queue.NewProducer(rabbitMQ.Ch)
			broker = rabbitMQ
		}
	}

	var (
		campaignCache usecase.CampaignCache
		redisPinger   handlers.Pinger
	)
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewClient(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, campaign cache disabled")
		} else {
			defer redisClient.Close()
			campaignCache = redisClient
			redisPinger = redisClient
		}
	}

	// 3. Email
	transport := mail.NewTransport(mail.Config{
		Host:           cfg.Mail.Host,
		Port:           cfg.Mail.Port,
		User:           cfg.Mail.User,
		Password:       cfg.Mail.Password,
		From:           cfg.Mail.From,
		FromName:       cfg.Mail.FromName,
		SendGridAPIKey: cfg.Mail.SendGridAPIKey,
	}, logger)

	// 4. UseCases
	dispatcher := usecase.NewDispatcher(transport, emailLogRepo, cfg.Mail.From, cfg.Automation.SendTimeout)

	sweepUC := usecase.NewSweepAutomationsUseCase(automationRepo, leadRepo, emailLogRepo, dispatcher, logger)
	sweepUC.Location = cfg.Automation.Location
	sweepUC.TimeCatchUp = cfg.Automation.TimeCatchUp
	sweepUC.TenantConcurrency = cfg.Automation.TenantConcurrency
	sweepUC.Metrics = middleware.PrometheusRecorder{}

	leadUC := usecase.NewLeadUseCase(leadRepo, publisher, logger)
	automationUC := usecase.NewAutomationUseCase(automationRepo, templateRepo)
	templateUC := usecase.NewTemplateUseCase(templateRepo)
	triggerUC := usecase.NewTriggerAutomationUseCase(automationRepo, leadRepo, dispatcher, logger)

	platforms := map[entity.Platform]usecase.AdPlatform{
		entity.PlatformGoogleAds: googleads.NewClient(cfg.GoogleAds.ClientID, cfg.GoogleAds.ClientSecret, cfg.RedirectURL("google")),
		entity.PlatformMetaAds:   metaads.NewClient(cfg.MetaAds.ClientID, cfg.MetaAds.ClientSecret, cfg.RedirectURL("meta")),
	}
	campaignUC := usecase.NewCampaignMetricsUseCase(platforms, tokenRepo, campaignDataRepo, campaignCache, logger)
	connectUC := usecase.NewConnectPlatformUseCase(platforms, tokenRepo)

	// 5. Workers
	if rabbitMQ != nil {
		sweepWorker := queue.NewWorker(rabbitMQ.Ch, sweepUC, logger)
		go func() {
			if err := sweepWorker.Start(ctx, queue.QueueName); err != nil {
				logger.WithError(err).Error("sweep worker stopped")
			}
		}()
	}

	scheduler := worker.NewAutomationScheduler(sweepUC, logger, cfg.Automation.Location, 30*time.Minute)
	if err := scheduler.Schedule(cfg.Automation.Cron); err != nil {
		logger.WithError(err).Fatal("automation scheduler")
	}
	schedulerDone := make(chan struct{})
	go func() {
		scheduler.Start(ctx)
		close(schedulerDone)
	}()

	// 6. Handlers
	healthHandler := handlers.NewHealthHandler(db, broker, redisPinger)
	leadHandler := handlers.NewLeadHandler(leadUC, logger)
	automationHandler := handlers.NewAutomationHandler(automationUC, triggerUC, sweepUC, logger)
	templateHandler := handlers.NewTemplateHandler(templateUC, logger)
	campaignHandler := handlers.NewCampaignHandler(campaignUC, logger)
	oauthHandler := handlers.NewOAuthHandler(connectUC, cfg.SiteURL, logger)

	// 7. Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.SiteURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Auth(cfg.JWTSecret))
		api.Use(limiter.Middleware)

		api.Route("/leads", leadHandler.Routes)
		api.Route("/email-automations", automationHandler.Routes)
		api.Route("/email-templates", templateHandler.Routes)
		api.Route("/campaigns", campaignHandler.Routes)
		api.Route("/ads", oauthHandler.Routes)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("marketinghub api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}

	select {
	case <-schedulerDone:
	case <-shutdownCtx.Done():
		logger.WithFields(logrus.Fields{"timeout": "15s"}).Warn("automation sweep still running at exit")
	}
}
