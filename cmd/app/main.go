package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"org-subscription-saas/internal/config"
	"org-subscription-saas/internal/domain/ports/adapter"
	aiAdapters "org-subscription-saas/internal/infra/adapters/ai"
	mailAdapters "org-subscription-saas/internal/infra/adapters/mail"
	payAdapters "org-subscription-saas/internal/infra/adapters/payment"
	pg "org-subscription-saas/internal/infra/db/postgres"
	httpapi "org-subscription-saas/internal/infra/http"
	"org-subscription-saas/internal/infra/ipallow"
	"org-subscription-saas/internal/infra/logging"
	"org-subscription-saas/internal/infra/metrics"
	red "org-subscription-saas/internal/infra/redis"
	"org-subscription-saas/internal/infra/sched"
	"org-subscription-saas/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop gateway, webhook ip bypass)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	tm := pg.NewTxManager(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	pendingRepo := red.NewPendingPaymentRepo(redisClient, cfg.Redis.TTL)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	paymentRepo := pg.NewPaymentRepo(pool)
	orgRepo := pg.NewOrganizationRepo(pool)
	tariffRepo := pg.NewTariffRepo(pool)
	notificationRepo := pg.NewNotificationRepo(pool)

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev && cfg.Payment.YooKassa.ShopID == "" {
		gateway = payAdapters.NewNoopPaymentGateway()
		logger.Warn().Msg("payment gateway: noop (dev)")
	} else {
		gateway, err = payAdapters.NewYooKassaGateway(
			cfg.Payment.YooKassa.ShopID,
			cfg.Payment.YooKassa.SecretKey,
			cfg.Payment.YooKassa.ReturnURL,
			cfg.Payment.YooKassa.Sandbox,
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("yookassa gateway")
		}
		logger.Info().Bool("sandbox", cfg.Payment.YooKassa.Sandbox).Msg("payment gateway: yookassa")
	}

	// ---- Mailer ----
	var mailer adapter.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mailAdapters.NewSMTPMailer(&cfg.SMTP, logger)
	} else {
		mailer = mailAdapters.NewNoopMailer(logger)
		logger.Warn().Msg("mailer: noop (smtp.host not set)")
	}

	// ---- Chat model ----
	var chat adapter.ChatModel
	if cfg.AI.OpenAIKey != "" {
		chat, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
	} else {
		chat = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("chat model: noop (ai.openai_key not set)")
	}

	// ---- Use cases ----
	notifUC := usecase.NewNotificationUseCase(notificationRepo, orgRepo, mailer, cfg.SMTP.AdminEmail, logger)
	reconcileUC := usecase.NewReconcileUseCase(paymentRepo, orgRepo, gateway, tm, notifUC, logger)
	checkoutUC := usecase.NewCheckoutUseCase(orgRepo, tariffRepo, paymentRepo, pendingRepo, gateway, logger)
	returnUC := usecase.NewReturnFlowUseCase(paymentRepo, pendingRepo, reconcileUC, logger)
	assistUC := usecase.NewAssistUseCase(orgRepo, chat, rateLimiter, logger)
	statsUC := usecase.NewStatsUseCase(paymentRepo, orgRepo, logger)

	// ---- HTTP ----
	sessionSecret := cfg.Security.SessionSecret
	if sessionSecret == "" {
		logger.Warn().Msg("security.session_secret not set; using dev secret (INSECURE)")
		sessionSecret = "dev-session-secret"
	}
	sessions := httpapi.NewSessionManager(sessionSecret, !cfg.Runtime.Dev, "", 24*time.Hour)
	ipcheck := ipallow.NewValidator(cfg.Runtime.Dev, logger)
	srv := httpapi.NewServer(cfg, ipcheck, sessions, paymentRepo,
		checkoutUC, reconcileUC, returnUC, assistUC, notifUC, statsUC, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Stale-pending reconciler ----
	worker := sched.NewPaymentReconciler(reconcileUC, paymentRepo,
		cfg.Reconciler.Interval, cfg.Reconciler.StaleAfter, logger)
	go worker.Start(ctx)

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
