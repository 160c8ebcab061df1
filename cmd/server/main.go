package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"autoquote/internal/audit"
	"autoquote/internal/billing"
	couponhandler "autoquote/internal/coupon/handler"
	couponservice "autoquote/internal/coupon/service"
	couponstore "autoquote/internal/coupon/store"
	emailhandler "autoquote/internal/email/handler"
	"autoquote/internal/email/provider"
	emailservice "autoquote/internal/email/service"
	emailstore "autoquote/internal/email/store"
	"autoquote/internal/email/workers/dispatch"
	identityhandler "autoquote/internal/identity/handler"
	identitymetrics "autoquote/internal/identity/metrics"
	identityservice "autoquote/internal/identity/service"
	"autoquote/internal/identity/store/role"
	"autoquote/internal/identity/store/rolecache"
	"autoquote/internal/identity/store/session"
	"autoquote/internal/identity/store/user"
	"autoquote/internal/identity/workers/cleanup"
	"autoquote/internal/platform/config"
	"autoquote/internal/platform/database"
	"autoquote/internal/platform/health"
	"autoquote/internal/platform/kafka/producer"
	"autoquote/internal/platform/logger"
	platformredis "autoquote/internal/platform/redis"
	quotehandler "autoquote/internal/quote/handler"
	quotemetrics "autoquote/internal/quote/metrics"
	quoteservice "autoquote/internal/quote/service"
	quotestore "autoquote/internal/quote/store"
	"autoquote/internal/token"
	httptransport "autoquote/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and supervises
// the background workers. Business logic lives in the internal service
// packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing autoquote",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence. An empty DATABASE_URL falls back to in-memory stores so
	// the service still runs for local development.
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	var (
		users    user.Store
		roles    role.Store
		sessions session.Store
		quotes   quotestore.Store
		coupons  couponstore.Store
		emails   emailstore.Store
	)
	if pool != nil {
		db := pool.DB()
		users = user.NewPostgres(db)
		roles = role.NewPostgres(db)
		sessions = session.NewPostgres(db)
		quotes = quotestore.NewPostgres(db)
		coupons = couponstore.NewPostgres(db)
		emails = emailstore.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		users = user.NewInMemory()
		roles = role.NewInMemory()
		sessions = session.NewInMemory()
		quotes = quotestore.NewInMemory()
		coupons = couponstore.NewInMemory()
		emails = emailstore.NewInMemory()
	}

	redisCfg := platformredis.DefaultConfig()
	redisCfg.URL = cfg.RedisURL
	redisClient, err := platformredis.New(redisCfg)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	var roleCache rolecache.Cache
	if redisClient != nil {
		roleCache = rolecache.NewRedis(redisClient, cfg.RoleCacheTTL, log)
	} else {
		roleCache = rolecache.NewMemory(cfg.RoleCacheTTL)
	}

	// Audit sink: Kafka when brokers are configured, in-memory otherwise.
	var auditStore audit.Store
	if cfg.KafkaBrokers != "" {
		kafkaCfg := producer.DefaultConfig()
		kafkaCfg.Brokers = cfg.KafkaBrokers
		kafkaProducer, err := producer.New(kafkaCfg, log)
		if err != nil {
			log.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		defer kafkaProducer.Close()
		auditStore = audit.NewKafkaStore(kafkaProducer, "autoquote.audit")
	} else {
		log.Warn("KAFKA_BROKERS not set, audit events stay in memory")
		auditStore = audit.NewInMemoryStore()
	}
	auditPublisher := audit.NewPublisher(auditStore, audit.WithPublisherLogger(log))
	defer auditPublisher.Close()

	jwtService := token.NewJWTService(cfg.JWTSigningKey, "autoquote", "autoquote-api", cfg.SessionTTL)
	mailer := provider.New(cfg.EmailAPIBaseURL, cfg.EmailAPIKey, cfg.EmailFrom)

	identitySvc := identityservice.NewService(users, roles, sessions,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(identitymetrics.New()),
		identityservice.WithJWTService(jwtService),
		identityservice.WithMailer(mailer),
		identityservice.WithRoleCache(roleCache),
		identityservice.WithAuditPublisher(auditPublisher),
		identityservice.WithSessionTTL(cfg.SessionTTL),
		identityservice.WithResetRedirect(cfg.ResetRedirect),
	)
	quoteSvc := quoteservice.NewService(quotes,
		quoteservice.WithLogger(log),
		quoteservice.WithMetrics(quotemetrics.New()),
		quoteservice.WithAuditPublisher(auditPublisher),
	)
	couponSvc := couponservice.NewService(coupons,
		couponservice.WithLogger(log),
		couponservice.WithAuditPublisher(auditPublisher),
	)
	emailSvc := emailservice.NewService(mailer, emails,
		emailservice.WithLogger(log),
		emailservice.WithAuditPublisher(auditPublisher),
	)
	billingSvc := billing.NewService(users,
		billing.WithLogger(log),
		billing.WithAuditPublisher(auditPublisher),
	)

	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(checkCtx)
		})
	}
	if redisClient != nil {
		healthHandler.RegisterCheck("redis", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(checkCtx)
		})
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Identity: identityhandler.New(identitySvc, log),
		Quotes:   quotehandler.New(quoteSvc, log),
		Coupons:  couponhandler.New(couponSvc, log),
		Emails:   emailhandler.New(emailSvc, log),
		Billing:  billing.NewHandler(billingSvc, []byte(cfg.BillingSecret), log),
		Health:   healthHandler,
		JWT:      jwtService,
		Roles:    identitySvc,
	}, log)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sessionCleanup, err := cleanup.New(sessions, cleanup.WithLogger(log))
	if err != nil {
		log.Error("session cleanup init failed", "error", err)
		os.Exit(1)
	}
	emailDispatch, err := dispatch.New(emails, mailer, dispatch.WithLogger(log))
	if err != nil {
		log.Error("email dispatch init failed", "error", err)
		os.Exit(1)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		if err := sessionCleanup.Start(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		if err := emailDispatch.Start(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}

	if pool != nil {
		_ = pool.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Info("server stopped")
}
