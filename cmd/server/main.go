package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"inscripciones/internal/audit"
	"inscripciones/internal/exchange"
	exchangehandler "inscripciones/internal/exchange/handler"
	httpapi "inscripciones/internal/http"
	"inscripciones/internal/jwttoken"
	"inscripciones/internal/participant"
	participanthandler "inscripciones/internal/participant/handler"
	"inscripciones/internal/platform/config"
	"inscripciones/internal/platform/httpserver"
	"inscripciones/internal/platform/logger"
	"inscripciones/internal/platform/metrics"
	"inscripciones/internal/platform/redis"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "inscripciones", "inscripciones")
	jwtValidator := jwttoken.NewJWTServiceAdapter(jwtService)

	checks := map[string]httpapi.HealthChecker{}

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	var manualStore exchange.ManualStore
	if rdb != nil {
		defer rdb.Close()
		manualStore = exchange.NewRedisManualStore(rdb.Client, cfg.ManualRateTTL)
		checks["redis"] = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return rdb.Health(pingCtx)
		}
		log.Info("manual rate store backed by redis")
	} else {
		manualStore = exchange.NewInMemoryManualStore(cfg.ManualRateTTL)
		log.Info("manual rate store in memory; overrides do not survive restarts")
	}

	rates := exchange.NewProvider(
		exchange.NewPyDolarVeSource(cfg.RateSourcePrimaryURL, cfg.RateSourceTimeout),
		exchange.NewDolarAPISource(cfg.RateSourceSecondaryURL, cfg.RateSourceTimeout),
		manualStore,
		log,
		m,
	)

	var store participant.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Error("opening database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pg := participant.NewPostgresStore(db)
		if err := pg.Migrate(ctx); err != nil {
			log.Error("migrating database", "error", err)
			os.Exit(1)
		}
		store = pg
		checks["postgres"] = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.PingContext(pingCtx)
		}
		log.Info("participant store backed by postgres")
	} else {
		store = participant.NewInMemoryStore()
		log.Info("participant store in memory; data does not survive restarts")
	}

	auditInbox := make(chan audit.Event, 256)
	auditWorker := audit.NewWorker(audit.NewInMemoryStore(), auditInbox, log)
	go func() {
		if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	service := participant.NewService(
		store,
		participant.NewValidator(store),
		rates,
		audit.NewAsyncPublisher(auditInbox, log),
		m,
		log,
		cfg.Fee,
	)

	router := httpapi.NewRouter(log, checks,
		participanthandler.New(service, log, jwtValidator, cfg.AdminEmails),
		exchangehandler.New(rates, log, jwtValidator, cfg.RateSourcePrimaryURL, cfg.RateSourceTimeout),
	)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting inscripciones server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
