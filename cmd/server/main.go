// Package main is the entry point for the hydrostock API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hydrostock/internal/core/tx"
	"hydrostock/internal/domain/alerting"
	"hydrostock/internal/domain/audit"
	"hydrostock/internal/domain/auth"
	"hydrostock/internal/domain/catalogs/location"
	"hydrostock/internal/domain/catalogs/product"
	"hydrostock/internal/domain/movement"
	"hydrostock/internal/domain/outbox"
	"hydrostock/internal/domain/registers/stock"
	v1 "hydrostock/internal/infrastructure/http/v1"
	"hydrostock/internal/infrastructure/http/v1/handlers"
	"hydrostock/internal/infrastructure/http/v1/middleware"
	"hydrostock/internal/infrastructure/storage/memory"
	"hydrostock/internal/infrastructure/storage/postgres"
	"hydrostock/internal/infrastructure/storage/postgres/catalog_repo"
	"hydrostock/internal/infrastructure/storage/postgres/document_repo"
	"hydrostock/internal/infrastructure/storage/postgres/register_repo"
	"hydrostock/pkg/config"
	"hydrostock/pkg/logger"
	"hydrostock/pkg/numerator"
)

// backend is the storage-specific part of the wiring.
type backend struct {
	txManager tx.Manager
	stockRepo stock.Repository
	movements movement.Repository
	audits    audit.Repository
	products  product.Registry
	locations location.Registry
	events    outbox.Publisher
	sequences numerator.Sequencer
	health    *handlers.HealthHandler

	// background jobs that must run in-process (memory driver only)
	jobs  []job
	close func()
}

type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Infow("starting hydrostock server", "storage", cfg.Storage, "env", cfg.App.Env)

	var b *backend
	switch cfg.Storage {
	case config.DriverMemory:
		b, err = newMemoryBackend(cfg, log)
	default:
		b, err = newPostgresBackend(ctx, cfg, log)
	}
	if err != nil {
		log.Fatalw("failed to initialize storage", "error", err)
	}
	defer b.close()

	ledger := stock.NewLedger(b.stockRepo)
	engine := movement.NewEngine(
		b.txManager,
		ledger,
		b.movements,
		audit.NewTrail(b.audits),
		b.products,
		b.locations,
		b.events,
	)

	strategy, err := numerator.ParseStrategy(cfg.Numbering.Strategy)
	if err != nil {
		log.Fatalw("invalid numbering configuration", "error", err)
	}
	engine.WithNumbering(numerator.New(b.sequences, numerator.Options{
		Strategy:  strategy,
		RangeSize: cfg.Numbering.RangeSize,
	}))

	var validator middleware.JWTValidator
	if cfg.JWT.Secret != "" {
		jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
		jwtConfig.Issuer = cfg.JWT.Issuer
		validator = auth.NewTokenService(jwtConfig)
	} else {
		log.Warn("JWT_SECRET is empty, the X-Requested-By header names the actor")
	}

	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		Engine:       engine,
		Ledger:       ledger,
		AuditReader:  audit.NewReader(b.audits),
		Health:       b.health,
		JWTValidator: validator,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	for _, j := range b.jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			runEvery(ctx, log.WithComponent(j.name), j.interval, j.run)
		}(j)
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	cancel()
	wg.Wait()

	log.Info("server stopped")
}

func newPostgresBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.URL)
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	log.Info("database connection established")

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("schema migrated")
	}

	txOpts := postgres.DefaultTxOptions()
	txOpts.StatementTimeout = cfg.DB.StatementTimeout
	txOpts.LockTimeout = cfg.DB.LockTimeout
	txm := postgres.NewTxManager(pool, txOpts)

	codec, err := postgres.NewPayloadCodec(cfg.Audit.CompressThreshold)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &backend{
		txManager: txm,
		stockRepo: register_repo.NewStockRepo(txm),
		movements: document_repo.NewMovementRepo(txm),
		audits:    document_repo.NewAuditRepo(txm, codec),
		products:  catalog_repo.NewProductRegistry(txm),
		locations: catalog_repo.NewLocationRegistry(txm),
		events:    postgres.NewOutboxPublisher(txm),
		sequences: postgres.NewSequenceStore(pool),
		health: handlers.NewHealthHandler(pool, config.DriverPostgres, func() any {
			return pool.Stats()
		}),
		close: pool.Close,
	}, nil
}

// newMemoryBackend builds a single-process store. Nothing outlives the process,
// so the outbox relay and the alert checker run here instead of in the worker.
func newMemoryBackend(cfg *config.Config, log *logger.Logger) (*backend, error) {
	catalog := catalog_repo.DemoCatalog()
	if cfg.CatalogFile != "" {
		var err error
		if catalog, err = catalog_repo.LoadCatalog(cfg.CatalogFile); err != nil {
			return nil, err
		}
	}

	s := memory.NewStore(memory.WithLockTimeout(cfg.DB.LockTimeout))
	registry := memory.NewCatalog(s)
	for _, loc := range catalog.LedgerLocations() {
		registry.AddLocation(loc)
	}
	for _, ref := range catalog.ProductRefs() {
		registry.AddProduct(ref)
	}
	log.Infow("memory catalog loaded",
		"locations", len(catalog.Locations),
		"products", len(catalog.ProductRefs()),
	)

	stockRepo := memory.NewStockRepo(s)
	events := memory.NewOutbox(s, cfg.Worker.OutboxBatchSize, outbox.NewLogHandler(log))

	evaluator, err := alerting.NewEvaluator()
	if err != nil {
		return nil, err
	}
	checker := alerting.NewChecker(
		stock.NewLedger(stockRepo),
		memory.NewRuleRepo(s),
		evaluator,
		alerting.MultiNotifier{alerting.LogNotifier{}, alerting.NewOutboxNotifier(s, events)},
	)

	return &backend{
		txManager: s,
		stockRepo: stockRepo,
		movements: memory.NewMovementRepo(s),
		audits:    memory.NewAuditRepo(s),
		products:  registry,
		locations: registry,
		events:    events,
		sequences: numerator.NewMemorySequencer(),
		health:    handlers.NewHealthHandler(s, config.DriverMemory, nil),
		jobs: []job{
			{name: "outbox", interval: cfg.Worker.OutboxPollInterval, run: func(ctx context.Context) error {
				_, err := events.ProcessBatch(ctx)
				return err
			}},
			{name: "alerts", interval: cfg.Worker.AlertPollInterval, run: func(ctx context.Context) error {
				_, err := checker.Scan(ctx)
				return err
			}},
		},
		close: func() {},
	}, nil
}

func runEvery(ctx context.Context, log *logger.Logger, interval time.Duration, fn func(ctx context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				log.Errorw("background job failed", "error", err)
			}
		}
	}
}
