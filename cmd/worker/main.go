// Package main is the entry point for the hydrostock background worker.
// It relays outbox events, moves exhausted messages to the dead letter
// queue and evaluates stock alert rules.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hydrostock/internal/domain/alerting"
	"hydrostock/internal/domain/outbox"
	"hydrostock/internal/domain/registers/stock"
	"hydrostock/internal/infrastructure/storage/postgres"
	"hydrostock/internal/infrastructure/storage/postgres/catalog_repo"
	"hydrostock/internal/infrastructure/storage/postgres/register_repo"
	"hydrostock/pkg/config"
	"hydrostock/pkg/logger"
)

const dlqInterval = time.Hour

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

	if cfg.Storage != config.DriverPostgres {
		log.Fatalw("the worker needs the postgres storage driver; the memory server runs its jobs in-process",
			"storage", cfg.Storage)
	}

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting hydrostock worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DB.URL)
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txOpts := postgres.DefaultTxOptions()
	txOpts.StatementTimeout = cfg.DB.StatementTimeout
	txOpts.LockTimeout = cfg.DB.LockTimeout
	txm := postgres.NewTxManager(pool, txOpts)

	evaluator, err := alerting.NewEvaluator()
	if err != nil {
		log.Fatalw("failed to build alert evaluator", "error", err)
	}

	worker := &Worker{
		log:   log.WithComponent("worker"),
		pool:  pool,
		relay: postgres.NewOutboxRelay(txm, cfg.Worker.OutboxBatchSize, outbox.NewLogHandler(log)),
		checker: alerting.NewChecker(
			stock.NewLedger(register_repo.NewStockRepo(txm)),
			catalog_repo.NewAlertRuleRepo(txm),
			evaluator,
			alerting.MultiNotifier{
				alerting.LogNotifier{},
				alerting.NewOutboxNotifier(txm, postgres.NewOutboxPublisher(txm)),
			},
		),
		outboxInterval: cfg.Worker.OutboxPollInterval,
		alertInterval:  cfg.Worker.AlertPollInterval,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs the periodic jobs.
type Worker struct {
	log     *logger.Logger
	pool    *postgres.Pool
	relay   *postgres.OutboxRelay
	checker *alerting.Checker

	outboxInterval time.Duration
	alertInterval  time.Duration
}

// Run blocks until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	outboxTicker := time.NewTicker(w.outboxInterval)
	defer outboxTicker.Stop()

	alertTicker := time.NewTicker(w.alertInterval)
	defer alertTicker.Stop()

	dlqTicker := time.NewTicker(dlqInterval)
	defer dlqTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-outboxTicker.C:
			w.processOutbox(ctx)
		case <-alertTicker.C:
			w.checkAlerts(ctx)
		case <-dlqTicker.C:
			w.moveToDLQ(ctx)
			w.pool.LogStats(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	// Drain while full batches keep coming.
	for ctx.Err() == nil {
		n, err := w.relay.ProcessBatch(ctx)
		if err != nil {
			w.log.Errorw("outbox batch failed", "error", err)
			return
		}
		if n == 0 {
			return
		}
		w.log.Debugw("processed outbox batch", "count", n)
	}
}

func (w *Worker) checkAlerts(ctx context.Context) {
	alerts, err := w.checker.Scan(ctx)
	if err != nil {
		w.log.Errorw("alert scan failed", "error", err)
		return
	}
	if len(alerts) > 0 {
		w.log.Infow("alert scan finished", "fired", len(alerts))
	}
}

func (w *Worker) moveToDLQ(ctx context.Context) {
	n, err := w.relay.MoveToDLQ(ctx)
	if err != nil {
		w.log.Errorw("dead letter move failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Warnw("moved failed outbox messages to dead letter queue", "count", n)
	}
}
