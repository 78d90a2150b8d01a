// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"onboarding-workers/internal/common/aws"
	"onboarding-workers/internal/common/camunda"
	"onboarding-workers/internal/common/config"
	"onboarding-workers/internal/common/database"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/observability"
	"onboarding-workers/pkg/registry"

	// Onboarding Workers (4)
	cfs "onboarding-workers/internal/workers/onboarding/classify-form-status"
	cop "onboarding-workers/internal/workers/onboarding/compute-onboarding-progress"
	rrf "onboarding-workers/internal/workers/onboarding/resolve-required-forms"
	ufs "onboarding-workers/internal/workers/onboarding/update-form-status"

	// Data Access Workers (3)
	iop "onboarding-workers/internal/workers/data-access/index-onboarding-progress"
	loa "onboarding-workers/internal/workers/data-access/load-onboarding-application"
	sop "onboarding-workers/internal/workers/data-access/search-onboarding-progress"

	// Communication Workers (1)
	nos "onboarding-workers/internal/workers/communication/notify-onboarding-status"
)

func main() {
	log := logger.NewStructured(logger.Options{Level: "info", Format: "json"})
	defer log.Sync()

	if err := run(); err != nil {
		log.Error("worker manager failed", map[string]interface{}{"error": err.Error()})
		log.Sync()
		os.Exit(1)
	}
	log.Info("worker manager stopped gracefully", nil)
}

// dependencies are the shared clients every worker draws from.
type dependencies struct {
	pg    *database.PostgresClient
	redis *database.RedisClient
	es    *database.ElasticsearchClient
	ses   *aws.SESClient
	sns   *aws.SNSClient
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	opts := logger.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: cfg.App.Name,
	}
	if cfg.Logging.Output != "" {
		opts.OutputPaths = []string{cfg.Logging.Output}
	}
	log := logger.NewStructured(opts)
	defer log.Sync()
	log.Info("starting worker manager", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		return fmt.Errorf("load activity registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("activity registry invalid: %w", err)
	}

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		return fmt.Errorf("observability init failed: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(ctx); err != nil {
			log.Warn("observability shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init Zeebe Client with retry ---
	zeebe, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.UsePlaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		return fmt.Errorf("zeebe client failed after retries: %w", err)
	}
	defer zeebe.Close()
	log.Info("Zeebe client connected successfully", nil)

	deps, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.pg.Close()
	defer deps.redis.Close()

	workers, err := registerWorkers(cfg, reg, zeebe, deps, obs, log)
	if err != nil {
		return err
	}
	defer func() {
		for _, w := range workers {
			w.Close()
			w.AwaitClose()
		}
	}()
	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr: cfg.Metrics.Address,
		Handler: newHealthMux(map[string]healthCheck{
			"zeebe":         zeebe.HealthCheck,
			"postgres":      deps.pg.Ping,
			"redis":         deps.redis.Ping,
			"elasticsearch": deps.es.Ping,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"address": cfg.Metrics.Address})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutdown signal received, stopping workers...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("health/metrics server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

// connect opens the backing stores, retrying each while it comes up.
func connect(ctx context.Context, cfg *config.Config, log logger.Logger) (*dependencies, error) {
	deps := &dependencies{}
	retry := camunda.DefaultRetryConfig

	// --- Init PostgreSQL with retry ---
	err := camunda.Retry(ctx, retry, log, "PostgreSQL connection", func(ctx context.Context) error {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return err
		}
		deps.pg = pg
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres failed after retries: %w", err)
	}

	// --- Init Redis with retry ---
	err = camunda.Retry(ctx, retry, log, "Redis connection", func(ctx context.Context) error {
		redis, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		if err := redis.Ping(ctx); err != nil {
			redis.Close()
			return err
		}
		deps.redis = redis
		return nil
	})
	if err != nil {
		deps.pg.Close()
		return nil, fmt.Errorf("redis failed after retries: %w", err)
	}

	// --- Init Elasticsearch with retry ---
	err = camunda.Retry(ctx, retry, log, "Elasticsearch connection", func(ctx context.Context) error {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		if err := es.Ping(ctx); err != nil {
			return err
		}
		deps.es = es
		return nil
	})
	if err != nil {
		deps.pg.Close()
		deps.redis.Close()
		return nil, fmt.Errorf("elasticsearch failed after retries: %w", err)
	}

	// --- Init AWS notification clients ---
	n := cfg.Notifications
	if n.Email.Enabled {
		if deps.ses, err = aws.NewSESClient(ctx, n.AWS.Region, n.Email.FromEmail); err != nil {
			return nil, fmt.Errorf("ses client: %w", err)
		}
	}
	if n.SMS.Enabled {
		if deps.sns, err = aws.NewSNSClient(ctx, n.AWS.Region, n.SMS.SenderID); err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
	}

	log.Info("backing services connected", nil)
	return deps, nil
}

// registerWorkers builds every handler and opens a job worker for each
// enabled task type. A task type missing from the activity registry is a
// startup error.
func registerWorkers(
	cfg *config.Config,
	reg *registry.ActivityRegistry,
	zeebe *camunda.Client,
	deps *dependencies,
	obs *observability.Observability,
	log logger.Logger,
) ([]worker.JobWorker, error) {
	timeout := func(taskType string, fallback time.Duration) time.Duration {
		if ms := cfg.Workers[taskType].Timeout; ms > 0 {
			return config.GetDuration(ms)
		}
		return fallback
	}

	// --- 1. Onboarding Workers (4) ---
	rrfCfg := rrf.LoadConfig()
	rrfCfg.Timeout = timeout(rrf.TaskType, rrfCfg.Timeout)

	cfsCfg := cfs.LoadConfig()
	cfsCfg.Timeout = timeout(cfs.TaskType, cfsCfg.Timeout)

	copCfg := cop.LoadConfig()
	copCfg.Timeout = timeout(cop.TaskType, copCfg.Timeout)

	ufsCfg := ufs.LoadConfig()
	ufsCfg.Timeout = timeout(ufs.TaskType, ufsCfg.Timeout)

	// --- 2. Data Access Workers (3) ---
	loaCfg := loa.LoadConfig(cfg)
	loaCfg.Timeout = timeout(loa.TaskType, loaCfg.Timeout)

	iopCfg := iop.LoadConfig(cfg)
	iopCfg.Timeout = timeout(iop.TaskType, iopCfg.Timeout)

	sopCfg := sop.LoadConfig(cfg)
	sopCfg.Timeout = timeout(sop.TaskType, sopCfg.Timeout)

	// --- 3. Communication Workers (1) ---
	nosCfg := nos.LoadConfig(cfg)
	nosCfg.Timeout = timeout(nos.TaskType, nosCfg.Timeout)
	var email nos.EmailSender
	if deps.ses != nil {
		email = deps.ses
	}
	var sms nos.SMSSender
	if deps.sns != nil {
		sms = deps.sns
	}

	handlers := []struct {
		taskType string
		handle   worker.JobHandler
	}{
		{rrf.TaskType, rrf.NewHandler(rrfCfg, log).Handle},
		{cfs.TaskType, cfs.NewHandler(cfsCfg, log).Handle},
		{cop.TaskType, cop.NewHandler(copCfg, log).Handle},
		{ufs.TaskType, ufs.NewHandler(ufsCfg, deps.pg.DB, deps.redis, log).Handle},
		{loa.TaskType, loa.NewHandler(loaCfg, deps.pg.DB, deps.redis, log).Handle},
		{iop.TaskType, iop.NewHandler(iopCfg, deps.es, log).Handle},
		{sop.TaskType, sop.NewHandler(sopCfg, deps.es, log).Handle},
		{nos.TaskType, nos.NewHandler(nosCfg, email, sms, log).Handle},
	}

	var workers []worker.JobWorker
	for _, h := range handlers {
		if _, ok := reg.Find(h.taskType); !ok {
			for _, w := range workers {
				w.Close()
			}
			return nil, fmt.Errorf("task type %s is not in the activity registry", h.taskType)
		}
		if w := camunda.StartWorker(zeebe.Zeebe(), h.taskType, cfg.Workers[h.taskType], h.handle, obs, log); w != nil {
			workers = append(workers, w)
		}
	}
	return workers, nil
}
