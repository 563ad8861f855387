// Package app is the composition root: it wires configuration, storage,
// messaging, search, and metrics into a running HTTP server.  Both the
// server binary and the CLI's serve command build the process through it.
package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/application/discovery"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/config"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/mapping"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/request"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/database/postgres"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/database/postgres/repositories"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/database/redis"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/messaging/kafka"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/logging"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/prometheus"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/search/semantic"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/intelligence/category"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/intelligence/daterange"
	httpserver "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/interfaces/http"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/interfaces/http/handlers"
)

// metricsNamespace prefixes every metric the process exposes.
const metricsNamespace = "parency"

// App holds the assembled process: the HTTP server plus the teardown hooks
// for every connection opened while building it.
type App struct {
	cfg     *config.Config
	logger  logging.Logger
	server  *httpserver.Server
	closers []func()
}

// New builds the full dependency graph from cfg.  Postgres is mandatory;
// Redis, Kafka, and the vector stack are wired only when configured, and
// their absence degrades the matching features rather than failing startup.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	a.onClose(conn.Close)

	if err := postgres.RunMigrations(cfg.Database, logger); err != nil {
		a.Close()
		return nil, err
	}

	requestRepo := repositories.NewRequestRepository(conn.Pool())
	documentRepo := repositories.NewDocumentRepository(conn.Pool())
	mappingRepo := repositories.NewMappingRepository(conn.Pool())

	checks := map[string]handlers.HealthChecker{"postgres": conn}

	var statsCache request.StatsCache
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.onClose(func() { _ = rdb.Close() })
		cache := redis.NewCache(rdb, logger,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
		statsCache = redis.NewStatsCache(cache, logger)
		checks["redis"] = rdb
	}

	var (
		mappingEvents mapping.Publisher
		importEvents  discovery.ImportPublisher
	)
	if producer := kafka.NewProducer(cfg.Kafka, logger); producer != nil {
		a.onClose(func() { _ = producer.Close() })
		mappingEvents = producer
		importEvents = producer
	}

	var matcher discovery.SemanticMatcher
	if cfg.Milvus.Addr != "" {
		embedder := semantic.NewOpenAIEmbedder(cfg.Embedding)
		m, err := semantic.NewMatcher(ctx, cfg.Milvus, embedder, logger)
		if err != nil {
			logger.Warn("semantic matching disabled", logging.Err(err))
		} else {
			a.onClose(func() { _ = m.Close() })
			matcher = m
		}
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            metricsNamespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	metrics := prometheus.NewAppMetrics(collector)

	detector := category.NewDetector()
	dates := daterange.NewParser()

	requestSvc := request.NewService(requestRepo, detector, dates, statsCache, logger)
	mappingSvc := mapping.NewService(mappingRepo, requestRepo, mappingEvents, statsCache, logger)
	importer := discovery.NewImporter(requestSvc, importEvents, logger)
	engine := discovery.NewEngine(requestSvc, documentRepo, mappingSvc, detector, dates, matcher, cfg.Matching, logger)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		RequestHandler:    handlers.NewRequestHandler(requestSvc),
		ImportHandler:     handlers.NewImportHandler(importer, metrics),
		SuggestionHandler: handlers.NewSuggestionHandler(engine, metrics),
		MappingHandler:    handlers.NewMappingHandler(mappingSvc),
		HealthHandler:     handlers.NewHealthHandler(checks, metrics),
		OwnerHeader:       cfg.Server.OwnerHeader,
		Logger:            logger,
		Metrics:           metrics,
		MetricsCollector:  collector,
	}, cfg.Server)

	a.server = httpserver.NewServer(cfg.Server, router, logger)
	return a, nil
}

// Run serves until the context is cancelled or SIGINT/SIGTERM arrives, then
// drains in-flight requests within the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received")
	return a.server.Stop(context.Background())
}

// Close releases every connection New opened, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}
