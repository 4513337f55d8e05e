// Package bootstrap assembles the service from its configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/damon-houk/payment-query-service/internal/application/service"
	"github.com/damon-houk/payment-query-service/internal/config"
	"github.com/damon-houk/payment-query-service/internal/domain/entity"
	"github.com/damon-houk/payment-query-service/internal/domain/repository"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/api"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/cache"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/db"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/handler"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/logger"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/metrics"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/middleware"
	"github.com/dgraph-io/badger/v3"
	"github.com/gorilla/mux"
)

// Store is an opened record provider. Writer is nil for read-only drivers.
type Store struct {
	Reader repository.PaymentRepository
	Writer repository.PaymentWriter
	close  func() error
}

// Close releases the underlying database, if any
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStore opens the provider selected by cfg.Store.Driver. The memory
// driver starts with the bundled sample unless a seed file is configured.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (*Store, error) {
	log = logger.OrDefault(log)

	switch cfg.Store.Driver {
	case config.DriverMemory:
		records, err := memoryContent(cfg.Store.Seed)
		if err != nil {
			return nil, err
		}
		repo := db.NewMemoryPaymentRepository(records...)
		return &Store{Reader: repo, Writer: repo}, nil

	case config.DriverBadger:
		if err := os.MkdirAll(cfg.Store.Path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		bdb, err := badger.Open(badger.DefaultOptions(cfg.Store.Path).WithLogger(nil))
		if err != nil {
			return nil, fmt.Errorf("failed to open badger database: %w", err)
		}
		repo := db.NewBadgerPaymentRepository(bdb)
		return &Store{Reader: repo, Writer: repo, close: bdb.Close}, nil

	case config.DriverBolt:
		bdb, err := db.OpenBolt(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		repo, err := db.NewBoltPaymentRepository(bdb)
		if err != nil {
			bdb.Close()
			return nil, err
		}
		return &Store{Reader: repo, Writer: repo, close: bdb.Close}, nil

	case config.DriverPostgres:
		conn, err := db.OpenPostgres(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		repo := db.NewPostgresPaymentRepository(conn)
		if err := repo.EnsureSchema(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		return &Store{Reader: repo, Writer: repo, close: conn.Close}, nil

	case config.DriverHTTP:
		client, err := api.NewUpstreamPaymentClient(cfg.Upstream.URL,
			api.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
			api.WithToken(cfg.Upstream.Token),
			api.WithMaxRetries(cfg.Upstream.MaxRetries),
			api.WithLogger(log),
		)
		if err != nil {
			return nil, err
		}
		return &Store{Reader: client}, nil

	default:
		return nil, fmt.Errorf("%w: unknown store.driver %q", config.ErrInvalidConfig, cfg.Store.Driver)
	}
}

func memoryContent(seed string) ([]entity.PaymentRecord, error) {
	if seed == "" {
		return db.SamplePayments()
	}
	return LoadSeed(seed)
}

// LoadSeed returns the records named by seed: the bundled sample or a JSON file
func LoadSeed(seed string) ([]entity.PaymentRecord, error) {
	if seed == config.SeedSample {
		return db.SamplePayments()
	}
	return db.LoadPaymentsFile(seed)
}

// SeedIfEmpty appends the seed records when the store holds none. It
// returns the number of records written.
func SeedIfEmpty(ctx context.Context, store *Store, seed string) (int, error) {
	if seed == "" {
		return 0, nil
	}
	if store.Writer == nil {
		return 0, errors.New("store is read-only")
	}

	existing, err := store.Reader.FetchAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	records, err := LoadSeed(seed)
	if err != nil {
		return 0, err
	}
	if err := store.Writer.Append(ctx, records...); err != nil {
		return 0, err
	}
	return len(records), nil
}

// App holds the assembled service
type App struct {
	Config     *config.Config
	Logger     logger.Logger
	Store      *Store
	Repository repository.PaymentRepository
	Service    *service.PaymentQueryService
	Handler    *handler.PaymentHandler
	Metrics    *metrics.Metrics
}

// New opens the store, seeds it when configured and wires the query
// pipeline. Close releases what New opened.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	log = logger.OrDefault(log)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.Store.Driver != config.DriverMemory {
		n, err := SeedIfEmpty(ctx, store, cfg.Store.Seed)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to seed store: %w", err)
		}
		if n > 0 {
			log.Info("Store seeded", logger.Fields{"driver": cfg.Store.Driver, "records": n})
		}
	}

	var repo repository.PaymentRepository = store.Reader
	if cfg.Cache.TTL > 0 {
		repo = cache.NewCachingPaymentRepository(repo, cfg.Cache.TTL)
	}

	m := metrics.New()
	svc := service.NewPaymentQueryService(repo, log)
	h := handler.NewPaymentHandler(svc, nil, log, handler.Options{
		StrictAccept: cfg.Server.StrictAccept,
		Location:     loc,
		Observer:     m,
	})

	log.Info("Service assembled", logger.Fields{
		"driver":        cfg.Store.Driver,
		"cache_ttl":     cfg.Cache.TTL.String(),
		"strict_accept": cfg.Server.StrictAccept,
		"timezone":      loc.String(),
	})

	return &App{
		Config:     cfg,
		Logger:     log,
		Store:      store,
		Repository: repo,
		Service:    svc,
		Handler:    h,
		Metrics:    m,
	}, nil
}

// Router returns the HTTP routes with request ID, logging and metrics
// middleware installed
func (a *App) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(a.Logger))
	router.Use(a.Metrics.Middleware)

	a.Handler.RegisterRoutes(router)
	router.Handle("/metrics", a.Metrics.Handler()).Methods("GET")

	return router
}

// Refresh drops the cached snapshot, if any, so the next query reads the
// store. It reports whether a cache was invalidated.
func (a *App) Refresh() bool {
	cached, ok := a.Repository.(*cache.CachingPaymentRepository)
	if !ok {
		return false
	}
	cached.Invalidate()
	a.Logger.Info("Payment snapshot invalidated", logger.Fields{"driver": a.Config.Store.Driver})
	return true
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}
