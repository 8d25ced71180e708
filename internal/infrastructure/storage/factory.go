package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vitrina/backend/internal/domain/cart"
	"github.com/vitrina/backend/internal/infrastructure/cache"
	"github.com/vitrina/backend/internal/infrastructure/config"
	"github.com/vitrina/backend/internal/infrastructure/persistence"
)

// Store is a cart snapshot store that can report its health
type Store interface {
	cart.SnapshotStore
	Ping(ctx context.Context) error
}

// Result is the store the factory produced and how to release it
type Result struct {
	Store  Store
	Driver string
	// Fallback is true when the configured driver failed and memory is used instead
	Fallback bool
	closers  []func() error
}

// Close releases every connection the factory opened
func (r *Result) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Factory creates cart snapshot stores based on configuration
type Factory struct {
	storage     config.StorageConfig
	database    config.DatabaseConfig
	redis       config.RedisConfig
	logger      *zap.Logger
	logLevel    string
	gormPlugins []gorm.Plugin
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to memory when the
// configured backend is unavailable
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.storage.AllowMemoryFallback = allow
	}
}

// WithGormPlugins registers plugins (e.g. tracing) on SQL connections
func WithGormPlugins(plugins ...gorm.Plugin) FactoryOption {
	return func(f *Factory) {
		f.gormPlugins = append(f.gormPlugins, plugins...)
	}
}

// WithSQLLogLevel sets the SQL log level (debug logs every query)
func WithSQLLogLevel(level string) FactoryOption {
	return func(f *Factory) {
		f.logLevel = level
	}
}

// NewFactory creates a new factory from the application config
func NewFactory(cfg *config.Config, opts ...FactoryOption) *Factory {
	f := &Factory{
		storage:  cfg.Storage,
		database: cfg.Database,
		redis:    cfg.Redis,
		logger:   zap.NewNop(),
		logLevel: "warn",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds the configured store, falling back to memory when allowed
func (f *Factory) Create(ctx context.Context) (*Result, error) {
	driver := f.storage.Driver
	if driver == "" || driver == "memory" {
		return f.memory(false), nil
	}

	res, err := f.create(ctx, driver)
	if err == nil {
		f.logger.Info("Cart storage ready", zap.String("driver", driver))
		return res, nil
	}

	if !f.storage.AllowMemoryFallback {
		return nil, fmt.Errorf("failed to create %s cart storage: %w", driver, err)
	}

	f.logger.Warn("Cart storage unavailable, falling back to in-memory store",
		zap.String("driver", driver),
		zap.Error(err),
		zap.String("warning", "carts will not survive restarts"),
	)
	return f.memory(true), nil
}

func (f *Factory) memory(fallback bool) *Result {
	if !fallback {
		f.logger.Info("Using in-memory cart storage")
	}
	return &Result{Store: cache.NewInMemorySnapshotStore(), Driver: "memory", Fallback: fallback}
}

func (f *Factory) create(ctx context.Context, driver string) (*Result, error) {
	switch driver {
	case "redis":
		store, err := cache.NewRedisSnapshotStore(cache.RedisConfig{
			Host:     f.redis.Host,
			Port:     f.redis.Port,
			Password: f.redis.Password,
			DB:       f.redis.DB,
		}, f.storage.KeyPrefix, f.storage.TTL)
		if err != nil {
			return nil, err
		}
		return &Result{Store: store, Driver: driver, closers: []func() error{store.Close}}, nil

	case persistence.DriverSQLite, persistence.DriverPostgres:
		db, err := persistence.NewDatabase(persistence.Options{
			Driver:     driver,
			Postgres:   f.database,
			SQLitePath: f.storage.SQLitePath,
			Logger:     f.logger,
			LogLevel:   f.logLevel,
			Plugins:    f.gormPlugins,
		})
		if err != nil {
			return nil, err
		}
		store := persistence.NewGormSnapshotStore(db.DB)
		return &Result{Store: store, Driver: driver, closers: []func() error{db.Close}}, nil

	case "s3":
		store, err := NewS3SnapshotStore(f.storage.S3, f.storage.KeyPrefix, f.logger)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return &Result{Store: store, Driver: driver}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
