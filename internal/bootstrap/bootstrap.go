// Package bootstrap assembles the storefront from configuration. Both the
// HTTP server and the terminal shell start from here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	appcart "github.com/vitrina/backend/internal/application/cart"
	appcatalog "github.com/vitrina/backend/internal/application/catalog"
	"github.com/vitrina/backend/internal/infrastructure/catalogsource"
	"github.com/vitrina/backend/internal/infrastructure/config"
	"github.com/vitrina/backend/internal/infrastructure/logger"
	"github.com/vitrina/backend/internal/infrastructure/storage"
	"github.com/vitrina/backend/internal/infrastructure/telemetry"
)

// App holds every long-lived component of a running storefront
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Storage  *storage.Result
	Sessions *appcart.SessionManager
	Loader   *appcatalog.Loader
	Cart     *appcart.Service
	Inquiry  *appcart.InquiryService

	Tracer  *telemetry.TracerProvider
	Meter   *telemetry.MeterProvider
	Logs    *telemetry.LoggerProvider
	Metrics *telemetry.StorefrontMetrics
}

// Options tweaks how New builds the App
type Options struct {
	// LogOutput overrides cfg.Log.Output; the shell keeps stdout for itself
	LogOutput string
}

// New builds the App and starts its background workers. Callers must Close it.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	if opts.LogOutput != "" {
		logCfg.Output = opts.LogOutput
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app := &App{Config: cfg, Logger: log}

	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}
	if app.Tracer, err = telemetry.NewTracerProvider(ctx, telemetryCfg, log); err != nil {
		return nil, err
	}
	if app.Meter, err = telemetry.NewMeterProvider(ctx, telemetryCfg, log); err != nil {
		app.shutdownTelemetry(ctx)
		return nil, err
	}
	if app.Logs, err = telemetry.NewLoggerProvider(ctx, telemetryCfg, log); err != nil {
		app.shutdownTelemetry(ctx)
		return nil, err
	}

	if app.Logs.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: app.Logs,
			Level:          logger.ParseLevel(cfg.Log.Level),
		})
		app.Logger = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, otelCore)
		}))
		log = app.Logger
	}

	factoryOpts := []storage.FactoryOption{
		storage.WithLogger(log),
		storage.WithSQLLogLevel(cfg.Log.Level),
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracingCfg := telemetry.DefaultDBTracingConfig()
		tracingCfg.Enabled = true
		if cfg.Storage.Driver == "sqlite" {
			tracingCfg.DBSystem = "sqlite"
		}
		factoryOpts = append(factoryOpts, storage.WithGormPlugins([]gorm.Plugin{
			telemetry.NewDBTracingPlugin(tracingCfg, log),
		}...))
	}
	app.Storage, err = storage.NewFactory(cfg, factoryOpts...).Create(ctx)
	if err != nil {
		app.shutdownTelemetry(ctx)
		return nil, err
	}

	source, err := catalogsource.NewHTTPSource(catalogsource.Config{
		URL:              cfg.Catalog.URL,
		Timeout:          cfg.Catalog.Timeout,
		MaxResponseBytes: cfg.Catalog.MaxResponseBytes,
	}, catalogsource.WithLogger(log))
	if err != nil {
		_ = app.Storage.Close()
		app.shutdownTelemetry(ctx)
		return nil, err
	}

	app.Sessions = appcart.NewSessionManager(app.Storage.Store, log, cfg.Session.IdleTTL)
	app.Loader = appcatalog.NewLoader(source, log).WithLocale(cfg.App.Locale)
	app.Cart = appcart.NewService(app.Storage.Store, log).WithLocale(cfg.App.Locale)
	app.Inquiry = appcart.NewInquiryService(appcart.InquiryConfig{
		BaseURL:  cfg.Messaging.BaseURL,
		Phone:    cfg.Messaging.Phone,
		Template: cfg.Messaging.Template,
		Locale:   cfg.App.Locale,
	})

	if app.Meter.IsEnabled() {
		metrics, err := telemetry.NewStorefrontMetrics(telemetry.StorefrontMetricsConfig{
			Meter:  app.Meter.Meter("vitrina/storefront"),
			Logger: log,
		})
		if err != nil {
			log.Warn("Storefront metrics unavailable", zap.Error(err))
		} else {
			app.Metrics = metrics
			app.Loader.WithRecorder(metrics)
			app.Cart.WithRecorder(metrics)
			metrics.StartPeriodicCollection(ctx, app.Sessions, cfg.Telemetry.MetricsInterval)
		}
	}

	app.Sessions.StartSweeper(ctx, cfg.Session.SweepInterval)

	log.Info("Storefront ready",
		zap.String("storage", app.Storage.Driver),
		zap.Bool("storage_fallback", app.Storage.Fallback),
		zap.String("catalog_url", cfg.Catalog.URL),
		zap.String("locale", cfg.App.Locale),
	)
	return app, nil
}

// Close stops background workers, releases storage and flushes telemetry
func (a *App) Close(ctx context.Context) error {
	a.Sessions.Stop()
	if a.Metrics != nil {
		a.Metrics.Stop()
	}

	var errs []error
	if err := a.Storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	errs = append(errs, a.shutdownTelemetry(ctx)...)

	_ = a.Logger.Sync()
	return errors.Join(errs...)
}

func (a *App) shutdownTelemetry(ctx context.Context) []error {
	var errs []error
	if a.Logs != nil {
		if err := a.Logs.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Meter != nil {
		if err := a.Meter.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Tracer != nil {
		if err := a.Tracer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
