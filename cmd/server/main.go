package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/bootstrap"
	"github.com/vitrina/backend/internal/infrastructure/config"
	"github.com/vitrina/backend/internal/infrastructure/logger"
	"github.com/vitrina/backend/internal/interfaces/http/handler"
	"github.com/vitrina/backend/internal/interfaces/http/middleware"
	"github.com/vitrina/backend/internal/interfaces/http/router"
)

//	@title			Vitrina Storefront API
//	@version		1.0
//	@description	Product catalog, shopping cart and checkout for the Vitrina storefront

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	SessionID
//	@in							header
//	@name						X-Session-ID

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{})
	if err != nil {
		panic("Failed to start storefront: " + err.Error())
	}
	log := app.Logger

	log.Info("Starting Vitrina storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	secureCfg := middleware.DefaultSecurityConfig()
	secureCfg.HSTSEnabled = cfg.App.Env == "production"

	// Global middleware; RequestID first so every log line and span carries it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		Enabled:        cfg.Telemetry.Enabled,
		TracerProvider: app.Tracer.Provider(),
	}))
	engine.Use(middleware.SecureWithConfig(secureCfg))
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: app.Meter,
		Enabled:       cfg.Telemetry.Enabled,
	}))

	healthHandler := handler.NewHealthHandler(handler.HealthConfig{
		Store:    app.Storage.Store,
		Driver:   app.Storage.Driver,
		Fallback: app.Storage.Fallback,
		Sessions: app.Sessions,
	})
	engine.GET("/health", healthHandler.Health)

	var loadLimit gin.HandlerFunc
	if cfg.HTTP.CatalogLoadLimit > 0 {
		loadLimit = middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.CatalogLoadLimit, cfg.HTTP.CatalogLoadWindow))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(
		middleware.Session(app.Sessions, middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			Secure:     cfg.Session.CookieSecure,
			MaxAge:     cfg.Session.CookieMaxAge,
		}),
		middleware.SpanEnricher(),
	)
	r.Register(router.Storefront{
		Catalog:          handler.NewCatalogHandler(app.Loader, app.Inquiry),
		Cart:             handler.NewCartHandler(app.Cart),
		CatalogLoadLimit: loadLimit,
	}.Groups()...)
	r.Setup()
	log.Debug("Routes registered", zap.Strings("routes", r.Paths()))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stop()

	if err := app.Close(shutdownCtx); err != nil {
		log.Error("Error releasing resources", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
