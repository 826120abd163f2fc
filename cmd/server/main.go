package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rossfinn/minimart/internal"
	"github.com/rossfinn/minimart/internal/handler"
	"github.com/rossfinn/minimart/internal/handler/admin"
	"github.com/rossfinn/minimart/internal/handler/storefront"
	"github.com/rossfinn/minimart/internal/middleware"
	"github.com/rossfinn/minimart/internal/postgres"
	"github.com/rossfinn/minimart/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := internal.NewLogger(cfg)
	log.Info().Str("env", cfg.Env).Uint16("port", cfg.Port).Msg("starting minimart")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Migrations run over database/sql; the app itself talks pgx.
	migrateDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database for migrations: %w", err)
	}
	if err := internal.RunMigrations(migrateDB); err != nil {
		migrateDB.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	migrateDB.Close()
	log.Info().Msg("migrations applied")

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	productStore := postgres.NewProductStore(pool)
	cartStore := postgres.NewCartStore(pool)
	invoiceStore := postgres.NewInvoiceStore(pool)
	userStore := postgres.NewUserStore(pool)

	products := service.NewCatalogService(productStore)
	carts := service.NewCartService(cartStore, products)
	checkout := service.NewCheckoutService(invoiceStore, cartStore, nil)
	users := service.NewUserService(userStore)

	cookies := middleware.CookieConfig{
		Domain: cfg.Session.CookieDomain,
		Secure: cfg.Session.Secure,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(metrics.Middleware())

	// Probes and scrapes stay outside the identity chain; they carry no
	// shopper and must not be handed cookies.
	e.GET("/healthz", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unreachable")
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	shop := e.Group("", middleware.WithIdentity(users, carts, cookies, log))
	storefront.New(products, carts, checkout, users, cookies, log).Register(shop)
	admin.New(products).Register(shop)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info().Uint16("port", cfg.Port).Msg("listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
