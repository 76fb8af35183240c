package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	cartapp "github.com/evermall/storefront/internal/cart/app"
	carthttp "github.com/evermall/storefront/internal/cart/http"
	cartgorm "github.com/evermall/storefront/internal/cart/infra/gormrepo"
	catalogapp "github.com/evermall/storefront/internal/catalog/app"
	cataloghttp "github.com/evermall/storefront/internal/catalog/http"
	catalogmkt "github.com/evermall/storefront/internal/catalog/infra/marketplace"
	checkoutapp "github.com/evermall/storefront/internal/checkout/app"
	checkouthttp "github.com/evermall/storefront/internal/checkout/http"
	"github.com/evermall/storefront/internal/checkout/infra/adapter"
	checkoutgorm "github.com/evermall/storefront/internal/checkout/infra/gormrepo"
	checkoutmkt "github.com/evermall/storefront/internal/checkout/infra/marketplace"
	"github.com/evermall/storefront/internal/checkout/infra/payment"
	"github.com/evermall/storefront/internal/checkout/infra/shipping"
	"github.com/evermall/storefront/pkg/config"
	"github.com/evermall/storefront/pkg/gormdb"
	"github.com/evermall/storefront/pkg/logger"
	"github.com/evermall/storefront/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "storefront",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	root := context.Background()
	ctx, cancel := shutdown.WithSignals(root)
	defer cancel()

	db, err := gormdb.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Error("database connect failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := gormdb.Close(db); err != nil {
			log.Error("database close failed", slog.Any("err", err))
		}
	}()
	if err := cartgorm.Migrate(db); err != nil {
		log.Error("cart migration failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := checkoutgorm.Migrate(db); err != nil {
		log.Error("address migration failed", slog.Any("err", err))
		os.Exit(1)
	}

	// catalog
	productSource := catalogmkt.NewClient(cfg.MarketplaceBaseURL, nil)
	catalogSvc := catalogapp.NewService(productSource)

	// cart; its emptied observer is the checkout service, bound below
	cartRepo := cartgorm.NewCartRepo(db)
	cartSvc := cartapp.NewService(cartRepo, nil)

	// checkout
	cartReader := adapter.NewCartServiceReader(cartSvc)
	checkoutSvc := checkoutapp.NewService(
		cartReader,
		cartReader,
		shipping.NewClient(cfg.ShippingBaseURL, nil),
		payment.NewStripeIntents(cfg.StripeSecretKey),
		checkoutmkt.NewOrderClient(cfg.MarketplaceBaseURL, nil),
		checkoutgorm.NewAddressStore(db),
		log,
	)
	cartSvc.SetObserver(checkoutSvc)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/readyz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	cataloghttp.NewHandler(catalogSvc, log).Register(e)
	carthttp.NewHandler(cartSvc, catalogSvc, log).Register(e)
	checkouthttp.NewHandler(checkoutSvc, log).Register(e)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}
