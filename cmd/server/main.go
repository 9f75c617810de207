// Package main initializes and starts the GophStore API server,
// setting up configuration, logging, storage, services, handlers and
// graceful shutdown.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/GophStore/internal/auth"
	"github.com/atinyakov/GophStore/internal/config"
	"github.com/atinyakov/GophStore/internal/db"
	"github.com/atinyakov/GophStore/internal/logger"
	"github.com/atinyakov/GophStore/internal/repository"
	"github.com/atinyakov/GophStore/internal/server/handler/http"
	"github.com/atinyakov/GophStore/internal/service"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const (
	healthInterval  = 30 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Parse command-line, config file and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hasher := auth.NewPasswordHasher(bcrypt.DefaultCost)
	tokens := auth.NewTokenManager(options.TokenSecret, options.TokenTTL)
	if options.TokenSecret == config.DefaultTokenSecret {
		zapLogger.Warn("using the default token secret; set TOKEN_SECRET in production")
	}

	// Select the storage backend once; it does not change at runtime.
	gateway, err := repository.Open(ctx, options, hasher, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init storage", zap.Error(err))
	}
	monitor := db.StartHealthMonitor(ctx, gateway, healthInterval, zapLogger)

	// Initialize business-logic services.
	storeService := service.NewStoreService(gateway, hasher, tokens)
	catalogService := service.NewCatalogService(gateway)
	inventoryService := service.NewInventoryService(gateway)

	// Build the router with middleware and routes.
	router := http.NewRouter(http.Handlers{
		Stores:    &http.StoreHandler{StoreService: storeService, Log: zapLogger},
		Products:  &http.ProductHandler{CatalogService: catalogService, Log: zapLogger},
		Inventory: &http.InventoryHandler{InventoryService: inventoryService, Log: zapLogger},
		Health:    &http.HealthHandler{Database: gateway.Name(), Status: monitor},
	}, tokens, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if options.TLSEnabled() {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
			err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
		} else {
			zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			// Storage closes only after in-flight requests have drained.
			"http-server": func(ctx context.Context) error {
				zapLogger.Info("shutting down HTTP server")
				shutdownErr := server.Shutdown(ctx)
				stop()
				zapLogger.Info("closing storage", zap.String("backend", gateway.Name()))
				return errors.Join(shutdownErr, gateway.Close(ctx))
			},
		},
	)

	exitCode := <-wait
	zapLogger.Info("server stopped", zap.Int("exit_code", exitCode))
	_ = zapLogger.Sync()
	os.Exit(exitCode)
}
