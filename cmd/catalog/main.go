package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"ProductAPI/internal/catalog"
	"ProductAPI/internal/config"
	"ProductAPI/pkg/kit"
)

const service = "catalog"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", service, err)
		os.Exit(2)
	}

	log, err := kit.NewLogger(service, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: init logger: %v\n", service, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("open store failed", zap.Error(err))
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &catalog.Server{
		Store:  store,
		Log:    log,
		APIKey: cfg.APIKey,
	}
	if cfg.WriteRateLimit > 0 {
		s.WriteLimiter = kit.NewIPRateLimiter(cfg.WriteRateLimit, time.Minute)
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(ctx, cfg.Addr(), h, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
		closeStore()
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (catalog.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory store")
		return catalog.NewMemStore(catalog.SeedProducts()), func() {}, nil
	}

	db, err := catalog.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	store := catalog.NewPostgresStore(db)
	if err := store.EnsureSchema(ctx, catalog.SeedProducts()); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	log.Info("using postgres store")
	return store, func() { _ = db.Close() }, nil
}
