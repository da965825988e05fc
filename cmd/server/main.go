package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ukbuild/material-hunter/internal/ai"
	"github.com/ukbuild/material-hunter/internal/api"
	"github.com/ukbuild/material-hunter/internal/config"
	"github.com/ukbuild/material-hunter/internal/httpx"
	"github.com/ukbuild/material-hunter/internal/pipeline"
	"github.com/ukbuild/material-hunter/internal/scraper"
	"github.com/ukbuild/material-hunter/internal/search"
	"github.com/ukbuild/material-hunter/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Search history is optional; without a database URL the server still
	// answers searches, it just forgets them.
	var dbStore *store.Store
	if cfg.Database.URL != "" {
		dbStore, err = store.NewStore(cfg.Database.URL)
		if err != nil {
			slog.Error("failed to connect to store", "error", err)
			os.Exit(1)
		}
		defer dbStore.Close()

		workDir, _ := os.Getwd()
		schemaPath := filepath.Join(workDir, "internal", "store", "schema.sql")
		if err := dbStore.RunMigrations(schemaPath); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("no database configured, search history disabled")
	}

	aiClient := newAIClient(cfg)

	var suppliers *pipeline.SupplierTable
	if len(cfg.Suppliers.Aliases) > 0 {
		suppliers = pipeline.NewSupplierTable(cfg.Suppliers.Aliases)
	}
	pipe := pipeline.New(pipeline.Config{
		Suppliers:  suppliers,
		Prices:     pipeline.PriceRange{Min: cfg.Pipeline.PriceMin, Max: cfg.Pipeline.PriceMax},
		MaxResults: cfg.Pipeline.MaxResults,
	})

	fetcher := httpx.NewCollyFetcher(cfg.Search.UserAgent)
	fetcher.SetTimeout(cfg.Search.FetchTimeout)
	siteScraper := scraper.NewSiteScraper(fetcher)

	var sites []scraper.Site
	for _, site := range cfg.Suppliers.Sites {
		sites = append(sites, scraper.Site{Name: site.Name, BaseURL: site.URL, Delivery: site.Delivery})
	}

	svc := search.NewService(pipe, aiClient, siteScraper, sites, dbStore, search.Options{
		Workers:        cfg.Search.Workers,
		FetchTimeout:   cfg.Search.FetchTimeout,
		OverallTimeout: cfg.Search.OverallTimeout,
	})

	ctx := context.Background()
	svc.StartRetention(ctx, 24*time.Hour, cfg.Search.Retention)

	srv := api.NewServer(svc, cfg.Server.AllowedOrigins)

	slog.Info("starting server", "port", cfg.Server.Port)
	if err := http.ListenAndServe(":"+cfg.Server.Port, srv.Router()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func newAIClient(cfg *config.Config) ai.Client {
	if cfg.AI.Provider == "perplexity" {
		client := ai.NewPerplexityClient(cfg.AI.APIKey)
		if cfg.AI.Model != "" {
			client.WithModel(cfg.AI.Model)
		}
		return client
	}
	// Fall back to env-based detection so PERPLEXITY_API_KEY alone works.
	return ai.NewClient()
}
