package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ukbuild/material-hunter/internal/ai"
	"github.com/ukbuild/material-hunter/internal/observability"
	"github.com/ukbuild/material-hunter/internal/pipeline"
	"github.com/ukbuild/material-hunter/internal/scraper"
	"github.com/ukbuild/material-hunter/internal/store"
)

const (
	// SourceAI marks results extracted from an AI answer; SourceLive marks
	// results scraped from supplier storefronts.
	SourceAI   = "ai"
	SourceLive = "live"
	SourceDemo = "demo"

	defaultWorkers        = 5
	defaultFetchTimeout   = 10 * time.Second
	defaultOverallTimeout = 30 * time.Second

	// perSiteCap bounds how many records one storefront contributes before
	// the cross-site merge, so a single supplier cannot crowd out the rest.
	perSiteCap = 3
)

// Service runs searches end to end: gather raw content (AI answer or live
// supplier pages), push it through the extraction pipeline, rank the merged
// records, and save history when a store is configured.
type Service struct {
	pipe    *pipeline.Pipeline
	ai      ai.Client
	scraper *scraper.SiteScraper
	sites   []scraper.Site
	store   *store.Store

	workers        int
	fetchTimeout   time.Duration
	overallTimeout time.Duration
}

// Options tunes the live path. Zero values get defaults.
type Options struct {
	Workers        int
	FetchTimeout   time.Duration
	OverallTimeout time.Duration
}

// NewService wires the search service. store may be nil; history is then
// disabled. sites may be nil to use the default supplier list.
func NewService(pipe *pipeline.Pipeline, aiClient ai.Client, siteScraper *scraper.SiteScraper, sites []scraper.Site, st *store.Store, opts Options) *Service {
	if len(sites) == 0 {
		sites = scraper.DefaultSites()
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.OverallTimeout <= 0 {
		opts.OverallTimeout = defaultOverallTimeout
	}
	return &Service{
		pipe:           pipe,
		ai:             aiClient,
		scraper:        siteScraper,
		sites:          sites,
		store:          st,
		workers:        opts.Workers,
		fetchTimeout:   opts.FetchTimeout,
		overallTimeout: opts.OverallTimeout,
	}
}

// Result is one completed search.
type Result struct {
	Query     string            `json:"query"`
	Records   []pipeline.Record `json:"results"`
	Suppliers []string          `json:"searched_suppliers"`
	Source    string            `json:"source"`
	Elapsed   time.Duration     `json:"-"`
}

// SearchAI asks the AI provider and extracts records from its answer.
func (s *Service) SearchAI(ctx context.Context, query string, maxResults int) (Result, error) {
	start := time.Now()

	observability.IncAICall("search")
	answer, err := s.ai.SearchMaterials(ctx, query)
	if err != nil {
		observability.IncError(observability.ErrorAI, "search")
		return Result{}, err
	}

	records, err := s.pipe.Run(pipeline.Input{
		Content:    answer.Content,
		Query:      query,
		Format:     pipeline.FormatText,
		MaxResults: maxResults,
	})
	if err != nil {
		return Result{}, err
	}
	observability.AddRecordsExtracted(len(records))

	res := Result{
		Query:     query,
		Records:   records,
		Suppliers: suppliersOf(records),
		Source:    SourceAI,
		Elapsed:   time.Since(start),
	}
	s.saveHistory(ctx, res)
	return res, nil
}

// SearchLive fetches each supplier's own search page concurrently and merges
// the extracted records cheapest-first. Sites that fail or time out are
// skipped; only an invalid query fails the whole search.
func (s *Service) SearchLive(ctx context.Context, query string, maxResults int) (Result, error) {
	start := time.Now()

	if err := pipeline.ValidateQuery(query); err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.overallTimeout)
	defer cancel()

	type siteOutcome struct {
		site    scraper.Site
		records []pipeline.Record
	}

	jobs := make(chan scraper.Site)
	outcomes := make(chan siteOutcome, len(s.sites))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for site := range jobs {
				outcomes <- siteOutcome{site: site, records: s.searchSite(ctx, site, query)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, site := range s.sites {
			select {
			case jobs <- site:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var merged []pipeline.Record
	var searched []string
	for outcome := range outcomes {
		searched = append(searched, outcome.site.Name)
		merged = append(merged, outcome.records...)
	}

	records := s.pipe.Merge(merged, pipeline.ByPrice, maxResults)
	if len(records) == 0 {
		records = []pipeline.Record{s.pipe.Placeholder(
			"No live supplier results for "+query, "")}
	}
	observability.AddRecordsExtracted(len(records))

	res := Result{
		Query:     query,
		Records:   records,
		Suppliers: searched,
		Source:    SourceLive,
		Elapsed:   time.Since(start),
	}
	s.saveHistory(ctx, res)
	return res, nil
}

// searchSite fetches and extracts one storefront. Synthetic placeholder
// records are dropped here: a site that yielded nothing real contributes
// nothing to the merge.
func (s *Service) searchSite(ctx context.Context, site scraper.Site, query string) []pipeline.Record {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	fetchStart := time.Now()
	page, err := s.scraper.FetchSearchPage(fetchCtx, site, query)
	if err != nil {
		observability.IncError(observability.ClassifyFetchError(err), "scraper")
		slog.Debug("live fetch failed", "site", site.Name, "error", err)
		return nil
	}
	observability.IncPagesFetched(site.Name)
	observability.ObserveFetchDuration(site.Name, time.Since(fetchStart).Seconds())

	records, err := s.pipe.Run(pipeline.Input{
		Content:    page.HTML,
		Query:      query,
		Format:     pipeline.FormatHTML,
		MaxResults: perSiteCap,
		Supplier:   site.Name,
		BaseURL:    site.BaseURL,
	})
	if err != nil {
		return nil
	}

	kept := records[:0:0]
	for _, rec := range records {
		if _, synthetic := rec.Attributes[pipeline.AttrSummary]; synthetic && !rec.Price.Known {
			continue
		}
		if rec.Attributes[pipeline.AttrDelivery] == "" && site.Delivery != "" {
			if rec.Attributes == nil {
				rec.Attributes = map[string]string{}
			}
			rec.Attributes[pipeline.AttrDelivery] = site.Delivery
		}
		kept = append(kept, rec)
	}
	return kept
}

// Demo runs the pipeline over the canned mock answer. It exists so the API
// can show the extraction path working with no API key and no network.
func (s *Service) Demo(ctx context.Context, query string, maxResults int) (Result, error) {
	start := time.Now()

	mock := ai.NewMockClient()
	answer, _ := mock.SearchMaterials(ctx, query)

	records, err := s.pipe.Run(pipeline.Input{
		Content:    answer.Content,
		Query:      query,
		Format:     pipeline.FormatText,
		MaxResults: maxResults,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Query:     query,
		Records:   records,
		Suppliers: suppliersOf(records),
		Source:    SourceDemo,
		Elapsed:   time.Since(start),
	}, nil
}

// Sites exposes the configured supplier list for the API.
func (s *Service) Sites() []scraper.Site {
	return s.sites
}

// History returns saved searches, newest first. Empty when no store is
// configured.
func (s *Service) History(ctx context.Context, limit int) ([]store.Search, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.RecentSearches(ctx, limit)
}

// StartRetention begins the background loop that expires old search history.
func (s *Service) StartRetention(ctx context.Context, interval, retention time.Duration) {
	if s.store == nil {
		return
	}
	go s.retentionLoop(ctx, interval, retention)
}

func (s *Service) retentionLoop(ctx context.Context, interval, retention time.Duration) {
	s.cleanup(ctx, retention)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup(ctx, retention)
		}
	}
}

func (s *Service) cleanup(ctx context.Context, retention time.Duration) {
	deleted, err := s.store.DeleteOldSearches(ctx, retention)
	if err != nil {
		observability.IncError(observability.ErrorStore, "retention")
		slog.Warn("history cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("history cleanup removed expired searches", "deleted", deleted)
	}
}

func (s *Service) saveHistory(ctx context.Context, res Result) {
	if s.store == nil {
		return
	}
	if _, err := s.store.SaveSearch(ctx, res.Query, res.Source, res.Elapsed, res.Records); err != nil {
		observability.IncError(observability.ErrorStore, "search")
		slog.Warn("failed to save search history", "query", res.Query, "error", err)
	}
}

func suppliersOf(records []pipeline.Record) []string {
	seen := make(map[string]bool, len(records))
	var out []string
	for _, rec := range records {
		if rec.Supplier == "" || seen[rec.Supplier] {
			continue
		}
		seen[rec.Supplier] = true
		out = append(out, rec.Supplier)
	}
	return out
}
