package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ukbuild/material-hunter/internal/httpx"
)

// searchPathPatterns are the storefront search URL shapes tried in order.
// %s is the encoded query. Most UK merchant sites answer one of these.
var searchPathPatterns = []string{
	"/search?q=%s",
	"/catalogsearch/result/?q=%s",
	"/?s=%s",
	"/search/%s",
	"/products?search=%s",
}

// SiteScraper fetches supplier search-results pages through the shared
// polite fetcher. It does no parsing; pages go to the extraction pipeline.
type SiteScraper struct {
	fetcher *httpx.CollyFetcher
}

func NewSiteScraper(fetcher *httpx.CollyFetcher) *SiteScraper {
	return &SiteScraper{fetcher: fetcher}
}

// FetchSearchPage tries the site's search URL shapes until one returns a
// page that looks like priced results. A page with no sterling sign is a
// miss, not an error; only exhausting every pattern fails.
func (s *SiteScraper) FetchSearchPage(ctx context.Context, site Site, query string) (Page, error) {
	encoded := url.QueryEscape(strings.TrimSpace(query))
	if encoded == "" {
		return Page{}, fmt.Errorf("empty query for %s", site.Name)
	}

	var lastErr error
	for _, pattern := range searchPathPatterns {
		if ctx.Err() != nil {
			return Page{}, ctx.Err()
		}
		target := strings.TrimRight(site.BaseURL, "/") + fmt.Sprintf(pattern, encoded)
		body, status, err := s.fetcher.FetchPage(ctx, target)
		if err != nil {
			lastErr = err
			continue
		}
		if status != 200 || len(body) == 0 {
			lastErr = fmt.Errorf("%s returned status %d", target, status)
			continue
		}
		html := string(body)
		if !strings.Contains(html, "£") && !strings.Contains(html, "&pound;") {
			lastErr = fmt.Errorf("%s returned no priced content", target)
			continue
		}
		return Page{Site: site, URL: target, HTML: html}, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no search pattern matched for %s", site.Name)
	}
	return Page{}, fmt.Errorf("search %s: %w", site.Name, lastErr)
}
