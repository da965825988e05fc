package pipeline

import (
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ukbuild/material-hunter/internal/observability"
	"github.com/ukbuild/material-hunter/internal/urlutil"
)

// Precondition errors, the only failures the pipeline ever reports.
// Everything downstream of input validation degrades instead of failing.
var (
	ErrEmptyContent  = errors.New("raw content is empty")
	ErrQueryTooShort = errors.New("query must be at least 3 characters")
)

const minQueryLength = 3

// ValidateQuery reports whether a query meets the minimum length. Callers
// that fan out over many sources check this once before spending fetches.
func ValidateQuery(query string) error {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < minQueryLength {
		return ErrQueryTooShort
	}
	return nil
}

// Config carries the injected, read-only knowledge the pipeline needs.
// A zero Config gets sensible defaults.
type Config struct {
	Suppliers  *SupplierTable
	Prices     PriceRange
	MaxResults int
}

// Pipeline converts one raw content blob plus a query into a ranked list of
// product records. It holds no mutable state, so a single instance serves
// any number of concurrent invocations.
type Pipeline struct {
	suppliers  *SupplierTable
	prices     PriceRange
	segmenter  *Segmenter
	extractor  *Extractor
	maxResults int
}

func New(cfg Config) *Pipeline {
	if cfg.Suppliers == nil {
		cfg.Suppliers = DefaultSupplierTable()
	}
	if cfg.Prices.Min == 0 && cfg.Prices.Max == 0 {
		cfg.Prices = DefaultPriceRange
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	return &Pipeline{
		suppliers:  cfg.Suppliers,
		prices:     cfg.Prices,
		segmenter:  NewSegmenter(cfg.Suppliers, cfg.Prices),
		extractor:  NewExtractor(cfg.Suppliers, cfg.Prices),
		maxResults: cfg.MaxResults,
	}
}

// Input is one pipeline invocation. Supplier and BaseURL are optional hints
// for content already scoped to a known supplier site.
type Input struct {
	Content    string
	Query      string
	Format     Format
	MaxResults int
	Supplier   string
	BaseURL    string
}

// Run executes the strategy state machine: segment under the strongest
// strategy for the format, extract, score, dedup, rank; fall through to the
// next strategy whenever that chain produces nothing. When every strategy is
// exhausted it returns a single synthetic placeholder rather than an empty
// list: degraded content is a success, an empty answer is not.
func (p *Pipeline) Run(input Input) ([]Record, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if err := ValidateQuery(input.Query); err != nil {
		return nil, err
	}

	max := input.MaxResults
	if max <= 0 {
		max = p.maxResults
	}

	// Text strategies applied to HTML input work on the flattened text.
	textContent := content
	if input.Format == FormatHTML {
		textContent = HTMLToText(content)
		if textContent == "" {
			textContent = content
		}
	}

	for _, strat := range strategiesFor(input.Format) {
		segContent := textContent
		if strat == StrategyHTMLContainer {
			segContent = content
		}

		segments := p.segmenter.Split(segContent, strat)
		qualifying := segments[:0:0]
		for _, seg := range segments {
			// Content already scoped to one supplier only needs a price;
			// cards on a merchant's own page rarely repeat the merchant.
			if input.Supplier != "" {
				if HasPrice(seg.Text, p.prices) {
					qualifying = append(qualifying, seg)
				}
				continue
			}
			if p.segmenter.Qualifies(seg) {
				qualifying = append(qualifying, seg)
			}
		}
		if len(qualifying) == 0 {
			if strat != StrategyPlainText {
				continue
			}
			// Last resort: the whole blob as a single segment.
			qualifying = []Segment{{Text: textContent}}
		}

		records := p.extractAll(qualifying, input)
		ranked := p.filterAndRank(records, input.Query, strat, max)
		if len(ranked) > 0 {
			observability.IncStrategyWin(strat.String())
			slog.Debug("pipeline strategy succeeded",
				"strategy", strat.String(),
				"segments", len(qualifying),
				"records", len(ranked),
			)
			return ranked, nil
		}
	}

	observability.IncPlaceholder()
	return []Record{p.Placeholder(content, input.Supplier)}, nil
}

// Merge re-ranks records gathered across several pipeline invocations, one
// per fetched source. It applies the same dedup and cap rules as Run.
func (p *Pipeline) Merge(records []Record, mode SortMode, max int) []Record {
	if max <= 0 {
		max = p.maxResults
	}
	return Rank(records, mode, max)
}

// Placeholder builds the synthetic last-resort record. The raw content is
// preserved verbatim so the caller can still show the user something useful.
func (p *Pipeline) Placeholder(content, supplier string) Record {
	if supplier == "" {
		supplier = PlaceholderSupplier
	}
	rec := Record{
		Supplier:    supplier,
		ProductName: GuessCategory(content),
		Price:       UnknownPrice(),
	}
	rec.setAttr(AttrSummary, content)
	return rec
}

func (p *Pipeline) extractAll(segments []Segment, input Input) []Record {
	var records []Record
	for _, seg := range segments {
		rec, ok := p.extractor.Extract(seg)
		if !ok {
			continue
		}
		if rec.Supplier == "" {
			rec.Supplier = input.Supplier
		}
		if rec.Supplier == "" {
			rec.Supplier = PlaceholderSupplier
		}
		if rec.ProductName == "" {
			rec.ProductName = GuessCategory(seg.Text)
		}
		if !rec.Price.Known {
			rec.Price = UnknownPrice()
		}
		if seg.URL != "" {
			// A product link pointing at a stylesheet or image is a bad pick
			// from the card's first anchor; drop it rather than mislead.
			if u := urlutil.Resolve(input.BaseURL, seg.URL); u != "" && !urlutil.IsStaticAsset(u) {
				rec.setAttr(AttrURL, u)
			}
		}
		if seg.ImageURL != "" {
			rec.setAttr(AttrImageURL, urlutil.Resolve(input.BaseURL, seg.ImageURL))
		}
		records = append(records, rec)
	}
	return records
}

// filterAndRank scores records against the query and drops weak matches,
// unless doing so would drop everything. The always-return-something policy
// outranks the threshold.
func (p *Pipeline) filterAndRank(records []Record, query string, strat Strategy, max int) []Record {
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		records[i].Relevance = Score(records[i], query)
	}

	threshold := minRelevance(strat)
	kept := records[:0:0]
	for _, rec := range records {
		if rec.Relevance >= threshold {
			kept = append(kept, rec)
		}
	}
	if len(kept) == 0 {
		kept = records
	}
	return Rank(kept, ByRelevance, max)
}
