package pipeline

import (
	"sort"
	"strings"

	"github.com/ukbuild/material-hunter/internal/urlutil"
)

// SupplierTable maps raw supplier mentions to canonical names. It is built
// once at startup from configuration and never mutated, so a single table is
// safe for concurrent pipeline invocations.
type SupplierTable struct {
	aliases []supplierAlias
}

type supplierAlias struct {
	alias     string
	canonical string
}

// NewSupplierTable copies the alias map into a lookup table. Longer aliases
// are tried first so "travis perkins" wins over any shorter overlap, and ties
// break alphabetically to keep resolution deterministic.
func NewSupplierTable(aliases map[string]string) *SupplierTable {
	t := &SupplierTable{aliases: make([]supplierAlias, 0, len(aliases))}
	for alias, canonical := range aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		canonical = strings.TrimSpace(canonical)
		if alias == "" || canonical == "" {
			continue
		}
		t.aliases = append(t.aliases, supplierAlias{alias: alias, canonical: canonical})
	}
	sort.Slice(t.aliases, func(i, j int) bool {
		if len(t.aliases[i].alias) != len(t.aliases[j].alias) {
			return len(t.aliases[i].alias) > len(t.aliases[j].alias)
		}
		return t.aliases[i].alias < t.aliases[j].alias
	})
	return t
}

// DefaultSupplierTable covers the UK building-material suppliers the service
// searches out of the box.
func DefaultSupplierTable() *SupplierTable {
	return NewSupplierTable(map[string]string{
		"insulation4less":            "Insulation4Less",
		"cutpriceinsulation":         "Cut Price Insulation",
		"cut price insulation":       "Cut Price Insulation",
		"nationalinsulationsupplies": "National Insulation Supplies",
		"buildersinsulation":         "Builders Insulation",
		"insulationuk":               "InsulationUK",
		"buyinsulation":              "Buy Insulation",
		"constructionmegastore":      "Construction Megastore",
		"insulationsuperstore":       "Insulation Superstore",
		"insulation superstore":      "Insulation Superstore",
		"tradeinsulations":           "Trade Insulations",
		"trade insulations":          "Trade Insulations",
		"wickes":                     "Wickes",
		"diy.com":                    "B&Q",
		"b&q":                        "B&Q",
		"buildbase":                  "Buildbase",
		"screwfix":                   "Screwfix",
		"jewson":                     "Jewson",
		"travis perkins":             "Travis Perkins",
		"travisperkins":              "Travis Perkins",
		"selco":                      "Selco",
		"homebase":                   "Homebase",
	})
}

// Resolve maps a free-text fragment or URL to a canonical supplier name.
// It returns "" when nothing matches; use ResolveOrDefault at the pipeline
// boundary where a record must always carry a supplier.
func (t *SupplierTable) Resolve(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	for _, a := range t.aliases {
		if strings.Contains(lower, a.alias) {
			return a.canonical
		}
	}
	if looksLikeURL(lower) {
		if name := urlutil.DisplayName(raw); name != "" {
			return name
		}
	}
	return ""
}

// ResolveOrDefault never returns empty: unresolvable input becomes the
// generic placeholder.
func (t *SupplierTable) ResolveOrDefault(raw string) string {
	if name := t.Resolve(raw); name != "" {
		return name
	}
	return PlaceholderSupplier
}

func looksLikeURL(lower string) bool {
	return strings.Contains(lower, "://") ||
		strings.HasPrefix(lower, "www.") ||
		strings.Contains(lower, ".co.uk") ||
		strings.Contains(lower, ".com") ||
		strings.Contains(lower, ".net")
}
