package pipeline

import "testing"

func TestSupplierTableResolve(t *testing.T) {
	table := DefaultSupplierTable()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"exact alias", "wickes", "Wickes"},
		{"alias inside text", "Trade Insulations – Celotex GA4050", "Trade Insulations"},
		{"alias inside url", "https://www.buildbase.co.uk/search?q=pir", "Buildbase"},
		{"domain alias", "diy.com", "B&Q"},
		{"case insensitive", "SCREWFIX", "Screwfix"},
		{"two word alias", "available from Travis Perkins today", "Travis Perkins"},
		{"unknown text", "a load-bearing wall", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Resolve(tt.raw); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSupplierTableResolveUnknownURL(t *testing.T) {
	table := DefaultSupplierTable()

	// A merchant not in the table still gets a readable name from its domain.
	got := table.Resolve("https://www.acme-building.co.uk/products")
	if got != "Acme Building" {
		t.Errorf("Resolve = %q, want %q", got, "Acme Building")
	}
}

func TestSupplierTableResolveOrDefault(t *testing.T) {
	table := DefaultSupplierTable()

	if got := table.ResolveOrDefault("nothing recognisable"); got != PlaceholderSupplier {
		t.Errorf("ResolveOrDefault = %q, want %q", got, PlaceholderSupplier)
	}
	if got := table.ResolveOrDefault("jewson branch"); got != "Jewson" {
		t.Errorf("ResolveOrDefault = %q, want %q", got, "Jewson")
	}
}

func TestNewSupplierTableLongestAliasWins(t *testing.T) {
	table := NewSupplierTable(map[string]string{
		"insulation":       "Generic Insulation",
		"trade insulation": "Trade Insulation Co",
	})

	if got := table.Resolve("trade insulation prices"); got != "Trade Insulation Co" {
		t.Errorf("Resolve = %q, want %q (longest alias wins)", got, "Trade Insulation Co")
	}
}
