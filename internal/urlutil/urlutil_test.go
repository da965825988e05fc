package urlutil

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantURL  string
		wantHost string
	}{
		{"adds scheme", "www.wickes.co.uk/search", "https://wickes.co.uk/search", "wickes.co.uk"},
		{"strips fragment", "https://wickes.co.uk/p#reviews", "https://wickes.co.uk/p", "wickes.co.uk"},
		{"cleans root path", "https://wickes.co.uk/", "https://wickes.co.uk", "wickes.co.uk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, host, err := Normalize(tt.raw)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if got != tt.wantURL {
				t.Errorf("url = %q, want %q", got, tt.wantURL)
			}
			if host != tt.wantHost {
				t.Errorf("host = %q, want %q", host, tt.wantHost)
			}
		})
	}

	if _, _, err := Normalize("  "); err == nil {
		t.Error("empty input must error")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://www.tradeinsulations.co.uk/products", "Tradeinsulations"},
		{"https://www.acme-building.co.uk", "Acme Building"},
		{"materialsmarket.com", "Materialsmarket"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := DisplayName(tt.raw); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	base := "https://www.wickes.co.uk/search"

	if got := Resolve(base, "/p/celotex-50mm"); got != "https://www.wickes.co.uk/p/celotex-50mm" {
		t.Errorf("Resolve = %q", got)
	}
	if got := Resolve(base, "https://cdn.example.com/a.jpg"); got != "https://cdn.example.com/a.jpg" {
		t.Errorf("absolute href must pass through, got %q", got)
	}
	if got := Resolve(base, "tel:03301234567"); got != "" {
		t.Errorf("tel link must resolve to nothing, got %q", got)
	}
	if got := Resolve(base, "mailto:sales@wickes.co.uk"); got != "" {
		t.Errorf("mailto link must resolve to nothing, got %q", got)
	}
}

func TestIsStaticAsset(t *testing.T) {
	if !IsStaticAsset("https://wickes.co.uk/img/board.jpg") {
		t.Error("jpg is a static asset")
	}
	if IsStaticAsset("https://wickes.co.uk/p/celotex-50mm") {
		t.Error("product page is not a static asset")
	}
}
