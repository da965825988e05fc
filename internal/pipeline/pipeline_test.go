package pipeline

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestRunTableContent(t *testing.T) {
	content := strings.Join([]string{
		"| Rank | Supplier | Price |",
		"|------|----------|-------|",
		"| 1 | Trade Insulations – Celotex GA4050 50mm | £17.50 | Free delivery |",
		"| 2 | Wickes – Kingspan TP10 50mm | £21.00 | In stock |",
	}, "\n")

	records, err := New(Config{}).Run(Input{Content: content, Query: "50mm insulation board"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Supplier != "Trade Insulations" {
		t.Errorf("first supplier = %q, want Trade Insulations (equal relevance, cheaper)", records[0].Supplier)
	}
	if records[0].Price.Value != 17.50 {
		t.Errorf("first price = %v, want 17.50", records[0].Price.Value)
	}
	if records[1].Supplier != "Wickes" {
		t.Errorf("second supplier = %q, want Wickes", records[1].Supplier)
	}
}

func TestRunNumberedListContent(t *testing.T) {
	content := strings.Join([]string{
		"Here are the cheapest options:",
		"",
		"1. Buildbase – Kingspan Therma PIR Board 50mm – £24.99 (£8.33 per m²). In stock.",
		"",
		"2. Wickes – Celotex GA4050 PIR Board 50mm – £26.50. Free delivery over £75.",
	}, "\n")

	records, err := New(Config{}).Run(Input{Content: content, Query: "50mm PIR board"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	suppliers := map[string]bool{}
	for _, rec := range records {
		suppliers[rec.Supplier] = true
		if !rec.Price.Known {
			t.Errorf("record %q has no price", rec.ProductName)
		}
	}
	if !suppliers["Buildbase"] || !suppliers["Wickes"] {
		t.Errorf("suppliers = %v, want Buildbase and Wickes", suppliers)
	}
}

func TestRunHTMLWithSupplierHint(t *testing.T) {
	content := `<html><body>
<div class="product-card">
  <h3 class="product-title">Celotex GA4050 PIR Board 50mm</h3>
  <span class="price">£17.50</span>
  <a href="/celotex-ga4050">View</a>
</div>
<div class="product-card">
  <h3 class="product-title">Kingspan TP10 PIR Board 25mm</h3>
  <span class="price">£14.00</span>
</div>
</body></html>`

	records, err := New(Config{}).Run(Input{
		Content:  content,
		Query:    "celotex 50mm",
		Format:   FormatHTML,
		Supplier: "Wickes",
		BaseURL:  "https://www.wickes.co.uk",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("got no records")
	}
	first := records[0]
	if first.Supplier != "Wickes" {
		t.Errorf("Supplier = %q, want the hint applied", first.Supplier)
	}
	if first.ProductName != "Celotex GA4050 PIR Board 50mm" {
		t.Errorf("ProductName = %q, want the matching card first", first.ProductName)
	}
	if got := first.Attributes[AttrURL]; got != "https://www.wickes.co.uk/celotex-ga4050" {
		t.Errorf("url attribute = %q, want resolved against the base", got)
	}
}

func TestRunEmptyContent(t *testing.T) {
	_, err := New(Config{}).Run(Input{Content: "   ", Query: "50mm insulation"})
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("err = %v, want ErrEmptyContent", err)
	}
}

func TestRunShortQuery(t *testing.T) {
	_, err := New(Config{}).Run(Input{Content: "Wickes £10.00", Query: "ab"})
	if !errors.Is(err, ErrQueryTooShort) {
		t.Errorf("err = %v, want ErrQueryTooShort", err)
	}
}

func TestValidateQuery(t *testing.T) {
	if err := ValidateQuery("pir"); err != nil {
		t.Errorf("three characters should validate, got %v", err)
	}
	if err := ValidateQuery(" a "); !errors.Is(err, ErrQueryTooShort) {
		t.Errorf("err = %v, want ErrQueryTooShort", err)
	}
}

func TestRunPhoneOnlyContentReturnsPlaceholder(t *testing.T) {
	records, err := New(Config{}).Run(Input{Content: "0330 123 4567", Query: "50mm insulation"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want the single placeholder", len(records))
	}
	rec := records[0]
	if rec.Supplier != PlaceholderSupplier {
		t.Errorf("Supplier = %q, want %q", rec.Supplier, PlaceholderSupplier)
	}
	if rec.Price.Known {
		t.Error("a phone number must never become a price")
	}
	if rec.Attributes[AttrSummary] != "0330 123 4567" {
		t.Errorf("summary = %q, want the raw content preserved", rec.Attributes[AttrSummary])
	}
}

func TestRunAlwaysReturnsSomething(t *testing.T) {
	contents := []string{
		"completely unrelated prose about garden furniture",
		"<html><body><p>nothing priced here</p></body></html>",
		"£££ broken €% content 999999999",
	}
	p := New(Config{})
	for _, content := range contents {
		records, err := p.Run(Input{Content: content, Query: "50mm insulation"})
		if err != nil {
			t.Fatalf("Run(%q): %v", content, err)
		}
		if len(records) == 0 {
			t.Errorf("Run(%q) returned no records", content)
		}
	}
}

func TestRunIdempotent(t *testing.T) {
	content := "1. Buildbase – Kingspan PIR 50mm – £24.99\n\n2. Wickes – Celotex 50mm – £26.50"
	p := New(Config{})
	in := Input{Content: content, Query: "50mm PIR"}

	first, err := p.Run(in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := p.Run(in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated runs differ:\n%#v\n%#v", first, second)
	}
}

func TestRunRespectsMaxResults(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&sb, "| %d | Wickes – Kingspan PIR Board variant %s 50mm | £2%d.50 |\n",
			i, strings.Repeat("x", i), i)
	}

	records, err := New(Config{}).Run(Input{
		Content:    sb.String(),
		Query:      "50mm PIR",
		MaxResults: 3,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(records) > 3 {
		t.Errorf("got %d records, want at most 3", len(records))
	}
}

func TestMergeSortsAcrossSources(t *testing.T) {
	p := New(Config{})
	records := []Record{
		{Supplier: "Wickes", ProductName: "Celotex 50mm", Price: KnownPrice(26.50)},
		{Supplier: "Buildbase", ProductName: "Kingspan 50mm", Price: KnownPrice(24.99)},
		{Supplier: "Jewson", ProductName: "Recticel 50mm", Price: UnknownPrice()},
	}

	merged := p.Merge(records, ByPrice, 10)
	if len(merged) != 3 {
		t.Fatalf("got %d records, want 3", len(merged))
	}
	if merged[0].Supplier != "Buildbase" {
		t.Errorf("first = %q, want the cheapest", merged[0].Supplier)
	}
	if merged[2].Price.Known {
		t.Error("unknown price must merge last")
	}
}

func TestPlaceholderGuessesCategory(t *testing.T) {
	p := New(Config{})

	rec := p.Placeholder("best celotex pir deals around", "")
	if rec.ProductName != "PIR Insulation Board" {
		t.Errorf("ProductName = %q, want the PIR category", rec.ProductName)
	}

	rec = p.Placeholder("nothing recognisable", "Wickes")
	if rec.Supplier != "Wickes" {
		t.Errorf("Supplier = %q, want the provided supplier kept", rec.Supplier)
	}
	if rec.ProductName != PlaceholderProduct {
		t.Errorf("ProductName = %q, want %q", rec.ProductName, PlaceholderProduct)
	}
}
