package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format tells the pipeline how the raw content should be segmented first.
type Format int

const (
	FormatText Format = iota
	FormatHTML
)

const (
	// PlaceholderSupplier is used whenever no supplier could be resolved.
	PlaceholderSupplier = "UK Supplier"
	// PlaceholderProduct is the generic product fallback when no category fits.
	PlaceholderProduct = "Building Material"
	// ContactForPrice is the display value for records without a usable price.
	ContactForPrice = "Contact for price"
)

// Attribute keys for the optional Record fields.
const (
	AttrPricePerUnit = "price_per_unit"
	AttrDimensions   = "dimensions"
	AttrCoverage     = "coverage"
	AttrAvailability = "availability"
	AttrDelivery     = "delivery"
	AttrContact      = "contact"
	AttrURL          = "url"
	AttrImageURL     = "image_url"
	AttrSummary      = "summary"
)

// Money is a canonical price: a non-negative two-decimal value plus the
// display string it was parsed from. A Money with Known=false means the
// price could not be determined and sorts after every known price.
type Money struct {
	Value   float64
	Display string
	Known   bool
}

// KnownPrice builds a Money from a numeric value with a canonical display.
func KnownPrice(value float64) Money {
	return Money{Value: value, Display: fmt.Sprintf("£%.2f", value), Known: true}
}

// UnknownPrice is the sentinel for "no usable price found".
func UnknownPrice() Money {
	return Money{Display: ContactForPrice}
}

// Less reports whether m sorts before other. Unknown prices sort last;
// two unknown prices compare equal.
func (m Money) Less(other Money) bool {
	if m.Known != other.Known {
		return m.Known
	}
	if !m.Known {
		return false
	}
	return m.Value < other.Value
}

func (m Money) MarshalJSON() ([]byte, error) {
	if !m.Known {
		return json.Marshal(struct {
			Display string `json:"display"`
		}{Display: m.Display})
	}
	return json.Marshal(struct {
		Display string  `json:"display"`
		Value   float64 `json:"value"`
	}{Display: m.Display, Value: m.Value})
}

// Record is the unit produced by the pipeline. Supplier and ProductName are
// never empty on records leaving the pipeline; Relevance is transient and
// only meaningful for ordering.
type Record struct {
	Supplier    string            `json:"supplier"`
	ProductName string            `json:"product_name"`
	Price       Money             `json:"price"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Relevance   float64           `json:"-"`
}

func (r *Record) setAttr(key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if r.Attributes == nil {
		r.Attributes = make(map[string]string)
	}
	r.Attributes[key] = value
}

var categoryGuesses = []struct {
	keywords []string
	name     string
}{
	{[]string{"plasterboard", "gypsum", "gyproc", "drywall"}, "Plasterboard"},
	{[]string{"pir", "celotex", "kingspan", "recticel", "ecotherm", "xtratherm", "unilin"}, "PIR Insulation Board"},
	{[]string{"rockwool", "mineral wool", "knauf", "superglass", "isover"}, "Mineral Wool Insulation"},
	{[]string{"osb", "plywood", "chipboard", "timber"}, "Timber Sheet Material"},
	{[]string{"insulation"}, "Insulation Board"},
}

// GuessCategory picks a product-name placeholder from keywords present in the
// text, falling back to the generic building-material label.
func GuessCategory(text string) string {
	lower := strings.ToLower(text)
	for _, g := range categoryGuesses {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				return g.name
			}
		}
	}
	return PlaceholderProduct
}
