package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// PriceRange bounds plausible prices. Tokens outside the range are treated as
// false positives (phone numbers, years, product codes) and discarded.
type PriceRange struct {
	Min float64
	Max float64
}

// DefaultPriceRange covers typical per-board and per-pack building material
// prices in GBP.
var DefaultPriceRange = PriceRange{Min: 1, Max: 2000}

func (r PriceRange) plausible(v float64) bool {
	if r.Min == 0 && r.Max == 0 {
		r = DefaultPriceRange
	}
	return v >= r.Min && v <= r.Max
}

var (
	// priceTokenPattern matches anything that could be a price: an optional
	// pound sign, digits with optional thousands separators, optional decimals.
	priceTokenPattern = regexp.MustCompile(`£\s*\d+(?:,\d{3})*(?:\.\d{1,2})?|\b\d+(?:,\d{3})*(?:\.\d{1,2})?\b`)

	// perUnitContext matches the text immediately after a token when the
	// token is a per-unit rate ("£8.33 per m²", "18.50 / sheet").
	perUnitContext = regexp.MustCompile(`^\s*(?:per|/|a)\s*(m²|m2|sqm|square metre|board|sheet|roll|pack|unit|length|bag)\b`)
)

var noPricePhrases = []string{
	"contact for price",
	"price on request",
	"price on application",
	"call for price",
	"contact supplier",
	"poa",
}

type priceToken struct {
	value   float64
	display string
	perUnit bool
	unit    string
}

// NormalizePrice scans free-form text for price-shaped tokens and returns the
// displayed price plus an optional per-unit rate. Bare integers with neither a
// currency symbol, decimals, nor a per-unit keyword are not price-shaped, so
// phone numbers and years never become prices even before range rejection.
//
// When a segment carries two unlabeled tokens the first one wins as the
// displayed price; the "higher of two" guess some sources use has no reliable
// signal behind it and is deliberately not applied.
func NormalizePrice(text string, rng PriceRange) (price, perUnit Money) {
	price = UnknownPrice()
	tokens := scanPriceTokens(text, rng)

	for _, tok := range tokens {
		if tok.perUnit {
			if !perUnit.Known {
				perUnit = Money{Value: tok.value, Display: tok.display, Known: true}
			}
			continue
		}
		if !price.Known {
			price = Money{Value: tok.value, Display: tok.display, Known: true}
		}
	}

	// A segment whose only prices are per-unit rates still displays one.
	if !price.Known && perUnit.Known {
		price = KnownPrice(perUnit.Value)
	}
	return price, perUnit
}

// HasPrice reports whether the text contains at least one plausible price.
func HasPrice(text string, rng PriceRange) bool {
	p, _ := NormalizePrice(text, rng)
	return p.Known
}

// IsNoPricePhrase reports whether the text explicitly says there is no
// listed price.
func IsNoPricePhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range noPricePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func scanPriceTokens(text string, rng PriceRange) []priceToken {
	var tokens []priceToken
	for _, loc := range priceTokenPattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		rest := text[loc[1]:]

		hasSymbol := strings.HasPrefix(raw, "£")
		digits := strings.TrimSpace(strings.TrimPrefix(raw, "£"))
		hasDecimal := strings.Contains(digits, ".")

		unit := ""
		if m := perUnitContext.FindStringSubmatch(strings.ToLower(rest)); m != nil {
			unit = m[1]
		}

		// Bare integers are not price-shaped on their own.
		if !hasSymbol && !hasDecimal && unit == "" {
			continue
		}
		// A leading zero without a symbol is a phone fragment, not a price.
		if !hasSymbol && strings.HasPrefix(digits, "0") && !strings.HasPrefix(digits, "0.") {
			continue
		}

		value, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
		if err != nil || !rng.plausible(value) {
			continue
		}

		tok := priceToken{value: value, display: KnownPrice(value).Display}
		if unit != "" {
			tok.perUnit = true
			tok.unit = unit
			tok.display = tok.display + " per " + unit
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
