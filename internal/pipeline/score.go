package pipeline

import (
	"regexp"
	"strings"
)

// stopWords are query words that carry no product signal. Intent words like
// "cheapest" are included: they steer ranking, not matching.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "per": {},
	"price": {}, "prices": {}, "cost": {}, "costs": {},
	"cheap": {}, "cheapest": {}, "best": {}, "top": {},
	"buy": {}, "supplier": {}, "suppliers": {}, "near": {}, "online": {},
	"board": {}, "boards": {}, "sheet": {}, "sheets": {},
}

var (
	thicknessPattern = regexp.MustCompile(`(?i)\b(\d+)\s*mm\b`)
	wordPattern      = regexp.MustCompile(`[a-z0-9²]+`)
)

const (
	thicknessBonus = 0.3
	phraseBonus    = 0.2
)

// Score computes how well a record matches the query, in [0,1]. The base is
// token coverage over the product name; an exact thickness match ("50mm") is
// the dominant discriminator in this domain and earns a fixed bonus, as does
// a contiguous two-token phrase match.
func Score(rec Record, query string) float64 {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return 1.0
	}

	name := normalizeThickness(strings.ToLower(rec.ProductName))

	matched := 0
	for _, tok := range tokens {
		if strings.Contains(name, tok) {
			matched++
		}
	}
	score := float64(matched) / float64(len(tokens))

	for _, m := range thicknessPattern.FindAllStringSubmatch(query, -1) {
		if strings.Contains(name, m[1]+"mm") {
			score += thicknessBonus
			break
		}
	}

	for i := 0; i+1 < len(tokens); i++ {
		if strings.Contains(name, tokens[i]+" "+tokens[i+1]) {
			score += phraseBonus
			break
		}
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// minRelevance is the inclusion threshold per strategy. High-confidence
// strategies admit weaker matches; the plain-text fallback demands more
// because its segments are noisy.
func minRelevance(strat Strategy) float64 {
	switch strat {
	case StrategyTable, StrategyHTMLContainer:
		return 0.2
	case StrategyNumberedList, StrategyBulletList:
		return 0.25
	default:
		return 0.3
	}
}

// queryTokens lower-cases the query, folds thickness spellings, and drops
// stop words and tokens of two characters or fewer.
func queryTokens(query string) []string {
	folded := normalizeThickness(strings.ToLower(query))
	var tokens []string
	for _, tok := range wordPattern.FindAllString(folded, -1) {
		if len(tok) <= 2 {
			continue
		}
		if _, ok := stopWords[tok]; ok {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// normalizeThickness rewrites "50 mm" as "50mm" so thickness comparison is
// exact rather than whitespace-sensitive.
func normalizeThickness(s string) string {
	return thicknessPattern.ReplaceAllString(s, "${1}mm")
}
