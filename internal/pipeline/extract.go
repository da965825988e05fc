package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// Extractor pulls record fields out of one segment. Fields it cannot find
// stay empty; defaulting to placeholders happens in the orchestrator, not
// here, so callers can tell "absent" from "fell back".
type Extractor struct {
	suppliers *SupplierTable
	prices    PriceRange
}

func NewExtractor(suppliers *SupplierTable, prices PriceRange) *Extractor {
	return &Extractor{suppliers: suppliers, prices: prices}
}

// noisePhrases mark UI/navigation fragments that never describe a product.
var noisePhrases = []string{
	"sort by",
	"filter by",
	"filter results",
	"breadcrumb",
	"main menu",
	"navigation",
	"cookie policy",
	"accept cookies",
	"newsletter",
	"sign in",
	"log in",
	"my account",
	"add to basket",
	"view basket",
	"terms and conditions",
}

var (
	// splitMarker separates a supplier mention from the product in lines like
	// "Trade Insulations – Celotex GA4050".
	splitMarker = regexp.MustCompile(`\s+[–—-]\s+`)

	productLabelPattern = regexp.MustCompile(`(?im)^\W*product(?:\s+name)?\s*[:\-]\s*(.+)$`)

	brandPattern = regexp.MustCompile(`(?i)\b(celotex|kingspan|recticel|ecotherm|xtratherm|unilin|rockwool|knauf|gyproc|british gypsum|thermalite|jablite|mannok|superglass|isover|cellecta)\b`)

	dimensionsPattern = regexp.MustCompile(`(?i)\b(\d+)\s*mm\s*x\s*(\d+)\s*mm(?:\s*x\s*(\d+)\s*mm)?\b`)
	coveragePattern   = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*m(?:²|2)\b`)

	phonePattern      = regexp.MustCompile(`\b0\d{3,4}[ -]?\d{3}[ -]?\d{3,4}\b`)
	phoneLabelPattern = regexp.MustCompile(`(?i)\b(?:phone|tel|telephone)[:.]?\s*([0-9][0-9 ()+-]{6,})`)

	availabilityPattern = regexp.MustCompile(`(?i)\b(in stock|out of stock|available (?:now|to order)|limited stock|pre-?order|check with supplier)\b`)
	deliveryPattern     = regexp.MustCompile(`(?i)\b((?:free|next[ -]day|same[ -]day|nationwide)\s+delivery[^.\n|]*|delivery\s+(?:within|in|from)\s+[^.\n|]+|next day)\b`)
)

// Extract pulls a partial Record from one segment. The bool result is false
// for navigation noise and for segments carrying neither a product name nor
// a price.
func (e *Extractor) Extract(seg Segment) (Record, bool) {
	text := strings.TrimSpace(seg.Text)
	if text == "" || isNoise(text) {
		return Record{}, false
	}

	var rec Record
	if strings.Contains(text, "|") {
		rec = e.extractRow(text, seg)
	} else {
		rec = e.extractFreeform(text, seg)
	}
	e.extractAttributes(text, &rec)

	if rec.ProductName == "" && !rec.Price.Known {
		return Record{}, false
	}
	return rec, true
}

// extractRow handles one pipe-delimited table row.
func (e *Extractor) extractRow(text string, seg Segment) Record {
	var rec Record

	cells := splitCells(text)
	used := make([]bool, len(cells))

	// Leading rank cell.
	if len(cells) > 0 {
		if _, err := strconv.Atoi(cells[0]); err == nil {
			used[0] = true
		}
	}

	for i, cell := range cells {
		if used[i] {
			continue
		}
		if parts := splitMarker.Split(cell, 2); len(parts) == 2 {
			if rec.Supplier == "" {
				rec.Supplier = e.suppliers.Resolve(parts[0])
			}
			if rec.ProductName == "" {
				rec.ProductName = cleanName(parts[1])
			}
			used[i] = true
			continue
		}
		if rec.Supplier == "" {
			if name := e.suppliers.Resolve(cell); name != "" && !strings.Contains(cell, "£") {
				rec.Supplier = name
				used[i] = true
				continue
			}
		}
	}

	for i, cell := range cells {
		if used[i] || rec.Price.Known {
			continue
		}
		price, perUnit := NormalizePrice(cell, e.prices)
		if price.Known {
			rec.Price = price
			if perUnit.Known {
				rec.setAttr(AttrPricePerUnit, perUnit.Display)
			}
			used[i] = true
		}
	}
	if !rec.Price.Known {
		rec.Price = UnknownPrice()
	}

	// Whatever is left is either the product name or shipping detail.
	for i, cell := range cells {
		if used[i] {
			continue
		}
		switch {
		case rec.ProductName == "" && brandPattern.MatchString(cell):
			rec.ProductName = cleanName(cell)
			used[i] = true
		case availabilityPattern.MatchString(cell):
			rec.setAttr(AttrAvailability, cell)
			used[i] = true
		case deliveryPattern.MatchString(cell):
			rec.setAttr(AttrDelivery, cell)
			used[i] = true
		}
	}
	if rec.ProductName == "" {
		for i, cell := range cells {
			if !used[i] && len(cell) > 3 && !strings.Contains(cell, "£") {
				rec.ProductName = cleanName(cell)
				break
			}
		}
	}
	return rec
}

// extractFreeform handles list items, paragraphs, and flattened HTML cards.
func (e *Extractor) extractFreeform(text string, seg Segment) Record {
	var rec Record

	lines := strings.Split(text, "\n")
	first := strings.TrimSpace(lines[0])

	priceText := text
	var markerRight string
	if parts := splitMarker.Split(stripListPrefix(first), 2); len(parts) == 2 {
		if name := e.suppliers.Resolve(parts[0]); name != "" {
			rec.Supplier = name
			markerRight = parts[1]
			// Restrict the price search to what follows the marker so a
			// number inside the supplier mention can never win.
			if idx := strings.Index(text, parts[1]); idx >= 0 {
				priceText = text[idx:]
			}
		}
	}
	if rec.Supplier == "" {
		rec.Supplier = e.suppliers.Resolve(text)
	}

	price, perUnit := NormalizePrice(priceText, e.prices)
	rec.Price = price
	if perUnit.Known {
		rec.setAttr(AttrPricePerUnit, perUnit.Display)
	}

	rec.ProductName = e.productName(seg, lines, markerRight)
	return rec
}

// productName tries, in order: the DOM name hint, an explicit "Product:"
// label, a line mentioning a known brand, the text after a supplier marker,
// and finally the first line long enough to be a plausible label.
func (e *Extractor) productName(seg Segment, lines []string, markerRight string) string {
	if name := cleanName(seg.NameHint); len(name) > 3 {
		return name
	}
	if m := productLabelPattern.FindStringSubmatch(seg.Text); m != nil {
		if name := cleanName(m[1]); name != "" {
			return name
		}
	}
	for _, line := range lines {
		if brandPattern.MatchString(line) {
			if name := cleanName(line); len(name) > 3 {
				return name
			}
		}
	}
	if name := cleanName(markerRight); len(name) > 3 {
		return name
	}
	for _, line := range lines {
		candidate := cleanName(line)
		if len(candidate) <= 10 || isNoise(candidate) {
			continue
		}
		if strings.HasPrefix(candidate, "http") || isMostlyNumeric(candidate) {
			continue
		}
		return candidate
	}
	return ""
}

func (e *Extractor) extractAttributes(text string, rec *Record) {
	if m := dimensionsPattern.FindStringSubmatch(text); m != nil {
		dims := m[1] + "mm x " + m[2] + "mm"
		if m[3] != "" {
			dims += " x " + m[3] + "mm"
		}
		rec.setAttr(AttrDimensions, dims)
	}
	if m := coveragePattern.FindString(text); m != "" {
		rec.setAttr(AttrCoverage, collapseSpace(m))
	}
	if m := phoneLabelPattern.FindStringSubmatch(text); m != nil {
		rec.setAttr(AttrContact, strings.TrimSpace(m[1]))
	} else if m := phonePattern.FindString(text); m != "" {
		rec.setAttr(AttrContact, m)
	}
	if m := availabilityPattern.FindString(text); m != "" {
		rec.setAttr(AttrAvailability, m)
	}
	if m := deliveryPattern.FindString(text); m != "" {
		rec.setAttr(AttrDelivery, strings.TrimSpace(m))
	}
}

func isNoise(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range noisePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func splitCells(row string) []string {
	var cells []string
	for _, cell := range strings.Split(row, "|") {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells
}

var listPrefixPattern = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+`)

func stripListPrefix(line string) string {
	return listPrefixPattern.ReplaceAllString(line, "")
}

const maxNameLength = 120

// cleanName strips markdown emphasis, list markers, and trailing price text
// from a candidate product name.
func cleanName(s string) string {
	s = stripListPrefix(strings.TrimSpace(s))
	s = strings.Trim(s, "*_#")
	if idx := strings.Index(s, "£"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimRight(strings.TrimSpace(s), "-–—:|,")
	s = strings.Trim(s, "*_#")
	s = collapseSpace(s)
	if len(s) > maxNameLength {
		s = strings.TrimSpace(s[:maxNameLength])
	}
	return s
}

func isMostlyNumeric(s string) bool {
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return len(s) > 0 && digits*2 > len(s)
}
