package pipeline

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Strategy identifies one way of cutting raw content into candidate product
// segments. Strategies are tried in order until one produces records.
type Strategy int

const (
	StrategyTable Strategy = iota
	StrategyNumberedList
	StrategyBulletList
	StrategyHTMLContainer
	StrategyPlainText
)

func (s Strategy) String() string {
	switch s {
	case StrategyTable:
		return "table"
	case StrategyNumberedList:
		return "numbered_list"
	case StrategyBulletList:
		return "bullet_list"
	case StrategyHTMLContainer:
		return "html_container"
	case StrategyPlainText:
		return "plain_text"
	default:
		return "unknown"
	}
}

// Segment is a contiguous fragment of raw content hypothesised to describe
// one product/supplier pairing. HTML segmentation fills the hint fields from
// the DOM; text strategies leave them empty.
type Segment struct {
	Text     string
	NameHint string
	URL      string
	ImageURL string
}

// Segmenter cuts a raw blob into segments under a given strategy and judges
// whether a segment is worth extracting from.
type Segmenter struct {
	suppliers *SupplierTable
	prices    PriceRange
}

func NewSegmenter(suppliers *SupplierTable, prices PriceRange) *Segmenter {
	return &Segmenter{suppliers: suppliers, prices: prices}
}

// strategiesFor returns the fallback order for a format hint.
func strategiesFor(format Format) []Strategy {
	if format == FormatHTML {
		return []Strategy{StrategyHTMLContainer, StrategyTable, StrategyNumberedList, StrategyBulletList, StrategyPlainText}
	}
	return []Strategy{StrategyTable, StrategyNumberedList, StrategyBulletList, StrategyPlainText}
}

var (
	numberedItemPattern = regexp.MustCompile(`^\s*\d+[.)]\s+`)
	bulletItemPattern   = regexp.MustCompile(`^\s*[-*•]\s+`)
)

// headerCells are first-cell values marking a table header row.
var headerCells = map[string]struct{}{
	"rank":     {},
	"#":        {},
	"no":       {},
	"no.":      {},
	"position": {},
	"supplier": {},
	"product":  {},
	"price":    {},
}

// Split cuts content under one strategy. For StrategyHTMLContainer the
// content must be an HTML document; every other strategy expects plain text.
func (s *Segmenter) Split(content string, strat Strategy) []Segment {
	switch strat {
	case StrategyTable:
		return splitTableRows(content)
	case StrategyNumberedList:
		return splitListItems(content, numberedItemPattern)
	case StrategyBulletList:
		return splitListItems(content, bulletItemPattern)
	case StrategyHTMLContainer:
		return splitHTMLContainers(content)
	case StrategyPlainText:
		return splitParagraphs(content)
	default:
		return nil
	}
}

// Qualifies reports whether a segment carries both a resolvable supplier and
// a plausible price, the bar a strategy must clear to be selected.
func (s *Segmenter) Qualifies(seg Segment) bool {
	hasSupplier := s.suppliers.Resolve(seg.Text) != ""
	if !hasSupplier {
		hasSupplier = s.suppliers.Resolve(seg.NameHint) != ""
	}
	return hasSupplier && HasPrice(seg.Text, s.prices)
}

// splitTableRows keeps pipe-delimited lines that look like priced rows and
// drops detected header rows.
func splitTableRows(content string) []Segment {
	var segs []Segment
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.Contains(trimmed, "|") {
			continue
		}
		if !strings.Contains(trimmed, "£") || !strings.ContainsAny(trimmed, "0123456789") {
			continue
		}
		if isHeaderRow(trimmed) || isDividerRow(trimmed) {
			continue
		}
		segs = append(segs, Segment{Text: trimmed})
	}
	return segs
}

func isHeaderRow(line string) bool {
	cells := strings.Split(line, "|")
	for _, cell := range cells {
		cell = strings.ToLower(strings.Trim(strings.TrimSpace(cell), "*_"))
		if cell == "" {
			continue
		}
		_, ok := headerCells[cell]
		return ok
	}
	return false
}

// isDividerRow matches markdown separator rows like "|---|---|".
func isDividerRow(line string) bool {
	return strings.Trim(line, "|-: \t") == ""
}

// splitListItems groups lines into items started by the marker pattern.
// Continuation lines attach to the current item until a blank line or the
// next marker.
func splitListItems(content string, marker *regexp.Regexp) []Segment {
	var segs []Segment
	var current []string

	flush := func() {
		if len(current) > 0 {
			segs = append(segs, Segment{Text: strings.Join(current, "\n")})
			current = nil
		}
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case marker.MatchString(line):
			flush()
			current = []string{trimmed}
		case trimmed == "":
			flush()
		case len(current) > 0:
			current = append(current, trimmed)
		}
	}
	flush()
	return segs
}

func splitParagraphs(content string) []Segment {
	var segs []Segment
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		segs = append(segs, Segment{Text: block})
	}
	return segs
}

// productCardSelectors match the product containers used by common shop
// themes, in priority order.
var productCardSelectors = []string{
	".product",
	".product-item",
	".product-card",
	".woocommerce-product",
	".shop-item",
	"[data-product]",
	".product-list-item",
	".grid-item",
	".catalog-item",
}

var productNameSelectors = ".product-title, .product-name, h2, h3, h4, .title, .name"

const maxHTMLSegments = 40

// splitHTMLContainers selects DOM nodes that look like product cards. When
// no known selector matches, it falls back to the deepest generic containers
// whose text carries a currency symbol.
func splitHTMLContainers(content string) []Segment {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var nodes []*goquery.Selection
	for _, selector := range productCardSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if len(nodes) < maxHTMLSegments {
				nodes = append(nodes, sel)
			}
		})
		if len(nodes) >= maxHTMLSegments {
			break
		}
	}

	if len(nodes) == 0 {
		doc.Find("div, li, article").Each(func(_ int, sel *goquery.Selection) {
			if len(nodes) >= maxHTMLSegments {
				return
			}
			text := sel.Text()
			if !strings.Contains(text, "£") || len(text) > 600 {
				return
			}
			// Take only the deepest containers so one card does not
			// produce a segment per ancestor.
			if sel.Find("div, li, article").FilterFunction(func(_ int, child *goquery.Selection) bool {
				return strings.Contains(child.Text(), "£")
			}).Length() > 0 {
				return
			}
			nodes = append(nodes, sel)
		})
	}

	var segs []Segment
	for _, sel := range nodes {
		seg := Segment{Text: normalizeLines(domText(sel))}
		if seg.Text == "" {
			continue
		}
		if name := sel.Find(productNameSelectors).First(); name.Length() > 0 {
			seg.NameHint = collapseSpace(name.Text())
		}
		if link := sel.Find("a[href]").First(); link.Length() > 0 {
			seg.URL, _ = link.Attr("href")
		}
		if img := sel.Find("img").First(); img.Length() > 0 {
			if src, ok := img.Attr("src"); ok && src != "" {
				seg.ImageURL = src
			} else if src, ok := img.Attr("data-src"); ok {
				seg.ImageURL = src
			}
		}
		segs = append(segs, seg)
	}
	return segs
}

// domText renders a selection as text with newlines between block elements,
// so downstream line-oriented extraction still works.
func domText(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, node := range sel.Nodes {
		writeNodeText(node, &sb)
	}
	return sb.String()
}

var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "li": {}, "tr": {}, "br": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"table": {}, "ul": {}, "ol": {}, "section": {}, "article": {},
}

func writeNodeText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" || n.Data == "noscript" {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNodeText(c, sb)
	}
	if n.Type == html.ElementNode {
		if _, ok := blockTags[n.Data]; ok {
			sb.WriteString("\n")
		}
	}
}

// HTMLToText flattens an HTML document to newline-separated text so the text
// strategies can run against it as a fallback.
func HTMLToText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}
	var sb strings.Builder
	writeNodeText(doc, &sb)
	return normalizeLines(sb.String())
}

// normalizeLines collapses whitespace within lines and drops empty ones,
// keeping the line structure block elements produced.
func normalizeLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = collapseSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
