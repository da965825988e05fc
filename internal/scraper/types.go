package scraper

// Site is one supplier storefront the live search path knows how to query.
type Site struct {
	// Name is the canonical supplier name as shown in results.
	Name string
	// BaseURL is the storefront root, scheme included.
	BaseURL string
	// Delivery is the supplier's standing delivery offer, attached to
	// records extracted from this site.
	Delivery string
}

// Page is one fetched search-results page, still unparsed.
type Page struct {
	Site Site
	URL  string
	HTML string
}
