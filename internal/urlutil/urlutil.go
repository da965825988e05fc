package urlutil

import (
	"errors"
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var staticExtensions = map[string]struct{}{
	".css":   {},
	".gif":   {},
	".ico":   {},
	".jpeg":  {},
	".jpg":   {},
	".js":    {},
	".mp4":   {},
	".pdf":   {},
	".png":   {},
	".svg":   {},
	".ttf":   {},
	".woff":  {},
	".woff2": {},
	".zip":   {},
}

// tldSuffixes are stripped when deriving a display name from a host.
// Longest suffixes first so ".co.uk" wins over ".uk".
var tldSuffixes = []string{".co.uk", ".org.uk", ".me.uk", ".com", ".net", ".org", ".uk", ".io", ".shop"}

// Normalize canonicalises a URL for comparison and storage: https default,
// fragment stripped, host lower-cased without the www prefix. Returns the
// normalised URL and its hostname.
func Normalize(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", errors.New("empty url")
	}
	// Scheme-less input would otherwise parse the host as a path.
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	u.Fragment = ""
	u.Host = NormalizeHost(u.Host)
	if u.Path != "" {
		u.Path = path.Clean(u.Path)
		if u.Path == "." || u.Path == "/" {
			u.Path = ""
		}
	}
	return u.String(), u.Hostname(), nil
}

func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}

// DisplayName derives a human-readable name from a URL or bare host:
// the registrable domain without www and TLD, title-cased.
// "https://www.tradeinsulations.co.uk/x" becomes "Tradeinsulations".
func DisplayName(raw string) string {
	host := raw
	if strings.Contains(raw, "/") || strings.Contains(raw, "://") {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return ""
		}
		host = u.Hostname()
		if host == "" {
			// A bare "example.co.uk/path" parses as a path.
			host = strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
		}
	}
	host = NormalizeHost(host)
	for _, suffix := range tldSuffixes {
		if strings.HasSuffix(host, suffix) {
			host = strings.TrimSuffix(host, suffix)
			break
		}
	}
	if host == "" || strings.ContainsAny(host, " \t") {
		return ""
	}
	host = strings.ReplaceAll(host, "-", " ")
	host = strings.ReplaceAll(host, "_", " ")
	return cases.Title(language.Und).String(host)
}

// Resolve resolves href against base, defaulting the scheme to https.
// Mail and phone links resolve to nothing.
func Resolve(base, href string) string {
	if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base != "" {
		if b, err := url.Parse(base); err == nil {
			u = b.ResolveReference(u)
		}
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return u.String()
}

// IsStaticAsset reports whether the URL points at a static file that can
// never contain a product listing.
func IsStaticAsset(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	_, ok := staticExtensions[ext]
	return ok
}
