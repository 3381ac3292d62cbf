package utils

import (
	"net/url"
	"strings"
)

// ToAbsoluteURL resolves ref against base. Protocol-relative refs take the
// base scheme. When either side does not parse, ref is returned trimmed.
func ToAbsoluteURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return ref
	}
	relURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(relURL).String()
}

// SearchURL builds the search page URL for query on host.
func SearchURL(host, query string) string {
	u := url.URL{
		Scheme:   "https",
		Host:     host,
		Path:     "/s",
		RawQuery: url.Values{"k": {query}}.Encode(),
	}
	return u.String()
}
