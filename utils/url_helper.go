package utils

import (
	"net/url"
	"strings"
)

// IsValidURL reports whether s is an absolute http or https URL with a host.
// Anything that fails to parse is simply not valid.
func IsValidURL(s string) bool {
	_, ok := NormalizeURL(s)
	return ok
}

// NormalizeURL parses s the way a browser would for http and https: surrounding
// whitespace is dropped and "http:host/path" gains its missing slashes. It
// returns the canonical form and whether s is an absolute http(s) URL with a host.
func NormalizeURL(s string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	if u.Opaque != "" {
		u, err = url.Parse(scheme + "://" + u.Opaque + queryAndFragment(u))
		if err != nil {
			return "", false
		}
	}
	if u.Host == "" {
		return "", false
	}
	return u.String(), true
}

func queryAndFragment(u *url.URL) string {
	out := ""
	if u.RawQuery != "" || u.ForceQuery {
		out += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		out += "#" + u.EscapedFragment()
	}
	return out
}

// Hostname returns the host of rawURL without port, or "page" when there is none
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "page"
	}
	return strings.ToLower(u.Hostname())
}
