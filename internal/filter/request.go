package filter

import (
	"net/http"
	"net/url"
	"strings"
)

// Request is the input to UrlFilter.IsMatch: a URI and a
// case-insensitive header bag. http.Header is already the
// case-insensitive multimap spec.md §4.7 calls a "header bag", so no
// bespoke type is introduced.
type Request struct {
	URI     *url.URL
	Headers http.Header
}

// absolute returns the URI's absolute string form, used by the
// fragment program and the anchored-address/literal fragments.
func (r Request) absolute() string {
	if r.URI == nil {
		return ""
	}
	return r.URI.String()
}

// host returns the request URI's host with a leading "www." stripped,
// per spec.md §4.7 step 4.
func (r Request) host() string {
	if r.URI == nil {
		return ""
	}
	return stripWWW(r.URI.Hostname())
}

func stripWWW(host string) string {
	const prefix = "www."
	if len(host) > len(prefix) && strings.EqualFold(host[:len(prefix)], prefix) {
		return host[len(prefix):]
	}
	return host
}

// refererHost parses the Referer header (if any) and returns its
// www-stripped host and whether a usable Referer was present. An
// unparseable Referer also reports present=false; matchReferer tells it
// apart from a missing header and fails the match, per spec.md §7 ("the
// matcher... returns false on any inability to evaluate").
func (r Request) refererHost() (host string, present bool) {
	raw := r.Headers.Get("Referer")
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	return stripWWW(u.Hostname()), true
}
