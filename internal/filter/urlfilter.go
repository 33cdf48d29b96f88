package filter

import (
	"strings"

	"github.com/katari-dev/abpfilter/internal/fragment"
	"github.com/katari-dev/abpfilter/internal/options"
)

// UrlFilter is the compiled network-rule variant of spec.md §3: a
// fragment program plus option flags plus the four host sets.
type UrlFilter struct {
	Base

	Parts   fragment.Program
	Options options.Set

	ApplicableDomains  DomainSet
	ExceptionDomains   DomainSet
	ApplicableReferers DomainSet
	ExceptionReferers  DomainSet
}

var _ Filter = (*UrlFilter)(nil)

func (f *UrlFilter) Kind() Kind { return KindURL }

// String renders the filter for CLI/debug output; never used by
// IsMatch.
func (f *UrlFilter) String() string { return DebugDump(f) }

// TrimExcessData drops original_rule (spec.md §4.4). The four host sets
// are kept because IsMatch reads them, so after this call the filter
// still matches correctly (Parts, Options and host sets are untouched)
// but can no longer be serialized back to source text.
func (f *UrlFilter) TrimExcessData() {
	f.ClearOriginalRule()
}

const contentTypeMask = options.Script | options.NotScript |
	options.Image | options.NotImage |
	options.Stylesheet | options.NotStylesheet

// IsMatch implements the request matcher of spec.md §4.7: five ordered
// checks, short-circuiting on the first failure.
func (f *UrlFilter) IsMatch(req Request) bool {
	if !f.matchXHR(req) {
		return false
	}
	if !f.matchReferer(req) {
		return false
	}
	if !f.matchContentType(req) {
		return false
	}
	if !f.matchHostSets(req) {
		return false
	}
	return f.Parts.Eval(req.absolute(), req.host())
}

// matchXHR implements step 1.
func (f *UrlFilter) matchXHR(req Request) bool {
	if !f.Options.Has(options.XMLHTTPRequest) && !f.Options.Has(options.NotXMLHTTPRequest) {
		return true
	}
	isXHR := strings.EqualFold(req.Headers.Get("X-Requested-With"), "XMLHttpRequest")
	if f.Options.Has(options.XMLHTTPRequest) && !isXHR {
		return false
	}
	if f.Options.Has(options.NotXMLHTTPRequest) && isXHR {
		return false
	}
	return true
}

// matchReferer implements step 2: third-party bits plus the
// referer-scoped applicable/exception domain and referer checks.
func (f *UrlFilter) matchReferer(req Request) bool {
	refHost, present := req.refererHost()
	if !present && req.Headers.Get("Referer") != "" {
		// A Referer that cannot be parsed cannot be evaluated.
		return false
	}
	if !present {
		// A fresh navigation is not third-party; third-party (positive)
		// would require a referer and therefore fails here, but
		// ~third-party is implicitly satisfied and domain checks are
		// skipped entirely.
		return !f.Options.Has(options.ThirdParty)
	}

	sameOrigin := refHost == req.host()
	if f.Options.Has(options.NotThirdParty) && !sameOrigin {
		return false
	}
	if f.Options.Has(options.ThirdParty) && sameOrigin {
		return false
	}

	if f.ApplicableDomains != nil && !f.ApplicableDomains.Has(refHost) {
		return false
	}
	if f.ExceptionDomains.Has(refHost) {
		return false
	}
	if f.ApplicableReferers != nil && !f.ApplicableReferers.Has(refHost) {
		return false
	}
	if f.ExceptionReferers.Has(refHost) {
		return false
	}
	return true
}

// matchContentType implements step 3's priority ladder over the
// Content-Type header. Preserved verbatim per spec.md §9's Open
// Question: only one of script/image/stylesheet is ever considered
// satisfied for a given request, in that priority order.
func (f *UrlFilter) matchContentType(req Request) bool {
	bits := f.Options & contentTypeMask
	if bits == 0 {
		return true
	}

	ct := req.Headers.Get("Content-Type")

	var satisfied options.Set
	switch {
	case strings.Contains(ct, "script"):
		satisfied = options.Script
	case strings.Contains(ct, "image"):
		satisfied = options.NotScript | options.Image
	case strings.Contains(ct, "stylesheet"):
		satisfied = options.NotScript | options.NotImage | options.Stylesheet
	default:
		satisfied = options.NotScript | options.NotImage | options.NotStylesheet
	}

	return bits&^satisfied == 0
}

// matchHostSets implements step 4 against the request URI's
// www-stripped host. The applicable check also accepts a host that is a
// dot-boundary subdomain of a listed host (so `||host^` rules match
// subdomains of host); the exception check is exact membership, as in
// matchReferer.
func (f *UrlFilter) matchHostSets(req Request) bool {
	host := req.host()
	if f.ApplicableDomains != nil {
		applies := false
		for h := host; h != ""; {
			if f.ApplicableDomains.Has(h) {
				applies = true
				break
			}
			dot := strings.IndexByte(h, '.')
			if dot < 0 {
				break
			}
			h = h[dot+1:]
		}
		if !applies {
			return false
		}
	}
	if f.ExceptionDomains.Has(host) {
		return false
	}
	return true
}
