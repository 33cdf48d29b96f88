package filter

import "errors"

// ErrInvalidSelector is returned by Validate when the selector is empty
// (spec.md §7 InvalidArgument, "optional"). Validate does not consult
// config.StrictSelectors.
var ErrInvalidSelector = errors.New("filter: empty css selector")

// HtmlFilter is the element-hide variant of spec.md §3. The match
// engine parses and stores these but never executes them (spec.md §1
// scope note, §4.1).
type HtmlFilter struct {
	Base

	CSSSelector        string
	ApplicableDomains  DomainSet
	ExceptionDomains   DomainSet
}

var _ Filter = (*HtmlFilter)(nil)

func (f *HtmlFilter) Kind() Kind { return KindHTML }

// String renders the filter for CLI/debug output; never used by
// matching logic (element-hide rules are never evaluated).
func (f *HtmlFilter) String() string { return DebugDump(f) }

// Validate returns ErrInvalidSelector for an empty selector. Callers
// that want spec.md §7's strict-build InvalidArgument behavior should
// call this explicitly. The parser already rejects an element-hide rule
// with nothing after its `##`/`#@#` sentinel, so Validate only matters
// for HtmlFilters built by hand.
func (f *HtmlFilter) Validate() error {
	if f.CSSSelector == "" {
		return ErrInvalidSelector
	}
	return nil
}

// TrimExcessData drops original_rule and the domain sets (spec.md
// §4.4). Unlike UrlFilter.TrimExcessData it can drop the domain sets,
// since element-hide rules are never evaluated. CSSSelector is kept: it is
// the filter's entire payload and cannot be reconstructed without it.
func (f *HtmlFilter) TrimExcessData() {
	f.ClearOriginalRule()
	f.ApplicableDomains = nil
	f.ExceptionDomains = nil
}
