// Package filter defines the compiled filter objects of spec.md §3 and
// implements the request matcher contract of spec.md §4.4/§4.7.
package filter

// Kind distinguishes the two Filter variants. Go favors a tagged
// interface over a class hierarchy: both UrlFilter and HtmlFilter
// embed Base and implement Filter.
type Kind uint8

const (
	KindURL Kind = iota
	KindHTML
)

// Filter is the common contract shared by UrlFilter and HtmlFilter.
type Filter interface {
	Kind() Kind
	IsException() bool
	CategoryID() int16
	OriginalRule() string
}

// Base holds the fields common to every Filter variant (spec.md §3
// "Filter (abstract base)").
type Base struct {
	originalRule string
	isException  bool
	categoryID   int16
}

// NewBase constructs a Base. original may be cleared later by the
// owner via ClearOriginalRule (part of TrimExcessData).
func NewBase(original string, isException bool, categoryID int16) Base {
	return Base{originalRule: original, isException: isException, categoryID: categoryID}
}

func (b Base) IsException() bool    { return b.isException }
func (b Base) CategoryID() int16    { return b.categoryID }
func (b Base) OriginalRule() string { return b.originalRule }

// ClearOriginalRule drops the source text, per TrimExcessData's
// contract that original_rule may be discarded once the owner no
// longer needs it for re-serialization.
func (b *Base) ClearOriginalRule() { b.originalRule = "" }

// DebugDump renders a Filter's kind, exception flag, category and
// source text for the CLI's `query -v` output. Never consulted by
// matching logic.
func DebugDump(f Filter) string {
	kind := "url"
	if f.Kind() == KindHTML {
		kind = "html"
	}
	exc := ""
	if f.IsException() {
		exc = " exception"
	}
	return kind + exc + " [category " + itoa(f.CategoryID()) + "] " + f.OriginalRule()
}

func itoa(n int16) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [6]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
