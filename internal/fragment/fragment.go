// Package fragment implements the ordered match-fragment program of
// spec.md §3/§4.3: a compiled URL filter body is a sequence of
// fragments evaluated left to right against a URI, each fragment either
// advancing a scan cursor or failing the whole program.
//
// Fragment is a tagged struct rather than an interface hierarchy with
// virtual dispatch (spec.md §9 Design Notes): the matcher hot loop is a
// plain switch over Kind.
package fragment

import "github.com/katari-dev/abpfilter/internal/scanner"

// Kind tags which of the five fragment contracts a Fragment implements.
type Kind uint8

const (
	AnchoredDomain Kind = iota
	AnchoredAddress
	StringLiteral
	Wildcard
	Separator
)

// Fragment is one step of a compiled match program. Only the fields
// relevant to Kind are meaningful; the rest are zero.
type Fragment struct {
	Kind Kind

	// AnchoredDomain: Value is the anchored host.
	// AnchoredAddress, StringLiteral: Value is the literal text.
	Value         string
	CaseSensitive bool // AnchoredAddress, StringLiteral only
}

// Program is an ordered sequence of fragments compiled from
// a single URL filter body. A zero-length Program is valid per spec.md
// §4.3's edge case ("empty URL-filter body with options") and always
// succeeds.
type Program []Fragment

// Eval runs the program against an absolute URI and its host, starting
// the scan cursor at 0. It returns true iff every fragment in order
// advances the cursor; a fragment that cannot match fails the whole
// program (short-circuit).
func (p Program) Eval(absoluteURI, host string) bool {
	cursor := 0
	for _, f := range p {
		next := f.eval(absoluteURI, host, cursor)
		if next < 0 {
			return false
		}
		cursor = next
	}
	return true
}

// eval evaluates a single fragment from cursor, returning the new
// cursor position or -1 on failure.
func (f Fragment) eval(absoluteURI, host string, cursor int) int {
	switch f.Kind {
	case AnchoredAddress:
		return evalAnchoredAddress(absoluteURI, f.Value, f.CaseSensitive, cursor)
	case AnchoredDomain:
		return evalAnchoredDomain(absoluteURI, host, f.Value)
	case StringLiteral:
		return evalStringLiteral(absoluteURI, f.Value, f.CaseSensitive, cursor)
	case Wildcard:
		return evalWildcard(absoluteURI, cursor)
	case Separator:
		return evalSeparator(absoluteURI, cursor)
	}
	return -1
}

// evalAnchoredAddress succeeds iff the URI begins with literal at
// offset 0 (cursor is ignored by contract: AnchoredAddress is only
// ever the first fragment in a well-formed program).
func evalAnchoredAddress(uri, literal string, caseSensitive bool, _ int) int {
	if len(uri) < len(literal) {
		return -1
	}
	prefix := uri[:len(literal)]
	if caseSensitive {
		if prefix != literal {
			return -1
		}
	} else if !scanner.EqualFold(prefix, literal) {
		return -1
	}
	return len(literal)
}

// evalAnchoredDomain succeeds iff host equals the anchored host or ends
// with it at a dot boundary (exact-byte compare per
// spec.md §4.3), and advances the cursor past "scheme://host" in uri.
func evalAnchoredDomain(uri, host, anchoredHost string) int {
	if !hostMatchesDomainBoundary(host, anchoredHost) {
		return -1
	}
	schemeEnd := scanner.Index(uri, "://", 0)
	if schemeEnd < 0 {
		return -1
	}
	hostStart := schemeEnd + 3
	hostEnd := hostStart + len(host)
	if hostEnd > len(uri) {
		return -1
	}
	return hostEnd
}

// hostMatchesDomainBoundary reports whether host equals anchoredHost or
// ends with "."+anchoredHost (a domain-boundary suffix), matching the
// AnchoredDomain fragment contract.
func hostMatchesDomainBoundary(host, anchoredHost string) bool {
	if host == anchoredHost {
		return true
	}
	if len(host) <= len(anchoredHost) {
		return false
	}
	suffix := host[len(host)-len(anchoredHost):]
	if suffix != anchoredHost {
		return false
	}
	return host[len(host)-len(anchoredHost)-1] == '.'
}

// evalStringLiteral searches uri from cursor for value and advances
// past the match.
func evalStringLiteral(uri, value string, caseSensitive bool, cursor int) int {
	var idx int
	if caseSensitive {
		idx = scanner.Index(uri, value, cursor)
	} else {
		idx = scanner.IndexFold(uri, value, cursor)
	}
	if idx < 0 {
		return -1
	}
	return idx + len(value)
}

// evalWildcard succeeds iff there is at least one character after the
// cursor, advancing it by 1.
func evalWildcard(uri string, cursor int) int {
	if cursor >= len(uri) {
		return -1
	}
	return cursor + 1
}

// evalSeparator searches for the next separator character from cursor
// and advances one past it.
func evalSeparator(uri string, cursor int) int {
	for i := cursor; i < len(uri); i++ {
		if scanner.IsSeparator(uri[i]) {
			return i + 1
		}
	}
	return -1
}
