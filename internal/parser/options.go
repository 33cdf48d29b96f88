package parser

import (
	"strings"

	"github.com/katari-dev/abpfilter/internal/filter"
	"github.com/katari-dev/abpfilter/internal/options"
	"github.com/katari-dev/abpfilter/internal/scanner"
)

// applyOptionsSegment splits the options segment (the text after the
// URL filter's last `$`) on `,` and applies each token to uf, per
// spec.md §4.1.
//
// domain= and referer= are recognised by a deliberately cheap
// positional-byte predicate rather than a prefix compare, preserving
// the fast path (and its accidental over-match on any other
// same-length, same-shape token) spec.md §9's Open Question calls out
// as intentional and worth keeping.
func applyOptionsSegment(uf *filter.UrlFilter, segment string) error {
	for _, tok := range scanner.Split(segment, ',') {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		if isDomainOption(tok) {
			applicable, exception := splitDomainValue(tok[7:])
			mergeDomainSet(&uf.ApplicableDomains, applicable)
			mergeDomainSet(&uf.ExceptionDomains, exception)
			continue
		}
		if isRefererOption(tok) {
			applicable, exception := splitDomainValue(tok[8:])
			mergeDomainSet(&uf.ApplicableReferers, applicable)
			mergeDomainSet(&uf.ExceptionReferers, exception)
			continue
		}

		if bit, ok := options.Parse(tok); ok {
			uf.Options = uf.Options.Set(bit)
		}
		// Unrecognised tokens are ignored, per spec.md §4.1.
	}
	return nil
}

// isDomainOption implements spec.md §4.1's fast path for "domain=...":
// length > 7, first char 'd', char at index 6 is '='.
func isDomainOption(tok string) bool {
	return len(tok) > 7 && tok[0] == 'd' && tok[6] == '='
}

// isRefererOption implements the analogous fast path for
// "referer=...": length > 7, first char 'r', char at index 7 is '='.
func isRefererOption(tok string) bool {
	return len(tok) > 7 && tok[0] == 'r' && tok[7] == '='
}

// splitDomainValue parses a pipe-separated domain/referer value list,
// routing `~`-prefixed entries to the exception return and the rest
// to the applicable return.
func splitDomainValue(value string) (applicable, exception []string) {
	for _, entry := range scanner.Split(value, '|') {
		if entry == "" {
			continue
		}
		if entry[0] == '~' {
			exception = append(exception, entry[1:])
		} else {
			applicable = append(applicable, entry)
		}
	}
	return applicable, exception
}

func mergeDomainSet(dst *filter.DomainSet, hosts []string) {
	if len(hosts) == 0 {
		return
	}
	if *dst == nil {
		*dst = filter.DomainSet{}
	}
	for _, h := range hosts {
		(*dst)[h] = struct{}{}
	}
}
