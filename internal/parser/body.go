package parser

import (
	"net/url"

	"github.com/katari-dev/abpfilter/internal/fragment"
	"github.com/katari-dev/abpfilter/internal/scanner"
)

// compileBody compiles a URL filter's main body (after any leading
// `@@` and trailing `$options` have been stripped) into an ordered
// fragment program, per spec.md §4.1's "Main body is compiled
// left-to-right into fragments" algorithm. It also returns any hosts
// discovered via `||`/`|` anchors that must be folded into the
// filter's ApplicableDomains set.
func compileBody(body string, caseSensitive bool) (fragment.Program, []string, error) {
	var prog fragment.Program
	var anchoredDomains []string

	pos := 0

	if scanner.HasPrefix(body, "||") {
		pos = 2
		start := pos
		for pos < len(body) && !scanner.IsAnchorEnd(body[pos]) {
			pos++
		}
		host := body[start:pos]
		if host != "" {
			prog = append(prog, fragment.Fragment{Kind: fragment.AnchoredDomain, Value: host})
			anchoredDomains = append(anchoredDomains, host)
		}
	} else if scanner.HasPrefix(body, "|") {
		pos = 1
		start := pos
		for pos < len(body) && body[pos] != '|' && !scanner.IsAnchorEnd(body[pos]) {
			pos++
		}
		span := body[start:pos]
		if pos < len(body) && body[pos] == '|' {
			pos++ // consume the matching trailing anchor
		}
		if span != "" {
			prog = append(prog, fragment.Fragment{Kind: fragment.AnchoredAddress, Value: span, CaseSensitive: caseSensitive})
			if u, err := url.Parse(span); err == nil && u.Host != "" {
				anchoredDomains = append(anchoredDomains, u.Hostname())
			}
		}
	}

	literalStart := pos
	flush := func(end int) {
		if end > literalStart {
			prog = append(prog, fragment.Fragment{
				Kind:          fragment.StringLiteral,
				Value:         body[literalStart:end],
				CaseSensitive: caseSensitive,
			})
		}
	}

	for pos < len(body) {
		switch body[pos] {
		case '*':
			flush(pos)
			prog = append(prog, fragment.Fragment{Kind: fragment.Wildcard})
			pos++
			literalStart = pos
		case '^':
			flush(pos)
			prog = append(prog, fragment.Fragment{Kind: fragment.Separator})
			pos++
			literalStart = pos
		default:
			pos++
		}
	}
	flush(pos)

	return prog, anchoredDomains, nil
}
