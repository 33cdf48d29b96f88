// Package parser implements the single-pass ABP rule parser of
// spec.md §4.1: classify a raw line, then compile either a URL filter
// program or an element-hide filter. The parser never allocates a
// regex engine and is stateless across calls except for the Stats
// accumulator, in the teacher's parser.Stats/converter.Stats style.
package parser

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/katari-dev/abpfilter/internal/filter"
	"github.com/katari-dev/abpfilter/internal/options"
	"github.com/katari-dev/abpfilter/internal/scanner"
)

// ErrMalformedRule is returned for unrecognisable or bounds-violating
// input (spec.md §7). It is always local to the offending line: the
// caller counts it and moves on.
var ErrMalformedRule = errors.New("parser: malformed rule")

// Stats accumulates counters across repeated Parse calls on the same
// Parser.
type Stats struct {
	Total       int
	URLFilters  int
	Exceptions  int
	HTMLFilters int
	Failed      int
	SkipReasons map[string]int
}

// Skip reason labels, surfaced to store.Ingest/CLI reporting.
const (
	SkipComment       = "comment"
	SkipEmptyBody     = "empty-line"
	SkipBadOptions    = "malformed-options"
	SkipBadBody       = "malformed-body"
	SkipEmptySelector = "empty-selector"
)

// Parser parses ABP filter-list lines. The zero value is unusable; use
// New.
type Parser struct {
	stats Stats
}

// New creates a Parser with a fresh Stats accumulator.
func New() *Parser {
	return &Parser{stats: Stats{SkipReasons: make(map[string]int)}}
}

// Stats returns the accumulated parse statistics.
func (p *Parser) Stats() Stats { return p.stats }

func (p *Parser) skip(reason string) {
	p.stats.Failed++
	p.stats.SkipReasons[reason]++
}

// ParseAll streams lines from r, parsing each with categoryID and
// returning the successfully parsed filters. Malformed lines are
// counted via Stats and skipped; only an io error from the underlying
// reader propagates, per spec.md §7's "parser errors are local"
// policy.
func (p *Parser) ParseAll(r io.Reader, categoryID int16) ([]filter.Filter, error) {
	var out []filter.Filter
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		f, err := p.Parse(line, categoryID)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, sc.Err()
}

// Parse classifies and compiles a single line into a Filter. Comment
// and empty lines are rejected (counted as failures), per spec.md §6.
func (p *Parser) Parse(line string, categoryID int16) (f filter.Filter, err error) {
	p.stats.Total++

	// The domain=/referer= fast-path predicate (see options.go) uses
	// positional byte access, per spec.md §9's Open Question, and the
	// anchor/separator compiler walks the body by hand. Any
	// out-of-bounds slice is converted here to
	// a malformed-rule failure instead of propagating as a panic, per
	// spec.md §4.1/§7.
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, ErrMalformedRule
			p.skip(SkipBadBody)
		}
	}()

	if line == "" {
		p.skip(SkipEmptyBody)
		return nil, ErrMalformedRule
	}
	if line[0] == '!' || line[0] == '[' {
		p.skip(SkipComment)
		return nil, ErrMalformedRule
	}

	if idx := scanner.LastIndex(line, "##"); idx != -1 {
		return p.parseHTML(line, idx, 2, false, categoryID)
	}
	if idx := scanner.LastIndex(line, "#@"); idx != -1 {
		return p.parseHTML(line, idx, 3, true, categoryID)
	}
	return p.parseURLFilter(line, categoryID)
}

// parseHTML parses the element-hide variant (spec.md §4.1 "Element-hide
// parse"). sentinelLen is 2 for "##" and 3 for "#@#".
func (p *Parser) parseHTML(line string, sepIdx, sentinelLen int, isException bool, categoryID int16) (filter.Filter, error) {
	tail := line[sepIdx+sentinelLen:]
	if tail == "" {
		p.skip(SkipEmptySelector)
		return nil, ErrMalformedRule
	}

	var domains filter.DomainSet
	if sepIdx > 0 {
		domains = filter.NewDomainSet(splitCommaList(line[:sepIdx]))
	}

	hf := &filter.HtmlFilter{
		Base:        filter.NewBase(line, isException, categoryID),
		CSSSelector: tail,
	}
	if isException {
		hf.ExceptionDomains = domains
	} else {
		hf.ApplicableDomains = domains
	}

	p.stats.HTMLFilters++
	return hf, nil
}

// parseURLFilter parses the network-rule variant (spec.md §4.1 "URL
// filter parse").
func (p *Parser) parseURLFilter(line string, categoryID int16) (filter.Filter, error) {
	body := line
	var optsSegment string
	hasOptions := false
	if dollar := scanner.LastIndexByte(line, '$'); dollar != -1 {
		body = line[:dollar]
		optsSegment = line[dollar+1:]
		hasOptions = true
	}

	isException := scanner.HasPrefix(body, "@@")
	if isException {
		body = body[2:]
	}

	uf := &filter.UrlFilter{Base: filter.NewBase(line, isException, categoryID)}

	if hasOptions {
		if err := applyOptionsSegment(uf, optsSegment); err != nil {
			p.skip(SkipBadOptions)
			return nil, ErrMalformedRule
		}
	}

	prog, anchoredDomains, err := compileBody(body, uf.Options.Has(options.MatchCase))
	if err != nil {
		p.skip(SkipBadBody)
		return nil, ErrMalformedRule
	}
	uf.Parts = prog
	for _, h := range anchoredDomains {
		if uf.ApplicableDomains == nil {
			uf.ApplicableDomains = filter.DomainSet{}
		}
		uf.ApplicableDomains[h] = struct{}{}
	}

	if isException {
		p.stats.Exceptions++
	} else {
		p.stats.URLFilters++
	}
	return uf, nil
}

func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	parts := scanner.Split(s, ',')
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
