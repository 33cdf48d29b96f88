package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnchoredDomainBoundary(t *testing.T) {
	p := Program{{Kind: AnchoredDomain, Value: "silly.com"}}

	assert.True(t, p.Eval("http://silly.com/x", "silly.com"))
	assert.True(t, p.Eval("http://a.silly.com/x", "a.silly.com"))
	assert.False(t, p.Eval("http://notsilly.com/x", "notsilly.com"))
	assert.False(t, p.Eval("http://evilsilly.com/x", "evilsilly.com"))
}

func TestAnchoredAddressCaseSensitivity(t *testing.T) {
	p := Program{{Kind: AnchoredAddress, Value: "http://Example.com/", CaseSensitive: true}}
	assert.False(t, p.Eval("http://example.com/", "example.com"))

	p2 := Program{{Kind: AnchoredAddress, Value: "http://Example.com/", CaseSensitive: false}}
	assert.True(t, p2.Eval("http://example.com/", "example.com"))
}

func TestStringLiteralAdvancesCursor(t *testing.T) {
	p := Program{
		{Kind: StringLiteral, Value: "stoopid"},
		{Kind: StringLiteral, Value: "url"},
	}
	assert.True(t, p.Eval("http://silly.com/stoopid/url&=b1", ""))

	// Second literal must be found after the first match, not re-found
	// earlier in the string.
	p2 := Program{
		{Kind: StringLiteral, Value: "a"},
		{Kind: StringLiteral, Value: "a"},
	}
	assert.True(t, p2.Eval("aa", ""))
	p3 := Program{
		{Kind: StringLiteral, Value: "a"},
		{Kind: StringLiteral, Value: "b"},
	}
	assert.False(t, p3.Eval("ba", ""))
}

func TestWildcardRequiresRemainingChar(t *testing.T) {
	p := Program{{Kind: Wildcard}}
	assert.True(t, p.Eval("x", ""))
	assert.False(t, p.Eval("", ""))
}

func TestSeparatorConsumesUpToHit(t *testing.T) {
	p := Program{{Kind: Separator}}
	assert.True(t, p.Eval("a/b", ""))
	assert.False(t, p.Eval("abc", ""))
}

func TestEmptyProgramAlwaysMatches(t *testing.T) {
	var p Program
	assert.True(t, p.Eval("http://anything/at/all", "anything"))
}

func TestAnchoredDomainRule(t *testing.T) {
	// ||host^path -> matches hosts equal to or ending in host at a
	// boundary, and requires path to appear after the host.
	p := Program{
		{Kind: AnchoredDomain, Value: "silly.com"},
		{Kind: Separator},
		{Kind: StringLiteral, Value: "stoopid"},
	}
	assert.True(t, p.Eval("http://silly.com/stoopid", "silly.com"))
	assert.False(t, p.Eval("http://silly.com/other", "silly.com"))
}
