package parser

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katari-dev/abpfilter/internal/filter"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func parseOneURLFilter(t *testing.T, rule string) *filter.UrlFilter {
	t.Helper()
	p := New()
	f, err := p.Parse(rule, 1)
	require.NoError(t, err)
	uf, ok := f.(*filter.UrlFilter)
	require.True(t, ok, "expected *filter.UrlFilter, got %T", f)
	return uf
}

func TestS1NoRefererXHRScriptNotThirdParty(t *testing.T) {
	uf := parseOneURLFilter(t, "||silly.com^stoopid^url^*1$xmlhttprequest,script,~third-party")

	req := filter.Request{
		URI: mustURL(t, "http://silly.com/stoopid/url&=b1"),
		Headers: http.Header{
			"X-Requested-With": {"XmlHttpRequest"},
			"Content-Type":     {"script"},
		},
	}
	assert.True(t, uf.IsMatch(req))
}

func TestS2SameOriginRefererStillMatches(t *testing.T) {
	uf := parseOneURLFilter(t, "||silly.com^stoopid^url^*1$xmlhttprequest,script,~third-party")

	req := filter.Request{
		URI: mustURL(t, "http://silly.com/stoopid/url&=b1"),
		Headers: http.Header{
			"X-Requested-With": {"XmlHttpRequest"},
			"Content-Type":     {"script"},
			"Referer":          {"http://silly.com/"},
		},
	}
	assert.True(t, uf.IsMatch(req))
}

func TestS3ThirdPartyRefererFails(t *testing.T) {
	uf := parseOneURLFilter(t, "||silly.com^stoopid^url^*1$xmlhttprequest,script,~third-party")

	req := filter.Request{
		URI: mustURL(t, "http://silly.com/stoopid/url&=b1"),
		Headers: http.Header{
			"X-Requested-With": {"XmlHttpRequest"},
			"Content-Type":     {"script"},
			"Referer":          {"http://other.com/"},
		},
	}
	assert.False(t, uf.IsMatch(req))
}

func TestS4ExceptionMatchesByReferer(t *testing.T) {
	uf := parseOneURLFilter(t, "@@$referer=pinterest.com")

	req := filter.Request{
		URI:     mustURL(t, "http://silly.com/stoopid/url&=b1"),
		Headers: http.Header{"Referer": {"https://www.pinterest.com"}},
	}
	assert.True(t, uf.IsMatch(req))
	assert.True(t, uf.IsException())
}

func TestS5ExceptionFailsForDifferentReferer(t *testing.T) {
	uf := parseOneURLFilter(t, "@@$referer=pinterest.com")

	req := filter.Request{
		URI:     mustURL(t, "http://silly.com/stoopid/url&=b1"),
		Headers: http.Header{"Referer": {"https://www.silsly.com"}},
	}
	assert.False(t, uf.IsMatch(req))
}

func TestS6ElementHideParsesSelectorAndDomain(t *testing.T) {
	p := New()
	f, err := p.Parse("example.com##.banner", 1)
	require.NoError(t, err)

	hf, ok := f.(*filter.HtmlFilter)
	require.True(t, ok)
	assert.False(t, hf.IsException())
	assert.Equal(t, ".banner", hf.CSSSelector)
	assert.True(t, hf.ApplicableDomains.Has("example.com"))
}

func TestAnchoredDomainInvariant(t *testing.T) {
	uf := parseOneURLFilter(t, "||host.example^path")
	assert.True(t, uf.ApplicableDomains.Has("host.example"))

	assert.True(t, uf.IsMatch(filter.Request{
		URI:     mustURL(t, "http://sub.host.example/path/x"),
		Headers: http.Header{},
	}))
	assert.False(t, uf.IsMatch(filter.Request{
		URI:     mustURL(t, "http://other.example/path/x"),
		Headers: http.Header{},
	}))
}

func TestDomainFanOutOption(t *testing.T) {
	uf := parseOneURLFilter(t, "r$domain=a.com|b.com|~c.com")
	assert.True(t, uf.ApplicableDomains.Has("a.com"))
	assert.True(t, uf.ApplicableDomains.Has("b.com"))
	assert.True(t, uf.ExceptionDomains.Has("c.com"))
}

func TestCommentAndEmptyLinesAreFailures(t *testing.T) {
	p := New()
	_, err := p.Parse("! this is a comment", 1)
	assert.Error(t, err)
	_, err = p.Parse("", 1)
	assert.Error(t, err)
	assert.Equal(t, 2, p.Stats().Failed)
}

func TestParseAllNeverPanicsOnTotality(t *testing.T) {
	p := New()
	lines := []string{
		"! comment",
		"",
		"##selector-only",
		"example.com##.banner",
		"example.com#@#.banner",
		"||ads.example^$script",
		"@@||good.example^$document",
		"$$$$$$$",
		"|http://a.b/|",
	}
	for _, l := range lines {
		assert.NotPanics(t, func() {
			p.Parse(l, 1)
		})
	}
}
