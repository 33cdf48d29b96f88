package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", false, true, DefaultCacheOptions(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIngestCountsUrlFiltersAndSkipsElementHide(t *testing.T) {
	s := openTestStore(t)

	input := strings.Join([]string{
		"||ads.example.com^$script",
		"! a comment",
		"example.com##.banner",
		"",
		"@@||good.example.com^",
	}, "\n")

	loaded, failed, err := s.Ingest(strings.NewReader(input), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded)
	assert.Equal(t, 3, failed)
}

func TestGetFiltersForDomainAfterFinalize(t *testing.T) {
	s := openTestStore(t)

	_, _, err := s.Ingest(strings.NewReader("||ads.example.com^$script\n"), 1)
	require.NoError(t, err)
	require.NoError(t, s.FinalizeForRead())

	got, err := s.GetFiltersForDomain("ads.example.com", false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].IsException())
}

func TestGetFiltersForDomainSubdomainFanOut(t *testing.T) {
	s := openTestStore(t)

	_, _, err := s.Ingest(strings.NewReader("||example.com^$script\n"), 1)
	require.NoError(t, err)
	require.NoError(t, s.FinalizeForRead())

	got, err := s.GetFiltersForDomain("a.b.example.com", false)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGetFiltersForDomainSplitsWhitelistFromBlacklist(t *testing.T) {
	s := openTestStore(t)

	input := strings.Join([]string{
		"||example.com^$script",
		"@@||example.com^",
	}, "\n")
	_, _, err := s.Ingest(strings.NewReader(input), 1)
	require.NoError(t, err)
	require.NoError(t, s.FinalizeForRead())

	block, err := s.GetFiltersForDomain("example.com", false)
	require.NoError(t, err)
	assert.Len(t, block, 1)
	assert.False(t, block[0].IsException())

	allow, err := s.GetFiltersForDomain("example.com", true)
	require.NoError(t, err)
	assert.Len(t, allow, 1)
	assert.True(t, allow[0].IsException())
}

func TestIngestAfterFinalizeIsRejected(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.FinalizeForRead())

	_, _, err := s.Ingest(strings.NewReader("||example.com^\n"), 1)
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestGetFiltersForDomainIsCachedAcrossCalls(t *testing.T) {
	s := openTestStore(t)

	_, _, err := s.Ingest(strings.NewReader("||example.com^$script\n"), 1)
	require.NoError(t, err)
	require.NoError(t, s.FinalizeForRead())

	first, err := s.GetFiltersForDomain("example.com", false)
	require.NoError(t, err)
	second, err := s.GetFiltersForDomain("example.com", false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, s.cache.Len())
}

func TestRuleWithNoApplicableDomainIsStoredUnderGlobalKey(t *testing.T) {
	s := openTestStore(t)

	_, _, err := s.Ingest(strings.NewReader("/ads/banner.js$script\n"), 1)
	require.NoError(t, err)
	require.NoError(t, s.FinalizeForRead())

	got, err := s.GetFiltersForDomain(GlobalKey, false)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStatsReportsWhitelistAndBlacklistRowCounts(t *testing.T) {
	s := openTestStore(t)

	input := strings.Join([]string{
		"||example.com^$script",
		"@@||good.example.com^",
	}, "\n")
	_, _, err := s.Ingest(strings.NewReader(input), 1)
	require.NoError(t, err)

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, st.BlacklistRows)
	assert.Equal(t, 1, st.WhitelistRows)
}
