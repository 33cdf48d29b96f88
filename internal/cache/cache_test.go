package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/katari-dev/abpfilter/internal/filter"
)

func TestSetGetRoundTrip(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	want := []*filter.UrlFilter{{}}
	c.Set("example.com", false, want)

	got, ok := c.Get("example.com", false)
	assert.True(t, ok)
	assert.Len(t, got, 1)
}

func TestWhitelistAndBlacklistAreDistinctKeys(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("example.com", true, []*filter.UrlFilter{{}})
	_, ok := c.Get("example.com", false)
	assert.False(t, ok)
}

func TestResetEvictsEverything(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("example.com", false, []*filter.UrlFilter{{}})
	c.Reset()

	_, ok := c.Get("example.com", false)
	assert.False(t, ok)
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	c := New(20 * time.Millisecond)
	defer c.Close()

	c.Set("example.com", false, []*filter.UrlFilter{{}})
	time.Sleep(60 * time.Millisecond)

	_, ok := c.Get("example.com", false)
	assert.False(t, ok)
}
