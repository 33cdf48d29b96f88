// Package store implements the domain-indexed rule store of spec.md
// §4.5/§6: a single-table relational index, bulk ingest under one
// transaction with a prepared insert, and the subdomain-fan-out query
// path of §4.6 backed by a short-TTL lookup cache.
//
// The backing engine is a CGo-free SQLite (modernc.org/sqlite); the
// pack's retrieved examples have no SQL driver of their own, so this
// one dependency is named rather than grounded (see DESIGN.md).
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"

	"github.com/katari-dev/abpfilter/internal/cache"
)

// GlobalKey is the sentinel host under which rules with no applicable
// domain are stored (spec.md §6).
const GlobalKey = "global"

// ErrStoreClosed is wrapped in the error Ingest returns once
// FinalizeForRead has put the store into query-only mode.
var ErrStoreClosed = errors.New("store: closed")

// CacheOptions configures the backing engine for write throughput over
// durability, per spec.md §4.5's "performance recommendations, not
// correctness requirements."
type CacheOptions struct {
	Synchronous    string // "OFF", "NORMAL", "FULL" — default "OFF"
	JournalMode    string // "OFF", "MEMORY", "WAL" — default "OFF"
	SharedCache    bool   // default true
	PageCacheKB    int    // negative-KB PRAGMA cache_size — default 64000
	AutomaticIndex bool   // default false (disabled during bulk load)
}

// DefaultCacheOptions returns the write-optimized defaults spec.md §4.5
// describes.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{
		Synchronous: "OFF",
		JournalMode: "OFF",
		SharedCache: true,
		PageCacheKB: 64000,
	}
}

// Store is the domain-indexed rule store. A Store is safe for
// concurrent GetFiltersForDomain/IsMatch-driving reads after
// FinalizeForRead; Ingest itself must not run concurrently with
// another Ingest (spec.md §5, single-writer many-reader).
type Store struct {
	db      *sql.DB
	cache   *cache.Cache
	bloom   *domainBloom
	readyRO atomic.Bool
}

// Open opens (or creates) the store at path, which may be ":memory:".
// If overwrite is true, any existing UrlFiltersIndex table is dropped
// and recreated. If useMemory is true, path is ignored and an
// in-memory database is used regardless (handy for tests). cacheTTL is
// the lookup-cache expiry (spec.md §4.6); zero selects cache.DefaultTTL.
func Open(path string, overwrite, useMemory bool, cacheOpts CacheOptions, cacheTTL time.Duration) (*Store, error) {
	dsn := path
	if useMemory || path == "" {
		dsn = ":memory:"
	}
	if dsn == ":memory:" {
		if cacheOpts.SharedCache {
			dsn = "file::memory:?cache=shared"
		}
	} else if cacheOpts.SharedCache {
		dsn = fmt.Sprintf("file:%s?cache=shared", dsn)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	if err := applyPragmas(db, cacheOpts); err != nil {
		db.Close()
		return nil, err
	}

	if err := createSchema(db, overwrite); err != nil {
		db.Close()
		return nil, err
	}

	ttl := cache.DefaultTTL
	if cacheTTL > 0 {
		ttl = cacheTTL
	}

	s := &Store{
		db:    db,
		cache: cache.New(ttl),
		bloom: newDomainBloom(),
	}
	log.Info().Str("dsn", dsn).Bool("overwrite", overwrite).Msg("store opened")
	return s, nil
}

func applyPragmas(db *sql.DB, opts CacheOptions) error {
	stmts := []string{
		fmt.Sprintf("PRAGMA synchronous = %s", nonEmpty(opts.Synchronous, "OFF")),
		fmt.Sprintf("PRAGMA journal_mode = %s", nonEmpty(opts.JournalMode, "OFF")),
		fmt.Sprintf("PRAGMA cache_size = -%d", nonZero(opts.PageCacheKB, 64000)),
	}
	if !opts.AutomaticIndex {
		stmts = append(stmts, "PRAGMA automatic_index = OFF")
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: pragma %q: %w", stmt, err)
		}
	}
	return nil
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func nonZero(n, fallback int) int {
	if n == 0 {
		return fallback
	}
	return n
}

// Close releases the store's handle and drops all cached filter lists.
func (s *Store) Close() error {
	s.cache.Close()
	return s.db.Close()
}

// logger returns a child logger tagged for this store, for callers
// that want consistent field names.
func (s *Store) logger() *zerolog.Logger {
	l := log.With().Str("component", "store").Logger()
	return &l
}

// CacheLen reports the number of entries currently held by the lookup
// cache, for the CLI's `stats` command.
func (s *Store) CacheLen() int {
	return s.cache.Len()
}
