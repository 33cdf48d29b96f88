package store

import (
	"database/sql"
	"fmt"

	"github.com/katari-dev/abpfilter/internal/filter"
	"github.com/katari-dev/abpfilter/internal/parser"
)

const selectSQL = `SELECT CategoryId, Source FROM ` + tableName + ` WHERE Domains = ? AND IsWhitelist = ?`

// GetFiltersForDomain implements spec.md §4.6: expand host to its
// ordered parent-domain suffixes, probe the store for each with the
// prepared SELECT, re-parse every matching row's source text into a
// fresh UrlFilter, and cache the concatenated result under
// (host, wantWhitelist).
//
// host defaults to store.GlobalKey when empty, per spec.md §6's
// library-surface signature ("host = 'global'").
//
// GetFiltersForDomain assumes FinalizeForRead has already run: the
// bloom pre-filter it consults is empty until then, so calling this
// before finalizing would silently return no rows rather than an
// error.
func (s *Store) GetFiltersForDomain(host string, wantWhitelist bool) ([]*filter.UrlFilter, error) {
	if host == "" {
		host = GlobalKey
	}

	if cached, ok := s.cache.Get(host, wantWhitelist); ok {
		return cached, nil
	}

	var out []*filter.UrlFilter
	p := parser.New()

	for _, suffix := range subdomainSuffixes(host) {
		if !s.bloom.mightContain(suffix) {
			continue
		}
		rows, err := s.queryDomain(suffix, wantWhitelist)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			f, perr := p.Parse(row.source, row.categoryID)
			if perr != nil {
				continue
			}
			if uf, ok := f.(*filter.UrlFilter); ok {
				out = append(out, uf)
			}
		}
	}

	s.cache.Set(host, wantWhitelist, out)
	return out, nil
}

type storedRow struct {
	categoryID int16
	source     string
}

func (s *Store) queryDomain(domain string, wantWhitelist bool) ([]storedRow, error) {
	rows, err := s.db.Query(selectSQL, domain, wantWhitelist)
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	defer rows.Close()

	var out []storedRow
	for rows.Next() {
		var r storedRow
		var categoryID int64
		if err := rows.Scan(&categoryID, &r.source); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		r.categoryID = int16(categoryID)
		out = append(out, r)
	}
	return out, rows.Err()
}

// subdomainSuffixes expands host into itself plus every parent-domain
// suffix, per spec.md §4.6's example:
// "a.b.c.com -> [a.b.c.com, b.c.com, c.com, com]".
func subdomainSuffixes(host string) []string {
	out := []string{host}
	for i := 0; i < len(host); i++ {
		if host[i] == '.' {
			out = append(out, host[i+1:])
		}
	}
	return out
}

// Stats reports row counts per whitelist/blacklist partition, a
// dropped-feature supplement in the style of
// AdguardTeam-AdGuardDNS__filterstorage.go's storage introspection.
type Stats struct {
	BlacklistRows int
	WhitelistRows int
}

func (s *Store) Stats() (Stats, error) {
	var st Stats
	err := s.db.QueryRow(
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE IsWhitelist = 0`, tableName),
	).Scan(&st.BlacklistRows)
	if err != nil && err != sql.ErrNoRows {
		return st, fmt.Errorf("store: stats: %w", err)
	}
	err = s.db.QueryRow(
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE IsWhitelist = 1`, tableName),
	).Scan(&st.WhitelistRows)
	if err != nil && err != sql.ErrNoRows {
		return st, fmt.Errorf("store: stats: %w", err)
	}
	return st, nil
}
