package store

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/katari-dev/abpfilter/internal/filter"
	"github.com/katari-dev/abpfilter/internal/parser"
)

const insertSQL = `INSERT INTO ` + tableName + ` (Domains, CategoryId, IsWhitelist, Source) VALUES (?, ?, ?, ?)`

// Ingest streams lines from r (no whole-input buffering, per spec.md
// §5), parses each with categoryID, and inserts one row per applicable
// domain — or one row under GlobalKey if the rule has none — all
// within a single transaction using a prepared insert, per spec.md
// §4.5.
//
// Element-hide rules parse successfully but are counted as failures
// of this URL-filter ingest path, preserving the numeric contract
// spec.md §4.5 calls out explicitly: "Element-hide rules are (in the
// current core) counted as failures of URL-filter ingest."
//
// Ingest invalidates the lookup cache on success. It must not be
// called concurrently with another Ingest on the same Store (spec.md
// §5).
func (s *Store) Ingest(r io.Reader, categoryID int16) (loaded, failed int, err error) {
	if s.readyRO.Load() {
		return 0, 0, fmt.Errorf("store: ingest after FinalizeForRead: %w", ErrStoreClosed)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return 0, 0, fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	p := parser.New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		f, perr := p.Parse(line, categoryID)
		if perr != nil {
			failed++
			continue
		}

		uf, ok := f.(*filter.UrlFilter)
		if !ok {
			failed++
			continue
		}

		if err = insertRule(stmt, uf); err != nil {
			return 0, 0, err
		}
		loaded++
	}
	if scanErr := sc.Err(); scanErr != nil {
		err = fmt.Errorf("store: scan: %w", scanErr)
		return 0, 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("store: commit: %w", err)
	}

	s.cache.Reset()
	log.Info().Int("loaded", loaded).Int("failed", failed).Msg("ingest complete")
	return loaded, failed, nil
}

func insertRule(stmt *sql.Stmt, uf *filter.UrlFilter) error {
	domains := uf.ApplicableDomains.Sorted()
	if len(domains) == 0 {
		domains = []string{GlobalKey}
	}

	for _, domain := range domains {
		if _, err := stmt.Exec(domain, uf.CategoryID(), uf.IsException(), uf.OriginalRule()); err != nil {
			return fmt.Errorf("store: insert: %w", err)
		}
	}
	return nil
}

// FinalizeForRead creates the supporting indexes and puts the store
// into query-only mode (spec.md §4.5). Calling Ingest after this
// returns ErrStoreClosed-wrapped error.
func (s *Store) FinalizeForRead() error {
	if err := finalizeIndexes(s.db); err != nil {
		return err
	}
	if err := s.rebuildBloom(); err != nil {
		return err
	}
	s.readyRO.Store(true)
	log.Info().Msg("store finalized for read")
	return nil
}

func (s *Store) rebuildBloom() error {
	rows, err := s.db.Query(fmt.Sprintf("SELECT DISTINCT Domains FROM %s", tableName))
	if err != nil {
		return fmt.Errorf("store: rebuild bloom: %w", err)
	}
	defer rows.Close()

	var count int
	var keys []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return fmt.Errorf("store: rebuild bloom scan: %w", err)
		}
		keys = append(keys, domain)
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("store: rebuild bloom: %w", err)
	}

	s.bloom.reset(count)
	for _, k := range keys {
		s.bloom.add(k)
	}
	return nil
}
