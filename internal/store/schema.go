package store

import (
	"database/sql"
	"fmt"
)

// tableName and column names match spec.md §6's persisted schema
// exactly: UrlFiltersIndex(Domains, CategoryId, IsWhitelist, Source).
const tableName = "UrlFiltersIndex"

const createTableSQL = `
CREATE TABLE IF NOT EXISTS ` + tableName + ` (
	Domains     TEXT    NOT NULL,
	CategoryId  INTEGER NOT NULL,
	IsWhitelist INTEGER NOT NULL,
	Source      TEXT    NOT NULL
)`

func createSchema(db *sql.DB, overwrite bool) error {
	if overwrite {
		if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)); err != nil {
			return fmt.Errorf("store: drop table: %w", err)
		}
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("store: create table: %w", err)
	}
	return nil
}

// finalizeIndexes creates the three indexes spec.md §4.5/§6 specifies:
// (Domains), (IsWhitelist), (Domains, IsWhitelist).
func finalizeIndexes(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_domains ON %s (Domains)`, tableName, tableName),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_whitelist ON %s (IsWhitelist)`, tableName, tableName),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_domains_whitelist ON %s (Domains, IsWhitelist)`, tableName, tableName),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: create index: %w", err)
		}
	}
	return nil
}
