package graphdb

import (
	"fmt"

	"github.com/starford/docops/internal/models"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Path     string
	Title    string
	Checksum string
}

// Replace discards the previous export and writes docs and their outbound
// links in one transaction.
func (db *DB) Replace(docs []*models.Document) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("graphdb: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(`DELETE FROM links`); err != nil {
		return fmt.Errorf("graphdb: clear links: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM documents`); err != nil {
		return fmt.Errorf("graphdb: clear documents: %w", err)
	}

	docStmt, err := tx.Prepare(`INSERT INTO documents (path, title, checksum) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("graphdb: prepare document insert: %w", err)
	}
	defer docStmt.Close()
	for _, d := range docs {
		if _, err := docStmt.Exec(d.Path, d.Title, d.Checksum); err != nil {
			return fmt.Errorf("graphdb: insert document %s: %w", d.Path, err)
		}
	}

	linkStmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("graphdb: prepare link insert: %w", err)
	}
	defer linkStmt.Close()
	for _, d := range docs {
		for _, target := range d.Links {
			if _, err := linkStmt.Exec(d.Path, target); err != nil {
				return fmt.Errorf("graphdb: insert link %s -> %s: %w", d.Path, target, err)
			}
		}
	}

	return tx.Commit()
}

// Documents returns every exported document ordered by path.
func (db *DB) Documents() ([]DocumentRow, error) {
	rows, err := db.conn.Query(`SELECT path, title, checksum FROM documents ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("graphdb: documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var r DocumentRow
		if err := rows.Scan(&r.Path, &r.Title, &r.Checksum); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Backlinks returns all document paths that link to the given target, sorted.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT source FROM links WHERE target = ? ORDER BY source`, target)
	if err != nil {
		return nil, fmt.Errorf("graphdb: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
