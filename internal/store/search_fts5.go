//go:build sqlite_fts5

package store

import (
	"database/sql"
	"fmt"

	"github.com/starford/infinity/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS worlds_fts USING fts5(
			id UNINDEXED,
			title,
			description,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsReplace(tx *sql.Tx, sites []models.Website) error {
	if _, err := tx.Exec(`DELETE FROM worlds_fts`); err != nil {
		return fmt.Errorf("store: clear worlds fts: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO worlds_fts (id, title, description, body) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare fts insert: %w", err)
	}
	defer stmt.Close()
	for i := range sites {
		s := &sites[i]
		if _, err := stmt.Exec(s.ID, s.Title, s.Description, s.Content); err != nil {
			return fmt.Errorf("store: insert fts: %w", err)
		}
	}
	return nil
}

// SearchWorlds performs an FTS5 full-text search over the world mirror.
func (db *DB) SearchWorlds(query string, limit int) ([]WorldHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id,
		       title,
		       snippet(worlds_fts, 3, '<b>', '</b>', '...', 64)
		FROM worlds_fts
		WHERE worlds_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	var out []WorldHit
	for rows.Next() {
		var h WorldHit
		if err := rows.Scan(&h.ID, &h.Title, &h.Snippet); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
