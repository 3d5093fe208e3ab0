//go:build !sqlite_fts5

package store

import (
	"database/sql"
	"fmt"

	"github.com/starford/infinity/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; search uses a LIKE fallback over the worlds mirror.
	return nil
}

func ftsReplace(_ *sql.Tx, _ []models.Website) error {
	// The worlds mirror already holds the searchable columns.
	return nil
}

// SearchWorlds performs a LIKE-based search (fallback when FTS5 is absent).
func (db *DB) SearchWorlds(query string, limit int) ([]WorldHit, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT id, title, substr(body, 1, 200)
		FROM worlds
		WHERE title LIKE ? OR description LIKE ? OR body LIKE ?
		LIMIT ?
	`, like, like, like, limit)
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
