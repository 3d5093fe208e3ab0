package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/infinity/internal/models"
)

// Slot keys for the persisted state surface.
const (
	SlotWebsites        = "infinity-websites"
	SlotWallet          = "infinity-wallet"
	SlotTransactions    = "infinity-transactions"
	SlotTradeOffers     = "infinity-trade-offers"
	SlotCart            = "infinity-cart"
	SlotMusicTracks     = "infinity-music-tracks"
	SlotLikedTracks     = "infinity-liked-tracks"
	SlotUserProfile     = "infinity-user-profile"
	SlotTerminalHistory = "infinity-terminal-history"
	SlotSeedIndex       = "infinity-seed-index"
)

// Txn is a handle to one slot-store transaction.
type Txn struct {
	sqlTx *sql.Tx
}

// LoadRaw returns the raw JSON of a slot, reporting whether it exists.
func (tx *Txn) LoadRaw(key string) ([]byte, bool, error) {
	var value []byte
	err := tx.sqlTx.QueryRow(`SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load %s: %w", key, err)
	}
	return value, true, nil
}

// SaveRaw replaces a slot's value wholesale.
func (tx *Txn) SaveRaw(key string, value []byte) error {
	_, err := tx.sqlTx.Exec(`
		INSERT INTO slots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", key, err)
	}
	return nil
}

// Delete removes a slot entirely, restoring its stated default on next load.
func (tx *Txn) Delete(key string) error {
	if _, err := tx.sqlTx.Exec(`DELETE FROM slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("store: delete %s: %w", key, err)
	}
	return nil
}

// Load decodes a slot into T, returning def when the slot is absent.
func Load[T any](tx *Txn, key string, def T) (T, error) {
	raw, ok, err := tx.LoadRaw(key)
	if err != nil || !ok {
		return def, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return def, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return v, nil
}

// Save encodes v and replaces the slot wholesale.
func Save[T any](tx *Txn, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	return tx.SaveRaw(key, raw)
}

// IndexWorlds rewrites the worlds mirror table (and FTS index when built
// with sqlite_fts5) from the full registry. Callers invoke it in the same
// transaction as every websites-slot write so search never lags the slot.
func (tx *Txn) IndexWorlds(sites []models.Website) error {
	if _, err := tx.sqlTx.Exec(`DELETE FROM worlds`); err != nil {
		return fmt.Errorf("store: clear worlds: %w", err)
	}
	stmt, err := tx.sqlTx.Prepare(`
		INSERT INTO worlds (id, title, description, body, owner, value, listed, sale_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: prepare world insert: %w", err)
	}
	defer stmt.Close()

	for i := range sites {
		s := &sites[i]
		listed := 0
		if s.IsListedForSale {
			listed = 1
		}
		if _, err := stmt.Exec(s.ID, s.Title, s.Description, s.Content, s.OwnerWallet, s.Value, listed, s.SalePrice); err != nil {
			return fmt.Errorf("store: insert world: %w", err)
		}
	}
	return ftsReplace(tx.sqlTx, sites)
}
