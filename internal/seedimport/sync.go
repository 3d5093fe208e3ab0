// Package seedimport keeps the world registry in sync with a directory
// of seed world files. Seeds that appear or change on disk are imported,
// seeds removed from disk are removed from the registry.
package seedimport

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/infinity/internal/economy"
	"github.com/starford/infinity/internal/seeds"
	"github.com/starford/infinity/internal/store"
)

// record tracks one imported seed file.
type record struct {
	WorldID  string `json:"worldId"`
	Checksum string `json:"checksum"`
}

// seedIndex maps seed path to its last-imported record.
type seedIndex map[string]record

func loadIndex(db *store.DB) (seedIndex, error) {
	var idx seedIndex
	err := db.View(func(tx *store.Txn) error {
		var e error
		idx, e = store.Load(tx, store.SlotSeedIndex, seedIndex{})
		return e
	})
	return idx, err
}

func saveIndex(db *store.DB, idx seedIndex) error {
	return db.Apply(func(tx *store.Txn) error {
		return store.Save(tx, store.SlotSeedIndex, idx)
	})
}

// Sync walks the seed directory and brings the registry up to date:
//   - new/changed seed files are decoded and imported
//   - seeds removed from disk are removed from the registry
func Sync(ctx context.Context, db *store.DB, svc *economy.Service, provider seeds.Provider, logger *slog.Logger) error {
	metas, err := provider.List()
	if err != nil {
		return err
	}

	idx, err := loadIndex(db)
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if idx[m.Path].Checksum == m.Checksum {
			continue
		}

		data, err := provider.Read(m.Path)
		if err != nil {
			logger.Warn("seed sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		site, err := seeds.Decode(m.Path, data, time.Now().UnixMilli())
		if err != nil {
			logger.Warn("seed sync: decode failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := svc.ImportWorld(ctx, *site); err != nil {
			logger.Warn("seed sync: import failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		idx[m.Path] = record{WorldID: site.ID, Checksum: m.Checksum}
		logger.Debug("seed sync: imported", slog.String("path", m.Path), slog.String("world", site.ID))
	}

	// Remove worlds whose seed files are gone.
	for p, rec := range idx {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := svc.RemoveImportedWorld(ctx, rec.WorldID); err != nil {
			logger.Warn("seed sync: remove failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		delete(idx, p)
		logger.Debug("seed sync: removed stale", slog.String("path", p), slog.String("world", rec.WorldID))
	}

	return saveIndex(db, idx)
}
