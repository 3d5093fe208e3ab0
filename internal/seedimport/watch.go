package seedimport

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/infinity/internal/economy"
	"github.com/starford/infinity/internal/seeds"
	"github.com/starford/infinity/internal/store"
)

// Watch starts an fsnotify watcher on the seed root and processes file
// change events until ctx is cancelled. Seed files written while the
// process runs are imported on the fly; deleted seed files remove their
// worlds from the registry.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a debounced full Sync pass, since fsnotify
// only reports the old path.
func Watch(ctx context.Context, db *store.DB, svc *economy.Service, provider seeds.Provider, seedRoot string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, seedRoot); err != nil {
		return err
	}

	logger.Info("seed watcher: started", slog.String("root", seedRoot))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("seed watcher: stopped")
			return nil

		case <-reconcileCh:
			if err := Sync(ctx, db, svc, provider, logger); err != nil {
				logger.Warn("seed watcher: reconcile failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("seed watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					// A new directory may already contain seeds.
					scheduleReconcile()
					continue
				}
			}

			if !strings.HasSuffix(absPath, ".json") {
				continue
			}

			rel, relErr := filepath.Rel(seedRoot, absPath)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				importOne(ctx, db, svc, provider, rel, logger)

			case ev.Op&fsnotify.Remove != 0:
				removeOne(ctx, db, svc, rel, logger)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only; the new
				// path arrives as a separate Create. Drop the old entry
				// now and reconcile shortly after for stragglers.
				removeOne(ctx, db, svc, rel, logger)
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("seed watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// importOne decodes and imports a single seed file and records it in the
// seed index.
func importOne(ctx context.Context, db *store.DB, svc *economy.Service, provider seeds.Provider, rel string, logger *slog.Logger) {
	data, err := provider.Read(rel)
	if err != nil {
		logger.Warn("seed watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	site, err := seeds.Decode(rel, data, time.Now().UnixMilli())
	if err != nil {
		logger.Warn("seed watcher: decode failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if err := svc.ImportWorld(ctx, *site); err != nil {
		logger.Warn("seed watcher: import failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if err := updateIndex(db, func(idx seedIndex) {
		idx[rel] = record{WorldID: site.ID, Checksum: seeds.Checksum(data)}
	}); err != nil {
		logger.Warn("seed watcher: index update failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	logger.Debug("seed watcher: imported", slog.String("path", rel), slog.String("world", site.ID))
}

// removeOne drops the world backing a deleted seed file.
func removeOne(ctx context.Context, db *store.DB, svc *economy.Service, rel string, logger *slog.Logger) {
	idx, err := loadIndex(db)
	if err != nil {
		logger.Warn("seed watcher: index load failed", slog.String("error", err.Error()))
		return
	}
	rec, ok := idx[rel]
	if !ok {
		return
	}
	if err := svc.RemoveImportedWorld(ctx, rec.WorldID); err != nil {
		logger.Warn("seed watcher: remove failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if err := updateIndex(db, func(idx seedIndex) {
		delete(idx, rel)
	}); err != nil {
		logger.Warn("seed watcher: index update failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	logger.Debug("seed watcher: removed", slog.String("path", rel), slog.String("world", rec.WorldID))
}

func updateIndex(db *store.DB, mutate func(seedIndex)) error {
	return db.Apply(func(tx *store.Txn) error {
		idx, err := store.Load(tx, store.SlotSeedIndex, seedIndex{})
		if err != nil {
			return err
		}
		mutate(idx)
		return store.Save(tx, store.SlotSeedIndex, idx)
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
