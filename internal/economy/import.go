package economy

import (
	"context"

	"github.com/starford/infinity/internal/models"
	"github.com/starford/infinity/internal/store"
)

// ImportWorld upserts an externally sourced world into the registry,
// keyed by id. Imported worlds belong to their recorded owner (usually a
// synthetic address), so no wallet is credited; they exist to give the
// marketplace third-party inventory.
func (s *Service) ImportWorld(_ context.Context, site models.Website) error {
	changed := false
	err := s.db.Apply(func(tx *store.Txn) error {
		sites, err := store.Load(tx, store.SlotWebsites, []models.Website{})
		if err != nil {
			return err
		}
		if i := findSite(sites, site.ID); i >= 0 {
			sites[i] = site
		} else {
			sites = append(sites, site)
		}
		changed = true
		return saveWebsites(tx, sites)
	})
	if err != nil {
		return err
	}
	if changed {
		s.emit("world.imported", site.ID)
	}
	return nil
}

// RemoveImportedWorld drops a world from the registry by id. It is only
// invoked by the seed importer when a seed file disappears; worlds created
// in-app are never removed.
func (s *Service) RemoveImportedWorld(_ context.Context, id string) error {
	err := s.db.Apply(func(tx *store.Txn) error {
		sites, err := store.Load(tx, store.SlotWebsites, []models.Website{})
		if err != nil {
			return err
		}
		i := findSite(sites, id)
		if i < 0 {
			return nil
		}
		sites = append(sites[:i], sites[i+1:]...)
		return saveWebsites(tx, sites)
	})
	if err != nil {
		return err
	}
	s.emit("world.removed", id)
	return nil
}
