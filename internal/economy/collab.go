package economy

import (
	"context"

	"github.com/starford/infinity/internal/apperr"
	"github.com/starford/infinity/internal/models"
	"github.com/starford/infinity/internal/store"
)

// AddCollaborator grants another wallet editor or viewer access to a world
// the caller owns. A wallet already present in the list, in any role, is
// rejected.
func (s *Service) AddCollaborator(ctx context.Context, siteID, collaborator, role string) error {
	w, err := s.Wallet(ctx)
	if err != nil {
		return err
	}
	if err := walletRequired(w); err != nil {
		return err
	}
	err = s.db.Apply(func(tx *store.Txn) error {
		sites, err := store.Load(tx, store.SlotWebsites, []models.Website{})
		if err != nil {
			return err
		}
		i := findSite(sites, siteID)
		if i < 0 {
			return apperr.ErrNotFound
		}
		if sites[i].OwnerWallet != w.Address {
			return apperr.ErrNotOwner
		}
		for _, c := range sites[i].Collaborators {
			if c.Wallet == collaborator {
				return apperr.ErrAlreadyCollaborator
			}
		}
		sites[i].Collaborators = append(sites[i].Collaborators, models.Collaborator{
			Wallet:  collaborator,
			Role:    role,
			AddedAt: s.now(),
			AddedBy: w.Address,
		})
		return saveWebsites(tx, sites)
	})
	if err != nil {
		return err
	}
	s.emit("world.updated", siteID)
	return nil
}

// RemoveCollaborator drops a wallet from a world's collaborator list. The
// owner entry can never be removed through this path, including by the
// owner themselves. Removing an absent wallet succeeds and changes nothing.
func (s *Service) RemoveCollaborator(ctx context.Context, siteID, collaborator string) error {
	w, err := s.Wallet(ctx)
	if err != nil {
		return err
	}
	if err := walletRequired(w); err != nil {
		return err
	}
	err = s.db.Apply(func(tx *store.Txn) error {
		sites, err := store.Load(tx, store.SlotWebsites, []models.Website{})
		if err != nil {
			return err
		}
		i := findSite(sites, siteID)
		if i < 0 {
			return apperr.ErrNotFound
		}
		if sites[i].OwnerWallet != w.Address {
			return apperr.ErrNotOwner
		}
		next := sites[i].Collaborators[:0]
		for _, c := range sites[i].Collaborators {
			if c.Wallet != collaborator || c.Role == models.RoleOwner {
				next = append(next, c)
			}
		}
		sites[i].Collaborators = next
		return saveWebsites(tx, sites)
	})
	if err != nil {
		return err
	}
	s.emit("world.updated", siteID)
	return nil
}
