package economy

import (
	"context"
	"fmt"

	"github.com/starford/infinity/internal/apperr"
	"github.com/starford/infinity/internal/generator"
	"github.com/starford/infinity/internal/idgen"
	"github.com/starford/infinity/internal/models"
	"github.com/starford/infinity/internal/store"
	"github.com/starford/infinity/internal/valuation"
)

// CreateWebsite generates a world from a free-text query and commits it:
// registry entry, paired token, and portfolio credit in one transaction.
// Generation runs first; a generation failure leaves all state untouched.
func (s *Service) CreateWebsite(ctx context.Context, query string) (*models.Website, error) {
	w, err := s.EnsureWallet(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.gen.GenerateWebsite(ctx, query, w.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrGeneration, err)
	}
	return s.commitWorld(ctx, w.Address, query, res, worldExtras{})
}

// CreateWorld generates a world from an archetype with a rarity multiplier
// and slot combination. Same atomicity contract as CreateWebsite.
func (s *Service) CreateWorld(ctx context.Context, archetype string, rarityMultiplier float64, slotCombination string) (*models.Website, error) {
	w, err := s.EnsureWallet(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.gen.GenerateWorld(ctx, archetype, w.Address, slotCombination)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrGeneration, err)
	}
	return s.commitWorld(ctx, w.Address, "World: "+archetype, res, worldExtras{
		archetype:        archetype,
		rarityMultiplier: rarityMultiplier,
		slotCombination:  slotCombination,
	})
}

type worldExtras struct {
	archetype        string
	rarityMultiplier float64
	slotCombination  string
}

func (s *Service) commitWorld(_ context.Context, owner, query string, res *generator.Result, extras worldExtras) (*models.Website, error) {
	now := s.now()
	site := models.Website{
		ID:          idgen.WebsiteID(),
		TokenID:     idgen.TokenID(),
		Title:       res.Title,
		Description: res.Description,
		Query:       query,
		Content:     res.Content,
		OwnerWallet: owner,
		Value:       valuation.Base,
		CreatedAt:   now,
		LastModified: now,
		Pages:       []models.Page{},
		Tools:       res.Tools,
		Theme:       "cosmic",
		Collaborators: []models.Collaborator{{
			Wallet:  owner,
			Role:    models.RoleOwner,
			AddedAt: now,
			AddedBy: owner,
		}},
		WorldArchetype:   extras.archetype,
		RarityMultiplier: extras.rarityMultiplier,
		SlotCombination:  extras.slotCombination,
		UniquenessScore:  1.0,
	}
	site.URL = "https://infinity.spark/" + site.ID
	site.Value = valuation.Appraise(&site)

	token := models.Token{
		ID:          site.TokenID,
		WebsiteID:   site.ID,
		WebsiteURL:  site.URL,
		OwnerWallet: owner,
		Value:       site.Value,
		CreatedAt:   now,
		Metadata: models.TokenMetadata{
			Title:            res.Title,
			Description:      res.Description,
			Query:            query,
			ToolCount:        len(res.Tools),
			WorldArchetype:   extras.archetype,
			RarityMultiplier: extras.rarityMultiplier,
		},
	}
	if extras.archetype != "" {
		token.Metadata.UniquenessScore = 1.0
	}

	err := s.db.Apply(func(tx *store.Txn) error {
		sites, err := store.Load(tx, store.SlotWebsites, []models.Website{})
		if err != nil {
			return err
		}
		w, err := store.Load[*models.Wallet](tx, store.SlotWallet, nil)
		if err != nil {
			return err
		}
		if err := walletRequired(w); err != nil {
			return err
		}
		if err := saveWebsites(tx, append(sites, site)); err != nil {
			return err
		}
		w.Balance += site.Value
		w.Tokens = append(w.Tokens, token)
		return store.Save(tx, store.SlotWallet, w)
	})
	if err != nil {
		return nil, err
	}
	s.emit("world.created", site.ID)
	s.emit("wallet.updated", owner)
	return &site, nil
}

// AddPage generates and appends a page to a world the caller owns, then
// recomputes the world's value and credits the wallet and the paired token
// with the flat page reward plus the per-tool reward. The owner check runs
// before generation so a non-owner call never reaches the collaborator.
func (s *Service) AddPage(ctx context.Context, siteID, query string) (*models.Website, error) {
	w, err := s.Wallet(ctx)
	if err != nil {
		return nil, err
	}
	if err := walletRequired(w); err != nil {
		return nil, err
	}
	site, err := s.Website(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site.OwnerWallet != w.Address {
		return nil, apperr.ErrNotOwner
	}

	res, err := s.gen.GeneratePage(ctx, site.Title, query, w.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrGeneration, err)
	}

	now := s.now()
	page := models.Page{
		ID:        idgen.PageID(),
		Title:     res.Title,
		Content:   res.Content,
		Tools:     res.Tools,
		CreatedAt: now,
		Author:    w.Address,
	}
	credit := int64(100 + 100*len(page.Tools))

	var out *models.Website
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
		sites[i].Pages = append(sites[i].Pages, page)
		sites[i].LastModified = now
		sites[i].Value = valuation.Appraise(&sites[i])

		wal, err := store.Load[*models.Wallet](tx, store.SlotWallet, nil)
		if err != nil {
			return err
		}
		if err := walletRequired(wal); err != nil {
			return err
		}
		wal.Balance += credit
		for j := range wal.Tokens {
			if wal.Tokens[j].WebsiteID == siteID {
				wal.Tokens[j].Value += credit
				wal.Tokens[j].Metadata.ToolCount += len(page.Tools)
			}
		}
		if err := saveWebsites(tx, sites); err != nil {
			return err
		}
		if err := store.Save(tx, store.SlotWallet, wal); err != nil {
			return err
		}
		out = &sites[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emit("world.updated", siteID)
	s.emit("wallet.updated", w.Address)
	return out, nil
}
