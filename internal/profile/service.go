// Package profile manages the session user profile and its derived
// achievement flags.
package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/infinity/internal/apperr"
	"github.com/starford/infinity/internal/models"
	"github.com/starford/infinity/internal/store"
)

// Achievement is a derived badge over the registry and ledger.
type Achievement struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Desc     string `json:"desc"`
	Unlocked bool   `json:"unlocked"`
}

// Service manages the user-profile slot.
type Service struct {
	db  *store.DB
	now func() int64
}

// NewService creates a profile service.
func NewService(db *store.DB) *Service {
	return &Service{db: db, now: func() int64 { return time.Now().UnixMilli() }}
}

// defaultProfile derives the profile shown before the user saves one.
func defaultProfile(w *models.Wallet) *models.UserProfile {
	short := strings.TrimPrefix(w.Address, "0x")
	if len(short) > 6 {
		short = short[:6]
	}
	return &models.UserProfile{
		WalletAddress: w.Address,
		DisplayName:   "Spark_" + short,
		Bio:           "Exploring the Infinity ecosystem.",
		Avatar:        avatarFor(w.Address),
		JoinedAt:      w.CreatedAt,
	}
}

// avatarFor picks a deterministic glyph from the address.
func avatarFor(addr string) string {
	glyphs := []string{"comet", "nova", "orbit", "prism", "pulse", "nebula", "quasar", "spark"}
	var sum int
	for _, r := range addr {
		sum += int(r)
	}
	return glyphs[sum%len(glyphs)]
}

// View is a profile plus its derived achievements.
type View struct {
	Profile      models.UserProfile `json:"profile"`
	Achievements []Achievement      `json:"achievements"`
	Unlocked     int                `json:"unlocked"`
}

// Get returns the stored profile, or a derived default when none has been
// saved. It fails with ErrNotFound when no wallet exists either.
func (s *Service) Get(_ context.Context, w *models.Wallet, sites []models.Website, txs []models.Transaction) (*View, error) {
	if w == nil {
		return nil, fmt.Errorf("wallet: %w", apperr.ErrNotFound)
	}
	var p *models.UserProfile
	err := s.db.View(func(tx *store.Txn) error {
		var err error
		p, err = store.Load[*models.UserProfile](tx, store.SlotUserProfile, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = defaultProfile(w)
	}
	ach := achievements(w, sites, txs)
	unlocked := 0
	for _, a := range ach {
		if a.Unlocked {
			unlocked++
		}
	}
	return &View{Profile: *p, Achievements: ach, Unlocked: unlocked}, nil
}

// Update saves display name and bio, preserving avatar, join date, and
// stats from the current record (or the derived default).
func (s *Service) Update(_ context.Context, w *models.Wallet, displayName, bio string) (*models.UserProfile, error) {
	if w == nil {
		return nil, fmt.Errorf("wallet: %w", apperr.ErrNotFound)
	}
	var out *models.UserProfile
	err := s.db.Apply(func(tx *store.Txn) error {
		p, err := store.Load[*models.UserProfile](tx, store.SlotUserProfile, nil)
		if err != nil {
			return err
		}
		if p == nil {
			p = defaultProfile(w)
		}
		if name := strings.TrimSpace(displayName); name != "" {
			p.DisplayName = name
		}
		p.Bio = strings.TrimSpace(bio)
		p.WalletAddress = w.Address
		if err := store.Save(tx, store.SlotUserProfile, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func achievements(w *models.Wallet, sites []models.Website, txs []models.Transaction) []Achievement {
	mine, purchases, trades, listings, outgoing := 0, 0, 0, 0, 0
	for i := range sites {
		if sites[i].OwnerWallet == w.Address {
			mine++
		}
	}
	for i := range txs {
		t := &txs[i]
		if t.From == w.Address {
			outgoing++
		}
		switch t.Type {
		case models.TxPurchase:
			if t.From == w.Address {
				purchases++
			}
		case models.TxTrade:
			if t.From == w.Address || t.To == w.Address {
				trades++
			}
		case models.TxListing:
			if t.From == w.Address {
				listings++
			}
		}
	}
	return []Achievement{
		{ID: "first-world", Label: "World Builder", Desc: "Created your first world", Unlocked: mine >= 1},
		{ID: "five-worlds", Label: "Architect", Desc: "Created 5 worlds", Unlocked: mine >= 5},
		{ID: "first-purchase", Label: "Buyer", Desc: "Made your first purchase", Unlocked: purchases >= 1},
		{ID: "first-trade", Label: "Trader", Desc: "Completed your first trade", Unlocked: trades >= 1},
		{ID: "first-listing", Label: "Merchant", Desc: "Listed a world for sale", Unlocked: listings >= 1},
		{ID: "rich", Label: "Wealthy", Desc: "Accumulated 5,000 ∞", Unlocked: w.Spendable() >= 5000},
		{ID: "collector", Label: "Collector", Desc: "Own 3 or more worlds", Unlocked: mine >= 3},
		{ID: "veteran", Label: "Veteran", Desc: "Complete 10 transactions", Unlocked: outgoing >= 10},
	}
}
