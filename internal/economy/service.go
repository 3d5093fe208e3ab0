// Package economy implements the Infinity ledger: wallet, world registry,
// marketplace, cart, collaborators, trade offers, and the append-only
// transaction log.
//
// Every operation runs inside one store.Apply boundary, so a logical
// operation commits atomically across the registry/wallet/transaction-log
// triple or not at all. One asymmetry of the marketplace is deliberate and
// observable: a sale never credits the seller's wallet record, and any
// stale token entry the seller holds stays in place. The registry alone is
// authoritative for ownership; wallet token lists are informational.
package economy

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/infinity/internal/apperr"
	"github.com/starford/infinity/internal/generator"
	"github.com/starford/infinity/internal/idgen"
	"github.com/starford/infinity/internal/models"
	"github.com/starford/infinity/internal/store"
)

// DefaultStartingBalance is granted to new wallets and backfilled into
// wallets that predate the synthetic currency.
const DefaultStartingBalance = 10000

// EventCallback is called after a committed mutation.
// kind is a dotted event name such as "world.created" or "wallet.updated".
type EventCallback func(kind, id string)

// Service coordinates all economy state transitions.
type Service struct {
	db     *store.DB
	gen    generator.Provider
	events EventCallback

	startingBalance int64
	now             func() int64
}

// NewService creates a new economy service. cb may be nil.
func NewService(db *store.DB, gen generator.Provider, cb EventCallback) *Service {
	return &Service{
		db:              db,
		gen:             gen,
		events:          cb,
		startingBalance: DefaultStartingBalance,
		now:             func() int64 { return time.Now().UnixMilli() },
	}
}

// SetStartingBalance overrides the balance granted to new wallets.
func (s *Service) SetStartingBalance(n int64) {
	if n >= 0 {
		s.startingBalance = n
	}
}

func (s *Service) emit(kind, id string) {
	if s.events != nil {
		s.events(kind, id)
	}
}

// EnsureWallet returns the session wallet, creating it on first use and
// backfilling a missing infinity balance. It cannot fail for domain
// reasons; only storage errors are returned.
func (s *Service) EnsureWallet(_ context.Context) (*models.Wallet, error) {
	var out *models.Wallet
	created := false
	err := s.db.Apply(func(tx *store.Txn) error {
		w, err := store.Load[*models.Wallet](tx, store.SlotWallet, nil)
		if err != nil {
			return err
		}
		switch {
		case w == nil:
			bal := s.startingBalance
			w = &models.Wallet{
				Address:         idgen.WalletAddress(),
				Balance:         0,
				Tokens:          []models.Token{},
				CreatedAt:       s.now(),
				InfinityBalance: &bal,
			}
			created = true
		case w.InfinityBalance == nil:
			// One-time migration for wallets that predate the currency.
			bal := s.startingBalance
			w.InfinityBalance = &bal
		default:
			out = w
			return nil
		}
		if err := store.Save(tx, store.SlotWallet, w); err != nil {
			return err
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.emit("wallet.created", out.Address)
	}
	return out, nil
}

// MigrateWallet applies the infinity-balance backfill reactively on load.
// A missing wallet is not an error; there is simply nothing to migrate.
func (s *Service) MigrateWallet(ctx context.Context) error {
	return s.db.Apply(func(tx *store.Txn) error {
		w, err := store.Load[*models.Wallet](tx, store.SlotWallet, nil)
		if err != nil || w == nil || w.InfinityBalance != nil {
			return err
		}
		bal := s.startingBalance
		w.InfinityBalance = &bal
		return store.Save(tx, store.SlotWallet, w)
	})
}

// Wallet returns the current wallet without creating one. nil means no
// wallet exists yet.
func (s *Service) Wallet(_ context.Context) (*models.Wallet, error) {
	var w *models.Wallet
	err := s.db.View(func(tx *store.Txn) error {
		var err error
		w, err = store.Load[*models.Wallet](tx, store.SlotWallet, nil)
		return err
	})
	return w, err
}

// Websites returns the full world registry.
func (s *Service) Websites(_ context.Context) ([]models.Website, error) {
	var sites []models.Website
	err := s.db.View(func(tx *store.Txn) error {
		var err error
		sites, err = store.Load(tx, store.SlotWebsites, []models.Website{})
		return err
	})
	return sites, err
}

// Website returns one world by id.
func (s *Service) Website(ctx context.Context, id string) (*models.Website, error) {
	sites, err := s.Websites(ctx)
	if err != nil {
		return nil, err
	}
	if i := findSite(sites, id); i >= 0 {
		return &sites[i], nil
	}
	return nil, apperr.ErrNotFound
}

// Transactions returns the ledger in append order.
func (s *Service) Transactions(_ context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.View(func(tx *store.Txn) error {
		var err error
		txs, err = store.Load(tx, store.SlotTransactions, []models.Transaction{})
		return err
	})
	return txs, err
}

// SearchWorlds runs a full-text (or LIKE fallback) search over the registry.
func (s *Service) SearchWorlds(_ context.Context, query string, limit int) ([]store.WorldHit, error) {
	return s.db.SearchWorlds(query, limit)
}

// saveWebsites is the single write path for the registry: it replaces the
// slot wholesale and refreshes the search mirror in the same transaction.
func saveWebsites(tx *store.Txn, sites []models.Website) error {
	if err := store.Save(tx, store.SlotWebsites, sites); err != nil {
		return err
	}
	return tx.IndexWorlds(sites)
}

// setSoleOwner is the canonical ownership transition: it points the world
// at the new owner wallet and rewrites the collaborator list so exactly one
// entry carries the owner role. keepOthers preserves existing non-owner
// collaborators; when false the list is reset to the owner alone.
func setSoleOwner(site *models.Website, wallet string, now int64, keepOthers bool) {
	site.OwnerWallet = wallet
	owner := models.Collaborator{
		Wallet:  wallet,
		Role:    models.RoleOwner,
		AddedAt: now,
		AddedBy: wallet,
	}
	next := []models.Collaborator{owner}
	if keepOthers {
		for _, c := range site.Collaborators {
			if c.Role != models.RoleOwner {
				next = append(next, c)
			}
		}
	}
	site.Collaborators = next
}

func findSite(sites []models.Website, id string) int {
	for i := range sites {
		if sites[i].ID == id {
			return i
		}
	}
	return -1
}

func appendTransaction(tx *store.Txn, txs []models.Transaction, record models.Transaction) error {
	return store.Save(tx, store.SlotTransactions, append(txs, record))
}

func walletRequired(w *models.Wallet) error {
	if w == nil {
		return fmt.Errorf("wallet: %w", apperr.ErrNotFound)
	}
	return nil
}
