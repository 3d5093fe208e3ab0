package economy

import (
	"context"

	"github.com/starford/infinity/internal/apperr"
	"github.com/starford/infinity/internal/idgen"
	"github.com/starford/infinity/internal/models"
	"github.com/starford/infinity/internal/store"
)

// ListForSale marks a world the caller owns as listed at the given price
// and appends a listing transaction. The transaction's counterparty is
// empty; none exists until a purchase.
func (s *Service) ListForSale(ctx context.Context, siteID string, price int64) error {
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
		sites[i].IsListedForSale = true
		sites[i].SalePrice = price
		if err := saveWebsites(tx, sites); err != nil {
			return err
		}
		txs, err := store.Load(tx, store.SlotTransactions, []models.Transaction{})
		if err != nil {
			return err
		}
		return appendTransaction(tx, txs, models.Transaction{
			ID:        idgen.TransactionID(),
			Type:      models.TxListing,
			WebsiteID: siteID,
			From:      w.Address,
			To:        "",
			Amount:    price,
			Timestamp: s.now(),
		})
	})
	if err != nil {
		return err
	}
	s.emit("market.listed", siteID)
	return nil
}

// UnlistFromSale clears a world's sale state and appends a delisting
// transaction with amount zero.
func (s *Service) UnlistFromSale(ctx context.Context, siteID string) error {
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
		sites[i].IsListedForSale = false
		sites[i].SalePrice = 0
		if err := saveWebsites(tx, sites); err != nil {
			return err
		}
		txs, err := store.Load(tx, store.SlotTransactions, []models.Transaction{})
		if err != nil {
			return err
		}
		return appendTransaction(tx, txs, models.Transaction{
			ID:        idgen.TransactionID(),
			Type:      models.TxDelisting,
			WebsiteID: siteID,
			From:      w.Address,
			To:        "",
			Amount:    0,
			Timestamp: s.now(),
		})
	})
	if err != nil {
		return err
	}
	s.emit("market.unlisted", siteID)
	return nil
}

// purchaseInTxn performs one purchase against the state already loaded in
// the transaction, mutating sites/wallet/txs in place. It is shared by
// Purchase and Checkout so the per-item balance re-check reads whatever
// the preceding items left behind.
func (s *Service) purchaseInTxn(sites []models.Website, w *models.Wallet, txs *[]models.Transaction, siteID string) error {
	i := findSite(sites, siteID)
	if i < 0 {
		return apperr.ErrNotFound
	}
	site := &sites[i]
	if !site.IsListedForSale || site.SalePrice <= 0 {
		return apperr.ErrNotListed
	}
	price := site.SalePrice
	if w.Spendable() < price {
		return apperr.ErrInsufficientBalance
	}
	seller := site.OwnerWallet
	now := s.now()

	spend := w.Spendable() - price
	w.InfinityBalance = &spend
	w.Balance += site.Value
	w.Tokens = append(w.Tokens, models.Token{
		ID:          site.TokenID,
		WebsiteID:   site.ID,
		WebsiteURL:  site.URL,
		OwnerWallet: w.Address,
		Value:       site.Value,
		CreatedAt:   site.CreatedAt,
		Metadata: models.TokenMetadata{
			Title:       site.Title,
			Description: site.Description,
			Query:       site.Query,
		},
	})

	// The seller keeps any stale token entry and is never credited here;
	// the registry is the source of truth for ownership.
	setSoleOwner(site, w.Address, now, true)
	site.IsListedForSale = false
	site.SalePrice = 0

	*txs = append(*txs, models.Transaction{
		ID:        idgen.TransactionID(),
		Type:      models.TxPurchase,
		WebsiteID: siteID,
		From:      w.Address,
		To:        seller,
		Amount:    price,
		Timestamp: now,
	})
	return nil
}

// Purchase buys one listed world with the session wallet's infinity
// balance. A failed precondition leaves registry, wallet, and ledger
// untouched.
func (s *Service) Purchase(ctx context.Context, siteID string) error {
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
		txs, err := store.Load(tx, store.SlotTransactions, []models.Transaction{})
		if err != nil {
			return err
		}
		if err := s.purchaseInTxn(sites, w, &txs, siteID); err != nil {
			return err
		}
		if err := saveWebsites(tx, sites); err != nil {
			return err
		}
		if err := store.Save(tx, store.SlotWallet, w); err != nil {
			return err
		}
		return store.Save(tx, store.SlotTransactions, txs)
	})
	if err != nil {
		return err
	}
	s.emit("market.purchase", siteID)
	return nil
}

// Cart returns the current cart contents.
func (s *Service) Cart(_ context.Context) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.db.View(func(tx *store.Txn) error {
		var err error
		items, err = store.Load(tx, store.SlotCart, []models.CartItem{})
		return err
	})
	return items, err
}

// AddToCart stages a marketplace item. Adding an item already present is a
// no-op, keeping the cart unique per websiteId.
func (s *Service) AddToCart(_ context.Context, siteID string, price int64) error {
	return s.db.Apply(func(tx *store.Txn) error {
		items, err := store.Load(tx, store.SlotCart, []models.CartItem{})
		if err != nil {
			return err
		}
		for _, it := range items {
			if it.WebsiteID == siteID {
				return nil
			}
		}
		items = append(items, models.CartItem{WebsiteID: siteID, Price: price, AddedAt: s.now()})
		return store.Save(tx, store.SlotCart, items)
	})
}

// RemoveFromCart drops one staged item by websiteId.
func (s *Service) RemoveFromCart(_ context.Context, siteID string) error {
	return s.db.Apply(func(tx *store.Txn) error {
		items, err := store.Load(tx, store.SlotCart, []models.CartItem{})
		if err != nil {
			return err
		}
		next := items[:0]
		for _, it := range items {
			if it.WebsiteID != siteID {
				next = append(next, it)
			}
		}
		return store.Save(tx, store.SlotCart, next)
	})
}

// CheckoutResult reports what a cart checkout actually bought.
type CheckoutResult struct {
	Purchased int      `json:"purchased"`
	Skipped   []string `json:"skipped,omitempty"`
	Total     int64    `json:"total"`
}

// Checkout purchases every cart item in list order. The aggregate price is
// checked against the balance up front and the whole call is rejected if it
// does not fit; after that each item re-validates its own affordability and
// listing state against whatever the preceding items left behind, so a
// mid-batch item can still be skipped. The cart is cleared wholesale at the
// end regardless of skips.
func (s *Service) Checkout(ctx context.Context) (*CheckoutResult, error) {
	res := &CheckoutResult{}
	err := s.db.Apply(func(tx *store.Txn) error {
		items, err := store.Load(tx, store.SlotCart, []models.CartItem{})
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		w, err := store.Load[*models.Wallet](tx, store.SlotWallet, nil)
		if err != nil {
			return err
		}
		if err := walletRequired(w); err != nil {
			return err
		}
		var total int64
		for _, it := range items {
			total += it.Price
		}
		if w.Spendable() < total {
			return apperr.ErrInsufficientBalance
		}

		sites, err := store.Load(tx, store.SlotWebsites, []models.Website{})
		if err != nil {
			return err
		}
		txs, err := store.Load(tx, store.SlotTransactions, []models.Transaction{})
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := s.purchaseInTxn(sites, w, &txs, it.WebsiteID); err != nil {
				res.Skipped = append(res.Skipped, it.WebsiteID)
				continue
			}
			res.Purchased++
			res.Total += it.Price
		}
		if err := saveWebsites(tx, sites); err != nil {
			return err
		}
		if err := store.Save(tx, store.SlotWallet, w); err != nil {
			return err
		}
		if err := store.Save(tx, store.SlotTransactions, txs); err != nil {
			return err
		}
		return store.Save(tx, store.SlotCart, []models.CartItem{})
	})
	if err != nil {
		return nil, err
	}
	if res.Purchased > 0 {
		s.emit("market.purchase", "")
	}
	return res, nil
}

// Summary is the dashboard aggregate over the ecosystem.
type Summary struct {
	Worlds       int   `json:"worlds"`
	TotalValue   int64 `json:"totalValue"`
	Listed       int   `json:"listed"`
	TradeVolume  int64 `json:"tradeVolume"`
	Transactions int   `json:"transactions"`
}

// Summarize computes ecosystem totals for the dashboard.
func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	sites, err := s.Websites(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	out := &Summary{Worlds: len(sites), Transactions: len(txs)}
	for i := range sites {
		out.TotalValue += sites[i].Value
		if sites[i].IsListedForSale {
			out.Listed++
		}
	}
	for i := range txs {
		if txs[i].Type == models.TxPurchase {
			out.TradeVolume += txs[i].Amount
		}
	}
	return out, nil
}
