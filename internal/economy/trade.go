package economy

import (
	"context"

	"github.com/starford/infinity/internal/apperr"
	"github.com/starford/infinity/internal/idgen"
	"github.com/starford/infinity/internal/models"
	"github.com/starford/infinity/internal/store"
)

// tradeOfferTTL is how long an offer nominally stays open. Expiry is
// surfaced on the record but never enforced by a sweeper.
const tradeOfferTTL = 7 * 24 * 60 * 60 * 1000

// TradeOffers returns all offers in creation order.
func (s *Service) TradeOffers(_ context.Context) ([]models.TradeOffer, error) {
	var offers []models.TradeOffer
	err := s.db.View(func(tx *store.Txn) error {
		var err error
		offers, err = store.Load(tx, store.SlotTradeOffers, []models.TradeOffer{})
		return err
	})
	return offers, err
}

// CreateTradeOffer proposes swapping an owned world for another wallet's
// world. An identical pending pair is rejected.
func (s *Service) CreateTradeOffer(ctx context.Context, offeredID, requestedID string) (*models.TradeOffer, error) {
	w, err := s.Wallet(ctx)
	if err != nil {
		return nil, err
	}
	if err := walletRequired(w); err != nil {
		return nil, err
	}
	var out *models.TradeOffer
	err = s.db.Apply(func(tx *store.Txn) error {
		sites, err := store.Load(tx, store.SlotWebsites, []models.Website{})
		if err != nil {
			return err
		}
		oi, ri := findSite(sites, offeredID), findSite(sites, requestedID)
		if oi < 0 || ri < 0 {
			return apperr.ErrNotFound
		}
		if sites[oi].OwnerWallet != w.Address {
			return apperr.ErrNotOwner
		}
		offers, err := store.Load(tx, store.SlotTradeOffers, []models.TradeOffer{})
		if err != nil {
			return err
		}
		for i := range offers {
			o := &offers[i]
			if o.OfferedWebsiteID == offeredID && o.RequestedWebsiteID == requestedID && o.Status == models.TradePending {
				return apperr.ErrAlreadyExists
			}
		}
		now := s.now()
		offer := models.TradeOffer{
			ID:                 idgen.TradeID(),
			OfferedWebsiteID:   offeredID,
			RequestedWebsiteID: requestedID,
			OfferorWallet:      w.Address,
			RecipientWallet:    sites[ri].OwnerWallet,
			Status:             models.TradePending,
			CreatedAt:          now,
			ExpiresAt:          now + tradeOfferTTL,
		}
		if err := store.Save(tx, store.SlotTradeOffers, append(offers, offer)); err != nil {
			return err
		}
		out = &offer
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emit("trade.created", out.ID)
	return out, nil
}

// AcceptTrade completes a pending offer: both worlds swap owners, each
// side's collaborator list collapses to the new owner alone, and the
// matching tokens' owner fields are rewritten in place in whichever wallet
// holds them (tokens never move between token lists). One trade
// transaction with amount zero records the swap.
func (s *Service) AcceptTrade(ctx context.Context, offerID string) error {
	err := s.db.Apply(func(tx *store.Txn) error {
		offers, err := store.Load(tx, store.SlotTradeOffers, []models.TradeOffer{})
		if err != nil {
			return err
		}
		oi := findOffer(offers, offerID)
		if oi < 0 {
			return apperr.ErrNotFound
		}
		offer := &offers[oi]
		if offer.Terminal() {
			return apperr.ErrNotPending
		}
		sites, err := store.Load(tx, store.SlotWebsites, []models.Website{})
		if err != nil {
			return err
		}
		si, ri := findSite(sites, offer.OfferedWebsiteID), findSite(sites, offer.RequestedWebsiteID)
		if si < 0 || ri < 0 {
			return apperr.ErrNotFound
		}

		now := s.now()
		offer.Status = models.TradeAccepted
		offer.RespondedAt = now

		setSoleOwner(&sites[si], offer.RecipientWallet, now, false)
		setSoleOwner(&sites[ri], offer.OfferorWallet, now, false)

		w, err := store.Load[*models.Wallet](tx, store.SlotWallet, nil)
		if err != nil {
			return err
		}
		if w != nil {
			for i := range w.Tokens {
				switch w.Tokens[i].WebsiteID {
				case offer.OfferedWebsiteID:
					w.Tokens[i].OwnerWallet = offer.RecipientWallet
				case offer.RequestedWebsiteID:
					w.Tokens[i].OwnerWallet = offer.OfferorWallet
				}
			}
			if err := store.Save(tx, store.SlotWallet, w); err != nil {
				return err
			}
		}

		if err := store.Save(tx, store.SlotTradeOffers, offers); err != nil {
			return err
		}
		if err := saveWebsites(tx, sites); err != nil {
			return err
		}
		txs, err := store.Load(tx, store.SlotTransactions, []models.Transaction{})
		if err != nil {
			return err
		}
		return appendTransaction(tx, txs, models.Transaction{
			ID:        idgen.TransactionID(),
			Type:      models.TxTrade,
			WebsiteID: offer.OfferedWebsiteID,
			From:      offer.OfferorWallet,
			To:        offer.RecipientWallet,
			Amount:    0,
			Timestamp: now,
			TradeDetails: &models.TradeDetails{
				OfferedWebsiteID:   offer.OfferedWebsiteID,
				RequestedWebsiteID: offer.RequestedWebsiteID,
			},
		})
	})
	if err != nil {
		return err
	}
	s.emit("trade.accepted", offerID)
	return nil
}

// RejectTrade moves a pending offer to rejected. Terminal states absorb:
// repeat calls fail with no state change and no transaction.
func (s *Service) RejectTrade(ctx context.Context, offerID string) error {
	if err := s.respond(offerID, models.TradeRejected); err != nil {
		return err
	}
	s.emit("trade.rejected", offerID)
	return nil
}

// CancelTrade moves a pending offer to cancelled.
func (s *Service) CancelTrade(ctx context.Context, offerID string) error {
	if err := s.respond(offerID, models.TradeCancelled); err != nil {
		return err
	}
	s.emit("trade.cancelled", offerID)
	return nil
}

func (s *Service) respond(offerID, status string) error {
	return s.db.Apply(func(tx *store.Txn) error {
		offers, err := store.Load(tx, store.SlotTradeOffers, []models.TradeOffer{})
		if err != nil {
			return err
		}
		i := findOffer(offers, offerID)
		if i < 0 {
			return apperr.ErrNotFound
		}
		if offers[i].Terminal() {
			return apperr.ErrNotPending
		}
		offers[i].Status = status
		offers[i].RespondedAt = s.now()
		return store.Save(tx, store.SlotTradeOffers, offers)
	})
}

func findOffer(offers []models.TradeOffer, id string) int {
	for i := range offers {
		if offers[i].ID == id {
			return i
		}
	}
	return -1
}
