package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/infinity/internal/economy"
	"github.com/starford/infinity/internal/models"
	"github.com/starford/infinity/internal/music"
	"github.com/starford/infinity/internal/profile"
	"github.com/starford/infinity/internal/seeds"
	"github.com/starford/infinity/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	svc      *economy.Service
	music    *music.Service
	profiles *profile.Service
	db       *store.DB
	seeds    seeds.Provider // nil when no seed directory is configured
}

// NewHandler creates a new Handler.
func NewHandler(svc *economy.Service, mus *music.Service, prof *profile.Service, db *store.DB, seedFS seeds.Provider) *Handler {
	return &Handler{svc: svc, music: mus, profiles: prof, db: db, seeds: seedFS}
}

// decode reads a validated JSON request body. A false return means the
// error response has already been written.
func decode[T interface{ Validate() error }](w http.ResponseWriter, r *http.Request, req *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if err := (*req).Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return false
	}
	return true
}

// ListWorlds handles GET /api/worlds. With ?mine=1 only worlds owned by
// the session wallet are returned.
func (h *Handler) ListWorlds(w http.ResponseWriter, r *http.Request) {
	sites, err := h.svc.Websites(r.Context())
	if err != nil {
		writeDomainError(w, "list worlds", err)
		return
	}
	if r.URL.Query().Get("mine") == "1" {
		wallet, err := h.svc.Wallet(r.Context())
		if err != nil {
			writeDomainError(w, "list worlds", err)
			return
		}
		owned := make([]models.Website, 0, len(sites))
		if wallet != nil {
			for _, s := range sites {
				if s.OwnerWallet == wallet.Address {
					owned = append(owned, s)
				}
			}
		}
		sites = owned
	}
	writeJSON(w, http.StatusOK, WorldListResponse{Worlds: sites, Total: len(sites)})
}

// GetWorld handles GET /api/worlds/{id}.
func (h *Handler) GetWorld(w http.ResponseWriter, r *http.Request) {
	site, err := h.svc.Website(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "get world", err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// CreateWorld handles POST /api/worlds.
func (h *Handler) CreateWorld(w http.ResponseWriter, r *http.Request) {
	var req CreateWorldRequest
	if !decode(w, r, &req) {
		return
	}
	site, err := h.svc.CreateWebsite(r.Context(), req.Query)
	if err != nil {
		writeDomainError(w, "create world", err)
		return
	}
	writeJSON(w, http.StatusCreated, site)
}

// CreateArchetypeWorld handles POST /api/worlds/archetype.
func (h *Handler) CreateArchetypeWorld(w http.ResponseWriter, r *http.Request) {
	var req CreateArchetypeWorldRequest
	if !decode(w, r, &req) {
		return
	}
	site, err := h.svc.CreateWorld(r.Context(), req.Archetype, req.RarityMultiplier, req.SlotCombination)
	if err != nil {
		writeDomainError(w, "create archetype world", err)
		return
	}
	writeJSON(w, http.StatusCreated, site)
}

// AddPage handles POST /api/worlds/{id}/pages.
func (h *Handler) AddPage(w http.ResponseWriter, r *http.Request) {
	var req AddPageRequest
	if !decode(w, r, &req) {
		return
	}
	site, err := h.svc.AddPage(r.Context(), chi.URLParam(r, "id"), req.Query)
	if err != nil {
		writeDomainError(w, "add page", err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// ListForSale handles POST /api/worlds/{id}/list.
func (h *Handler) ListForSale(w http.ResponseWriter, r *http.Request) {
	var req ListWorldRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.ListForSale(r.Context(), chi.URLParam(r, "id"), req.Price); err != nil {
		writeDomainError(w, "list for sale", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnlistFromSale handles POST /api/worlds/{id}/unlist.
func (h *Handler) UnlistFromSale(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.UnlistFromSale(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "unlist from sale", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Purchase handles POST /api/worlds/{id}/purchase.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Purchase(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "purchase", err)
		return
	}
	wallet, err := h.svc.Wallet(r.Context())
	if err != nil {
		writeDomainError(w, "purchase", err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

// ArchiveWorld handles POST /api/worlds/{id}/archive. It writes the world
// out as a seed file so it survives a registry reset.
func (h *Handler) ArchiveWorld(w http.ResponseWriter, r *http.Request) {
	if h.seeds == nil {
		writeJSON(w, http.StatusConflict, errorBody("no seed directory configured"))
		return
	}
	site, err := h.svc.Website(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "archive world", err)
		return
	}
	data, err := json.MarshalIndent(site, "", "  ")
	if err != nil {
		writeDomainError(w, "archive world", err)
		return
	}
	if err := h.seeds.Write(site.ID+".json", data); err != nil {
		writeDomainError(w, "archive world", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"path": site.ID + ".json"})
}

// AddCollaborator handles POST /api/worlds/{id}/collaborators.
func (h *Handler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	var req CollaboratorRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.AddCollaborator(r.Context(), chi.URLParam(r, "id"), req.Wallet, req.Role); err != nil {
		writeDomainError(w, "add collaborator", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveCollaborator handles DELETE /api/worlds/{id}/collaborators/{wallet}.
func (h *Handler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveCollaborator(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "wallet")); err != nil {
		writeDomainError(w, "remove collaborator", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Market handles GET /api/market: every world currently listed for sale.
func (h *Handler) Market(w http.ResponseWriter, r *http.Request) {
	sites, err := h.svc.Websites(r.Context())
	if err != nil {
		writeDomainError(w, "market", err)
		return
	}
	listed := make([]models.Website, 0, len(sites))
	for _, s := range sites {
		if s.IsListedForSale {
			listed = append(listed, s)
		}
	}
	writeJSON(w, http.StatusOK, WorldListResponse{Worlds: listed, Total: len(listed)})
}

// SearchMarket handles GET /api/market/search.
func (h *Handler) SearchMarket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.SearchWorlds(r.Context(), q, limit)
	if err != nil {
		writeDomainError(w, "search market", err)
		return
	}
	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, SearchResult{ID: hit.ID, Title: hit.Title, Snippet: hit.Snippet})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Dashboard handles GET /api/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summarize(r.Context())
	if err != nil {
		writeDomainError(w, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Wallet handles GET /api/wallet. The wallet is created on first access.
func (h *Handler) Wallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.svc.EnsureWallet(r.Context())
	if err != nil {
		writeDomainError(w, "wallet", err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

// Transactions handles GET /api/transactions.
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.Transactions(r.Context())
	if err != nil {
		writeDomainError(w, "transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs, "total": len(txs)})
}

// Cart handles GET /api/cart.
func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Cart(r.Context())
	if err != nil {
		writeDomainError(w, "cart", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

// AddToCart handles POST /api/cart.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req CartAddRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.AddToCart(r.Context(), req.WebsiteID, req.Price); err != nil {
		writeDomainError(w, "add to cart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveFromCart handles DELETE /api/cart/{websiteId}.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveFromCart(r.Context(), chi.URLParam(r, "websiteId")); err != nil {
		writeDomainError(w, "remove from cart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checkout handles POST /api/cart/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Checkout(r.Context())
	if err != nil {
		writeDomainError(w, "checkout", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// TradeOffers handles GET /api/trades.
func (h *Handler) TradeOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.svc.TradeOffers(r.Context())
	if err != nil {
		writeDomainError(w, "trade offers", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"offers": offers, "total": len(offers)})
}

// CreateTradeOffer handles POST /api/trades.
func (h *Handler) CreateTradeOffer(w http.ResponseWriter, r *http.Request) {
	var req TradeOfferRequest
	if !decode(w, r, &req) {
		return
	}
	offer, err := h.svc.CreateTradeOffer(r.Context(), req.OfferedWebsiteID, req.RequestedWebsiteID)
	if err != nil {
		writeDomainError(w, "create trade offer", err)
		return
	}
	writeJSON(w, http.StatusCreated, offer)
}

// AcceptTrade handles POST /api/trades/{id}/accept.
func (h *Handler) AcceptTrade(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.AcceptTrade(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "accept trade", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RejectTrade handles POST /api/trades/{id}/reject.
func (h *Handler) RejectTrade(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RejectTrade(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "reject trade", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelTrade handles POST /api/trades/{id}/cancel.
func (h *Handler) CancelTrade(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CancelTrade(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "cancel trade", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
