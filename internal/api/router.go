package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/infinity/internal/economy"
	"github.com/starford/infinity/internal/music"
	"github.com/starford/infinity/internal/profile"
	"github.com/starford/infinity/internal/seeds"
	"github.com/starford/infinity/internal/store"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// seedFS, if non-nil, enables POST /worlds/{id}/archive.
// mediaDir is where music uploads land.
func NewRouter(svc *economy.Service, mus *music.Service, prof *profile.Service, db *store.DB,
	authEnabled bool, token string, sseHandler http.Handler, seedFS seeds.Provider, mediaDir string) chi.Router {

	h := NewHandler(svc, mus, prof, db, seedFS)
	mh := NewMediaHandler(mediaDir)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// World registry.
	r.Get("/worlds", h.ListWorlds)
	r.Post("/worlds", h.CreateWorld)
	r.Post("/worlds/archetype", h.CreateArchetypeWorld)
	r.Get("/worlds/{id}", h.GetWorld)
	r.Post("/worlds/{id}/pages", h.AddPage)
	r.Post("/worlds/{id}/list", h.ListForSale)
	r.Post("/worlds/{id}/unlist", h.UnlistFromSale)
	r.Post("/worlds/{id}/purchase", h.Purchase)
	r.Post("/worlds/{id}/archive", h.ArchiveWorld)
	r.Post("/worlds/{id}/collaborators", h.AddCollaborator)
	r.Delete("/worlds/{id}/collaborators/{wallet}", h.RemoveCollaborator)

	// Marketplace.
	r.Get("/market", h.Market)
	r.Get("/market/search", h.SearchMarket)
	r.Get("/dashboard", h.Dashboard)

	// Cart.
	r.Get("/cart", h.Cart)
	r.Post("/cart", h.AddToCart)
	r.Post("/cart/checkout", h.Checkout)
	r.Delete("/cart/{websiteId}", h.RemoveFromCart)

	// Wallet and ledger.
	r.Get("/wallet", h.Wallet)
	r.Get("/transactions", h.Transactions)

	// Trading.
	r.Get("/trades", h.TradeOffers)
	r.Post("/trades", h.CreateTradeOffer)
	r.Post("/trades/{id}/accept", h.AcceptTrade)
	r.Post("/trades/{id}/reject", h.RejectTrade)
	r.Post("/trades/{id}/cancel", h.CancelTrade)

	// Spark console.
	r.Post("/terminal", h.RunTerminal)
	r.Get("/terminal/history", h.TerminalHistory)

	// Music hub.
	r.Get("/music/tracks", h.MusicLibrary)
	r.Post("/music/tracks", h.AddTrack)
	r.Post("/music/tracks/{id}/like", h.LikeTrack)
	r.Post("/music/tracks/{id}/unlike", h.UnlikeTrack)
	r.Post("/music/upload", mh.Upload)

	// Profile.
	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.UpdateProfile)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
