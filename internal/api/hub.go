package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/infinity/internal/models"
	"github.com/starford/infinity/internal/store"
	"github.com/starford/infinity/internal/terminal"
)

// Terminal history is capped so the slot cannot grow without bound.
const maxTerminalHistory = 200

// RunTerminal handles POST /api/terminal: executes one console command
// against a snapshot of the economy and records it in the history slot.
func (h *Handler) RunTerminal(w http.ResponseWriter, r *http.Request) {
	var req TerminalRequest
	if !decode(w, r, &req) {
		return
	}

	snap, err := h.terminalSnapshot(r)
	if err != nil {
		writeDomainError(w, "terminal", err)
		return
	}
	res := terminal.Process(req.Input, snap)

	err = h.db.Apply(func(tx *store.Txn) error {
		if res.Clear {
			return store.Save(tx, store.SlotTerminalHistory, []models.TerminalCommand{})
		}
		history, err := store.Load(tx, store.SlotTerminalHistory, []models.TerminalCommand{})
		if err != nil {
			return err
		}
		history = append(history, models.TerminalCommand{
			Input:     req.Input,
			Output:    res.Output,
			Timestamp: time.Now().UnixMilli(),
			Type:      res.Type,
		})
		if len(history) > maxTerminalHistory {
			history = history[len(history)-maxTerminalHistory:]
		}
		return store.Save(tx, store.SlotTerminalHistory, history)
	})
	if err != nil {
		writeDomainError(w, "terminal", err)
		return
	}

	writeJSON(w, http.StatusOK, TerminalResponse{
		Output:   res.Output,
		Type:     res.Type,
		Navigate: res.Navigate,
		Clear:    res.Clear,
	})
}

// TerminalHistory handles GET /api/terminal/history.
func (h *Handler) TerminalHistory(w http.ResponseWriter, r *http.Request) {
	var history []models.TerminalCommand
	err := h.db.View(func(tx *store.Txn) error {
		var e error
		history, e = store.Load(tx, store.SlotTerminalHistory, []models.TerminalCommand{})
		return e
	})
	if err != nil {
		writeDomainError(w, "terminal history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

// terminalSnapshot projects current economy state into the console's
// read-only view.
func (h *Handler) terminalSnapshot(r *http.Request) (terminal.Snapshot, error) {
	ctx := r.Context()
	sites, err := h.svc.Websites(ctx)
	if err != nil {
		return terminal.Snapshot{}, err
	}
	wallet, err := h.svc.Wallet(ctx)
	if err != nil {
		return terminal.Snapshot{}, err
	}

	snap := terminal.Snapshot{}
	for _, s := range sites {
		snap.Worlds = append(snap.Worlds, terminal.WorldLine{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Value:       s.Value,
			Tools:       len(s.Tools),
			Pages:       len(s.Pages),
			Owner:       s.OwnerWallet,
			Listed:      s.IsListedForSale,
			SalePrice:   s.SalePrice,
			CreatedAt:   s.CreatedAt,
		})
	}
	if wallet != nil {
		line := terminal.WalletLine{
			Address:  wallet.Address,
			Infinity: wallet.Spendable(),
			Balance:  wallet.Balance,
		}
		for _, t := range wallet.Tokens {
			line.Tokens = append(line.Tokens, terminal.TokenLine{
				ID:    t.ID,
				Title: t.Metadata.Title,
				Value: t.Value,
			})
		}
		snap.Wallet = &line
	}
	return snap, nil
}

// MusicLibrary handles GET /api/music/tracks.
func (h *Handler) MusicLibrary(w http.ResponseWriter, r *http.Request) {
	lib, err := h.music.Library(r.Context())
	if err != nil {
		writeDomainError(w, "music library", err)
		return
	}
	writeJSON(w, http.StatusOK, lib)
}

// AddTrack handles POST /api/music/tracks.
func (h *Handler) AddTrack(w http.ResponseWriter, r *http.Request) {
	var req AddTrackRequest
	if !decode(w, r, &req) {
		return
	}
	wallet, err := h.svc.Wallet(r.Context())
	if err != nil {
		writeDomainError(w, "add track", err)
		return
	}
	addedBy := ""
	if wallet != nil {
		addedBy = wallet.Address
	}
	track, err := h.music.AddTrack(r.Context(), models.MusicTrack{
		Title:    req.Title,
		Artist:   req.Artist,
		Album:    req.Album,
		Source:   req.Source,
		Duration: req.Duration,
		Genre:    req.Genre,
		AddedBy:  addedBy,
	})
	if err != nil {
		writeDomainError(w, "add track", err)
		return
	}
	writeJSON(w, http.StatusCreated, track)
}

// LikeTrack handles POST /api/music/tracks/{id}/like.
func (h *Handler) LikeTrack(w http.ResponseWriter, r *http.Request) {
	if err := h.music.Like(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "like track", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnlikeTrack handles POST /api/music/tracks/{id}/unlike.
func (h *Handler) UnlikeTrack(w http.ResponseWriter, r *http.Request) {
	if err := h.music.Unlike(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "unlike track", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /api/profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wallet, err := h.svc.EnsureWallet(ctx)
	if err != nil {
		writeDomainError(w, "profile", err)
		return
	}
	sites, err := h.svc.Websites(ctx)
	if err != nil {
		writeDomainError(w, "profile", err)
		return
	}
	txs, err := h.svc.Transactions(ctx)
	if err != nil {
		writeDomainError(w, "profile", err)
		return
	}
	view, err := h.profiles.Get(ctx, wallet, sites, txs)
	if err != nil {
		writeDomainError(w, "profile", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateProfile handles PUT /api/profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	wallet, err := h.svc.EnsureWallet(r.Context())
	if err != nil {
		writeDomainError(w, "update profile", err)
		return
	}
	p, err := h.profiles.Update(r.Context(), wallet, req.DisplayName, req.Bio)
	if err != nil {
		writeDomainError(w, "update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
