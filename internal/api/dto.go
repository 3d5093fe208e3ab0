package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/infinity/internal/economy"
	"github.com/starford/infinity/internal/models"
)

// CreateWorldRequest is the request body for creating a world from a query.
type CreateWorldRequest struct {
	Query string `json:"query"`
}

func (r CreateWorldRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Query, validation.Required, validation.Length(1, 500)),
	)
}

// CreateArchetypeWorldRequest is the request body for the archetype generator.
type CreateArchetypeWorldRequest struct {
	Archetype        string  `json:"archetype"`
	RarityMultiplier float64 `json:"rarityMultiplier"`
	SlotCombination  string  `json:"slotCombination"`
}

func (r CreateArchetypeWorldRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Archetype, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.RarityMultiplier, validation.Min(0.0)),
	)
}

// AddPageRequest is the request body for adding a page to a world.
type AddPageRequest struct {
	Query string `json:"query"`
}

func (r AddPageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Query, validation.Required, validation.Length(1, 500)),
	)
}

// ListWorldRequest is the request body for listing a world for sale.
type ListWorldRequest struct {
	Price int64 `json:"price"`
}

func (r ListWorldRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Price, validation.Required, validation.Min(1)),
	)
}

// CollaboratorRequest is the request body for adding a collaborator.
type CollaboratorRequest struct {
	Wallet string `json:"wallet"`
	Role   string `json:"role"`
}

func (r CollaboratorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Wallet, validation.Required),
		validation.Field(&r.Role, validation.Required,
			validation.In(models.RoleEditor, models.RoleViewer)),
	)
}

// CartAddRequest is the request body for adding a world to the cart.
type CartAddRequest struct {
	WebsiteID string `json:"websiteId"`
	Price     int64  `json:"price"`
}

func (r CartAddRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.WebsiteID, validation.Required),
		validation.Field(&r.Price, validation.Min(0)),
	)
}

// TradeOfferRequest is the request body for proposing a trade.
type TradeOfferRequest struct {
	OfferedWebsiteID   string `json:"offeredWebsiteId"`
	RequestedWebsiteID string `json:"requestedWebsiteId"`
}

func (r TradeOfferRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OfferedWebsiteID, validation.Required),
		validation.Field(&r.RequestedWebsiteID, validation.Required,
			validation.By(func(any) error {
				if r.OfferedWebsiteID != "" && r.OfferedWebsiteID == r.RequestedWebsiteID {
					return validation.NewError("validation_same_world", "cannot trade a world for itself")
				}
				return nil
			})),
	)
}

// TerminalRequest is the request body for one console command.
type TerminalRequest struct {
	Input string `json:"input"`
}

func (r TerminalRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Input, validation.Required, validation.Length(1, 1000)),
	)
}

// AddTrackRequest is the request body for adding a music track.
type AddTrackRequest struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Source   string `json:"source"`
	Duration int    `json:"duration"`
	Genre    string `json:"genre"`
}

func (r AddTrackRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Artist, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Duration, validation.Min(0)),
	)
}

// UpdateProfileRequest is the request body for editing the profile.
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DisplayName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Bio, validation.Length(0, 500)),
	)
}

// WorldListResponse wraps a registry listing.
type WorldListResponse struct {
	Worlds []models.Website `json:"worlds"`
	Total  int              `json:"total"`
}

// SearchResult is a single world search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// CheckoutResponse is the cart checkout outcome (aliased from the domain layer).
type CheckoutResponse = economy.CheckoutResult

// TerminalResponse is the rendered outcome of one console command.
type TerminalResponse struct {
	Output   string `json:"output"`
	Type     string `json:"type"`
	Navigate string `json:"navigate,omitempty"`
	Clear    bool   `json:"clear,omitempty"`
}

// MediaUploadResponse is returned after a successful audio upload.
type MediaUploadResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}
