// Package models defines the domain types for Infinity.
//
// Timestamps are Unix milliseconds throughout, matching the persisted
// wire format of the slot store.
package models

// Collaborator roles.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Transaction types.
const (
	TxPurchase  = "purchase"
	TxSale      = "sale"
	TxListing   = "listing"
	TxDelisting = "delisting"
	TxTrade     = "trade"
)

// Trade offer statuses. Pending is the only non-terminal state.
const (
	TradePending   = "pending"
	TradeAccepted  = "accepted"
	TradeRejected  = "rejected"
	TradeCancelled = "cancelled"
)

// ToolComponent is an interactive component embedded in a world or page.
type ToolComponent struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Config      map[string]any `json:"config,omitempty"`
	AddedAt     int64          `json:"addedAt"`
	AddedBy     string         `json:"addedBy"`
}

// Collaborator is a wallet granted access to a world. Exactly one
// collaborator per world carries the owner role, and that entry's wallet
// mirrors Website.OwnerWallet.
type Collaborator struct {
	Wallet  string `json:"wallet"`
	Role    string `json:"role"`
	AddedAt int64  `json:"addedAt"`
	AddedBy string `json:"addedBy"`
}

// Page is a sub-page of a world.
type Page struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Tools     []ToolComponent `json:"tools"`
	CreatedAt int64           `json:"createdAt"`
	Author    string          `json:"author"`
}

// Website is a generated world: the tokenized, tradeable unit of content.
type Website struct {
	ID              string          `json:"id"`
	TokenID         string          `json:"tokenId"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Query           string          `json:"query"`
	Content         string          `json:"content"`
	URL             string          `json:"url"`
	OwnerWallet     string          `json:"ownerWallet"`
	Value           int64           `json:"value"`
	CreatedAt       int64           `json:"createdAt"`
	LastModified    int64           `json:"lastModified"`
	Pages           []Page          `json:"pages"`
	Tools           []ToolComponent `json:"tools"`
	Theme           string          `json:"theme"`
	Collaborators   []Collaborator  `json:"collaborators"`
	IsListedForSale bool            `json:"isListedForSale"`
	SalePrice       int64           `json:"salePrice,omitempty"`
	WorldArchetype  string          `json:"worldArchetype,omitempty"`
	RarityMultiplier float64        `json:"rarityMultiplier,omitempty"`
	SlotCombination string          `json:"slotCombination,omitempty"`
	UniquenessScore float64         `json:"uniquenessScore,omitempty"`
}

// TokenMetadata is a denormalized snapshot of the paired world. It is kept
// in sync by the economy mutators, not by any store-level constraint.
type TokenMetadata struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Query            string  `json:"query"`
	ToolCount        int     `json:"toolCount,omitempty"`
	WorldArchetype   string  `json:"worldArchetype,omitempty"`
	RarityMultiplier float64 `json:"rarityMultiplier,omitempty"`
	UniquenessScore  float64 `json:"uniquenessScore,omitempty"`
}

// Token is the ownership certificate paired 1:1 with a Website. Its ID is
// the website's TokenID.
type Token struct {
	ID          string        `json:"id"`
	WebsiteID   string        `json:"websiteId"`
	WebsiteURL  string        `json:"websiteUrl"`
	OwnerWallet string        `json:"ownerWallet"`
	Value       int64         `json:"value"`
	CreatedAt   int64         `json:"createdAt"`
	Metadata    TokenMetadata `json:"metadata"`
}

// Wallet is the per-session ledger record. Balance tracks portfolio value;
// InfinityBalance is the spendable synthetic currency.
type Wallet struct {
	Address         string  `json:"address"`
	Balance         int64   `json:"balance"`
	Tokens          []Token `json:"tokens"`
	CreatedAt       int64   `json:"createdAt"`
	InfinityBalance *int64  `json:"infinityBalance"`
}

// Spendable returns the infinity balance, treating a missing value
// (a wallet persisted before the currency existed) as zero.
func (w *Wallet) Spendable() int64 {
	if w.InfinityBalance == nil {
		return 0
	}
	return *w.InfinityBalance
}

// TradeDetails names the two worlds involved in a trade transaction.
type TradeDetails struct {
	OfferedWebsiteID   string `json:"offeredWebsiteId"`
	RequestedWebsiteID string `json:"requestedWebsiteId"`
}

// Transaction is an immutable, append-only economic event.
type Transaction struct {
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	WebsiteID    string        `json:"websiteId"`
	From         string        `json:"from"`
	To           string        `json:"to"`
	Amount       int64         `json:"amount"`
	Timestamp    int64         `json:"timestamp"`
	TradeDetails *TradeDetails `json:"tradeDetails,omitempty"`
}

// TradeOffer is a bilateral proposal to swap ownership of two worlds.
// Status transitions exactly once out of pending.
type TradeOffer struct {
	ID                 string `json:"id"`
	OfferedWebsiteID   string `json:"offeredWebsiteId"`
	RequestedWebsiteID string `json:"requestedWebsiteId"`
	OfferorWallet      string `json:"offerorWallet"`
	RecipientWallet    string `json:"recipientWallet"`
	Status             string `json:"status"`
	CreatedAt          int64  `json:"createdAt"`
	RespondedAt        int64  `json:"respondedAt,omitempty"`
	ExpiresAt          int64  `json:"expiresAt"`
}

// Terminal returns true once the offer has left the pending state.
func (o *TradeOffer) Terminal() bool {
	return o.Status != TradePending
}

// CartItem is a transient marketplace staging entry, keyed by websiteId.
type CartItem struct {
	WebsiteID string `json:"websiteId"`
	Price     int64  `json:"price"`
	AddedAt   int64  `json:"addedAt"`
}
