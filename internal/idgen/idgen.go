// Package idgen produces the identifiers used across the Infinity economy.
package idgen

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// WebsiteID returns a new world identifier.
func WebsiteID() string { return "site-" + uuid.NewString() }

// TokenID returns a new ownership-token identifier.
func TokenID() string { return "token-" + uuid.NewString() }

// TransactionID returns a new ledger-entry identifier.
func TransactionID() string { return "tx-" + uuid.NewString() }

// TradeID returns a new trade-offer identifier.
func TradeID() string { return "trade-" + uuid.NewString() }

// PageID returns a new page identifier.
func PageID() string { return "page-" + uuid.NewString() }

// ToolID returns a new tool-component identifier.
func ToolID() string { return "tool-" + uuid.NewString() }

// TrackID returns a new music-track identifier.
func TrackID() string { return "track-" + uuid.NewString() }

// WalletAddress returns a 0x-prefixed 40-hex-digit address.
func WalletAddress() string {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// uuid-derived address rather than panic in the economy path.
		u := uuid.New()
		return "0x" + hex.EncodeToString(u[:16]) + hex.EncodeToString(u[12:16])
	}
	return "0x" + hex.EncodeToString(buf)
}
