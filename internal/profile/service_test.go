package profile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/infinity/internal/apperr"
	"github.com/starford/infinity/internal/models"
	"github.com/starford/infinity/internal/testutil"
)

func testWallet() *models.Wallet {
	bal := int64(10000)
	return &models.Wallet{
		Address:         "0xabcdef1234567890",
		CreatedAt:       1700000000000,
		Tokens:          []models.Token{},
		InfinityBalance: &bal,
	}
}

func TestGetDerivesDefault(t *testing.T) {
	s := NewService(testutil.TestDB(t))

	view, err := s.Get(context.Background(), testWallet(), nil, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.HasPrefix(view.Profile.DisplayName, "Spark_") {
		t.Errorf("displayName = %q, want Spark_ prefix", view.Profile.DisplayName)
	}
	if view.Profile.WalletAddress != "0xabcdef1234567890" {
		t.Errorf("walletAddress = %q", view.Profile.WalletAddress)
	}
	if view.Profile.Avatar == "" {
		t.Error("derived profile should carry an avatar glyph")
	}
	if view.Profile.JoinedAt != 1700000000000 {
		t.Errorf("joinedAt = %d, want the wallet creation time", view.Profile.JoinedAt)
	}
}

func TestGet_NoWallet(t *testing.T) {
	s := NewService(testutil.TestDB(t))
	if _, err := s.Get(context.Background(), nil, nil, nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdatePersists(t *testing.T) {
	s := NewService(testutil.TestDB(t))
	ctx := context.Background()
	w := testWallet()

	p, err := s.Update(ctx, w, "Nova", "world builder")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.DisplayName != "Nova" || p.Bio != "world builder" {
		t.Errorf("updated profile = %+v", p)
	}

	view, _ := s.Get(ctx, w, nil, nil)
	if view.Profile.DisplayName != "Nova" {
		t.Errorf("stored displayName = %q", view.Profile.DisplayName)
	}
	// Avatar and join date survive the update.
	if view.Profile.Avatar == "" || view.Profile.JoinedAt != w.CreatedAt {
		t.Errorf("derived fields lost on update: %+v", view.Profile)
	}
}

func TestUpdate_BlankNameKeepsCurrent(t *testing.T) {
	s := NewService(testutil.TestDB(t))
	ctx := context.Background()
	w := testWallet()

	s.Update(ctx, w, "Nova", "bio")
	p, err := s.Update(ctx, w, "   ", "new bio")
	if err != nil {
		t.Fatal(err)
	}
	if p.DisplayName != "Nova" {
		t.Errorf("displayName = %q, blank update must keep the old name", p.DisplayName)
	}
	if p.Bio != "new bio" {
		t.Errorf("bio = %q, want new bio", p.Bio)
	}
}

func TestAchievements(t *testing.T) {
	s := NewService(testutil.TestDB(t))
	w := testWallet()

	sites := []models.Website{
		{ID: "site-1", OwnerWallet: w.Address},
		{ID: "site-2", OwnerWallet: w.Address},
		{ID: "site-3", OwnerWallet: w.Address},
		{ID: "site-4", OwnerWallet: "0xother"},
	}
	txs := []models.Transaction{
		{Type: models.TxPurchase, From: w.Address},
		{Type: models.TxListing, From: w.Address},
		{Type: models.TxTrade, To: w.Address},
	}

	view, err := s.Get(context.Background(), w, sites, txs)
	if err != nil {
		t.Fatal(err)
	}
	unlocked := map[string]bool{}
	for _, a := range view.Achievements {
		unlocked[a.ID] = a.Unlocked
	}

	for _, id := range []string{"first-world", "collector", "first-purchase", "first-trade", "first-listing", "rich"} {
		if !unlocked[id] {
			t.Errorf("achievement %s should be unlocked", id)
		}
	}
	for _, id := range []string{"five-worlds", "veteran"} {
		if unlocked[id] {
			t.Errorf("achievement %s should be locked", id)
		}
	}
	if view.Unlocked != 6 {
		t.Errorf("unlocked = %d, want 6", view.Unlocked)
	}
}

func TestAvatarDeterministic(t *testing.T) {
	a := avatarFor("0xsame")
	for i := 0; i < 3; i++ {
		if avatarFor("0xsame") != a {
			t.Fatal("avatar glyph must be stable per address")
		}
	}
}
