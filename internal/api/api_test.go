package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/infinity/internal/economy"
	"github.com/starford/infinity/internal/models"
	"github.com/starford/infinity/internal/music"
	"github.com/starford/infinity/internal/profile"
	"github.com/starford/infinity/internal/testutil"
)

type testEnv struct {
	svc      *economy.Service
	gen      *testutil.StubGenerator
	router   http.Handler
	seedDir  string
	mediaDir string
}

// newTestEnv sets up a temp store, services, and router.
// token == "" means auth disabled; non-empty enables token mode.
func newTestEnv(t *testing.T, token string) *testEnv {
	t.Helper()

	db := testutil.TestDB(t)
	svc, gen := testutil.TestServiceWithDB(t, db)
	seedDir, seedFS := testutil.TestSeedDir(t)
	mediaDir := t.TempDir()

	router := NewRouter(svc, music.NewService(db), profile.NewService(db), db,
		token != "", token, nil, seedFS, mediaDir)

	return &testEnv{svc: svc, gen: gen, router: router, seedDir: seedDir, mediaDir: mediaDir}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// importListed seeds the registry with a world owned by another wallet and
// listed at the given price.
func (e *testEnv) importListed(t *testing.T, id string, price int64) {
	t.Helper()
	err := e.svc.ImportWorld(context.Background(), models.Website{
		ID:              id,
		TokenID:         "token-" + id,
		Title:           "Imported " + id,
		Description:     "fixture",
		OwnerWallet:     "0xseller",
		Value:           price,
		IsListedForSale: true,
		SalePrice:       price,
		Collaborators: []models.Collaborator{
			{Wallet: "0xseller", Role: models.RoleOwner},
		},
	})
	if err != nil {
		t.Fatalf("import fixture: %v", err)
	}
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, w.Body.String())
	}
	return out
}

func TestCreateAndGetWorld(t *testing.T) {
	e := newTestEnv(t, "")

	w := e.do(t, http.MethodPost, "/worlds", map[string]string{"query": "crystal archive"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	site := decodeBody[models.Website](t, w)
	if site.ID == "" || site.OwnerWallet == "" {
		t.Fatalf("incomplete world: %+v", site)
	}
	if site.Value <= 0 {
		t.Errorf("value = %d, want > 0", site.Value)
	}

	w = e.do(t, http.MethodGet, "/worlds/"+site.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	// Creation mints a token and credits the portfolio.
	w = e.do(t, http.MethodGet, "/wallet", nil)
	wallet := decodeBody[models.Wallet](t, w)
	if len(wallet.Tokens) != 1 {
		t.Errorf("tokens = %d, want 1", len(wallet.Tokens))
	}
	if wallet.Balance != site.Value {
		t.Errorf("portfolio = %d, want %d", wallet.Balance, site.Value)
	}
}

func TestCreateWorld_GeneratorFailure(t *testing.T) {
	e := newTestEnv(t, "")
	e.gen.Fail = true

	w := e.do(t, http.MethodPost, "/worlds", map[string]string{"query": "doomed"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	resp := decodeBody[map[string]string](t, w)
	if resp["error"] != "Failed to create website. Please try again." {
		t.Errorf("error = %q", resp["error"])
	}

	// Failed generation must leave no trace.
	w = e.do(t, http.MethodGet, "/worlds", nil)
	list := decodeBody[WorldListResponse](t, w)
	if list.Total != 0 {
		t.Errorf("worlds after failed create = %d, want 0", list.Total)
	}
}

func TestCreateWorld_MissingQuery(t *testing.T) {
	e := newTestEnv(t, "")
	w := e.do(t, http.MethodPost, "/worlds", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestArchetypeWorld(t *testing.T) {
	e := newTestEnv(t, "")
	w := e.do(t, http.MethodPost, "/worlds/archetype", map[string]any{
		"archetype":        "floating gardens",
		"rarityMultiplier": 1.5,
		"slotCombination":  "☄|☄|☄",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	site := decodeBody[models.Website](t, w)
	if site.WorldArchetype != "floating gardens" {
		t.Errorf("archetype = %q", site.WorldArchetype)
	}
	if site.RarityMultiplier != 1.5 {
		t.Errorf("rarity = %v", site.RarityMultiplier)
	}
}

func TestMineFilter(t *testing.T) {
	e := newTestEnv(t, "")
	e.do(t, http.MethodPost, "/worlds", map[string]string{"query": "mine"})
	e.importListed(t, "site-other", 300)

	w := e.do(t, http.MethodGet, "/worlds", nil)
	if list := decodeBody[WorldListResponse](t, w); list.Total != 2 {
		t.Errorf("all worlds = %d, want 2", list.Total)
	}

	w = e.do(t, http.MethodGet, "/worlds?mine=1", nil)
	if list := decodeBody[WorldListResponse](t, w); list.Total != 1 {
		t.Errorf("my worlds = %d, want 1", list.Total)
	}
}

func TestAddPage_OwnerOnly(t *testing.T) {
	e := newTestEnv(t, "")

	w := e.do(t, http.MethodPost, "/worlds", map[string]string{"query": "home"})
	site := decodeBody[models.Website](t, w)

	w = e.do(t, http.MethodPost, "/worlds/"+site.ID+"/pages", map[string]string{"query": "about"})
	if w.Code != http.StatusOK {
		t.Fatalf("add page = %d, body = %s", w.Code, w.Body.String())
	}
	updated := decodeBody[models.Website](t, w)
	if len(updated.Pages) != 1 {
		t.Errorf("pages = %d, want 1", len(updated.Pages))
	}
	if updated.Value <= site.Value {
		t.Errorf("value should rise after page: %d -> %d", site.Value, updated.Value)
	}

	// Worlds owned by another wallet reject page additions.
	e.importListed(t, "site-foreign", 300)
	w = e.do(t, http.MethodPost, "/worlds/site-foreign/pages", map[string]string{"query": "nope"})
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign add page = %d, want 403", w.Code)
	}
}

func TestListUnlistFlow(t *testing.T) {
	e := newTestEnv(t, "")
	w := e.do(t, http.MethodPost, "/worlds", map[string]string{"query": "shop"})
	site := decodeBody[models.Website](t, w)

	if w = e.do(t, http.MethodPost, "/worlds/"+site.ID+"/list", map[string]int{"price": 500}); w.Code != http.StatusNoContent {
		t.Fatalf("list = %d, body = %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodGet, "/market", nil)
	if market := decodeBody[WorldListResponse](t, w); market.Total != 1 {
		t.Errorf("market = %d, want 1", market.Total)
	}

	if w = e.do(t, http.MethodPost, "/worlds/"+site.ID+"/unlist", nil); w.Code != http.StatusNoContent {
		t.Fatalf("unlist = %d", w.Code)
	}

	w = e.do(t, http.MethodGet, "/market", nil)
	if market := decodeBody[WorldListResponse](t, w); market.Total != 0 {
		t.Errorf("market after unlist = %d, want 0", market.Total)
	}
}

func TestListRejectsZeroPrice(t *testing.T) {
	e := newTestEnv(t, "")
	w := e.do(t, http.MethodPost, "/worlds", map[string]string{"query": "free"})
	site := decodeBody[models.Website](t, w)

	if w = e.do(t, http.MethodPost, "/worlds/"+site.ID+"/list", map[string]int{"price": 0}); w.Code != http.StatusBadRequest {
		t.Errorf("zero price = %d, want 400", w.Code)
	}
}

func TestPurchase(t *testing.T) {
	e := newTestEnv(t, "")
	e.do(t, http.MethodGet, "/wallet", nil) // materialize the wallet
	e.importListed(t, "site-buyme", 300)

	w := e.do(t, http.MethodPost, "/worlds/site-buyme/purchase", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("purchase = %d, body = %s", w.Code, w.Body.String())
	}
	wallet := decodeBody[models.Wallet](t, w)
	if got := wallet.Spendable(); got != 9700 {
		t.Errorf("infinity = %d, want 9700", got)
	}
	if len(wallet.Tokens) != 1 {
		t.Errorf("tokens = %d, want 1", len(wallet.Tokens))
	}

	w = e.do(t, http.MethodGet, "/worlds/site-buyme", nil)
	site := decodeBody[models.Website](t, w)
	if site.OwnerWallet != wallet.Address {
		t.Errorf("owner = %q, want buyer", site.OwnerWallet)
	}
	if site.IsListedForSale || site.SalePrice != 0 {
		t.Error("sale fields should be cleared after purchase")
	}
}

func TestPurchase_InsufficientBalance(t *testing.T) {
	e := newTestEnv(t, "")
	e.do(t, http.MethodGet, "/wallet", nil)
	e.importListed(t, "site-pricey", 20000)

	w := e.do(t, http.MethodPost, "/worlds/site-pricey/purchase", nil)
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("purchase = %d, want 402", w.Code)
	}

	// Rejection leaves everything untouched.
	w = e.do(t, http.MethodGet, "/wallet", nil)
	wallet := decodeBody[models.Wallet](t, w)
	if wallet.Spendable() != 10000 || len(wallet.Tokens) != 0 {
		t.Errorf("wallet mutated on rejected purchase: %+v", wallet)
	}
}

func TestPurchase_Unlisted(t *testing.T) {
	e := newTestEnv(t, "")
	e.do(t, http.MethodGet, "/wallet", nil)
	w := e.do(t, http.MethodPost, "/worlds", map[string]string{"query": "private"})
	site := decodeBody[models.Website](t, w)

	if w = e.do(t, http.MethodPost, "/worlds/"+site.ID+"/purchase", nil); w.Code != http.StatusConflict {
		t.Errorf("unlisted purchase = %d, want 409", w.Code)
	}
}

func TestCartCheckout(t *testing.T) {
	e := newTestEnv(t, "")
	e.do(t, http.MethodGet, "/wallet", nil)
	e.importListed(t, "site-a", 300)
	e.importListed(t, "site-b", 400)

	for _, it := range []CartAddRequest{
		{WebsiteID: "site-a", Price: 300},
		{WebsiteID: "site-b", Price: 400},
	} {
		if w := e.do(t, http.MethodPost, "/cart", it); w.Code != http.StatusNoContent {
			t.Fatalf("add to cart = %d", w.Code)
		}
	}

	w := e.do(t, http.MethodGet, "/cart", nil)
	cart := decodeBody[map[string]any](t, w)
	if int(cart["total"].(float64)) != 2 {
		t.Fatalf("cart total = %v, want 2", cart["total"])
	}

	w = e.do(t, http.MethodPost, "/cart/checkout", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("checkout = %d, body = %s", w.Code, w.Body.String())
	}
	res := decodeBody[CheckoutResponse](t, w)
	if res.Purchased != 2 || res.Total != 700 {
		t.Errorf("checkout = %+v", res)
	}

	// Cart cleared, balance debited once per item.
	w = e.do(t, http.MethodGet, "/cart", nil)
	cart = decodeBody[map[string]any](t, w)
	if int(cart["total"].(float64)) != 0 {
		t.Errorf("cart after checkout = %v, want 0", cart["total"])
	}
	w = e.do(t, http.MethodGet, "/wallet", nil)
	if wallet := decodeBody[models.Wallet](t, w); wallet.Spendable() != 9300 {
		t.Errorf("infinity = %d, want 9300", wallet.Spendable())
	}
}

func TestCartCheckout_AggregateOverBudget(t *testing.T) {
	e := newTestEnv(t, "")
	e.do(t, http.MethodGet, "/wallet", nil)
	e.importListed(t, "site-a", 6000)
	e.importListed(t, "site-b", 6000)

	e.do(t, http.MethodPost, "/cart", CartAddRequest{WebsiteID: "site-a", Price: 6000})
	e.do(t, http.MethodPost, "/cart", CartAddRequest{WebsiteID: "site-b", Price: 6000})

	w := e.do(t, http.MethodPost, "/cart/checkout", nil)
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("checkout = %d, want 402 (12000 > 10000)", w.Code)
	}

	// Whole batch rejected: nothing bought, cart intact.
	w = e.do(t, http.MethodGet, "/cart", nil)
	cart := decodeBody[map[string]any](t, w)
	if int(cart["total"].(float64)) != 2 {
		t.Errorf("cart = %v, want 2 (rejection keeps the cart)", cart["total"])
	}
}

func TestTradeLifecycle(t *testing.T) {
	e := newTestEnv(t, "")

	w := e.do(t, http.MethodPost, "/worlds", map[string]string{"query": "mine"})
	mine := decodeBody[models.Website](t, w)
	e.importListed(t, "site-theirs", 300)

	w = e.do(t, http.MethodPost, "/trades", TradeOfferRequest{
		OfferedWebsiteID:   mine.ID,
		RequestedWebsiteID: "site-theirs",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create trade = %d, body = %s", w.Code, w.Body.String())
	}
	offer := decodeBody[models.TradeOffer](t, w)
	if offer.Status != models.TradePending {
		t.Fatalf("status = %q", offer.Status)
	}

	if w = e.do(t, http.MethodPost, "/trades/"+offer.ID+"/accept", nil); w.Code != http.StatusNoContent {
		t.Fatalf("accept = %d, body = %s", w.Code, w.Body.String())
	}

	// Ownership swapped both ways.
	w = e.do(t, http.MethodGet, "/worlds/site-theirs", nil)
	if got := decodeBody[models.Website](t, w); got.OwnerWallet == "0xseller" {
		t.Error("requested world should have changed hands")
	}
	w = e.do(t, http.MethodGet, "/worlds/"+mine.ID, nil)
	if got := decodeBody[models.Website](t, w); got.OwnerWallet != "0xseller" {
		t.Errorf("offered world owner = %q, want 0xseller", got.OwnerWallet)
	}

	// Terminal states are absorbing.
	if w = e.do(t, http.MethodPost, "/trades/"+offer.ID+"/accept", nil); w.Code != http.StatusConflict {
		t.Errorf("second accept = %d, want 409", w.Code)
	}
}

func TestTrade_OfferUnownedWorld(t *testing.T) {
	e := newTestEnv(t, "")
	e.do(t, http.MethodGet, "/wallet", nil)
	e.importListed(t, "site-a", 300)
	e.importListed(t, "site-b", 400)

	w := e.do(t, http.MethodPost, "/trades", TradeOfferRequest{
		OfferedWebsiteID:   "site-a",
		RequestedWebsiteID: "site-b",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("trade of unowned world = %d, want 403", w.Code)
	}
}

func TestTrade_SelfTradeRejected(t *testing.T) {
	e := newTestEnv(t, "")
	w := e.do(t, http.MethodPost, "/trades", TradeOfferRequest{
		OfferedWebsiteID:   "site-x",
		RequestedWebsiteID: "site-x",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("self trade = %d, want 400", w.Code)
	}
}

func TestTerminal(t *testing.T) {
	e := newTestEnv(t, "")

	w := e.do(t, http.MethodPost, "/terminal", map[string]string{"input": "balance"})
	if w.Code != http.StatusOK {
		t.Fatalf("terminal = %d, body = %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodGet, "/terminal/history", nil)
	hist := decodeBody[map[string][]models.TerminalCommand](t, w)
	if len(hist["history"]) != 1 {
		t.Fatalf("history = %d, want 1", len(hist["history"]))
	}
	if hist["history"][0].Input != "balance" {
		t.Errorf("recorded input = %q", hist["history"][0].Input)
	}

	// clear wipes the history.
	w = e.do(t, http.MethodPost, "/terminal", map[string]string{"input": "clear"})
	res := decodeBody[TerminalResponse](t, w)
	if !res.Clear {
		t.Error("clear should set the clear flag")
	}
	w = e.do(t, http.MethodGet, "/terminal/history", nil)
	hist = decodeBody[map[string][]models.TerminalCommand](t, w)
	if len(hist["history"]) != 0 {
		t.Errorf("history after clear = %d, want 0", len(hist["history"]))
	}
}

func TestTerminalNavigation(t *testing.T) {
	e := newTestEnv(t, "")
	w := e.do(t, http.MethodPost, "/terminal", map[string]string{"input": "market"})
	res := decodeBody[TerminalResponse](t, w)
	if res.Navigate != "marketplace" {
		t.Errorf("navigate = %q, want marketplace", res.Navigate)
	}
}

func TestMusicLibraryAndLikes(t *testing.T) {
	e := newTestEnv(t, "")

	w := e.do(t, http.MethodGet, "/music/tracks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("library = %d", w.Code)
	}
	lib := decodeBody[music.Library](t, w)
	if len(lib.Tracks) != 8 {
		t.Fatalf("seed tracks = %d, want 8", len(lib.Tracks))
	}

	id := lib.Tracks[0].ID
	if w = e.do(t, http.MethodPost, "/music/tracks/"+id+"/like", nil); w.Code != http.StatusNoContent {
		t.Fatalf("like = %d", w.Code)
	}
	w = e.do(t, http.MethodGet, "/music/tracks", nil)
	lib = decodeBody[music.Library](t, w)
	if len(lib.Liked) != 1 || lib.Liked[0] != id {
		t.Errorf("liked = %v", lib.Liked)
	}

	w = e.do(t, http.MethodPost, "/music/tracks", AddTrackRequest{Title: "New Wave", Artist: "Testers", Duration: 200})
	if w.Code != http.StatusCreated {
		t.Fatalf("add track = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestProfile(t *testing.T) {
	e := newTestEnv(t, "")

	w := e.do(t, http.MethodGet, "/profile", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile = %d, body = %s", w.Code, w.Body.String())
	}
	view := decodeBody[profile.View](t, w)
	if view.Profile.DisplayName == "" {
		t.Error("derived profile should have a display name")
	}

	w = e.do(t, http.MethodPut, "/profile", UpdateProfileRequest{DisplayName: "Nova", Bio: "world builder"})
	if w.Code != http.StatusOK {
		t.Fatalf("update profile = %d", w.Code)
	}
	w = e.do(t, http.MethodGet, "/profile", nil)
	view = decodeBody[profile.View](t, w)
	if view.Profile.DisplayName != "Nova" {
		t.Errorf("displayName = %q, want Nova", view.Profile.DisplayName)
	}
}

func TestDashboard(t *testing.T) {
	e := newTestEnv(t, "")
	e.do(t, http.MethodPost, "/worlds", map[string]string{"query": "stats"})

	w := e.do(t, http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard = %d", w.Code)
	}
	sum := decodeBody[economy.Summary](t, w)
	if sum.Worlds != 1 {
		t.Errorf("worlds = %d, want 1", sum.Worlds)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	e := newTestEnv(t, "")
	if w := e.do(t, http.MethodGet, "/market/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestSearchFindsWorld(t *testing.T) {
	e := newTestEnv(t, "")
	e.do(t, http.MethodPost, "/worlds", map[string]string{"query": "zanzibar gardens"})

	w := e.do(t, http.MethodGet, "/market/search?q=zanzibar", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decodeBody[map[string][]SearchResult](t, w)
	if len(resp["results"]) != 1 {
		t.Errorf("results = %d, want 1", len(resp["results"]))
	}
}

func TestArchiveWorld(t *testing.T) {
	e := newTestEnv(t, "")
	w := e.do(t, http.MethodPost, "/worlds", map[string]string{"query": "keepsake"})
	site := decodeBody[models.Website](t, w)

	w = e.do(t, http.MethodPost, "/worlds/"+site.ID+"/archive", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("archive = %d, body = %s", w.Code, w.Body.String())
	}

	data, err := os.ReadFile(filepath.Join(e.seedDir, site.ID+".json"))
	if err != nil {
		t.Fatalf("seed file not written: %v", err)
	}
	if !bytes.Contains(data, []byte(site.ID)) {
		t.Error("seed file missing world id")
	}
}

func TestTransactionsLedger(t *testing.T) {
	e := newTestEnv(t, "")
	w := e.do(t, http.MethodPost, "/worlds", map[string]string{"query": "ledger"})
	site := decodeBody[models.Website](t, w)
	e.do(t, http.MethodPost, "/worlds/"+site.ID+"/list", map[string]int{"price": 100})

	w = e.do(t, http.MethodGet, "/transactions", nil)
	resp := decodeBody[map[string]any](t, w)
	if int(resp["total"].(float64)) != 1 {
		t.Errorf("ledger total = %v, want 1 (listing)", resp["total"])
	}
}

// Auth middleware modes.

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := newTestEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/worlds", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	e := newTestEnv(t, "secret123")
	if w := e.do(t, http.MethodGet, "/worlds", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	e := newTestEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/worlds", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	e := newTestEnv(t, "")
	if w := e.do(t, http.MethodGet, "/worlds", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth.

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := sseRouter(t, true, "secret")

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := sseRouter(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

// sseRouter creates a router with a stub SSE handler to test auth on /events.
func sseRouter(t *testing.T, authEnabled bool, token string) http.Handler {
	t.Helper()
	db := testutil.TestDB(t)
	svc, _ := testutil.TestServiceWithDB(t, db)

	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})

	return NewRouter(svc, music.NewService(db), profile.NewService(db), db,
		authEnabled, token, sseHandler, nil, t.TempDir())
}

// Media upload.

func uploadFile(t *testing.T, router http.Handler, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(part, bytes.NewReader(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/music/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadAndServeAudio(t *testing.T) {
	e := newTestEnv(t, "")

	w := uploadFile(t, e.router, "track.mp3", []byte("fake-mp3-data"))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decodeBody[MediaUploadResponse](t, w)
	if resp.Filename != "track.mp3" || resp.URL != "/media/track.mp3" {
		t.Errorf("upload response = %+v", resp)
	}

	data, err := os.ReadFile(filepath.Join(e.mediaDir, "track.mp3"))
	if err != nil {
		t.Fatalf("file not on disk: %v", err)
	}
	if string(data) != "fake-mp3-data" {
		t.Error("content mismatch")
	}
}

func TestUpload_RejectsNonAudio(t *testing.T) {
	e := newTestEnv(t, "")
	if w := uploadFile(t, e.router, "evil.exe", []byte("nope")); w.Code != http.StatusBadRequest {
		t.Errorf("non-audio upload = %d, want 400", w.Code)
	}
}

func TestServeMedia_TraversalBlocked(t *testing.T) {
	mh := NewMediaHandler(t.TempDir())
	r := chi.NewRouter()
	r.Get("/media/{filename}", mh.ServeFile)

	for _, name := range []string{"../secret.mp3", "../../etc/passwd"} {
		req := httptest.NewRequest(http.MethodGet, "/media/"+name, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		// chi may not route traversal paths at all (404), or the handler rejects (400).
		if w.Code == http.StatusOK {
			t.Errorf("traversal %q should not return 200", name)
		}
	}
}

func TestServeMedia_NotFound(t *testing.T) {
	mh := NewMediaHandler(t.TempDir())
	r := chi.NewRouter()
	r.Get("/media/{filename}", mh.ServeFile)

	req := httptest.NewRequest(http.MethodGet, "/media/nope.mp3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing media = %d, want 404", w.Code)
	}
}
