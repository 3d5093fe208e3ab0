// Package testutil provides shared test helpers for setting up stores,
// seed directories, and a deterministic generator.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/starford/infinity/internal/economy"
	"github.com/starford/infinity/internal/generator"
	"github.com/starford/infinity/internal/models"
	"github.com/starford/infinity/internal/seeds"
	"github.com/starford/infinity/internal/store"
)

// TestDB creates a temporary SQLite slot store that is automatically
// cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "infinity-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// StubGenerator is a generator.Provider with canned output and an
// optional failure switch.
type StubGenerator struct {
	Fail  bool // every call returns an error when set
	Tools int  // tools per generated site/page
	Calls int
}

var _ generator.Provider = (*StubGenerator)(nil)

func (g *StubGenerator) result(title string) *generator.Result {
	tools := make([]models.ToolComponent, 0, g.Tools)
	for i := 0; i < g.Tools; i++ {
		tools = append(tools, models.ToolComponent{
			ID:    fmt.Sprintf("tool-stub-%d-%d", g.Calls, i),
			Type:  "dashboard",
			Title: fmt.Sprintf("Stub Tool %d", i),
		})
	}
	return &generator.Result{
		Title:       title,
		Description: "stub description",
		Content:     "stub content for " + title,
		Tools:       tools,
	}
}

func (g *StubGenerator) GenerateWebsite(_ context.Context, query, _ string) (*generator.Result, error) {
	g.Calls++
	if g.Fail {
		return nil, errors.New("stub generator failure")
	}
	return g.result("Site: " + query), nil
}

func (g *StubGenerator) GenerateWorld(_ context.Context, archetype, _, _ string) (*generator.Result, error) {
	g.Calls++
	if g.Fail {
		return nil, errors.New("stub generator failure")
	}
	return g.result("World: " + archetype), nil
}

func (g *StubGenerator) GeneratePage(_ context.Context, siteTitle, query, _ string) (*generator.Result, error) {
	g.Calls++
	if g.Fail {
		return nil, errors.New("stub generator failure")
	}
	return g.result(siteTitle + " / " + query), nil
}

// TestService creates an economy service over a temp store with a stub
// generator producing two tools per call.
func TestService(t *testing.T) (*economy.Service, *StubGenerator) {
	t.Helper()
	db := TestDB(t)
	gen := &StubGenerator{Tools: 2}
	return economy.NewService(db, gen, nil), gen
}

// TestServiceWithDB is TestService over a caller-provided store, for
// tests that need to inspect slots directly.
func TestServiceWithDB(t *testing.T, db *store.DB) (*economy.Service, *StubGenerator) {
	t.Helper()
	gen := &StubGenerator{Tools: 2}
	return economy.NewService(db, gen, nil), gen
}

// TestSeedDir creates a temporary seed directory with a seeds.Provider.
func TestSeedDir(t *testing.T) (string, seeds.Provider) {
	t.Helper()
	dir := t.TempDir()
	fs, err := seeds.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}
