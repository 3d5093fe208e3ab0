package generator

import (
	"context"
	"testing"
)

func TestGenerateWebsiteDeterministicStructure(t *testing.T) {
	g := NewProcedural()
	ctx := context.Background()

	a, err := g.GenerateWebsite(ctx, "crystal archive", "0xme")
	if err != nil {
		t.Fatalf("GenerateWebsite: %v", err)
	}
	b, err := g.GenerateWebsite(ctx, "Crystal Archive", "0xme")
	if err != nil {
		t.Fatal(err)
	}
	// Seeding normalizes case, so the same query always yields the same shape.
	if a.Title != b.Title || len(a.Tools) != len(b.Tools) {
		t.Errorf("same query diverged: %q/%d vs %q/%d", a.Title, len(a.Tools), b.Title, len(b.Tools))
	}
	if len(a.Tools) < 2 {
		t.Errorf("tools = %d, want at least 2", len(a.Tools))
	}
	for _, tool := range a.Tools {
		if tool.Type == "" || tool.AddedBy != "0xme" {
			t.Errorf("tool = %+v", tool)
		}
	}
}

func TestGenerateWebsite_EmptyQuery(t *testing.T) {
	g := NewProcedural()
	if _, err := g.GenerateWebsite(context.Background(), "   ", "0xme"); err == nil {
		t.Error("blank query should fail")
	}
}

func TestGenerateWorldUsesArchetype(t *testing.T) {
	g := NewProcedural()
	res, err := g.GenerateWorld(context.Background(), "floating gardens", "0xme", "☄|☄|☄")
	if err != nil {
		t.Fatalf("GenerateWorld: %v", err)
	}
	if res.Title == "" || len(res.Tools) < 3 {
		t.Errorf("result = %+v", res)
	}
}

func TestGeneratePageVariesBySite(t *testing.T) {
	g := NewProcedural()
	ctx := context.Background()

	a, _ := g.GeneratePage(ctx, "Alpha", "history", "0xme")
	if a.Title != "History" {
		t.Errorf("page title = %q, want the query title-cased", a.Title)
	}
}

func TestCancelledContext(t *testing.T) {
	g := NewProcedural()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.GenerateWebsite(ctx, "q", "0xme"); err == nil {
		t.Error("cancelled context should fail")
	}
	if _, err := g.GeneratePage(ctx, "s", "q", "0xme"); err == nil {
		t.Error("cancelled context should fail")
	}
}
