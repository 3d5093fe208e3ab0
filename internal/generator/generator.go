// Package generator defines the content-generation collaborator consumed by
// the economy. The real system delegates this to an external model; the
// in-tree Procedural implementation fabricates deterministic content so the
// rest of the app has a default provider.
package generator

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"
	"unicode"

	"github.com/starford/infinity/internal/idgen"
	"github.com/starford/infinity/internal/models"
)

// titleCase upper-cases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Result is the generated content for a world or page.
type Result struct {
	Title       string
	Description string
	Content     string
	Tools       []models.ToolComponent
}

// Provider is the interface for content generation. Implementations may
// block and may fail; callers must not mutate any state before the call
// returns successfully.
type Provider interface {
	GenerateWebsite(ctx context.Context, query, wallet string) (*Result, error)
	GenerateWorld(ctx context.Context, archetype, wallet, slotCombination string) (*Result, error)
	GeneratePage(ctx context.Context, siteTitle, query, wallet string) (*Result, error)
}

var toolTypes = []string{
	"dashboard", "gallery", "timeline", "map", "chart", "feed",
	"calculator", "store", "chat", "kanban", "search", "analytics",
}

var adjectives = []string{
	"Radiant", "Hidden", "Quantum", "Drifting", "Emerald", "Hollow",
	"Solar", "Fractal", "Vivid", "Silent",
}

var nouns = []string{
	"Archive", "Bazaar", "Observatory", "Garden", "Foundry", "Atlas",
	"Sanctum", "Arcade", "Harbor", "Loom",
}

// Procedural fabricates content from a seed derived from the query, so the
// same query always yields the same structure.
type Procedural struct{}

var _ Provider = (*Procedural)(nil)

// NewProcedural returns the built-in deterministic provider.
func NewProcedural() *Procedural { return &Procedural{} }

func seed(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(s))))
	return h.Sum64()
}

func (g *Procedural) tools(n int, wallet string, s uint64) []models.ToolComponent {
	now := time.Now().UnixMilli()
	out := make([]models.ToolComponent, 0, n)
	for i := 0; i < n; i++ {
		tt := toolTypes[(s+uint64(i*7))%uint64(len(toolTypes))]
		out = append(out, models.ToolComponent{
			ID:          idgen.ToolID(),
			Type:        tt,
			Title:       titleCase(tt),
			Description: fmt.Sprintf("A %s wired into this world.", tt),
			AddedAt:     now,
			AddedBy:     wallet,
		})
	}
	return out
}

// GenerateWebsite fabricates a world from a free-text query.
func (g *Procedural) GenerateWebsite(ctx context.Context, query, wallet string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("generator: empty query")
	}
	s := seed(query)
	title := fmt.Sprintf("%s %s", adjectives[s%uint64(len(adjectives))], nouns[(s>>8)%uint64(len(nouns))])
	return &Result{
		Title:       title,
		Description: fmt.Sprintf("A world grown from the query %q.", query),
		Content:     fmt.Sprintf("# %s\n\nEverything here answers to %q.\n", title, query),
		Tools:       g.tools(2+int(s%3), wallet, s),
	}, nil
}

// GenerateWorld fabricates a world from an archetype and slot combination.
func (g *Procedural) GenerateWorld(ctx context.Context, archetype, wallet, slotCombination string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(archetype) == "" {
		return nil, fmt.Errorf("generator: empty archetype")
	}
	s := seed(archetype + "|" + slotCombination)
	title := fmt.Sprintf("%s %s", titleCase(archetype), nouns[s%uint64(len(nouns))])
	return &Result{
		Title:       title,
		Description: fmt.Sprintf("A %s world forged from the %s combination.", archetype, slotCombination),
		Content:     fmt.Sprintf("# %s\n\nArchetype: %s\nSlots: %s\n", title, archetype, slotCombination),
		Tools:       g.tools(3+int(s%3), wallet, s),
	}, nil
}

// GeneratePage fabricates a page for an existing world.
func (g *Procedural) GeneratePage(ctx context.Context, siteTitle, query, wallet string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("generator: empty query")
	}
	s := seed(siteTitle + "::" + query)
	title := titleCase(strings.TrimSpace(query))
	return &Result{
		Title:       title,
		Description: fmt.Sprintf("A page of %s about %q.", siteTitle, query),
		Content:     fmt.Sprintf("## %s\n\nA corner of %s dedicated to %q.\n", title, siteTitle, query),
		Tools:       g.tools(int(s%2)+1, wallet, s),
	}, nil
}
