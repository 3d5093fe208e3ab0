package valuation

import (
	"testing"

	"github.com/starford/infinity/internal/models"
)

func TestAppraise(t *testing.T) {
	twoTools := []models.ToolComponent{{ID: "tool-1"}, {ID: "tool-2"}}
	cases := []struct {
		name string
		site models.Website
		want int64
	}{
		{"bare world", models.Website{}, 1000},
		{"site tools", models.Website{Tools: twoTools}, 1300},
		{"empty page", models.Website{Pages: []models.Page{{}}}, 1250},
		{"page with tools", models.Website{Pages: []models.Page{{Tools: twoTools}}}, 1450},
		{
			"rarity multiplier",
			models.Website{Tools: twoTools, RarityMultiplier: 2.0},
			2600,
		},
		{
			"uniqueness score",
			models.Website{Tools: twoTools, UniquenessScore: 1.5},
			1950,
		},
		{
			"rarity and uniqueness stack",
			models.Website{RarityMultiplier: 2.0, UniquenessScore: 1.5},
			3000,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Appraise(&c.site); got != c.want {
				t.Errorf("Appraise = %d, want %d", got, c.want)
			}
		})
	}
}

func TestAppraiseDeterministic(t *testing.T) {
	site := models.Website{
		Tools: []models.ToolComponent{{ID: "tool-1"}},
		Pages: []models.Page{{Tools: []models.ToolComponent{{ID: "tool-2"}}}},
	}
	first := Appraise(&site)
	for i := 0; i < 3; i++ {
		if got := Appraise(&site); got != first {
			t.Fatalf("Appraise changed on unchanged input: %d vs %d", got, first)
		}
	}
}
