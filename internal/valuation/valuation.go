// Package valuation derives a world's numeric value from its composition.
package valuation

import (
	"math"

	"github.com/starford/infinity/internal/models"
)

// Base value of a freshly generated world before any tools or pages.
const Base = 1000

// Per-component increments.
const (
	perSiteTool = 150
	perPage     = 250
	perPageTool = 100
)

// Appraise computes a world's value from its tool and page composition,
// scaled by its rarity multiplier and uniqueness score. The result depends
// only on the world's current composition, so recomputing an unchanged
// world always yields the same number.
func Appraise(site *models.Website) int64 {
	v := float64(Base + perSiteTool*len(site.Tools))
	for _, p := range site.Pages {
		v += perPage + float64(perPageTool*len(p.Tools))
	}
	if site.RarityMultiplier > 0 {
		v *= site.RarityMultiplier
	}
	if site.UniquenessScore > 0 {
		v *= site.UniquenessScore
	}
	return int64(math.Round(v))
}
