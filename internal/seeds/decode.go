package seeds

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/infinity/internal/models"
	"github.com/starford/infinity/internal/valuation"
)

// seedDoc is the on-disk shape of a seed world file. Only a subset of
// the full website shape is required; missing fields get defaults.
type seedDoc struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url"`
	Content     string             `json:"content"`
	Theme       string             `json:"theme"`
	Query       string             `json:"query"`
	Archetype   string             `json:"worldArchetype"`
	Tools       []models.ToolComponent `json:"tools"`
	Pages       []models.Page      `json:"pages"`
	Value       int64              `json:"value"`
}

func (d seedDoc) validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
		validation.Field(&d.Title, validation.Required),
	)
}

// Decode parses a seed file into a website ready for import. path is the
// seed's relative path, used only for error context. Imported worlds are
// owned by nobody until claimed; the owner wallet is a deterministic
// synthetic address derived from the seed id.
func Decode(path string, data []byte, now int64) (*models.Website, error) {
	var doc seedDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("seeds: decode %s: %w", path, err)
	}
	if doc.ID == "" {
		doc.ID = "seed-" + strings.TrimSuffix(filepath.Base(path), ".json")
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("seeds: invalid seed %s: %w", path, err)
	}

	site := &models.Website{
		ID:             doc.ID,
		Title:          doc.Title,
		Description:    doc.Description,
		URL:            doc.URL,
		Content:        doc.Content,
		Theme:          doc.Theme,
		Query:          doc.Query,
		WorldArchetype: doc.Archetype,
		Tools:          doc.Tools,
		Pages:          doc.Pages,
		OwnerWallet:    seedOwner(doc.ID),
		CreatedAt:      now,
		Value:          doc.Value,
		TokenID:        "token-" + doc.ID,
		UniquenessScore: 1.0,
	}
	if site.URL == "" {
		site.URL = "https://infinity.spark/" + site.ID
	}
	if site.Theme == "" {
		site.Theme = "cosmic"
	}
	if site.Value == 0 {
		site.Value = valuation.Appraise(site)
	}
	site.Collaborators = []models.Collaborator{{
		Wallet:  site.OwnerWallet,
		Role:    models.RoleOwner,
		AddedAt: now,
		AddedBy: site.OwnerWallet,
	}}
	return site, nil
}

// seedOwner returns the synthetic owner address for an unclaimed seed world.
func seedOwner(id string) string {
	return "0xseed" + strings.Map(keepAlnum, id)
}

func keepAlnum(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r
	default:
		return -1
	}
}
