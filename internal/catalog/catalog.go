package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/toolindex/toolindex-api/internal/models"
	"github.com/toolindex/toolindex-api/internal/repository"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Filter narrows the public catalog. Only approved tools are ever visible.
type Filter struct {
	Search   string
	Category string
	Pricing  string
	Features []string
	Sort     string // popular | rating | newest | az
}

// View is the read-only projection of approved tools served to end users.
// It never writes.
type View struct {
	tools  repository.ToolRepository
	logger zerolog.Logger
}

func NewView(tools repository.ToolRepository, logger zerolog.Logger) *View {
	return &View{
		tools:  tools,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// ListApproved returns approved tools matching the filter, ordered per the
// requested sort. Default order is newest first.
func (v *View) ListApproved(ctx context.Context, filter Filter) ([]models.Tool, error) {
	repoFilter := repository.ToolFilter{
		Status:    models.ToolStatusApproved,
		Search:    filter.Search,
		Features:  normalizeFeatures(filter.Features),
		SortField: "created_at",
		SortAsc:   false,
	}
	if filter.Category != "" && filter.Category != "all" {
		repoFilter.Category = filter.Category
	}
	if filter.Pricing != "" && filter.Pricing != "all" {
		repoFilter.Pricing = models.NormalizePricing(filter.Pricing)
	}

	tools, err := v.tools.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	if tools == nil {
		tools = []models.Tool{}
	}

	switch filter.Sort {
	case "popular", "rating":
		sort.SliceStable(tools, func(i, j int) bool {
			return tools[i].Rating > tools[j].Rating
		})
	case "az":
		collator := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(tools, func(i, j int) bool {
			return collator.CompareString(tools[i].Name, tools[j].Name) < 0
		})
	}
	// "newest" and the default keep the repository's created_at DESC order.

	return tools, nil
}

func normalizeFeatures(features []string) []string {
	var cleaned []string
	for _, feature := range features {
		if feature = strings.TrimSpace(feature); feature != "" {
			cleaned = append(cleaned, feature)
		}
	}
	return cleaned
}
