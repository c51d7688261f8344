package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/toolindex/toolindex-api/internal/models"
	"github.com/toolindex/toolindex-api/internal/notification"
	"github.com/toolindex/toolindex-api/internal/repository"
)

// defaultImageURL is served when a submission carries no image.
const defaultImageURL = "https://images.unsplash.com/photo-1677442135146-9bab59b7a31c?ixlib=rb-4.0.3&auto=format&fit=crop&w=700&q=80"

// ValidationError reports a missing or blank required field. Handlers map it
// to a 400 before any datastore call has been made.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field %q is missing or empty", e.Field)
}

// Submission is the canonical field set after alias normalization.
type Submission struct {
	Name           string
	Description    string
	URL            string
	Category       string
	Pricing        string
	Features       []string
	Tags           []string
	ImageURL       string
	ReelURL        string
	SubmitterName  string
	SubmitterEmail string
}

// fieldAliases maps each canonical field to every key historical client form
// versions have used for it. First present non-blank alias wins.
var fieldAliases = map[string][]string{
	"name":           {"name", "toolName", "tool-name", "tool_name"},
	"description":    {"description", "toolDescription", "tool-description", "tool_description"},
	"url":            {"url", "website", "toolWebsite", "tool-website", "tool_url"},
	"category":       {"category", "toolCategory", "tool-category", "tool_category"},
	"pricing":        {"pricing", "pricingTier", "pricing_type"},
	"imageUrl":       {"imageUrl", "image_url", "image"},
	"reelUrl":        {"reelUrl", "reel_url"},
	"submitterName":  {"submitterName", "submitter_name", "contributorName", "contributor_name"},
	"submitterEmail": {"submitterEmail", "submitter_email"},
}

// Normalize collapses a free-form inbound field set to the canonical schema.
// It does not validate; Submit does that after trimming.
func Normalize(fields map[string]interface{}) Submission {
	return Submission{
		Name:           aliasString(fields, "name"),
		Description:    aliasString(fields, "description"),
		URL:            aliasString(fields, "url"),
		Category:       aliasString(fields, "category"),
		Pricing:        aliasString(fields, "pricing"),
		Features:       tokenList(fields["features"]),
		Tags:           tokenList(fields["tags"]),
		ImageURL:       aliasString(fields, "imageUrl"),
		ReelURL:        aliasString(fields, "reelUrl"),
		SubmitterName:  aliasString(fields, "submitterName"),
		SubmitterEmail: aliasString(fields, "submitterEmail"),
	}
}

type Service struct {
	tools         repository.ToolRepository
	reels         repository.ReelRepository
	notifications notification.Service
	logger        zerolog.Logger
}

func NewService(tools repository.ToolRepository, reels repository.ReelRepository, notifications notification.Service, logger zerolog.Logger) *Service {
	return &Service{
		tools:         tools,
		reels:         reels,
		notifications: notifications,
		logger:        logger.With().Str("component", "intake").Logger(),
	}
}

// Submit validates a normalized submission and writes the pending tool.
// The notification, reel link, and admin email are best-effort side effects;
// their failures are logged and never fail the submission.
func (s *Service) Submit(ctx context.Context, sub Submission) (models.Tool, error) {
	required := []struct {
		field string
		value string
	}{
		{"name", sub.Name},
		{"description", sub.Description},
		{"url", sub.URL},
		{"category", sub.Category},
		{"submitterName", sub.SubmitterName},
	}
	for _, req := range required {
		if strings.TrimSpace(req.value) == "" {
			return models.Tool{}, &ValidationError{Field: req.field}
		}
	}

	imageURL := strings.TrimSpace(sub.ImageURL)
	if imageURL == "" {
		imageURL = defaultImageURL
	}

	tool := models.Tool{
		Name:          strings.TrimSpace(sub.Name),
		Description:   strings.TrimSpace(sub.Description),
		URL:           strings.TrimSpace(sub.URL),
		Category:      strings.TrimSpace(sub.Category),
		Pricing:       models.NormalizePricing(sub.Pricing),
		Tags:          mergeTokens(sub.Features, sub.Tags),
		ImageURL:      imageURL,
		SubmitterName: strings.TrimSpace(sub.SubmitterName),
		Status:        models.ToolStatusPending,
		// Rating floor required by the store's CHECK constraint, not a real rating.
		Rating:   1,
		Verified: false,
	}
	if email := strings.TrimSpace(sub.SubmitterEmail); email != "" {
		tool.SubmitterEmail = &email
	}

	created, err := s.tools.Insert(ctx, tool)
	if err != nil {
		return models.Tool{}, err
	}

	s.notifications.NotifyNewTool(ctx, created)

	if reelURL := strings.TrimSpace(sub.ReelURL); reelURL != "" {
		if _, err := s.reels.Create(ctx, created.ID, created.Name, reelURL); err != nil {
			s.logger.Warn().Err(err).Str("tool_id", created.ID).Msg("reel link not recorded")
		}
	}

	return created, nil
}

func aliasString(fields map[string]interface{}, canonical string) string {
	for _, key := range fieldAliases[canonical] {
		if raw, ok := fields[key]; ok {
			if str, ok := raw.(string); ok && strings.TrimSpace(str) != "" {
				return str
			}
		}
	}
	return ""
}

// tokenList accepts either a comma-separated string or a JSON array and
// returns trimmed, deduplicated tokens in their original order.
func tokenList(raw interface{}) []string {
	switch v := raw.(type) {
	case string:
		return dedupTokens(strings.Split(v, ","))
	case []string:
		return dedupTokens(v)
	case []interface{}:
		tokens := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				tokens = append(tokens, str)
			}
		}
		return dedupTokens(tokens)
	}
	return nil
}

func dedupTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	var result []string
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		result = append(result, token)
	}
	return result
}

func mergeTokens(features, tags []string) []string {
	merged := make([]string, 0, len(features)+len(tags))
	merged = append(merged, features...)
	merged = append(merged, tags...)
	return dedupTokens(merged)
}
