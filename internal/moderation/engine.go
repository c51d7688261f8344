package moderation

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/toolindex/toolindex-api/internal/models"
	"github.com/toolindex/toolindex-api/internal/repository"
)

// DefaultRejectionReason is stored when a reject request carries no reason.
const DefaultRejectionReason = "No reason provided"

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ReviewFilter is the admin review queue query.
type ReviewFilter struct {
	Status    string // all | pending | approved | rejected
	Category  string // category name or "all"
	DateRange string // all | today | week | month
	Page      int
	PageSize  int
	SortField string // name | createdAt
	SortOrder string // asc | desc
}

// ReviewPage is one page of the filtered, sorted review queue.
type ReviewPage struct {
	Tools      []models.Tool `json:"submissions"`
	Total      int           `json:"totalCount"`
	Page       int           `json:"currentPage"`
	TotalPages int           `json:"totalPages"`
}

// Outcome reports what happened to a single id inside a bulk action.
type Outcome struct {
	ID     string `json:"id"`
	Result string `json:"result"` // ok | skipped | failed
	Error  string `json:"error,omitempty"`
}

// Report is the per-id outcome list for a bulk action. The batch keeps going
// past individual failures.
type Report struct {
	Outcomes  []Outcome `json:"outcomes"`
	Succeeded int       `json:"succeeded"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Result {
	case "ok":
		r.Succeeded++
	case "skipped":
		r.Skipped++
	default:
		r.Failed++
	}
}

// Engine enforces the submission status state machine:
// pending → approved, pending → rejected, and the admin toggle
// approved ⇄ pending. Rejected tools are never touched by toggle.
type Engine struct {
	tools  repository.ToolRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewEngine(tools repository.ToolRepository, logger zerolog.Logger) *Engine {
	return &Engine{
		tools:  tools,
		logger: logger.With().Str("component", "moderation").Logger(),
		now:    time.Now,
	}
}

// ListForReview returns one page of the review queue plus the total count of
// matching records and the computed page count.
func (e *Engine) ListForReview(ctx context.Context, filter ReviewFilter) (ReviewPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	repoFilter := repository.ToolFilter{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}

	if status := models.ToolStatus(filter.Status); filter.Status != "" && filter.Status != "all" && models.IsValidStatus(status) {
		repoFilter.Status = status
	}
	if filter.Category != "" && filter.Category != "all" {
		repoFilter.Category = filter.Category
	}
	if bound, ok := e.dateBound(filter.DateRange); ok {
		repoFilter.CreatedAfter = &bound
	}

	if filter.SortField == "name" {
		repoFilter.SortField = "tool_name"
	} else {
		repoFilter.SortField = "created_at"
	}
	repoFilter.SortAsc = strings.EqualFold(filter.SortOrder, "asc")

	total, err := e.tools.Count(ctx, repoFilter)
	if err != nil {
		return ReviewPage{}, err
	}
	tools, err := e.tools.List(ctx, repoFilter)
	if err != nil {
		return ReviewPage{}, err
	}
	if tools == nil {
		tools = []models.Tool{}
	}

	return ReviewPage{
		Tools:      tools,
		Total:      total,
		Page:       page,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// dateBound computes the inclusive created_at lower bound for a date range:
// today = local midnight, week = now minus seven days, month = first of the
// current month.
func (e *Engine) dateBound(dateRange string) (time.Time, bool) {
	now := e.now()
	switch dateRange {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	case "week":
		return now.Add(-7 * 24 * time.Hour), true
	case "month":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}

// Approve moves each id to approved. Already-approved tools are a no-op
// success, not an error.
func (e *Engine) Approve(ctx context.Context, ids []string) Report {
	var report Report
	for _, id := range ids {
		if _, err := e.ApproveOne(ctx, id); err != nil {
			report.add(e.failure(id, "approve", err))
			continue
		}
		report.add(Outcome{ID: id, Result: "ok"})
	}
	return report
}

// ApproveOne is the single-id transition used by the per-tool endpoint.
func (e *Engine) ApproveOne(ctx context.Context, id string) (models.Tool, error) {
	tool, err := e.tools.GetByID(ctx, id)
	if err != nil {
		return models.Tool{}, err
	}
	if tool.Status == models.ToolStatusApproved {
		return tool, nil
	}
	return e.tools.UpdateStatus(ctx, id, models.ToolStatusApproved, nil)
}

// Reject moves each id to rejected, storing reason (or the fixed default
// when blank).
func (e *Engine) Reject(ctx context.Context, ids []string, reason string) Report {
	var report Report
	for _, id := range ids {
		if _, err := e.RejectOne(ctx, id, reason); err != nil {
			report.add(e.failure(id, "reject", err))
			continue
		}
		report.add(Outcome{ID: id, Result: "ok"})
	}
	return report
}

func (e *Engine) RejectOne(ctx context.Context, id string, reason string) (models.Tool, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}
	return e.tools.UpdateStatus(ctx, id, models.ToolStatusRejected, &reason)
}

// ToggleStatus flips approved ⇄ pending. Rejected tools are not eligible and
// are reported as skipped rather than flipped or errored.
func (e *Engine) ToggleStatus(ctx context.Context, ids []string) Report {
	var report Report
	for _, id := range ids {
		tool, err := e.tools.GetByID(ctx, id)
		if err != nil {
			report.add(e.failure(id, "toggle", err))
			continue
		}

		switch tool.Status {
		case models.ToolStatusRejected:
			report.add(Outcome{ID: id, Result: "skipped", Error: "rejected tools cannot be toggled"})
		case models.ToolStatusApproved:
			if _, err := e.tools.UpdateStatus(ctx, id, models.ToolStatusPending, nil); err != nil {
				report.add(e.failure(id, "toggle", err))
				continue
			}
			report.add(Outcome{ID: id, Result: "ok"})
		default:
			if _, err := e.tools.UpdateStatus(ctx, id, models.ToolStatusApproved, nil); err != nil {
				report.add(e.failure(id, "toggle", err))
				continue
			}
			report.add(Outcome{ID: id, Result: "ok"})
		}
	}
	return report
}

// Delete hard-deletes each id. Never retried.
func (e *Engine) Delete(ctx context.Context, ids []string) Report {
	var report Report
	for _, id := range ids {
		if err := e.tools.Delete(ctx, id); err != nil {
			report.add(e.failure(id, "delete", err))
			continue
		}
		report.add(Outcome{ID: id, Result: "ok"})
	}
	return report
}

func (e *Engine) DeleteOne(ctx context.Context, id string) error {
	return e.tools.Delete(ctx, id)
}

// Categories lists the distinct non-empty categories across all tools.
func (e *Engine) Categories(ctx context.Context) ([]string, error) {
	return e.tools.DistinctCategories(ctx)
}

// Stats is the aggregate dashboard snapshot.
func (e *Engine) Stats(ctx context.Context) (models.DirectoryStats, error) {
	return e.tools.Stats(ctx)
}

func (e *Engine) failure(id, action string, err error) Outcome {
	e.logger.Error().Err(err).Str("tool_id", id).Str("action", action).Msg("bulk action item failed")
	msg := "datastore error"
	if errors.Is(err, repository.ErrNotFound) {
		msg = "tool not found"
	}
	return Outcome{ID: id, Result: "failed", Error: msg}
}
