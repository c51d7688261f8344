package moderation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolindex/toolindex-api/internal/models"
	"github.com/toolindex/toolindex-api/internal/repository"
)

// memToolRepo is an in-memory ToolRepository mirroring the Postgres
// filter, sort, and transition semantics.
type memToolRepo struct {
	tools map[string]models.Tool
	order []string
	seq   int
	now   func() time.Time
}

func newMemToolRepo() *memToolRepo {
	return &memToolRepo{
		tools: map[string]models.Tool{},
		now:   time.Now,
	}
}

func (m *memToolRepo) Insert(ctx context.Context, tool models.Tool) (models.Tool, error) {
	m.seq++
	tool.ID = fmt.Sprintf("id-%d", m.seq)
	if tool.CreatedAt.IsZero() {
		tool.CreatedAt = m.now()
	}
	tool.UpdatedAt = tool.CreatedAt
	m.tools[tool.ID] = tool
	m.order = append(m.order, tool.ID)
	return tool, nil
}

func (m *memToolRepo) GetByID(ctx context.Context, id string) (models.Tool, error) {
	tool, ok := m.tools[id]
	if !ok {
		return models.Tool{}, repository.ErrNotFound
	}
	return tool, nil
}

func (m *memToolRepo) matches(tool models.Tool, filter repository.ToolFilter) bool {
	if filter.Status != "" && tool.Status != filter.Status {
		return false
	}
	if filter.Category != "" && tool.Category != filter.Category {
		return false
	}
	if filter.Pricing != "" && tool.Pricing != filter.Pricing {
		return false
	}
	if filter.CreatedAfter != nil && tool.CreatedAt.Before(*filter.CreatedAfter) {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		hit := strings.Contains(strings.ToLower(tool.Name), search) ||
			strings.Contains(strings.ToLower(tool.Description), search) ||
			strings.Contains(strings.ToLower(tool.Category), search)
		for _, tag := range tool.Tags {
			hit = hit || strings.Contains(strings.ToLower(tag), search)
		}
		if !hit {
			return false
		}
	}
	for _, feature := range filter.Features {
		found := false
		for _, tag := range tool.Tags {
			if tag == feature {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *memToolRepo) filtered(filter repository.ToolFilter) []models.Tool {
	var tools []models.Tool
	for _, id := range m.order {
		tool, ok := m.tools[id]
		if ok && m.matches(tool, filter) {
			tools = append(tools, tool)
		}
	}

	sort.SliceStable(tools, func(i, j int) bool {
		var less bool
		if filter.SortField == "tool_name" {
			less = tools[i].Name < tools[j].Name
		} else {
			less = tools[i].CreatedAt.Before(tools[j].CreatedAt)
		}
		if filter.SortAsc {
			return less
		}
		return !less
	})
	return tools
}

func (m *memToolRepo) List(ctx context.Context, filter repository.ToolFilter) ([]models.Tool, error) {
	tools := m.filtered(filter)
	if filter.Limit > 0 {
		if filter.Offset >= len(tools) {
			return nil, nil
		}
		tools = tools[filter.Offset:]
		if len(tools) > filter.Limit {
			tools = tools[:filter.Limit]
		}
	}
	return tools, nil
}

func (m *memToolRepo) Count(ctx context.Context, filter repository.ToolFilter) (int, error) {
	return len(m.filtered(filter)), nil
}

func (m *memToolRepo) UpdateStatus(ctx context.Context, id string, status models.ToolStatus, reason *string) (models.Tool, error) {
	tool, ok := m.tools[id]
	if !ok {
		return models.Tool{}, repository.ErrNotFound
	}

	now := m.now()
	tool.Status = status
	tool.UpdatedAt = now
	switch status {
	case models.ToolStatusApproved:
		tool.ApprovedAt = &now
		tool.RejectedAt = nil
		tool.RejectionReason = nil
	case models.ToolStatusRejected:
		tool.RejectedAt = &now
		tool.ApprovedAt = nil
		tool.RejectionReason = reason
	case models.ToolStatusPending:
		tool.ApprovedAt = nil
		tool.RejectedAt = nil
		tool.RejectionReason = nil
	}
	m.tools[id] = tool
	return tool, nil
}

func (m *memToolRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.tools[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.tools, id)
	return nil
}

func (m *memToolRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	var categories []string
	for _, id := range m.order {
		tool, ok := m.tools[id]
		if !ok || strings.TrimSpace(tool.Category) == "" {
			continue
		}
		if _, dup := seen[tool.Category]; dup {
			continue
		}
		seen[tool.Category] = struct{}{}
		categories = append(categories, tool.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (m *memToolRepo) Stats(ctx context.Context) (models.DirectoryStats, error) {
	stats := models.DirectoryStats{CategoryDistribution: map[string]int{}}
	contributors := map[string]struct{}{}
	ratingSum, approved := 0, 0
	for _, tool := range m.tools {
		stats.TotalTools++
		switch tool.Status {
		case models.ToolStatusPending:
			stats.PendingSubmissions++
		case models.ToolStatusApproved:
			stats.ApprovedTools++
			ratingSum += tool.Rating
			approved++
		}
		if strings.TrimSpace(tool.SubmitterName) != "" {
			contributors[tool.SubmitterName] = struct{}{}
		}
		if strings.TrimSpace(tool.Category) != "" {
			stats.CategoryDistribution[tool.Category]++
		}
	}
	stats.Contributors = len(contributors)
	if approved > 0 {
		stats.AvgRating = float64(ratingSum) / float64(approved)
	}
	return stats, nil
}

func newTestEngine(repo *memToolRepo) *Engine {
	return NewEngine(repo, zerolog.Nop())
}

func seedTool(t *testing.T, repo *memToolRepo, name string, status models.ToolStatus, createdAt time.Time) models.Tool {
	t.Helper()
	tool, err := repo.Insert(context.Background(), models.Tool{
		Name:          name,
		Description:   "desc",
		URL:           "https://example.com",
		Category:      "Writing",
		Pricing:       models.PricingFree,
		SubmitterName: "Jane",
		Status:        status,
		Rating:        1,
		CreatedAt:     createdAt,
	})
	require.NoError(t, err)
	return tool
}

func TestApproveOneTransitionsPending(t *testing.T) {
	repo := newMemToolRepo()
	engine := newTestEngine(repo)
	tool := seedTool(t, repo, "Foo", models.ToolStatusPending, time.Now())

	approved, err := engine.ApproveOne(context.Background(), tool.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ToolStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	assert.Nil(t, approved.RejectedAt)
	assert.Nil(t, approved.RejectionReason)
}

func TestApproveOneIdempotent(t *testing.T) {
	repo := newMemToolRepo()
	engine := newTestEngine(repo)
	tool := seedTool(t, repo, "Foo", models.ToolStatusPending, time.Now())

	first, err := engine.ApproveOne(context.Background(), tool.ID)
	require.NoError(t, err)

	second, err := engine.ApproveOne(context.Background(), tool.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ApprovedAt, second.ApprovedAt, "re-approving must not re-stamp")
}

func TestApproveClearsStaleRejection(t *testing.T) {
	repo := newMemToolRepo()
	engine := newTestEngine(repo)
	tool := seedTool(t, repo, "Foo", models.ToolStatusPending, time.Now())

	_, err := engine.RejectOne(context.Background(), tool.ID, "spam")
	require.NoError(t, err)

	approved, err := engine.ApproveOne(context.Background(), tool.ID)
	require.NoError(t, err)
	assert.Nil(t, approved.RejectionReason)
	assert.Nil(t, approved.RejectedAt)
}

func TestRejectOneDefaultReason(t *testing.T) {
	repo := newMemToolRepo()
	engine := newTestEngine(repo)
	tool := seedTool(t, repo, "Foo", models.ToolStatusPending, time.Now())

	rejected, err := engine.RejectOne(context.Background(), tool.ID, "   ")
	require.NoError(t, err)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, DefaultRejectionReason, *rejected.RejectionReason)
	assert.NotNil(t, rejected.RejectedAt)
}

func TestRejectOneKeepsExplicitReason(t *testing.T) {
	repo := newMemToolRepo()
	engine := newTestEngine(repo)
	tool := seedTool(t, repo, "Foo", models.ToolStatusPending, time.Now())

	rejected, err := engine.RejectOne(context.Background(), tool.ID, " duplicate listing ")
	require.NoError(t, err)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "duplicate listing", *rejected.RejectionReason)
}

func TestToggleStatusFlipsAndSkipsRejected(t *testing.T) {
	repo := newMemToolRepo()
	engine := newTestEngine(repo)
	pending := seedTool(t, repo, "Pending", models.ToolStatusPending, time.Now())
	approved := seedTool(t, repo, "Approved", models.ToolStatusApproved, time.Now())
	rejected := seedTool(t, repo, "Rejected", models.ToolStatusRejected, time.Now())

	report := engine.ToggleStatus(context.Background(), []string{pending.ID, approved.ID, rejected.ID})

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)

	got, _ := repo.GetByID(context.Background(), pending.ID)
	assert.Equal(t, models.ToolStatusApproved, got.Status)
	got, _ = repo.GetByID(context.Background(), approved.ID)
	assert.Equal(t, models.ToolStatusPending, got.Status)
	got, _ = repo.GetByID(context.Background(), rejected.ID)
	assert.Equal(t, models.ToolStatusRejected, got.Status, "rejected is not eligible for toggle")

	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, "skipped", report.Outcomes[2].Result)
	assert.Equal(t, rejected.ID, report.Outcomes[2].ID)
}

func TestBulkContinuesPastFailures(t *testing.T) {
	repo := newMemToolRepo()
	engine := newTestEngine(repo)
	tool := seedTool(t, repo, "Foo", models.ToolStatusPending, time.Now())

	report := engine.Approve(context.Background(), []string{"missing-id", tool.ID})

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, "failed", report.Outcomes[0].Result)
	assert.Equal(t, "tool not found", report.Outcomes[0].Error)
	assert.Equal(t, "ok", report.Outcomes[1].Result)

	got, _ := repo.GetByID(context.Background(), tool.ID)
	assert.Equal(t, models.ToolStatusApproved, got.Status)
}

func TestDeleteReportsMissing(t *testing.T) {
	repo := newMemToolRepo()
	engine := newTestEngine(repo)
	tool := seedTool(t, repo, "Foo", models.ToolStatusApproved, time.Now())

	report := engine.Delete(context.Background(), []string{tool.ID, "missing-id"})
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)

	_, err := repo.GetByID(context.Background(), tool.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListForReviewPagination(t *testing.T) {
	repo := newMemToolRepo()
	engine := newTestEngine(repo)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		seedTool(t, repo, fmt.Sprintf("Tool %02d", i), models.ToolStatusPending, base.Add(time.Duration(i)*time.Minute))
	}

	page, err := engine.ListForReview(context.Background(), ReviewFilter{
		Page:      2,
		PageSize:  10,
		SortField: "createdAt",
		SortOrder: "asc",
	})
	require.NoError(t, err)

	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Tools, 10)
	assert.Equal(t, "Tool 10", page.Tools[0].Name)
	assert.Equal(t, "Tool 19", page.Tools[9].Name)
}

func TestListForReviewClampsPageInputs(t *testing.T) {
	repo := newMemToolRepo()
	engine := newTestEngine(repo)
	seedTool(t, repo, "Foo", models.ToolStatusPending, time.Now())

	page, err := engine.ListForReview(context.Background(), ReviewFilter{Page: -3, PageSize: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Tools, 1)
}

func TestListForReviewStatusFilter(t *testing.T) {
	repo := newMemToolRepo()
	engine := newTestEngine(repo)
	seedTool(t, repo, "A", models.ToolStatusPending, time.Now())
	seedTool(t, repo, "B", models.ToolStatusApproved, time.Now())
	seedTool(t, repo, "C", models.ToolStatusRejected, time.Now())

	page, err := engine.ListForReview(context.Background(), ReviewFilter{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, page.Tools, 1)
	assert.Equal(t, "A", page.Tools[0].Name)

	page, err = engine.ListForReview(context.Background(), ReviewFilter{Status: "all"})
	require.NoError(t, err)
	assert.Len(t, page.Tools, 3)

	page, err = engine.ListForReview(context.Background(), ReviewFilter{Status: "garbage"})
	require.NoError(t, err)
	assert.Len(t, page.Tools, 3, "unknown status means no filter")
}

func TestListForReviewDateBounds(t *testing.T) {
	repo := newMemToolRepo()
	engine := newTestEngine(repo)

	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }

	seedTool(t, repo, "today", models.ToolStatusPending, now.Add(-2*time.Hour))
	seedTool(t, repo, "yesterday", models.ToolStatusPending, now.Add(-26*time.Hour))
	seedTool(t, repo, "lastweek", models.ToolStatusPending, now.Add(-9*24*time.Hour))
	seedTool(t, repo, "lastmonth", models.ToolStatusPending, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC))

	cases := []struct {
		dateRange string
		want      []string
	}{
		{"today", []string{"today"}},
		{"week", []string{"today", "yesterday"}},
		{"month", []string{"today", "yesterday", "lastweek"}},
		{"all", []string{"today", "yesterday", "lastweek", "lastmonth"}},
	}

	for _, tc := range cases {
		t.Run(tc.dateRange, func(t *testing.T) {
			page, err := engine.ListForReview(context.Background(), ReviewFilter{
				DateRange: tc.dateRange,
				SortField: "createdAt",
				SortOrder: "desc",
			})
			require.NoError(t, err)

			var names []string
			for _, tool := range page.Tools {
				names = append(names, tool.Name)
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestListForReviewSortByName(t *testing.T) {
	repo := newMemToolRepo()
	engine := newTestEngine(repo)
	seedTool(t, repo, "Zeta", models.ToolStatusPending, time.Now())
	seedTool(t, repo, "Alpha", models.ToolStatusPending, time.Now())

	page, err := engine.ListForReview(context.Background(), ReviewFilter{SortField: "name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, page.Tools, 2)
	assert.Equal(t, "Alpha", page.Tools[0].Name)
	assert.Equal(t, "Zeta", page.Tools[1].Name)
}

func TestStatsSnapshot(t *testing.T) {
	repo := newMemToolRepo()
	engine := newTestEngine(repo)
	seedTool(t, repo, "A", models.ToolStatusPending, time.Now())
	seedTool(t, repo, "B", models.ToolStatusApproved, time.Now())
	seedTool(t, repo, "C", models.ToolStatusApproved, time.Now())

	stats, err := engine.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTools)
	assert.Equal(t, 1, stats.PendingSubmissions)
	assert.Equal(t, 2, stats.ApprovedTools)
	assert.Equal(t, 1, stats.Contributors)
	assert.Equal(t, 3, stats.CategoryDistribution["Writing"])
}
