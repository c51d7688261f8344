package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/toolindex/toolindex-api/internal/models"
)

// ErrNotFound is returned when an operation targets a row that does not exist.
var ErrNotFound = errors.New("record not found")

// ToolFilter narrows List/Count queries. Zero values mean "no filter".
type ToolFilter struct {
	Status       models.ToolStatus
	Category     string
	Pricing      models.PricingTier
	Search       string
	Features     []string
	CreatedAfter *time.Time
	SortField    string // "tool_name" or "created_at"
	SortAsc      bool
	Limit        int
	Offset       int
}

type ToolRepository interface {
	Insert(ctx context.Context, tool models.Tool) (models.Tool, error)
	GetByID(ctx context.Context, id string) (models.Tool, error)
	List(ctx context.Context, filter ToolFilter) ([]models.Tool, error)
	Count(ctx context.Context, filter ToolFilter) (int, error)
	UpdateStatus(ctx context.Context, id string, status models.ToolStatus, reason *string) (models.Tool, error)
	Delete(ctx context.Context, id string) error
	DistinctCategories(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (models.DirectoryStats, error)
}

type toolRepository struct {
	db *sql.DB
}

func NewToolRepository(db *sql.DB) ToolRepository {
	return &toolRepository{db: db}
}

const toolColumns = `id, tool_name, tool_description, tool_url, tool_category, pricing_type,
	tool_tags, tool_image, submitter_name, submitter_email, status, rejection_reason,
	rating, verified, created_at, updated_at, approved_at, rejected_at`

func (r *toolRepository) Insert(ctx context.Context, tool models.Tool) (models.Tool, error) {
	query := `
		INSERT INTO directory.ai_tools
			(tool_name, tool_description, tool_url, tool_category, pricing_type,
			 tool_tags, tool_image, submitter_name, submitter_email, status, rating, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + toolColumns

	row := r.db.QueryRowContext(ctx, query,
		tool.Name,
		tool.Description,
		tool.URL,
		tool.Category,
		tool.Pricing,
		pq.Array(tool.Tags),
		tool.ImageURL,
		tool.SubmitterName,
		tool.SubmitterEmail,
		tool.Status,
		tool.Rating,
		tool.Verified,
	)
	created, err := scanTool(row)
	if err != nil {
		return models.Tool{}, errors.Wrap(err, "insert tool")
	}
	return created, nil
}

func (r *toolRepository) GetByID(ctx context.Context, id string) (models.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM directory.ai_tools WHERE id = $1`

	var tool models.Tool
	err := withReadRetry(ctx, func() error {
		var scanErr error
		tool, scanErr = scanTool(r.db.QueryRowContext(ctx, query, id))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Tool{}, ErrNotFound
		}
		return models.Tool{}, errors.Wrap(err, "get tool")
	}
	return tool, nil
}

func (r *toolRepository) List(ctx context.Context, filter ToolFilter) ([]models.Tool, error) {
	where, args := buildToolWhere(filter)

	sortField := "created_at"
	if filter.SortField == "tool_name" {
		sortField = "tool_name"
	}
	direction := "DESC"
	if filter.SortAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM directory.ai_tools %s ORDER BY %s %s`,
		toolColumns, where, sortField, direction)
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	var tools []models.Tool
	err := withReadRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		tools = tools[:0]
		for rows.Next() {
			tool, err := scanTool(rows)
			if err != nil {
				return err
			}
			tools = append(tools, tool)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, "list tools")
	}
	return tools, nil
}

func (r *toolRepository) Count(ctx context.Context, filter ToolFilter) (int, error) {
	where, args := buildToolWhere(filter)
	query := "SELECT COUNT(*) FROM directory.ai_tools " + where

	var total int
	err := withReadRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, query, args...).Scan(&total)
	})
	if err != nil {
		return 0, errors.Wrap(err, "count tools")
	}
	return total, nil
}

// UpdateStatus writes a moderation transition. The column set depends on the
// target status: entering approved stamps approved_at and clears any stale
// rejection reason, entering rejected stamps rejected_at and stores the reason,
// returning to pending clears both.
func (r *toolRepository) UpdateStatus(ctx context.Context, id string, status models.ToolStatus, reason *string) (models.Tool, error) {
	var (
		query string
		args  []interface{}
	)

	switch status {
	case models.ToolStatusApproved:
		query = `
			UPDATE directory.ai_tools
			   SET status           = 'approved',
			       approved_at      = NOW(),
			       rejected_at      = NULL,
			       rejection_reason = NULL,
			       updated_at       = NOW()
			 WHERE id = $1
			RETURNING ` + toolColumns
		args = []interface{}{id}

	case models.ToolStatusRejected:
		query = `
			UPDATE directory.ai_tools
			   SET status           = 'rejected',
			       rejected_at      = NOW(),
			       approved_at      = NULL,
			       rejection_reason = $2,
			       updated_at       = NOW()
			 WHERE id = $1
			RETURNING ` + toolColumns
		args = []interface{}{id, reason}

	case models.ToolStatusPending:
		query = `
			UPDATE directory.ai_tools
			   SET status           = 'pending',
			       approved_at      = NULL,
			       rejected_at      = NULL,
			       rejection_reason = NULL,
			       updated_at       = NOW()
			 WHERE id = $1
			RETURNING ` + toolColumns
		args = []interface{}{id}

	default:
		return models.Tool{}, fmt.Errorf("invalid status %q", status)
	}

	tool, err := scanTool(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Tool{}, ErrNotFound
		}
		return models.Tool{}, errors.Wrap(err, "update tool status")
	}
	return tool, nil
}

func (r *toolRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM directory.ai_tools WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete tool")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete tool rows affected")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *toolRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	const query = `
		SELECT DISTINCT tool_category
		FROM directory.ai_tools
		WHERE tool_category IS NOT NULL AND TRIM(tool_category) <> ''
		ORDER BY tool_category
	`

	var categories []string
	err := withReadRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		categories = categories[:0]
		for rows.Next() {
			var category string
			if err := rows.Scan(&category); err != nil {
				return err
			}
			categories = append(categories, category)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return categories, nil
}

func (r *toolRepository) Stats(ctx context.Context) (models.DirectoryStats, error) {
	const totalsQuery = `
		SELECT
			COUNT(*)                                                          AS total,
			COALESCE(SUM((status = 'pending')::int), 0)                       AS pending,
			COALESCE(SUM((status = 'approved')::int), 0)                      AS approved,
			COUNT(DISTINCT submitter_name) FILTER (WHERE TRIM(submitter_name) <> '') AS contributors,
			COALESCE(AVG(rating) FILTER (WHERE status = 'approved'), 0)       AS avg_rating
		FROM directory.ai_tools
	`

	const categoriesQuery = `
		SELECT tool_category, COUNT(*)
		FROM directory.ai_tools
		WHERE tool_category IS NOT NULL AND TRIM(tool_category) <> ''
		GROUP BY tool_category
	`

	var stats models.DirectoryStats
	err := withReadRetry(ctx, func() error {
		row := r.db.QueryRowContext(ctx, totalsQuery)
		if err := row.Scan(&stats.TotalTools, &stats.PendingSubmissions, &stats.ApprovedTools, &stats.Contributors, &stats.AvgRating); err != nil {
			return err
		}

		rows, err := r.db.QueryContext(ctx, categoriesQuery)
		if err != nil {
			return err
		}
		defer rows.Close()

		stats.CategoryDistribution = map[string]int{}
		for rows.Next() {
			var category string
			var count int
			if err := rows.Scan(&category, &count); err != nil {
				return err
			}
			stats.CategoryDistribution[category] = count
		}
		return rows.Err()
	})
	if err != nil {
		return models.DirectoryStats{}, errors.Wrap(err, "load stats")
	}
	return stats, nil
}

func buildToolWhere(filter ToolFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)

	add := func(clause string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Category != "" {
		add("tool_category = $%d", filter.Category)
	}
	if filter.Pricing != "" {
		add("pricing_type = $%d", string(filter.Pricing))
	}
	if filter.CreatedAfter != nil {
		add("created_at >= $%d", *filter.CreatedAfter)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(tool_name ILIKE $%d OR tool_description ILIKE $%d OR tool_category ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(tool_tags) tag WHERE tag ILIKE $%d))",
			n, n, n, n))
	}
	if len(filter.Features) > 0 {
		add("tool_tags @> $%d", pq.Array(filter.Features))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func scanTool(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Tool, error) {
	var (
		tool            models.Tool
		tags            pq.StringArray
		submitterEmail  sql.NullString
		rejectionReason sql.NullString
		approvedAt      sql.NullTime
		rejectedAt      sql.NullTime
	)

	if err := scanner.Scan(
		&tool.ID,
		&tool.Name,
		&tool.Description,
		&tool.URL,
		&tool.Category,
		&tool.Pricing,
		&tags,
		&tool.ImageURL,
		&tool.SubmitterName,
		&submitterEmail,
		&tool.Status,
		&rejectionReason,
		&tool.Rating,
		&tool.Verified,
		&tool.CreatedAt,
		&tool.UpdatedAt,
		&approvedAt,
		&rejectedAt,
	); err != nil {
		return models.Tool{}, err
	}

	tool.Tags = tags
	if submitterEmail.Valid {
		val := submitterEmail.String
		tool.SubmitterEmail = &val
	}
	if rejectionReason.Valid {
		val := rejectionReason.String
		tool.RejectionReason = &val
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		tool.ApprovedAt = &t
	}
	if rejectedAt.Valid {
		t := rejectedAt.Time
		tool.RejectedAt = &t
	}

	return tool, nil
}
