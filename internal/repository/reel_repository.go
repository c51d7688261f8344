package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/toolindex/toolindex-api/internal/models"
)

type ReelRepository interface {
	Create(ctx context.Context, toolID, toolName, url string) (models.Reel, error)
	ListRecent(ctx context.Context) ([]models.Reel, error)
}

type reelRepository struct {
	db *sql.DB
}

func NewReelRepository(db *sql.DB) ReelRepository {
	return &reelRepository{db: db}
}

func (r *reelRepository) Create(ctx context.Context, toolID, toolName, url string) (models.Reel, error) {
	const query = `
		INSERT INTO directory.reels (tool_id, tool_name, url)
		VALUES ($1, $2, $3)
		RETURNING id, tool_id, tool_name, url, created_at
	`

	var reel models.Reel
	err := r.db.QueryRowContext(ctx, query, toolID, toolName, url).Scan(
		&reel.ID,
		&reel.ToolID,
		&reel.ToolName,
		&reel.URL,
		&reel.CreatedAt,
	)
	if err != nil {
		return models.Reel{}, errors.Wrap(err, "insert reel")
	}
	return reel, nil
}

func (r *reelRepository) ListRecent(ctx context.Context) ([]models.Reel, error) {
	const query = `
		SELECT id, tool_id, tool_name, url, created_at
		FROM directory.reels
		ORDER BY created_at DESC
	`

	var reels []models.Reel
	err := withReadRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		reels = reels[:0]
		for rows.Next() {
			var reel models.Reel
			if err := rows.Scan(&reel.ID, &reel.ToolID, &reel.ToolName, &reel.URL, &reel.CreatedAt); err != nil {
				return err
			}
			reels = append(reels, reel)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, "list reels")
	}
	return reels, nil
}
