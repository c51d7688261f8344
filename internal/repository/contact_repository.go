package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/toolindex/toolindex-api/internal/models"
)

type ContactRepository interface {
	Create(ctx context.Context, name, email, message string) (models.ContactMessage, error)
}

type contactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, name, email, message string) (models.ContactMessage, error) {
	const query = `
		INSERT INTO directory.contacts (name, email, message)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, message, created_at
	`

	var msg models.ContactMessage
	err := r.db.QueryRowContext(ctx, query, name, email, message).Scan(
		&msg.ID,
		&msg.Name,
		&msg.Email,
		&msg.Message,
		&msg.CreatedAt,
	)
	if err != nil {
		return models.ContactMessage{}, errors.Wrap(err, "insert contact message")
	}
	return msg, nil
}
