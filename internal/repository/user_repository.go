package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/toolindex/toolindex-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserRepository interface {
	CreateAdmin(ctx context.Context, email, password string) (models.AdminUser, error)
	Authenticate(ctx context.Context, email, password string) (models.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (models.AdminUser, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (u *userRepository) CreateAdmin(ctx context.Context, email, password string) (models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return models.AdminUser{}, errors.New("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.AdminUser{}, err
	}

	const query = `
		INSERT INTO directory.admin_users (email, password_hash, is_active)
		VALUES ($1, $2, TRUE)
		RETURNING id, email, password_hash, is_active, created_at
	`

	var user models.AdminUser
	err = u.db.QueryRowContext(ctx, query, email, string(hash)).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		return models.AdminUser{}, errors.Wrap(err, "insert admin user")
	}
	return user, nil
}

func (u *userRepository) Authenticate(ctx context.Context, email, password string) (models.AdminUser, error) {
	user, err := u.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.AdminUser{}, ErrInvalidCredentials
		}
		return models.AdminUser{}, err
	}

	if !user.IsActive {
		return models.AdminUser{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.AdminUser{}, ErrInvalidCredentials
	}
	return user, nil
}

func (u *userRepository) GetByEmail(ctx context.Context, email string) (models.AdminUser, error) {
	const query = `
		SELECT id, email, password_hash, is_active, created_at
		FROM directory.admin_users
		WHERE email = $1
	`

	var user models.AdminUser
	err := u.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AdminUser{}, ErrNotFound
		}
		return models.AdminUser{}, errors.Wrap(err, "get admin user")
	}
	return user, nil
}
