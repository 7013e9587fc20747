package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/crucial707/flowchart-api/internal/models"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User
// ==========================

// Create inserts a user with a server-generated id. The unique indexes on
// email and username are authoritative: a violation surfaces as ErrDuplicate
// even when a pre-check passed moments earlier.
func (r *UserRepo) Create(ctx context.Context, email, username, hashedPassword string) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, username, hashed_password, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, username, hashed_password, created_at
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, uuid.NewString(), email, username, hashedPassword, time.Now().UTC()).
		Scan(&user.ID, &user.Email, &user.Username, &user.HashedPassword, &user.CreatedAt)

	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By ID
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, username, hashed_password, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, email, username, hashed_password, created_at
		FROM users
		WHERE username = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, username))
}

// ==========================
// Get By Email Or Username
// ==========================

// GetByEmailOrUsername is the advisory pre-insert uniqueness check. It is
// subject to a race with concurrent registrations; Create's constraint
// handling is the source of truth.
func (r *UserRepo) GetByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	query := `
		SELECT id, email, username, hashed_password, created_at
		FROM users
		WHERE email = $1 OR username = $2
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email, username))
}

func (r *UserRepo) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.HashedPassword, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
