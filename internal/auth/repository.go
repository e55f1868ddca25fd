package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/lib/pq"
)

var (
	ErrUserNotFound      = errors.New("umpire not found")
	ErrEmailOrUserExists = errors.New("email or username already exists")
)

// Umpire is an account allowed to officiate matches, decoupled from the database schema.
type Umpire struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
}

// Repository defines the storage operations for umpire accounts.
type Repository interface {
	CreateUmpire(ctx context.Context, email, username, hashedPassword string) (string, error)
	GetUmpireByEmail(ctx context.Context, email string) (*Umpire, error)
}

type postgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

// CreateUmpire inserts a new umpire and returns its generated ID.
func (r *postgresRepository) CreateUmpire(ctx context.Context, email, username, hashedPassword string) (string, error) {
	query := `
		INSERT INTO umpires (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id;`

	var id string
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(email), username, hashedPassword).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			slog.Warn("Attempted to register umpire with duplicate email or username", "email", email, "username", username)
			return "", ErrEmailOrUserExists
		}
		slog.Error("Failed to create umpire in database", "error", err)
		return "", err
	}

	return id, nil
}

// GetUmpireByEmail fetches an umpire by email address, case-insensitively.
func (r *postgresRepository) GetUmpireByEmail(ctx context.Context, email string) (*Umpire, error) {
	query := `
		SELECT id, email, username, password_hash
		FROM umpires
		WHERE email = $1;`

	var u Umpire
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(email)).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		slog.Error("Failed to get umpire by email from database", "error", err)
		return nil, err
	}

	return &u, nil
}
