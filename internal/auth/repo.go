package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, name, created_at FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// PasswordHash returns the stored bcrypt hash, or ErrUserNotFound when the
// account has no password credential (Google-only accounts).
func (r *Repo) PasswordHash(ctx context.Context, userID string) (string, error) {
	var hash string
	err := r.DB.QueryRow(ctx, `
		SELECT password_hash FROM auth_credentials WHERE user_id = $1`, userID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return hash, err
}

// CreateWithPassword inserts the user and its credential in one transaction.
func (r *Repo) CreateWithPassword(ctx context.Context, email, name, passwordHash string) (*User, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u := &User{ID: uuid.NewString(), Email: email, Name: name}
	err = tx.QueryRow(ctx, `
		INSERT INTO users(id, email, name) VALUES ($1, $2, $3)
		RETURNING created_at`, u.ID, u.Email, u.Name).Scan(&u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO auth_credentials(user_id, password_hash) VALUES ($1, $2)`,
		u.ID, passwordHash); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateWithoutPassword inserts a user with no credential row (Google login).
func (r *Repo) CreateWithoutPassword(ctx context.Context, email, name string) (*User, error) {
	u := &User{ID: uuid.NewString(), Email: email, Name: name}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO users(id, email, name) VALUES ($1, $2, $3)
		RETURNING created_at`, u.ID, u.Email, u.Name).Scan(&u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
