package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rossfinn/minimart/internal/domain"
)

// UserStore persists accounts and login sessions.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) CreateUser(ctx context.Context, user *domain.User, passwordHash string) error {
	const op = "postgres.user.create"

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, display_name, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID,
		user.Email,
		user.DisplayName,
		string(user.Role),
		passwordHash,
		user.CreatedAt,
	)
	if err != nil {
		if uniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return domain.Internal(err, op, "failed to create user")
	}
	return nil
}

func (s *UserStore) UserByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	const op = "postgres.user.by_email"

	var user domain.User
	var role, hash string
	var lastLogin *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, display_name, role, password_hash, last_login_at, created_at
		FROM users
		WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &role, &hash, &lastLogin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", domain.ErrUserNotFound
		}
		return nil, "", domain.Internal(err, op, "failed to get user")
	}
	user.Role = domain.Role(role)
	if lastLogin != nil {
		user.LastLoginAt = *lastLogin
	}
	return &user, hash, nil
}

func (s *UserStore) RecordLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	const op = "postgres.user.record_login"

	_, err := s.pool.Exec(ctx,
		`UPDATE users SET last_login_at = $2 WHERE id = $1`,
		userID, at,
	)
	if err != nil {
		return domain.Internal(err, op, "failed to record login")
	}
	return nil
}

func (s *UserStore) CreateSession(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	const op = "postgres.session.create"

	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, now())`,
		token, userID, expiresAt,
	)
	if err != nil {
		return domain.Internal(err, op, "failed to create session")
	}
	return nil
}

// UserBySessionToken resolves an unexpired session to its user. Expired rows
// are treated as missing; a periodic delete keeps the table small but is not
// required for correctness.
func (s *UserStore) UserBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	const op = "postgres.session.user_by_token"

	var user domain.User
	var role string
	var lastLogin *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.display_name, u.role, u.last_login_at, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > now()`,
		token,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &role, &lastLogin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.Internal(err, op, "failed to resolve session")
	}
	user.Role = domain.Role(role)
	if lastLogin != nil {
		user.LastLoginAt = *lastLogin
	}
	return &user, nil
}

func (s *UserStore) DeleteSession(ctx context.Context, token string) error {
	const op = "postgres.session.delete"

	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return domain.Internal(err, op, "failed to delete session")
	}
	return nil
}
