package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rossfinn/minimart/internal/domain"
)

// SessionTTL is how long a login session stays valid without re-auth.
const SessionTTL = 7 * 24 * time.Hour

const bcryptCost = 12

// UserStore is the persistence contract for accounts and sessions.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User, passwordHash string) error
	UserByEmail(ctx context.Context, email string) (*domain.User, string, error)
	RecordLogin(ctx context.Context, userID uuid.UUID, at time.Time) error

	CreateSession(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error
	UserBySessionToken(ctx context.Context, token string) (*domain.User, error)
	DeleteSession(ctx context.Context, token string) error
}

type userService struct {
	store    UserStore
	validate *validator.Validate
	now      func() time.Time
}

// NewUserService creates the account and session service.
func NewUserService(store UserStore) domain.UserService {
	return &userService{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

func (s *userService) Signup(ctx context.Context, params domain.SignupParams) (*domain.User, error) {
	const op = "user.signup"

	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	params.DisplayName = strings.TrimSpace(params.DisplayName)

	if err := s.validate.Struct(params); err != nil {
		return nil, domain.Invalid(op, validationMessage(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to hash password")
	}

	now := s.now()
	user := &domain.User{
		ID:          uuid.New(),
		Email:       params.Email,
		DisplayName: params.DisplayName,
		Role:        domain.RoleCustomer,
		CreatedAt:   now,
	}

	if err := s.store.CreateUser(ctx, user, string(hash)); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and opens a session. Unknown emails and wrong
// passwords return the same error so callers cannot probe for accounts.
func (s *userService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	const op = "user.login"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", domain.ErrInvalidCredentials
	}

	user, hash, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, "", domain.Internal(err, op, "failed to generate session token")
	}

	now := s.now()
	if err := s.store.CreateSession(ctx, token, user.ID, now.Add(SessionTTL)); err != nil {
		return nil, "", err
	}
	if err := s.store.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, "", err
	}
	user.LastLoginAt = now

	return user, token, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.store.DeleteSession(ctx, token)
	if err != nil && domain.IsCode(err, domain.ENOTFOUND) {
		return nil
	}
	return err
}

func (s *userService) GetBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}
	user, err := s.store.UserBySessionToken(ctx, token)
	if err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) && derr.Code == domain.ENOTFOUND {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return user, nil
}
