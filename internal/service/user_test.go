package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rossfinn/minimart/internal/domain"
)

type mockUserStore struct {
	CreateUserFn         func(ctx context.Context, user *domain.User, passwordHash string) error
	UserByEmailFn        func(ctx context.Context, email string) (*domain.User, string, error)
	RecordLoginFn        func(ctx context.Context, userID uuid.UUID, at time.Time) error
	CreateSessionFn      func(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error
	UserBySessionTokenFn func(ctx context.Context, token string) (*domain.User, error)
	DeleteSessionFn      func(ctx context.Context, token string) error
}

func (m *mockUserStore) CreateUser(ctx context.Context, user *domain.User, passwordHash string) error {
	return m.CreateUserFn(ctx, user, passwordHash)
}
func (m *mockUserStore) UserByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	return m.UserByEmailFn(ctx, email)
}
func (m *mockUserStore) RecordLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	if m.RecordLoginFn == nil {
		return nil
	}
	return m.RecordLoginFn(ctx, userID, at)
}
func (m *mockUserStore) CreateSession(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	if m.CreateSessionFn == nil {
		return nil
	}
	return m.CreateSessionFn(ctx, token, userID, expiresAt)
}
func (m *mockUserStore) UserBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	return m.UserBySessionTokenFn(ctx, token)
}
func (m *mockUserStore) DeleteSession(ctx context.Context, token string) error {
	return m.DeleteSessionFn(ctx, token)
}

func TestSignup_HashesPasswordAndNormalizesEmail(t *testing.T) {
	var gotUser *domain.User
	var gotHash string
	store := &mockUserStore{
		CreateUserFn: func(_ context.Context, user *domain.User, passwordHash string) error {
			gotUser = user
			gotHash = passwordHash
			return nil
		},
	}
	svc := NewUserService(store)

	user, err := svc.Signup(context.Background(), domain.SignupParams{
		Email:       "  Shopper@Example.COM ",
		Password:    "correct horse battery",
		DisplayName: "Shopper",
	})
	require.NoError(t, err)
	require.Equal(t, "shopper@example.com", user.Email)
	require.Equal(t, domain.RoleCustomer, user.Role)
	require.Equal(t, user, gotUser)

	require.NotContains(t, gotHash, "correct horse")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(gotHash), []byte("correct horse battery")))
}

func TestSignup_Validation(t *testing.T) {
	store := &mockUserStore{
		CreateUserFn: func(_ context.Context, _ *domain.User, _ string) error {
			t.Fatal("store must not be reached for invalid input")
			return nil
		},
	}
	svc := NewUserService(store)
	ctx := context.Background()

	tests := []struct {
		name   string
		params domain.SignupParams
	}{
		{"bad email", domain.SignupParams{Email: "nope", Password: "long enough pw", DisplayName: "X"}},
		{"short password", domain.SignupParams{Email: "a@b.com", Password: "short", DisplayName: "X"}},
		{"missing name", domain.SignupParams{Email: "a@b.com", Password: "long enough pw", DisplayName: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.params)
			require.True(t, domain.IsCode(err, domain.EINVALID), "got %v", err)
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	store := &mockUserStore{
		CreateUserFn: func(_ context.Context, _ *domain.User, _ string) error {
			return domain.ErrEmailTaken
		},
	}
	svc := NewUserService(store)

	_, err := svc.Signup(context.Background(), domain.SignupParams{
		Email:       "taken@example.com",
		Password:    "long enough pw",
		DisplayName: "X",
	})
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func loginFixture(t *testing.T, password string) (*domain.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:    uuid.New(),
		Email: "shopper@example.com",
		Role:  domain.RoleCustomer,
	}, string(hash)
}

func TestLogin_Success(t *testing.T) {
	user, hash := loginFixture(t, "opensesame123")
	var sessionToken string
	store := &mockUserStore{
		UserByEmailFn: func(_ context.Context, email string) (*domain.User, string, error) {
			require.Equal(t, "shopper@example.com", email)
			u := *user
			return &u, hash, nil
		},
		CreateSessionFn: func(_ context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
			sessionToken = token
			require.Equal(t, user.ID, userID)
			require.True(t, expiresAt.After(time.Now()))
			return nil
		},
	}
	svc := NewUserService(store)

	got, token, err := svc.Login(context.Background(), " Shopper@Example.com ", "opensesame123")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.NotEmpty(t, token)
	require.Equal(t, sessionToken, token)
	require.False(t, got.LastLoginAt.IsZero())
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	user, hash := loginFixture(t, "opensesame123")
	store := &mockUserStore{
		UserByEmailFn: func(_ context.Context, email string) (*domain.User, string, error) {
			if email == user.Email {
				u := *user
				return &u, hash, nil
			}
			return nil, "", domain.ErrUserNotFound
		},
	}
	svc := NewUserService(store)
	ctx := context.Background()

	_, _, wrongPw := svc.Login(ctx, user.Email, "wrong password")
	_, _, unknown := svc.Login(ctx, "ghost@example.com", "whatever12345")

	require.ErrorIs(t, wrongPw, domain.ErrInvalidCredentials)
	require.ErrorIs(t, unknown, domain.ErrInvalidCredentials)
	require.Equal(t, wrongPw.Error(), unknown.Error(), "responses must not reveal whether the account exists")
}

func TestLogin_EmptyCredentials(t *testing.T) {
	svc := NewUserService(&mockUserStore{})
	_, _, err := svc.Login(context.Background(), "", "")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogout_UnknownTokenIsNoop(t *testing.T) {
	store := &mockUserStore{
		DeleteSessionFn: func(_ context.Context, _ string) error {
			return domain.NotFound("postgres.session.delete", "session", "x")
		},
	}
	svc := NewUserService(store)

	require.NoError(t, svc.Logout(context.Background(), "stale-token"))
	require.NoError(t, svc.Logout(context.Background(), ""))
}

func TestGetBySessionToken(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Email: "shopper@example.com"}
	store := &mockUserStore{
		UserBySessionTokenFn: func(_ context.Context, token string) (*domain.User, error) {
			if token == "good" {
				return user, nil
			}
			return nil, domain.NotFound("postgres.session.user_by_token", "session", token)
		},
	}
	svc := NewUserService(store)
	ctx := context.Background()

	got, err := svc.GetBySessionToken(ctx, "good")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = svc.GetBySessionToken(ctx, "expired")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = svc.GetBySessionToken(ctx, "")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestGenerateSessionToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateSessionToken()
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.False(t, seen[token], "token collision")
		seen[token] = true
	}
}

func TestNewAnonymousKey_PerSessionUnique(t *testing.T) {
	a := NewAnonymousKey()
	b := NewAnonymousKey()
	require.NotEqual(t, a, b)
	require.Contains(t, a, "anon-")
}
