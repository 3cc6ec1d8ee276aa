package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"social_backend/internal/feature/auth/domain/entity"
	userentity "social_backend/internal/feature/user/domain/entity"
	userusecase "social_backend/internal/feature/user/usecase"
	"social_backend/internal/shared/apperror"
)

// mockUserRepository is a mock implementation of UserRepository.
type mockUserRepository struct {
	CreateFunc      func(user *userentity.User) error
	FindByEmailFunc func(email string) (*userentity.User, error)
}

func (m *mockUserRepository) Create(_ context.Context, user *userentity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(user)
	}
	user.ID = "new-user"
	return nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*userentity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(email)
	}
	return nil, userusecase.ErrUserNotFound
}

// mockSessionRepository keeps sessions in a map.
type mockSessionRepository struct {
	sessions      map[string]*entity.Session
	deletedOldest int
	CountFunc     func(userID string) (int64, error)
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: map[string]*entity.Session{}}
}

func (m *mockSessionRepository) Create(_ context.Context, s *entity.Session) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionRepository) FindByID(_ context.Context, id string) (*entity.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessionRepository) Revoke(_ context.Context, id string) error {
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.Revoke(time.Now())
	return nil
}

func (m *mockSessionRepository) RevokeAllByUserID(_ context.Context, userID string) error {
	now := time.Now()
	for _, s := range m.sessions {
		if s.UserID == userID {
			s.Revoke(now)
		}
	}
	return nil
}

func (m *mockSessionRepository) CountByUserID(_ context.Context, userID string) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(userID)
	}
	var n int64
	for _, s := range m.sessions {
		if s.UserID == userID && s.ActiveAt(time.Now()) {
			n++
		}
	}
	return n, nil
}

func (m *mockSessionRepository) DeleteOldestByUserID(_ context.Context, _ string) error {
	m.deletedOldest++
	return nil
}

// mockTokenManager issues "userID|sessionID" tokens.
type mockTokenManager struct {
	GenerateTokenFunc func(userID, sessionID string, expiresAt time.Time) (string, error)
}

func (m *mockTokenManager) GenerateToken(userID, sessionID string, expiresAt time.Time) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, sessionID, expiresAt)
	}
	return userID + "|" + sessionID, nil
}

func (m *mockTokenManager) ParseToken(token string) (string, string, error) {
	userID, sessionID, ok := strings.Cut(token, "|")
	if !ok {
		return "", "", errors.New("invalid token")
	}
	return userID, sessionID, nil
}

type mockPublisher struct {
	events []string
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event string, _ any) error {
	m.events = append(m.events, event)
	return m.err
}

func newTestUsecase(users UserRepository, sessions SessionRepository, publisher EventPublisher) *authUsecase {
	uc := NewAuthUsecase(users, sessions, &mockTokenManager{}, publisher, time.Hour)
	uc.cost = bcrypt.MinCost
	return uc
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestValidateSignup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   SignupInput
		wantMsg string
	}{
		{"empty name wins over everything", SignupInput{Name: "", Email: "bad", Password: ""}, MsgEnterName},
		{"short name", SignupInput{Name: "abc", Email: "bad", Password: ""}, MsgNameLength},
		{"long name", SignupInput{Name: "abcdefghijk", Email: "a@b.co", Password: "pass"}, MsgNameLength},
		{"invalid email", SignupInput{Name: "alice", Email: "not-an-email", Password: ""}, MsgEnterValidEmail},
		{"empty password", SignupInput{Name: "alice", Email: "a@b.co", Password: ""}, MsgEnterPassword},
		{"short password", SignupInput{Name: "alice", Email: "a@b.co", Password: "abc"}, MsgPasswordLength},
		{"long password", SignupInput{Name: "alice", Email: "a@b.co", Password: "abcdefghijk"}, MsgPasswordLength},
		{"multibyte name counts runes", SignupInput{Name: "山田太郎", Email: "a@b.co", Password: "pass"}, ""},
		{"valid", SignupInput{Name: "alice", Email: "a@b.co", Password: "pass1234"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ValidateSignup(tt.input)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			assert.Equal(t, tt.wantMsg, apperror.Message(err))
		})
	}
}

func TestAuthUsecase_Signup(t *testing.T) {
	t.Run("successful signup", func(t *testing.T) {
		var created *userentity.User
		users := &mockUserRepository{
			CreateFunc: func(user *userentity.User) error {
				created = user
				user.ID = "u1"
				return nil
			},
		}
		publisher := &mockPublisher{}
		uc := newTestUsecase(users, newMockSessionRepository(), publisher)

		user, err := uc.Signup(context.Background(), SignupInput{Name: " alice ", Email: "Alice@Example.com", Password: "pass1234"})
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "alice", created.Name)
		assert.Equal(t, "alice@example.com", created.Email)
		assert.NotEqual(t, "pass1234", created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("pass1234")))
		assert.Equal(t, []string{EventUserSignedUp}, publisher.events)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := &mockUserRepository{
			CreateFunc: func(*userentity.User) error { return userusecase.ErrEmailAlreadyExists },
		}
		uc := newTestUsecase(users, newMockSessionRepository(), nil)

		_, err := uc.Signup(context.Background(), SignupInput{Name: "alice", Email: "a@b.co", Password: "pass1234"})
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
		assert.Equal(t, userusecase.MsgEmailTaken, apperror.Message(err))
	})

	t.Run("repository failure", func(t *testing.T) {
		users := &mockUserRepository{
			CreateFunc: func(*userentity.User) error { return errors.New("db down") },
		}
		uc := newTestUsecase(users, newMockSessionRepository(), nil)

		_, err := uc.Signup(context.Background(), SignupInput{Name: "alice", Email: "a@b.co", Password: "pass1234"})
		assert.Equal(t, apperror.KindRepository, apperror.KindOf(err))
	})

	t.Run("publish failure does not fail signup", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{}, newMockSessionRepository(), &mockPublisher{err: errors.New("broker down")})

		_, err := uc.Signup(context.Background(), SignupInput{Name: "alice", Email: "a@b.co", Password: "pass1234"})
		assert.NoError(t, err)
	})

	t.Run("validation stops before hashing", func(t *testing.T) {
		users := &mockUserRepository{
			CreateFunc: func(*userentity.User) error {
				t.Fatal("Create must not be called")
				return nil
			},
		}
		uc := newTestUsecase(users, newMockSessionRepository(), nil)

		_, err := uc.Signup(context.Background(), SignupInput{Name: "al", Email: "a@b.co", Password: "pass1234"})
		assert.Equal(t, MsgNameLength, apperror.Message(err))
	})
}

func TestAuthUsecase_Signin(t *testing.T) {
	stored := &userentity.User{ID: "u1", Name: "alice", Email: "alice@example.com"}

	usersWith := func(t *testing.T) *mockUserRepository {
		stored.Password = hashed(t, "pass1234")
		return &mockUserRepository{
			FindByEmailFunc: func(email string) (*userentity.User, error) {
				if email == stored.Email {
					return stored, nil
				}
				return nil, userusecase.ErrUserNotFound
			},
		}
	}

	t.Run("successful signin opens a session", func(t *testing.T) {
		sessions := newMockSessionRepository()
		uc := newTestUsecase(usersWith(t), sessions, nil)

		result, err := uc.Signin(context.Background(), "ALICE@example.com", "pass1234", SessionMeta{UserAgent: "test", IPAddress: "127.0.0.1"})
		require.NoError(t, err)
		assert.Equal(t, "u1", result.User.ID)
		require.Len(t, sessions.sessions, 1)
		for id, s := range sessions.sessions {
			assert.Len(t, id, 64)
			assert.Equal(t, "u1|"+id, result.Token)
			assert.Equal(t, "test", s.UserAgent)
			assert.Equal(t, s.ExpiresAt, result.ExpiresAt)
		}
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		uc := newTestUsecase(usersWith(t), newMockSessionRepository(), nil)

		_, errWrong := uc.Signin(context.Background(), "alice@example.com", "nope", SessionMeta{})
		_, errUnknown := uc.Signin(context.Background(), "ghost@example.com", "pass1234", SessionMeta{})
		for _, err := range []error{errWrong, errUnknown} {
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			assert.Equal(t, MsgInvalidCredentials, apperror.Message(err))
		}
	})

	t.Run("session limit evicts the oldest", func(t *testing.T) {
		sessions := newMockSessionRepository()
		sessions.CountFunc = func(string) (int64, error) { return maxSessionsPerUser, nil }
		uc := newTestUsecase(usersWith(t), sessions, nil)

		_, err := uc.Signin(context.Background(), "alice@example.com", "pass1234", SessionMeta{})
		require.NoError(t, err)
		assert.Equal(t, 1, sessions.deletedOldest)
	})

	t.Run("repository failure", func(t *testing.T) {
		users := &mockUserRepository{
			FindByEmailFunc: func(string) (*userentity.User, error) { return nil, errors.New("db down") },
		}
		uc := newTestUsecase(users, newMockSessionRepository(), nil)

		_, err := uc.Signin(context.Background(), "alice@example.com", "pass1234", SessionMeta{})
		assert.Equal(t, apperror.KindRepository, apperror.KindOf(err))
	})
}

func TestAuthUsecase_VerifyTokenAndSignout(t *testing.T) {
	sessions := newMockSessionRepository()
	uc := newTestUsecase(nil, sessions, nil)
	ctx := context.Background()

	sessions.sessions["s1"] = &entity.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	sessions.sessions["s2"] = &entity.Session{ID: "s2", UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)}

	userID, sessionID, err := uc.VerifyToken(ctx, "u1|s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "s1", sessionID)

	_, _, err = uc.VerifyToken(ctx, "u2|s1")
	assert.ErrorIs(t, err, ErrSessionMismatch)

	_, _, err = uc.VerifyToken(ctx, "u1|s2")
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, _, err = uc.VerifyToken(ctx, "u1|missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, uc.Signout(ctx, "s1"))
	_, _, err = uc.VerifyToken(ctx, "u1|s1")
	assert.ErrorIs(t, err, ErrSessionRevoked)

	assert.NoError(t, uc.Signout(ctx, "missing"), "unknown sessions sign out cleanly")
	assert.NoError(t, uc.Signout(ctx, ""))
}

func TestAuthUsecase_RevokeAll(t *testing.T) {
	sessions := newMockSessionRepository()
	uc := newTestUsecase(nil, sessions, nil)
	sessions.sessions["a"] = &entity.Session{ID: "a", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	sessions.sessions["b"] = &entity.Session{ID: "b", UserID: "u2", ExpiresAt: time.Now().Add(time.Hour)}

	require.NoError(t, uc.RevokeAll(context.Background(), "u1"))
	assert.True(t, sessions.sessions["a"].Revoked())
	assert.False(t, sessions.sessions["b"].Revoked())
}
