package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"social_backend/internal/feature/auth/domain/entity"
	userentity "social_backend/internal/feature/user/domain/entity"
	userusecase "social_backend/internal/feature/user/usecase"
	"social_backend/internal/shared/apperror"
)

const (
	// 名前とパスワードの文字数制限
	minFieldLength = 4
	maxFieldLength = 10

	// maxSessionsPerUser はユーザーごとの同時セッション数の上限です。超過時は最も古いものを削除します。
	maxSessionsPerUser = 5

	// EventUserSignedUp is published after a successful signup.
	EventUserSignedUp = "user.signed_up"
)

// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

var validate = validator.New()

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを永続化します。メールアドレスが重複する場合 ErrEmailAlreadyExists を返します。
	Create(ctx context.Context, user *userentity.User) error

	// FindByEmail はメールアドレスに一致するユーザーを取得します。存在しない場合 ErrUserNotFound を返します。
	FindByEmail(ctx context.Context, email string) (*userentity.User, error)
}

// TokenManager はアクセストークンの発行と検証を定義します。
type TokenManager interface {
	GenerateToken(userID, sessionID string, expiresAt time.Time) (string, error)
	ParseToken(token string) (userID, sessionID string, err error)
}

// EventPublisher announces domain events. Failures never fail the request.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// SignupInput is the raw signup form.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// SessionMeta describes the client opening a session.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}

// SigninResult is returned by a successful signin.
type SigninResult struct {
	Token     string
	ExpiresAt time.Time
	User      *userentity.User
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users      UserRepository
	sessions   SessionRepository
	tokens     TokenManager
	publisher  EventPublisher
	sessionTTL time.Duration
	cost       int
	now        func() time.Time
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。publisher は nil でも構いません。
func NewAuthUsecase(users UserRepository, sessions SessionRepository, tokens TokenManager, publisher EventPublisher, sessionTTL time.Duration) *authUsecase {
	return &authUsecase{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		publisher:  publisher,
		sessionTTL: sessionTTL,
		cost:       bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// ValidateSignup checks the form in a fixed order and reports only the first failure.
// On success it returns the input with name trimmed and email normalized.
func ValidateSignup(in SignupInput) (SignupInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = userusecase.NormalizeEmail(in.Email)

	switch {
	case in.Name == "":
		return in, apperror.Validation(MsgEnterName)
	case !lengthBetween(in.Name, minFieldLength, maxFieldLength):
		return in, apperror.Validation(MsgNameLength)
	case validate.Var(in.Email, "required,email") != nil:
		return in, apperror.Validation(MsgEnterValidEmail)
	case in.Password == "":
		return in, apperror.Validation(MsgEnterPassword)
	case !lengthBetween(in.Password, minFieldLength, maxFieldLength):
		return in, apperror.Validation(MsgPasswordLength)
	}
	return in, nil
}

func lengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録します。
func (u *authUsecase) Signup(ctx context.Context, in SignupInput) (*userentity.User, error) {
	in, err := ValidateSignup(in)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &userentity.User{Name: in.Name, Email: in.Email, Password: string(hashed)}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, userusecase.ErrEmailAlreadyExists) {
			return nil, apperror.Conflict(userusecase.MsgEmailTaken)
		}
		return nil, apperror.Repository(err)
	}

	if u.publisher != nil {
		if err := u.publisher.Publish(ctx, EventUserSignedUp, userusecase.UserEvent{UserID: user.ID}); err != nil {
			slog.Warn("failed to publish event", "event", EventUserSignedUp, "error", err)
		}
	}
	return user, nil
}

// Signin はユーザーを認証し、セッションを作成してアクセストークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Signin(ctx context.Context, email, password string, meta SessionMeta) (*SigninResult, error) {
	user, err := u.users.FindByEmail(ctx, userusecase.NormalizeEmail(email))
	if err != nil && !errors.Is(err, userusecase.ErrUserNotFound) {
		return nil, apperror.Repository(err)
	}

	passwordHash := dummyPasswordHash
	if err == nil {
		passwordHash = user.Password
	}
	// 第1引数はハッシュ化パスワード、第2引数は平文パスワード
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if err != nil || compareErr != nil {
		return nil, apperror.Validation(MsgInvalidCredentials)
	}

	session, err := u.openSession(ctx, user.ID, meta)
	if err != nil {
		return nil, apperror.Repository(err)
	}

	token, err := u.tokens.GenerateToken(user.ID, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &SigninResult{Token: token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

func (u *authUsecase) openSession(ctx context.Context, userID string, meta SessionMeta) (*entity.Session, error) {
	count, err := u.sessions.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= maxSessionsPerUser {
		if err := u.sessions.DeleteOldestByUserID(ctx, userID); err != nil {
			return nil, err
		}
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	now := u.now()
	session := &entity.Session{
		ID:        id,
		UserID:    userID,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(u.sessionTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Signout はセッションを失効させます。既に存在しないセッションはエラーになりません。
func (u *authUsecase) Signout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := u.sessions.Revoke(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}

// VerifyToken resolves a token to its user and session, rejecting revoked or expired sessions.
func (u *authUsecase) VerifyToken(ctx context.Context, token string) (string, string, error) {
	userID, sessionID, err := u.tokens.ParseToken(token)
	if err != nil {
		return "", "", err
	}
	session, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return "", "", err
	}
	switch {
	case session.UserID != userID:
		return "", "", ErrSessionMismatch
	case session.Revoked():
		return "", "", ErrSessionRevoked
	case session.ExpiredAt(u.now()):
		return "", "", ErrSessionExpired
	}
	return userID, sessionID, nil
}

// RevokeAll signs userID out everywhere.
func (u *authUsecase) RevokeAll(ctx context.Context, userID string) error {
	return u.sessions.RevokeAllByUserID(ctx, userID)
}
