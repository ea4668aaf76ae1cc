// Package auth はメールアドレスとパスワードによる登録・ログインと、アクセストークンの検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/linkvault/internal/model"
	"github.com/hitoshi/linkvault/internal/repository"
)

// LoginResult はログイン成功時の結果。
type LoginResult struct {
	Token string
	Email string
}

// EventRecorder は認証イベントを記録するインターフェース。
type EventRecorder interface {
	RecordAuthEvent(event string)
}

// 認証イベント名
const (
	EventRegistered       = "registered"
	EventRegisterRejected = "register_rejected"
	EventLoginSucceeded   = "login_succeeded"
	EventLoginFailed      = "login_failed"
)

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	tokens   *TokenIssuer
	events   EventRecorder
	now      func() time.Time
}

// NewService はServiceを生成する。eventsはnilでもよい。
func NewService(userRepo repository.UserRepository, tokens *TokenIssuer, events EventRecorder) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		events:   events,
		now:      time.Now,
	}
}

// NormalizeEmail は前後の空白を除去し小文字化する。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register はユーザーを登録する。トークンは発行しない。
// パスワードは受け取った文字列をそのまま保存する。
func (s *Service) Register(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		s.record(EventRegisterRejected)
		return model.NewInvalidInputError("Email and password required")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if existing != nil {
		s.record(EventRegisterRejected)
		return model.NewDuplicateUserError()
	}

	now := s.now()
	user := &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 同時登録で一意制約に抵触した場合
		if errors.Is(err, repository.ErrDuplicate) {
			s.record(EventRegisterRejected)
			return model.NewDuplicateUserError()
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", slog.String("user_id", user.ID))
	s.record(EventRegistered)
	return nil
}

// Login は認証情報を検証し、アクセストークンを発行する。
// メールアドレス未登録とパスワード不一致は同じエラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, model.NewInvalidInputError("Email and password required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || user.Password != password {
		s.record(EventLoginFailed)
		return nil, model.NewInvalidCredentialError()
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.record(EventLoginSucceeded)
	return &LoginResult{Token: token, Email: user.Email}, nil
}

// Authenticate はAuthorizationヘッダーの値からユーザーを特定する。
// "Bearer <token>" 形式でない場合はトークン無しとして扱う。
func (s *Service) Authenticate(authorization string) (*model.Identity, error) {
	return s.tokens.Verify(BearerToken(authorization))
}

// BearerToken はAuthorizationヘッダーの値からトークン部分を取り出す。
func BearerToken(authorization string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Service) record(event string) {
	if s.events != nil {
		s.events.RecordAuthEvent(event)
	}
}
