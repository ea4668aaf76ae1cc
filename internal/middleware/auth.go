// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/linkvault/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
	userIDContextKey = contextKey("user_id")
	// emailContextKey はリクエストコンテキストにメールアドレスを格納するためのキー。
	emailContextKey = contextKey("email")
	// identityHolderKey は外側のミドルウェアへ認証結果を渡すためのキー。
	identityHolderKey = contextKey("identity_holder")
)

// identityHolder はロギングミドルウェアが用意し、認証ミドルウェアが書き込む。
type identityHolder struct {
	userID string
}

func contextWithIdentityHolder(ctx context.Context, h *identityHolder) context.Context {
	return context.WithValue(ctx, identityHolderKey, h)
}

// Authenticator はAuthorizationヘッダーからユーザーを特定するインターフェース。
// auth.Serviceが実装する。
type Authenticator interface {
	Authenticate(authorization string) (*model.Identity, error)
}

// NewAuthMiddleware はBearerトークンを検証するミドルウェアを返す。
// 認証済みユーザーIDとメールアドレスをリクエストコンテキストに注入する。
// トークンが無い場合は401、不正・期限切れの場合は403を返す。
func NewAuthMiddleware(authenticator Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticator.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				var apiErr *model.APIError
				if !errors.As(err, &apiErr) {
					slog.Error("failed to authenticate request", slog.String("error", err.Error()))
					WriteInternalServerError(w)
					return
				}
				status := http.StatusForbidden
				if apiErr.Code == model.ErrCodeUnauthenticated {
					status = http.StatusUnauthorized
				}
				WriteErrorResponse(w, status, apiErr)
				return
			}

			if holder, ok := r.Context().Value(identityHolderKey).(*identityHolder); ok {
				holder.userID = identity.UserID
			}

			ctx := ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// EmailFromContext はリクエストコンテキストからメールアドレスを取得する。
func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(emailContextKey).(string)
	return email
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// ContextWithIdentity はコンテキストにユーザーIDとメールアドレスを注入する。
func ContextWithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	ctx = ContextWithUserID(ctx, identity.UserID)
	return context.WithValue(ctx, emailContextKey, identity.Email)
}
