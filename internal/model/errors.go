// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string `json:"code"`     // エラーコード
	Message  string `json:"message"`  // エラーメッセージ
	Category string `json:"category"` // カテゴリ: auth, validation, collection, system
	Action   string `json:"action"`   // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeInvalidCredential  = "INVALID_CREDENTIAL"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeDuplicateUser      = "DUPLICATE_USER"
	ErrCodeCollectionNotFound = "COLLECTION_NOT_FOUND"
	ErrCodeLinkNotFound       = "LINK_NOT_FOUND"
	ErrCodeRouteNotFound      = "ROUTE_NOT_FOUND"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewInvalidInputError は入力値不正エラーを生成する。
// messageはクライアントにそのまま表示される。
func NewInvalidInputError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  message,
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewUnauthenticatedError は認証情報が無い場合のエラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "Access token required",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidCredentialError はログイン失敗エラーを生成する。
// メールアドレス未登録とパスワード不一致は区別しない。
func NewInvalidCredentialError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredential,
		Message:  "Invalid credentials",
		Category: "auth",
		Action:   "メールアドレスとパスワードを確認してください。",
	}
}

// NewInvalidTokenError はトークンが不正または期限切れの場合のエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "Invalid or expired token",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewDuplicateUserError は登録済みメールアドレスでの登録エラーを生成する。
func NewDuplicateUserError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUser,
		Message:  "User already exists",
		Category: "auth",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewCollectionNotFoundError はコレクションが見つからない場合のエラーを生成する。
// 他ユーザーのコレクションも同じエラーになる。
func NewCollectionNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeCollectionNotFound,
		Message:  "Link collection not found",
		Category: "collection",
		Action:   "一覧を再読み込みしてください。",
	}
}

// NewLinkNotFoundError はコレクション内にリンクが見つからない場合のエラーを生成する。
func NewLinkNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeLinkNotFound,
		Message:  "Link not found",
		Category: "collection",
		Action:   "一覧を再読み込みしてください。",
	}
}

// NewRouteNotFoundError は未定義ルートへのアクセスエラーを生成する。
func NewRouteNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeRouteNotFound,
		Message:  "Route not found",
		Category: "system",
		Action:   "URLを確認してください。",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Server error",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
