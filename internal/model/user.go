// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Passwordは登録時の文字列をそのまま保持する。
type User struct {
	ID        string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity はトークンから復元した認証済みユーザーを表す。
type Identity struct {
	UserID string
	Email  string
}
