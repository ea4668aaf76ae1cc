// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/linkvault/internal/model"
)

// ErrDuplicate は一意制約違反を表す。
var ErrDuplicate = errors.New("duplicate key")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByEmail は正規化済みメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスが重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error
}

// CollectionRepository はコレクションの永続化インターフェース。
// コレクションはリンクを含む1ドキュメントとして読み書きされる。
type CollectionRepository interface {
	// ListByUserID はユーザーのコレクションを作成日時の新しい順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Collection, error)

	// FindByIDAndUserID は所有者を指定してコレクションを取得する。
	// 見つからない場合、他ユーザーの所有、ID形式不正のいずれもnilを返す。
	FindByIDAndUserID(ctx context.Context, id, userID string) (*model.Collection, error)

	// Create はコレクションを作成する。
	Create(ctx context.Context, collection *model.Collection) error

	// Replace はコレクションのタイトル・リンク・更新日時をまとめて書き換える。
	Replace(ctx context.Context, collection *model.Collection) error

	// DeleteByIDAndUserID はコレクションを削除する。削除した場合はtrueを返す。
	DeleteByIDAndUserID(ctx context.Context, id, userID string) (bool, error)
}
