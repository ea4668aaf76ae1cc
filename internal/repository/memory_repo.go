package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/hitoshi/linkvault/internal/model"
)

// MemoryUserRepo はプロセス内メモリにユーザーを保持するリポジトリ。
// DATABASE_URL=memory:// の開発用途とテストで使用する。
type MemoryUserRepo struct {
	mu      sync.RWMutex
	byEmail map[string]*model.User
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byEmail: make(map[string]*model.User)}
}

// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// Create はユーザーを作成する。
func (r *MemoryUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return ErrDuplicate
	}
	cp := *user
	r.byEmail[user.Email] = &cp
	return nil
}

type memoryCollection struct {
	seq        uint64
	collection *model.Collection
}

// MemoryCollectionRepo はプロセス内メモリにコレクションを保持するリポジトリ。
// 読み出しはコピーを返すため、更新は必ずReplaceを経由する。
type MemoryCollectionRepo struct {
	mu    sync.RWMutex
	seq   uint64
	items map[string]*memoryCollection
}

// NewMemoryCollectionRepo はMemoryCollectionRepoを生成する。
func NewMemoryCollectionRepo() *MemoryCollectionRepo {
	return &MemoryCollectionRepo{items: make(map[string]*memoryCollection)}
}

// ListByUserID はユーザーのコレクションを作成日時の降順で返す。
// 作成日時が同じ場合は後から作成したものを先にする。
func (r *MemoryCollectionRepo) ListByUserID(_ context.Context, userID string) ([]*model.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var owned []*memoryCollection
	for _, item := range r.items {
		if item.collection.UserID == userID {
			owned = append(owned, item)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		a, b := owned[i].collection.CreatedAt, owned[j].collection.CreatedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return owned[i].seq > owned[j].seq
	})

	collections := make([]*model.Collection, 0, len(owned))
	for _, item := range owned {
		collections = append(collections, item.collection.Clone())
	}
	return collections, nil
}

// FindByIDAndUserID は所有者を指定してコレクションを取得する。見つからない場合はnilを返す。
func (r *MemoryCollectionRepo) FindByIDAndUserID(_ context.Context, id, userID string) (*model.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok || item.collection.UserID != userID {
		return nil, nil
	}
	return item.collection.Clone(), nil
}

// Create はコレクションを作成する。
func (r *MemoryCollectionRepo) Create(_ context.Context, c *model.Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.items[c.ID] = &memoryCollection{seq: r.seq, collection: c.Clone()}
	return nil
}

// Replace はコレクションを丸ごと置き換える。存在しない場合は何もしない。
func (r *MemoryCollectionRepo) Replace(_ context.Context, c *model.Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[c.ID]
	if !ok || item.collection.UserID != c.UserID {
		return nil
	}
	next := c.Clone()
	next.CreatedAt = item.collection.CreatedAt
	item.collection = next
	return nil
}

// DeleteByIDAndUserID はコレクションを削除する。
func (r *MemoryCollectionRepo) DeleteByIDAndUserID(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.collection.UserID != userID {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

// compile-time interface check
var (
	_ UserRepository       = (*MemoryUserRepo)(nil)
	_ CollectionRepository = (*MemoryCollectionRepo)(nil)
)
