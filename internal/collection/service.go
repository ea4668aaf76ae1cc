// Package collection はリンクコレクションの管理ロジックを提供する。
package collection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/linkvault/internal/model"
	"github.com/hitoshi/linkvault/internal/repository"
)

// MutationRecorder はコレクション更新操作を記録するインターフェース。
type MutationRecorder interface {
	RecordCollectionMutation(op string)
}

// 更新操作名
const (
	OpCreate     = "create"
	OpDelete     = "delete"
	OpAddLink    = "add_link"
	OpUpdateLink = "update_link"
	OpRemoveLink = "remove_link"
)

// Service はコレクション管理のサービス層。
// すべての操作は呼び出し元ユーザーのコレクションに限定される。
// 更新は1回の取得と1回の全体書き換えで行い、競合時は後勝ちとなる。
type Service struct {
	repo    repository.CollectionRepository
	metrics MutationRecorder
	now     func() time.Time
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(repo repository.CollectionRepository, metrics MutationRecorder) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
		now:     time.Now,
	}
}

// List はユーザーのコレクションを作成日時の新しい順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Collection, error) {
	collections, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	if collections == nil {
		collections = []*model.Collection{}
	}
	return collections, nil
}

// Create はコレクションを作成する。linksは渡されたIDのまま保存する。
func (s *Service) Create(ctx context.Context, userID, title string, links []model.Link) (*model.Collection, error) {
	if title == "" {
		return nil, model.NewInvalidInputError("Title is required")
	}
	if links == nil {
		links = []model.Link{}
	}

	now := s.now()
	c := &model.Collection{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Links:     links,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	s.record(OpCreate)
	return c, nil
}

// Delete はコレクションを削除する。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.repo.DeleteByIDAndUserID(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if !deleted {
		return model.NewCollectionNotFoundError()
	}

	s.record(OpDelete)
	return nil
}

// AddLink はコレクション末尾にリンクを追加する。
func (s *Service) AddLink(ctx context.Context, userID, id, name, url string) (*model.Collection, error) {
	if err := validateLink(name, url); err != nil {
		return nil, err
	}

	c, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	c.Links = append(c.Links, model.Link{ID: NextLinkID(c.Links), Name: name, URL: url})
	if err := s.replace(ctx, c); err != nil {
		return nil, err
	}

	s.record(OpAddLink)
	return c, nil
}

// UpdateLink はリンクの名前とURLをその位置のまま書き換える。
// 指定IDのリンクが無い場合はLinkNotFoundを返す。
func (s *Service) UpdateLink(ctx context.Context, userID, id string, linkID int, name, url string) (*model.Collection, error) {
	if err := validateLink(name, url); err != nil {
		return nil, err
	}

	c, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	idx := c.FindLink(linkID)
	if idx < 0 {
		return nil, model.NewLinkNotFoundError()
	}
	c.Links[idx].Name = name
	c.Links[idx].URL = url
	if err := s.replace(ctx, c); err != nil {
		return nil, err
	}

	s.record(OpUpdateLink)
	return c, nil
}

// RemoveLink は指定IDのリンクをすべて削除する。
// インポートしたコレクションではIDが重複し得るため、一致したものはすべて取り除く。
// 指定IDのリンクが無い場合は何も書き込まずにコレクションをそのまま返す。
func (s *Service) RemoveLink(ctx context.Context, userID, id string, linkID int) (*model.Collection, error) {
	c, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	kept := make([]model.Link, 0, len(c.Links))
	for _, l := range c.Links {
		if l.ID != linkID {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(c.Links) {
		return c, nil
	}
	c.Links = kept
	if err := s.replace(ctx, c); err != nil {
		return nil, err
	}

	s.record(OpRemoveLink)
	return c, nil
}

func (s *Service) find(ctx context.Context, userID, id string) (*model.Collection, error) {
	c, err := s.repo.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find collection: %w", err)
	}
	if c == nil {
		return nil, model.NewCollectionNotFoundError()
	}
	if c.Links == nil {
		c.Links = []model.Link{}
	}
	return c, nil
}

func (s *Service) replace(ctx context.Context, c *model.Collection) error {
	c.UpdatedAt = s.now()
	if err := s.repo.Replace(ctx, c); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

func (s *Service) record(op string) {
	if s.metrics != nil {
		s.metrics.RecordCollectionMutation(op)
	}
}

func validateLink(name, url string) error {
	if name == "" || url == "" {
		return model.NewInvalidInputError("Name and URL are required")
	}
	return nil
}
