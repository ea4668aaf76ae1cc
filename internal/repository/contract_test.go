package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/linkvault/internal/model"
)

// testUserRepository は全バックエンド共通のUserRepositoryの振る舞いを検証する。
func testUserRepository(t *testing.T, repo UserRepository) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	user := &model.User{
		ID:        uuid.New().String(),
		Email:     "alice@example.com",
		Password:  "secret",
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("FindByEmail_NotFound_ReturnsNil", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("Create_ThenFind", func(t *testing.T) {
		if err := repo.Create(ctx, user); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		got, err := repo.FindByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("FindByEmail failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected user, got nil")
		}
		if got.ID != user.ID || got.Password != "secret" {
			t.Errorf("got %+v, want id=%s password=secret", got, user.ID)
		}
	})

	t.Run("Create_DuplicateEmail_ReturnsErrDuplicate", func(t *testing.T) {
		dup := *user
		dup.ID = uuid.New().String()
		err := repo.Create(ctx, &dup)
		if !errors.Is(err, ErrDuplicate) {
			t.Errorf("err = %v, want ErrDuplicate", err)
		}
	})
}

// testCollectionRepository は全バックエンド共通のCollectionRepositoryの振る舞いを検証する。
func testCollectionRepository(t *testing.T, repo CollectionRepository) {
	t.Helper()
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)
	owner := uuid.New().String()
	other := uuid.New().String()

	older := &model.Collection{
		ID:        uuid.New().String(),
		UserID:    owner,
		Title:     "Dev",
		Links:     []model.Link{{ID: 1, Name: "Go", URL: "https://go.dev"}},
		CreatedAt: base,
		UpdatedAt: base,
	}
	newer := &model.Collection{
		ID:        uuid.New().String(),
		UserID:    owner,
		Title:     "News",
		Links:     []model.Link{},
		CreatedAt: base.Add(time.Second),
		UpdatedAt: base.Add(time.Second),
	}
	foreign := &model.Collection{
		ID:        uuid.New().String(),
		UserID:    other,
		Title:     "Other",
		Links:     []model.Link{},
		CreatedAt: base,
		UpdatedAt: base,
	}

	for _, c := range []*model.Collection{older, newer, foreign} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create(%s) failed: %v", c.Title, err)
		}
	}

	t.Run("ListByUserID_NewestFirst_OwnOnly", func(t *testing.T) {
		got, err := repo.ListByUserID(ctx, owner)
		if err != nil {
			t.Fatalf("ListByUserID failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].Title != "News" || got[1].Title != "Dev" {
			t.Errorf("order = [%s, %s], want [News, Dev]", got[0].Title, got[1].Title)
		}
		if len(got[1].Links) != 1 || got[1].Links[0].URL != "https://go.dev" {
			t.Errorf("links = %+v", got[1].Links)
		}
	})

	t.Run("ListByUserID_NoCollections_ReturnsEmpty", func(t *testing.T) {
		got, err := repo.ListByUserID(ctx, uuid.New().String())
		if err != nil {
			t.Fatalf("ListByUserID failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})

	t.Run("FindByIDAndUserID_OtherOwner_ReturnsNil", func(t *testing.T) {
		got, err := repo.FindByIDAndUserID(ctx, foreign.ID, owner)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil for another user's collection, got %+v", got)
		}
	})

	t.Run("FindByIDAndUserID_MalformedID_ReturnsNil", func(t *testing.T) {
		got, err := repo.FindByIDAndUserID(ctx, "not-a-uuid", owner)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("Replace_RewritesLinks", func(t *testing.T) {
		c, err := repo.FindByIDAndUserID(ctx, older.ID, owner)
		if err != nil || c == nil {
			t.Fatalf("FindByIDAndUserID = %v, %v", c, err)
		}
		c.Links = append(c.Links, model.Link{ID: 2, Name: "Chi", URL: "https://go-chi.io"})
		c.UpdatedAt = base.Add(time.Minute)
		if err := repo.Replace(ctx, c); err != nil {
			t.Fatalf("Replace failed: %v", err)
		}

		got, err := repo.FindByIDAndUserID(ctx, older.ID, owner)
		if err != nil || got == nil {
			t.Fatalf("FindByIDAndUserID = %v, %v", got, err)
		}
		if len(got.Links) != 2 || got.Links[1].ID != 2 {
			t.Errorf("links = %+v, want 2 links", got.Links)
		}
		if !got.UpdatedAt.Equal(base.Add(time.Minute)) {
			t.Errorf("updated_at = %v, want %v", got.UpdatedAt, base.Add(time.Minute))
		}
	})

	t.Run("DeleteByIDAndUserID", func(t *testing.T) {
		deleted, err := repo.DeleteByIDAndUserID(ctx, foreign.ID, owner)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deleted {
			t.Error("another user's collection must not be deleted")
		}

		deleted, err = repo.DeleteByIDAndUserID(ctx, newer.ID, owner)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !deleted {
			t.Error("expected deleted = true")
		}

		got, _ := repo.FindByIDAndUserID(ctx, newer.ID, owner)
		if got != nil {
			t.Error("collection still exists after delete")
		}
	})
}
