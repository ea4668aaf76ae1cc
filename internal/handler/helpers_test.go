package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/linkvault/internal/auth"
	"github.com/hitoshi/linkvault/internal/middleware"
	"github.com/hitoshi/linkvault/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFn func(ctx context.Context, email, password string) error
	loginFn    func(ctx context.Context, email, password string) (*auth.LoginResult, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password string) error {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, password)
	}
	return nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, nil
}

// mockCollectionService はCollectionServiceInterfaceのモック実装。
type mockCollectionService struct {
	listFn       func(ctx context.Context, userID string) ([]*model.Collection, error)
	createFn     func(ctx context.Context, userID, title string, links []model.Link) (*model.Collection, error)
	deleteFn     func(ctx context.Context, userID, id string) error
	addLinkFn    func(ctx context.Context, userID, id, name, url string) (*model.Collection, error)
	updateLinkFn func(ctx context.Context, userID, id string, linkID int, name, url string) (*model.Collection, error)
	removeLinkFn func(ctx context.Context, userID, id string, linkID int) (*model.Collection, error)
}

func (m *mockCollectionService) List(ctx context.Context, userID string) ([]*model.Collection, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return []*model.Collection{}, nil
}

func (m *mockCollectionService) Create(ctx context.Context, userID, title string, links []model.Link) (*model.Collection, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, title, links)
	}
	return nil, nil
}

func (m *mockCollectionService) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

func (m *mockCollectionService) AddLink(ctx context.Context, userID, id, name, url string) (*model.Collection, error) {
	if m.addLinkFn != nil {
		return m.addLinkFn(ctx, userID, id, name, url)
	}
	return nil, nil
}

func (m *mockCollectionService) UpdateLink(ctx context.Context, userID, id string, linkID int, name, url string) (*model.Collection, error) {
	if m.updateLinkFn != nil {
		return m.updateLinkFn(ctx, userID, id, linkID, name, url)
	}
	return nil, nil
}

func (m *mockCollectionService) RemoveLink(ctx context.Context, userID, id string, linkID int) (*model.Collection, error) {
	if m.removeLinkFn != nil {
		return m.removeLinkFn(ctx, userID, id, linkID)
	}
	return nil, nil
}

// --- テストヘルパー ---

// withUserID はテスト用にリクエストコンテキストにユーザーIDを注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	return r.WithContext(ctx)
}

// withChiURLParams はテスト用にchiのURLパラメータを注入するヘルパー。
// key, value の組を交互に渡す。
func withChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

func decodeCollection(t *testing.T, w *httptest.ResponseRecorder) model.Collection {
	t.Helper()
	var c model.Collection
	if err := json.NewDecoder(w.Body).Decode(&c); err != nil {
		t.Fatalf("failed to decode collection: %v", err)
	}
	return c
}
