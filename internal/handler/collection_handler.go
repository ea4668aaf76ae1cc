package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/linkvault/internal/collection"
	"github.com/hitoshi/linkvault/internal/middleware"
	"github.com/hitoshi/linkvault/internal/model"
)

// CollectionServiceInterface はコレクションハンドラーが必要とするサービスインターフェース。
type CollectionServiceInterface interface {
	List(ctx context.Context, userID string) ([]*model.Collection, error)
	Create(ctx context.Context, userID, title string, links []model.Link) (*model.Collection, error)
	Delete(ctx context.Context, userID, id string) error
	AddLink(ctx context.Context, userID, id, name, url string) (*model.Collection, error)
	UpdateLink(ctx context.Context, userID, id string, linkID int, name, url string) (*model.Collection, error)
	RemoveLink(ctx context.Context, userID, id string, linkID int) (*model.Collection, error)
}

var _ CollectionServiceInterface = (*collection.Service)(nil)

// unmatchedLinkID は数値として解釈できないリンクIDの代わりに使う値。
// どのリンクにも一致しない。
const unmatchedLinkID = math.MinInt

// CollectionHandler はリンクコレクション管理のHTTPハンドラー。
type CollectionHandler struct {
	service CollectionServiceInterface
}

// NewCollectionHandler はCollectionHandlerを生成する。
func NewCollectionHandler(service CollectionServiceInterface) *CollectionHandler {
	return &CollectionHandler{service: service}
}

// createCollectionRequest はコレクション作成リクエストのボディ。
type createCollectionRequest struct {
	Title string       `json:"title"`
	Links []model.Link `json:"links"`
}

// linkRequest はリンク追加・更新リクエストのボディ。
type linkRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// List はユーザーのコレクション一覧を返す。
// GET /api/links
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	collections, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, collections)
}

// Create はコレクションを作成する。
// POST /api/links
func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createCollectionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	c, err := h.service.Create(r.Context(), userID, req.Title, req.Links)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

// Delete はコレクションを削除する。
// DELETE /api/links/{id}
func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Link collection deleted successfully"})
}

// AddLink はコレクションにリンクを追加する。
// POST /api/links/{id}/link
func (h *CollectionHandler) AddLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req linkRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	c, err := h.service.AddLink(r.Context(), userID, chi.URLParam(r, "id"), req.Name, req.URL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// UpdateLink はリンクを更新する。
// PUT /api/links/{id}/link/{linkID}
func (h *CollectionHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req linkRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	c, err := h.service.UpdateLink(r.Context(), userID, chi.URLParam(r, "id"), parseLinkID(chi.URLParam(r, "linkID")), req.Name, req.URL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// RemoveLink はリンクを削除する。
// DELETE /api/links/{id}/link/{linkID}
func (h *CollectionHandler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	c, err := h.service.RemoveLink(r.Context(), userID, chi.URLParam(r, "id"), parseLinkID(chi.URLParam(r, "linkID")))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// requireUserID はコンテキストからユーザーIDを取り出す。
// 存在しない場合は401を書き込みfalseを返す。
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return "", false
	}
	return userID, true
}

// parseLinkID は先頭の空白と符号に続く数字部分をリンクIDとして読む。
// "2abc" や "2.0" は2になり、数字で始まらない場合はunmatchedLinkIDを返す。
func parseLinkID(s string) int {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return unmatchedLinkID
	}
	id, err := strconv.Atoi(s[:end])
	if err != nil {
		return unmatchedLinkID
	}
	return id
}
