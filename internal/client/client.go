// Package client はLinkVault APIのクライアントと、CLIから操作するためのアプリケーション状態を提供する。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/linkvault/internal/model"
)

// defaultTimeout はhttp.Clientを指定しない場合のタイムアウト。
const defaultTimeout = 10 * time.Second

// APIError はAPIが2xx以外を返した場合のエラー。
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d [%s]: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsSessionExpired はエラーがトークン無し・不正・期限切れ（401/403）によるものかを判定する。
func IsSessionExpired(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// ServerMessage はAPIエラーのメッセージを返す。APIエラーでない場合やメッセージが無い場合はfallbackを返す。
func ServerMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// LoginResponse はログインAPIのレスポンス。
type LoginResponse struct {
	Token   string `json:"token"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// HealthStatus はヘルスチェックAPIのレスポンス。
type HealthStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// errorBody はAPIエラーレスポンスのボディ。
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client はLinkVault APIのHTTPクライアント。
// 認証が必要な操作はトークンを引数で受け取り、クライアント自体は状態を持たない。
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient はClientを生成する。baseURLは "/api" までを含むURL（例: http://localhost:5000/api）。
// httpClientがnilの場合は10秒タイムアウトのクライアントを使用する。
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Register はユーザーを登録する。
func (c *Client) Register(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/register", "", body, nil)
}

// Login はログインしてトークンを取得する。
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListCollections はコレクション一覧を取得する。
func (c *Client) ListCollections(ctx context.Context, token string) ([]model.Collection, error) {
	var collections []model.Collection
	if err := c.do(ctx, http.MethodGet, "/links", token, nil, &collections); err != nil {
		return nil, err
	}
	if collections == nil {
		collections = []model.Collection{}
	}
	return collections, nil
}

// CreateCollection はタイトルのみを指定してコレクションを作成する。
func (c *Client) CreateCollection(ctx context.Context, token, title string) (*model.Collection, error) {
	return c.collection(ctx, http.MethodPost, "/links", token, map[string]string{"title": title})
}

// CreateCollectionRaw はJSONドキュメントをそのままボディとして送信しコレクションを作成する。
// インポートで使用する。
func (c *Client) CreateCollectionRaw(ctx context.Context, token string, doc json.RawMessage) (*model.Collection, error) {
	return c.collection(ctx, http.MethodPost, "/links", token, doc)
}

// DeleteCollection はコレクションを削除する。
func (c *Client) DeleteCollection(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/links/"+url.PathEscape(id), token, nil, nil)
}

// AddLink はコレクションにリンクを追加し、更新後のコレクションを返す。
func (c *Client) AddLink(ctx context.Context, token, id, name, linkURL string) (*model.Collection, error) {
	body := map[string]string{"name": name, "url": linkURL}
	return c.collection(ctx, http.MethodPost, "/links/"+url.PathEscape(id)+"/link", token, body)
}

// UpdateLink はリンクを更新し、更新後のコレクションを返す。
func (c *Client) UpdateLink(ctx context.Context, token, id string, linkID int, name, linkURL string) (*model.Collection, error) {
	body := map[string]string{"name": name, "url": linkURL}
	return c.collection(ctx, http.MethodPut, linkPath(id, linkID), token, body)
}

// RemoveLink はリンクを削除し、更新後のコレクションを返す。
func (c *Client) RemoveLink(ctx context.Context, token, id string, linkID int) (*model.Collection, error) {
	return c.collection(ctx, http.MethodDelete, linkPath(id, linkID), token, nil)
}

// Health はヘルスチェックAPIを呼び出す。
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", "", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func linkPath(id string, linkID int) string {
	return "/links/" + url.PathEscape(id) + "/link/" + strconv.Itoa(linkID)
}

func (c *Client) collection(ctx context.Context, method, path, token string, body interface{}) (*model.Collection, error) {
	var col model.Collection
	if err := c.do(ctx, method, path, token, body, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// do はJSONリクエストを送信し、2xxの場合はoutにデコードする。
// 2xx以外は*APIErrorを返す。
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil {
			apiErr.Code = eb.Code
			apiErr.Message = eb.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
