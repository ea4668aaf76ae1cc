package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/linkvault/internal/model"
)

// API はAppが必要とするAPI操作のインターフェース。Clientが実装する。
type API interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ListCollections(ctx context.Context, token string) ([]model.Collection, error)
	CreateCollection(ctx context.Context, token, title string) (*model.Collection, error)
	CreateCollectionRaw(ctx context.Context, token string, doc json.RawMessage) (*model.Collection, error)
	DeleteCollection(ctx context.Context, token, id string) error
	AddLink(ctx context.Context, token, id, name, url string) (*model.Collection, error)
	UpdateLink(ctx context.Context, token, id string, linkID int, name, url string) (*model.Collection, error)
	RemoveLink(ctx context.Context, token, id string, linkID int) (*model.Collection, error)
}

var _ API = (*Client)(nil)

var (
	// ErrNotLoggedIn は未ログイン状態で認証が必要な操作を実行した場合のエラー。
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrMissingField は必須項目が空の場合のエラー。APIは呼び出さない。
	ErrMissingField = errors.New("required field is empty")
	// ErrInvalidFileFormat はインポートファイルがJSON配列でない場合のエラー。
	ErrInvalidFileFormat = errors.New("invalid file format")
)

// CommandKind はユーザー操作の種類。
type CommandKind string

const (
	CmdLogin            CommandKind = "login"
	CmdRegister         CommandKind = "register"
	CmdLogout           CommandKind = "logout"
	CmdRefresh          CommandKind = "refresh"
	CmdCreateCollection CommandKind = "create"
	CmdDeleteCollection CommandKind = "delete"
	CmdAddLink          CommandKind = "add-link"
	CmdStartEdit        CommandKind = "start-edit"
	CmdCancelEdit       CommandKind = "cancel-edit"
	CmdUpdateLink       CommandKind = "update-link"
	CmdRemoveLink       CommandKind = "remove-link"
	CmdExport           CommandKind = "export"
	CmdImport           CommandKind = "import"
)

// Command はDispatchに渡すユーザー操作。Kindに応じて必要なフィールドのみを使う。
type Command struct {
	Kind         CommandKind
	Email        string
	Password     string
	Title        string
	CollectionID string
	LinkID       int
	Name         string
	URL          string
	// Out はエクスポートの書き込み先。
	Out io.Writer
	// In はインポートの読み込み元。
	In io.Reader
}

// App はクライアントのアプリケーション状態とユーザー操作の処理を管理する。
// 各操作は1回のAPI呼び出しと状態の置き換えに対応する。
type App struct {
	api      API
	sessions SessionStore
	notifier *Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	state State
}

// NewApp はAppを生成する。loggerがnilの場合はslog.Default()を使用する。
func NewApp(api API, sessions SessionStore, notifier *Notifier, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewNotifier(nil)
	}
	return &App{
		api:      api,
		sessions: sessions,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// State は現在の状態のコピーを返す。
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Clone()
}

// Notifier は通知を返す。
func (a *App) Notifier() *Notifier {
	return a.notifier
}

// Resume は保存済みのセッションがあれば復元し、コレクション一覧を取得する。
// セッションが無い場合は何もしない。
func (a *App) Resume(ctx context.Context) error {
	sess, err := a.sessions.Load()
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if !sess.Valid() {
		return nil
	}

	a.mu.Lock()
	a.state.Session = sess
	a.mu.Unlock()

	return a.refresh(ctx)
}

// Dispatch はユーザー操作を実行する。
// 失敗はすべて通知され、状態は変更されない。
func (a *App) Dispatch(ctx context.Context, cmd Command) error {
	switch cmd.Kind {
	case CmdLogin:
		return a.login(ctx, cmd.Email, cmd.Password)
	case CmdRegister:
		return a.register(ctx, cmd.Email, cmd.Password)
	case CmdLogout:
		return a.logout()
	case CmdRefresh:
		return a.refresh(ctx)
	case CmdCreateCollection:
		return a.createCollection(ctx, cmd.Title)
	case CmdDeleteCollection:
		return a.deleteCollection(ctx, cmd.CollectionID)
	case CmdAddLink:
		return a.addLink(ctx, cmd.CollectionID, cmd.Name, cmd.URL)
	case CmdStartEdit:
		a.mu.Lock()
		a.state.StartEdit(cmd.CollectionID, cmd.LinkID)
		a.mu.Unlock()
		return nil
	case CmdCancelEdit:
		a.mu.Lock()
		a.state.CancelEdit()
		a.mu.Unlock()
		return nil
	case CmdUpdateLink:
		return a.updateLink(ctx, cmd.CollectionID, cmd.LinkID, cmd.Name, cmd.URL)
	case CmdRemoveLink:
		return a.removeLink(ctx, cmd.CollectionID, cmd.LinkID)
	case CmdExport:
		if cmd.Out == nil {
			return fmt.Errorf("export requires an output writer")
		}
		return a.Export(cmd.Out)
	case CmdImport:
		if cmd.In == nil {
			return fmt.Errorf("import requires an input reader")
		}
		_, err := a.Import(ctx, cmd.In)
		return err
	default:
		return fmt.Errorf("unknown command: %q", cmd.Kind)
	}
}

func (a *App) register(ctx context.Context, email, password string) error {
	email, password = strings.TrimSpace(email), strings.TrimSpace(password)
	if email == "" || password == "" {
		a.notifier.Notify(LevelError, "Please enter email and password")
		return ErrMissingField
	}

	if err := a.api.Register(ctx, email, password); err != nil {
		a.fail("register", err, ServerMessage(err, "Registration failed"))
		return err
	}

	a.notifier.Notify(LevelSuccess, "Registration successful! Please login.")
	return nil
}

func (a *App) login(ctx context.Context, email, password string) error {
	email, password = strings.TrimSpace(email), strings.TrimSpace(password)
	if email == "" || password == "" {
		a.notifier.Notify(LevelError, "Please enter email and password")
		return ErrMissingField
	}

	resp, err := a.api.Login(ctx, email, password)
	if err != nil {
		a.fail("login", err, ServerMessage(err, "Login failed"))
		return err
	}

	sess := Session{Token: resp.Token, Email: resp.Email}
	if err := a.sessions.Save(sess); err != nil {
		a.fail("login", err, "Failed to save session")
		return err
	}

	a.mu.Lock()
	a.state = State{Session: sess}
	a.mu.Unlock()

	a.notifier.Notify(LevelSuccess, "Login successful!")
	return a.refresh(ctx)
}

func (a *App) logout() error {
	if err := a.sessions.Clear(); err != nil {
		a.logger.Warn("failed to clear session", slog.String("error", err.Error()))
	}

	a.mu.Lock()
	a.state.Reset()
	a.mu.Unlock()

	a.notifier.Notify(LevelInfo, "Logged out successfully")
	return nil
}

func (a *App) refresh(ctx context.Context) error {
	token, err := a.token()
	if err != nil {
		return err
	}

	collections, err := a.api.ListCollections(ctx, token)
	if err != nil {
		return a.authFailure("refresh", err, "Failed to fetch collections")
	}

	a.mu.Lock()
	a.state.Collections = collections
	a.mu.Unlock()
	return nil
}

func (a *App) createCollection(ctx context.Context, title string) error {
	token, err := a.token()
	if err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		a.notifier.Notify(LevelError, "Please enter a collection name")
		return ErrMissingField
	}

	c, err := a.api.CreateCollection(ctx, token, title)
	if err != nil {
		return a.authFailure("create collection", err, ServerMessage(err, "Failed to create collection"))
	}

	a.mu.Lock()
	a.state.Collections = append(a.state.Collections, *c)
	a.mu.Unlock()

	a.notifier.Notify(LevelSuccess, "Collection created!")
	return nil
}

func (a *App) deleteCollection(ctx context.Context, id string) error {
	token, err := a.token()
	if err != nil {
		return err
	}

	if err := a.api.DeleteCollection(ctx, token, id); err != nil {
		return a.authFailure("delete collection", err, "Failed to delete collection")
	}

	a.mu.Lock()
	a.state.RemoveCollection(id)
	if a.state.Editing != nil && a.state.Editing.CollectionID == id {
		a.state.CancelEdit()
	}
	a.mu.Unlock()

	a.notifier.Notify(LevelSuccess, "Collection deleted")
	return nil
}

func (a *App) addLink(ctx context.Context, id, name, url string) error {
	token, err := a.token()
	if err != nil {
		return err
	}
	name, url = strings.TrimSpace(name), strings.TrimSpace(url)
	if name == "" || url == "" {
		a.notifier.Notify(LevelError, "Please enter both name and URL")
		return ErrMissingField
	}

	c, err := a.api.AddLink(ctx, token, id, name, url)
	if err != nil {
		return a.authFailure("add link", err, "Failed to add link")
	}

	a.mu.Lock()
	a.state.ReplaceCollection(*c)
	a.mu.Unlock()

	a.notifier.Notify(LevelSuccess, "Link added!")
	return nil
}

func (a *App) updateLink(ctx context.Context, id string, linkID int, name, url string) error {
	token, err := a.token()
	if err != nil {
		return err
	}
	name, url = strings.TrimSpace(name), strings.TrimSpace(url)
	if name == "" || url == "" {
		a.notifier.Notify(LevelError, "Name and URL cannot be empty")
		return ErrMissingField
	}

	c, err := a.api.UpdateLink(ctx, token, id, linkID, name, url)
	if err != nil {
		return a.authFailure("update link", err, "Failed to update link")
	}

	a.mu.Lock()
	a.state.ReplaceCollection(*c)
	a.state.CancelEdit()
	a.mu.Unlock()

	a.notifier.Notify(LevelSuccess, "Link updated!")
	return nil
}

func (a *App) removeLink(ctx context.Context, id string, linkID int) error {
	token, err := a.token()
	if err != nil {
		return err
	}

	c, err := a.api.RemoveLink(ctx, token, id, linkID)
	if err != nil {
		return a.authFailure("remove link", err, "Failed to delete link")
	}

	a.mu.Lock()
	a.state.ReplaceCollection(*c)
	if a.state.IsEditing(id, linkID) {
		a.state.CancelEdit()
	}
	a.mu.Unlock()

	a.notifier.Notify(LevelSuccess, "Link deleted")
	return nil
}

// token はログイン中のトークンを返す。未ログインの場合は通知してErrNotLoggedInを返す。
func (a *App) token() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.state.LoggedIn() {
		a.notifier.Notify(LevelError, "Please login first")
		return "", ErrNotLoggedIn
	}
	return a.state.Session.Token, nil
}

// authFailure は認証済み操作の失敗を処理する。
// 401/403の場合はセッションとコレクションを破棄し再ログインを促す。
func (a *App) authFailure(op string, err error, message string) error {
	if IsSessionExpired(err) {
		a.expireSession()
		return err
	}
	a.fail(op, err, message)
	return err
}

func (a *App) expireSession() {
	if err := a.sessions.Clear(); err != nil {
		a.logger.Warn("failed to clear session", slog.String("error", err.Error()))
	}
	a.mu.Lock()
	a.state.Reset()
	a.mu.Unlock()
	a.notifier.Notify(LevelError, "Session expired. Please login again.")
}

func (a *App) fail(op string, err error, message string) {
	a.logger.Debug("client operation failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	a.notifier.Notify(LevelError, message)
}
