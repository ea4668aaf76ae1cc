package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Session はログイン中のトークンとメールアドレス。
type Session struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Valid はトークンとメールアドレスの両方が揃っているかを返す。
func (s Session) Valid() bool {
	return s.Token != "" && s.Email != ""
}

// SessionStore はセッションを永続化するインターフェース。
type SessionStore interface {
	// Load は保存済みのセッションを返す。保存されていない場合はゼロ値を返す。
	Load() (Session, error)
	Save(s Session) error
	Clear() error
}

// FileSessionStore はセッションをJSONファイルに保存する。
type FileSessionStore struct {
	path string
}

// NewFileSessionStore はFileSessionStoreを生成する。
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// Path は保存先のファイルパスを返す。
func (s *FileSessionStore) Path() string {
	return s.path
}

// Load はファイルからセッションを読み込む。ファイルが無い場合はゼロ値を返す。
func (s *FileSessionStore) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	return sess, nil
}

// Save はセッションをファイルに書き込む。トークンを含むため所有者のみ読み書き可能にする。
func (s *FileSessionStore) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear はセッションファイルを削除する。存在しない場合は何もしない。
func (s *FileSessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// MemorySessionStore はプロセス内にのみセッションを保持する。
type MemorySessionStore struct {
	mu   sync.Mutex
	sess Session
}

// NewMemorySessionStore はMemorySessionStoreを生成する。
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess, nil
}

func (s *MemorySessionStore) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = sess
	return nil
}

func (s *MemorySessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = Session{}
	return nil
}

var (
	_ SessionStore = (*FileSessionStore)(nil)
	_ SessionStore = (*MemorySessionStore)(nil)
)
