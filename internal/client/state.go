package client

import "github.com/hitoshi/linkvault/internal/model"

// EditKey は編集中のリンクを (コレクションID, リンクID) で特定する。
type EditKey struct {
	CollectionID string
	LinkID       int
}

// State はクライアントのアプリケーション状態。
// セッション、取得済みコレクション一覧、編集中のリンク（最大1件）を保持する。
type State struct {
	Session     Session
	Collections []model.Collection
	Editing     *EditKey
}

// LoggedIn はセッションが有効かを返す。
func (s State) LoggedIn() bool {
	return s.Session.Valid()
}

// Reset はセッション、コレクション、編集状態をすべて破棄する。
func (s *State) Reset() {
	*s = State{}
}

// Clone は他の状態と共有しないコピーを返す。
func (s *State) Clone() State {
	cp := State{Session: s.Session}
	if s.Collections != nil {
		cp.Collections = make([]model.Collection, len(s.Collections))
		for i := range s.Collections {
			cp.Collections[i] = *s.Collections[i].Clone()
		}
	}
	if s.Editing != nil {
		key := *s.Editing
		cp.Editing = &key
	}
	return cp
}

// FindCollection はIDに一致するコレクションの位置を返す。見つからない場合は-1。
func (s *State) FindCollection(id string) int {
	for i := range s.Collections {
		if s.Collections[i].ID == id {
			return i
		}
	}
	return -1
}

// ReplaceCollection はサーバーから返されたコレクションで同じIDのローカルコピーを置き換える。
// ローカルに無い場合は何もしない。
func (s *State) ReplaceCollection(c model.Collection) {
	if i := s.FindCollection(c.ID); i >= 0 {
		s.Collections[i] = c
	}
}

// RemoveCollection はIDに一致するコレクションをローカル一覧から取り除く。
func (s *State) RemoveCollection(id string) {
	if i := s.FindCollection(id); i >= 0 {
		s.Collections = append(s.Collections[:i], s.Collections[i+1:]...)
	}
}

// StartEdit は編集対象を設定する。編集中のリンクがあれば破棄する。
func (s *State) StartEdit(collectionID string, linkID int) {
	s.Editing = &EditKey{CollectionID: collectionID, LinkID: linkID}
}

// CancelEdit は編集状態を解除する。
func (s *State) CancelEdit() {
	s.Editing = nil
}

// IsEditing は指定のリンクが編集中かを返す。
func (s State) IsEditing(collectionID string, linkID int) bool {
	return s.Editing != nil && s.Editing.CollectionID == collectionID && s.Editing.LinkID == linkID
}
