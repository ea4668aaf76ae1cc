package model

import "time"

// Collection はユーザーが作成したリンクのグループを表す。
// リンクはコレクションのドキュメントに埋め込まれ、一括で保存される。
type Collection struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Links     []Link    `json:"links"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Link はコレクション内の名前付きURLを表す。
// IDはコレクション内でのみ一意。
type Link struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Clone はLinksを複製したコピーを返す。
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Links = append([]Link{}, c.Links...)
	return &cp
}

// FindLink は指定IDのリンクの位置を返す。存在しない場合は-1。
func (c *Collection) FindLink(id int) int {
	for i, l := range c.Links {
		if l.ID == id {
			return i
		}
	}
	return -1
}
