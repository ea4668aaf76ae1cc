package client

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"text/tabwriter"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/linkvault/internal/model"
)

// collectionsTemplate はコレクション一覧のHTML断片。
// 値はhtml/templateでエスケープされ、さらにRendererのポリシーを通す。
const collectionsTemplate = `{{if not .Collections}}<div class="empty-state">
<h3>No Collections Yet</h3>
<p>Create your first link collection to get started!</p>
</div>
{{else}}{{range $c := .Collections}}<div class="group-card" data-collection-id="{{$c.ID}}">
<div class="group-header"><h3>{{$c.Title}}</h3></div>
<div class="links-list">
{{if not $c.Links}}<p class="empty-links">No links yet</p>
{{else}}{{range $l := $c.Links}}{{if $.IsEditing $c.ID $l.ID}}<div class="link-item editing" data-link-id="{{$l.ID}}">
<div class="edit-form">
<input type="text" name="name" value="{{$l.Name}}">
<input type="text" name="url" value="{{$l.URL}}">
<div class="edit-buttons"><button type="submit" class="btn btn-save">Save</button><button type="button" class="btn btn-cancel">Cancel</button></div>
</div>
</div>
{{else}}<div class="link-item" data-link-id="{{$l.ID}}">
<div class="link-header"><a href="{{$l.URL}}">{{$l.Name}}</a></div>
<div class="link-url">{{$l.URL}}</div>
</div>
{{end}}{{end}}{{end}}</div>
</div>
{{end}}{{end}}`

// Renderer はクライアント状態をHTMLおよびテキストとして描画する。
// HTMLはbluemondayの許可リストポリシーでサニタイズする。
type Renderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
}

// NewRenderer はRendererを生成する。
// ポリシーの内容:
//   - 許可タグ: div, h3, p, a, input, button
//   - aタグ: http, https, mailto スキームのみ許可し、target="_blank" と rel="noopener noreferrer" を付与
//   - class および data-* 属性を許可
func NewRenderer() *Renderer {
	p := bluemonday.NewPolicy()

	p.AllowElements("div", "h3", "p", "button")
	p.AllowAttrs("class").Globally()
	p.AllowDataAttributes()

	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("type", "name", "value").OnElements("input")
	p.AllowAttrs("type").OnElements("button")

	return &Renderer{
		tmpl:   template.Must(template.New("collections").Parse(collectionsTemplate)),
		policy: p,
	}
}

// RenderHTML はコレクション一覧のHTML断片を返す。
func (r *Renderer) RenderHTML(state State) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, renderData{Collections: state.Collections, editing: state.Editing}); err != nil {
		return "", fmt.Errorf("failed to render collections: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// RenderText はコレクション一覧を端末向けの表形式で書き出す。
// 編集中のリンクには "*" を付ける。
func (r *Renderer) RenderText(w io.Writer, state State) error {
	if state.Session.Valid() {
		fmt.Fprintf(w, "Logged in as %s\n\n", state.Session.Email)
	}
	if len(state.Collections) == 0 {
		_, err := fmt.Fprintln(w, "No Collections Yet. Create your first link collection to get started!")
		return err
	}

	for i, c := range state.Collections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  (%s)\n", c.Title, c.ID)
		if len(c.Links) == 0 {
			fmt.Fprintln(w, "  No links yet")
			continue
		}

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  \tID\tNAME\tURL")
		for _, l := range c.Links {
			mark := ""
			if state.IsEditing(c.ID, l.ID) {
				mark = "*"
			}
			fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\n", mark, l.ID, l.Name, l.URL)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// renderData はテンプレートに渡す値。
type renderData struct {
	Collections []model.Collection
	editing     *EditKey
}

// IsEditing はテンプレートから編集中のリンクを判定するために使う。
func (d renderData) IsEditing(collectionID string, linkID int) bool {
	return d.editing != nil && d.editing.CollectionID == collectionID && d.editing.LinkID == linkID
}
