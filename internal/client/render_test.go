package client

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hitoshi/linkvault/internal/model"
)

func TestRenderHTML_EmptyState(t *testing.T) {
	html, err := NewRenderer().RenderHTML(State{})
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	if !strings.Contains(html, "No Collections Yet") {
		t.Errorf("html = %s", html)
	}
}

func TestRenderHTML_LinksOpenInNewTab(t *testing.T) {
	state := State{Collections: []model.Collection{
		col("c1", model.Link{ID: 1, Name: "Go", URL: "https://go.dev"}),
		col("c2"),
	}}

	html, err := NewRenderer().RenderHTML(state)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	for _, want := range []string{`href="https://go.dev"`, `target="_blank"`, "noopener", "noreferrer", "No links yet", "title-c1"} {
		if !strings.Contains(html, want) {
			t.Errorf("html does not contain %q:\n%s", want, html)
		}
	}
}

func TestRenderHTML_EscapesAndDropsUnsafeContent(t *testing.T) {
	c := col("c1",
		model.Link{ID: 1, Name: `<script>alert(1)</script>`, URL: "javascript:alert(1)"},
		model.Link{ID: 2, Name: `"><img src=x onerror=alert(1)>`, URL: "https://example.com"},
	)
	c.Title = `<b onclick="x()">T</b>`

	html, err := NewRenderer().RenderHTML(State{Collections: []model.Collection{c}})
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	for _, bad := range []string{"<script", `href="javascript`, `onerror="`, `onclick="`, "<img", "<b "} {
		if strings.Contains(html, bad) {
			t.Errorf("html contains %q:\n%s", bad, html)
		}
	}
}

func TestRenderHTML_EditForm(t *testing.T) {
	state := State{
		Collections: []model.Collection{col("c1",
			model.Link{ID: 1, Name: "Go", URL: "https://go.dev"},
			model.Link{ID: 2, Name: "Docs", URL: "https://pkg.go.dev"},
		)},
		Editing: &EditKey{CollectionID: "c1", LinkID: 2},
	}

	html, err := NewRenderer().RenderHTML(state)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	if strings.Count(html, "<input") != 2 {
		t.Errorf("expected one edit form with two inputs:\n%s", html)
	}
	if !strings.Contains(html, `value="Docs"`) {
		t.Errorf("edit form does not carry the current name:\n%s", html)
	}
	if !strings.Contains(html, `href="https://go.dev"`) {
		t.Error("non-edited link must render as an anchor")
	}
}

func TestRenderText(t *testing.T) {
	state := State{
		Session: Session{Token: "t", Email: "a@example.com"},
		Collections: []model.Collection{
			col("c1", model.Link{ID: 1, Name: "Go", URL: "https://go.dev"}, model.Link{ID: 2, Name: "Docs", URL: "https://pkg.go.dev"}),
			col("c2"),
		},
		Editing: &EditKey{CollectionID: "c1", LinkID: 2},
	}

	var buf bytes.Buffer
	if err := NewRenderer().RenderText(&buf, state); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Logged in as a@example.com", "title-c1  (c1)", "https://pkg.go.dev", "No links yet"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}

	var editedLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Docs") {
			editedLine = line
		}
	}
	if !strings.Contains(editedLine, "*") {
		t.Errorf("edited link is not marked: %q", editedLine)
	}
}
