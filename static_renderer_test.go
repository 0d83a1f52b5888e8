package tardis

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestStaticRenderer_Open(t *testing.T) {
	t.Parallel()

	r := NewStaticRenderer()
	_, err := r.Open(context.Background(), filepath.Join(t.TempDir(), "missing.html"))
	if !errors.Is(err, ErrPageLoad) {
		t.Errorf("Open(missing) error = %v, want ErrPageLoad", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Open(ctx, "whatever.html"); !errors.Is(err, context.Canceled) {
		t.Errorf("Open(canceled) error = %v, want context.Canceled", err)
	}
}

func TestStaticDocument_Text(t *testing.T) {
	t.Parallel()

	_, doc := openStatic(t, `<div class="note">Note</div><h1>Exercice <em>1</em><script>x()</script></h1><h1>Second</h1>`)
	ctx := context.Background()

	tests := []struct {
		selector string
		want     string
		wantOK   bool
		wantErr  bool
	}{
		{selector: "h1", want: "Exercice 1", wantOK: true},
		{selector: "H1", want: "Exercice 1", wantOK: true},
		{selector: ".note", want: "Note", wantOK: true},
		{selector: "h2"},
		{selector: ".absent"},
		{selector: "div > h1", wantErr: true},
		{selector: "", wantErr: true},
	}
	for _, tt := range tests {
		got, ok, err := doc.Text(ctx, tt.selector)
		if tt.wantErr {
			if !errors.Is(err, ErrEvaluate) {
				t.Errorf("Text(%q) error = %v, want ErrEvaluate", tt.selector, err)
			}
			continue
		}
		if err != nil || ok != tt.wantOK || got != tt.want {
			t.Errorf("Text(%q) = %q, %v, %v, want %q, %v", tt.selector, got, ok, err, tt.want, tt.wantOK)
		}
	}
}

func TestStaticDocument_AddStyleAndPDF(t *testing.T) {
	t.Parallel()

	r, doc := openStatic(t, `<p>x</p>`)
	ctx := context.Background()

	if err := doc.AddStyle(ctx, "p{color:red}"); err != nil {
		t.Fatalf("AddStyle() error = %v", err)
	}
	opts := PrintOptions{Page: PageA4, MarginMM: 14, HeaderFooter: true, Header: "<b>h</b>"}
	out, err := doc.PDF(ctx, opts)
	if err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
	if !strings.Contains(string(out), "<style>p{color:red}</style></head>") {
		t.Errorf("style not appended to head:\n%s", out)
	}

	prints := r.Prints()
	if len(prints) != 1 || prints[0].Options != opts || !strings.HasSuffix(prints[0].Path, "ex.html") {
		t.Errorf("Prints() = %+v", prints)
	}
	prints[0].HTML = ""
	if r.Prints()[0].HTML == "" {
		t.Error("Prints() must return a copy")
	}
}

func TestStaticDocument_RebuildBodyBadReference(t *testing.T) {
	t.Parallel()

	_, doc := openStatic(t, `<div class="s">1</div>`)
	err := doc.RebuildBody(context.Background(), []Fragment{{Class: "s", Index: 1}}, BlankPageClass)
	if !errors.Is(err, ErrEvaluate) {
		t.Errorf("RebuildBody() error = %v, want ErrEvaluate", err)
	}
}
