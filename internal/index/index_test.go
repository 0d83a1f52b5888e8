package index

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ETML-INF/tardis-pipelines/internal/assets"
)

type mapAssets map[string]string

func (m mapAssets) LoadOptional(name string) ([]byte, bool) {
	v, ok := m[name]
	return []byte(v), ok
}

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(root, filepath.FromSlash(r))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func bundledTheme(t *testing.T) *assets.Resolver {
	t.Helper()
	r, err := assets.NewResolver(assets.DefaultTheme, "", nil)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	return r
}

func TestGenerate_ListsBucketsInFrenchOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, root,
		"exercises/zeta.pdf",
		"exercises/Élan.pdf",
		"exercises/alpha.pdf",
		"exercises/notes.txt",
		"solutions/alpha.PDF",
	)

	res, err := NewGenerator(bundledTheme(t), WithTitle("Exercices Module ICT")).Generate(root)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := []Section{
		{Bucket: "exercises", Label: "Exercices", Files: []File{
			{Name: "alpha.pdf", Href: "./exercises/alpha.pdf"},
			{Name: "Élan.pdf", Href: "./exercises/%C3%89lan.pdf"},
			{Name: "zeta.pdf", Href: "./exercises/zeta.pdf"},
		}},
		{Bucket: "solutions", Label: "Solutions", Files: []File{
			{Name: "alpha.PDF", Href: "./solutions/alpha.PDF"},
		}},
	}
	if diff := cmp.Diff(want, res.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
	if !res.CSS {
		t.Error("stylesheet not copied")
	}

	html, err := os.ReadFile(filepath.Join(root, IndexFile))
	if err != nil {
		t.Fatalf("reading index: %v", err)
	}
	for _, s := range []string{"Exercices Module ICT", `href="./exercises/alpha.pdf"`, `href="exo-index.css"`} {
		if !strings.Contains(string(html), s) {
			t.Errorf("index.html missing %q", s)
		}
	}
	if strings.Contains(string(html), "exo-empty") {
		t.Error("empty placeholder rendered although exercises exist")
	}
	if _, err := os.Stat(filepath.Join(root, StylesheetFile)); err != nil {
		t.Errorf("stylesheet missing: %v", err)
	}
}

func TestGenerate_EmptyTreeShowsPlaceholder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	res, err := NewGenerator(bundledTheme(t)).Generate(root)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(res.Sections) != 0 {
		t.Errorf("Sections = %v, want none", res.Sections)
	}
	html, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(html), "Aucun exercice PDF disponible") {
		t.Error("placeholder missing from empty index")
	}
}

func TestGenerate_MissingCSSStillWritesIndex(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	src := mapAssets{assets.KeyIndexTemplate: `{{range .Sections}}{{.Bucket}}:{{len .Files}};{{end}}`}
	touch(t, root, "cards/ex1-cards.pdf")

	res, err := NewGenerator(src).Generate(root)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.CSS {
		t.Error("CSS reported copied without a stylesheet asset")
	}
	got, _ := os.ReadFile(res.Path)
	if string(got) != "cards:1;" {
		t.Errorf("index = %q, want %q", got, "cards:1;")
	}
}

func TestGenerate_TemplateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     mapAssets
		wantErr error
	}{
		{name: "missing template", src: mapAssets{}, wantErr: ErrTemplateMissing},
		{name: "unparsable template", src: mapAssets{assets.KeyIndexTemplate: "{{range}"}, wantErr: ErrTemplateInvalid},
		{name: "unknown field", src: mapAssets{assets.KeyIndexTemplate: "{{.Nope}}"}, wantErr: ErrTemplateInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewGenerator(tt.src).Generate(t.TempDir()); !errors.Is(err, tt.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
