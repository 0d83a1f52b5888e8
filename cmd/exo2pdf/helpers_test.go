package main

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	tardis "github.com/ETML-INF/tardis-pipelines"
)

// testEnv is an Environment with captured output, a fixed clock and a
// private environment map. Exports use the static renderer.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	vars   map[string]string
}

func newTestEnv(vars map[string]string) *testEnv {
	if vars == nil {
		vars = map[string]string{}
	}
	te := &testEnv{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, vars: vars}
	te.Environment = &Environment{
		Now:     func() time.Time { return time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC) },
		Stdout:  te.stdout,
		Stderr:  te.stderr,
		Getenv:  func(k string) string { return te.vars[k] },
		Environ: te.environ,
		NoColor: true,
		NewRenderer: func(time.Duration, string) tardis.Renderer {
			return tardis.NewStaticRenderer()
		},
	}
	return te
}

func (te *testEnv) environ() []string {
	out := make([]string, 0, len(te.vars))
	for k, v := range te.vars {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// writeTree creates files under root from slash-separated relative paths.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func page(body string) string {
	return "<!DOCTYPE html><html><head><title>t</title></head><body>" + body + "</body></html>"
}

// course creates a small course tree and returns its source root. The
// rendered site lives in the conventional <src>/_build/html.
func course(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "Support")
	writeTree(t, src, map[string]string{
		"unitA/exercises/boucles.md":                 "# Boucles",
		"unitA/solutions/boucles.md":                 "# Boucles corrigé",
		"unitB/exercises/revisions.md":               "# Révisions\n\n```{card}\nRecto\n```\n",
		"unitB/exercises/index.md":                   "# Index",
		"_build/html/unitA/exercises/boucles.html":   page("<h1>Boucles</h1>"),
		"_build/html/unitA/solutions/boucles.html":   page("<h1>Boucles corrigé</h1>"),
		"_build/html/unitB/exercises/revisions.html": page(`<h1>Révisions</h1><!-- TARDIS_CARD_RENDERED --><div class="tardis-card" style="">1</div>`),
	})
	return src
}
