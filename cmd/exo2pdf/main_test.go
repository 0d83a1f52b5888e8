package main

// Notes:
// - Commands run through run() with a testEnv; exports use the static
//   renderer, so "PDF" files hold printed HTML.
// - No test touches the process environment, so all run in parallel.

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(root, p)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("walk %s: %v", root, err)
	}
	return files
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

func TestRun_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "version", args: []string{"version"}, wantStdout: "exo2pdf dev"},
		{name: "help", args: []string{"help"}, wantStdout: "Usage: exo2pdf [command] [flags]"},
		{name: "help export", args: []string{"help", "export"}, wantStdout: "--no-cards"},
		{name: "help unknown", args: []string{"help", "nope"}, wantStderr: "Unknown command: nope"},
		{name: "unknown command", args: []string{"convert"}, wantCode: ExitUsage, wantStderr: "Unknown command: convert"},
		{name: "export help flag", args: []string{"--help"}, wantStderr: "Usage: exo2pdf export"},
		{name: "bad flag", args: []string{"export", "--nope"}, wantCode: ExitUsage, wantStderr: "unknown flag"},
		{name: "stray argument", args: []string{"export", "extra"}, wantCode: ExitUsage, wantStderr: "unexpected arguments: extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(nil)
			code := run(context.Background(), append([]string{"exo2pdf"}, tt.args...), env.Environment)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, env.stderr)
			}
			if !strings.Contains(env.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", env.stdout, tt.wantStdout)
			}
			if !strings.Contains(env.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", env.stderr, tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

func TestRun_Export(t *testing.T) {
	t.Parallel()

	src := course(t)
	env := newTestEnv(nil)

	code := run(context.Background(), []string{"exo2pdf", "--src", src, "--index"}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, env.stderr)
	}

	out := filepath.Join(src, "_build", "exo-pdf")
	want := []string{
		"cards/revisions-cards.pdf",
		"exercises/boucles.pdf",
		"exercises/revisions.pdf",
		"exo-index.css",
		"index.html",
		"solutions/boucles.pdf",
	}
	if diff := cmp.Diff(want, listFiles(t, out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	stdout := env.stdout.String()
	for _, line := range []string{
		"✓ unitA/exercises/boucles.md -> exercises/boucles.pdf\n",
		"✓ unitA/solutions/boucles.md -> solutions/boucles.pdf\n",
		"  ✓ 1 card sheets -> cards/revisions-cards.pdf\n",
		"3 PDF created, 0 skipped, 1 card sheets created, 0 card sheets skipped\n",
	} {
		if !strings.Contains(stdout, line) {
			t.Errorf("stdout missing %q:\n%s", line, stdout)
		}
	}

	idx, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(idx), "./exercises/boucles.pdf") {
		t.Errorf("index does not link the exercises:\n%s", idx)
	}
}

func TestRun_ExportEnvironmentLayers(t *testing.T) {
	t.Parallel()

	src := course(t)
	out := filepath.Join(t.TempDir(), "pdf")
	metricsFile := filepath.Join(t.TempDir(), "exo2pdf.prom")
	env := newTestEnv(map[string]string{
		"SPHINX_SRC_DIR":       src,
		"PDF_OUT_DIR":          filepath.Join(t.TempDir(), "overridden-by-flag"),
		"EXO2PDF_CARDS":        "off",
		"EXO2PDF_METRICS_FILE": metricsFile,
		"EXO2PDF_TYPO":         "1",
	})

	code := run(context.Background(), []string{"exo2pdf", "export", "-o", out, "-q"}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, env.stderr)
	}

	want := []string{"exercises/boucles.pdf", "exercises/revisions.pdf", "solutions/boucles.pdf"}
	if diff := cmp.Diff(want, listFiles(t, out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if env.stdout.Len() != 0 {
		t.Errorf("quiet mode printed:\n%s", env.stdout)
	}
	if !strings.Contains(env.stderr.String(), "unknown environment variable EXO2PDF_TYPO") {
		t.Errorf("stderr = %q, want typo warning", env.stderr)
	}

	prom, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	for _, want := range []string{
		`exo2pdf_documents_total{bucket="exercises",state="full-pdf-written"} 2`,
		`exo2pdf_documents_total{bucket="solutions",state="full-pdf-written"} 1`,
		"exo2pdf_last_run_timestamp_seconds",
	} {
		if !strings.Contains(string(prom), want) {
			t.Errorf("metrics missing %q:\n%s", want, prom)
		}
	}
}

func TestRun_ExportDryRun(t *testing.T) {
	t.Parallel()

	src := course(t)
	env := newTestEnv(nil)
	env.NewRenderer = nil // dry runs never start the browser

	code := run(context.Background(), []string{"exo2pdf", "--src", src, "--dry-run", "--index"}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, env.stderr)
	}
	if files := listFiles(t, filepath.Join(src, "_build", "exo-pdf")); len(files) != 0 {
		t.Errorf("dry run wrote %v", files)
	}
	if !strings.Contains(env.stdout.String(), "(dry run)") {
		t.Errorf("stdout = %q, want dry run summary", env.stdout)
	}
}

func TestRun_ExportSkippedWithoutSite(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "Support")
	writeTree(t, src, map[string]string{"u/exercises/a.md": "# A"})
	env := newTestEnv(nil)

	code := run(context.Background(), []string{"exo2pdf", "--src", src}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, env.stderr)
	}
	if !strings.Contains(env.stdout.String(), "0 PDF created, 1 skipped") {
		t.Errorf("stdout = %q", env.stdout)
	}
	if !strings.Contains(env.stderr.String(), "hint: build the site first") {
		t.Errorf("stderr = %q, want rendered root hint", env.stderr)
	}
}

func TestRun_ExportErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       func(src string) []string
		vars       map[string]string
		wantCode   int
		wantStderr string
	}{
		{
			name:       "missing source root",
			args:       func(src string) []string { return []string{"--src", filepath.Join(src, "nope")} },
			wantCode:   ExitIO,
			wantStderr: "hint: run from the course repository root",
		},
		{
			name:       "config not found",
			args:       func(src string) []string { return []string{"--src", src, "-c", "exo2pdf-missing-config"} },
			wantCode:   ExitUsage,
			wantStderr: "hint: use --config",
		},
		{
			name:       "config from env not found",
			args:       func(src string) []string { return []string{"--src", src} },
			vars:       map[string]string{"EXO2PDF_CONFIG": "/nonexistent/exo2pdf.yaml"},
			wantCode:   ExitUsage,
			wantStderr: "config file not found",
		},
		{
			name:       "invalid date",
			args:       func(src string) []string { return []string{"--src", src, "--date", "autumn"} },
			wantCode:   ExitUsage,
			wantStderr: "invalid date format",
		},
		{
			name:       "unknown theme",
			args:       func(src string) []string { return []string{"--src", src, "--theme", "etml-1999"} },
			wantCode:   ExitUsage,
			wantStderr: "hint: bundled themes: etml-2025",
		},
		{
			name:       "invalid timeout",
			args:       func(src string) []string { return []string{"--src", src, "--timeout", "soon"} },
			wantCode:   ExitUsage,
			wantStderr: "browser.timeout",
		},
		{
			name:       "invalid cards switch",
			args:       func(src string) []string { return []string{"--src", src} },
			vars:       map[string]string{"EXO2PDF_CARDS": "maybe"},
			wantCode:   ExitUsage,
			wantStderr: "EXO2PDF_CARDS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := course(t)
			env := newTestEnv(tt.vars)
			args := append([]string{"exo2pdf", "export"}, tt.args(src)...)
			code := run(context.Background(), args, env.Environment)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, env.stderr)
			}
			if !strings.Contains(env.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", env.stderr, tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Index and config
// ---------------------------------------------------------------------------

func TestRun_Index(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	writeTree(t, out, map[string]string{
		"exercises/b.pdf":   "%PDF-",
		"exercises/a.pdf":   "%PDF-",
		"cards/a-cards.pdf": "%PDF-",
	})
	env := newTestEnv(nil)

	code := run(context.Background(), []string{"exo2pdf", "index", "-o", out, "--title", "ICT-122"}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, env.stderr)
	}
	want := filepath.Join(out, "index.html") + ": 3 PDF in 2 sections\n"
	if got := env.stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	html, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(html), "ICT-122") {
		t.Errorf("index has no title:\n%s", html)
	}
}

func TestRun_Config(t *testing.T) {
	t.Parallel()

	env := newTestEnv(map[string]string{"ICT_MODULE": "ICT-122", "EXO_URL": "https://exos.example.ch"})

	code := run(context.Background(), []string{"exo2pdf", "config", "--src", "cours", "--module", "ICT-293"}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, env.stderr)
	}
	got := env.stdout.String()
	for _, want := range []string{
		"module: ICT-293",
		"https://exos.example.ch",
		"dir: cours",
		"htmlDir: " + filepath.Join("cours", "_build/html"),
		"markerClass: tardis-card",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("config output missing %q:\n%s", want, got)
		}
	}
}
