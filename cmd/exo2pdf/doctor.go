package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	tardis "github.com/ETML-INF/tardis-pipelines"
	"github.com/ETML-INF/tardis-pipelines/internal/assets"
	"github.com/ETML-INF/tardis-pipelines/internal/fileutil"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo  `json:"chrome"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Project  projectInfo `json:"project"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// projectInfo holds the course tree checks.
type projectInfo struct {
	SourceDir   string `json:"source_dir"`
	HTMLDir     string `json:"html_dir"`
	OutputDir   string `json:"output_dir"`
	Exercises   int    `json:"exercises"`
	Rendered    int    `json:"rendered"`
	Theme       string `json:"theme"`
	ThemeDir    string `json:"theme_dir,omitempty"`
	ThemeLoaded bool   `json:"theme_loaded"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	f, jsonOutput, err := parseInspectFlags("doctor", args, env.Stderr, printDoctorUsage)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		return printError(env.Stderr, fmt.Errorf("%w: %v", ErrUsage, err))
	}

	result := runDoctor(f, env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(f *settingsFlags, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result)
	checkEnvironment(result, env.Getenv)
	checkSystem(result)
	checkProject(result, f, env)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; rod will download Chromium on first export. Set ROD_BROWSER_BIN to use an installed one")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- browser path from env or rod lookup
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, getenv func(string) string) {
	result.Env.Container, result.Env.ContainerHint = isContainer(getenv)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer returns whether a container was detected and which signal
// gave it away.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("EXO2PDF_CONTAINER") == "1" {
		return true, "EXO2PDF_CONTAINER=1"
	}
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies Chrome can create its profile directory.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	f, err := os.CreateTemp(tmpDir, "exo2pdf-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	result.System.TempWritable = true
}

// checkProject resolves the configuration and inspects the course tree.
func checkProject(result *doctorResult, f *settingsFlags, env *Environment) {
	cfg, err := resolveConfig(f, env)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	p := &result.Project
	p.SourceDir, p.HTMLDir, p.OutputDir = cfg.Source.Dir, cfg.Source.HTMLDir, cfg.Output.Dir
	p.Theme = cfg.Theme.Name
	dir, explicit := cfg.ThemeDir()
	p.ThemeDir = dir

	if explicit && !fileutil.DirExists(dir) {
		result.Errors = append(result.Errors, fmt.Sprintf("Theme directory not found: %s", dir))
	} else if r, err := assets.NewResolver(cfg.Theme.Name, dir, slog.New(slog.DiscardHandler)); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Theme %s: %v", cfg.Theme.Name, err))
	} else if _, err := r.Load(assets.KeyPrintCSS); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Theme %s has no %s", cfg.Theme.Name, assets.KeyPrintCSS))
	} else {
		p.ThemeLoaded = true
	}

	docs, err := tardis.Discover(cfg.Source.Dir, cfg.Source.HTMLDir)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Source root: %v", err))
		return
	}
	p.Exercises = len(docs)
	for _, d := range docs {
		if fileutil.FileExists(d.RenderedPath) {
			p.Rendered++
		}
	}
	switch {
	case len(docs) == 0:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("No exercise found under %s", cfg.Source.Dir))
	case !fileutil.DirExists(cfg.Source.HTMLDir):
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Rendered root %s not found; build the site first", cfg.Source.HTMLDir))
	case p.Rendered < p.Exercises:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d of %d exercises have no rendered page", p.Exercises-p.Rendered, p.Exercises))
	}

	if parent := nearestExistingDir(cfg.Output.Dir); parent == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("Output root %s has no existing parent", cfg.Output.Dir))
	}
}

// nearestExistingDir returns path or its closest existing ancestor.
func nearestExistingDir(path string) string {
	p := filepath.Clean(path)
	for {
		if fileutil.DirExists(p) {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return ""
		}
		p = parent
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "exo2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Project")
	if r.Project.SourceDir != "" {
		fmt.Fprintf(w, "  Source:   %s (%d exercises)\n", r.Project.SourceDir, r.Project.Exercises)
		fmt.Fprintf(w, "  Rendered: %s (%d pages)\n", r.Project.HTMLDir, r.Project.Rendered)
		fmt.Fprintf(w, "  Output:   %s\n", r.Project.OutputDir)
		status := "[OK]"
		if !r.Project.ThemeLoaded {
			status = "[WARN]"
		}
		fmt.Fprintf(w, "  %s Theme: %s\n", status, r.Project.Theme)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to export")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
