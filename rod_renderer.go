package tardis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/ETML-INF/tardis-pipelines/internal/process"
)

// Renderer defaults.
const (
	DefaultTimeout = 30 * time.Second
	DefaultLocale  = "fr-CH"
)

// In-page scripts. Fragment references are resolved before the body is
// cleared, so the picked nodes survive the rewrite.
const (
	jsFirstText = `(sel) => {
  const el = document.querySelector(sel);
  return el ? el.innerText : null;
}`
	jsCountClass = `(cls) => document.getElementsByClassName(cls).length`
	jsRebuildBody = `(refs, blank) => {
  const nodes = refs.map((r) => document.getElementsByClassName(r.class)[r.index]).filter(Boolean);
  document.body.innerHTML = "";
  for (const n of nodes) {
    document.body.appendChild(n);
    const b = document.createElement("div");
    b.className = blank;
    document.body.appendChild(b);
  }
  return nodes.length;
}`
)

// RodRenderer prints pages with headless Chrome through go-rod.
// Chrome is launched on the first Open. Rod downloads Chromium when no
// browser is configured.
type RodRenderer struct {
	timeout  time.Duration
	locale   string
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// RodOption configures a RodRenderer.
type RodOption func(*RodRenderer)

// WithTimeout bounds each page load.
func WithTimeout(d time.Duration) RodOption {
	return func(r *RodRenderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLocale sets the locale Chrome reports to pages.
func WithLocale(locale string) RodOption {
	return func(r *RodRenderer) {
		if locale != "" {
			r.locale = locale
		}
	}
}

// NewRodRenderer creates a renderer; the browser starts lazily.
func NewRodRenderer(opts ...RodOption) *RodRenderer {
	r := &RodRenderer{timeout: DefaultTimeout, locale: DefaultLocale}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewLauncher returns the Chrome launcher configured from ROD_BROWSER_BIN,
// ROD_NO_SANDBOX and CI.
func NewLauncher() *launcher.Launcher {
	l := launcher.New()
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	return l
}

func (r *RodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := NewLauncher()
	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return fmt.Errorf("%w: %w", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %w", ErrBrowserConnect, err)
	}
	r.launcher = l
	r.browser = browser
	return nil
}

// Open loads the HTML file at path in a fresh tab and waits until the
// page and its pending requests have settled.
func (r *RodRenderer) Open(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPageCreate, err)
	}
	if err := (proto.EmulationSetLocaleOverride{Locale: r.locale}).Call(page); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: setting locale %s: %w", ErrPageCreate, r.locale, err)
	}

	fileURL, err := fileURL(path)
	if err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %w", ErrPageLoad, err)
	}

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		timeout = time.Until(deadline)
	}
	loading := page.Context(ctx).Timeout(timeout)
	if err := loading.Navigate(fileURL); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrPageLoad, path, err)
	}
	if err := loading.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrPageLoad, path, err)
	}
	if err := loading.WaitIdle(timeout); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %s: waiting for idle: %w", ErrPageLoad, path, err)
	}

	return &rodDocument{page: page}, nil
}

// Close shuts Chrome down and kills any process it left behind.
func (r *RodRenderer) Close() error {
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	if r.launcher != nil {
		process.KillTree(r.launcher.PID())
		r.launcher.Kill()
		r.launcher.Cleanup()
	}
	r.browser = nil
	r.launcher = nil
	return err
}

// fileURL turns a filesystem path into a file:// URL with escaped segments.
func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive letter
	}
	return (&url.URL{Scheme: "file", Path: p}).String(), nil
}

// evalError wraps a failed page evaluation. The cause stays reachable,
// so a canceled context still matches context.Canceled.
func evalError(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrEvaluate, what, err)
}

type rodDocument struct {
	page *rod.Page
}

func (d *rodDocument) AddStyle(ctx context.Context, css string) error {
	if err := d.page.Context(ctx).AddStyleTag("", css); err != nil {
		return evalError("adding style", err)
	}
	return nil
}

func (d *rodDocument) Text(ctx context.Context, selector string) (string, bool, error) {
	res, err := d.page.Context(ctx).Eval(jsFirstText, selector)
	if err != nil {
		return "", false, evalError("reading "+selector, err)
	}
	if res.Value.Nil() {
		return "", false, nil
	}
	return res.Value.Str(), true, nil
}

func (d *rodDocument) Fragments(ctx context.Context, class string) ([]Fragment, error) {
	res, err := d.page.Context(ctx).Eval(jsCountClass, class)
	if err != nil {
		return nil, evalError("counting ."+class, err)
	}
	n := res.Value.Int()
	frags := make([]Fragment, n)
	for i := range frags {
		frags[i] = Fragment{Class: class, Index: i}
	}
	return frags, nil
}

func (d *rodDocument) RebuildBody(ctx context.Context, fragments []Fragment, blankClass string) error {
	res, err := d.page.Context(ctx).Eval(jsRebuildBody, fragments, blankClass)
	if err != nil {
		return evalError("rebuilding body", err)
	}
	if got := res.Value.Int(); got != len(fragments) {
		return fmt.Errorf("%w: rebuilt body holds %d of %d fragments", ErrEvaluate, got, len(fragments))
	}
	return nil
}

func (d *rodDocument) PDF(ctx context.Context, opts PrintOptions) ([]byte, error) {
	margin := mmToInches(opts.MarginMM)
	req := &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(mmToInches(opts.Page.WidthMM)),
		PaperHeight:       floatPtr(mmToInches(opts.Page.HeightMM)),
		MarginTop:         floatPtr(margin),
		MarginBottom:      floatPtr(margin),
		MarginLeft:        floatPtr(margin),
		MarginRight:       floatPtr(margin),
		PrintBackground:   true,
		PreferCSSPageSize: true,
	}
	if opts.HeaderFooter {
		req.DisplayHeaderFooter = true
		req.HeaderTemplate = orEmptySpan(opts.Header)
		req.FooterTemplate = orEmptySpan(opts.Footer)
	}

	stream, err := d.page.Context(ctx).PDF(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPDFGeneration, err)
	}
	buf, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %w", ErrPDFGeneration, err)
	}
	return buf, nil
}

func (d *rodDocument) Close() error {
	if err := d.page.Close(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// orEmptySpan replaces an empty template: Chrome prints its default
// title and URL when a template is empty.
func orEmptySpan(tmpl string) string {
	if strings.TrimSpace(tmpl) == "" {
		return "<span></span>"
	}
	return tmpl
}

func floatPtr(v float64) *float64 {
	return &v
}

var (
	_ Renderer = (*RodRenderer)(nil)
	_ Document = (*rodDocument)(nil)
)
