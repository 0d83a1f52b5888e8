package tardis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ETML-INF/tardis-pipelines/internal/fileutil"
	"github.com/ETML-INF/tardis-pipelines/internal/pdfinfo"
)

// State is the last state a document reached during a run.
type State int

// Document states, in pipeline order.
const (
	StateDiscovered State = iota
	StateHTMLMissing
	StateLoaded
	StateFullPDFWritten
	StateNoCards
	StateCardsDetected
	StateCardsPDFWritten
	StateCardsAbsent
)

var stateNames = [...]string{
	StateDiscovered:      "discovered",
	StateHTMLMissing:     "html-missing",
	StateLoaded:          "loaded",
	StateFullPDFWritten:  "full-pdf-written",
	StateNoCards:         "no-cards",
	StateCardsDetected:   "cards-detected",
	StateCardsPDFWritten: "cards-pdf-written",
	StateCardsAbsent:     "cards-absent",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// WrittenPDF describes one PDF produced for a document.
type WrittenPDF struct {
	Target OutputTarget
	Bytes  int
	Pages  int // -1 when unknown
}

// Outcome is the result of exporting one document.
type Outcome struct {
	Source    SourceDocument
	State     State
	Title     string
	Full      *WrittenPDF
	Cards     *WrittenPDF
	Fragments int
	Duration  time.Duration
}

// Stats are the run counters.
type Stats struct {
	Converted    int // full-document PDFs written
	Skipped      int // rendered page missing
	CardsMade    int // card-sheet PDFs written
	CardsSkipped int // source mentions cards, render has none
	NoCards      int // source mentions no cards
}

// Report summarizes a run.
type Report struct {
	RunID    string
	DryRun   bool
	Stats    Stats
	Outcomes []Outcome
	Duration time.Duration
}

// Summary is the one-line end-of-run message.
func (r *Report) Summary() string {
	s := fmt.Sprintf("%d PDF created, %d skipped", r.Stats.Converted, r.Stats.Skipped)
	if r.Stats.CardsMade > 0 || r.Stats.CardsSkipped > 0 {
		s += fmt.Sprintf(", %d card sheets created, %d card sheets skipped", r.Stats.CardsMade, r.Stats.CardsSkipped)
	}
	if r.DryRun {
		s += " (dry run)"
	}
	return s
}

// Observer is notified after each document.
type Observer interface {
	DocumentDone(Outcome)
}

// ExportConfig holds the run parameters.
type ExportConfig struct {
	SourceRoot   string
	RenderedRoot string
	OutputRoot   string
	Module       string
	Date         string // already resolved
	URL          string
	MarginMM     float64 // full-document pass, 0 = DefaultMarginMM
	Cards        CardsOptions
}

// CardsOptions configure the card pass.
type CardsOptions struct {
	Disabled    bool
	MarkerClass string  // "" = DefaultCardClass
	MarginMM    float64 // 0 = DefaultCardsMarginMM
}

// DefaultMarginMM is the full-document margin on every side.
const DefaultMarginMM = 14.0

// Exporter runs the two-pass export over a source tree. Documents are
// processed one after the other on a single Renderer.
type Exporter struct {
	renderer  Renderer
	theme     ThemeAssets
	cfg       ExportConfig
	logger    *slog.Logger
	observers []Observer
	dryRun    bool
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ExporterOption {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver adds an observer.
func WithObserver(o Observer) ExporterOption {
	return func(e *Exporter) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithDryRun renders and prints without creating directories or files.
func WithDryRun(dry bool) ExporterOption {
	return func(e *Exporter) { e.dryRun = dry }
}

// NewExporter creates an Exporter.
func NewExporter(r Renderer, theme ThemeAssets, cfg ExportConfig, opts ...ExporterOption) *Exporter {
	if cfg.MarginMM == 0 {
		cfg.MarginMM = DefaultMarginMM
	}
	if cfg.Cards.MarkerClass == "" {
		cfg.Cards.MarkerClass = DefaultCardClass
	}
	if cfg.Cards.MarginMM == 0 {
		cfg.Cards.MarginMM = DefaultCardsMarginMM
	}
	e := &Exporter{
		renderer: r,
		theme:    theme,
		cfg:      cfg,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// run carries the per-run state.
type run struct {
	id        string
	logger    *slog.Logger
	names     *NameResolver
	templates *TemplateBuilder
	cards     CardSheetExtractor
	report    *Report
}

// Run exports every discovered document. A Renderer failure aborts the
// run; the returned report still covers the documents done so far.
func (e *Exporter) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	id := uuid.NewString()
	logger := e.logger.With("run", id)

	report := &Report{RunID: id, DryRun: e.dryRun}
	defer func() { report.Duration = time.Since(start) }()

	docs, err := Discover(e.cfg.SourceRoot, e.cfg.RenderedRoot)
	if err != nil {
		return report, err
	}
	logger.Info("documents discovered", "count", len(docs), "source", e.cfg.SourceRoot, "html", e.cfg.RenderedRoot, "out", e.cfg.OutputRoot)
	if len(docs) == 0 {
		logger.Warn("no exercise found")
		return report, nil
	}

	if !e.dryRun {
		for _, b := range []Bucket{BucketExercises, BucketSolutions} {
			if err := fileutil.EnsureDir(filepath.Join(e.cfg.OutputRoot, string(b))); err != nil {
				return report, fmt.Errorf("%w: %v", ErrOutputDir, err)
			}
		}
	}

	cards := NewCardSheetExtractor(e.theme.CardsCSS)
	cards.MarkerClass = e.cfg.Cards.MarkerClass
	cards.MarginMM = e.cfg.Cards.MarginMM

	r := &run{
		id:        id,
		logger:    logger,
		names:     NewNameResolver(e.cfg.OutputRoot),
		templates: NewTemplateBuilder(e.theme, e.cfg.Module, e.cfg.Date, e.cfg.URL, logger),
		cards:     cards,
		report:    report,
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		docStart := time.Now()
		outcome, err := e.export(ctx, r, doc)
		outcome.Duration = time.Since(docStart)
		report.Outcomes = append(report.Outcomes, outcome)
		for _, o := range e.observers {
			o.DocumentDone(outcome)
		}
		if err != nil {
			return report, fmt.Errorf("%s: %w", doc.RelPath, err)
		}
	}

	logger.Info("export finished", "converted", report.Stats.Converted, "skipped", report.Stats.Skipped,
		"cards", report.Stats.CardsMade, "cards_skipped", report.Stats.CardsSkipped)
	return report, nil
}

// export drives one document through its states.
func (e *Exporter) export(ctx context.Context, r *run, doc SourceDocument) (Outcome, error) {
	out := Outcome{Source: doc, State: StateDiscovered}
	log := r.logger.With("doc", doc.RelPath, "bucket", string(doc.Bucket))

	if !fileutil.FileExists(doc.RenderedPath) {
		log.Warn("rendered page missing, skipped", "path", doc.RenderedPath)
		r.report.Stats.Skipped++
		out.State = StateHTMLMissing
		return out, nil
	}

	full, title, err := e.printFull(ctx, r, doc)
	if err != nil {
		return out, err
	}
	out.State, out.Title, out.Full = StateFullPDFWritten, title, full
	r.report.Stats.Converted++
	log.Info("pdf written", "path", full.Target.Rel(), "pages", full.Pages)

	if e.cfg.Cards.Disabled {
		return out, nil
	}

	source, err := os.ReadFile(doc.Path) // #nosec G304 -- path comes from discovery
	if err != nil {
		return out, fmt.Errorf("reading source: %w", err)
	}
	if !HasCardMarkers(source) {
		r.report.Stats.NoCards++
		out.State = StateNoCards
		return out, nil
	}
	out.State = StateCardsDetected

	cards, fragments, err := e.printCards(ctx, r, doc)
	if err != nil {
		return out, err
	}
	out.Fragments = fragments
	if cards == nil {
		log.Warn("source declares cards but the rendered page has none; check the card extension in the Sphinx build",
			"class", r.cards.MarkerClass)
		r.report.Stats.CardsSkipped++
		out.State = StateCardsAbsent
		return out, nil
	}
	if cards.Pages >= 0 && cards.Pages < 2*fragments {
		log.Warn("card PDF has fewer pages than sheets and blanks", "pages", cards.Pages, "sheets", fragments)
	}
	r.report.Stats.CardsMade++
	out.State, out.Cards = StateCardsPDFWritten, cards
	log.Info("card sheets written", "path", cards.Target.Rel(), "sheets", fragments)
	return out, nil
}

// printFull runs the full-document pass on its own handle.
func (e *Exporter) printFull(ctx context.Context, r *run, doc SourceDocument) (_ *WrittenPDF, title string, err error) {
	page, err := e.renderer.Open(ctx, doc.RenderedPath)
	if err != nil {
		return nil, "", err
	}
	defer func() { err = errors.Join(err, page.Close()) }()

	for _, css := range []string{pageRuleCSS(PageA4, e.cfg.MarginMM), e.theme.PrintCSS} {
		if css == "" {
			continue
		}
		if err := page.AddStyle(ctx, css); err != nil {
			return nil, "", err
		}
	}

	title = doc.BaseName()
	if h1, ok, err := page.Text(ctx, "h1"); err != nil {
		return nil, "", err
	} else if ok {
		if clean := SanitizeTitle(h1); clean != "" {
			title = clean
		}
	}

	header, footer := r.templates.Build(title)
	pdf, err := page.PDF(ctx, PrintOptions{
		Page:         PageA4,
		MarginMM:     e.cfg.MarginMM,
		HeaderFooter: true,
		Header:       header,
		Footer:       footer,
	})
	if err != nil {
		return nil, "", err
	}

	target := r.names.Resolve(doc)
	written, err := e.write(target, pdf)
	if err != nil {
		return nil, "", err
	}
	return written, title, nil
}

// printCards runs the card pass on a second handle. It returns a nil
// PDF when the render holds no card sheet.
func (e *Exporter) printCards(ctx context.Context, r *run, doc SourceDocument) (_ *WrittenPDF, fragments int, err error) {
	page, err := e.renderer.Open(ctx, doc.RenderedPath)
	if err != nil {
		return nil, 0, err
	}
	defer func() { err = errors.Join(err, page.Close()) }()

	sheet, err := r.cards.Extract(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	if sheet.Fragments == 0 {
		return nil, 0, nil
	}

	target := r.names.ResolveCards(doc)
	written, err := e.write(target, sheet.PDF)
	if err != nil {
		return nil, 0, err
	}
	return written, sheet.Fragments, nil
}

// write stores pdf at target unless this is a dry run.
func (e *Exporter) write(target OutputTarget, pdf []byte) (*WrittenPDF, error) {
	w := &WrittenPDF{Target: target, Bytes: len(pdf), Pages: -1}
	if e.dryRun {
		return w, nil
	}
	if err := fileutil.WriteFile(target.Path, pdf); err != nil {
		if errors.Is(err, fileutil.ErrMkdir) {
			return nil, fmt.Errorf("%w: %v", ErrOutputDir, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	if n, err := pdfinfo.PageCount(pdf); err == nil {
		w.Pages = n
	}
	return w, nil
}
