package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	flag "github.com/spf13/pflag"

	tardis "github.com/ETML-INF/tardis-pipelines"
	"github.com/ETML-INF/tardis-pipelines/internal/assets"
	"github.com/ETML-INF/tardis-pipelines/internal/config"
	"github.com/ETML-INF/tardis-pipelines/internal/dateutil"
	"github.com/ETML-INF/tardis-pipelines/internal/fileutil"
	"github.com/ETML-INF/tardis-pipelines/internal/hints"
	"github.com/ETML-INF/tardis-pipelines/internal/index"
	"github.com/ETML-INF/tardis-pipelines/internal/metrics"
)

// runExportCmd parses flags, runs the export and returns an exit code.
func runExportCmd(ctx context.Context, args []string, env *Environment) int {
	f, err := parseExportFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		return printError(env.Stderr, fmt.Errorf("%w: %v", ErrUsage, err))
	}

	logger := newLogger(env.Stderr, f.common)
	if err := runExport(ctx, f, env, logger); err != nil {
		return printError(env.Stderr, err)
	}
	return ExitSuccess
}

// runExport resolves the configuration and runs the exporter.
func runExport(ctx context.Context, f *settingsFlags, env *Environment, logger *slog.Logger) error {
	cfg, err := resolveConfig(f, env)
	if err != nil {
		return err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}
	date, err := dateutil.ResolveDate(cfg.Document.Date, env.Now())
	if err != nil {
		return fmt.Errorf("document.date: %w", err)
	}
	resolver, err := newThemeResolver(cfg, logger)
	if err != nil {
		return err
	}
	theme := tardis.LoadThemeAssets(resolver)

	var renderer tardis.Renderer
	if f.run.dryRun {
		renderer = tardis.NewStaticRenderer()
	} else {
		renderer = env.NewRenderer(timeout, cfg.Browser.Locale)
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			logger.Warn("closing renderer", "error", err)
		}
	}()

	out := newConsole(env.Stdout, f.common.quiet, env.NoColor)
	opts := []tardis.ExporterOption{
		tardis.WithLogger(logger),
		tardis.WithObserver(out),
		tardis.WithDryRun(f.run.dryRun),
	}
	var recorder *metrics.Recorder
	if cfg.Metrics.File != "" {
		recorder = metrics.NewRecorder()
		opts = append(opts, tardis.WithObserver(metricsObserver{recorder}))
	}

	exporter := tardis.NewExporter(renderer, theme, exportConfig(cfg, date), opts...)
	report, runErr := exporter.Run(ctx)

	if recorder != nil {
		recorder.ObserveRun(report.Duration, env.Now())
		if err := recorder.WriteTextfile(cfg.Metrics.File); err != nil {
			logger.Warn("metrics not written", "path", cfg.Metrics.File, "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	out.Summary(report)
	if report.Stats.Skipped > 0 && !fileutil.DirExists(cfg.Source.HTMLDir) {
		fmt.Fprintf(env.Stderr, "warning: rendered root %s not found%s\n", cfg.Source.HTMLDir, hints.ForRenderedRoot())
	}

	if f.run.index && !f.run.dryRun {
		res, err := index.NewGenerator(resolver, index.WithLogger(logger)).Generate(cfg.Output.Dir)
		if err != nil {
			return err
		}
		logger.Info("index written", "path", res.Path, "sections", len(res.Sections))
	}
	return nil
}

// exportConfig maps the file configuration onto the exporter's.
func exportConfig(cfg *config.Config, date string) tardis.ExportConfig {
	return tardis.ExportConfig{
		SourceRoot:   cfg.Source.Dir,
		RenderedRoot: cfg.Source.HTMLDir,
		OutputRoot:   cfg.Output.Dir,
		Module:       cfg.Document.Module,
		Date:         date,
		URL:          cfg.Document.URL,
		MarginMM:     cfg.Page.MarginMM,
		Cards: tardis.CardsOptions{
			Disabled:    cfg.Cards.Disabled,
			MarkerClass: cfg.Cards.MarkerClass,
			MarginMM:    cfg.Cards.MarginMM,
		},
	}
}

// newThemeResolver opens the configured theme. A configured theme
// directory must exist; the conventional one is used only when present.
func newThemeResolver(cfg *config.Config, logger *slog.Logger) (*assets.Resolver, error) {
	dir, _ := cfg.ThemeDir()
	r, err := assets.NewResolver(cfg.Theme.Name, dir, logger)
	if err != nil {
		hint := ""
		if errors.Is(err, assets.ErrThemeNotFound) {
			hint = hints.ForThemeNotFound(assets.Themes())
		}
		return nil, fmt.Errorf("theme %s: %w%s", cfg.Theme.Name, err, hint)
	}
	if r.HasCustomLoader() {
		logger.Debug("theme directory", "path", dir)
	}
	return r, nil
}

// metricsObserver feeds document outcomes to the Prometheus recorder.
type metricsObserver struct {
	rec *metrics.Recorder
}

func (m metricsObserver) DocumentDone(o tardis.Outcome) {
	m.rec.ObserveDocument(o.State.String(), string(o.Source.Bucket), o.Duration)
	for _, w := range []*tardis.WrittenPDF{o.Full, o.Cards} {
		if w != nil {
			m.rec.ObservePDF(string(w.Target.Bucket), w.Pages, w.Bytes)
		}
	}
}

// printError writes err with the hints matching its cause and returns
// the exit code.
func printError(w io.Writer, err error) int {
	hint := ""
	switch {
	case errors.Is(err, tardis.ErrBrowserConnect):
		hint = hints.ForBrowserConnect()
	case errors.Is(err, tardis.ErrPageLoad):
		hint = hints.ForTimeout()
	case errors.Is(err, tardis.ErrSourceRoot):
		hint = hints.ForSourceRoot()
	case errors.Is(err, tardis.ErrOutputDir):
		hint = hints.ForOutputDirectory()
	}
	fmt.Fprintf(w, "error: %v%s\n", err, hint)
	return exitCodeFor(err)
}
