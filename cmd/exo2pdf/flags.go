package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pathFlags locates the source, rendered and PDF trees.
type pathFlags struct {
	src  string
	html string
	out  string
}

// themeFlags selects the theme.
type themeFlags struct {
	name string
	root string
}

// documentFlags holds the header and footer contents.
type documentFlags struct {
	module string
	url    string
	date   string
}

// runFlags tune an export run.
type runFlags struct {
	timeout     string
	metricsFile string
	noCards     bool
	dryRun      bool
	index       bool
}

// settingsFlags is the union of the configuration flags. Commands
// register only the groups they use.
type settingsFlags struct {
	common   commonFlags
	paths    pathFlags
	theme    themeFlags
	document documentFlags
	run      runFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addPathFlags adds the directory flags to a FlagSet.
func addPathFlags(fs *flag.FlagSet, f *pathFlags) {
	fs.StringVar(&f.src, "src", "", "Markdown source root")
	fs.StringVar(&f.html, "html", "", "rendered HTML root")
	fs.StringVarP(&f.out, "out", "o", "", "PDF output root")
}

// addThemeFlags adds theme flags to a FlagSet.
func addThemeFlags(fs *flag.FlagSet, f *themeFlags) {
	fs.StringVar(&f.name, "theme", "", "theme name")
	fs.StringVar(&f.root, "theme-root", "", "theme directory overriding bundled files")
}

// addDocumentFlags adds header/footer flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.module, "module", "", "module label in the header")
	fs.StringVar(&f.url, "url", "", "public URL in the footer")
	fs.StringVar(&f.date, "date", "", "header date (\"auto\", \"auto:FORMAT\", preset or literal)")
}

// addRunFlags adds export run flags to a FlagSet.
func addRunFlags(fs *flag.FlagSet, f *runFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "page load timeout (e.g., 30s, 1m)")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	fs.BoolVar(&f.noCards, "no-cards", false, "skip the card-sheet pass")
	fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "render without Chrome and without writing files")
	fs.BoolVar(&f.index, "index", false, "write index.html after the export")
}

// newExportFlagSet registers the export flags into f.
func newExportFlagSet(f *settingsFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addPathFlags(fs, &f.paths)
	addThemeFlags(fs, &f.theme)
	addDocumentFlags(fs, &f.document)
	addRunFlags(fs, &f.run)
	return fs
}

// newIndexFlagSet registers the index flags into f and title.
func newIndexFlagSet(f *settingsFlags, title *string) *flag.FlagSet {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.paths.out, "out", "o", "", "PDF output root")
	fs.StringVar(&f.paths.src, "src", "", "Markdown source root (derives --out)")
	addThemeFlags(fs, &f.theme)
	fs.StringVar(title, "title", "", "page heading")
	return fs
}

// newInspectFlagSet registers the flags of the doctor and config commands,
// which resolve the same settings as export without running it.
func newInspectFlagSet(name string, f *settingsFlags, jsonOutput *bool) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVarP(&f.common.config, "config", "c", "", "config file name or path")
	addPathFlags(fs, &f.paths)
	addThemeFlags(fs, &f.theme)
	addDocumentFlags(fs, &f.document)
	if name == "doctor" {
		fs.BoolVar(jsonOutput, "json", false, "print results as JSON")
	}
	return fs
}

// parseExportFlags parses export command flags.
func parseExportFlags(args []string, stderr io.Writer) (*settingsFlags, error) {
	f := &settingsFlags{}
	fs := newExportFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printExportUsage(stderr) }
	return f, parseNoArgs(fs, args)
}

// parseIndexFlags parses index command flags.
func parseIndexFlags(args []string, stderr io.Writer) (*settingsFlags, string, error) {
	f := &settingsFlags{}
	var title string
	fs := newIndexFlagSet(f, &title)
	fs.SetOutput(stderr)
	fs.Usage = func() { printIndexUsage(stderr) }
	return f, title, parseNoArgs(fs, args)
}

// parseInspectFlags parses doctor and config flags.
func parseInspectFlags(name string, args []string, stderr io.Writer, usage func(io.Writer)) (*settingsFlags, bool, error) {
	f := &settingsFlags{}
	var jsonOutput bool
	fs := newInspectFlagSet(name, f, &jsonOutput)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return f, jsonOutput, parseNoArgs(fs, args)
}

func parseNoArgs(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return errUnexpectedArgs(fs.Args())
	}
	return nil
}
