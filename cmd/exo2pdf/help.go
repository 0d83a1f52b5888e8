package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: exo2pdf [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  export     Export exercise pages to PDF (default)")
	fmt.Fprintln(w, "  index      Write index.html listing the exported PDFs")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check Chrome, theme and course tree")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'exo2pdf help <command>' for details on a specific command.")
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: exo2pdf export [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print every exercise and solution page of the rendered site to PDF,")
	fmt.Fprintln(w, "plus a card-sheet PDF for pages holding flash cards.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Paths:")
	fmt.Fprintln(w, "      --src <dir>           Markdown source root          [SPHINX_SRC_DIR]")
	fmt.Fprintln(w, "      --html <dir>          Rendered HTML root            [HTML_OUT_DIR]")
	fmt.Fprintln(w, "  -o, --out <dir>           PDF output root               [PDF_OUT_DIR]")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path      [EXO2PDF_CONFIG]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --module <s>          Module label in the header    [ICT_MODULE]")
	fmt.Fprintln(w, "      --url <s>             Public URL in the footer      [EXO_URL]")
	fmt.Fprintln(w, "      --date <s>            Date: \"auto\", \"auto:FORMAT\", or literal [EXO2PDF_DATE]")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                            Presets (case-insensitive): swiss, iso, european, us, long")
	fmt.Fprintln(w, "                            Use [text] to escape literals: [Date]: YYYY")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Theme:")
	fmt.Fprintln(w, "      --theme <name>        Bundled theme name            [PDF_THEME]")
	fmt.Fprintln(w, "      --theme-root <dir>    Directory overriding theme files [TARDIS_THEME_ROOT]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run:")
	fmt.Fprintln(w, "  -t, --timeout <d>         Page load timeout (e.g., 30s) [EXO2PDF_TIMEOUT]")
	fmt.Fprintln(w, "      --no-cards            Skip the card-sheet pass      [EXO2PDF_CARDS=off]")
	fmt.Fprintln(w, "  -n, --dry-run             Render without Chrome, write nothing")
	fmt.Fprintln(w, "      --index               Write index.html after the export")
	fmt.Fprintln(w, "      --metrics-file <path> Prometheus textfile output    [EXO2PDF_METRICS_FILE]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// printIndexUsage prints usage for the index command.
func printIndexUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: exo2pdf index [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Write index.html and its stylesheet at the PDF output root.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --out <dir>           PDF output root")
	fmt.Fprintln(w, "      --src <dir>           Markdown source root (derives --out)")
	fmt.Fprintln(w, "      --theme <name>        Theme name")
	fmt.Fprintln(w, "      --theme-root <dir>    Directory overriding theme files")
	fmt.Fprintln(w, "      --title <s>           Page heading")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: exo2pdf config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration export would use, as YAML.")
	fmt.Fprintln(w, "Accepts the path, theme and document flags of export.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: exo2pdf doctor [--json] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the sandbox environment, the theme and the course tree.")
	fmt.Fprintln(w, "Accepts the path, theme and document flags of export.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "export":
		printExportUsage(env.Stdout)
	case "index":
		printIndexUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: exo2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: exo2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
