// Package tardis exports rendered course exercises to print-ready PDFs.
//
// # Pipeline
//
// An Exporter walks a Sphinx source tree, keeps the Markdown files below an
// "exercises" directory, and for each one prints the matching HTML page
// from the rendered site:
//
//  1. Discover lists the candidate documents in lexical order.
//  2. The full-document pass prints the page on A4 with the theme header
//     (module, title, date, logos) and a "Page N/total" footer into
//     exercises/ or solutions/.
//  3. When the Markdown source mentions a card directive, the card pass
//     reopens the page, keeps only the card sheets with a blank page after
//     each one, and prints them without header or footer into cards/.
//
//	renderer := tardis.NewRodRenderer(tardis.WithTimeout(30 * time.Second))
//	defer renderer.Close()
//
//	exp := tardis.NewExporter(renderer, theme, tardis.ExportConfig{
//	    SourceRoot:   "b-UnitesEnseignement/Support",
//	    RenderedRoot: "b-UnitesEnseignement/Support/_build/html",
//	    OutputRoot:   "b-UnitesEnseignement/Support/_build/exo-pdf",
//	    Module:       "Module ICT",
//	})
//	report, err := exp.Run(ctx)
//
// # Output names
//
// A PDF is named after its source file. When the name is already taken in
// its bucket, the first six hex digits of the MD5 of the source-relative
// path are appended: ex1.pdf, then ex1-ad88fb.pdf.
//
// # Renderers
//
// RodRenderer drives headless Chrome through go-rod. For containers and CI
// set ROD_NO_SANDBOX=1; ROD_BROWSER_BIN selects an installed Chrome.
// StaticRenderer parses the HTML without a browser; it backs dry runs and
// tests and returns the rewritten HTML instead of PDF bytes.
package tardis
