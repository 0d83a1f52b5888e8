package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	tardis "github.com/ETML-INF/tardis-pipelines"
)

// console prints one line per document and the run summary on stdout.
type console struct {
	w     io.Writer
	quiet bool
	ok    *color.Color
	warn  *color.Color
	fail  *color.Color
	dim   *color.Color
}

func newConsole(w io.Writer, quiet, noColor bool) *console {
	c := &console{
		w:     w,
		quiet: quiet,
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed),
		dim:   color.New(color.Faint),
	}
	if noColor {
		for _, col := range []*color.Color{c.ok, c.warn, c.fail, c.dim} {
			col.DisableColor()
		}
	}
	return c
}

// DocumentDone implements tardis.Observer.
func (c *console) DocumentDone(o tardis.Outcome) {
	if c.quiet {
		return
	}
	rel := o.Source.RelPath
	switch {
	case o.State == tardis.StateHTMLMissing:
		c.warn.Fprintf(c.w, "⚠ %s: rendered page missing, skipped\n", rel)
		return
	case o.Full == nil:
		c.fail.Fprintf(c.w, "✗ %s\n", rel)
		return
	}

	c.ok.Fprintf(c.w, "✓ %s", rel)
	c.dim.Fprintf(c.w, " -> %s%s\n", o.Full.Target.Rel(), pagesSuffix(o.Full.Pages))
	switch o.State {
	case tardis.StateCardsPDFWritten:
		c.ok.Fprintf(c.w, "  ✓ %d card sheets", o.Fragments)
		c.dim.Fprintf(c.w, " -> %s%s\n", o.Cards.Target.Rel(), pagesSuffix(o.Cards.Pages))
	case tardis.StateCardsAbsent:
		c.warn.Fprintf(c.w, "  ⚠ card markers in source but no card sheet rendered\n")
	}
}

// Summary prints the end-of-run line.
func (c *console) Summary(r *tardis.Report) {
	if c.quiet {
		return
	}
	col := c.ok
	if r.Stats.Skipped > 0 || r.Stats.CardsSkipped > 0 {
		col = c.warn
	}
	col.Fprintln(c.w, r.Summary())
}

func pagesSuffix(pages int) string {
	if pages < 0 {
		return ""
	}
	return fmt.Sprintf(" (%d p.)", pages)
}

var _ tardis.Observer = (*console)(nil)
