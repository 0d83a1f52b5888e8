package tardis

import (
	"context"
	"fmt"
	"strconv"
)

// Renderer opens rendered HTML files as documents that can be queried,
// restyled and printed. Implementations serve one document at a time.
type Renderer interface {
	Open(ctx context.Context, path string) (Document, error)
	Close() error
}

// Document is one loaded page. Mutations are local to the handle: two
// handles on the same file never share DOM state.
type Document interface {
	// AddStyle appends a stylesheet to the page.
	AddStyle(ctx context.Context, css string) error
	// Text returns the text of the first element matching selector
	// ("h1" or ".class") and whether one exists.
	Text(ctx context.Context, selector string) (string, bool, error)
	// Fragments lists the elements carrying class, in document order.
	Fragments(ctx context.Context, class string) ([]Fragment, error)
	// RebuildBody replaces the body with the given fragments, each one
	// followed by an empty div of class blankClass.
	RebuildBody(ctx context.Context, fragments []Fragment, blankClass string) error
	// PDF prints the page.
	PDF(ctx context.Context, opts PrintOptions) ([]byte, error)
	Close() error
}

// Fragment references the Index-th element of class Class.
type Fragment struct {
	Class string `json:"class"`
	Index int    `json:"index"`
}

// PageFormat is a paper size in millimetres.
type PageFormat struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

// PageA4 is the only format the exercises are printed on.
var PageA4 = PageFormat{Name: "A4", WidthMM: 210, HeightMM: 297}

// PrintOptions control one PDF print.
type PrintOptions struct {
	Page         PageFormat
	MarginMM     float64 // uniform on all four sides
	HeaderFooter bool
	Header       string
	Footer       string
}

const mmPerInch = 25.4

func mmToInches(mm float64) float64 {
	return mm / mmPerInch
}

// pageRuleCSS forces the paper size and margins through CSS so that
// print stylesheets cannot override them.
func pageRuleCSS(page PageFormat, marginMM float64) string {
	return fmt.Sprintf("@page { size: %s; margin: %smm; }", page.Name, strconv.FormatFloat(marginMM, 'f', -1, 64))
}
