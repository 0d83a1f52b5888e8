// Package index writes the download page listing the exported PDFs.
package index

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ETML-INF/tardis-pipelines/internal/assets"
	"github.com/ETML-INF/tardis-pipelines/internal/fileutil"
)

// Sentinel errors for index generation.
var (
	ErrTemplateMissing = errors.New("index template not found")
	ErrTemplateInvalid = errors.New("index template invalid")
	ErrWriteIndex      = errors.New("failed to write index")
)

// Output file names, relative to the PDF root.
const (
	IndexFile      = "index.html"
	StylesheetFile = "exo-index.css"
)

// Bucket is one listed PDF directory.
type Bucket struct {
	Dir   string
	Label string
}

// DefaultBuckets lists exercises, solutions and card sheets.
var DefaultBuckets = []Bucket{
	{Dir: "exercises", Label: "Exercices"},
	{Dir: "solutions", Label: "Solutions"},
	{Dir: "cards", Label: "Cartes"},
}

// AssetSource is the optional theme lookup used for the template and CSS.
type AssetSource interface {
	LoadOptional(name string) ([]byte, bool)
}

// File is one listed PDF.
type File struct {
	Name string
	Href string
}

// Section is one non-empty bucket on the page.
type Section struct {
	Bucket string
	Label  string
	Files  []File
}

type pageData struct {
	Title        string
	Stylesheet   string
	HasExercises bool
	Sections     []Section
}

// Result describes a generated index.
type Result struct {
	Path     string
	Sections []Section
	CSS      bool // stylesheet copied
}

// Generator renders index.html from the theme template.
type Generator struct {
	assets  AssetSource
	buckets []Bucket
	title   string
	logger  *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithBuckets replaces DefaultBuckets.
func WithBuckets(b []Bucket) Option {
	return func(g *Generator) { g.buckets = b }
}

// WithTitle sets the page heading.
func WithTitle(title string) Option {
	return func(g *Generator) { g.title = title }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator creates a Generator reading the theme from src.
func NewGenerator(src AssetSource, opts ...Option) *Generator {
	g := &Generator{
		assets:  src,
		buckets: DefaultBuckets,
		title:   "Exercices",
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate lists the PDFs under root and writes root/index.html plus the
// theme stylesheet next to it. Missing bucket directories list nothing.
func (g *Generator) Generate(root string) (*Result, error) {
	raw, ok := g.assets.LoadOptional(assets.KeyIndexTemplate)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateMissing, assets.KeyIndexTemplate)
	}
	tmpl, err := template.New("exo-index").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateInvalid, err)
	}

	data := pageData{Title: g.title, Stylesheet: StylesheetFile}
	for _, b := range g.buckets {
		names, err := listPDFs(filepath.Join(root, b.Dir))
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			continue
		}
		if b.Dir == DefaultBuckets[0].Dir {
			data.HasExercises = true
		}
		section := Section{Bucket: b.Dir, Label: b.Label, Files: make([]File, len(names))}
		for i, name := range names {
			section.Files[i] = File{Name: name, Href: "./" + b.Dir + "/" + url.PathEscape(name)}
		}
		data.Sections = append(data.Sections, section)
		g.logger.Debug("index section", "bucket", b.Dir, "files", len(names))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateInvalid, err)
	}

	indexPath := filepath.Join(root, IndexFile)
	if err := fileutil.WriteFile(indexPath, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteIndex, err)
	}

	res := &Result{Path: indexPath, Sections: data.Sections}
	if css, ok := g.assets.LoadOptional(assets.KeyIndexCSS); ok {
		if err := fileutil.WriteFile(filepath.Join(root, StylesheetFile), css); err != nil {
			g.logger.Warn("could not copy index stylesheet", "error", err)
		} else {
			res.CSS = true
		}
	}
	return res, nil
}

// listPDFs returns the PDF file names in dir in French collation order.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			names = append(names, e.Name())
		}
	}
	collate.New(language.French).SortStrings(names)
	return names, nil
}
