package tardis

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StaticRenderer implements Renderer on a parsed HTML tree without a
// browser. Scripts do not run and PDF returns the serialized HTML of the
// page as printed. It backs dry runs and tests.
type StaticRenderer struct {
	mu     sync.Mutex
	prints []PrintRecord
}

// PrintRecord captures one PDF call on a StaticRenderer document.
type PrintRecord struct {
	Path    string
	Options PrintOptions
	HTML    string
}

// NewStaticRenderer creates a StaticRenderer.
func NewStaticRenderer() *StaticRenderer {
	return &StaticRenderer{}
}

// Open parses the file at path.
func (r *StaticRenderer) Open(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from discovery
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, path, err)
	}
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, path, err)
	}
	return &staticDocument{renderer: r, path: path, root: root}, nil
}

// Prints returns a copy of the recorded PDF calls, in call order.
func (r *StaticRenderer) Prints() []PrintRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PrintRecord(nil), r.prints...)
}

// Close is a no-op.
func (r *StaticRenderer) Close() error {
	return nil
}

func (r *StaticRenderer) record(rec PrintRecord) {
	r.mu.Lock()
	r.prints = append(r.prints, rec)
	r.mu.Unlock()
}

type staticDocument struct {
	renderer *StaticRenderer
	path     string
	root     *html.Node
	closed   bool
}

func (d *staticDocument) AddStyle(_ context.Context, css string) error {
	head := findFirst(d.root, func(n *html.Node) bool { return n.DataAtom == atom.Head })
	if head == nil {
		return fmt.Errorf("%w: document has no head", ErrEvaluate)
	}
	style := &html.Node{Type: html.ElementNode, Data: "style", DataAtom: atom.Style}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: css})
	head.AppendChild(style)
	return nil
}

func (d *staticDocument) Text(_ context.Context, selector string) (string, bool, error) {
	match, err := selectorMatcher(selector)
	if err != nil {
		return "", false, err
	}
	n := findFirst(d.root, match)
	if n == nil {
		return "", false, nil
	}
	var b strings.Builder
	collectText(n, &b)
	return b.String(), true, nil
}

func (d *staticDocument) Fragments(_ context.Context, class string) ([]Fragment, error) {
	nodes := findAll(d.root, hasClass(class))
	frags := make([]Fragment, len(nodes))
	for i := range nodes {
		frags[i] = Fragment{Class: class, Index: i}
	}
	return frags, nil
}

func (d *staticDocument) RebuildBody(_ context.Context, fragments []Fragment, blankClass string) error {
	body := findFirst(d.root, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	if body == nil {
		return fmt.Errorf("%w: document has no body", ErrEvaluate)
	}

	// Resolve every reference before the tree changes.
	picked := make([]*html.Node, 0, len(fragments))
	byClass := map[string][]*html.Node{}
	for _, f := range fragments {
		nodes, ok := byClass[f.Class]
		if !ok {
			nodes = findAll(d.root, hasClass(f.Class))
			byClass[f.Class] = nodes
		}
		if f.Index < 0 || f.Index >= len(nodes) {
			return fmt.Errorf("%w: fragment .%s[%d] not found", ErrEvaluate, f.Class, f.Index)
		}
		picked = append(picked, nodes[f.Index])
	}

	for _, n := range picked {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	for c := body.FirstChild; c != nil; {
		next := c.NextSibling
		body.RemoveChild(c)
		c = next
	}
	for _, n := range picked {
		body.AppendChild(n)
		body.AppendChild(&html.Node{
			Type:     html.ElementNode,
			Data:     "div",
			DataAtom: atom.Div,
			Attr:     []html.Attribute{{Key: "class", Val: blankClass}},
		})
	}
	return nil
}

func (d *staticDocument) PDF(ctx context.Context, opts PrintOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	d.renderer.record(PrintRecord{Path: d.path, Options: opts, HTML: buf.String()})
	return buf.Bytes(), nil
}

func (d *staticDocument) Close() error {
	d.closed = true
	return nil
}

// selectorMatcher supports the two selector forms the pipeline uses:
// a tag name and a single ".class".
func selectorMatcher(selector string) (func(*html.Node) bool, error) {
	switch {
	case strings.HasPrefix(selector, ".") && len(selector) > 1 && !strings.ContainsAny(selector[1:], " .#[>:"):
		return hasClass(selector[1:]), nil
	case selector != "" && !strings.ContainsAny(selector, " .#[>:"):
		tag := strings.ToLower(selector)
		return func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == tag }, nil
	default:
		return nil, fmt.Errorf("%w: unsupported selector %q", ErrEvaluate, selector)
	}
}

func hasClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, a := range n.Attr {
			if a.Key == "class" {
				for _, c := range strings.Fields(a.Val) {
					if c == class {
						return true
					}
				}
			}
		}
		return false
	}
}

// findFirst returns the first node in document order matching match.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every node matching match, in document order.
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func collectText(n *html.Node, b *strings.Builder) {
	switch {
	case n.Type == html.TextNode:
		b.WriteString(n.Data)
	case n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style):
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

var (
	_ Renderer = (*StaticRenderer)(nil)
	_ Document = (*staticDocument)(nil)
)
