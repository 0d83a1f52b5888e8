package tardis

import (
	"context"
	"fmt"
	"regexp"
)

// Card sheet defaults.
const (
	DefaultCardClass     = "tardis-card"
	BlankPageClass       = "tardis-blank-page"
	DefaultCardsMarginMM = 5.0
)

// cardMarkerPattern matches the card directive of the Markdown sources,
// as a MyST fence ({card}) or a reST directive (.. card::). The tardis_cards
// Sphinx extension renders each one as a div of class tardis-card.
var cardMarkerPattern = regexp.MustCompile(`(?i)(\{card\}|\.\.\s+card::)`)

// HasCardMarkers reports whether source text mentions a card directive.
func HasCardMarkers(source []byte) bool {
	return cardMarkerPattern.Match(source)
}

// blankPageCSS puts every blank marker on a page of its own, so the next
// sheet starts on a new physical page and every back stays empty.
const blankPageCSS = `.` + BlankPageClass + ` {
  break-before: page;
  page-break-before: always;
  break-after: page;
  page-break-after: always;
  height: 1px;
  visibility: hidden;
}`

// CardSheetExtractor prints only the card sheets of a document.
type CardSheetExtractor struct {
	MarkerClass string
	MarginMM    float64
	Page        PageFormat
	CSS         string // card print stylesheet
}

// NewCardSheetExtractor returns an extractor with the default marker
// class and margins.
func NewCardSheetExtractor(cardsCSS string) CardSheetExtractor {
	return CardSheetExtractor{
		MarkerClass: DefaultCardClass,
		MarginMM:    DefaultCardsMarginMM,
		Page:        PageA4,
		CSS:         cardsCSS,
	}
}

// CardSheet is the result of an extraction.
type CardSheet struct {
	Fragments int
	PDF       []byte
}

// Extract rewrites doc to its card sheets, each followed by a blank
// page, and prints it without header or footer. When the document holds
// no card sheet, doc is left untouched and Fragments is zero.
func (x CardSheetExtractor) Extract(ctx context.Context, doc Document) (CardSheet, error) {
	frags, err := doc.Fragments(ctx, x.MarkerClass)
	if err != nil {
		return CardSheet{}, err
	}
	if len(frags) == 0 {
		return CardSheet{}, nil
	}

	if err := doc.RebuildBody(ctx, frags, BlankPageClass); err != nil {
		return CardSheet{}, err
	}
	for _, css := range []string{blankPageCSS, pageRuleCSS(x.Page, x.MarginMM), x.CSS} {
		if css == "" {
			continue
		}
		if err := doc.AddStyle(ctx, css); err != nil {
			return CardSheet{}, err
		}
	}

	pdf, err := doc.PDF(ctx, PrintOptions{Page: x.Page, MarginMM: x.MarginMM})
	if err != nil {
		return CardSheet{}, fmt.Errorf("printing card sheets: %w", err)
	}
	return CardSheet{Fragments: len(frags), PDF: pdf}, nil
}
