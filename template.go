package tardis

import (
	"bytes"
	"html/template"
	"log/slog"
	"strings"
)

const defaultHeaderTemplate = `{{if .CSS}}<style>{{.CSS}}</style>{{end}}
<div class="hdr-wrap">
  <div class="hdr-left">
    {{if .Logo}}<img class="hdr-logo-etml" src="{{.Logo}}" />{{end}}
    <div class="hdr-text-block">
      <div class="hdr-module">{{.Module}}</div>
      <div class="hdr-title">{{.Title}}</div>
    </div>
  </div>
  <div class="hdr-center"><span class="hdr-date">{{.Date}}</span></div>
  <div class="hdr-right">
    {{if .SectionLogo}}<img class="hdr-logo-section" src="{{.SectionLogo}}" />{{end}}
  </div>
</div>`

const defaultFooterTemplate = `{{if .CSS}}<style>{{.CSS}}</style>{{end}}
<div class="ftr-wrap">
  <div class="ftr-left muted">{{.URL}}</div>
  <div class="ftr-center muted">Page <span class="pageNumber"></span>/<span class="totalPages"></span></div>
  <div class="ftr-right muted"></div>
</div>`

// SanitizeTitle keeps spaces, printable ASCII and printable Latin-1,
// then collapses whitespace runs and trims. Every other rune is dropped,
// combining marks and compatibility characters included.
func SanitizeTitle(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == ' ' || (r >= 33 && r <= 126) || (r >= 160 && r <= 255) {
			b.WriteRune(r)
		}
	}
	// Fields also splits on NBSP, the only other space left by the filter.
	return strings.Join(strings.Fields(b.String()), " ")
}

type headerData struct {
	CSS         template.CSS
	Logo        template.URL
	SectionLogo template.URL
	Module      string
	Title       string
	Date        string
}

type footerData struct {
	CSS template.CSS
	URL string
}

// TemplateBuilder renders the print header and footer. Everything but the
// title is fixed for the run.
type TemplateBuilder struct {
	header      *template.Template
	footer      *template.Template
	fallbackHdr *template.Template
	fallbackFtr *template.Template
	theme       ThemeAssets
	module      string
	date        string
	url         string
	logger      *slog.Logger
}

// NewTemplateBuilder parses the theme templates. A missing or invalid
// theme template is replaced by the built-in one.
func NewTemplateBuilder(theme ThemeAssets, module, date, publicURL string, logger *slog.Logger) *TemplateBuilder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &TemplateBuilder{
		fallbackHdr: template.Must(template.New("header").Parse(defaultHeaderTemplate)),
		fallbackFtr: template.Must(template.New("footer").Parse(defaultFooterTemplate)),
		theme:       theme,
		module:      module,
		date:        date,
		url:         SanitizeTitle(publicURL),
		logger:      logger,
	}
	b.header = b.parseOr("header", theme.HeaderTemplate, b.fallbackHdr)
	b.footer = b.parseOr("footer", theme.FooterTemplate, b.fallbackFtr)
	return b
}

func (b *TemplateBuilder) parseOr(name, src string, fallback *template.Template) *template.Template {
	if strings.TrimSpace(src) == "" {
		return fallback
	}
	t, err := template.New(name).Parse(src)
	if err != nil {
		b.logger.Warn("theme template invalid, using built-in", "template", name, "error", err)
		return fallback
	}
	return t
}

// Build returns the header and footer for a page titled title. The title
// is sanitized here.
func (b *TemplateBuilder) Build(title string) (header, footer string) {
	hd := headerData{
		CSS:         template.CSS(b.theme.HeaderCSS),   // #nosec G203 -- theme file
		Logo:        template.URL(b.theme.Logo),        // #nosec G203 -- data URI built from theme bytes
		SectionLogo: template.URL(b.theme.SectionLogo), // #nosec G203
		Module:      b.module,
		Title:       SanitizeTitle(title),
		Date:        b.date,
	}
	fd := footerData{
		CSS: template.CSS(b.theme.FooterCSS), // #nosec G203 -- theme file
		URL: b.url,
	}
	return b.execute(b.header, b.fallbackHdr, hd), b.execute(b.footer, b.fallbackFtr, fd)
}

func (b *TemplateBuilder) execute(t, fallback *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		if t == fallback {
			b.logger.Warn("built-in template failed", "template", t.Name(), "error", err)
			return ""
		}
		b.logger.Warn("theme template failed, using built-in", "template", t.Name(), "error", err)
		buf.Reset()
		if err := fallback.Execute(&buf, data); err != nil {
			return ""
		}
	}
	return buf.String()
}
