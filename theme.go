package tardis

import (
	"encoding/base64"
	"net/http"

	"github.com/ETML-INF/tardis-pipelines/internal/assets"
)

// AssetSource looks up theme files by key; absence is not an error.
type AssetSource interface {
	LoadOptional(name string) ([]byte, bool)
}

// ThemeAssets is the theme content used for a whole run. Each field is
// empty when its file is missing, and the element using it is omitted.
type ThemeAssets struct {
	HeaderCSS      string
	FooterCSS      string
	PrintCSS       string
	CardsCSS       string
	Logo           string // data: URI
	SectionLogo    string // data: URI
	HeaderTemplate string
	FooterTemplate string
}

// LoadThemeAssets reads every theme file once.
func LoadThemeAssets(src AssetSource) ThemeAssets {
	text := func(key string) string {
		b, _ := src.LoadOptional(key)
		return string(b)
	}
	image := func(key string) string {
		b, ok := src.LoadOptional(key)
		if !ok || len(b) == 0 {
			return ""
		}
		return dataURI(b)
	}
	return ThemeAssets{
		HeaderCSS:      text(assets.KeyHeaderCSS),
		FooterCSS:      text(assets.KeyFooterCSS),
		PrintCSS:       text(assets.KeyPrintCSS),
		CardsCSS:       text(assets.KeyCardsCSS),
		Logo:           image(assets.KeyLogo),
		SectionLogo:    image(assets.KeySectionLogo),
		HeaderTemplate: text(assets.KeyHeaderTemplate),
		FooterTemplate: text(assets.KeyFooterTemplate),
	}
}

// dataURI embeds an image so Chrome's header template, which cannot
// fetch resources, can display it.
func dataURI(b []byte) string {
	return "data:" + http.DetectContentType(b) + ";base64," + base64.StdEncoding.EncodeToString(b)
}
