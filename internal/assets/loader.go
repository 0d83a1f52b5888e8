package assets

// Loader reads theme assets by key ("css/header.css").
// Implementations return ErrAssetNotFound for missing keys and
// ErrInvalidAssetName for keys rejected by ValidateAssetName.
type Loader interface {
	Load(name string) ([]byte, error)
}

// Well-known theme keys.
const (
	KeyHeaderCSS      = "css/header.css"
	KeyFooterCSS      = "css/footer.css"
	KeyPrintCSS       = "css/print-exo.css"
	KeyCardsCSS       = "css/print-cards.css"
	KeyIndexCSS       = "css/exo-index.css"
	KeyLogo           = "images/etml_logo_complet.png"
	KeySectionLogo    = "images/section_info_logo.png"
	KeyHeaderTemplate = "templates/header.html"
	KeyFooterTemplate = "templates/footer.html"
	KeyIndexTemplate  = "templates/exo-index.html"
)
