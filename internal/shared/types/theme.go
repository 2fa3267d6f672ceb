package types

// Theme is the token set handed to apps when they render. Colors are hex strings.
type Theme struct {
	Name       string `json:"name"`
	Light      bool   `json:"light"`
	Text       string `json:"text"`
	Background string `json:"background"`
	Border     string `json:"border"`
	Accent     string `json:"accent"`
	Wallpaper  string `json:"wallpaper"`
}
