package theme

import (
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// Palette holds the light and dark token sets of one persona.
type Palette struct {
	Light types.Theme
	Dark  types.Theme
}

// Provider resolves the theme for the active persona.
type Provider struct {
	palettes map[types.Persona]Palette
	fallback Palette
}

// NewProvider creates a theme provider with the built-in palettes
func NewProvider() *Provider {
	p := &Provider{palettes: make(map[types.Persona]Palette)}
	p.initializeDefaults()
	return p
}

func (p *Provider) initializeDefaults() {
	dark := types.Theme{
		Name:       "Dark",
		Text:       "#ffffff",
		Background: "#1a1a1a",
		Border:     "#404040",
		Accent:     "#3b82f6",
		Wallpaper:  "wallpapers/mountain_classic.jpg",
	}
	light := types.Theme{
		Name:       "Light",
		Light:      true,
		Text:       "#1a1a1a",
		Background: "#ffffff",
		Border:     "#e0e0e0",
		Accent:     "#3b82f6",
		Wallpaper:  "wallpapers/mountain_classic_light.jpg",
	}
	p.fallback = Palette{Light: light, Dark: dark}

	// Persona overrides share the base tokens and swap accent and wallpaper.
	overrides := []struct {
		persona   types.Persona
		accent    string
		lightWall string
		darkWall  string
	}{
		{types.PersonaDesktop, "#3b82f6", "wallpapers/mountain_classic_light.jpg", "wallpapers/mountain_classic.jpg"},
		{types.PersonaFireplace, "#f97316", "wallpapers/mountain_sunset_warm.jpg", "wallpapers/mountain_sunset_warm.jpg"},
		{types.PersonaTV, "#8b5cf6", "wallpapers/poolsuite_luxury.jpg", "wallpapers/poolsuite_luxury_night.jpg"},
		{types.PersonaConsole, "#10b981", "", ""},
		{types.PersonaServer, "#10b981", "", ""},
		{types.PersonaKiosk, "#3b82f6", "wallpapers/mountain_classic_light.jpg", "wallpapers/mountain_classic_light.jpg"},
	}
	for _, o := range overrides {
		pal := p.fallback
		pal.Light.Accent, pal.Dark.Accent = o.accent, o.accent
		pal.Light.Wallpaper, pal.Dark.Wallpaper = o.lightWall, o.darkWall
		pal.Light.Name = o.persona.String() + " Light"
		pal.Dark.Name = o.persona.String() + " Dark"
		p.palettes[o.persona] = pal
	}

	// High contrast for the terminal-first personas
	for _, persona := range []types.Persona{types.PersonaConsole, types.PersonaServer} {
		pal := p.palettes[persona]
		pal.Dark.Background = "#000000"
		pal.Dark.Border = "#ffffff"
		pal.Dark.Accent = "#00ff00"
		p.palettes[persona] = pal
	}
}

// Theme returns the token set for persona in light or dark mode.
func (p *Provider) Theme(persona types.Persona, light bool) types.Theme {
	pal, ok := p.palettes[persona]
	if !ok {
		pal = p.fallback
	}
	if light {
		return pal.Light
	}
	return pal.Dark
}

// Set replaces the palette of persona.
func (p *Provider) Set(persona types.Persona, pal Palette) {
	p.palettes[persona] = pal
}
