package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

func TestThemeLightAndDark(t *testing.T) {
	p := NewProvider()

	light := p.Theme(types.PersonaDesktop, true)
	dark := p.Theme(types.PersonaDesktop, false)

	assert.True(t, light.Light)
	assert.False(t, dark.Light)
	assert.Equal(t, "wallpapers/mountain_classic_light.jpg", light.Wallpaper)
	assert.Equal(t, "wallpapers/mountain_classic.jpg", dark.Wallpaper)
}

func TestThemeFallbackForUnlistedPersona(t *testing.T) {
	p := NewProvider()

	th := p.Theme(types.PersonaRobot, false)
	assert.Equal(t, "Dark", th.Name)
	assert.NotEmpty(t, th.Wallpaper)
}

func TestConsoleIsHighContrast(t *testing.T) {
	th := NewProvider().Theme(types.PersonaConsole, false)
	assert.Equal(t, "#000000", th.Background)
	assert.Empty(t, th.Wallpaper)
}

func TestSetOverridesPalette(t *testing.T) {
	p := NewProvider()
	p.Set(types.PersonaTV, Palette{Dark: types.Theme{Name: "custom"}})

	assert.Equal(t, "custom", p.Theme(types.PersonaTV, false).Name)
}
