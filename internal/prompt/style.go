package prompt

import "wrapstudio/internal/catalog"

// Style selects the theme-specific wrap direction appended to the prompt.
type Style int

const (
	// StylePatriotic is the default arm; every theme without a dedicated
	// direction, American Classic included, lands here.
	StylePatriotic Style = iota
	StyleFreshAqua
	StyleEcoBright
)

const (
	freshAquaClause = "Use fresh blue-green tones with modern water-inspired energy lines, waves, and bright aqua gradients. Add subtle white or chrome details for contrast."
	ecoBrightClause = "Use natural green tones with organic curves, flowing shapes, and eco-friendly textures. Consider abstract leaves or sunlight accents."
	patrioticClause = "Use bold patriotic tones — red, white, blue with stripes, stars, or shield-like motifs in a clean fleet branding layout."
)

// StyleFor maps a theme name to its Style by exact match.
func StyleFor(themeName string) Style {
	switch themeName {
	case catalog.ThemeFreshAqua:
		return StyleFreshAqua
	case catalog.ThemeEcoBright:
		return StyleEcoBright
	default:
		return StylePatriotic
	}
}

// Clause returns the prompt sentence for s.
func (s Style) Clause() string {
	switch s {
	case StyleFreshAqua:
		return freshAquaClause
	case StyleEcoBright:
		return ecoBrightClause
	default:
		return patrioticClause
	}
}

func (s Style) String() string {
	switch s {
	case StyleFreshAqua:
		return "fresh-aqua"
	case StyleEcoBright:
		return "eco-bright"
	default:
		return "patriotic"
	}
}
