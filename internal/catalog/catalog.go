// Package catalog holds the fixed trailer models and color themes offered by
// the studio, plus the reference images the generator is anchored to.
package catalog

import (
	"fmt"
	"strings"

	"wrapstudio/internal/domain"
)

// FallbackImageURL is shown when no model is selected, an image fails to load,
// or a model has no official reference image.
const FallbackImageURL = "https://i.imgur.com/u5a2S0X.png"

const (
	ModelSingleCold = "single-cold"
	ModelDoubleHot  = "double-hot"
)

// Theme names double as the key for the theme-specific wrap direction.
const (
	ThemeFreshAqua       = "Fresh Aqua"
	ThemeEcoBright       = "Eco Bright"
	ThemeAmericanClassic = "American Classic"
)

const (
	singleColdImageURL = "https://i.imgur.com/wzKkCcR.png"
	doubleHotImageURL  = "https://i.imgur.com/SaBAdqf.png"
)

var models = []domain.TrailerModel{
	{ID: ModelSingleCold, Name: "Single Cold Model", ImageURL: singleColdImageURL},
	{ID: ModelDoubleHot, Name: "Double Hot Model", ImageURL: doubleHotImageURL},
}

// officialImages maps lower-cased model ids to the canonical reference image.
var officialImages = map[string]string{
	ModelSingleCold: singleColdImageURL,
	ModelDoubleHot:  doubleHotImageURL,
}

var themes = []domain.ColorTheme{
	{
		ID:             "fresh-aqua",
		Name:           ThemeFreshAqua,
		Description:    "a bright blue and green palette symbolizing freshness and water",
		GradientText:   "from-cyan-400 to-emerald-400",
		GradientBorder: "from-cyan-400 to-emerald-400",
		Glow:           "shadow-cyan-400/50",
	},
	{
		ID:             "eco-bright",
		Name:           ThemeEcoBright,
		Description:    "a vibrant green palette representing eco-friendly operations",
		GradientText:   "from-lime-400 to-green-500",
		GradientBorder: "from-lime-400 to-green-500",
		Glow:           "shadow-lime-400/50",
	},
	{
		ID:             "american-classic",
		Name:           ThemeAmericanClassic,
		Description:    "a bold red, white, and blue palette inspired by the American flag",
		GradientText:   "from-red-500 to-blue-500",
		GradientBorder: "from-red-500 to-blue-500",
		Glow:           "shadow-red-500/50",
	},
}

// Models returns a copy of the trailer model catalog in display order.
func Models() []domain.TrailerModel {
	return append([]domain.TrailerModel(nil), models...)
}

// Themes returns a copy of the color theme catalog in display order.
func Themes() []domain.ColorTheme {
	return append([]domain.ColorTheme(nil), themes...)
}

// ModelByID looks up a trailer model by its exact id.
func ModelByID(id string) (domain.TrailerModel, error) {
	for _, m := range models {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.TrailerModel{}, fmt.Errorf("trailer model %q: %w", id, domain.ErrNotFound)
}

// ThemeByID looks up a color theme by its exact id.
func ThemeByID(id string) (domain.ColorTheme, error) {
	for _, t := range themes {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.ColorTheme{}, fmt.Errorf("color theme %q: %w", id, domain.ErrNotFound)
}

// SingleColdImageURL and DoubleHotImageURL are the official reference renders.
func SingleColdImageURL() string { return singleColdImageURL }

func DoubleHotImageURL() string { return doubleHotImageURL }

// ReferenceImageURL resolves the official reference image for a model id.
// Ids are matched case-insensitively; unknown ids resolve to the fallback.
func ReferenceImageURL(modelID string) string {
	if url, ok := officialImages[strings.ToLower(strings.TrimSpace(modelID))]; ok {
		return url
	}
	return FallbackImageURL
}

// PreviewImageURL picks what the preview pane shows: the generated image when
// present, otherwise the selected model's image, otherwise the fallback.
func PreviewImageURL(generated string, model *domain.TrailerModel) string {
	if generated != "" {
		return generated
	}
	if model != nil && model.ImageURL != "" {
		return model.ImageURL
	}
	return FallbackImageURL
}

// ShowPlaceholder reports whether the "select a model to begin" overlay applies.
func ShowPlaceholder(hasGenerated bool, model *domain.TrailerModel) bool {
	return model == nil && !hasGenerated
}
