// Package prompt builds the natural-language instruction sent to the image
// generator from a studio selection.
package prompt

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"wrapstudio/internal/catalog"
	"wrapstudio/internal/domain"
)

const (
	logoClause     = " Add the uploaded logo clearly on the side panel."
	brandingIntro  = " Include the following text on or near the trailer:"
	closingClause  = " The final image must look like a professional product photo with realistic lighting and a clean neutral background."
	overlayClause  = "After completing the creative wrap, overlay the logo and branding details (slogan, website, phone) if provided.\nKeep lighting realistic, with neutral studio background, clean reflections, and professional presentation."
	wrapDirections = `For the wrap design:
- Create distinct visual concepts — every generation should look like a new wrap proposal.
- You may redesign the graphics, stripe layout, color blending, logo placement zones, and background panel textures.
- Be bold and commercial: include gradients, abstract lines, layered compositions, or geometric wraps.
- Feel free to reinterpret the theme artistically, as long as the trailer body shape remains correct.
- Mix finishes: matte + gloss, or metallic + painted areas.
- Avoid duplicating the same look or plain recolors.`
)

// Input is everything the composer reads. Model and Theme are required.
type Input struct {
	Model    *domain.TrailerModel
	Theme    *domain.ColorTheme
	Branding domain.BrandingDetails
	HasLogo  bool
}

// Validate reports the first missing selection, model before theme.
func (in Input) Validate() error {
	if in.Model == nil {
		return domain.ErrMissingModel
	}
	if in.Theme == nil {
		return domain.ErrMissingTheme
	}
	return nil
}

// Compose renders the generation instruction. Clause order is fixed.
func Compose(in Input) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(baseBlock())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Now apply the selected theme creatively: \"%s\" (%s).", in.Theme.Name, in.Theme.Description)
	b.WriteString("\n\n")
	b.WriteString(wrapDirections)
	b.WriteString("\n\n")
	b.WriteString(StyleFor(in.Theme.Name).Clause())
	b.WriteString("\n\n")
	b.WriteString(overlayClause)

	if in.HasLogo {
		b.WriteString(logoClause)
	}
	b.WriteString(brandingLines(in.Branding))
	b.WriteString(closingClause)
	return b.String(), nil
}

func baseBlock() string {
	return strings.Join([]string{
		"You are a professional commercial vehicle wrap designer.",
		"Generate a high-quality promotional rendering of a bin trailer using ONLY the official reference image as the base.",
		"Do not modify the physical model — use it as your canvas.",
		"",
		"Reference images:",
		"- Single Cold: " + catalog.SingleColdImageURL(),
		"- Double Hot: " + catalog.DoubleHotImageURL(),
		"If the reference cannot be accessed, use this fallback: " + catalog.FallbackImageURL + ".",
		"",
		"Keep identical proportions, frame, wheels, and perspective.",
		"Do NOT generate new vehicles or change the structure.",
	}, "\n")
}

// brandingLines enumerates the non-empty branding fields as `Label: "value".`
func brandingLines(branding domain.BrandingDetails) string {
	if branding.IsEmpty() {
		return ""
	}
	// Casers carry state and are not safe to share between goroutines.
	labeler := cases.Title(language.English)
	var b strings.Builder
	b.WriteString(brandingIntro)
	for _, field := range domain.BrandingFields {
		value := branding.Get(field)
		if value == "" {
			continue
		}
		fmt.Fprintf(&b, " %s: \"%s\".", labeler.String(string(field)), value)
	}
	return b.String()
}
