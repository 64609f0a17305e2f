package domain

// TrailerModel is an immutable catalog entry for a trailer body.
type TrailerModel struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	ImageURL string `json:"image_url" yaml:"image_url"`
}

// ColorTheme is an immutable catalog entry for a wrap palette. The gradient
// and glow fields are presentational hints for the front end.
type ColorTheme struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Description    string `json:"description" yaml:"description"`
	GradientText   string `json:"gradient_text" yaml:"gradient_text"`
	GradientBorder string `json:"gradient_border" yaml:"gradient_border"`
	Glow           string `json:"glow" yaml:"glow"`
}

// BrandingField names one of the free-text branding slots.
type BrandingField string

const (
	BrandingSlogan  BrandingField = "slogan"
	BrandingWebsite BrandingField = "website"
	BrandingPhone   BrandingField = "phone"
)

// BrandingFields lists the branding slots in prompt order.
var BrandingFields = []BrandingField{BrandingSlogan, BrandingWebsite, BrandingPhone}

// ParseBrandingField maps a request path segment to a BrandingField.
func ParseBrandingField(s string) (BrandingField, bool) {
	for _, f := range BrandingFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// BrandingDetails holds the optional text overlaid on the render.
type BrandingDetails struct {
	Slogan  string `json:"slogan"`
	Website string `json:"website"`
	Phone   string `json:"phone"`
}

// Get returns the value stored for field.
func (b BrandingDetails) Get(field BrandingField) string {
	switch field {
	case BrandingSlogan:
		return b.Slogan
	case BrandingWebsite:
		return b.Website
	case BrandingPhone:
		return b.Phone
	default:
		return ""
	}
}

// With returns a copy of b with field replaced by value.
func (b BrandingDetails) With(field BrandingField, value string) BrandingDetails {
	switch field {
	case BrandingSlogan:
		b.Slogan = value
	case BrandingWebsite:
		b.Website = value
	case BrandingPhone:
		b.Phone = value
	}
	return b
}

// IsEmpty reports whether every branding field is empty.
func (b BrandingDetails) IsEmpty() bool {
	return b.Slogan == "" && b.Website == "" && b.Phone == ""
}
