package imagegen

import (
	"context"
	"encoding/base64"
	"strings"
)

// SourceImage is an image handed to the generator as conditioning input.
type SourceImage struct {
	Data     []byte
	MIMEType string
	Name     string
}

// Request is everything the collaborator receives for one generation.
type Request struct {
	RequestID         string
	ReferenceImageURL string
	FallbackImageURL  string
	Logo              *SourceImage
	ThemeName         string
	Slogan            string
	Website           string
	Phone             string
	Prompt            string
}

// Image is a generated render. A zero Image means the provider answered
// without an image payload.
type Image struct {
	Data     []byte
	MIMEType string
}

// IsEmpty reports whether the image carries no bytes.
func (i Image) IsEmpty() bool {
	return len(i.Data) == 0
}

// DataURL encodes the image as a displayable data URL.
func (i Image) DataURL() string {
	if i.IsEmpty() {
		return ""
	}
	return "data:" + normalizeFormat(i.MIMEType) + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Extension returns the file extension matching the image MIME type.
func (i Image) Extension() string {
	switch normalizeFormat(i.MIMEType) {
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

// Generator is the contract implemented by every image provider.
type Generator interface {
	Generate(ctx context.Context, req Request) (Image, error)
}

// Credentialed is implemented by providers that need an API key to reach the
// remote service.
type Credentialed interface {
	HasCredentials() bool
}

func normalizeFormat(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	switch mime {
	case "image/jpeg", "image/jpg":
		return "image/jpeg"
	case "":
		return "image/png"
	default:
		if strings.HasPrefix(mime, "image/") {
			return mime
		}
		return "image/png"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
