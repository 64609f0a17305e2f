// Package logo turns uploaded logos into small previews for the studio page.
package logo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxPreviewSide bounds the longer side of a preview in pixels.
const MaxPreviewSide = 256

// MaxSourcePixels caps the declared size of an image we agree to decode.
// Decoders allocate from the header alone, so this is checked first.
const MaxSourcePixels = 40_000_000

// ErrUndecodable is returned when the upload is not a supported raster image.
var ErrUndecodable = errors.New("logo: unsupported image format")

// Preview is an encoded thumbnail.
type Preview struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
}

// Thumbnail decodes data (PNG, JPEG, GIF or WebP) and downscales it so the
// longer side is at most MaxPreviewSide. Smaller images are not upscaled.
// The result is always PNG.
func Thumbnail(data []byte) (Preview, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Preview{}, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return Preview{}, fmt.Errorf("%w: %dx%d exceeds pixel limit", ErrUndecodable, cfg.Width, cfg.Height)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Preview{}, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	dst := resizeToFit(src, MaxPreviewSide)
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return Preview{}, fmt.Errorf("logo: encode preview: %w", err)
	}
	b := dst.Bounds()
	return Preview{Data: buf.Bytes(), MIMEType: "image/png", Width: b.Dx(), Height: b.Dy()}, nil
}

// PreviewFor returns a thumbnail when data decodes and the original bytes
// with their declared type otherwise.
func PreviewFor(data []byte, declaredMIME string) Preview {
	p, err := Thumbnail(data)
	if err == nil {
		return p
	}
	if declaredMIME == "" {
		declaredMIME = "application/octet-stream"
	}
	return Preview{Data: data, MIMEType: declaredMIME}
}

func resizeToFit(src image.Image, maxSide int) image.Image {
	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 || (srcW <= maxSide && srcH <= maxSide) {
		return src
	}

	scale := math.Min(float64(maxSide)/float64(srcW), float64(maxSide)/float64(srcH))
	dstW := max(1, int(math.Round(float64(srcW)*scale)))
	dstH := max(1, int(math.Round(float64(srcH)*scale)))

	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
