package imagegen

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"time"
)

// SyntheticGenerator renders a deterministic striped placeholder. It keeps the
// studio usable in local and CI environments without provider credentials.
type SyntheticGenerator struct {
	Width  int
	Height int
	// Delay simulates provider latency.
	Delay time.Duration
}

func NewSyntheticGenerator() *SyntheticGenerator {
	return &SyntheticGenerator{Width: 1536, Height: 1024}
}

func (g *SyntheticGenerator) String() string {
	return "synthetic"
}

// Generate renders the placeholder. The same request always yields the same bytes.
func (g *SyntheticGenerator) Generate(ctx context.Context, req Request) (Image, error) {
	if g.Delay > 0 {
		select {
		case <-time.After(g.Delay):
		case <-ctx.Done():
			return Image{}, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}
	seed := deterministicSeed(req.ReferenceImageURL, req.ThemeName, req.Prompt, req.Logo != nil)
	data, err := renderSyntheticImage(g.Width, g.Height, seed)
	if err != nil {
		return Image{}, fmt.Errorf("synthetic: %w", err)
	}
	return Image{Data: data, MIMEType: "image/png"}, nil
}

func renderSyntheticImage(width, height int, seed string) ([]byte, error) {
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 1024
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripeHeight := max(32, height/12)
	for y := 0; y < height; y += stripeHeight * 2 {
		stripe := image.Rect(0, y, width, min(height, y+stripeHeight))
		draw.Draw(img, stripe, &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	diagonal := colorFromSeed(seed, 2)
	for x := 0; x < max(width, height); x += max(16, width/32) {
		for y := 0; y < height; y++ {
			xx := x + y
			if xx >= width {
				break
			}
			img.Set(xx, y, diagonal)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if len(seed) < 6 {
		seed = "000000"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{R: hexByte(segment[0:2]), G: hexByte(segment[2:4]), B: hexByte(segment[4:6]), A: 255}
}

func hexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(hasher, "%v|", part)
	}
	return hex.EncodeToString(hasher.Sum(nil))[:18]
}

var _ Generator = (*SyntheticGenerator)(nil)
