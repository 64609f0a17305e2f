package imagegen

import (
	"context"
	"errors"
	"fmt"
)

// FallbackGenerator routes to the primary provider when it has credentials
// and to the fallback otherwise. Failures from the primary are returned as-is
// so they reach the user.
type FallbackGenerator struct {
	primary  Generator
	fallback Generator
}

func NewFallbackGenerator(primary, fallback Generator) *FallbackGenerator {
	return &FallbackGenerator{primary: primary, fallback: fallback}
}

func (g *FallbackGenerator) Generate(ctx context.Context, req Request) (Image, error) {
	if g == nil {
		return Image{}, errors.New("imagegen: generator not configured")
	}
	if g.usePrimary() {
		return g.primary.Generate(ctx, req)
	}
	if g.fallback == nil {
		return Image{}, ErrMissingAPIKey
	}
	return g.fallback.Generate(ctx, req)
}

// Active names the provider that will serve the next request.
func (g *FallbackGenerator) Active() string {
	if g.usePrimary() {
		return fmt.Sprint(g.primary)
	}
	if g.fallback == nil {
		return "none"
	}
	return fmt.Sprint(g.fallback)
}

func (g *FallbackGenerator) usePrimary() bool {
	if g.primary == nil {
		return false
	}
	if c, ok := g.primary.(Credentialed); ok {
		return c.HasCredentials()
	}
	return true
}

var _ Generator = (*FallbackGenerator)(nil)
