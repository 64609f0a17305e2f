package domain

import (
	"context"
	"time"
)

// GenerationRepository persists the generation audit log.
type GenerationRepository interface {
	Record(ctx context.Context, g Generation) error
	StatsSince(ctx context.Context, since time.Time) (GenerationStats, error)
}
