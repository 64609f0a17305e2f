package repo

import (
	"context"
	"fmt"
	"time"

	"wrapstudio/internal/domain"
	"wrapstudio/internal/infra"
	"wrapstudio/internal/sqlinline"
)

// GenerationRepositoryPG implements domain.GenerationRepository.
type GenerationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewGenerationRepository creates a generation audit log backed by PostgreSQL.
func NewGenerationRepository(sql infra.SQLExecutor) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{sql: sql}
}

// Record inserts one resolved generation.
func (r *GenerationRepositoryPG) Record(ctx context.Context, g domain.Generation) error {
	created := g.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertGeneration,
		g.ID,
		g.StudioID,
		g.ModelID,
		g.ThemeName,
		g.HasLogo,
		g.Provider,
		string(g.Status),
		g.ErrorMessage,
		g.Duration.Milliseconds(),
		g.Locale,
		g.Country,
		created,
	)
	if err != nil {
		return fmt.Errorf("record generation: %w", err)
	}
	return nil
}

// StatsSince aggregates generations created at or after since.
func (r *GenerationRepositoryPG) StatsSince(ctx context.Context, since time.Time) (domain.GenerationStats, error) {
	stats := domain.GenerationStats{ByTheme: map[string]int64{}, Since: since}
	if err := r.sql.QueryRow(ctx, sqlinline.QGenerationTotalsSince, since).Scan(&stats.Total, &stats.Succeeded, &stats.Failed); err != nil {
		return domain.GenerationStats{}, fmt.Errorf("generation totals: %w", err)
	}

	rows, err := r.sql.Query(ctx, sqlinline.QGenerationThemesSince, since)
	if err != nil {
		return domain.GenerationStats{}, fmt.Errorf("generation themes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var theme string
		var count int64
		if err := rows.Scan(&theme, &count); err != nil {
			return domain.GenerationStats{}, fmt.Errorf("scan generation theme: %w", err)
		}
		stats.ByTheme[theme] = count
	}
	if err := rows.Err(); err != nil {
		return domain.GenerationStats{}, fmt.Errorf("generation themes: %w", err)
	}
	return stats, nil
}

// NopGenerationRepository is used when no database is configured.
type NopGenerationRepository struct{}

func (NopGenerationRepository) Record(context.Context, domain.Generation) error { return nil }

func (NopGenerationRepository) StatsSince(context.Context, time.Time) (domain.GenerationStats, error) {
	return domain.GenerationStats{}, fmt.Errorf("generation stats: %w", domain.ErrNotFound)
}

var (
	_ domain.GenerationRepository = (*GenerationRepositoryPG)(nil)
	_ domain.GenerationRepository = NopGenerationRepository{}
)
