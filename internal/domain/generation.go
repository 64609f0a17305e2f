package domain

import "time"

// GenerationStatus enumerates the recorded outcome of a generation.
type GenerationStatus string

const (
	GenerationSucceeded GenerationStatus = "SUCCEEDED"
	GenerationFailed    GenerationStatus = "FAILED"
)

// Generation is the audit record written once a generation resolves. It never
// carries image bytes.
type Generation struct {
	ID           string
	StudioID     string
	ModelID      string
	ThemeName    string
	HasLogo      bool
	Provider     string
	Status       GenerationStatus
	ErrorMessage string
	Duration     time.Duration
	Locale       string
	Country      string
	CreatedAt    time.Time
}

// GenerationStats summarises recent generations.
type GenerationStats struct {
	Total     int64            `json:"total"`
	Succeeded int64            `json:"succeeded"`
	Failed    int64            `json:"failed"`
	ByTheme   map[string]int64 `json:"by_theme"`
	Since     time.Time        `json:"since"`
}
