package handlers

import (
	"errors"
	"net/http"
	"time"

	"wrapstudio/internal/domain"
)

func (a *App) GenerationStats(w http.ResponseWriter, r *http.Request) {
	since := a.Now().Add(-24 * time.Hour)
	stats, err := a.Stats.StatsSince(r.Context(), since)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, codeStatsUnavailable, message(a.locale(r), codeStatsUnavailable))
			return
		}
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, stats)
}
