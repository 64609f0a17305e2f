package handlers

import (
	"net/http"

	"wrapstudio/internal/catalog"
)

func (a *App) Catalog(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"models":             catalog.Models(),
		"themes":             catalog.Themes(),
		"fallback_image_url": catalog.FallbackImageURL,
	})
}
