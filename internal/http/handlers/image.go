package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"wrapstudio/internal/studio"
	"wrapstudio/pkg/zip"
)

func (a *App) currentResult(w http.ResponseWriter, r *http.Request) (studio.Result, bool) {
	res, ok := a.viewStudio(r).Snapshot().Lifecycle.Result()
	if !ok {
		a.error(w, http.StatusNotFound, codeNoImage, message(a.locale(r), codeNoImage))
	}
	return res, ok
}

// downloadName is trailer-preview-<unix millis of completion>.<ext>.
func downloadName(res studio.Result) string {
	return fmt.Sprintf("trailer-preview-%d.%s", res.CompletedAt.UnixMilli(), res.Image.Extension())
}

func (a *App) writeImage(w http.ResponseWriter, res studio.Result, disposition string) {
	w.Header().Set("Content-Type", res.Image.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Image.Data)))
	w.Header().Set("Cache-Control", "no-store")
	if disposition != "" {
		w.Header().Set("Content-Disposition", disposition)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Image.Data)
}

func (a *App) Image(w http.ResponseWriter, r *http.Request) {
	res, ok := a.currentResult(w, r)
	if !ok {
		return
	}
	a.writeImage(w, res, "")
}

func (a *App) ImageDownload(w http.ResponseWriter, r *http.Request) {
	res, ok := a.currentResult(w, r)
	if !ok {
		return
	}
	a.writeImage(w, res, fmt.Sprintf("attachment; filename=%q", downloadName(res)))
}

func (a *App) ImageBundle(w http.ResponseWriter, r *http.Request) {
	res, ok := a.currentResult(w, r)
	if !ok {
		return
	}
	archive, err := zip.ArchiveAssets([]zip.Asset{
		{Filename: downloadName(res), MIME: res.Image.MIMEType, Data: res.Image.Data, Modified: res.CompletedAt},
		{Filename: "prompt.txt", MIME: "text/plain", Data: []byte(res.Prompt + "\n"), Modified: res.CompletedAt},
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"trailer-preview-%d.zip\"", res.CompletedAt.UnixMilli()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
