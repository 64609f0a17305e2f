package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"wrapstudio/internal/logo"
	"wrapstudio/internal/studio"
)

const logoFormField = "logo"

func (a *App) UploadLogo(w http.ResponseWriter, r *http.Request) {
	limit := a.Config.LogoMaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, codeLogoTooLarge, message(a.locale(r), codeLogoTooLarge))
			return
		}
		a.badRequest(w, r, codeLogoRequired)
		return
	}
	file, header, err := r.FormFile(logoFormField)
	if err != nil {
		a.badRequest(w, r, codeLogoRequired)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		a.fail(w, r, fmt.Errorf("read logo: %w", err))
		return
	}
	if int64(len(data)) > limit {
		a.error(w, http.StatusRequestEntityTooLarge, codeLogoTooLarge, message(a.locale(r), codeLogoTooLarge))
		return
	}
	if len(data) == 0 {
		a.badRequest(w, r, codeLogoRequired)
		return
	}

	declared := header.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		declared = mt
	}
	if declared == "" || declared == "application/octet-stream" {
		declared = http.DetectContentType(data)
	}

	st := a.currentStudio(r)
	ctx := r.Context()
	base := fmt.Sprintf("studios/%s/%s", st.ID(), uuid.NewString())
	key, err := a.Store.Write(ctx, base+extensionFor(header.Filename, declared), data)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	preview := logo.PreviewFor(data, declared)
	previewKey, err := a.Store.Write(ctx, base+"-preview"+extensionFor("", preview.MIMEType), preview.Data)
	if err != nil {
		_ = a.Store.Delete(ctx, key)
		a.fail(w, r, err)
		return
	}

	_, err = st.SetLogo(ctx, studio.Logo{
		Key:             key,
		MIMEType:        declared,
		Name:            path.Base(strings.ReplaceAll(header.Filename, "\\", "/")),
		Size:            len(data),
		PreviewKey:      previewKey,
		PreviewMIMEType: preview.MIMEType,
	})
	if err != nil {
		a.Logger.Warn().Err(err).Str("studio_id", st.ID()).Msg("studio: release previous logo")
	}
	a.renderStudio(w, r, http.StatusOK, st)
}

func (a *App) LogoPreview(w http.ResponseWriter, r *http.Request) {
	snap := a.viewStudio(r).Snapshot()
	if snap.Logo == nil {
		a.error(w, http.StatusNotFound, codeNoLogo, message(a.locale(r), codeNoLogo))
		return
	}
	data, err := a.Store.Read(r.Context(), snap.Logo.PreviewKey)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", snap.Logo.PreviewMIMEType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func extensionFor(filename, mimeType string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" && len(ext) <= 6 {
		return ext
	}
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".bin"
	}
}
