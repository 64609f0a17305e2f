package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wrapstudio/internal/catalog"
	"wrapstudio/internal/domain"
	"wrapstudio/internal/prompt"
	"wrapstudio/internal/studio"
)

const (
	imagePath       = "/v1/studio/image"
	logoPreviewPath = "/v1/studio/logo/preview"
)

type logoView struct {
	Name       string `json:"name"`
	MIMEType   string `json:"mime_type"`
	Size       int    `json:"size"`
	PreviewURL string `json:"preview_url"`
}

type studioView struct {
	ID              string                 `json:"id"`
	Model           *domain.TrailerModel   `json:"model"`
	Theme           *domain.ColorTheme     `json:"theme"`
	Branding        domain.BrandingDetails `json:"branding"`
	Logo            *logoView              `json:"logo"`
	Phase           studio.Phase           `json:"phase"`
	Error           string                 `json:"error,omitempty"`
	ImageURL        string                 `json:"image_url,omitempty"`
	ImageDataURL    string                 `json:"image_data_url,omitempty"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
	PreviewImageURL string                 `json:"preview_image_url"`
	ShowPlaceholder bool                   `json:"show_placeholder"`
}

func newStudioView(snap studio.Snapshot, embedImage bool) studioView {
	v := studioView{
		ID:       snap.ID,
		Model:    snap.Model,
		Theme:    snap.Theme,
		Branding: snap.Branding,
		Phase:    snap.Lifecycle.Phase(),
	}
	if snap.Logo != nil {
		v.Logo = &logoView{
			Name:       snap.Logo.Name,
			MIMEType:   snap.Logo.MIMEType,
			Size:       snap.Logo.Size,
			PreviewURL: fmt.Sprintf("%s?rev=%d", logoPreviewPath, snap.LogoRevision),
		}
	}
	if msg, ok := snap.Lifecycle.Message(); ok {
		v.Error = msg
	}
	if res, ok := snap.Lifecycle.Result(); ok {
		v.ImageURL = fmt.Sprintf("%s?t=%d", imagePath, res.CompletedAt.UnixMilli())
		completed := res.CompletedAt
		v.CompletedAt = &completed
		if embedImage {
			v.ImageDataURL = res.Image.DataURL()
		}
	}
	v.PreviewImageURL = catalog.PreviewImageURL(v.ImageURL, snap.Model)
	v.ShowPlaceholder = catalog.ShowPlaceholder(v.ImageURL != "", snap.Model)
	return v
}

func (a *App) renderStudio(w http.ResponseWriter, r *http.Request, status int, st *studio.Studio) {
	embed := r.URL.Query().Get("embed") == "image"
	a.json(w, status, newStudioView(st.Snapshot(), embed))
}

func (a *App) StudioGet(w http.ResponseWriter, r *http.Request) {
	a.renderStudio(w, r, http.StatusOK, a.viewStudio(r))
}

func (a *App) StudioReset(w http.ResponseWriter, r *http.Request) {
	st := a.viewStudio(r)
	if err := st.Reset(r.Context()); err != nil {
		a.Logger.Warn().Err(err).Str("studio_id", st.ID()).Msg("studio: release logo on reset")
	}
	a.renderStudio(w, r, http.StatusOK, st)
}

type selectModelRequest struct {
	ModelID string `json:"model_id" validate:"required"`
}

func (a *App) SelectModel(w http.ResponseWriter, r *http.Request) {
	var req selectModelRequest
	if err := a.decode(w, r, &req); err != nil {
		a.badRequest(w, r, codeBadRequest)
		return
	}
	model, err := catalog.ModelByID(req.ModelID)
	if err != nil {
		a.error(w, http.StatusNotFound, codeUnknownModel, message(a.locale(r), codeUnknownModel))
		return
	}
	st := a.currentStudio(r)
	st.SelectModel(model)
	a.renderStudio(w, r, http.StatusOK, st)
}

type selectThemeRequest struct {
	ThemeID string `json:"theme_id" validate:"required"`
}

func (a *App) SelectTheme(w http.ResponseWriter, r *http.Request) {
	var req selectThemeRequest
	if err := a.decode(w, r, &req); err != nil {
		a.badRequest(w, r, codeBadRequest)
		return
	}
	theme, err := catalog.ThemeByID(req.ThemeID)
	if err != nil {
		a.error(w, http.StatusNotFound, codeUnknownTheme, message(a.locale(r), codeUnknownTheme))
		return
	}
	st := a.currentStudio(r)
	st.SelectTheme(theme)
	a.renderStudio(w, r, http.StatusOK, st)
}

func (a *App) SetBranding(w http.ResponseWriter, r *http.Request) {
	var req domain.BrandingDetails
	if err := a.decode(w, r, &req); err != nil {
		a.badRequest(w, r, codeBadRequest)
		return
	}
	st := a.currentStudio(r)
	st.SetBranding(req)
	a.renderStudio(w, r, http.StatusOK, st)
}

type brandingFieldRequest struct {
	Value string `json:"value"`
}

func (a *App) SetBrandingField(w http.ResponseWriter, r *http.Request) {
	field, ok := domain.ParseBrandingField(chi.URLParam(r, "field"))
	if !ok {
		a.error(w, http.StatusNotFound, codeUnknownField, message(a.locale(r), codeUnknownField))
		return
	}
	var req brandingFieldRequest
	if err := a.decode(w, r, &req); err != nil {
		a.badRequest(w, r, codeBadRequest)
		return
	}
	st := a.currentStudio(r)
	st.SetBrandingField(field, req.Value)
	a.renderStudio(w, r, http.StatusOK, st)
}

func (a *App) Prompt(w http.ResponseWriter, r *http.Request) {
	snap := a.viewStudio(r).Snapshot()
	text, err := prompt.Compose(snap.PromptInput())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	style := prompt.StyleFor(snap.Theme.Name)
	a.json(w, http.StatusOK, map[string]any{
		"prompt":              text,
		"style":               style.String(),
		"reference_image_url": catalog.ReferenceImageURL(snap.Model.ID),
	})
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	st := a.currentStudio(r)
	ticket, err := a.Service.Start(st)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	meta := a.requestMeta(r)
	if r.URL.Query().Get("wait") == "true" {
		a.Service.Dispatch(r.Context(), st, ticket, meta)
		a.renderStudio(w, r, http.StatusOK, st)
		return
	}
	a.Service.DispatchAsync(st, ticket, meta)
	a.renderStudio(w, r, http.StatusAccepted, st)
}
