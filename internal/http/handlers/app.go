package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"wrapstudio/internal/domain"
	"wrapstudio/internal/infra"
	"wrapstudio/internal/middleware"
	"wrapstudio/internal/storage"
	"wrapstudio/internal/studio"
)

const sessionStudioKey = "studio_id"

type App struct {
	Config   *infra.Config
	Logger   *infra.Logger
	Sessions *scs.SessionManager
	Studios  *studio.Registry
	Service  *studio.Service
	Store    *storage.FileStore
	Stats    domain.GenerationRepository
	Validate *validator.Validate
	Now      func() time.Time
}

func NewApp(cfg *infra.Config, logger *infra.Logger, sessions *scs.SessionManager, studios *studio.Registry, svc *studio.Service, store *storage.FileStore, stats domain.GenerationRepository) *App {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &App{
		Config:   cfg,
		Logger:   logger,
		Sessions: sessions,
		Studios:  studios,
		Service:  svc,
		Store:    store,
		Stats:    stats,
		Validate: infra.Validator(),
		Now:      time.Now,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	a.json(w, status, body)
}

// fail maps domain errors to HTTP responses with a localized message.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	status, code := http.StatusInternalServerError, codeInternal
	switch {
	case errors.Is(err, domain.ErrMissingModel):
		status, code = http.StatusUnprocessableEntity, codeMissingModel
	case errors.Is(err, domain.ErrMissingTheme):
		status, code = http.StatusUnprocessableEntity, codeMissingTheme
	case errors.Is(err, domain.ErrGenerationInFlight):
		status, code = http.StatusConflict, codeGenerationInFlight
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, codeNotFound
	}
	if status >= http.StatusInternalServerError {
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("request failed")
	}
	a.error(w, status, code, message(locale, code))
}

func (a *App) locale(r *http.Request) string {
	return middleware.LocaleFromContext(r.Context())
}

func (a *App) badRequest(w http.ResponseWriter, r *http.Request, code string) {
	a.error(w, http.StatusBadRequest, code, message(middleware.LocaleFromContext(r.Context()), code))
}

// decode reads a JSON body and validates it with the shared validator.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return a.Validate.Struct(dst)
}

// currentStudio returns the studio bound to the caller's session, creating
// both on first use.
func (a *App) currentStudio(r *http.Request) *studio.Studio {
	ctx := r.Context()
	id := a.Sessions.GetString(ctx, sessionStudioKey)
	if id == "" {
		id = uuid.NewString()
		a.Sessions.Put(ctx, sessionStudioKey, id)
	}
	return a.Studios.Get(id)
}

// viewStudio returns the caller's studio for read-only use. Callers without
// a session or a live studio get an empty transient one, so plain reads never
// create sessions or registry entries.
func (a *App) viewStudio(r *http.Request) *studio.Studio {
	id := a.Sessions.GetString(r.Context(), sessionStudioKey)
	if id != "" {
		if st, ok := a.Studios.Touch(id); ok {
			return st
		}
	}
	return studio.New(id, nil)
}

func (a *App) requestMeta(r *http.Request) studio.RequestMeta {
	ctx := r.Context()
	return studio.RequestMeta{
		RequestID: middleware.RequestIDFromContext(ctx),
		Locale:    middleware.LocaleFromContext(ctx),
		Country:   middleware.CountryFromContext(ctx),
	}
}
