package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"wrapstudio/internal/catalog"
	"wrapstudio/internal/domain"
	"wrapstudio/internal/imagegen"
	"wrapstudio/internal/infra"
	"wrapstudio/internal/prompt"
)

// LogoSource loads stored logo bytes.
type LogoSource interface {
	Read(ctx context.Context, key string) ([]byte, error)
}

// RequestMeta carries request scoped details into the audit log.
type RequestMeta struct {
	RequestID string
	Locale    string
	Country   string
}

type ServiceOptions struct {
	Generator imagegen.Generator
	Logos     LogoSource
	Recorder  domain.GenerationRepository
	// Timeout bounds each call to the generator. Zero means no bound.
	Timeout time.Duration
	Logger  *infra.Logger
}

// Service runs the generation flow for studios: accept the trigger, compose
// the prompt, call the generator exactly once and record the outcome.
type Service struct {
	gen      imagegen.Generator
	logos    LogoSource
	recorder domain.GenerationRepository
	timeout  time.Duration
	logger   *infra.Logger

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Service{
		gen:      opts.Generator,
		logos:    opts.Logos,
		recorder: opts.Recorder,
		timeout:  opts.Timeout,
		logger:   logger,
		base:     base,
		cancel:   cancel,
	}
}

// Generate runs the whole flow synchronously and returns the resolved
// snapshot. Only a refused trigger is reported as an error; generator
// failures end up in the studio's lifecycle.
func (s *Service) Generate(ctx context.Context, st *Studio, meta RequestMeta) (Snapshot, error) {
	t, err := s.Start(st)
	if err != nil {
		return st.Snapshot(), err
	}
	s.Dispatch(ctx, st, t, meta)
	return st.Snapshot(), nil
}

// Start accepts a trigger on st and moves it to Requesting.
func (s *Service) Start(st *Studio) (Ticket, error) {
	return st.Begin()
}

// DispatchAsync runs Dispatch in the background on the service's own
// context so the request that triggered it may return immediately.
func (s *Service) DispatchAsync(st *Studio, t Ticket, meta RequestMeta) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Dispatch(s.base, st, t, meta)
	}()
}

// Dispatch performs the generator call for an accepted ticket and resolves
// the studio. It never retries. A stale ticket reports PhaseIdle.
func (s *Service) Dispatch(ctx context.Context, st *Studio, t Ticket, meta RequestMeta) Phase {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := prompt.Compose(t.Input)
	var img imagegen.Image
	if err == nil {
		var req imagegen.Request
		req, err = s.buildRequest(ctx, t, text, meta.RequestID)
		if err == nil {
			img, err = s.call(ctx, req)
		}
	}

	lc, applied := st.Complete(t, Result{Image: img, Prompt: text}, err)
	if ferr := st.Finish(context.WithoutCancel(ctx), t); ferr != nil {
		s.logger.Warn().Err(ferr).Str("studio_id", t.StudioID).Msg("studio: release replaced logo")
	}
	phase := lc.Phase()
	duration := time.Since(t.StartedAt)

	event := s.logger.Info()
	if applied && phase == PhaseFailed {
		event = s.logger.Warn().Err(err)
	}
	event.
		Str("studio_id", t.StudioID).
		Str("request_id", meta.RequestID).
		Str("model", t.Input.Model.ID).
		Str("theme", t.Input.Theme.Name).
		Str("phase", phase.String()).
		Bool("applied", applied).
		Dur("duration", duration).
		Msg("studio: generation resolved")

	if !applied {
		return PhaseIdle
	}
	s.record(t, lc, duration, meta)
	return phase
}

func (s *Service) call(ctx context.Context, req imagegen.Request) (img imagegen.Image, err error) {
	if s.gen == nil {
		return imagegen.Image{}, errors.New("image generator not configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("image generator panic: %v", r)
		}
	}()
	return s.gen.Generate(ctx, req)
}

func (s *Service) buildRequest(ctx context.Context, t Ticket, text, requestID string) (imagegen.Request, error) {
	req := imagegen.Request{
		RequestID:         requestID,
		ReferenceImageURL: catalog.ReferenceImageURL(t.Input.Model.ID),
		FallbackImageURL:  catalog.FallbackImageURL,
		ThemeName:         t.Input.Theme.Name,
		Slogan:            t.Input.Branding.Slogan,
		Website:           t.Input.Branding.Website,
		Phone:             t.Input.Branding.Phone,
		Prompt:            text,
	}
	if t.Logo != nil {
		if s.logos == nil {
			return req, errors.New("logo storage not configured")
		}
		data, err := s.logos.Read(ctx, t.Logo.Key)
		if err != nil {
			return req, fmt.Errorf("load logo: %w", err)
		}
		req.Logo = &imagegen.SourceImage{Data: data, MIMEType: t.Logo.MIMEType, Name: t.Logo.Name}
	}
	return req, nil
}

func (s *Service) record(t Ticket, lc Lifecycle, duration time.Duration, meta RequestMeta) {
	if s.recorder == nil {
		return
	}
	g := domain.Generation{
		ID:        uuid.NewString(),
		StudioID:  t.StudioID,
		ModelID:   t.Input.Model.ID,
		ThemeName: t.Input.Theme.Name,
		HasLogo:   t.Logo != nil,
		Provider:  s.ProviderName(),
		Status:    domain.GenerationSucceeded,
		Duration:  duration,
		Locale:    meta.Locale,
		Country:   meta.Country,
		CreatedAt: time.Now().UTC(),
	}
	if msg, failed := lc.Message(); failed {
		g.Status = domain.GenerationFailed
		g.ErrorMessage = msg
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.recorder.Record(ctx, g); err != nil {
		s.logger.Error().Err(err).Str("generation_id", g.ID).Msg("studio: record generation")
	}
}

// ProviderName names the generator that serves requests.
func (s *Service) ProviderName() string {
	switch g := s.gen.(type) {
	case nil:
		return "none"
	case interface{ Active() string }:
		return g.Active()
	case fmt.Stringer:
		return g.String()
	default:
		return fmt.Sprintf("%T", g)
	}
}

// Shutdown cancels in-flight background requests and waits for them to
// resolve or for ctx to expire.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
