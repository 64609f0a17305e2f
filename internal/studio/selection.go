// Package studio holds a session's trailer selection and drives its image
// generation requests.
package studio

import (
	"context"
	"sync"
	"time"

	"wrapstudio/internal/domain"
	"wrapstudio/internal/prompt"
)

// Releaser frees stored logo resources that are no longer referenced.
type Releaser interface {
	Release(ctx context.Context, keys ...string) error
}

// Logo references an uploaded logo and its preview in the file store.
type Logo struct {
	Key             string `json:"-"`
	MIMEType        string `json:"mime_type"`
	Name            string `json:"name"`
	Size            int    `json:"size"`
	PreviewKey      string `json:"-"`
	PreviewMIMEType string `json:"-"`
}

func (l *Logo) keys() []string {
	if l == nil {
		return nil
	}
	var keys []string
	for _, k := range []string{l.Key, l.PreviewKey} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Studio is one session's selection state. All methods are safe for
// concurrent use.
type Studio struct {
	mu        sync.Mutex
	id        string
	releaser  Releaser
	now       func() time.Time
	model     *domain.TrailerModel
	theme     *domain.ColorTheme
	branding  domain.BrandingDetails
	logo      *Logo
	logoRev   int
	lifecycle Lifecycle
	lastSeen  time.Time
	// leases maps in-flight ticket sequences to the logo key they read.
	leases    map[uint64]string
	deferred  []*Logo
}

// New returns an empty studio. releaser may be nil.
func New(id string, releaser Releaser) *Studio {
	return &Studio{id: id, releaser: releaser, now: time.Now, lastSeen: time.Now()}
}

func (s *Studio) ID() string { return s.id }

func (s *Studio) SelectModel(m domain.TrailerModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = &m
}

func (s *Studio) SelectTheme(t domain.ColorTheme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = &t
}

// SetBranding replaces all three branding fields.
func (s *Studio) SetBranding(b domain.BrandingDetails) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.branding = b
}

// SetBrandingField replaces one field and keeps the others.
func (s *Studio) SetBrandingField(field domain.BrandingField, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.branding = s.branding.With(field, value)
}

func (s *Studio) SetSlogan(v string)  { s.SetBrandingField(domain.BrandingSlogan, v) }
func (s *Studio) SetWebsite(v string) { s.SetBrandingField(domain.BrandingWebsite, v) }
func (s *Studio) SetPhone(v string)   { s.SetBrandingField(domain.BrandingPhone, v) }

// SetLogo replaces the logo and its preview, then releases the previous
// ones. It returns the new preview revision.
func (s *Studio) SetLogo(ctx context.Context, logo Logo) (int, error) {
	s.mu.Lock()
	old := s.logo
	s.logo = &logo
	s.logoRev++
	rev := s.logoRev
	keys := s.retireLocked(old)
	s.mu.Unlock()

	return rev, s.release(ctx, keys)
}

// Reset clears the selection and any generation result. A request still in
// flight resolves into the void.
func (s *Studio) Reset(ctx context.Context) error {
	s.mu.Lock()
	old := s.logo
	s.model = nil
	s.theme = nil
	s.branding = domain.BrandingDetails{}
	s.logo = nil
	s.logoRev++
	s.lifecycle.reset()
	keys := s.retireLocked(old)
	s.mu.Unlock()

	return s.release(ctx, keys)
}

// Finish drops t's hold on its logo and releases replaced logos that no
// request in flight still reads.
func (s *Studio) Finish(ctx context.Context, t Ticket) error {
	s.mu.Lock()
	delete(s.leases, t.seq)
	var keys []string
	kept := s.deferred[:0]
	for _, l := range s.deferred {
		if s.leasedLocked(l.Key) {
			kept = append(kept, l)
			continue
		}
		keys = append(keys, l.keys()...)
	}
	s.deferred = kept
	s.mu.Unlock()

	return s.release(ctx, keys)
}

// retireLocked returns the keys of a replaced logo that can be released now.
// A logo still leased to a ticket is held until Finish.
func (s *Studio) retireLocked(old *Logo) []string {
	if old == nil {
		return nil
	}
	if s.leasedLocked(old.Key) {
		s.deferred = append(s.deferred, old)
		return nil
	}
	return old.keys()
}

func (s *Studio) leasedLocked(key string) bool {
	for _, k := range s.leases {
		if k == key {
			return true
		}
	}
	return false
}

func (s *Studio) release(ctx context.Context, keys []string) error {
	if len(keys) == 0 || s.releaser == nil {
		return nil
	}
	return s.releaser.Release(ctx, keys...)
}

// Begin accepts a generation trigger. Missing selections and a request
// already in flight are refused without touching the lifecycle.
func (s *Studio) Begin() (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := s.inputLocked()
	if err := in.Validate(); err != nil {
		return Ticket{}, err
	}
	if s.lifecycle.phase == PhaseRequesting {
		return Ticket{}, domain.ErrGenerationInFlight
	}

	t := Ticket{StudioID: s.id, Input: in, StartedAt: s.now()}
	if s.logo != nil {
		logo := *s.logo
		t.Logo = &logo
	}
	t.seq = s.lifecycle.begin()
	if t.Logo != nil && t.Logo.Key != "" {
		if s.leases == nil {
			s.leases = make(map[uint64]string)
		}
		s.leases[t.seq] = t.Logo.Key
	}
	return t, nil
}

// Complete resolves the request identified by t and returns the resulting
// lifecycle. It reports false when t is stale and the studio was left
// untouched.
func (s *Studio) Complete(t Ticket, res Result, err error) (Lifecycle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.CompletedAt.IsZero() {
		res.CompletedAt = s.now()
	}
	ok := s.lifecycle.resolve(t.seq, res, err)
	return s.lifecycle, ok
}

// Snapshot is a read-only copy of a studio.
type Snapshot struct {
	ID           string
	Model        *domain.TrailerModel
	Theme        *domain.ColorTheme
	Branding     domain.BrandingDetails
	Logo         *Logo
	LogoRevision int
	Lifecycle    Lifecycle
}

// PromptInput returns the composer input for this selection.
func (s Snapshot) PromptInput() prompt.Input {
	return prompt.Input{Model: s.Model, Theme: s.Theme, Branding: s.Branding, HasLogo: s.Logo != nil}
}

func (s *Studio) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:           s.id,
		Branding:     s.branding,
		LogoRevision: s.logoRev,
		Lifecycle:    s.lifecycle,
	}
	in := s.inputLocked()
	snap.Model, snap.Theme = in.Model, in.Theme
	if s.logo != nil {
		logo := *s.logo
		snap.Logo = &logo
	}
	return snap
}

// inputLocked copies the selection so callers never alias studio state.
func (s *Studio) inputLocked() prompt.Input {
	in := prompt.Input{Branding: s.branding, HasLogo: s.logo != nil}
	if s.model != nil {
		m := *s.model
		in.Model = &m
	}
	if s.theme != nil {
		t := *s.theme
		in.Theme = &t
	}
	return in
}

func (s *Studio) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// idle reports whether the studio has been unused for longer than ttl and
// has no request in flight.
func (s *Studio) idle(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle.phase != PhaseRequesting && now.Sub(s.lastSeen) > ttl
}
