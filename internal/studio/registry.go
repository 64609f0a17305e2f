package studio

import (
	"context"
	"sync"
	"time"

	"wrapstudio/internal/infra"
)

// Registry maps session studio ids to live studios. Studios are created on
// first use and evicted after ttl of inactivity.
type Registry struct {
	mu       sync.Mutex
	studios  map[string]*Studio
	releaser Releaser
	ttl      time.Duration
	now      func() time.Time
	logger   *infra.Logger
}

func NewRegistry(releaser Releaser, ttl time.Duration, logger *infra.Logger) *Registry {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Registry{
		studios:  make(map[string]*Studio),
		releaser: releaser,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Get returns the studio for id, creating it when absent, and marks it used.
// The touch happens under the registry lock so a concurrent Sweep cannot
// evict the studio between lookup and use.
func (r *Registry) Get(id string) *Studio {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.studios[id]
	if !ok {
		st = New(id, r.releaser)
		st.now = r.now
		r.studios[id] = st
	}
	st.touch(r.now())
	return st
}

// Touch returns the existing studio for id and marks it used. It never
// creates one.
func (r *Registry) Touch(id string) (*Studio, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.studios[id]
	if ok {
		st.touch(r.now())
	}
	return st, ok
}

// Lookup returns the studio for id without creating one.
func (r *Registry) Lookup(id string) (*Studio, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.studios[id]
	return st, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.studios)
}

// Remove drops the studio and releases its logo.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	st, ok := r.studios[id]
	delete(r.studios, id)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return st.Reset(ctx)
}

// Sweep evicts idle studios and returns how many were removed. Studios with
// a request in flight are kept.
func (r *Registry) Sweep(ctx context.Context) int {
	if r.ttl <= 0 {
		return 0
	}
	now := r.now()
	var evicted []*Studio
	r.mu.Lock()
	for id, st := range r.studios {
		if st.idle(now, r.ttl) {
			evicted = append(evicted, st)
			delete(r.studios, id)
		}
	}
	r.mu.Unlock()

	for _, st := range evicted {
		if err := st.Reset(ctx); err != nil {
			r.logger.Warn().Err(err).Str("studio_id", st.ID()).Msg("studio: release logo on eviction")
		}
	}
	if len(evicted) > 0 {
		r.logger.Debug().Int("evicted", len(evicted)).Msg("studio: swept idle studios")
	}
	return len(evicted)
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}
