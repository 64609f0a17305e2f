package studio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wrapstudio/internal/catalog"
	"wrapstudio/internal/domain"
	"wrapstudio/internal/imagegen"
	"wrapstudio/internal/prompt"
)

type fakeGenerator struct {
	mu    sync.Mutex
	calls []imagegen.Request
	img   imagegen.Image
	err   error
	// started is signalled and block is awaited when block is non-nil.
	started chan struct{}
	block   chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, req imagegen.Request) (imagegen.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	img, err, block, started := f.img, f.err, f.block, f.started
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return imagegen.Image{}, ctx.Err()
		}
	}
	return img, err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeReleaser struct {
	mu       sync.Mutex
	released []string
}

func (f *fakeReleaser) Release(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, keys...)
	return nil
}

type memLogos map[string][]byte

func (m memLogos) Read(ctx context.Context, key string) ([]byte, error) {
	data, ok := m[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

type memRecorder struct {
	mu      sync.Mutex
	records []domain.Generation
}

func (m *memRecorder) Record(ctx context.Context, g domain.Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, g)
	return nil
}

func (m *memRecorder) StatsSince(ctx context.Context, since time.Time) (domain.GenerationStats, error) {
	return domain.GenerationStats{}, nil
}

func pngImage() imagegen.Image {
	return imagegen.Image{Data: []byte{0x89, 'P', 'N', 'G'}, MIMEType: "image/png"}
}

func readyStudio(t *testing.T) *Studio {
	t.Helper()
	st := New("studio-1", nil)
	model, err := catalog.ModelByID(catalog.ModelSingleCold)
	require.NoError(t, err)
	theme, err := catalog.ThemeByID("fresh-aqua")
	require.NoError(t, err)
	st.SelectModel(model)
	st.SelectTheme(theme)
	return st
}

func TestGenerateRequiresModelAndTheme(t *testing.T) {
	gen := &fakeGenerator{img: pngImage()}
	svc := NewService(ServiceOptions{Generator: gen})

	st := New("s", nil)
	_, err := svc.Generate(context.Background(), st, RequestMeta{})
	require.ErrorIs(t, err, domain.ErrMissingModel)

	model, _ := catalog.ModelByID(catalog.ModelDoubleHot)
	st.SelectModel(model)
	snap, err := svc.Generate(context.Background(), st, RequestMeta{})
	require.ErrorIs(t, err, domain.ErrMissingTheme)

	require.Equal(t, 0, gen.callCount())
	require.Equal(t, PhaseIdle, snap.Lifecycle.Phase())
}

func TestGenerateSuccessClearsPreviousError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	svc := NewService(ServiceOptions{Generator: gen})
	st := readyStudio(t)

	snap, err := svc.Generate(context.Background(), st, RequestMeta{})
	require.NoError(t, err)
	msg, ok := snap.Lifecycle.Message()
	require.True(t, ok)
	require.Equal(t, "quota exceeded", msg)

	gen.mu.Lock()
	gen.err, gen.img = nil, pngImage()
	gen.mu.Unlock()

	snap, err = svc.Generate(context.Background(), st, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, PhaseSucceeded, snap.Lifecycle.Phase())
	_, failed := snap.Lifecycle.Message()
	require.False(t, failed)

	res, ok := snap.Lifecycle.Result()
	require.True(t, ok)
	require.Equal(t, pngImage().Data, res.Image.Data)
	require.False(t, res.CompletedAt.IsZero())

	want, err := prompt.Compose(snap.PromptInput())
	require.NoError(t, err)
	require.Equal(t, want, res.Prompt)
	require.Equal(t, 2, gen.callCount())
}

func TestGenerateFailureMessages(t *testing.T) {
	cases := []struct {
		name string
		img  imagegen.Image
		err  error
		want string
	}{
		{name: "empty payload", want: domain.EmptyResultMessage},
		{name: "error message surfaced", err: errors.New("gemini status 500: internal"), want: "gemini status 500: internal"},
		{name: "blank error message", err: errors.New(""), want: domain.UnknownErrorMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(ServiceOptions{Generator: &fakeGenerator{img: tc.img, err: tc.err}})
			snap, err := svc.Generate(context.Background(), readyStudio(t), RequestMeta{})
			require.NoError(t, err)
			require.Equal(t, PhaseFailed, snap.Lifecycle.Phase())
			msg, ok := snap.Lifecycle.Message()
			require.True(t, ok)
			require.Equal(t, tc.want, msg)
			_, ok = snap.Lifecycle.Result()
			require.False(t, ok)
		})
	}
}

func TestBuildsRequestFromSelection(t *testing.T) {
	gen := &fakeGenerator{img: pngImage()}
	svc := NewService(ServiceOptions{
		Generator: gen,
		Logos:     memLogos{"logos/a.png": []byte("logo-bytes")},
	})
	st := readyStudio(t)
	st.SetSlogan("Cold drinks")
	st.SetPhone("555-0100")
	_, err := st.SetLogo(context.Background(), Logo{Key: "logos/a.png", MIMEType: "image/png", Name: "a.png"})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), st, RequestMeta{RequestID: "rid-1"})
	require.NoError(t, err)
	require.Equal(t, 1, gen.callCount())

	req := gen.calls[0]
	require.Equal(t, "rid-1", req.RequestID)
	require.Equal(t, catalog.SingleColdImageURL(), req.ReferenceImageURL)
	require.Equal(t, catalog.FallbackImageURL, req.FallbackImageURL)
	require.Equal(t, "Fresh Aqua", req.ThemeName)
	require.Equal(t, "Cold drinks", req.Slogan)
	require.Empty(t, req.Website)
	require.Equal(t, "555-0100", req.Phone)
	require.NotNil(t, req.Logo)
	require.Equal(t, []byte("logo-bytes"), req.Logo.Data)
	require.Contains(t, req.Prompt, "Add the uploaded logo clearly on the side panel.")
}

func TestMissingLogoBytesFailsGeneration(t *testing.T) {
	gen := &fakeGenerator{img: pngImage()}
	svc := NewService(ServiceOptions{Generator: gen, Logos: memLogos{}})
	st := readyStudio(t)
	_, err := st.SetLogo(context.Background(), Logo{Key: "logos/gone.png"})
	require.NoError(t, err)

	snap, err := svc.Generate(context.Background(), st, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, PhaseFailed, snap.Lifecycle.Phase())
	require.Equal(t, 0, gen.callCount())
}

func TestSecondTriggerRefusedWhileInFlight(t *testing.T) {
	gen := &fakeGenerator{img: pngImage(), started: make(chan struct{}, 1), block: make(chan struct{})}
	svc := NewService(ServiceOptions{Generator: gen})
	st := readyStudio(t)

	ticket, err := svc.Start(st)
	require.NoError(t, err)
	svc.DispatchAsync(st, ticket, RequestMeta{})
	<-gen.started

	require.Equal(t, PhaseRequesting, st.Snapshot().Lifecycle.Phase())
	_, err = svc.Start(st)
	require.ErrorIs(t, err, domain.ErrGenerationInFlight)

	close(gen.block)
	require.NoError(t, svc.Shutdown(context.Background()))
	require.Equal(t, PhaseSucceeded, st.Snapshot().Lifecycle.Phase())
	require.Equal(t, 1, gen.callCount())
}

func TestShutdownCancelsInFlightRequest(t *testing.T) {
	gen := &fakeGenerator{started: make(chan struct{}, 1), block: make(chan struct{})}
	svc := NewService(ServiceOptions{Generator: gen})
	st := readyStudio(t)

	ticket, err := svc.Start(st)
	require.NoError(t, err)
	svc.DispatchAsync(st, ticket, RequestMeta{})
	<-gen.started

	require.NoError(t, svc.Shutdown(context.Background()))
	msg, ok := st.Snapshot().Lifecycle.Message()
	require.True(t, ok)
	require.Equal(t, context.Canceled.Error(), msg)
}

func TestResetDiscardsInFlightResult(t *testing.T) {
	st := readyStudio(t)
	ticket, err := st.Begin()
	require.NoError(t, err)
	require.NoError(t, st.Reset(context.Background()))

	lc, applied := st.Complete(ticket, Result{Image: pngImage()}, nil)
	require.False(t, applied)
	require.Equal(t, PhaseIdle, lc.Phase())

	snap := st.Snapshot()
	require.Nil(t, snap.Model)
	require.Nil(t, snap.Theme)
}

func TestTicketFreezesSelection(t *testing.T) {
	st := readyStudio(t)
	ticket, err := st.Begin()
	require.NoError(t, err)

	theme, _ := catalog.ThemeByID("eco-bright")
	st.SelectTheme(theme)
	st.SetWebsite("example.com")

	require.Equal(t, "Fresh Aqua", ticket.Input.Theme.Name)
	require.Empty(t, ticket.Input.Branding.Website)
}

func TestSetLogoReleasesPrevious(t *testing.T) {
	rel := &fakeReleaser{}
	st := New("s", rel)

	rev, err := st.SetLogo(context.Background(), Logo{Key: "a.png", PreviewKey: "a.preview.png"})
	require.NoError(t, err)
	require.Equal(t, 1, rev)
	require.Empty(t, rel.released)

	rev, err = st.SetLogo(context.Background(), Logo{Key: "b.png", PreviewKey: "b.preview.png"})
	require.NoError(t, err)
	require.Equal(t, 2, rev)
	require.Equal(t, []string{"a.png", "a.preview.png"}, rel.released)

	require.NoError(t, st.Reset(context.Background()))
	require.Equal(t, []string{"a.png", "a.preview.png", "b.png", "b.preview.png"}, rel.released)
	require.Nil(t, st.Snapshot().Logo)
}

func TestBrandingEdits(t *testing.T) {
	st := New("s", nil)
	st.SetBranding(domain.BrandingDetails{Slogan: "a", Website: "b", Phone: "c"})
	st.SetWebsite("")
	require.Equal(t, domain.BrandingDetails{Slogan: "a", Phone: "c"}, st.Snapshot().Branding)
}

func TestRecorderReceivesOutcome(t *testing.T) {
	rec := &memRecorder{}
	svc := NewService(ServiceOptions{Generator: &fakeGenerator{err: errors.New("boom")}, Recorder: rec})
	_, err := svc.Generate(context.Background(), readyStudio(t), RequestMeta{Locale: "id", Country: "ID"})
	require.NoError(t, err)

	require.Len(t, rec.records, 1)
	g := rec.records[0]
	require.Equal(t, domain.GenerationFailed, g.Status)
	require.Equal(t, "boom", g.ErrorMessage)
	require.Equal(t, catalog.ModelSingleCold, g.ModelID)
	require.Equal(t, "Fresh Aqua", g.ThemeName)
	require.Equal(t, "id", g.Locale)
	require.NotEmpty(t, g.ID)
}

func TestRegistrySweep(t *testing.T) {
	rel := &fakeReleaser{}
	reg := NewRegistry(rel, time.Minute, nil)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	idle := reg.Get("idle")
	_, err := idle.SetLogo(context.Background(), Logo{Key: "idle.png"})
	require.NoError(t, err)
	busy := readyStudio(t)
	busy.now = reg.now
	reg.mu.Lock()
	reg.studios["busy"] = busy
	reg.mu.Unlock()
	busy.touch(now)
	_, err = busy.Begin()
	require.NoError(t, err)

	require.Same(t, idle, reg.Get("idle"))

	now = now.Add(2 * time.Minute)
	fresh := reg.Get("fresh")
	require.Equal(t, 1, reg.Sweep(context.Background()))

	_, ok := reg.Lookup("idle")
	require.False(t, ok)
	_, ok = reg.Lookup("busy")
	require.True(t, ok)
	got, ok := reg.Lookup("fresh")
	require.True(t, ok)
	require.Same(t, fresh, got)
	require.Equal(t, []string{"idle.png"}, rel.released)
}

func TestRegistryGetIsNotEvictedByConcurrentSweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	reg := NewRegistry(nil, time.Minute, nil)
	reg.now = func() time.Time { return now }
	stale := now.Add(-time.Hour)

	reg.Get("a").touch(stale)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			reg.Sweep(context.Background())
		}
	}()

	for i := 0; i < 2000; i++ {
		st := reg.Get("a")
		got, ok := reg.Lookup("a")
		require.True(t, ok, "studio evicted right after Get")
		require.Same(t, st, got)
		st.touch(stale)
	}
	<-done
}

type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memStore) Read(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (m *memStore) Release(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.files, k)
	}
	return nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[key]
	return ok
}

func TestLogoReplacedDuringRequestIsStillSent(t *testing.T) {
	ctx := context.Background()
	store := &memStore{files: map[string][]byte{
		"a.png": []byte("logo-a"), "a-preview.png": []byte("pa"),
		"b.png": []byte("logo-b"), "b-preview.png": []byte("pb"),
	}}
	gen := &fakeGenerator{img: pngImage()}
	svc := NewService(ServiceOptions{Generator: gen, Logos: store})

	st := readyStudio(t)
	st.releaser = store
	_, err := st.SetLogo(ctx, Logo{Key: "a.png", PreviewKey: "a-preview.png", MIMEType: "image/png"})
	require.NoError(t, err)

	ticket, err := svc.Start(st)
	require.NoError(t, err)
	_, err = st.SetLogo(ctx, Logo{Key: "b.png", PreviewKey: "b-preview.png", MIMEType: "image/png"})
	require.NoError(t, err)
	require.True(t, store.has("a.png"), "logo in use must not be released yet")

	require.Equal(t, PhaseSucceeded, svc.Dispatch(ctx, st, ticket, RequestMeta{}))
	require.Equal(t, 1, gen.callCount())
	require.Equal(t, []byte("logo-a"), gen.calls[0].Logo.Data)

	require.False(t, store.has("a.png"))
	require.False(t, store.has("a-preview.png"))
	require.True(t, store.has("b.png"))
}

func TestResetDuringRequestDefersLogoRelease(t *testing.T) {
	ctx := context.Background()
	store := &memStore{files: map[string][]byte{"a.png": []byte("logo-a")}}
	gen := &fakeGenerator{img: pngImage()}
	svc := NewService(ServiceOptions{Generator: gen, Logos: store})

	st := readyStudio(t)
	st.releaser = store
	_, err := st.SetLogo(ctx, Logo{Key: "a.png", MIMEType: "image/png"})
	require.NoError(t, err)

	ticket, err := svc.Start(st)
	require.NoError(t, err)
	require.NoError(t, st.Reset(ctx))
	require.True(t, store.has("a.png"))

	require.Equal(t, PhaseIdle, svc.Dispatch(ctx, st, ticket, RequestMeta{}))
	require.Equal(t, []byte("logo-a"), gen.calls[0].Logo.Data)
	require.False(t, store.has("a.png"))
}
