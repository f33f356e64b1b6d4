package controllers

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"clubevents/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const adminToken = "admin-token"

var testExpiry = time.Date(2025, 4, 1, 12, 15, 0, 0, time.UTC)

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	password string
	loginErr error
}

func (f *fakeAuthService) Login(ctx context.Context, password string) (string, time.Time, error) {
	if f.loginErr != nil {
		return "", time.Time{}, f.loginErr
	}
	if password != f.password {
		return "", time.Time{}, domain.ErrInvalidCredentials
	}
	return adminToken, testExpiry, nil
}

func (f *fakeAuthService) Session(ctx context.Context, token string) (*domain.AdminSession, error) {
	if token != adminToken {
		return nil, domain.ErrUnauthorized
	}
	return &domain.AdminSession{Subject: domain.AdminSubject, ExpiresAt: testExpiry}, nil
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	events      []*domain.Event
	err         error
	listCalls   int
	getCalls    int
	lastToken   string
	lastPublish domain.PublishInput
	lastPatch   domain.EventPatch
	lastSlug    string
	publish     *domain.PublishResult
	deleted     int
	// onList runs inside List, after the handler has checked the cache.
	onList      func()
}

func (f *fakeEventService) privileged(token string) bool {
	return token == adminToken
}

func (f *fakeEventService) Publish(ctx context.Context, token string, in domain.PublishInput) (*domain.PublishResult, error) {
	f.lastToken = token
	f.lastPublish = in
	if f.err != nil {
		return nil, f.err
	}
	return f.publish, nil
}

func (f *fakeEventService) List(ctx context.Context, token string, includeHidden bool) ([]*domain.Event, bool, error) {
	f.listCalls++
	if f.onList != nil {
		f.onList()
	}
	if f.err != nil {
		return nil, false, f.err
	}
	privileged := includeHidden && f.privileged(token)
	out := []*domain.Event{}
	for _, e := range f.events {
		if e.Hidden && !privileged {
			continue
		}
		out = append(out, e)
	}
	return out, privileged, nil
}

func (f *fakeEventService) Get(ctx context.Context, token, slug string) (*domain.Event, bool, error) {
	f.getCalls++
	f.lastSlug = slug
	if f.err != nil {
		return nil, false, f.err
	}
	for _, e := range f.events {
		if e.Slug == slug && (!e.Hidden || f.privileged(token)) {
			return e, f.privileged(token), nil
		}
	}
	return nil, false, domain.ErrNotFound
}

func (f *fakeEventService) CheckSlug(ctx context.Context, base string) (*domain.SlugSuggestion, error) {
	if base == "" {
		return nil, domain.NewValidationError("missing base slug")
	}
	return &domain.SlugSuggestion{Base: base, UniqueSlug: base + "-2", IsTaken: true}, nil
}

func (f *fakeEventService) Update(ctx context.Context, token, slug string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastToken = token
	f.lastSlug = slug
	f.lastPatch = patch
	if f.err != nil {
		return nil, f.err
	}
	if patch.IsEmpty() {
		return nil, domain.ErrNoFields
	}
	return &domain.Event{Slug: slug, Title: *patch.Title}, nil
}

func (f *fakeEventService) Delete(ctx context.Context, token, slug string) (int, error) {
	f.lastToken = token
	f.lastSlug = slug
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

// memCache is a map-backed domain.PageCache.
type memCache struct {
	mu    sync.Mutex
	pages map[string][]byte
	gen   uint64
}

func newMemCache() *memCache {
	return &memCache{pages: make(map[string][]byte)}
}

func (m *memCache) Get(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.pages[path]
	return b, ok
}

func (m *memCache) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

func (m *memCache) Set(path string, body []byte, gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false
	}
	m.pages[path] = body
	return true
}

func (m *memCache) Invalidate(ctx context.Context, paths ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	for _, p := range paths {
		delete(m.pages, p)
	}
	return nil
}
