package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"clubevents/internal/domain"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const validToken = "valid-token"

// fakeSessions accepts validToken only.
type fakeSessions struct {
	issueErr error
}

func (f *fakeSessions) Issue(subject string) (string, time.Time, error) {
	if f.issueErr != nil {
		return "", time.Time{}, f.issueErr
	}
	return validToken, time.Date(2025, 1, 1, 0, 15, 0, 0, time.UTC), nil
}

func (f *fakeSessions) Verify(token string) (*domain.AdminSession, bool) {
	if token != validToken {
		return nil, false
	}
	return &domain.AdminSession{Subject: domain.AdminSubject}, true
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	mu        sync.Mutex
	bySlug    map[string]*domain.Event
	createErr error // if set, Create returns this error
	updateErr error
	// conflicts makes the next n Create calls fail with ErrDuplicateSlug after
	// inserting a competing row under the requested slug.
	conflicts int
	creates   int
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{bySlug: make(map[string]*domain.Event)}
	for _, e := range events {
		f.bySlug[key(e.Slug)] = e
	}
	return f
}

func key(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	if f.conflicts > 0 {
		f.conflicts--
		f.bySlug[key(e.Slug)] = &domain.Event{Slug: e.Slug, Title: "competing"}
		return domain.ErrDuplicateSlug
	}
	if _, ok := f.bySlug[key(e.Slug)]; ok {
		return domain.ErrDuplicateSlug
	}
	cp := *e
	f.bySlug[key(e.Slug)] = &cp
	return nil
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.bySlug[key(slug)]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, includeHidden bool) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Event, 0)
	for _, e := range f.bySlug {
		if e.Hidden && !includeHidden {
			continue
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *domain.Event) int { return strings.Compare(b.StartDate, a.StartDate) })
	return out, nil
}

func (f *fakeEventRepo) ListSlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.bySlug {
		if k == base || strings.HasPrefix(k, base+"-") {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, slug string, p domain.EventPatch) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	e, ok := f.bySlug[key(slug)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	str := func(dst **string, v *string) {
		if v == nil {
			return
		}
		if strings.TrimSpace(*v) == "" {
			*dst = nil
			return
		}
		s := strings.TrimSpace(*v)
		*dst = &s
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.StartDate != nil {
		e.StartDate = *p.StartDate
	}
	str(&e.EndDate, p.EndDate)
	str(&e.StartTime, p.StartTime)
	str(&e.EndTime, p.EndTime)
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.BodyMarkdown != nil {
		e.BodyMarkdown = *p.BodyMarkdown
	}
	str(&e.SignupURL, p.SignupURL)
	str(&e.SignupEmbedURL, p.SignupEmbedURL)
	if p.HasGoogleForm != nil {
		e.HasGoogleForm = *p.HasGoogleForm
	}
	if p.Hidden != nil {
		e.Hidden = *p.Hidden
	}
	if p.ImagePublicIDs != nil {
		e.ImagePublicIDs = slices.Clone(*p.ImagePublicIDs)
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bySlug[key(slug)]; !ok {
		return domain.ErrNotFound
	}
	delete(f.bySlug, key(slug))
	return nil
}

func (f *fakeEventRepo) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bySlug)
}

// fakeImageStore records uploads and deletes.
type fakeImageStore struct {
	mu             sync.Mutex
	uploads        []domain.ImageUpload
	failNames      map[string]bool
	deleted        []string
	deletedFolders []string
	deleteErr      error
}

func (f *fakeImageStore) Upload(ctx context.Context, img domain.ImageUpload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, img)
	if f.failNames[img.Name] {
		return "", errors.New("image host unavailable")
	}
	return img.Folder + "/" + img.Name, nil
}

func (f *fakeImageStore) DeleteImages(ctx context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

func (f *fakeImageStore) DeleteFolder(ctx context.Context, folder string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedFolders = append(f.deletedFolders, folder)
	return nil
}

type fakeInvalidator struct {
	paths []string
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, paths ...string) error {
	f.paths = append(f.paths, paths...)
	return nil
}

type fakeNotifier struct {
	published []*domain.EventPublishedEmailData
	deleted   []*domain.EventDeletedEmailData
	err       error
}

func (f *fakeNotifier) EventPublished(ctx context.Context, d *domain.EventPublishedEmailData) error {
	f.published = append(f.published, d)
	return f.err
}

func (f *fakeNotifier) EventDeleted(ctx context.Context, d *domain.EventDeletedEmailData) error {
	f.deleted = append(f.deleted, d)
	return f.err
}

// fakeMailer records sent mail.
type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, fmt.Sprintf("%s|%s", to, subject))
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(name string, data any) (string, string, string, error) {
	if name == "broken" {
		return "", "", "", errors.New("no such template")
	}
	return "subject:" + name, "<p>" + name + "</p>", name, nil
}
