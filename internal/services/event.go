package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"clubevents/internal/domain"
	"clubevents/internal/metrics"
)

// maxSlugAttempts bounds allocate-and-insert rounds when the slug index reports a conflict.
const maxSlugAttempts = 3

// EventLimits are the publish limits taken from configuration.
type EventLimits struct {
	MaxImageCount int
	MaxImageBytes int64
}

type eventService struct {
	eventRepo      domain.EventRepository
	images         domain.ImageStore
	sessions       domain.SessionVerifier
	invalidator    domain.PageInvalidator
	notifier       domain.EventNotifier
	metrics        *metrics.Metrics
	logger         *slog.Logger
	validate       *validator.Validate
	limits         EventLimits
	contextTimeout time.Duration
}

// NewEventService wires the publish, read, edit and delete workflows. notifier may be nil.
func NewEventService(eventRepo domain.EventRepository,
	images domain.ImageStore,
	sessions domain.SessionVerifier,
	invalidator domain.PageInvalidator,
	notifier domain.EventNotifier,
	m *metrics.Metrics,
	logger *slog.Logger,
	limits EventLimits,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		images:         images,
		sessions:       sessions,
		invalidator:    invalidator,
		notifier:       notifier,
		metrics:        m,
		logger:         logger,
		validate:       newValidator(),
		limits:         limits,
		contextTimeout: timeout,
	}
}

func (s *eventService) Publish(ctx context.Context, sessionToken string, in domain.PublishInput) (*domain.PublishResult, error) {
	if _, err := verifySession(s.sessions, sessionToken); err != nil {
		return nil, err
	}

	fields := trimFields(in.Fields)
	if err := s.validateFields(fields); err != nil {
		return nil, err
	}
	base := NormalizeSlug(fields.Slug)
	if base == "" {
		return nil, domain.NewValidationError("slug must contain letters or digits")
	}

	accepted, skipped := s.acceptImages(in)

	event, err := s.reserve(ctx, fields, base, len(accepted) > 0)
	if err != nil {
		return nil, err
	}

	imageIDs, failed := s.uploadImages(ctx, event.Slug, accepted)
	skipped = append(skipped, failed...)
	if len(accepted) > 0 {
		visible := false
		patch := domain.EventPatch{ImagePublicIDs: &imageIDs, Hidden: &visible}
		if err := s.attachImages(ctx, event.Slug, patch); err != nil {
			s.logger.ErrorContext(ctx, "attaching images failed", "slug", event.Slug, "uploaded", len(imageIDs), "err", err)
			return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
		}
	}

	s.invalidate(ctx, domain.EventsListPath, domain.EventPath(event.Slug))
	s.metrics.EventPublished(len(imageIDs))
	s.logger.InfoContext(ctx, "event published", "slug", event.Slug, "images", len(imageIDs), "skipped", len(skipped))

	if s.notifier != nil {
		err := s.notifier.EventPublished(ctx, &domain.EventPublishedEmailData{
			Title:      event.Title,
			Slug:       event.Slug,
			StartDate:  event.StartDate,
			Location:   event.Location,
			ImageCount: len(imageIDs),
			Skipped:    skipped,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "publish notification failed", "slug", event.Slug, "err", err)
		}
	}

	return &domain.PublishResult{Slug: event.Slug, ImageCount: len(imageIDs), Skipped: skipped}, nil
}

// reserve allocates a slug and inserts the event row under it, retrying with a fresh
// slug when the unique index reports a conflict. Events that still wait for their images
// are inserted hidden.
func (s *eventService) reserve(ctx context.Context, fields domain.EventFields, base string, pendingImages bool) (*domain.Event, error) {
	for attempt := 1; ; attempt++ {
		slug, err := s.allocateSlug(ctx, base)
		if err != nil {
			return nil, err
		}
		event := newEvent(fields, slug)
		event.Hidden = pendingImages
		err = s.create(ctx, event)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, domain.ErrDuplicateSlug) {
			s.logger.ErrorContext(ctx, "publish insert failed", "slug", slug, "err", err)
			return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
		}
		if attempt == maxSlugAttempts {
			return nil, fmt.Errorf("%w: slug %q still taken after %d attempts", domain.ErrUpstream, slug, attempt)
		}
		s.metrics.SlugRetry()
		s.logger.WarnContext(ctx, "slug taken during publish, retrying", "slug", slug, "attempt", attempt)
	}
}

func (s *eventService) create(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.Create(ctx, event)
}

// attachImages stores the uploaded image list and makes the event visible. On failure the
// reserved row is removed so the slug is not left pointing at a half-published event.
// Uploaded images are not removed.
func (s *eventService) attachImages(ctx context.Context, slug string, patch domain.EventPatch) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	if _, err := s.eventRepo.Update(ctx, slug, patch); err != nil {
		if delErr := s.eventRepo.Delete(ctx, slug); delErr != nil {
			s.logger.WarnContext(ctx, "removing reserved event failed", "slug", slug, "err", delErr)
		}
		return fmt.Errorf("attach images: %w", err)
	}
	return nil
}

func (s *eventService) allocateSlug(ctx context.Context, base string) (string, error) {
	suggestion, err := s.suggest(ctx, base)
	if err != nil {
		return "", err
	}
	return suggestion.UniqueSlug, nil
}

func (s *eventService) suggest(ctx context.Context, base string) (*domain.SlugSuggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, err := s.eventRepo.ListSlugsWithPrefix(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("%w: list slugs: %w", domain.ErrUpstream, err)
	}
	suggestion := suggestSlug(base, existing)
	return &suggestion, nil
}

// acceptImages clamps the declared image count to the configured maximum and drops
// empty or oversized files. A missing or non-positive count accepts no images.
// The returned images are in position order.
func (s *eventService) acceptImages(in domain.PublishInput) ([]domain.ImageFile, []string) {
	limit := min(max(in.DeclaredImageCount, 0), s.limits.MaxImageCount)

	files := slices.Clone(in.Images)
	slices.SortStableFunc(files, func(a, b domain.ImageFile) int { return a.Position - b.Position })

	var accepted []domain.ImageFile
	var skipped []string
	for _, f := range files {
		name := fmt.Sprintf("image%d", f.Position)
		switch {
		case f.Position < 1 || f.Position > limit:
			s.metrics.ImageSkipped(metrics.SkipOverLimit)
			s.logger.Warn("image ignored, over the image limit", "image", name, "limit", limit)
			skipped = append(skipped, name+": too many images")
		case len(f.Data) == 0:
			s.metrics.ImageSkipped(metrics.SkipEmpty)
			s.logger.Warn("image skipped, empty file", "image", name)
			skipped = append(skipped, name+": empty file")
		case int64(len(f.Data)) > s.limits.MaxImageBytes:
			s.metrics.ImageSkipped(metrics.SkipTooLarge)
			s.logger.Warn("image skipped, file too large", "image", name, "bytes", len(f.Data), "max_bytes", s.limits.MaxImageBytes)
			skipped = append(skipped, name+": file too large")
		default:
			accepted = append(accepted, f)
		}
	}
	return accepted, skipped
}

// uploadImages stores each image under "<slug>-img<position>". A failed upload is logged
// and left out; the others still run.
func (s *eventService) uploadImages(ctx context.Context, slug string, files []domain.ImageFile) ([]string, []string) {
	ids := make([]string, 0, len(files))
	var failed []string
	for _, f := range files {
		upload := domain.ImageUpload{
			Name:        fmt.Sprintf("%s-img%d", slug, f.Position),
			Folder:      domain.ImageFolder(slug),
			ContentType: f.ContentType,
			Data:        f.Data,
		}
		id, err := s.uploadOne(ctx, upload)
		if err != nil {
			s.metrics.ImageSkipped(metrics.SkipUploadFailed)
			s.logger.WarnContext(ctx, "image upload failed", "slug", slug, "position", f.Position, "err", err)
			failed = append(failed, fmt.Sprintf("image%d: upload failed", f.Position))
			continue
		}
		ids = append(ids, id)
	}
	return ids, failed
}

func (s *eventService) uploadOne(ctx context.Context, img domain.ImageUpload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.images.Upload(ctx, img)
}

func (s *eventService) deleteImages(ctx context.Context, slug string, ids []string) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	if err := s.images.DeleteImages(ctx, ids); err != nil {
		s.logger.WarnContext(ctx, "image delete failed", "slug", slug, "count", len(ids), "err", err)
	}
	if err := s.images.DeleteFolder(ctx, domain.ImageFolder(slug)); err != nil {
		s.logger.WarnContext(ctx, "image folder delete failed", "slug", slug, "err", err)
	}
}

func (s *eventService) invalidate(ctx context.Context, paths ...string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, paths...); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed", "paths", paths, "err", err)
	}
}

// List returns non-hidden events, or every event when includeHidden is set and the
// session is valid. A bad session falls back to the public list.
func (s *eventService) List(ctx context.Context, sessionToken string, includeHidden bool) ([]*domain.Event, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	privileged := false
	if includeHidden {
		_, err := verifySession(s.sessions, sessionToken)
		privileged = err == nil
	}
	events, err := s.eventRepo.List(ctx, privileged)
	if err != nil {
		return nil, false, fmt.Errorf("%w: list events: %w", domain.ErrUpstream, err)
	}
	return events, privileged, nil
}

// Get returns one event. Hidden events are only visible with a valid session.
func (s *eventService) Get(ctx context.Context, sessionToken, slug string) (*domain.Event, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	_, err := verifySession(s.sessions, sessionToken)
	privileged := err == nil

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("%w: get event: %w", domain.ErrUpstream, err)
	}
	if event.Hidden && !privileged {
		return nil, false, domain.ErrNotFound
	}
	return event, privileged, nil
}

func (s *eventService) CheckSlug(ctx context.Context, base string) (*domain.SlugSuggestion, error) {
	normalized := NormalizeSlug(base)
	if normalized == "" {
		return nil, domain.NewValidationError("missing base slug")
	}
	return s.suggest(ctx, normalized)
}

func (s *eventService) Update(ctx context.Context, sessionToken, slug string, patch domain.EventPatch) (*domain.Event, error) {
	if _, err := verifySession(s.sessions, sessionToken); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, domain.ErrNoFields
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get event: %w", domain.ErrUpstream, err)
	}
	if err := s.validatePatch(current, patch); err != nil {
		return nil, err
	}

	updated, err := s.eventRepo.Update(ctx, current.Slug, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: update event: %w", domain.ErrUpstream, err)
	}

	s.invalidate(ctx, domain.EventsListPath, domain.EventPath(updated.Slug))
	s.logger.InfoContext(ctx, "event updated", "slug", updated.Slug)
	return updated, nil
}

// Delete removes the event row, then makes a best-effort attempt to delete its images.
// It returns the number of images scheduled for deletion.
func (s *eventService) Delete(ctx context.Context, sessionToken, slug string) (int, error) {
	if _, err := verifySession(s.sessions, sessionToken); err != nil {
		return 0, err
	}

	event, err := s.getForDelete(ctx, slug)
	if err != nil {
		return 0, err
	}

	if len(event.ImagePublicIDs) > 0 {
		s.deleteImages(ctx, event.Slug, event.ImagePublicIDs)
	}

	s.invalidate(ctx, domain.EventsListPath, domain.EventPath(event.Slug))
	s.metrics.EventDeleted()
	s.logger.InfoContext(ctx, "event deleted", "slug", event.Slug, "images", len(event.ImagePublicIDs))

	if s.notifier != nil {
		err := s.notifier.EventDeleted(ctx, &domain.EventDeletedEmailData{Slug: event.Slug, DeletedImages: len(event.ImagePublicIDs)})
		if err != nil {
			s.logger.WarnContext(ctx, "delete notification failed", "slug", event.Slug, "err", err)
		}
	}
	return len(event.ImagePublicIDs), nil
}

// getForDelete loads the event for its image list and deletes its row.
func (s *eventService) getForDelete(ctx context.Context, slug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get event: %w", domain.ErrUpstream, err)
	}
	if err := s.eventRepo.Delete(ctx, event.Slug); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: delete event: %w", domain.ErrUpstream, err)
	}
	return event, nil
}

func trimFields(f domain.EventFields) domain.EventFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Slug = strings.TrimSpace(f.Slug)
	f.StartDate = strings.TrimSpace(f.StartDate)
	f.EndDate = strings.TrimSpace(f.EndDate)
	f.StartTime = strings.TrimSpace(f.StartTime)
	f.EndTime = strings.TrimSpace(f.EndTime)
	f.Location = strings.TrimSpace(f.Location)
	f.SignupTitle = strings.TrimSpace(f.SignupTitle)
	f.SignupURL = strings.TrimSpace(f.SignupURL)
	f.SignupEmbedURL = strings.TrimSpace(f.SignupEmbedURL)
	return f
}

// optional maps blank strings to nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func newEvent(f domain.EventFields, slug string) *domain.Event {
	return &domain.Event{
		Slug:           slug,
		Title:          f.Title,
		StartDate:      f.StartDate,
		EndDate:        optional(f.EndDate),
		StartTime:      optional(f.StartTime),
		EndTime:        optional(f.EndTime),
		Location:       f.Location,
		BodyMarkdown:   f.BodyMarkdown,
		SignupTitle:    optional(f.SignupTitle),
		SignupURL:      optional(f.SignupURL),
		SignupEmbedURL: optional(f.SignupEmbedURL),
		HasGoogleForm:  f.HasGoogleForm,
		ImagePublicIDs: []string{},
	}
}

func (s *eventService) validateFields(f domain.EventFields) error {
	var msgs []string
	if err := s.validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate event: %w", err)
		}
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
	}
	if len(msgs) == 0 && f.EndDate != "" && f.EndDate < f.StartDate {
		msgs = append(msgs, "endDate must not be before startDate")
	}
	if len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}
	return nil
}

func (s *eventService) validatePatch(current *domain.Event, p domain.EventPatch) error {
	var msgs []string
	check := func(name string, value *string, tag string) {
		if value == nil {
			return
		}
		if err := s.validate.Var(strings.TrimSpace(*value), tag); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				msgs = append(msgs, tagMessage(name, verrs[0].Tag(), verrs[0].Param()))
			}
		}
	}
	check("title", p.Title, "required,max=200")
	check("startDate", p.StartDate, "required,datetime=2006-01-02")
	check("endDate", p.EndDate, "omitempty,datetime=2006-01-02")
	check("startTime", p.StartTime, "omitempty,max=20")
	check("endTime", p.EndTime, "omitempty,max=20")
	check("location", p.Location, "required,max=200")
	check("signupTitle", p.SignupTitle, "omitempty,max=200")
	check("signupUrl", p.SignupURL, "omitempty,url")
	check("signupEmbedUrl", p.SignupEmbedURL, "omitempty,url")
	if p.ImagePublicIDs != nil && len(*p.ImagePublicIDs) > s.limits.MaxImageCount {
		msgs = append(msgs, fmt.Sprintf("too many images (max %d)", s.limits.MaxImageCount))
	}
	if len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}

	start := current.StartDate
	if p.StartDate != nil {
		start = strings.TrimSpace(*p.StartDate)
	}
	end := ""
	if current.EndDate != nil {
		end = *current.EndDate
	}
	if p.EndDate != nil {
		end = strings.TrimSpace(*p.EndDate)
	}
	if end != "" && end < start {
		return domain.NewValidationError("endDate must not be before startDate")
	}
	return nil
}

// newValidator reports fields by their form name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("form"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

func fieldMessage(fe validator.FieldError) string {
	return tagMessage(fe.Field(), fe.Tag(), fe.Param())
}

func tagMessage(name, tag, param string) string {
	switch tag {
	case "required":
		return name + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, param)
	case "datetime":
		return name + " must be a date in YYYY-MM-DD format"
	case "url":
		return name + " must be a valid URL"
	default:
		return name + " is invalid"
	}
}
