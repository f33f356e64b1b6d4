package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"clubevents/internal/domain"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const eventColumns = `slug, title, to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
		start_time, end_time, location, body_markdown, signup_title, signup_url, signup_embed_url,
		has_google_form, image_public_ids, hidden, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanEvent(row scannable) (*domain.Event, error) {
	e := &domain.Event{}
	var endDate, startTime, endTime, signupTitle, signupURL, signupEmbedURL sql.NullString
	var images pq.StringArray
	err := row.Scan(
		&e.Slug, &e.Title, &e.StartDate, &endDate,
		&startTime, &endTime, &e.Location, &e.BodyMarkdown, &signupTitle, &signupURL, &signupEmbedURL,
		&e.HasGoogleForm, &images, &e.Hidden, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.EndDate = stringPtr(endDate)
	e.StartTime = stringPtr(startTime)
	e.EndTime = stringPtr(endTime)
	e.SignupTitle = stringPtr(signupTitle)
	e.SignupURL = stringPtr(signupURL)
	e.SignupEmbedURL = stringPtr(signupEmbedURL)
	e.ImagePublicIDs = []string(images)
	if e.ImagePublicIDs == nil {
		e.ImagePublicIDs = []string{}
	}
	return e, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// nullable maps nil and blank strings to SQL NULL.
func nullable(s *string) any {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return strings.TrimSpace(*s)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (slug, title, start_date, end_date, start_time, end_time, location,
			body_markdown, signup_title, signup_url, signup_embed_url, has_google_form, image_public_ids, hidden)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`
	images := e.ImagePublicIDs
	if images == nil {
		images = []string{}
	}
	err := r.DB.QueryRowContext(ctx, query,
		e.Slug, e.Title, e.StartDate, nullable(e.EndDate), nullable(e.StartTime), nullable(e.EndTime), e.Location,
		e.BodyMarkdown, nullable(e.SignupTitle), nullable(e.SignupURL), nullable(e.SignupEmbedURL), e.HasGoogleForm, pq.Array(images), e.Hidden,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSlug
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE lower(trim(slug)) = lower(trim($1))
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, includeHidden bool) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE $1 OR NOT hidden
		ORDER BY start_date DESC, created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, includeHidden)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *eventRepository) ListSlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	query := `
		SELECT slug
		FROM events
		WHERE lower(trim(slug)) = $1 OR lower(trim(slug)) LIKE $2 ESCAPE '\'
	`
	base = strings.ToLower(strings.TrimSpace(base))
	rows, err := r.DB.QueryContext(ctx, query, base, likeEscaper.Replace(base)+"-%")
	if err != nil {
		return nil, fmt.Errorf("list slugs: %w", err)
	}
	defer rows.Close()
	slugs := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan slug: %w", err)
		}
		slugs = append(slugs, s)
	}
	return slugs, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, slug string, patch domain.EventPatch) (*domain.Event, error) {
	if patch.IsEmpty() {
		return nil, domain.ErrNoFields
	}
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if patch.Title != nil {
		set("title", strings.TrimSpace(*patch.Title))
	}
	if patch.StartDate != nil {
		set("start_date", strings.TrimSpace(*patch.StartDate))
	}
	if patch.EndDate != nil {
		set("end_date", nullable(patch.EndDate))
	}
	if patch.StartTime != nil {
		set("start_time", nullable(patch.StartTime))
	}
	if patch.EndTime != nil {
		set("end_time", nullable(patch.EndTime))
	}
	if patch.Location != nil {
		set("location", strings.TrimSpace(*patch.Location))
	}
	if patch.BodyMarkdown != nil {
		set("body_markdown", *patch.BodyMarkdown)
	}
	if patch.SignupTitle != nil {
		set("signup_title", nullable(patch.SignupTitle))
	}
	if patch.SignupURL != nil {
		set("signup_url", nullable(patch.SignupURL))
	}
	if patch.SignupEmbedURL != nil {
		set("signup_embed_url", nullable(patch.SignupEmbedURL))
	}
	if patch.HasGoogleForm != nil {
		set("has_google_form", *patch.HasGoogleForm)
	}
	if patch.Hidden != nil {
		set("hidden", *patch.Hidden)
	}
	if patch.ImagePublicIDs != nil {
		ids := *patch.ImagePublicIDs
		if ids == nil {
			ids = []string{}
		}
		set("image_public_ids", pq.Array(ids))
	}
	args = append(args, slug)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE lower(trim(slug)) = lower(trim($%d))
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, slug string) error {
	query := `DELETE FROM events WHERE lower(trim(slug)) = lower(trim($1))`
	result, err := r.DB.ExecContext(ctx, query, slug)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
