package domain

import (
	"context"
	"time"
)

// Event represents a published club event
// swagger:model Event
type Event struct {
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	StartDate      string    `json:"startDate"`
	EndDate        *string   `json:"endDate"`
	StartTime      *string   `json:"startTime"`
	EndTime        *string   `json:"endTime"`
	Location       string    `json:"location"`
	BodyMarkdown   string    `json:"bodyMarkdown"`
	SignupTitle    *string   `json:"signupTitle"`
	SignupURL      *string   `json:"signupUrl"`
	SignupEmbedURL *string   `json:"signupEmbedUrl"`
	HasGoogleForm  bool      `json:"hasGoogleForm"`
	ImagePublicIDs []string  `json:"imagePublicIds"`
	Hidden         bool      `json:"hidden"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// HeaderImage returns the first image public ID, which is shown as the event header.
func (e *Event) HeaderImage() (string, bool) {
	if len(e.ImagePublicIDs) == 0 {
		return "", false
	}
	return e.ImagePublicIDs[0], true
}

// EventPatch is a partial update of an event. Nil fields are left unchanged.
// Blank optional strings clear the stored value.
type EventPatch struct {
	Title          *string   `json:"title"`
	StartDate      *string   `json:"startDate"`
	EndDate        *string   `json:"endDate"`
	StartTime      *string   `json:"startTime"`
	EndTime        *string   `json:"endTime"`
	Location       *string   `json:"location"`
	BodyMarkdown   *string   `json:"bodyMarkdown"`
	SignupTitle    *string   `json:"signupTitle"`
	SignupURL      *string   `json:"signupUrl"`
	SignupEmbedURL *string   `json:"signupEmbedUrl"`
	HasGoogleForm  *bool     `json:"hasGoogleForm"`
	Hidden         *bool     `json:"hidden"`
	ImagePublicIDs *[]string `json:"imagePublicIds"`
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.StartDate == nil && p.EndDate == nil && p.StartTime == nil &&
		p.EndTime == nil && p.Location == nil && p.BodyMarkdown == nil && p.SignupTitle == nil &&
		p.SignupURL == nil && p.SignupEmbedURL == nil && p.HasGoogleForm == nil && p.Hidden == nil && p.ImagePublicIDs == nil
}

// EventFields are the admin-submitted fields of a new event.
type EventFields struct {
	Title          string `form:"title" validate:"required,max=200"`
	Slug           string `form:"slug" validate:"required,max=120"`
	StartDate      string `form:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string `form:"endDate" validate:"omitempty,datetime=2006-01-02"`
	StartTime      string `form:"startTime" validate:"omitempty,max=20"`
	EndTime        string `form:"endTime" validate:"omitempty,max=20"`
	Location       string `form:"location" validate:"required,max=200"`
	BodyMarkdown   string `form:"bodyMarkdown"`
	SignupTitle    string `form:"signupTitle" validate:"omitempty,max=200"`
	SignupURL      string `form:"signupUrl" validate:"omitempty,url"`
	SignupEmbedURL string `form:"signupEmbedUrl" validate:"omitempty,url"`
	HasGoogleForm  bool   `form:"hasGoogleForm"`
}

// ImageFile is one uploaded image part of a publish request, in caller order.
type ImageFile struct {
	Position    int // 1-based position as declared by the client
	Filename    string
	ContentType string
	Data        []byte
}

// PublishInput is everything the Event Publisher needs besides the session.
type PublishInput struct {
	Fields             EventFields
	Images             []ImageFile
	DeclaredImageCount int
}

// PublishResult is returned to the caller after a successful publish.
type PublishResult struct {
	Slug       string   `json:"slug"`
	ImageCount int      `json:"imageCount"`
	Skipped    []string `json:"skipped,omitempty"`
}

// SlugSuggestion is the result of a slug availability check.
type SlugSuggestion struct {
	Base       string `json:"base"`
	UniqueSlug string `json:"uniqueSlug"`
	IsTaken    bool   `json:"isTaken"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	List(ctx context.Context, includeHidden bool) ([]*Event, error)
	// ListSlugsWithPrefix returns slugs equal to base or starting with "base-".
	ListSlugsWithPrefix(ctx context.Context, base string) ([]string, error)
	Update(ctx context.Context, slug string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, slug string) error
}

// EventService defines the publishing and reading workflows for events.
type EventService interface {
	Publish(ctx context.Context, sessionToken string, in PublishInput) (*PublishResult, error)
	List(ctx context.Context, sessionToken string, includeHidden bool) (events []*Event, privileged bool, err error)
	Get(ctx context.Context, sessionToken, slug string) (event *Event, privileged bool, err error)
	CheckSlug(ctx context.Context, base string) (*SlugSuggestion, error)
	Update(ctx context.Context, sessionToken, slug string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, sessionToken, slug string) (deletedImages int, err error)
}
