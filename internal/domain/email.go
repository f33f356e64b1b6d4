package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EventPublishedEmailData holds data for the event published notice.
type EventPublishedEmailData struct {
	Title      string
	Slug       string
	StartDate  string
	Location   string
	ImageCount int
	Skipped    []string
}

// EventDeletedEmailData holds data for the event deleted notice.
type EventDeletedEmailData struct {
	Slug          string
	DeletedImages int
}

// EventNotifier tells club officers about admin changes. Failures never fail the change itself.
type EventNotifier interface {
	EventPublished(ctx context.Context, data *EventPublishedEmailData) error
	EventDeleted(ctx context.Context, data *EventDeletedEmailData) error
}
