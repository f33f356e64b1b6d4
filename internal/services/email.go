package services

import (
	"context"
	"fmt"
	"log"

	"clubevents/internal/domain"
)

type emailNotifier struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	to       string
}

// NewEventNotifier returns an EventNotifier that mails officers at the given address.
// An empty address disables notifications and returns nil.
func NewEventNotifier(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, to string) domain.EventNotifier {
	if to == "" {
		return nil
	}
	return &emailNotifier{mailer: mailer, renderer: renderer, to: to}
}

// EventPublished sends the "event_published" email.
func (s *emailNotifier) EventPublished(ctx context.Context, data *domain.EventPublishedEmailData) error {
	if data == nil {
		return fmt.Errorf("event published data is nil")
	}
	if err := s.send(ctx, "event_published", data); err != nil {
		return err
	}
	log.Printf("[EMAIL] Publish notice for %s sent to %s", data.Slug, s.to)
	return nil
}

// EventDeleted sends the "event_deleted" email.
func (s *emailNotifier) EventDeleted(ctx context.Context, data *domain.EventDeletedEmailData) error {
	if data == nil {
		return fmt.Errorf("event deleted data is nil")
	}
	if err := s.send(ctx, "event_deleted", data); err != nil {
		return err
	}
	log.Printf("[EMAIL] Delete notice for %s sent to %s", data.Slug, s.to)
	return nil
}

func (s *emailNotifier) send(ctx context.Context, template string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, s.to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	return nil
}
