package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubevents/internal/domain"
)

type fakeSES struct {
	last *ses.SendEmailInput
	err  error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.last = in
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	fake := &fakeSES{}
	m := newSESMailer(fake, "noreply@club.example", "Birding Club")

	err := m.Send(context.Background(), "officers@club.example", "Hi", "<p>Hi</p>", "")
	require.NoError(t, err)
	require.NotNil(t, fake.last)
	assert.Equal(t, "Birding Club <noreply@club.example>", aws.ToString(fake.last.Source))
	assert.Equal(t, []string{"officers@club.example"}, fake.last.Destination.ToAddresses)
	assert.Equal(t, "<p>Hi</p>", aws.ToString(fake.last.Message.Body.Html.Data))
	assert.Nil(t, fake.last.Message.Body.Text)
}

func TestSESMailer_Send_error(t *testing.T) {
	m := newSESMailer(&fakeSES{err: errors.New("throttled")}, "a@b.c", "")
	err := m.Send(context.Background(), "x@y.z", "s", "", "t")
	require.Error(t, err)
}

func TestNewMailer(t *testing.T) {
	_, err := NewMailer(MailerConfig{Provider: "ses"})
	require.Error(t, err, "ses without from address")

	m, err := NewMailer(MailerConfig{Provider: "carrier-pigeon"})
	require.NoError(t, err)
	assert.NoError(t, m.Send(context.Background(), "a@b.c", "s", "h", "t"))
}

func TestTemplateRenderer_event_published(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	subject, html, text, err := r.Render("event_published", &domain.EventPublishedEmailData{
		Title:      "Spring <Walk>",
		Slug:       "spring-walk",
		StartDate:  "2025-04-12",
		Location:   "Observatory Hill",
		ImageCount: 2,
		Skipped:    []string{"image2: file too large"},
	})
	require.NoError(t, err)
	assert.Equal(t, "New event published: Spring <Walk>", subject)
	assert.Contains(t, html, "Spring &lt;Walk&gt;")
	assert.Contains(t, text, "/events/spring-walk")
	assert.Contains(t, text, "image2: file too large")
}

func TestTemplateRenderer_event_deleted(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	subject, _, text, err := r.Render("event_deleted", &domain.EventDeletedEmailData{Slug: "owl-prowl", DeletedImages: 3})
	require.NoError(t, err)
	assert.Equal(t, "Event deleted: owl-prowl", subject)
	assert.Contains(t, text, "3 image(s)")
}

func TestTemplateRenderer_unknown(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)
	_, _, _, err = r.Render("welcome", nil)
	require.Error(t, err)
}
