package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrSendGridAPIKeyRequired is returned when the sendgrid driver has no key.
var ErrSendGridAPIKeyRequired = errors.New("sendgrid api key is required")

// SendGrid delivers mail through the SendGrid v3 HTTP API.
type SendGrid struct {
	client      *sendgrid.Client
	defaultFrom string
}

// NewSendGrid builds a SendGrid sender.
func NewSendGrid(apiKey, from string) (*SendGrid, error) {
	if apiKey == "" {
		return nil, ErrSendGridAPIKeyRequired
	}

	return &SendGrid{client: sendgrid.NewSendClient(apiKey), defaultFrom: from}, nil
}

// Send implements Mail.
func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if len(msg.recipients()) == 0 {
		return ErrNoRecipients
	}

	from, err := msg.sender(s.defaultFrom)
	if err != nil {
		return err
	}

	resp, err := s.client.SendWithContext(ctx, buildSendGrid(from, msg))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}

	return nil
}

// Close implements io.Closer.
func (s *SendGrid) Close() error {
	return nil
}

func buildSendGrid(from string, msg Message) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail("", from))
	m.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail("", to))
	}
	for _, cc := range msg.Cc {
		p.AddCCs(sgmail.NewEmail("", cc))
	}
	for _, bcc := range msg.Bcc {
		p.AddBCCs(sgmail.NewEmail("", bcc))
	}
	m.AddPersonalizations(p)

	if msg.TextBody != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextBody))
	}
	if msg.HTMLBody != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLBody))
	}

	return m
}
