package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

func TestNew_Drivers(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "smtp", cfg: Config{Driver: "smtp", SMTP: SMTPConfig{Host: "localhost", Port: 1025}}},
		{name: "smtp missing host", cfg: Config{Driver: "smtp"}, wantErr: ErrSMTPHostPortRequired},
		{name: "sendgrid", cfg: Config{Driver: "sendgrid", SendGridAPIKey: "SG.key"}},
		{name: "sendgrid missing key", cfg: Config{Driver: "sendgrid"}, wantErr: ErrSendGridAPIKeyRequired},
		{name: "log", cfg: Config{Driver: "log"}},
		{name: "unknown", cfg: Config{Driver: "pigeon"}, wantErr: ErrUnknownDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			m, err := New(tt.cfg)

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && m == nil {
				t.Fatalf("expected a Mail implementation")
			}
		})
	}
}

func TestSMTP_Send(t *testing.T) {
	// Arrange
	s, err := NewSMTP(SMTPConfig{Host: "mail.test", Port: 25, From: "noreply@herald.test"})
	if err != nil {
		t.Fatalf("NewSMTP() error = %v", err)
	}

	var gotAddr, gotFrom string
	var gotTo []string
	var gotRaw []byte
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotRaw = addr, from, to, msg
		return nil
	}

	// Act
	err = s.Send(context.Background(), Message{
		To:       []string{"a@test"},
		Bcc:      []string{"b@test"},
		Subject:  "Novo pedido",
		TextBody: "plain",
		HTMLBody: "<p>html</p>",
	})

	// Assert
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotAddr != "mail.test:25" || gotFrom != "noreply@herald.test" {
		t.Fatalf("unexpected envelope addr=%s from=%s", gotAddr, gotFrom)
	}
	if len(gotTo) != 2 {
		t.Fatalf("expected bcc in envelope, got %v", gotTo)
	}
	raw := string(gotRaw)
	if strings.Contains(raw, "b@test") {
		t.Fatalf("bcc must not appear in headers")
	}
	if !strings.Contains(raw, "multipart/alternative") || !strings.Contains(raw, "<p>html</p>") {
		t.Fatalf("expected multipart body, got %q", raw)
	}
}

func TestSMTP_SendValidation(t *testing.T) {
	// Arrange
	s, err := NewSMTP(SMTPConfig{Host: "mail.test", Port: 25})
	if err != nil {
		t.Fatalf("NewSMTP() error = %v", err)
	}

	// Act
	errNoTo := s.Send(context.Background(), Message{From: "x@test"})
	errNoFrom := s.Send(context.Background(), Message{To: []string{"a@test"}})

	// Assert
	if !errors.Is(errNoTo, ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", errNoTo)
	}
	if !errors.Is(errNoFrom, ErrNoSender) {
		t.Fatalf("expected ErrNoSender, got %v", errNoFrom)
	}
}

func TestBuildSendGrid(t *testing.T) {
	// Act
	m := buildSendGrid("noreply@herald.test", Message{
		To:       []string{"a@test", "b@test"},
		Subject:  "hello",
		TextBody: "plain",
	})

	// Assert
	if m.From.Address != "noreply@herald.test" || m.Subject != "hello" {
		t.Fatalf("unexpected header fields %+v", m)
	}
	if len(m.Personalizations) != 1 || len(m.Personalizations[0].To) != 2 {
		t.Fatalf("unexpected personalizations %+v", m.Personalizations)
	}
	if len(m.Content) != 1 || m.Content[0].Type != "text/plain" {
		t.Fatalf("unexpected content %+v", m.Content)
	}
}
