package mail

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNoRecipients is returned when To/Cc/Bcc are all empty.
	ErrNoRecipients = errors.New("mail: no recipients provided")
	// ErrNoSender is returned when neither Message.From nor the configured default is set.
	ErrNoSender = errors.New("mail: no sender provided")
	// ErrUnknownDriver is returned by New for an unsupported driver name.
	ErrUnknownDriver = errors.New("mail: unknown driver")
)

// Message represents an email payload.
type Message struct {
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
}

func (m Message) recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	return append(out, m.Bcc...)
}

func (m Message) sender(fallback string) (string, error) {
	if m.From != "" {
		return m.From, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", ErrNoSender
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures a driver.
type Config struct {
	Driver string
	From   string
	SMTP   SMTPConfig
	// SendGridAPIKey authenticates the sendgrid driver.
	SendGridAPIKey string
}

// New builds the Mail implementation named by cfg.Driver.
func New(cfg Config) (Mail, error) {
	switch cfg.Driver {
	case "", "smtp":
		smtpCfg := cfg.SMTP
		if smtpCfg.From == "" {
			smtpCfg.From = cfg.From
		}
		return NewSMTP(smtpCfg)
	case "sendgrid":
		return NewSendGrid(cfg.SendGridAPIKey, cfg.From)
	case "log":
		return NewLog(cfg.From), nil
	default:
		return nil, ErrUnknownDriver
	}
}
