// Package sms sends short text messages for urgent notifications.
package sms

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nyaruka/phonenumbers"
)

var (
	// ErrInvalidNumber is returned when a number cannot be normalised to E.164.
	ErrInvalidNumber = errors.New("sms: invalid phone number")
	// ErrUnknownDriver is returned by New for an unsupported driver name.
	ErrUnknownDriver = errors.New("sms: unknown driver")
	// ErrTwilioCredentials is returned when the twilio driver lacks credentials.
	ErrTwilioCredentials = errors.New("sms: twilio account sid, auth token and from number are required")
)

// Message is a single SMS.
type Message struct {
	To   string
	Body string
}

// SMS sends a message. Implementations normalise Message.To before sending.
type SMS interface {
	Send(ctx context.Context, msg Message) error
	Enabled() bool
}

// Config selects and configures a driver.
type Config struct {
	Driver        string
	DefaultRegion string
	AccountSID    string
	AuthToken     string
	From          string
}

// New builds the SMS implementation named by cfg.Driver.
func New(cfg Config) (SMS, error) {
	switch cfg.Driver {
	case "", "noop":
		return Noop{}, nil
	case "twilio":
		return NewTwilio(cfg)
	default:
		return nil, ErrUnknownDriver
	}
}

// Normalize parses number in the context of region ("BR", "US"...) and returns
// its E.164 form. Numbers starting with "+" ignore the region.
func Normalize(number, region string) (string, error) {
	if number == "" {
		return "", ErrInvalidNumber
	}

	parsed, err := phonenumbers.Parse(number, region)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return "", ErrInvalidNumber
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// Noop drops every message.
type Noop struct{}

// Send implements SMS.
func (Noop) Send(ctx context.Context, msg Message) error {
	slog.DebugContext(ctx, "sms disabled, message dropped", "to", msg.To)
	return nil
}

// Enabled implements SMS.
func (Noop) Enabled() bool { return false }
