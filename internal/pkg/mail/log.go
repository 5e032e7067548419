package mail

import (
	"context"
	"log/slog"
)

// Log records messages instead of sending them.
type Log struct {
	defaultFrom string
}

// NewLog returns a Log driver.
func NewLog(from string) *Log {
	return &Log{defaultFrom: from}
}

// Send implements Mail.
func (l *Log) Send(ctx context.Context, msg Message) error {
	if len(msg.recipients()) == 0 {
		return ErrNoRecipients
	}

	from, err := msg.sender(l.defaultFrom)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "mail not sent, log driver active", "from", from, "to", msg.To, "subject", msg.Subject)
	return nil
}

// Close implements io.Closer.
func (l *Log) Close() error {
	return nil
}
