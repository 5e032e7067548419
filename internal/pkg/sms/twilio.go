package sms

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *api.CreateMessageParams) (*api.ApiV2010Message, error)
}

// Twilio sends messages with the Twilio REST API.
type Twilio struct {
	api    messageCreator
	from   string
	region string
}

// NewTwilio builds a Twilio sender.
func NewTwilio(cfg Config) (*Twilio, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, ErrTwilioCredentials
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &Twilio{api: client.Api, from: cfg.From, region: cfg.DefaultRegion}, nil
}

// Send implements SMS. The twilio client is synchronous; ctx is only checked
// before the call.
func (t *Twilio) Send(ctx context.Context, msg Message) error {
	to, err := Normalize(msg.To, t.region)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &api.CreateMessageParams{}
	params.SetBody(msg.Body)
	params.SetFrom(t.from)
	params.SetTo(to)

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio: %w", err)
	}
	if resp.ErrorMessage != nil {
		return fmt.Errorf("twilio: %s", *resp.ErrorMessage)
	}

	return nil
}

// Enabled implements SMS.
func (t *Twilio) Enabled() bool { return true }
