package sms

import (
	"context"
	"errors"
	"testing"

	api "github.com/twilio/twilio-go/rest/api/v2010"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		region  string
		want    string
		wantErr bool
	}{
		{name: "e164 passthrough", number: "+5511987654321", region: "", want: "+5511987654321"},
		{name: "national with region", number: "(11) 98765-4321", region: "BR", want: "+5511987654321"},
		{name: "empty", number: "", region: "BR", wantErr: true},
		{name: "garbage", number: "12", region: "BR", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, err := Normalize(tt.number, tt.region)

			// Assert
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidNumber) {
					t.Fatalf("expected ErrInvalidNumber, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

type fakeCreator struct {
	params *api.CreateMessageParams
}

func (f *fakeCreator) CreateMessage(p *api.CreateMessageParams) (*api.ApiV2010Message, error) {
	f.params = p
	return &api.ApiV2010Message{}, nil
}

func TestTwilio_Send(t *testing.T) {
	// Arrange
	fc := &fakeCreator{}
	tw := &Twilio{api: fc, from: "+15550000000", region: "BR"}

	// Act
	err := tw.Send(context.Background(), Message{To: "11 98765-4321", Body: "Pagamento vencido"})

	// Assert
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if fc.params == nil || *fc.params.To != "+5511987654321" || *fc.params.From != "+15550000000" {
		t.Fatalf("unexpected params %+v", fc.params)
	}
}

func TestNew(t *testing.T) {
	// Act
	noop, errNoop := New(Config{})
	_, errTwilio := New(Config{Driver: "twilio"})
	_, errUnknown := New(Config{Driver: "carrier-pigeon"})

	// Assert
	if errNoop != nil || noop.Enabled() {
		t.Fatalf("expected disabled noop driver, got %v %v", noop, errNoop)
	}
	if !errors.Is(errTwilio, ErrTwilioCredentials) {
		t.Fatalf("expected ErrTwilioCredentials, got %v", errTwilio)
	}
	if !errors.Is(errUnknown, ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", errUnknown)
	}
}
