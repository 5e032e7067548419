package validator

import (
	"errors"
	"testing"
)

type level string

func (l level) IsValid() bool { return l == "LOW" || l == "HIGH" }

type payload struct {
	Title     string `json:"title" validate:"required,max=10"`
	Level     level  `json:"level" validate:"omitempty,enum"`
	ActionURL string `json:"action_url" validate:"omitempty,action_url"`
	NoTag     string `validate:"required"`
}

func TestV10Validator_Validate(t *testing.T) {
	// Arrange
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	tests := []struct {
		name       string
		in         payload
		wantFields []string
	}{
		{name: "valid", in: payload{Title: "ok", Level: "LOW", ActionURL: "/brand/orders/1", NoTag: "x"}},
		{name: "absolute url", in: payload{Title: "ok", ActionURL: "https://app.test/x", NoTag: "x"}},
		{name: "missing title", in: payload{NoTag: "x"}, wantFields: []string{"title"}},
		{name: "bad enum", in: payload{Title: "ok", Level: "MID", NoTag: "x"}, wantFields: []string{"level"}},
		{name: "protocol relative url", in: payload{Title: "ok", ActionURL: "//evil.test", NoTag: "x"}, wantFields: []string{"action_url"}},
		{name: "untagged field", in: payload{Title: "ok"}, wantFields: []string{"no_tag"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := v.Validate(tt.in)

			// Assert
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verr V10ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected V10ValidationError, got %v", err)
			}
			for _, f := range tt.wantFields {
				if verr[f] == "" {
					t.Fatalf("expected error for %q, got %v", f, verr)
				}
			}
		})
	}
}
