//go:build e2e

package tests

import (
	"net/http"
	"testing"
)

func TestDispatch_RequiresAdmin(t *testing.T) {
	// Arrange
	userID, tok := newUser(t)
	payload := map[string]any{
		"type":         "SYSTEM",
		"recipient_id": userID,
		"title":        "Nope",
		"body":         "Users cannot dispatch",
	}

	// Act
	status, _ := doJSON(t, http.MethodPost, "/api/v1/notification/dispatch", payload, tok)

	// Assert
	if status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
}

func TestDispatch_IdempotencyKeySuppressesRepeat(t *testing.T) {
	// Arrange
	userID, _ := newUser(t)
	payload := map[string]any{
		"type":            "SYSTEM",
		"recipient_id":    userID,
		"title":           "Once",
		"body":            "Only one row",
		"skip_email":      true,
		"idempotency_key": "e2e-" + userID,
	}
	doJSON(t, http.MethodPost, "/api/v1/notification/dispatch", payload, adminToken(t))

	// Act
	status, body := doJSON(t, http.MethodPost, "/api/v1/notification/dispatch", payload, adminToken(t))

	// Assert
	if status != http.StatusCreated {
		t.Fatalf("status = %d message=%q", status, decodeError(t, body).Message)
	}
	var data dispatchData
	decodeSuccess(t, body, &data)
	if len(data.Created) != 0 || len(data.Duplicates) != 1 {
		t.Fatalf("dispatch = %+v, want one duplicate", data)
	}
}

func TestDispatch_RejectsUnknownType(t *testing.T) {
	// Arrange
	payload := map[string]any{
		"type":         "NOT_A_TYPE",
		"recipient_id": "someone",
		"title":        "Bad",
		"body":         "Bad type",
	}

	// Act
	status, body := doJSON(t, http.MethodPost, "/api/v1/notification/dispatch", payload, adminToken(t))

	// Assert
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", status)
	}
	if env := decodeError(t, body); env.Error["type"] == "" {
		t.Fatalf("error fields = %v", env.Error)
	}
}
