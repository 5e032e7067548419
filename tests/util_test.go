//go:build e2e

package tests

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/herald/internal/pkg/clock"
	"github.com/shandysiswandi/herald/internal/pkg/jwt"
	"github.com/shandysiswandi/herald/internal/pkg/uid"
)

const companyID = "e2e-company"

// issuer signs tokens with the secret the server under test verifies with.
func issuer(t *testing.T) jwt.JWT {
	t.Helper()

	secret := strings.TrimSpace(os.Getenv("HERALD_JWT_SECRET"))
	if secret == "" {
		t.Skip("HERALD_JWT_SECRET is not set")
	}

	var audiences []string
	if v := strings.TrimSpace(os.Getenv("HERALD_JWT_AUDIENCES")); v != "" {
		audiences = strings.Split(v, ",")
	}

	j, err := jwt.NewHS512(jwt.Config{
		Secret:     []byte(secret),
		Issuer:     os.Getenv("HERALD_JWT_ISSUER"),
		Audiences:  audiences,
		TTLMinutes: 10 * time.Minute,
		Clock:      clock.New(time.UTC),
		UUID:       uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("new jwt: %v", err)
	}

	return j
}

func token(t *testing.T, id jwt.Identity) string {
	t.Helper()

	tok, err := issuer(t).Generate(id)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	return tok
}

func adminToken(t *testing.T) string {
	t.Helper()

	return token(t, jwt.Identity{UserID: "e2e-admin", UserName: "Admin", Role: jwt.RoleAdmin})
}

// newUser returns a fresh user id with its token so tests never share an inbox.
func newUser(t *testing.T) (string, string) {
	t.Helper()

	userID := fmt.Sprintf("e2e-user-%d", time.Now().UnixNano())
	return userID, token(t, jwt.Identity{UserID: userID, UserName: "E2E User", CompanyID: companyID})
}

type notificationData struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Title    string `json:"title"`
	Read     bool   `json:"read"`
}

type dispatchData struct {
	Created    []notificationData `json:"created"`
	Duplicates []string           `json:"duplicates"`
}

func dispatchTo(t *testing.T, recipientID, title string) notificationData {
	t.Helper()

	payload := map[string]any{
		"type":         "SYSTEM",
		"priority":     "NORMAL",
		"recipient_id": recipientID,
		"company_id":   companyID,
		"title":        title,
		"body":         "End to end check",
		"skip_email":   true,
	}

	status, body := doJSON(t, "POST", "/api/v1/notification/dispatch", payload, adminToken(t))
	if status != 201 {
		t.Fatalf("dispatch failed: status=%d message=%q", status, decodeError(t, body).Message)
	}

	var data dispatchData
	decodeSuccess(t, body, &data)
	if len(data.Created) != 1 {
		t.Fatalf("dispatch created = %+v", data.Created)
	}

	return data.Created[0]
}
