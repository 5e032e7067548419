//go:build e2e

// Package tests drives a running Herald instance over HTTP and WebSocket.
// Start the server with LOCAL=true, then run: go test -tags e2e ./tests/...
package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

var (
	realBaseURL string
	httpClient  = &http.Client{Timeout: 5 * time.Second}
)

func baseURL() string {
	return realBaseURL
}

type successEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

type errorEnvelope struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error"`
}

func TestMain(m *testing.M) {
	realBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("HERALD_REAL_BASE_URL")), "/")
	if realBaseURL == "" {
		realBaseURL = "http://localhost:8080"
	}

	if err := waitHealthy(realBaseURL + "/health"); err != nil {
		fmt.Fprintf(os.Stderr, "e2e tests require a healthy server (LOCAL=true go run .): %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func waitHealthy(url string) error {
	var last error
	for range 10 {
		resp, err := httpClient.Get(url)
		if err == nil {
			//nolint:errcheck // drain only
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			err = fmt.Errorf("%s returned %s", url, resp.Status)
		}
		last = err
		time.Sleep(500 * time.Millisecond)
	}
	return last
}

func doJSON(t *testing.T, method, path string, payload any, token string) (int, []byte) {
	t.Helper()

	var body io.Reader = http.NoBody
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			t.Fatalf("encode json: %v", err)
		}
		body = buf
	}

	req, err := http.NewRequest(method, baseURL()+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Correlation-ID", "e2e-"+t.Name())

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	return resp.StatusCode, respBody
}

func decodeSuccess(t *testing.T, body []byte, out any) successEnvelope {
	t.Helper()

	var env successEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode success envelope: %v", err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode success data: %v", err)
		}
	}

	return env
}

func decodeError(t *testing.T, body []byte) errorEnvelope {
	t.Helper()

	var env errorEnvelope
	//nolint:errcheck // an empty envelope is a fine answer for a non-JSON body
	json.Unmarshal(body, &env)

	return env
}
