// Package config exposes typed access to the service configuration file.
package config

import (
	"io"
	"time"
)

// Config retrieves configuration values. Missing keys yield the zero value
// unless a default was registered.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat64(key string) float64

	// GetSecond, GetMinute and GetDay read an integer and scale it to a duration.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetDay(key string) time.Duration

	// GetBinary decodes a base64 value.
	GetBinary(key string) []byte

	// GetArray accepts either a YAML list or a comma separated string.
	GetArray(key string) []string

	// GetMap parses "k1:v1,k2:v2".
	GetMap(key string) map[string]string
}

// Defaults are applied beneath the file and the environment.
var Defaults = map[string]any{
	"app.name":                       "herald",
	"app.env":                        "development",
	"app.tz":                         "UTC",
	"app.max_goroutine":              1000,
	"app.server.http.address":        ":8080",
	"app.server.http.read_timeout":   10,
	"app.server.http.write_timeout":  0,
	"app.server.http.idle_timeout":   120,
	"jobs.concurrency":               4,
	"jobs.poll_interval_ms":          500,
	"jobs.attempts":                  3,
	"jobs.backoff_seconds":           1,
	"jobs.keep_completed":            100,
	"jobs.keep_failed":               50,
	"jobs.timeout_seconds":           300,
	"jobs.allow_memory_fallback":     true,
	"notification.retention_days":    90,
	"notification.feed.default_size": 20,
	"notification.feed.max_size":     50,
	"realtime.connect_rate":          5,
	"realtime.connect_burst":         10,
	"realtime.send_buffer":           64,
	"realtime.ping_seconds":          25,
	"mail.driver":                    "smtp",
	"sms.driver":                     "noop",
	"sms.default_region":             "BR",
	"messaging.driver":               "",
}
