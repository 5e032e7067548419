// Package uid provides identifier generators.
//
// Notifications use time-ordered UUIDv7 strings; scheduled jobs use snowflake
// ids so they sort by creation and stay short inside redis keys.
package uid

// StringID generates opaque string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}
