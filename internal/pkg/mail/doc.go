// Package mail sends notification emails through a pluggable provider.
//
// Drivers: "smtp" (net/smtp), "sendgrid" (SendGrid v3 API) and "log", which
// only records the message and is meant for local runs.
package mail
