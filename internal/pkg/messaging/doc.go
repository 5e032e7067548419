// Package messaging publishes and consumes broker messages without tying
// callers to a broker SDK.
//
// Drivers: "nats" (core subjects with queue groups), "kafka" (consumer groups,
// manual commit) and "memory" (in-process, for local runs and tests).
package messaging
