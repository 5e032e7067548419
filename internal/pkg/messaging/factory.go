package messaging

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DriverNATS   = "nats"
	DriverKafka  = "kafka"
	DriverMemory = "memory"
)

// ErrUnknownDriver indicates an unsupported messaging driver.
var ErrUnknownDriver = errors.New("messaging: unknown driver")

// Config selects a driver and carries its settings.
type Config struct {
	Driver string
	NATS   NATSConfig
	Kafka  KafkaConfig
}

// New constructs the Messaging implementation named by cfg.Driver.
func New(cfg Config) (Messaging, error) {
	switch strings.TrimSpace(cfg.Driver) {
	case DriverNATS:
		n, err := NewNATS(cfg.NATS)
		if err != nil {
			return nil, err
		}
		return n, nil
	case DriverKafka:
		k, err := NewKafka(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		return k, nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
