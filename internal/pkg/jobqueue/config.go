package jobqueue

import "time"

// Config tunes the engine. Zero values take the defaults below.
type Config struct {
	// Concurrency is the number of workers per queue.
	Concurrency  int
	PollInterval time.Duration
	MaxAttempts  int
	// Backoff is the first retry delay; later retries double it.
	Backoff       time.Duration
	KeepCompleted int
	KeepFailed    int
	Timeout       time.Duration
}

const (
	defaultConcurrency   = 4
	defaultPollInterval  = 500 * time.Millisecond
	defaultMaxAttempts   = 3
	defaultBackoff       = time.Second
	defaultKeepCompleted = 100
	defaultKeepFailed    = 50
	defaultTimeout       = 5 * time.Minute
)

func (c Config) withDefaults() Config {
	if c.Concurrency < 1 {
		c.Concurrency = defaultConcurrency
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.Backoff <= 0 {
		c.Backoff = defaultBackoff
	}
	if c.KeepCompleted < 0 {
		c.KeepCompleted = 0
	} else if c.KeepCompleted == 0 {
		c.KeepCompleted = defaultKeepCompleted
	}
	if c.KeepFailed < 0 {
		c.KeepFailed = 0
	} else if c.KeepFailed == 0 {
		c.KeepFailed = defaultKeepFailed
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}
