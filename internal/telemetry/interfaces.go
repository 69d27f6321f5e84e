package telemetry

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger exposes the logging capabilities required by service components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogrus adapts a logrus logger or entry to the Logger interface.
func WrapLogrus(logger logrus.FieldLogger) Logger {
	return &logrusAdapter{logger: logger}
}

type logrusAdapter struct {
	logger logrus.FieldLogger
}

func (l *logrusAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Infof(format, args...)
}

// Metrics exposes the counters required by service components.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// Counters is an in-memory Metrics implementation served by /diagnostics.
type Counters struct {
	mu     sync.Mutex
	values map[string]uint64
}

func NewCounters() *Counters {
	return &Counters{values: make(map[string]uint64)}
}

func (c *Counters) Add(key string, delta uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.values[key] += delta
	c.mu.Unlock()
}

func (c *Counters) Store(key string, value uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
}

// Snapshot copies the current values.
func (c *Counters) Snapshot() map[string]uint64 {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]uint64, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Keys lists the recorded metric names in order.
func (c *Counters) Keys() []string {
	snapshot := c.Snapshot()
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
