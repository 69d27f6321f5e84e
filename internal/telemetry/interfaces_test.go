package telemetry

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestWrapLogrus(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		logger := WrapLogrus(nil)
		logger.Printf("ignored %d", 42)
	})

	t.Run("forwards to logger", func(t *testing.T) {
		var buf bytes.Buffer
		base := logrus.New()
		base.SetOutput(&buf)
		base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
		WrapLogrus(base).Printf("hello %s", "world")
		assert.Contains(t, buf.String(), `msg="hello world"`)
	})
}

func TestCounters(t *testing.T) {
	counters := NewCounters()
	var metrics Metrics = counters

	metrics.Add("test_counter", 2)
	metrics.Store("test_counter", 5)
	metrics.Add("test_counter", 3)
	metrics.Add("other", 1)

	assert.Equal(t, uint64(8), counters.Snapshot()["test_counter"])
	assert.Equal(t, []string{"other", "test_counter"}, counters.Keys())

	var nilCounters *Counters
	nilCounters.Add("ignored", 1)
	nilCounters.Store("ignored", 1)
}
