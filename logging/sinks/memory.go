package sinks

import (
	"context"
	"sync"

	"github.com/Rushhhy/sim-game/logging"
)

// Memory keeps every event in order. Tests use it to assert on emitted events.
type Memory struct {
	mu     sync.RWMutex
	events []logging.Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *Memory) Events() []logging.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]logging.Event(nil), s.events...)
}

// OfType filters the recorded events by type.
func (s *Memory) OfType(eventType logging.EventType) []logging.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []logging.Event
	for _, event := range s.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func (s *Memory) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *Memory) Close(context.Context) error {
	return nil
}
