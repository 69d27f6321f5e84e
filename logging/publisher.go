package logging

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type EventType string

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity accepts the names produced by Severity.String.
func ParseSeverity(raw string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return SeverityDebug, nil
	case "info":
		return SeverityInfo, nil
	case "warn", "warning":
		return SeverityWarn, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", raw)
	}
}

type EntityKind string

const (
	EntityKindUnknown  EntityKind = "unknown"
	EntityKindVillager EntityKind = "villager"
	EntityKindClient   EntityKind = "client"
	EntityKindWorld    EntityKind = "world"
)

type Event struct {
	Type      EventType      `json:"type"`
	Tick      uint64         `json:"tick"`
	Time      time.Time      `json:"time"`
	Actor     EntityRef      `json:"actor"`
	Targets   []EntityRef    `json:"targets,omitempty"`
	Severity  Severity       `json:"severity"`
	Category  string         `json:"category,omitempty"`
	Payload   any            `json:"payload,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
	CommandID string         `json:"commandId,omitempty"`
}

type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

// VillagerRef builds the actor reference for a villager id.
func VillagerRef(id string) EntityRef {
	return EntityRef{ID: id, Kind: EntityKindVillager}
}

// ClientRef builds the actor reference for a connected client.
func ClientRef(id string) EntityRef {
	return EntityRef{ID: id, Kind: EntityKindClient}
}

// WorldRef is the actor used for events without an owning entity.
func WorldRef() EntityRef {
	return EntityRef{Kind: EntityKindWorld}
}

const (
	CategoryNavigation = "navigation"
	CategoryPlacement  = "placement"
	CategoryNetwork    = "network"
	CategorySystem     = "system"
)

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type PublisherFunc func(ctx context.Context, event Event)

func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

func NopPublisher() Publisher {
	return nopPublisher{}
}

type fieldPublisher struct {
	next   Publisher
	fields map[string]any
}

func (p *fieldPublisher) Publish(ctx context.Context, event Event) {
	p.next.Publish(ctx, mergeFields(event, p.fields))
}

// WithFields decorates p so every event carries fields in Extra. Keys already
// present on an event win.
func WithFields(p Publisher, fields map[string]any) Publisher {
	if p == nil {
		return NopPublisher()
	}
	if len(fields) == 0 {
		return p
	}
	return &fieldPublisher{next: p, fields: copyFields(fields)}
}

func (e Event) WithExtra(key string, value any) Event {
	e = cloneEvent(e)
	if e.Extra == nil {
		e.Extra = make(map[string]any, 1)
	}
	e.Extra[key] = value
	return e
}

func mergeFields(event Event, fields map[string]any) Event {
	if len(fields) == 0 {
		return event
	}
	event = cloneEvent(event)
	if event.Extra == nil {
		event.Extra = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		if _, exists := event.Extra[k]; !exists {
			event.Extra[k] = v
		}
	}
	return event
}

func cloneEvent(event Event) Event {
	cloned := event
	if len(event.Targets) > 0 {
		cloned.Targets = append([]EntityRef(nil), event.Targets...)
	}
	if event.Extra != nil {
		cloned.Extra = copyFields(event.Extra)
	}
	return cloned
}

func copyFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return copied
}
