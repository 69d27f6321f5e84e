package sinks

import (
	"context"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Rushhhy/sim-game/logging"
)

// Console renders events through a logrus logger, text or JSON formatted.
type Console struct {
	logger *logrus.Logger
}

// NewConsole builds a console sink writing to w.
func NewConsole(w io.Writer, cfg logging.ConsoleConfig) *Console {
	logger := logrus.New()
	logger.SetOutput(w)
	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return &Console{logger: logger}
}

// Logger exposes the underlying logrus logger for components that log
// directly rather than through events.
func (s *Console) Logger() *logrus.Logger {
	return s.logger
}

func (s *Console) Write(event logging.Event) error {
	fields := logrus.Fields{
		"tick":  event.Tick,
		"actor": formatEntity(event.Actor),
	}
	if event.Category != "" {
		fields["category"] = event.Category
	}
	if len(event.Targets) > 0 {
		targets := make([]string, 0, len(event.Targets))
		for _, target := range event.Targets {
			targets = append(targets, formatEntity(target))
		}
		fields["targets"] = strings.Join(targets, ",")
	}
	if event.Payload != nil {
		fields["payload"] = event.Payload
	}
	if event.CommandID != "" {
		fields["commandId"] = event.CommandID
	}
	for k, v := range event.Extra {
		if _, exists := fields[k]; !exists {
			fields[k] = v
		}
	}
	entry := s.logger.WithFields(fields)
	if !event.Time.IsZero() {
		entry = entry.WithTime(event.Time)
	}
	entry.Log(levelFor(event.Severity), string(event.Type))
	return nil
}

func (s *Console) Close(context.Context) error {
	return nil
}

func levelFor(sev logging.Severity) logrus.Level {
	switch sev {
	case logging.SeverityDebug:
		return logrus.DebugLevel
	case logging.SeverityWarn:
		return logrus.WarnLevel
	case logging.SeverityError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func formatEntity(ref logging.EntityRef) string {
	if ref.ID == "" {
		return string(ref.Kind)
	}
	if ref.Kind == "" {
		return ref.ID
	}
	return string(ref.Kind) + ":" + ref.ID
}
