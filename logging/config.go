package logging

import "time"

const (
	SinkConsole = "console"
	SinkJSON    = "json"
	SinkMemory  = "memory"
)

type Config struct {
	EnabledSinks     []string
	BufferSize       int
	MinimumSeverity  Severity
	Fields           map[string]any
	JSON             JSONConfig
	Console          ConsoleConfig
	DropWarnInterval time.Duration
}

type JSONConfig struct {
	FilePath      string
	FlushInterval time.Duration
}

// ConsoleConfig selects the logrus formatter used by the console sink.
type ConsoleConfig struct {
	// Format is "text" or "json".
	Format string
	Level  string
}

func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{SinkConsole},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			FlushInterval: 2 * time.Second,
		},
		Console: ConsoleConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

func (c Config) HasSink(name string) bool {
	for _, s := range c.EnabledSinks {
		if s == name {
			return true
		}
	}
	return false
}
