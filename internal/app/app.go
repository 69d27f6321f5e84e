package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	simgame "github.com/Rushhhy/sim-game"
	"github.com/Rushhhy/sim-game/internal/mapdef"
	servernet "github.com/Rushhhy/sim-game/internal/net"
	"github.com/Rushhhy/sim-game/internal/observability"
	"github.com/Rushhhy/sim-game/internal/telemetry"
	"github.com/Rushhhy/sim-game/logging"
	loggingSinks "github.com/Rushhhy/sim-game/logging/sinks"
)

const (
	defaultListenAddr = ":8080"
	shutdownTimeout   = 5 * time.Second
)

type Config struct {
	Logger        telemetry.Logger
	Observability observability.Config
	// ListenAddr defaults to :8080; LISTEN_ADDR overrides it.
	ListenAddr string
	ClientDir  string
}

// Run builds the hub from defaults plus environment overrides and serves it
// until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	logConfig := logging.DefaultConfig()
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		logConfig.Console.Level = raw
	}
	if raw := os.Getenv("LOG_FORMAT"); raw != "" {
		logConfig.Console.Format = raw
	}
	if raw := os.Getenv("LOG_JSON_FILE"); raw != "" {
		logConfig.JSON.FilePath = raw
		logConfig.EnabledSinks = append(logConfig.EnabledSinks, logging.SinkJSON)
	}

	console := loggingSinks.NewConsole(os.Stdout, logConfig.Console)
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogrus(console.Logger().WithField("component", "server"))
	}

	var namedSinks []logging.NamedSink
	if logConfig.HasSink(logging.SinkConsole) {
		namedSinks = append(namedSinks, logging.NamedSink{Name: logging.SinkConsole, Sink: console})
	}
	if logConfig.HasSink(logging.SinkJSON) {
		file, err := os.OpenFile(logConfig.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open json log %s: %w", logConfig.JSON.FilePath, err)
		}
		defer file.Close()
		namedSinks = append(namedSinks, logging.NamedSink{
			Name: logging.SinkJSON,
			Sink: loggingSinks.NewJSON(file, logConfig.JSON.FlushInterval),
		})
	}

	router := logging.NewRouter(logging.ClockFunc(time.Now), logConfig, console.Logger().WithField("component", "logging"), namedSinks)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	hubCfg, err := hubConfigFromEnv(telemetryLogger)
	if err != nil {
		return err
	}
	hubCfg.Logger = telemetryLogger
	hubCfg.Publisher = router

	observabilityCfg := cfg.Observability
	if raw := os.Getenv("ENABLE_PPROF_TRACE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			observabilityCfg.EnablePprofTrace = value
		} else {
			telemetryLogger.Printf("invalid ENABLE_PPROF_TRACE=%q: %v", raw, err)
		}
	}

	hub, err := simgame.NewHub(hubCfg)
	if err != nil {
		return fmt.Errorf("failed to construct hub: %w", err)
	}
	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	clientDir := cfg.ClientDir
	if raw := os.Getenv("CLIENT_DIR"); raw != "" {
		clientDir = raw
	}
	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		ClientDir:     clientDir,
		Logger:        telemetryLogger,
		Observability: observabilityCfg,
		Router:        router,
	})

	addr := cfg.ListenAddr
	if raw := os.Getenv("LISTEN_ADDR"); raw != "" {
		addr = raw
	}
	if addr == "" {
		addr = defaultListenAddr
	}
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			telemetryLogger.Printf("server shutdown: %v", err)
		}
	}()

	telemetryLogger.Printf("server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func hubConfigFromEnv(logger telemetry.Logger) (simgame.HubConfig, error) {
	cfg := simgame.DefaultHubConfig()

	if raw := os.Getenv("MAP_FILE"); raw != "" {
		doc, err := mapdef.Load(raw)
		if err != nil {
			return cfg, err
		}
		cfg.Map = &doc
	}
	if raw := os.Getenv("MAP_SEED"); raw != "" {
		cfg.Seed = raw
	}
	intEnv(logger, "TICK_RATE", &cfg.TickRate)
	intEnv(logger, "VILLAGER_COUNT", &cfg.VillagerCount)
	if raw := os.Getenv("NATURE_DENSITY"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.NatureDensity = value
		} else {
			logger.Printf("invalid NATURE_DENSITY=%q: %v", raw, err)
		}
	}
	return cfg, nil
}

func intEnv(logger telemetry.Logger, key string, dst *int) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		logger.Printf("invalid %s=%q: %v", key, raw, err)
		return
	}
	*dst = value
}
