package net

import (
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/pprof"
	"strconv"
	"time"

	simgame "github.com/Rushhhy/sim-game"
	"github.com/Rushhhy/sim-game/internal/grid"
	"github.com/Rushhhy/sim-game/internal/nav"
	"github.com/Rushhhy/sim-game/internal/net/proto"
	"github.com/Rushhhy/sim-game/internal/net/ws"
	"github.com/Rushhhy/sim-game/internal/observability"
	"github.com/Rushhhy/sim-game/internal/telemetry"
	"github.com/Rushhhy/sim-game/logging"
)

type HTTPHandlerConfig struct {
	ClientDir     string
	Logger        telemetry.Logger
	Observability observability.Config
	// Router, when set, contributes its delivery stats to /diagnostics.
	Router *logging.Router
}

func NewHTTPHandler(hub *simgame.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string              `json:"status"`
			ServerTime int64               `json:"serverTime"`
			TickRate   int                 `json:"tickRate"`
			Heartbeat  int64               `json:"heartbeatMillis"`
			Hub        simgame.Diagnostics `json:"hub"`
			Logging    any                 `json:"logging,omitempty"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			TickRate:   hub.TickRate(),
			Heartbeat:  simgame.HeartbeatInterval().Milliseconds(),
			Hub:        hub.DiagnosticsSnapshot(),
		}
		if cfg.Router != nil {
			payload.Logging = cfg.Router.Stats()
		}
		writeJSON(w, payload)
	})

	mux.HandleFunc("/join", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		data, err := proto.EncodeJoinResponse(hub.Join())
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/map", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, hub.MapLayout())
	})

	mux.HandleFunc("/path", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		query := r.URL.Query()
		var coords [4]int
		for i, key := range []string{"sx", "sy", "gx", "gy"} {
			value, err := strconv.Atoi(query.Get(key))
			if err != nil {
				httpError(w, "invalid "+key, nethttp.StatusBadRequest)
				return
			}
			coords[i] = value
		}
		radius := 0
		if raw := query.Get("radius"); raw != "" {
			value, err := strconv.Atoi(raw)
			if err != nil || value < 0 {
				httpError(w, "invalid radius", nethttp.StatusBadRequest)
				return
			}
			radius = value
		}

		result, err := hub.QueryPath(grid.Cell{X: coords[0], Y: coords[1]}, grid.Cell{X: coords[2], Y: coords[3]}, radius)
		if errors.Is(err, nav.ErrPathNotFound) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(nethttp.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		if err != nil {
			logger.Printf("path query failed: %v", err)
			httpError(w, "path query failed", nethttp.StatusInternalServerError)
			return
		}
		writeJSON(w, result)
	})

	wsHandler := ws.NewHandler(hub, ws.HandlerConfig{Logger: logger})
	mux.HandleFunc("/ws", wsHandler.Handle)

	if cfg.Observability.EnablePprofTrace {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func writeJSON(w nethttp.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
