package ws

import (
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	simgame "github.com/Rushhhy/sim-game"
	"github.com/Rushhhy/sim-game/internal/net/proto"
	"github.com/Rushhhy/sim-game/internal/sim"
	"github.com/Rushhhy/sim-game/internal/telemetry"
)

type subscription interface {
	WriteMessage(messageType int, data []byte) error
	LastCommandSeq() uint64
	StoreLastCommandSeq(seq uint64)
}

type HandlerConfig struct {
	Logger telemetry.Logger
}

// Handler upgrades /ws requests and runs one read loop per client.
type Handler struct {
	hub      *simgame.Hub
	logger   telemetry.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *simgame.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:      hub,
		logger:   logger,
		upgrader: upgrader,
	}
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	clientID := r.URL.Query().Get("id")
	if clientID == "" {
		nethttp.Error(w, "missing id", nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", clientID, err)
		return
	}

	sub, snapshot, ok := h.hub.Subscribe(clientID, conn)
	if !ok {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown client")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}
	h.serve(clientID, conn, sub, snapshot)
}

func (h *Handler) serve(clientID string, conn *websocket.Conn, session subscription, snapshot sim.Snapshot) {
	data, err := proto.EncodeStateSnapshot(proto.NewStateSnapshot(snapshot, time.Now().UnixMilli()))
	if err != nil {
		h.logger.Printf("failed to marshal initial state for %s: %v", clientID, err)
		h.hub.Disconnect(clientID)
		return
	}
	if err := session.WriteMessage(websocket.TextMessage, data); err != nil {
		h.hub.Disconnect(clientID)
		return
	}

	write := func(data []byte, err error) bool {
		if err != nil {
			h.logger.Printf("failed to marshal response for %s: %v", clientID, err)
			return true
		}
		if err := session.WriteMessage(websocket.TextMessage, data); err != nil {
			h.hub.Disconnect(clientID)
			return false
		}
		return true
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.hub.Disconnect(clientID)
			return
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", clientID, err)
			continue
		}

		if msg.Type == proto.TypeHeartbeat {
			now := time.Now()
			rtt, ok := h.hub.UpdateHeartbeat(clientID, now, msg.SentAt)
			if !ok {
				continue
			}
			if !write(proto.EncodeHeartbeat(proto.Heartbeat{
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			})) {
				return
			}
			continue
		}

		seq := uint64(0)
		if msg.CommandSeq != nil && *msg.CommandSeq > 0 {
			seq = *msg.CommandSeq
		}
		if seq > 0 {
			if last := session.LastCommandSeq(); last > 0 && seq <= last {
				if !write(proto.EncodeCommandAck(proto.CommandAck{Seq: seq})) {
					return
				}
				continue
			}
		}

		cmd, ok, reason := h.hub.StageClientMessage(clientID, msg)
		if !ok {
			switch reason {
			case simgame.CommandRejectUnknownActor:
				h.logger.Printf("%s ignored for unknown client %s", msg.Type, clientID)
			case simgame.CommandRejectInvalid:
				h.logger.Printf("invalid %q message from %s", msg.Type, clientID)
			}
		}
		if seq == 0 {
			continue
		}
		if !ok {
			if !write(proto.EncodeCommandReject(proto.CommandReject{
				Seq:    seq,
				Reason: reason,
				Retry:  reason == simgame.CommandRejectQueueLimit,
			})) {
				return
			}
			continue
		}
		if !write(proto.EncodeCommandAck(proto.CommandAck{Seq: seq, Tick: cmd.OriginTick, VillagerID: cmd.VillagerID})) {
			return
		}
		session.StoreLastCommandSeq(seq)
	}
}
