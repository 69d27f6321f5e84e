package simgame

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Rushhhy/sim-game/internal/grid"
	"github.com/Rushhhy/sim-game/internal/mapdef"
	"github.com/Rushhhy/sim-game/internal/nav"
	"github.com/Rushhhy/sim-game/internal/net/proto"
	"github.com/Rushhhy/sim-game/internal/sim"
	"github.com/Rushhhy/sim-game/internal/simutil"
	"github.com/Rushhhy/sim-game/internal/telemetry"
	"github.com/Rushhhy/sim-game/logging"
)

const (
	metricVillagersActive   = "hub_villagers_active"
	metricClientsActive     = "hub_clients_active"
	metricBroadcastBytes    = "hub_broadcast_bytes_total"
	metricBroadcastFailures = "hub_broadcast_failures_total"
	metricCommandsRejected  = "hub_commands_rejected_total"
	metricTickDurationMicro = "sim_tick_duration_micros"

	spawnSpreadRadius = 3.0
)

// Hub owns the occupancy grid, the villagers walking on it and the clients
// watching them. All simulation state is guarded by mu; the command buffer
// inside loop is the only path from network goroutines into the tick.
type Hub struct {
	mu sync.Mutex

	cfg    HubConfig
	doc    mapdef.Document
	home   nav.Vec2
	grid   *grid.Grid
	finder *nav.Finder

	villagers     map[string]*villager
	pendingSpawns map[string]struct{}
	owners        int

	clients     map[string]*client
	subscribers map[string]*Subscriber

	loop      *sim.Loop
	publisher logging.Publisher
	logger    telemetry.Logger
	metrics   *telemetry.Counters
	clock     logging.Clock
	rng       *rand.Rand

	nextClient   atomic.Uint64
	nextVillager atomic.Uint64
	nextCommand  atomic.Uint64

	staleSubscribers []*Subscriber
}

type client struct {
	id            string
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

// ClientDiagnostics is the heartbeat view of one client.
type ClientDiagnostics struct {
	ID            string `json:"id"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}

// Diagnostics summarises hub state for the diagnostics endpoint.
type Diagnostics struct {
	Tick       uint64              `json:"tick"`
	Revision   uint64              `json:"revision"`
	Villagers  int                 `json:"villagers"`
	Structures int                 `json:"structures"`
	Pending    int                 `json:"pendingCommands"`
	Clients    []ClientDiagnostics `json:"clients"`
	Metrics    map[string]uint64   `json:"metrics"`
}

// PathResult answers a one-off path query.
type PathResult struct {
	Cells    []grid.Cell `json:"cells"`
	Cost     float64     `json:"cost"`
	Expanded int         `json:"expanded"`
	Fallback bool        `json:"fallback"`
}

// NewHub builds the map described by cfg and spawns the starting villagers.
func NewHub(cfg HubConfig) (*Hub, error) {
	cfg = cfg.Normalized()

	doc := mapdef.Village()
	if cfg.Map != nil {
		doc = cfg.Map.Clone()
	}
	if cfg.NatureDensity > 0 {
		doc = mapdef.Scatter(doc, simutil.SeedValue(cfg.Seed, "nature"), cfg.NatureDensity)
	}
	g, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("build map %q: %w", doc.Name, err)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = logging.ClockFunc(time.Now)
	}

	h := &Hub{
		cfg:           cfg,
		doc:           doc,
		home:          nav.CellCenter(doc.HomeCell()),
		grid:          g,
		finder:        nav.NewFinder(g, cfg.Navigation),
		villagers:     make(map[string]*villager),
		pendingSpawns: make(map[string]struct{}),
		clients:       make(map[string]*client),
		subscribers:   make(map[string]*Subscriber),
		publisher:     cfg.Publisher,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		clock:         clock,
		rng:           simutil.NewRNG(cfg.Seed, "hub"),
	}
	for _, entry := range g.Entries() {
		if entry.Owner >= h.owners {
			h.owners = entry.Owner + 1
		}
	}

	h.loop = sim.NewLoop(sim.LoopConfig{
		TickRate:        cfg.TickRate,
		CatchupMaxTicks: cfg.CatchupMaxTicks,
		CommandCapacity: cfg.CommandCapacity,
		PerActorLimit:   cfg.PerActorLimit,
		WarningStep:     cfg.CommandCapacity / 4,
	}, sim.LoopHooks{
		Step:      h.step,
		AfterStep: h.afterStep,
		OnCommandDrop: func(reason string, cmd sim.Command) {
			h.metrics.Add(metricCommandsRejected, 1)
		},
		OnQueueWarning: func(length int) {
			h.logger.Printf("[backpressure] command queue length=%d capacity=%d", length, cfg.CommandCapacity)
		},
	}, clock, cfg.Logger, cfg.Metrics)

	for i := 0; i < cfg.VillagerCount; i++ {
		pos := h.spawnPoint()
		h.addVillagerLocked(h.newVillagerID(), pos)
	}
	h.metrics.Store(metricVillagersActive, uint64(len(h.villagers)))
	return h, nil
}

func (h *Hub) spawnPoint() nav.Vec2 {
	angle := simutil.RandomAngle(h.rng)
	dist := simutil.RandomDistance(h.rng, 0, spawnSpreadRadius)
	candidate := h.home.Add(nav.Vec2{X: math.Cos(angle) * dist, Y: math.Sin(angle) * dist})
	if h.finder.WalkableAt(candidate) {
		return candidate
	}
	if cell, ok := h.finder.NearestWalkable(nav.WorldToCell(h.home)); ok {
		return nav.CellCenter(cell)
	}
	return h.home
}

func (h *Hub) newVillagerID() string {
	return fmt.Sprintf("villager-%d", h.nextVillager.Add(1))
}

// Config returns the normalized configuration the hub runs with.
func (h *Hub) Config() HubConfig { return h.cfg }

// TickRate is the simulation frequency in ticks per second.
func (h *Hub) TickRate() int { return h.cfg.TickRate }

// Tick is the number of the last completed simulation step.
func (h *Hub) Tick() uint64 { return h.loop.Tick() }

// Metrics exposes the hub counters.
func (h *Hub) Metrics() *telemetry.Counters { return h.metrics }

// Join registers a new client and returns the static map plus current state.
func (h *Hub) Join() proto.JoinResponseV1 {
	id := fmt.Sprintf("client-%d", h.nextClient.Add(1))
	now := h.clock.Now()

	h.mu.Lock()
	h.clients[id] = &client{id: id, lastHeartbeat: now}
	h.metrics.Store(metricClientsActive, uint64(len(h.clients)))
	snapshot := h.snapshotLocked()
	layout := h.layoutLocked()
	h.mu.Unlock()

	return proto.JoinResponseV1{
		Ver:      ProtocolVersion,
		ID:       id,
		TickRate: h.cfg.TickRate,
		Map:      layout,
		State:    snapshot,
	}
}

// Subscribe attaches a websocket connection to a joined client, replacing
// any previous connection for it.
func (h *Hub) Subscribe(clientID string, conn *websocket.Conn) (*Subscriber, sim.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.clients[clientID]
	if !ok {
		return nil, sim.Snapshot{}, false
	}
	state.lastHeartbeat = h.clock.Now()

	if existing, ok := h.subscribers[clientID]; ok {
		existing.close()
	}
	sub := newSubscriber(conn)
	h.subscribers[clientID] = sub
	return sub, h.snapshotLocked(), true
}

// Disconnect forgets a client and closes its connection. It reports whether
// the client was known.
func (h *Hub) Disconnect(clientID string) bool {
	h.mu.Lock()
	sub, subOK := h.subscribers[clientID]
	if subOK {
		delete(h.subscribers, clientID)
	}
	_, clientOK := h.clients[clientID]
	if clientOK {
		delete(h.clients, clientID)
	}
	h.metrics.Store(metricClientsActive, uint64(len(h.clients)))
	h.mu.Unlock()

	if subOK {
		sub.close()
	}
	return clientOK
}

// UpdateHeartbeat records the most recent heartbeat time and RTT for a client.
func (h *Hub) UpdateHeartbeat(clientID string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.clients[clientID]
	if !ok {
		return 0, false
	}
	state.lastHeartbeat = receivedAt

	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			state.lastRTT = rtt
		}
	}
	return state.lastRTT, true
}

// Advance runs one simulation step synchronously and broadcasts the result.
// It is the manual counterpart of RunSimulation used by tests and tools.
func (h *Hub) Advance(now time.Time, dt float64) sim.Snapshot {
	result := h.loop.Advance(sim.LoopTickContext{Now: now, Delta: dt})
	h.afterStep(result)
	return h.Snapshot()
}

// RunSimulation drives the fixed-rate tick loop until the stop channel closes.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	h.loop.Run(stop)
}

func (h *Hub) step(ctx sim.LoopTickContext, commands []sim.Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := ctx.Now
	if now.IsZero() {
		now = h.clock.Now()
	}
	h.pruneClientsLocked(now)

	eventCtx := context.Background()
	for _, cmd := range commands {
		h.applyCommandLocked(eventCtx, ctx.Tick, cmd)
	}
	for _, v := range h.sortedVillagersLocked() {
		h.stepVillagerLocked(eventCtx, v, ctx.Tick, ctx.Delta)
	}
	h.metrics.Store(metricVillagersActive, uint64(len(h.villagers)))
}

func (h *Hub) afterStep(result sim.LoopStepResult) {
	h.mu.Lock()
	stale := h.staleSubscribers
	h.staleSubscribers = nil
	h.mu.Unlock()
	for _, sub := range stale {
		sub.close()
	}
	if result.Duration > 0 {
		h.metrics.Store(metricTickDurationMicro, uint64(result.Duration.Microseconds()))
	}
	h.broadcastState()
}

func (h *Hub) pruneClientsLocked(now time.Time) {
	for id, state := range h.clients {
		if now.Sub(state.lastHeartbeat) <= disconnectAfter {
			continue
		}
		if sub, ok := h.subscribers[id]; ok {
			h.staleSubscribers = append(h.staleSubscribers, sub)
			delete(h.subscribers, id)
		}
		delete(h.clients, id)
		h.logger.Printf("disconnecting %s due to heartbeat timeout", id)
	}
	h.metrics.Store(metricClientsActive, uint64(len(h.clients)))
}

// Snapshot copies the current villagers and structures.
func (h *Hub) Snapshot() sim.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// Villager returns the snapshot of one villager.
func (h *Hub) Villager(id string) (sim.Villager, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.villagers[id]
	if !ok {
		return sim.Villager{}, false
	}
	return v.snapshot(), true
}

// MapLayout returns the static map data clients render once.
func (h *Hub) MapLayout() sim.MapLayout {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.layoutLocked()
}

func (h *Hub) snapshotLocked() sim.Snapshot {
	villagers := make([]sim.Villager, 0, len(h.villagers))
	for _, v := range h.sortedVillagersLocked() {
		villagers = append(villagers, v.snapshot())
	}
	entries := h.grid.Entries()
	structures := make([]sim.Structure, 0, len(entries))
	for _, entry := range entries {
		structures = append(structures, sim.Structure{
			Category: entry.Category,
			Owner:    entry.Owner,
			Kind:     entry.Kind.String(),
			Cells:    append([]grid.Cell(nil), entry.Cells...),
		})
	}
	return sim.Snapshot{
		Tick:       h.loop.Tick(),
		Revision:   h.grid.Revision(),
		Villagers:  villagers,
		Structures: structures,
	}
}

func (h *Hub) layoutLocked() sim.MapLayout {
	return sim.MapLayout{
		Name:      h.doc.Name,
		Home:      h.doc.HomeCell(),
		Boundary:  h.grid.Boundary(),
		Nature:    h.grid.Nature(),
		Forbidden: h.grid.Forbidden(),
		Corridors: h.grid.Corridors(),
	}
}

func (h *Hub) sortedVillagersLocked() []*villager {
	ids := make([]string, 0, len(h.villagers))
	for id := range h.villagers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*villager, 0, len(ids))
	for _, id := range ids {
		out = append(out, h.villagers[id])
	}
	return out
}

// QueryPath runs a one-off search on the live grid. A positive radius
// retries toward any walkable cell around goal when the direct search fails.
// The radius is clamped to MaxQueryRadius.
func (h *Hub) QueryPath(start, goal grid.Cell, radius int) (PathResult, error) {
	radius = min(radius, MaxQueryRadius)
	h.mu.Lock()
	defer h.mu.Unlock()

	plan, err := h.finder.FindPath(start, goal)
	fallback := false
	if err != nil && radius > 0 && errors.Is(err, nav.ErrPathNotFound) {
		plan, err = h.finder.FindPathAroundGoal(start, goal, radius)
		fallback = err == nil
	}
	if err != nil {
		return PathResult{}, err
	}
	return PathResult{
		Cells:    plan.Cells(),
		Cost:     plan.Cost(),
		Expanded: plan.Expanded(),
		Fallback: fallback,
	}, nil
}

// DiagnosticsSnapshot exposes tick, grid and heartbeat data.
func (h *Hub) DiagnosticsSnapshot() Diagnostics {
	h.mu.Lock()
	clients := make([]ClientDiagnostics, 0, len(h.clients))
	for _, state := range h.clients {
		clients = append(clients, ClientDiagnostics{
			ID:            state.id,
			LastHeartbeat: state.lastHeartbeat.UnixMilli(),
			RTTMillis:     state.lastRTT.Milliseconds(),
		})
	}
	diag := Diagnostics{
		Revision:   h.grid.Revision(),
		Villagers:  len(h.villagers),
		Structures: len(h.grid.Entries()),
		Clients:    clients,
	}
	h.mu.Unlock()

	sort.Slice(diag.Clients, func(i, j int) bool { return diag.Clients[i].ID < diag.Clients[j].ID })
	diag.Tick = h.loop.Tick()
	diag.Pending = h.loop.Pending()
	diag.Metrics = h.metrics.Snapshot()
	return diag
}

// broadcastState sends the latest snapshot to every subscriber.
func (h *Hub) broadcastState() {
	h.mu.Lock()
	if len(h.subscribers) == 0 {
		h.mu.Unlock()
		return
	}
	snapshot := h.snapshotLocked()
	subs := make(map[string]*Subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	data, err := proto.EncodeStateSnapshot(proto.NewStateSnapshot(snapshot, h.clock.Now().UnixMilli()))
	if err != nil {
		h.logger.Printf("failed to marshal state message: %v", err)
		return
	}

	for id, sub := range subs {
		if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Printf("failed to send update to %s: %v", id, err)
			h.metrics.Add(metricBroadcastFailures, 1)
			h.Disconnect(id)
			continue
		}
		h.metrics.Add(metricBroadcastBytes, uint64(len(data)))
	}
}
