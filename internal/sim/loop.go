package sim

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Rushhhy/sim-game/internal/telemetry"
	"github.com/Rushhhy/sim-game/logging"
)

const (
	// CommandRejectQueueLimit indicates a command was dropped due to per-actor
	// queue throttling.
	CommandRejectQueueLimit = "queue_limit"
	// CommandRejectQueueFull indicates the global command buffer is saturated.
	CommandRejectQueueFull = "queue_full"
)

// LoopConfig tunes the command buffer and tick loop orchestration.
type LoopConfig struct {
	TickRate        int
	CatchupMaxTicks int
	CommandCapacity int
	PerActorLimit   int
	WarningStep     int
}

// LoopTickContext describes the tick being executed.
type LoopTickContext struct {
	Tick  uint64
	Now   time.Time
	Delta float64
}

// LoopStepResult reports what a single Advance did.
type LoopStepResult struct {
	Tick         uint64
	Now          time.Time
	Delta        float64
	Commands     []Command
	Duration     time.Duration
	Budget       time.Duration
	ClampedDelta bool
	MaxDelta     float64
}

// LoopHooks are the callbacks the loop drives. Step receives the drained
// commands and must apply them before advancing the world.
type LoopHooks struct {
	Step           func(ctx LoopTickContext, commands []Command)
	AfterStep      func(result LoopStepResult)
	OnCommandDrop  func(reason string, cmd Command)
	OnQueueWarning func(length int)
}

// Loop coordinates command ingestion and the fixed-timestep simulation runner.
type Loop struct {
	buffer  *CommandBuffer
	hooks   LoopHooks
	config  LoopConfig
	clock   logging.Clock
	logger  telemetry.Logger
	metrics telemetry.Metrics
	tick    atomic.Uint64

	queueMu       sync.Mutex
	perActorCount map[string]int
	dropCounts    map[string]uint64
}

// NewLoop constructs a loop with a ring-buffer queue. A nil clock uses the
// wall clock.
func NewLoop(cfg LoopConfig, hooks LoopHooks, clock logging.Clock, logger telemetry.Logger, metrics telemetry.Metrics) *Loop {
	if clock == nil {
		clock = logging.ClockFunc(time.Now)
	}
	return &Loop{
		buffer:        NewCommandBuffer(cfg.CommandCapacity, metrics),
		hooks:         hooks,
		config:        cfg,
		clock:         clock,
		logger:        logger,
		metrics:       metrics,
		perActorCount: make(map[string]int),
		dropCounts:    make(map[string]uint64),
	}
}

// Tick returns the number of the last executed tick.
func (l *Loop) Tick() uint64 {
	if l == nil {
		return 0
	}
	return l.tick.Load()
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return l.buffer.Len()
}

// DrainCommands clears the staged command queue without advancing.
func (l *Loop) DrainCommands() []Command {
	if l == nil {
		return nil
	}
	return l.drainCommands()
}

// Enqueue stages a command, enforcing per-actor throttling and capacity limits.
func (l *Loop) Enqueue(cmd Command) (bool, string) {
	if l == nil {
		return false, CommandRejectQueueFull
	}
	reason := ""
	var dropCount uint64
	l.queueMu.Lock()
	if l.config.PerActorLimit > 0 && cmd.ActorID != "" {
		count := l.perActorCount[cmd.ActorID]
		if count >= l.config.PerActorLimit {
			reason = CommandRejectQueueLimit
			dropCount = l.incrementDropLocked(cmd.ActorID)
		} else {
			l.perActorCount[cmd.ActorID] = count + 1
		}
	}
	if reason == "" {
		if !l.buffer.Push(cmd) {
			reason = CommandRejectQueueFull
			dropCount = l.incrementDropLocked(cmd.ActorID)
		} else if l.config.WarningStep > 0 {
			length := l.buffer.Len()
			if length >= l.config.WarningStep && length%l.config.WarningStep == 0 {
				l.queueMu.Unlock()
				l.warnQueue(length)
				return true, ""
			}
		}
	}
	l.queueMu.Unlock()
	if reason != "" {
		l.reportDrop(reason, cmd, dropCount)
		return false, reason
	}
	return true, ""
}

// Advance executes a single simulation step using the staged commands. A
// zero tick in ctx takes the next tick number.
func (l *Loop) Advance(ctx LoopTickContext) LoopStepResult {
	if l == nil {
		return LoopStepResult{}
	}
	if ctx.Tick == 0 {
		ctx.Tick = l.tick.Add(1)
	} else {
		l.tick.Store(ctx.Tick)
	}
	commands := l.drainCommands()
	if l.hooks.Step != nil {
		l.hooks.Step(ctx, commands)
	}
	return LoopStepResult{
		Tick:     ctx.Tick,
		Now:      ctx.Now,
		Delta:    ctx.Delta,
		Commands: commands,
	}
}

// Run drives the fixed-timestep loop until the stop channel closes.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	tickRate := l.config.TickRate
	if tickRate <= 0 {
		tickRate = 15
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	last := l.clock.Now()
	budgetSeconds := 1.0 / float64(tickRate)
	maxDt := budgetSeconds
	if l.config.CatchupMaxTicks > 1 {
		maxDt = budgetSeconds * float64(l.config.CatchupMaxTicks)
	}
	budgetDuration := time.Second / time.Duration(tickRate)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := l.clock.Now()
			dt := now.Sub(last).Seconds()
			clamped := false
			if dt <= 0 {
				dt = budgetSeconds
			} else if dt > maxDt {
				dt = maxDt
				clamped = true
			}
			last = now

			start := l.clock.Now()
			result := l.Advance(LoopTickContext{Now: now, Delta: dt})
			result.Duration = l.clock.Now().Sub(start)
			result.Budget = budgetDuration
			result.ClampedDelta = clamped
			result.MaxDelta = maxDt

			if result.Duration > budgetDuration && l.metrics != nil {
				l.metrics.Add("sim_tick_overrun_total", 1)
			}
			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
		}
	}
}

func (l *Loop) drainCommands() []Command {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	commands := l.buffer.Drain()
	if len(l.perActorCount) > 0 {
		l.perActorCount = make(map[string]int)
	}
	return commands
}

func (l *Loop) incrementDropLocked(actorID string) uint64 {
	if actorID == "" {
		return 0
	}
	count := l.dropCounts[actorID] + 1
	l.dropCounts[actorID] = count
	return count
}

func (l *Loop) warnQueue(length int) {
	if l.hooks.OnQueueWarning != nil {
		l.hooks.OnQueueWarning(length)
	}
}

func (l *Loop) reportDrop(reason string, cmd Command, count uint64) {
	if l.hooks.OnCommandDrop != nil {
		l.hooks.OnCommandDrop(reason, cmd)
	}
	// Log on powers of two so a flooding client does not flood the log.
	if count > 0 && count&(count-1) == 0 && l.logger != nil {
		l.logger.Printf(
			"[backpressure] dropping command actor=%s type=%s reason=%s count=%d limit=%d",
			cmd.ActorID,
			cmd.Type,
			reason,
			count,
			l.config.PerActorLimit,
		)
	}
}

// Ensure we depend on telemetry interfaces only for metric plumbing.
var _ telemetryMetrics = (telemetry.Metrics)(nil)
