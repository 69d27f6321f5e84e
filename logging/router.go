package logging

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type NamedSink struct {
	Name string
	Sink Sink
}

// Router fans events out to its sinks asynchronously. Publishing never
// blocks the caller; overflow is counted and dropped.
type Router struct {
	cfg      Config
	queue    chan Event
	sinks    []*sinkWorker
	clock    Clock
	fallback logrus.FieldLogger
	ctx      context.Context
	cancel   context.CancelFunc
	closed   atomic.Bool
	wg       sync.WaitGroup

	eventsTotal  atomic.Uint64
	droppedTotal atomic.Uint64
	lastDropLog  atomic.Int64
}

type RouterStats struct {
	EventsTotal  uint64            `json:"eventsTotal"`
	DroppedTotal uint64            `json:"droppedTotal"`
	SinkDrops    map[string]uint64 `json:"sinkDrops,omitempty"`
}

// NewRouter starts the dispatch goroutine and one worker per sink. A nil
// fallback logger reports sink failures through the logrus standard logger.
func NewRouter(clock Clock, cfg Config, fallback logrus.FieldLogger, namedSinks []NamedSink) *Router {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	if fallback == nil {
		fallback = logrus.StandardLogger().WithField("component", "logging")
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 512
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		cfg:      cfg,
		queue:    make(chan Event, bufferSize),
		clock:    clock,
		fallback: fallback,
		ctx:      ctx,
		cancel:   cancel,
	}

	sinkBuffer := bufferSize
	if sinkBuffer > 1024 {
		sinkBuffer = 1024
	}
	if sinkBuffer < 32 {
		sinkBuffer = 32
	}
	for _, named := range namedSinks {
		if named.Sink == nil {
			continue
		}
		r.sinks = append(r.sinks, newSinkWorker(named.Name, named.Sink, sinkBuffer, fallback))
	}

	r.start()
	return r
}

func (r *Router) start() {
	r.wg.Add(1)
	go func() {
		defer func() {
			for _, worker := range r.sinks {
				close(worker.events)
			}
			r.wg.Done()
		}()
		for {
			select {
			case <-r.ctx.Done():
				r.drain()
				return
			case event := <-r.queue:
				r.forward(event)
			}
		}
	}()

	for _, worker := range r.sinks {
		r.wg.Add(1)
		go func(w *sinkWorker) {
			defer r.wg.Done()
			w.run()
		}(worker)
	}
}

func (r *Router) drain() {
	for {
		select {
		case event := <-r.queue:
			r.forward(event)
		default:
			return
		}
	}
}

func (r *Router) forward(event Event) {
	if event.Severity < r.cfg.MinimumSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	event = mergeFields(event, r.cfg.Fields)
	r.eventsTotal.Add(1)
	for _, worker := range r.sinks {
		worker.enqueue(event)
	}
}

func (r *Router) Publish(_ context.Context, event Event) {
	if event.Type == "" || r.closed.Load() {
		return
	}
	select {
	case r.queue <- event:
	default:
		r.handleDrop(event)
	}
}

func (r *Router) handleDrop(event Event) {
	r.droppedTotal.Add(1)
	interval := r.cfg.DropWarnInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	now := time.Now().UnixNano()
	next := r.lastDropLog.Load()
	if next == 0 || now >= next {
		if r.lastDropLog.CompareAndSwap(next, now+interval.Nanoseconds()) {
			r.fallback.WithFields(logrus.Fields{"type": event.Type, "tick": event.Tick}).Warn("dropping event")
		}
	}
}

// Close stops accepting events, flushes the queue and closes every sink.
func (r *Router) Close(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.cancel()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	var firstErr error
	for _, worker := range r.sinks {
		if err := worker.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Router) Stats() RouterStats {
	stats := RouterStats{
		EventsTotal:  r.eventsTotal.Load(),
		DroppedTotal: r.droppedTotal.Load(),
	}
	for _, worker := range r.sinks {
		if dropped := worker.dropped.Load(); dropped > 0 {
			if stats.SinkDrops == nil {
				stats.SinkDrops = make(map[string]uint64)
			}
			stats.SinkDrops[worker.name] = dropped
		}
	}
	return stats
}

func (r *Router) Sink(name string) Sink {
	for _, worker := range r.sinks {
		if worker.name == name {
			return worker.sink
		}
	}
	return nil
}

type sinkWorker struct {
	name      string
	sink      Sink
	events    chan Event
	fallback  logrus.FieldLogger
	failures  int
	nextRetry time.Time
	dropped   atomic.Uint64
}

func newSinkWorker(name string, sink Sink, buffer int, fallback logrus.FieldLogger) *sinkWorker {
	return &sinkWorker{
		name:     name,
		sink:     sink,
		events:   make(chan Event, buffer),
		fallback: fallback.WithField("sink", name),
	}
}

func (w *sinkWorker) enqueue(event Event) {
	select {
	case w.events <- cloneEvent(event):
	default:
		w.dropped.Add(1)
	}
}

func (w *sinkWorker) run() {
	for event := range w.events {
		if wait := time.Until(w.nextRetry); w.failures > 0 && wait > 0 {
			time.Sleep(wait)
		}
		if err := w.sink.Write(event); err != nil {
			w.fail(err)
			continue
		}
		w.failures = 0
		w.nextRetry = time.Time{}
	}
}

func (w *sinkWorker) fail(err error) {
	w.failures++
	shift := w.failures
	if shift > 5 {
		shift = 5
	}
	delay := time.Duration(1<<shift) * 100 * time.Millisecond
	w.nextRetry = time.Now().Add(delay)
	w.fallback.WithError(err).WithField("retryIn", delay).Warn("sink write failed")
}
