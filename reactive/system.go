// Package reactive is a dependency-tracking reactivity engine: signals,
// lazily cached computeds, and effects scheduled when their dependencies
// change. All state lives on a ReactiveSystem, so independent graphs can
// coexist. A ReactiveSystem is not safe for concurrent use.
package reactive

import (
	"io"
	"log/slog"
	"slices"
)

// Scheduling selects when queued effects run.
type Scheduling uint8

const (
	// SchedulingSync runs queued effects right after the write that queued
	// them, or at the end of the outermost Batch. Effects written to by other
	// effects are drained in the same flush.
	SchedulingSync Scheduling = iota
	// SchedulingBatched holds queued effects until Flush is called or the
	// outermost Batch ends. Each flush runs one round; effects queued while
	// it runs wait for the next one.
	SchedulingBatched
)

func (s Scheduling) String() string {
	switch s {
	case SchedulingSync:
		return "sync"
	case SchedulingBatched:
		return "batched"
	default:
		return "unknown"
	}
}

const DefaultMaxFlushRounds = 100

type OnErrorFunc func(from NodeID, err error)

// Stats counts engine work since the system was created.
type Stats struct {
	Recomputes    int
	EffectRuns    int
	Notifications int
	Flushes       int
	Nodes         int
}

type ReactiveSystem struct {
	nodes  map[NodeID]*node
	lastID NodeID

	frames []*frame
	scopes []*Scope

	batchDepth int
	queue      []NodeID
	flushing   bool
	epoch      uint64

	scheduling     Scheduling
	equality       EqualityPolicy
	maxFlushRounds int
	onError        OnErrorFunc
	logger         *slog.Logger

	stats Stats
}

type Option func(*ReactiveSystem)

func WithScheduling(s Scheduling) Option {
	return func(rs *ReactiveSystem) {
		rs.scheduling = s
	}
}

func WithEquality(p EqualityPolicy) Option {
	return func(rs *ReactiveSystem) {
		rs.equality = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(rs *ReactiveSystem) {
		if logger != nil {
			rs.logger = logger
		}
	}
}

func WithMaxFlushRounds(n int) Option {
	return func(rs *ReactiveSystem) {
		if n > 0 {
			rs.maxFlushRounds = n
		}
	}
}

// CreateReactiveSystem builds an empty graph. onError receives every effect
// failure; when it is nil failures are logged at error level instead.
func CreateReactiveSystem(onError OnErrorFunc, opts ...Option) *ReactiveSystem {
	rs := &ReactiveSystem{
		nodes:          map[NodeID]*node{},
		maxFlushRounds: DefaultMaxFlushRounds,
		onError:        onError,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

func (rs *ReactiveSystem) Scheduling() Scheduling {
	return rs.scheduling
}

func (rs *ReactiveSystem) Stats() Stats {
	s := rs.stats
	s.Nodes = len(rs.nodes)
	return s
}

func (rs *ReactiveSystem) StartBatch() {
	rs.batchDepth++
}

func (rs *ReactiveSystem) EndBatch() {
	if rs.batchDepth == 0 {
		return
	}
	rs.batchDepth--
	if rs.batchDepth == 0 {
		rs.Flush()
	}
}

// Batch runs cb with effect flushing deferred until it returns. Computeds
// read after the batch see every write made inside it.
func (rs *ReactiveSystem) Batch(cb func()) {
	rs.StartBatch()
	defer rs.EndBatch()
	cb()
}

// Pending reports how many effects are queued and waiting for a flush.
func (rs *ReactiveSystem) Pending() int {
	return len(rs.queue)
}

// Flush runs queued effects. Under SchedulingSync it drains the queue,
// including effects queued by effects; under SchedulingBatched it runs the
// effects queued before the call and leaves the rest for the next Flush.
func (rs *ReactiveSystem) Flush() {
	if rs.flushing || len(rs.queue) == 0 {
		return
	}
	rs.flushing = true
	defer func() {
		rs.flushing = false
	}()
	rs.stats.Flushes++

	if rs.scheduling == SchedulingBatched {
		rs.runRound()
		return
	}

	for round := 0; len(rs.queue) > 0; round++ {
		if round >= rs.maxFlushRounds {
			dropped := rs.dropQueue()
			rs.logger.Warn("reactive: flush round limit reached", "rounds", round, "dropped", len(dropped))
			for _, id := range dropped {
				rs.report(id, &CallbackError{Effect: id, Err: ErrRunawayEffects})
			}
			return
		}
		rs.runRound()
	}
}

func (rs *ReactiveSystem) runRound() {
	round := rs.queue
	rs.queue = nil
	slices.Sort(round)
	rs.logger.Debug("reactive: flushing effects", "count", len(round))
	for _, id := range round {
		rs.runQueued(id)
	}
}

func (rs *ReactiveSystem) dropQueue() []NodeID {
	dropped := rs.queue
	rs.queue = nil
	for _, id := range dropped {
		if n, ok := rs.nodes[id]; ok && n.effect != nil {
			n.effect.pending = false
		}
	}
	return dropped
}

// hold defers flushing until the returned func runs. Unlike Batch, releasing
// it is not a tick under SchedulingBatched.
func (rs *ReactiveSystem) hold() func() {
	rs.batchDepth++
	return func() {
		rs.batchDepth--
		rs.afterWrite()
	}
}

// afterWrite flushes when the active policy asks for it.
func (rs *ReactiveSystem) afterWrite() {
	if rs.scheduling == SchedulingSync && rs.batchDepth == 0 {
		rs.Flush()
	}
}

func (rs *ReactiveSystem) report(from NodeID, err error) {
	if err == nil {
		return
	}
	if rs.onError != nil {
		rs.onError(from, err)
		return
	}
	rs.logger.Error("reactive: unhandled error", "node", from, "err", err)
}
