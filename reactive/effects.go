package reactive

import "fmt"

type ErrFn func() error

// Disposer stops an effect. Calling it more than once is a no-op.
type Disposer func()

type effectConfig struct {
	immediate bool
	sources   []NodeID
}

type EffectOption func(*effectConfig)

// Immediate controls whether the callback runs at creation. Deferring only
// applies to effects with explicit sources, since a tracked effect has to
// run once to learn what it depends on. Either way, writes landing while the
// callback runs do not schedule another run, see Effect.
func Immediate(immediate bool) EffectOption {
	return func(cfg *effectConfig) {
		cfg.immediate = immediate
	}
}

// Sources pins an effect's dependencies to ids. The callback itself then
// runs untracked.
func Sources(ids ...NodeID) EffectOption {
	return func(cfg *effectConfig) {
		cfg.sources = append(cfg.sources, ids...)
	}
}

type effectRunner struct {
	fn      ErrFn
	sources []NodeID

	// watch callbacks get the previous snapshot of every source
	watch func(next, prev []any) error
	prev  []any

	children *Scope

	pending  bool
	running  bool
	disposed bool
}

// Effect runs fn now and again whenever something it read changes.
//
// An effect is never requeued while it runs. Changes made during a run to
// anything it read are dropped for that effect, whether fn wrote them itself
// or another effect flushed from inside fn did. fn may then have seen the
// value from before those writes, and does not run again until one of its
// dependencies changes after the run.
func Effect(rs *ReactiveSystem, fn ErrFn, opts ...EffectOption) Disposer {
	cfg := effectConfig{immediate: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return rs.newEffect(&effectRunner{fn: fn, sources: cfg.sources}, cfg)
}

func (rs *ReactiveSystem) newEffect(e *effectRunner, cfg effectConfig) Disposer {
	n := rs.newNode(kindEffect, rs.activeScope())
	n.effect = e
	e.children = newScope(rs, nil)

	if !cfg.immediate && len(e.sources) == 0 {
		rs.logger.Warn("reactive: effect without sources cannot be deferred, running now", "effect", n.id)
		cfg.immediate = true
	}

	if cfg.immediate {
		rs.runEffect(n)
	} else {
		err := rs.track(n, func() error {
			next, err := rs.readSources(e.sources)
			if err != nil {
				return err
			}
			e.prev = next
			return nil
		})
		n.evaluated = true
		if err != nil {
			rs.report(n.id, &CallbackError{Effect: n.id, Err: err})
		}
	}

	id := n.id
	return func() {
		rs.Dispose(id)
	}
}

func (rs *ReactiveSystem) enqueue(n *node) {
	e := n.effect
	if e == nil || e.disposed || e.pending || e.running {
		return
	}
	e.pending = true
	rs.queue = append(rs.queue, n.id)
}

func (rs *ReactiveSystem) runQueued(id NodeID) {
	n, ok := rs.nodes[id]
	if !ok || n.effect == nil {
		return
	}
	e := n.effect
	if !e.pending || e.disposed {
		return
	}
	e.pending = false
	if n.evaluated && !rs.depsChanged(n) {
		return
	}
	rs.runEffect(n)
}

func (rs *ReactiveSystem) runEffect(n *node) {
	e := n.effect
	e.children.Dispose()
	e.children = newScope(rs, nil)

	e.running = true
	defer func() {
		e.running = false
	}()

	rs.stats.EffectRuns++
	err := func() error {
		rs.pushScope(e.children)
		defer rs.popScope()
		return rs.track(n, func() error {
			return rs.invoke(e)
		})
	}()
	n.evaluated = true

	if err != nil {
		rs.report(n.id, &CallbackError{Effect: n.id, Err: err})
	}
}

func (rs *ReactiveSystem) invoke(e *effectRunner) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if len(e.sources) == 0 {
		return e.fn()
	}

	next, err := rs.readSources(e.sources)
	if err != nil {
		return err
	}

	if e.watch == nil {
		rs.Untrack(func() {
			err = e.fn()
		})
		return err
	}

	prev := e.prev
	if prev == nil {
		prev = make([]any, len(next))
	} else if !rs.snapshotChanged(e.sources, prev, next) {
		return nil
	}
	e.prev = next
	rs.Untrack(func() {
		err = e.watch(next, prev)
	})
	return err
}

func (rs *ReactiveSystem) readSources(ids []NodeID) ([]any, error) {
	values := make([]any, len(ids))
	for i, id := range ids {
		v, err := rs.Get(id)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}

func (rs *ReactiveSystem) snapshotChanged(ids []NodeID, prev, next []any) bool {
	fallback := rs.equality.equalFunc()
	for i, id := range ids {
		equals := fallback
		if n, ok := rs.nodes[id]; ok {
			equals = n.equals
		}
		if !equals(prev[i], next[i]) {
			return true
		}
	}
	return false
}
