package reactive

import "fmt"

//go:generate go run ../cmd/codegen --out watch_generated.go

// Change carries the previous and current value of one watched source.
type Change[T any] struct {
	Old T
	New T
}

// Changed reports whether Old and New differ under structural equality.
func (c Change[T]) Changed() bool {
	return !EqualityStructural.equalFunc()(c.Old, c.New)
}

// Watch calls fn with the new and previous value of src whenever it
// changes. Unlike Effect it does not run at creation unless
// Immediate(true) is passed, in which case oldValue is T's zero value.
func Watch[T any](rs *ReactiveSystem, src Source[T], fn func(newValue, oldValue T) error, opts ...EffectOption) Disposer {
	return Watch1(rs, src, func(c0 Change[T]) error {
		return fn(c0.New, c0.Old)
	}, opts...)
}

// WatchMany is the untyped form of Watch over any number of sources. next
// and prev are indexed like sources.
func WatchMany(rs *ReactiveSystem, sources []NodeID, fn func(next, prev []any) error, opts ...EffectOption) Disposer {
	return rs.watch(sources, fn, opts...)
}

func (rs *ReactiveSystem) watch(sources []NodeID, fn func(next, prev []any) error, opts ...EffectOption) Disposer {
	cfg := effectConfig{immediate: false}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.sources = append(append([]NodeID(nil), sources...), cfg.sources...)
	if len(cfg.sources) == 0 {
		rs.report(0, fmt.Errorf("%w: watch needs at least one source", ErrInvalidHandle))
		return func() {}
	}

	e := &effectRunner{
		sources: cfg.sources,
		watch:   fn,
	}
	return rs.newEffect(e, cfg)
}
