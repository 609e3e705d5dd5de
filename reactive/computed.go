package reactive

import "fmt"

// Computed is a lazily evaluated, memoized derivation over other nodes.
//
// The derivation must be pure with respect to what it reads: the same
// dependency values must produce the same result. The engine cannot detect
// hidden inputs, and a computed that reads them will serve stale values.
type Computed[T any] struct {
	rs *ReactiveSystem
	id NodeID
}

// NewComputed registers fn as a derivation. Nothing runs until the first Get.
func NewComputed[T any](rs *ReactiveSystem, fn func() (T, error), opts ...NodeOption) *Computed[T] {
	n := rs.newNode(kindComputed, rs.activeScope(), opts...)
	n.state = cacheDirty
	n.derive = func() (any, error) {
		return fn()
	}
	return &Computed[T]{rs: rs, id: n.id}
}

// Memo is NewComputed for derivations that cannot fail.
func Memo[T any](rs *ReactiveSystem, fn func() T, opts ...NodeOption) *Computed[T] {
	return NewComputed(rs, func() (T, error) {
		return fn(), nil
	}, opts...)
}

func (c *Computed[T]) ID() NodeID {
	return c.id
}

// Get returns the cached value, evaluating first when it is dirty.
// Evaluation errors are returned and not cached.
func (c *Computed[T]) Get() (T, error) {
	v, err := c.rs.Get(c.id)
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](v), nil
}

// Value is Get that panics on error.
func (c *Computed[T]) Value() T {
	v, err := c.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Peek reads without registering a dependency.
func (c *Computed[T]) Peek() (T, error) {
	v, err := c.rs.Peek(c.id)
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](v), nil
}

// IsDirty reports whether the next Get has to revalidate the cached value.
func (c *Computed[T]) IsDirty() bool {
	n, ok := c.rs.nodes[c.id]
	return !ok || n.state == cacheDirty
}

func (c *Computed[T]) Dispose() {
	c.rs.Dispose(c.id)
}

func (rs *ReactiveSystem) readComputed(n *node) (any, error) {
	if n.computing {
		return nil, rs.cycle(n)
	}
	if err := rs.refresh(n); err != nil {
		return nil, err
	}
	rs.link(n)
	return n.value, nil
}

// refresh brings a dirty computed up to date. When none of the versions it
// saw last time have moved, the cached value is kept without evaluating. A
// failed run always evaluates again.
func (rs *ReactiveSystem) refresh(n *node) error {
	if n.state == cacheClean {
		return nil
	}
	if n.evaluated && !rs.depsChanged(n) {
		n.state = cacheClean
		return nil
	}
	return rs.evaluate(n)
}

// depsChanged walks the reads of the last run in order and stops at the
// first dependency whose version moved.
func (rs *ReactiveSystem) depsChanged(n *node) bool {
	for _, r := range n.reads {
		dep, ok := rs.nodes[r.id]
		if !ok {
			return true
		}
		if dep.kind == kindComputed {
			if dep.computing {
				return true
			}
			if err := rs.refresh(dep); err != nil {
				return true
			}
		}
		if dep.version != r.version {
			return true
		}
	}
	return false
}

func (rs *ReactiveSystem) evaluate(n *node) error {
	n.computing = true
	defer func() {
		n.computing = false
	}()

	var next any
	err := rs.track(n, func() error {
		v, err := n.derive()
		next = v
		return err
	})
	rs.stats.Recomputes++
	if err != nil {
		n.evaluated = false
		n.state = cacheDirty
		return fmt.Errorf("computed %d: %w", n.id, err)
	}

	if !n.evaluated || !n.equals(n.value, next) {
		n.value = next
		n.version++
	}
	n.evaluated = true
	n.state = cacheClean
	return nil
}
