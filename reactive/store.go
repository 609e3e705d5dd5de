package reactive

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// NodeID identifies a signal, computed or effect within one ReactiveSystem.
// IDs grow with creation order and are never reused.
type NodeID uint64

type nodeKind uint8

const (
	kindSignal nodeKind = iota
	kindComputed
	kindEffect
)

func (k nodeKind) String() string {
	switch k {
	case kindSignal:
		return "signal"
	case kindComputed:
		return "computed"
	case kindEffect:
		return "effect"
	default:
		return "unknown"
	}
}

type cacheState uint8

const (
	cacheDirty cacheState = iota
	cacheClean
)

type depVersion struct {
	id      NodeID
	version uint64
}

type node struct {
	id   NodeID
	kind nodeKind

	value   any
	version uint64
	equals  func(a, b any) bool

	// subs are the computeds and effects that read this node in their last run.
	subs mapset.Set[NodeID]
	// deps are the nodes read during the last tracked run, reads holds them
	// in read order together with the version that was seen.
	deps  mapset.Set[NodeID]
	reads []depVersion

	state     cacheState
	evaluated bool
	computing bool
	derive    func() (any, error)
	notified  uint64

	effect *effectRunner
	owner  *Scope
}

type NodeOption func(*node)

// WithEquals overrides the system equality policy for one node.
func WithEquals[T any](fn func(a, b T) bool) NodeOption {
	return func(n *node) {
		n.equals = func(a, b any) bool {
			return fn(as[T](a), as[T](b))
		}
	}
}

func (rs *ReactiveSystem) newNode(kind nodeKind, owner *Scope, opts ...NodeOption) *node {
	rs.lastID++
	n := &node{
		id:     rs.lastID,
		kind:   kind,
		equals: rs.equality.equalFunc(),
		subs:   mapset.NewThreadUnsafeSet[NodeID](),
		deps:   mapset.NewThreadUnsafeSet[NodeID](),
	}
	for _, opt := range opts {
		opt(n)
	}
	rs.nodes[n.id] = n
	if owner != nil {
		owner.adopt(n)
	}
	return n
}

// Create allocates a new signal holding initial.
func (rs *ReactiveSystem) Create(initial any, opts ...NodeOption) NodeID {
	n := rs.newNode(kindSignal, rs.activeScope(), opts...)
	n.value = initial
	return n.id
}

// Get returns the value of a signal or computed. Inside a tracked run the
// node becomes a dependency of the innermost running computation.
func (rs *ReactiveSystem) Get(id NodeID) (any, error) {
	n, ok := rs.nodes[id]
	if !ok {
		return nil, invalidHandle(id, "does not exist")
	}
	switch n.kind {
	case kindSignal:
		rs.link(n)
		return n.value, nil
	case kindComputed:
		return rs.readComputed(n)
	default:
		return nil, invalidHandle(id, "is an effect and has no value")
	}
}

// Peek is Get without dependency tracking.
func (rs *ReactiveSystem) Peek(id NodeID) (v any, err error) {
	rs.Untrack(func() {
		v, err = rs.Get(id)
	})
	return v, err
}

// Set stores v in a signal. Writes equal to the stored value (per the
// node's equality) are dropped without notifying anyone.
func (rs *ReactiveSystem) Set(id NodeID, v any) error {
	n, ok := rs.nodes[id]
	if !ok {
		return invalidHandle(id, "does not exist")
	}
	if n.kind != kindSignal {
		return invalidHandle(id, "is a "+n.kind.String()+", not a writable signal")
	}
	if n.equals(n.value, v) {
		return nil
	}
	n.value = v
	n.version++
	rs.epoch++
	rs.notify(n)
	rs.afterWrite()
	return nil
}

// Update applies fn to the current signal value without tracking the read.
func (rs *ReactiveSystem) Update(id NodeID, fn func(any) any) error {
	v, err := rs.Peek(id)
	if err != nil {
		return err
	}
	return rs.Set(id, fn(v))
}

// Has reports whether id refers to a live node.
func (rs *ReactiveSystem) Has(id NodeID) bool {
	_, ok := rs.nodes[id]
	return ok
}

// Subscribers returns the ids currently depending on id, in creation order.
func (rs *ReactiveSystem) Subscribers(id NodeID) []NodeID {
	n, ok := rs.nodes[id]
	if !ok {
		return nil
	}
	return sortedIDs(n.subs)
}

// Dependencies returns the ids read by the last tracked run of id.
func (rs *ReactiveSystem) Dependencies(id NodeID) []NodeID {
	n, ok := rs.nodes[id]
	if !ok {
		return nil
	}
	return sortedIDs(n.deps)
}

// notify flags dependent computeds dirty, transitively, and queues dependent
// effects. Each node is visited once per write.
func (rs *ReactiveSystem) notify(n *node) {
	for _, id := range sortedIDs(n.subs) {
		sub, ok := rs.nodes[id]
		if !ok || sub.notified == rs.epoch {
			continue
		}
		sub.notified = rs.epoch
		rs.stats.Notifications++
		switch sub.kind {
		case kindComputed:
			sub.state = cacheDirty
			rs.notify(sub)
		case kindEffect:
			rs.enqueue(sub)
		}
	}
}

// Dispose removes a node from the graph. Computeds that depended on it are
// flagged dirty and effects that depended on it are queued, so their next
// run reports the missing dependency.
func (rs *ReactiveSystem) Dispose(id NodeID) {
	n, ok := rs.nodes[id]
	if !ok {
		return
	}
	defer rs.hold()()
	rs.disposeNode(n)
}

func (rs *ReactiveSystem) disposeNode(n *node) {
	delete(rs.nodes, n.id)
	rs.logger.Debug("reactive: dispose", "node", n.id, "kind", n.kind.String())

	for _, id := range n.deps.ToSlice() {
		if dep, ok := rs.nodes[id]; ok {
			dep.subs.Remove(n.id)
		}
	}
	n.deps.Clear()
	n.reads = nil

	rs.epoch++
	for _, id := range sortedIDs(n.subs) {
		sub, ok := rs.nodes[id]
		if !ok {
			continue
		}
		sub.deps.Remove(n.id)
		if sub.notified == rs.epoch {
			continue
		}
		sub.notified = rs.epoch
		switch sub.kind {
		case kindComputed:
			sub.state = cacheDirty
			rs.notify(sub)
		case kindEffect:
			rs.enqueue(sub)
		}
	}
	n.subs.Clear()

	if n.effect != nil {
		n.effect.disposed = true
		n.effect.pending = false
		if n.effect.children != nil {
			n.effect.children.Dispose()
		}
	}
	if n.owner != nil {
		n.owner.release(n.id)
	}
}

func sortedIDs(s mapset.Set[NodeID]) []NodeID {
	ids := s.ToSlice()
	slices.Sort(ids)
	return ids
}
