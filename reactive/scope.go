package reactive

import (
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// Scope owns the nodes created while it is active. Disposing it disposes
// them all, along with any scopes opened inside it.
type Scope struct {
	rs       *ReactiveSystem
	parent   *Scope
	owned    mapset.Set[NodeID]
	children []*Scope
	disposed bool
}

// NewScope opens a scope owned by the currently active one, if any.
func NewScope(rs *ReactiveSystem) *Scope {
	return newScope(rs, rs.activeScope())
}

func newScope(rs *ReactiveSystem, parent *Scope) *Scope {
	s := &Scope{
		rs:     rs,
		parent: parent,
		owned:  mapset.NewThreadUnsafeSet[NodeID](),
	}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	return s
}

// EffectScope runs fn inside a fresh scope and returns its disposer. An
// error from fn goes to the error channel; the scope stays usable.
func EffectScope(rs *ReactiveSystem, fn ErrFn) Disposer {
	s := NewScope(rs)
	if err := s.Run(fn); err != nil {
		rs.report(0, fmt.Errorf("effect scope: %w", err))
	}
	return s.Dispose
}

// Run executes fn with s as the owner of newly created nodes.
func (s *Scope) Run(fn ErrFn) error {
	if s.disposed {
		return fmt.Errorf("%w: scope already disposed", ErrInvalidHandle)
	}
	s.rs.pushScope(s)
	defer s.rs.popScope()
	return fn()
}

// Len reports how many live nodes the scope owns directly.
func (s *Scope) Len() int {
	return s.owned.Cardinality()
}

func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	defer s.rs.hold()()

	children := s.children
	s.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	ids := s.owned.ToSlice()
	slices.Sort(ids)
	for i := len(ids) - 1; i >= 0; i-- {
		s.rs.Dispose(ids[i])
	}
	s.owned.Clear()

	if s.parent != nil {
		s.parent.children = slices.DeleteFunc(s.parent.children, func(c *Scope) bool {
			return c == s
		})
	}
}

func (s *Scope) adopt(n *node) {
	n.owner = s
	s.owned.Add(n.id)
}

func (s *Scope) release(id NodeID) {
	s.owned.Remove(id)
}

func (rs *ReactiveSystem) activeScope() *Scope {
	if len(rs.scopes) == 0 {
		return nil
	}
	return rs.scopes[len(rs.scopes)-1]
}

func (rs *ReactiveSystem) pushScope(s *Scope) {
	rs.scopes = append(rs.scopes, s)
}

func (rs *ReactiveSystem) popScope() {
	rs.scopes = rs.scopes[:len(rs.scopes)-1]
}
