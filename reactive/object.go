package reactive

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Object is a reactive view of a map[string]any. Every property is backed by
// its own signal, and nested maps are wrapped into child Objects the first
// time they are reached.
type Object struct {
	rs   *ReactiveSystem
	root *objectRoot
	path string

	shape NodeID
	props map[string]NodeID

	// origin is the parent property this object was wrapped from, and the
	// version of that property at the time.
	origin        NodeID
	originVersion uint64
}

// objectRoot is shared by an Object tree. Wrapped children are indexed by
// the hash of their dotted path.
type objectRoot struct {
	scope    *Scope
	children map[uint64]*Object
}

type deletedProp struct{}

var tombstone = deletedProp{}

// NewObject wraps value. The map is copied shallowly; nested maps are only
// read when first accessed.
func NewObject(rs *ReactiveSystem, value map[string]any) *Object {
	root := &objectRoot{
		scope:    rs.activeScope(),
		children: map[uint64]*Object{},
	}
	return newObject(rs, root, "", value)
}

func newObject(rs *ReactiveSystem, root *objectRoot, path string, value map[string]any) *Object {
	o := &Object{
		rs:    rs,
		root:  root,
		path:  path,
		props: make(map[string]NodeID, len(value)),
	}
	o.shape = o.newProp(0)
	for key, v := range value {
		o.props[key] = o.newProp(v)
	}
	return o
}

// newProp creates a property signal owned by the scope the tree was built in,
// not whichever effect happens to touch the object first.
func (o *Object) newProp(v any) NodeID {
	n := o.rs.newNode(kindSignal, o.root.scope, WithEquals(propEquals(o.rs.equality)))
	n.value = v
	return n.id
}

// propEquals never treats maps as equal so that replacing a nested map
// always drops the wrapped child, even if a child write made it diverge.
func propEquals(p EqualityPolicy) func(a, b any) bool {
	eq := p.equalFunc()
	return func(a, b any) bool {
		if _, ok := a.(map[string]any); ok {
			return false
		}
		if _, ok := b.(map[string]any); ok {
			return false
		}
		return eq(a, b)
	}
}

// Path is the dotted path of o from the root object, empty for the root.
func (o *Object) Path() string {
	return o.path
}

// Signal returns the id of the signal backing key.
func (o *Object) Signal(key string) (NodeID, error) {
	id, ok := o.props[key]
	if !ok {
		return 0, o.missing(key)
	}
	return id, nil
}

// Get reads key. Nested maps come back as *Object.
func (o *Object) Get(key string) (any, error) {
	if err := o.alive(); err != nil {
		return nil, err
	}
	id, ok := o.props[key]
	if !ok {
		// track the shape so the reader learns when key appears
		if _, err := o.rs.Get(o.shape); err != nil {
			return nil, err
		}
		return nil, o.missing(key)
	}
	v, err := o.rs.Get(id)
	if err != nil {
		return nil, err
	}
	if v == tombstone {
		return nil, o.missing(key)
	}
	if m, ok := v.(map[string]any); ok {
		return o.child(key, id, m), nil
	}
	return v, nil
}

// Object returns the wrapped nested object stored under key.
func (o *Object) Object(key string) (*Object, error) {
	v, err := o.Get(key)
	if err != nil {
		return nil, err
	}
	child, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("%w: %q holds %T, not an object", ErrInvalidHandle, o.join(key), v)
	}
	return child, nil
}

// Lookup resolves a dotted path such as "user.address.city".
func (o *Object) Lookup(path string) (any, error) {
	keys := strings.Split(path, ".")
	cur := o
	for _, key := range keys[:len(keys)-1] {
		next, err := cur.Object(key)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur.Get(keys[len(keys)-1])
}

// Set writes key, adding it when missing. Setting a map replaces the
// nested object wholesale. Map values never compare equal, so writing a map
// always notifies readers of key, even one deep-equal to the stored map.
func (o *Object) Set(key string, v any) error {
	if err := o.alive(); err != nil {
		return err
	}
	if obj, ok := v.(*Object); ok {
		v = obj.Snapshot()
	}
	id, ok := o.props[key]
	if !ok {
		o.props[key] = o.newProp(v)
		return o.bumpShape()
	}
	prev, err := o.rs.Peek(id)
	if err != nil {
		return err
	}
	if err := o.rs.Set(id, v); err != nil {
		return err
	}
	if prev == tombstone {
		return o.bumpShape()
	}
	return nil
}

// Delete removes key. Readers of key and of Keys are notified.
func (o *Object) Delete(key string) error {
	if err := o.alive(); err != nil {
		return err
	}
	id, ok := o.props[key]
	if !ok {
		return nil
	}
	prev, err := o.rs.Peek(id)
	if err != nil || prev == tombstone {
		return err
	}
	defer o.rs.hold()()
	if err := o.rs.Set(id, tombstone); err != nil {
		return err
	}
	return o.bumpShape()
}

func (o *Object) Has(key string) bool {
	if _, err := o.rs.Get(o.shape); err != nil {
		return false
	}
	id, ok := o.props[key]
	if !ok {
		return false
	}
	v, err := o.rs.Peek(id)
	return err == nil && v != tombstone
}

// Keys lists the live keys in sorted order.
func (o *Object) Keys() []string {
	if _, err := o.rs.Get(o.shape); err != nil {
		return nil
	}
	keys := make([]string, 0, len(o.props))
	for key, id := range o.props {
		if v, err := o.rs.Peek(id); err == nil && v != tombstone {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

// Snapshot copies the object, including wrapped children, back into plain
// maps. Every property read is tracked.
func (o *Object) Snapshot() map[string]any {
	out := map[string]any{}
	for _, key := range o.Keys() {
		v, err := o.Get(key)
		if err != nil {
			continue
		}
		if child, ok := v.(*Object); ok {
			out[key] = child.Snapshot()
			continue
		}
		out[key] = v
	}
	return out
}

// child returns the wrapper for the map stored under key, building a new
// one when the property was replaced since the cached wrapper was made.
func (o *Object) child(key string, prop NodeID, m map[string]any) *Object {
	path := o.join(key)
	h := xxhash.Sum64String(path)
	version := o.rs.nodes[prop].version
	if c, ok := o.root.children[h]; ok && c.path == path && c.origin == prop && c.originVersion == version {
		return c
	}
	// readers of the stale wrapper must not rerun before the new one is indexed
	defer o.rs.hold()()
	if stale, ok := o.root.children[h]; ok {
		stale.release()
	}
	c := newObject(o.rs, o.root, path, m)
	c.origin = prop
	c.originVersion = version
	o.root.children[h] = c
	return c
}

// release drops a replaced wrapper and everything wrapped below it.
func (o *Object) release() {
	prefix := o.path + "."
	for h, c := range o.root.children {
		if c.path == o.path || strings.HasPrefix(c.path, prefix) {
			delete(o.root.children, h)
			c.disposeProps()
		}
	}
}

func (o *Object) disposeProps() {
	for _, id := range o.props {
		o.rs.Dispose(id)
	}
	o.rs.Dispose(o.shape)
}

func (o *Object) bumpShape() error {
	return o.rs.Update(o.shape, func(v any) any {
		return v.(int) + 1
	})
}

func (o *Object) alive() error {
	if !o.rs.Has(o.shape) {
		return fmt.Errorf("%w: object %q was released", ErrInvalidHandle, o.path)
	}
	return nil
}

func (o *Object) join(key string) string {
	if o.path == "" {
		return key
	}
	return o.path + "." + key
}

func (o *Object) missing(key string) error {
	return fmt.Errorf("%w: no property %q", ErrInvalidHandle, o.join(key))
}
