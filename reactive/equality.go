package reactive

import "reflect"

// EqualityPolicy decides when a write counts as a change.
type EqualityPolicy uint8

const (
	// EqualityStructural compares with reflect.DeepEqual, so writing a fresh
	// but equal slice, map or struct does not notify.
	EqualityStructural EqualityPolicy = iota
	// EqualityIdentity compares comparable values with == and maps, slices,
	// pointers, funcs and channels by reference. Any other value that cannot
	// be compared is treated as changed.
	EqualityIdentity
)

func (p EqualityPolicy) String() string {
	switch p {
	case EqualityStructural:
		return "structural"
	case EqualityIdentity:
		return "identity"
	default:
		return "unknown"
	}
}

func (p EqualityPolicy) equalFunc() func(a, b any) bool {
	if p == EqualityIdentity {
		return identityEqual
	}
	return reflect.DeepEqual
}

func identityEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return false
}
