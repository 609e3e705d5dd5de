package reactive

// Signal is a typed handle to a writable cell.
type Signal[T any] struct {
	rs *ReactiveSystem
	id NodeID
}

func NewSignal[T any](rs *ReactiveSystem, initialValue T, opts ...NodeOption) *Signal[T] {
	return &Signal[T]{
		rs: rs,
		id: rs.Create(initialValue, opts...),
	}
}

func (s *Signal[T]) ID() NodeID {
	return s.id
}

func (s *Signal[T]) Get() (T, error) {
	v, err := s.rs.Get(s.id)
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](v), nil
}

func (s *Signal[T]) Set(v T) error {
	return s.rs.Set(s.id, v)
}

func (s *Signal[T]) Update(fn func(T) T) error {
	v, err := s.Peek()
	if err != nil {
		return err
	}
	return s.Set(fn(v))
}

func (s *Signal[T]) Peek() (T, error) {
	v, err := s.rs.Peek(s.id)
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](v), nil
}

// Value is Get that panics on a disposed signal.
func (s *Signal[T]) Value() T {
	v, err := s.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// SetValue is Set that panics on a disposed signal.
func (s *Signal[T]) SetValue(v T) {
	if err := s.Set(v); err != nil {
		panic(err)
	}
}

func (s *Signal[T]) Dispose() {
	s.rs.Dispose(s.id)
}

// Source is anything a watch can observe.
type Source[T any] interface {
	ID() NodeID
	Get() (T, error)
}

var (
	_ Source[int] = (*Signal[int])(nil)
	_ Source[int] = (*Computed[int])(nil)
)

// as converts a stored value back to T, mapping nil to T's zero value.
func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}
