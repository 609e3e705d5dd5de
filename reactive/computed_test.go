package reactive_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/signalgraph/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputedIsLazy(t *testing.T) {
	rs := newSystem(t)
	a := reactive.NewSignal(rs, 1)

	callCount := 0
	c := reactive.Memo(rs, func() int {
		callCount++
		return a.Value() * 10
	})
	assert.Equal(t, 0, callCount)
	assert.True(t, c.IsDirty())

	assert.Equal(t, 10, c.Value())
	assert.Equal(t, 1, callCount)
	assert.False(t, c.IsDirty())

	a.SetValue(2)
	a.SetValue(3)
	assert.True(t, c.IsDirty())
	assert.Equal(t, 1, callCount)

	assert.Equal(t, 30, c.Value())
	assert.Equal(t, 2, callCount)
	assert.Equal(t, 30, c.Value())
	assert.Equal(t, 2, callCount)
}

func TestComputedRederivesAfterRoundTripWrite(t *testing.T) {
	rs := newSystem(t)
	a := reactive.NewSignal(rs, 1)

	callCount := 0
	c := reactive.Memo(rs, func() int {
		callCount++
		return a.Value()
	})
	c.Value()

	// A -> 2 -> 1 leaves the version moved, so c has to re-derive once
	a.SetValue(2)
	a.SetValue(1)
	assert.Equal(t, 1, c.Value())
	assert.Equal(t, 2, callCount)
}

func TestComputedDropsStaleDependencies(t *testing.T) {
	rs := newSystem(t)
	useX := reactive.NewSignal(rs, true)
	x := reactive.NewSignal(rs, "x")
	y := reactive.NewSignal(rs, "y")

	callCount := 0
	c := reactive.Memo(rs, func() string {
		callCount++
		if useX.Value() {
			return x.Value()
		}
		return y.Value()
	})

	assert.Equal(t, "x", c.Value())
	assert.ElementsMatch(t, []reactive.NodeID{useX.ID(), x.ID()}, rs.Dependencies(c.ID()))

	useX.SetValue(false)
	assert.Equal(t, "y", c.Value())
	assert.Equal(t, 2, callCount)
	assert.ElementsMatch(t, []reactive.NodeID{useX.ID(), y.ID()}, rs.Dependencies(c.ID()))
	assert.Empty(t, rs.Subscribers(x.ID()))

	x.SetValue("xx")
	assert.False(t, c.IsDirty())
	assert.Equal(t, "y", c.Value())
	assert.Equal(t, 2, callCount)
}

func TestComputedErrorsAreNotCached(t *testing.T) {
	rs := newSystem(t)
	a := reactive.NewSignal(rs, 1)

	errBoom := errors.New("boom")
	fail := true
	callCount := 0
	c := reactive.NewComputed(rs, func() (int, error) {
		callCount++
		v := a.Value()
		if fail {
			return 0, errBoom
		}
		return v, nil
	})

	_, err := c.Get()
	require.ErrorIs(t, err, errBoom)
	assert.True(t, c.IsDirty())

	fail = false
	v, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, callCount)
}

func TestComputedErrorAfterSuccessIsNotCached(t *testing.T) {
	rs := newSystem(t)
	a := reactive.NewSignal(rs, 1)

	errBoom := errors.New("boom")
	callCount := 0
	c := reactive.NewComputed(rs, func() (int, error) {
		callCount++
		v := a.Value()
		if v == 2 {
			return 0, errBoom
		}
		return v * 10, nil
	})
	d := reactive.NewComputed(rs, func() (int, error) {
		v, err := c.Get()
		return v + 1, err
	})

	v, err := d.Get()
	require.NoError(t, err)
	assert.Equal(t, 11, v)
	assert.Equal(t, 1, callCount)

	a.SetValue(2)
	_, err = c.Get()
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, callCount)

	// no write in between, the derivation still runs and still fails
	_, err = c.Get()
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, callCount)
	assert.True(t, c.IsDirty())

	_, err = d.Get()
	require.ErrorIs(t, err, errBoom)
	_, err = d.Get()
	require.ErrorIs(t, err, errBoom)

	a.SetValue(3)
	v, err = d.Get()
	require.NoError(t, err)
	assert.Equal(t, 31, v)
	v, err = c.Get()
	require.NoError(t, err)
	assert.Equal(t, 30, v)
}

func TestComputedCycleAfterSuccessIsNotCached(t *testing.T) {
	rs := newSystem(t)
	a := reactive.NewSignal(rs, false)

	callCount := 0
	var c *reactive.Computed[int]
	c = reactive.NewComputed(rs, func() (int, error) {
		callCount++
		if a.Value() {
			return c.Get()
		}
		return 7, nil
	})
	d := reactive.NewComputed(rs, func() (int, error) {
		v, err := c.Get()
		return v * 2, err
	})

	v, err := d.Get()
	require.NoError(t, err)
	assert.Equal(t, 14, v)

	a.SetValue(true)
	_, err = c.Get()
	require.ErrorIs(t, err, reactive.ErrCyclicDependency)
	calls := callCount

	_, err = c.Get()
	require.ErrorIs(t, err, reactive.ErrCyclicDependency)
	assert.Greater(t, callCount, calls)

	_, err = d.Get()
	require.ErrorIs(t, err, reactive.ErrCyclicDependency)

	a.SetValue(false)
	v, err = d.Get()
	require.NoError(t, err)
	assert.Equal(t, 14, v)
}

func TestComputedSelfCycle(t *testing.T) {
	rs := newSystem(t)

	var c *reactive.Computed[int]
	c = reactive.NewComputed(rs, func() (int, error) {
		v, err := c.Get()
		if err != nil {
			return 0, err
		}
		return v + 1, nil
	})

	_, err := c.Get()
	assert.ErrorIs(t, err, reactive.ErrCyclicDependency)
	assert.False(t, rs.Tracking())
}

func TestComputedCycleIsReportedEvenIfSwallowed(t *testing.T) {
	rs := newSystem(t)

	var c *reactive.Computed[int]
	c = reactive.Memo(rs, func() int {
		v, _ := c.Get()
		return v
	})

	_, err := c.Get()
	assert.ErrorIs(t, err, reactive.ErrCyclicDependency)
}

func TestComputedTransitiveCycle(t *testing.T) {
	rs := newSystem(t)

	//  A -> B
	//  ^    |
	//  +----+
	var a, b *reactive.Computed[int]
	a = reactive.NewComputed(rs, func() (int, error) {
		return b.Get()
	})
	b = reactive.NewComputed(rs, func() (int, error) {
		return a.Get()
	})

	_, err := a.Get()
	assert.ErrorIs(t, err, reactive.ErrCyclicDependency)
	_, err = b.Get()
	assert.ErrorIs(t, err, reactive.ErrCyclicDependency)

	// the rest of the graph is unaffected
	s := reactive.NewSignal(rs, 1)
	d := reactive.Memo(rs, func() int { return s.Value() + 1 })
	assert.Equal(t, 2, d.Value())
}

func TestComputedGlitchFree(t *testing.T) {
	rs := newSystem(t)
	a := reactive.NewSignal(rs, 0)
	b := reactive.NewSignal(rs, 0)

	callCount := 0
	sum := reactive.Memo(rs, func() int {
		callCount++
		return a.Value() + b.Value()
	})

	var seen []int
	stop := reactive.Effect(rs, func() error {
		seen = append(seen, sum.Value())
		return nil
	})
	defer stop()

	rs.Batch(func() {
		a.SetValue(1)
		b.SetValue(2)
	})

	assert.Equal(t, []int{0, 3}, seen)
	assert.Equal(t, 2, callCount)
}

func TestComputedCustomEquals(t *testing.T) {
	rs := newSystem(t)
	a := reactive.NewSignal(rs, 1.0)

	rounded := reactive.Memo(rs, func() float64 {
		return a.Value()
	}, reactive.WithEquals(func(x, y float64) bool {
		return int(x) == int(y)
	}))

	callCount := 0
	c := reactive.Memo(rs, func() float64 {
		callCount++
		return rounded.Value()
	})

	assert.Equal(t, 1.0, c.Value())
	a.SetValue(1.5)
	assert.Equal(t, 1.0, c.Value())
	assert.Equal(t, 1, callCount)

	a.SetValue(2.5)
	assert.Equal(t, 2.5, c.Value())
	assert.Equal(t, 2, callCount)
}

func TestComputedPeekDoesNotTrack(t *testing.T) {
	rs := newSystem(t)
	a := reactive.NewSignal(rs, 1)
	b := reactive.NewSignal(rs, 10)

	c := reactive.Memo(rs, func() int {
		v, _ := b.Peek()
		return a.Value() + v
	})
	assert.Equal(t, 11, c.Value())
	assert.Equal(t, []reactive.NodeID{a.ID()}, rs.Dependencies(c.ID()))

	b.SetValue(20)
	assert.False(t, c.IsDirty())
	assert.Equal(t, 11, c.Value())
}

func TestComputedDisposedDependency(t *testing.T) {
	rs := newSystem(t)
	a := reactive.NewSignal(rs, 1)
	c := reactive.NewComputed(rs, func() (int, error) {
		return a.Get()
	})
	v, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	a.Dispose()
	assert.True(t, c.IsDirty())
	_, err = c.Get()
	assert.ErrorIs(t, err, reactive.ErrInvalidHandle)

	c.Dispose()
	_, err = c.Get()
	assert.ErrorIs(t, err, reactive.ErrInvalidHandle)
}
