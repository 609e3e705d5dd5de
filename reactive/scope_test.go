package reactive_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/signalgraph/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeOwnsNodes(t *testing.T) {
	rs := newSystem(t)
	outside := reactive.NewSignal(rs, 0)

	var inside *reactive.Signal[int]
	var double *reactive.Computed[int]
	runs := 0
	scope := reactive.NewScope(rs)
	err := scope.Run(func() error {
		inside = reactive.NewSignal(rs, 1)
		double = reactive.Memo(rs, func() int { return inside.Value() * 2 })
		reactive.Effect(rs, func() error {
			outside.Value()
			runs++
			return nil
		})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, scope.Len())

	scope.Dispose()
	assert.Equal(t, 0, scope.Len())

	_, err = inside.Get()
	assert.ErrorIs(t, err, reactive.ErrInvalidHandle)
	_, err = double.Get()
	assert.ErrorIs(t, err, reactive.ErrInvalidHandle)

	outside.SetValue(1)
	assert.Equal(t, 1, runs)
	assert.Empty(t, rs.Subscribers(outside.ID()))

	err = scope.Run(func() error { return nil })
	assert.ErrorIs(t, err, reactive.ErrInvalidHandle)
}

func TestScopeNested(t *testing.T) {
	rs := newSystem(t)
	a := reactive.NewSignal(rs, 0)

	var outerRuns, innerRuns int
	var inner *reactive.Scope
	outer := reactive.NewScope(rs)
	require.NoError(t, outer.Run(func() error {
		reactive.Effect(rs, func() error {
			a.Value()
			outerRuns++
			return nil
		})
		inner = reactive.NewScope(rs)
		return inner.Run(func() error {
			reactive.Effect(rs, func() error {
				a.Value()
				innerRuns++
				return nil
			})
			return nil
		})
	}))

	inner.Dispose()
	a.SetValue(1)
	assert.Equal(t, 2, outerRuns)
	assert.Equal(t, 1, innerRuns)

	outer.Dispose()
	a.SetValue(2)
	assert.Equal(t, 2, outerRuns)
}

func TestScopeDisposesChildScopes(t *testing.T) {
	rs := newSystem(t)
	a := reactive.NewSignal(rs, 0)

	innerRuns := 0
	stop := reactive.EffectScope(rs, func() error {
		reactive.EffectScope(rs, func() error {
			reactive.Effect(rs, func() error {
				a.Value()
				innerRuns++
				return nil
			})
			return nil
		})
		return nil
	})

	stop()
	a.SetValue(1)
	assert.Equal(t, 1, innerRuns)
}

func TestEffectScopeError(t *testing.T) {
	rs, errLog := newCollectingSystem()
	errSetup := errors.New("setup failed")

	stop := reactive.EffectScope(rs, func() error {
		return errSetup
	})
	defer stop()

	require.Len(t, errLog.errs, 1)
	assert.ErrorIs(t, errLog.errs[0], errSetup)
	assert.Equal(t, reactive.NodeID(0), errLog.from[0])
}

func TestScopeEffectChildrenAreNotOwnedByScope(t *testing.T) {
	rs := newSystem(t)
	a := reactive.NewSignal(rs, 0)

	var created []*reactive.Signal[int]
	scope := reactive.NewScope(rs)
	require.NoError(t, scope.Run(func() error {
		reactive.Effect(rs, func() error {
			created = append(created, reactive.NewSignal(rs, a.Value()))
			return nil
		})
		return nil
	}))
	assert.Equal(t, 1, scope.Len())

	// each rerun releases what the previous run created
	a.SetValue(1)
	require.Len(t, created, 2)
	assert.False(t, rs.Has(created[0].ID()))
	assert.True(t, rs.Has(created[1].ID()))

	scope.Dispose()
	assert.False(t, rs.Has(created[1].ID()))
}
