package reactive_test

import (
	"testing"

	"github.com/delaneyj/signalgraph/reactive"
	"github.com/stretchr/testify/assert"
)

func newSystem(t *testing.T, opts ...reactive.Option) *reactive.ReactiveSystem {
	t.Helper()
	return reactive.CreateReactiveSystem(func(from reactive.NodeID, err error) {
		assert.FailNow(t, err.Error())
	}, opts...)
}

type errorLog struct {
	from []reactive.NodeID
	errs []error
}

func (l *errorLog) onError(from reactive.NodeID, err error) {
	l.from = append(l.from, from)
	l.errs = append(l.errs, err)
}

func newCollectingSystem(opts ...reactive.Option) (*reactive.ReactiveSystem, *errorLog) {
	log := &errorLog{}
	return reactive.CreateReactiveSystem(log.onError, opts...), log
}
