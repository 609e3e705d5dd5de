package reactive

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// frame records the reads of one tracked run. A nil frame on the stack
// suspends tracking.
type frame struct {
	sub   *node
	deps  mapset.Set[NodeID]
	reads []depVersion
	err   error
}

// track runs body with n as the innermost tracking frame, then replaces n's
// dependencies with exactly the nodes read during this run.
func (rs *ReactiveSystem) track(n *node, body func() error) error {
	f := &frame{
		sub:  n,
		deps: mapset.NewThreadUnsafeSet[NodeID](),
	}
	rs.frames = append(rs.frames, f)
	defer func() {
		rs.frames = rs.frames[:len(rs.frames)-1]
		rs.commit(n, f)
	}()

	err := body()
	if f.err != nil {
		return f.err
	}
	return err
}

func (rs *ReactiveSystem) commit(n *node, f *frame) {
	for _, id := range n.deps.Difference(f.deps).ToSlice() {
		if dep, ok := rs.nodes[id]; ok {
			dep.subs.Remove(n.id)
		}
	}

	if _, alive := rs.nodes[n.id]; !alive {
		// disposed while running
		for _, id := range f.deps.ToSlice() {
			if dep, ok := rs.nodes[id]; ok {
				dep.subs.Remove(n.id)
			}
		}
		n.deps.Clear()
		n.reads = nil
		return
	}

	for _, id := range f.deps.Difference(n.deps).ToSlice() {
		if dep, ok := rs.nodes[id]; ok {
			dep.subs.Add(n.id)
		}
	}
	n.deps = f.deps
	n.reads = f.reads
}

// link registers dep with the innermost active frame.
func (rs *ReactiveSystem) link(dep *node) {
	if len(rs.frames) == 0 {
		return
	}
	f := rs.frames[len(rs.frames)-1]
	if f == nil || f.sub == dep {
		return
	}
	if f.deps.Add(dep.id) {
		f.reads = append(f.reads, depVersion{id: dep.id, version: dep.version})
	}
}

// Tracking reports whether reads are currently recorded as dependencies.
func (rs *ReactiveSystem) Tracking() bool {
	return len(rs.frames) > 0 && rs.frames[len(rs.frames)-1] != nil
}

// Untrack runs fn without recording any reads.
func (rs *ReactiveSystem) Untrack(fn func()) {
	rs.PauseTracking()
	defer rs.ResumeTracking()
	fn()
}

func (rs *ReactiveSystem) PauseTracking() {
	rs.frames = append(rs.frames, nil)
}

func (rs *ReactiveSystem) ResumeTracking() {
	lastIdx := len(rs.frames) - 1
	if lastIdx < 0 || rs.frames[lastIdx] != nil {
		panic("reactive: ResumeTracking without matching PauseTracking")
	}
	rs.frames = rs.frames[:lastIdx]
}

// cycle fails every frame between the top of the stack and n's own frame.
func (rs *ReactiveSystem) cycle(n *node) error {
	err := fmt.Errorf("%w: computed %d read itself while evaluating", ErrCyclicDependency, n.id)
	rs.logger.Debug("reactive: cycle detected", "node", n.id)
	for i := len(rs.frames) - 1; i >= 0; i-- {
		f := rs.frames[i]
		if f == nil {
			continue
		}
		if f.err == nil {
			f.err = err
		}
		if f.sub == n {
			break
		}
	}
	return err
}
