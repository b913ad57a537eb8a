package controls

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/soir-live/soir/internal/logging"
)

var log = logging.ForService("controls")

// PopulationRecorder receives the current number of registered controls.
type PopulationRecorder interface {
	SetPopulation(loops, lives, controls int)
}

// Registry is the name -> Control map driving the control-rate clock.
// Mutation is guarded by mu. AdvanceAll holds mu only while it collects the
// controls in name order; each Fwd then runs under that Control's own lock.
type Registry struct {
	mu               sync.Mutex
	byName           map[string]*Control
	insideUpdateLoop atomic.Bool
}

// New creates an empty control registry.
func New() *Registry {
	return &Registry{byName: make(map[string]*Control)}
}

// Declare inserts ctrl, or, if a control with the same name already exists,
// replaces it while carrying over tick and value for a smooth hand-off (I6).
func (r *Registry) Declare(ctrl *Control) {
	bindUpdateLoopFlag(ctrl, &r.insideUpdateLoop)

	r.mu.Lock()
	defer r.mu.Unlock()

	if prior, ok := r.byName[ctrl.name]; ok {
		prior.mu.Lock()
		ctrl.tick = prior.tick
		ctrl.value = prior.value
		prior.mu.Unlock()
	}
	r.byName[ctrl.name] = ctrl
}

// Get returns the named control, if any.
func (r *Registry) Get(name string) (*Control, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byName[name]
	return c, ok
}

// MustFwd runs Fwd and surfaces ControlNotFound if name is unregistered; a
// convenience for user-facing ctrl(name).fwd() style call sites.
func (r *Registry) MustFwd(name string, tickSec float64) error {
	c, ok := r.Get(name)
	if !ok {
		return newControlNotFoundError(name)
	}
	return c.Fwd(tickSec)
}

// Delete removes a control by name.
func (r *Registry) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byName, name)
}

// Len reports the number of registered controls.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byName)
}

// Names returns every registered name in lexicographic order. This ordering
// is a contract (spec.md §4.3): a Func control reading another control must
// see an already-advanced value for any lexicographically-earlier dependency.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of every Control currently registered, in
// lexicographic name order, for reconciliation to inspect.
func (r *Registry) Snapshot() []*Control {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Control, 0, len(r.byName))
	for _, name := range r.sortedNamesLocked() {
		out = append(out, r.byName[name])
	}
	return out
}

func (r *Registry) sortedNamesLocked() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AdvanceAll runs Fwd on every control in lexicographic name order and
// returns the flat {name: value} payload, per the control clock contract
// (spec.md §4.3 steps 1-4). Publishing the payload via host.publish_controls
// is the caller's (internal/engine's) responsibility.
func (r *Registry) AdvanceAll(tickSec float64) map[string]float64 {
	r.insideUpdateLoop.Store(true)
	defer r.insideUpdateLoop.Store(false)

	r.mu.Lock()
	names := r.sortedNamesLocked()
	controls := make([]*Control, len(names))
	for i, name := range names {
		controls[i] = r.byName[name]
	}
	r.mu.Unlock()

	payload := make(map[string]float64, len(controls))
	for _, ctrl := range controls {
		if err := ctrl.Fwd(tickSec); err != nil {
			log.Error("control fwd failed", "name", ctrl.Name(), "error", err)
			continue
		}
		payload[ctrl.Name()] = ctrl.Value()
	}
	return payload
}
