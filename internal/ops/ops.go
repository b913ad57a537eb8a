// Package ops implements the user-facing operations (C6, spec.md §4.6):
// sleep, log, midi, sampler and record, all routed through internal/schedule
// and gated by the "am I inside a loop?" invariant (I3/I4).
package ops

import (
	"sync"

	"github.com/soir-live/soir/internal/host"
	"github.com/soir-live/soir/internal/logging"
	"github.com/soir-live/soir/internal/registry"
	"github.com/soir-live/soir/internal/schedule"
	"github.com/soir-live/soir/internal/timeline"
)

var log = logging.ForService("ops")

// Ops is the shared dispatch surface a Program's loop/live bodies call
// against. One Ops is created per engine instance.
type Ops struct {
	hostImpl  host.Host
	scheduler *schedule.Scheduler
	clock     *timeline.Clock
	rnd       *Rnd

	mu          sync.Mutex
	currentLoop *registry.Loop
}

// New builds an Ops bound to the given host, scheduler and clock.
func New(h host.Host, scheduler *schedule.Scheduler, clock *timeline.Clock, seed int64) *Ops {
	return &Ops{
		hostImpl:  h,
		scheduler: scheduler,
		clock:     clock,
		rnd:       newRnd(seed),
	}
}

// Rnd returns the rnd module surface (supplemented feature, SPEC_FULL.md §4).
func (o *Ops) Rnd() *Rnd { return o.rnd }

// Midi returns the midi module surface.
func (o *Ops) Midi() *Midi { return &Midi{ops: o} }

// Sampler returns the sampler module surface.
func (o *Ops) Sampler() *Sampler { return &Sampler{ops: o} }

// RunInLoop executes body with the "current loop" binding set to l, for the
// duration of the call, restoring it to nil afterwards even if body panics
// (the panic itself is the caller's — internal/schedule's — responsibility
// to recover).
func (o *Ops) RunInLoop(l *registry.Loop, body registry.LoopBody) error {
	o.mu.Lock()
	o.currentLoop = l
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.currentLoop = nil
		o.mu.Unlock()
	}()
	if body == nil {
		return nil
	}
	return body()
}

func (o *Ops) loop() *registry.Loop {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.currentLoop
}

// CurrentLoop returns the loop currently executing, if any.
func (o *Ops) CurrentLoop() (*registry.Loop, bool) {
	l := o.loop()
	return l, l != nil
}

// Sleep advances the current loop's sub-beat cursor (spec.md §4.6). Legal
// only inside a loop body.
func (o *Ops) Sleep(beats timeline.Beat) error {
	l := o.loop()
	if l == nil {
		return newNotInLoopError("sleep")
	}
	l.Sleep(beats)
	return nil
}

// Log writes msg through the host, deferred to the current loop's offset if
// inside one, or immediately otherwise.
func (o *Ops) Log(msg string) {
	l := o.loop()
	if l == nil {
		o.hostImpl.Log(msg)
		return
	}
	due := o.clock.Beat().Add(l.CurrentOffset())
	o.scheduler.Schedule(due, func() { o.hostImpl.Log(msg) })
}

// InLoop reports whether a loop body is currently executing.
func (o *Ops) InLoop() bool { return o.loop() != nil }

// Record validates that a record(path) call is legal (global scope only,
// spec.md §4.6); the actual start/stop-recording transition is driven by
// reconciliation (spec.md §4.4 policy 4), which compares this generation's
// requested path against the host's active recording.
func (o *Ops) Record(path string) error {
	if o.loop() != nil {
		return newInLoopError("record")
	}
	return nil
}

// SetupTracks installs a validated track layout. Legal only at global scope.
func (o *Ops) SetupTracks(layout registry.TrackLayout) error {
	if o.loop() != nil {
		return newInLoopError("setup_tracks")
	}
	if err := layout.Validate(); err != nil {
		return err
	}
	return o.hostImpl.SetupTracks(layout)
}

// GetTracks returns the host's current track layout. Legal only at global scope.
func (o *Ops) GetTracks() (registry.TrackLayout, error) {
	if o.loop() != nil {
		return registry.TrackLayout{}, newInLoopError("get_tracks")
	}
	return o.hostImpl.GetTracks(), nil
}

// resolveChannel implements _get_chan: explicit channel wins, else the
// current loop's scoped midi_chan, else UnknownMidiTrack (spec.md §4.6).
func (o *Ops) resolveChannel(l *registry.Loop, explicit *int) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if l != nil {
		if c, ok := l.MidiChan(); ok {
			return c, nil
		}
	}
	return 0, newUnknownMidiTrackError()
}
