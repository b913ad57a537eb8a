package engine

import (
	"time"

	"github.com/soir-live/soir/internal/controls"
	"github.com/soir-live/soir/internal/events"
)

// Ingest runs one code snapshot (spec.md §4.7): evaluate it under the shared
// Context, and on success reconcile the registries against the generation
// that was in force during evaluation, then bump G. A panicking Program does
// not bump the generation or run reconciliation — a broken snapshot must not
// prune live registrations (spec.md §4.7 item 2, the resolved Open Question).
func (e *Engine) Ingest(snapshot Snapshot) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = newIngestPanicError(r)
			log.Error("ingest panicked", "panic", r)
			e.recordIngest(false)
		}
	}()

	gOld := e.g
	e.pendingRecordingPath = nil
	e.ctx.beginGeneration(snapshot, gOld)

	if snapshot.Program != nil {
		snapshot.Program(e.ctx)
	}

	loopsSwept, livesSwept := e.reconcile(gOld)
	e.g = gOld + 1
	e.recordIngest(true)
	e.publishIngestEvent(snapshot.Source, gOld+1, loopsSwept, livesSwept, time.Since(start))
	return nil
}

// reconcile implements spec.md §4.4's bump(): loop sweep, live sweep,
// control sweep, recording sweep, in that order, all against gOld (the
// generation every surviving artifact must have been stamped with). Returns
// how many loop and live artifacts were dropped, for diagnostics.
func (e *Engine) reconcile(gOld uint64) (loopsSwept, livesSwept int) {
	removedLoops := e.loops.Sweep(gOld)
	for _, name := range removedLoops {
		log.Debug("loop dropped by reconciliation", "loop", name)
	}

	removedLives := e.lives.Sweep(gOld)
	for _, name := range removedLives {
		log.Debug("live dropped by reconciliation", "live", name)
	}

	e.sweepControls(gOld)
	e.sweepRecording(gOld)

	if e.recorder != nil {
		e.recorder.SetPopulation(e.loops.Len(), e.lives.Len(), e.controls.Len())
		e.recorder.SetGeneration(gOld + 1)
	}

	return len(removedLoops), len(removedLives)
}

// publishIngestEvent reports a successful ingest to the event bus, if one is
// installed. source falls back to "snapshot" so NewIngestEvent's non-empty
// requirement never trips over an anonymous Program.
func (e *Engine) publishIngestEvent(source string, generation uint64, loopsSwept, livesSwept int, duration time.Duration) {
	if e.eventBus == nil {
		return
	}
	if source == "" {
		source = "snapshot"
	}

	first := !e.firstIngestDone
	e.firstIngestDone = true

	evt, err := events.NewIngestEvent(generation, source, loopsSwept, livesSwept, duration, first)
	if err != nil {
		log.Warn("failed to build ingest event", "error", err)
		return
	}
	e.eventBus.TryPublishIngest(evt)
}

// sweepControls applies the per-scope-kind survival policy (spec.md §4.4
// item 3).
func (e *Engine) sweepControls(gOld uint64) {
	for _, c := range e.controls.Snapshot() {
		scope := c.Scope()
		var drop bool
		switch scope.Kind {
		case controls.ScopeGlobal:
			drop = scope.Generation != gOld
		case controls.ScopeInsideLive:
			live, ok := e.lives.Get(scope.HostName)
			drop = !ok || live.EvalAt() != scope.EvalAt
		case controls.ScopeInsideLoop:
			loop, ok := e.loops.Get(scope.HostName)
			drop = !ok || loop.EvalAt() != scope.EvalAt
		}
		if drop {
			log.Debug("control dropped by reconciliation", "control", c.Name())
			e.controls.Delete(c.Name())
		}
	}
}

// sweepRecording applies spec.md §4.4 item 4: start/stop transitions are
// driven by diffing this generation's requested path (captured by
// Context.Record into e.pendingRecordingPath) against the host's active
// recording.
func (e *Engine) sweepRecording(gen uint64) {
	active, hasActive := e.recording.Active()
	requested := e.pendingRecordingPath

	switch {
	case requested == nil && hasActive:
		e.hostImpl.StopRecording()
		e.recording.Clear()
	case requested != nil && !hasActive:
		e.startRecording(*requested, gen)
	case requested != nil && hasActive && *requested != active.FilePath:
		e.hostImpl.StopRecording()
		e.recording.Clear()
		e.startRecording(*requested, gen)
	}
}

func (e *Engine) startRecording(path string, gen uint64) {
	req, err := e.recording.Request(path, gen)
	if err != nil {
		log.Error("recording request failed", "path", path, "error", err)
		return
	}
	e.hostImpl.StartRecording(req.FilePath)
}

func (e *Engine) recordIngest(success bool) {
	if e.recorder != nil {
		e.recorder.RecordIngest(success)
	}
}
