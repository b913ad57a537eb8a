// Package engine ties the timeline, scheduler, control registry, loop/live
// registries and user-facing operations together: it is C4 (the generation
// tracker and reconciliation) and C7 (the code ingestor), the two components
// spec.md keeps separate but which must see the registries simultaneously to
// do their job (SPEC_FULL.md §1).
package engine

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/soir-live/soir/internal/controls"
	"github.com/soir-live/soir/internal/events"
	"github.com/soir-live/soir/internal/host"
	"github.com/soir-live/soir/internal/logging"
	"github.com/soir-live/soir/internal/ops"
	"github.com/soir-live/soir/internal/registry"
	"github.com/soir-live/soir/internal/schedule"
	"github.com/soir-live/soir/internal/timeline"
	"golang.org/x/sync/errgroup"
)

var log = logging.ForService("engine")

// crashLog records panicking loop bodies to their own rotated file, separate
// from logs/app.log: a runaway loop can panic every beat, and the engine's
// main log should not be the thing that fills the disk. Built lazily (not as
// a package var) so constructing it never runs ahead of config loading.
var (
	crashLogOnce sync.Once
	crashLog     *slog.Logger
)

func getCrashLog() *slog.Logger {
	crashLogOnce.Do(func() {
		crashLog = logging.NewFileLogger("logs/loop-crashes.log", "engine-crash", nil)
	})
	return crashLog
}

// GenerationRecorder observes the tracker after every successful bump.
type GenerationRecorder interface {
	SetGeneration(generation uint64)
}

// IngestRecorder observes the outcome of every Ingest call.
type IngestRecorder interface {
	RecordIngest(success bool)
}

// PopulationRecorder observes registry sizes after reconciliation.
type PopulationRecorder interface {
	SetPopulation(loops, lives, controlsCount int)
}

// Recorder is the full set of observers Engine reports through, satisfied
// (in whole or in part) by internal/metrics.Collector.
type Recorder interface {
	GenerationRecorder
	IngestRecorder
	PopulationRecorder
}

// Engine owns the single coarse lock spec.md §5 requires: it is held for
// the duration of any drain pass and for the duration of Ingest, so user
// code (loop/live bodies, the Program itself) never runs concurrently with
// itself or with a reconciliation pass (I2).
type Engine struct {
	clock      *timeline.Clock
	scheduler  *schedule.Scheduler
	controls   *controls.Registry
	loops      *registry.LoopRegistry
	lives      *registry.LiveRegistry
	samplers   *registry.SamplerRegistry
	recording  *registry.RecordingState
	ops        *ops.Ops
	hostImpl   host.Host
	ctx        *Context
	recorder   Recorder
	eventBus   *events.EventBus
	sampleRate int
	blockSize  int

	mu sync.Mutex

	g                    uint64
	pendingRecordingPath *string
	firstIngestDone      bool

	stop chan struct{}
}

// SetEventBus installs the event bus Ingest reports IngestEvents through.
// May be called at any point after New; nil is safe (reporting is then
// skipped, matching the rest of the engine's nil-collaborator convention).
func (e *Engine) SetEventBus(eb *events.EventBus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.eventBus = eb
}

// New builds an Engine. recorder may be nil.
func New(h host.Host, knownPacks []string, seed int64, recorder Recorder) *Engine {
	sched := schedule.New(recorderOrNil(recorder))
	clock := timeline.NewClock(120)

	e := &Engine{
		clock:      clock,
		scheduler:  sched,
		controls:   controls.New(),
		loops:      registry.NewLoopRegistry(),
		lives:      registry.NewLiveRegistry(),
		samplers:   registry.NewSamplerRegistry(knownPacks),
		recording:  registry.NewRecordingState(),
		hostImpl:   h,
		recorder:   recorder,
		sampleRate: h.GetSampleRate(),
		blockSize:  h.GetBlockSize(),
		stop:       make(chan struct{}),
	}
	e.ops = ops.New(h, sched, clock, seed)
	e.ctx = newContext(e)
	return e
}

func recorderOrNil(r Recorder) schedule.QueueRecorder {
	if r == nil {
		return nil
	}
	if qr, ok := any(r).(schedule.QueueRecorder); ok {
		return qr
	}
	return nil
}

// Generation returns the current evaluation generation.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.g
}

// Status is a point-in-time view of engine population, for status
// endpoints (internal/httpserver.Snapshot is shaped to match).
type Status struct {
	Generation   uint64
	BPM          float64
	Loops        int
	Lives        int
	Controls     int
	SchedulerLen int
}

// Status reports the current population and generation.
func (e *Engine) Status() Status {
	return Status{
		Generation:   e.Generation(),
		BPM:          e.clock.BPM(),
		Loops:        e.loops.Len(),
		Lives:        e.lives.Len(),
		Controls:     e.controls.Len(),
		SchedulerLen: e.scheduler.Len(),
	}
}

// scheduleLoopFirstRun computes the first-firing offset for a brand new loop
// (spec.md §4.5: "align ? (beats - (current_beat mod beats)) : 0") and
// enqueues its wrapped action.
func (e *Engine) scheduleLoopFirstRun(loop *registry.Loop, align bool) {
	var offset timeline.Beat
	if align {
		beats := float64(loop.Beats())
		mod := math.Mod(float64(e.clock.Beat()), beats)
		offset = timeline.Beat(beats - mod)
	}
	due := e.clock.Beat().Add(offset)
	e.scheduler.Schedule(due, func() { e.runLoopAction(loop) })
}

// runLoopAction is the wrapped action spec.md §4.2/§4.5 describes: it runs
// the loop body under the current-loop binding and unconditionally
// reschedules itself, even if body() panics (I7).
func (e *Engine) runLoopAction(loop *registry.Loop) {
	if cur, ok := e.loops.Get(loop.Name); !ok || cur != loop {
		return
	}

	defer func() {
		e.scheduler.Schedule(e.clock.Beat().Add(timeline.Beat(loop.Beats())), func() {
			e.runLoopAction(loop)
		})
		if r := recover(); r != nil {
			log.Error("loop body panicked", "loop", loop.Name, "panic", r)
			getCrashLog().Error("loop body panicked", "loop", loop.Name, "panic", r)
		}
	}()

	loop.BeginRun(e.clock.Beat())
	if err := e.ops.RunInLoop(loop, loop.Body()); err != nil {
		log.Error("loop body failed", "loop", loop.Name, "error", err)
	}
}

// startControlClock bootstraps the self-rescheduling control-rate update
// entry (spec.md §4.3 steps 1-5). Called once, after the host reports
// F_ctrl.
func (e *Engine) startControlClock() {
	e.scheduleControlTick()
}

func (e *Engine) scheduleControlTick() {
	e.scheduler.Schedule(e.clock.Beat(), e.controlTick)
}

func (e *Engine) controlTick() {
	fCtrl := e.hostImpl.GetControlUpdateFrequency()
	if fCtrl <= 0 {
		fCtrl = 60
	}
	tickSec := 1 / fCtrl

	payload := e.controls.AdvanceAll(tickSec)
	e.hostImpl.PublishControls(payload)

	offsetBeats := timeline.Beat(tickSec * e.clock.BPM() / 60)
	e.scheduler.Schedule(e.clock.Beat().Add(offsetBeats), e.controlTick)
}

// AdvanceAndDrain advances the timeline by frames audio samples and drains
// every scheduler entry that is now due. This is the audio driver's only
// entry point into the engine (spec.md §5).
func (e *Engine) AdvanceAndDrain(frames int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clock.Advance(frames, e.sampleRate)
	return e.scheduler.DrainUpTo(e.clock.Beat())
}

// Run starts the control clock and drives the audio driver loop until ctx is
// canceled or Shutdown is called, coordinating both via errgroup per
// SPEC_FULL.md §3 (golang.org/x/sync usage).
func (e *Engine) Run(parent context.Context) error {
	e.mu.Lock()
	e.startControlClock()
	e.mu.Unlock()

	grp, gctx := errgroup.WithContext(parent)
	grp.Go(func() error {
		return e.driveAudioLoop(gctx)
	})
	return grp.Wait()
}

func (e *Engine) driveAudioLoop(ctx context.Context) error {
	frameDuration := time.Duration(float64(e.blockSize) / float64(e.sampleRate) * float64(time.Second))
	if frameDuration <= 0 {
		frameDuration = 10 * time.Millisecond
	}
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.stop:
			return nil
		case <-ticker.C:
			e.AdvanceAndDrain(e.blockSize)
		}
	}
}

// Shutdown stops the drain loop, deletes every loop, live and control
// artifact, and stops an active recording (spec.md §5). Entries already in
// the scheduler's queue are not removed.
func (e *Engine) Shutdown(ctx context.Context) error {
	close(e.stop)

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, name := range e.loops.Names() {
		e.loops.Delete(name)
	}
	for _, name := range e.lives.Names() {
		e.lives.Delete(name)
	}
	for _, c := range e.controls.Snapshot() {
		e.controls.Delete(c.Name())
	}
	if _, ok := e.recording.Active(); ok {
		e.hostImpl.StopRecording()
		e.recording.Clear()
	}
	return nil
}
