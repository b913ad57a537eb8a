package engine

import (
	"github.com/soir-live/soir/internal/controls"
	"github.com/soir-live/soir/internal/ops"
	"github.com/soir-live/soir/internal/registry"
	"github.com/soir-live/soir/internal/timeline"
)

// LoopOpts carries the @loop(track, beats, align) parameters (spec.md §4.5).
type LoopOpts struct {
	Track string
	Beats int
	Align bool
}

// Context is the single shared evaluation surface a Snapshot's Program runs
// against (SPEC_FULL.md §1.1): the Go-native analogue of the sandboxed
// global scope. Loop/Live bodies close over the same *Context they were
// declared from, so they keep working after Program returns.
type Context struct {
	engine     *Engine
	snapshot   Snapshot
	generation uint64

	// currentLive is set only for the duration of a live body invoked
	// synchronously from Live below; it exists so Ctrl* calls made from
	// inside that body stamp an InsideLive scope (spec.md §4.4 policy 3).
	currentLive *registry.Live
}

func newContext(e *Engine) *Context {
	return &Context{engine: e}
}

func (c *Context) beginGeneration(snapshot Snapshot, generation uint64) {
	c.snapshot = snapshot
	c.generation = generation
}

func (c *Context) scopeNow() controls.Scope {
	if c.currentLive != nil {
		return controls.InsideLiveScope(c.currentLive.Name, c.currentLive.EvalAt())
	}
	if loop, ok := c.engine.ops.CurrentLoop(); ok {
		return controls.InsideLoopScope(loop.Name, loop.EvalAt())
	}
	return controls.GlobalScope(c.generation)
}

// Loop registers or mutates a @loop artifact (spec.md §4.5).
func (c *Context) Loop(name string, opts LoopOpts, body registry.LoopBody) {
	e := c.engine
	loop, first := e.loops.Declare(name, opts.Beats, opts.Track, opts.Align, body, c.generation)
	if first {
		e.scheduleLoopFirstRun(loop, opts.Align)
	}
}

// Live registers a @live artifact, re-running body only when its source
// slice changed since the last generation (spec.md §4.5).
func (c *Context) Live(name string, srcStart, srcEnd int, body registry.LiveBody) {
	e := c.engine
	slice := sourceSlice(c.snapshot.Source, srcStart, srcEnd)
	live, changed := e.lives.Declare(name, body, slice, c.generation)
	if !changed {
		return
	}
	live.MarkRun(e.clock.Beat())

	c.currentLive = live
	defer func() { c.currentLive = nil }()

	if body == nil {
		return
	}
	if err := body(); err != nil {
		log.Error("live body failed", "live", name, "error", err)
	}
}

// CtrlLFO declares or redeclares an LFO control under the current scope.
func (c *Context) CtrlLFO(name string, rate, intensity, low, high float64) *controls.Control {
	ctrl := controls.NewLFO(name, c.scopeNow(), rate, intensity, low, high)
	c.engine.controls.Declare(ctrl)
	return ctrl
}

// CtrlLinear declares or redeclares a Linear control under the current scope.
func (c *Context) CtrlLinear(name string, start, end, duration float64) *controls.Control {
	ctrl := controls.NewLinear(name, c.scopeNow(), start, end, duration)
	c.engine.controls.Declare(ctrl)
	return ctrl
}

// CtrlVal declares or redeclares a Val control under the current scope.
func (c *Context) CtrlVal(name string, value float64) *controls.Control {
	ctrl := controls.NewVal(name, c.scopeNow(), value)
	c.engine.controls.Declare(ctrl)
	return ctrl
}

// CtrlFunc declares or redeclares a Func control under the current scope.
func (c *Context) CtrlFunc(name string, fn func() float64) *controls.Control {
	ctrl := controls.NewFunc(name, c.scopeNow(), fn)
	c.engine.controls.Declare(ctrl)
	return ctrl
}

// SetBPM sets the timeline's tempo. Legal only outside a loop body (spec.md §3).
func (c *Context) SetBPM(bpm float64) error {
	if c.engine.ops.InLoop() {
		return newGlobalScopeOnlyError("bpm.set")
	}
	c.engine.clock.SetBPM(bpm)
	return nil
}

// Beat returns the timeline's current beat.
func (c *Context) Beat() timeline.Beat { return c.engine.clock.Beat() }

// SetupTracks installs a validated track layout via the host.
func (c *Context) SetupTracks(layout registry.TrackLayout) error {
	return c.engine.ops.SetupTracks(layout)
}

// GetTracks returns the host's current track layout.
func (c *Context) GetTracks() (registry.TrackLayout, error) {
	return c.engine.ops.GetTracks()
}

// Record requests path as the recording target for this generation; the
// actual host start/stop transition happens during reconciliation (spec.md
// §4.4 policy 4).
func (c *Context) Record(path string) error {
	if err := c.engine.ops.Record(path); err != nil {
		return err
	}
	c.engine.pendingRecordingPath = &path
	return nil
}

// Sleep, Log, Midi, Sampler and Rnd pass through to the shared ops surface;
// loop bodies close over the Context that declared them to reach these.
func (c *Context) Sleep(beats timeline.Beat) error { return c.engine.ops.Sleep(beats) }
func (c *Context) Log(msg string)                  { c.engine.ops.Log(msg) }
func (c *Context) Midi() *ops.Midi                 { return c.engine.ops.Midi() }
func (c *Context) Sampler() *ops.Sampler           { return c.engine.ops.Sampler() }
func (c *Context) Rnd() *ops.Rnd                   { return c.engine.ops.Rnd() }

// NewSampler resolves a sample-pack name against the host's known packs.
func (c *Context) NewSampler(pack, track string) (*registry.Sampler, error) {
	return c.engine.samplers.NewSampler(pack, track)
}

func sourceSlice(source string, startLine, endLine int) string {
	if startLine < 1 || endLine < startLine {
		return ""
	}
	lines := splitLines(source)
	if startLine > len(lines) {
		return ""
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	slice := lines[startLine-1 : endLine]
	return joinLines(slice)
}
