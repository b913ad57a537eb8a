package engine

import (
	"sync"
	"testing"

	"github.com/soir-live/soir/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	mu             sync.Mutex
	logs           []string
	noteOns        int
	publishedKnobs []map[string]float64
	startedPaths   []string
	stopCount      int
	layout         registry.TrackLayout
	knownPacks     []string
}

func (f *fakeHost) Log(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, msg)
}
func (f *fakeHost) GetBlockSize() int  { return 256 }
func (f *fakeHost) GetSampleRate() int { return 48000 }
func (f *fakeHost) MidiNoteOn(track string, channel, note int, velocity float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.noteOns++
}
func (f *fakeHost) MidiNoteOff(track string, channel, note int)          {}
func (f *fakeHost) MidiCC(track string, channel, cc int, value float64)  {}
func (f *fakeHost) SamplePlay(track string, params map[string]any)      {}
func (f *fakeHost) SampleStop(track string, params map[string]any)      {}
func (f *fakeHost) PublishControls(knobs map[string]float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publishedKnobs = append(f.publishedKnobs, knobs)
}
func (f *fakeHost) StartRecording(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startedPaths = append(f.startedPaths, path)
}
func (f *fakeHost) StopRecording() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCount++
}
func (f *fakeHost) SetupTracks(layout registry.TrackLayout) error {
	f.layout = layout
	return nil
}
func (f *fakeHost) GetTracks() registry.TrackLayout    { return f.layout }
func (f *fakeHost) GetControlUpdateFrequency() float64 { return 60 }
func (f *fakeHost) GetCodeText() string                { return "" }
func (f *fakeHost) KnownPacks() []string                { return f.knownPacks }

func newTestEngine() (*Engine, *fakeHost) {
	h := &fakeHost{knownPacks: []string{"808"}}
	return New(h, h.knownPacks, 1, nil), h
}

func TestIngestRunsProgramAndBumpsGeneration(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine()
	ran := false
	err := e.Ingest(Snapshot{Program: func(ctx *Context) { ran = true }})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, uint64(1), e.Generation())
}

func TestIngestDoesNotBumpOnPanic(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine()
	err := e.Ingest(Snapshot{Program: func(ctx *Context) { panic("boom") }})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIngestPanicked)
	assert.Equal(t, uint64(0), e.Generation())
}

func TestLoopNotRedeclaredIsSweptAway(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine()
	err := e.Ingest(Snapshot{Program: func(ctx *Context) {
		ctx.Loop("kick", LoopOpts{Beats: 4}, func() error { return nil })
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, e.Status().Loops)

	err = e.Ingest(Snapshot{Program: func(ctx *Context) {}})
	require.NoError(t, err)
	assert.Equal(t, 0, e.Status().Loops, "a loop not redeclared this generation must be swept")
}

func TestLoopRedeclaredSurvives(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine()
	program := func(ctx *Context) {
		ctx.Loop("kick", LoopOpts{Beats: 4}, func() error { return nil })
	}
	require.NoError(t, e.Ingest(Snapshot{Program: program}))
	require.NoError(t, e.Ingest(Snapshot{Program: program}))
	assert.Equal(t, 1, e.Status().Loops)
}

func TestLiveNotRedeclaredIsSweptAway(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine()
	err := e.Ingest(Snapshot{Program: func(ctx *Context) {
		ctx.Live("drone", 1, 1, func() error { return nil })
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, e.Status().Lives)

	require.NoError(t, e.Ingest(Snapshot{Program: func(ctx *Context) {}}))
	assert.Equal(t, 0, e.Status().Lives)
}

func TestLiveBodyReRunsOnlyWhenSourceChanges(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine()
	runs := 0
	program := func(ctx *Context) {
		ctx.Live("setup", 1, 1, func() error {
			runs++
			return nil
		})
	}
	require.NoError(t, e.Ingest(Snapshot{Source: "same\n", Program: program}))
	require.NoError(t, e.Ingest(Snapshot{Source: "same\n", Program: program}))
	assert.Equal(t, 1, runs, "identical source slice must not re-run the body")

	require.NoError(t, e.Ingest(Snapshot{Source: "different\n", Program: program}))
	assert.Equal(t, 2, runs)
}

func TestGlobalControlDiesWhenNotRedeclared(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine()
	require.NoError(t, e.Ingest(Snapshot{Program: func(ctx *Context) {
		ctx.CtrlVal("vol", 1.0)
	}}))
	assert.Equal(t, 1, e.Status().Controls)

	require.NoError(t, e.Ingest(Snapshot{Program: func(ctx *Context) {}}))
	assert.Equal(t, 0, e.Status().Controls)
}

func TestRecordStartsOnFirstRequest(t *testing.T) {
	t.Parallel()

	e, h := newTestEngine()
	require.NoError(t, e.Ingest(Snapshot{Program: func(ctx *Context) {
		require.NoError(t, ctx.Record("/tmp/a.wav"))
	}}))
	assert.Equal(t, []string{"/tmp/a.wav"}, h.startedPaths)
	assert.Equal(t, 0, h.stopCount)
}

func TestRecordStopsWhenDroppedFromSnapshot(t *testing.T) {
	t.Parallel()

	e, h := newTestEngine()
	require.NoError(t, e.Ingest(Snapshot{Program: func(ctx *Context) {
		require.NoError(t, ctx.Record("/tmp/a.wav"))
	}}))
	require.NoError(t, e.Ingest(Snapshot{Program: func(ctx *Context) {}}))
	assert.Equal(t, 1, h.stopCount)
}

func TestRecordRestartsOnPathChange(t *testing.T) {
	t.Parallel()

	e, h := newTestEngine()
	require.NoError(t, e.Ingest(Snapshot{Program: func(ctx *Context) {
		require.NoError(t, ctx.Record("/tmp/a.wav"))
	}}))
	require.NoError(t, e.Ingest(Snapshot{Program: func(ctx *Context) {
		require.NoError(t, ctx.Record("/tmp/b.wav"))
	}}))
	assert.Equal(t, []string{"/tmp/a.wav", "/tmp/b.wav"}, h.startedPaths)
	assert.Equal(t, 1, h.stopCount)
}

func TestLoopBodyFiresAndReschedules(t *testing.T) {
	t.Parallel()

	e, h := newTestEngine()
	require.NoError(t, e.Ingest(Snapshot{Program: func(ctx *Context) {
		ctx.Loop("kick", LoopOpts{Beats: 1}, func() error {
			ch := 0
			return ctx.Midi().NoteOn("drums", 60, 1.0, &ch)
		})
	}}))

	ran := e.scheduler.DrainUpTo(e.clock.Beat())
	assert.GreaterOrEqual(t, ran, 1)
	assert.Equal(t, 1, h.noteOns)
	assert.Equal(t, 1, e.scheduler.Len(), "the loop must reschedule itself")
}

func TestLoopBodyReschedulesAfterPanic(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine()
	require.NoError(t, e.Ingest(Snapshot{Program: func(ctx *Context) {
		ctx.Loop("boom", LoopOpts{Beats: 1}, func() error {
			panic("boom")
		})
	}}))

	assert.NotPanics(t, func() {
		e.scheduler.DrainUpTo(e.clock.Beat())
	})
	assert.Equal(t, 1, e.scheduler.Len(), "a panicking loop body must still reschedule itself")
}
