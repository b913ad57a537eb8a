package ops

import "github.com/soir-live/soir/internal/timeline"

// Midi is the midi.* surface: note_on/off, note, use_chan, cc. Legal only
// inside a loop body (spec.md §4.6).
type Midi struct {
	ops *Ops
}

// NoteOn schedules a MIDI note-on at the current loop offset.
func (m *Midi) NoteOn(track string, note int, velocity float64, chanOverride *int) error {
	o := m.ops
	l := o.loop()
	if l == nil {
		return newNotInLoopError("midi.note_on")
	}
	ch, err := o.resolveChannel(l, chanOverride)
	if err != nil {
		return err
	}
	due := o.clock.Beat().Add(l.CurrentOffset())
	o.scheduler.Schedule(due, func() { o.hostImpl.MidiNoteOn(track, ch, note, velocity) })
	return nil
}

// NoteOff schedules a MIDI note-off at the current loop offset.
func (m *Midi) NoteOff(track string, note int, chanOverride *int) error {
	o := m.ops
	l := o.loop()
	if l == nil {
		return newNotInLoopError("midi.note_off")
	}
	ch, err := o.resolveChannel(l, chanOverride)
	if err != nil {
		return err
	}
	due := o.clock.Beat().Add(l.CurrentOffset())
	o.scheduler.Schedule(due, func() { o.hostImpl.MidiNoteOff(track, ch, note) })
	return nil
}

// Note schedules both a note-on at the current offset and a note-off at
// offset+duration (spec.md §4.6: "enqueues both on and off").
func (m *Midi) Note(track string, note int, velocity float64, duration timeline.Beat, chanOverride *int) error {
	o := m.ops
	l := o.loop()
	if l == nil {
		return newNotInLoopError("midi.note")
	}
	ch, err := o.resolveChannel(l, chanOverride)
	if err != nil {
		return err
	}
	offset := l.CurrentOffset()
	onDue := o.clock.Beat().Add(offset)
	offDue := o.clock.Beat().Add(offset + duration)
	o.scheduler.Schedule(onDue, func() { o.hostImpl.MidiNoteOn(track, ch, note, velocity) })
	o.scheduler.Schedule(offDue, func() { o.hostImpl.MidiNoteOff(track, ch, note) })
	return nil
}

// CC schedules a MIDI control-change message (supplemented feature,
// SPEC_FULL.md §4, grounded on the original's midi_cc).
func (m *Midi) CC(track string, cc int, value float64, chanOverride *int) error {
	o := m.ops
	l := o.loop()
	if l == nil {
		return newNotInLoopError("midi.cc")
	}
	ch, err := o.resolveChannel(l, chanOverride)
	if err != nil {
		return err
	}
	due := o.clock.Beat().Add(l.CurrentOffset())
	o.scheduler.Schedule(due, func() { o.hostImpl.MidiCC(track, ch, cc, value) })
	return nil
}

// UseChan scopes a per-loop MIDI channel override for the duration of fn,
// restoring the previous override (or clearing it) on exit, including error
// paths (spec.md §4.6).
func (m *Midi) UseChan(c int, fn func() error) error {
	o := m.ops
	l := o.loop()
	if l == nil {
		return newNotInLoopError("midi.use_chan")
	}
	prev, had := l.MidiChan()
	l.SetMidiChan(c)
	defer func() {
		if had {
			l.SetMidiChan(prev)
		} else {
			l.ClearMidiChan()
		}
	}()
	return fn()
}
