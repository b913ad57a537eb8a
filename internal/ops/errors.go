package ops

import "github.com/soir-live/soir/internal/errors"

// Base sentinels for the "am I inside a loop?" invariant (spec.md §4.6, I3/I4).
var (
	ErrNotInLoop        = errors.NewStd("operation requires an active loop")
	ErrInLoop           = errors.NewStd("operation is only legal at global scope")
	ErrUnknownMidiTrack = errors.NewStd("no MIDI channel resolved for this call")
)

func newNotInLoopError(op string) error {
	return errors.New(ErrNotInLoop).
		Component("ops").
		Category(errors.CategoryLoop).
		Context("op", op).
		Build()
}

func newInLoopError(op string) error {
	return errors.New(ErrInLoop).
		Component("ops").
		Category(errors.CategoryLoop).
		Context("op", op).
		Build()
}

func newUnknownMidiTrackError() error {
	return errors.New(ErrUnknownMidiTrack).
		Component("ops").
		Category(errors.CategoryMIDI).
		Build()
}
