package registry

import "github.com/soir-live/soir/internal/errors"

// Base sentinels. Compare with errors.Is(err, ErrSamplePackNotFound) etc.
var (
	ErrSamplePackNotFound  = errors.NewStd("sample pack not found")
	ErrRecordingInProgress = errors.NewStd("a recording is already in progress")
	ErrInvalidTrackLayout  = errors.NewStd("invalid track layout")
)

func newSamplePackNotFoundError(pack string) error {
	return errors.New(ErrSamplePackNotFound).
		Component("registry").
		Category(errors.CategoryTracks).
		Context("pack", pack).
		Build()
}

func newRecordingInProgressError(existing string) error {
	return errors.New(ErrRecordingInProgress).
		Component("registry").
		Category(errors.CategoryRecording).
		Context("active_file", existing).
		Build()
}

func newInvalidTrackLayoutError(reason string) error {
	return errors.New(ErrInvalidTrackLayout).
		Component("registry").
		Category(errors.CategoryTracks).
		Context("reason", reason).
		Build()
}
