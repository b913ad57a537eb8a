package registry

import (
	"sync"

	"github.com/google/uuid"
)

// RecordingRequest is a single in-flight recording (spec.md §3).
type RecordingRequest struct {
	ID          uuid.UUID
	FilePath    string
	RequestedAt uint64
}

// RecordingState tracks the at-most-one active recording invariant.
type RecordingState struct {
	mu     sync.Mutex
	active *RecordingRequest
}

// NewRecordingState returns a state with no active recording.
func NewRecordingState() *RecordingState {
	return &RecordingState{}
}

// Request starts a new recording, failing with RecordingInProgress if one is
// already active.
func (rs *RecordingState) Request(filePath string, generation uint64) (*RecordingRequest, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.active != nil {
		return nil, newRecordingInProgressError(rs.active.FilePath)
	}
	req := &RecordingRequest{
		ID:          uuid.New(),
		FilePath:    filePath,
		RequestedAt: generation,
	}
	rs.active = req
	return req, nil
}

// Active returns the in-flight recording, if any.
func (rs *RecordingState) Active() (*RecordingRequest, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.active, rs.active != nil
}

// Clear marks the active recording as finished.
func (rs *RecordingState) Clear() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.active = nil
}
