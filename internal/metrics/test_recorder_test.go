package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestRecorderRecordOperation(t *testing.T) {
	t.Parallel()

	r := NewTestRecorder()
	r.RecordOperation("ingest", "success")
	r.RecordOperation("ingest", "success")
	r.RecordOperation("ingest", "error")

	assert.Equal(t, 2, r.GetOperationCount("ingest", "success"))
	assert.Equal(t, 1, r.GetOperationCount("ingest", "error"))
	assert.Equal(t, 0, r.GetOperationCount("schedule", "success"))
}

func TestTestRecorderRecordDuration(t *testing.T) {
	t.Parallel()

	r := NewTestRecorder()
	r.RecordDuration("control_tick", 0.001)
	r.RecordDuration("control_tick", 0.002)

	durations := r.GetDurations("control_tick")
	require.Len(t, durations, 2)
	assert.InDelta(t, 0.001, durations[0], 0.0001)
	assert.Nil(t, r.GetDurations("missing"))
}

func TestTestRecorderRecordError(t *testing.T) {
	t.Parallel()

	r := NewTestRecorder()
	r.RecordError("ingest", "parse_error")

	assert.Equal(t, 1, r.GetErrorCount("ingest", "parse_error"))
	assert.Equal(t, 0, r.GetErrorCount("ingest", "timeout"))
}

func TestTestRecorderResetAndHasRecordedMetrics(t *testing.T) {
	t.Parallel()

	r := NewTestRecorder()
	assert.False(t, r.HasRecordedMetrics())

	r.RecordOperation("op", "success")
	assert.True(t, r.HasRecordedMetrics())

	r.Reset()
	assert.False(t, r.HasRecordedMetrics())
}

func TestNoOpRecorderDoesNotPanic(t *testing.T) {
	t.Parallel()

	r := NewNoOpRecorder()
	assert.NotPanics(t, func() {
		r.RecordOperation("op", "success")
		r.RecordDuration("op", 1.0)
		r.RecordError("op", "err")
	})
}
