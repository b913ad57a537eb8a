package events

import (
	"fmt"
	"time"

	"github.com/soir-live/soir/internal/errors"
)

// IngestEvent represents the outcome of a snapshot ingest that can be
// processed asynchronously by diagnostics consumers.
type IngestEvent interface {
	// GetGeneration returns the generation stamp assigned to this ingest.
	GetGeneration() uint64

	// GetSource returns a short identifier for the ingested snapshot (path, hash, or label).
	GetSource() string

	// GetLoopsSwept returns how many loop artifacts were dropped as stale.
	GetLoopsSwept() int

	// GetLiveSwept returns how many live artifacts were dropped as stale.
	GetLiveSwept() int

	// GetDuration returns how long evaluation and reconciliation took.
	GetDuration() time.Duration

	// GetTimestamp returns when the ingest completed.
	GetTimestamp() time.Time

	// GetMetadata returns additional context data
	GetMetadata() map[string]interface{}

	// IsFirstIngest returns true if this was the first successful ingest.
	IsFirstIngest() bool
}

// ingestEventImpl is the concrete implementation of IngestEvent
type ingestEventImpl struct {
	generation   uint64
	source       string
	loopsSwept   int
	liveSwept    int
	duration     time.Duration
	timestamp    time.Time
	metadata     map[string]interface{}
	isFirstIngest bool
}

// NewIngestEvent creates a new ingest event with input validation
func NewIngestEvent(
	generation uint64,
	source string,
	loopsSwept int,
	liveSwept int,
	duration time.Duration,
	isFirstIngest bool,
) (IngestEvent, error) {
	if source == "" {
		return nil, errors.Newf("NewIngestEvent: source cannot be empty").
			Component("events").
			Category(errors.CategoryIngest).
			Build()
	}
	if loopsSwept < 0 || liveSwept < 0 {
		return nil, errors.Newf("NewIngestEvent: swept counts cannot be negative").
			Component("events").
			Category(errors.CategoryIngest).
			Context("loopsSwept", loopsSwept).
			Context("liveSwept", liveSwept).
			Build()
	}

	return &ingestEventImpl{
		generation:    generation,
		source:        source,
		loopsSwept:    loopsSwept,
		liveSwept:     liveSwept,
		duration:      duration,
		timestamp:     time.Now(),
		metadata:      make(map[string]interface{}),
		isFirstIngest: isFirstIngest,
	}, nil
}

func (e *ingestEventImpl) GetGeneration() uint64             { return e.generation }
func (e *ingestEventImpl) GetSource() string                 { return e.source }
func (e *ingestEventImpl) GetLoopsSwept() int                { return e.loopsSwept }
func (e *ingestEventImpl) GetLiveSwept() int                 { return e.liveSwept }
func (e *ingestEventImpl) GetDuration() time.Duration        { return e.duration }
func (e *ingestEventImpl) GetTimestamp() time.Time           { return e.timestamp }
func (e *ingestEventImpl) GetMetadata() map[string]interface{} { return e.metadata }
func (e *ingestEventImpl) IsFirstIngest() bool               { return e.isFirstIngest }

// String returns a string representation of the ingest event
func (e *ingestEventImpl) String() string {
	return fmt.Sprintf("Ingest: gen=%d source=%s swept(loops=%d,live=%d) took=%s",
		e.generation, e.source, e.loopsSwept, e.liveSwept, e.duration)
}

// IngestEventConsumer represents a consumer that processes ingest events
type IngestEventConsumer interface {
	EventConsumer

	// ProcessIngestEvent processes a single ingest event
	ProcessIngestEvent(event IngestEvent) error
}
