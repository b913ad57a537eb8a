package events

import (
	"fmt"
	"strings"
	"time"
)

// ResourceEvent represents a runtime resource threshold crossing (scheduler
// lag, queue depth, buffer health) that can be processed asynchronously.
type ResourceEvent interface {
	// GetResourceType returns the kind of resource being monitored.
	GetResourceType() string

	// GetCurrentValue returns the current reading for the resource.
	GetCurrentValue() float64

	// GetThreshold returns the threshold that was crossed.
	GetThreshold() float64

	// GetSeverity returns the severity level.
	GetSeverity() string

	// GetTimestamp returns when the event occurred.
	GetTimestamp() time.Time

	// GetMetadata returns additional context data.
	GetMetadata() map[string]any

	// GetMessage returns a human-readable message.
	GetMessage() string

	// GetPath returns an identifying label (track name, consumer name) or "".
	GetPath() string
}

// resourceEventImpl is the concrete implementation of ResourceEvent
type resourceEventImpl struct {
	resourceType string
	currentValue float64
	threshold    float64
	severity     string
	timestamp    time.Time
	metadata     map[string]any
	path         string // identifying label, e.g. track or consumer name
}

// NewResourceEvent creates a new resource monitoring event
func NewResourceEvent(resourceType string, currentValue, threshold float64, severity string) ResourceEvent {
	return &resourceEventImpl{
		resourceType: resourceType,
		currentValue: currentValue,
		threshold:    threshold,
		severity:     severity,
		timestamp:    time.Now(),
		metadata:     make(map[string]any),
	}
}

// NewResourceEventWithMetadata creates a new resource event with metadata
func NewResourceEventWithMetadata(resourceType string, currentValue, threshold float64, severity string, metadata map[string]any) ResourceEvent {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return &resourceEventImpl{
		resourceType: resourceType,
		currentValue: currentValue,
		threshold:    threshold,
		severity:     severity,
		timestamp:    time.Now(),
		metadata:     metadata,
	}
}

// NewResourceEventWithPath creates a new resource event carrying an
// identifying label, such as the track whose control queue is backing up.
func NewResourceEventWithPath(resourceType string, currentValue, threshold float64, severity, path string) ResourceEvent {
	event := &resourceEventImpl{
		resourceType: resourceType,
		currentValue: currentValue,
		threshold:    threshold,
		severity:     severity,
		timestamp:    time.Now(),
		metadata:     make(map[string]any),
		path:         path,
	}
	if path != "" {
		event.metadata["path"] = path
	}
	return event
}

// NewResourceEventWithPaths creates a new resource event spanning multiple
// affected labels (for example several tracks lagging behind the same beat).
func NewResourceEventWithPaths(resourceType string, currentValue, threshold float64, severity, primary string, paths []string) ResourceEvent {
	event := &resourceEventImpl{
		resourceType: resourceType,
		currentValue: currentValue,
		threshold:    threshold,
		severity:     severity,
		timestamp:    time.Now(),
		metadata:     make(map[string]any),
		path:         primary,
	}
	if primary != "" {
		event.metadata["path"] = primary
	}
	if len(paths) > 0 {
		event.metadata["paths"] = paths
	}
	return event
}

func (e *resourceEventImpl) GetResourceType() string     { return e.resourceType }
func (e *resourceEventImpl) GetCurrentValue() float64    { return e.currentValue }
func (e *resourceEventImpl) GetThreshold() float64       { return e.threshold }
func (e *resourceEventImpl) GetSeverity() string         { return e.severity }
func (e *resourceEventImpl) GetTimestamp() time.Time     { return e.timestamp }
func (e *resourceEventImpl) GetMetadata() map[string]any { return e.metadata }
func (e *resourceEventImpl) GetPath() string             { return e.path }

// GetMessage returns a human-readable message
func (e *resourceEventImpl) GetMessage() string {
	var resourceName string
	switch e.resourceType {
	case ResourceSchedulerLag:
		resourceName = "Scheduler lag"
	case ResourceControlQueue:
		resourceName = "Control queue"
	case ResourceAudioBuffer:
		resourceName = "Audio buffer"
	default:
		resourceName = e.resourceType
	}

	if e.path != "" {
		resourceName = fmt.Sprintf("%s (%s)", resourceName, e.path)
	}

	var baseMessage string
	switch e.severity {
	case SeverityRecovery:
		baseMessage = fmt.Sprintf("%s has returned to normal (%.1f)", resourceName, e.currentValue)
	case SeverityWarning:
		baseMessage = fmt.Sprintf("%s warning: %.1f (threshold: %.1f)", resourceName, e.currentValue, e.threshold)
	case SeverityCritical:
		baseMessage = fmt.Sprintf("%s critical: %.1f (threshold: %.1f)", resourceName, e.currentValue, e.threshold)
	default:
		baseMessage = fmt.Sprintf("%s: %.1f", resourceName, e.currentValue)
	}

	if paths, ok := e.metadata["paths"].([]string); ok && len(paths) > 1 {
		baseMessage += fmt.Sprintf("\nAffected: %s", strings.Join(paths, ", "))
	}

	return baseMessage
}

// Severity constants for resource events
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
	SeverityRecovery = "recovery"
)

// Resource type constants for runtime health monitoring.
const (
	// ResourceSchedulerLag is the gap, in beats, between a scheduled fire
	// time and when the scheduler actually dispatched it.
	ResourceSchedulerLag = "scheduler_lag"
	// ResourceControlQueue is backlog depth on a track's control queue.
	ResourceControlQueue = "control_queue"
	// ResourceAudioBuffer is underrun/overrun pressure on the host audio buffer.
	ResourceAudioBuffer = "audio_buffer"
)
