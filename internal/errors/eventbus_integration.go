// Package errors - event bus integration
package errors

import (
	"sync/atomic"
)

// EventPublisher is an interface for publishing error events
// This interface allows the errors package to publish events without
// importing the events package, avoiding circular dependencies
type EventPublisher interface {
	TryPublish(event any) bool
}

// Global event publisher (set by the events package)
var globalEventPublisher atomic.Value // stores EventPublisher

// SetEventPublisher sets the global event publisher
// This should be called by the events package during initialization
func SetEventPublisher(publisher EventPublisher) {
	globalEventPublisher.Store(publisher)
	hasActiveReporting.Store(true)
}

// publishToEventBus publishes an error to the event bus if available
func publishToEventBus(ee *EnhancedError) {
	// Load the publisher atomically
	publisher := globalEventPublisher.Load()
	if publisher == nil {
		return
	}
	
	eventPublisher := publisher.(EventPublisher)
	
	// Try to publish the event
	// The event bus will handle type assertion to ErrorEvent interface
	eventPublisher.TryPublish(ee)
}

// report dispatches an enhanced error to the event bus and any registered
// hooks. Called from ErrorBuilder.Build when reporting is active.
func report(ee *EnhancedError) {
	if !hasActiveReporting.Load() {
		return
	}

	if globalEventPublisher.Load() != nil {
		publishToEventBus(ee)
	}

	runHooks(ee)
}