package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/soir-live/soir/internal/logging"
)

// EventBus provides asynchronous event processing with non-blocking guarantees
type EventBus struct {
	// Channels
	errorEventChan    chan ErrorEvent
	resourceEventChan chan ResourceEvent
	ingestEventChan   chan IngestEvent

	// Configuration
	bufferSize int
	workers    int
	config     *Config

	// State management
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	initialized atomic.Bool
	running     atomic.Bool
	mu          sync.Mutex

	// Consumers
	consumers         []EventConsumer
	resourceConsumers []ResourceEventConsumer
	ingestConsumers   []IngestEventConsumer

	// Deduplication
	dedup *ErrorDeduplicator

	// Metrics
	stats     EventBusStats
	startTime time.Time

	// Logging
	logger *slog.Logger
}

// ResourceEventConsumer processes runtime resource events.
type ResourceEventConsumer interface {
	Name() string
	ProcessResourceEvent(event ResourceEvent) error
}

// Global event bus instance (lazily initialized)
var (
	globalEventBus     *EventBus
	globalMutex        sync.Mutex
	hasActiveConsumers atomic.Bool
)

// HasActiveConsumers reports whether any consumer is currently registered.
// Used as a cheap fast-path check before the errors package bothers building
// an event to publish.
func HasActiveConsumers() bool {
	return hasActiveConsumers.Load()
}

// ResetForTesting tears down the global event bus so tests can start from a
// clean slate. Not for production use.
func ResetForTesting() {
	globalMutex.Lock()
	eb := globalEventBus
	globalEventBus = nil
	globalMutex.Unlock()

	hasActiveConsumers.Store(false)

	if eb != nil {
		_ = eb.Shutdown(5 * time.Second)
	}
}

// DefaultConfig returns the default event bus configuration
func DefaultConfig() *Config {
	return &Config{
		BufferSize: 10000,
		Workers:    4,
		Enabled:    true,
	}
}

// Config holds event bus configuration
type Config struct {
	BufferSize    int
	Workers       int
	Enabled       bool
	Debug         bool
	Deduplication *DeduplicationConfig
}

// Initialize creates or returns the global event bus instance
func Initialize(config *Config) (*EventBus, error) {
	globalMutex.Lock()
	defer globalMutex.Unlock()

	// Return existing instance if already initialized
	if globalEventBus != nil {
		return globalEventBus, nil
	}

	// Use default config if none provided
	if config == nil {
		config = DefaultConfig()
	}

	// Skip initialization if disabled
	if !config.Enabled {
		return nil, nil
	}

	// Create new event bus
	ctx, cancel := context.WithCancel(context.Background())

	eb := &EventBus{
		errorEventChan:    make(chan ErrorEvent, config.BufferSize),
		resourceEventChan: make(chan ResourceEvent, config.BufferSize),
		ingestEventChan:   make(chan IngestEvent, config.BufferSize),
		bufferSize:        config.BufferSize,
		workers:           config.Workers,
		config:            config,
		ctx:               ctx,
		cancel:            cancel,
		consumers:         make([]EventConsumer, 0),
		resourceConsumers: make([]ResourceEventConsumer, 0),
		ingestConsumers:   make([]IngestEventConsumer, 0),
		logger:            logging.ForService("events"),
		startTime:         time.Now(),
	}

	if config.Deduplication != nil && config.Deduplication.Enabled {
		eb.dedup = NewErrorDeduplicator(config.Deduplication, eb.logger)
	}

	// Mark as initialized
	eb.initialized.Store(true)

	// Store global instance
	globalEventBus = eb

	eb.logger.Info("event bus initialized",
		"buffer_size", config.BufferSize,
		"workers", config.Workers,
	)
	if config.Debug {
		eb.logger.Debug("debug logging enabled for event bus")
	}

	return eb, nil
}

// GetEventBus returns the global event bus instance
func GetEventBus() *EventBus {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	return globalEventBus
}

// IsInitialized returns true if the event bus has been initialized
func IsInitialized() bool {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	return globalEventBus != nil && globalEventBus.initialized.Load()
}

// RegisterConsumer adds a new error event consumer
func (eb *EventBus) RegisterConsumer(consumer EventConsumer) error {
	if eb == nil {
		return fmt.Errorf("event bus not initialized")
	}

	eb.mu.Lock()
	defer eb.mu.Unlock()

	for _, existing := range eb.consumers {
		if existing.Name() == consumer.Name() {
			return fmt.Errorf("consumer %s already registered", consumer.Name())
		}
	}

	eb.consumers = append(eb.consumers, consumer)
	hasActiveConsumers.Store(true)

	eb.logger.Info("registered event consumer",
		"consumer", consumer.Name(),
		"supports_batching", consumer.SupportsBatching(),
	)

	if len(eb.consumers)+len(eb.resourceConsumers) == 1 && !eb.running.Load() {
		eb.start()
	}

	return nil
}

// RegisterResourceConsumer adds a new resource event consumer
func (eb *EventBus) RegisterResourceConsumer(consumer ResourceEventConsumer) error {
	if eb == nil {
		return fmt.Errorf("event bus not initialized")
	}

	eb.mu.Lock()
	defer eb.mu.Unlock()

	for _, existing := range eb.resourceConsumers {
		if existing.Name() == consumer.Name() {
			return fmt.Errorf("resource consumer %s already registered", consumer.Name())
		}
	}

	eb.resourceConsumers = append(eb.resourceConsumers, consumer)
	hasActiveConsumers.Store(true)

	eb.logger.Info("registered resource event consumer", "consumer", consumer.Name())

	if len(eb.consumers)+len(eb.resourceConsumers) == 1 && !eb.running.Load() {
		eb.start()
	}

	return nil
}

// RegisterIngestConsumer adds a new ingest event consumer
func (eb *EventBus) RegisterIngestConsumer(consumer IngestEventConsumer) error {
	if eb == nil {
		return fmt.Errorf("event bus not initialized")
	}

	eb.mu.Lock()
	defer eb.mu.Unlock()

	for _, existing := range eb.ingestConsumers {
		if existing.Name() == consumer.Name() {
			return fmt.Errorf("ingest consumer %s already registered", consumer.Name())
		}
	}

	eb.ingestConsumers = append(eb.ingestConsumers, consumer)
	hasActiveConsumers.Store(true)

	eb.logger.Info("registered ingest event consumer", "consumer", consumer.Name())

	if len(eb.consumers)+len(eb.resourceConsumers)+len(eb.ingestConsumers) == 1 && !eb.running.Load() {
		eb.start()
	}

	return nil
}

// TryPublishIngest attempts to publish an ingest event without blocking.
func (eb *EventBus) TryPublishIngest(event IngestEvent) bool {
	if eb == nil || !eb.initialized.Load() || !eb.running.Load() {
		return false
	}

	eb.mu.Lock()
	hasConsumers := len(eb.ingestConsumers) > 0
	eb.mu.Unlock()

	if !hasConsumers {
		return false
	}

	select {
	case eb.ingestEventChan <- event:
		atomic.AddUint64(&eb.stats.EventsReceived, 1)
		return true
	default:
		atomic.AddUint64(&eb.stats.EventsDropped, 1)
		if eb.logger != nil {
			eb.logger.Debug("ingest event dropped due to full buffer", "generation", event.GetGeneration())
		}
		return false
	}
}

// TryPublish attempts to publish an error event without blocking.
// Returns true if the event was accepted, false if dropped.
func (eb *EventBus) TryPublish(event ErrorEvent) bool {
	if eb == nil || !eb.initialized.Load() || !eb.running.Load() {
		return false
	}

	eb.mu.Lock()
	hasConsumers := len(eb.consumers) > 0
	eb.mu.Unlock()

	if !hasConsumers {
		return false
	}

	if eb.dedup != nil && !eb.dedup.ShouldProcess(event) {
		atomic.AddUint64(&eb.stats.EventsSuppressed, 1)
		return false
	}

	select {
	case eb.errorEventChan <- event:
		atomic.AddUint64(&eb.stats.EventsReceived, 1)
		return true
	default:
		atomic.AddUint64(&eb.stats.EventsDropped, 1)
		if eb.logger != nil {
			eb.logger.Debug("event dropped due to full buffer",
				"component", event.GetComponent(),
				"category", event.GetCategory(),
			)
		}
		return false
	}
}

// TryPublishResource attempts to publish a resource event without blocking.
func (eb *EventBus) TryPublishResource(event ResourceEvent) bool {
	if eb == nil || !eb.initialized.Load() || !eb.running.Load() {
		return false
	}

	eb.mu.Lock()
	hasConsumers := len(eb.resourceConsumers) > 0
	eb.mu.Unlock()

	if !hasConsumers {
		return false
	}

	select {
	case eb.resourceEventChan <- event:
		atomic.AddUint64(&eb.stats.EventsReceived, 1)
		return true
	default:
		atomic.AddUint64(&eb.stats.EventsDropped, 1)
		if eb.logger != nil {
			eb.logger.Debug("resource event dropped due to full buffer",
				"resource_type", event.GetResourceType(),
			)
		}
		return false
	}
}

// start begins the worker goroutines
func (eb *EventBus) start() {
	if eb.running.Swap(true) {
		return // Already running
	}

	eb.logger.Info("starting event bus workers", "count", eb.workers)

	for i := 0; i < eb.workers; i++ {
		eb.wg.Add(1)
		go eb.worker(i)
	}
}

// worker processes events from the error, resource and ingest channels
func (eb *EventBus) worker(id int) {
	defer eb.wg.Done()

	logger := eb.logger.With("worker_id", id)
	logger.Debug("worker started")

	for {
		select {
		case <-eb.ctx.Done():
			logger.Debug("worker stopping due to context cancellation")
			return

		case event, ok := <-eb.errorEventChan:
			if !ok {
				logger.Debug("worker stopping due to channel closure")
				return
			}
			eb.processEvent(event, logger)

		case event, ok := <-eb.resourceEventChan:
			if !ok {
				logger.Debug("worker stopping due to channel closure")
				return
			}
			eb.processResourceEvent(event, logger)

		case event, ok := <-eb.ingestEventChan:
			if !ok {
				logger.Debug("worker stopping due to channel closure")
				return
			}
			eb.processIngestEvent(event, logger)
		}
	}
}

// processEvent sends the event to all registered error consumers
func (eb *EventBus) processEvent(event ErrorEvent, logger *slog.Logger) {
	eb.mu.Lock()
	consumers := make([]EventConsumer, len(eb.consumers))
	copy(consumers, eb.consumers)
	eb.mu.Unlock()

	for _, consumer := range consumers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					atomic.AddUint64(&eb.stats.ConsumerErrors, 1)
					logger.Error("consumer panicked",
						"consumer", consumer.Name(),
						"panic", r,
						"component", event.GetComponent(),
						"category", event.GetCategory(),
					)
				}
			}()

			err := consumer.ProcessEvent(event)
			if err != nil {
				atomic.AddUint64(&eb.stats.ConsumerErrors, 1)
				logger.Error("consumer error",
					"consumer", consumer.Name(),
					"error", err,
					"component", event.GetComponent(),
					"category", event.GetCategory(),
				)
			} else {
				atomic.AddUint64(&eb.stats.EventsProcessed, 1)
			}
		}()
	}
}

// processResourceEvent sends the event to all registered resource consumers
func (eb *EventBus) processResourceEvent(event ResourceEvent, logger *slog.Logger) {
	eb.mu.Lock()
	consumers := make([]ResourceEventConsumer, len(eb.resourceConsumers))
	copy(consumers, eb.resourceConsumers)
	eb.mu.Unlock()

	for _, consumer := range consumers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					atomic.AddUint64(&eb.stats.ConsumerErrors, 1)
					logger.Error("resource consumer panicked",
						"consumer", consumer.Name(),
						"panic", r,
						"resource_type", event.GetResourceType(),
					)
				}
			}()

			if err := consumer.ProcessResourceEvent(event); err != nil {
				atomic.AddUint64(&eb.stats.ConsumerErrors, 1)
				logger.Error("resource consumer error",
					"consumer", consumer.Name(),
					"error", err,
					"resource_type", event.GetResourceType(),
				)
			} else {
				atomic.AddUint64(&eb.stats.EventsProcessed, 1)
			}
		}()
	}
}

// processIngestEvent sends the event to all registered ingest consumers
func (eb *EventBus) processIngestEvent(event IngestEvent, logger *slog.Logger) {
	eb.mu.Lock()
	consumers := make([]IngestEventConsumer, len(eb.ingestConsumers))
	copy(consumers, eb.ingestConsumers)
	eb.mu.Unlock()

	for _, consumer := range consumers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					atomic.AddUint64(&eb.stats.ConsumerErrors, 1)
					logger.Error("ingest consumer panicked",
						"consumer", consumer.Name(),
						"panic", r,
						"generation", event.GetGeneration(),
					)
				}
			}()

			if err := consumer.ProcessIngestEvent(event); err != nil {
				atomic.AddUint64(&eb.stats.ConsumerErrors, 1)
				logger.Error("ingest consumer error",
					"consumer", consumer.Name(),
					"error", err,
					"generation", event.GetGeneration(),
				)
			} else {
				atomic.AddUint64(&eb.stats.EventsProcessed, 1)
			}
		}()
	}
}

// Shutdown gracefully shuts down the event bus
func (eb *EventBus) Shutdown(timeout time.Duration) error {
	if eb == nil || !eb.initialized.Load() {
		return nil
	}

	eb.logger.Info("shutting down event bus", "timeout", timeout)

	eb.running.Store(false)

	if eb.dedup != nil {
		eb.dedup.Shutdown()
	}

	eb.cancel()

	done := make(chan struct{})
	go func() {
		eb.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		eb.logger.Info("event bus shutdown complete")
		return nil
	case <-time.After(timeout):
		eb.logger.Warn("event bus shutdown timeout exceeded")
		return fmt.Errorf("shutdown timeout exceeded")
	}
}

// GetStats returns current event bus statistics
func (eb *EventBus) GetStats() EventBusStats {
	if eb == nil {
		return EventBusStats{}
	}

	return EventBusStats{
		EventsReceived:   atomic.LoadUint64(&eb.stats.EventsReceived),
		EventsSuppressed: atomic.LoadUint64(&eb.stats.EventsSuppressed),
		EventsProcessed:  atomic.LoadUint64(&eb.stats.EventsProcessed),
		EventsDropped:    atomic.LoadUint64(&eb.stats.EventsDropped),
		ConsumerErrors:   atomic.LoadUint64(&eb.stats.ConsumerErrors),
	}
}
