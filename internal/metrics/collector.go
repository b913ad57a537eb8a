package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/soir-live/soir/internal/logging"
)

var log = logging.ForService("metrics")

// Collector wraps EngineMetrics with nil-safety so callers can hold a
// Collector unconditionally and simply not record anything when metrics are
// disabled, mirroring how the rest of the engine treats optional collaborators.
type Collector struct {
	metrics *EngineMetrics
	mu      sync.RWMutex
	enabled bool
}

// NewCollector wraps engineMetrics. Passing nil yields a disabled collector
// whose methods are all no-ops, matching NoOpRecorder's contract.
func NewCollector(engineMetrics *EngineMetrics) *Collector {
	return &Collector{
		metrics: engineMetrics,
		enabled: engineMetrics != nil,
	}
}

func (c *Collector) RecordOperation(operation, status string) {
	if !c.enabled {
		return
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.metrics.operationsTotal.WithLabelValues(operation, status).Inc()
}

func (c *Collector) RecordDuration(operation string, seconds float64) {
	if !c.enabled {
		return
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.metrics.operationDur.WithLabelValues(operation).Observe(seconds)
}

func (c *Collector) RecordError(operation, errorType string) {
	if !c.enabled {
		return
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.metrics.operationErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordSchedulerQueueDepth reports the current size of the scheduler's
// pending-action priority queue.
func (c *Collector) RecordSchedulerQueueDepth(depth int) {
	if !c.enabled {
		return
	}
	c.metrics.schedulerQueueDepth.Set(float64(depth))
}

// RecordSchedulerDrain reports how long a control tick spent draining due actions.
func (c *Collector) RecordSchedulerDrain(seconds float64) {
	if !c.enabled {
		return
	}
	c.metrics.schedulerDrainSecs.Observe(seconds)
}

// RecordControlTick increments the control-rate tick counter.
func (c *Collector) RecordControlTick() {
	if !c.enabled {
		return
	}
	c.metrics.controlTicksTotal.Inc()
}

// SetGeneration reports the current reconciliation generation.
func (c *Collector) SetGeneration(generation uint64) {
	if !c.enabled {
		return
	}
	c.metrics.generation.Set(float64(generation))
}

// RecordIngest reports the outcome of a snapshot ingest attempt, implementing
// internal/engine.IngestRecorder.
func (c *Collector) RecordIngest(success bool) {
	if !c.enabled {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	c.metrics.ingestTotal.WithLabelValues(status).Inc()
}

// SetPopulation reports the current number of registered loops, lives and
// control-rate generators.
func (c *Collector) SetPopulation(loops, lives, controls int) {
	if !c.enabled {
		return
	}
	c.metrics.loopCount.Set(float64(loops))
	c.metrics.liveCount.Set(float64(lives))
	c.metrics.controlCount.Set(float64(controls))
}

// RecordMQTTConnection implements mqtt.ConnectionRecorder.
func (c *Collector) RecordMQTTConnection(connected bool) {
	if !c.enabled {
		return
	}
	if connected {
		c.metrics.mqttConnected.Set(1)
	} else {
		c.metrics.mqttConnected.Set(0)
	}
}

// RecordMQTTPublish implements mqtt.ConnectionRecorder.
func (c *Collector) RecordMQTTPublish(topic string, err error) {
	if !c.enabled {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.mqttPublishTotal.WithLabelValues(topic, status).Inc()
}

var (
	globalCollector atomic.Pointer[Collector]
	globalOnce      sync.Once
)

// InitGlobal installs engineMetrics as the process-wide collector returned by
// Global. Safe to call once at startup; later calls are no-ops.
func InitGlobal(engineMetrics *EngineMetrics) *Collector {
	var c *Collector
	globalOnce.Do(func() {
		c = NewCollector(engineMetrics)
		globalCollector.Store(c)
		if engineMetrics != nil {
			log.Info("metrics collector initialized")
		} else {
			log.Debug("metrics collector disabled")
		}
	})
	if c == nil {
		c = globalCollector.Load()
	}
	return c
}

// Global returns the process-wide collector, or a disabled one if InitGlobal
// was never called.
func Global() *Collector {
	if c := globalCollector.Load(); c != nil {
		return c
	}
	return NewCollector(nil)
}
