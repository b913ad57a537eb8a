package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics holds the Prometheus collectors for the running engine:
// scheduler throughput, control-rate generation tracking, snapshot ingest
// outcomes, and the host bridge's MQTT connectivity.
type EngineMetrics struct {
	operationsTotal *prometheus.CounterVec
	operationErrors *prometheus.CounterVec
	operationDur    *prometheus.HistogramVec

	schedulerQueueDepth prometheus.Gauge
	schedulerDrainSecs  prometheus.Histogram
	controlTicksTotal   prometheus.Counter

	generation   prometheus.Gauge
	ingestTotal  *prometheus.CounterVec
	loopCount    prometheus.Gauge
	liveCount    prometheus.Gauge
	controlCount prometheus.Gauge

	mqttConnected    prometheus.Gauge
	mqttPublishTotal *prometheus.CounterVec
}

// NewEngineMetrics registers and returns the engine's Prometheus collectors
// against registry. Each metric family is registered exactly once; a second
// call against the same registry returns an error from the underlying
// prometheus.Registerer rather than panicking, matching prometheus convention.
func NewEngineMetrics(registry prometheus.Registerer) (*EngineMetrics, error) {
	m := &EngineMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soir",
			Name:      "operations_total",
			Help:      "Count of operations by name and status.",
		}, []string{"operation", "status"}),
		operationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soir",
			Name:      "operation_errors_total",
			Help:      "Count of operation errors by name and error type.",
		}, []string{"operation", "error_type"}),
		operationDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "soir",
			Name:      "operation_duration_seconds",
			Help:      "Observed duration of operations by name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		schedulerQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "soir",
			Subsystem: "scheduler",
			Name:      "queue_depth",
			Help:      "Number of pending actions in the scheduler's priority queue.",
		}),
		schedulerDrainSecs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "soir",
			Subsystem: "scheduler",
			Name:      "drain_seconds",
			Help:      "Wall-clock time spent draining due actions on a control tick.",
			Buckets:   prometheus.DefBuckets,
		}),
		controlTicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "soir",
			Subsystem: "control",
			Name:      "ticks_total",
			Help:      "Count of control-rate ticks advanced by the engine.",
		}),

		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "soir",
			Subsystem: "ingest",
			Name:      "generation",
			Help:      "Current reconciliation generation, bumped on successful ingest.",
		}),
		ingestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soir",
			Subsystem: "ingest",
			Name:      "total",
			Help:      "Count of snapshot ingest attempts by outcome.",
		}, []string{"status"}),
		loopCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "soir",
			Subsystem: "registry",
			Name:      "loops",
			Help:      "Number of loop artifacts currently registered.",
		}),
		liveCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "soir",
			Subsystem: "registry",
			Name:      "lives",
			Help:      "Number of live artifacts currently registered.",
		}),
		controlCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "soir",
			Subsystem: "registry",
			Name:      "controls",
			Help:      "Number of control-rate generators currently registered.",
		}),

		mqttConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "soir",
			Subsystem: "mqtt",
			Name:      "connected",
			Help:      "1 if the MQTT host bridge is connected, 0 otherwise.",
		}),
		mqttPublishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soir",
			Subsystem: "mqtt",
			Name:      "publish_total",
			Help:      "Count of MQTT publish attempts by topic and outcome.",
		}, []string{"topic", "status"}),
	}

	collectors := []prometheus.Collector{
		m.operationsTotal, m.operationErrors, m.operationDur,
		m.schedulerQueueDepth, m.schedulerDrainSecs, m.controlTicksTotal,
		m.generation, m.ingestTotal, m.loopCount, m.liveCount, m.controlCount,
		m.mqttConnected, m.mqttPublishTotal,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}
