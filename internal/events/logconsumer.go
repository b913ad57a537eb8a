package events

import (
	"log/slog"

	"github.com/soir-live/soir/internal/logging"
)

// LogConsumer routes error, resource and ingest events to structured logging. It is
// the always-on consumer cmd/run registers so the event bus never sits idle
// once it is initialized.
type LogConsumer struct {
	log *slog.Logger
}

// NewLogConsumer builds a LogConsumer logging under the "events" service name.
func NewLogConsumer() *LogConsumer {
	return &LogConsumer{log: logging.ForService("events")}
}

func (c *LogConsumer) Name() string { return "log" }

func (c *LogConsumer) ProcessEvent(event ErrorEvent) error {
	c.log.Error("reported error event",
		"component", event.GetComponent(),
		"category", event.GetCategory(),
		"message", event.GetMessage(),
	)
	return nil
}

func (c *LogConsumer) ProcessBatch(evts []ErrorEvent) error {
	for _, e := range evts {
		if err := c.ProcessEvent(e); err != nil {
			return err
		}
	}
	return nil
}

func (c *LogConsumer) SupportsBatching() bool { return true }

func (c *LogConsumer) ProcessIngestEvent(event IngestEvent) error {
	c.log.Info("snapshot ingested",
		"generation", event.GetGeneration(),
		"source", event.GetSource(),
		"loops_swept", event.GetLoopsSwept(),
		"lives_swept", event.GetLiveSwept(),
		"duration", event.GetDuration(),
		"first_ingest", event.IsFirstIngest(),
	)
	return nil
}

func (c *LogConsumer) ProcessResourceEvent(event ResourceEvent) error {
	c.log.Warn("resource threshold crossed",
		"resource", event.GetResourceType(),
		"value", event.GetCurrentValue(),
		"threshold", event.GetThreshold(),
		"severity", event.GetSeverity(),
		"path", event.GetPath(),
	)
	return nil
}
