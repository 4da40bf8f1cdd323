package events

import (
	"time"

	"github.com/atomicstack/trammel/internal/logging"
)

type PollerTracer struct{}

var Poller = PollerTracer{}

func (PollerTracer) Cycle(full bool, torrents int, took time.Duration) {
	logging.Trace("poller.cycle", map[string]interface{}{
		"full":     full,
		"torrents": torrents,
		"ms":       took.Milliseconds(),
	})
}

func (PollerTracer) Failure(count int, err error) {
	if err == nil {
		return
	}
	logging.Trace("poller.failure", map[string]interface{}{"count": count, "error": err.Error()})
}

func (PollerTracer) Recovered(after int) {
	logging.Trace("poller.recovered", map[string]interface{}{"failures": after})
}

func (PollerTracer) Cadence(passive bool, interval time.Duration) {
	logging.Trace("poller.cadence", map[string]interface{}{"passive": passive, "interval": interval.String()})
}

func (PollerTracer) Watch(id int64) {
	logging.Trace("poller.watch", map[string]interface{}{"id": id})
}
