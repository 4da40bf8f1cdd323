package events

import "github.com/atomicstack/trammel/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Connected(version string, rpcVersion int) {
	logging.Trace("app.connected", map[string]interface{}{"version": version, "rpc": rpcVersion})
}

func (AppTracer) Shutdown() {
	logging.Trace("app.shutdown", nil)
}
