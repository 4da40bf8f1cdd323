package events

import (
	"time"

	"github.com/atomicstack/trammel/internal/logging"
)

type RPCTracer struct{}

var RPC = RPCTracer{}

func (RPCTracer) Request(method string) {
	logging.Trace("rpc.request", map[string]interface{}{"method": method})
}

func (RPCTracer) Response(method string, took time.Duration) {
	logging.Trace("rpc.response", map[string]interface{}{"method": method, "ms": took.Milliseconds()})
}

func (RPCTracer) Fault(method, class string, err error) {
	if err == nil {
		return
	}
	logging.Trace("rpc.fault", map[string]interface{}{"method": method, "class": class, "error": err.Error()})
}

func (RPCTracer) SessionRotated() {
	logging.Trace("rpc.session-id.rotate", nil)
}
