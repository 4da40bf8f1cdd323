package events

import "github.com/atomicstack/trammel/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type SortTracer struct{}

type ActionTracer struct{}

var (
	UI     = UITracer{}
	Filter = FilterTracer{}
	Sort   = SortTracer{}
	Action = ActionTracer{}
)

func (UITracer) Pane(pane string) {
	logging.Trace("ui.pane", map[string]interface{}{"pane": pane})
}

func (UITracer) Tab(tab string) {
	logging.Trace("ui.tab", map[string]interface{}{"tab": tab})
}

func (UITracer) Modal(modal string) {
	logging.Trace("ui.modal", map[string]interface{}{"modal": modal})
}

func (UITracer) Focus(id int64) {
	logging.Trace("ui.focus", map[string]interface{}{"id": id})
}

func (UITracer) Resize(width, height int) {
	logging.Trace("ui.resize", map[string]interface{}{"width": width, "height": height})
}

func (FilterTracer) Set(mode, pattern string, invert bool) {
	logging.Trace("filter.set", map[string]interface{}{"mode": mode, "pattern": pattern, "invert": invert})
}

func (FilterTracer) Cleared() {
	logging.Trace("filter.clear", nil)
}

func (SortTracer) Set(key string, reverse bool) {
	logging.Trace("sort.set", map[string]interface{}{"key": key, "reverse": reverse})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}

func (ActionTracer) Success(info string) {
	logging.Trace("action.success", map[string]interface{}{"info": info})
}
