package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/trammel/internal/model"
	"github.com/atomicstack/trammel/internal/poller"
)

func waitForPollerEvent(p *poller.Poller) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-p.Events()
		if !ok {
			return pollerDoneMsg{}
		}
		return pollerEventMsg{event: evt}
	}
}

type pollerEventMsg struct {
	event poller.Event
}

type pollerDoneMsg struct{}

func (m *Model) handlePollerEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(pollerEventMsg)
	if !ok {
		return nil
	}
	cmd := m.applyPollerEvent(eventMsg.event)
	if m.poller != nil {
		waitCmd := waitForPollerEvent(m.poller)
		if cmd != nil {
			return tea.Batch(cmd, waitCmd)
		}
		return waitCmd
	}
	return cmd
}

func (m *Model) handlePollerDoneMsg(tea.Msg) tea.Cmd {
	m.poller = nil
	return nil
}

// applyPollerEvent merges one poll cycle into the store. A failed cycle only
// moves the failure counter; whatever the screen shows stays up, stale data
// beats a blank panel while the daemon is away.
func (m *Model) applyPollerEvent(evt poller.Event) tea.Cmd {
	m.failures = evt.Failures
	if evt.Err != nil {
		return nil
	}

	if evt.Session != nil && m.store.SetSession(*evt.Session) {
		// session settings feed the status badges and the isolated filter
		// (both hinge on dht), so a changed session invalidates every cached
		// row and the row selection
		m.rowCache = map[int64]cachedRow{}
		m.refreshRows()
	}
	if evt.Stats != nil {
		m.store.SetStats(*evt.Stats)
	}
	if evt.FreeSpace != nil {
		m.store.SetFreeSpace(*evt.FreeSpace)
	}

	var changes model.ChangeSet
	if evt.Snapshot != nil {
		changes = changes.Merge(m.store.Merge(*evt.Snapshot))
	}
	if evt.Detail != nil {
		changes = changes.Merge(m.store.Merge(*evt.Detail))
	}
	m.applyChanges(changes)

	if evt.Detail != nil {
		return m.lookupCountries()
	}
	return nil
}

// applyChanges folds a ChangeSet into view state: the row cache drops
// entries whose displayed fields moved, marks on removed torrents are
// dropped, and the visible rows are recomputed. Selection and scroll are
// keyed by torrent id, so a merge never moves them on its own.
func (m *Model) applyChanges(changes model.ChangeSet) {
	if changes.Empty() {
		return
	}
	for _, id := range changes.Added {
		delete(m.rowCache, id)
	}
	for _, id := range changes.Removed {
		delete(m.rowCache, id)
	}
	for id, fields := range changes.Updated {
		if fields&listFields != 0 {
			delete(m.rowCache, id)
		}
	}

	m.list.DropMarks(changes.Removed)
	m.refreshRows()

	if m.detail.id != 0 && changes.Touches(m.detail.id) {
		if _, ok := m.store.Torrent(m.detail.id); !ok && m.mode == ModeNormal {
			// the watched torrent is gone; fall back to the list unless a
			// modal is open, which must never be closed by a merge
			m.closeDetail()
		}
	}
}
