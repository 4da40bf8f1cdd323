package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/trammel/internal/logging/events"
	"github.com/atomicstack/trammel/internal/model"
	"github.com/atomicstack/trammel/internal/transmission"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch m.pane {
	case PaneHelp:
		return m.handleHelpKey(keyMsg)
	case PaneStats:
		return m.handleStatsKey(keyMsg)
	case PaneDetail:
		return m.handleDetailKey(keyMsg)
	}
	return m.handleListKey(keyMsg)
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	keys := &m.keys
	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()
	case key.Matches(msg, keys.Down):
		m.list.MoveBy(1)
	case key.Matches(msg, keys.Up):
		m.list.MoveBy(-1)
	case key.Matches(msg, keys.Top):
		m.list.MoveHome()
	case key.Matches(msg, keys.Bottom):
		m.list.MoveEnd()
	case key.Matches(msg, keys.PageUp):
		m.list.PageUp(m.listHeight())
	case key.Matches(msg, keys.PageDown):
		m.list.PageDown(m.listHeight())
	case key.Matches(msg, keys.Open):
		m.openDetail()
	case key.Matches(msg, keys.Select):
		if m.list.ToggleMark() {
			m.list.MoveBy(1)
		}
	case key.Matches(msg, keys.SelectAll):
		m.list.MarkAll()
	case key.Matches(msg, keys.InvertSelection):
		m.list.InvertMarks()
	case key.Matches(msg, keys.Clear):
		m.clearSelectionOrFilter()
	case key.Matches(msg, keys.Search):
		m.openSearchPrompt()
	case key.Matches(msg, keys.Filter):
		m.openFilterPrompt()
	case key.Matches(msg, keys.InvertFilter):
		m.filter.Invert = !m.filter.Invert
		events.Filter.Set(m.filter.Mode.String(), m.filter.Pattern, m.filter.Invert)
		m.refreshRows()
	case key.Matches(msg, keys.Sort):
		m.openSortPrompt()
	case key.Matches(msg, keys.Pause):
		return m.togglePause()
	case key.Matches(msg, keys.PauseAll):
		return m.togglePauseAll()
	case key.Matches(msg, keys.StartNow):
		return m.torrentAction(actionStartNow)
	case key.Matches(msg, keys.Verify):
		return m.torrentAction(actionVerify)
	case key.Matches(msg, keys.Reannounce):
		return m.torrentAction(actionReannounce)
	case key.Matches(msg, keys.Remove):
		m.confirmRemove(false)
	case key.Matches(msg, keys.RemoveData):
		m.confirmRemove(true)
	case key.Matches(msg, keys.Move):
		m.openMovePrompt()
	case key.Matches(msg, keys.Rename):
		m.openRenamePrompt()
	case key.Matches(msg, keys.Add):
		m.openAddPrompt()
	case key.Matches(msg, keys.Labels):
		m.openLabelsPrompt()
	case key.Matches(msg, keys.GlobalUpLimit):
		m.openSessionLimitPrompt(transmission.Up)
	case key.Matches(msg, keys.GlobalDownLimit):
		m.openSessionLimitPrompt(transmission.Down)
	case key.Matches(msg, keys.UpLimit):
		m.openTorrentLimitPrompt(transmission.Up)
	case key.Matches(msg, keys.DownLimit):
		m.openTorrentLimitPrompt(transmission.Down)
	case key.Matches(msg, keys.PriorityUp):
		return m.bumpPriority(1)
	case key.Matches(msg, keys.PriorityDown):
		return m.bumpPriority(-1)
	case key.Matches(msg, keys.HonorsLimits):
		return m.toggleHonorsLimits()
	case key.Matches(msg, keys.SeedRatio):
		m.openSeedRatioPrompt()
	case key.Matches(msg, keys.QueueDown):
		return m.moveQueue(transmission.QueueDown)
	case key.Matches(msg, keys.QueueUp):
		return m.moveQueue(transmission.QueueUp)
	case key.Matches(msg, keys.QueueBottom):
		return m.moveQueue(transmission.QueueBottom)
	case key.Matches(msg, keys.QueueTop):
		return m.moveQueue(transmission.QueueTop)
	case key.Matches(msg, keys.CopyMagnet):
		return m.copyMagnet()
	case key.Matches(msg, keys.Turtle):
		return m.toggleTurtle()
	case key.Matches(msg, keys.Stats):
		m.pane = PaneStats
		events.UI.Pane(m.pane.String())
	case key.Matches(msg, keys.Help):
		m.pane = PaneHelp
		events.UI.Pane(m.pane.String())
	case key.Matches(msg, keys.Shutdown):
		m.confirmShutdown()
	}
	return nil
}

// Help and stats are transient overlays; any key puts the list back.
func (m *Model) handleHelpKey(tea.KeyMsg) tea.Cmd {
	m.pane = PaneList
	events.UI.Pane(m.pane.String())
	return nil
}

func (m *Model) handleStatsKey(tea.KeyMsg) tea.Cmd {
	m.pane = PaneList
	events.UI.Pane(m.pane.String())
	return nil
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	return tea.Quit
}

func (m *Model) openDetail() {
	id, ok := m.list.Current()
	if !ok {
		return
	}
	m.pane = PaneDetail
	m.detail = detailState{id: id, tab: TabOverview}
	events.UI.Pane(m.pane.String())
	events.UI.Focus(id)
	if m.poller != nil {
		m.poller.WatchDetails(id)
		m.poller.Refresh()
	}
}

func (m *Model) closeDetail() {
	m.pane = PaneList
	m.detail = detailState{}
	events.UI.Pane(m.pane.String())
	if m.poller != nil {
		m.poller.WatchDetails(0)
	}
}

// clearSelectionOrFilter drops marks first; with nothing marked it clears
// the filter instead, so one escape never discards both.
func (m *Model) clearSelectionOrFilter() {
	if m.list.ClearMarks() {
		return
	}
	if m.filter.Empty() && !m.filter.Invert {
		return
	}
	m.filter = model.Filter{}
	events.Filter.Cleared()
	m.refreshRows()
}

type torrentAction int

const (
	actionStartNow torrentAction = iota
	actionVerify
	actionReannounce
)

func (m *Model) torrentAction(action torrentAction) tea.Cmd {
	targets := m.targets()
	if len(targets) == 0 || m.client == nil {
		return nil
	}
	switch action {
	case actionVerify:
		return verifyCmd(m.client, targets)
	case actionReannounce:
		return reannounceCmd(m.client, targets)
	}
	return startNowCmd(m.client, targets)
}

// togglePause flips each target by its own state, so a mixed selection
// pauses the running ones and resumes the stopped ones in one keystroke.
func (m *Model) togglePause() tea.Cmd {
	targets := m.targets()
	if len(targets) == 0 || m.client == nil {
		return nil
	}
	var start, stop []int64
	for _, id := range targets {
		t, ok := m.store.Torrent(id)
		if !ok {
			continue
		}
		if t.Status == transmission.StatusStopped {
			start = append(start, id)
		} else {
			stop = append(stop, id)
		}
	}
	if len(start) == 0 && len(stop) == 0 {
		return nil
	}
	return togglePauseCmd(m.client, start, stop)
}

func (m *Model) togglePauseAll() tea.Cmd {
	if m.client == nil || m.store.Len() == 0 {
		return nil
	}
	anyActive := false
	for _, id := range m.store.IDs() {
		if t, ok := m.store.Torrent(id); ok && t.Status != transmission.StatusStopped {
			anyActive = true
			break
		}
	}
	return pauseAllCmd(m.client, anyActive)
}

func (m *Model) confirmRemove(deleteData bool) {
	targets := m.targets()
	if len(targets) == 0 || m.client == nil {
		return
	}
	subject := fmt.Sprintf("%d torrents", len(targets))
	if len(targets) == 1 {
		if t, ok := m.store.Torrent(targets[0]); ok && t.Name != "" {
			subject = t.Name
		}
	}
	message := fmt.Sprintf("Remove %s?", subject)
	if deleteData {
		message = fmt.Sprintf("Remove %s and delete downloaded data?", subject)
	}
	m.openConfirm(message, removeCmd(m.client, targets, deleteData))
}

func (m *Model) confirmShutdown() {
	if m.client == nil {
		return
	}
	m.openConfirm("Shut down the Transmission daemon?", shutdownCmd(m.client))
}

func (m *Model) bumpPriority(delta int) tea.Cmd {
	targets := m.targets()
	if len(targets) == 0 || m.client == nil {
		return nil
	}
	t, ok := m.currentTorrent()
	if !ok {
		return nil
	}
	next := t.BandwidthPriority + transmission.Priority(delta)
	if next < transmission.PriorityLow || next > transmission.PriorityHigh {
		return nil
	}
	return priorityCmd(m.client, targets, next)
}

func (m *Model) toggleHonorsLimits() tea.Cmd {
	targets := m.targets()
	if len(targets) == 0 || m.client == nil {
		return nil
	}
	t, ok := m.currentTorrent()
	if !ok {
		return nil
	}
	return honorsLimitsCmd(m.client, targets, !t.HonorsSessionLimits)
}

func (m *Model) moveQueue(dir transmission.QueueMove) tea.Cmd {
	targets := m.targets()
	if len(targets) == 0 || m.client == nil {
		return nil
	}
	return queueCmd(m.client, targets, dir)
}

func (m *Model) copyMagnet() tea.Cmd {
	t, ok := m.currentTorrent()
	if !ok {
		return nil
	}
	if t.MagnetLink == "" {
		m.errMsg = "no magnet link known for the focused torrent yet"
		return nil
	}
	return copyMagnetCmd(t.MagnetLink)
}

func (m *Model) toggleTurtle() tea.Cmd {
	if m.client == nil {
		return nil
	}
	return altSpeedCmd(m.client, !m.store.Session().AltSpeedEnabled)
}

// actionResultMsg is the ack a command closure sends back to the loop.
type actionResultMsg struct {
	info    string
	err     error
	refresh bool
	quit    bool
}

func (m *Model) handleActionResultMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(actionResultMsg)
	if !ok {
		return nil
	}
	if res.err != nil {
		events.Action.Error(res.err)
		m.errMsg = res.err.Error()
		return nil
	}
	m.errMsg = ""
	if res.info != "" {
		events.Action.Success(res.info)
		m.setInfo(res.info)
	}
	if res.refresh && m.poller != nil {
		m.poller.Refresh()
	}
	if res.quit {
		m.quitting = true
		return tea.Quit
	}
	return nil
}
