package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/trammel/internal/logging/events"
	"github.com/atomicstack/trammel/internal/transmission"
	"github.com/atomicstack/trammel/internal/ui/state"
)

var detailTabs = []DetailTab{TabOverview, TabFiles, TabPeers, TabTrackers}

func (m *Model) detailTorrent() (*transmission.Torrent, bool) {
	if m.detail.id == 0 {
		return nil, false
	}
	return m.store.Torrent(m.detail.id)
}

// syncDetailTabs clamps the per-tab cursors to the arrays the last merge
// delivered. Cursors survive a merge; they only move when rows vanish from
// under them.
func (m *Model) syncDetailTabs(t *transmission.Torrent) {
	m.detail.files.SetSize(len(t.Files))
	m.detail.peers.SetSize(len(t.Peers))
	m.detail.trackers.SetSize(len(t.TrackerStats))
}

func (m *Model) activeTab() *state.Tab {
	switch m.detail.tab {
	case TabFiles:
		return &m.detail.files
	case TabPeers:
		return &m.detail.peers
	case TabTrackers:
		return &m.detail.trackers
	}
	return nil
}

func (m *Model) setDetailTab(tab DetailTab) {
	if m.detail.tab == tab {
		return
	}
	m.detail.tab = tab
	events.UI.Tab(tab.String())
}

func (m *Model) cycleDetailTab(delta int) {
	n := len(detailTabs)
	next := (int(m.detail.tab) + delta + n) % n
	m.setDetailTab(detailTabs[next])
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	t, ok := m.detailTorrent()
	if !ok {
		m.closeDetail()
		return nil
	}
	m.syncDetailTabs(t)
	keys := &m.keys
	switch {
	case key.Matches(msg, keys.Back):
		m.closeDetail()
	case key.Matches(msg, keys.Quit):
		// Back already consumed plain q; only ctrl+c lands here.
		return m.quit()
	case key.Matches(msg, keys.NextTab):
		m.cycleDetailTab(1)
	case key.Matches(msg, keys.PrevTab):
		m.cycleDetailTab(-1)
	case key.Matches(msg, keys.OverviewTab):
		m.setDetailTab(TabOverview)
	case key.Matches(msg, keys.FilesTab):
		m.setDetailTab(TabFiles)
	case key.Matches(msg, keys.PeersTab):
		m.setDetailTab(TabPeers)
		return m.lookupCountries()
	case key.Matches(msg, keys.TrackersTab):
		m.setDetailTab(TabTrackers)
	case key.Matches(msg, keys.Down):
		m.moveDetailCursor(1)
	case key.Matches(msg, keys.Up):
		m.moveDetailCursor(-1)
	case key.Matches(msg, keys.Top):
		m.moveDetailCursor(-len(t.Files) - len(t.Peers) - len(t.TrackerStats))
	case key.Matches(msg, keys.Bottom):
		m.moveDetailCursor(len(t.Files) + len(t.Peers) + len(t.TrackerStats))
	case key.Matches(msg, keys.PageDown):
		m.moveDetailCursor(m.listHeight())
	case key.Matches(msg, keys.PageUp):
		m.moveDetailCursor(-m.listHeight())
	case key.Matches(msg, keys.Select):
		return m.toggleFileWanted(t)
	case key.Matches(msg, keys.PriorityUp):
		return m.bumpFilePriority(t, 1)
	case key.Matches(msg, keys.PriorityDown):
		return m.bumpFilePriority(t, -1)
	case key.Matches(msg, keys.AddTracker):
		m.openTrackerPrompt(t.ID)
	case key.Matches(msg, keys.RemoveTracker):
		return m.removeTrackerUnderCursor(t)
	}
	return nil
}

func (m *Model) moveDetailCursor(delta int) {
	if tab := m.activeTab(); tab != nil {
		tab.Move(delta)
	}
}

func (m *Model) toggleFileWanted(t *transmission.Torrent) tea.Cmd {
	if m.detail.tab != TabFiles || m.client == nil {
		return nil
	}
	files := t.FileList()
	idx := m.detail.files.Pos
	if idx < 0 || idx >= len(files) {
		return nil
	}
	f := files[idx]
	return fileWantedCmd(m.client, t.ID, []int{f.Index}, !f.Wanted)
}

func (m *Model) bumpFilePriority(t *transmission.Torrent, delta int) tea.Cmd {
	if m.detail.tab != TabFiles || m.client == nil {
		return nil
	}
	files := t.FileList()
	idx := m.detail.files.Pos
	if idx < 0 || idx >= len(files) {
		return nil
	}
	next := files[idx].Priority + transmission.Priority(delta)
	if next < transmission.PriorityLow || next > transmission.PriorityHigh {
		return nil
	}
	return filePriorityCmd(m.client, t.ID, []int{files[idx].Index}, next)
}

func (m *Model) removeTrackerUnderCursor(t *transmission.Torrent) tea.Cmd {
	if m.detail.tab != TabTrackers || m.client == nil {
		return nil
	}
	idx := m.detail.trackers.Pos
	if idx < 0 || idx >= len(t.TrackerStats) {
		return nil
	}
	return removeTrackerCmd(m.client, t.ID, t.TrackerStats[idx].ID)
}
