package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/atomicstack/trammel/internal/format"
	"github.com/atomicstack/trammel/internal/format/table"
	"github.com/atomicstack/trammel/internal/logging/events"
	"github.com/atomicstack/trammel/internal/model"
	"github.com/atomicstack/trammel/internal/transmission"
	"github.com/atomicstack/trammel/internal/ui/state"
)

// listFields are the change bits that feed the list columns; a merge that
// only touches other bits leaves cached rows alone.
const listFields = model.FieldName | model.FieldStatus | model.FieldProgress |
	model.FieldSizes | model.FieldRates | model.FieldETA | model.FieldRatio |
	model.FieldPeers | model.FieldTrackers | model.FieldError |
	model.FieldQueue | model.FieldMeta

// cachedRow keeps one torrent's formatted list cells. Alignment and styling
// happen per frame; the humanized formatting only when a listed field moves.
type cachedRow struct {
	cells []string
}

var listAligns = []table.Alignment{
	table.AlignLeft,  // status badge
	table.AlignLeft,  // name
	table.AlignRight, // progress
	table.AlignRight, // size
	table.AlignRight, // rate down
	table.AlignRight, // rate up
	table.AlignRight, // eta
	table.AlignRight, // ratio
	table.AlignRight, // peers
}

// View is part of the tea.Model interface. Pure over (store, view state):
// rendering mutates nothing but viewport offsets and the row cache.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var body []string
	switch m.pane {
	case PaneDetail:
		body = m.viewDetail()
	case PaneHelp:
		body = m.viewHelp()
	case PaneStats:
		body = m.viewStats()
	default:
		body = m.viewList()
	}
	lines := make([]string, 0, len(body)+3)
	lines = append(lines, m.titleBar())
	lines = append(lines, body...)
	if m.height > 0 {
		lines = fitHeight(lines, m.height-2)
	}
	lines = append(lines, m.statusLine(), m.commandLine())
	return strings.Join(fitWidth(lines, m.width), "\n")
}

// listHeight is the row budget between the title bar and the two bottom
// rows; zero means the terminal size is not known yet.
func (m *Model) listHeight() int {
	if m.height <= 0 {
		return 0
	}
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) titleBar() string {
	left := "trammel"
	if m.endpoint != "" {
		left += " " + m.endpoint
	}
	parts := []string{left}
	if session := m.store.Session(); m.store.Connected() {
		parts = append(parts, fmt.Sprintf("Transmission %s (rpc %d)", session.Version, session.RPCVersion))
	}
	parts = append(parts, countNoun(m.store.Len(), "torrent"))
	line := styles.Title.Render(" " + strings.Join(parts, " | "))
	if m.store.Session().AltSpeedEnabled {
		line += styles.AltSpeed.Render(" [turtle]")
	}
	if m.width > 0 {
		if pad := m.width - lipgloss.Width(line); pad > 0 {
			line += styles.Title.Render(strings.Repeat(" ", pad))
		}
	}
	return line
}

func (m *Model) viewList() []string {
	h := m.listHeight()
	m.list.EnsureVisible(h)
	ids := m.list.Rows
	if len(ids) == 0 {
		return []string{"", "  " + m.emptyPlaceholder()}
	}
	start := m.list.ViewportOffset
	end := len(ids)
	if h > 0 && start+h < end {
		end = start + h
	}
	visible := ids[start:end]

	cells := make([][]string, len(visible))
	for i, id := range visible {
		cells[i] = m.rowCells(id)
	}
	aligned := table.FormatCapped(cells, listAligns, m.listCaps())

	dht := !m.store.Connected() || m.store.Session().DHTEnabled
	lines := make([]string, len(aligned))
	for i, row := range aligned {
		id := visible[i]
		mark := "  "
		if m.list.IsMarked(id) {
			mark = styles.Marked.Render("* ")
		}
		if start+i == m.list.Cursor {
			prefix := "> "
			if m.list.IsMarked(id) {
				prefix = ">*"
			}
			text := prefix + row
			if pad := m.width - lipgloss.Width(text); m.width > 0 && pad > 0 {
				text += strings.Repeat(" ", pad)
			}
			lines[i] = styles.Selected.Render(text)
			continue
		}
		style := styles.Row
		if t, ok := m.store.Torrent(id); ok {
			style = rowStyle(t, dht)
		}
		lines[i] = mark + style.Render(row)
	}
	return lines
}

func (m *Model) rowCells(id int64) []string {
	if row, ok := m.rowCache[id]; ok {
		return row.cells
	}
	t, ok := m.store.Torrent(id)
	if !ok {
		return make([]string, len(listAligns))
	}
	dht := !m.store.Connected() || m.store.Session().DHTEnabled
	name := t.Name
	if name == "" {
		name = t.Hash
	}
	if name == "" {
		name = "(magnet)"
	}
	peers := strconv.Itoa(t.PeersConnected)
	if s := t.Seeders(); s >= 0 {
		peers = fmt.Sprintf("%d/%d", t.PeersConnected, s)
	}
	cells := []string{
		t.StatusBadge(dht),
		name,
		format.Percent(t.Progress()),
		format.Size(t.SizeWhenDone),
		format.Rate(t.RateDownload),
		format.Rate(t.RateUpload),
		format.ETA(t.ETA),
		format.Ratio(t.UploadRatio),
		peers,
	}
	m.rowCache[id] = cachedRow{cells: cells}
	return cells
}

// listCaps bounds the list columns; the name column takes whatever the
// fixed columns leave over.
func (m *Model) listCaps() []int {
	if m.width <= 0 {
		return nil
	}
	const fixed = 4 + 4 + 7 + 7 + 7 + 4 + 6 + 7 // every column but name
	const gaps = 2*8 + 2                        // inter-column gaps plus the mark prefix
	nameCap := m.width - fixed - gaps
	if nameCap < 8 {
		nameCap = 8
	}
	return []int{4, nameCap, 4, 7, 7, 7, 4, 6, 7}
}

func rowStyle(t *transmission.Torrent, dht bool) *lipgloss.Style {
	switch {
	case t.Error != 0:
		return styles.Errored
	case t.Status == transmission.StatusStopped:
		return styles.Paused
	case t.Status == transmission.StatusChecking || t.Status == transmission.StatusCheckWait:
		return styles.Verifying
	case t.Isolated(dht):
		return styles.Isolated
	case t.Status == transmission.StatusDownloadWait || t.Status == transmission.StatusSeedWait:
		return styles.Queued
	case t.Status == transmission.StatusSeeding:
		return styles.Seeding
	case t.Status == transmission.StatusDownloading:
		return styles.Downloading
	}
	return styles.Row
}

func (m *Model) emptyPlaceholder() string {
	switch {
	case !m.store.Connected():
		return styles.Info.Render("connecting to " + m.endpoint)
	case m.store.Len() == 0:
		return styles.Info.Render("no torrents; press A to add one")
	}
	return styles.Filtered.Render("no torrents match " + m.filter.String())
}

func (m *Model) statusLine() string {
	down, up := m.store.TotalRates()
	parts := []string{fmt.Sprintf("↓ %s ↑ %s", totalRate(down), totalRate(up))}
	if fs := m.store.FreeSpace(); fs > 0 {
		parts = append(parts, "free "+format.Size(fs))
	}
	if !m.filter.Empty() || m.filter.Invert {
		parts = append(parts, styles.Filtered.Render("filter: "+m.filter.String()))
	}
	parts = append(parts, "sort: "+m.order.String())
	if n := m.list.MarkedCount(); n > 0 {
		parts = append(parts, styles.Marked.Render(fmt.Sprintf("%d marked", n)))
	}
	line := styles.StatusLine.Render(strings.Join(parts, styles.Separator.Render(" | ")))
	if msg := m.statusMessage(); msg != "" {
		line += "  " + msg
	}
	return line
}

func totalRate(bytesPerSecond int64) string {
	if bytesPerSecond <= 0 {
		return "0K"
	}
	return format.Size(bytesPerSecond)
}

// statusMessage picks the one transient message the status line shows:
// errors beat the degraded indicator, which beats success info.
func (m *Model) statusMessage() string {
	if m.mode == ModePrompt && m.prompt != nil && m.prompt.errMsg != "" {
		return styles.Error.Render(m.prompt.errMsg)
	}
	if m.errMsg != "" {
		return styles.Error.Render(m.errMsg)
	}
	if m.failures > 0 {
		return styles.Degraded.Render(fmt.Sprintf("no response from daemon (%d)", m.failures))
	}
	if info := m.currentInfo(); info != "" {
		return styles.Info.Render(info)
	}
	return ""
}

func (m *Model) commandLine() string {
	switch m.mode {
	case ModePrompt:
		if m.prompt == nil {
			return ""
		}
		line := styles.PromptLabel.Render(m.prompt.label+":") + " " + m.prompt.input.View()
		if m.prompt.toggleLabel != "" && m.prompt.toggleOn {
			line += styles.Marked.Render(" [" + m.prompt.toggleLabel + "]")
		}
		return line
	case ModeConfirm:
		if m.confirm == nil {
			return ""
		}
		return styles.Danger.Render(m.confirm.message) + " " + styles.Help.Render("y/n")
	}
	return ""
}

func (m *Model) viewDetail() []string {
	t, ok := m.detailTorrent()
	if !ok {
		return []string{"", "  " + styles.Info.Render("torrent gone")}
	}
	m.syncDetailTabs(t)
	lines := []string{m.detailTabBar()}
	h := m.listHeight() - 1 // tab bar
	switch m.detail.tab {
	case TabFiles:
		lines = append(lines, m.viewDetailFiles(t, h)...)
	case TabPeers:
		lines = append(lines, m.viewDetailPeers(t, h)...)
	case TabTrackers:
		lines = append(lines, m.viewDetailTrackers(t, h)...)
	default:
		lines = append(lines, m.viewDetailOverview(t)...)
	}
	return lines
}

func (m *Model) detailTabBar() string {
	labels := make([]string, len(detailTabs))
	for i, tab := range detailTabs {
		label := " " + tab.String() + " "
		if tab == m.detail.tab {
			labels[i] = styles.TabActive.Render(label)
		} else {
			labels[i] = styles.TabInactive.Render(label)
		}
	}
	return " " + strings.Join(labels, styles.Separator.Render("|"))
}

func (m *Model) viewDetailOverview(t *transmission.Torrent) []string {
	dht := !m.store.Connected() || m.store.Session().DHTEnabled
	have := t.HaveValid + t.HaveUnchecked

	rates := fmt.Sprintf("↓ %s ↑ %s", totalRate(t.RateDownload), totalRate(t.RateUpload))
	if t.DownloadLimited {
		rates += fmt.Sprintf(", down limit %d KB/s", t.DownloadLimit)
	}
	if t.UploadLimited {
		rates += fmt.Sprintf(", up limit %d KB/s", t.UploadLimit)
	}

	limits := "priority " + t.BandwidthPriority.String()
	if !t.HonorsSessionLimits {
		limits += ", ignores session limits"
	}
	switch t.SeedRatioMode {
	case transmission.SeedRatioCustom:
		limits += fmt.Sprintf(", seed ratio %.2f", t.SeedRatioLimit)
	case transmission.SeedRatioUnlimited:
		limits += ", seeds regardless of ratio"
	}

	peers := fmt.Sprintf("%d connected, %d up / %d down", t.PeersConnected, t.PeersGettingFromUs, t.PeersSendingToUs)
	from := t.PeersFrom
	if sum := from.FromTracker + from.FromDHT + from.FromPEX + from.FromLPD + from.FromIncoming + from.FromCache; sum > 0 {
		peers += fmt.Sprintf(" (tracker %d, dht %d, pex %d, incoming %d)", from.FromTracker, from.FromDHT, from.FromPEX, from.FromIncoming)
	}

	trackers := "none"
	if n := len(t.TrackerStats); n > 0 {
		trackers = fmt.Sprintf("%d, primary %s", n, t.MainTracker())
	}

	pairs := []struct{ label, value string }{
		{"name", t.Name},
		{"status", t.DisplayStatus(dht)},
		{"hash", t.Hash},
		{"magnet", t.MagnetLink},
		{"location", t.DownloadDir},
		{"size", fmt.Sprintf("%s of %s wanted, %s left", format.SizeLong(have), format.SizeLong(t.SizeWhenDone), format.SizeLong(t.LeftUntilDone))},
		{"progress", m.progressBar.ViewAs(t.Progress())},
		{"available", format.Percent(t.Available())},
		{"ratio", fmt.Sprintf("%s (%s up, %s down)", format.Ratio(t.UploadRatio), format.SizeLong(t.UploadedEver), format.SizeLong(t.DownloadedEver))},
		{"rates", rates},
		{"eta", format.ETA(t.ETA)},
		{"peers", peers},
		{"error", t.ErrorString},
		{"added", format.Time(t.AddedDate)},
		{"last active", format.Time(t.ActivityDate)},
		{"completed", format.Time(t.DoneDate)},
		{"created", creatorLine(t)},
		{"limits", limits},
		{"labels", strings.Join(t.Labels, ", ")},
		{"trackers", trackers},
		{"pieces", fmt.Sprintf("%s x %s", format.Count(t.PieceCount), format.SizeLong(t.PieceSize))},
		{"comment", t.Comment},
	}

	lines := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if pair.value == "" {
			continue
		}
		label := fmt.Sprintf("%12s", pair.label)
		lines = append(lines, styles.DetailLabel.Render(label)+"  "+styles.DetailValue.Render(pair.value))
	}
	if t.CorruptEver > 0 {
		lines = append(lines, styles.DetailLabel.Render(fmt.Sprintf("%12s", "corrupt"))+"  "+styles.Error.Render(format.SizeLong(t.CorruptEver)))
	}
	return lines
}

func creatorLine(t *transmission.Torrent) string {
	if t.DateCreated <= 0 && t.Creator == "" {
		return ""
	}
	line := format.Time(t.DateCreated)
	if t.Creator != "" {
		line += " by " + t.Creator
	}
	return line
}

func (m *Model) viewDetailFiles(t *transmission.Torrent, h int) []string {
	files := t.FileList()
	if len(files) == 0 {
		return []string{"", "  " + styles.Info.Render("file list not fetched yet")}
	}
	cells := make([][]string, len(files))
	for i, f := range files {
		wanted := " "
		if f.Wanted {
			wanted = "*"
		}
		prio := ""
		if f.Priority != transmission.PriorityNormal {
			prio = f.Priority.String()
		}
		cells[i] = []string{wanted, prio, format.Percent(f.Progress()), format.Size(f.Length), f.Name}
	}
	aligns := []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignRight, table.AlignRight, table.AlignLeft}
	caps := []int{1, 4, 4, 7, m.width - 35}
	return m.tabRows(&m.detail.files, table.FormatCapped(cells, aligns, caps), h)
}

func (m *Model) viewDetailPeers(t *transmission.Torrent, h int) []string {
	if len(t.Peers) == 0 {
		return []string{"", "  " + styles.Info.Render("no peers connected")}
	}
	cells := make([][]string, len(t.Peers))
	for i, p := range t.Peers {
		cells[i] = []string{
			p.FlagStr,
			m.countries[p.Address],
			p.Address,
			format.Percent(p.Progress),
			format.Rate(p.RateToClient),
			format.Rate(p.RateToPeer),
			p.ClientName,
		}
	}
	aligns := []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignLeft, table.AlignRight, table.AlignRight, table.AlignRight, table.AlignLeft}
	caps := []int{8, 2, 39, 4, 7, 7, m.width - 75}
	return m.tabRows(&m.detail.peers, table.FormatCapped(cells, aligns, caps), h)
}

func (m *Model) viewDetailTrackers(t *transmission.Torrent, h int) []string {
	if len(t.TrackerStats) == 0 {
		return []string{"", "  " + styles.Info.Render("no trackers")}
	}
	cells := make([][]string, len(t.TrackerStats))
	for i, ts := range t.TrackerStats {
		last := "never announced"
		if ts.HasAnnounced {
			last = fmt.Sprintf("%s: %s", format.Time(ts.LastAnnounceTime), ts.LastAnnounceResult)
		}
		cells[i] = []string{
			strconv.Itoa(ts.Tier),
			ts.Domain(),
			fmt.Sprintf("%d/%d/%d", ts.SeederCount, ts.LeecherCount, ts.DownloadCount),
			last,
		}
	}
	aligns := []table.Alignment{table.AlignRight, table.AlignLeft, table.AlignRight, table.AlignLeft}
	caps := []int{2, 30, 14, m.width - 52}
	return m.tabRows(&m.detail.trackers, table.FormatCapped(cells, aligns, caps), h)
}

// tabRows windows an aligned row set around the tab cursor and highlights
// the focused row.
func (m *Model) tabRows(tab *state.Tab, rows []string, h int) []string {
	tab.EnsureVisible(h)
	start := tab.ViewportOffset
	end := len(rows)
	if h > 0 && start+h < end {
		end = start + h
	}
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		if i == tab.Pos {
			out = append(out, styles.Selected.Render("> "+rows[i]))
			continue
		}
		out = append(out, "  "+styles.DetailValue.Render(rows[i]))
	}
	return out
}

func (m *Model) viewHelp() []string {
	lines := []string{""}
	for _, group := range m.keys.HelpGroups() {
		lines = append(lines, " "+styles.Header.Render(group.Title))
		lines = append(lines, " "+m.helpView.ShortHelpView(group.Bindings), "")
	}
	lines = append(lines, " "+styles.Help.Render("any key returns to the list"))
	return lines
}

func (m *Model) viewStats() []string {
	stats := m.store.Stats()
	session := m.store.Session()

	bucket := func(b transmission.StatsBucket) []string {
		rows := []string{
			fmt.Sprintf("%14s  %s", "uploaded", format.SizeLong(b.UploadedBytes)),
			fmt.Sprintf("%14s  %s", "downloaded", format.SizeLong(b.DownloadedBytes)),
			fmt.Sprintf("%14s  %.2f", "ratio", b.Ratio()),
			fmt.Sprintf("%14s  %s", "active", format.Duration(b.SecondsActive)),
		}
		if b.SessionCount > 0 {
			rows = append(rows, fmt.Sprintf("%14s  %s", "sessions", format.Count(b.SessionCount)))
		}
		return rows
	}

	lines := []string{"", " " + styles.Header.Render("session")}
	lines = append(lines,
		fmt.Sprintf("%14s  %d active, %d paused of %d", "torrents", stats.ActiveTorrentCount, stats.PausedTorrentCount, stats.TorrentCount),
		fmt.Sprintf("%14s  ↓ %s ↑ %s", "rates", totalRate(stats.DownloadSpeed), totalRate(stats.UploadSpeed)),
	)
	if fs := m.store.FreeSpace(); fs > 0 {
		lines = append(lines, fmt.Sprintf("%14s  %s in %s", "free space", format.SizeLong(fs), session.DownloadDir))
	}
	lines = append(lines, "", " "+styles.Header.Render("current"))
	lines = append(lines, bucket(stats.Current)...)
	lines = append(lines, "", " "+styles.Header.Render("cumulative"))
	lines = append(lines, bucket(stats.Cumulative)...)
	lines = append(lines, "", " "+styles.Help.Render("any key returns to the list"))
	return lines
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	m.width = resize.Width
	m.height = resize.Height
	m.helpView.Width = resize.Width
	if w := resize.Width - 24; w > 10 {
		if w > 50 {
			w = 50
		}
		m.progressBar.Width = w
	}
	m.list.EnsureVisible(m.listHeight())
	events.UI.Resize(resize.Width, resize.Height)
	return nil
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}

func fitHeight(lines []string, h int) []string {
	if h <= 0 {
		return lines
	}
	if len(lines) > h {
		return lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return lines
}

func fitWidth(lines []string, width int) []string {
	if width <= 0 {
		return lines
	}
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = truncate.StringWithTail(line, uint(width-1), "…")
		}
	}
	return lines
}
