package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atomicstack/trammel/internal/poller"
	"github.com/atomicstack/trammel/internal/transmission"
)

// lineWith returns the first frame line containing needle, failing the test
// when no line does.
func lineWith(t *testing.T, view, needle string) string {
	t.Helper()
	for _, line := range strings.Split(view, "\n") {
		if strings.Contains(line, needle) {
			return line
		}
	}
	t.Fatalf("no line contains %q in:\n%s", needle, view)
	return ""
}

func TestViewBeforeFirstEvent(t *testing.T) {
	h := newHarness(Options{})
	view := h.View()
	if !strings.Contains(view, "connecting to http://seedbox:9091/transmission/rpc") {
		t.Fatalf("expected connecting placeholder:\n%s", view)
	}
	if !strings.Contains(view, "0 torrents") {
		t.Fatalf("expected an empty count in the title:\n%s", view)
	}
	if strings.Contains(view, "Transmission") {
		t.Fatal("expected no daemon version before the handshake")
	}
}

func TestEmptyListPlaceholders(t *testing.T) {
	h := newHarness(Options{})
	sendList(h)
	if !strings.Contains(h.View(), "no torrents; press A to add one") {
		t.Fatalf("expected the empty-daemon hint:\n%s", h.View())
	}

	sendList(h, listTorrent(1, "alpha", transmission.StatusSeeding))
	h.Key("/")
	h.Type("zzz")
	h.Key("enter")
	if !strings.Contains(h.View(), "no torrents match ~zzz") {
		t.Fatalf("expected the filtered-out placeholder:\n%s", h.View())
	}
}

func TestTitleBarShowsDaemonAndTurtle(t *testing.T) {
	h := newHarness(Options{})
	turtled := testSession()
	turtled.AltSpeedEnabled = true
	h.Send(pollerEventMsg{event: poller.Event{Session: turtled, Snapshot: fullSnapshot(
		listTorrent(1, "alpha", transmission.StatusSeeding),
		listTorrent(2, "beta", transmission.StatusSeeding),
	)}})

	title := strings.Split(h.View(), "\n")[0]
	for _, want := range []string{"trammel http://seedbox:9091/transmission/rpc", "Transmission 4.0.5 (rpc 17)", "2 torrents", "[turtle]"} {
		if !strings.Contains(title, want) {
			t.Fatalf("expected title to contain %q, got %q", want, title)
		}
	}
}

func TestListRowIndicators(t *testing.T) {
	h := newHarness(Options{})
	sendList(h,
		listTorrent(1, "alpha", transmission.StatusSeeding),
		listTorrent(2, "beta", transmission.StatusSeeding),
		listTorrent(3, "gamma", transmission.StatusSeeding),
	)

	h.Key("space") // mark alpha, cursor moves to beta
	view := h.View()
	if line := lineWith(t, view, "alpha"); !strings.HasPrefix(line, "* ") {
		t.Fatalf("expected mark prefix on alpha, got %q", line)
	}
	if line := lineWith(t, view, "beta"); !strings.HasPrefix(line, "> ") {
		t.Fatalf("expected cursor prefix on beta, got %q", line)
	}
	if line := lineWith(t, view, "gamma"); !strings.HasPrefix(line, "  ") {
		t.Fatalf("expected plain prefix on gamma, got %q", line)
	}

	h.Key("k") // back onto alpha, which stays marked
	if line := lineWith(t, h.View(), "alpha"); !strings.HasPrefix(line, ">*") {
		t.Fatalf("expected combined cursor+mark prefix, got %q", line)
	}
}

func TestStatusLineAggregates(t *testing.T) {
	h := newHarness(Options{})
	alpha := listTorrent(1, "alpha", transmission.StatusDownloading)
	alpha.RateDownload = 1536
	beta := listTorrent(2, "beta", transmission.StatusSeeding)
	beta.RateUpload = 2048
	free := int64(10 << 30)
	h.Send(pollerEventMsg{event: poller.Event{
		Session:   testSession(),
		Snapshot:  fullSnapshot(alpha, beta),
		FreeSpace: &free,
	}})
	h.Key("space")

	view := h.View()
	for _, want := range []string{"↓ 1.5K ↑ 2K", "free 10G", "sort: name", "1 marked"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected status line to contain %q:\n%s", want, view)
		}
	}
}

func TestNamePatchRefreshesCachedRow(t *testing.T) {
	h := newHarness(Options{})
	sendList(h, listTorrent(1, "alpha", transmission.StatusSeeding))
	if !strings.Contains(h.View(), "alpha") {
		t.Fatal("expected initial name on screen")
	}

	sendPatch(h, nil, transmission.Record(transmission.Torrent{ID: 1, Name: "omega"}, "name"))
	view := h.View()
	if !strings.Contains(view, "omega") {
		t.Fatalf("expected the new name:\n%s", view)
	}
	if strings.Contains(view, "alpha") {
		t.Fatalf("expected the cached row dropped with the old name:\n%s", view)
	}
}

func TestHelpPaneListsGroupsAndReturns(t *testing.T) {
	h := newHarness(Options{})
	sendList(h, listTorrent(1, "alpha", transmission.StatusSeeding))

	h.Key("?")
	view := h.View()
	for _, want := range []string{"Navigate", "Bandwidth", "move down", "any key returns to the list"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected help to contain %q:\n%s", want, view)
		}
	}

	h.Key("x")
	if h.Model().pane != PaneList {
		t.Fatal("expected any key to leave the help pane")
	}
	if !strings.Contains(h.View(), "alpha") {
		t.Fatal("expected the list back after help")
	}
}

func TestStatsPaneShowsBuckets(t *testing.T) {
	h := newHarness(Options{})
	free := int64(10 << 30)
	h.Send(pollerEventMsg{event: poller.Event{
		Session:  testSession(),
		Snapshot: fullSnapshot(listTorrent(1, "alpha", transmission.StatusSeeding)),
		Stats: &transmission.SessionStats{
			ActiveTorrentCount: 2,
			PausedTorrentCount: 1,
			TorrentCount:       3,
			DownloadSpeed:      1536,
			UploadSpeed:        512,
			Current: transmission.StatsBucket{
				UploadedBytes:   1 << 30,
				DownloadedBytes: 1 << 29,
				SecondsActive:   7200,
			},
			Cumulative: transmission.StatsBucket{
				UploadedBytes:   5 << 30,
				DownloadedBytes: 2 << 30,
				SecondsActive:   86400,
				SessionCount:    12,
			},
		},
		FreeSpace: &free,
	}})

	h.Key("S")
	view := h.View()
	for _, want := range []string{
		"2 active, 1 paused of 3",
		"free space  10 GiB in /data",
		"1.0 GiB",
		"2.00",
		"2h",
		"cumulative",
		"sessions  12",
	} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected stats to contain %q:\n%s", want, view)
		}
	}

	h.Key("enter")
	if h.Model().pane != PaneList {
		t.Fatal("expected any key to leave the stats pane")
	}
}

func detailTorrentFixture() transmission.Torrent {
	tor := listTorrent(1, "ubuntu-24.04.iso", transmission.StatusDownloading)
	tor.Hash = "3b1a1f4c1a9f4e2d8c7b6a5948372615aabbccdd"
	tor.MagnetLink = "magnet:?xt=urn:btih:3b1a1f4c"
	tor.RateDownload = 1536
	tor.MetadataPercentComplete = 1
	tor.Labels = []string{"linux", "iso"}
	tor.Comment = "Official image"
	tor.Files = []transmission.FileInfo{
		{Name: "ubuntu-24.04.iso", Length: 700 << 20, BytesCompleted: 350 << 20},
		{Name: "SHA256SUMS", Length: 1 << 10, BytesCompleted: 1 << 10},
	}
	tor.Priorities = []transmission.Priority{transmission.PriorityNormal, transmission.PriorityHigh}
	tor.Wanted = []transmission.Flag{true, false}
	tor.TrackerStats = []transmission.TrackerStat{{
		ID:            5,
		Announce:      "http://tracker.debian.org/announce",
		SeederCount:   12,
		LeecherCount:  3,
		DownloadCount: 44,
	}}
	tor.Peers = []transmission.Peer{{
		Address:      "10.0.0.1",
		Port:         51413,
		ClientName:   "qBittorrent 4.6",
		FlagStr:      "DX",
		Progress:     0.8,
		RateToClient: 2048,
	}}
	tor.PeersConnected = 1
	return tor
}

func TestDetailOverviewRows(t *testing.T) {
	h := newHarness(Options{})
	sendList(h, detailTorrentFixture())

	h.Key("enter")
	view := h.View()
	if line := lineWith(t, view, "status"); !strings.Contains(line, "downloading") {
		t.Fatalf("expected downloading status, got %q", line)
	}
	for _, want := range []string{
		"3b1a1f4c1a9f4e2d8c7b6a5948372615aabbccdd",
		"magnet:?xt=urn:btih:3b1a1f4c",
		"location",
		"/data",
		"linux, iso",
		"Official image",
		"primary tracker.debian.org",
	} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected overview to contain %q:\n%s", want, view)
		}
	}
}

func TestDetailFilesTab(t *testing.T) {
	h := newHarness(Options{})
	sendList(h, detailTorrentFixture())

	h.Key("enter")
	h.Key("f")
	view := h.View()

	iso := lineWith(t, view, "ubuntu-24.04.iso")
	if !strings.HasPrefix(iso, "> ") {
		t.Fatalf("expected cursor on the first file, got %q", iso)
	}
	if !strings.Contains(iso, "*") || !strings.Contains(iso, "50%") {
		t.Fatalf("expected wanted marker and progress, got %q", iso)
	}

	sums := lineWith(t, view, "SHA256SUMS")
	if !strings.Contains(sums, "high") || !strings.Contains(sums, "100%") {
		t.Fatalf("expected priority and progress on the second file, got %q", sums)
	}
}

func TestDetailTrackersTab(t *testing.T) {
	h := newHarness(Options{})
	sendList(h, detailTorrentFixture())

	h.Key("enter")
	h.Key("t")
	line := lineWith(t, h.View(), "tracker.debian.org")
	if !strings.Contains(line, "12/3/44") {
		t.Fatalf("expected seeder/leecher/download counts, got %q", line)
	}
	if !strings.Contains(line, "never announced") {
		t.Fatalf("expected announce placeholder, got %q", line)
	}
}

func TestDetailPeersPickUpCountries(t *testing.T) {
	h := newHarness(Options{})
	sendList(h, detailTorrentFixture())

	h.Key("enter")
	h.Key("e")
	line := lineWith(t, h.View(), "10.0.0.1")
	if !strings.Contains(line, "qBittorrent 4.6") || !strings.Contains(line, "80%") {
		t.Fatalf("expected client and progress, got %q", line)
	}
	if strings.Contains(line, "SE") {
		t.Fatalf("expected no country before resolution, got %q", line)
	}

	h.Send(geoResultMsg{countries: map[string]string{"10.0.0.1": "SE"}})
	if line := lineWith(t, h.View(), "10.0.0.1"); !strings.Contains(line, "SE") {
		t.Fatalf("expected resolved country in the row, got %q", line)
	}
}

func TestDetailTabKeys(t *testing.T) {
	h := newHarness(Options{})
	sendList(h, detailTorrentFixture())

	h.Key("enter")
	m := h.Model()
	if m.detail.tab != TabOverview {
		t.Fatalf("expected overview first, got %v", m.detail.tab)
	}

	h.Key("tab")
	if m.detail.tab != TabFiles {
		t.Fatalf("expected files after tab, got %v", m.detail.tab)
	}
	h.Key("shift+tab")
	if m.detail.tab != TabOverview {
		t.Fatalf("expected overview after shift+tab, got %v", m.detail.tab)
	}
	h.Key("shift+tab")
	if m.detail.tab != TabTrackers {
		t.Fatalf("expected wraparound to trackers, got %v", m.detail.tab)
	}
	h.Key("e")
	if m.detail.tab != TabPeers {
		t.Fatalf("expected peers via direct key, got %v", m.detail.tab)
	}
	h.Key("o")
	if m.detail.tab != TabOverview {
		t.Fatalf("expected overview via direct key, got %v", m.detail.tab)
	}
}

func TestProgressBarTracksWidth(t *testing.T) {
	h := newHarness(Options{})
	m := h.Model()
	if m.progressBar.Width != 50 {
		t.Fatalf("expected the bar capped at 50 on a wide terminal, got %d", m.progressBar.Width)
	}

	h.Send(tea.WindowSizeMsg{Width: 40, Height: 30})
	if m.progressBar.Width != 16 {
		t.Fatalf("expected 16 columns at width 40, got %d", m.progressBar.Width)
	}

	h.Send(tea.WindowSizeMsg{Width: 30, Height: 30})
	if m.progressBar.Width != 16 {
		t.Fatalf("expected the bar unchanged below the minimum, got %d", m.progressBar.Width)
	}
}

func TestFrameFitsNarrowTerminal(t *testing.T) {
	h := newHarness(Options{})
	sendList(h, listTorrent(1, strings.Repeat("very-long-name-", 8), transmission.StatusSeeding))

	h.Send(tea.WindowSizeMsg{Width: 40, Height: 12})
	lines := strings.Split(h.View(), "\n")
	if len(lines) != 12 {
		t.Fatalf("expected 12 frame lines, got %d", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w > 40 {
			t.Fatalf("line %d overflows: width %d %q", i, w, line)
		}
	}
}
