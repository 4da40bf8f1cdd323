package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/atomicstack/trammel/internal/history"
	"github.com/atomicstack/trammel/internal/model"
	"github.com/atomicstack/trammel/internal/poller"
	"github.com/atomicstack/trammel/internal/transmission"
)

func TestMain(m *testing.M) {
	// pin the renderer so frames come out as plain text no matter what
	// terminal the tests run under
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// fakeCommander records each mutation as one formatted line so tests can
// assert on exact order and payload. err, when set, fails every call.
type fakeCommander struct {
	calls     []string
	err       error
	rpc       int
	addResult transmission.AddResult
}

var _ Commander = (*fakeCommander)(nil)

func (f *fakeCommander) record(format string, args ...interface{}) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.err
}

func (f *fakeCommander) StartTorrents(_ context.Context, ids []int64) error {
	return f.record("start %v", ids)
}

func (f *fakeCommander) StartTorrentsNow(_ context.Context, ids []int64) error {
	return f.record("start-now %v", ids)
}

func (f *fakeCommander) StopTorrents(_ context.Context, ids []int64) error {
	return f.record("stop %v", ids)
}

func (f *fakeCommander) StartAllTorrents(context.Context) error { return f.record("start-all") }

func (f *fakeCommander) StopAllTorrents(context.Context) error { return f.record("stop-all") }

func (f *fakeCommander) VerifyTorrents(_ context.Context, ids []int64) error {
	return f.record("verify %v", ids)
}

func (f *fakeCommander) ReannounceTorrents(_ context.Context, ids []int64) error {
	return f.record("reannounce %v", ids)
}

func (f *fakeCommander) RemoveTorrents(_ context.Context, ids []int64, deleteData bool) error {
	return f.record("remove %v data=%t", ids, deleteData)
}

func (f *fakeCommander) MoveTorrents(_ context.Context, ids []int64, dest string, move bool) error {
	return f.record("move %v %s", ids, dest)
}

func (f *fakeCommander) RenameTorrentPath(_ context.Context, id int64, path, name string) error {
	return f.record("rename %d %s -> %s", id, path, name)
}

func (f *fakeCommander) SetTorrentRate(_ context.Context, ids []int64, dir transmission.Direction, kbps int64) error {
	return f.record("rate %s %v %d", dir, ids, kbps)
}

func (f *fakeCommander) SetBandwidthPriority(_ context.Context, ids []int64, prio transmission.Priority) error {
	return f.record("priority %v %s", ids, prio)
}

func (f *fakeCommander) SetHonorsSessionLimits(_ context.Context, ids []int64, honors bool) error {
	return f.record("honors %v %t", ids, honors)
}

func (f *fakeCommander) SetSeedRatio(_ context.Context, ids []int64, limit float64, mode transmission.SeedRatioMode) error {
	return f.record("seed-ratio %v limit=%.2f mode=%d", ids, limit, mode)
}

func (f *fakeCommander) SetLabels(_ context.Context, ids []int64, labels []string) error {
	return f.record("labels %v %v", ids, labels)
}

func (f *fakeCommander) SetFilesWanted(_ context.Context, id int64, files []int, wanted bool) error {
	return f.record("files-wanted %d %v %t", id, files, wanted)
}

func (f *fakeCommander) SetFilePriorities(_ context.Context, id int64, files []int, prio transmission.Priority) error {
	return f.record("file-priority %d %v %s", id, files, prio)
}

func (f *fakeCommander) AddTracker(_ context.Context, id int64, announce string) error {
	return f.record("add-tracker %d %s", id, announce)
}

func (f *fakeCommander) RemoveTracker(_ context.Context, id, trackerID int64) error {
	return f.record("remove-tracker %d %d", id, trackerID)
}

func (f *fakeCommander) MoveQueue(_ context.Context, ids []int64, dir transmission.QueueMove) error {
	return f.record("queue %v %d", ids, dir)
}

func (f *fakeCommander) AddTorrent(_ context.Context, req transmission.AddRequest) (transmission.AddResult, error) {
	f.record("add %s paused=%t", req.Path, req.Paused)
	if f.err != nil {
		return transmission.AddResult{}, f.err
	}
	return f.addResult, nil
}

func (f *fakeCommander) SetSessionRate(_ context.Context, dir transmission.Direction, kbps int64) error {
	return f.record("session-rate %s %d", dir, kbps)
}

func (f *fakeCommander) SetAltSpeed(_ context.Context, enabled bool) error {
	return f.record("alt-speed %t", enabled)
}

func (f *fakeCommander) CloseSession(context.Context) error { return f.record("close-session") }

func (f *fakeCommander) RPCVersion() int { return f.rpc }

func testSession() *transmission.SessionInfo {
	return &transmission.SessionInfo{
		Version:           "4.0.5",
		RPCVersion:        17,
		RPCVersionMinimum: 14,
		DownloadDir:       "/data",
		DHTEnabled:        true,
	}
}

func listTorrent(id int64, name string, status transmission.Status) transmission.Torrent {
	return transmission.Torrent{
		ID:           id,
		Name:         name,
		Status:       status,
		SizeWhenDone: 700 << 20,
		HaveValid:    350 << 20,
		ETA:          -1,
		UploadRatio:  0.5,
		DownloadDir:  "/data",
	}
}

func fullSnapshot(torrents ...transmission.Torrent) *transmission.Snapshot {
	records := make([]transmission.TorrentRecord, len(torrents))
	for i, tor := range torrents {
		records[i] = transmission.Record(tor)
	}
	return &transmission.Snapshot{Torrents: records, Complete: true}
}

func patchSnapshot(removed []int64, records ...transmission.TorrentRecord) *transmission.Snapshot {
	return &transmission.Snapshot{Torrents: records, Removed: removed}
}

// newHarness builds a model without a poller, sized to a fixed terminal.
// Tests feed it poller events by hand.
func newHarness(opts Options) *Harness {
	if opts.Endpoint == "" {
		opts.Endpoint = "http://seedbox:9091/transmission/rpc"
	}
	if opts.History == nil {
		opts.History = history.Load("")
	}
	h := NewHarness(NewModel(opts))
	h.Send(tea.WindowSizeMsg{Width: 120, Height: 30})
	return h
}

func sendList(h *Harness, torrents ...transmission.Torrent) {
	h.Send(pollerEventMsg{event: poller.Event{Session: testSession(), Snapshot: fullSnapshot(torrents...)}})
}

func sendPatch(h *Harness, removed []int64, records ...transmission.TorrentRecord) {
	h.Send(pollerEventMsg{event: poller.Event{Snapshot: patchSnapshot(removed, records...)}})
}

func TestPollerEventPopulatesList(t *testing.T) {
	h := newHarness(Options{})
	sendList(h,
		listTorrent(2, "beta", transmission.StatusDownloading),
		listTorrent(1, "alpha", transmission.StatusSeeding),
		listTorrent(3, "gamma", transmission.StatusStopped),
	)

	m := h.Model()
	if !m.store.Connected() {
		t.Fatal("expected session info after the first event")
	}
	if got := m.list.Rows; !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Fatalf("expected name-sorted rows [1 2 3], got %v", got)
	}

	view := h.View()
	for _, want := range []string{"Transmission 4.0.5 (rpc 17)", "3 torrents", "alpha", "beta", "gamma"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q:\n%s", want, view)
		}
	}
}

func TestCursorFollowsTorrentAcrossResort(t *testing.T) {
	h := newHarness(Options{Sort: model.Sort{Key: model.SortByRateDown, Reverse: true}})

	fast := listTorrent(1, "fast", transmission.StatusDownloading)
	fast.RateDownload = 300 << 10
	mid := listTorrent(2, "mid", transmission.StatusDownloading)
	mid.RateDownload = 200 << 10
	slow := listTorrent(3, "slow", transmission.StatusDownloading)
	slow.RateDownload = 100 << 10
	sendList(h, fast, mid, slow)

	m := h.Model()
	if got := m.list.Rows; !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Fatalf("expected rate-sorted rows [1 2 3], got %v", got)
	}

	h.Key("j")
	if id, _ := m.list.Current(); id != 2 {
		t.Fatalf("expected cursor on torrent 2, got %d", id)
	}

	sendPatch(h, nil, transmission.Record(transmission.Torrent{ID: 2, RateDownload: 400 << 10}, "rateDownload"))
	if got := m.list.Rows; !reflect.DeepEqual(got, []int64{2, 1, 3}) {
		t.Fatalf("expected reordered rows [2 1 3], got %v", got)
	}
	if id, _ := m.list.Current(); id != 2 {
		t.Fatalf("expected cursor to follow torrent 2 to the top, got %d", id)
	}
	if m.list.Cursor != 0 {
		t.Fatalf("expected cursor row 0 after reorder, got %d", m.list.Cursor)
	}
}

func TestMergeWhilePromptOpenLeavesModalAlone(t *testing.T) {
	f := &fakeCommander{rpc: 17}
	h := newHarness(Options{Client: f})
	sendList(h,
		listTorrent(1, "alpha", transmission.StatusDownloading),
		listTorrent(2, "beta", transmission.StatusDownloading),
	)

	h.Key("A")
	h.Type("magnet:?xt=urn:btih:ab")

	m := h.Model()
	if m.mode != ModePrompt {
		t.Fatalf("expected open prompt, got mode %d", m.mode)
	}

	sendPatch(h, []int64{2}, transmission.Record(listTorrent(3, "gamma", transmission.StatusSeeding)))

	if m.mode != ModePrompt || m.prompt == nil {
		t.Fatal("expected merge to leave the prompt open")
	}
	if got := m.prompt.input.Value(); got != "magnet:?xt=urn:btih:ab" {
		t.Fatalf("expected typed text preserved, got %q", got)
	}
	if m.store.Len() != 2 {
		t.Fatalf("expected merge applied under the modal, store has %d", m.store.Len())
	}
	if got := m.list.Rows; !reflect.DeepEqual(got, []int64{1, 3}) {
		t.Fatalf("expected rows [1 3] after merge, got %v", got)
	}

	h.Key("esc")
	if m.mode != ModeNormal {
		t.Fatal("expected escape to close the prompt")
	}
	if len(f.calls) != 0 {
		t.Fatalf("expected no mutations from a cancelled prompt, got %v", f.calls)
	}
}

func TestDetailClosesWhenWatchedTorrentRemoved(t *testing.T) {
	h := newHarness(Options{})
	sendList(h, listTorrent(1, "alpha", transmission.StatusSeeding))

	h.Key("enter")
	m := h.Model()
	if m.pane != PaneDetail || m.detail.id != 1 {
		t.Fatalf("expected detail pane on torrent 1, got pane %d id %d", m.pane, m.detail.id)
	}

	sendPatch(h, []int64{1})
	if m.pane != PaneList {
		t.Fatalf("expected fall back to the list, got pane %d", m.pane)
	}
	if m.detail.id != 0 {
		t.Fatalf("expected detail state cleared, got id %d", m.detail.id)
	}
}

func TestDetailSurvivesRemovalBehindModal(t *testing.T) {
	f := &fakeCommander{rpc: 17}
	h := newHarness(Options{Client: f})
	tor := listTorrent(1, "alpha", transmission.StatusSeeding)
	tor.TrackerStats = []transmission.TrackerStat{{ID: 5, Announce: "http://tracker.debian.org/announce"}}
	sendList(h, tor)

	h.Key("enter")
	h.Key("a") // tracker prompt

	m := h.Model()
	if m.mode != ModePrompt {
		t.Fatalf("expected tracker prompt, got mode %d", m.mode)
	}

	sendPatch(h, []int64{1})
	if m.pane != PaneDetail || m.mode != ModePrompt {
		t.Fatalf("expected modal and detail pane to survive the removal, got pane %d mode %d", m.pane, m.mode)
	}
	if !strings.Contains(h.View(), "torrent gone") {
		t.Fatalf("expected the gone placeholder behind the prompt:\n%s", h.View())
	}

	h.Key("esc") // close the prompt
	if m.pane != PaneDetail {
		t.Fatalf("expected detail pane after closing the prompt, got %d", m.pane)
	}
	h.Key("esc") // next keystroke notices the torrent is gone
	if m.pane != PaneList {
		t.Fatalf("expected return to the list, got pane %d", m.pane)
	}
}

func TestSpaceMarksAndAdvances(t *testing.T) {
	h := newHarness(Options{})
	sendList(h,
		listTorrent(1, "alpha", transmission.StatusSeeding),
		listTorrent(2, "beta", transmission.StatusSeeding),
	)

	m := h.Model()
	h.Key("space")
	if !m.list.IsMarked(1) {
		t.Fatal("expected space to mark the focused torrent")
	}
	if id, _ := m.list.Current(); id != 2 {
		t.Fatalf("expected cursor to advance after marking, got %d", id)
	}

	h.Key("i")
	if m.list.IsMarked(1) || !m.list.IsMarked(2) {
		t.Fatal("expected inversion to flip both marks")
	}
}

func TestMarksDroppedWithRemovedTorrents(t *testing.T) {
	h := newHarness(Options{})
	sendList(h,
		listTorrent(1, "alpha", transmission.StatusSeeding),
		listTorrent(2, "beta", transmission.StatusSeeding),
	)

	h.Key("a")
	m := h.Model()
	if m.list.MarkedCount() != 2 {
		t.Fatalf("expected both torrents marked, got %d", m.list.MarkedCount())
	}

	sendPatch(h, []int64{2})
	if m.list.MarkedCount() != 1 {
		t.Fatalf("expected the removed torrent unmarked, got %d", m.list.MarkedCount())
	}
	if !m.list.IsMarked(1) {
		t.Fatal("expected the surviving mark to stay")
	}
}

func TestEscapeClearsMarksBeforeFilter(t *testing.T) {
	h := newHarness(Options{})
	sendList(h,
		listTorrent(1, "alpha", transmission.StatusSeeding),
		listTorrent(2, "beta", transmission.StatusSeeding),
	)

	h.Key("/")
	h.Type("alpha")
	h.Key("enter")

	m := h.Model()
	if got := m.list.Rows; !reflect.DeepEqual(got, []int64{1}) {
		t.Fatalf("expected filtered rows [1], got %v", got)
	}

	h.Key("space")
	h.Key("esc")
	if m.list.MarkedCount() != 0 {
		t.Fatal("expected first escape to clear marks")
	}
	if m.filter.Pattern != "alpha" {
		t.Fatalf("expected filter untouched by the first escape, got %q", m.filter.Pattern)
	}

	h.Key("esc")
	if !m.filter.Empty() {
		t.Fatalf("expected second escape to clear the filter, got %+v", m.filter)
	}
	if len(m.list.Rows) != 2 {
		t.Fatalf("expected all rows back, got %v", m.list.Rows)
	}
}

func TestTogglePauseSplitsMixedSelection(t *testing.T) {
	f := &fakeCommander{rpc: 17}
	h := newHarness(Options{Client: f})
	sendList(h,
		listTorrent(1, "alpha", transmission.StatusDownloading),
		listTorrent(2, "beta", transmission.StatusStopped),
	)

	h.Key("a")
	h.Key("p")

	want := []string{"stop [1]", "start [2]"}
	if !reflect.DeepEqual(f.calls, want) {
		t.Fatalf("expected calls %v, got %v", want, f.calls)
	}
	if !strings.Contains(h.View(), "resumed 1, paused 1") {
		t.Fatalf("expected mixed-toggle ack on the status line:\n%s", h.View())
	}
}

func TestPauseAllUsesSessionWideCalls(t *testing.T) {
	f := &fakeCommander{rpc: 17}
	h := newHarness(Options{Client: f})
	sendList(h,
		listTorrent(1, "alpha", transmission.StatusDownloading),
		listTorrent(2, "beta", transmission.StatusStopped),
	)

	h.Key("P")
	if !reflect.DeepEqual(f.calls, []string{"stop-all"}) {
		t.Fatalf("expected stop-all with an active torrent, got %v", f.calls)
	}

	f.calls = nil
	sendPatch(h, nil, transmission.Record(transmission.Torrent{ID: 1, Status: transmission.StatusStopped}, "status"))
	h.Key("P")
	if !reflect.DeepEqual(f.calls, []string{"start-all"}) {
		t.Fatalf("expected start-all when everything is paused, got %v", f.calls)
	}
}

func TestConfirmRemoveRunsOnlyOnYes(t *testing.T) {
	f := &fakeCommander{rpc: 17}
	h := newHarness(Options{Client: f})
	sendList(h, listTorrent(7, "ubuntu.iso", transmission.StatusSeeding))

	h.Key("r")
	m := h.Model()
	if m.mode != ModeConfirm {
		t.Fatalf("expected confirm modal, got mode %d", m.mode)
	}
	if !strings.Contains(h.View(), "Remove ubuntu.iso?") {
		t.Fatalf("expected the question on the command line:\n%s", h.View())
	}

	h.Key("n")
	if m.mode != ModeNormal || len(f.calls) != 0 {
		t.Fatalf("expected decline to do nothing, mode %d calls %v", m.mode, f.calls)
	}

	h.Key("r")
	h.Key("y")
	if !reflect.DeepEqual(f.calls, []string{"remove [7] data=false"}) {
		t.Fatalf("expected remove call after confirmation, got %v", f.calls)
	}
	if !strings.Contains(h.View(), "removed 1 torrent") {
		t.Fatalf("expected removal ack:\n%s", h.View())
	}
}

func TestRemoveWithDataSpellsOutTheStakes(t *testing.T) {
	f := &fakeCommander{rpc: 17}
	h := newHarness(Options{Client: f})
	sendList(h, listTorrent(7, "ubuntu.iso", transmission.StatusSeeding))

	h.Key("R")
	if !strings.Contains(h.View(), "Remove ubuntu.iso and delete downloaded data?") {
		t.Fatalf("expected the data warning:\n%s", h.View())
	}

	h.Key("esc")
	if h.Model().mode != ModeNormal || len(f.calls) != 0 {
		t.Fatalf("expected escape to cancel, calls %v", f.calls)
	}
}

func TestActionErrorsSurfaceAndClear(t *testing.T) {
	f := &fakeCommander{rpc: 17, err: errors.New("daemon says no")}
	h := newHarness(Options{Client: f})
	sendList(h, listTorrent(1, "alpha", transmission.StatusSeeding))

	h.Key("v")
	m := h.Model()
	if m.errMsg != "daemon says no" {
		t.Fatalf("expected failure on the status line, got %q", m.errMsg)
	}
	if !strings.Contains(h.View(), "daemon says no") {
		t.Fatalf("expected error rendered:\n%s", h.View())
	}

	f.err = nil
	h.Key("v")
	if m.errMsg != "" {
		t.Fatalf("expected a successful action to clear the error, got %q", m.errMsg)
	}
	if !strings.Contains(h.View(), "verifying 1 torrent") {
		t.Fatalf("expected verify ack:\n%s", h.View())
	}
}

func TestPollFailuresShowDegradedIndicator(t *testing.T) {
	h := newHarness(Options{})
	sendList(h, listTorrent(1, "alpha", transmission.StatusSeeding))

	h.Send(pollerEventMsg{event: poller.Event{Err: errors.New("connection refused"), Failures: 2}})
	view := h.View()
	if !strings.Contains(view, "no response from daemon (2)") {
		t.Fatalf("expected degraded indicator:\n%s", view)
	}
	if !strings.Contains(view, "alpha") {
		t.Fatal("expected stale rows to stay on screen during the outage")
	}

	h.Send(pollerEventMsg{event: poller.Event{Failures: 0}})
	if strings.Contains(h.View(), "no response from daemon") {
		t.Fatal("expected indicator cleared after a healthy cycle")
	}
}

func TestLabelsGateOnDaemonVersion(t *testing.T) {
	f := &fakeCommander{rpc: 15}
	h := newHarness(Options{Client: f})
	sendList(h, listTorrent(1, "alpha", transmission.StatusSeeding))

	h.Key("B")
	m := h.Model()
	if m.mode != ModeNormal {
		t.Fatal("expected no prompt against an old daemon")
	}
	if m.errMsg != "labels need RPC 16+, daemon speaks 15" {
		t.Fatalf("expected version complaint, got %q", m.errMsg)
	}

	f.rpc = 16
	h.Key("B")
	if m.mode != ModePrompt {
		t.Fatal("expected labels prompt once the daemon is new enough")
	}
}

func TestTurtleToggleTracksSession(t *testing.T) {
	f := &fakeCommander{rpc: 17}
	h := newHarness(Options{Client: f})
	sendList(h, listTorrent(1, "alpha", transmission.StatusSeeding))

	h.Key("t")
	if !reflect.DeepEqual(f.calls, []string{"alt-speed true"}) {
		t.Fatalf("expected turtle on, got %v", f.calls)
	}

	turtled := testSession()
	turtled.AltSpeedEnabled = true
	h.Send(pollerEventMsg{event: poller.Event{Session: turtled}})
	if !strings.Contains(h.View(), "[turtle]") {
		t.Fatalf("expected turtle marker in the title:\n%s", h.View())
	}

	f.calls = nil
	h.Key("t")
	if !reflect.DeepEqual(f.calls, []string{"alt-speed false"}) {
		t.Fatalf("expected turtle off, got %v", f.calls)
	}
}

func TestPriorityBumpClampsAtEdges(t *testing.T) {
	f := &fakeCommander{rpc: 17}
	h := newHarness(Options{Client: f})
	tor := listTorrent(1, "alpha", transmission.StatusSeeding)
	tor.BandwidthPriority = transmission.PriorityHigh
	sendList(h, tor)

	h.Key("+")
	if len(f.calls) != 0 {
		t.Fatalf("expected no call above high priority, got %v", f.calls)
	}

	h.Key("-")
	if !reflect.DeepEqual(f.calls, []string{"priority [1] normal"}) {
		t.Fatalf("expected step down to normal, got %v", f.calls)
	}
}

func TestCopyMagnetWithoutLinkExplains(t *testing.T) {
	h := newHarness(Options{})
	sendList(h, listTorrent(1, "alpha", transmission.StatusDownloading))

	h.Key("y")
	if got := h.Model().errMsg; got != "no magnet link known for the focused torrent yet" {
		t.Fatalf("expected magnet explanation, got %q", got)
	}
}

func TestFileActionsFromDetailPane(t *testing.T) {
	f := &fakeCommander{rpc: 17}
	h := newHarness(Options{Client: f})
	tor := listTorrent(1, "ubuntu.iso", transmission.StatusDownloading)
	tor.Files = []transmission.FileInfo{
		{Name: "ubuntu.iso", Length: 100, BytesCompleted: 50},
		{Name: "README", Length: 10, BytesCompleted: 10},
	}
	tor.Priorities = []transmission.Priority{transmission.PriorityNormal, transmission.PriorityNormal}
	tor.Wanted = []transmission.Flag{true, false}
	sendList(h, tor)

	h.Key("enter")
	h.Key("f")
	m := h.Model()
	if m.detail.tab != TabFiles {
		t.Fatalf("expected files tab, got %v", m.detail.tab)
	}

	h.Key("space")
	h.Key("j")
	h.Key("space")
	h.Key("+")

	want := []string{
		"files-wanted 1 [0] false",
		"files-wanted 1 [1] true",
		"file-priority 1 [1] high",
	}
	if !reflect.DeepEqual(f.calls, want) {
		t.Fatalf("expected file calls %v, got %v", want, f.calls)
	}
}

func TestTrackerRemovalTargetsCursorRow(t *testing.T) {
	f := &fakeCommander{rpc: 17}
	h := newHarness(Options{Client: f})
	tor := listTorrent(1, "alpha", transmission.StatusSeeding)
	tor.TrackerStats = []transmission.TrackerStat{
		{ID: 11, Announce: "http://a.example/announce"},
		{ID: 12, Announce: "http://b.example/announce", Tier: 1},
	}
	sendList(h, tor)

	h.Key("enter")
	h.Key("t")
	h.Key("j")
	h.Key("d")

	if !reflect.DeepEqual(f.calls, []string{"remove-tracker 1 12"}) {
		t.Fatalf("expected removal of the focused tracker, got %v", f.calls)
	}
}

func TestShutdownConfirmQuitsAfterClose(t *testing.T) {
	f := &fakeCommander{rpc: 17}
	h := newHarness(Options{Client: f})
	sendList(h, listTorrent(1, "alpha", transmission.StatusSeeding))

	h.Key("Q")
	if !strings.Contains(h.View(), "Shut down the Transmission daemon?") {
		t.Fatalf("expected shutdown question:\n%s", h.View())
	}

	h.Key("y")
	if !reflect.DeepEqual(f.calls, []string{"close-session"}) {
		t.Fatalf("expected close-session, got %v", f.calls)
	}
	if !h.Model().quitting {
		t.Fatal("expected the program to quit once the daemon is gone")
	}
}

func TestQuitBlanksTheFrame(t *testing.T) {
	h := newHarness(Options{})
	sendList(h, listTorrent(1, "alpha", transmission.StatusSeeding))

	h.Key("q")
	if !h.Model().quitting {
		t.Fatal("expected quit flag")
	}
	if got := h.View(); got != "" {
		t.Fatalf("expected an empty final frame, got %q", got)
	}
}
