package ui

import (
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/trammel/internal/geo"
	"github.com/atomicstack/trammel/internal/history"
	"github.com/atomicstack/trammel/internal/model"
	"github.com/atomicstack/trammel/internal/poller"
	"github.com/atomicstack/trammel/internal/theme"
	"github.com/atomicstack/trammel/internal/transmission"
	"github.com/atomicstack/trammel/internal/ui/state"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Pane identifies the surface that owns plain keystrokes.
type Pane int

const (
	PaneList Pane = iota
	PaneDetail
	PaneHelp
	PaneStats
)

func (p Pane) String() string {
	switch p {
	case PaneDetail:
		return "detail"
	case PaneHelp:
		return "help"
	case PaneStats:
		return "stats"
	}
	return "list"
}

// Mode identifies the open modal, if any. While a modal is open only its own
// keys apply; poller events and command acks keep flowing underneath it.
type Mode int

const (
	ModeNormal Mode = iota
	ModePrompt
	ModeConfirm
)

// DetailTab selects what the detail pane shows for the watched torrent.
type DetailTab int

const (
	TabOverview DetailTab = iota
	TabFiles
	TabPeers
	TabTrackers
)

func (t DetailTab) String() string {
	switch t {
	case TabFiles:
		return "files"
	case TabPeers:
		return "peers"
	case TabTrackers:
		return "trackers"
	}
	return "overview"
}

type detailState struct {
	id       int64
	tab      DetailTab
	files    state.Tab
	peers    state.Tab
	trackers state.Tab
}

// Options configures a Model. Client and Poller may be nil, in which case
// the model only reacts to messages injected directly; tests rely on that.
type Options struct {
	Client   Commander
	Poller   *poller.Poller
	Endpoint string
	Keys     *KeyMap
	Sort     model.Sort
	Filter   model.Filter
	History  *history.Store
	Geo      geo.Resolver
}

// Model is the single-threaded interaction engine. It owns the store: poller
// merges and renders both happen on the update loop, so store access is
// never concurrent.
type Model struct {
	client   Commander
	poller   *poller.Poller
	store    *model.Store
	list     *state.List
	geo      geo.Resolver
	history  *history.Store
	endpoint string

	keys   KeyMap
	filter model.Filter
	order  model.Sort

	pane   Pane
	mode   Mode
	detail detailState

	prompt  *Prompt
	confirm *Confirm

	progressBar progress.Model
	helpView    help.Model

	width  int
	height int

	errMsg     string
	infoMsg    string
	infoExpire time.Time

	// failures mirrors the consecutive-failure count stamped on the most
	// recent poller event; nonzero renders the degraded indicator.
	failures int

	countries map[string]string
	rowCache  map[int64]cachedRow

	handlers map[reflect.Type]msgHandler

	quitting bool
}

func NewModel(opts Options) *Model {
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	m := &Model{
		client:    opts.Client,
		poller:    opts.Poller,
		store:     model.NewStore(),
		list:      state.NewList(),
		geo:       opts.Geo,
		history:   opts.History,
		endpoint:  opts.Endpoint,
		keys:      keys,
		filter:    opts.Filter,
		order:     opts.Sort,
		pane:      PaneList,
		mode:      ModeNormal,
		countries: map[string]string{},
		rowCache:  map[int64]cachedRow{},

		progressBar: progress.New(progress.WithDefaultGradient()),
		helpView:    help.New(),
	}
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	if m.poller == nil {
		return nil
	}
	return waitForPollerEvent(m.poller)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if handled, cmd := m.handleActiveModal(msg); handled {
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, m.finishUpdate(cmds)
	}

	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

// handleActiveModal traps keystrokes for the open modal. Everything else
// falls through to the registered handlers so snapshots merge and acks land
// while the modal is up.
func (m *Model) handleActiveModal(msg tea.Msg) (bool, tea.Cmd) {
	switch m.mode {
	case ModePrompt:
		if m.prompt == nil {
			m.mode = ModeNormal
			return false, nil
		}
		switch msg := msg.(type) {
		case tea.KeyMsg:
			return true, m.handlePromptKey(msg)
		case tea.WindowSizeMsg, pollerEventMsg, pollerDoneMsg, actionResultMsg, geoResultMsg:
			return false, nil
		default:
			return true, m.prompt.forward(msg)
		}
	case ModeConfirm:
		if m.confirm == nil {
			m.mode = ModeNormal
			return false, nil
		}
		if key, ok := msg.(tea.KeyMsg); ok {
			return true, m.handleConfirmKey(key)
		}
		return false, nil
	}
	return false, nil
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(tea.FocusMsg{}):      m.handleFocusMsg,
		reflect.TypeOf(tea.BlurMsg{}):       m.handleBlurMsg,
		reflect.TypeOf(pollerEventMsg{}):    m.handlePollerEventMsg,
		reflect.TypeOf(pollerDoneMsg{}):     m.handlePollerDoneMsg,
		reflect.TypeOf(actionResultMsg{}):   m.handleActionResultMsg,
		reflect.TypeOf(geoResultMsg{}):      m.handleGeoResultMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if len(cmds) == 0 {
		return nil
	}
	if len(cmds) == 1 {
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleFocusMsg(tea.Msg) tea.Cmd {
	if m.poller != nil {
		m.poller.SetPassive(false)
	}
	return nil
}

func (m *Model) handleBlurMsg(tea.Msg) tea.Cmd {
	if m.poller != nil {
		m.poller.SetPassive(true)
	}
	return nil
}

// currentTorrent resolves the focused row against the store.
func (m *Model) currentTorrent() (*transmission.Torrent, bool) {
	id, ok := m.list.Current()
	if !ok {
		return nil, false
	}
	return m.store.Torrent(id)
}

// targets are the ids a torrent command applies to: the marked set when one
// exists, otherwise the focused torrent.
func (m *Model) targets() []int64 {
	return m.list.Targets()
}

// refreshRows recomputes the visible row set from the store through the
// current filter and sort. Focus follows the torrent id, not the row index.
func (m *Model) refreshRows() {
	torrents := m.store.Select(m.filter, m.order)
	rows := make([]int64, len(torrents))
	for i, t := range torrents {
		rows[i] = t.ID
	}
	m.list.SetRows(rows)
}
