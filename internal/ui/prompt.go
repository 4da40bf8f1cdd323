package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/trammel/internal/logging/events"
	"github.com/atomicstack/trammel/internal/model"
	"github.com/atomicstack/trammel/internal/transmission"
)

// Prompt is the single-line parameter modal. The submit closure runs on the
// update loop and validates first, so a bad value never reaches the client;
// targets were captured when the prompt opened, not when it submits.
type Prompt struct {
	input    textinput.Model
	label    string
	category string // history category; empty disables recall
	history  []string
	histIdx  int    // == len(history) while editing a fresh line
	draft    string // unsubmitted text parked during history recall
	errMsg   string

	// toggleLabel enables the ctrl+p flag some prompts carry (add-paused).
	toggleLabel string
	toggleOn    bool

	submit func(value string) (tea.Cmd, error)
}

func (m *Model) openPrompt(label, placeholder, initial, category string, submit func(string) (tea.Cmd, error)) {
	input := textinput.New()
	// static cursor: blink ticks would redraw the whole frame twice a second
	input.Cursor.SetMode(cursor.CursorStatic)
	input.Placeholder = placeholder
	input.CharLimit = 512
	input.Prompt = ""
	if styles.PromptText != nil {
		input.TextStyle = *styles.PromptText
	}
	if styles.Placeholder != nil {
		input.PlaceholderStyle = *styles.Placeholder
	}
	input.SetValue(initial)
	input.CursorEnd()
	input.Focus()

	var recall []string
	if category != "" && m.history != nil {
		recall = m.history.For(category)
	}
	m.prompt = &Prompt{
		input:    input,
		label:    label,
		category: category,
		history:  recall,
		histIdx:  len(recall),
		submit:   submit,
	}
	m.mode = ModePrompt
	m.errMsg = ""
	events.UI.Modal("prompt")
}

func (m *Model) closePrompt() {
	m.prompt = nil
	m.mode = ModeNormal
	events.UI.Modal("none")
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	p := m.prompt
	switch msg.String() {
	case "esc":
		m.closePrompt()
		return nil
	case "enter":
		value := strings.TrimSpace(p.input.Value())
		cmd, err := p.submit(value)
		if err != nil {
			p.errMsg = err.Error()
			return nil
		}
		if p.category != "" && value != "" && m.history != nil {
			m.history.Add(p.category, value)
		}
		m.closePrompt()
		return cmd
	case "up":
		p.recall(-1)
		return nil
	case "down":
		p.recall(1)
		return nil
	case "ctrl+u":
		p.input.SetValue("")
		p.errMsg = ""
		return nil
	case "ctrl+p":
		if p.toggleLabel != "" {
			p.toggleOn = !p.toggleOn
			return nil
		}
	}
	p.errMsg = ""
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// forward passes non-key messages (paste results) to the input.
func (p *Prompt) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// recall walks the prompt's history; moving past the newest entry restores
// whatever was being typed before recall started.
func (p *Prompt) recall(delta int) {
	if len(p.history) == 0 {
		return
	}
	next := p.histIdx + delta
	if next < 0 || next > len(p.history) {
		return
	}
	if p.histIdx == len(p.history) {
		p.draft = p.input.Value()
	}
	p.histIdx = next
	if next == len(p.history) {
		p.input.SetValue(p.draft)
	} else {
		p.input.SetValue(p.history[next])
	}
	p.input.CursorEnd()
}

func (m *Model) openSearchPrompt() {
	m.openPrompt("search", "torrent name pattern", m.filter.Pattern, "search", func(value string) (tea.Cmd, error) {
		m.filter.Pattern = value
		if m.filter.Empty() {
			events.Filter.Cleared()
		} else {
			events.Filter.Set(m.filter.Mode.String(), m.filter.Pattern, m.filter.Invert)
		}
		m.refreshRows()
		return nil, nil
	})
}

func (m *Model) openFilterPrompt() {
	names := make([]string, 0, len(model.FilterModes()))
	for _, mode := range model.FilterModes() {
		names = append(names, mode.String())
	}
	initial := ""
	switch {
	case m.filter.Tracker != "":
		initial = "tracker:" + m.filter.Tracker
	case m.filter.Mode != model.FilterAll:
		initial = m.filter.Mode.String()
	}
	m.openPrompt("filter", strings.Join(names, ", ")+", or tracker:<domain>", initial, "filter", func(value string) (tea.Cmd, error) {
		switch {
		case value == "":
			m.filter.Mode = model.FilterAll
			m.filter.Tracker = ""
		case strings.HasPrefix(value, "tracker:"):
			m.filter.Tracker = strings.TrimSpace(strings.TrimPrefix(value, "tracker:"))
			m.filter.Mode = model.FilterAll
		default:
			mode, err := model.ParseFilterMode(value)
			if err != nil {
				return nil, &transmission.ValidationError{Msg: err.Error()}
			}
			m.filter.Mode = mode
			m.filter.Tracker = ""
		}
		if m.filter.Empty() {
			events.Filter.Cleared()
		} else {
			events.Filter.Set(m.filter.Mode.String(), m.filter.Pattern, m.filter.Invert)
		}
		m.refreshRows()
		return nil, nil
	})

	// Known tracker domains join the recall list behind the user's own
	// entries, so arrowing up walks recent filters first, then the domains.
	if domains := m.store.Trackers(); len(domains) > 0 {
		p := m.prompt
		seeded := make([]string, 0, len(domains)+len(p.history))
		for _, domain := range domains {
			seeded = append(seeded, "tracker:"+domain)
		}
		seeded = append(seeded, p.history...)
		p.history = seeded
		p.histIdx = len(seeded)
	}
}

func (m *Model) openSortPrompt() {
	names := make([]string, 0, len(model.SortKeys()))
	for _, key := range model.SortKeys() {
		names = append(names, key.String())
	}
	initial := m.order.Key.String()
	if m.order.Reverse {
		initial += "!"
	}
	m.openPrompt("sort", strings.Join(names, ", ")+"; append ! to reverse", initial, "sort", func(value string) (tea.Cmd, error) {
		if value == "" {
			return nil, nil
		}
		reverse := strings.HasSuffix(value, "!")
		key, err := model.ParseSortKey(strings.TrimSuffix(value, "!"))
		if err != nil {
			return nil, &transmission.ValidationError{Msg: err.Error()}
		}
		m.order = model.Sort{Key: key, Reverse: reverse}
		events.Sort.Set(key.String(), reverse)
		m.refreshRows()
		return nil, nil
	})
}

func (m *Model) openMovePrompt() {
	targets := m.targets()
	if len(targets) == 0 || m.client == nil {
		return
	}
	initial := ""
	if t, ok := m.currentTorrent(); ok {
		initial = t.DownloadDir
	}
	label := fmt.Sprintf("move %s to", countNoun(len(targets), "torrent"))
	m.openPrompt(label, "path on the daemon's filesystem", initial, "location", func(value string) (tea.Cmd, error) {
		if value == "" {
			return nil, &transmission.ValidationError{Msg: "destination path required"}
		}
		return moveCmd(m.client, targets, value), nil
	})
}

func (m *Model) openRenamePrompt() {
	t, ok := m.currentTorrent()
	if !ok || m.client == nil {
		return
	}
	id, oldName := t.ID, t.Name
	m.openPrompt("rename to", "new top-level name", oldName, "", func(value string) (tea.Cmd, error) {
		if value == "" {
			return nil, &transmission.ValidationError{Msg: "new name required"}
		}
		if strings.ContainsRune(value, '/') {
			return nil, &transmission.ValidationError{Msg: "name must not contain '/'"}
		}
		if value == oldName {
			return nil, nil
		}
		return renameCmd(m.client, id, oldName, value), nil
	})
}

func (m *Model) openAddPrompt() {
	if m.client == nil {
		return
	}
	m.openPrompt("add", "magnet link, URL, or .torrent path", "", "add", func(value string) (tea.Cmd, error) {
		if value == "" {
			return nil, &transmission.ValidationError{Msg: "nothing to add"}
		}
		paused := m.prompt != nil && m.prompt.toggleOn
		return addTorrentCmd(m.client, transmission.AddRequest{Path: value, Paused: paused}), nil
	})
	m.prompt.toggleLabel = "paused"
}

func (m *Model) openLabelsPrompt() {
	targets := m.targets()
	if len(targets) == 0 || m.client == nil {
		return
	}
	if v := m.client.RPCVersion(); v > 0 && v < 16 {
		m.errMsg = fmt.Sprintf("labels need RPC 16+, daemon speaks %d", v)
		return
	}
	initial := ""
	if t, ok := m.currentTorrent(); ok {
		initial = strings.Join(t.Labels, ", ")
	}
	m.openPrompt("labels", "comma separated; empty clears", initial, "labels", func(value string) (tea.Cmd, error) {
		var labels []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				labels = append(labels, part)
			}
		}
		return labelsCmd(m.client, targets, labels), nil
	})
}

func (m *Model) openSessionLimitPrompt(dir transmission.Direction) {
	if m.client == nil {
		return
	}
	session := m.store.Session()
	initial := ""
	if dir == transmission.Up && session.SpeedLimitUpEnabled {
		initial = strconv.FormatInt(session.SpeedLimitUp, 10)
	}
	if dir == transmission.Down && session.SpeedLimitDownEnabled {
		initial = strconv.FormatInt(session.SpeedLimitDown, 10)
	}
	label := fmt.Sprintf("global %s limit", dir)
	m.openPrompt(label, "KB/s; empty or -1 disables", initial, "limit", func(value string) (tea.Cmd, error) {
		kbps, err := parseLimit(value)
		if err != nil {
			return nil, err
		}
		return sessionRateCmd(m.client, dir, kbps), nil
	})
}

func (m *Model) openTorrentLimitPrompt(dir transmission.Direction) {
	targets := m.targets()
	if len(targets) == 0 || m.client == nil {
		return
	}
	initial := ""
	if t, ok := m.currentTorrent(); ok {
		if dir == transmission.Up && t.UploadLimited {
			initial = strconv.FormatInt(t.UploadLimit, 10)
		}
		if dir == transmission.Down && t.DownloadLimited {
			initial = strconv.FormatInt(t.DownloadLimit, 10)
		}
	}
	label := fmt.Sprintf("%s limit for %s", dir, countNoun(len(targets), "torrent"))
	m.openPrompt(label, "KB/s; empty or -1 disables", initial, "limit", func(value string) (tea.Cmd, error) {
		kbps, err := parseLimit(value)
		if err != nil {
			return nil, err
		}
		return torrentRateCmd(m.client, targets, dir, kbps), nil
	})
}

func (m *Model) openSeedRatioPrompt() {
	targets := m.targets()
	if len(targets) == 0 || m.client == nil {
		return
	}
	initial := ""
	if t, ok := m.currentTorrent(); ok {
		switch t.SeedRatioMode {
		case transmission.SeedRatioCustom:
			initial = strconv.FormatFloat(t.SeedRatioLimit, 'f', 2, 64)
		case transmission.SeedRatioUnlimited:
			initial = "off"
		}
	}
	m.openPrompt("seed ratio limit", "e.g. 2.0; 'off' seeds forever; empty follows global", initial, "ratio", func(value string) (tea.Cmd, error) {
		switch {
		case value == "":
			return seedRatioCmd(m.client, targets, 0, transmission.SeedRatioGlobal), nil
		case strings.EqualFold(value, "off"):
			return seedRatioCmd(m.client, targets, 0, transmission.SeedRatioUnlimited), nil
		}
		limit, err := strconv.ParseFloat(value, 64)
		if err != nil || limit < 0 {
			return nil, &transmission.ValidationError{Msg: fmt.Sprintf("seed ratio %q must be a non-negative number or 'off'", value)}
		}
		return seedRatioCmd(m.client, targets, limit, transmission.SeedRatioCustom), nil
	})
}

func (m *Model) openTrackerPrompt(id int64) {
	if m.client == nil {
		return
	}
	m.openPrompt("add tracker", "announce URL", "", "tracker", func(value string) (tea.Cmd, error) {
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") && !strings.HasPrefix(value, "udp://") {
			return nil, &transmission.ValidationError{Msg: "announce URL must start with http://, https://, or udp://"}
		}
		return addTrackerCmd(m.client, id, value), nil
	})
}

func parseLimit(value string) (int64, error) {
	if value == "" || value == "-1" || strings.EqualFold(value, "off") {
		return -1, nil
	}
	kbps, err := strconv.ParseInt(value, 10, 64)
	if err != nil || kbps < 0 {
		return 0, &transmission.ValidationError{Msg: fmt.Sprintf("limit %q must be a whole number of KB/s, or empty to disable", value)}
	}
	return kbps, nil
}
