package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding the interaction engine dispatches on. Which
// bindings are live at any moment depends on the focused pane; the list and
// detail panes reuse several characters without clashing because dispatch
// happens per pane.
type KeyMap struct {
	Down     key.Binding
	Up       key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	Open            key.Binding
	Back            key.Binding
	Select          key.Binding
	SelectAll       key.Binding
	InvertSelection key.Binding
	Clear           key.Binding

	Search       key.Binding
	Filter       key.Binding
	InvertFilter key.Binding
	Sort         key.Binding

	Pause      key.Binding
	PauseAll   key.Binding
	StartNow   key.Binding
	Verify     key.Binding
	Reannounce key.Binding
	Remove     key.Binding
	RemoveData key.Binding
	Move       key.Binding
	Rename     key.Binding
	Add        key.Binding
	Labels     key.Binding

	GlobalUpLimit   key.Binding
	GlobalDownLimit key.Binding
	UpLimit         key.Binding
	DownLimit       key.Binding
	PriorityUp      key.Binding
	PriorityDown    key.Binding
	HonorsLimits    key.Binding
	SeedRatio       key.Binding
	Turtle          key.Binding

	QueueDown   key.Binding
	QueueUp     key.Binding
	QueueBottom key.Binding
	QueueTop    key.Binding

	CopyMagnet key.Binding
	Stats      key.Binding
	Help       key.Binding
	Quit       key.Binding
	Shutdown   key.Binding

	NextTab     key.Binding
	PrevTab     key.Binding
	OverviewTab key.Binding
	FilesTab    key.Binding
	PeersTab    key.Binding
	TrackersTab key.Binding

	AddTracker    key.Binding
	RemoveTracker key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "move down")),
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "move up")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first torrent")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last torrent")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),

		Open:            key.NewBinding(key.WithKeys("enter", "l"), key.WithHelp("enter/l", "open details")),
		Back:            key.NewBinding(key.WithKeys("esc", "h", "q"), key.WithHelp("esc/h/q", "back to list")),
		Select:          key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle select")),
		SelectAll:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		InvertSelection: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invert selection")),
		Clear:           key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection/filter")),

		Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		InvertFilter: key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "invert filter")),
		Sort:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),

		Pause:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume")),
		PauseAll:   key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "pause/resume all")),
		StartNow:   key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "start now")),
		Verify:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "verify")),
		Reannounce: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "reannounce")),
		Remove:     key.NewBinding(key.WithKeys("r", "delete"), key.WithHelp("r/del", "remove")),
		RemoveData: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "remove with data")),
		Move:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move location")),
		Rename:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		Add:        key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add torrent")),
		Labels:     key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "set labels")),

		GlobalUpLimit:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "global upload limit")),
		GlobalDownLimit: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "global download limit")),
		UpLimit:         key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "torrent upload limit")),
		DownLimit:       key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "torrent download limit")),
		PriorityUp:      key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "raise priority")),
		PriorityDown:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "lower priority")),
		HonorsLimits:    key.NewBinding(key.WithKeys("*"), key.WithHelp("*", "honor session limits")),
		SeedRatio:       key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "seed ratio limit")),
		Turtle:          key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "turtle mode")),

		QueueDown:   key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "queue down")),
		QueueUp:     key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "queue up")),
		QueueBottom: key.NewBinding(key.WithKeys("ctrl+j"), key.WithHelp("ctrl+j", "queue bottom")),
		QueueTop:    key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "queue top")),

		CopyMagnet: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy magnet link")),
		Stats:      key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "session stats")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Shutdown:   key.NewBinding(key.WithKeys("Q"), key.WithHelp("Q", "shut down daemon")),

		NextTab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous tab")),
		OverviewTab: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "overview")),
		FilesTab:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "files")),
		PeersTab:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "peers")),
		TrackersTab: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "trackers")),

		AddTracker:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add tracker")),
		RemoveTracker: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove tracker")),
	}
}

// bindings maps override names from the config onto their bindings.
func (k *KeyMap) bindings() map[string]*key.Binding {
	return map[string]*key.Binding{
		"move-down":         &k.Down,
		"move-up":           &k.Up,
		"top":               &k.Top,
		"bottom":            &k.Bottom,
		"page-up":           &k.PageUp,
		"page-down":         &k.PageDown,
		"open":              &k.Open,
		"back":              &k.Back,
		"select":            &k.Select,
		"select-all":        &k.SelectAll,
		"invert-selection":  &k.InvertSelection,
		"clear":             &k.Clear,
		"search":            &k.Search,
		"filter":            &k.Filter,
		"invert-filter":     &k.InvertFilter,
		"sort":              &k.Sort,
		"pause":             &k.Pause,
		"pause-all":         &k.PauseAll,
		"start-now":         &k.StartNow,
		"verify":            &k.Verify,
		"reannounce":        &k.Reannounce,
		"remove":            &k.Remove,
		"remove-data":       &k.RemoveData,
		"move":              &k.Move,
		"rename":            &k.Rename,
		"add":               &k.Add,
		"labels":            &k.Labels,
		"global-up-limit":   &k.GlobalUpLimit,
		"global-down-limit": &k.GlobalDownLimit,
		"up-limit":          &k.UpLimit,
		"down-limit":        &k.DownLimit,
		"priority-up":       &k.PriorityUp,
		"priority-down":     &k.PriorityDown,
		"honors-limits":     &k.HonorsLimits,
		"seed-ratio":        &k.SeedRatio,
		"turtle":            &k.Turtle,
		"queue-down":        &k.QueueDown,
		"queue-up":          &k.QueueUp,
		"queue-bottom":      &k.QueueBottom,
		"queue-top":         &k.QueueTop,
		"copy-magnet":       &k.CopyMagnet,
		"stats":             &k.Stats,
		"help":              &k.Help,
		"quit":              &k.Quit,
		"shutdown":          &k.Shutdown,
		"next-tab":          &k.NextTab,
		"prev-tab":          &k.PrevTab,
		"overview-tab":      &k.OverviewTab,
		"files-tab":         &k.FilesTab,
		"peers-tab":         &k.PeersTab,
		"trackers-tab":      &k.TrackersTab,
		"add-tracker":       &k.AddTracker,
		"remove-tracker":    &k.RemoveTracker,
	}
}

// Apply replaces default keys with overrides of the form
// "action: key[,key...]". Unknown actions and empty key lists are rejected
// so a config typo surfaces at startup instead of as a dead binding.
func (k *KeyMap) Apply(overrides map[string]string) error {
	if len(overrides) == 0 {
		return nil
	}
	byName := k.bindings()
	for name, spec := range overrides {
		binding, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return fmt.Errorf("keys: unknown action %q", name)
		}
		keys := splitKeys(spec)
		if len(keys) == 0 {
			return fmt.Errorf("keys: action %q has no keys", name)
		}
		binding.SetKeys(keys...)
		binding.SetHelp(strings.Join(keys, "/"), binding.Help().Desc)
	}
	return nil
}

func splitKeys(spec string) []string {
	parts := strings.FieldsFunc(spec, func(r rune) bool { return r == ',' })
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == " " {
			// a bare space is the space key, not a separator
			keys = append(keys, part)
			continue
		}
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "space" {
			part = " "
		}
		keys = append(keys, part)
	}
	return keys
}

// HelpGroup is one titled section of the help pane and the keys listing.
type HelpGroup struct {
	Title    string
	Bindings []key.Binding
}

// HelpGroups reports every binding with its active keys, grouped the way
// the help pane shows them.
func (k KeyMap) HelpGroups() []HelpGroup {
	return []HelpGroup{
		{"Navigate", []key.Binding{k.Down, k.Up, k.Top, k.Bottom, k.PageUp, k.PageDown, k.Open, k.Back}},
		{"Select", []key.Binding{k.Select, k.SelectAll, k.InvertSelection, k.Clear}},
		{"View", []key.Binding{k.Search, k.Filter, k.InvertFilter, k.Sort, k.Stats, k.Help}},
		{"Torrent", []key.Binding{k.Pause, k.PauseAll, k.StartNow, k.Verify, k.Reannounce, k.Remove, k.RemoveData, k.Move, k.Rename, k.Add, k.Labels, k.CopyMagnet}},
		{"Bandwidth", []key.Binding{k.GlobalUpLimit, k.GlobalDownLimit, k.UpLimit, k.DownLimit, k.PriorityUp, k.PriorityDown, k.HonorsLimits, k.SeedRatio, k.Turtle}},
		{"Queue", []key.Binding{k.QueueDown, k.QueueUp, k.QueueBottom, k.QueueTop}},
		{"Details", []key.Binding{k.NextTab, k.PrevTab, k.OverviewTab, k.FilesTab, k.PeersTab, k.TrackersTab, k.AddTracker, k.RemoveTracker}},
		{"Daemon", []key.Binding{k.Quit, k.Shutdown}},
	}
}
