package model

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/atomicstack/trammel/internal/transmission"
)

// SortKey selects the column the torrent list orders by.
type SortKey int

const (
	SortByName SortKey = iota
	SortByAge
	SortByActivity
	SortByProgress
	SortBySize
	SortByStatus
	SortByUploaded
	SortByRateUp
	SortByRateDown
	SortByRatio
	SortByPeers
	SortByETA
	SortByQueue
	SortByLocation
	SortByTracker
)

var sortKeyNames = map[SortKey]string{
	SortByName:     "name",
	SortByAge:      "age",
	SortByActivity: "activity",
	SortByProgress: "progress",
	SortBySize:     "size",
	SortByStatus:   "status",
	SortByUploaded: "uploaded",
	SortByRateUp:   "rate-up",
	SortByRateDown: "rate-down",
	SortByRatio:    "ratio",
	SortByPeers:    "peers",
	SortByETA:      "eta",
	SortByQueue:    "queue",
	SortByLocation: "location",
	SortByTracker:  "tracker",
}

func (k SortKey) String() string {
	if name, ok := sortKeyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("sort(%d)", int(k))
}

// ParseSortKey resolves a configuration or prompt value to a sort key.
func ParseSortKey(name string) (SortKey, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for key, label := range sortKeyNames {
		if label == needle {
			return key, nil
		}
	}
	return SortByName, fmt.Errorf("unknown sort key %q", name)
}

// SortKeys lists every sort key in menu order.
func SortKeys() []SortKey {
	return []SortKey{
		SortByName, SortByAge, SortByActivity, SortByProgress, SortBySize,
		SortByStatus, SortByUploaded, SortByRateUp, SortByRateDown,
		SortByRatio, SortByPeers, SortByETA, SortByQueue, SortByLocation,
		SortByTracker,
	}
}

// Sort orders the torrent list. Reverse flips the key comparison but keeps
// the name and id tie breaks stable so equal rows never swap.
type Sort struct {
	Key     SortKey
	Reverse bool
}

func (s Sort) String() string {
	if s.Reverse {
		return s.Key.String() + " (reversed)"
	}
	return s.Key.String()
}

// Less reports whether a orders before b.
func (s Sort) Less(a, b *transmission.Torrent) bool {
	if c := s.compare(a, b); c != 0 {
		if s.Reverse {
			return c > 0
		}
		return c < 0
	}
	if c := compareFold(a.Name, b.Name); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

func (s Sort) compare(a, b *transmission.Torrent) int {
	switch s.Key {
	case SortByName:
		return compareFold(a.Name, b.Name)
	case SortByAge:
		return compareInt(a.AddedDate, b.AddedDate)
	case SortByActivity:
		return compareInt(a.ActivityDate, b.ActivityDate)
	case SortByProgress:
		return compareFloat(a.Progress(), b.Progress())
	case SortBySize:
		return compareInt(a.SizeWhenDone, b.SizeWhenDone)
	case SortByStatus:
		return compareInt(int64(a.Status), int64(b.Status))
	case SortByUploaded:
		return compareInt(a.UploadedEver, b.UploadedEver)
	case SortByRateUp:
		return compareInt(a.RateUpload, b.RateUpload)
	case SortByRateDown:
		return compareInt(a.RateDownload, b.RateDownload)
	case SortByRatio:
		return compareFloat(a.UploadRatio, b.UploadRatio)
	case SortByPeers:
		return compareInt(int64(a.PeersConnected), int64(b.PeersConnected))
	case SortByETA:
		return compareInt(etaOrder(a), etaOrder(b))
	case SortByQueue:
		return compareInt(int64(a.QueuePosition), int64(b.QueuePosition))
	case SortByLocation:
		return compareFold(a.DownloadDir, b.DownloadDir)
	case SortByTracker:
		return compareFold(a.MainTracker(), b.MainTracker())
	}
	return 0
}

// etaOrder pushes torrents without an estimate behind every real one. The
// daemon reports -1 for unknown and -2 for unavailable.
func etaOrder(t *transmission.Torrent) int64 {
	if t.ETA < 0 {
		return math.MaxInt64
	}
	return t.ETA
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// FilterMode selects which torrents the list shows.
type FilterMode int

const (
	FilterAll FilterMode = iota
	FilterActive
	FilterDownloading
	FilterSeeding
	FilterPaused
	FilterIncomplete
	FilterVerifying
	FilterError
	FilterIsolated
	FilterPrivate
)

var filterModeNames = map[FilterMode]string{
	FilterAll:         "all",
	FilterActive:      "active",
	FilterDownloading: "downloading",
	FilterSeeding:     "seeding",
	FilterPaused:      "paused",
	FilterIncomplete:  "incomplete",
	FilterVerifying:   "verifying",
	FilterError:       "error",
	FilterIsolated:    "isolated",
	FilterPrivate:     "private",
}

func (m FilterMode) String() string {
	if name, ok := filterModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("filter(%d)", int(m))
}

// ParseFilterMode resolves a configuration or prompt value to a filter mode.
func ParseFilterMode(name string) (FilterMode, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for mode, label := range filterModeNames {
		if label == needle {
			return mode, nil
		}
	}
	return FilterAll, fmt.Errorf("unknown filter %q", name)
}

// FilterModes lists every filter mode in menu order.
func FilterModes() []FilterMode {
	return []FilterMode{
		FilterAll, FilterActive, FilterDownloading, FilterSeeding,
		FilterPaused, FilterIncomplete, FilterVerifying, FilterError,
		FilterIsolated, FilterPrivate,
	}
}

// Filter narrows the torrent list. Mode, Pattern, and Tracker combine with
// AND; Invert negates the combined verdict. An empty filter passes every
// torrent even when inverted.
type Filter struct {
	Mode    FilterMode
	Pattern string
	Tracker string
	Invert  bool
}

// Empty reports whether the filter passes everything.
func (f Filter) Empty() bool {
	return f.Mode == FilterAll && f.Pattern == "" && f.Tracker == ""
}

func (f Filter) String() string {
	var parts []string
	if f.Mode != FilterAll {
		parts = append(parts, f.Mode.String())
	}
	if f.Pattern != "" {
		parts = append(parts, fmt.Sprintf("~%s", f.Pattern))
	}
	if f.Tracker != "" {
		parts = append(parts, fmt.Sprintf("tracker:%s", f.Tracker))
	}
	if len(parts) == 0 {
		return "all"
	}
	label := strings.Join(parts, " ")
	if f.Invert {
		return "not " + label
	}
	return label
}

// Match reports whether the torrent passes the filter. dhtEnabled comes from
// the session and feeds the isolated check.
func (f Filter) Match(t *transmission.Torrent, dhtEnabled bool) bool {
	if f.Empty() {
		return true
	}
	ok := f.matchMode(t, dhtEnabled) && f.matchPattern(t) && f.matchTracker(t)
	if f.Invert {
		return !ok
	}
	return ok
}

func (f Filter) matchMode(t *transmission.Torrent, dhtEnabled bool) bool {
	switch f.Mode {
	case FilterActive:
		return t.RateDownload > 0 || t.RateUpload > 0 || t.Status == transmission.StatusChecking
	case FilterDownloading:
		return t.Status == transmission.StatusDownloading || t.Status == transmission.StatusDownloadWait
	case FilterSeeding:
		return t.Status == transmission.StatusSeeding || t.Status == transmission.StatusSeedWait
	case FilterPaused:
		return t.Status == transmission.StatusStopped
	case FilterIncomplete:
		return t.Progress() < 1
	case FilterVerifying:
		return t.Status == transmission.StatusChecking || t.Status == transmission.StatusCheckWait
	case FilterError:
		return t.Error != 0
	case FilterIsolated:
		return t.Isolated(dhtEnabled)
	case FilterPrivate:
		return t.IsPrivate
	}
	return true
}

func (f Filter) matchPattern(t *transmission.Torrent) bool {
	if f.Pattern == "" {
		return true
	}
	return fuzzy.MatchNormalizedFold(f.Pattern, t.Name)
}

func (f Filter) matchTracker(t *transmission.Torrent) bool {
	if f.Tracker == "" {
		return true
	}
	return strings.EqualFold(t.MainTracker(), f.Tracker)
}

// Select returns the torrents passing the filter in sort order. Rows point
// at live store entries; the slice itself is fresh on every call.
func (s *Store) Select(f Filter, order Sort) []*transmission.Torrent {
	dht := !s.hasSession || s.session.DHTEnabled
	rows := make([]*transmission.Torrent, 0, len(s.torrents))
	for _, t := range s.torrents {
		if f.Match(t, dht) {
			rows = append(rows, t)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return order.Less(rows[i], rows[j])
	})
	return rows
}

// Trackers lists every distinct tracker domain in the store, sorted, for
// the tracker filter prompt.
func (s *Store) Trackers() []string {
	seen := make(map[string]struct{})
	for _, t := range s.torrents {
		if domain := t.MainTracker(); domain != "" {
			seen[strings.ToLower(domain)] = struct{}{}
		}
	}
	domains := make([]string, 0, len(seen))
	for domain := range seen {
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	return domains
}

// TotalRates sums the transfer rates of every stored torrent for the
// status bar, independent of the active filter.
func (s *Store) TotalRates() (down, up int64) {
	for _, t := range s.torrents {
		down += t.RateDownload
		up += t.RateUpload
	}
	return down, up
}
