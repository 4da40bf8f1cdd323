package transmission

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
)

// Status is the daemon's torrent activity enumeration.
type Status int

const (
	StatusStopped Status = iota
	StatusCheckWait
	StatusChecking
	StatusDownloadWait
	StatusDownloading
	StatusSeedWait
	StatusSeeding
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusCheckWait:
		return "queued to verify"
	case StatusChecking:
		return "verifying"
	case StatusDownloadWait:
		return "queued to download"
	case StatusDownloading:
		return "downloading"
	case StatusSeedWait:
		return "queued to seed"
	case StatusSeeding:
		return "seeding"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Priority is a bandwidth or file priority as the daemon encodes it.
type Priority int

const (
	PriorityLow    Priority = -1
	PriorityNormal Priority = 0
	PriorityHigh   Priority = 1
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	}
	return "normal"
}

// SeedRatioMode selects which seed ratio limit applies to a torrent.
type SeedRatioMode int

const (
	SeedRatioGlobal    SeedRatioMode = 0
	SeedRatioCustom    SeedRatioMode = 1
	SeedRatioUnlimited SeedRatioMode = 2
)

// Flag decodes the daemon's wanted arrays, which carry 0/1 integers in older
// protocol versions and booleans in newer ones.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1":
		*f = true
	case "false", "0":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %q", data)
	}
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("true"), nil
	}
	return []byte("false"), nil
}

// Torrent carries every torrent-get field this client ever requests. Rates
// are bytes per second, sizes bytes, limits KB/s, dates unix seconds.
type Torrent struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Hash        string `json:"hashString"`
	Status      Status `json:"status"`
	DownloadDir string `json:"downloadDir"`

	Error       int    `json:"error"`
	ErrorString string `json:"errorString"`

	ETA          int64 `json:"eta"`
	RateDownload int64 `json:"rateDownload"`
	RateUpload   int64 `json:"rateUpload"`

	TotalSize        int64 `json:"totalSize"`
	SizeWhenDone     int64 `json:"sizeWhenDone"`
	HaveValid        int64 `json:"haveValid"`
	HaveUnchecked    int64 `json:"haveUnchecked"`
	LeftUntilDone    int64 `json:"leftUntilDone"`
	DesiredAvailable int64 `json:"desiredAvailable"`

	UploadedEver    int64   `json:"uploadedEver"`
	DownloadedEver  int64   `json:"downloadedEver"`
	CorruptEver     int64   `json:"corruptEver"`
	UploadRatio     float64 `json:"uploadRatio"`
	RecheckProgress float64 `json:"recheckProgress"`

	PeersConnected     int       `json:"peersConnected"`
	PeersSendingToUs   int       `json:"peersSendingToUs"`
	PeersGettingFromUs int       `json:"peersGettingFromUs"`
	PeersFrom          PeersFrom `json:"peersFrom"`

	AddedDate    int64 `json:"addedDate"`
	ActivityDate int64 `json:"activityDate"`
	DoneDate     int64 `json:"doneDate"`
	StartDate    int64 `json:"startDate"`
	DateCreated  int64 `json:"dateCreated"`

	UploadLimit         int64         `json:"uploadLimit"`
	UploadLimited       bool          `json:"uploadLimited"`
	DownloadLimit       int64         `json:"downloadLimit"`
	DownloadLimited     bool          `json:"downloadLimited"`
	HonorsSessionLimits bool          `json:"honorsSessionLimits"`
	BandwidthPriority   Priority      `json:"bandwidthPriority"`
	SeedRatioLimit      float64       `json:"seedRatioLimit"`
	SeedRatioMode       SeedRatioMode `json:"seedRatioMode"`

	IsPrivate               bool     `json:"isPrivate"`
	MagnetLink              string   `json:"magnetLink"`
	MetadataPercentComplete float64  `json:"metadataPercentComplete"`
	QueuePosition           int      `json:"queuePosition"`
	Labels                  []string `json:"labels"`

	Comment    string `json:"comment"`
	Creator    string `json:"creator"`
	PieceCount int64  `json:"pieceCount"`
	PieceSize  int64  `json:"pieceSize"`

	TrackerStats []TrackerStat `json:"trackerStats"`
	Peers        []Peer        `json:"peers"`
	Files        []FileInfo    `json:"files"`
	Priorities   []Priority    `json:"priorities"`
	Wanted       []Flag        `json:"wanted"`
}

// Progress reports completion of the wanted portion, counting pieces still
// awaiting verification so a recheck does not show up as data loss.
func (t *Torrent) Progress() float64 {
	if t.SizeWhenDone <= 0 {
		return 0
	}
	p := float64(t.HaveValid+t.HaveUnchecked) / float64(t.SizeWhenDone)
	if p > 1 {
		p = 1
	}
	return p
}

// Available reports how much of the wanted portion is obtainable from the
// current swarm, completed data included.
func (t *Torrent) Available() float64 {
	if t.SizeWhenDone <= 0 {
		return 0
	}
	a := float64(t.DesiredAvailable+t.HaveValid+t.HaveUnchecked) / float64(t.SizeWhenDone)
	if a > 1 {
		a = 1
	}
	return a
}

// Seeders reports the best seeder count any tracker claims, -1 when no
// tracker has said anything yet.
func (t *Torrent) Seeders() int {
	best := -1
	for _, tr := range t.TrackerStats {
		if tr.SeederCount > best {
			best = tr.SeederCount
		}
	}
	return best
}

func (t *Torrent) Leechers() int {
	best := -1
	for _, tr := range t.TrackerStats {
		if tr.LeecherCount > best {
			best = tr.LeecherCount
		}
	}
	return best
}

// MainTracker reports the domain of the first tracker in announce order.
func (t *Torrent) MainTracker() string {
	var main *TrackerStat
	for i := range t.TrackerStats {
		tr := &t.TrackerStats[i]
		if main == nil || tr.Tier < main.Tier || (tr.Tier == main.Tier && tr.ID < main.ID) {
			main = tr
		}
	}
	if main == nil {
		return ""
	}
	return main.Domain()
}

// Isolated reports whether the torrent has no way left to find peers: no
// tracker announce has succeeded and the swarm is unreachable without one
// (private torrent, or DHT disabled on the daemon).
func (t *Torrent) Isolated(dhtEnabled bool) bool {
	for _, tr := range t.TrackerStats {
		if tr.HasAnnounced && tr.LastAnnounceSucceeded {
			return false
		}
	}
	return t.IsPrivate || !dhtEnabled
}

// DisplayStatus renders the status line label, folding in queue positions,
// isolation, and metadata download state.
func (t *Torrent) DisplayStatus(dhtEnabled bool) string {
	switch {
	case t.Status == StatusStopped:
		return "paused"
	case t.Status == StatusChecking:
		return "verifying"
	case t.Status == StatusCheckWait:
		return "will verify"
	case t.Isolated(dhtEnabled):
		return "isolated"
	case t.Status == StatusDownloading:
		label := "idle"
		if t.RateDownload > 0 {
			label = "downloading"
		}
		if label == "downloading" && t.MetadataPercentComplete < 1 {
			label += " (metadata)"
		}
		return label
	case t.Status == StatusDownloadWait:
		return fmt.Sprintf("will download (%d)", t.QueuePosition)
	case t.Status == StatusSeeding:
		return "seeding"
	case t.Status == StatusSeedWait:
		return fmt.Sprintf("will seed (%d)", t.QueuePosition)
	}
	return "unknown"
}

// StatusBadge is the single-cell form of DisplayStatus for narrow layouts.
func (t *Torrent) StatusBadge(dhtEnabled bool) string {
	switch {
	case t.Status == StatusStopped:
		return "P"
	case t.Status == StatusChecking:
		return "V"
	case t.Status == StatusCheckWait:
		return "wV"
	case t.Isolated(dhtEnabled):
		return "X"
	case t.Status == StatusDownloading:
		if t.RateDownload == 0 {
			return "I"
		}
		if t.MetadataPercentComplete < 1 {
			return "M"
		}
		return "D"
	case t.Status == StatusDownloadWait:
		return fmt.Sprintf("wD%d", t.QueuePosition)
	case t.Status == StatusSeeding:
		return "S"
	case t.Status == StatusSeedWait:
		return fmt.Sprintf("wS%d", t.QueuePosition)
	}
	return "?"
}

// FileList zips the daemon's parallel files/priorities/wanted arrays into
// one row per file.
func (t *Torrent) FileList() []File {
	files := make([]File, len(t.Files))
	for i, fi := range t.Files {
		f := File{
			Index:          i,
			Name:           fi.Name,
			Length:         fi.Length,
			BytesCompleted: fi.BytesCompleted,
			Wanted:         true,
			Priority:       PriorityNormal,
		}
		if i < len(t.Priorities) {
			f.Priority = t.Priorities[i]
		}
		if i < len(t.Wanted) {
			f.Wanted = bool(t.Wanted[i])
		}
		files[i] = f
	}
	return files
}

// TorrentRecord is one torrent entry from a torrent-get response. It keeps
// the set of keys the daemon actually sent, so merges only touch fields the
// request selected.
type TorrentRecord struct {
	Torrent
	present map[string]struct{}
}

func (r *TorrentRecord) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &r.Torrent); err != nil {
		return err
	}
	r.present = make(map[string]struct{}, len(keys))
	for k := range keys {
		r.present[k] = struct{}{}
	}
	return nil
}

// Has reports whether the daemon included the named field in this record.
func (r *TorrentRecord) Has(field string) bool {
	_, ok := r.present[field]
	return ok
}

// Record wraps a torrent as if every set field had come off the wire.
// Tests and synthetic snapshots use it; responses are decoded directly.
func Record(t Torrent, fields ...string) TorrentRecord {
	present := make(map[string]struct{}, len(fields)+1)
	present["id"] = struct{}{}
	for _, f := range fields {
		present[f] = struct{}{}
	}
	return TorrentRecord{Torrent: t, present: present}
}

// TrackerStat is one entry of a torrent's trackerStats array.
type TrackerStat struct {
	ID                    int64  `json:"id"`
	Announce              string `json:"announce"`
	Host                  string `json:"host"`
	Tier                  int    `json:"tier"`
	HasAnnounced          bool   `json:"hasAnnounced"`
	LastAnnounceSucceeded bool   `json:"lastAnnounceSucceeded"`
	LastAnnounceResult    string `json:"lastAnnounceResult"`
	LastAnnounceTime      int64  `json:"lastAnnounceTime"`
	LastAnnouncePeerCount int    `json:"lastAnnouncePeerCount"`
	NextAnnounceTime      int64  `json:"nextAnnounceTime"`
	SeederCount           int    `json:"seederCount"`
	LeecherCount          int    `json:"leecherCount"`
	DownloadCount         int    `json:"downloadCount"`
}

// Domain reports the announce hostname, falling back to the host field the
// daemon precomputes.
func (ts TrackerStat) Domain() string {
	if u, err := url.Parse(ts.Announce); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	if u, err := url.Parse(ts.Host); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return ts.Host
}

// Peer is one entry of a torrent's peers array. Rebuilt whole on every
// snapshot that includes peer detail; never merged field by field.
type Peer struct {
	Address            string  `json:"address"`
	Port               int     `json:"port"`
	ClientName         string  `json:"clientName"`
	FlagStr            string  `json:"flagStr"`
	Progress           float64 `json:"progress"`
	RateToClient       int64   `json:"rateToClient"`
	RateToPeer         int64   `json:"rateToPeer"`
	ClientIsChoked     bool    `json:"clientIsChoked"`
	ClientIsInterested bool    `json:"clientIsInterested"`
	PeerIsChoked       bool    `json:"peerIsChoked"`
	PeerIsInterested   bool    `json:"peerIsInterested"`
	IsEncrypted        bool    `json:"isEncrypted"`
	IsIncoming         bool    `json:"isIncoming"`
	IsDownloadingFrom  bool    `json:"isDownloadingFrom"`
	IsUploadingTo      bool    `json:"isUploadingTo"`
}

// PeersFrom counts where the daemon discovered a torrent's peers.
type PeersFrom struct {
	FromCache    int `json:"fromCache"`
	FromDHT      int `json:"fromDht"`
	FromIncoming int `json:"fromIncoming"`
	FromLPD      int `json:"fromLpd"`
	FromLTEP     int `json:"fromLtep"`
	FromPEX      int `json:"fromPex"`
	FromTracker  int `json:"fromTracker"`
}

// FileInfo is the wire form of one file entry.
type FileInfo struct {
	Name           string `json:"name"`
	Length         int64  `json:"length"`
	BytesCompleted int64  `json:"bytesCompleted"`
}

// File is the zipped per-file view produced by FileList.
type File struct {
	Index          int
	Name           string
	Length         int64
	BytesCompleted int64
	Wanted         bool
	Priority       Priority
}

// Progress reports the file's own completion ratio.
func (f File) Progress() float64 {
	if f.Length <= 0 {
		return 1
	}
	return float64(f.BytesCompleted) / float64(f.Length)
}
