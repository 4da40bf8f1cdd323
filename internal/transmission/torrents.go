package transmission

import (
	"context"
	"encoding/base64"
	"net/url"
	"os"
	"strings"

	"github.com/atomicstack/trammel/internal/logging/events"
)

// TorrentRequest shapes one torrent-get call. Zero value means a complete
// enumeration with the list field set.
type TorrentRequest struct {
	// IDs limits the response to specific torrents; used for detail
	// refreshes. Ignored when RecentlyActive is set.
	IDs []int64
	// RecentlyActive asks for the incremental form: only torrents that
	// changed since the last interval, plus the removed id list.
	RecentlyActive bool
	// Fields overrides the default list field set.
	Fields []string
}

// Snapshot is one torrent-get response together with how authoritative it
// is: a complete enumeration permits removal of every id it omits, an
// incremental one removes exactly the ids the daemon listed.
type Snapshot struct {
	Torrents []TorrentRecord
	Removed  []int64
	Complete bool
}

// FetchTorrents performs torrent-get. Completeness is decided by the
// request shape, never inferred from the response.
func (c *Client) FetchTorrents(ctx context.Context, req TorrentRequest) (Snapshot, error) {
	fields := req.Fields
	if fields == nil {
		fields = ListFields
	}
	args := map[string]interface{}{
		"fields": withVersionFields(fields, c.RPCVersion()),
	}
	switch {
	case req.RecentlyActive:
		args["ids"] = "recently-active"
	case len(req.IDs) > 0:
		args["ids"] = req.IDs
	}
	var out struct {
		Torrents []TorrentRecord `json:"torrents"`
		Removed  []int64         `json:"removed"`
	}
	if err := c.call(ctx, "torrent-get", args, &out); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Torrents: out.Torrents,
		Removed:  out.Removed,
		Complete: !req.RecentlyActive && len(req.IDs) == 0,
	}, nil
}

// FetchTorrentDetails refreshes one torrent with the detail field set.
func (c *Client) FetchTorrentDetails(ctx context.Context, id int64) (Snapshot, error) {
	return c.FetchTorrents(ctx, TorrentRequest{IDs: []int64{id}, Fields: DetailFields})
}

func (c *Client) torrentAction(ctx context.Context, method string, ids []int64) error {
	if len(ids) == 0 {
		return invalidf("%s: no torrents given", method)
	}
	events.Torrent.Action(method, ids)
	return c.call(ctx, method, map[string]interface{}{"ids": ids}, nil)
}

// allTorrentAction omits ids, which the daemon reads as "every torrent".
func (c *Client) allTorrentAction(ctx context.Context, method string) error {
	events.Torrent.Action(method, nil)
	return c.call(ctx, method, nil, nil)
}

func (c *Client) StartTorrents(ctx context.Context, ids []int64) error {
	return c.torrentAction(ctx, "torrent-start", ids)
}

// StartTorrentsNow bypasses the download queue.
func (c *Client) StartTorrentsNow(ctx context.Context, ids []int64) error {
	return c.torrentAction(ctx, "torrent-start-now", ids)
}

func (c *Client) StopTorrents(ctx context.Context, ids []int64) error {
	return c.torrentAction(ctx, "torrent-stop", ids)
}

func (c *Client) StartAllTorrents(ctx context.Context) error {
	return c.allTorrentAction(ctx, "torrent-start")
}

func (c *Client) StopAllTorrents(ctx context.Context) error {
	return c.allTorrentAction(ctx, "torrent-stop")
}

func (c *Client) VerifyTorrents(ctx context.Context, ids []int64) error {
	return c.torrentAction(ctx, "torrent-verify", ids)
}

func (c *Client) ReannounceTorrents(ctx context.Context, ids []int64) error {
	return c.torrentAction(ctx, "torrent-reannounce", ids)
}

// RemoveTorrents drops torrents from the daemon, optionally deleting their
// downloaded data.
func (c *Client) RemoveTorrents(ctx context.Context, ids []int64, deleteData bool) error {
	if len(ids) == 0 {
		return invalidf("torrent-remove: no torrents given")
	}
	events.Torrent.Removed(ids, deleteData)
	args := map[string]interface{}{"ids": ids, "delete-local-data": deleteData}
	return c.call(ctx, "torrent-remove", args, nil)
}

// MoveTorrents points torrents at a new download directory. With move set
// the daemon transfers existing data; otherwise it expects to find the data
// at the destination already.
func (c *Client) MoveTorrents(ctx context.Context, ids []int64, dest string, move bool) error {
	dest = strings.TrimSpace(dest)
	if len(ids) == 0 {
		return invalidf("torrent-set-location: no torrents given")
	}
	if dest == "" {
		return invalidf("torrent-set-location: destination required")
	}
	events.Torrent.Moved(ids, dest)
	args := map[string]interface{}{"ids": ids, "location": dest, "move": move}
	return c.call(ctx, "torrent-set-location", args, nil)
}

// RenameTorrentPath renames a file or directory within one torrent. Path is
// the existing daemon-relative path, name its new final element.
func (c *Client) RenameTorrentPath(ctx context.Context, id int64, path, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalidf("torrent-rename-path: new name required")
	}
	if strings.ContainsRune(name, '/') {
		return invalidf("torrent-rename-path: name %q must not contain '/'", name)
	}
	events.Torrent.Renamed(id, name)
	args := map[string]interface{}{"ids": []int64{id}, "path": path, "name": name}
	return c.call(ctx, "torrent-rename-path", args, nil)
}

// SetTorrents applies raw torrent-set arguments to the given ids.
func (c *Client) SetTorrents(ctx context.Context, ids []int64, changes map[string]interface{}) error {
	if len(ids) == 0 {
		return invalidf("torrent-set: no torrents given")
	}
	if len(changes) == 0 {
		return invalidf("torrent-set: nothing to change")
	}
	args := make(map[string]interface{}, len(changes)+1)
	for k, v := range changes {
		args[k] = v
	}
	args["ids"] = ids
	return c.call(ctx, "torrent-set", args, nil)
}

// Direction distinguishes the two transfer directions in rate limits.
type Direction int

const (
	Down Direction = iota
	Up
)

func (d Direction) String() string {
	if d == Up {
		return "upload"
	}
	return "download"
}

// SetTorrentRate sets a per-torrent rate limit in KB/s; a negative value
// disables the limit.
func (c *Client) SetTorrentRate(ctx context.Context, ids []int64, dir Direction, kbps int64) error {
	limitKey, enabledKey := "downloadLimit", "downloadLimited"
	if dir == Up {
		limitKey, enabledKey = "uploadLimit", "uploadLimited"
	}
	if kbps < 0 {
		return c.SetTorrents(ctx, ids, map[string]interface{}{enabledKey: false})
	}
	return c.SetTorrents(ctx, ids, map[string]interface{}{limitKey: kbps, enabledKey: true})
}

func (c *Client) SetBandwidthPriority(ctx context.Context, ids []int64, prio Priority) error {
	if prio < PriorityLow || prio > PriorityHigh {
		return invalidf("bandwidth priority %d out of range", prio)
	}
	return c.SetTorrents(ctx, ids, map[string]interface{}{"bandwidthPriority": prio})
}

func (c *Client) SetHonorsSessionLimits(ctx context.Context, ids []int64, honors bool) error {
	return c.SetTorrents(ctx, ids, map[string]interface{}{"honorsSessionLimits": honors})
}

// SetSeedRatio sets the per-torrent seed ratio policy. The limit only
// matters in SeedRatioCustom mode.
func (c *Client) SetSeedRatio(ctx context.Context, ids []int64, limit float64, mode SeedRatioMode) error {
	if mode < SeedRatioGlobal || mode > SeedRatioUnlimited {
		return invalidf("seed ratio mode %d out of range", mode)
	}
	if mode == SeedRatioCustom && limit < 0 {
		return invalidf("seed ratio limit must not be negative")
	}
	return c.SetTorrents(ctx, ids, map[string]interface{}{
		"seedRatioLimit": limit,
		"seedRatioMode":  mode,
	})
}

// SetLabels replaces a torrent's label list. Needs RPC 16.
func (c *Client) SetLabels(ctx context.Context, ids []int64, labels []string) error {
	if v := c.RPCVersion(); v > 0 && v < labelsMinVersion {
		return invalidf("daemon RPC %d has no labels (need %d)", v, labelsMinVersion)
	}
	if labels == nil {
		labels = []string{}
	}
	return c.SetTorrents(ctx, ids, map[string]interface{}{"labels": labels})
}

// SetFilesWanted marks files for download or skipping within one torrent.
func (c *Client) SetFilesWanted(ctx context.Context, id int64, files []int, wanted bool) error {
	if len(files) == 0 {
		return invalidf("torrent-set: no files given")
	}
	key := "files-unwanted"
	if wanted {
		key = "files-wanted"
	}
	return c.SetTorrents(ctx, []int64{id}, map[string]interface{}{key: files})
}

// SetFilePriorities applies one priority to the given file indexes.
func (c *Client) SetFilePriorities(ctx context.Context, id int64, files []int, prio Priority) error {
	if len(files) == 0 {
		return invalidf("torrent-set: no files given")
	}
	var key string
	switch prio {
	case PriorityLow:
		key = "priority-low"
	case PriorityNormal:
		key = "priority-normal"
	case PriorityHigh:
		key = "priority-high"
	default:
		return invalidf("file priority %d out of range", prio)
	}
	return c.SetTorrents(ctx, []int64{id}, map[string]interface{}{key: files})
}

// AddTracker appends an announce URL to one torrent.
func (c *Client) AddTracker(ctx context.Context, id int64, announce string) error {
	announce = strings.TrimSpace(announce)
	u, err := url.Parse(announce)
	if err != nil || u.Host == "" {
		return invalidf("tracker URL %q is not valid", announce)
	}
	switch u.Scheme {
	case "http", "https", "udp":
	default:
		return invalidf("tracker URL scheme %q not supported", u.Scheme)
	}
	return c.SetTorrents(ctx, []int64{id}, map[string]interface{}{"trackerAdd": []string{announce}})
}

// RemoveTracker drops a tracker by the id reported in trackerStats.
func (c *Client) RemoveTracker(ctx context.Context, id, trackerID int64) error {
	return c.SetTorrents(ctx, []int64{id}, map[string]interface{}{"trackerRemove": []int64{trackerID}})
}

// QueueMove is a queue reordering direction.
type QueueMove int

const (
	QueueUp QueueMove = iota
	QueueDown
	QueueTop
	QueueBottom
)

func (q QueueMove) method() string {
	switch q {
	case QueueDown:
		return "queue-move-down"
	case QueueTop:
		return "queue-move-top"
	case QueueBottom:
		return "queue-move-bottom"
	}
	return "queue-move-up"
}

func (c *Client) MoveQueue(ctx context.Context, ids []int64, dir QueueMove) error {
	return c.torrentAction(ctx, dir.method(), ids)
}

// AddRequest describes one torrent to hand to the daemon. Path may be a
// local .torrent file (sent base64 as metainfo), a magnet link, or an http
// URL the daemon fetches itself.
type AddRequest struct {
	Path        string
	DownloadDir string
	Paused      bool
}

// AddResult reports what the daemon did with an added torrent.
type AddResult struct {
	ID        int64
	Name      string
	Duplicate bool
}

type addedTorrent struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Hash string `json:"hashString"`
}

// AddTorrent submits a torrent. Local files are read here and shipped in
// the request body, so the daemon needs no access to the client's disk.
func (c *Client) AddTorrent(ctx context.Context, req AddRequest) (AddResult, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return AddResult{}, invalidf("torrent-add: path, magnet, or URL required")
	}
	args := map[string]interface{}{"paused": req.Paused}
	if req.DownloadDir != "" {
		args["download-dir"] = req.DownloadDir
	}
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "magnet:") || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		args["filename"] = path
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return AddResult{}, invalidf("torrent-add: %v", err)
		}
		args["metainfo"] = base64.StdEncoding.EncodeToString(data)
	}
	var out struct {
		Added     *addedTorrent `json:"torrent-added"`
		Duplicate *addedTorrent `json:"torrent-duplicate"`
	}
	if err := c.call(ctx, "torrent-add", args, &out); err != nil {
		return AddResult{}, err
	}
	switch {
	case out.Added != nil:
		events.Torrent.Added(out.Added.Name, false)
		return AddResult{ID: out.Added.ID, Name: out.Added.Name}, nil
	case out.Duplicate != nil:
		events.Torrent.Added(out.Duplicate.Name, true)
		return AddResult{ID: out.Duplicate.ID, Name: out.Duplicate.Name, Duplicate: true}, nil
	}
	return AddResult{}, &ProtocolError{Method: "torrent-add", Reason: "response names no torrent"}
}
