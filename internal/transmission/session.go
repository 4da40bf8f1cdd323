package transmission

import (
	"context"
	"fmt"
	"strings"

	"github.com/atomicstack/trammel/internal/logging/events"
)

// SessionInfo is the subset of session-get the client renders or acts on.
type SessionInfo struct {
	Version           string `json:"version"`
	RPCVersion        int    `json:"rpc-version"`
	RPCVersionMinimum int    `json:"rpc-version-minimum"`

	DownloadDir        string `json:"download-dir"`
	StartAddedTorrents bool   `json:"start-added-torrents"`
	PeerPort           int    `json:"peer-port"`

	SpeedLimitDown        int64 `json:"speed-limit-down"`
	SpeedLimitDownEnabled bool  `json:"speed-limit-down-enabled"`
	SpeedLimitUp          int64 `json:"speed-limit-up"`
	SpeedLimitUpEnabled   bool  `json:"speed-limit-up-enabled"`

	AltSpeedEnabled bool  `json:"alt-speed-enabled"`
	AltSpeedDown    int64 `json:"alt-speed-down"`
	AltSpeedUp      int64 `json:"alt-speed-up"`

	DHTEnabled bool `json:"dht-enabled"`
	PEXEnabled bool `json:"pex-enabled"`
	LPDEnabled bool `json:"lpd-enabled"`
	UTPEnabled bool `json:"utp-enabled"`

	SeedRatioLimit   float64 `json:"seedRatioLimit"`
	SeedRatioLimited bool    `json:"seedRatioLimited"`
}

// SessionStats is the session-stats response.
type SessionStats struct {
	ActiveTorrentCount int   `json:"activeTorrentCount"`
	PausedTorrentCount int   `json:"pausedTorrentCount"`
	TorrentCount       int   `json:"torrentCount"`
	DownloadSpeed      int64 `json:"downloadSpeed"`
	UploadSpeed        int64 `json:"uploadSpeed"`

	Current    StatsBucket `json:"current-stats"`
	Cumulative StatsBucket `json:"cumulative-stats"`
}

// StatsBucket is one of the daemon's current/cumulative stat groups.
type StatsBucket struct {
	UploadedBytes   int64 `json:"uploadedBytes"`
	DownloadedBytes int64 `json:"downloadedBytes"`
	FilesAdded      int64 `json:"filesAdded"`
	SecondsActive   int64 `json:"secondsActive"`
	SessionCount    int64 `json:"sessionCount"`
}

// Ratio reports uploaded over downloaded for the bucket.
func (b StatsBucket) Ratio() float64 {
	if b.DownloadedBytes <= 0 {
		return 0
	}
	return float64(b.UploadedBytes) / float64(b.DownloadedBytes)
}

// FetchSession performs session-get and remembers the advertised RPC
// version for field gating.
func (c *Client) FetchSession(ctx context.Context) (SessionInfo, error) {
	var out SessionInfo
	if err := c.call(ctx, "session-get", nil, &out); err != nil {
		return SessionInfo{}, err
	}
	if out.RPCVersion > 0 {
		c.setRPCVersion(out.RPCVersion)
	}
	return out, nil
}

// Handshake primes the session credential and confirms the daemon speaks a
// protocol this client understands. The very first exchange is expected to
// bounce with a 409 carrying the credential; that path is transparent here.
func (c *Client) Handshake(ctx context.Context) (SessionInfo, error) {
	info, err := c.FetchSession(ctx)
	if err != nil {
		return SessionInfo{}, err
	}
	if info.RPCVersion < MinRPCVersion {
		return SessionInfo{}, &ProtocolError{
			Method: "session-get",
			Reason: fmt.Sprintf("daemon speaks RPC version %d, this client needs at least %d", info.RPCVersion, MinRPCVersion),
		}
	}
	events.App.Connected(info.Version, info.RPCVersion)
	return info, nil
}

func (c *Client) FetchSessionStats(ctx context.Context) (SessionStats, error) {
	var out SessionStats
	if err := c.call(ctx, "session-stats", nil, &out); err != nil {
		return SessionStats{}, err
	}
	return out, nil
}

// SetSession applies raw session-set arguments.
func (c *Client) SetSession(ctx context.Context, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return invalidf("session-set: nothing to change")
	}
	return c.call(ctx, "session-set", changes, nil)
}

// SetSessionRate sets a global rate limit in KB/s; a negative value
// disables the limit.
func (c *Client) SetSessionRate(ctx context.Context, dir Direction, kbps int64) error {
	limitKey, enabledKey := "speed-limit-down", "speed-limit-down-enabled"
	if dir == Up {
		limitKey, enabledKey = "speed-limit-up", "speed-limit-up-enabled"
	}
	if kbps < 0 {
		return c.SetSession(ctx, map[string]interface{}{enabledKey: false})
	}
	return c.SetSession(ctx, map[string]interface{}{limitKey: kbps, enabledKey: true})
}

// SetAltSpeed toggles the daemon's alternate ("turtle") rate limits.
func (c *Client) SetAltSpeed(ctx context.Context, enabled bool) error {
	return c.SetSession(ctx, map[string]interface{}{"alt-speed-enabled": enabled})
}

// FreeSpace reports how many bytes are free at a daemon-side path.
func (c *Client) FreeSpace(ctx context.Context, path string) (int64, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, invalidf("free-space: path required")
	}
	var out struct {
		Path string `json:"path"`
		Size int64  `json:"size-bytes"`
	}
	if err := c.call(ctx, "free-space", map[string]interface{}{"path": path}, &out); err != nil {
		return 0, err
	}
	return out.Size, nil
}

// CloseSession asks the daemon to shut down.
func (c *Client) CloseSession(ctx context.Context) error {
	return c.call(ctx, "session-close", nil, nil)
}
