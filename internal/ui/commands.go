package ui

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/trammel/internal/transmission"
)

// Commander is the slice of the RPC client that user actions drive. Reads
// go through the poller; everything here is a mutation issued from a
// command closure off the update loop.
type Commander interface {
	StartTorrents(ctx context.Context, ids []int64) error
	StartTorrentsNow(ctx context.Context, ids []int64) error
	StopTorrents(ctx context.Context, ids []int64) error
	StartAllTorrents(ctx context.Context) error
	StopAllTorrents(ctx context.Context) error
	VerifyTorrents(ctx context.Context, ids []int64) error
	ReannounceTorrents(ctx context.Context, ids []int64) error
	RemoveTorrents(ctx context.Context, ids []int64, deleteData bool) error
	MoveTorrents(ctx context.Context, ids []int64, dest string, move bool) error
	RenameTorrentPath(ctx context.Context, id int64, path, name string) error
	SetTorrentRate(ctx context.Context, ids []int64, dir transmission.Direction, kbps int64) error
	SetBandwidthPriority(ctx context.Context, ids []int64, prio transmission.Priority) error
	SetHonorsSessionLimits(ctx context.Context, ids []int64, honors bool) error
	SetSeedRatio(ctx context.Context, ids []int64, limit float64, mode transmission.SeedRatioMode) error
	SetLabels(ctx context.Context, ids []int64, labels []string) error
	SetFilesWanted(ctx context.Context, id int64, files []int, wanted bool) error
	SetFilePriorities(ctx context.Context, id int64, files []int, prio transmission.Priority) error
	AddTracker(ctx context.Context, id int64, announce string) error
	RemoveTracker(ctx context.Context, id, trackerID int64) error
	MoveQueue(ctx context.Context, ids []int64, dir transmission.QueueMove) error
	AddTorrent(ctx context.Context, req transmission.AddRequest) (transmission.AddResult, error)
	SetSessionRate(ctx context.Context, dir transmission.Direction, kbps int64) error
	SetAltSpeed(ctx context.Context, enabled bool) error
	CloseSession(ctx context.Context) error
	RPCVersion() int
}

// ack wraps a mutation into a command. The closure runs off the update
// loop; the client bounds every exchange with its own timeout, and the
// resulting message asks the poller for a fresh snapshot so the screen
// reflects the change without waiting for the next tick.
func ack(info string, run func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := run(context.Background()); err != nil {
			return actionResultMsg{err: err}
		}
		return actionResultMsg{info: info, refresh: true}
	}
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func togglePauseCmd(c Commander, start, stop []int64) tea.Cmd {
	info := ""
	switch {
	case len(stop) == 0:
		info = fmt.Sprintf("resumed %s", countNoun(len(start), "torrent"))
	case len(start) == 0:
		info = fmt.Sprintf("paused %s", countNoun(len(stop), "torrent"))
	default:
		info = fmt.Sprintf("resumed %d, paused %d", len(start), len(stop))
	}
	return ack(info, func(ctx context.Context) error {
		if len(stop) > 0 {
			if err := c.StopTorrents(ctx, stop); err != nil {
				return err
			}
		}
		if len(start) > 0 {
			return c.StartTorrents(ctx, start)
		}
		return nil
	})
}

func pauseAllCmd(c Commander, pause bool) tea.Cmd {
	if pause {
		return ack("paused all torrents", c.StopAllTorrents)
	}
	return ack("resumed all torrents", c.StartAllTorrents)
}

func startNowCmd(c Commander, ids []int64) tea.Cmd {
	return ack(fmt.Sprintf("started %s now", countNoun(len(ids), "torrent")), func(ctx context.Context) error {
		return c.StartTorrentsNow(ctx, ids)
	})
}

func verifyCmd(c Commander, ids []int64) tea.Cmd {
	return ack(fmt.Sprintf("verifying %s", countNoun(len(ids), "torrent")), func(ctx context.Context) error {
		return c.VerifyTorrents(ctx, ids)
	})
}

func reannounceCmd(c Commander, ids []int64) tea.Cmd {
	return ack(fmt.Sprintf("reannounced %s", countNoun(len(ids), "torrent")), func(ctx context.Context) error {
		return c.ReannounceTorrents(ctx, ids)
	})
}

func removeCmd(c Commander, ids []int64, deleteData bool) tea.Cmd {
	info := fmt.Sprintf("removed %s", countNoun(len(ids), "torrent"))
	if deleteData {
		info = fmt.Sprintf("removed %s with data", countNoun(len(ids), "torrent"))
	}
	return ack(info, func(ctx context.Context) error {
		return c.RemoveTorrents(ctx, ids, deleteData)
	})
}

func moveCmd(c Commander, ids []int64, dest string) tea.Cmd {
	return ack(fmt.Sprintf("moving %s to %s", countNoun(len(ids), "torrent"), dest), func(ctx context.Context) error {
		return c.MoveTorrents(ctx, ids, dest, true)
	})
}

func renameCmd(c Commander, id int64, oldName, newName string) tea.Cmd {
	return ack(fmt.Sprintf("renamed to %s", newName), func(ctx context.Context) error {
		return c.RenameTorrentPath(ctx, id, oldName, newName)
	})
}

func torrentRateCmd(c Commander, ids []int64, dir transmission.Direction, kbps int64) tea.Cmd {
	info := fmt.Sprintf("%s limit off for %s", dir, countNoun(len(ids), "torrent"))
	if kbps >= 0 {
		info = fmt.Sprintf("%s limit %d KB/s for %s", dir, kbps, countNoun(len(ids), "torrent"))
	}
	return ack(info, func(ctx context.Context) error {
		return c.SetTorrentRate(ctx, ids, dir, kbps)
	})
}

func sessionRateCmd(c Commander, dir transmission.Direction, kbps int64) tea.Cmd {
	info := fmt.Sprintf("global %s limit off", dir)
	if kbps >= 0 {
		info = fmt.Sprintf("global %s limit %d KB/s", dir, kbps)
	}
	return ack(info, func(ctx context.Context) error {
		return c.SetSessionRate(ctx, dir, kbps)
	})
}

func priorityCmd(c Commander, ids []int64, prio transmission.Priority) tea.Cmd {
	return ack(fmt.Sprintf("bandwidth priority %s", prio), func(ctx context.Context) error {
		return c.SetBandwidthPriority(ctx, ids, prio)
	})
}

func honorsLimitsCmd(c Commander, ids []int64, honors bool) tea.Cmd {
	info := "ignoring session limits"
	if honors {
		info = "honoring session limits"
	}
	return ack(info, func(ctx context.Context) error {
		return c.SetHonorsSessionLimits(ctx, ids, honors)
	})
}

func seedRatioCmd(c Commander, ids []int64, limit float64, mode transmission.SeedRatioMode) tea.Cmd {
	var info string
	switch mode {
	case transmission.SeedRatioCustom:
		info = fmt.Sprintf("seed ratio limit %.2f", limit)
	case transmission.SeedRatioUnlimited:
		info = "seeding regardless of ratio"
	default:
		info = "seed ratio follows the global limit"
	}
	return ack(info, func(ctx context.Context) error {
		return c.SetSeedRatio(ctx, ids, limit, mode)
	})
}

func labelsCmd(c Commander, ids []int64, labels []string) tea.Cmd {
	info := "labels cleared"
	if len(labels) > 0 {
		info = fmt.Sprintf("labels set on %s", countNoun(len(ids), "torrent"))
	}
	return ack(info, func(ctx context.Context) error {
		return c.SetLabels(ctx, ids, labels)
	})
}

func queueCmd(c Commander, ids []int64, dir transmission.QueueMove) tea.Cmd {
	return ack(fmt.Sprintf("queue updated for %s", countNoun(len(ids), "torrent")), func(ctx context.Context) error {
		return c.MoveQueue(ctx, ids, dir)
	})
}

func altSpeedCmd(c Commander, enabled bool) tea.Cmd {
	info := "turtle mode off"
	if enabled {
		info = "turtle mode on"
	}
	return ack(info, func(ctx context.Context) error {
		return c.SetAltSpeed(ctx, enabled)
	})
}

func fileWantedCmd(c Commander, id int64, files []int, wanted bool) tea.Cmd {
	info := fmt.Sprintf("skipping %s", countNoun(len(files), "file"))
	if wanted {
		info = fmt.Sprintf("downloading %s", countNoun(len(files), "file"))
	}
	return ack(info, func(ctx context.Context) error {
		return c.SetFilesWanted(ctx, id, files, wanted)
	})
}

func filePriorityCmd(c Commander, id int64, files []int, prio transmission.Priority) tea.Cmd {
	return ack(fmt.Sprintf("file priority %s", prio), func(ctx context.Context) error {
		return c.SetFilePriorities(ctx, id, files, prio)
	})
}

func addTrackerCmd(c Commander, id int64, announce string) tea.Cmd {
	return ack("tracker added", func(ctx context.Context) error {
		return c.AddTracker(ctx, id, announce)
	})
}

func removeTrackerCmd(c Commander, id, trackerID int64) tea.Cmd {
	return ack("tracker removed", func(ctx context.Context) error {
		return c.RemoveTracker(ctx, id, trackerID)
	})
}

func addTorrentCmd(c Commander, req transmission.AddRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := c.AddTorrent(context.Background(), req)
		if err != nil {
			return actionResultMsg{err: err}
		}
		if res.Duplicate {
			return actionResultMsg{info: fmt.Sprintf("%s is already present", res.Name), refresh: true}
		}
		return actionResultMsg{info: fmt.Sprintf("added %s", res.Name), refresh: true}
	}
}

// shutdownCmd stops the daemon and then the program; there is nothing left
// to control once the session closes.
func shutdownCmd(c Commander) tea.Cmd {
	return func() tea.Msg {
		if err := c.CloseSession(context.Background()); err != nil {
			return actionResultMsg{err: err}
		}
		return actionResultMsg{info: "daemon shutting down", quit: true}
	}
}

func copyMagnetCmd(link string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(link); err != nil {
			return actionResultMsg{err: fmt.Errorf("clipboard: %w", err)}
		}
		return actionResultMsg{info: "magnet link copied"}
	}
}
