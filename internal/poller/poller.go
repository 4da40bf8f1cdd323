// Package poller drives the polling loop that keeps the model store in
// sync with the daemon. One goroutine, one cycle at a time: every event is
// handed off before the next tick is scheduled, so a slow consumer or a
// slow daemon can never stack snapshots.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/trammel/internal/logging/events"
	"github.com/atomicstack/trammel/internal/transmission"
)

const (
	DefaultActiveInterval  = 2 * time.Second
	DefaultPassiveInterval = 10 * time.Second

	// defaultFullEvery forces a complete enumeration every Nth cycle;
	// the cycles between use the daemon's recently-active form.
	defaultFullEvery = 10
	// defaultStatsEvery refreshes session info and transfer stats.
	defaultStatsEvery = 5
)

// Source is the slice of the RPC client the poller drives.
type Source interface {
	FetchTorrents(ctx context.Context, req transmission.TorrentRequest) (transmission.Snapshot, error)
	FetchTorrentDetails(ctx context.Context, id int64) (transmission.Snapshot, error)
	FetchSession(ctx context.Context) (transmission.SessionInfo, error)
	FetchSessionStats(ctx context.Context) (transmission.SessionStats, error)
	FreeSpace(ctx context.Context, path string) (int64, error)
}

// Event is the outcome of one poll cycle. Fields are nil when the cycle did
// not perform that fetch or failed before reaching it. Failures counts
// consecutive failed cycles and is zero on success.
type Event struct {
	Snapshot  *transmission.Snapshot
	Detail    *transmission.Snapshot
	Session   *transmission.SessionInfo
	Stats     *transmission.SessionStats
	FreeSpace *int64
	Err       error
	Failures  int
}

// Config tunes the poll cadence. Zero values take the defaults.
type Config struct {
	ActiveInterval  time.Duration
	PassiveInterval time.Duration
	FullEvery       int
	StatsEvery      int
}

func (c Config) withDefaults() Config {
	if c.ActiveInterval <= 0 {
		c.ActiveInterval = DefaultActiveInterval
	}
	if c.PassiveInterval <= 0 {
		c.PassiveInterval = DefaultPassiveInterval
	}
	if c.FullEvery <= 0 {
		c.FullEvery = defaultFullEvery
	}
	if c.StatsEvery <= 0 {
		c.StatsEvery = defaultStatsEvery
	}
	return c
}

// Poller owns the polling goroutine. All controls are safe to call from the
// UI loop while the goroutine runs.
type Poller struct {
	source Source
	cfg    Config

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	kick   chan struct{}
	wg     sync.WaitGroup

	mu        sync.Mutex
	passive   bool
	watched   int64
	forceFull bool

	// cycles and failures belong to the run goroutine alone.
	cycles   int
	failures int
}

// New starts polling immediately. The first cycle is always a complete
// enumeration so the store starts from an authoritative view.
func New(source Source, cfg Config) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{
		source: source,
		cfg:    cfg.withDefaults(),
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event),
		kick:   make(chan struct{}, 1),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Events returns the cycle outcome channel. It is unbuffered and closes
// after Stop once the goroutine drains.
func (p *Poller) Events() <-chan Event {
	return p.events
}

// SetPassive switches between the focused and blurred cadence. Takes effect
// when the next tick is scheduled.
func (p *Poller) SetPassive(passive bool) {
	p.mu.Lock()
	changed := p.passive != passive
	p.passive = passive
	p.mu.Unlock()
	if changed {
		events.Poller.Cadence(passive, p.intervalFor(passive))
	}
}

// WatchDetails asks every following cycle to fetch the detail field set for
// one torrent. Zero clears the watch.
func (p *Poller) WatchDetails(id int64) {
	p.mu.Lock()
	changed := p.watched != id
	p.watched = id
	p.mu.Unlock()
	if changed {
		events.Poller.Watch(id)
	}
}

// Refresh schedules an immediate complete cycle, used after mutations so
// their effect shows up without waiting out the cadence.
func (p *Poller) Refresh() {
	p.mu.Lock()
	p.forceFull = true
	p.mu.Unlock()
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Stop cancels the poller. The goroutine exits after its current cycle;
// use Wait for a clean drain.
func (p *Poller) Stop() {
	p.cancel()
}

// Wait blocks until the goroutine has exited and the events channel is
// closed.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) interval() time.Duration {
	p.mu.Lock()
	passive := p.passive
	p.mu.Unlock()
	return p.intervalFor(passive)
}

func (p *Poller) intervalFor(passive bool) time.Duration {
	if passive {
		return p.cfg.PassiveInterval
	}
	return p.cfg.ActiveInterval
}

func (p *Poller) run() {
	defer p.wg.Done()
	defer close(p.events)

	if !p.cycle() {
		return
	}

	timer := time.NewTimer(p.interval())
	defer timer.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.kick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-timer.C:
		}
		if !p.cycle() {
			return
		}
		timer.Reset(p.interval())
	}
}

// cycle performs the fetches the current tick calls for and hands the
// outcome off. It reports false once the context is cancelled.
func (p *Poller) cycle() bool {
	p.mu.Lock()
	watched := p.watched
	force := p.forceFull
	p.forceFull = false
	p.mu.Unlock()

	full := force || p.cycles%p.cfg.FullEvery == 0
	stats := p.cycles%p.cfg.StatsEvery == 0
	p.cycles++

	started := time.Now()
	evt := p.fetch(full, watched, stats)

	if evt.Err != nil {
		p.failures++
		events.Poller.Failure(p.failures, evt.Err)
	} else {
		if p.failures > 0 {
			events.Poller.Recovered(p.failures)
		}
		p.failures = 0
	}
	evt.Failures = p.failures

	count := 0
	if evt.Snapshot != nil {
		count = len(evt.Snapshot.Torrents)
	}
	events.Poller.Cycle(full, count, time.Since(started))

	select {
	case <-p.ctx.Done():
		return false
	case p.events <- evt:
		return true
	}
}

// fetch runs the cycle's calls in order and stops at the first error,
// keeping whatever already succeeded so the consumer can still merge it.
func (p *Poller) fetch(full bool, watched int64, stats bool) Event {
	var evt Event

	snap, err := p.source.FetchTorrents(p.ctx, transmission.TorrentRequest{RecentlyActive: !full})
	if err != nil {
		evt.Err = err
		return evt
	}
	evt.Snapshot = &snap

	if watched != 0 {
		detail, err := p.source.FetchTorrentDetails(p.ctx, watched)
		if err != nil {
			evt.Err = err
			return evt
		}
		evt.Detail = &detail
	}

	if stats {
		info, err := p.source.FetchSession(p.ctx)
		if err != nil {
			evt.Err = err
			return evt
		}
		evt.Session = &info

		st, err := p.source.FetchSessionStats(p.ctx)
		if err != nil {
			evt.Err = err
			return evt
		}
		evt.Stats = &st

		if info.DownloadDir != "" {
			free, err := p.source.FreeSpace(p.ctx, info.DownloadDir)
			if err != nil {
				evt.Err = err
				return evt
			}
			evt.FreeSpace = &free
		}
	}

	return evt
}
