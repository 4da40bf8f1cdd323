// Package app wires the RPC client, the poller and the interaction engine
// into one Bubble Tea program.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/trammel/internal/geo"
	"github.com/atomicstack/trammel/internal/history"
	"github.com/atomicstack/trammel/internal/logging"
	"github.com/atomicstack/trammel/internal/logging/events"
	"github.com/atomicstack/trammel/internal/model"
	"github.com/atomicstack/trammel/internal/poller"
	"github.com/atomicstack/trammel/internal/transmission"
	"github.com/atomicstack/trammel/internal/ui"
)

// minCallSpacing keeps bursts of user-issued mutations from hammering the
// daemon between poll cycles.
const minCallSpacing = 100 * time.Millisecond

// Config describes user-provided application options.
type Config struct {
	Endpoint        transmission.Endpoint
	Timeout         time.Duration
	ActiveInterval  time.Duration
	PassiveInterval time.Duration
	Sort            model.Sort
	Filter          model.Filter
	Keys            map[string]string
}

// Run connects to the daemon and executes the Bubble Tea program. It
// returns once the user quits or the terminal goes away.
func Run(cfg Config) error {
	client := transmission.New(cfg.Endpoint, transmission.Options{
		Timeout:     cfg.Timeout,
		MinInterval: minCallSpacing,
	})
	if _, err := client.Handshake(context.Background()); err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.Endpoint.String(), err)
	}

	keys := ui.DefaultKeyMap()
	if err := keys.Apply(cfg.Keys); err != nil {
		return err
	}

	hist := history.Load(history.DefaultPath())
	p := poller.New(client, poller.Config{
		ActiveInterval:  cfg.ActiveInterval,
		PassiveInterval: cfg.PassiveInterval,
	})

	m := ui.NewModel(ui.Options{
		Client:   client,
		Poller:   p,
		Endpoint: cfg.Endpoint.String(),
		Keys:     &keys,
		Sort:     cfg.Sort,
		Filter:   cfg.Filter,
		History:  hist,
		Geo:      geo.NewCache(geo.Disabled, 0),
	})

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	_, err := program.Run()

	p.Stop()
	p.Wait()
	if herr := hist.Save(); herr != nil {
		logging.Error(herr)
	}
	events.App.Shutdown()

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// AddTorrents sends each path, magnet or URL to the daemon and reports the
// outcomes; the add subcommand uses it without starting the TUI.
func AddTorrents(cfg Config, items []string, paused bool) ([]transmission.AddResult, error) {
	client := transmission.New(cfg.Endpoint, transmission.Options{Timeout: cfg.Timeout})
	ctx := context.Background()
	if _, err := client.Handshake(ctx); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Endpoint.String(), err)
	}
	results := make([]transmission.AddResult, 0, len(items))
	for _, item := range items {
		res, err := client.AddTorrent(ctx, transmission.AddRequest{Path: item, Paused: paused})
		if err != nil {
			return results, fmt.Errorf("add %s: %w", item, err)
		}
		results = append(results, res)
	}
	return results, nil
}
