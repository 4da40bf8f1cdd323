package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/trammel/internal/geo"
)

// geoResultMsg delivers a batch of resolved peer countries. Values may be
// empty: a definite miss is remembered so the address is not asked again.
type geoResultMsg struct {
	countries map[string]string
}

const (
	geoBatchLimit   = 64
	geoBatchTimeout = 5 * time.Second
)

// lookupCountries resolves peer addresses of the watched torrent that the
// model has no verdict for yet. Lookups run off the loop and are advisory;
// a batch that learns nothing sends no message.
func (m *Model) lookupCountries() tea.Cmd {
	if m.geo == nil {
		return nil
	}
	t, ok := m.detailTorrent()
	if !ok || len(t.Peers) == 0 {
		return nil
	}
	pending := make([]string, 0, len(t.Peers))
	for _, p := range t.Peers {
		if p.Address == "" {
			continue
		}
		if _, known := m.countries[p.Address]; known {
			continue
		}
		pending = append(pending, p.Address)
		if len(pending) == geoBatchLimit {
			break
		}
	}
	if len(pending) == 0 {
		return nil
	}
	resolver := m.geo
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), geoBatchTimeout)
		defer cancel()
		found := make(map[string]string, len(pending))
		for _, addr := range pending {
			loc, err := resolver.Lookup(ctx, addr)
			switch {
			case err == nil:
				found[addr] = loc.CountryCode
			case errors.Is(err, geo.ErrNotFound):
				found[addr] = ""
			}
		}
		if len(found) == 0 {
			return nil
		}
		return geoResultMsg{countries: found}
	}
}

func (m *Model) handleGeoResultMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(geoResultMsg)
	if !ok {
		return nil
	}
	for addr, country := range res.countries {
		m.countries[addr] = country
	}
	return nil
}
