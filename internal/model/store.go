// Package model holds the authoritative in-memory picture of the daemon:
// every torrent it has reported this attachment, the session configuration,
// and running stats. Snapshots merge in per field; the store itself is only
// ever touched from the UI update loop, so it carries no locks.
package model

import (
	"slices"

	"github.com/atomicstack/trammel/internal/transmission"
)

type Store struct {
	torrents map[int64]*transmission.Torrent

	session    transmission.SessionInfo
	hasSession bool
	stats      transmission.SessionStats
	freeSpace  int64
}

func NewStore() *Store {
	return &Store{torrents: make(map[int64]*transmission.Torrent)}
}

func (s *Store) Len() int { return len(s.torrents) }

// Torrent looks one id up; the pointer stays valid until the id is removed.
func (s *Store) Torrent(id int64) (*transmission.Torrent, bool) {
	t, ok := s.torrents[id]
	return t, ok
}

// IDs reports every known id in ascending order.
func (s *Store) IDs() []int64 {
	ids := make([]int64, 0, len(s.torrents))
	for id := range s.torrents {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Merge folds one snapshot into the store. Known torrents take only the
// fields the record actually carried; a complete snapshot removes every id
// it omits, an incremental one removes exactly the daemon's removed list.
func (s *Store) Merge(snap transmission.Snapshot) ChangeSet {
	var cs ChangeSet
	var seen map[int64]struct{}
	if snap.Complete {
		seen = make(map[int64]struct{}, len(snap.Torrents))
	}
	for i := range snap.Torrents {
		rec := &snap.Torrents[i]
		id := rec.ID
		if !rec.Has("id") {
			continue
		}
		if seen != nil {
			seen[id] = struct{}{}
		}
		existing, ok := s.torrents[id]
		if !ok {
			inserted := rec.Torrent
			s.torrents[id] = &inserted
			cs.Added = append(cs.Added, id)
			continue
		}
		var changed Field
		for name, op := range fieldOps {
			if !rec.Has(name) {
				continue
			}
			if op.apply(existing, &rec.Torrent) {
				changed |= op.flag
			}
		}
		if changed != 0 {
			if cs.Updated == nil {
				cs.Updated = make(map[int64]Field)
			}
			cs.Updated[id] |= changed
		}
	}
	if snap.Complete {
		for id := range s.torrents {
			if _, ok := seen[id]; !ok {
				delete(s.torrents, id)
				cs.Removed = append(cs.Removed, id)
			}
		}
	} else {
		for _, id := range snap.Removed {
			if _, ok := s.torrents[id]; ok {
				delete(s.torrents, id)
				cs.Removed = append(cs.Removed, id)
			}
		}
	}
	slices.Sort(cs.Added)
	slices.Sort(cs.Removed)
	return cs
}

// SetSession reports whether the new session info differs from the stored
// one.
func (s *Store) SetSession(info transmission.SessionInfo) bool {
	changed := !s.hasSession || info != s.session
	s.session = info
	s.hasSession = true
	return changed
}

func (s *Store) Session() transmission.SessionInfo { return s.session }

// Connected reports whether a handshake has populated the session info yet.
func (s *Store) Connected() bool { return s.hasSession }

func (s *Store) SetStats(stats transmission.SessionStats) bool {
	changed := stats != s.stats
	s.stats = stats
	return changed
}

func (s *Store) Stats() transmission.SessionStats { return s.stats }

func (s *Store) SetFreeSpace(bytes int64) bool {
	changed := bytes != s.freeSpace
	s.freeSpace = bytes
	return changed
}

func (s *Store) FreeSpace() int64 { return s.freeSpace }
