package model

// Field flags group torrent attributes by the render region they back, so
// one merge reports exactly what needs repainting.
type Field uint32

const (
	FieldName Field = 1 << iota
	FieldStatus
	FieldProgress
	FieldSizes
	FieldRates
	FieldETA
	FieldRatio
	FieldPeers
	FieldTrackers
	FieldFiles
	FieldError
	FieldLimits
	FieldQueue
	FieldDates
	FieldLocation
	FieldLabels
	FieldMeta
)

// ChangeSet reports what one merge did to the store. Ids appear in Removed
// at most once; an id never appears in both Added and Updated.
type ChangeSet struct {
	Added   []int64
	Removed []int64
	Updated map[int64]Field
}

func (c ChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Updated) == 0
}

// Merge folds a later change set into this one, as when a list snapshot and
// a detail snapshot land in the same poll cycle.
func (c ChangeSet) Merge(later ChangeSet) ChangeSet {
	if c.Empty() {
		return later
	}
	if later.Empty() {
		return c
	}
	added := make(map[int64]struct{}, len(c.Added))
	for _, id := range c.Added {
		added[id] = struct{}{}
	}
	for _, id := range later.Added {
		if _, ok := added[id]; !ok {
			added[id] = struct{}{}
			c.Added = append(c.Added, id)
		}
	}
	removed := make(map[int64]struct{}, len(c.Removed))
	for _, id := range c.Removed {
		removed[id] = struct{}{}
	}
	for _, id := range later.Removed {
		if _, ok := removed[id]; !ok {
			removed[id] = struct{}{}
			c.Removed = append(c.Removed, id)
		}
	}
	for id, fields := range later.Updated {
		if _, ok := added[id]; ok {
			continue
		}
		if c.Updated == nil {
			c.Updated = make(map[int64]Field)
		}
		c.Updated[id] |= fields
	}
	return c
}

// Touches reports whether the change set mentions the id at all.
func (c ChangeSet) Touches(id int64) bool {
	if _, ok := c.Updated[id]; ok {
		return true
	}
	for _, a := range c.Added {
		if a == id {
			return true
		}
	}
	for _, r := range c.Removed {
		if r == id {
			return true
		}
	}
	return false
}
