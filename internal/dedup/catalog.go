package dedup

// CatalogSet holds the destination playlist's track IDs, snapshotted once
// per batch. It only answers membership; batch-abort policy belongs to the
// orchestrator.
type CatalogSet struct {
	ids map[string]struct{}
}

// NewCatalogSet creates a CatalogSet from a playlist snapshot.
func NewCatalogSet(ids []string) *CatalogSet {
	set := &CatalogSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	return set
}

// Contains reports whether the track is already in the destination.
func (s *CatalogSet) Contains(trackID string) bool {
	_, ok := s.ids[trackID]
	return ok
}

// Add records a newly accepted track so later lookups in the same batch
// see it.
func (s *CatalogSet) Add(trackID string) {
	s.ids[trackID] = struct{}{}
}

// Len returns the number of known track IDs.
func (s *CatalogSet) Len() int {
	return len(s.ids)
}
