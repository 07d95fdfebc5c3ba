package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps records in a map guarded by a mutex. It backs tests
// and offline runs where no database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Insert adds a record, returning ErrDuplicate when the hash is taken.
func (s *MemoryStore) Insert(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.CanonicalHash]; ok {
		return ErrDuplicate
	}
	stored := *rec
	s.records[rec.CanonicalHash] = &stored
	return nil
}

// InsertBatch inserts records one by one, counting duplicates instead of
// failing on them.
func (s *MemoryStore) InsertBatch(ctx context.Context, recs []*Record) (int, int, error) {
	added, duplicates := 0, 0
	for _, rec := range recs {
		switch err := s.Insert(ctx, rec); err {
		case nil:
			added++
		case ErrDuplicate:
			duplicates++
		default:
			return added, duplicates, err
		}
	}
	return added, duplicates, nil
}

// Get returns the record for hash, or (nil, nil) when absent.
func (s *MemoryStore) Get(ctx context.Context, hash string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[hash]
	if !ok {
		return nil, nil
	}
	found := *rec
	return &found, nil
}

// Exists reports whether a record with the hash is stored.
func (s *MemoryStore) Exists(ctx context.Context, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[hash]
	return ok, nil
}

// List returns matching records ordered by hardness score descending,
// with the canonical hash breaking ties so the order is deterministic.
func (s *MemoryStore) List(ctx context.Context, f Filter) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Record
	for _, rec := range s.records {
		if f.Width != 0 && rec.Width != f.Width {
			continue
		}
		if f.Depth != 0 && rec.Depth != f.Depth {
			continue
		}
		found := *rec
		out = append(out, &found)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HardnessScore != out[j].HardnessScore {
			return out[i].HardnessScore > out[j].HardnessScore
		}
		return out[i].CanonicalHash < out[j].CanonicalHash
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// CountByWidthDepth returns the census rows sorted by width, then depth.
func (s *MemoryStore) CountByWidthDepth(ctx context.Context) ([]WidthDepthCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[[2]int]int)
	for _, rec := range s.records {
		counts[[2]int{rec.Width, rec.Depth}]++
	}
	out := make([]WidthDepthCount, 0, len(counts))
	for key, n := range counts {
		out = append(out, WidthDepthCount{Width: key[0], Depth: key[1], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Width != out[j].Width {
			return out[i].Width < out[j].Width
		}
		return out[i].Depth < out[j].Depth
	})
	return out, nil
}

// Stats summarizes the stored population.
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &Stats{ByWidth: make(map[int]int)}
	total := 0.0
	for _, rec := range s.records {
		stats.Total++
		stats.ByWidth[rec.Width]++
		total += rec.HardnessScore
	}
	if stats.Total > 0 {
		stats.AvgHardness = total / float64(stats.Total)
	}
	return stats, nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
