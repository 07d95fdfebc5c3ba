package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fzabel/revsynth/pkg/circuit"
)

func buildCircuit(t *testing.T, width int, triples ...[3]int) *circuit.Circuit {
	t.Helper()
	gates := make([]circuit.Gate, len(triples))
	for i, tr := range triples {
		g, err := circuit.NewGate(tr[0], tr[1], tr[2], width)
		if err != nil {
			t.Fatalf("NewGate: %v", err)
		}
		gates[i] = g
	}
	c, err := circuit.FromGates(gates)
	if err != nil {
		t.Fatalf("FromGates: %v", err)
	}
	return c
}

func TestCanonicalHashDeterministic(t *testing.T) {
	c := buildCircuit(t, 3, [3]int{0, 1, 2}, [3]int{1, 0, 2})
	h1 := CanonicalHash(c)
	h2 := CanonicalHash(buildCircuit(t, 3, [3]int{0, 1, 2}, [3]int{1, 0, 2}))
	if h1 != h2 {
		t.Error("equal circuits hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
}

func TestCanonicalHashOrderSensitive(t *testing.T) {
	ab := buildCircuit(t, 3, [3]int{0, 1, 2}, [3]int{1, 0, 2})
	ba := buildCircuit(t, 3, [3]int{1, 0, 2}, [3]int{0, 1, 2})
	if CanonicalHash(ab) == CanonicalHash(ba) {
		t.Error("gate order does not affect the hash")
	}
}

func TestCanonicalHashWidthSensitive(t *testing.T) {
	// Identical gate triples on registers of different width must not collide.
	narrow := buildCircuit(t, 3, [3]int{0, 1, 2})
	wide := buildCircuit(t, 4, [3]int{0, 1, 2})
	if CanonicalHash(narrow) == CanonicalHash(wide) {
		t.Error("register width does not affect the hash")
	}
}

func TestNewRecord(t *testing.T) {
	c := buildCircuit(t, 3,
		[3]int{1, 2, 0}, [3]int{1, 0, 2}, [3]int{1, 2, 0}, [3]int{1, 0, 2})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := NewRecord(c, "job-7", now)
	if rec.Width != 3 || rec.GateCount != 4 {
		t.Errorf("record is %d wide with %d gates, want 3/4", rec.Width, rec.GateCount)
	}
	if rec.Depth != c.Depth() {
		t.Errorf("record depth = %d, want %d", rec.Depth, c.Depth())
	}
	if !rec.IsVerified {
		t.Error("identity circuit recorded as unverified")
	}
	if rec.HardnessScore <= 0 {
		t.Errorf("hardness = %v, want positive", rec.HardnessScore)
	}
	if rec.JobID != "job-7" || !rec.CreatedAt.Equal(now) {
		t.Errorf("run context not recorded: %q %v", rec.JobID, rec.CreatedAt)
	}

	rebuilt, err := rec.Circuit()
	if err != nil {
		t.Fatalf("Circuit: %v", err)
	}
	if !rebuilt.Equal(c) {
		t.Error("record does not rebuild its circuit")
	}
}

func TestMemoryInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := NewRecord(buildCircuit(t, 3, [3]int{0, 1, 2}), "job", time.Now())

	if err := s.Insert(ctx, rec); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := s.Insert(ctx, rec); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second insert error = %v, want ErrDuplicate", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("store holds %d records, want 1", stats.Total)
	}
}

func TestMemoryInsertBatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a := NewRecord(buildCircuit(t, 3, [3]int{0, 1, 2}), "job", time.Now())
	b := NewRecord(buildCircuit(t, 3, [3]int{1, 0, 2}), "job", time.Now())

	added, duplicates, err := s.InsertBatch(ctx, []*Record{a, b, a})
	if err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	if added != 2 || duplicates != 1 {
		t.Errorf("InsertBatch = %d added, %d duplicates, want 2/1", added, duplicates)
	}
}

func TestMemoryGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := NewRecord(buildCircuit(t, 3, [3]int{0, 1, 2}), "job", time.Now())

	got, err := s.Get(ctx, rec.CanonicalHash)
	if err != nil || got != nil {
		t.Errorf("Get on empty store = (%v, %v), want (nil, nil)", got, err)
	}

	if err := s.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err = s.Get(ctx, rec.CanonicalHash)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.CanonicalHash != rec.CanonicalHash {
		t.Fatal("Get did not return the stored record")
	}

	// The returned record is a copy; mutating it must not touch the store.
	got.JobID = "mutated"
	again, err := s.Get(ctx, rec.CanonicalHash)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.JobID != "job" {
		t.Error("mutating a returned record changed the store")
	}
}

func TestMemoryExists(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := NewRecord(buildCircuit(t, 3, [3]int{0, 1, 2}), "job", time.Now())

	if ok, _ := s.Exists(ctx, rec.CanonicalHash); ok {
		t.Error("Exists = true on empty store")
	}
	if err := s.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if ok, _ := s.Exists(ctx, rec.CanonicalHash); !ok {
		t.Error("Exists = false after insert")
	}
}

func TestMemoryListOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	recs := []*Record{
		{CanonicalHash: "a", Width: 3, Depth: 2, HardnessScore: 1},
		{CanonicalHash: "b", Width: 3, Depth: 2, HardnessScore: 3},
		{CanonicalHash: "c", Width: 4, Depth: 2, HardnessScore: 2},
	}
	for _, rec := range recs {
		if err := s.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	all, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].HardnessScore != 3 || all[2].HardnessScore != 1 {
		t.Errorf("List is not ordered by hardness descending: %v", all)
	}

	narrow, err := s.List(ctx, Filter{Width: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(narrow) != 2 {
		t.Errorf("width filter returned %d records, want 2", len(narrow))
	}

	limited, err := s.List(ctx, Filter{Limit: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 1 || limited[0].CanonicalHash != "b" {
		t.Errorf("limit returned %v, want just the hardest record", limited)
	}
}

func TestMemoryCountByWidthDepth(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	recs := []*Record{
		{CanonicalHash: "a", Width: 3, Depth: 2},
		{CanonicalHash: "b", Width: 3, Depth: 2},
		{CanonicalHash: "c", Width: 3, Depth: 4},
		{CanonicalHash: "d", Width: 4, Depth: 2},
	}
	for _, rec := range recs {
		if err := s.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	rows, err := s.CountByWidthDepth(ctx)
	if err != nil {
		t.Fatalf("CountByWidthDepth: %v", err)
	}
	want := []WidthDepthCount{
		{Width: 3, Depth: 2, Count: 2},
		{Width: 3, Depth: 4, Count: 1},
		{Width: 4, Depth: 2, Count: 1},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestMemoryStats(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	recs := []*Record{
		{CanonicalHash: "a", Width: 3, HardnessScore: 2},
		{CanonicalHash: "b", Width: 3, HardnessScore: 4},
		{CanonicalHash: "c", Width: 4, HardnessScore: 6},
	}
	for _, rec := range recs {
		if err := s.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.ByWidth[3] != 2 || stats.ByWidth[4] != 1 {
		t.Errorf("ByWidth = %v", stats.ByWidth)
	}
	if stats.AvgHardness != 4 {
		t.Errorf("AvgHardness = %v, want 4", stats.AvgHardness)
	}
}
