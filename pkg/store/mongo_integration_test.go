//go:build integration

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"
)

// TestMongoStore_Integration exercises the Mongo-backed store against a real
// deployment. Point MONGO_URI at a disposable instance; the test creates and
// drops its own database.
func TestMongoStore_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database := fmt.Sprintf("revsynth_test_%d", time.Now().UnixNano())
	s, err := NewMongoStore(ctx, uri, database)
	if err != nil {
		t.Fatalf("NewMongoStore() error: %v", err)
	}
	defer func() {
		if err := s.coll.Database().Drop(ctx); err != nil {
			t.Errorf("drop test database: %v", err)
		}
		if err := s.Close(ctx); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	}()

	a := NewRecord(buildCircuit(t, 3, [3]int{0, 1, 2}, [3]int{1, 0, 2}), "job-a", time.Now())
	b := NewRecord(buildCircuit(t, 3, [3]int{2, 0, 1}), "job-b", time.Now())

	if err := s.Insert(ctx, a); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if err := s.Insert(ctx, a); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second Insert() error = %v, want ErrDuplicate", err)
	}

	added, duplicates, err := s.InsertBatch(ctx, []*Record{a, b})
	if err != nil {
		t.Fatalf("InsertBatch() error: %v", err)
	}
	if added != 1 || duplicates != 1 {
		t.Errorf("InsertBatch() = %d added, %d duplicates, want 1/1", added, duplicates)
	}

	got, err := s.Get(ctx, a.CanonicalHash)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil for a stored record")
	}
	if got.JobID != "job-a" || got.GateCount != 2 {
		t.Errorf("Get() = %+v, want job-a with 2 gates", got)
	}

	rebuilt, err := got.Circuit()
	if err != nil {
		t.Fatalf("Circuit() error: %v", err)
	}
	if CanonicalHash(rebuilt) != a.CanonicalHash {
		t.Error("stored record does not rebuild its circuit")
	}

	if ok, err := s.Exists(ctx, b.CanonicalHash); err != nil || !ok {
		t.Errorf("Exists() = (%v, %v), want (true, nil)", ok, err)
	}
	if ok, err := s.Exists(ctx, "no-such-hash"); err != nil || ok {
		t.Errorf("Exists() on unknown hash = (%v, %v), want (false, nil)", ok, err)
	}

	recs, err := s.List(ctx, Filter{Width: 3})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("List() returned %d records, want 2", len(recs))
	}

	rows, err := s.CountByWidthDepth(ctx)
	if err != nil {
		t.Fatalf("CountByWidthDepth() error: %v", err)
	}
	total := 0
	for _, row := range rows {
		total += row.Count
	}
	if total != 2 {
		t.Errorf("census counts %d records, want 2", total)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.Total != 2 || stats.ByWidth[3] != 2 {
		t.Errorf("Stats() = %+v, want 2 width-3 records", stats)
	}
}
