package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/fzabel/revsynth/pkg/circuit"
	"github.com/fzabel/revsynth/pkg/identity"
	"github.com/fzabel/revsynth/pkg/synth"
)

// tableVersion is the current reachability-table file format version.
// Readers reject files written with any other version.
const tableVersion = 1

type record struct {
	NBits         int     `json:"n_bits"`
	Length        int     `json:"length"`
	Gates         []gate  `json:"gates"`
	IsIdentity    bool    `json:"is_identity"`
	HardnessScore float64 `json:"hardness_score"`
	IsTrivial     bool    `json:"is_trivial"`
}

type gate struct {
	Target   int `json:"target"`
	Control1 int `json:"control1"`
	Control2 int `json:"control2"`
}

type document struct {
	Metadata metadata `json:"metadata"`
	Circuits []record `json:"circuits"`
}

type metadata struct {
	Width                 int     `json:"width"`
	TargetLength          int     `json:"target_length"`
	RequestedCount        int     `json:"requested_count"`
	GeneratedCount        int     `json:"generated_count"`
	FailedCount           int     `json:"failed_count"`
	GenerationTimeSeconds float64 `json:"generation_time_seconds"`
	JobID                 string  `json:"job_id"`
}

type tableHeader struct {
	Version int `cbor:"version"`
	Width   int `cbor:"width"`
	Depth   int `cbor:"depth"`
	Count   int `cbor:"count"`
}

type tableEntry struct {
	Perm  []int    `cbor:"perm"`
	Gates [][3]int `cbor:"gates"`
}

// Batch couples generated circuits with the run statistics recorded
// alongside them in a batch document.
type Batch struct {
	Width        int
	TargetLength int
	Requested    int
	Generated    int
	Failed       int
	Elapsed      time.Duration
	JobID        string
	Circuits     []*circuit.Circuit
}

func circuitRecord(c *circuit.Circuit) record {
	rec := record{
		NBits:         c.Width(),
		Length:        c.Len(),
		Gates:         make([]gate, c.Len()),
		IsIdentity:    c.Permutation().IsIdentity(),
		HardnessScore: identity.Score(c),
		IsTrivial:     identity.IsTrivial(c),
	}
	for i, g := range c.Gates() {
		rec.Gates[i] = gate{Target: g.Target, Control1: g.Control1, Control2: g.Control2}
	}
	return rec
}

// WriteCircuit encodes a single circuit record as JSON and writes it to w.
// The identity, hardness, and triviality fields are derived from the circuit
// at write time, so the record is always consistent with its gate list.
// Records can be re-imported with [ReadCircuit].
func WriteCircuit(c *circuit.Circuit, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(circuitRecord(c)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteBatch encodes a batch document (metadata plus circuit records) as
// JSON and writes it to w. This format can be re-imported with [ReadBatch].
func WriteBatch(b *Batch, w io.Writer) error {
	doc := document{
		Metadata: metadata{
			Width:                 b.Width,
			TargetLength:          b.TargetLength,
			RequestedCount:        b.Requested,
			GeneratedCount:        b.Generated,
			FailedCount:           b.Failed,
			GenerationTimeSeconds: b.Elapsed.Seconds(),
			JobID:                 b.JobID,
		},
		Circuits: make([]record, len(b.Circuits)),
	}
	for i, c := range b.Circuits {
		doc.Circuits[i] = circuitRecord(c)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportBatch writes a batch document to a JSON file at path.
// This is a convenience wrapper around [WriteBatch] for file-based output.
func ExportBatch(b *Batch, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteBatch(b, f)
}

// WriteTable encodes a reachability table as CBOR and writes it to w.
// The stream holds a versioned header followed by one entry per stored
// permutation, ordered by circuit length and then content key, so equal
// tables always serialize to identical bytes. Tables can be restored with
// [ReadTable].
func WriteTable(t *synth.Table, w io.Writer) error {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return err
	}
	enc := mode.NewEncoder(w)

	all := t.All()
	header := tableHeader{
		Version: tableVersion,
		Width:   t.Width(),
		Depth:   t.Depth(),
		Count:   len(all),
	}
	if err := enc.Encode(header); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	entries := make([]tableEntry, len(all))
	for i, e := range all {
		entry := tableEntry{
			Perm:  e.Perm.Mapping(),
			Gates: make([][3]int, e.Circuit.Len()),
		}
		for j, g := range e.Circuit.Gates() {
			entry.Gates[j] = [3]int{g.Target, g.Control1, g.Control2}
		}
		entries[i] = entry
	}
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	return nil
}

// ExportTable writes a reachability table to a CBOR file at path.
// This is a convenience wrapper around [WriteTable] for file-based output.
func ExportTable(t *synth.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteTable(t, f)
}
