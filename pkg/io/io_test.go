package io

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/fzabel/revsynth/pkg/circuit"
	"github.com/fzabel/revsynth/pkg/synth"
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

// identityWitness is a four-gate identity circuit: the product of G(1,2,0)
// and G(1,0,2) has order two.
func identityWitness(t *testing.T) *circuit.Circuit {
	t.Helper()
	return buildCircuit(t, 3, [3]int{1, 2, 0}, [3]int{1, 0, 2}, [3]int{1, 2, 0}, [3]int{1, 0, 2})
}

func TestCircuitRecordFields(t *testing.T) {
	c := buildCircuit(t, 3, [3]int{0, 1, 2}, [3]int{1, 0, 2})

	var buf bytes.Buffer
	if err := WriteCircuit(c, &buf); err != nil {
		t.Fatalf("WriteCircuit: %v", err)
	}

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got := rec["n_bits"].(float64); got != 3 {
		t.Errorf("n_bits = %v, want 3", got)
	}
	if got := rec["length"].(float64); got != 2 {
		t.Errorf("length = %v, want 2", got)
	}
	if got := rec["is_identity"].(bool); got {
		t.Error("is_identity = true for a non-identity circuit")
	}
	if got := rec["hardness_score"].(float64); got != 0 {
		t.Errorf("hardness_score = %v, want 0 for a non-identity circuit", got)
	}
	gates := rec["gates"].([]any)
	if len(gates) != 2 {
		t.Fatalf("gates length = %d, want 2", len(gates))
	}
	first := gates[0].(map[string]any)
	if first["target"].(float64) != 0 || first["control1"].(float64) != 1 || first["control2"].(float64) != 2 {
		t.Errorf("first gate = %v, want target 0 control1 1 control2 2", first)
	}
}

func TestCircuitRoundTrip(t *testing.T) {
	c := identityWitness(t)

	var buf bytes.Buffer
	if err := WriteCircuit(c, &buf); err != nil {
		t.Fatalf("WriteCircuit: %v", err)
	}
	got, err := ReadCircuit(&buf)
	if err != nil {
		t.Fatalf("ReadCircuit: %v", err)
	}
	if !got.Equal(c) {
		t.Errorf("round trip changed the circuit: %v -> %v", c, got)
	}
}

func TestReadCircuitRejectsBadGate(t *testing.T) {
	in := `{"n_bits":3,"length":1,"gates":[{"target":5,"control1":1,"control2":2}]}`
	if _, err := ReadCircuit(strings.NewReader(in)); err == nil {
		t.Error("ReadCircuit accepted a gate line outside the register")
	}
}

func TestReadCircuitRejectsIrreversibleGate(t *testing.T) {
	in := `{"n_bits":3,"length":1,"gates":[{"target":0,"control1":0,"control2":1}]}`
	if _, err := ReadCircuit(strings.NewReader(in)); !errors.Is(err, circuit.ErrIrreversibleGate) {
		t.Errorf("ReadCircuit error = %v, want ErrIrreversibleGate", err)
	}
}

func TestReadCircuitLengthMismatch(t *testing.T) {
	in := `{"n_bits":3,"length":3,"gates":[{"target":0,"control1":1,"control2":2}]}`
	if _, err := ReadCircuit(strings.NewReader(in)); err == nil {
		t.Error("ReadCircuit accepted a length field disagreeing with the gate list")
	}
}

func TestBatchRoundTrip(t *testing.T) {
	b := &Batch{
		Width:        3,
		TargetLength: 6,
		Requested:    5,
		Generated:    2,
		Failed:       3,
		Elapsed:      1500 * time.Millisecond,
		JobID:        "job-42",
		Circuits: []*circuit.Circuit{
			identityWitness(t),
			buildCircuit(t, 3, [3]int{0, 1, 2}, [3]int{1, 0, 2}),
		},
	}

	var buf bytes.Buffer
	if err := WriteBatch(b, &buf); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	got, err := ReadBatch(&buf)
	if err != nil {
		t.Fatalf("ReadBatch: %v", err)
	}

	if got.Width != b.Width || got.TargetLength != b.TargetLength {
		t.Errorf("metadata changed: got width %d length %d", got.Width, got.TargetLength)
	}
	if got.Requested != 5 || got.Generated != 2 || got.Failed != 3 {
		t.Errorf("counts changed: %d/%d/%d", got.Requested, got.Generated, got.Failed)
	}
	if got.Elapsed != b.Elapsed {
		t.Errorf("elapsed changed: %v -> %v", b.Elapsed, got.Elapsed)
	}
	if got.JobID != "job-42" {
		t.Errorf("job id changed: %q", got.JobID)
	}
	if len(got.Circuits) != len(b.Circuits) {
		t.Fatalf("circuit count = %d, want %d", len(got.Circuits), len(b.Circuits))
	}
	for i := range got.Circuits {
		if !got.Circuits[i].Equal(b.Circuits[i]) {
			t.Errorf("circuit %d changed in round trip", i)
		}
	}
}

func TestBatchDocumentShape(t *testing.T) {
	b := &Batch{Width: 3, TargetLength: 6, JobID: "shape"}

	var buf bytes.Buffer
	if err := WriteBatch(b, &buf); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	meta, ok := doc["metadata"].(map[string]any)
	if !ok {
		t.Fatal("document has no metadata object")
	}
	for _, key := range []string{
		"width", "target_length", "requested_count", "generated_count",
		"failed_count", "generation_time_seconds", "job_id",
	} {
		if _, ok := meta[key]; !ok {
			t.Errorf("metadata missing key %q", key)
		}
	}
	if _, ok := doc["circuits"].([]any); !ok {
		t.Error("document has no circuits array")
	}
}

func TestExportImportBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	b := &Batch{Width: 3, Circuits: []*circuit.Circuit{identityWitness(t)}}

	if err := ExportBatch(b, path); err != nil {
		t.Fatalf("ExportBatch: %v", err)
	}
	got, err := ImportBatch(path)
	if err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	if len(got.Circuits) != 1 || !got.Circuits[0].Equal(b.Circuits[0]) {
		t.Error("file round trip changed the batch")
	}
}

func buildTable(t *testing.T, depth int) *synth.Table {
	t.Helper()
	set, err := synth.NewGateSet(3, false)
	if err != nil {
		t.Fatalf("NewGateSet: %v", err)
	}
	table, err := synth.EnumerateAll(set, depth)
	if err != nil {
		t.Fatalf("EnumerateAll: %v", err)
	}
	return table
}

func TestTableRoundTrip(t *testing.T) {
	table := buildTable(t, 2)

	var buf bytes.Buffer
	if err := WriteTable(table, &buf); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	got, err := ReadTable(&buf)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}

	if got.Width() != table.Width() || got.Depth() != table.Depth() {
		t.Errorf("restored table is %d/%d, want %d/%d",
			got.Width(), got.Depth(), table.Width(), table.Depth())
	}
	if got.Size() != table.Size() {
		t.Fatalf("restored table holds %d entries, want %d", got.Size(), table.Size())
	}
	for _, e := range table.All() {
		found := got.Lookup(e.Perm)
		if found == nil {
			t.Fatalf("restored table misses %v", e.Perm)
		}
		if !found.Equal(e.Circuit) {
			t.Errorf("witness for %v changed in round trip", e.Perm)
		}
	}
}

func TestTableDeterministicEncoding(t *testing.T) {
	table := buildTable(t, 2)

	var a, b bytes.Buffer
	if err := WriteTable(table, &a); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if err := WriteTable(table, &b); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("equal tables encoded to different bytes")
	}
}

func encodeRawTable(t *testing.T, header tableHeader, entries []tableEntry) []byte {
	t.Helper()
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		t.Fatalf("EncMode: %v", err)
	}
	var buf bytes.Buffer
	enc := mode.NewEncoder(&buf)
	if err := enc.Encode(header); err != nil {
		t.Fatalf("encode header: %v", err)
	}
	if err := enc.Encode(entries); err != nil {
		t.Fatalf("encode entries: %v", err)
	}
	return buf.Bytes()
}

func TestReadTableVersionMismatch(t *testing.T) {
	raw := encodeRawTable(t, tableHeader{Version: 2, Width: 3, Depth: 1}, nil)
	if _, err := ReadTable(bytes.NewReader(raw)); !errors.Is(err, ErrTableVersion) {
		t.Errorf("ReadTable error = %v, want ErrTableVersion", err)
	}
}

func TestReadTableWidthRejected(t *testing.T) {
	raw := encodeRawTable(t, tableHeader{Version: tableVersion, Width: 0, Depth: 1}, nil)
	if _, err := ReadTable(bytes.NewReader(raw)); !errors.Is(err, circuit.ErrInvalidWidth) {
		t.Errorf("ReadTable error = %v, want ErrInvalidWidth", err)
	}
}

func TestReadTableCountMismatch(t *testing.T) {
	raw := encodeRawTable(t, tableHeader{Version: tableVersion, Width: 3, Depth: 1, Count: 3}, nil)
	if _, err := ReadTable(bytes.NewReader(raw)); err == nil {
		t.Error("ReadTable accepted a header promising more entries than stored")
	}
}

func TestReadTableCorruptEntry(t *testing.T) {
	// The identity mapping paired with a single real gate cannot verify.
	entry := tableEntry{
		Perm:  []int{0, 1, 2, 3, 4, 5, 6, 7},
		Gates: [][3]int{{0, 1, 2}},
	}
	raw := encodeRawTable(t, tableHeader{Version: tableVersion, Width: 3, Depth: 1, Count: 1}, []tableEntry{entry})
	if _, err := ReadTable(bytes.NewReader(raw)); err == nil {
		t.Error("ReadTable accepted an entry whose circuit does not realize its permutation")
	}
}

func TestExportImportTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.cbor")
	table := buildTable(t, 1)

	if err := ExportTable(table, path); err != nil {
		t.Fatalf("ExportTable: %v", err)
	}
	got, err := ImportTable(path)
	if err != nil {
		t.Fatalf("ImportTable: %v", err)
	}
	if got.Size() != table.Size() {
		t.Errorf("file round trip changed the table size: %d -> %d", got.Size(), table.Size())
	}
}
