package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/fzabel/revsynth/pkg/circuit"
	"github.com/fzabel/revsynth/pkg/synth"
)

// ErrTableVersion is returned when a table file was written with a format
// version this reader does not understand.
var ErrTableVersion = errors.New("unsupported table file version")

func circuitFromRecord(rec record) (*circuit.Circuit, error) {
	if rec.Length != len(rec.Gates) {
		return nil, fmt.Errorf("length field %d does not match %d gates", rec.Length, len(rec.Gates))
	}
	c, err := circuit.New(rec.NBits)
	if err != nil {
		return nil, err
	}
	for i, g := range rec.Gates {
		built, err := circuit.NewGate(g.Target, g.Control1, g.Control2, rec.NBits)
		if err != nil {
			return nil, fmt.Errorf("gate %d: %w", i, err)
		}
		c.Append(built)
	}
	return c, nil
}

// ReadCircuit decodes a JSON circuit record from r.
//
// The input must be an object with "n_bits" and "gates" fields; each gate
// holds "target", "control1", and "control2" line indices. The recorded
// identity, hardness, and triviality flags are ignored: they are derived
// values and anyone holding the circuit can recompute them.
//
// ReadCircuit returns an error if the JSON is malformed, if the length
// field disagrees with the gate list, or if any gate fails [circuit.NewGate]
// validation. ReadCircuit does not close r.
func ReadCircuit(r io.Reader) (*circuit.Circuit, error) {
	var rec record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return circuitFromRecord(rec)
}

// ReadBatch decodes a JSON batch document from r. Every circuit record is
// validated as in [ReadCircuit]; the metadata block is returned as recorded,
// since it reports run statistics rather than derivable facts.
func ReadBatch(r io.Reader) (*Batch, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	b := &Batch{
		Width:        doc.Metadata.Width,
		TargetLength: doc.Metadata.TargetLength,
		Requested:    doc.Metadata.RequestedCount,
		Generated:    doc.Metadata.GeneratedCount,
		Failed:       doc.Metadata.FailedCount,
		Elapsed:      time.Duration(doc.Metadata.GenerationTimeSeconds * float64(time.Second)),
		JobID:        doc.Metadata.JobID,
		Circuits:     make([]*circuit.Circuit, len(doc.Circuits)),
	}
	for i, rec := range doc.Circuits {
		c, err := circuitFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("circuit %d: %w", i, err)
		}
		b.Circuits[i] = c
	}
	return b, nil
}

// ImportBatch reads a JSON batch file at path and returns the decoded batch.
func ImportBatch(path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadBatch(f)
}

// ReadTable restores a reachability table from its CBOR encoding.
//
// The header is decoded and validated first: an unknown version returns
// [ErrTableVersion] and an out-of-range width returns the table
// constructor's error, both before any entry is read. Every entry's
// circuit is then rebuilt and checked against its stored permutation, so
// a corrupted cache file is rejected rather than poisoning lookups.
func ReadTable(r io.Reader) (*synth.Table, error) {
	dec := cbor.NewDecoder(r)

	var header tableHeader
	if err := dec.Decode(&header); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	if header.Version != tableVersion {
		return nil, fmt.Errorf("%w: %d", ErrTableVersion, header.Version)
	}

	t, err := synth.NewTable(header.Width, header.Depth)
	if err != nil {
		return nil, err
	}

	var entries []tableEntry
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	if len(entries) != header.Count {
		return nil, fmt.Errorf("table holds %d entries, header promises %d", len(entries), header.Count)
	}

	for i, e := range entries {
		perm, err := circuit.NewPermutation(header.Width, e.Perm)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		c, err := circuit.New(header.Width)
		if err != nil {
			return nil, err
		}
		for j, g := range e.Gates {
			built, err := circuit.NewGate(g[0], g[1], g[2], header.Width)
			if err != nil {
				return nil, fmt.Errorf("entry %d gate %d: %w", i, j, err)
			}
			c.Append(built)
		}
		if !c.Permutation().Equal(perm) {
			return nil, fmt.Errorf("entry %d: circuit does not realize its permutation", i)
		}
		if err := t.Insert(perm, c); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return t, nil
}

// ImportTable reads a CBOR table file at path and returns the restored table.
func ImportTable(path string) (*synth.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTable(f)
}
