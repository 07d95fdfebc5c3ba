// Package io provides JSON and CBOR serialization for circuits, batch
// documents, and reachability tables.
//
// # Overview
//
// Three formats live here:
//
//   - Circuit records: single circuits as JSON, for inspection and for
//     feeding individual templates to external tools
//   - Batch documents: a metadata block plus an array of circuit records,
//     the unit of output of a generation run
//   - Table files: CBOR-encoded reachability tables, the precomputed
//     synthesis caches shared between runs
//
// # Circuit Records
//
// A circuit record is a JSON object:
//
//	{
//	  "n_bits": 3,
//	  "length": 2,
//	  "gates": [
//	    {"target": 0, "control1": 1, "control2": 2},
//	    {"target": 1, "control1": 0, "control2": 2}
//	  ],
//	  "is_identity": false,
//	  "hardness_score": 0.0,
//	  "is_trivial": false
//	}
//
// The identity, hardness, and triviality fields are derived from the gate
// list when a record is written and ignored when one is read, so a record
// can never disagree with the circuit it describes.
//
// # Batch Documents
//
// A batch document wraps circuit records with the statistics of the run
// that produced them:
//
//	{
//	  "metadata": {
//	    "width": 3,
//	    "target_length": 6,
//	    "requested_count": 100,
//	    "generated_count": 97,
//	    "failed_count": 3,
//	    "generation_time_seconds": 12.4,
//	    "job_id": "4f1c…"
//	  },
//	  "circuits": [ … ]
//	}
//
// Use [WriteBatch] and [ReadBatch] with any writer or reader, or
// [ExportBatch] and [ImportBatch] for file paths.
//
// # Table Files
//
// Reachability tables serialize as CBOR with canonical encoding options: a
// versioned header (version, width, depth, entry count) followed by one
// entry per permutation, each holding the full output mapping and the gate
// list of a minimal witness circuit. Entries are written in table order
// (circuit length, then content key), so equal tables produce identical
// files. CBOR map keys cannot be arrays, which is why the mapping is
// stored as an entry list rather than a map.
//
// [ReadTable] validates the header before touching any entry and rebuilds
// every circuit against its stored permutation, returning an error rather
// than a partially restored table on any mismatch.
//
// # Concurrency
//
// All functions are safe to call concurrently on distinct readers and
// writers. The circuits and tables they return are independent instances
// owned by the caller.
package io
