package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/fzabel/revsynth/pkg/circuit"
	"github.com/fzabel/revsynth/pkg/identity"
)

// Record is one stored circuit template. The canonical hash is the unique
// key; everything else is derived from the circuit or records run context.
type Record struct {
	Width         int       `bson:"width" json:"width"`
	Depth         int       `bson:"depth" json:"depth"`
	GateCount     int       `bson:"gate_count" json:"gate_count"`
	GatesJSON     string    `bson:"gates_json" json:"gates_json"`
	CanonicalHash string    `bson:"canonical_hash" json:"canonical_hash"`
	HardnessScore float64   `bson:"hardness_score" json:"hardness_score"`
	IsVerified    bool      `bson:"is_verified" json:"is_verified"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	JobID         string    `bson:"job_id" json:"job_id"`
}

// NewRecord builds the stored representation of a circuit. IsVerified is
// re-derived from the permutation here rather than trusted from the caller.
func NewRecord(c *circuit.Circuit, jobID string, now time.Time) *Record {
	return &Record{
		Width:         c.Width(),
		Depth:         c.Depth(),
		GateCount:     c.Len(),
		GatesJSON:     gatesJSON(c),
		CanonicalHash: CanonicalHash(c),
		HardnessScore: identity.Score(c),
		IsVerified:    c.Permutation().IsIdentity(),
		CreatedAt:     now.UTC(),
		JobID:         jobID,
	}
}

// Circuit rebuilds the circuit from the record's gate list.
func (r *Record) Circuit() (*circuit.Circuit, error) {
	var triples [][3]int
	if err := json.Unmarshal([]byte(r.GatesJSON), &triples); err != nil {
		return nil, err
	}
	c, err := circuit.New(r.Width)
	if err != nil {
		return nil, err
	}
	for _, tr := range triples {
		g, err := circuit.NewGate(tr[0], tr[1], tr[2], r.Width)
		if err != nil {
			return nil, err
		}
		c.Append(g)
	}
	return c, nil
}

// CanonicalHash returns the deduplication key of a circuit: the SHA-256 hex
// digest of the canonical JSON document {"gates":[[t,c1,c2],…],"width":w}.
// Map marshaling sorts keys, so the document layout is stable across runs
// and the hash is sensitive to gate order but not to anything else.
func CanonicalHash(c *circuit.Circuit) string {
	doc, _ := json.Marshal(map[string]any{
		"gates": gateTriples(c),
		"width": c.Width(),
	})
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:])
}

func gateTriples(c *circuit.Circuit) [][3]int {
	triples := make([][3]int, c.Len())
	for i, g := range c.Gates() {
		triples[i] = [3]int{g.Target, g.Control1, g.Control2}
	}
	return triples
}

func gatesJSON(c *circuit.Circuit) string {
	data, _ := json.Marshal(gateTriples(c))
	return string(data)
}
