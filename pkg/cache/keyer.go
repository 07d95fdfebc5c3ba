package cache

import "fmt"

// Keyer generates cache keys. Centralizing key construction keeps the
// CLI, the pipeline, and the precompute command addressing the same
// entries.
type Keyer interface {
	// TableKey returns the key of the reachability table for a register
	// width and enumeration depth.
	TableKey(width, depth int) string
}

// DefaultKeyer produces human-readable keys of the form table:w3:d4.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// TableKey generates the key for a reachability table.
func (k *DefaultKeyer) TableKey(width, depth int) string {
	return fmt.Sprintf("table:w%d:d%d", width, depth)
}
