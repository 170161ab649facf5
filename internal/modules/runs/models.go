package runs

import "time"

// Run kinds persisted in the history table
const (
	KindDeterministic = "deterministic"
	KindMonteCarlo    = "monte_carlo"
	KindSnapshot      = "snapshot"
)

// Record is one persisted engine run: what was executed and its serialized
// numeric summary
type Record struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
	Iterations int       `json:"iterations,omitempty"`
	Seed       uint64    `json:"seed,omitempty"`
	Summary    string    `json:"summary"` // JSON document as produced by the engine
}
