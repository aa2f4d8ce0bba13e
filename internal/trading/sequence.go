package trading

import "sync"

// SequenceGenerator hands out a monotonically increasing per-curve
// sequence number for RewardsLedger.Record's idempotency key. It is
// process-local: a restart resets the counter to 1, which is safe only
// because Record is required to be idempotent bookkeeping, never a
// source of truth the engine itself depends on (spec §6).
type SequenceGenerator struct {
	mu       sync.Mutex
	perCurve map[string]uint64
}

// NewSequenceGenerator builds an empty SequenceGenerator.
func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{perCurve: make(map[string]uint64)}
}

// Next returns the next sequence number for curveID, starting at 1.
func (g *SequenceGenerator) Next(curveID string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.perCurve[curveID]++
	return g.perCurve[curveID]
}
