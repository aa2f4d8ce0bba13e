// Package rewards provides a reference in-memory RewardsLedger. It is the
// ledger cmd/server wires into the trading service; it keeps nothing on
// disk, so recorded volumes and seen sequence numbers are lost on restart.
package rewards

import (
	"context"
	"sync"

	"github.com/launchpad-amm/curveengine/internal/collaborators"
)

// tierThresholds maps cumulative quote volume to a cashback tier index,
// mirroring curve.FeeSchedule.CashbackBpsByTier's non-decreasing shape:
// entry i is the minimum volume for tier i, so tier 0 starts at zero,
// tier 1 at 10e9 and tier 2 at 100e9.
var tierThresholds = []uint64{0, 10_000_000_000, 100_000_000_000}

// seqKey identifies a single recorded trade for idempotency.
type seqKey struct {
	curveID string
	seq     uint64
}

// Ledger is an in-memory, idempotent RewardsLedger (spec §6: "requires
// ONLY that record is idempotent per (curve_id, sequence_no) and total").
// A trader's volume accrues across every curve it trades on, since tier
// is a trader-level concept, not a per-curve one.
type Ledger struct {
	mu      sync.Mutex
	seen    map[seqKey]struct{}
	volumes map[string]uint64 // trader -> cumulative quote volume
}

// NewLedger builds an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{
		seen:    make(map[seqKey]struct{}),
		volumes: make(map[string]uint64),
	}
}

// Record accrues a trade's quote volume against the trader, ignoring
// repeats of a (curve_id, sequence_no) pair already seen. It never
// returns an error: per spec §6 the core requires record to never reject.
func (l *Ledger) Record(_ context.Context, trade collaborators.Trade) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := seqKey{curveID: trade.CurveID, seq: trade.SequenceNo}
	if _, dup := l.seen[key]; dup {
		return nil
	}
	l.seen[key] = struct{}{}
	l.volumes[trade.Trader] += trade.QuoteVolume.Big().Uint64()
	return nil
}

// TierOf returns the cashback tier for a trader based on cumulative
// recorded volume. An unseen trader is tier 0.
func (l *Ledger) TierOf(_ context.Context, trader string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	volume := l.volumes[trader]
	tier := 0
	for i, threshold := range tierThresholds {
		if volume >= threshold {
			tier = i
		}
	}
	return tier, nil
}
