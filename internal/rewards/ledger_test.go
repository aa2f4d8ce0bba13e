package rewards

import (
	"context"
	"testing"

	"github.com/launchpad-amm/curveengine/internal/collaborators"
	"github.com/launchpad-amm/curveengine/pkg/curve"
	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
)

func TestRecordIsIdempotentPerSequence(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()

	trade := collaborators.Trade{
		CurveID:     "curve-1",
		SequenceNo:  1,
		Trader:      "trader-a",
		QuoteVolume: fixedpoint.FromUint64(50_000_000_000),
		Fees:        curve.FeeBreakdown{},
	}

	if err := l.Record(ctx, trade); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Record(ctx, trade); err != nil {
		t.Fatalf("unexpected error on repeat: %v", err)
	}

	tier, err := l.TierOf(ctx, "trader-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tier != 1 {
		t.Errorf("expected tier 1 after a single recorded trade of 50e9, got %d", tier)
	}
}

func TestRecordNeverRejects(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()

	if err := l.Record(ctx, collaborators.Trade{CurveID: "c", SequenceNo: 0, Trader: ""}); err != nil {
		t.Errorf("Record must never reject, got %v", err)
	}
}

func TestTierOfUnseenTraderIsZero(t *testing.T) {
	l := NewLedger()
	tier, err := l.TierOf(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tier != 0 {
		t.Errorf("expected tier 0 for unseen trader, got %d", tier)
	}
}

func TestDistinctSequencesAccumulate(t *testing.T) {
	l := NewLedger()
	ctx := context.Background()

	for seq := uint64(0); seq < 3; seq++ {
		trade := collaborators.Trade{
			CurveID:     "curve-1",
			SequenceNo:  seq,
			Trader:      "trader-b",
			QuoteVolume: fixedpoint.FromUint64(40_000_000_000),
		}
		if err := l.Record(ctx, trade); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tier, err := l.TierOf(ctx, "trader-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tier != 2 {
		t.Errorf("expected tier 2 after 120e9 cumulative volume, got %d", tier)
	}
}
