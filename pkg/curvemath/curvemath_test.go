package curvemath

import (
	"errors"
	"testing"

	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
)

func u(x uint64) fixedpoint.Uint128 { return fixedpoint.FromUint64(x) }

func TestBuyDecreasesVirtualBase(t *testing.T) {
	vq, vb := u(30_000_000_000), u(1_073_000_000_000)
	amountOut, newVq, newVb, err := Buy(vq, vb, u(1_000_000_000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if newVq.Cmp(u(31_000_000_000)) != 0 {
		t.Errorf("expected new_vq 31,000,000,000, got %s", newVq)
	}
	if newVb.Cmp(vb) >= 0 {
		t.Errorf("expected new_vb < vb")
	}
	if amountOut.IsZero() {
		t.Errorf("expected non-zero amount_out")
	}
	wantOut, _ := fixedpoint.CheckedSub(vb, newVb)
	if amountOut.Cmp(wantOut) != 0 {
		t.Errorf("amount_out mismatch")
	}
}

func TestSellDecreasesVirtualQuote(t *testing.T) {
	vq, vb := u(30_000_000_000), u(1_073_000_000_000)
	amountOut, newVq, newVb, err := Sell(vq, vb, u(1_000_000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if newVb.Cmp(u(1_073_001_000_000)) != 0 {
		t.Errorf("expected new_vb 1,073,001,000,000, got %s", newVb)
	}
	if newVq.Cmp(vq) >= 0 {
		t.Errorf("expected new_vq < vq")
	}
	if amountOut.IsZero() {
		t.Errorf("expected non-zero amount_out")
	}
}

// TestBuyThenSellRoundTripNeverProfitsCaller exercises P1-style
// round-tripping: buying then immediately selling the same base amount
// back must not return more quote than was paid in, since both steps
// round in the protocol's favor.
func TestBuyThenSellRoundTripNeverProfitsCaller(t *testing.T) {
	vq, vb := u(30_000_000_000), u(1_073_000_000_000)
	amountNet := u(5_000_000_000)

	baseOut, vq1, vb1, err := Buy(vq, vb, amountNet)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	quoteOut, _, _, err := Sell(vq1, vb1, baseOut)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	if quoteOut.Cmp(amountNet) > 0 {
		t.Errorf("round trip returned more quote (%s) than was paid in (%s)", quoteOut, amountNet)
	}
}

func TestPriceWithUnitDecimalScale(t *testing.T) {
	vq, vb := u(30_000_000_000), u(1_073_000_000_000)
	price, err := Price(vq, vb, u(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price.IsZero() {
		t.Errorf("expected non-zero price")
	}
}

func TestPriceRejectsZeroDenominator(t *testing.T) {
	if _, err := Price(u(1), fixedpoint.Zero, u(1)); !errors.Is(err, ErrCurveExhausted) {
		t.Errorf("expected ErrCurveExhausted, got %v", err)
	}
}

func TestSolveGraduationCapBelowThresholdDoesNotGraduate(t *testing.T) {
	vq, vb := u(30_000_000_000), u(1_073_000_000_000)
	kInitial, err := fixedpoint.CheckedMul(vq, vb)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := SolveGraduationCap(GraduationSolverInput{
		Vq:                 vq,
		Vb:                 vb,
		RealBase:           u(793_100_000_000),
		GraduationFloor:    u(10_000_000_000),
		KInitial:           kInitial,
		AmountNetRequested: u(1_000_000),
		EffectiveFeeBps:    150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Graduates {
		t.Errorf("expected no graduation for a tiny request")
	}
}

func TestSolveGraduationCapAboveThresholdCapsTrade(t *testing.T) {
	vq, vb := u(30_000_000_000), u(1_073_000_000_000)
	kInitial, err := fixedpoint.CheckedMul(vq, vb)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	// Request far more than the curve has room to absorb before the
	// floor is hit, forcing the solver to cap the trade.
	result, err := SolveGraduationCap(GraduationSolverInput{
		Vq:                 vq,
		Vb:                 vb,
		RealBase:           u(793_100_000_000),
		GraduationFloor:    u(10_000_000_000),
		KInitial:           kInitial,
		AmountNetRequested: u(1_000_000_000_000),
		EffectiveFeeBps:    150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Graduates {
		t.Fatalf("expected graduation to trigger")
	}
	if result.AmountNetCap.IsZero() || result.AmountGrossCap.IsZero() || result.MaxBaseOut.IsZero() {
		t.Errorf("expected non-zero capped values")
	}
	// Gross must exceed net since fees are added back on top.
	if result.AmountGrossCap.Cmp(result.AmountNetCap) <= 0 {
		t.Errorf("expected amount_gross_cap > amount_net_cap, got gross=%s net=%s", result.AmountGrossCap, result.AmountNetCap)
	}
	wantMaxBaseOut, _ := fixedpoint.CheckedSub(u(793_100_000_000), u(10_000_000_000))
	if result.MaxBaseOut.Cmp(wantMaxBaseOut) != 0 {
		t.Errorf("max_base_out mismatch: want %s got %s", wantMaxBaseOut, result.MaxBaseOut)
	}
}

func TestSolveGraduationCapRejectsFeeBpsAtOrAboveMax(t *testing.T) {
	vq, vb := u(30_000_000_000), u(1_073_000_000_000)
	kInitial, _ := fixedpoint.CheckedMul(vq, vb)

	_, err := SolveGraduationCap(GraduationSolverInput{
		Vq:                 vq,
		Vb:                 vb,
		RealBase:           u(793_100_000_000),
		GraduationFloor:    u(10_000_000_000),
		KInitial:           kInitial,
		AmountNetRequested: u(1_000_000_000_000),
		EffectiveFeeBps:    10_000,
	})
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow for effective_fee_bps >= BPS_MAX, got %v", err)
	}
}
