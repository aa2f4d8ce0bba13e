// Package curvemath implements the constant-product bonding-curve step
// functions in checked fixed-point (spec §4.2). It operates purely on the
// three numbers that define a trade — virtual quote, virtual base, and an
// amount — plus a decimal_scale for the price query, and never touches
// CurveState or CurveConfig directly.
package curvemath

import (
	"errors"
	"fmt"

	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
)

var (
	// ErrOverflow wraps any checked arithmetic failure from fixedpoint.
	ErrOverflow = errors.New("curvemath: checked arithmetic overflowed")
	// ErrCurveExhausted is returned when a sell/buy step would drive a
	// virtual reserve to (or past) zero — not reachable under a
	// correctly-configured curve, surfaced defensively.
	ErrCurveExhausted = errors.New("curvemath: virtual reserve exhausted")
)

// Buy computes amount_out for a quote->base trade given amount_net, the
// input already net of fees (spec §4.2 "Buy"):
//
//	Vq' = Vq + amount_net
//	Vb' = mul_div(Vq, Vb, Vq', Ceil)
//	amount_out = Vb - Vb'
//
// Rounding Vb' up means amount_out rounds down, which always favors the
// protocol over the trader.
func Buy(vq, vb, amountNet fixedpoint.Uint128) (amountOut, newVq, newVb fixedpoint.Uint128, err error) {
	newVq, err = fixedpoint.CheckedAdd(vq, amountNet)
	if err != nil {
		return fixedpoint.Zero, fixedpoint.Zero, fixedpoint.Zero, fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	newVb, err = fixedpoint.MulDiv(vq, vb, newVq, fixedpoint.Ceil)
	if err != nil {
		return fixedpoint.Zero, fixedpoint.Zero, fixedpoint.Zero, fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	if newVb.Cmp(vb) > 0 {
		return fixedpoint.Zero, fixedpoint.Zero, fixedpoint.Zero, fmt.Errorf("%w: buy increased virtual_base", ErrCurveExhausted)
	}
	amountOut, err = fixedpoint.CheckedSub(vb, newVb)
	if err != nil {
		return fixedpoint.Zero, fixedpoint.Zero, fixedpoint.Zero, fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	return amountOut, newVq, newVb, nil
}

// Sell computes amount_out (gross, pre-fee) for a base->quote trade given
// amount_in (spec §4.2 "Sell"):
//
//	Vb' = Vb + amount_in
//	Vq' = mul_div(Vq, Vb, Vb', Ceil)
//	amount_out = Vq - Vq'
func Sell(vq, vb, amountIn fixedpoint.Uint128) (amountOut, newVq, newVb fixedpoint.Uint128, err error) {
	newVb, err = fixedpoint.CheckedAdd(vb, amountIn)
	if err != nil {
		return fixedpoint.Zero, fixedpoint.Zero, fixedpoint.Zero, fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	newVq, err = fixedpoint.MulDiv(vq, vb, newVb, fixedpoint.Ceil)
	if err != nil {
		return fixedpoint.Zero, fixedpoint.Zero, fixedpoint.Zero, fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	if newVq.Cmp(vq) > 0 {
		return fixedpoint.Zero, fixedpoint.Zero, fixedpoint.Zero, fmt.Errorf("%w: sell increased virtual_quote", ErrCurveExhausted)
	}
	amountOut, err = fixedpoint.CheckedSub(vq, newVq)
	if err != nil {
		return fixedpoint.Zero, fixedpoint.Zero, fixedpoint.Zero, fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	return amountOut, newVq, newVb, nil
}

// priceScale is the fixed presentation precision for Price: 18 digits,
// matching the spec's "fixed 18-digit precision for presentation only."
var priceScale = fixedpoint.FromUint64(1_000_000_000_000_000_000)

// Price returns Vq / (Vb * decimal_scale) scaled to 18 digits of
// precision, for display purposes only — it never feeds back into a
// trading decision (spec §4.2 "Price query").
func Price(vq, vb, decimalScale fixedpoint.Uint128) (fixedpoint.Uint128, error) {
	denom, err := fixedpoint.CheckedMul(vb, decimalScale)
	if err != nil {
		return fixedpoint.Zero, fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	if denom.IsZero() {
		return fixedpoint.Zero, fmt.Errorf("%w: zero denominator in price query", ErrCurveExhausted)
	}
	numerator, err := fixedpoint.CheckedMul(vq, priceScale)
	if err != nil {
		return fixedpoint.Zero, fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	price, err := fixedpoint.MulDiv(numerator, fixedpoint.FromUint64(1), denom, fixedpoint.Floor)
	if err != nil {
		return fixedpoint.Zero, fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	return price, nil
}

// GraduationSolverInput bundles the state the solver needs to cap a buy at
// the graduation threshold (spec §4.2 "Graduation solver").
type GraduationSolverInput struct {
	Vq                 fixedpoint.Uint128
	Vb                 fixedpoint.Uint128
	RealBase           fixedpoint.Uint128
	GraduationFloor    fixedpoint.Uint128
	KInitial           fixedpoint.Uint128
	AmountNetRequested fixedpoint.Uint128
	// EffectiveFeeBps is needed to translate the capped net amount back
	// into a gross amount (step 6 of the solver).
	EffectiveFeeBps uint64
}

// GraduationSolverResult reports whether the requested trade is cappable
// and, if so, by how much.
type GraduationSolverResult struct {
	Graduates      bool
	AmountNetCap   fixedpoint.Uint128
	AmountGrossCap fixedpoint.Uint128
	MaxBaseOut     fixedpoint.Uint128
}

const bpsMax = 10_000

// SolveGraduationCap implements spec §4.2's graduation-cap solver for a buy.
// Given the amount the trader requested (net of fees) and the curve's
// current state, it determines how much of that request can be consumed
// before real_base would drop through graduation_base_floor.
func SolveGraduationCap(in GraduationSolverInput) (GraduationSolverResult, error) {
	maxBaseOut, err := fixedpoint.CheckedSub(in.RealBase, in.GraduationFloor)
	if err != nil {
		return GraduationSolverResult{}, fmt.Errorf("%w: real_base below graduation_base_floor: %v", ErrOverflow, err)
	}

	vbTarget, err := fixedpoint.CheckedSub(in.Vb, maxBaseOut)
	if err != nil {
		return GraduationSolverResult{}, fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	if vbTarget.IsZero() {
		return GraduationSolverResult{}, fmt.Errorf("%w: graduation target drains virtual_base to zero", ErrCurveExhausted)
	}

	vqTarget, err := fixedpoint.MulDiv(in.KInitial, fixedpoint.FromUint64(1), vbTarget, fixedpoint.Ceil)
	if err != nil {
		return GraduationSolverResult{}, fmt.Errorf("%w: %v", ErrOverflow, err)
	}

	amountNetCap, err := fixedpoint.CheckedSub(vqTarget, in.Vq)
	if err != nil {
		return GraduationSolverResult{}, fmt.Errorf("%w: graduation target below current virtual_quote: %v", ErrOverflow, err)
	}

	if in.AmountNetRequested.Cmp(amountNetCap) <= 0 {
		return GraduationSolverResult{Graduates: false}, nil
	}

	if in.EffectiveFeeBps >= bpsMax {
		return GraduationSolverResult{}, fmt.Errorf("%w: effective_fee_bps %d >= BPS_MAX", ErrOverflow, in.EffectiveFeeBps)
	}
	denom, err := fixedpoint.CheckedSub(fixedpoint.FromUint64(bpsMax), fixedpoint.FromUint64(in.EffectiveFeeBps))
	if err != nil {
		return GraduationSolverResult{}, fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	amountGrossCap, err := fixedpoint.MulDiv(amountNetCap, fixedpoint.FromUint64(bpsMax), denom, fixedpoint.Ceil)
	if err != nil {
		return GraduationSolverResult{}, fmt.Errorf("%w: %v", ErrOverflow, err)
	}

	return GraduationSolverResult{
		Graduates:      true,
		AmountNetCap:   amountNetCap,
		AmountGrossCap: amountGrossCap,
		MaxBaseOut:     maxBaseOut,
	}, nil
}
