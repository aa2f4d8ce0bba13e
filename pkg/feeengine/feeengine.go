// Package feeengine decomposes a trade's gross fee into its protocol,
// creator, cashback, and three-tier referral shares (spec §4.3). It
// operates on a single gross_amount plus a TradeContext and never touches
// CurveState.
package feeengine

import (
	"errors"
	"fmt"

	"github.com/launchpad-amm/curveengine/pkg/curve"
	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
)

// ErrOverflow wraps any checked arithmetic failure from fixedpoint.
var ErrOverflow = errors.New("feeengine: checked arithmetic overflowed")

const bpsMax = curve.BPSMax

// Compute decomposes gross into a curve.FeeBreakdown per the mandatory
// order in spec §4.3. The steps MUST run in this order — total_fee feeds
// every downstream share, and reordering changes the result.
func Compute(gross fixedpoint.Uint128, fs curve.FeeSchedule, tc curve.TradeContext) (curve.FeeBreakdown, error) {
	effectiveBps := fs.BaseFeeBps
	if tc.HasReferrer() {
		if fs.RefereeDiscountBps > effectiveBps {
			return curve.FeeBreakdown{}, fmt.Errorf("%w: referee_discount_bps exceeds base_fee_bps", curve.ErrFeeInvariantViolated)
		}
		effectiveBps -= fs.RefereeDiscountBps
	}
	if effectiveBps >= bpsMax {
		return curve.FeeBreakdown{}, fmt.Errorf("%w: effective_bps %d >= BPS_MAX", curve.ErrFeeInvariantViolated, effectiveBps)
	}

	totalFee, err := fixedpoint.MulDiv(gross, fixedpoint.FromUint64(effectiveBps), fixedpoint.FromUint64(bpsMax), fixedpoint.Ceil)
	if err != nil {
		return curve.FeeBreakdown{}, fmt.Errorf("%w: total_fee: %v", ErrOverflow, err)
	}

	baseFeeBps := fixedpoint.FromUint64(fs.BaseFeeBps)

	tierBps := [3]uint64{fs.L1Bps, fs.L2Bps, fs.L3Bps}
	var tierFees [3]fixedpoint.Uint128
	for i := 0; i < 3; i++ {
		if tc.Referrers[i] == nil {
			tierFees[i] = fixedpoint.Zero
			continue
		}
		fee, err := fixedpoint.MulDiv(totalFee, fixedpoint.FromUint64(tierBps[i]), baseFeeBps, fixedpoint.Floor)
		if err != nil {
			return curve.FeeBreakdown{}, fmt.Errorf("%w: referral tier %d: %v", ErrOverflow, i+1, err)
		}
		tierFees[i] = fee
	}

	var cashbackBps uint64
	if tc.CashbackTier >= 0 && tc.CashbackTier < len(fs.CashbackBpsByTier) {
		cashbackBps = fs.CashbackBpsByTier[tc.CashbackTier]
	}
	cashback, err := fixedpoint.MulDiv(totalFee, fixedpoint.FromUint64(cashbackBps), baseFeeBps, fixedpoint.Floor)
	if err != nil {
		return curve.FeeBreakdown{}, fmt.Errorf("%w: cashback: %v", ErrOverflow, err)
	}

	creator, err := fixedpoint.MulDiv(totalFee, fixedpoint.FromUint64(fs.CreatorBps), baseFeeBps, fixedpoint.Floor)
	if err != nil {
		return curve.FeeBreakdown{}, fmt.Errorf("%w: creator: %v", ErrOverflow, err)
	}

	committed := cashback
	for _, f := range []fixedpoint.Uint128{tierFees[0], tierFees[1], tierFees[2], creator} {
		committed, err = fixedpoint.CheckedAdd(committed, f)
		if err != nil {
			return curve.FeeBreakdown{}, fmt.Errorf("%w: committed shares: %v", ErrOverflow, err)
		}
	}

	if committed.Cmp(totalFee) > 0 {
		return curve.FeeBreakdown{}, fmt.Errorf("%w: committed shares %s exceed total_fee %s", curve.ErrFeeInvariantViolated, committed, totalFee)
	}
	protocol, err := fixedpoint.CheckedSub(totalFee, committed)
	if err != nil {
		return curve.FeeBreakdown{}, fmt.Errorf("%w: protocol remainder: %v", curve.ErrFeeInvariantViolated, err)
	}

	return curve.FeeBreakdown{
		Total:    totalFee,
		Protocol: protocol,
		Creator:  creator,
		Cashback: cashback,
		L1:       tierFees[0],
		L2:       tierFees[1],
		L3:       tierFees[2],
	}, nil
}
