package curve

import (
	"fmt"

	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
)

// BPSMax is the basis-point denominator (100.00%) every fee rate and
// component is expressed against.
const BPSMax = 10_000

// FeeSchedule is the immutable per-curve fee configuration (spec §3). It is
// validated once, at curve creation, so that FeeEngine never has to check
// the l1+l2+l3+creator+max(cashback) <= base_fee_bps invariant mid-trade:
// by construction every legal (tier, referral) combination yields a
// non-negative protocol remainder.
type FeeSchedule struct {
	BaseFeeBps         uint64
	RefereeDiscountBps uint64
	L1Bps              uint64
	L2Bps              uint64
	L3Bps              uint64
	CreatorBps         uint64
	// CashbackBpsByTier is indexed by tier; must be non-decreasing.
	CashbackBpsByTier []uint64
}

func (fs FeeSchedule) maxCashbackBps() uint64 {
	if len(fs.CashbackBpsByTier) == 0 {
		return 0
	}
	return fs.CashbackBpsByTier[len(fs.CashbackBpsByTier)-1]
}

func (fs FeeSchedule) validate() error {
	if fs.BaseFeeBps == 0 || fs.BaseFeeBps >= BPSMax {
		return fmt.Errorf("%w: base_fee_bps %d out of range", ErrInvalidConfig, fs.BaseFeeBps)
	}
	if fs.RefereeDiscountBps >= fs.BaseFeeBps {
		return fmt.Errorf("%w: referee_discount_bps %d must be less than base_fee_bps", ErrInvalidConfig, fs.RefereeDiscountBps)
	}
	if !(fs.L1Bps >= fs.L2Bps && fs.L2Bps >= fs.L3Bps) {
		return fmt.Errorf("%w: referral tiers must satisfy l1 >= l2 >= l3", ErrInvalidConfig)
	}
	for i := 1; i < len(fs.CashbackBpsByTier); i++ {
		if fs.CashbackBpsByTier[i] < fs.CashbackBpsByTier[i-1] {
			return fmt.Errorf("%w: cashback_bps_by_tier must be non-decreasing", ErrInvalidConfig)
		}
	}
	committed := fs.L1Bps + fs.L2Bps + fs.L3Bps + fs.CreatorBps + fs.maxCashbackBps()
	if committed > fs.BaseFeeBps {
		return fmt.Errorf("%w: l1+l2+l3+creator+max(cashback) (%d) exceeds base_fee_bps (%d)",
			ErrInvalidConfig, committed, fs.BaseFeeBps)
	}
	return nil
}

// CurveConfig is the immutable per-curve configuration supplied at
// creation (spec §3). Once built by NewConfig it never changes; CurveState
// is the only thing that mutates.
type CurveConfig struct {
	QuoteAssetID string
	BaseAssetID  string

	BaseDecimals  int
	QuoteDecimals int
	DecimalScale  fixedpoint.Uint128

	InitialVirtualQuote fixedpoint.Uint128
	InitialVirtualBase  fixedpoint.Uint128
	InitialRealBase     fixedpoint.Uint128

	GraduationBaseFloor fixedpoint.Uint128
	GraduationQuoteCap  fixedpoint.Uint128

	FeeSchedule FeeSchedule

	CreatorID      string
	FeeCollectorID string
}

// NewConfigParams is the caller-facing input to NewConfig; DecimalScale is
// derived, not supplied, so it can never drift from the decimals pair.
type NewConfigParams struct {
	QuoteAssetID  string
	BaseAssetID   string
	BaseDecimals  int
	QuoteDecimals int

	InitialVirtualQuote fixedpoint.Uint128
	InitialVirtualBase  fixedpoint.Uint128
	InitialRealBase     fixedpoint.Uint128

	GraduationBaseFloor fixedpoint.Uint128
	GraduationQuoteCap  fixedpoint.Uint128

	FeeSchedule FeeSchedule

	CreatorID      string
	FeeCollectorID string
}

// NewConfig validates the supplied parameters and derives decimal_scale,
// returning ErrInvalidConfig (wrapped with detail) on any violation.
func NewConfig(p NewConfigParams) (CurveConfig, error) {
	if p.BaseDecimals < 6 || p.BaseDecimals > 18 {
		return CurveConfig{}, fmt.Errorf("%w: base_decimals %d out of [6,18]", ErrInvalidConfig, p.BaseDecimals)
	}
	if p.QuoteDecimals < 6 || p.QuoteDecimals > 18 {
		return CurveConfig{}, fmt.Errorf("%w: quote_decimals %d out of [6,18]", ErrInvalidConfig, p.QuoteDecimals)
	}
	if p.InitialVirtualQuote.IsZero() || p.InitialVirtualBase.IsZero() {
		return CurveConfig{}, fmt.Errorf("%w: initial virtual reserves must be strictly positive", ErrInvalidConfig)
	}
	if p.InitialRealBase.IsZero() {
		return CurveConfig{}, fmt.Errorf("%w: initial_real_base must be strictly positive", ErrInvalidConfig)
	}
	if p.GraduationBaseFloor.Cmp(p.InitialRealBase) >= 0 {
		return CurveConfig{}, fmt.Errorf("%w: graduation_base_floor must be less than initial_real_base", ErrInvalidConfig)
	}
	if err := p.FeeSchedule.validate(); err != nil {
		return CurveConfig{}, err
	}

	scale, err := deriveDecimalScale(p.QuoteDecimals, p.BaseDecimals)
	if err != nil {
		return CurveConfig{}, err
	}

	return CurveConfig{
		QuoteAssetID:        p.QuoteAssetID,
		BaseAssetID:         p.BaseAssetID,
		BaseDecimals:        p.BaseDecimals,
		QuoteDecimals:       p.QuoteDecimals,
		DecimalScale:        scale,
		InitialVirtualQuote: p.InitialVirtualQuote,
		InitialVirtualBase:  p.InitialVirtualBase,
		InitialRealBase:     p.InitialRealBase,
		GraduationBaseFloor: p.GraduationBaseFloor,
		GraduationQuoteCap:  p.GraduationQuoteCap,
		FeeSchedule:         p.FeeSchedule,
		CreatorID:           p.CreatorID,
		FeeCollectorID:      p.FeeCollectorID,
	}, nil
}

// deriveDecimalScale implements spec §3: 10^(quote-base) when quote>base,
// else 1.
func deriveDecimalScale(quoteDecimals, baseDecimals int) (fixedpoint.Uint128, error) {
	if quoteDecimals <= baseDecimals {
		return fixedpoint.FromUint64(1), nil
	}
	scale := fixedpoint.FromUint64(1)
	ten := fixedpoint.FromUint64(10)
	var err error
	for i := 0; i < quoteDecimals-baseDecimals; i++ {
		scale, err = fixedpoint.CheckedMul(scale, ten)
		if err != nil {
			return fixedpoint.Uint128{}, fmt.Errorf("%w: decimal_scale overflow", ErrMathOverflow)
		}
	}
	return scale, nil
}

// InitialK returns the curve's invariant product at genesis,
// initial_virtual_quote * initial_virtual_base, used by the graduation
// solver (spec §4.2 step 3) since k_initial is fixed for the life of the
// curve.
func (c CurveConfig) InitialK() (fixedpoint.Uint128, error) {
	k, err := fixedpoint.CheckedMul(c.InitialVirtualQuote, c.InitialVirtualBase)
	if err != nil {
		return fixedpoint.Uint128{}, fmt.Errorf("%w: initial k overflow", ErrMathOverflow)
	}
	return k, nil
}
