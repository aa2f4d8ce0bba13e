package curve

import "github.com/launchpad-amm/curveengine/pkg/fixedpoint"

// Status is the curve lifecycle (spec §3). Transitions are monotone:
// Active -> Graduated -> Migrated. None are reversible.
type Status int

const (
	StatusActive Status = iota
	StatusGraduated
	StatusMigrated
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusGraduated:
		return "graduated"
	case StatusMigrated:
		return "migrated"
	default:
		return "unknown"
	}
}

// Direction distinguishes a buy (quote -> base) from a sell (base -> quote).
type Direction int

const (
	DirectionBuy Direction = iota
	DirectionSell
)

func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "buy"
	case DirectionSell:
		return "sell"
	default:
		return "unknown"
	}
}

// TradeContext carries the referral chain and cashback tier used to
// compute a trade's FeeBreakdown (spec §4.3). Referrers[0] is the direct
// referrer (L1); a nil entry means that slot is unfilled.
type TradeContext struct {
	Referrers    [3]*string
	CashbackTier int
}

// HasReferrer reports whether the trader has at least one referrer, which
// is what unlocks the referee discount (spec §4.3 step 1).
func (tc TradeContext) HasReferrer() bool {
	return tc.Referrers[0] != nil
}

// FeeBreakdown is the exact decomposition of a trade's gross fee (spec
// §4.3). protocol + creator + cashback + l1 + l2 + l3 == total always,
// bit-exact (P3).
type FeeBreakdown struct {
	Total     fixedpoint.Uint128
	Protocol  fixedpoint.Uint128
	Creator   fixedpoint.Uint128
	Cashback  fixedpoint.Uint128
	L1        fixedpoint.Uint128
	L2        fixedpoint.Uint128
	L3        fixedpoint.Uint128
}

// SwapResult is what TradingService.swap/preview_swap return (spec §6).
type SwapResult struct {
	Direction Direction
	AmountOut fixedpoint.Uint128
	GrossUsed fixedpoint.Uint128
	Fees      FeeBreakdown
	Graduated bool
}

// MigrationIntent is the immutable record produced at Active->Graduated
// (spec §4.6), describing exactly what the external concentrated-liquidity
// pool should receive.
type MigrationIntent struct {
	BaseAmount  fixedpoint.Uint128
	QuoteAmount fixedpoint.Uint128
	FinalPrice  fixedpoint.Uint128 // 18-digit fixed-point presentation price
}
