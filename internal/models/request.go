package models

// CreateCurveRequest is the payload for POST /api/v1/curves. Amounts travel
// as base-10 strings — a 128-bit reserve routinely exceeds float64's 53
// bits of exact integer precision.
type CreateCurveRequest struct {
	QuoteAssetID  string `json:"quote_asset_id" validate:"required"`
	BaseAssetID   string `json:"base_asset_id" validate:"required"`
	BaseDecimals  int    `json:"base_decimals" validate:"min=0,max=18"`
	QuoteDecimals int    `json:"quote_decimals" validate:"min=0,max=18"`

	InitialVirtualQuote string `json:"initial_virtual_quote" validate:"required,numeric"`
	InitialVirtualBase  string `json:"initial_virtual_base" validate:"required,numeric"`
	InitialRealBase     string `json:"initial_real_base" validate:"required,numeric"`
	GraduationBaseFloor string `json:"graduation_base_floor" validate:"required,numeric"`
	GraduationQuoteCap  string `json:"graduation_quote_cap" validate:"required,numeric"`

	FeeSchedule FeeScheduleRequest `json:"fee_schedule" validate:"required"`

	CreatorID      string `json:"creator_id" validate:"required"`
	FeeCollectorID string `json:"fee_collector_id" validate:"required"`
}

// FeeScheduleRequest mirrors curve.FeeSchedule over the wire.
type FeeScheduleRequest struct {
	BaseFeeBps         uint64   `json:"base_fee_bps" validate:"required"`
	RefereeDiscountBps uint64   `json:"referee_discount_bps"`
	L1Bps              uint64   `json:"l1_bps"`
	L2Bps              uint64   `json:"l2_bps"`
	L3Bps              uint64   `json:"l3_bps"`
	CreatorBps         uint64   `json:"creator_bps"`
	CashbackBpsByTier  []uint64 `json:"cashback_bps_by_tier"`
}

// SwapRequest is the payload for POST /api/v1/curves/{id}/swap.
type SwapRequest struct {
	Direction string `json:"direction" validate:"required,oneof=buy sell"`
	Trader    string `json:"trader" validate:"required"`
	Amount    string `json:"amount" validate:"required,numeric"`
	MinOut    string `json:"min_out" validate:"omitempty,numeric"`

	ReferrerL1 *string `json:"referrer_l1" validate:"omitempty"`
	ReferrerL2 *string `json:"referrer_l2" validate:"omitempty"`
	ReferrerL3 *string `json:"referrer_l3" validate:"omitempty"`
}

// PreviewSwapRequest is the payload for the pure preview endpoint — no
// trader identity is required since nothing is settled or recorded.
type PreviewSwapRequest struct {
	Direction string `json:"direction" validate:"required,oneof=buy sell"`
	Amount    string `json:"amount" validate:"required,numeric"`

	ReferrerL1 *string `json:"referrer_l1" validate:"omitempty"`
	ReferrerL2 *string `json:"referrer_l2" validate:"omitempty"`
	ReferrerL3 *string `json:"referrer_l3" validate:"omitempty"`
}
