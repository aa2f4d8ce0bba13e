package models

// CurveStateResponse renders a curve.Snapshot over the wire. Every reserve
// and accrual is a decimal string for the same reason request amounts are.
type CurveStateResponse struct {
	CurveID             string `json:"curve_id"`
	VirtualQuote        string `json:"virtual_quote"`
	VirtualBase         string `json:"virtual_base"`
	RealQuote           string `json:"real_quote"`
	RealBase            string `json:"real_base"`
	ProtocolFeeAccrued  string `json:"protocol_fee_accrued"`
	CreatorFeeAccrued   string `json:"creator_fee_accrued"`
	Status              string `json:"status"`
	GraduationTimestamp uint64 `json:"graduation_timestamp,omitempty"`

	Migration *MigrationIntentResponse `json:"migration,omitempty"`
}

// MigrationIntentResponse renders a curve.MigrationIntent.
type MigrationIntentResponse struct {
	BaseAmount  string `json:"base_amount"`
	QuoteAmount string `json:"quote_amount"`
	FinalPrice  string `json:"final_price"`
}

// FeeBreakdownResponse renders a curve.FeeBreakdown.
type FeeBreakdownResponse struct {
	Total    string `json:"total"`
	L1       string `json:"l1"`
	L2       string `json:"l2"`
	L3       string `json:"l3"`
	Cashback string `json:"cashback"`
	Creator  string `json:"creator"`
	Protocol string `json:"protocol"`
}

// SwapResultResponse renders a curve.SwapResult.
type SwapResultResponse struct {
	Direction string               `json:"direction"`
	AmountOut string               `json:"amount_out"`
	GrossUsed string               `json:"gross_used"`
	Fees      FeeBreakdownResponse `json:"fees"`
	Graduated bool                 `json:"graduated"`
}

// CreateCurveResponse is returned by create_curve.
type CreateCurveResponse struct {
	CurveID string `json:"curve_id"`
}

// WithdrawalResponse is returned by withdraw_protocol_fees and
// withdraw_creator_fees.
type WithdrawalResponse struct {
	Amount string `json:"amount"`
}
