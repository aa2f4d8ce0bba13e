package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/launchpad-amm/curveengine/internal/models"
	"github.com/launchpad-amm/curveengine/internal/trading"
	"github.com/launchpad-amm/curveengine/internal/validators"
	"github.com/launchpad-amm/curveengine/pkg/curve"
	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
	"github.com/launchpad-amm/curveengine/pkg/response"
)

// CurveHandler exposes the trading engine's operations (spec §6 "Exposed")
// over HTTP: create_curve, swap, preview_swap, withdraw_protocol_fees,
// withdraw_creator_fees, issue_migration_intent, finalize_migration, and
// get_state.
type CurveHandler struct {
	trading   *trading.Service
	validator *validators.Validator
}

func NewCurveHandler(tradingService *trading.Service, validator *validators.Validator) *CurveHandler {
	return &CurveHandler{trading: tradingService, validator: validator}
}

// CreateCurve handles POST /api/v1/curves.
func (h *CurveHandler) CreateCurve(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCurveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatErrors(err))
		return
	}

	cfg, err := buildCurveConfig(req)
	if err != nil {
		response.BadRequest(w, "Invalid curve parameters", err.Error())
		return
	}

	curveID, err := h.trading.CreateCurve(r.Context(), cfg)
	if err != nil {
		h.writeEngineError(w, "Failed to create curve", err)
		return
	}

	response.Success(w, http.StatusCreated, models.CreateCurveResponse{CurveID: curveID})
}

// GetState handles GET /api/v1/curves/{id}.
func (h *CurveHandler) GetState(w http.ResponseWriter, r *http.Request) {
	curveID := chi.URLParam(r, "id")
	snap, err := h.trading.GetState(r.Context(), curveID)
	if err != nil {
		h.writeEngineError(w, "Failed to load curve", err)
		return
	}
	response.Success(w, http.StatusOK, snapshotResponse(curveID, snap))
}

// Swap handles POST /api/v1/curves/{id}/swap.
func (h *CurveHandler) Swap(w http.ResponseWriter, r *http.Request) {
	curveID := chi.URLParam(r, "id")

	var req models.SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatErrors(err))
		return
	}

	amount, err := fixedpoint.FromString(req.Amount)
	if err != nil {
		response.BadRequest(w, "Invalid amount", err.Error())
		return
	}
	minOut := fixedpoint.Zero
	if req.MinOut != "" {
		minOut, err = fixedpoint.FromString(req.MinOut)
		if err != nil {
			response.BadRequest(w, "Invalid min_out", err.Error())
			return
		}
	}

	tc := curve.TradeContext{Referrers: [3]*string{req.ReferrerL1, req.ReferrerL2, req.ReferrerL3}}

	var result curve.SwapResult
	switch req.Direction {
	case "buy":
		result, err = h.trading.SwapBuy(r.Context(), curveID, req.Trader, amount, minOut, tc)
	case "sell":
		result, err = h.trading.SwapSell(r.Context(), curveID, req.Trader, amount, minOut, tc)
	default:
		response.BadRequest(w, "direction must be buy or sell", nil)
		return
	}
	if err != nil {
		h.writeEngineError(w, "Swap failed", err)
		return
	}

	response.Success(w, http.StatusOK, swapResultResponse(result))
}

// PreviewSwap handles POST /api/v1/curves/{id}/preview. It is pure: no
// state mutation, settlement, or ledger notification occurs (spec §6).
func (h *CurveHandler) PreviewSwap(w http.ResponseWriter, r *http.Request) {
	curveID := chi.URLParam(r, "id")

	var req models.PreviewSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatErrors(err))
		return
	}

	amount, err := fixedpoint.FromString(req.Amount)
	if err != nil {
		response.BadRequest(w, "Invalid amount", err.Error())
		return
	}

	var direction curve.Direction
	switch req.Direction {
	case "buy":
		direction = curve.DirectionBuy
	case "sell":
		direction = curve.DirectionSell
	default:
		response.BadRequest(w, "direction must be buy or sell", nil)
		return
	}

	tc := curve.TradeContext{Referrers: [3]*string{req.ReferrerL1, req.ReferrerL2, req.ReferrerL3}}

	result, err := h.trading.PreviewSwap(r.Context(), curveID, direction, amount, tc)
	if err != nil {
		h.writeEngineError(w, "Preview failed", err)
		return
	}

	response.Success(w, http.StatusOK, swapResultResponse(result))
}

// WithdrawProtocolFees handles POST /api/v1/curves/{id}/withdraw/protocol.
func (h *CurveHandler) WithdrawProtocolFees(w http.ResponseWriter, r *http.Request) {
	curveID := chi.URLParam(r, "id")
	amount, err := h.trading.WithdrawProtocolFees(r.Context(), curveID)
	if err != nil {
		h.writeEngineError(w, "Withdrawal failed", err)
		return
	}
	response.Success(w, http.StatusOK, models.WithdrawalResponse{Amount: amount.String()})
}

// WithdrawCreatorFees handles POST /api/v1/curves/{id}/withdraw/creator.
func (h *CurveHandler) WithdrawCreatorFees(w http.ResponseWriter, r *http.Request) {
	curveID := chi.URLParam(r, "id")
	amount, err := h.trading.WithdrawCreatorFees(r.Context(), curveID)
	if err != nil {
		h.writeEngineError(w, "Withdrawal failed", err)
		return
	}
	response.Success(w, http.StatusOK, models.WithdrawalResponse{Amount: amount.String()})
}

// IssueMigrationIntent handles GET /api/v1/curves/{id}/migration.
func (h *CurveHandler) IssueMigrationIntent(w http.ResponseWriter, r *http.Request) {
	curveID := chi.URLParam(r, "id")
	intent, err := h.trading.IssueMigrationIntent(r.Context(), curveID)
	if err != nil {
		h.writeEngineError(w, "Failed to issue migration intent", err)
		return
	}
	response.Success(w, http.StatusOK, migrationIntentResponse(intent))
}

// FinalizeMigration handles POST /api/v1/curves/{id}/migration/finalize.
func (h *CurveHandler) FinalizeMigration(w http.ResponseWriter, r *http.Request) {
	curveID := chi.URLParam(r, "id")
	snap, err := h.trading.FinalizeMigration(r.Context(), curveID)
	if err != nil {
		h.writeEngineError(w, "Migration finalize failed", err)
		return
	}
	response.Success(w, http.StatusOK, snapshotResponse(curveID, snap))
}

func (h *CurveHandler) writeEngineError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, curve.ErrInvalidAmount), errors.Is(err, curve.ErrInvalidConfig):
		response.BadRequest(w, message, err.Error())
	case errors.Is(err, curve.ErrSlippageExceeded), errors.Is(err, curve.ErrFeeInvariantViolated):
		response.UnprocessableEntity(w, message, err.Error())
	case errors.Is(err, curve.ErrCurveClosed), errors.Is(err, curve.ErrNotGraduated), errors.Is(err, curve.ErrAlreadyMigrated):
		response.Conflict(w, message, err.Error())
	case errors.Is(err, curve.ErrSettlementFailed), errors.Is(err, curve.ErrMigrationFailed):
		response.UnprocessableEntity(w, message, err.Error())
	default:
		log.Printf("%s: %v", message, err)
		response.InternalServerError(w, message)
	}
}

func buildCurveConfig(req models.CreateCurveRequest) (curve.CurveConfig, error) {
	initialVirtualQuote, err := fixedpoint.FromString(req.InitialVirtualQuote)
	if err != nil {
		return curve.CurveConfig{}, err
	}
	initialVirtualBase, err := fixedpoint.FromString(req.InitialVirtualBase)
	if err != nil {
		return curve.CurveConfig{}, err
	}
	initialRealBase, err := fixedpoint.FromString(req.InitialRealBase)
	if err != nil {
		return curve.CurveConfig{}, err
	}
	graduationBaseFloor, err := fixedpoint.FromString(req.GraduationBaseFloor)
	if err != nil {
		return curve.CurveConfig{}, err
	}
	graduationQuoteCap, err := fixedpoint.FromString(req.GraduationQuoteCap)
	if err != nil {
		return curve.CurveConfig{}, err
	}

	return curve.NewConfig(curve.NewConfigParams{
		QuoteAssetID:        req.QuoteAssetID,
		BaseAssetID:         req.BaseAssetID,
		BaseDecimals:        req.BaseDecimals,
		QuoteDecimals:       req.QuoteDecimals,
		InitialVirtualQuote: initialVirtualQuote,
		InitialVirtualBase:  initialVirtualBase,
		InitialRealBase:     initialRealBase,
		GraduationBaseFloor: graduationBaseFloor,
		GraduationQuoteCap:  graduationQuoteCap,
		FeeSchedule: curve.FeeSchedule{
			BaseFeeBps:         req.FeeSchedule.BaseFeeBps,
			RefereeDiscountBps: req.FeeSchedule.RefereeDiscountBps,
			L1Bps:              req.FeeSchedule.L1Bps,
			L2Bps:              req.FeeSchedule.L2Bps,
			L3Bps:              req.FeeSchedule.L3Bps,
			CreatorBps:         req.FeeSchedule.CreatorBps,
			CashbackBpsByTier:  req.FeeSchedule.CashbackBpsByTier,
		},
		CreatorID:      req.CreatorID,
		FeeCollectorID: req.FeeCollectorID,
	})
}

func snapshotResponse(curveID string, snap curve.Snapshot) models.CurveStateResponse {
	resp := models.CurveStateResponse{
		CurveID:             curveID,
		VirtualQuote:        snap.VirtualQuote.String(),
		VirtualBase:         snap.VirtualBase.String(),
		RealQuote:           snap.RealQuote.String(),
		RealBase:            snap.RealBase.String(),
		ProtocolFeeAccrued:  snap.ProtocolFeeAccrued.String(),
		CreatorFeeAccrued:   snap.CreatorFeeAccrued.String(),
		Status:              snap.Status.String(),
		GraduationTimestamp: snap.GraduationTimestamp,
	}
	if snap.MigrationIntent != nil {
		m := migrationIntentResponse(*snap.MigrationIntent)
		resp.Migration = &m
	}
	return resp
}

func migrationIntentResponse(intent curve.MigrationIntent) models.MigrationIntentResponse {
	return models.MigrationIntentResponse{
		BaseAmount:  intent.BaseAmount.String(),
		QuoteAmount: intent.QuoteAmount.String(),
		FinalPrice:  intent.FinalPrice.String(),
	}
}

func swapResultResponse(result curve.SwapResult) models.SwapResultResponse {
	return models.SwapResultResponse{
		Direction: result.Direction.String(),
		AmountOut: result.AmountOut.String(),
		GrossUsed: result.GrossUsed.String(),
		Graduated: result.Graduated,
		Fees: models.FeeBreakdownResponse{
			Total:    result.Fees.Total.String(),
			L1:       result.Fees.L1.String(),
			L2:       result.Fees.L2.String(),
			L3:       result.Fees.L3.String(),
			Cashback: result.Fees.Cashback.String(),
			Creator:  result.Fees.Creator.String(),
			Protocol: result.Fees.Protocol.String(),
		},
	}
}
