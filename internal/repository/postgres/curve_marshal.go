package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/launchpad-amm/curveengine/pkg/curve"
)

func joinCashbackTiers(tiers []uint64) string {
	parts := make([]string, len(tiers))
	for i, t := range tiers {
		parts[i] = strconv.FormatUint(t, 10)
	}
	return strings.Join(parts, ",")
}

func splitCashbackTiers(s string) ([]uint64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	tiers := make([]uint64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cashback tier %q: %w", p, err)
		}
		tiers[i] = v
	}
	return tiers, nil
}

// toRow encodes a CurveConfig + fresh State into the row shape Create
// inserts. Only NewState-shaped rows go through this path — Save handles
// subsequent mutations.
func toRow(id uuid.UUID, cfg curve.CurveConfig, state curve.State) (curveRow, error) {
	dsHi, dsLo := hiLo(cfg.DecimalScale)
	ivqHi, ivqLo := hiLo(cfg.InitialVirtualQuote)
	ivbHi, ivbLo := hiLo(cfg.InitialVirtualBase)
	irbHi, irbLo := hiLo(cfg.InitialRealBase)
	gbfHi, gbfLo := hiLo(cfg.GraduationBaseFloor)
	gqcHi, gqcLo := hiLo(cfg.GraduationQuoteCap)

	vqHi, vqLo := hiLo(state.VirtualQuote())
	vbHi, vbLo := hiLo(state.VirtualBase())
	rqHi, rqLo := hiLo(state.RealQuote())
	rbHi, rbLo := hiLo(state.RealBase())
	pfHi, pfLo := hiLo(state.ProtocolFeeAccrued())
	cfaHi, cfaLo := hiLo(state.CreatorFeeAccrued())

	return curveRow{
		ID:             id,
		QuoteAssetID:   cfg.QuoteAssetID,
		BaseAssetID:    cfg.BaseAssetID,
		BaseDecimals:   cfg.BaseDecimals,
		QuoteDecimals:  cfg.QuoteDecimals,
		DecimalScaleHi: dsHi, DecimalScaleLo: dsLo,

		InitialVirtualQuoteHi: ivqHi, InitialVirtualQuoteLo: ivqLo,
		InitialVirtualBaseHi: ivbHi, InitialVirtualBaseLo: ivbLo,
		InitialRealBaseHi: irbHi, InitialRealBaseLo: irbLo,

		GraduationBaseFloorHi: gbfHi, GraduationBaseFloorLo: gbfLo,
		GraduationQuoteCapHi: gqcHi, GraduationQuoteCapLo: gqcLo,

		BaseFeeBps:         int64(cfg.FeeSchedule.BaseFeeBps),
		RefereeDiscountBps: int64(cfg.FeeSchedule.RefereeDiscountBps),
		L1Bps:              int64(cfg.FeeSchedule.L1Bps),
		L2Bps:              int64(cfg.FeeSchedule.L2Bps),
		L3Bps:              int64(cfg.FeeSchedule.L3Bps),
		CreatorBps:         int64(cfg.FeeSchedule.CreatorBps),
		CashbackBpsByTier:  joinCashbackTiers(cfg.FeeSchedule.CashbackBpsByTier),

		CreatorID:      cfg.CreatorID,
		FeeCollectorID: cfg.FeeCollectorID,

		VirtualQuoteHi: vqHi, VirtualQuoteLo: vqLo,
		VirtualBaseHi: vbHi, VirtualBaseLo: vbLo,
		RealQuoteHi: rqHi, RealQuoteLo: rqLo,
		RealBaseHi: rbHi, RealBaseLo: rbLo,

		ProtocolFeeAccruedHi: pfHi, ProtocolFeeAccruedLo: pfLo,
		CreatorFeeAccruedHi: cfaHi, CreatorFeeAccruedLo: cfaLo,

		Status: int16(state.Status()),
	}, nil
}

// fromRow decodes a stored row back into a CurveConfig and State.
func fromRow(row curveRow) (curve.CurveConfig, curve.State, error) {
	decimalScale, err := fromHiLo(row.DecimalScaleHi, row.DecimalScaleLo)
	if err != nil {
		return curve.CurveConfig{}, curve.State{}, fmt.Errorf("decimal_scale: %w", err)
	}
	initialVirtualQuote, err := fromHiLo(row.InitialVirtualQuoteHi, row.InitialVirtualQuoteLo)
	if err != nil {
		return curve.CurveConfig{}, curve.State{}, fmt.Errorf("initial_virtual_quote: %w", err)
	}
	initialVirtualBase, err := fromHiLo(row.InitialVirtualBaseHi, row.InitialVirtualBaseLo)
	if err != nil {
		return curve.CurveConfig{}, curve.State{}, fmt.Errorf("initial_virtual_base: %w", err)
	}
	initialRealBase, err := fromHiLo(row.InitialRealBaseHi, row.InitialRealBaseLo)
	if err != nil {
		return curve.CurveConfig{}, curve.State{}, fmt.Errorf("initial_real_base: %w", err)
	}
	graduationBaseFloor, err := fromHiLo(row.GraduationBaseFloorHi, row.GraduationBaseFloorLo)
	if err != nil {
		return curve.CurveConfig{}, curve.State{}, fmt.Errorf("graduation_base_floor: %w", err)
	}
	graduationQuoteCap, err := fromHiLo(row.GraduationQuoteCapHi, row.GraduationQuoteCapLo)
	if err != nil {
		return curve.CurveConfig{}, curve.State{}, fmt.Errorf("graduation_quote_cap: %w", err)
	}
	cashbackTiers, err := splitCashbackTiers(row.CashbackBpsByTier)
	if err != nil {
		return curve.CurveConfig{}, curve.State{}, err
	}

	cfg := curve.CurveConfig{
		QuoteAssetID:        row.QuoteAssetID,
		BaseAssetID:         row.BaseAssetID,
		BaseDecimals:        row.BaseDecimals,
		QuoteDecimals:       row.QuoteDecimals,
		DecimalScale:        decimalScale,
		InitialVirtualQuote: initialVirtualQuote,
		InitialVirtualBase:  initialVirtualBase,
		InitialRealBase:     initialRealBase,
		GraduationBaseFloor: graduationBaseFloor,
		GraduationQuoteCap:  graduationQuoteCap,
		FeeSchedule: curve.FeeSchedule{
			BaseFeeBps:         uint64(row.BaseFeeBps),
			RefereeDiscountBps: uint64(row.RefereeDiscountBps),
			L1Bps:              uint64(row.L1Bps),
			L2Bps:              uint64(row.L2Bps),
			L3Bps:              uint64(row.L3Bps),
			CreatorBps:         uint64(row.CreatorBps),
			CashbackBpsByTier:  cashbackTiers,
		},
		CreatorID:      row.CreatorID,
		FeeCollectorID: row.FeeCollectorID,
	}

	virtualQuote, err := fromHiLo(row.VirtualQuoteHi, row.VirtualQuoteLo)
	if err != nil {
		return curve.CurveConfig{}, curve.State{}, fmt.Errorf("virtual_quote: %w", err)
	}
	virtualBase, err := fromHiLo(row.VirtualBaseHi, row.VirtualBaseLo)
	if err != nil {
		return curve.CurveConfig{}, curve.State{}, fmt.Errorf("virtual_base: %w", err)
	}
	realQuote, err := fromHiLo(row.RealQuoteHi, row.RealQuoteLo)
	if err != nil {
		return curve.CurveConfig{}, curve.State{}, fmt.Errorf("real_quote: %w", err)
	}
	realBase, err := fromHiLo(row.RealBaseHi, row.RealBaseLo)
	if err != nil {
		return curve.CurveConfig{}, curve.State{}, fmt.Errorf("real_base: %w", err)
	}
	protocolFeeAccrued, err := fromHiLo(row.ProtocolFeeAccruedHi, row.ProtocolFeeAccruedLo)
	if err != nil {
		return curve.CurveConfig{}, curve.State{}, fmt.Errorf("protocol_fee_accrued: %w", err)
	}
	creatorFeeAccrued, err := fromHiLo(row.CreatorFeeAccruedHi, row.CreatorFeeAccruedLo)
	if err != nil {
		return curve.CurveConfig{}, curve.State{}, fmt.Errorf("creator_fee_accrued: %w", err)
	}

	snap := curve.Snapshot{
		VirtualQuote:        virtualQuote,
		VirtualBase:         virtualBase,
		RealQuote:           realQuote,
		RealBase:            realBase,
		ProtocolFeeAccrued:  protocolFeeAccrued,
		CreatorFeeAccrued:   creatorFeeAccrued,
		Status:              curve.Status(row.Status),
		GraduationTimestamp: uint64(row.GraduationTimestamp.Int64),
	}

	if row.MigrationBaseAmountHi.Valid {
		baseAmount, err := fromHiLo(row.MigrationBaseAmountHi.Int64, row.MigrationBaseAmountLo.Int64)
		if err != nil {
			return curve.CurveConfig{}, curve.State{}, fmt.Errorf("migration_base_amount: %w", err)
		}
		quoteAmount, err := fromHiLo(row.MigrationQuoteAmountHi.Int64, row.MigrationQuoteAmountLo.Int64)
		if err != nil {
			return curve.CurveConfig{}, curve.State{}, fmt.Errorf("migration_quote_amount: %w", err)
		}
		finalPrice, err := fromHiLo(row.MigrationFinalPriceHi.Int64, row.MigrationFinalPriceLo.Int64)
		if err != nil {
			return curve.CurveConfig{}, curve.State{}, fmt.Errorf("migration_final_price: %w", err)
		}
		snap.MigrationIntent = &curve.MigrationIntent{
			BaseAmount:  baseAmount,
			QuoteAmount: quoteAmount,
			FinalPrice:  finalPrice,
		}
	}

	return cfg, curve.FromSnapshot(snap), nil
}
