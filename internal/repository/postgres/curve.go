package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/launchpad-amm/curveengine/internal/repository/interfaces"
	"github.com/launchpad-amm/curveengine/pkg/curve"
	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
)

// curveRepository is the Postgres-backed interfaces.CurveRepository.
// Every 128-bit reserve/accrual field is split into a pair of signed
// 64-bit columns (hi, lo) via fixedpoint.Uint128.Hi64/Lo64 — Postgres has
// no native 128-bit integer type, and storing a reserve as NUMERIC or a
// single BIGINT has been the recurring source of silent truncation the
// persisted-state-layout note in spec §6 warns about.
type curveRepository struct {
	db *sqlx.DB
}

// NewCurveRepository builds a Postgres-backed CurveRepository.
func NewCurveRepository(db *sqlx.DB) interfaces.CurveRepository {
	return &curveRepository{db: db}
}

// curveRow mirrors the curves table's column layout 1:1 for sqlx
// scanning; config and state fields are interleaved since both live in
// one row per curve.
type curveRow struct {
	ID uuid.UUID `db:"id"`

	QuoteAssetID  string `db:"quote_asset_id"`
	BaseAssetID   string `db:"base_asset_id"`
	BaseDecimals  int    `db:"base_decimals"`
	QuoteDecimals int    `db:"quote_decimals"`
	DecimalScaleHi int64 `db:"decimal_scale_hi"`
	DecimalScaleLo int64 `db:"decimal_scale_lo"`

	InitialVirtualQuoteHi int64 `db:"initial_virtual_quote_hi"`
	InitialVirtualQuoteLo int64 `db:"initial_virtual_quote_lo"`
	InitialVirtualBaseHi  int64 `db:"initial_virtual_base_hi"`
	InitialVirtualBaseLo  int64 `db:"initial_virtual_base_lo"`
	InitialRealBaseHi     int64 `db:"initial_real_base_hi"`
	InitialRealBaseLo     int64 `db:"initial_real_base_lo"`

	GraduationBaseFloorHi int64 `db:"graduation_base_floor_hi"`
	GraduationBaseFloorLo int64 `db:"graduation_base_floor_lo"`
	GraduationQuoteCapHi  int64 `db:"graduation_quote_cap_hi"`
	GraduationQuoteCapLo  int64 `db:"graduation_quote_cap_lo"`

	BaseFeeBps         int64  `db:"base_fee_bps"`
	RefereeDiscountBps int64  `db:"referee_discount_bps"`
	L1Bps              int64  `db:"l1_bps"`
	L2Bps              int64  `db:"l2_bps"`
	L3Bps              int64  `db:"l3_bps"`
	CreatorBps         int64  `db:"creator_bps"`
	CashbackBpsByTier  string `db:"cashback_bps_by_tier"` // comma-joined, e.g. "5,8,12"

	CreatorID      string `db:"creator_id"`
	FeeCollectorID string `db:"fee_collector_id"`

	VirtualQuoteHi int64 `db:"virtual_quote_hi"`
	VirtualQuoteLo int64 `db:"virtual_quote_lo"`
	VirtualBaseHi  int64 `db:"virtual_base_hi"`
	VirtualBaseLo  int64 `db:"virtual_base_lo"`
	RealQuoteHi    int64 `db:"real_quote_hi"`
	RealQuoteLo    int64 `db:"real_quote_lo"`
	RealBaseHi     int64 `db:"real_base_hi"`
	RealBaseLo     int64 `db:"real_base_lo"`

	ProtocolFeeAccruedHi int64 `db:"protocol_fee_accrued_hi"`
	ProtocolFeeAccruedLo int64 `db:"protocol_fee_accrued_lo"`
	CreatorFeeAccruedHi  int64 `db:"creator_fee_accrued_hi"`
	CreatorFeeAccruedLo  int64 `db:"creator_fee_accrued_lo"`

	Status              int16         `db:"status"`
	GraduationTimestamp sql.NullInt64 `db:"graduation_timestamp"`

	MigrationBaseAmountHi  sql.NullInt64 `db:"migration_base_amount_hi"`
	MigrationBaseAmountLo  sql.NullInt64 `db:"migration_base_amount_lo"`
	MigrationQuoteAmountHi sql.NullInt64 `db:"migration_quote_amount_hi"`
	MigrationQuoteAmountLo sql.NullInt64 `db:"migration_quote_amount_lo"`
	MigrationFinalPriceHi  sql.NullInt64 `db:"migration_final_price_hi"`
	MigrationFinalPriceLo  sql.NullInt64 `db:"migration_final_price_lo"`
}

// hiLo splits a Uint128 into its high/low 64-bit words for storage.
func hiLo(v fixedpoint.Uint128) (int64, int64) {
	return int64(v.Hi64()), int64(v.Lo64())
}

// fromHiLo reassembles a Uint128 from stored high/low words.
func fromHiLo(hi, lo int64) (fixedpoint.Uint128, error) {
	return fixedpoint.FromWords(uint64(hi), uint64(lo))
}

func (r *curveRepository) Create(ctx context.Context, cfg curve.CurveConfig) (string, error) {
	id := uuid.New()
	state := curve.NewState(cfg)
	row, err := toRow(id, cfg, state)
	if err != nil {
		return "", fmt.Errorf("encode curve row: %w", err)
	}

	const query = `
		INSERT INTO curves (
			id, quote_asset_id, base_asset_id, base_decimals, quote_decimals,
			decimal_scale_hi, decimal_scale_lo,
			initial_virtual_quote_hi, initial_virtual_quote_lo,
			initial_virtual_base_hi, initial_virtual_base_lo,
			initial_real_base_hi, initial_real_base_lo,
			graduation_base_floor_hi, graduation_base_floor_lo,
			graduation_quote_cap_hi, graduation_quote_cap_lo,
			base_fee_bps, referee_discount_bps, l1_bps, l2_bps, l3_bps, creator_bps,
			cashback_bps_by_tier, creator_id, fee_collector_id,
			virtual_quote_hi, virtual_quote_lo, virtual_base_hi, virtual_base_lo,
			real_quote_hi, real_quote_lo, real_base_hi, real_base_lo,
			protocol_fee_accrued_hi, protocol_fee_accrued_lo,
			creator_fee_accrued_hi, creator_fee_accrued_lo,
			status, graduation_timestamp,
			migration_base_amount_hi, migration_base_amount_lo,
			migration_quote_amount_hi, migration_quote_amount_lo,
			migration_final_price_hi, migration_final_price_lo
		) VALUES (
			:id, :quote_asset_id, :base_asset_id, :base_decimals, :quote_decimals,
			:decimal_scale_hi, :decimal_scale_lo,
			:initial_virtual_quote_hi, :initial_virtual_quote_lo,
			:initial_virtual_base_hi, :initial_virtual_base_lo,
			:initial_real_base_hi, :initial_real_base_lo,
			:graduation_base_floor_hi, :graduation_base_floor_lo,
			:graduation_quote_cap_hi, :graduation_quote_cap_lo,
			:base_fee_bps, :referee_discount_bps, :l1_bps, :l2_bps, :l3_bps, :creator_bps,
			:cashback_bps_by_tier, :creator_id, :fee_collector_id,
			:virtual_quote_hi, :virtual_quote_lo, :virtual_base_hi, :virtual_base_lo,
			:real_quote_hi, :real_quote_lo, :real_base_hi, :real_base_lo,
			:protocol_fee_accrued_hi, :protocol_fee_accrued_lo,
			:creator_fee_accrued_hi, :creator_fee_accrued_lo,
			:status, :graduation_timestamp,
			:migration_base_amount_hi, :migration_base_amount_lo,
			:migration_quote_amount_hi, :migration_quote_amount_lo,
			:migration_final_price_hi, :migration_final_price_lo
		)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return "", fmt.Errorf("failed to create curve: %w", err)
	}
	return id.String(), nil
}

func (r *curveRepository) Load(ctx context.Context, curveID string) (curve.CurveConfig, curve.State, error) {
	id, err := uuid.Parse(curveID)
	if err != nil {
		return curve.CurveConfig{}, curve.State{}, fmt.Errorf("invalid curve id: %w", err)
	}

	const query = `SELECT * FROM curves WHERE id = $1`
	var row curveRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return curve.CurveConfig{}, curve.State{}, fmt.Errorf("curve not found: %s", curveID)
		}
		return curve.CurveConfig{}, curve.State{}, fmt.Errorf("failed to load curve: %w", err)
	}

	return fromRow(row)
}

func (r *curveRepository) Save(ctx context.Context, curveID string, state curve.State) error {
	id, err := uuid.Parse(curveID)
	if err != nil {
		return fmt.Errorf("invalid curve id: %w", err)
	}

	vqHi, vqLo := hiLo(state.VirtualQuote())
	vbHi, vbLo := hiLo(state.VirtualBase())
	rqHi, rqLo := hiLo(state.RealQuote())
	rbHi, rbLo := hiLo(state.RealBase())
	pfHi, pfLo := hiLo(state.ProtocolFeeAccrued())
	cfHi, cfLo := hiLo(state.CreatorFeeAccrued())

	var gradTs sql.NullInt64
	if state.Status() != curve.StatusActive {
		gradTs = sql.NullInt64{Int64: int64(state.GraduationTimestamp()), Valid: true}
	}

	var mBaseHi, mBaseLo, mQuoteHi, mQuoteLo, mPriceHi, mPriceLo sql.NullInt64
	if intent := state.MigrationIntent(); intent != nil {
		bh, bl := hiLo(intent.BaseAmount)
		qh, ql := hiLo(intent.QuoteAmount)
		ph, pl := hiLo(intent.FinalPrice)
		mBaseHi, mBaseLo = sql.NullInt64{Int64: bh, Valid: true}, sql.NullInt64{Int64: bl, Valid: true}
		mQuoteHi, mQuoteLo = sql.NullInt64{Int64: qh, Valid: true}, sql.NullInt64{Int64: ql, Valid: true}
		mPriceHi, mPriceLo = sql.NullInt64{Int64: ph, Valid: true}, sql.NullInt64{Int64: pl, Valid: true}
	}

	const query = `
		UPDATE curves SET
			virtual_quote_hi = $2, virtual_quote_lo = $3,
			virtual_base_hi = $4, virtual_base_lo = $5,
			real_quote_hi = $6, real_quote_lo = $7,
			real_base_hi = $8, real_base_lo = $9,
			protocol_fee_accrued_hi = $10, protocol_fee_accrued_lo = $11,
			creator_fee_accrued_hi = $12, creator_fee_accrued_lo = $13,
			status = $14, graduation_timestamp = $15,
			migration_base_amount_hi = $16, migration_base_amount_lo = $17,
			migration_quote_amount_hi = $18, migration_quote_amount_lo = $19,
			migration_final_price_hi = $20, migration_final_price_lo = $21
		WHERE id = $1`

	_, err = r.db.ExecContext(ctx, query, id,
		vqHi, vqLo, vbHi, vbLo, rqHi, rqLo, rbHi, rbLo,
		pfHi, pfLo, cfHi, cfLo,
		int16(state.Status()), gradTs,
		mBaseHi, mBaseLo, mQuoteHi, mQuoteLo, mPriceHi, mPriceLo,
	)
	if err != nil {
		return fmt.Errorf("failed to save curve state: %w", err)
	}
	return nil
}
