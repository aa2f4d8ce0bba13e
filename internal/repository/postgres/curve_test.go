package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/launchpad-amm/curveengine/pkg/curve"
	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
)

func testConfig(t *testing.T) curve.CurveConfig {
	t.Helper()
	cfg, err := curve.NewConfig(curve.NewConfigParams{
		QuoteAssetID:        "quote",
		BaseAssetID:         "base",
		BaseDecimals:        9,
		QuoteDecimals:       18,
		InitialVirtualQuote: fixedpoint.FromUint64(30_000_000_000),
		InitialVirtualBase:  fixedpoint.FromUint64(1_073_000_000_000),
		InitialRealBase:     fixedpoint.FromUint64(793_100_000_000),
		GraduationBaseFloor: fixedpoint.FromUint64(10_000_000_000),
		GraduationQuoteCap:  fixedpoint.FromUint64(85_000_000_000),
		FeeSchedule: curve.FeeSchedule{
			BaseFeeBps: 150,
			L1Bps:      30, L2Bps: 3, L3Bps: 2,
			CreatorBps:        50,
			CashbackBpsByTier: []uint64{5, 8},
		},
		CreatorID:      "creator-1",
		FeeCollectorID: "protocol-1",
	})
	require.NoError(t, err)
	return cfg
}

// allRowColumns lists the curves table's column layout, matching curveRow's
// db tags, for use with sqlmock.NewRows.
var allRowColumns = []string{
	"id", "quote_asset_id", "base_asset_id", "base_decimals", "quote_decimals",
	"decimal_scale_hi", "decimal_scale_lo",
	"initial_virtual_quote_hi", "initial_virtual_quote_lo",
	"initial_virtual_base_hi", "initial_virtual_base_lo",
	"initial_real_base_hi", "initial_real_base_lo",
	"graduation_base_floor_hi", "graduation_base_floor_lo",
	"graduation_quote_cap_hi", "graduation_quote_cap_lo",
	"base_fee_bps", "referee_discount_bps", "l1_bps", "l2_bps", "l3_bps", "creator_bps",
	"cashback_bps_by_tier", "creator_id", "fee_collector_id",
	"virtual_quote_hi", "virtual_quote_lo", "virtual_base_hi", "virtual_base_lo",
	"real_quote_hi", "real_quote_lo", "real_base_hi", "real_base_lo",
	"protocol_fee_accrued_hi", "protocol_fee_accrued_lo",
	"creator_fee_accrued_hi", "creator_fee_accrued_lo",
	"status", "graduation_timestamp",
	"migration_base_amount_hi", "migration_base_amount_lo",
	"migration_quote_amount_hi", "migration_quote_amount_lo",
	"migration_final_price_hi", "migration_final_price_lo",
}

func rowValuesFor(id uuid.UUID, cfg curve.CurveConfig, state curve.State) []driverValue {
	row, err := toRow(id, cfg, state)
	if err != nil {
		panic(err)
	}
	return []driverValue{
		row.ID, row.QuoteAssetID, row.BaseAssetID, row.BaseDecimals, row.QuoteDecimals,
		row.DecimalScaleHi, row.DecimalScaleLo,
		row.InitialVirtualQuoteHi, row.InitialVirtualQuoteLo,
		row.InitialVirtualBaseHi, row.InitialVirtualBaseLo,
		row.InitialRealBaseHi, row.InitialRealBaseLo,
		row.GraduationBaseFloorHi, row.GraduationBaseFloorLo,
		row.GraduationQuoteCapHi, row.GraduationQuoteCapLo,
		row.BaseFeeBps, row.RefereeDiscountBps, row.L1Bps, row.L2Bps, row.L3Bps, row.CreatorBps,
		row.CashbackBpsByTier, row.CreatorID, row.FeeCollectorID,
		row.VirtualQuoteHi, row.VirtualQuoteLo, row.VirtualBaseHi, row.VirtualBaseLo,
		row.RealQuoteHi, row.RealQuoteLo, row.RealBaseHi, row.RealBaseLo,
		row.ProtocolFeeAccruedHi, row.ProtocolFeeAccruedLo,
		row.CreatorFeeAccruedHi, row.CreatorFeeAccruedLo,
		row.Status, row.GraduationTimestamp,
		row.MigrationBaseAmountHi, row.MigrationBaseAmountLo,
		row.MigrationQuoteAmountHi, row.MigrationQuoteAmountLo,
		row.MigrationFinalPriceHi, row.MigrationFinalPriceLo,
	}
}

// driverValue is a tiny alias so rowValuesFor can build a single []any
// slice while keeping call sites readable.
type driverValue = interface{}

func TestLoadRoundTripsReserveWordsNear2To120(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewCurveRepository(sqlxDB)

	cfg := testConfig(t)
	state := curve.NewState(cfg)

	// A reserve magnitude close to 2^120 exercises the hi-word path; a
	// flat 64-bit value would never catch a hi/lo swap or truncation bug.
	big120, err := fixedpoint.FromWords(0x0F00_0000_0000_0000, 0x1)
	require.NoError(t, err)
	fees := curve.FeeBreakdown{Total: fixedpoint.FromUint64(0)}
	require.NoError(t, state.CommitBuy(big120, big120, fixedpoint.FromUint64(1), fees))

	id := uuid.New()
	values := rowValuesFor(id, cfg, state)
	rows := sqlmock.NewRows(allRowColumns).AddRow(values...)

	mock.ExpectQuery("SELECT \\* FROM curves WHERE id").WithArgs(id).WillReturnRows(rows)

	loadedCfg, loadedState, err := repo.Load(context.Background(), id.String())
	require.NoError(t, err)

	if loadedState.VirtualQuote().Cmp(state.VirtualQuote()) != 0 {
		t.Errorf("virtual_quote did not round-trip: want %s got %s", state.VirtualQuote(), loadedState.VirtualQuote())
	}
	if loadedCfg.InitialVirtualQuote.Cmp(cfg.InitialVirtualQuote) != 0 {
		t.Errorf("initial_virtual_quote did not round-trip")
	}
}

func TestLoadNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewCurveRepository(sqlxDB)

	id := uuid.New()
	mock.ExpectQuery("SELECT \\* FROM curves WHERE id").WithArgs(id).WillReturnRows(sqlmock.NewRows(allRowColumns))

	_, _, err = repo.Load(context.Background(), id.String())
	require.Error(t, err)
	require.Contains(t, err.Error(), "curve not found")
}

func TestSaveUpdatesMutableFieldsOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewCurveRepository(sqlxDB)

	cfg := testConfig(t)
	state := curve.NewState(cfg)
	id := uuid.New()

	mock.ExpectExec("UPDATE curves SET").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), id.String(), state))
	require.NoError(t, mock.ExpectationsWereMet())
}
