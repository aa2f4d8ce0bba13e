package curve

import (
	"errors"
	"testing"

	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
)

func baseParams() NewConfigParams {
	return NewConfigParams{
		QuoteAssetID:        "quote",
		BaseAssetID:         "base",
		BaseDecimals:        9,
		QuoteDecimals:       18,
		InitialVirtualQuote: fixedpoint.FromUint64(30_000_000_000),
		InitialVirtualBase:  fixedpoint.FromUint64(1_073_000_000_000),
		InitialRealBase:     fixedpoint.FromUint64(793_100_000_000),
		GraduationBaseFloor: fixedpoint.FromUint64(10_000_000_000),
		GraduationQuoteCap:  fixedpoint.FromUint64(85_000_000_000),
		FeeSchedule: FeeSchedule{
			BaseFeeBps:         150,
			RefereeDiscountBps: 10,
			L1Bps:              30,
			L2Bps:              3,
			L3Bps:              2,
			CreatorBps:         50,
			CashbackBpsByTier:  []uint64{5, 8},
		},
	}
}

func TestNewConfigDerivesDecimalScale(t *testing.T) {
	cfg, err := NewConfig(baseParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// quote(18) - base(9) = 9 -> 10^9
	want := fixedpoint.FromUint64(1_000_000_000)
	if cfg.DecimalScale.Cmp(want) != 0 {
		t.Errorf("expected decimal_scale %s, got %s", want, cfg.DecimalScale)
	}
}

func TestNewConfigDecimalScaleOneWhenBaseNotSmaller(t *testing.T) {
	p := baseParams()
	p.BaseDecimals = 18
	p.QuoteDecimals = 18
	cfg, err := NewConfig(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DecimalScale.Cmp(fixedpoint.FromUint64(1)) != 0 {
		t.Errorf("expected decimal_scale 1, got %s", cfg.DecimalScale)
	}
}

func TestNewConfigRejectsReferralOrdering(t *testing.T) {
	p := baseParams()
	p.FeeSchedule.L1Bps, p.FeeSchedule.L2Bps = 2, 30 // l1 < l2
	if _, err := NewConfig(p); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewConfigRejectsOvercommittedFeeSchedule(t *testing.T) {
	p := baseParams()
	p.FeeSchedule.CreatorBps = 200 // pushes committed share above base_fee_bps
	if _, err := NewConfig(p); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewConfigRejectsNonDecreasingCashbackViolation(t *testing.T) {
	p := baseParams()
	p.FeeSchedule.CashbackBpsByTier = []uint64{8, 5}
	if _, err := NewConfig(p); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewConfigRejectsDecimalsOutOfRange(t *testing.T) {
	p := baseParams()
	p.BaseDecimals = 5
	if _, err := NewConfig(p); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for base_decimals=5, got %v", err)
	}

	p = baseParams()
	p.QuoteDecimals = 19
	if _, err := NewConfig(p); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for quote_decimals=19, got %v", err)
	}
}

func TestNewConfigRejectsZeroVirtualReserves(t *testing.T) {
	p := baseParams()
	p.InitialVirtualBase = fixedpoint.Zero
	if _, err := NewConfig(p); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewConfigRejectsFloorNotBelowInitialRealBase(t *testing.T) {
	p := baseParams()
	p.GraduationBaseFloor = p.InitialRealBase
	if _, err := NewConfig(p); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestInitialK(t *testing.T) {
	cfg, err := NewConfig(baseParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	k, err := cfg.InitialK()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := fixedpoint.CheckedMul(cfg.InitialVirtualQuote, cfg.InitialVirtualBase)
	if k.Cmp(want) != 0 {
		t.Errorf("expected %s, got %s", want, k)
	}
}
