package curve

import (
	"errors"
	"testing"

	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
)

func testConfig(t *testing.T) CurveConfig {
	t.Helper()
	cfg, err := NewConfig(NewConfigParams{
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
		CreatorID:      "creator-1",
		FeeCollectorID: "protocol-1",
	})
	if err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}
	return cfg
}

func TestNewStateInitialization(t *testing.T) {
	cfg := testConfig(t)
	s := NewState(cfg)

	if s.Status() != StatusActive {
		t.Errorf("expected Active, got %v", s.Status())
	}
	if s.VirtualQuote().Cmp(cfg.InitialVirtualQuote) != 0 {
		t.Errorf("virtual quote not initialized from config")
	}
	if s.RealBase().Cmp(cfg.InitialRealBase) != 0 {
		t.Errorf("real base not initialized from config")
	}
	if !s.RealQuote().IsZero() || !s.ProtocolFeeAccrued().IsZero() || !s.CreatorFeeAccrued().IsZero() {
		t.Errorf("expected zeroed accrual fields on a fresh curve")
	}
}

func TestCommitBuyUpdatesReservesAndAccruals(t *testing.T) {
	cfg := testConfig(t)
	s := NewState(cfg)

	netIn := fixedpoint.FromUint64(985_000_000_000_000_000)
	grossIn := fixedpoint.FromUint64(1_000_000_000_000_000_000)
	baseOut := fixedpoint.FromUint64(1_000_000)
	fees := FeeBreakdown{
		Total:    fixedpoint.FromUint64(15_000_000_000_000_000),
		Protocol: fixedpoint.FromUint64(9_500_000_000_000_000),
		Creator:  fixedpoint.FromUint64(5_000_000_000_000_000),
		Cashback: fixedpoint.FromUint64(500_000_000_000_000),
	}

	if err := s.CommitBuy(netIn, grossIn, baseOut, fees); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantVQ, _ := fixedpoint.CheckedAdd(cfg.InitialVirtualQuote, netIn)
	if s.VirtualQuote().Cmp(wantVQ) != 0 {
		t.Errorf("virtual_quote mismatch: want %s got %s", wantVQ, s.VirtualQuote())
	}
	wantVB, _ := fixedpoint.CheckedSub(cfg.InitialVirtualBase, baseOut)
	if s.VirtualBase().Cmp(wantVB) != 0 {
		t.Errorf("virtual_base mismatch: want %s got %s", wantVB, s.VirtualBase())
	}
	if s.RealQuote().Cmp(grossIn) != 0 {
		t.Errorf("real_quote mismatch: want %s got %s", grossIn, s.RealQuote())
	}
	wantRB, _ := fixedpoint.CheckedSub(cfg.InitialRealBase, baseOut)
	if s.RealBase().Cmp(wantRB) != 0 {
		t.Errorf("real_base mismatch: want %s got %s", wantRB, s.RealBase())
	}
	if s.ProtocolFeeAccrued().Cmp(fees.Protocol) != 0 {
		t.Errorf("protocol_fee_accrued mismatch")
	}
	if s.CreatorFeeAccrued().Cmp(fees.Creator) != 0 {
		t.Errorf("creator_fee_accrued mismatch")
	}
}

func TestCommitSellUpdatesReservesAndAccruals(t *testing.T) {
	cfg := testConfig(t)
	s := NewState(cfg)

	// Fund real_quote with a prior buy so the sell's net_out debit has
	// something to draw from.
	if err := s.CommitBuy(fixedpoint.FromUint64(985), fixedpoint.FromUint64(1000), fixedpoint.FromUint64(1),
		FeeBreakdown{Total: fixedpoint.FromUint64(15), Protocol: fixedpoint.FromUint64(15)}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	realQuoteBeforeSell := s.RealQuote()
	vqBeforeSell, vbBeforeSell, rbBeforeSell := s.VirtualQuote(), s.VirtualBase(), s.RealBase()

	baseIn := fixedpoint.FromUint64(1_000_000)
	grossOut := fixedpoint.FromUint64(27)
	netOut := fixedpoint.FromUint64(26)
	fees := FeeBreakdown{
		Total:    fixedpoint.FromUint64(1),
		Protocol: fixedpoint.FromUint64(1),
	}

	if err := s.CommitSell(baseIn, grossOut, netOut, fees); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantVB, _ := fixedpoint.CheckedAdd(vbBeforeSell, baseIn)
	if s.VirtualBase().Cmp(wantVB) != 0 {
		t.Errorf("virtual_base mismatch")
	}
	wantVQ, _ := fixedpoint.CheckedSub(vqBeforeSell, grossOut)
	if s.VirtualQuote().Cmp(wantVQ) != 0 {
		t.Errorf("virtual_quote mismatch")
	}
	wantRB, _ := fixedpoint.CheckedAdd(rbBeforeSell, baseIn)
	if s.RealBase().Cmp(wantRB) != 0 {
		t.Errorf("real_base mismatch")
	}
	wantRQ, _ := fixedpoint.CheckedSub(realQuoteBeforeSell, netOut)
	if s.RealQuote().Cmp(wantRQ) != 0 {
		t.Errorf("real_quote mismatch: want %s got %s", wantRQ, s.RealQuote())
	}
}

func TestLifecycleMonotonicity(t *testing.T) {
	cfg := testConfig(t)
	s := NewState(cfg)

	intent := MigrationIntent{
		BaseAmount:  cfg.GraduationBaseFloor,
		QuoteAmount: fixedpoint.FromUint64(1000),
		FinalPrice:  fixedpoint.FromUint64(1),
	}

	if err := s.Graduate(1234, intent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status() != StatusGraduated {
		t.Errorf("expected Graduated, got %v", s.Status())
	}
	if s.GraduationTimestamp() != 1234 {
		t.Errorf("expected timestamp 1234, got %d", s.GraduationTimestamp())
	}

	// Can't graduate twice.
	if err := s.Graduate(5678, intent); !errors.Is(err, ErrCurveClosed) {
		t.Errorf("expected ErrCurveClosed on double graduation, got %v", err)
	}

	if err := s.FinalizeMigration(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status() != StatusMigrated {
		t.Errorf("expected Migrated, got %v", s.Status())
	}

	if err := s.FinalizeMigration(); !errors.Is(err, ErrAlreadyMigrated) {
		t.Errorf("expected ErrAlreadyMigrated, got %v", err)
	}
}

func TestFinalizeMigrationBeforeGraduationFails(t *testing.T) {
	cfg := testConfig(t)
	s := NewState(cfg)

	if err := s.FinalizeMigration(); !errors.Is(err, ErrNotGraduated) {
		t.Errorf("expected ErrNotGraduated, got %v", err)
	}
}

func TestWithdrawNeutrality(t *testing.T) {
	cfg := testConfig(t)
	s := NewState(cfg)

	// Fund real_quote first via a buy commit so withdrawals have
	// something to draw from.
	netIn := fixedpoint.FromUint64(985)
	grossIn := fixedpoint.FromUint64(1000)
	baseOut := fixedpoint.FromUint64(1)
	fees := FeeBreakdown{Total: fixedpoint.FromUint64(15), Protocol: fixedpoint.FromUint64(10), Creator: fixedpoint.FromUint64(5)}
	if err := s.CommitBuy(netIn, grossIn, baseOut, fees); err != nil {
		t.Fatalf("setup: %v", err)
	}

	vqBefore, vbBefore := s.VirtualQuote(), s.VirtualBase()
	rqBefore := s.RealQuote()

	withdrawn, err := s.WithdrawProtocolFees()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withdrawn.Cmp(fees.Protocol) != 0 {
		t.Errorf("expected to withdraw %s, got %s", fees.Protocol, withdrawn)
	}
	wantRQ, _ := fixedpoint.CheckedSub(rqBefore, fees.Protocol)
	if s.RealQuote().Cmp(wantRQ) != 0 {
		t.Errorf("real_quote not debited by exactly the withdrawn amount")
	}
	if !s.ProtocolFeeAccrued().IsZero() {
		t.Errorf("expected protocol_fee_accrued to zero out")
	}
	if s.VirtualQuote().Cmp(vqBefore) != 0 || s.VirtualBase().Cmp(vbBefore) != 0 {
		t.Errorf("withdrawal must not alter virtual reserves")
	}
}
