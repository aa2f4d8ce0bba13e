// Package trading implements TradingService (spec §4.5): the orchestration
// that turns a caller's swap request into a committed curve mutation,
// fee accrual, and (on threshold crossing) a graduation event.
package trading

import (
	"context"
	"fmt"

	"github.com/launchpad-amm/curveengine/internal/collaborators"
	"github.com/launchpad-amm/curveengine/internal/curvelock"
	"github.com/launchpad-amm/curveengine/internal/graduation"
	"github.com/launchpad-amm/curveengine/internal/repository/interfaces"
	"github.com/launchpad-amm/curveengine/pkg/curve"
	"github.com/launchpad-amm/curveengine/pkg/curvemath"
	"github.com/launchpad-amm/curveengine/pkg/feeengine"
	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
)

// Service orchestrates swaps and fee withdrawals against a repository of
// curves, serializing all operations on the same curve ID (spec §5:
// single-writer per curve) while leaving distinct curves fully
// parallelizable.
type Service struct {
	repo    interfaces.CurveRepository
	ledger  collaborators.RewardsLedger
	assets  collaborators.AssetTransfer
	coord   *graduation.Coordinator
	locks   *curvelock.Registry
	nextSeq func(curveID string) uint64
}

// New builds a Service against its collaborators. nextSeq supplies the
// monotonically increasing sequence number RewardsLedger.Record requires
// for idempotency; cmd/server passes a process-local SequenceGenerator,
// tests may use a simple counter. assets may
// be nil, in which case committed swaps mutate curve reserves without
// moving any off-curve custody — useful for tests that only exercise curve
// math.
func New(repo interfaces.CurveRepository, ledger collaborators.RewardsLedger, assets collaborators.AssetTransfer, coord *graduation.Coordinator, locks *curvelock.Registry, nextSeq func(curveID string) uint64) *Service {
	return &Service{repo: repo, ledger: ledger, assets: assets, coord: coord, locks: locks, nextSeq: nextSeq}
}

// settle moves amountIn of assetIn from trader into escrow and amountOut of
// assetOut from escrow to trader. Either leg failing surfaces as
// curve.ErrSettlementFailed (spec §6) and aborts the swap before its state
// mutation is persisted.
func (s *Service) settle(ctx context.Context, trader, assetIn string, amountIn fixedpoint.Uint128, assetOut string, amountOut fixedpoint.Uint128) error {
	if s.assets == nil {
		return nil
	}
	if err := s.assets.Debit(ctx, trader, assetIn, amountIn); err != nil {
		return fmt.Errorf("%w: debit %s: %v", curve.ErrSettlementFailed, assetIn, err)
	}
	if err := s.assets.Credit(ctx, trader, assetOut, amountOut); err != nil {
		return fmt.Errorf("%w: credit %s: %v", curve.ErrSettlementFailed, assetOut, err)
	}
	return nil
}

// CreateCurve validates and persists a new curve, returning its ID (spec
// §6 "create_curve").
func (s *Service) CreateCurve(ctx context.Context, cfg curve.CurveConfig) (string, error) {
	return s.repo.Create(ctx, cfg)
}

// GetState returns a curve's current snapshot (spec §6 "get_state").
func (s *Service) GetState(ctx context.Context, curveID string) (curve.Snapshot, error) {
	_, state, err := s.repo.Load(ctx, curveID)
	if err != nil {
		return curve.Snapshot{}, err
	}
	return state.Snapshot(), nil
}

// SwapBuy executes a quote->base trade (spec §4.5 "Buy algorithm").
func (s *Service) SwapBuy(ctx context.Context, curveID, trader string, amountGross, minOut fixedpoint.Uint128, tc curve.TradeContext) (curve.SwapResult, error) {
	var result curve.SwapResult
	err := s.locks.WithLock(curveID, func() error {
		cfg, state, err := s.repo.Load(ctx, curveID)
		if err != nil {
			return err
		}
		result, err = s.executeBuy(ctx, curveID, cfg, &state, trader, amountGross, minOut, tc, true)
		if err != nil {
			return err
		}
		return s.repo.Save(ctx, curveID, state)
	})
	return result, err
}

// executeBuy computes (and, if commit is true, applies) a buy. commit is
// false only for PreviewSwap, which must derive bit-identical amounts and
// fees without mutating state, marking graduation, or notifying the
// ledger (spec §6 "preview_swap ... pure").
func (s *Service) executeBuy(ctx context.Context, curveID string, cfg curve.CurveConfig, state *curve.State, trader string, amountGross, minOut fixedpoint.Uint128, tc curve.TradeContext, commit bool) (curve.SwapResult, error) {
	if state.Status() != curve.StatusActive {
		return curve.SwapResult{}, curve.ErrCurveClosed
	}
	if amountGross.IsZero() {
		return curve.SwapResult{}, curve.ErrInvalidAmount
	}

	if commit {
		tc.CashbackTier = s.tierOf(ctx, trader)
	}

	fees, err := feeengine.Compute(amountGross, cfg.FeeSchedule, tc)
	if err != nil {
		return curve.SwapResult{}, err
	}
	amountNet, err := fixedpoint.CheckedSub(amountGross, fees.Total)
	if err != nil {
		return curve.SwapResult{}, fmt.Errorf("%w: amount_net underflow: %v", curve.ErrMathOverflow, err)
	}

	baseOutPreview, _, _, err := curvemath.Buy(state.VirtualQuote(), state.VirtualBase(), amountNet)
	if err != nil {
		return curve.SwapResult{}, fmt.Errorf("%w: %v", curve.ErrMathOverflow, err)
	}

	maxBaseOut, err := fixedpoint.CheckedSub(state.RealBase(), cfg.GraduationBaseFloor)
	if err != nil {
		return curve.SwapResult{}, fmt.Errorf("%w: real_base below graduation_base_floor: %v", curve.ErrMathOverflow, err)
	}

	graduated := false
	netIn, grossIn, baseOut := amountNet, amountGross, baseOutPreview

	if baseOutPreview.Cmp(maxBaseOut) >= 0 {
		kInitial, err := cfg.InitialK()
		if err != nil {
			return curve.SwapResult{}, err
		}
		effectiveFeeBps := cfg.FeeSchedule.BaseFeeBps
		if tc.HasReferrer() {
			effectiveFeeBps -= cfg.FeeSchedule.RefereeDiscountBps
		}
		solved, err := curvemath.SolveGraduationCap(curvemath.GraduationSolverInput{
			Vq:                 state.VirtualQuote(),
			Vb:                 state.VirtualBase(),
			RealBase:           state.RealBase(),
			GraduationFloor:    cfg.GraduationBaseFloor,
			KInitial:           kInitial,
			AmountNetRequested: amountNet,
			EffectiveFeeBps:    effectiveFeeBps,
		})
		if err != nil {
			return curve.SwapResult{}, err
		}
		if solved.Graduates {
			fees, err = feeengine.Compute(solved.AmountGrossCap, cfg.FeeSchedule, tc)
			if err != nil {
				return curve.SwapResult{}, err
			}
			netIn, grossIn, baseOut = solved.AmountNetCap, solved.AmountGrossCap, solved.MaxBaseOut
			graduated = true
		}
	}

	if baseOut.Cmp(minOut) < 0 {
		return curve.SwapResult{}, curve.ErrSlippageExceeded
	}

	if !commit {
		return curve.SwapResult{
			Direction: curve.DirectionBuy,
			AmountOut: baseOut,
			GrossUsed: grossIn,
			Fees:      fees,
			Graduated: graduated,
		}, nil
	}

	if err := state.CommitBuy(netIn, grossIn, baseOut, fees); err != nil {
		return curve.SwapResult{}, err
	}

	if err := s.settle(ctx, trader, cfg.QuoteAssetID, grossIn, cfg.BaseAssetID, baseOut); err != nil {
		return curve.SwapResult{}, err
	}

	if graduated {
		if err := s.coord.MarkGraduated(state, cfg); err != nil {
			return curve.SwapResult{}, err
		}
	}

	s.notifyLedger(ctx, curveID, trader, grossIn, fees, cfg, tc)

	return curve.SwapResult{
		Direction: curve.DirectionBuy,
		AmountOut: baseOut,
		GrossUsed: grossIn,
		Fees:      fees,
		Graduated: graduated,
	}, nil
}

// SwapSell executes a base->quote trade (spec §4.5 "Sell algorithm").
// Sells never graduate.
func (s *Service) SwapSell(ctx context.Context, curveID, trader string, amountIn, minOut fixedpoint.Uint128, tc curve.TradeContext) (curve.SwapResult, error) {
	var result curve.SwapResult
	err := s.locks.WithLock(curveID, func() error {
		cfg, state, err := s.repo.Load(ctx, curveID)
		if err != nil {
			return err
		}
		result, err = s.executeSell(ctx, curveID, cfg, &state, trader, amountIn, minOut, tc, true)
		if err != nil {
			return err
		}
		return s.repo.Save(ctx, curveID, state)
	})
	return result, err
}

// executeSell is the sell-side counterpart of executeBuy; see its commit
// parameter doc.
func (s *Service) executeSell(ctx context.Context, curveID string, cfg curve.CurveConfig, state *curve.State, trader string, amountIn, minOut fixedpoint.Uint128, tc curve.TradeContext, commit bool) (curve.SwapResult, error) {
	if state.Status() != curve.StatusActive {
		return curve.SwapResult{}, curve.ErrCurveClosed
	}
	if amountIn.IsZero() {
		return curve.SwapResult{}, curve.ErrInvalidAmount
	}

	quoteGross, _, _, err := curvemath.Sell(state.VirtualQuote(), state.VirtualBase(), amountIn)
	if err != nil {
		return curve.SwapResult{}, fmt.Errorf("%w: %v", curve.ErrMathOverflow, err)
	}

	if commit {
		tc.CashbackTier = s.tierOf(ctx, trader)
	}

	fees, err := feeengine.Compute(quoteGross, cfg.FeeSchedule, tc)
	if err != nil {
		return curve.SwapResult{}, err
	}
	quoteNet, err := fixedpoint.CheckedSub(quoteGross, fees.Total)
	if err != nil {
		return curve.SwapResult{}, fmt.Errorf("%w: quote_net underflow: %v", curve.ErrMathOverflow, err)
	}
	if quoteNet.Cmp(minOut) < 0 {
		return curve.SwapResult{}, curve.ErrSlippageExceeded
	}

	if !commit {
		return curve.SwapResult{
			Direction: curve.DirectionSell,
			AmountOut: quoteNet,
			GrossUsed: quoteGross,
			Fees:      fees,
			Graduated: false,
		}, nil
	}

	if err := state.CommitSell(amountIn, quoteGross, quoteNet, fees); err != nil {
		return curve.SwapResult{}, err
	}

	if err := s.settle(ctx, trader, cfg.BaseAssetID, amountIn, cfg.QuoteAssetID, quoteNet); err != nil {
		return curve.SwapResult{}, err
	}

	s.notifyLedger(ctx, curveID, trader, quoteGross, fees, cfg, tc)

	return curve.SwapResult{
		Direction: curve.DirectionSell,
		AmountOut: quoteNet,
		GrossUsed: quoteGross,
		Fees:      fees,
		Graduated: false,
	}, nil
}

// PreviewSwap computes what SwapBuy/SwapSell would return from the
// curve's current state, without mutating or persisting anything, through
// the same executeBuy/executeSell path. The cashback tier is always 0, as a
// preview carries no trader identity: for a trader whose ledger tier is
// above 0 the Cashback and Protocol shares differ from the committed swap,
// while AmountOut, GrossUsed and Fees.Total are the same. min_out is not
// checked.
func (s *Service) PreviewSwap(ctx context.Context, curveID string, direction curve.Direction, amount fixedpoint.Uint128, tc curve.TradeContext) (curve.SwapResult, error) {
	tc.CashbackTier = 0 // preview has no trader identity; always tier 0, matching tierOf's no-trader default
	var result curve.SwapResult
	err := s.locks.WithLock(curveID, func() error {
		cfg, state, err := s.repo.Load(ctx, curveID)
		if err != nil {
			return err
		}
		switch direction {
		case curve.DirectionBuy:
			result, err = s.executeBuy(ctx, curveID, cfg, &state, "", amount, fixedpoint.Zero, tc, false)
		case curve.DirectionSell:
			result, err = s.executeSell(ctx, curveID, cfg, &state, "", amount, fixedpoint.Zero, tc, false)
		default:
			err = fmt.Errorf("%w: unknown direction", curve.ErrInvalidAmount)
		}
		return err
	})
	return result, err
}

// WithdrawProtocolFees claims the curve's accrued protocol fees (spec §6
// "withdraw_protocol_fees").
func (s *Service) WithdrawProtocolFees(ctx context.Context, curveID string) (fixedpoint.Uint128, error) {
	var amount fixedpoint.Uint128
	err := s.locks.WithLock(curveID, func() error {
		_, state, err := s.repo.Load(ctx, curveID)
		if err != nil {
			return err
		}
		amount, err = state.WithdrawProtocolFees()
		if err != nil {
			return err
		}
		return s.repo.Save(ctx, curveID, state)
	})
	return amount, err
}

// WithdrawCreatorFees claims the curve's accrued creator fees (spec §6
// "withdraw_creator_fees").
func (s *Service) WithdrawCreatorFees(ctx context.Context, curveID string) (fixedpoint.Uint128, error) {
	var amount fixedpoint.Uint128
	err := s.locks.WithLock(curveID, func() error {
		_, state, err := s.repo.Load(ctx, curveID)
		if err != nil {
			return err
		}
		amount, err = state.WithdrawCreatorFees()
		if err != nil {
			return err
		}
		return s.repo.Save(ctx, curveID, state)
	})
	return amount, err
}

// tierOf looks up a trader's cashback tier, defaulting to 0 (no cashback
// above the base schedule) if the ledger is absent or the lookup errors —
// a tiering failure must never block a trade.
func (s *Service) tierOf(ctx context.Context, trader string) int {
	if s.ledger == nil || trader == "" {
		return 0
	}
	tier, err := s.ledger.TierOf(ctx, trader)
	if err != nil {
		return 0
	}
	return tier
}

// IssueMigrationIntent returns a graduated curve's recorded MigrationIntent
// (spec §6 "issue_migration_intent"), failing with ErrNotGraduated if the
// curve has not crossed graduation yet.
func (s *Service) IssueMigrationIntent(ctx context.Context, curveID string) (curve.MigrationIntent, error) {
	_, state, err := s.repo.Load(ctx, curveID)
	if err != nil {
		return curve.MigrationIntent{}, err
	}
	return graduation.IssueMigrationIntent(state)
}

// FinalizeMigration hands a graduated curve's intent to the external pool
// and transitions it to Migrated on success (spec §6 "finalize_migration").
// A PoolMigration failure leaves the curve at Graduated, retryable.
func (s *Service) FinalizeMigration(ctx context.Context, curveID string) (curve.Snapshot, error) {
	var snap curve.Snapshot
	err := s.locks.WithLock(curveID, func() error {
		_, state, err := s.repo.Load(ctx, curveID)
		if err != nil {
			return err
		}
		if err := s.coord.FinalizeMigration(ctx, curveID, &state); err != nil {
			return err
		}
		snap = state.Snapshot()
		return s.repo.Save(ctx, curveID, state)
	})
	return snap, err
}

// notifyLedger is best-effort: RewardsLedger.Record never rejects per
// spec §6, so its error (if any) is not surfaced to the swap caller.
func (s *Service) notifyLedger(ctx context.Context, curveID, trader string, quoteVolume fixedpoint.Uint128, fees curve.FeeBreakdown, cfg curve.CurveConfig, tc curve.TradeContext) {
	if s.ledger == nil {
		return
	}
	_ = s.ledger.Record(ctx, collaborators.Trade{
		CurveID:       curveID,
		SequenceNo:    s.nextSeq(curveID),
		Trader:        trader,
		QuoteVolume:   quoteVolume,
		Fees:          fees,
		CreatorID:     cfg.CreatorID,
		ReferrerChain: tc.Referrers,
	})
}
