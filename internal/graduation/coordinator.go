// Package graduation implements the GraduationCoordinator (spec §4.6): the
// Active -> Graduated -> Migrated state machine, migration-intent
// computation, and the handoff to the external concentrated-liquidity
// pool.
package graduation

import (
	"context"
	"fmt"

	"github.com/launchpad-amm/curveengine/internal/collaborators"
	"github.com/launchpad-amm/curveengine/pkg/curve"
	"github.com/launchpad-amm/curveengine/pkg/curvemath"
	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
)

// Coordinator owns the graduation transitions and the PoolMigration
// handoff. It holds no per-curve state itself — TradingService (or
// whatever else mutates a curve.State) is responsible for persisting the
// state the Coordinator mutates, under the curve's single-writer lock.
type Coordinator struct {
	migration collaborators.PoolMigration
	clock     collaborators.TimeSource
}

// New builds a Coordinator against its collaborators.
func New(migration collaborators.PoolMigration, clock collaborators.TimeSource) *Coordinator {
	return &Coordinator{migration: migration, clock: clock}
}

// ComputeIntent derives a MigrationIntent from a curve's state at the
// instant of graduation (spec §4.6):
//
//	base_amount  = real_base
//	quote_amount = real_quote - protocol_fee_accrued - creator_fee_accrued
//	final_price  = Vq / (Vb * decimal_scale)
//
// It is pure and side-effect-free so TradingService and tests can call it
// without a live Coordinator.
func ComputeIntent(snap curve.Snapshot, cfg curve.CurveConfig) (curve.MigrationIntent, error) {
	quoteAmount, err := fixedpoint.CheckedSub(snap.RealQuote, snap.ProtocolFeeAccrued)
	if err != nil {
		return curve.MigrationIntent{}, fmt.Errorf("%w: quote_amount underflow on protocol accrual: %v", curve.ErrMathOverflow, err)
	}
	quoteAmount, err = fixedpoint.CheckedSub(quoteAmount, snap.CreatorFeeAccrued)
	if err != nil {
		return curve.MigrationIntent{}, fmt.Errorf("%w: quote_amount underflow on creator accrual: %v", curve.ErrMathOverflow, err)
	}

	finalPrice, err := curvemath.Price(snap.VirtualQuote, snap.VirtualBase, cfg.DecimalScale)
	if err != nil {
		return curve.MigrationIntent{}, fmt.Errorf("%w: final_price: %v", curve.ErrMathOverflow, err)
	}

	return curve.MigrationIntent{
		BaseAmount:  snap.RealBase,
		QuoteAmount: quoteAmount,
		FinalPrice:  finalPrice,
	}, nil
}

// MarkGraduated transitions state from Active to Graduated in place,
// computing and recording its MigrationIntent. The caller (TradingService)
// must hold the curve's single-writer lock and persist the mutated state
// afterward.
func (c *Coordinator) MarkGraduated(state *curve.State, cfg curve.CurveConfig) error {
	intent, err := ComputeIntent(state.Snapshot(), cfg)
	if err != nil {
		return err
	}
	return state.Graduate(c.clock.Now(), intent)
}

// IssueMigrationIntent returns the curve's recorded MigrationIntent.
// Idempotent once graduated: repeated calls return the same value without
// re-deriving it, since the intent is frozen at the graduation instant.
func IssueMigrationIntent(state curve.State) (curve.MigrationIntent, error) {
	if state.Status() == curve.StatusActive {
		return curve.MigrationIntent{}, curve.ErrNotGraduated
	}
	intent := state.MigrationIntent()
	if intent == nil {
		return curve.MigrationIntent{}, curve.ErrNotGraduated
	}
	return *intent, nil
}

// FinalizeMigration claims a graduated curve's intent against the
// external pool. On PoolMigration.Accept failure the curve is left at
// Graduated, retryable; on success it transitions to Migrated in place.
func (c *Coordinator) FinalizeMigration(ctx context.Context, curveID string, state *curve.State) error {
	if state.Status() == curve.StatusMigrated {
		return curve.ErrAlreadyMigrated
	}
	intent, err := IssueMigrationIntent(*state)
	if err != nil {
		return err
	}
	if err := c.migration.Accept(ctx, curveID, intent); err != nil {
		return fmt.Errorf("%w: %v", curve.ErrMigrationFailed, err)
	}
	return state.FinalizeMigration()
}
