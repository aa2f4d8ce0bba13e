// Package collaborators defines the external interfaces the core trading
// engine depends on (spec §6 "Consumed") and a small set of concrete
// adapters against them. The engine never imports a concrete collaborator
// directly — only these interfaces — so storage, transfer, and migration
// backends can be swapped without touching trading/graduation logic.
package collaborators

import (
	"context"

	"github.com/launchpad-amm/curveengine/pkg/curve"
	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
)

// Trade is the record RewardsLedger.Record accrues against (spec §6).
type Trade struct {
	CurveID       string
	SequenceNo    uint64
	Trader        string
	QuoteVolume   fixedpoint.Uint128
	Fees          curve.FeeBreakdown
	CreatorID     string
	ReferrerChain [3]*string
}

// RewardsLedger is consumed by TradingService after every committed swap
// and by FeeEngine's caller to look up a trader's cashback tier. Record
// MUST be idempotent per (curve_id, sequence_no) and MUST NOT reject —
// the core treats ledger notification as best-effort bookkeeping, never a
// reason to roll back a swap.
type RewardsLedger interface {
	Record(ctx context.Context, trade Trade) error
	TierOf(ctx context.Context, trader string) (int, error)
}

// AssetTransfer moves base and quote units between a trader and the
// curve's escrow. Its failures surface as curve.ErrSettlementFailed.
type AssetTransfer interface {
	Credit(ctx context.Context, account string, assetID string, amount fixedpoint.Uint128) error
	Debit(ctx context.Context, account string, assetID string, amount fixedpoint.Uint128) error
}

// TimeSource is the monotone clock used only to stamp
// graduation_timestamp (spec §6).
type TimeSource interface {
	Now() uint64
}

// PoolMigration is the external concentrated-liquidity pool a graduated
// curve hands its remaining liquidity to. Its failure surfaces as
// curve.ErrMigrationFailed and leaves the curve's status at Graduated,
// retryable.
type PoolMigration interface {
	Accept(ctx context.Context, curveID string, intent curve.MigrationIntent) error
}
