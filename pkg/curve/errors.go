package curve

import "errors"

// Error taxonomy (spec §7). These are the only failure kinds the engine
// produces; callers should match with errors.Is, never string comparison.
var (
	// ErrInvalidAmount is returned for a zero or negative trade amount.
	ErrInvalidAmount = errors.New("curve: invalid amount")
	// ErrSlippageExceeded is returned when the computed output falls
	// below the caller's min_out.
	ErrSlippageExceeded = errors.New("curve: slippage exceeded")
	// ErrCurveClosed is returned when a swap is attempted on a curve
	// whose status is no longer Active.
	ErrCurveClosed = errors.New("curve: closed")
	// ErrMathOverflow wraps any checked-arithmetic failure. It indicates
	// a configuration or integration bug, not a normal runtime condition,
	// but it is still returned as a value rather than a panic.
	ErrMathOverflow = errors.New("curve: math overflow")
	// ErrFeeInvariantViolated is returned when the protocol fee
	// remainder would go negative, or the effective fee rate reaches or
	// exceeds BPSMax.
	ErrFeeInvariantViolated = errors.New("curve: fee invariant violated")
	// ErrSettlementFailed wraps an AssetTransfer rejection.
	ErrSettlementFailed = errors.New("curve: settlement failed")
	// ErrAlreadyMigrated is returned by a second finalize_migration call.
	ErrAlreadyMigrated = errors.New("curve: already migrated")
	// ErrMigrationFailed wraps a PoolMigration.accept rejection; the
	// curve remains Graduated and the caller may retry.
	ErrMigrationFailed = errors.New("curve: migration failed")
	// ErrNotGraduated is returned when a migration operation is
	// attempted before the curve has graduated.
	ErrNotGraduated = errors.New("curve: not graduated")
	// ErrInvalidConfig is returned by NewConfig when the fee schedule or
	// reserve configuration fails validation at creation time.
	ErrInvalidConfig = errors.New("curve: invalid config")
)
