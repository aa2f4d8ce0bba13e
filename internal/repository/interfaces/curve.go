// Package interfaces defines the persistence-layer contracts the service
// packages depend on, so internal/trading and internal/graduation never
// import a concrete driver.
package interfaces

import (
	"context"

	"github.com/launchpad-amm/curveengine/pkg/curve"
)

// CurveRepository persists a curve's immutable CurveConfig and mutable
// CurveState (spec §6 "Persisted state layout"). Implementations MUST
// serialize reserve and accrual fields at their full 128-bit width.
type CurveRepository interface {
	// Create persists a brand-new curve's config and initial state,
	// returning the generated curve ID.
	Create(ctx context.Context, cfg curve.CurveConfig) (curveID string, err error)

	// Load returns the curve's config and current state snapshot.
	Load(ctx context.Context, curveID string) (curve.CurveConfig, curve.State, error)

	// Save persists a mutated state back to the curve, overwriting the
	// prior snapshot. Config is immutable and never rewritten.
	Save(ctx context.Context, curveID string, state curve.State) error
}
