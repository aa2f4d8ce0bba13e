package curve

import (
	"fmt"

	"github.com/launchpad-amm/curveengine/pkg/fixedpoint"
)

// State is the mutable per-curve record (spec §3). The only sanctioned way
// to change its reserves is through CommitBuy/CommitSell/Graduate/
// FinalizeMigration/WithdrawProtocolFees/WithdrawCreatorFees — there is no
// exported field mutation path, mirroring spec §4.4's "mutators are the
// ONLY way to change reserves."
type State struct {
	virtualQuote fixedpoint.Uint128
	virtualBase  fixedpoint.Uint128
	realQuote    fixedpoint.Uint128
	realBase     fixedpoint.Uint128

	protocolFeeAccrued fixedpoint.Uint128
	creatorFeeAccrued  fixedpoint.Uint128

	status              Status
	graduationTimestamp uint64
	migrationIntent     *MigrationIntent
}

// Snapshot is an immutable, detached copy of State for preview/read paths;
// no reference into a live State ever escapes through it (spec §4.4).
type Snapshot struct {
	VirtualQuote        fixedpoint.Uint128
	VirtualBase         fixedpoint.Uint128
	RealQuote           fixedpoint.Uint128
	RealBase            fixedpoint.Uint128
	ProtocolFeeAccrued  fixedpoint.Uint128
	CreatorFeeAccrued   fixedpoint.Uint128
	Status              Status
	GraduationTimestamp uint64
	MigrationIntent     *MigrationIntent
}

// NewState initializes a fresh, Active curve state from its config (spec
// §3: virtual_* initialized to initial_virtual_*, real_base to
// initial_real_base, real_quote/accrued fees to zero).
func NewState(cfg CurveConfig) State {
	return State{
		virtualQuote: cfg.InitialVirtualQuote,
		virtualBase:  cfg.InitialVirtualBase,
		realQuote:    fixedpoint.Zero,
		realBase:     cfg.InitialRealBase,
		status:       StatusActive,
	}
}

// Snapshot returns a detached, read-only copy.
func (s State) Snapshot() Snapshot {
	var intent *MigrationIntent
	if s.migrationIntent != nil {
		c := *s.migrationIntent
		intent = &c
	}
	return Snapshot{
		VirtualQuote:        s.virtualQuote,
		VirtualBase:         s.virtualBase,
		RealQuote:           s.realQuote,
		RealBase:            s.realBase,
		ProtocolFeeAccrued:  s.protocolFeeAccrued,
		CreatorFeeAccrued:   s.creatorFeeAccrued,
		Status:              s.status,
		GraduationTimestamp: s.graduationTimestamp,
		MigrationIntent:     intent,
	}
}

func (s State) VirtualQuote() fixedpoint.Uint128 { return s.virtualQuote }
func (s State) VirtualBase() fixedpoint.Uint128  { return s.virtualBase }
func (s State) RealQuote() fixedpoint.Uint128    { return s.realQuote }
func (s State) RealBase() fixedpoint.Uint128     { return s.realBase }
func (s State) ProtocolFeeAccrued() fixedpoint.Uint128 { return s.protocolFeeAccrued }
func (s State) CreatorFeeAccrued() fixedpoint.Uint128  { return s.creatorFeeAccrued }
func (s State) Status() Status                         { return s.status }
func (s State) GraduationTimestamp() uint64             { return s.graduationTimestamp }
func (s State) MigrationIntent() *MigrationIntent       { return s.migrationIntent }

// FromSnapshot reconstructs a State from a persisted Snapshot (used by the
// repository layer on load).
func FromSnapshot(snap Snapshot) State {
	return State{
		virtualQuote:        snap.VirtualQuote,
		virtualBase:         snap.VirtualBase,
		realQuote:           snap.RealQuote,
		realBase:            snap.RealBase,
		protocolFeeAccrued:  snap.ProtocolFeeAccrued,
		creatorFeeAccrued:   snap.CreatorFeeAccrued,
		status:              snap.Status,
		graduationTimestamp: snap.GraduationTimestamp,
		migrationIntent:     snap.MigrationIntent,
	}
}

// CommitBuy applies a buy trade's effects atomically (spec §4.4):
//
//	virtual_quote += net_in;  virtual_base -= base_out
//	real_quote    += gross_in; real_base   -= base_out
//	protocol_fee_accrued += fees.protocol
//	creator_fee_accrued  += fees.creator
func (s *State) CommitBuy(netIn, grossIn, baseOut fixedpoint.Uint128, fees FeeBreakdown) error {
	newVQ, err := fixedpoint.CheckedAdd(s.virtualQuote, netIn)
	if err != nil {
		return fmt.Errorf("%w: virtual_quote overflow: %v", ErrMathOverflow, err)
	}
	newVB, err := fixedpoint.CheckedSub(s.virtualBase, baseOut)
	if err != nil {
		return fmt.Errorf("%w: virtual_base underflow: %v", ErrMathOverflow, err)
	}
	newRQ, err := fixedpoint.CheckedAdd(s.realQuote, grossIn)
	if err != nil {
		return fmt.Errorf("%w: real_quote overflow: %v", ErrMathOverflow, err)
	}
	newRB, err := fixedpoint.CheckedSub(s.realBase, baseOut)
	if err != nil {
		return fmt.Errorf("%w: real_base underflow: %v", ErrMathOverflow, err)
	}
	newProtocol, err := fixedpoint.CheckedAdd(s.protocolFeeAccrued, fees.Protocol)
	if err != nil {
		return fmt.Errorf("%w: protocol_fee_accrued overflow: %v", ErrMathOverflow, err)
	}
	newCreator, err := fixedpoint.CheckedAdd(s.creatorFeeAccrued, fees.Creator)
	if err != nil {
		return fmt.Errorf("%w: creator_fee_accrued overflow: %v", ErrMathOverflow, err)
	}

	s.virtualQuote, s.virtualBase = newVQ, newVB
	s.realQuote, s.realBase = newRQ, newRB
	s.protocolFeeAccrued, s.creatorFeeAccrued = newProtocol, newCreator
	return nil
}

// CommitSell applies a sell trade's effects atomically (spec §4.4):
//
//	virtual_base  += base_in;  virtual_quote -= gross_out
//	real_base     += base_in;  real_quote    -= net_out
//	protocol_fee_accrued += fees.protocol
//	creator_fee_accrued  += fees.creator
//
// virtual_quote is debited by the gross amount (not net) so that fees stay
// accrued inside real_quote rather than leaking out of the curve.
func (s *State) CommitSell(baseIn, grossOut, netOut fixedpoint.Uint128, fees FeeBreakdown) error {
	newVB, err := fixedpoint.CheckedAdd(s.virtualBase, baseIn)
	if err != nil {
		return fmt.Errorf("%w: virtual_base overflow: %v", ErrMathOverflow, err)
	}
	newVQ, err := fixedpoint.CheckedSub(s.virtualQuote, grossOut)
	if err != nil {
		return fmt.Errorf("%w: virtual_quote underflow: %v", ErrMathOverflow, err)
	}
	newRB, err := fixedpoint.CheckedAdd(s.realBase, baseIn)
	if err != nil {
		return fmt.Errorf("%w: real_base overflow: %v", ErrMathOverflow, err)
	}
	newRQ, err := fixedpoint.CheckedSub(s.realQuote, netOut)
	if err != nil {
		return fmt.Errorf("%w: real_quote underflow: %v", ErrMathOverflow, err)
	}
	newProtocol, err := fixedpoint.CheckedAdd(s.protocolFeeAccrued, fees.Protocol)
	if err != nil {
		return fmt.Errorf("%w: protocol_fee_accrued overflow: %v", ErrMathOverflow, err)
	}
	newCreator, err := fixedpoint.CheckedAdd(s.creatorFeeAccrued, fees.Creator)
	if err != nil {
		return fmt.Errorf("%w: creator_fee_accrued overflow: %v", ErrMathOverflow, err)
	}

	s.virtualBase, s.virtualQuote = newVB, newVQ
	s.realBase, s.realQuote = newRB, newRQ
	s.protocolFeeAccrued, s.creatorFeeAccrued = newProtocol, newCreator
	return nil
}

// Graduate transitions Active -> Graduated, stamping the timestamp and
// recording the migration intent (spec §4.6). It is the GraduationCoordinator's
// job to compute the intent; State just records it atomically with the
// status flip.
func (s *State) Graduate(now uint64, intent MigrationIntent) error {
	if s.status != StatusActive {
		return fmt.Errorf("%w: cannot graduate from status %s", ErrCurveClosed, s.status)
	}
	s.status = StatusGraduated
	s.graduationTimestamp = now
	s.migrationIntent = &intent
	return nil
}

// FinalizeMigration transitions Graduated -> Migrated, consuming the
// intent. A second call fails ErrAlreadyMigrated.
func (s *State) FinalizeMigration() error {
	switch s.status {
	case StatusMigrated:
		return ErrAlreadyMigrated
	case StatusGraduated:
		s.status = StatusMigrated
		return nil
	default:
		return ErrNotGraduated
	}
}

// WithdrawProtocolFees zeroes protocol_fee_accrued and debits real_quote by
// the same amount (spec §4.6 "independent operation"), returning the
// withdrawn amount. Allowed in any status, including after Migrated.
func (s *State) WithdrawProtocolFees() (fixedpoint.Uint128, error) {
	amount := s.protocolFeeAccrued
	if amount.IsZero() {
		return fixedpoint.Zero, nil
	}
	newRQ, err := fixedpoint.CheckedSub(s.realQuote, amount)
	if err != nil {
		return fixedpoint.Zero, fmt.Errorf("%w: real_quote underflow on protocol withdrawal: %v", ErrMathOverflow, err)
	}
	s.realQuote = newRQ
	s.protocolFeeAccrued = fixedpoint.Zero
	return amount, nil
}

// WithdrawCreatorFees is the creator-side counterpart of
// WithdrawProtocolFees.
func (s *State) WithdrawCreatorFees() (fixedpoint.Uint128, error) {
	amount := s.creatorFeeAccrued
	if amount.IsZero() {
		return fixedpoint.Zero, nil
	}
	newRQ, err := fixedpoint.CheckedSub(s.realQuote, amount)
	if err != nil {
		return fixedpoint.Zero, fmt.Errorf("%w: real_quote underflow on creator withdrawal: %v", ErrMathOverflow, err)
	}
	s.realQuote = newRQ
	s.creatorFeeAccrued = fixedpoint.Zero
	return amount, nil
}
