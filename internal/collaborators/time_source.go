package collaborators

import "time"

// SystemTimeSource is the production TimeSource, backed by the wall
// clock. Its only use in the core is stamping graduation_timestamp, so
// second resolution is sufficient.
type SystemTimeSource struct{}

func (SystemTimeSource) Now() uint64 {
	return uint64(time.Now().Unix())
}

// FixedTimeSource is a deterministic TimeSource for tests, always
// returning the configured instant unless advanced.
type FixedTimeSource struct {
	instant uint64
}

// NewFixedTimeSource builds a FixedTimeSource pinned to the given unix
// timestamp.
func NewFixedTimeSource(instant uint64) *FixedTimeSource {
	return &FixedTimeSource{instant: instant}
}

func (f *FixedTimeSource) Now() uint64 {
	return f.instant
}

// Advance moves the fixed clock forward by delta seconds, for tests that
// need to observe ordering across two graduations.
func (f *FixedTimeSource) Advance(delta uint64) {
	f.instant += delta
}
