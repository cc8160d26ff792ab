package score

// SkipReason tags why an item was left out of a scoring run. Skips are
// collected into the run report instead of aborting the run, so a
// rebuild can always say exactly what it ignored and why.
type SkipReason string

const (
	// SkipInvalidProfile marks an athlete whose heart rate profile is
	// degenerate; the whole athlete is skipped.
	SkipInvalidProfile SkipReason = "invalid_profile"
	// SkipMalformedRecord marks a stored activity record that cannot be
	// scored; only that record is skipped.
	SkipMalformedRecord SkipReason = "malformed_record"
	// SkipStoreError marks an athlete whose records could not be read.
	SkipStoreError SkipReason = "store_error"
)

// SkippedItem describes one skipped athlete or activity record.
type SkippedItem struct {
	Athlete  string
	Activity int64
	Reason   SkipReason
	Detail   string
}
