package deduction

import "github.com/shopspring/decimal"

// =============================================================================
// BAND SELECTOR
// =============================================================================

// SelectBand returns the first band, in stored order, that contains base.
//
// First match wins: with bands [0, 50000] and [50000, open), a base of
// exactly 50000 lands in the first band. Bands are expected to be a
// contiguous, non-overlapping partition; that is checked by Validate at the
// boundary, not here. When nothing matches the second return is false and
// the caller uses a rate of 0.
func SelectBand(bands []Band, base decimal.Decimal) (Band, bool) {
	for _, b := range bands {
		if b.Contains(base) {
			return b, true
		}
	}
	return Band{}, false
}
