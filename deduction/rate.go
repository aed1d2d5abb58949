package deduction

import "github.com/shopspring/decimal"

// =============================================================================
// RATE ENGINE
// =============================================================================

// ComputeRaw returns the deduction before any limit is applied.
//
// Percentages are used as given. A negative or >100 rate produces the
// matching negative or oversized amount; keeping rates sane is the job of
// whoever authors the config.
func ComputeRaw(cfg Config, base decimal.Decimal) decimal.Decimal {
	amount, _ := computeRaw(cfg, base)
	return amount
}

// computeRaw also returns the band used, nil for flat rates or no match.
func computeRaw(cfg Config, base decimal.Decimal) (decimal.Decimal, *Band) {
	if !cfg.HasBands {
		return percentOf(base, cfg.Percentage), nil
	}

	band, ok := SelectBand(cfg.Bands, base)
	if !ok {
		return decimal.Zero, nil
	}
	return percentOf(base, band.Percentage), &band
}
