package deduction

import "github.com/shopspring/decimal"

// =============================================================================
// LIMIT CLAMP
// =============================================================================

// Clamped is the output of ApplyLimits.
type Clamped struct {
	EarningBase     decimal.Decimal
	DeductionAmount decimal.Decimal
	Band            *Band
	Outcome         LimitOutcome
}

// ApplyLimits bounds a raw deduction according to cfg.Limits.
//
// DEDUCTION LIMITS:
//
//	The raw amount itself is clamped: below Lower becomes Lower, then above
//	Upper becomes Upper. The earning base is untouched.
//
// EARNING LIMITS:
//
//	The earning base is inspected instead, with two independent checks run
//	in this order:
//	  1. base < Lower: the deduction is suppressed (0), base reported as is.
//	  2. base > Upper: the base is capped at Upper and the rate is computed
//	     again on the capped base, re-selecting the band if banded.
//	Check 2 looks at the original base and, when it fires, its amount wins.
//	The recomputation runs at most once since the capped base cannot exceed
//	Upper.
//
// Any other limit type passes the raw amount through.
func ApplyLimits(cfg Config, base, raw decimal.Decimal) Clamped {
	_, band := computeRaw(cfg, base)
	return applyLimits(cfg, base, raw, band)
}

func applyLimits(cfg Config, base, raw decimal.Decimal, band *Band) Clamped {
	out := Clamped{
		EarningBase:     base,
		DeductionAmount: raw,
		Band:            band,
		Outcome:         LimitNotApplied,
	}

	lower, upper := cfg.Limits.Lower, cfg.Limits.Upper

	switch cfg.Limits.Type {
	case LimitOnDeduction:
		if lower != nil && out.DeductionAmount.LessThan(*lower) {
			out.DeductionAmount = *lower
			out.Outcome = LimitDeductionRaised
		}
		if upper != nil && out.DeductionAmount.GreaterThan(*upper) {
			out.DeductionAmount = *upper
			out.Outcome = LimitDeductionCapped
		}

	case LimitOnEarning:
		if lower != nil && base.LessThan(*lower) {
			out.DeductionAmount = decimal.Zero
			out.Band = nil
			out.Outcome = LimitEarningSuppressed
		}
		if upper != nil && base.GreaterThan(*upper) {
			out.EarningBase = *upper
			out.DeductionAmount, out.Band = computeRaw(cfg, *upper)
			out.Outcome = LimitEarningRecomputed
		}
	}

	return out
}
