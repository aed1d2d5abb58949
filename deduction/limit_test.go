package deduction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/deduction-engine/deduction"
)

// =============================================================================
// DEDUCTION LIMITS
// =============================================================================

func TestApplyLimits_Deduction(t *testing.T) {
	cases := []struct {
		name        string
		lower       string
		upper       string
		raw         string
		want        string
		wantOutcome deduction.LimitOutcome
	}{
		{"inside", "100", "1000", "500", "500", deduction.LimitNotApplied},
		{"below lower", "100", "1000", "40", "100", deduction.LimitDeductionRaised},
		{"above upper", "100", "1000", "15000", "1000", deduction.LimitDeductionCapped},
		{"equal lower", "100", "1000", "100", "100", deduction.LimitNotApplied},
		{"equal upper", "100", "1000", "1000", "1000", deduction.LimitNotApplied},
		{"only lower", "100", "", "5", "100", deduction.LimitDeductionRaised},
		{"only upper", "", "10000", "15000", "10000", deduction.LimitDeductionCapped},
		{"inverted bounds: upper wins", "500", "200", "50", "200", deduction.LimitDeductionCapped},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := flat("10")
			cfg.Limits = deduction.Limits{Type: deduction.LimitOnDeduction}
			if tc.lower != "" {
				cfg.Limits.Lower = ptr(tc.lower)
			}
			if tc.upper != "" {
				cfg.Limits.Upper = ptr(tc.upper)
			}

			out := deduction.ApplyLimits(cfg, dec("123456"), dec(tc.raw))

			assertDecimal(t, tc.want, out.DeductionAmount)
			assertDecimal(t, "123456", out.EarningBase, "deduction limits never touch the base")
			assert.Equal(t, tc.wantOutcome, out.Outcome)
		})
	}
}

// =============================================================================
// EARNING LIMITS
// =============================================================================

func TestApplyLimits_Earning(t *testing.T) {
	cases := []struct {
		name        string
		lower       string
		upper       string
		base        string
		wantBase    string
		want        string
		wantOutcome deduction.LimitOutcome
	}{
		{"inside passes raw through", "5000", "60000", "20000", "20000", "2000", deduction.LimitNotApplied},
		{"below lower suppresses", "5000", "60000", "1000", "1000", "0", deduction.LimitEarningSuppressed},
		{"above upper recomputes", "5000", "60000", "100000", "60000", "6000", deduction.LimitEarningRecomputed},
		{"equal upper does not recompute", "", "60000", "60000", "60000", "6000", deduction.LimitNotApplied},
		{"equal lower does not suppress", "5000", "", "5000", "5000", "500", deduction.LimitNotApplied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := flat("10")
			cfg.Limits = deduction.Limits{Type: deduction.LimitOnEarning}
			if tc.lower != "" {
				cfg.Limits.Lower = ptr(tc.lower)
			}
			if tc.upper != "" {
				cfg.Limits.Upper = ptr(tc.upper)
			}
			base := dec(tc.base)

			out := deduction.ApplyLimits(cfg, base, deduction.ComputeRaw(cfg, base))

			assertDecimal(t, tc.wantBase, out.EarningBase)
			assertDecimal(t, tc.want, out.DeductionAmount)
			assert.Equal(t, tc.wantOutcome, out.Outcome)
		})
	}
}

func TestApplyLimits_EarningUpperIsAuthoritativeAfterLower(t *testing.T) {
	// Misconfigured bounds where both checks fire on the same base: the lower
	// check suppresses first, then the upper check, run against the original
	// base, recomputes and wins.
	cfg := flat("10")
	cfg.Limits = deduction.Limits{Type: deduction.LimitOnEarning, Lower: ptr("90000"), Upper: ptr("40000")}

	out := deduction.ApplyLimits(cfg, dec("50000"), dec("5000"))

	assertDecimal(t, "40000", out.EarningBase)
	assertDecimal(t, "4000", out.DeductionAmount)
	assert.Equal(t, deduction.LimitEarningRecomputed, out.Outcome)
}

func TestApplyLimits_EarningRecomputeUsesRawIndependentOfInput(t *testing.T) {
	// The recomputed amount comes from the rate on the capped base, not from
	// scaling whatever raw amount was passed in.
	cfg := flat("10")
	cfg.Limits = deduction.Limits{Type: deduction.LimitOnEarning, Upper: ptr("1000")}

	out := deduction.ApplyLimits(cfg, dec("5000"), dec("999999"))

	assertDecimal(t, "100", out.DeductionAmount)
}

// =============================================================================
// UNKNOWN / ABSENT LIMITS
// =============================================================================

func TestApplyLimits_PassThrough(t *testing.T) {
	cases := []struct {
		name   string
		limits deduction.Limits
	}{
		{"no limits", deduction.Limits{}},
		{"type without bounds", deduction.Limits{Type: deduction.LimitOnDeduction}},
		{"unknown type", deduction.Limits{Type: "salary", Upper: ptr("1")}},
		{"empty type with bounds", deduction.Limits{Lower: ptr("100000")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := flat("10")
			cfg.Limits = tc.limits

			out := deduction.ApplyLimits(cfg, dec("5000"), dec("500"))

			assertDecimal(t, "500", out.DeductionAmount)
			assertDecimal(t, "5000", out.EarningBase)
			assert.Equal(t, deduction.LimitNotApplied, out.Outcome)
		})
	}
}
