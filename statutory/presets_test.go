package statutory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deduction-engine/deduction"
	"github.com/warp/deduction-engine/statutory"
)

func basic(amount int64, allowances map[string]int64) deduction.Snapshot {
	s := deduction.Snapshot{BasicPay: decimal.NewFromInt(amount), Allowances: map[string]decimal.Decimal{}}
	for name, v := range allowances {
		s.Allowances[name] = decimal.NewFromInt(v)
	}
	return s
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestPresets_AreWellFormed(t *testing.T) {
	for _, p := range statutory.Presets() {
		t.Run(p.Key, func(t *testing.T) {
			assert.Empty(t, deduction.Validate(p.Config))
			assert.Equal(t, deduction.ConfigID(p.Key), p.Config.ID)
		})
	}
}

func TestPAYE_Brackets(t *testing.T) {
	cfg := statutory.PAYEConfig("paye", "PAYE", statutory.DefaultPAYEBrackets)

	require.Len(t, cfg.Bands, 5)
	assert.Equal(t, "paye-band-1", cfg.Bands[0].ID)
	assert.Nil(t, cfg.Bands[4].Max, "last bracket is open-ended")

	cases := []struct {
		name  string
		gross int64
		want  string
	}{
		{"first bracket", 20000, "2000"},
		{"boundary stays in lower bracket", 24000, "2400"},
		{"second bracket", 30000, "7500"},
		{"top bracket", 1000000, "350000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := deduction.Compute(cfg, basic(tc.gross, nil))
			assertAmount(t, tc.want, r.EmployeeDeduction)
			assertAmount(t, "0", r.EmployerPortion)
		})
	}
}

func TestNSSF_CeilingAndSplit(t *testing.T) {
	cfg := statutory.NSSFConfig("nssf", "NSSF", 12, 45.8, 54.2, 72000)

	// GIVEN basic pay above the ceiling and an allowance that is not pensionable
	snap := basic(100000, map[string]int64{"Housing": 20000})

	// WHEN computed
	r := deduction.Compute(cfg, snap)

	// THEN the contribution is on the ceiling, split by share of the amount
	assertAmount(t, "72000", r.ClampedEarningBase)
	assertAmount(t, "8640", r.TotalDeductionAmount)
	assertAmount(t, "3957.12", r.EmployerPortion)
	assertAmount(t, "4682.88", r.EmployeeDeduction)
	assert.Equal(t, deduction.LimitEarningRecomputed, r.Limit)
}

func TestNSSF_NoCeiling(t *testing.T) {
	cfg := statutory.NSSFConfig("nssf", "NSSF", 12, 45.8, 54.2, 0)
	assert.Equal(t, deduction.Limits{}, cfg.Limits)

	r := deduction.Compute(cfg, basic(100000, nil))
	assertAmount(t, "12000", r.TotalDeductionAmount)
}

func TestHealthLevy_Minimum(t *testing.T) {
	cfg := statutory.HealthLevyConfig("health", "Health", 2.75, 300, 5000)

	low := deduction.Compute(cfg, basic(5000, nil))
	assertAmount(t, "300", low.EmployeeDeduction)
	assert.Equal(t, deduction.LimitDeductionRaised, low.Limit)

	mid := deduction.Compute(cfg, basic(40000, nil))
	assertAmount(t, "1100", mid.EmployeeDeduction)

	high := deduction.Compute(cfg, basic(400000, nil))
	assertAmount(t, "5000", high.EmployeeDeduction)
}

func TestHousingLevy_SharedEqually(t *testing.T) {
	cfg := statutory.HousingLevyConfig("housing", "Housing Levy", 3)

	r := deduction.Compute(cfg, basic(40000, map[string]int64{"Transport": 10000}))

	assertAmount(t, "1500", r.TotalDeductionAmount)
	assertAmount(t, "750", r.EmployeeDeduction)
	assertAmount(t, "750", r.EmployerPortion)
}

func TestAllowanceLevy(t *testing.T) {
	cfg := statutory.AllowanceLevyConfig("car", "Car Benefit Levy", "Car", 5)

	r := deduction.Compute(cfg, basic(40000, map[string]int64{"Car": 8000}))
	assertAmount(t, "400", r.EmployeeDeduction)

	none := deduction.Compute(cfg, basic(40000, nil))
	assertAmount(t, "0", none.EmployeeDeduction)
}

func TestDefaultsAndFind(t *testing.T) {
	defaults := statutory.Defaults()
	require.Len(t, defaults, len(statutory.Presets()))

	p, ok := statutory.Find("nssf")
	require.True(t, ok)
	assert.Equal(t, "NSSF", p.Config.Name)

	_, ok = statutory.Find("unknown")
	assert.False(t, ok)
}
