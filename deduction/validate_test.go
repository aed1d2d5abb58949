package deduction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/deduction-engine/deduction"
)

func warningCodes(ws []deduction.Warning) []string {
	codes := make([]string, len(ws))
	for i, w := range ws {
		codes[i] = w.Code
	}
	return codes
}

func TestValidate_WellFormed(t *testing.T) {
	cfg := flat("12")
	cfg.PaidBy = deduction.PaidBy{Employer: dec("45.8"), Employee: dec("54.2")}
	cfg.Limits = deduction.Limits{Type: deduction.LimitOnEarning, Upper: ptr("60000")}

	assert.Empty(t, deduction.Validate(cfg))

	banded := flat("0")
	banded.HasBands = true
	banded.Bands = twoBands()
	assert.Empty(t, deduction.Validate(banded))
}

func TestValidate_Bands(t *testing.T) {
	cases := []struct {
		name  string
		bands []deduction.Band
		want  []string
	}{
		{
			name: "empty",
			want: []string{deduction.WarnBandsEmpty},
		},
		{
			name: "first min not zero",
			bands: []deduction.Band{
				{Min: dec("100"), Max: nil, Percentage: dec("10")},
			},
			want: []string{deduction.WarnBandFirstMin},
		},
		{
			name: "gap",
			bands: []deduction.Band{
				{Min: dec("0"), Max: ptr("1000"), Percentage: dec("10")},
				{Min: dec("1500"), Max: nil, Percentage: dec("20")},
			},
			want: []string{deduction.WarnBandGap},
		},
		{
			name: "overlap",
			bands: []deduction.Band{
				{Min: dec("0"), Max: ptr("1000"), Percentage: dec("10")},
				{Min: dec("800"), Max: nil, Percentage: dec("20")},
			},
			want: []string{deduction.WarnBandOverlap},
		},
		{
			name: "open band not last",
			bands: []deduction.Band{
				{Min: dec("0"), Max: nil, Percentage: dec("10")},
				{Min: dec("1000"), Max: ptr("2000"), Percentage: dec("20")},
			},
			want: []string{deduction.WarnBandOpenNotLast},
		},
		{
			name: "inverted band and rate out of range",
			bands: []deduction.Band{
				{Min: dec("0"), Max: ptr("1000"), Percentage: dec("10")},
				{Min: dec("1000"), Max: ptr("500"), Percentage: dec("120")},
			},
			want: []string{deduction.WarnPercentageRange, deduction.WarnBandInverted},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := flat("0")
			cfg.HasBands = true
			cfg.Bands = tc.bands

			assert.Equal(t, tc.want, warningCodes(deduction.Validate(cfg)))
		})
	}
}

func TestValidate_PaidByAndPercentages(t *testing.T) {
	cfg := flat("-3")
	cfg.PaidBy = deduction.PaidBy{Employer: dec("30"), Employee: dec("20")}

	got := deduction.Validate(cfg)

	assert.Equal(t, []string{deduction.WarnPercentageRange, deduction.WarnPaidByNot100}, warningCodes(got))
	assert.Equal(t, "percentage", got[0].Field)
	assert.Equal(t, deduction.ConfigID("flat"), got[0].ConfigID)
}

func TestValidate_Limits(t *testing.T) {
	cfg := flat("10")
	cfg.Limits = deduction.Limits{Type: "gross", Lower: ptr("500"), Upper: ptr("100")}

	assert.Equal(t,
		[]string{deduction.WarnLimitTypeUnknown, deduction.WarnLimitInverted},
		warningCodes(deduction.Validate(cfg)))
}

func TestValidate_NameAndEarningType(t *testing.T) {
	cfg := flat("10")
	cfg.Name = "  "
	cfg.EarningType = ""

	assert.Equal(t,
		[]string{deduction.WarnNameEmpty, deduction.WarnEarningTypeEmpty},
		warningCodes(deduction.Validate(cfg)))
}

func TestValidate_DoesNotAffectCompute(t *testing.T) {
	cfg := flat("150")
	cfg.PaidBy = deduction.PaidBy{Employer: dec("80"), Employee: dec("80")}
	assert.NotEmpty(t, deduction.Validate(cfg))

	r := deduction.Compute(cfg, snapshot("100", nil))

	assertDecimal(t, "150", r.TotalDeductionAmount)
	assertDecimal(t, "120", r.EmployeeDeduction)
	assertDecimal(t, "120", r.EmployerPortion)
}
