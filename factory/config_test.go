package factory_test

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deduction-engine/deduction"
	"github.com/warp/deduction-engine/factory"
)

func f64(v float64) *float64 { return &v }

func codes(ws []deduction.Warning) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Code
	}
	return out
}

const nssfJSON = `{
  "id": "nssf",
  "name": "NSSF",
  "percentage": 12,
  "earning_type": "Basic Salary",
  "has_bands": false,
  "paid_by": {"employer": 45.8, "employee": 54.2},
  "limits": {"type": "earning", "lower": null, "upper": 60000}
}`

const payeJSON = `{
  "id": "paye",
  "name": "PAYE",
  "earning_type": "Gross Earnings",
  "has_bands": true,
  "bands": [
    {"id": "b1", "min": 0, "max": 24000, "percentage": 10},
    {"min": 24000, "max": null, "percentage": 30}
  ],
  "paid_by": {"employer": 0, "employee": 100}
}`

func TestParseConfig_Flat(t *testing.T) {
	cfg, warnings, err := factory.NewConfigFactory().ParseConfig(nssfJSON)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, deduction.ConfigID("nssf"), cfg.ID)
	assert.Equal(t, "NSSF", cfg.Name)
	assert.Equal(t, deduction.BasicSalary, cfg.EarningType)
	assert.False(t, cfg.HasBands)
	assert.True(t, cfg.Percentage.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, "45.8", cfg.PaidBy.Employer.String())
	assert.Equal(t, "54.2", cfg.PaidBy.Employee.String())
	assert.Equal(t, deduction.LimitOnEarning, cfg.Limits.Type)
	assert.Nil(t, cfg.Limits.Lower)
	require.NotNil(t, cfg.Limits.Upper)
	assert.Equal(t, "60000", cfg.Limits.Upper.String())
}

func TestParseConfig_BandsAndGeneratedIDs(t *testing.T) {
	cfg, warnings, err := factory.NewConfigFactory().ParseConfig(payeJSON)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, cfg.Bands, 2)
	assert.Equal(t, "b1", cfg.Bands[0].ID)
	_, err = uuid.Parse(cfg.Bands[1].ID)
	assert.NoError(t, err, "missing band id is replaced by a UUID")
	assert.Nil(t, cfg.Bands[1].Max)
	assert.Equal(t, "24000", cfg.Bands[0].Max.String())
}

func TestParseConfig_MissingIDGetsUUID(t *testing.T) {
	f := factory.NewConfigFactory()

	a, _, err := f.ParseConfig(`{"name": "Levy", "percentage": 1.5, "earning_type": "Gross Earnings", "paid_by": {"employee": 100}}`)
	require.NoError(t, err)
	b, _, err := f.ParseConfig(`{"name": "Levy", "percentage": 1.5, "earning_type": "Gross Earnings", "paid_by": {"employee": 100}}`)
	require.NoError(t, err)

	_, err = uuid.Parse(string(a.ID))
	assert.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestParseConfig_MissingNumbersDefaultToZero(t *testing.T) {
	cfg, warnings, err := factory.NewConfigFactory().ParseConfig(`{"id": "x", "name": "X", "earning_type": "Basic Salary"}`)
	require.NoError(t, err)

	assert.True(t, cfg.Percentage.IsZero())
	assert.True(t, cfg.PaidBy.Employer.IsZero())
	assert.True(t, cfg.PaidBy.Employee.IsZero())
	assert.Equal(t, deduction.Limits{}, cfg.Limits)
	assert.Equal(t, []string{deduction.WarnPaidByNot100}, codes(warnings))

	r := deduction.Compute(cfg, deduction.Snapshot{BasicPay: decimal.NewFromInt(1000)})
	assert.True(t, r.TotalDeductionAmount.IsZero())
}

func TestParseConfig_InvalidJSON(t *testing.T) {
	_, _, err := factory.NewConfigFactory().ParseConfig(`{"id": `)
	assert.ErrorIs(t, err, deduction.ErrInvalidConfig)
	assert.True(t, deduction.IsClientError(err))
}

func TestFromJSON_NonFiniteNumbers(t *testing.T) {
	cj := factory.ConfigJSON{
		ID:          "nan",
		Name:        "NaN",
		Percentage:  f64(math.NaN()),
		EarningType: "Gross Earnings",
		PaidBy:      factory.PaidByJSON{Employee: f64(100)},
		Limits:      &factory.LimitsJSON{Type: "Deduction", Upper: f64(math.Inf(1))},
	}

	cfg, warnings := factory.NewConfigFactory().FromJSON(cj)

	assert.True(t, cfg.Percentage.IsZero())
	assert.Equal(t, deduction.LimitOnDeduction, cfg.Limits.Type, "type is normalised")
	assert.Nil(t, cfg.Limits.Upper, "infinite bound means no limit")
	assert.Equal(t, []string{factory.WarnNonFinite, factory.WarnNonFinite}, codes(warnings))
	assert.Equal(t, "percentage", warnings[0].Field)
	assert.Equal(t, "limits.upper", warnings[1].Field)
}

func TestFromJSON_SurfacesValidationWarnings(t *testing.T) {
	cj := factory.ConfigJSON{
		ID:          "gappy",
		Name:        "Gappy",
		EarningType: "Gross Earnings",
		HasBands:    true,
		Bands: []factory.BandJSON{
			{Min: f64(0), Max: f64(1000), Percentage: f64(5)},
			{Min: f64(2000), Percentage: f64(10)},
		},
		PaidBy: factory.PaidByJSON{Employer: f64(30), Employee: f64(20)},
	}

	_, warnings := factory.NewConfigFactory().FromJSON(cj)

	assert.Equal(t, []string{deduction.WarnBandGap, deduction.WarnPaidByNot100}, codes(warnings))
}

func TestParseConfigs(t *testing.T) {
	configs, warnings, err := factory.NewConfigFactory().ParseConfigs([]byte("[" + nssfJSON + "," + payeJSON + "]"))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, configs, 2)
	assert.Equal(t, deduction.ConfigID("nssf"), configs[0].ID)
	assert.Equal(t, deduction.ConfigID("paye"), configs[1].ID)
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
deductions:
  - id: housing
    name: Housing Levy
    percentage: 1.5
    earning_type: Gross Earnings
    paid_by:
      employer: 50
      employee: 50
  - id: paye
    name: PAYE
    earning_type: Gross Earnings
    has_bands: true
    bands:
      - {id: b1, min: 0, max: 24000, percentage: 10}
      - {id: b2, min: 24000, max: null, percentage: 30}
    paid_by: {employer: 0, employee: 100}
    limits: {type: deduction, upper: 100000}
`)

	configs, warnings, err := factory.NewConfigFactory().ParseYAML(data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, configs, 2)

	assert.Equal(t, "1.5", configs[0].Percentage.String())
	require.Len(t, configs[1].Bands, 2)
	assert.Nil(t, configs[1].Bands[1].Max)
	assert.Equal(t, "100000", configs[1].Limits.Upper.String())
}

func TestParseYAML_Invalid(t *testing.T) {
	_, _, err := factory.NewConfigFactory().ParseYAML([]byte("deductions: [unclosed"))
	assert.ErrorIs(t, err, deduction.ErrInvalidConfig)
}

func TestToJSON_RoundTripPreservesSemantics(t *testing.T) {
	f := factory.NewConfigFactory()
	original, _, err := f.ParseConfig(payeJSON)
	require.NoError(t, err)

	stored, err := factory.MarshalConfig(original)
	require.NoError(t, err)
	restored, _, err := f.ParseConfig(stored)
	require.NoError(t, err)

	snap := deduction.Snapshot{BasicPay: decimal.NewFromInt(30000)}
	want := deduction.Compute(original, snap)
	got := deduction.Compute(restored, snap)
	assert.True(t, want.TotalDeductionAmount.Equal(got.TotalDeductionAmount))
	assert.Equal(t, original.Bands[1].ID, restored.Bands[1].ID, "generated ids survive storage")
	assert.Nil(t, restored.Limits.Upper)
}

func TestSnapshotJSON(t *testing.T) {
	s := factory.SnapshotJSON{
		BasicPay:   50000,
		Allowances: map[string]float64{"Housing": 7500.5, "Broken": math.NaN()},
	}.ToSnapshot()

	assert.Equal(t, "50000", s.BasicPay.String())
	assert.Equal(t, "7500.5", s.Allowances["Housing"].String())
	assert.True(t, s.Allowances["Broken"].IsZero())

	back := factory.SnapshotToJSON(s)
	assert.Equal(t, 7500.5, back.Allowances["Housing"])
}
