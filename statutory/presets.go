/*
presets.go - Pre-built statutory deduction configurations

PURPOSE:
  Provides ready-to-use deduction configs for the common statutory
  deductions. Admins usually start from one of these and adjust the rates
  rather than authoring a config from scratch.

AVAILABLE PRESETS:
  PAYEConfig:
    - Banded income tax on Gross Earnings
    - Employee pays 100%

  NSSFConfig:
    - Flat rate on Basic Salary (default 12%)
    - Employer 45.8% / employee 54.2% of the combined amount
    - Earning upper limit: pay above the ceiling is not pensionable

  HealthLevyConfig:
    - Flat rate on Gross Earnings
    - Deduction lower/upper limits (minimum and maximum contribution)

  HousingLevyConfig:
    - Flat rate on Gross Earnings, matched 50/50 by the employer

  AllowanceLevyConfig:
    - Flat rate on a single named allowance

EXAMPLE:
  nssf := statutory.NSSFConfig("nssf", "NSSF", 12, 45.8, 54.2, 72000)
  result := deduction.Compute(nssf, snapshot)

SEE ALSO:
  - deduction/types.go: Config definition
  - factory/config.go: JSON-based config creation
*/
package statutory

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/warp/deduction-engine/deduction"
)

// =============================================================================
// PAYE
// =============================================================================

// Bracket is a tax band expressed in plain numbers. A zero Max on the last
// bracket means open-ended.
type Bracket struct {
	Min, Max, Rate float64
}

// DefaultPAYEBrackets is a monthly progressive schedule.
var DefaultPAYEBrackets = []Bracket{
	{Min: 0, Max: 24000, Rate: 10},
	{Min: 24000, Max: 32333, Rate: 25},
	{Min: 32333, Max: 500000, Rate: 30},
	{Min: 500000, Max: 800000, Rate: 32.5},
	{Min: 800000, Rate: 35},
}

// PAYEConfig creates a banded income tax config on gross earnings.
// Brackets must be contiguous; the last one may be open-ended.
func PAYEConfig(id, name string, brackets []Bracket) deduction.Config {
	bands := make([]deduction.Band, 0, len(brackets))
	for i, b := range brackets {
		band := deduction.Band{
			ID:         bandID(id, i),
			Min:        decimal.NewFromFloat(b.Min),
			Percentage: decimal.NewFromFloat(b.Rate),
		}
		if !(b.Max == 0 && i == len(brackets)-1) {
			band.Max = deduction.DecimalFromFloat(b.Max)
		}
		bands = append(bands, band)
	}

	return deduction.Config{
		ID:          deduction.ConfigID(id),
		Name:        name,
		EarningType: deduction.GrossEarnings,
		HasBands:    true,
		Bands:       bands,
		PaidBy:      deduction.PaidBy{Employer: decimal.Zero, Employee: decimal.NewFromInt(100)},
	}
}

// =============================================================================
// NSSF
// =============================================================================

// NSSFConfig creates a pension contribution on basic salary. The rate is the
// combined employer + employee rate; employerShare and employeeShare are
// percentages of the combined amount. A zero ceiling means no earning limit.
func NSSFConfig(id, name string, rate, employerShare, employeeShare, ceiling float64) deduction.Config {
	cfg := deduction.Config{
		ID:          deduction.ConfigID(id),
		Name:        name,
		Percentage:  decimal.NewFromFloat(rate),
		EarningType: deduction.BasicSalary,
		PaidBy: deduction.PaidBy{
			Employer: decimal.NewFromFloat(employerShare),
			Employee: decimal.NewFromFloat(employeeShare),
		},
	}
	if ceiling > 0 {
		cfg.Limits = deduction.Limits{
			Type:  deduction.LimitOnEarning,
			Upper: deduction.DecimalFromFloat(ceiling),
		}
	}
	return cfg
}

// =============================================================================
// HEALTH LEVY
// =============================================================================

// HealthLevyConfig creates an employee-paid health contribution with a
// minimum and maximum amount. Zero bounds are left unset.
func HealthLevyConfig(id, name string, rate, minimum, maximum float64) deduction.Config {
	cfg := deduction.Config{
		ID:          deduction.ConfigID(id),
		Name:        name,
		Percentage:  decimal.NewFromFloat(rate),
		EarningType: deduction.GrossEarnings,
		PaidBy:      deduction.PaidBy{Employer: decimal.Zero, Employee: decimal.NewFromInt(100)},
		Limits:      deduction.Limits{Type: deduction.LimitOnDeduction},
	}
	if minimum > 0 {
		cfg.Limits.Lower = deduction.DecimalFromFloat(minimum)
	}
	if maximum > 0 {
		cfg.Limits.Upper = deduction.DecimalFromFloat(maximum)
	}
	return cfg
}

// =============================================================================
// HOUSING LEVY
// =============================================================================

// HousingLevyConfig creates a levy on gross earnings. The rate is charged
// once and shared equally by employer and employee.
func HousingLevyConfig(id, name string, rate float64) deduction.Config {
	half := decimal.NewFromInt(50)
	return deduction.Config{
		ID:          deduction.ConfigID(id),
		Name:        name,
		Percentage:  decimal.NewFromFloat(rate),
		EarningType: deduction.GrossEarnings,
		PaidBy:      deduction.PaidBy{Employer: half, Employee: half},
	}
}

// AllowanceLevyConfig creates an employee-paid levy on one named allowance.
func AllowanceLevyConfig(id, name, allowance string, rate float64) deduction.Config {
	return deduction.Config{
		ID:          deduction.ConfigID(id),
		Name:        name,
		Percentage:  decimal.NewFromFloat(rate),
		EarningType: deduction.EarningType(allowance),
		PaidBy:      deduction.PaidBy{Employer: decimal.Zero, Employee: decimal.NewFromInt(100)},
	}
}

// =============================================================================
// CATALOG
// =============================================================================

// Preset is a named config offered to admins as a starting point.
type Preset struct {
	Key         string
	Description string
	Config      deduction.Config
}

// Presets returns the catalog in display order.
func Presets() []Preset {
	return []Preset{
		{
			Key:         "paye",
			Description: "Progressive income tax on gross earnings",
			Config:      PAYEConfig("paye", "PAYE", DefaultPAYEBrackets),
		},
		{
			Key:         "nssf",
			Description: "12% pension on basic salary, 45.8/54.2 employer/employee, pensionable pay capped at 72,000",
			Config:      NSSFConfig("nssf", "NSSF", 12, 45.8, 54.2, 72000),
		},
		{
			Key:         "health",
			Description: "2.75% health contribution on gross, minimum 300",
			Config:      HealthLevyConfig("health", "Health Insurance", 2.75, 300, 0),
		},
		{
			Key:         "housing",
			Description: "3% housing levy on gross, shared equally",
			Config:      HousingLevyConfig("housing", "Housing Levy", 3),
		},
	}
}

// Defaults returns the configs seeded into an empty store.
func Defaults() []deduction.Config {
	presets := Presets()
	configs := make([]deduction.Config, len(presets))
	for i, p := range presets {
		configs[i] = p.Config
	}
	return configs
}

// Find returns the preset with the given key.
func Find(key string) (Preset, bool) {
	for _, p := range Presets() {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}

func bandID(configID string, i int) string {
	return configID + "-band-" + strconv.Itoa(i+1)
}
