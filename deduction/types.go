/*
Package deduction provides the statutory deduction calculation engine.

PURPOSE:
  Turns admin-configured deduction definitions (PAYE, pension, health levies)
  into the amounts withheld from an employee's pay. A definition is either a
  flat rate or a set of tiered bands, may carry a lower/upper limit, and
  splits the resulting amount between employer and employee.

KEY CONCEPTS IN THIS FILE (types.go):
  - Config: One configured statutory deduction
  - Band: An earning range with its own rate (tax-bracket style)
  - PaidBy: Employer/employee shares, as percentages OF THE DEDUCTION
  - Limits: Lower/upper bound on either the deduction or the earning base
  - Snapshot: The employee's current earnings (basic pay + allowances)
  - Result: Everything the pipeline derived for one config

PIPELINE:
  ResolveEarningBase -> ComputeRaw (SelectBand when banded) -> ApplyLimits
  (may re-run ComputeRaw once) -> Split

  All of it is pure. Nothing here holds state, does I/O or blocks, so every
  function is safe to call from any number of goroutines.

PRECISION:
  Uses decimal.Decimal for every amount and percentage. 45.8% of 1200 is
  549.6, not 549.5999999.

SEE ALSO:
  - engine.go: Compute / ComputeAll, the public entry points
  - limit.go: The two limit regimes and the re-entrant recomputation
  - validate.go: Boundary warnings for questionable configurations
*/
package deduction

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ConfigID string

// EarningType names the earning a deduction is computed on. Besides the two
// built-ins, any other value is looked up as an allowance name.
type EarningType string

const (
	GrossEarnings EarningType = "Gross Earnings"
	BasicSalary   EarningType = "Basic Salary"
)

// =============================================================================
// CONFIG - One statutory deduction definition
// =============================================================================

// Config is a configured statutory deduction. The engine only reads it.
type Config struct {
	ID   ConfigID
	Name string

	// Percentage is the flat rate, ignored when HasBands is true.
	Percentage  decimal.Decimal
	EarningType EarningType

	HasBands bool
	Bands    []Band

	PaidBy PaidBy
	Limits Limits

	// Set by stores, not by the engine.
	Version int
}

// Clone returns a deep copy, so stores can hand out configs without sharing
// band slices or limit pointers with callers.
func (c Config) Clone() Config {
	out := c
	if c.Bands != nil {
		out.Bands = make([]Band, len(c.Bands))
		for i, b := range c.Bands {
			if b.Max != nil {
				b.Max = Decimal(*b.Max)
			}
			out.Bands[i] = b
		}
	}
	if c.Limits.Lower != nil {
		out.Limits.Lower = Decimal(*c.Limits.Lower)
	}
	if c.Limits.Upper != nil {
		out.Limits.Upper = Decimal(*c.Limits.Upper)
	}
	return out
}

// Band is an earning range [Min, Max] with its own rate.
// A nil Max is open-ended and belongs on the last band only.
type Band struct {
	ID         string
	Min        decimal.Decimal
	Max        *decimal.Decimal
	Percentage decimal.Decimal
}

// Contains reports whether base falls inside the band (both ends inclusive).
func (b Band) Contains(base decimal.Decimal) bool {
	if base.LessThan(b.Min) {
		return false
	}
	return b.Max == nil || base.LessThanOrEqual(*b.Max)
}

// PaidBy holds percentages of the computed deduction amount, not of earnings.
// They are independent and are not required to sum to 100.
type PaidBy struct {
	Employer decimal.Decimal
	Employee decimal.Decimal
}

type LimitType string

const (
	LimitOnDeduction LimitType = "deduction"
	LimitOnEarning   LimitType = "earning"
)

// Limits bounds either the deduction amount or the earning base.
// A nil bound means "no limit".
type Limits struct {
	Type  LimitType
	Lower *decimal.Decimal
	Upper *decimal.Decimal
}

// =============================================================================
// SNAPSHOT - Employee earnings for one computation
// =============================================================================

type Snapshot struct {
	BasicPay   decimal.Decimal
	Allowances map[string]decimal.Decimal
}

// =============================================================================
// RESULT
// =============================================================================

// LimitOutcome records which limit, if any, changed the amount.
type LimitOutcome string

const (
	LimitNotApplied        LimitOutcome = "none"
	LimitDeductionRaised   LimitOutcome = "deduction_lower"
	LimitDeductionCapped   LimitOutcome = "deduction_upper"
	LimitEarningSuppressed LimitOutcome = "earning_lower"
	LimitEarningRecomputed LimitOutcome = "earning_upper"
)

// Result is the outcome of running one Config against one Snapshot.
type Result struct {
	ConfigID ConfigID
	Name     string

	// EarningBase is what the resolver produced; ClampedEarningBase is what
	// the final amount was computed on (differs only after an earning cap).
	EarningBase        decimal.Decimal
	ClampedEarningBase decimal.Decimal

	RawAmount decimal.Decimal
	Band      *Band
	Limit     LimitOutcome

	EmployeeDeduction    decimal.Decimal
	EmployerPortion      decimal.Decimal
	TotalDeductionAmount decimal.Decimal
}

// =============================================================================
// HELPERS
// =============================================================================

var hundred = decimal.NewFromInt(100)

// percentOf returns amount * pct / 100.
func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// Decimal returns a pointer to d, for optional bounds.
func Decimal(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// DecimalFromFloat returns a pointer to the decimal value of f.
func DecimalFromFloat(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}
