package deduction

import "github.com/shopspring/decimal"

// =============================================================================
// COMPUTE - The single pipeline for one deduction
// =============================================================================

// Compute runs one Config against one Snapshot:
//
//  1. resolve the earning base
//  2. compute the raw amount (flat or banded)
//  3. apply limits, which may recompute once on a capped earning base
//  4. split the limited amount between employee and employer
//
// TotalDeductionAmount is the limited amount before the split. This is the
// only place a deduction amount is derived; display and payslip code read
// the Result instead of redoing the arithmetic.
func Compute(cfg Config, snapshot Snapshot) Result {
	base := ResolveEarningBase(cfg.EarningType, snapshot)
	raw, band := computeRaw(cfg, base)
	clamped := applyLimits(cfg, base, raw, band)
	alloc := Split(clamped.DeductionAmount, cfg.PaidBy)

	return Result{
		ConfigID:             cfg.ID,
		Name:                 cfg.Name,
		EarningBase:          base,
		ClampedEarningBase:   clamped.EarningBase,
		RawAmount:            raw,
		Band:                 clamped.Band,
		Limit:                clamped.Outcome,
		EmployeeDeduction:    alloc.EmployeeDeduction,
		EmployerPortion:      alloc.EmployerPortion,
		TotalDeductionAmount: clamped.DeductionAmount,
	}
}

// =============================================================================
// STATEMENT - Every configured deduction for one employee
// =============================================================================

// Statement is the payslip view of a snapshot: gross, each deduction and net.
type Statement struct {
	Gross   decimal.Decimal
	Results []Result

	TotalEmployee   decimal.Decimal
	TotalEmployer   decimal.Decimal
	TotalDeductions decimal.Decimal

	// NetPay is Gross less the employee-borne deductions.
	NetPay decimal.Decimal
}

// ComputeAll runs Compute for each config, in order, and totals the results.
func ComputeAll(configs []Config, snapshot Snapshot) Statement {
	st := Statement{
		Gross:   ResolveEarningBase(GrossEarnings, snapshot),
		Results: make([]Result, 0, len(configs)),
	}

	for _, cfg := range configs {
		r := Compute(cfg, snapshot)
		st.Results = append(st.Results, r)
		st.TotalEmployee = st.TotalEmployee.Add(r.EmployeeDeduction)
		st.TotalEmployer = st.TotalEmployer.Add(r.EmployerPortion)
		st.TotalDeductions = st.TotalDeductions.Add(r.TotalDeductionAmount)
	}

	st.NetPay = st.Gross.Sub(st.TotalEmployee)
	return st
}
