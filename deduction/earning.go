package deduction

import "github.com/shopspring/decimal"

// =============================================================================
// EARNING BASE RESOLVER
// =============================================================================

// ResolveEarningBase maps an earning reference to an amount from the snapshot.
//
//	Gross Earnings -> basic pay + every allowance
//	Basic Salary   -> basic pay
//	anything else  -> the allowance with that exact name, or 0
//
// An unknown allowance name is not an error. Admin screens only offer names
// that exist, so a miss means the allowance was removed and contributes nothing.
func ResolveEarningBase(earningType EarningType, snapshot Snapshot) decimal.Decimal {
	switch earningType {
	case GrossEarnings:
		gross := snapshot.BasicPay
		for _, amount := range snapshot.Allowances {
			gross = gross.Add(amount)
		}
		return gross
	case BasicSalary:
		return snapshot.BasicPay
	default:
		if amount, ok := snapshot.Allowances[string(earningType)]; ok {
			return amount
		}
		return decimal.Zero
	}
}
