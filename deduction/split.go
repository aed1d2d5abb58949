package deduction

import "github.com/shopspring/decimal"

// =============================================================================
// SPLIT ALLOCATOR
// =============================================================================

// Allocation is the employer/employee division of one deduction amount.
type Allocation struct {
	EmployeeDeduction decimal.Decimal
	EmployerPortion   decimal.Decimal
}

// Split divides an already-limited deduction amount using paidBy.
//
// Each leg is its own percentage of amount. A 12% pension shared as
// employer 45.8 / employee 54.2 is expressed directly, without re-deriving
// the underlying earning rates. Shares that do not add up to 100 are honoured
// as given (partial remittance), so the legs need not sum to amount.
func Split(amount decimal.Decimal, paidBy PaidBy) Allocation {
	return Allocation{
		EmployeeDeduction: percentOf(amount, paidBy.Employee),
		EmployerPortion:   percentOf(amount, paidBy.Employer),
	}
}
