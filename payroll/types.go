/*
Package payroll runs every configured deduction for many employees at once.

PURPOSE:
  The deduction engine computes one config for one employee. A payroll run
  applies a config set to a whole staff list, totals the run and produces
  the remittance lines that tell finance how much to pay each authority.

KEY CONCEPTS:
  Employee:    ID, name and the earnings snapshot for this period
  Run:         immutable record of one batch: per-employee statements,
               per-config remittances and run totals
  Remittance:  what is owed for one config across the whole run
               (employee withholding + employer contribution)

CONCURRENCY:
  Statements are computed in parallel (bounded by Runner.Concurrency).
  The engine is pure, so there is no shared state beyond the result slice,
  which each worker writes at its own index. Output order matches input
  order regardless of scheduling.

USAGE:
  runner := payroll.NewRunner(8, logger)
  run, err := runner.Run(ctx, payroll.RunInput{
      Employees: employees,
      Configs:   configs,
  })

SEE ALSO:
  - deduction/engine.go: ComputeAll, the per-employee statement
  - report/: PDF and CSV remittance rendering
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/deduction-engine/deduction"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// Employee is a payee with the earnings used for this period.
type Employee struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Earnings deduction.Snapshot `json:"earnings"`
}

// =============================================================================
// RUN
// =============================================================================

// RunInput is what a run computes over. Configs are applied in order.
type RunInput struct {
	Employees []Employee
	Configs   []deduction.Config
}

// EmployeeResult is one employee's statement within a run.
type EmployeeResult struct {
	EmployeeID string              `json:"employee_id"`
	Name       string              `json:"name"`
	Statement  deduction.Statement `json:"statement"`
}

// Remittance totals one config across every employee in the run.
type Remittance struct {
	ConfigID deduction.ConfigID `json:"config_id"`
	Name     string             `json:"name"`
	Employee decimal.Decimal    `json:"employee"`
	Employer decimal.Decimal    `json:"employer"`
	Total    decimal.Decimal    `json:"total"`
}

// Payable is the amount the authority receives: both portions.
func (r Remittance) Payable() decimal.Decimal {
	return r.Employee.Add(r.Employer)
}

// RunTotals aggregates the whole run.
type RunTotals struct {
	Employees             int             `json:"employees"`
	Gross                 decimal.Decimal `json:"gross"`
	EmployeeDeductions    decimal.Decimal `json:"employee_deductions"`
	EmployerContributions decimal.Decimal `json:"employer_contributions"`
	NetPay                decimal.Decimal `json:"net_pay"`
}

// Run is the stored record of one payroll batch.
type Run struct {
	ID          string               `json:"id"`
	CreatedAt   time.Time            `json:"created_at"`
	ConfigIDs   []deduction.ConfigID `json:"config_ids"`
	Results     []EmployeeResult     `json:"results"`
	Remittances []Remittance         `json:"remittances"`
	Totals      RunTotals            `json:"totals"`
	Warnings    []deduction.Warning  `json:"warnings,omitempty"`
}

// Result returns the statement for one employee in the run.
func (r Run) Result(employeeID string) (EmployeeResult, bool) {
	for _, res := range r.Results {
		if res.EmployeeID == employeeID {
			return res, true
		}
	}
	return EmployeeResult{}, false
}
