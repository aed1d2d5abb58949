/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

AMOUNTS:
  The engine works in decimal.Decimal. Responses carry float64 amounts,
  converted once at this boundary. Stored values keep full precision.

VALIDATION:
  Request types carry go-playground/validator tags, checked in decode().
  Deduction configs are not validated here: odd configs are accepted and
  come back with warnings, see deduction/validate.go.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: ConfigJSON and SnapshotJSON wire types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/deduction-engine/deduction"
	"github.com/warp/deduction-engine/factory"
	"github.com/warp/deduction-engine/payroll"
	"github.com/warp/deduction-engine/statutory"
)

// =============================================================================
// CONFIGS
// =============================================================================

// ConfigDTO is a stored config plus its validation warnings.
type ConfigDTO struct {
	factory.ConfigJSON
	Warnings []deduction.Warning `json:"warnings,omitempty"`
}

// =============================================================================
// COMPUTATION
// =============================================================================

// ComputeRequest computes deductions for one earnings snapshot, using stored
// configs (by ID), inline configs, or both. Stored configs come first.
type ComputeRequest struct {
	ConfigIDs []string             `json:"config_ids" validate:"required_without=Configs,dive,required"`
	Configs   []factory.ConfigJSON `json:"configs" validate:"required_without=ConfigIDs"`
	Earnings  factory.SnapshotJSON `json:"earnings"`
}

// ResultDTO is one computed deduction.
type ResultDTO struct {
	ConfigID             string  `json:"config_id"`
	Name                 string  `json:"name"`
	EarningBase          float64 `json:"earning_base"`
	ClampedEarningBase   float64 `json:"clamped_earning_base"`
	RawAmount            float64 `json:"raw_amount"`
	BandID               string  `json:"band_id,omitempty"`
	Limit                string  `json:"limit"`
	EmployeeDeduction    float64 `json:"employee_deduction"`
	EmployerPortion      float64 `json:"employer_portion"`
	TotalDeductionAmount float64 `json:"total_deduction_amount"`
}

// StatementDTO is the payslip view: gross, each deduction and net.
type StatementDTO struct {
	Gross           float64     `json:"gross"`
	Results         []ResultDTO `json:"results"`
	TotalEmployee   float64     `json:"total_employee"`
	TotalEmployer   float64     `json:"total_employer"`
	TotalDeductions float64     `json:"total_deductions"`
	NetPay          float64     `json:"net_pay"`
}

// ComputeResponse is the response to POST /api/compute.
type ComputeResponse struct {
	Statement StatementDTO        `json:"statement"`
	Warnings  []deduction.Warning `json:"warnings,omitempty"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Earnings factory.SnapshotJSON `json:"earnings"`
}

// CreateEmployeeRequest creates or replaces an employee. A missing ID is
// generated.
type CreateEmployeeRequest struct {
	ID       string               `json:"id" validate:"omitempty,max=64"`
	Name     string               `json:"name" validate:"required,max=200"`
	Earnings factory.SnapshotJSON `json:"earnings"`
}

// EmployeeStatementDTO is an employee's statement against every stored config.
type EmployeeStatementDTO struct {
	Employee  EmployeeDTO         `json:"employee"`
	Statement StatementDTO        `json:"statement"`
	Warnings  []deduction.Warning `json:"warnings,omitempty"`
}

// =============================================================================
// PAYROLL RUNS
// =============================================================================

// CreateRunRequest selects who and what a run covers. Empty lists mean
// every stored employee and every stored config.
type CreateRunRequest struct {
	EmployeeIDs []string `json:"employee_ids" validate:"dive,required"`
	ConfigIDs   []string `json:"config_ids" validate:"dive,required"`
}

// RemittanceDTO is one config's total across a run.
type RemittanceDTO struct {
	ConfigID string  `json:"config_id"`
	Name     string  `json:"name"`
	Employee float64 `json:"employee"`
	Employer float64 `json:"employer"`
	Total    float64 `json:"total"`
	Payable  float64 `json:"payable"`
}

// RunTotalsDTO aggregates a run.
type RunTotalsDTO struct {
	Employees             int     `json:"employees"`
	Gross                 float64 `json:"gross"`
	EmployeeDeductions    float64 `json:"employee_deductions"`
	EmployerContributions float64 `json:"employer_contributions"`
	NetPay                float64 `json:"net_pay"`
}

// EmployeeResultDTO is one employee's statement in a run.
type EmployeeResultDTO struct {
	EmployeeID string       `json:"employee_id"`
	Name       string       `json:"name"`
	Statement  StatementDTO `json:"statement"`
}

// RunDTO represents a payroll run. Results are omitted in listings.
type RunDTO struct {
	ID          string              `json:"id"`
	CreatedAt   string              `json:"created_at"`
	ConfigIDs   []string            `json:"config_ids"`
	Totals      RunTotalsDTO        `json:"totals"`
	Remittances []RemittanceDTO     `json:"remittances"`
	Results     []EmployeeResultDTO `json:"results,omitempty"`
	Warnings    []deduction.Warning `json:"warnings,omitempty"`
}

// =============================================================================
// PRESETS
// =============================================================================

// PresetDTO is a catalog entry.
type PresetDTO struct {
	Key         string             `json:"key"`
	Description string             `json:"description"`
	Config      factory.ConfigJSON `json:"config"`
}

// LoadPresetsRequest selects presets to save. Empty keys means all.
type LoadPresetsRequest struct {
	Keys          []string `json:"keys" validate:"dive,required"`
	DemoEmployees bool     `json:"demo_employees"`
}

// LoadPresetsResponse lists what was saved.
type LoadPresetsResponse struct {
	Configs   []ConfigDTO   `json:"configs"`
	Employees []EmployeeDTO `json:"employees,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func amount(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func toConfigDTO(cfg deduction.Config, warnings []deduction.Warning) ConfigDTO {
	return ConfigDTO{ConfigJSON: factory.ToJSON(cfg), Warnings: warnings}
}

func toResultDTO(r deduction.Result) ResultDTO {
	dto := ResultDTO{
		ConfigID:             string(r.ConfigID),
		Name:                 r.Name,
		EarningBase:          amount(r.EarningBase),
		ClampedEarningBase:   amount(r.ClampedEarningBase),
		RawAmount:            amount(r.RawAmount),
		Limit:                string(r.Limit),
		EmployeeDeduction:    amount(r.EmployeeDeduction),
		EmployerPortion:      amount(r.EmployerPortion),
		TotalDeductionAmount: amount(r.TotalDeductionAmount),
	}
	if r.Band != nil {
		dto.BandID = r.Band.ID
	}
	return dto
}

func toStatementDTO(st deduction.Statement) StatementDTO {
	results := make([]ResultDTO, len(st.Results))
	for i, r := range st.Results {
		results[i] = toResultDTO(r)
	}
	return StatementDTO{
		Gross:           amount(st.Gross),
		Results:         results,
		TotalEmployee:   amount(st.TotalEmployee),
		TotalEmployer:   amount(st.TotalEmployer),
		TotalDeductions: amount(st.TotalDeductions),
		NetPay:          amount(st.NetPay),
	}
}

func toEmployeeDTO(emp payroll.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:       emp.ID,
		Name:     emp.Name,
		Earnings: factory.SnapshotToJSON(emp.Earnings),
	}
}

func toRunDTO(run payroll.Run) RunDTO {
	dto := RunDTO{
		ID:        run.ID,
		CreatedAt: run.CreatedAt.Format(time.RFC3339),
		ConfigIDs: make([]string, len(run.ConfigIDs)),
		Totals: RunTotalsDTO{
			Employees:             run.Totals.Employees,
			Gross:                 amount(run.Totals.Gross),
			EmployeeDeductions:    amount(run.Totals.EmployeeDeductions),
			EmployerContributions: amount(run.Totals.EmployerContributions),
			NetPay:                amount(run.Totals.NetPay),
		},
		Remittances: make([]RemittanceDTO, len(run.Remittances)),
		Warnings:    run.Warnings,
	}
	for i, id := range run.ConfigIDs {
		dto.ConfigIDs[i] = string(id)
	}
	for i, rem := range run.Remittances {
		dto.Remittances[i] = RemittanceDTO{
			ConfigID: string(rem.ConfigID),
			Name:     rem.Name,
			Employee: amount(rem.Employee),
			Employer: amount(rem.Employer),
			Total:    amount(rem.Total),
			Payable:  amount(rem.Payable()),
		}
	}
	for _, res := range run.Results {
		dto.Results = append(dto.Results, EmployeeResultDTO{
			EmployeeID: res.EmployeeID,
			Name:       res.Name,
			Statement:  toStatementDTO(res.Statement),
		})
	}
	return dto
}

func toPresetDTO(p statutory.Preset) PresetDTO {
	return PresetDTO{Key: p.Key, Description: p.Description, Config: factory.ToJSON(p.Config)}
}
