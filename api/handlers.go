/*
handlers.go - HTTP API handlers for the deduction engine

PURPOSE:
  Exposes deduction configs, one-off computation, employees and payroll
  runs over REST. Handles HTTP request/response and JSON serialization,
  and delegates to the deduction and payroll packages.

ENDPOINTS:
  Configs:
    GET    /api/configs                 List configs with warnings
    POST   /api/configs                 Create or replace a config
    GET    /api/configs/{id}            Get config
    DELETE /api/configs/{id}            Delete config
    GET    /api/configs/{id}/warnings   Validation warnings only

  Computation:
    POST   /api/compute                 Statement for one earnings snapshot

  Employees:
    GET    /api/employees               List employees
    POST   /api/employees               Create or replace employee
    GET    /api/employees/{id}          Get employee
    DELETE /api/employees/{id}          Delete employee
    GET    /api/employees/{id}/statement Statement against every config

  Payroll:
    POST   /api/payroll/runs            Run payroll
    GET    /api/payroll/runs            List runs (?limit=)
    GET    /api/payroll/runs/{id}       Run detail
    GET    /api/payroll/runs/{id}/remittance.pdf
    GET    /api/payroll/runs/{id}/remittance.csv
    GET    /api/payroll/runs/{id}/payslips/{employeeID}

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Config, employee or run not found
  - 429: Rate limit exceeded (compute and payroll runs)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - presets.go: Statutory preset catalog endpoints
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/warp/deduction-engine/deduction"
	"github.com/warp/deduction-engine/factory"
	"github.com/warp/deduction-engine/logging"
	"github.com/warp/deduction-engine/observability"
	"github.com/warp/deduction-engine/payroll"
	"github.com/warp/deduction-engine/report"
)

// maxBodyBytes bounds request bodies. Config documents are small.
const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is everything the API persists.
type Store interface {
	deduction.ConfigStore
	payroll.Store
}

// pinger is implemented by stores that can report database health.
type pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         Store
	ConfigFactory *factory.ConfigFactory
	Runner        *payroll.Runner
	Metrics       *observability.Metrics
	Logger        *slog.Logger

	validate *validator.Validate
}

// NewHandler creates a handler. A nil runner uses the default concurrency,
// a nil logger discards and nil metrics record nothing.
func NewHandler(store Store, runner *payroll.Runner, metrics *observability.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	if runner == nil {
		runner = payroll.NewRunner(0, logger)
	}
	return &Handler{
		Store:         store,
		ConfigFactory: factory.NewConfigFactory(),
		Runner:        runner,
		Metrics:       metrics,
		Logger:        logger,
		validate:      validator.New(),
	}
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness and, when the store supports it, database health.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// CONFIG HANDLERS
// =============================================================================

// ListConfigs returns all configs with their validation warnings.
// GET /api/configs
func (h *Handler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.Store.ListConfigs(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list configs", err)
		return
	}

	dtos := make([]ConfigDTO, len(configs))
	for i, cfg := range configs {
		dtos[i] = toConfigDTO(cfg, deduction.Validate(cfg))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateConfig stores a config from its JSON document. Configs that compute
// but look wrong are stored and returned with warnings.
// POST /api/configs
func (h *Handler) CreateConfig(w http.ResponseWriter, r *http.Request) {
	var req factory.ConfigJSON
	if !h.decode(w, r, &req) {
		return
	}

	cfg, warnings := h.ConfigFactory.FromJSON(req)
	if err := h.Store.SaveConfig(r.Context(), cfg); err != nil {
		h.fail(w, r, "Failed to save config", err)
		return
	}

	saved, err := h.Store.GetConfig(r.Context(), cfg.ID)
	if err != nil {
		h.fail(w, r, "Failed to reload config", err)
		return
	}

	h.Logger.InfoContext(r.Context(), "config saved",
		slog.String("config_id", string(saved.ID)),
		slog.Int("version", saved.Version),
		slog.Int("warnings", len(warnings)),
	)
	writeJSON(w, http.StatusCreated, toConfigDTO(saved, warnings))
}

// GetConfig returns a single config.
// GET /api/configs/{id}
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Store.GetConfig(r.Context(), configID(r))
	if err != nil {
		h.fail(w, r, "Failed to get config", err)
		return
	}
	writeJSON(w, http.StatusOK, toConfigDTO(cfg, deduction.Validate(cfg)))
}

// DeleteConfig removes a config. Past runs keep their copies.
// DELETE /api/configs/{id}
func (h *Handler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteConfig(r.Context(), configID(r)); err != nil {
		h.fail(w, r, "Failed to delete config", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConfigWarnings returns only the validation warnings of a config.
// GET /api/configs/{id}/warnings
func (h *Handler) ConfigWarnings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Store.GetConfig(r.Context(), configID(r))
	if err != nil {
		h.fail(w, r, "Failed to get config", err)
		return
	}
	warnings := deduction.Validate(cfg)
	if warnings == nil {
		warnings = []deduction.Warning{}
	}
	writeJSON(w, http.StatusOK, warnings)
}

// =============================================================================
// COMPUTATION
// =============================================================================

// Compute runs configs against one earnings snapshot.
// POST /api/compute
//
// Request body:
//
//	{
//	  "config_ids": ["paye", "nssf"],
//	  "configs": [{ ...inline config... }],
//	  "earnings": {"basic_pay": 50000, "allowances": {"Housing": 5000}}
//	}
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if !h.decode(w, r, &req) {
		return
	}

	ids := make([]deduction.ConfigID, len(req.ConfigIDs))
	for i, id := range req.ConfigIDs {
		ids[i] = deduction.ConfigID(id)
	}
	configs, err := deduction.Lookup(r.Context(), h.Store, ids)
	if err != nil {
		h.fail(w, r, "Failed to load configs", err)
		return
	}

	var warnings []deduction.Warning
	for _, cj := range req.Configs {
		cfg, ws := h.ConfigFactory.FromJSON(cj)
		configs = append(configs, cfg)
		warnings = append(warnings, ws...)
	}

	st := h.computeAll(configs, req.Earnings.ToSnapshot())
	writeJSON(w, http.StatusOK, ComputeResponse{
		Statement: toStatementDTO(st),
		Warnings:  warnings,
	})
}

func (h *Handler) computeAll(configs []deduction.Config, snapshot deduction.Snapshot) deduction.Statement {
	st := deduction.ComputeAll(configs, snapshot)
	for _, res := range st.Results {
		h.Metrics.ObserveComputation(string(res.Limit))
	}
	return st
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, emp := range employees {
		dtos[i] = toEmployeeDTO(emp)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates or replaces an employee's earnings.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	emp := payroll.Employee{
		ID:       req.ID,
		Name:     req.Name,
		Earnings: req.Earnings.ToSnapshot(),
	}
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.fail(w, r, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns a single employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// DeleteEmployee removes an employee. Past runs keep their results.
// DELETE /api/employees/{id}
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStatement computes an employee's statement against every stored config.
// GET /api/employees/{id}/statement
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.Store.GetEmployee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}
	configs, err := h.Store.ListConfigs(ctx)
	if err != nil {
		h.fail(w, r, "Failed to list configs", err)
		return
	}

	var warnings []deduction.Warning
	for _, cfg := range configs {
		warnings = append(warnings, deduction.Validate(cfg)...)
	}

	writeJSON(w, http.StatusOK, EmployeeStatementDTO{
		Employee:  toEmployeeDTO(emp),
		Statement: toStatementDTO(h.computeAll(configs, emp.Earnings)),
		Warnings:  warnings,
	})
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// CreateRun runs payroll and stores the result. An empty body runs every
// stored employee against every stored config.
// POST /api/payroll/runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}
	ctx := r.Context()

	var employees []payroll.Employee
	var err error
	if len(req.EmployeeIDs) > 0 {
		employees, err = payroll.LookupEmployees(ctx, h.Store, req.EmployeeIDs)
	} else {
		employees, err = h.Store.ListEmployees(ctx)
	}
	if err != nil {
		h.fail(w, r, "Failed to load employees", err)
		return
	}

	var configs []deduction.Config
	if len(req.ConfigIDs) > 0 {
		ids := make([]deduction.ConfigID, len(req.ConfigIDs))
		for i, id := range req.ConfigIDs {
			ids[i] = deduction.ConfigID(id)
		}
		configs, err = deduction.Lookup(ctx, h.Store, ids)
	} else {
		configs, err = h.Store.ListConfigs(ctx)
	}
	if err != nil {
		h.fail(w, r, "Failed to load configs", err)
		return
	}

	start := time.Now()
	run, err := h.Runner.Run(ctx, payroll.RunInput{Employees: employees, Configs: configs})
	if err != nil {
		h.fail(w, r, "Failed to run payroll", err)
		return
	}
	h.Metrics.ObserveRun(len(run.Results), time.Since(start))
	for _, res := range run.Results {
		for _, d := range res.Statement.Results {
			h.Metrics.ObserveComputation(string(d.Limit))
		}
	}

	if err := h.Store.SaveRun(ctx, run); err != nil {
		h.fail(w, r, "Failed to save payroll run", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRunDTO(run))
}

// ListRuns returns recent runs, newest first, without per-employee results.
// GET /api/payroll/runs?limit=20
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	runs, err := h.Store.ListRuns(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "Failed to list payroll runs", err)
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRun returns a run with every employee's statement.
// GET /api/payroll/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(run))
}

// RemittanceCSV returns a run's remittance as CSV.
// GET /api/payroll/runs/{id}/remittance.csv
func (h *Handler) RemittanceCSV(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	var buf strings.Builder
	if err := report.WriteRemittanceCSV(&buf, run); err != nil {
		h.fail(w, r, "Failed to render remittance", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", attachment("remittance-"+run.ID+".csv"))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, buf.String())
}

// RemittancePDF returns a run's remittance as PDF.
// GET /api/payroll/runs/{id}/remittance.pdf
func (h *Handler) RemittancePDF(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	pdf, err := report.RenderRemittancePDF(run)
	if err != nil {
		h.fail(w, r, "Failed to render remittance", err)
		return
	}
	writePDF(w, "remittance-"+run.ID+".pdf", pdf)
}

// PayslipPDF returns one employee's payslip from a run.
// GET /api/payroll/runs/{id}/payslips/{employeeID}
func (h *Handler) PayslipPDF(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	pdf, err := report.RenderPayslipPDF(run, employeeID)
	if err != nil {
		h.fail(w, r, "Failed to render payslip", err)
		return
	}
	writePDF(w, "payslip-"+run.ID+"-"+employeeID+".pdf", pdf)
}

func (h *Handler) loadRun(w http.ResponseWriter, r *http.Request) (payroll.Run, bool) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get payroll run", err)
		return payroll.Run{}, false
	}
	return run, true
}

// =============================================================================
// HELPERS
// =============================================================================

func configID(r *http.Request) deduction.ConfigID {
	return deduction.ConfigID(chi.URLParam(r, "id"))
}

// decode reads a JSON body into dst and runs struct validation. On failure
// it writes a 400 and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "Validation failed",
				Code:    "validation_failed",
				Details: fields,
			})
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// fail maps a domain error to its HTTP status. Server errors are logged with
// the request ID.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case deduction.IsNotFound(err), payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case deduction.IsClientError(err), payroll.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Logger.ErrorContext(r.Context(), message,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: errorCode(status)}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

func writePDF(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", attachment(filename))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
