package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/warp/deduction-engine/deduction"
	"github.com/warp/deduction-engine/logging"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// RUNNER
// =============================================================================

// Runner computes payroll runs.
type Runner struct {
	// Concurrency bounds the number of statements computed at once.
	// Zero or less means GOMAXPROCS.
	Concurrency int

	Logger *slog.Logger

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(concurrency int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{
		Concurrency: concurrency,
		Logger:      logger,
		Now:         func() time.Time { return time.Now().UTC() },
		NewID:       uuid.NewString,
	}
}

// Run computes a statement for every employee and aggregates the results.
// It fails only on an empty employee list or a cancelled context; config
// problems are reported in Run.Warnings and computed as configured.
func (r *Runner) Run(ctx context.Context, in RunInput) (Run, error) {
	if len(in.Employees) == 0 {
		return Run{}, ErrEmptyRun
	}

	start := time.Now()
	run := Run{
		ID:        r.NewID(),
		CreatedAt: r.Now(),
		ConfigIDs: make([]deduction.ConfigID, len(in.Configs)),
		Results:   make([]EmployeeResult, len(in.Employees)),
	}
	for i, cfg := range in.Configs {
		run.ConfigIDs[i] = cfg.ID
		run.Warnings = append(run.Warnings, deduction.Validate(cfg)...)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit())

	for i, emp := range in.Employees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			run.Results[i] = EmployeeResult{
				EmployeeID: emp.ID,
				Name:       emp.Name,
				Statement:  deduction.ComputeAll(in.Configs, emp.Earnings),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.Logger.Warn("payroll run aborted",
			"run_id", run.ID,
			"employees", len(in.Employees),
			"error", err,
		)
		return Run{}, fmt.Errorf("payroll run %s: %w", run.ID, err)
	}

	run.Remittances, run.Totals = aggregate(in.Configs, run.Results)

	r.Logger.Info("payroll run completed",
		"run_id", run.ID,
		"employees", run.Totals.Employees,
		"configs", len(in.Configs),
		"warnings", len(run.Warnings),
		"gross", run.Totals.Gross.String(),
		"net_pay", run.Totals.NetPay.String(),
		"duration", time.Since(start),
	)
	return run, nil
}

func (r *Runner) limit() int {
	if r.Concurrency > 0 {
		return r.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

// =============================================================================
// AGGREGATION
// =============================================================================

// aggregate builds one remittance line per config, in config order, and the
// run totals. Statement results are positionally aligned with configs.
func aggregate(configs []deduction.Config, results []EmployeeResult) ([]Remittance, RunTotals) {
	remittances := make([]Remittance, len(configs))
	for i, cfg := range configs {
		remittances[i] = Remittance{ConfigID: cfg.ID, Name: cfg.Name}
	}

	totals := RunTotals{Employees: len(results)}
	for _, res := range results {
		st := res.Statement
		totals.Gross = totals.Gross.Add(st.Gross)
		totals.EmployeeDeductions = totals.EmployeeDeductions.Add(st.TotalEmployee)
		totals.EmployerContributions = totals.EmployerContributions.Add(st.TotalEmployer)
		totals.NetPay = totals.NetPay.Add(st.NetPay)

		for i, line := range st.Results {
			rem := &remittances[i]
			rem.Employee = rem.Employee.Add(line.EmployeeDeduction)
			rem.Employer = rem.Employer.Add(line.EmployerPortion)
			rem.Total = rem.Total.Add(line.TotalDeductionAmount)
		}
	}
	return remittances, totals
}
