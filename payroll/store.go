package payroll

import "context"

// Store persists employees and completed runs.
//
// Implementations:
//   - store/sqlite
//   - store/postgres
type Store interface {
	SaveEmployee(ctx context.Context, emp Employee) error
	GetEmployee(ctx context.Context, id string) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id string) error

	// SaveRun stores a run. Runs are immutable once saved.
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, error)

	// ListRuns returns runs newest first, without per-employee results.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

// LookupEmployees returns the employees for ids in the order given.
func LookupEmployees(ctx context.Context, store Store, ids []string) ([]Employee, error) {
	employees := make([]Employee, 0, len(ids))
	for _, id := range ids {
		emp, err := store.GetEmployee(ctx, id)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, nil
}
