// Package memory provides an in-memory implementation of the config,
// employee and payroll run stores, for tests and local development.
// Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/warp/deduction-engine/deduction"
	"github.com/warp/deduction-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	configs   map[deduction.ConfigID]deduction.Config
	employees map[string]payroll.Employee
	runs      map[string]payroll.Run
	runOrder  []string
}

var (
	_ deduction.ConfigStore = (*Store)(nil)
	_ payroll.Store         = (*Store)(nil)
)

func New() *Store {
	return &Store{
		configs:   make(map[deduction.ConfigID]deduction.Config),
		employees: make(map[string]payroll.Employee),
		runs:      make(map[string]payroll.Run),
	}
}

// Close is a no-op, present so the server can treat every store alike.
func (s *Store) Close() error {
	return nil
}

// =============================================================================
// CONFIGS
// =============================================================================

// SaveConfig inserts or replaces a config. Stored copies are deep clones.
func (s *Store) SaveConfig(_ context.Context, cfg deduction.Config) error {
	if cfg.ID == "" {
		return &deduction.ConfigError{Reason: "missing id"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg = cfg.Clone()
	cfg.Version = s.configs[cfg.ID].Version + 1
	s.configs[cfg.ID] = cfg
	return nil
}

func (s *Store) GetConfig(_ context.Context, id deduction.ConfigID) (deduction.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[id]
	if !ok {
		return deduction.Config{}, deduction.NotFound(id)
	}
	return cfg.Clone(), nil
}

func (s *Store) ListConfigs(_ context.Context) ([]deduction.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]deduction.Config, 0, len(s.configs))
	for _, cfg := range s.configs {
		result = append(result, cfg.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *Store) DeleteConfig(_ context.Context, id deduction.ConfigID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[id]; !ok {
		return deduction.NotFound(id)
	}
	delete(s.configs, id)
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(_ context.Context, emp payroll.Employee) error {
	if emp.ID == "" {
		return fmt.Errorf("employee id is required: %w", payroll.ErrInvalidEmployee)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.employees[emp.ID] = cloneEmployee(emp)
	return nil
}

func (s *Store) GetEmployee(_ context.Context, id string) (payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emp, ok := s.employees[id]
	if !ok {
		return payroll.Employee{}, payroll.EmployeeNotFound(id)
	}
	return cloneEmployee(emp), nil
}

func (s *Store) ListEmployees(_ context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]payroll.Employee, 0, len(s.employees))
	for _, emp := range s.employees {
		result = append(result, cloneEmployee(emp))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *Store) DeleteEmployee(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return payroll.EmployeeNotFound(id)
	}
	delete(s.employees, id)
	return nil
}

func cloneEmployee(emp payroll.Employee) payroll.Employee {
	emp.Earnings.Allowances = maps.Clone(emp.Earnings.Allowances)
	return emp
}

// =============================================================================
// RUNS
// =============================================================================

// SaveRun stores a run. Saving the same run ID twice fails.
func (s *Store) SaveRun(_ context.Context, run payroll.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; ok {
		return fmt.Errorf("payroll run %s already stored", run.ID)
	}
	run.Results = slices.Clone(run.Results)
	s.runs[run.ID] = run
	s.runOrder = append(s.runOrder, run.ID)
	return nil
}

func (s *Store) GetRun(_ context.Context, id string) (payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return payroll.Run{}, payroll.RunNotFound(id)
	}
	run.Results = slices.Clone(run.Results)
	return run, nil
}

// ListRuns returns runs newest first, by save order, without results.
func (s *Store) ListRuns(_ context.Context, limit int) ([]payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]payroll.Run, 0, len(s.runOrder))
	for i := len(s.runOrder) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}
		run := s.runs[s.runOrder[i]]
		run.Results = nil
		result = append(result, run)
	}
	return result, nil
}
