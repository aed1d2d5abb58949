/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists deduction configs, employees and payroll runs in a single
  embedded database. The Postgres store (store/postgres) implements the
  same interfaces for shared deployments.

INTERFACES IMPLEMENTED:
  deduction.ConfigStore: Admin-authored deduction configs (versioned)
  payroll.Store:         Employees and completed payroll runs

KEY TABLES:
  deduction_configs: One row per config, the config document in config_json
  employees:         Basic pay as exact decimal text, allowances as JSON
  payroll_runs:      Immutable run records in run_json

CONFIG DOCUMENTS:
  Configs are stored in their wire form (factory.ConfigJSON) rather than
  normalised into band and limit tables. The engine always needs the whole
  config, and a document keeps old rows readable when fields are added.
  The version column is bumped on every upsert.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/deductions.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - deduction/store.go: ConfigStore interface
  - payroll/store.go: payroll.Store interface
  - deduction/store/memory.go: In-memory config store for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/deduction-engine/deduction"
	"github.com/warp/deduction-engine/factory"
	"github.com/warp/deduction-engine/payroll"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	factory *factory.ConfigFactory
}

var (
	_ deduction.ConfigStore = (*Store)(nil)
	_ payroll.Store         = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, factory: factory.NewConfigFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS deduction_configs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_deduction_configs_name
		ON deduction_configs(name);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		basic_pay TEXT NOT NULL,
		allowances_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payroll_runs (
		id TEXT PRIMARY KEY,
		employees INTEGER NOT NULL,
		run_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payroll_runs_created_at
		ON payroll_runs(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CONFIG STORE (deduction.ConfigStore interface)
// =============================================================================

// SaveConfig inserts or replaces a config. The stored version starts at 1
// and increases on every save.
func (s *Store) SaveConfig(ctx context.Context, cfg deduction.Config) error {
	if cfg.ID == "" {
		return &deduction.ConfigError{Reason: "id is required"}
	}
	doc, err := factory.MarshalConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config %s: %w", cfg.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO deduction_configs (id, name, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			version = deduction_configs.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query, string(cfg.ID), cfg.Name, doc, now, now)
	return err
}

// GetConfig retrieves a config by ID.
func (s *Store) GetConfig(ctx context.Context, id deduction.ConfigID) (deduction.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	var version int
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json, version FROM deduction_configs WHERE id = ?",
		string(id),
	).Scan(&doc, &version)

	if errors.Is(err, sql.ErrNoRows) {
		return deduction.Config{}, deduction.NotFound(id)
	}
	if err != nil {
		return deduction.Config{}, err
	}
	return s.decodeConfig(doc, version)
}

// ListConfigs returns all configs ordered by name.
func (s *Store) ListConfigs(ctx context.Context) ([]deduction.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT config_json, version FROM deduction_configs ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	configs := []deduction.Config{}
	for rows.Next() {
		var doc string
		var version int
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, err
		}
		cfg, err := s.decodeConfig(doc, version)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// DeleteConfig removes a config.
func (s *Store) DeleteConfig(ctx context.Context, id deduction.ConfigID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM deduction_configs WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return deduction.NotFound(id)
	}
	return nil
}

func (s *Store) decodeConfig(doc string, version int) (deduction.Config, error) {
	cfg, _, err := s.factory.ParseConfig(doc)
	if err != nil {
		return deduction.Config{}, err
	}
	cfg.Version = version
	return cfg, nil
}

// =============================================================================
// EMPLOYEE STORE (payroll.Store interface)
// =============================================================================

// SaveEmployee inserts or replaces an employee and their earnings.
func (s *Store) SaveEmployee(ctx context.Context, emp payroll.Employee) error {
	if emp.ID == "" {
		return fmt.Errorf("employee id is required: %w", payroll.ErrInvalidEmployee)
	}
	allowances, err := json.Marshal(allowancesOrEmpty(emp.Earnings.Allowances))
	if err != nil {
		return fmt.Errorf("failed to encode allowances: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, basic_pay, allowances_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			basic_pay = excluded.basic_pay,
			allowances_json = excluded.allowances_json,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Earnings.BasicPay.String(), string(allowances), now, now,
	)
	return err
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, basic_pay, allowances_json FROM employees WHERE id = ?",
		id,
	)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Employee{}, payroll.EmployeeNotFound(id)
	}
	return emp, err
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, basic_pay, allowances_json FROM employees ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := []payroll.Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee. Past runs keep their copy.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payroll.EmployeeNotFound(id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (payroll.Employee, error) {
	var emp payroll.Employee
	var basicPay, allowances string
	if err := row.Scan(&emp.ID, &emp.Name, &basicPay, &allowances); err != nil {
		return payroll.Employee{}, err
	}

	pay, err := decimal.NewFromString(basicPay)
	if err != nil {
		return payroll.Employee{}, fmt.Errorf("employee %s: bad basic pay %q: %w", emp.ID, basicPay, err)
	}
	emp.Earnings.BasicPay = pay
	if err := json.Unmarshal([]byte(allowances), &emp.Earnings.Allowances); err != nil {
		return payroll.Employee{}, fmt.Errorf("employee %s: bad allowances: %w", emp.ID, err)
	}
	return emp, nil
}

func allowancesOrEmpty(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	if m == nil {
		return map[string]decimal.Decimal{}
	}
	return m
}

// =============================================================================
// RUN STORE (payroll.Store interface)
// =============================================================================

// SaveRun stores a completed run. Saving the same run ID twice fails.
func (s *Store) SaveRun(ctx context.Context, run payroll.Run) error {
	doc, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", run.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO payroll_runs (id, employees, run_json, created_at) VALUES (?, ?, ?, ?)",
		run.ID, run.Totals.Employees, string(doc), run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("payroll run %s already stored: %w", run.ID, err)
	}
	return err
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT run_json FROM payroll_runs WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Run{}, payroll.RunNotFound(id)
	}
	if err != nil {
		return payroll.Run{}, err
	}
	return decodeRun(doc)
}

// ListRuns returns the most recent runs without per-employee results.
// A limit of zero or less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT run_json FROM payroll_runs ORDER BY created_at DESC, id"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []payroll.Run{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		run, err := decodeRun(doc)
		if err != nil {
			return nil, err
		}
		run.Results = nil
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func decodeRun(doc string) (payroll.Run, error) {
	var run payroll.Run
	if err := json.Unmarshal([]byte(doc), &run); err != nil {
		return payroll.Run{}, fmt.Errorf("failed to decode run: %w", err)
	}
	return run, nil
}

// Helper functions

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
