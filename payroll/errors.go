package payroll

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRun is returned when a run has no employees to compute.
	ErrEmptyRun = errors.New("payroll run has no employees")

	// ErrRunNotFound is returned when a run ID is unknown.
	ErrRunNotFound = errors.New("payroll run not found")

	// ErrEmployeeNotFound is returned when an employee ID is unknown.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrInvalidEmployee is returned when an employee record cannot be stored.
	ErrInvalidEmployee = errors.New("invalid employee")
)

// EmployeeNotFound wraps ErrEmployeeNotFound with the missing ID.
func EmployeeNotFound(id string) error {
	return fmt.Errorf("employee %s: %w", id, ErrEmployeeNotFound)
}

// RunNotFound wraps ErrRunNotFound with the missing ID.
func RunNotFound(id string) error {
	return fmt.Errorf("payroll run %s: %w", id, ErrRunNotFound)
}

// IsNotFound returns true if err concerns a missing employee or run.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) || errors.Is(err, ErrRunNotFound)
}

// IsClientError returns true if err is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyRun) || errors.Is(err, ErrInvalidEmployee)
}
