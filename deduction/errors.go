/*
errors.go - Error types for deduction configuration handling

PURPOSE:
  The engine itself never returns errors: bad numbers compute as 0 and odd
  shapes come back as warnings. Errors only exist around it, when configs
  are stored, looked up or decoded.

USAGE:
  cfg, err := store.GetConfig(ctx, id)
  if errors.Is(err, deduction.ErrConfigNotFound) {
      // 404
  }

SEE ALSO:
  - validate.go: Warnings for configs that compute but look wrong
  - store.go: ConfigStore, which returns these errors
*/
package deduction

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConfigNotFound is returned when a referenced config doesn't exist.
	ErrConfigNotFound = errors.New("deduction config not found")

	// ErrInvalidConfig is returned when a config document cannot be decoded
	// or is missing something a store needs (an ID).
	ErrInvalidConfig = errors.New("invalid deduction config")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ConfigError ties a failure to the config it concerns.
type ConfigError struct {
	ConfigID ConfigID
	Reason   string
	Err      error
}

func (e *ConfigError) Error() string {
	if e.ConfigID == "" {
		return fmt.Sprintf("deduction config: %s", e.Reason)
	}
	return fmt.Sprintf("deduction config %s: %s", e.ConfigID, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidConfig
}

// NotFound builds the error stores return for a missing config.
func NotFound(id ConfigID) error {
	return &ConfigError{ConfigID: id, Reason: "not found", Err: ErrConfigNotFound}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing config.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrConfigNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
