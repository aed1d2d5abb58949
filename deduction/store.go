package deduction

import "context"

// =============================================================================
// CONFIG STORE - Where admin-authored configs are read from
// =============================================================================

// ConfigStore persists deduction configs. The engine never reads from it
// directly; callers load the configs they need and hand them to Compute.
//
// Implementations:
//   - store/memory:    in-memory, for tests and dev
//   - store/sqlite:    embedded database
//   - store/postgres:  pgx-backed
type ConfigStore interface {
	// SaveConfig inserts or replaces a config, bumping its version.
	SaveConfig(ctx context.Context, cfg Config) error

	// GetConfig returns ErrConfigNotFound (wrapped) when id is unknown.
	GetConfig(ctx context.Context, id ConfigID) (Config, error)

	// ListConfigs returns every config ordered by name, then ID.
	ListConfigs(ctx context.Context) ([]Config, error)

	// DeleteConfig returns ErrConfigNotFound (wrapped) when id is unknown.
	DeleteConfig(ctx context.Context, id ConfigID) error
}

// Lookup returns the configs for ids in the order given.
func Lookup(ctx context.Context, store ConfigStore, ids []ConfigID) ([]Config, error) {
	configs := make([]Config, 0, len(ids))
	for _, id := range ids {
		cfg, err := store.GetConfig(ctx, id)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
