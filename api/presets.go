/*
presets.go - Statutory preset catalog and demo data

PURPOSE:

	Lets admins start from the built-in statutory configs instead of writing
	JSON by hand, and optionally adds a few demo employees so a payroll run
	can be tried straight away.

USAGE VIA API:

	GET  /api/presets
	POST /api/presets/load
	{"keys": ["paye", "nssf"], "demo_employees": true}

	Loading a preset replaces any stored config with the same ID and bumps
	its version. Nothing else is touched.

SEE ALSO:
  - statutory/presets.go: The catalog
  - cmd/server/main.go: Seeds the defaults into an empty store at startup
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/deduction-engine/deduction"
	"github.com/warp/deduction-engine/payroll"
	"github.com/warp/deduction-engine/statutory"
)

// demoEmployees cover the interesting limit outcomes of the default presets:
// below the health minimum, mid-range, and above the pension ceiling.
var demoEmployees = []payroll.Employee{
	{
		ID:   "demo-junior",
		Name: "Wanjiru Kamau",
		Earnings: deduction.Snapshot{
			BasicPay:   decimal.NewFromInt(9000),
			Allowances: map[string]decimal.Decimal{"Transport": decimal.NewFromInt(1000)},
		},
	},
	{
		ID:   "demo-analyst",
		Name: "Otieno Ouma",
		Earnings: deduction.Snapshot{
			BasicPay: decimal.NewFromInt(65000),
			Allowances: map[string]decimal.Decimal{
				"Housing":   decimal.NewFromInt(12000),
				"Transport": decimal.NewFromInt(4000),
			},
		},
	},
	{
		ID:   "demo-director",
		Name: "Achieng Njoroge",
		Earnings: deduction.Snapshot{
			BasicPay:   decimal.NewFromInt(420000),
			Allowances: map[string]decimal.Decimal{"Housing": decimal.NewFromInt(80000)},
		},
	},
}

// ListPresets returns the preset catalog.
// GET /api/presets
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets := statutory.Presets()
	dtos := make([]PresetDTO, len(presets))
	for i, p := range presets {
		dtos[i] = toPresetDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadPresets saves the selected presets, and demo employees if asked.
// POST /api/presets/load
func (h *Handler) LoadPresets(w http.ResponseWriter, r *http.Request) {
	var req LoadPresetsRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}

	presets := statutory.Presets()
	if len(req.Keys) > 0 {
		presets = presets[:0:0]
		for _, key := range req.Keys {
			p, ok := statutory.Find(key)
			if !ok {
				writeError(w, http.StatusBadRequest, "Unknown preset", fmt.Errorf("no preset %q", key))
				return
			}
			presets = append(presets, p)
		}
	}

	ctx := r.Context()
	resp := LoadPresetsResponse{Configs: make([]ConfigDTO, 0, len(presets))}
	for _, p := range presets {
		if err := h.Store.SaveConfig(ctx, p.Config); err != nil {
			h.fail(w, r, "Failed to save preset", err)
			return
		}
		saved, err := h.Store.GetConfig(ctx, p.Config.ID)
		if err != nil {
			h.fail(w, r, "Failed to reload preset", err)
			return
		}
		resp.Configs = append(resp.Configs, toConfigDTO(saved, nil))
	}

	if req.DemoEmployees {
		for _, emp := range demoEmployees {
			if err := h.Store.SaveEmployee(ctx, emp); err != nil {
				h.fail(w, r, "Failed to save demo employee", err)
				return
			}
			resp.Employees = append(resp.Employees, toEmployeeDTO(emp))
		}
	}

	h.Logger.InfoContext(ctx, "presets loaded",
		"configs", len(resp.Configs),
		"employees", len(resp.Employees),
	)
	writeJSON(w, http.StatusOK, resp)
}

// SeedDefaults saves the default presets when the store holds no configs.
// It returns how many configs were written.
func SeedDefaults(ctx context.Context, store deduction.ConfigStore) (int, error) {
	existing, err := store.ListConfigs(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	return SeedConfigs(ctx, store, statutory.Defaults())
}

// SeedConfigs saves configs in order, stopping at the first failure.
func SeedConfigs(ctx context.Context, store deduction.ConfigStore, configs []deduction.Config) (int, error) {
	for i, cfg := range configs {
		if err := store.SaveConfig(ctx, cfg); err != nil {
			return i, fmt.Errorf("seed config %s: %w", cfg.ID, err)
		}
	}
	return len(configs), nil
}
