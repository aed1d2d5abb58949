/*
Package factory provides JSON/YAML to Go deduction config conversion.

PURPOSE:
  Converts deduction definitions authored in the admin surface (JSON) or in
  seed files (YAML) into deduction.Config values. This is the boundary where
  loose input becomes the strict types the engine computes on.

JSON SCHEMA:
  {
    "id": "nssf",
    "name": "NSSF",
    "percentage": 12,
    "earning_type": "Basic Salary",
    "has_bands": false,
    "bands": [
      {"id": "b1", "min": 0, "max": 24000, "percentage": 10},
      {"id": "b2", "min": 24000, "max": null, "percentage": 30}
    ],
    "paid_by": {"employer": 45.8, "employee": 54.2},
    "limits": {"type": "earning", "lower": null, "upper": 60000}
  }

LENIENT NUMBERS:
  Numbers are optional. A missing, NaN or infinite number becomes 0, and a
  missing or null limit bound means "no limit". Nothing here rejects a config
  for its numbers; questionable values come back as warnings.

IDENTIFIERS:
  Configs and bands without an id get a random UUID, so two rows created in
  the same millisecond can never collide.

USAGE:
  f := factory.NewConfigFactory()
  cfg, warnings, err := f.ParseConfig(jsonString)

SEE ALSO:
  - deduction/types.go: Config type definition
  - deduction/validate.go: Warning codes
  - statutory/presets.go: Go-built configs for common deductions
*/
package factory

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/deduction-engine/deduction"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConfigJSON is the JSON representation of a deduction config.
type ConfigJSON struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Percentage  *float64    `json:"percentage,omitempty" yaml:"percentage,omitempty"`
	EarningType string      `json:"earning_type" yaml:"earning_type"`
	HasBands    bool        `json:"has_bands" yaml:"has_bands"`
	Bands       []BandJSON  `json:"bands,omitempty" yaml:"bands,omitempty"`
	PaidBy      PaidByJSON  `json:"paid_by" yaml:"paid_by"`
	Limits      *LimitsJSON `json:"limits,omitempty" yaml:"limits,omitempty"`
	Version     int         `json:"version,omitempty" yaml:"-"`
}

// BandJSON represents one band. A null max is open-ended.
type BandJSON struct {
	ID         string   `json:"id,omitempty" yaml:"id,omitempty"`
	Min        *float64 `json:"min" yaml:"min"`
	Max        *float64 `json:"max" yaml:"max"`
	Percentage *float64 `json:"percentage" yaml:"percentage"`
}

// PaidByJSON holds percentages of the deduction amount.
type PaidByJSON struct {
	Employer *float64 `json:"employer" yaml:"employer"`
	Employee *float64 `json:"employee" yaml:"employee"`
}

// LimitsJSON represents limit configuration.
type LimitsJSON struct {
	Type  string   `json:"type" yaml:"type"` // deduction, earning
	Lower *float64 `json:"lower" yaml:"lower"`
	Upper *float64 `json:"upper" yaml:"upper"`
}

// SnapshotJSON is an employee's earnings as supplied by the payroll surface.
type SnapshotJSON struct {
	BasicPay   float64            `json:"basic_pay" yaml:"basic_pay"`
	Allowances map[string]float64 `json:"allowances,omitempty" yaml:"allowances,omitempty"`
}

// configFile is the YAML seed file layout.
type configFile struct {
	Deductions []ConfigJSON `yaml:"deductions"`
}

// WarnNonFinite is reported when a NaN or infinite number was replaced by 0.
const WarnNonFinite = "number_not_finite"

// =============================================================================
// CONFIG FACTORY
// =============================================================================

// ConfigFactory converts wire configs into deduction.Config.
type ConfigFactory struct {
	newID func() string
}

// NewConfigFactory creates a factory that assigns UUIDs to unnamed configs.
func NewConfigFactory() *ConfigFactory {
	return &ConfigFactory{newID: uuid.NewString}
}

// ParseConfig parses a single JSON config.
func (f *ConfigFactory) ParseConfig(jsonStr string) (deduction.Config, []deduction.Warning, error) {
	var cj ConfigJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return deduction.Config{}, nil, fmt.Errorf("failed to parse config JSON: %w: %w", deduction.ErrInvalidConfig, err)
	}

	cfg, warnings := f.FromJSON(cj)
	return cfg, warnings, nil
}

// ParseConfigs parses a JSON array of configs.
func (f *ConfigFactory) ParseConfigs(data []byte) ([]deduction.Config, []deduction.Warning, error) {
	var cjs []ConfigJSON
	if err := json.Unmarshal(data, &cjs); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config list: %w: %w", deduction.ErrInvalidConfig, err)
	}
	configs, warnings := f.fromList(cjs)
	return configs, warnings, nil
}

// ParseYAML parses a seed file of the form:
//
//	deductions:
//	  - id: nssf
//	    name: NSSF
//	    percentage: 12
//	    ...
func (f *ConfigFactory) ParseYAML(data []byte) ([]deduction.Config, []deduction.Warning, error) {
	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config YAML: %w: %w", deduction.ErrInvalidConfig, err)
	}
	configs, warnings := f.fromList(file.Deductions)
	return configs, warnings, nil
}

func (f *ConfigFactory) fromList(cjs []ConfigJSON) ([]deduction.Config, []deduction.Warning) {
	configs := make([]deduction.Config, 0, len(cjs))
	var warnings []deduction.Warning
	for _, cj := range cjs {
		cfg, ws := f.FromJSON(cj)
		configs = append(configs, cfg)
		warnings = append(warnings, ws...)
	}
	return configs, warnings
}

// FromJSON converts ConfigJSON to deduction.Config, returning the
// validation warnings for the result. It never fails.
func (f *ConfigFactory) FromJSON(cj ConfigJSON) (deduction.Config, []deduction.Warning) {
	p := parser{}

	cfg := deduction.Config{
		ID:          deduction.ConfigID(strings.TrimSpace(cj.ID)),
		Name:        strings.TrimSpace(cj.Name),
		Percentage:  p.number("percentage", cj.Percentage),
		EarningType: deduction.EarningType(strings.TrimSpace(cj.EarningType)),
		HasBands:    cj.HasBands,
		PaidBy: deduction.PaidBy{
			Employer: p.number("paid_by.employer", cj.PaidBy.Employer),
			Employee: p.number("paid_by.employee", cj.PaidBy.Employee),
		},
		Version: cj.Version,
	}
	if cfg.ID == "" {
		cfg.ID = deduction.ConfigID(f.newID())
	}

	for i, bj := range cj.Bands {
		field := fmt.Sprintf("bands[%d]", i)
		band := deduction.Band{
			ID:         strings.TrimSpace(bj.ID),
			Min:        p.number(field+".min", bj.Min),
			Max:        p.bound(field+".max", bj.Max),
			Percentage: p.number(field+".percentage", bj.Percentage),
		}
		if band.ID == "" {
			band.ID = f.newID()
		}
		cfg.Bands = append(cfg.Bands, band)
	}

	if cj.Limits != nil {
		cfg.Limits = deduction.Limits{
			Type:  deduction.LimitType(strings.ToLower(strings.TrimSpace(cj.Limits.Type))),
			Lower: p.bound("limits.lower", cj.Limits.Lower),
			Upper: p.bound("limits.upper", cj.Limits.Upper),
		}
	}

	warnings := append(p.warnings(cfg.ID), deduction.Validate(cfg)...)
	return cfg, warnings
}

// =============================================================================
// REVERSE CONVERSION
// =============================================================================

// ToJSON converts a deduction.Config back to its wire form.
func ToJSON(cfg deduction.Config) ConfigJSON {
	cj := ConfigJSON{
		ID:          string(cfg.ID),
		Name:        cfg.Name,
		Percentage:  floatPtr(cfg.Percentage),
		EarningType: string(cfg.EarningType),
		HasBands:    cfg.HasBands,
		PaidBy: PaidByJSON{
			Employer: floatPtr(cfg.PaidBy.Employer),
			Employee: floatPtr(cfg.PaidBy.Employee),
		},
		Version: cfg.Version,
	}

	for _, b := range cfg.Bands {
		bj := BandJSON{
			ID:         b.ID,
			Min:        floatPtr(b.Min),
			Percentage: floatPtr(b.Percentage),
		}
		if b.Max != nil {
			bj.Max = floatPtr(*b.Max)
		}
		cj.Bands = append(cj.Bands, bj)
	}

	l := cfg.Limits
	if l.Type != "" || l.Lower != nil || l.Upper != nil {
		cj.Limits = &LimitsJSON{Type: string(l.Type)}
		if l.Lower != nil {
			cj.Limits.Lower = floatPtr(*l.Lower)
		}
		if l.Upper != nil {
			cj.Limits.Upper = floatPtr(*l.Upper)
		}
	}
	return cj
}

// MarshalConfig serializes a config for storage.
func MarshalConfig(cfg deduction.Config) (string, error) {
	data, err := json.Marshal(ToJSON(cfg))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ToSnapshot converts wire earnings into an engine snapshot. Non-finite
// amounts become 0.
func (s SnapshotJSON) ToSnapshot() deduction.Snapshot {
	snap := deduction.Snapshot{
		BasicPay:   finite(s.BasicPay),
		Allowances: make(map[string]decimal.Decimal, len(s.Allowances)),
	}
	for name, amount := range s.Allowances {
		snap.Allowances[name] = finite(amount)
	}
	return snap
}

// SnapshotToJSON is the reverse of ToSnapshot.
func SnapshotToJSON(s deduction.Snapshot) SnapshotJSON {
	out := SnapshotJSON{
		BasicPay:   s.BasicPay.InexactFloat64(),
		Allowances: make(map[string]float64, len(s.Allowances)),
	}
	for name, amount := range s.Allowances {
		out.Allowances[name] = amount.InexactFloat64()
	}
	return out
}

// =============================================================================
// NUMBER PARSING
// =============================================================================

type parser struct {
	nonFinite []string
}

// number reads an optional number, defaulting to 0.
func (p *parser) number(field string, v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		p.nonFinite = append(p.nonFinite, field)
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}

// bound reads an optional limit; nil and non-finite mean "no limit".
func (p *parser) bound(field string, v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		p.nonFinite = append(p.nonFinite, field)
		return nil
	}
	return deduction.DecimalFromFloat(*v)
}

func (p *parser) warnings(id deduction.ConfigID) []deduction.Warning {
	var ws []deduction.Warning
	for _, field := range p.nonFinite {
		ws = append(ws, deduction.Warning{
			ConfigID: id,
			Field:    field,
			Code:     WarnNonFinite,
			Message:  "non-finite number treated as missing",
		})
	}
	return ws
}

func finite(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func floatPtr(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}
