package deduction

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VALIDATION - Boundary warnings, never errors
// =============================================================================

// Warning flags a configuration that computes but is probably not what the
// author meant. Compute never looks at warnings; the factory and the API
// surface them next to the config.
type Warning struct {
	ConfigID ConfigID `json:"config_id"`
	Field    string   `json:"field"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

const (
	WarnNameEmpty        = "name_empty"
	WarnEarningTypeEmpty = "earning_type_empty"
	WarnBandsEmpty       = "bands_empty"
	WarnBandFirstMin     = "band_first_min_not_zero"
	WarnBandGap          = "band_gap"
	WarnBandOverlap      = "band_overlap"
	WarnBandOpenNotLast  = "band_open_not_last"
	WarnBandInverted     = "band_inverted"
	WarnPercentageRange  = "percentage_out_of_range"
	WarnPaidByNot100     = "paid_by_not_100"
	WarnLimitInverted    = "limit_inverted"
	WarnLimitTypeUnknown = "limit_type_unknown"
)

// Validate lists everything questionable about cfg. An empty slice means the
// config is well formed.
func Validate(cfg Config) []Warning {
	v := validator{cfg: cfg}

	if strings.TrimSpace(cfg.Name) == "" {
		v.add("name", WarnNameEmpty, "deduction has no name")
	}
	if strings.TrimSpace(string(cfg.EarningType)) == "" {
		v.add("earning_type", WarnEarningTypeEmpty, "earning type is empty, base will resolve to 0")
	}

	if cfg.HasBands {
		v.checkBands()
	} else {
		v.checkPercentage("percentage", cfg.Percentage)
	}

	v.checkPercentage("paid_by.employer", cfg.PaidBy.Employer)
	v.checkPercentage("paid_by.employee", cfg.PaidBy.Employee)
	if sum := cfg.PaidBy.Employer.Add(cfg.PaidBy.Employee); !sum.Equal(hundred) {
		v.add("paid_by", WarnPaidByNot100, fmt.Sprintf("employer + employee is %s, not 100", sum))
	}

	v.checkLimits()
	return v.warnings
}

type validator struct {
	cfg      Config
	warnings []Warning
}

func (v *validator) add(field, code, msg string) {
	v.warnings = append(v.warnings, Warning{
		ConfigID: v.cfg.ID,
		Field:    field,
		Code:     code,
		Message:  msg,
	})
}

func (v *validator) checkPercentage(field string, pct decimal.Decimal) {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		v.add(field, WarnPercentageRange, fmt.Sprintf("%s%% is outside [0, 100]", pct))
	}
}

func (v *validator) checkBands() {
	bands := v.cfg.Bands
	if len(bands) == 0 {
		v.add("bands", WarnBandsEmpty, "banded deduction has no bands, amount will be 0")
		return
	}

	if !bands[0].Min.IsZero() {
		v.add("bands[0].min", WarnBandFirstMin, fmt.Sprintf("first band starts at %s, not 0", bands[0].Min))
	}

	for i, b := range bands {
		field := fmt.Sprintf("bands[%d]", i)
		v.checkPercentage(field+".percentage", b.Percentage)

		if b.Max != nil && b.Max.LessThan(b.Min) {
			v.add(field+".max", WarnBandInverted, fmt.Sprintf("max %s is below min %s", b.Max, b.Min))
		}
		if b.Max == nil && i != len(bands)-1 {
			v.add(field+".max", WarnBandOpenNotLast, "open-ended band is not the last band")
		}

		if i == 0 {
			continue
		}
		prev := bands[i-1]
		if prev.Max == nil {
			// Already reported as open-not-last; every later band is shadowed.
			continue
		}
		switch {
		case b.Min.GreaterThan(*prev.Max):
			v.add(field+".min", WarnBandGap, fmt.Sprintf("gap between %s and %s", prev.Max, b.Min))
		case b.Min.LessThan(*prev.Max):
			v.add(field+".min", WarnBandOverlap, fmt.Sprintf("starts at %s, inside previous band ending %s", b.Min, prev.Max))
		}
	}
}

func (v *validator) checkLimits() {
	l := v.cfg.Limits
	if l.Lower == nil && l.Upper == nil {
		return
	}

	switch l.Type {
	case LimitOnDeduction, LimitOnEarning:
	default:
		v.add("limits.type", WarnLimitTypeUnknown, fmt.Sprintf("limit type %q is ignored", l.Type))
	}

	if l.Lower != nil && l.Upper != nil && l.Lower.GreaterThan(*l.Upper) {
		v.add("limits", WarnLimitInverted, fmt.Sprintf("lower %s is above upper %s", l.Lower, l.Upper))
	}
}
