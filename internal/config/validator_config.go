package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultValidatorConfigPath is the canonical validator threshold
// defaults file.
const DefaultValidatorConfigPath = "config/validator.defaults.json"

// ValidatorConfig holds the validator's tiered warning/error
// thresholds. Every field is a pointer so a partial JSON document only
// overrides the thresholds it mentions; the Get* accessors supply the
// spec's defaults for anything left nil.
type ValidatorConfig struct {
	ShortSpanWarningMeters       *float64 `json:"short_span_warning_meters,omitempty"`
	RadiusWarningMeters          *float64 `json:"radius_warning_meters,omitempty"`
	RadiusErrorMeters            *float64 `json:"radius_error_meters,omitempty"`
	BankWarningDegrees           *float64 `json:"bank_warning_degrees,omitempty"`
	BankErrorDegrees             *float64 `json:"bank_error_degrees,omitempty"`
	SlopeWarningPercent          *float64 `json:"slope_warning_percent,omitempty"`
	SlopeErrorPercent            *float64 `json:"slope_error_percent,omitempty"`
	CurvatureJumpWarning         *float64 `json:"curvature_jump_warning,omitempty"`
	CurvatureJumpError           *float64 `json:"curvature_jump_error,omitempty"`
	WidthWarningMeters           *float64 `json:"width_warning_meters,omitempty"`
	WidthErrorMeters             *float64 `json:"width_error_meters,omitempty"`
	ClothoidRatioWarningMin      *float64 `json:"clothoid_ratio_warning_min,omitempty"`
	ClothoidRatioWarningMax      *float64 `json:"clothoid_ratio_warning_max,omitempty"`
	SampleSpacingWarningFraction *float64 `json:"sample_spacing_warning_fraction,omitempty"`
	SampleSpacingErrorFraction   *float64 `json:"sample_spacing_error_fraction,omitempty"`
	SpeedLimitWarningKPH         *float64 `json:"speed_limit_warning_kph,omitempty"`
	MinTotalLengthWarningMeters  *float64 `json:"min_total_length_warning_meters,omitempty"`
	AllowZoneOverlap             *bool    `json:"allow_zone_overlap,omitempty"`
	SkipLoopWrapCurvatureCheck   *bool    `json:"skip_loop_wrap_curvature_check,omitempty"`
}

// EmptyValidatorConfig returns a ValidatorConfig with every field nil;
// the Get* accessors fall back to the spec's documented defaults.
func EmptyValidatorConfig() *ValidatorConfig {
	return &ValidatorConfig{}
}

// LoadValidatorConfig loads a ValidatorConfig from a JSON file. Fields
// omitted from the file keep their default values.
func LoadValidatorConfig(path string) (*ValidatorConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("validator config file must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read validator config: %w", err)
	}
	cfg := EmptyValidatorConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse validator config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid validator config: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultValidatorConfig loads DefaultValidatorConfigPath,
// searching from the current directory up through common parent
// directories. It never panics: when no candidate loads, it returns
// EmptyValidatorConfig, whose accessors supply the compiled-in defaults.
func MustLoadDefaultValidatorConfig() *ValidatorConfig {
	candidates := []string{
		DefaultValidatorConfigPath,
		"../../" + DefaultValidatorConfigPath,
		"../../../" + DefaultValidatorConfigPath,
		"../../../../" + DefaultValidatorConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadValidatorConfig(path); err == nil {
			return cfg
		}
	}
	return EmptyValidatorConfig()
}

// Validate checks that any set thresholds are internally consistent
// (warning thresholds must not be stricter than error thresholds).
func (c *ValidatorConfig) Validate() error {
	if c.RadiusWarningMeters != nil && c.RadiusErrorMeters != nil && *c.RadiusErrorMeters > *c.RadiusWarningMeters {
		return fmt.Errorf("radius_error_meters (%f) must not exceed radius_warning_meters (%f)", *c.RadiusErrorMeters, *c.RadiusWarningMeters)
	}
	if c.BankWarningDegrees != nil && c.BankErrorDegrees != nil && *c.BankWarningDegrees > *c.BankErrorDegrees {
		return fmt.Errorf("bank_warning_degrees (%f) must not exceed bank_error_degrees (%f)", *c.BankWarningDegrees, *c.BankErrorDegrees)
	}
	if c.SlopeWarningPercent != nil && c.SlopeErrorPercent != nil && *c.SlopeWarningPercent > *c.SlopeErrorPercent {
		return fmt.Errorf("slope_warning_percent (%f) must not exceed slope_error_percent (%f)", *c.SlopeWarningPercent, *c.SlopeErrorPercent)
	}
	return nil
}

func (c *ValidatorConfig) GetShortSpanWarningMeters() float64 {
	if c.ShortSpanWarningMeters == nil {
		return 5
	}
	return *c.ShortSpanWarningMeters
}

func (c *ValidatorConfig) GetRadiusWarningMeters() float64 {
	if c.RadiusWarningMeters == nil {
		return 20000
	}
	return *c.RadiusWarningMeters
}

func (c *ValidatorConfig) GetRadiusErrorMeters() float64 {
	if c.RadiusErrorMeters == nil {
		return 15
	}
	return *c.RadiusErrorMeters
}

func (c *ValidatorConfig) GetBankWarningDegrees() float64 {
	if c.BankWarningDegrees == nil {
		return 8
	}
	return *c.BankWarningDegrees
}

func (c *ValidatorConfig) GetBankErrorDegrees() float64 {
	if c.BankErrorDegrees == nil {
		return 15
	}
	return *c.BankErrorDegrees
}

func (c *ValidatorConfig) GetSlopeWarningPercent() float64 {
	if c.SlopeWarningPercent == nil {
		return 6
	}
	return *c.SlopeWarningPercent
}

func (c *ValidatorConfig) GetSlopeErrorPercent() float64 {
	if c.SlopeErrorPercent == nil {
		return 12
	}
	return *c.SlopeErrorPercent
}

func (c *ValidatorConfig) GetCurvatureJumpWarning() float64 {
	if c.CurvatureJumpWarning == nil {
		return 0.005
	}
	return *c.CurvatureJumpWarning
}

func (c *ValidatorConfig) GetCurvatureJumpError() float64 {
	if c.CurvatureJumpError == nil {
		return 0.01
	}
	return *c.CurvatureJumpError
}

func (c *ValidatorConfig) GetWidthWarningMeters() float64 {
	if c.WidthWarningMeters == nil {
		return 8
	}
	return *c.WidthWarningMeters
}

func (c *ValidatorConfig) GetWidthErrorMeters() float64 {
	if c.WidthErrorMeters == nil {
		return 6
	}
	return *c.WidthErrorMeters
}

func (c *ValidatorConfig) GetClothoidRatioWarningMin() float64 {
	if c.ClothoidRatioWarningMin == nil {
		return 0.1
	}
	return *c.ClothoidRatioWarningMin
}

func (c *ValidatorConfig) GetClothoidRatioWarningMax() float64 {
	if c.ClothoidRatioWarningMax == nil {
		return 3.0
	}
	return *c.ClothoidRatioWarningMax
}

func (c *ValidatorConfig) GetSampleSpacingWarningFraction() float64 {
	if c.SampleSpacingWarningFraction == nil {
		return 0.25
	}
	return *c.SampleSpacingWarningFraction
}

func (c *ValidatorConfig) GetSampleSpacingErrorFraction() float64 {
	if c.SampleSpacingErrorFraction == nil {
		return 0.5
	}
	return *c.SampleSpacingErrorFraction
}

func (c *ValidatorConfig) GetSpeedLimitWarningKPH() float64 {
	if c.SpeedLimitWarningKPH == nil {
		return 20
	}
	return *c.SpeedLimitWarningKPH
}

func (c *ValidatorConfig) GetMinTotalLengthWarningMeters() float64 {
	if c.MinTotalLengthWarningMeters == nil {
		return 200
	}
	return *c.MinTotalLengthWarningMeters
}

func (c *ValidatorConfig) GetAllowZoneOverlap() bool {
	if c.AllowZoneOverlap == nil {
		return false
	}
	return *c.AllowZoneOverlap
}

// GetSkipLoopWrapCurvatureCheck reports whether the wrap-around
// curvature-continuity check (span N-1 -> span 0) is skipped for open
// routes. Defaults to false: the validator treats loops and open
// routes identically, matching the source.
func (c *ValidatorConfig) GetSkipLoopWrapCurvatureCheck() bool {
	if c.SkipLoopWrapCurvatureCheck == nil {
		return false
	}
	return *c.SkipLoopWrapCurvatureCheck
}
