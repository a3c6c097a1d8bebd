package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/corporate-valuation/pkg/constants"
	"github.com/iwvelando/corporate-valuation/pkg/mathutil"
	"github.com/iwvelando/corporate-valuation/pkg/valuation"
)

// AxisConfig describes one grid axis. Values may be listed explicitly,
// generated from start/stop/steps, or spread around center by step.
type AxisConfig struct {
	Driver string    `yaml:"driver" mapstructure:"driver"`
	Values []float64 `yaml:"values,omitempty" mapstructure:"values"`
	Labels []string  `yaml:"labels,omitempty" mapstructure:"labels"`
	Start  *float64  `yaml:"start,omitempty" mapstructure:"start"`
	Stop   *float64  `yaml:"stop,omitempty" mapstructure:"stop"`
	Steps  int       `yaml:"steps,omitempty" mapstructure:"steps"`
	Center *float64  `yaml:"center,omitempty" mapstructure:"center"`
	Step   float64   `yaml:"step,omitempty" mapstructure:"step"`
	Radius int       `yaml:"radius,omitempty" mapstructure:"radius"`
}

// SensitivityConfig defines a single two-driver grid directive.
type SensitivityConfig struct {
	Title   string     `yaml:"title,omitempty" mapstructure:"title"`
	Metric  string     `yaml:"metric,omitempty" mapstructure:"metric"`
	Workers int        `yaml:"workers,omitempty" mapstructure:"workers"`
	Rows    AxisConfig `yaml:"rows" mapstructure:"rows"`
	Cols    AxisConfig `yaml:"cols" mapstructure:"cols"`
}

// CanonicalDriver returns the canonical identifier for a grid driver, or the
// lowered input when it is not recognized.
func CanonicalDriver(value string) string {
	driver, err := valuation.ParseDriver(value)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(value))
	}
	return string(driver)
}

// Normalize ensures defaults and canonical values are applied before validation.
func (s *SensitivityConfig) Normalize() {
	if s == nil {
		return
	}
	s.Rows.Driver = CanonicalDriver(s.Rows.Driver)
	s.Cols.Driver = CanonicalDriver(s.Cols.Driver)

	s.Metric = strings.ToLower(strings.TrimSpace(s.Metric))
	if metric, err := valuation.ParseMetric(s.Metric); err == nil {
		s.Metric = string(metric)
	}
	if s.Metric == "" {
		s.Metric = constants.DefaultGridMetric
	}

	s.Title = strings.TrimSpace(s.Title)
	if s.Title == "" {
		s.Title = fmt.Sprintf("%s: %s vs %s", s.Metric, s.Rows.Driver, s.Cols.Driver)
	}
	if s.Workers < 0 {
		s.Workers = 0
	}
}

// Validate returns an error when the directive is unsupported.
func (s *SensitivityConfig) Validate() error {
	if s == nil {
		return fmt.Errorf("sensitivity configuration cannot be nil")
	}

	s.Normalize()

	if _, err := valuation.ParseMetric(s.Metric); err != nil {
		return err
	}
	rows, err := s.Rows.Resolve()
	if err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	cols, err := s.Cols.Resolve()
	if err != nil {
		return fmt.Errorf("cols: %w", err)
	}
	if rows.Driver == cols.Driver {
		return fmt.Errorf("sensitivity rows and cols must use different drivers, both are %s", rows.Driver)
	}
	if cells := len(rows.Values) * len(cols.Values); cells > constants.MaxGridCells {
		return fmt.Errorf("sensitivity grid of %d cells exceeds the limit of %d", cells, constants.MaxGridCells)
	}
	return nil
}

// Request builds the generator request for this directive.
func (s *SensitivityConfig) Request() (valuation.GridRequest, error) {
	if err := s.Validate(); err != nil {
		return valuation.GridRequest{}, err
	}
	metric, err := valuation.ParseMetric(s.Metric)
	if err != nil {
		return valuation.GridRequest{}, err
	}
	rows, err := s.Rows.Resolve()
	if err != nil {
		return valuation.GridRequest{}, err
	}
	cols, err := s.Cols.Resolve()
	if err != nil {
		return valuation.GridRequest{}, err
	}
	return valuation.GridRequest{Title: s.Title, Metric: metric, Rows: rows, Cols: cols}, nil
}

// Resolve turns the axis directive into a generator axis.
func (a AxisConfig) Resolve() (valuation.Axis, error) {
	driver, err := valuation.ParseDriver(a.Driver)
	if err != nil {
		return valuation.Axis{}, err
	}

	var values []float64
	forms := 0
	if len(a.Values) > 0 {
		forms++
		values = append([]float64(nil), a.Values...)
	}
	if a.Start != nil || a.Stop != nil {
		forms++
		if a.Start == nil || a.Stop == nil {
			return valuation.Axis{}, fmt.Errorf("%s axis requires both start and stop", driver)
		}
		if a.Steps < 2 {
			return valuation.Axis{}, fmt.Errorf("%s axis requires at least 2 steps, got %d", driver, a.Steps)
		}
		values = mathutil.Steps(*a.Start, *a.Stop, a.Steps)
	}
	if a.Center != nil {
		forms++
		if a.Step <= 0 || a.Radius < 1 {
			return valuation.Axis{}, fmt.Errorf("%s axis requires a positive step and radius around center", driver)
		}
		values = mathutil.Around(*a.Center, a.Step, a.Radius)
	}
	switch forms {
	case 0:
		return valuation.Axis{}, fmt.Errorf("%s axis has no values", driver)
	case 1:
	default:
		return valuation.Axis{}, fmt.Errorf("%s axis must use exactly one of values, start/stop or center", driver)
	}

	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return valuation.Axis{}, fmt.Errorf("%s axis contains non-finite value %v", driver, v)
		}
	}
	if len(a.Labels) > 0 && len(a.Labels) != len(values) {
		return valuation.Axis{}, fmt.Errorf("%s axis has %d labels for %d values", driver, len(a.Labels), len(values))
	}
	return valuation.Axis{Driver: driver, Values: values, Labels: a.Labels}, nil
}
