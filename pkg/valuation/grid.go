package valuation

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/iwvelando/corporate-valuation/pkg/constants"
	"golang.org/x/sync/errgroup"
)

// Driver names the assumption a sensitivity axis perturbs.
type Driver string

const (
	// DriverWACC forces the discount rate by back-solving the cost of
	// equity under the base capital structure weights.
	DriverWACC Driver = "wacc"
	// DriverTerminalGrowth sets the perpetuity growth rate.
	DriverTerminalGrowth Driver = "terminal_growth"
	// DriverExitMultiple sets the terminal EV/EBITDA multiple.
	DriverExitMultiple Driver = "exit_multiple"
	// DriverRevenueGrowth sets the revenue growth rate during the ramp.
	DriverRevenueGrowth Driver = "revenue_growth"
	// DriverEBITMargin sets the final-year EBIT margin.
	DriverEBITMargin Driver = "ebit_margin"
)

// ParseDriver maps a user-facing driver name onto a Driver.
func ParseDriver(value string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "wacc", "discount_rate", "discountrate":
		return DriverWACC, nil
	case "terminal_growth", "terminalgrowth", "tg", "g":
		return DriverTerminalGrowth, nil
	case "exit_multiple", "exitmultiple", "exit-multiple", "multiple":
		return DriverExitMultiple, nil
	case "revenue_growth", "revenuegrowth", "growth":
		return DriverRevenueGrowth, nil
	case "ebit_margin", "ebitmargin", "margin":
		return DriverEBITMargin, nil
	default:
		return "", fmt.Errorf("%w: unknown driver %q", ErrMalformedGrid, value)
	}
}

// apply writes v into the driver's field on x.
func (d Driver) apply(x *ExtendedAssumptions, v float64) error {
	switch d {
	case DriverWACC:
		ke, err := ImpliedCostOfEquity(v, x.WD, x.KD, x.WE, x.TaxRate)
		if err != nil {
			return err
		}
		x.KeManual = ke
		x.CAPMMode = DiscountRateManual
	case DriverTerminalGrowth:
		x.TG = v
		x.TerminalGrowthRate = v
	case DriverExitMultiple:
		x.ExitEVMultiple = v
	case DriverRevenueGrowth:
		x.RevenueGrowthRate = v
	case DriverEBITMargin:
		if !x.HasMarginPath() {
			x.EBITMargin0 = v
		}
		x.EBITMarginT = v
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrMalformedGrid, d)
	}
	return nil
}

// Check returns ErrMalformedGrid when the pipeline never reads the driver's
// field under x, which would leave every cell along the axis equal.
func (d Driver) Check(x ExtendedAssumptions) error {
	switch d {
	case DriverExitMultiple:
		if x.TerminalMethod != TerminalExitMultiple {
			return fmt.Errorf("%w: %s axis needs terminalMethod %q, got %q",
				ErrMalformedGrid, d, TerminalExitMultiple, x.TerminalMethod)
		}
	case DriverTerminalGrowth:
		if x.TerminalMethod == TerminalExitMultiple && x.GrowthYears >= x.ProjectionYears {
			return fmt.Errorf("%w: %s axis has no effect under terminalMethod %q when growthYears %d covers the horizon",
				ErrMalformedGrid, d, TerminalExitMultiple, x.GrowthYears)
		}
	case DriverRevenueGrowth:
		if x.GrowthYears <= 0 {
			return fmt.Errorf("%w: %s axis has no effect with growthYears %d",
				ErrMalformedGrid, d, x.GrowthYears)
		}
	}
	return nil
}

func (d Driver) label(v float64) string {
	if d == DriverExitMultiple {
		return fmt.Sprintf("%.1fx", v)
	}
	return fmt.Sprintf("%.2f%%", v*constants.PercentageMultiplier)
}

// Metric selects the scalar stored in each grid cell.
type Metric string

const (
	MetricPerShare        Metric = "per_share"
	MetricEnterpriseValue Metric = "enterprise_value"
	MetricEquityValue     Metric = "equity_value"
)

// ParseMetric maps a user-facing metric name onto a Metric. An empty name
// selects the per-share value.
func ParseMetric(value string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "per_share", "pershare", "price":
		return MetricPerShare, nil
	case "enterprise_value", "enterprisevalue", "ev":
		return MetricEnterpriseValue, nil
	case "equity_value", "equityvalue", "equity":
		return MetricEquityValue, nil
	default:
		return "", fmt.Errorf("%w: unknown metric %q", ErrMalformedGrid, value)
	}
}

func (m Metric) of(r ExtendedResult) (float64, error) {
	switch m {
	case MetricPerShare:
		return r.PerShare, nil
	case MetricEnterpriseValue:
		return r.EnterpriseValue, nil
	case MetricEquityValue:
		return r.EquityValue, nil
	default:
		return 0, fmt.Errorf("%w: unknown metric %q", ErrMalformedGrid, m)
	}
}

// Axis is one ordered dimension of a grid. Labels are optional; when empty
// they are derived from Values.
type Axis struct {
	Driver Driver
	Values []float64
	Labels []string
}

func (ax Axis) resolveLabels() ([]string, error) {
	if len(ax.Values) == 0 {
		return nil, fmt.Errorf("%w: %s axis has no values", ErrMalformedGrid, ax.Driver)
	}
	if len(ax.Labels) > 0 {
		if len(ax.Labels) != len(ax.Values) {
			return nil, fmt.Errorf("%w: %s axis has %d labels for %d values",
				ErrMalformedGrid, ax.Driver, len(ax.Labels), len(ax.Values))
		}
		return append([]string(nil), ax.Labels...), nil
	}
	labels := make([]string, len(ax.Values))
	for i, v := range ax.Values {
		labels[i] = ax.Driver.label(v)
	}
	return labels, nil
}

// GridRequest describes one grid. Rows is the first driver and maps to
// YLabels; Cols is the second driver and maps to XLabels.
type GridRequest struct {
	Title  string
	Metric Metric
	Rows   Axis
	Cols   Axis
}

// Cell is one grid outcome. Err is set when the cell's valuation failed;
// Value is meaningful only when Err is nil.
type Cell struct {
	Value float64
	Err   error
}

// OK reports whether the cell holds a value.
func (c Cell) OK() bool {
	return c.Err == nil
}

// SensitivityGrid is a rectangular matrix of outcomes indexed by the row
// and column axis values.
type SensitivityGrid struct {
	Title   string
	Metric  Metric
	XLabels []string
	YLabels []string
	XValues []float64
	YValues []float64
	Grid    [][]Cell
}

// Validate checks that the label sequences match the grid dimensions.
func (g SensitivityGrid) Validate() error {
	if len(g.Grid) != len(g.YLabels) {
		return fmt.Errorf("%w: %d rows for %d y labels", ErrMalformedGrid, len(g.Grid), len(g.YLabels))
	}
	for i, row := range g.Grid {
		if len(row) != len(g.XLabels) {
			return fmt.Errorf("%w: row %d has %d cells for %d x labels", ErrMalformedGrid, i, len(row), len(g.XLabels))
		}
	}
	return nil
}

// Failures counts cells that carry an error.
func (g SensitivityGrid) Failures() int {
	n := 0
	for _, row := range g.Grid {
		for _, c := range row {
			if !c.OK() {
				n++
			}
		}
	}
	return n
}

type gridJSON struct {
	Title   string       `json:"title"`
	Metric  Metric       `json:"metric"`
	XLabels []string     `json:"xLabels"`
	YLabels []string     `json:"yLabels"`
	Grid    [][]*float64 `json:"grid"`
	Errors  [][]string   `json:"errors,omitempty"`
}

// MarshalJSON renders failed cells as null in grid and their messages in a
// parallel errors matrix.
func (g SensitivityGrid) MarshalJSON() ([]byte, error) {
	out := gridJSON{
		Title:   g.Title,
		Metric:  g.Metric,
		XLabels: g.XLabels,
		YLabels: g.YLabels,
		Grid:    make([][]*float64, len(g.Grid)),
	}
	var errs [][]string
	for i, row := range g.Grid {
		out.Grid[i] = make([]*float64, len(row))
		for j, c := range row {
			if c.OK() {
				v := c.Value
				out.Grid[i][j] = &v
				continue
			}
			if errs == nil {
				errs = make([][]string, len(g.Grid))
				for k := range errs {
					errs[k] = make([]string, len(g.Grid[k]))
				}
			}
			errs[i][j] = c.Err.Error()
		}
	}
	out.Errors = errs
	return json.Marshal(out)
}

// CellCache memoizes cell outcomes across grid runs. Implementations must be
// safe for concurrent use.
type CellCache interface {
	Get(key uint64) (float64, bool)
	Put(key uint64, value float64)
}

// KeyFunc derives a cache key from the fully overridden cell assumptions.
type KeyFunc func(x ExtendedAssumptions, metric Metric) (uint64, error)

// GridGenerator evaluates sensitivity grids.
type GridGenerator struct {
	workers int
	cache   CellCache
	key     KeyFunc
}

// GridOption configures a GridGenerator.
type GridOption func(*GridGenerator)

// WithWorkers bounds the number of cells evaluated concurrently.
func WithWorkers(n int) GridOption {
	return func(g *GridGenerator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithCache memoizes successful cells in cache under keys from key.
func WithCache(cache CellCache, key KeyFunc) GridOption {
	return func(g *GridGenerator) {
		if cache != nil && key != nil {
			g.cache = cache
			g.key = key
		}
	}
}

// NewGridGenerator constructs a GridGenerator. Without options it uses one
// worker per available CPU and no cache.
func NewGridGenerator(opts ...GridOption) *GridGenerator {
	g := &GridGenerator{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate evaluates req against base. Each cell runs the extended pipeline
// on its own copy of base with the row override applied first and the
// column override second. A failing cell records its error and the rest of
// the grid is still evaluated. An axis whose driver cannot move the result
// under base is rejected up front. Cancellation is checked between cells; when
// ctx is done the partial grid is discarded and ctx.Err() is returned.
func (g *GridGenerator) Generate(ctx context.Context, base ExtendedAssumptions, req GridRequest) (SensitivityGrid, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rowDriver, err := ParseDriver(string(req.Rows.Driver))
	if err != nil {
		return SensitivityGrid{}, err
	}
	colDriver, err := ParseDriver(string(req.Cols.Driver))
	if err != nil {
		return SensitivityGrid{}, err
	}
	req.Rows.Driver, req.Cols.Driver = rowDriver, colDriver
	for _, d := range []Driver{rowDriver, colDriver} {
		if err := d.Check(base); err != nil {
			return SensitivityGrid{}, err
		}
	}
	metric, err := ParseMetric(string(req.Metric))
	if err != nil {
		return SensitivityGrid{}, err
	}

	yLabels, err := req.Rows.resolveLabels()
	if err != nil {
		return SensitivityGrid{}, err
	}
	xLabels, err := req.Cols.resolveLabels()
	if err != nil {
		return SensitivityGrid{}, err
	}
	if cells := len(yLabels) * len(xLabels); cells > constants.MaxGridCells {
		return SensitivityGrid{}, fmt.Errorf("%w: %d cells exceeds the limit of %d", ErrMalformedGrid, cells, constants.MaxGridCells)
	}

	title := req.Title
	if title == "" {
		title = fmt.Sprintf("%s by %s and %s", metric, req.Rows.Driver, req.Cols.Driver)
	}

	grid := SensitivityGrid{
		Title:   title,
		Metric:  metric,
		XLabels: xLabels,
		YLabels: yLabels,
		XValues: append([]float64(nil), req.Cols.Values...),
		YValues: append([]float64(nil), req.Rows.Values...),
		Grid:    make([][]Cell, len(req.Rows.Values)),
	}
	for i := range grid.Grid {
		grid.Grid[i] = make([]Cell, len(req.Cols.Values))
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

schedule:
	for i, rv := range req.Rows.Values {
		i, rv := i, rv
		for j, cv := range req.Cols.Values {
			j, cv := j, cv
			if egctx.Err() != nil {
				break schedule
			}
			eg.Go(func() error {
				if err := egctx.Err(); err != nil {
					return err
				}
				grid.Grid[i][j] = g.evaluate(base, req.Rows.Driver, rv, req.Cols.Driver, cv, metric)
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return SensitivityGrid{}, err
	}
	if err := ctx.Err(); err != nil {
		return SensitivityGrid{}, err
	}
	return grid, nil
}

func (g *GridGenerator) evaluate(base ExtendedAssumptions, rowDriver Driver, rv float64, colDriver Driver, cv float64, metric Metric) Cell {
	x := base.Clone()
	if err := rowDriver.apply(&x, rv); err != nil {
		return Cell{Err: err}
	}
	if err := colDriver.apply(&x, cv); err != nil {
		return Cell{Err: err}
	}

	var key uint64
	keyed := false
	if g.cache != nil {
		k, err := g.key(x, metric)
		if err == nil {
			key, keyed = k, true
			if v, ok := g.cache.Get(key); ok {
				return Cell{Value: v}
			}
		}
	}

	result, _, err := RunExtended(x)
	if err != nil {
		return Cell{Err: err}
	}
	v, err := metric.of(result)
	if err != nil {
		return Cell{Err: err}
	}
	if keyed {
		g.cache.Put(key, v)
	}
	return Cell{Value: v}
}
