// Package output provides utilities for formatting and displaying valuation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/corporate-valuation/internal/analysis"
	"github.com/iwvelando/corporate-valuation/pkg/constants"
	"github.com/iwvelando/corporate-valuation/pkg/format"
	"github.com/iwvelando/corporate-valuation/pkg/summary"
	"github.com/iwvelando/corporate-valuation/pkg/valuation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ProjectionHeader is the column layout of ProjectionCSV.
var ProjectionHeader = []string{"year", "revenue", "ebit%", "ebit", "nopat", "reinvest", "fcff", "dep", "capex", "dnwc"}

// Footer carries the valuation totals appended below a projection.
type Footer struct {
	EnterpriseValue float64
	EquityValue     float64
	PerShare        float64
	// HasPerShare is false for the simple DCF path, which has no share
	// count. Its equity value equals the enterprise value.
	HasPerShare bool
}

// FooterFor builds the footer for a report, or false when the report has no
// projection.
func FooterFor(r analysis.Report) (Footer, bool) {
	switch {
	case r.Extended != nil:
		return Footer{
			EnterpriseValue: r.Extended.EnterpriseValue,
			EquityValue:     r.Extended.EquityValue,
			PerShare:        r.Extended.PerShare,
			HasPerShare:     true,
		}, true
	case r.DCF != nil:
		return Footer{
			EnterpriseValue: r.DCF.EnterpriseValue,
			EquityValue:     r.DCF.EnterpriseValue,
		}, true
	default:
		return Footer{}, false
	}
}

// Write renders reports in the named output format.
func Write(w io.Writer, outputFormat string, reports []analysis.Report) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, reports)
	case constants.OutputFormatCSV:
		return CsvFormat(w, reports)
	case constants.OutputFormatJSON:
		return JSONFormat(w, reports)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, reports []analysis.Report) error {
	p := message.NewPrinter(language.English)
	for n, r := range reports {
		if n > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "--- Results for %s scenario %s ---\n", r.Kind, r.Name); err != nil {
			return err
		}
		var err error
		switch {
		case r.DCF != nil:
			err = prettyProjection(w, p, r.Projection)
			if err == nil {
				err = prettyDCF(w, r.DCF)
			}
		case r.Extended != nil:
			err = prettyProjection(w, p, r.Projection)
			if err == nil {
				err = prettyExtended(w, r.Extended)
			}
		case r.LBO != nil:
			err = prettyLBO(w, r.LBO)
		}
		if err != nil {
			return err
		}
		for i, g := range r.Grids {
			if err := prettyGrid(w, p, g); err != nil {
				return err
			}
			if i < len(r.Summaries) {
				if err := prettySummary(w, p, r.Summaries[i]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func prettySummary(w io.Writer, p *message.Printer, s summary.Grid) error {
	if !s.Valued {
		_, err := fmt.Fprintf(w, "No cell could be valued\n")
		return err
	}
	_, err := p.Fprintf(w, "Range: %.2f (%s, %s) to %.2f (%s, %s)\n",
		s.Min, s.MinAt[0], s.MinAt[1], s.Max, s.MaxAt[0], s.MaxAt[1])
	return err
}

func prettyProjection(w io.Writer, p *message.Printer, rows []valuation.ProjectedRow) error {
	if len(rows) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Year | Revenue      | EBIT %%  | EBIT         | FCFF\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "____ | ____________ | _______ | ____________ | ____________\n"); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := p.Fprintf(w, "%4d | %12.2f | %7s | %12.2f | %12.2f\n",
			row.Year, row.Revenue, format.Percent(row.EBITMargin), row.EBIT, row.FCF); err != nil {
			return err
		}
	}
	return nil
}

func prettyDCF(w io.Writer, r *valuation.ValuationResult) error {
	_, err := fmt.Fprintf(w, "Discount rate: %s\nPV of cash flows: %s\nPV of terminal value: %s\nEnterprise value: %s\n",
		format.Percent(r.DiscountRate),
		format.Currency(r.PresentValueFCF),
		format.Currency(r.PresentValueTerminal),
		format.Currency(r.EnterpriseValue))
	return err
}

func prettyExtended(w io.Writer, r *valuation.ExtendedResult) error {
	_, err := fmt.Fprintf(w, "Cost of equity: %s\nWACC: %s\nTerminal method: %s\nPV of cash flows: %s\nPV of terminal value: %s\nEnterprise value: %s\nEquity value: %s\nPer share: %s\n",
		format.Percent(r.CostOfEquity),
		format.Percent(r.DiscountRate),
		r.TerminalMethod,
		format.Currency(r.PresentValueFCF),
		format.Currency(r.PresentValueTerminal),
		format.Currency(r.EnterpriseValue),
		format.Currency(r.EquityValue),
		format.Currency(r.PerShare))
	return err
}

func prettyLBO(w io.Writer, r *valuation.LBOResult) error {
	_, err := fmt.Fprintf(w, "Equity investment: %s\nEntry EBITDA: %s\nExit EBITDA: %s\nExit value: %s\nTotal interest: %s\nFees: %s\nNet exit value: %s\nMOIC: %s\nIRR: %s%%\n",
		format.Currency(r.EquityInvestment),
		format.Currency(r.EntryEBITDA),
		format.Currency(r.ExitEBITDA),
		format.Currency(r.ExitValue),
		format.Currency(r.TotalInterest),
		format.Currency(r.TransactionFeesAmount+r.ManagementFeesAmount),
		format.Currency(r.NetExitValue),
		format.Multiple(r.MOIC),
		format.Fixed(r.IRR))
	return err
}

func prettyGrid(w io.Writer, p *message.Printer, g valuation.SensitivityGrid) error {
	if _, err := fmt.Fprintf(w, "\n%s\n", g.Title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%10s", ""); err != nil {
		return err
	}
	for _, label := range g.XLabels {
		if _, err := fmt.Fprintf(w, " | %12s", label); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for i, row := range g.Grid {
		if _, err := fmt.Fprintf(w, "%10s", g.YLabels[i]); err != nil {
			return err
		}
		for _, cell := range row {
			var err error
			if cell.OK() {
				_, err = p.Fprintf(w, " | %12.2f", cell.Value)
			} else {
				_, err = fmt.Fprintf(w, " | %12s", "n/a")
			}
			if err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	if failures := g.Failures(); failures > 0 {
		if _, err := fmt.Fprintf(w, "%d cells could not be valued\n", failures); err != nil {
			return err
		}
	}
	return nil
}

// CsvFormat outputs in comma-separated value format, one block per report
// separated by a blank line.
func CsvFormat(w io.Writer, reports []analysis.Report) error {
	for n, r := range reports {
		if n > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s scenario %s\n", r.Kind, r.Name); err != nil {
			return err
		}
		if footer, ok := FooterFor(r); ok {
			if err := ProjectionCSV(w, r.Projection, footer); err != nil {
				return err
			}
		}
		if r.LBO != nil {
			if err := LBOCSV(w, *r.LBO); err != nil {
				return err
			}
		}
		for _, g := range r.Grids {
			if _, err := fmt.Fprintf(w, "# %s\n", g.Title); err != nil {
				return err
			}
			if err := GridCSV(w, g); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProjectionCSV writes one row per projected year followed by the valuation
// footer. Values are rounded to the report precision here and nowhere else.
func ProjectionCSV(w io.Writer, rows []valuation.ProjectedRow, footer Footer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProjectionHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Year),
			format.Fixed(row.Revenue),
			format.Fixed(row.EBITMargin * constants.PercentageMultiplier),
			format.Fixed(row.EBIT),
			format.Fixed(row.NOPAT()),
			format.Fixed(row.Reinvestment()),
			format.Fixed(row.FCF),
			format.Fixed(row.Depreciation),
			format.Fixed(row.Capex),
			format.Fixed(row.DeltaNWC),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	perShare := ""
	if footer.HasPerShare {
		perShare = format.Fixed(footer.PerShare)
	}
	footerRows := [][]string{
		{"EV", format.Fixed(footer.EnterpriseValue)},
		{"Equity", format.Fixed(footer.EquityValue)},
		{"PerShare", perShare},
	}
	if err := cw.WriteAll(footerRows); err != nil {
		return err
	}
	return cw.Error()
}

// LBOCSV writes the buyout result as metric,value pairs.
func LBOCSV(w io.Writer, r valuation.LBOResult) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		{"metric", "value"},
		{"equityInvestment", format.Fixed(r.EquityInvestment)},
		{"entryEBITDA", format.Fixed(r.EntryEBITDA)},
		{"exitEBITDA", format.Fixed(r.ExitEBITDA)},
		{"exitValue", format.Fixed(r.ExitValue)},
		{"totalInterest", format.Fixed(r.TotalInterest)},
		{"remainingDebt", format.Fixed(r.RemainingDebt)},
		{"transactionFees", format.Fixed(r.TransactionFeesAmount)},
		{"managementFees", format.Fixed(r.ManagementFeesAmount)},
		{"netExitValue", format.Fixed(r.NetExitValue)},
		{"moic", strconv.FormatFloat(r.MOIC, 'f', 4, 64)},
		{"irr%", format.Fixed(r.IRR)},
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

// GridCSV writes a grid with the column labels as header and the row label
// leading each line. Failed cells are left empty.
func GridCSV(w io.Writer, g valuation.SensitivityGrid) error {
	if err := g.Validate(); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := append([]string{string(g.Metric)}, g.XLabels...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, row := range g.Grid {
		record := make([]string, 0, len(row)+1)
		record = append(record, g.YLabels[i])
		for _, cell := range row {
			if cell.OK() {
				record = append(record, format.Fixed(cell.Value))
			} else {
				record = append(record, "")
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs the reports as an indented JSON array.
func JSONFormat(w io.Writer, reports []analysis.Report) error {
	if reports == nil {
		reports = []analysis.Report{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", strings.Repeat(" ", 2))
	return enc.Encode(reports)
}
