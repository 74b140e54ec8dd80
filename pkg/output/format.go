// Package output provides utilities for formatting and displaying financing plans.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/format"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
)

// Series labels as shown on the amortization chart.
const (
	LabelRemainingBalance    = "Restschuld"
	LabelCumulativeRepayment = "Kumulierte Tilgung"
	LabelCumulativeInterest  = "Kumulierter Zinsanteil"
)

// Columns lists the series columns in chart order.
var Columns = []string{LabelRemainingBalance, LabelCumulativeRepayment, LabelCumulativeInterest}

// Report bundles what is shown for one scenario.
type Report struct {
	Scenario mortgage.Scenario
	Result   mortgage.Result
	Errors   validation.Errors
}

// NewReport calculates and validates a scenario in one go.
func NewReport(calc *mortgage.Calculator, s mortgage.Scenario, errs validation.Errors) Report {
	if calc == nil {
		calc = mortgage.NewCalculator(nil)
	}
	return Report{Scenario: s, Result: calc.Calculate(s), Errors: errs}
}

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, report Report, f *format.Formatter) error {
	if f == nil {
		f = format.MustFormatter(constants.DefaultLocale, constants.DefaultCurrencyCode)
	}
	r := report.Result

	var b strings.Builder
	b.WriteString("--- Ergebnisse ---\n")
	fmt.Fprintf(&b, "Gesamtkosten    | %s\n", f.Currency(r.TotalCost))
	fmt.Fprintf(&b, "Darlehenssumme  | %s\n", f.Currency(r.LoanAmount))
	fmt.Fprintf(&b, "Monatliche Rate | %s\n", f.Currency(r.MonthlyPayment))

	for _, field := range report.Errors.Fields() {
		fmt.Fprintf(&b, "Hinweis (%s): %s\n", field, report.Errors[field])
	}

	if !r.HasSeries() {
		b.WriteString("Keine Tilgungsübersicht: kein Darlehen oder keine Laufzeit\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "\nJahr    | %s | %s | %s\n", LabelRemainingBalance, LabelCumulativeRepayment, LabelCumulativeInterest)
	fmt.Fprintf(&b, "____    | __________ | __________________ | ______________________\n")
	for _, point := range r.Series {
		fmt.Fprintf(&b, "%-7s | %s | %s | %s\n", point.Label(),
			f.Currency(point.RemainingBalance),
			f.Currency(point.CumulativeRepayment),
			f.Currency(point.CumulativeInterest))
	}
	if year := r.PayoffYear(); year > 0 {
		fmt.Fprintf(&b, "\nSchuldenfrei nach %d Jahren\n", year)
	} else {
		fmt.Fprintf(&b, "\nRestschuld nach %d Jahren: %s\n", len(r.Series), f.Currency(r.FinalBalance()))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CsvString returns the amortization series in comma-separated value format.
func CsvString(result mortgage.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, `"year","%s","%s","%s"`, LabelRemainingBalance, LabelCumulativeRepayment, LabelCumulativeInterest)
	b.WriteString("\n")
	for _, point := range result.Series {
		fmt.Fprintf(&b, `"%d","%.2f","%.2f","%.2f"`, point.Year,
			format.RoundCents(point.RemainingBalance),
			format.RoundCents(point.CumulativeRepayment),
			format.RoundCents(point.CumulativeInterest))
		b.WriteString("\n")
	}
	return b.String()
}

// CsvFormat writes the amortization series in comma-separated value format.
func CsvFormat(w io.Writer, report Report) error {
	_, err := io.WriteString(w, CsvString(report.Result))
	return err
}

// SeriesPoint is a YearPoint with its display label.
type SeriesPoint struct {
	mortgage.YearPoint
	Label string `json:"label"`
}

// Document is the machine-readable rendition of a report.
type Document struct {
	Scenario        mortgage.Scenario `json:"scenario"`
	IncidentalCosts float64           `json:"incidentalCosts"`
	TotalCost       float64           `json:"totalCost"`
	LoanAmount      float64           `json:"loanAmount"`
	MonthlyPayment  float64           `json:"monthlyPayment"`
	Series          []SeriesPoint     `json:"series"`
	ShowResults     bool              `json:"showResults"`
	PayoffYear      int               `json:"payoffYear,omitempty"`
	Errors          validation.Errors `json:"errors,omitempty"`
	Formatted       map[string]string `json:"formatted,omitempty"`
}

// NewDocument converts a report for JSON encoding. Formatted figures are
// included when a formatter is given.
func NewDocument(report Report, f *format.Formatter) Document {
	r := report.Result
	doc := Document{
		Scenario:        report.Scenario,
		IncidentalCosts: r.IncidentalCosts,
		TotalCost:       r.TotalCost,
		LoanAmount:      r.LoanAmount,
		MonthlyPayment:  r.MonthlyPayment,
		Series:          make([]SeriesPoint, 0, len(r.Series)),
		ShowResults:     r.HasSeries(),
		PayoffYear:      r.PayoffYear(),
		Errors:          report.Errors,
	}
	for _, point := range r.Series {
		doc.Series = append(doc.Series, SeriesPoint{YearPoint: point, Label: point.Label()})
	}
	if f != nil {
		doc.Formatted = map[string]string{
			"incidentalCosts": f.Currency(r.IncidentalCosts),
			"totalCost":       f.Currency(r.TotalCost),
			"loanAmount":      f.Currency(r.LoanAmount),
			"monthlyPayment":  f.Currency(r.MonthlyPayment),
		}
	}
	return doc
}

// JSONFormat writes the report as indented JSON.
func JSONFormat(w io.Writer, report Report, f *format.Formatter) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(report, f)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
