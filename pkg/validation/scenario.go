// Package validation provides advisory range checks for mortgage scenarios.
// Findings are field-scoped messages; they never stop a calculation.
package validation

import (
	"math"
	"strings"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/input"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

// Messages that are not tied to a single field range.
const (
	MessageInvalidNumber    = "Bitte geben Sie eine gültige Zahl ein"
	MessageEquityAbovePrice = "Eigenkapital darf nicht höher als der Immobilienpreis sein"
	MessageFeesAboveLimit   = "Gesamte Nebenkosten dürfen 25% nicht überschreiten"
)

// Rule is the static range of one field with its messages.
type Rule struct {
	Field    string
	Min      float64
	Max      float64
	Required string
	TooLow   string
	TooHigh  string
}

// Rules lists the range of every scenario field in form order.
var Rules = []Rule{
	{
		Field: mortgage.FieldPrice, Min: 50000, Max: 10000000,
		Required: "Immobilienpreis ist erforderlich",
		TooLow:   "Immobilienpreis muss mindestens 50.000€ betragen",
		TooHigh:  "Immobilienpreis darf höchstens 10.000.000€ betragen",
	},
	{
		Field: mortgage.FieldEquity, Min: 0, Max: 5000000,
		Required: "Eigenkapital ist erforderlich",
		TooLow:   "Eigenkapital kann nicht negativ sein",
		TooHigh:  "Eigenkapital darf höchstens 5.000.000€ betragen",
	},
	{
		Field: mortgage.FieldTransferTax, Min: 0, Max: 15,
		Required: "Grunderwerbsteuer ist erforderlich",
		TooLow:   "Grunderwerbsteuer kann nicht negativ sein",
		TooHigh:  "Grunderwerbsteuer darf höchstens 15% betragen",
	},
	{
		Field: mortgage.FieldNotaryFee, Min: 0, Max: 5,
		Required: "Notarkosten sind erforderlich",
		TooLow:   "Notarkosten können nicht negativ sein",
		TooHigh:  "Notarkosten dürfen höchstens 5% betragen",
	},
	{
		Field: mortgage.FieldBrokerFee, Min: 0, Max: 10,
		Required: "Käufernebenkosten sind erforderlich",
		TooLow:   "Käufernebenkosten können nicht negativ sein",
		TooHigh:  "Käufernebenkosten dürfen höchstens 10% betragen",
	},
	{
		Field: mortgage.FieldInterestRate, Min: 0.1, Max: 15,
		Required: "Sollzins ist erforderlich",
		TooLow:   "Sollzins muss mindestens 0,1% betragen",
		TooHigh:  "Sollzins darf höchstens 15% betragen",
	},
	{
		Field: mortgage.FieldRepaymentRate, Min: 0.5, Max: 10,
		Required: "Tilgung ist erforderlich",
		TooLow:   "Tilgung muss mindestens 0,5% betragen",
		TooHigh:  "Tilgung darf höchstens 10% betragen",
	},
	{
		Field: mortgage.FieldTermYears, Min: 5, Max: 50,
		Required: "Laufzeit ist erforderlich",
		TooLow:   "Laufzeit muss mindestens 5 Jahre betragen",
		TooHigh:  "Laufzeit darf höchstens 50 Jahre betragen",
	},
}

// Errors maps a field name to its message.
type Errors map[string]string

// HasErrors reports whether any field has a message.
func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// Fields returns the fields with messages in form order.
func (e Errors) Fields() []string {
	var fields []string
	for _, field := range mortgage.Fields {
		if _, ok := e[field]; ok {
			fields = append(fields, field)
		}
	}
	return fields
}

// String joins all messages in form order.
func (e Errors) String() string {
	lines := make([]string, 0, len(e))
	for _, field := range e.Fields() {
		lines = append(lines, field+": "+e[field])
	}
	return strings.Join(lines, "; ")
}

// add keeps the first message reported for a field.
func (e Errors) add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// ValidateScenario checks a fully numeric scenario.
func ValidateScenario(s mortgage.Scenario) Errors {
	return validate(s, nil, float64(s.TermYears))
}

// ValidateInput checks coerced input. Missing fields report that they are
// required, unreadable ones that a number is expected; the cross-field
// checks only run when every field could be read.
func ValidateInput(values input.Values) Errors {
	return validate(values.Scenario, values.Status, rawTerm(values))
}

// rawTerm returns the term as entered so that a fractional term is range
// checked before truncation. Values built without it fall back to the
// scenario's whole years.
func rawTerm(values input.Values) float64 {
	if mathutil.IsFinite(values.RawTermYears) && math.Trunc(values.RawTermYears) == float64(values.Scenario.TermYears) {
		return values.RawTermYears
	}
	return float64(values.Scenario.TermYears)
}

func validate(s mortgage.Scenario, status map[string]input.Status, termYears float64) Errors {
	errs := make(Errors)
	readable := true

	for _, rule := range Rules {
		switch status[rule.Field] {
		case input.Missing:
			errs.add(rule.Field, rule.Required)
			readable = false
			continue
		case input.Invalid:
			errs.add(rule.Field, MessageInvalidNumber)
			readable = false
			continue
		}

		value, _ := s.Value(rule.Field)
		if rule.Field == mortgage.FieldTermYears {
			value = termYears
		}
		if value < rule.Min {
			errs.add(rule.Field, rule.TooLow)
		} else if value > rule.Max {
			errs.add(rule.Field, rule.TooHigh)
		}
	}

	if !readable {
		return errs
	}

	if s.Equity > s.Price {
		errs.add(mortgage.FieldEquity, MessageEquityAbovePrice)
	}
	if s.IncidentalCostPercent() > constants.MaxIncidentalCostPercent {
		errs.add(mortgage.FieldBrokerFee, MessageFeesAboveLimit)
	}

	return errs
}
