// Package input turns raw, possibly malformed form values into a mortgage
// scenario. Values that cannot be read as numbers become 0 so that a
// calculation can always run; the fields concerned are reported alongside.
package input

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/spf13/cast"
)

// Status describes how a raw field value was read.
type Status int

const (
	// Valid means the value was read as a number.
	Valid Status = iota
	// Missing means no value, or an empty one, was supplied.
	Missing
	// Invalid means a value was supplied but is not a number.
	Invalid
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Missing:
		return "missing"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// Values is the outcome of coercing raw input.
type Values struct {
	Scenario mortgage.Scenario
	// Status holds an entry for every field that was not Valid.
	Status map[string]Status
	// Unknown lists keys that did not name a scenario field.
	Unknown []string
	// RawTermYears is the term as read, before truncation to whole years.
	RawTermYears float64
}

// StatusOf returns the read status for a field.
func (v Values) StatusOf(field string) Status {
	if st, ok := v.Status[field]; ok {
		return st
	}
	return Valid
}

// Problems returns the fields that were missing or invalid, in form order.
func (v Values) Problems() []string {
	var fields []string
	for _, field := range mortgage.Fields {
		if v.StatusOf(field) != Valid {
			fields = append(fields, field)
		}
	}
	return fields
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber reads the longest numeric prefix of raw, ignoring leading
// whitespace, the way a browser's parseFloat does: "12.5abc" reads as 12.5.
// It reports false for empty or non-numeric input and for values that do
// not fit a finite float64.
func ParseNumber(raw string) (float64, bool) {
	prefix := numericPrefix.FindString(strings.TrimLeft(raw, " \t\r\n"))
	if prefix == "" {
		return 0, false
	}
	value, err := cast.ToFloat64E(prefix)
	if err != nil || !mathutil.IsFinite(value) {
		return 0, false
	}
	return value, true
}

// FromStrings coerces form-style string values keyed by field name or alias.
func FromStrings(raw map[string]string) Values {
	generic := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		generic[key] = value
	}
	return FromMap(generic)
}

// FromMap coerces decoded JSON or YAML values keyed by field name or alias.
// Strings are read with ParseNumber, numbers are taken as they are and
// anything else counts as invalid.
func FromMap(raw map[string]interface{}) Values {
	values := Values{Status: make(map[string]Status)}
	numbers := make(map[string]float64, len(mortgage.Fields))

	for _, key := range orderedKeys(raw) {
		field, ok := CanonicalField(key)
		if !ok {
			values.Unknown = append(values.Unknown, key)
			continue
		}
		number, status := coerce(raw[key])
		numbers[field] = number
		if status != Valid {
			values.Status[field] = status
		} else {
			delete(values.Status, field)
		}
	}

	for _, field := range mortgage.Fields {
		if _, ok := numbers[field]; !ok {
			values.Status[field] = Missing
		}
	}

	values.RawTermYears = numbers[mortgage.FieldTermYears]
	values.Scenario = mortgage.Scenario{
		Price:         numbers[mortgage.FieldPrice],
		Equity:        numbers[mortgage.FieldEquity],
		TransferTax:   numbers[mortgage.FieldTransferTax],
		NotaryFee:     numbers[mortgage.FieldNotaryFee],
		BrokerFee:     numbers[mortgage.FieldBrokerFee],
		InterestRate:  numbers[mortgage.FieldInterestRate],
		RepaymentRate: numbers[mortgage.FieldRepaymentRate],
		TermYears:     TruncateYears(numbers[mortgage.FieldTermYears]),
	}
	return values
}

// orderedKeys sorts keys so that aliases are applied before canonical names
// and a canonical name always wins when both are given.
func orderedKeys(raw map[string]interface{}) []string {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := isCanonical(keys[i]), isCanonical(keys[j])
		if ci != cj {
			return cj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func coerce(value interface{}) (float64, Status) {
	switch v := value.(type) {
	case nil:
		return 0, Missing
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, Missing
		}
		number, ok := ParseNumber(v)
		if !ok {
			return 0, Invalid
		}
		return number, Valid
	case bool:
		return 0, Invalid
	}

	number, err := cast.ToFloat64E(value)
	if err != nil || !mathutil.IsFinite(number) {
		return 0, Invalid
	}
	return number, Valid
}

// TruncateYears converts a term to whole years, dropping any fraction and
// clamping to the int32 range.
func TruncateYears(years float64) int {
	if !mathutil.IsFinite(years) {
		return 0
	}
	truncated := math.Trunc(years)
	if truncated > math.MaxInt32 {
		return math.MaxInt32
	}
	if truncated < math.MinInt32 {
		return math.MinInt32
	}
	return int(truncated)
}

// StringsFromScenario renders a scenario as form-style string values.
func StringsFromScenario(s mortgage.Scenario) map[string]string {
	out := make(map[string]string, len(mortgage.Fields))
	for _, field := range mortgage.Fields {
		value, _ := s.Value(field)
		out[field] = strconv.FormatFloat(value, 'f', -1, 64)
	}
	return out
}
