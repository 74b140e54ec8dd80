package input

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
		ok       bool
	}{
		{"Integer", "350000", 350000, true},
		{"Decimal", "6.5", 6.5, true},
		{"Leading whitespace", "  3.5", 3.5, true},
		{"Trailing garbage", "12.5abc", 12.5, true},
		{"Leading dot", ".5", 0.5, true},
		{"Trailing dot", "5.", 5, true},
		{"Signed", "-2", -2, true},
		{"Exponent", "1e5", 100000, true},
		{"Comma stops the number", "3,5", 3, true},
		{"Empty", "", 0, false},
		{"Letters", "abc", 0, false},
		{"Lone sign", "-", 0, false},
		{"Overflow", "1e999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := ParseNumber(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.expected, value, 1e-9)
		})
	}
}

func TestFromStringsDefaultForm(t *testing.T) {
	values := FromStrings(map[string]string{
		"immobilienpreis":    "350000",
		"eigenkapital":       "70000",
		"grunderwerbsteuer":  "6.5",
		"notarkosten":        "1.5",
		"kaeufernebenkosten": "3.5",
		"sollzins":           "3.5",
		"tilgung":            "2.0",
		"laufzeit":           "25",
	})

	assert.Equal(t, mortgage.DefaultScenario(), values.Scenario)
	assert.Empty(t, values.Problems())
	assert.Empty(t, values.Unknown)
}

func TestFromStringsCoercesFailuresToZero(t *testing.T) {
	values := FromStrings(map[string]string{
		mortgage.FieldPrice:  "abc",
		mortgage.FieldEquity: "",
		"termYears":          "25.9",
		"colour":             "blue",
	})

	assert.Equal(t, 0.0, values.Scenario.Price)
	assert.Equal(t, 0.0, values.Scenario.Equity)
	assert.Equal(t, 25, values.Scenario.TermYears)
	assert.Equal(t, Invalid, values.StatusOf(mortgage.FieldPrice))
	assert.Equal(t, Missing, values.StatusOf(mortgage.FieldEquity))
	assert.Equal(t, Missing, values.StatusOf(mortgage.FieldInterestRate))
	assert.Equal(t, Valid, values.StatusOf(mortgage.FieldTermYears))
	assert.Equal(t, []string{"colour"}, values.Unknown)

	problems := values.Problems()
	require.Len(t, problems, 7)
	assert.Equal(t, mortgage.FieldPrice, problems[0])
}

func TestFromMapJSONValues(t *testing.T) {
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{
		"price": 400000,
		"equity": "80000",
		"transferTax": 5,
		"notaryFee": 2,
		"brokerFee": null,
		"interestRate": true,
		"repaymentRate": 3,
		"termYears": 30
	}`), &raw))

	values := FromMap(raw)

	assert.Equal(t, 400000.0, values.Scenario.Price)
	assert.Equal(t, 80000.0, values.Scenario.Equity)
	assert.Equal(t, 30, values.Scenario.TermYears)
	assert.Equal(t, Missing, values.StatusOf(mortgage.FieldBrokerFee))
	assert.Equal(t, Invalid, values.StatusOf(mortgage.FieldInterestRate))
	assert.Equal(t, 0.0, values.Scenario.InterestRate)
}

func TestFromMapCanonicalNameWins(t *testing.T) {
	values := FromMap(map[string]interface{}{
		"sollzins":     "9",
		"interestRate": "4",
	})

	assert.Equal(t, 4.0, values.Scenario.InterestRate)
}

func TestCanonicalField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"Canonical", "termYears", mortgage.FieldTermYears, true},
		{"Snake case", "term_years", mortgage.FieldTermYears, true},
		{"Kebab upper case", "Interest-Rate", mortgage.FieldInterestRate, true},
		{"German alias", "Laufzeit", mortgage.FieldTermYears, true},
		{"Umlaut alias", "käufernebenkosten", mortgage.FieldBrokerFee, true},
		{"Unknown", "colour", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, ok := CanonicalField(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, field)
		})
	}
}

func TestFromStringsKeepsRawTerm(t *testing.T) {
	values := FromStrings(map[string]string{mortgage.FieldTermYears: "50.5"})

	assert.Equal(t, 50, values.Scenario.TermYears)
	assert.Equal(t, 50.5, values.RawTermYears)
}

func TestTruncateYears(t *testing.T) {
	assert.Equal(t, 25, TruncateYears(25.99))
	assert.Equal(t, -3, TruncateYears(-3.5))
	assert.Equal(t, 0, TruncateYears(math.NaN()))
	assert.Equal(t, math.MaxInt32, TruncateYears(1e20))
}

func TestStringsFromScenarioRoundTrip(t *testing.T) {
	s := mortgage.DefaultScenario()

	raw := StringsFromScenario(s)

	assert.Equal(t, "350000", raw[mortgage.FieldPrice])
	assert.Equal(t, "6.5", raw[mortgage.FieldTransferTax])
	assert.Equal(t, s, FromStrings(raw).Scenario)
}
