package input

import (
	"strings"

	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

// aliases maps the German form ids, and a few spellings of them, onto the
// canonical field names.
var aliases = map[string]string{
	"immobilienpreis":    mortgage.FieldPrice,
	"kaufpreis":          mortgage.FieldPrice,
	"eigenkapital":       mortgage.FieldEquity,
	"grunderwerbsteuer":  mortgage.FieldTransferTax,
	"notarkosten":        mortgage.FieldNotaryFee,
	"kaeufernebenkosten": mortgage.FieldBrokerFee,
	"käufernebenkosten":  mortgage.FieldBrokerFee,
	"maklerprovision":    mortgage.FieldBrokerFee,
	"sollzins":           mortgage.FieldInterestRate,
	"tilgung":            mortgage.FieldRepaymentRate,
	"laufzeit":           mortgage.FieldTermYears,
}

// CanonicalField resolves a field name or alias. Matching ignores case,
// surrounding whitespace, dashes and underscores, so "term_years" and
// "Term-Years" both resolve to termYears.
func CanonicalField(name string) (string, bool) {
	key := normalizeKey(name)
	for _, field := range mortgage.Fields {
		if normalizeKey(field) == key {
			return field, true
		}
	}
	field, ok := aliases[key]
	return field, ok
}

func isCanonical(name string) bool {
	key := normalizeKey(name)
	for _, field := range mortgage.Fields {
		if normalizeKey(field) == key {
			return true
		}
	}
	return false
}

func normalizeKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "")
	return strings.ReplaceAll(key, "_", "")
}
