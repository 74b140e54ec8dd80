// Package mortgage computes German-style mortgage financing plans: the
// incidental purchase costs, the resulting loan, the fixed monthly rate and
// a year-by-year amortization projection.
package mortgage

import (
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
)

// Field names of the eight scenario parameters as used on the wire, in
// configuration files and as keys of validation messages.
const (
	FieldPrice         = "price"
	FieldEquity        = "equity"
	FieldTransferTax   = "transferTax"
	FieldNotaryFee     = "notaryFee"
	FieldBrokerFee     = "brokerFee"
	FieldInterestRate  = "interestRate"
	FieldRepaymentRate = "repaymentRate"
	FieldTermYears     = "termYears"
)

// Fields lists the scenario fields in form order.
var Fields = []string{
	FieldPrice,
	FieldEquity,
	FieldTransferTax,
	FieldNotaryFee,
	FieldBrokerFee,
	FieldInterestRate,
	FieldRepaymentRate,
	FieldTermYears,
}

// Scenario holds the eight user-supplied parameters of a financing plan.
// Percentages are given in percent, i.e. 3.5 means 3.5 %.
type Scenario struct {
	Price         float64 `json:"price" yaml:"price" mapstructure:"price"`
	Equity        float64 `json:"equity" yaml:"equity" mapstructure:"equity"`
	TransferTax   float64 `json:"transferTax" yaml:"transferTax" mapstructure:"transferTax"`
	NotaryFee     float64 `json:"notaryFee" yaml:"notaryFee" mapstructure:"notaryFee"`
	BrokerFee     float64 `json:"brokerFee" yaml:"brokerFee" mapstructure:"brokerFee"`
	InterestRate  float64 `json:"interestRate" yaml:"interestRate" mapstructure:"interestRate"`
	RepaymentRate float64 `json:"repaymentRate" yaml:"repaymentRate" mapstructure:"repaymentRate"`
	TermYears     int     `json:"termYears" yaml:"termYears" mapstructure:"termYears"`
}

// DefaultScenario returns the values the calculator form starts out with.
func DefaultScenario() Scenario {
	return Scenario{
		Price:         constants.DefaultPrice,
		Equity:        constants.DefaultEquity,
		TransferTax:   constants.DefaultTransferTax,
		NotaryFee:     constants.DefaultNotaryFee,
		BrokerFee:     constants.DefaultBrokerFee,
		InterestRate:  constants.DefaultInterestRate,
		RepaymentRate: constants.DefaultRepaymentRate,
		TermYears:     constants.DefaultTermYears,
	}
}

// IncidentalCostPercent is the sum of transfer tax, notary and broker fees.
func (s Scenario) IncidentalCostPercent() float64 {
	return s.TransferTax + s.NotaryFee + s.BrokerFee
}

// IncidentalCosts returns the transaction costs on top of the purchase price.
func (s Scenario) IncidentalCosts() float64 {
	return mathutil.ApplyPercentage(s.Price, s.IncidentalCostPercent())
}

// TotalCost returns price plus incidental costs.
func (s Scenario) TotalCost() float64 {
	return s.Price + s.IncidentalCosts()
}

// LoanAmount returns the amount to be financed, floored at zero.
func (s Scenario) LoanAmount() float64 {
	return CalculateLoanAmount(s.TotalCost(), s.Equity)
}

// MonthlyPayment returns the fixed monthly rate for the scenario's loan.
func (s Scenario) MonthlyPayment() float64 {
	return CalculateMonthlyPayment(s.LoanAmount(), s.InterestRate, s.RepaymentRate)
}

// Value returns the scenario value for a field name and whether the name
// is known.
func (s Scenario) Value(field string) (float64, bool) {
	switch field {
	case FieldPrice:
		return s.Price, true
	case FieldEquity:
		return s.Equity, true
	case FieldTransferTax:
		return s.TransferTax, true
	case FieldNotaryFee:
		return s.NotaryFee, true
	case FieldBrokerFee:
		return s.BrokerFee, true
	case FieldInterestRate:
		return s.InterestRate, true
	case FieldRepaymentRate:
		return s.RepaymentRate, true
	case FieldTermYears:
		return float64(s.TermYears), true
	}
	return 0, false
}
