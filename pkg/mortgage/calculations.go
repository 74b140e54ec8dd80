package mortgage

import (
	"fmt"
	"math"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"go.uber.org/zap"
)

// YearPoint is one entry of the amortization series: the state of the loan
// at the end of the given year.
type YearPoint struct {
	Year                int     `json:"year"`
	CumulativeInterest  float64 `json:"cumulativeInterest"`
	CumulativeRepayment float64 `json:"cumulativeRepayment"`
	RemainingBalance    float64 `json:"remainingBalance"`
}

// Label returns the display label of the year, e.g. "Jahr 3".
func (p YearPoint) Label() string {
	return fmt.Sprintf("Jahr %d", p.Year)
}

// Result holds the headline figures and the amortization series of a scenario.
type Result struct {
	IncidentalCosts float64     `json:"incidentalCosts"`
	TotalCost       float64     `json:"totalCost"`
	LoanAmount      float64     `json:"loanAmount"`
	MonthlyPayment  float64     `json:"monthlyPayment"`
	Series          []YearPoint `json:"series"`
}

// HasSeries reports whether there is an amortization projection to show.
func (r Result) HasSeries() bool {
	return len(r.Series) > 0
}

// PayoffYear returns the year in which the balance reaches zero, or 0 if the
// loan is not repaid within the projected term.
func (r Result) PayoffYear() int {
	if len(r.Series) == 0 {
		return 0
	}
	last := r.Series[len(r.Series)-1]
	if last.RemainingBalance > 0 {
		return 0
	}
	return last.Year
}

// FinalBalance returns the remaining balance at the end of the series; with no
// series it is the full loan amount.
func (r Result) FinalBalance() float64 {
	if len(r.Series) == 0 {
		return r.LoanAmount
	}
	return r.Series[len(r.Series)-1].RemainingBalance
}

// TotalInterest returns the interest paid over the projected series.
func (r Result) TotalInterest() float64 {
	if len(r.Series) == 0 {
		return 0
	}
	return r.Series[len(r.Series)-1].CumulativeInterest
}

// CalculateLoanAmount returns total cost minus equity, floored at zero.
func CalculateLoanAmount(totalCost, equity float64) float64 {
	return math.Max(0, totalCost-equity)
}

// CalculateMonthlyPayment returns the fixed monthly rate combining interest
// and initial repayment: loan × (interest + repayment) / 12 / 100.
func CalculateMonthlyPayment(loanAmount, annualInterestRate, annualRepaymentRate float64) float64 {
	return loanAmount * (annualInterestRate + annualRepaymentRate) / constants.MonthsPerYear / constants.PercentageMultiplier
}

// CalculateInterestPayment calculates the interest portion of one monthly
// payment. Negative rates accrue no interest.
func CalculateInterestPayment(remainingBalance, annualInterestRate float64) float64 {
	if annualInterestRate <= 0 {
		return 0
	}
	return remainingBalance * annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// Amortize projects the loan year by year for at most termYears years.
//
// Each month the interest on the remaining balance is taken out of the
// fixed payment and the rest repays principal. A payment that would overdraw
// the balance, or leave less than a cent, settles it instead and ends the
// projection. A payment that does not cover the interest repays nothing, so
// the balance never grows.
// The loop is bounded by the term, capped at MaxProjectionYears, and never by
// convergence of the balance.
func Amortize(loanAmount, annualInterestRate float64, termYears int, monthlyPayment float64) []YearPoint {
	if loanAmount <= 0 || termYears <= 0 || !mathutil.IsFinite(loanAmount) || !mathutil.IsFinite(monthlyPayment) {
		return nil
	}
	if termYears > constants.MaxProjectionYears {
		termYears = constants.MaxProjectionYears
	}

	series := make([]YearPoint, 0, termYears)
	balance := loanAmount
	cumulativeInterest := 0.0

	for year := 1; year <= termYears; year++ {
		yearlyInterest := 0.0
		for month := 1; month <= constants.MonthsPerYear; month++ {
			interest := CalculateInterestPayment(balance, annualInterestRate)
			principal := math.Max(0, monthlyPayment-interest)
			if mathutil.Round(balance-principal) <= 0 {
				// Final payment; a sub-cent residue counts as settled.
				balance = 0
				break
			}
			balance -= principal
			yearlyInterest += interest
		}
		cumulativeInterest += yearlyInterest

		series = append(series, YearPoint{
			Year:                year,
			CumulativeInterest:  mathutil.FiniteOrZero(cumulativeInterest),
			CumulativeRepayment: mathutil.FiniteOrZero(loanAmount - balance),
			RemainingBalance:    mathutil.FiniteOrZero(balance),
		})
		if balance <= 0 {
			break
		}
	}

	return series
}

// Calculator computes financing plans and logs what it derives.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a new calculator instance
func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger}
}

// Calculate derives the headline figures and the amortization series for a
// scenario. It never fails; degenerate input yields zero figures and an
// empty series, and figures that overflow a float64 are reported as 0.
func (c *Calculator) Calculate(s Scenario) Result {
	loanAmount := s.LoanAmount()
	monthlyPayment := CalculateMonthlyPayment(loanAmount, s.InterestRate, s.RepaymentRate)
	result := Result{
		IncidentalCosts: mathutil.FiniteOrZero(s.IncidentalCosts()),
		TotalCost:       mathutil.FiniteOrZero(s.TotalCost()),
		LoanAmount:      mathutil.FiniteOrZero(loanAmount),
		MonthlyPayment:  mathutil.FiniteOrZero(monthlyPayment),
		Series:          Amortize(loanAmount, s.InterestRate, s.TermYears, monthlyPayment),
	}
	if !mathutil.IsFinite(loanAmount) || !mathutil.IsFinite(monthlyPayment) {
		c.logger.Warn("scenario figures overflow, reporting zero",
			zap.String("op", "mortgage.Calculate"),
			zap.Float64("price", s.Price),
		)
	}

	if !result.HasSeries() {
		c.logger.Debug("no amortization series for scenario",
			zap.String("op", "mortgage.Calculate"),
			zap.Float64("loanAmount", result.LoanAmount),
			zap.Int("termYears", s.TermYears),
		)
		return result
	}

	c.logger.Debug(fmt.Sprintf("projected %d years for loan of %.2f at %.2f per month",
		len(result.Series), result.LoanAmount, result.MonthlyPayment),
		zap.String("op", "mortgage.Calculate"),
		zap.Int("payoffYear", result.PayoffYear()),
		zap.Float64("finalBalance", result.FinalBalance()),
	)
	return result
}

// Calculate is the stateless form of Calculator.Calculate.
func Calculate(s Scenario) Result {
	return NewCalculator(nil).Calculate(s)
}
