package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/mortgage-calculator/internal/cache"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/format"
	"github.com/iwvelando/mortgage-calculator/pkg/input"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/output"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errValidationFailed makes the validate command exit non-zero after its
// messages have been printed.
var errValidationFailed = errors.New("validation failed")

// scenarioFlags binds one string flag per scenario field. Values are
// coerced the same way form input is, so "abc" becomes 0 plus a message.
type scenarioFlags struct {
	values map[string]*string
}

var flagNames = map[string]string{
	mortgage.FieldPrice:         "price",
	mortgage.FieldEquity:        "equity",
	mortgage.FieldTransferTax:   "transfer-tax",
	mortgage.FieldNotaryFee:     "notary-fee",
	mortgage.FieldBrokerFee:     "broker-fee",
	mortgage.FieldInterestRate:  "interest-rate",
	mortgage.FieldRepaymentRate: "repayment-rate",
	mortgage.FieldTermYears:     "term-years",
}

var flagUsage = map[string]string{
	mortgage.FieldPrice:         "purchase price in currency units",
	mortgage.FieldEquity:        "own funds in currency units",
	mortgage.FieldTransferTax:   "real estate transfer tax in percent of the price",
	mortgage.FieldNotaryFee:     "notary and land registry fees in percent of the price",
	mortgage.FieldBrokerFee:     "broker commission in percent of the price",
	mortgage.FieldInterestRate:  "nominal annual interest rate in percent",
	mortgage.FieldRepaymentRate: "initial annual repayment rate in percent",
	mortgage.FieldTermYears:     "term in years",
}

func addScenarioFlags(cmd *cobra.Command) *scenarioFlags {
	sf := &scenarioFlags{values: make(map[string]*string, len(mortgage.Fields))}
	for _, field := range mortgage.Fields {
		sf.values[field] = cmd.Flags().String(flagNames[field], "", flagUsage[field]+" (default from configuration)")
	}
	return sf
}

// read merges the configured default scenario with the flags that were set.
func (sf *scenarioFlags) read(cmd *cobra.Command, defaults mortgage.Scenario) input.Values {
	raw := input.StringsFromScenario(defaults)
	for _, field := range mortgage.Fields {
		if cmd.Flags().Changed(flagNames[field]) {
			raw[field] = *sf.values[field]
		}
	}
	return input.FromStrings(raw)
}

type calculateOptions struct {
	outputFormat string
	locale       string
	currency     string
}

func newCalculateCmd(a *app) *cobra.Command {
	opts := &calculateOptions{}
	var sf *scenarioFlags

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate the financing plan for a scenario",
		Long: `Calculate the incidental costs, loan amount, monthly rate and the
amortization schedule. Fields not given as flags are taken from the
configuration file. Out-of-range values are reported but never stop the
calculation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCalculate(cmd.Context(), sf.read(cmd, a.conf.Scenario), opts)
		},
	}
	sf = addScenarioFlags(cmd)
	cmd.Flags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "locale override for amounts, e.g. de-DE or en-US")
	cmd.Flags().StringVar(&opts.currency, "currency", "", "ISO 4217 currency code override")
	return cmd
}

func (a *app) runCalculate(ctx context.Context, values input.Values, opts *calculateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// CLI overrides take precedence over config
	outputFormat := a.conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	locale := a.conf.Output.Locale
	if opts.locale != "" {
		locale = opts.locale
	}
	currencyCode := a.conf.Output.Currency
	if opts.currency != "" {
		currencyCode = opts.currency
	}
	formatter, err := format.NewFormatter(locale, currencyCode)
	if err != nil {
		return err
	}

	errs := validation.ValidateInput(values)
	for _, field := range errs.Fields() {
		a.logger.Warn("input warning: "+errs[field],
			zap.String("op", "main.calculate"),
			zap.String("field", field),
		)
	}

	store, err := cache.New(a.conf.Cache, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			a.logger.Warn("failed to close cache",
				zap.String("op", "main.calculate"),
				zap.Error(closeErr),
			)
		}
	}()

	result, cached := store.Calculate(ctx, mortgage.NewCalculator(a.logger), values.Scenario)
	a.logger.Debug("calculation finished",
		zap.String("op", "main.calculate"),
		zap.Bool("cached", cached),
	)

	report := output.Report{Scenario: values.Scenario, Result: result, Errors: errs}
	switch outputFormat {
	case constants.OutputFormatCSV:
		err = output.CsvFormat(a.out, report)
	case constants.OutputFormatJSON:
		err = output.JSONFormat(a.out, report, formatter)
	default:
		err = output.PrettyFormat(a.out, report, formatter)
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newValidateCmd(a *app) *cobra.Command {
	var sf *scenarioFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a scenario against the allowed ranges",
		Long: `Print one message per field that is missing, not a number or out of
range. Exits with status 1 when any message is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			errs := validation.ValidateInput(sf.read(cmd, a.conf.Scenario))
			if !errs.HasErrors() {
				_, err := fmt.Fprintln(a.out, "OK")
				return err
			}
			for _, field := range errs.Fields() {
				if _, err := fmt.Fprintf(a.out, "%s: %s\n", field, errs[field]); err != nil {
					return err
				}
			}
			return errValidationFailed
		},
	}
	sf = addScenarioFlags(cmd)
	return cmd
}
