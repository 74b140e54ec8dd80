package main

import (
	"fmt"
	"io"

	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries state shared by all subcommands once the root command has
// loaded the configuration.
type app struct {
	configPath string
	logLevel   string

	out    io.Writer
	errOut io.Writer

	conf   *config.Configuration
	logger *zap.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "mortgage-calculator",
		Short: "Calculate German-style mortgage financing plans",
		Long: `mortgage-calculator derives the incidental purchase costs, the loan
amount, the fixed monthly rate and a year-by-year amortization schedule
from eight inputs: price, equity, transfer tax, notary fee, broker fee,
interest rate, initial repayment rate and term.

Examples:
  mortgage-calculator calculate --price 450000 --equity 90000
  mortgage-calculator calculate --output-format csv --term-years 30
  mortgage-calculator validate --repayment-rate 0.2
  mortgage-calculator serve --address :9000`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(
		newCalculateCmd(a),
		newValidateCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

// setup loads the configuration and initializes logging. An explicitly
// given config file must exist; the default one is optional.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var (
		conf *config.Configuration
		err  error
	)
	if cmd.Flags().Changed("config") {
		conf, err = config.LoadConfiguration(a.configPath)
	} else {
		conf, err = config.LoadConfigurationOrDefault(a.configPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", a.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.conf = conf
	a.logger = logger
	return nil
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintf(a.out, "mortgage-calculator version %s\n", version)
			return err
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			data, err := a.conf.YAML()
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	})
	return configCmd
}
