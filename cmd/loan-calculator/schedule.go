package main

import (
	"fmt"
	"io"
	"time"

	"github.com/iwvelando/loan-repayments/internal/cache"
	"github.com/iwvelando/loan-repayments/internal/calculator"
	"github.com/iwvelando/loan-repayments/internal/config"
	"github.com/iwvelando/loan-repayments/pkg/constants"
	"github.com/iwvelando/loan-repayments/pkg/output"
	"github.com/iwvelando/loan-repayments/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type scheduleOptions struct {
	configPath   string
	outputFormat string
	logLevel     string
}

func newScheduleCommand() *cobra.Command {
	opts := &scheduleOptions{}
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Compute the repayment schedule of every active scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	return cmd
}

func runSchedule(cmd *cobra.Command, opts *scheduleOptions) error {
	conf, err := config.LoadConfiguration(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	if err := conf.Validate(); err != nil {
		return err
	}
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.schedule"),
		)
	}

	store, err := cache.New(logger, conf.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	calcOpts := []calculator.Option{}
	if store != nil {
		defer func() {
			_ = store.Close()
		}()
		calcOpts = append(calcOpts, calculator.WithCache(store, conf.Cache.TTL()))
	}

	start := time.Now()
	results, err := calculator.New(logger, calcOpts...).CalculateScenarios(cmd.Context(), *conf)
	if err != nil {
		return fmt.Errorf("failed to compute schedules: %w", err)
	}
	logger.Info("schedules computed",
		zap.String("op", "main.schedule"),
		zap.Int("scenarios", len(results)),
		zap.Duration("duration", time.Since(start)),
	)

	return writeResults(cmd.OutOrStdout(), outputFormat, results)
}

func writeResults(w io.Writer, outputFormat string, results []calculator.ScenarioResult) error {
	switch outputFormat {
	case constants.OutputFormatCSV:
		return output.CsvFormat(w, results)
	default:
		output.PrettyFormat(w, results)
		return nil
	}
}
