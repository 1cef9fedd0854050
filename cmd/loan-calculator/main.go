package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is injected at build time via ldflags.
var Version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "loan-calculator",
		Short:         "Fixed-rate mortgage repayment calculator",
		Long:          "loan-calculator computes monthly repayments, full amortization schedules and\nyearly summaries for fixed-rate home loans, from the command line or over HTTP.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newScheduleCommand(), newServeCommand())
	return cmd
}

func main() {
	// A missing .env file is fine; environment variables may come from elsewhere.
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": %q}\n", err.Error())
		os.Exit(1)
	}
}
