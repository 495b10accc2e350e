package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inferloop/synthetizer/cmd/cli/commands"
	"github.com/inferloop/synthetizer/cmd/cli/config"
	"github.com/inferloop/synthetizer/pkg/constants"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.AppName,
		Short: constants.AppDescription,
		Long: `Fit statistical models to the observed values of record fields and draw
synthetic replacements from them, from the command line or over HTTP.`,
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.synthetizer/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(commands.NewSampleCmd(loadEnvironment))
	rootCmd.AddCommand(commands.NewDescribeCmd(loadEnvironment))
	rootCmd.AddCommand(commands.NewServeCmd(loadEnvironment))

	return rootCmd
}

func loadEnvironment() (*commands.Environment, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	logger, err := cfg.Log.NewLogger(verbose)
	if err != nil {
		return nil, err
	}

	logger.WithField("sampling", cfg.Sampling.String()).Debug("Loaded configuration")
	return &commands.Environment{Config: cfg, Logger: logger}, nil
}
