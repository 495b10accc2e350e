package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inferloop/synthetizer/cmd/cli/config"
	"github.com/inferloop/synthetizer/internal/records"
	"github.com/inferloop/synthetizer/internal/sampling"
)

// Environment is what every command needs from the root command
type Environment struct {
	Config *config.CLIConfig
	Logger *logrus.Logger
}

// EnvironmentLoader resolves the configuration once flags are parsed
type EnvironmentLoader func() (*Environment, error)

// FieldOptions locate the observed values of one field
type FieldOptions struct {
	File          string
	Path          string
	Flatten       int
	Unique        bool
	OpenIntervals bool
	Numeric       bool
	Group         bool
}

func (o *FieldOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.File, "file", "f", "", "JSON or YAML file holding the observed values or a record bundle")
	cmd.Flags().IntVar(&o.Flatten, "flatten", 0, "Levels of nested lists to concatenate")
	cmd.Flags().BoolVar(&o.Unique, "unique", false, "Draw subsets of distinct values")
	cmd.Flags().BoolVar(&o.OpenIntervals, "open-intervals", false, "Intervals may end at the open-ended marker")
	cmd.Flags().BoolVar(&o.Numeric, "numeric", false, "Model integers with a fitted density")
	cmd.Flags().BoolVar(&o.Group, "group", false, "Values are lists of distinct members")
	_ = cmd.MarkFlagRequired("file")
}

func (o *FieldOptions) hint() sampling.KindHint {
	return sampling.KindHint{
		Unique:        o.Unique,
		OpenIntervals: o.OpenIntervals,
		Numeric:       o.Numeric,
		Group:         o.Group,
	}
}

// field loads the values found at path in the options' file
func (o *FieldOptions) field(path string) (sampling.Field, error) {
	values, err := records.LoadValues(o.File, path, o.Flatten)
	if err != nil {
		return sampling.Field{}, err
	}
	return sampling.Field{Path: path, Values: values, Hint: o.hint()}, nil
}

// openOutput returns stdout for "" and "-", or creates path
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
