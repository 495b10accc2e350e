package commands

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inferloop/synthetizer/internal/sampling"
	"github.com/inferloop/synthetizer/pkg/errors"
)

type SampleOptions struct {
	FieldOptions
	Count      int
	Size       int
	Start      string
	End        string
	OutputFile string
}

func NewSampleCmd(load EnvironmentLoader) *cobra.Command {
	opts := &SampleOptions{}

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Fit one field and print synthetic draws",
		Long: `Fit a sampler to the observed values of one field and print synthetic
draws as JSON lines. The model is chosen from the shape of the values.`,
		Example: `  # Draw 10 genders from a bundle of patient records
  synthetizer sample --file bundle.json --path entry.{}.resource.gender --count 10

  # Draw subsets of 3 distinct codes
  synthetizer sample --file codes.json --unique --size 3

  # Draw intervals shaped like an open-ended caller interval
  synthetizer sample --file periods.json --path entry.{}.resource.period --open-intervals \
    --start 2020-01-01T00:00:00 --end 9999-12-31T23:59:59`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := load()
			if err != nil {
				return err
			}
			return runSample(cmd, env, opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.Path, "path", "p", "", "Field path inside the file, {} fans out over lists")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 1, "Number of draws")
	cmd.Flags().IntVar(&opts.Size, "size", -1, "Subset size for unique fields")
	cmd.Flags().StringVar(&opts.Start, "start", "", "Start of the interval to imitate")
	cmd.Flags().StringVar(&opts.End, "end", "", "End of the interval to imitate")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file (- for stdout)")

	return cmd
}

func runSample(cmd *cobra.Command, env *Environment, opts *SampleOptions) error {
	if opts.Count <= 0 {
		return errors.NewInvalidInputError(errors.CodeInvalidSize, "count must be positive").
			WithContext("count", opts.Count)
	}

	runID := uuid.New().String()
	logger := env.Logger.WithFields(logrus.Fields{
		"run_id": runID,
		"file":   opts.File,
		"path":   opts.Path,
	})

	field, err := opts.field(opts.Path)
	if err != nil {
		return err
	}

	selector, err := sampling.NewSelector(&env.Config.Sampling, env.Logger)
	if err != nil {
		return err
	}

	sampler, err := selector.SelectField(field)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"kind":     sampler.Kind(),
		"observed": len(field.Values),
	}).Info("Fitted sampler")

	out, closeOut, err := openOutput(cmd, opts.OutputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	enc := json.NewEncoder(out)
	for i := 0; i < opts.Count; i++ {
		value, err := drawOnce(sampler, opts)
		if err != nil {
			return err
		}
		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("failed to write sample: %w", err)
		}
	}

	logger.WithField("count", opts.Count).Debug("Wrote samples")
	return nil
}

func drawOnce(sampler sampling.Sampler, opts *SampleOptions) (any, error) {
	switch s := sampler.(type) {
	case sampling.ValueSampler:
		return s.Sample()
	case sampling.SizedSampler:
		if opts.Size < 0 {
			return nil, errors.NewInvalidInputError(errors.CodeInvalidSize, "--size is required for unique fields")
		}
		return s.SampleSize(opts.Size)
	case sampling.IntervalSampler:
		if opts.Start == "" || opts.End == "" {
			return nil, errors.NewInvalidInputError(errors.CodeInvalidTimestamp, "--start and --end are required for open-interval fields")
		}
		return s.SampleInterval(opts.Start, opts.End)
	}
	return nil, errors.NewInternalError("sampler exposes no draw operation").
		WithContext("kind", sampler.Kind())
}
