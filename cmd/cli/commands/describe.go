package commands

import (
	"encoding/json"
	"sort"

	"github.com/spf13/cobra"

	"github.com/inferloop/synthetizer/internal/sampling"
	"github.com/inferloop/synthetizer/internal/visualization"
)

type DescribeOptions struct {
	FieldOptions
	Paths      []string
	Format     string
	OutputFile string
}

func NewDescribeCmd(load EnvironmentLoader) *cobra.Command {
	opts := &DescribeOptions{}

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Summarize the models fitted to one or more fields",
		Long: `Fit a sampler per field path and print what was learned: observed
counts, top values, and the fitted density next to the observed histogram.`,
		Example: `  # Print tables for two fields of a record bundle
  synthetizer describe --file bundle.json --path entry.{}.resource.gender --path entry.{}.resource.birthDate

  # Write an HTML chart page
  synthetizer describe --file ages.json --numeric --format html --output ages.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := load()
			if err != nil {
				return err
			}
			return runDescribe(cmd, env, opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringSliceVarP(&opts.Paths, "path", "p", nil, "Field paths inside the file, repeatable")
	cmd.Flags().StringVar(&opts.Format, "format", string(visualization.FormatTable), "Output format (table, html, json)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file (- for stdout)")

	return cmd
}

func runDescribe(cmd *cobra.Command, env *Environment, opts *DescribeOptions) error {
	paths := opts.Paths
	if len(paths) == 0 {
		paths = []string{""}
	}

	fields := make([]sampling.Field, 0, len(paths))
	for _, path := range paths {
		field, err := opts.field(path)
		if err != nil {
			return err
		}
		fields = append(fields, field)
	}

	selector, err := sampling.NewSelector(&env.Config.Sampling, env.Logger)
	if err != nil {
		return err
	}

	samplers, err := selector.BuildAll(cmd.Context(), fields)
	if err != nil {
		return err
	}

	descriptions := make([]*sampling.Description, 0, len(samplers))
	for _, path := range paths {
		title := path
		if title == "" {
			title = opts.File
		}
		descriptions = append(descriptions, samplers[path].Describe(title))
	}
	sort.SliceStable(descriptions, func(i, j int) bool { return descriptions[i].Title < descriptions[j].Title })

	out, closeOut, err := openOutput(cmd, opts.OutputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(descriptions)
	}

	renderer, err := visualization.NewRenderManager(env.Logger).Renderer(visualization.Format(opts.Format))
	if err != nil {
		return err
	}

	if len(descriptions) == 1 {
		return renderer.Render(out, descriptions[0])
	}

	// Tables print one block per field; charts share one page
	if opts.Format == string(visualization.FormatTable) {
		for _, d := range descriptions {
			if err := renderer.Render(out, d); err != nil {
				return err
			}
		}
		return nil
	}
	return renderer.Render(out, &sampling.Description{Title: opts.File, Count: len(descriptions), Components: descriptions})
}
