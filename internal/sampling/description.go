package sampling

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/inferloop/synthetizer/pkg/constants"
)

// Description is a debugging summary of a fitted sampler. Composite
// samplers nest one description per component.
type Description struct {
	Title      string         `json:"title"`
	Kind       Kind           `json:"kind"`
	Count      int            `json:"count"`
	Distinct   int            `json:"distinct,omitempty"`
	TopValues  []ValueCount   `json:"top_values,omitempty"`
	Trimmed    int            `json:"trimmed,omitempty"`
	Min        int            `json:"min,omitempty"`
	Max        int            `json:"max,omitempty"`
	Mean       float64        `json:"mean,omitempty"`
	StdDev     float64        `json:"std_dev,omitempty"`
	Constant   *int           `json:"constant,omitempty"`
	Histogram  []HistogramBin `json:"histogram,omitempty"`
	Density    []float64      `json:"density,omitempty"`
	Components []*Description `json:"components,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ValueCount is one entry of a categorical frequency table
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// HistogramBin counts observed values in [Lower, Upper)
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count float64 `json:"count"`
}

// histogram bins sorted values into at most DefaultHistogramBins buckets.
func histogram(sorted []int) []HistogramBin {
	if len(sorted) == 0 {
		return nil
	}

	x := make([]float64, len(sorted))
	for i, v := range sorted {
		x[i] = float64(v)
	}

	lo, hi := x[0], x[len(x)-1]+1
	bins := constants.DefaultHistogramBins
	if width := int(hi - lo); width < bins {
		bins = width
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	counts := stat.Histogram(nil, dividers, x, nil)

	out := make([]HistogramBin, len(counts))
	for i, c := range counts {
		out[i] = HistogramBin{Lower: dividers[i], Upper: dividers[i+1], Count: c}
	}
	return out
}
