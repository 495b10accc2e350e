package sampling

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/spf13/cast"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inferloop/synthetizer/pkg/errors"
)

// ContinuousSampler draws non-negative integers from a normal density fit
// to the observed values and discretized over [0, max(observed)).
type ContinuousSampler struct {
	count    int
	trimmed  []int
	min, max int

	// constant is set when the observed values leave nothing to fit
	constant *int
	normal   distuv.Normal
	pmf      []float64
	choice   distuv.Categorical

	buffer *Buffer[int]
}

// NewContinuousSampler fits a continuous sampler to values
func NewContinuousSampler(values []int, config *Config) (*ContinuousSampler, error) {
	config, err := resolveConfig(config)
	if err != nil {
		return nil, err
	}
	return newContinuous(values, config, config.newRand())
}

func newContinuous(values []int, config *Config, rng *rand.Rand) (*ContinuousSampler, error) {
	if len(values) == 0 {
		return nil, errors.NewInvalidInputError(errors.CodeEmptyInput, "continuous sampler needs at least one observed value")
	}

	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	if sorted[0] < 0 {
		return nil, errors.NewInvalidInputError(errors.CodeNegativeValue, "continuous sampler only supports non-negative values").
			WithContext("min", sorted[0])
	}

	s := &ContinuousSampler{
		count:   len(values),
		trimmed: trimBoth(sorted, config.TrimFraction),
		min:     sorted[0],
		max:     sorted[len(sorted)-1],
	}
	if s.max > config.MaxSupport {
		return nil, errors.NewInvalidInputError(errors.CodeSupportTooLarge, "observed values span more integers than a density can be fit over").
			WithContext("max", s.max).
			WithContext("max_support", config.MaxSupport)
	}
	s.fit(rng)

	obs := config.observer()
	s.buffer = NewBuffer(config.BatchSize, s.draw, func(n int) {
		obs.BufferRefilled(KindContinuous, n)
	})
	return s, nil
}

// fit estimates the normal parameters by maximum likelihood on the trimmed
// values and evaluates the density on every integer of the support. The
// support is bounded by Config.MaxSupport.
func (s *ContinuousSampler) fit(rng *rand.Rand) {
	if s.min == s.max {
		s.setConstant(s.trimmed[0])
		return
	}

	x := make([]float64, len(s.trimmed))
	for i, v := range s.trimmed {
		x[i] = float64(v)
	}
	mu, sigma := stat.PopMeanStdDev(x, nil)
	if sigma == 0 || math.IsNaN(sigma) {
		s.setConstant(s.trimmed[0])
		return
	}
	s.normal = distuv.Normal{Mu: mu, Sigma: sigma, Src: rng}

	pmf := make([]float64, s.max)
	for i := range pmf {
		pmf[i] = s.normal.Prob(float64(i))
	}
	total := floats.Sum(pmf)
	if !(total > 0) || math.IsInf(total, 0) {
		s.setConstant(s.trimmed[len(s.trimmed)/2])
		return
	}
	floats.Scale(1/total, pmf)

	s.pmf = pmf
	s.choice = distuv.NewCategorical(pmf, rng)
}

func (s *ContinuousSampler) setConstant(v int) {
	s.constant = &v
}

func (s *ContinuousSampler) draw() int {
	if s.constant != nil {
		return *s.constant
	}
	return int(s.choice.Rand())
}

// Kind returns the sampler variant
func (s *ContinuousSampler) Kind() Kind {
	return KindContinuous
}

// SampleInt returns one integer drawn from the fitted density
func (s *ContinuousSampler) SampleInt() int {
	return s.buffer.Next()
}

// Sample returns SampleInt as an untyped value
func (s *ContinuousSampler) Sample() (any, error) {
	return s.SampleInt(), nil
}

// Density returns a copy of the discretized probability mass, or nil when
// no density was fit.
func (s *ContinuousSampler) Density() []float64 {
	if s.pmf == nil {
		return nil
	}
	return append([]float64(nil), s.pmf...)
}

// Constant reports the degenerate value every draw returns, if any
func (s *ContinuousSampler) Constant() (int, bool) {
	if s.constant == nil {
		return 0, false
	}
	return *s.constant, true
}

// Describe summarizes the fit with a histogram of the trimmed values
func (s *ContinuousSampler) Describe(title string) *Description {
	d := &Description{
		Title:    title,
		Kind:     KindContinuous,
		Count:    s.count,
		Trimmed:  len(s.trimmed),
		Min:      s.min,
		Max:      s.max,
		Constant: s.constant,
	}
	if s.constant == nil {
		d.Mean = s.normal.Mu
		d.StdDev = s.normal.Sigma
		d.Density = s.Density()
	}
	d.Histogram = histogram(s.trimmed)
	return d
}

// trimBoth cuts int(fraction*n) values from each end of sorted.
func trimBoth(sorted []int, fraction float64) []int {
	cut := int(fraction * float64(len(sorted)))
	if 2*cut >= len(sorted) {
		return append([]int(nil), sorted...)
	}
	return append([]int(nil), sorted[cut:len(sorted)-cut]...)
}

// ToInts converts observed values to integers. Integral floats, numeric
// strings and json.Number are accepted; fractional values are rejected.
func ToInts(values []any) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		n, err := toInt(v)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, errors.CodeNotInteger, "observed value is not an integer").
				WithContext("index", i).
				WithDetails(fmt.Sprintf("%v", v))
		}
		out[i] = n
	}
	return out, nil
}

func toInt(v any) (int, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n), nil
		}
		parsed, err := x.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case bool, nil:
		return 0, fmt.Errorf("unable to cast %#v to int", v)
	default:
		return cast.ToIntE(v)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("unable to cast %v to int without loss", f)
	}
	return int(f), nil
}
