package sampling

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/inferloop/synthetizer/pkg/constants"
	"github.com/inferloop/synthetizer/pkg/errors"
)

// CategoricalSampler draws with replacement from the observed values. The
// empirical distribution is the model.
type CategoricalSampler struct {
	values []any
	rng    *rand.Rand
	buffer *Buffer[any]
}

// NewCategoricalSampler creates a categorical sampler over values
func NewCategoricalSampler(values []any, config *Config) (*CategoricalSampler, error) {
	config, err := resolveConfig(config)
	if err != nil {
		return nil, err
	}
	return newCategorical(values, config, config.newRand())
}

func newCategorical(values []any, config *Config, rng *rand.Rand) (*CategoricalSampler, error) {
	if len(values) == 0 {
		return nil, errors.NewInvalidInputError(errors.CodeEmptyInput, "categorical sampler needs at least one observed value")
	}

	s := &CategoricalSampler{
		values: append([]any(nil), values...),
		rng:    rng,
	}
	obs := config.observer()
	s.buffer = NewBuffer(config.BatchSize, func() any {
		return s.values[s.rng.IntN(len(s.values))]
	}, func(n int) {
		obs.BufferRefilled(KindCategorical, n)
	})
	return s, nil
}

// Kind returns the sampler variant
func (s *CategoricalSampler) Kind() Kind {
	return KindCategorical
}

// Sample returns one observed value chosen uniformly at random
func (s *CategoricalSampler) Sample() (any, error) {
	return s.buffer.Next(), nil
}

// Describe summarizes the observed values
func (s *CategoricalSampler) Describe(title string) *Description {
	return describeCategories(title, KindCategorical, s.values)
}

// UniqueCategoricalSampler draws subsets of distinct observed values. Every
// call draws from the full observed set; nothing is depleted between calls.
type UniqueCategoricalSampler struct {
	values   []any
	distinct []any
	rng      *rand.Rand
}

// NewUniqueCategoricalSampler creates a without-replacement sampler over values
func NewUniqueCategoricalSampler(values []any, config *Config) (*UniqueCategoricalSampler, error) {
	config, err := resolveConfig(config)
	if err != nil {
		return nil, err
	}
	return newUniqueCategorical(values, config.newRand())
}

func newUniqueCategorical(values []any, rng *rand.Rand) (*UniqueCategoricalSampler, error) {
	if len(values) == 0 {
		return nil, errors.NewInvalidInputError(errors.CodeEmptyInput, "unique categorical sampler needs at least one observed value")
	}

	seen := make(map[string]struct{}, len(values))
	distinct := make([]any, 0, len(values))
	for _, v := range values {
		key := valueKey(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		distinct = append(distinct, v)
	}

	return &UniqueCategoricalSampler{
		values:   append([]any(nil), values...),
		distinct: distinct,
		rng:      rng,
	}, nil
}

// Kind returns the sampler variant
func (s *UniqueCategoricalSampler) Kind() Kind {
	return KindUniqueCategorical
}

// Cardinality returns the number of distinct observed values
func (s *UniqueCategoricalSampler) Cardinality() int {
	return len(s.distinct)
}

// SampleSize returns size distinct observed values
func (s *UniqueCategoricalSampler) SampleSize(size int) ([]any, error) {
	if size < 0 {
		return nil, errors.NewInvalidInputError(errors.CodeInvalidSize, "sample size cannot be negative").
			WithContext("size", size)
	}
	if size > len(s.distinct) {
		return nil, errors.NewInvalidInputError(errors.CodeSizeTooLarge, "sample size exceeds the number of distinct observed values").
			WithContext("size", size).
			WithContext("cardinality", len(s.distinct))
	}

	if size == 0 {
		return []any{}, nil
	}

	idxs := make([]int, size)
	sampleuv.WithoutReplacement(idxs, len(s.distinct), s.rng)

	out := make([]any, size)
	for i, idx := range idxs {
		out[i] = s.distinct[idx]
	}
	return out, nil
}

// Describe summarizes the observed values
func (s *UniqueCategoricalSampler) Describe(title string) *Description {
	return describeCategories(title, KindUniqueCategorical, s.values)
}

// valueKey maps arbitrary observed values, including maps and slices, onto
// a comparable identity.
func valueKey(v any) string {
	return fmt.Sprintf("%T:%#v", v, v)
}

func describeCategories(title string, kind Kind, values []any) *Description {
	counts := make(map[string]int)
	for _, v := range values {
		counts[fmt.Sprint(v)]++
	}

	top := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		top = append(top, ValueCount{Value: v, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Value < top[j].Value
	})
	if len(top) > constants.DefaultTopValues {
		top = top[:constants.DefaultTopValues]
	}

	return &Description{
		Title:     title,
		Kind:      kind,
		Count:     len(values),
		Distinct:  len(counts),
		TopValues: top,
	}
}
