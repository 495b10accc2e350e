package sampling

import (
	"math/rand/v2"

	"github.com/inferloop/synthetizer/pkg/errors"
)

// GroupSampler synthesizes variable-size groups of distinct members, such
// as the participants of an appointment. Group sizes are drawn from the
// observed sizes and members from the pooled observed members.
type GroupSampler struct {
	count   int
	sizes   *CategoricalSampler
	members *UniqueCategoricalSampler
}

// NewGroupSampler fits a group sampler to observed groups. Empty groups
// count toward the size distribution.
func NewGroupSampler(groups [][]any, config *Config) (*GroupSampler, error) {
	config, err := resolveConfig(config)
	if err != nil {
		return nil, err
	}
	return newGroup(groups, config, config.newRand())
}

func newGroup(groups [][]any, config *Config, rng *rand.Rand) (*GroupSampler, error) {
	if len(groups) == 0 {
		return nil, errors.NewInvalidInputError(errors.CodeEmptyInput, "group sampler needs at least one observed group")
	}

	sizes := make([]any, len(groups))
	var pooled []any
	for i, g := range groups {
		sizes[i] = len(g)
		pooled = append(pooled, g...)
	}
	if len(pooled) == 0 {
		return nil, errors.NewInvalidInputError(errors.CodeEmptyInput, "every observed group is empty")
	}

	sizeSampler, err := newCategorical(sizes, config, rng)
	if err != nil {
		return nil, err
	}
	memberSampler, err := newUniqueCategorical(pooled, rng)
	if err != nil {
		return nil, err
	}

	return &GroupSampler{
		count:   len(groups),
		sizes:   sizeSampler,
		members: memberSampler,
	}, nil
}

// Kind returns the sampler variant
func (s *GroupSampler) Kind() Kind {
	return KindGroup
}

// Sample returns a []any of distinct members. The drawn size is capped at
// the number of distinct pooled members.
func (s *GroupSampler) Sample() (any, error) {
	v, err := s.sizes.Sample()
	if err != nil {
		return nil, err
	}
	size := min(v.(int), s.members.Cardinality())
	members, err := s.members.SampleSize(size)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// Describe summarizes the size and member distributions
func (s *GroupSampler) Describe(title string) *Description {
	return &Description{
		Title: title,
		Kind:  KindGroup,
		Count: s.count,
		Components: []*Description{
			s.sizes.Describe(title + " - size"),
			s.members.Describe(title + " - members"),
		},
	}
}
