// Package sampling fits statistical models to observed field values and
// draws synthetic replacements from them.
//
// A Sampler is built once per field by the Selector and then drawn from once
// per synthesized record. The variant returned depends on the shape of the
// observed values; callers reach the draw operation through the capability
// interfaces ValueSampler, SizedSampler and IntervalSampler.
//
// Samplers are not safe for concurrent draws. Distinct samplers share no
// state and may be used from different goroutines.
package sampling

import (
	"github.com/inferloop/synthetizer/pkg/constants"
)

// Kind identifies a sampler variant
type Kind string

const (
	KindCategorical       Kind = constants.SamplerKindCategorical
	KindUniqueCategorical Kind = constants.SamplerKindUniqueCategorical
	KindContinuous        Kind = constants.SamplerKindContinuous
	KindDatetime          Kind = constants.SamplerKindDatetime
	KindDuration          Kind = constants.SamplerKindDuration
	KindBoundedInterval   Kind = constants.SamplerKindBoundedInterval
	KindGroup             Kind = constants.SamplerKindGroup
)

// OutputMode selects the representation of sampled timestamps
type OutputMode string

const (
	ModeString  OutputMode = constants.OutputModeString
	ModeMapping OutputMode = constants.OutputModeMapping
	ModeTuple   OutputMode = constants.OutputModeTuple
)

// Sampler is the capability shared by every fitted model
type Sampler interface {
	// Kind returns the sampler variant
	Kind() Kind

	// Describe summarizes the fitted model for debugging
	Describe(title string) *Description
}

// ValueSampler draws one synthetic value at a time
type ValueSampler interface {
	Sampler
	Sample() (any, error)
}

// SizedSampler draws a caller-sized set of distinct values
type SizedSampler interface {
	Sampler
	SampleSize(size int) ([]any, error)
}

// IntervalSampler draws an interval shaped like the caller's own
type IntervalSampler interface {
	Sampler
	SampleInterval(start, end string) (any, error)
}

// Pair is the tuple representation of a sampled interval
type Pair [2]string

var (
	_ ValueSampler    = (*CategoricalSampler)(nil)
	_ SizedSampler    = (*UniqueCategoricalSampler)(nil)
	_ ValueSampler    = (*ContinuousSampler)(nil)
	_ ValueSampler    = (*DatetimeSampler)(nil)
	_ ValueSampler    = (*DurationSampler)(nil)
	_ IntervalSampler = (*BoundedIntervalSampler)(nil)
	_ ValueSampler    = (*GroupSampler)(nil)
)
