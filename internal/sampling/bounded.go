package sampling

import (
	"math/rand/v2"

	"github.com/inferloop/synthetizer/pkg/constants"
	"github.com/inferloop/synthetizer/pkg/errors"
)

// RawInterval is an observed interval before parsing. End may hold the
// infinite marker instead of a timestamp.
type RawInterval struct {
	Start string
	End   string
}

// BoundedIntervalSampler reproduces the shape of the caller's interval:
// open-ended, single instant, or bounded. Point and open-ended observations
// feed one datetime model; bounded ones feed a duration model.
type BoundedIntervalSampler struct {
	infiniteEnd string
	count       int
	pointCount  int

	points  *DatetimeSampler
	bounded *DurationSampler
}

// NewBoundedIntervalSampler partitions intervals by shape and fits one model
// per non-empty partition.
func NewBoundedIntervalSampler(intervals []RawInterval, config *Config) (*BoundedIntervalSampler, error) {
	config, err := resolveConfig(config)
	if err != nil {
		return nil, err
	}
	return newBoundedInterval(intervals, config, config.newRand())
}

func newBoundedInterval(intervals []RawInterval, config *Config, rng *rand.Rand) (*BoundedIntervalSampler, error) {
	if len(intervals) == 0 {
		return nil, errors.NewInvalidInputError(errors.CodeEmptyInput, "bounded interval sampler needs at least one observed interval")
	}

	var (
		points  []Timestamp
		bounded []Interval
	)
	for i, raw := range intervals {
		start, err := ParseTimestamp(raw.Start)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, errors.CodeInvalidTimestamp, "interval start is not a timestamp").
				WithContext("index", i)
		}
		if raw.End == config.InfiniteEnd || isPoint(raw.Start, raw.End) {
			points = append(points, start)
			continue
		}
		end, err := ParseTimestamp(raw.End)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, errors.CodeInvalidTimestamp, "interval end is not a timestamp").
				WithContext("index", i)
		}
		bounded = append(bounded, Interval{Start: start, End: end})
	}

	s := &BoundedIntervalSampler{
		infiniteEnd: config.InfiniteEnd,
		count:       len(intervals),
		pointCount:  len(points),
	}

	var err error
	if len(points) > 0 {
		if s.points, err = newDatetime(points, ModeString, config, rng); err != nil {
			return nil, err
		}
	}
	if len(bounded) > 0 {
		if s.bounded, err = newDuration(bounded, ModeMapping, config, rng); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Kind returns the sampler variant
func (s *BoundedIntervalSampler) Kind() Kind {
	return KindBoundedInterval
}

// SampleInterval draws a {"start", "end"} mapping with the same shape as the
// caller's (start, end) pair.
func (s *BoundedIntervalSampler) SampleInterval(start, end string) (any, error) {
	switch {
	case end == s.infiniteEnd:
		ts, err := s.samplePoint()
		if err != nil {
			return nil, err
		}
		return map[string]string{constants.KeyStart: ts, constants.KeyEnd: s.infiniteEnd}, nil

	case isPoint(start, end):
		ts, err := s.samplePoint()
		if err != nil {
			return nil, err
		}
		return map[string]string{constants.KeyStart: ts, constants.KeyEnd: ts}, nil

	default:
		if s.bounded == nil {
			return nil, errors.NewInvalidInputError(errors.CodeEmptyBranch, "no bounded intervals were observed")
		}
		return s.bounded.Sample()
	}
}

// isPoint reports whether start and end name the same instant, written
// identically or with different offsets.
func isPoint(start, end string) bool {
	if start == end {
		return true
	}
	from, err := ParseTimestamp(start)
	if err != nil {
		return false
	}
	to, err := ParseTimestamp(end)
	if err != nil {
		return false
	}
	return from.Time.Equal(to.Time)
}

func (s *BoundedIntervalSampler) samplePoint() (string, error) {
	if s.points == nil {
		return "", errors.NewInvalidInputError(errors.CodeEmptyBranch, "no open-ended or single-instant intervals were observed")
	}
	return s.points.SampleTimestamp().String(), nil
}

// Describe summarizes both partitions
func (s *BoundedIntervalSampler) Describe(title string) *Description {
	d := &Description{
		Title: title,
		Kind:  KindBoundedInterval,
		Count: s.count,
		Metadata: map[string]any{
			"point_intervals":   s.pointCount,
			"bounded_intervals": s.count - s.pointCount,
		},
	}
	if s.points != nil {
		d.Components = append(d.Components, s.points.Describe(title+" - start dates only"))
	}
	if s.bounded != nil {
		d.Components = append(d.Components, s.bounded.Describe(title+" - start and end dates"))
	}
	return d
}
