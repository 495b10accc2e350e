package sampling

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/inferloop/synthetizer/pkg/constants"
	"github.com/inferloop/synthetizer/pkg/errors"
)

// Interval is an observed (start, end) pair
type Interval struct {
	Start Timestamp
	End   Timestamp
}

// DurationSampler models intervals as a start instant and a duration in
// minutes. Sampled durations are never negative.
type DurationSampler struct {
	mode         OutputMode
	roundMinutes int
	maxRedraws   int
	observer     Observer
	count        int

	starts    *DatetimeSampler
	durations *ContinuousSampler
}

// NewDurationSampler fits a duration sampler to intervals
func NewDurationSampler(intervals []Interval, mode OutputMode, config *Config) (*DurationSampler, error) {
	config, err := resolveConfig(config)
	if err != nil {
		return nil, err
	}
	return newDuration(intervals, mode, config, config.newRand())
}

func newDuration(intervals []Interval, mode OutputMode, config *Config, rng *rand.Rand) (*DurationSampler, error) {
	if mode != ModeTuple && mode != ModeMapping {
		return nil, errors.NewConfigurationError(errors.CodeUnsupportedMode, fmt.Sprintf("duration sampler does not support output mode %q", mode))
	}
	if len(intervals) == 0 {
		return nil, errors.NewInvalidInputError(errors.CodeEmptyInput, "duration sampler needs at least one observed interval")
	}

	starts := make([]Timestamp, len(intervals))
	minutes := make([]int, len(intervals))
	for i, iv := range intervals {
		starts[i] = iv.Start
		minutes[i] = spanMinutes(iv.Start.Time, iv.End.Time)
	}

	startSampler, err := newDatetime(starts, ModeString, config, rng)
	if err != nil {
		return nil, err
	}
	durationSampler, err := newContinuous(minutes, config, rng)
	if err != nil {
		return nil, err
	}

	return &DurationSampler{
		mode:         mode,
		roundMinutes: config.RoundMinutes,
		maxRedraws:   config.MaxRedraws,
		observer:     config.observer(),
		count:        len(intervals),
		starts:       startSampler,
		durations:    durationSampler,
	}, nil
}

// spanMinutes measures end - start in whole minutes from Unix seconds, so
// spans beyond the time.Duration range are not clamped.
func spanMinutes(start, end time.Time) int {
	seconds := float64(end.Unix()-start.Unix()) + float64(end.Nanosecond()-start.Nanosecond())/1e9
	return int(math.RoundToEven(seconds / 60))
}

// Kind returns the sampler variant
func (s *DurationSampler) Kind() Kind {
	return KindDuration
}

// SamplePair draws a start and a duration and returns both bounds. A rounded duration
// below zero is rejected and redrawn, up to the configured cap.
func (s *DurationSampler) SamplePair() (Timestamp, Timestamp, error) {
	start := s.starts.SampleTimestamp()

	for attempt := 0; attempt < s.maxRedraws; attempt++ {
		minutes := roundTo(s.durations.SampleInt(), s.roundMinutes)
		if minutes < 0 {
			s.observer.DurationRedrawn()
			continue
		}
		end := Timestamp{
			Time:  start.Time.Add(time.Duration(minutes) * time.Minute),
			Naive: start.Naive,
		}
		return start, end, nil
	}

	return Timestamp{}, Timestamp{}, errors.NewInvalidInputError(errors.CodeRedrawsExceeded, "fitted duration density keeps producing negative durations").
		WithContext("max_redraws", s.maxRedraws)
}

// Sample returns a Pair, or a {"start", "end"} mapping
func (s *DurationSampler) Sample() (any, error) {
	start, end, err := s.SamplePair()
	if err != nil {
		return nil, err
	}
	if s.mode == ModeMapping {
		return map[string]string{
			constants.KeyStart: start.String(),
			constants.KeyEnd:   end.String(),
		}, nil
	}
	return Pair{start.String(), end.String()}, nil
}

// Describe summarizes the start and duration components
func (s *DurationSampler) Describe(title string) *Description {
	return &Description{
		Title: title,
		Kind:  KindDuration,
		Count: s.count,
		Components: []*Description{
			s.starts.Describe(title + " - start"),
			s.durations.Describe(title + " - duration"),
		},
		Metadata: map[string]any{
			"mode": string(s.mode),
		},
	}
}
