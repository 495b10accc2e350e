package sampling

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/inferloop/synthetizer/pkg/constants"
	"github.com/inferloop/synthetizer/pkg/errors"
)

// DatetimeSampler models timestamps as two independent components: the day
// offset from the earliest observed date and the minute of the day.
type DatetimeSampler struct {
	mode         OutputMode
	roundMinutes int
	naive        bool
	minDate      time.Time
	count        int

	days    *ContinuousSampler
	minutes *ContinuousSampler
}

// NewDatetimeSampler fits a datetime sampler. The location of the first
// timestamp is used for every sampled value.
func NewDatetimeSampler(timestamps []Timestamp, mode OutputMode, config *Config) (*DatetimeSampler, error) {
	config, err := resolveConfig(config)
	if err != nil {
		return nil, err
	}
	return newDatetime(timestamps, mode, config, config.newRand())
}

func newDatetime(timestamps []Timestamp, mode OutputMode, config *Config, rng *rand.Rand) (*DatetimeSampler, error) {
	if mode != ModeString && mode != ModeMapping {
		return nil, errors.NewConfigurationError(errors.CodeUnsupportedMode, fmt.Sprintf("datetime sampler does not support output mode %q", mode))
	}
	if len(timestamps) == 0 {
		return nil, errors.NewInvalidInputError(errors.CodeEmptyInput, "datetime sampler needs at least one observed timestamp")
	}

	first := timestamps[0]
	minDay := civilDay(first.Time)
	for _, ts := range timestamps[1:] {
		if d := civilDay(ts.Time); d < minDay {
			minDay = d
		}
	}

	days := make([]int, len(timestamps))
	minutes := make([]int, len(timestamps))
	for i, ts := range timestamps {
		days[i] = civilDay(ts.Time) - minDay
		minutes[i] = minuteOfDay(ts.Time)
	}

	daySampler, err := newContinuous(days, config, rng)
	if err != nil {
		return nil, err
	}
	minuteSampler, err := newContinuous(minutes, config, rng)
	if err != nil {
		return nil, err
	}

	epochDay := time.Unix(int64(minDay)*86400, 0).UTC()
	y, m, d := epochDay.Date()

	return &DatetimeSampler{
		mode:         mode,
		roundMinutes: config.RoundMinutes,
		naive:        first.Naive,
		minDate:      time.Date(y, m, d, 0, 0, 0, 0, first.Time.Location()),
		count:        len(timestamps),
		days:         daySampler,
		minutes:      minuteSampler,
	}, nil
}

// Kind returns the sampler variant
func (s *DatetimeSampler) Kind() Kind {
	return KindDatetime
}

// MinDate returns midnight of the earliest observed date
func (s *DatetimeSampler) MinDate() time.Time {
	return s.minDate
}

// SampleTimestamp draws a day offset and a rounded minute of day and
// recomposes them onto the earliest observed date.
func (s *DatetimeSampler) SampleTimestamp() Timestamp {
	day := s.days.SampleInt()
	minute := roundTo(s.minutes.SampleInt(), s.roundMinutes)

	t := s.minDate.AddDate(0, 0, day).Add(time.Duration(minute) * time.Minute)
	return Timestamp{Time: t, Naive: s.naive}
}

// Sample returns a timestamp string, or a {"start": ts} mapping
func (s *DatetimeSampler) Sample() (any, error) {
	ts := s.SampleTimestamp().String()
	if s.mode == ModeMapping {
		return map[string]string{constants.KeyStart: ts}, nil
	}
	return ts, nil
}

// Describe summarizes both components
func (s *DatetimeSampler) Describe(title string) *Description {
	return &Description{
		Title: title,
		Kind:  KindDatetime,
		Count: s.count,
		Components: []*Description{
			s.days.Describe(title + " - days"),
			s.minutes.Describe(title + " - minutes"),
		},
		Metadata: map[string]any{
			"min_date": s.minDate.Format("2006-01-02"),
			"mode":     string(s.mode),
		},
	}
}
