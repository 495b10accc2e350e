package sampling

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func nonEmptyInts(max int) gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, max)).SuchThat(func(v []int) bool {
		return len(v) > 0
	})
}

func TestContinuousSamplerProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("draws stay within the observed support", prop.ForAll(
		func(values []int, seed uint64) bool {
			config := DefaultConfig()
			config.Seed = seed | 1
			config.BatchSize = 16

			sampler, err := NewContinuousSampler(values, config)
			if err != nil {
				return false
			}

			lo, hi := values[0], values[0]
			for _, v := range values {
				lo = min(lo, v)
				hi = max(hi, v)
			}

			for i := 0; i < 64; i++ {
				v := sampler.SampleInt()
				if _, constant := sampler.Constant(); constant {
					if v < lo || v > hi {
						return false
					}
					continue
				}
				if v < 0 || v >= hi {
					return false
				}
			}
			return true
		},
		nonEmptyInts(1440),
		gen.UInt64(),
	))

	properties.Property("density sums to one", prop.ForAll(
		func(values []int) bool {
			sampler, err := NewContinuousSampler(values, nil)
			if err != nil {
				return false
			}
			pmf := sampler.Density()
			if pmf == nil {
				_, constant := sampler.Constant()
				return constant
			}
			total := 0.0
			for _, p := range pmf {
				if p < 0 {
					return false
				}
				total += p
			}
			return total > 1-1e-9 && total < 1+1e-9
		},
		nonEmptyInts(600),
	))

	properties.TestingRun(t)
}

func TestUniqueCategoricalProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("subsets are distinct observed values", prop.ForAll(
		func(values []string, size int) bool {
			observed := make([]any, len(values))
			for i, v := range values {
				observed[i] = v
			}
			sampler, err := NewUniqueCategoricalSampler(observed, nil)
			if err != nil {
				return false
			}

			size = size % (sampler.Cardinality() + 1)
			got, err := sampler.SampleSize(size)
			if err != nil || len(got) != size {
				return false
			}

			seen := make(map[any]bool, size)
			for _, v := range got {
				if seen[v] {
					return false
				}
				seen[v] = true
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()).SuchThat(func(v []string) bool { return len(v) > 0 }),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

func TestTimestampSamplerProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	base := time.Date(2016, 12, 5, 0, 0, 0, 0, time.FixedZone("", 2*60*60))

	properties.Property("sampled clock times are rounded", prop.ForAll(
		func(offsets []int) bool {
			timestamps := make([]Timestamp, len(offsets))
			for i, o := range offsets {
				timestamps[i] = Timestamp{Time: base.Add(time.Duration(o) * time.Minute)}
			}
			sampler, err := NewDatetimeSampler(timestamps, ModeString, nil)
			if err != nil {
				return false
			}
			for i := 0; i < 32; i++ {
				ts := sampler.SampleTimestamp()
				if ts.Time.Minute()%5 != 0 || ts.Time.Before(base) {
					return false
				}
				if _, offset := ts.Time.Zone(); offset != 2*60*60 {
					return false
				}
			}
			return true
		},
		nonEmptyInts(30*24*60),
	))

	properties.Property("sampled durations are never negative", prop.ForAll(
		func(starts, lengths []int) bool {
			n := min(len(starts), len(lengths))
			intervals := make([]Interval, n)
			for i := 0; i < n; i++ {
				start := base.Add(time.Duration(starts[i]) * time.Minute)
				intervals[i] = Interval{
					Start: Timestamp{Time: start},
					End:   Timestamp{Time: start.Add(time.Duration(lengths[i]) * time.Minute)},
				}
			}
			sampler, err := NewDurationSampler(intervals, ModeTuple, nil)
			if err != nil {
				return false
			}
			for i := 0; i < 32; i++ {
				start, end, err := sampler.SamplePair()
				if err != nil || end.Time.Before(start.Time) {
					return false
				}
			}
			return true
		},
		nonEmptyInts(7*24*60),
		nonEmptyInts(24*60),
	))

	properties.TestingRun(t)
}
