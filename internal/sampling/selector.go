package sampling

import (
	"context"
	"math/rand/v2"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inferloop/synthetizer/pkg/constants"
	"github.com/inferloop/synthetizer/pkg/errors"
)

// KindHint carries the caller's knowledge about a field that the value
// shapes alone cannot reveal.
type KindHint struct {
	Unique        bool `json:"unique"`         // Draw subsets without replacement
	OpenIntervals bool `json:"open_intervals"` // start/end mappings may be open-ended
	Numeric       bool `json:"numeric"`        // Model integer values with a fitted density
	Group         bool `json:"group"`          // Values are lists of distinct members
}

// Field is one column of observed values to model
type Field struct {
	Path   string
	Values []any
	Hint   KindHint
}

// Selector chooses and fits the sampler variant matching a value collection
type Selector struct {
	config *Config
	logger *logrus.Logger

	// anonymous numbers Select calls that carry no field path
	anonymous atomic.Uint64
}

// NewSelector creates a selector. A nil config uses DefaultConfig.
func NewSelector(config *Config, logger *logrus.Logger) (*Selector, error) {
	config, err := resolveConfig(config)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Selector{config: config, logger: logger}, nil
}

// BuildSampler selects a sampler for values using the default configuration
func BuildSampler(values []any, hint KindHint) (Sampler, error) {
	selector, err := NewSelector(nil, nil)
	if err != nil {
		return nil, err
	}
	return selector.Select(values, hint)
}

// Select inspects the shape of values and returns the fitted sampler. The
// first matching rule wins:
//
//  1. timestamp strings            -> datetime (string mode)
//  2. pairs of timestamp strings   -> duration (tuple mode)
//  3. {"start", "end"} mappings    -> duration (mapping mode), or bounded
//     interval when hint.OpenIntervals is set
//  4. {"start"} mappings           -> datetime (mapping mode)
//  5. integers with hint.Numeric   -> continuous
//  6. lists with hint.Group        -> group
//  7. anything else                -> categorical, or unique categorical
//     when hint.Unique is set
//
// Values that fail to parse for a rule fall through to the next one.
//
// With a fixed seed, successive Select calls on one selector draw from
// distinct streams. Use SelectField to tie the stream to a field path.
func (s *Selector) Select(values []any, hint KindHint) (Sampler, error) {
	key := "#" + strconv.FormatUint(s.anonymous.Add(1), 10)
	return s.selectStream(key, values, hint)
}

// SelectField selects a sampler for field. With a fixed seed the random
// stream depends only on the seed and field.Path, so a field draws the same
// sequence however many other fields are built alongside it.
func (s *Selector) SelectField(field Field) (Sampler, error) {
	if field.Path == "" {
		return s.Select(field.Values, field.Hint)
	}
	return s.selectStream(field.Path, field.Values, field.Hint)
}

func (s *Selector) selectStream(key string, values []any, hint KindHint) (Sampler, error) {
	if len(values) == 0 {
		return nil, errors.NewModelSelectionError(errors.CodeNoValues, "cannot select a model for an empty value collection")
	}

	start := time.Now()
	sampler, err := s.selectSampler(s.config.streamRand(key), values, hint)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	s.config.observer().SamplerBuilt(sampler.Kind(), len(values), elapsed)
	s.logger.WithFields(logrus.Fields{
		"kind":     sampler.Kind(),
		"observed": len(values),
		"duration": elapsed,
	}).Debug("Selected sampler")

	return sampler, nil
}

func (s *Selector) selectSampler(rng *rand.Rand, values []any, hint KindHint) (Sampler, error) {
	if timestamps, ok := asTimestamps(values); ok {
		return newDatetime(timestamps, ModeString, s.config, rng)
	}

	if intervals, ok := asPairs(values); ok {
		return newDuration(intervals, ModeTuple, s.config, rng)
	}

	if raw, ok := asIntervalMappings(values); ok {
		if hint.OpenIntervals {
			sampler, err := newBoundedInterval(raw, s.config, rng)
			if err == nil {
				return sampler, nil
			}
			if !isParseFailure(err) {
				return nil, err
			}
			s.logger.WithError(err).Warn("Interval values do not parse, falling back to categorical sampling")
		} else if intervals, ok := parseIntervals(raw); ok {
			return newDuration(intervals, ModeMapping, s.config, rng)
		}
	}

	if starts, ok := asStartMappings(values); ok {
		return newDatetime(starts, ModeMapping, s.config, rng)
	}

	if hint.Numeric {
		if ints, err := ToInts(values); err == nil {
			return newContinuous(ints, s.config, rng)
		}
		s.logger.WithField("observed", len(values)).Debug("Values are not integers, using categorical sampling")
	}

	if hint.Group {
		if groups, ok := asGroups(values); ok {
			return newGroup(groups, s.config, rng)
		}
		s.logger.WithField("observed", len(values)).Debug("Values are not lists, using categorical sampling")
	}

	if hint.Unique {
		return newUniqueCategorical(values, rng)
	}
	return newCategorical(values, s.config, rng)
}

// BuildAll fits one sampler per field, in parallel bounded by
// Config.Workers. The first failure cancels the remaining fields.
func (s *Selector) BuildAll(ctx context.Context, fields []Field) (map[string]Sampler, error) {
	g, ctx := errgroup.WithContext(ctx)
	if s.config.Workers > 0 {
		g.SetLimit(s.config.Workers)
	}

	var mu sync.Mutex
	samplers := make(map[string]Sampler, len(fields))

	for _, field := range fields {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sampler, err := s.SelectField(field)
			if err != nil {
				if appErr, ok := err.(*errors.AppError); ok {
					return appErr.WithContext("path", field.Path)
				}
				return err
			}
			mu.Lock()
			samplers[field.Path] = sampler
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"fields": len(samplers),
	}).Info("Built samplers")

	return samplers, nil
}

func isParseFailure(err error) bool {
	appErr, ok := err.(*errors.AppError)
	return ok && appErr.Code == errors.CodeInvalidTimestamp
}

// asTimestamps matches collections made only of timestamp strings
func asTimestamps(values []any) ([]Timestamp, bool) {
	out := make([]Timestamp, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			return nil, false
		}
		ts, err := ParseTimestamp(str)
		if err != nil {
			return nil, false
		}
		out[i] = ts
	}
	return out, true
}

// asPairs matches collections of 2-tuples of timestamp strings
func asPairs(values []any) ([]Interval, bool) {
	out := make([]Interval, len(values))
	for i, v := range values {
		start, end, ok := pairStrings(v)
		if !ok {
			return nil, false
		}
		intervals, ok := parseIntervals([]RawInterval{{Start: start, End: end}})
		if !ok {
			return nil, false
		}
		out[i] = intervals[0]
	}
	return out, true
}

func pairStrings(v any) (string, string, bool) {
	switch p := v.(type) {
	case Pair:
		return p[0], p[1], true
	case [2]string:
		return p[0], p[1], true
	case []string:
		if len(p) == 2 {
			return p[0], p[1], true
		}
	case []any:
		if len(p) == 2 {
			a, okA := p[0].(string)
			b, okB := p[1].(string)
			return a, b, okA && okB
		}
	}
	return "", "", false
}

// asIntervalMappings matches mappings with exactly the keys start and end
func asIntervalMappings(values []any) ([]RawInterval, bool) {
	out := make([]RawInterval, len(values))
	for i, v := range values {
		m, ok := stringMapping(v)
		if !ok || len(m) != 2 {
			return nil, false
		}
		start, okStart := m[constants.KeyStart]
		end, okEnd := m[constants.KeyEnd]
		if !okStart || !okEnd {
			return nil, false
		}
		out[i] = RawInterval{Start: start, End: end}
	}
	return out, true
}

// asStartMappings matches mappings with exactly the key start
func asStartMappings(values []any) ([]Timestamp, bool) {
	out := make([]Timestamp, len(values))
	for i, v := range values {
		m, ok := stringMapping(v)
		if !ok || len(m) != 1 {
			return nil, false
		}
		start, ok := m[constants.KeyStart]
		if !ok {
			return nil, false
		}
		ts, err := ParseTimestamp(start)
		if err != nil {
			return nil, false
		}
		out[i] = ts
	}
	return out, true
}

// stringMapping returns v as a map of strings when every value is a string
func stringMapping(v any) (map[string]string, bool) {
	switch m := v.(type) {
	case map[string]string:
		return m, true
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, raw := range m {
			str, ok := raw.(string)
			if !ok {
				return nil, false
			}
			out[k] = str
		}
		return out, true
	}
	return nil, false
}

// asGroups matches collections of lists with at least one member overall
func asGroups(values []any) ([][]any, bool) {
	out := make([][]any, len(values))
	members := 0
	for i, v := range values {
		switch g := v.(type) {
		case []any:
			out[i] = g
		case nil:
			out[i] = nil
		default:
			return nil, false
		}
		members += len(out[i])
	}
	return out, members > 0
}

func parseIntervals(raw []RawInterval) ([]Interval, bool) {
	out := make([]Interval, len(raw))
	for i, r := range raw {
		start, err := ParseTimestamp(r.Start)
		if err != nil {
			return nil, false
		}
		end, err := ParseTimestamp(r.End)
		if err != nil {
			return nil, false
		}
		out[i] = Interval{Start: start, End: end}
	}
	return out, true
}
