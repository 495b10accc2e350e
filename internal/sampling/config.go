package sampling

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/inferloop/synthetizer/pkg/constants"
	"github.com/inferloop/synthetizer/pkg/errors"
)

// Config contains the process-wide knobs shared by every sampler built in a
// synthesis run.
type Config struct {
	BatchSize    int     `json:"batch_size" mapstructure:"batch_size"`       // Values drawn per buffer refill
	TrimFraction float64 `json:"trim_fraction" mapstructure:"trim_fraction"` // Fraction cut from each tail before fitting
	RoundMinutes int     `json:"round_minutes" mapstructure:"round_minutes"` // Granularity of sampled clock times and durations
	MaxRedraws   int     `json:"max_redraws" mapstructure:"max_redraws"`     // Cap on negative-duration rejections per draw
	Seed         uint64  `json:"seed" mapstructure:"seed"`                   // 0 seeds from the runtime
	InfiniteEnd  string  `json:"infinite_end" mapstructure:"infinite_end"`   // Open-ended interval marker
	Workers      int     `json:"workers" mapstructure:"workers"`             // BuildAll parallelism, <= 0 is unbounded
	MaxSupport   int     `json:"max_support" mapstructure:"max_support"`     // Largest observed integer a density is fit over

	Observer Observer `json:"-" mapstructure:"-"`
}

// DefaultConfig returns the configuration used when callers pass nil.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:    constants.DefaultBatchSize,
		TrimFraction: constants.DefaultTrimFraction,
		RoundMinutes: constants.DefaultRoundMinutes,
		MaxRedraws:   constants.DefaultMaxRedraws,
		InfiniteEnd:  constants.InfiniteEnd,
		MaxSupport:   constants.DefaultMaxSupport,
	}
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return errors.NewConfigurationError(errors.CodeInvalidConfig, "batch size must be positive").
			WithContext("batch_size", c.BatchSize)
	}
	if c.TrimFraction < 0 || c.TrimFraction >= 0.5 {
		return errors.NewConfigurationError(errors.CodeInvalidConfig, "trim fraction must be in [0, 0.5)").
			WithContext("trim_fraction", c.TrimFraction)
	}
	if c.RoundMinutes <= 0 {
		return errors.NewConfigurationError(errors.CodeInvalidConfig, "rounding granularity must be positive").
			WithContext("round_minutes", c.RoundMinutes)
	}
	if c.MaxRedraws <= 0 {
		return errors.NewConfigurationError(errors.CodeInvalidConfig, "redraw cap must be positive").
			WithContext("max_redraws", c.MaxRedraws)
	}
	if c.MaxSupport <= 0 {
		return errors.NewConfigurationError(errors.CodeInvalidConfig, "density support cap must be positive").
			WithContext("max_support", c.MaxSupport)
	}
	if c.InfiniteEnd == "" {
		return errors.NewConfigurationError(errors.CodeInvalidConfig, "infinite end marker cannot be empty")
	}
	return nil
}

// resolveConfig returns the defaults for nil and validates everything else.
func resolveConfig(config *Config) (*Config, error) {
	if config == nil {
		return DefaultConfig(), nil
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) observer() Observer {
	if c.Observer == nil {
		return noopObserver{}
	}
	return c.Observer
}

// newRand returns the random stream owned by one top-level sampler. Nested
// samplers share their parent's stream.
func (c *Config) newRand() *rand.Rand {
	return c.streamRand("")
}

// streamRand returns the stream for key. With a fixed seed every key gets
// its own reproducible sequence.
func (c *Config) streamRand(key string) *rand.Rand {
	if c.Seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(c.Seed, c.Seed^0x9e3779b97f4a7c15^xxhash.Sum64String(key)))
}

// String implements fmt.Stringer for log fields.
func (c *Config) String() string {
	return fmt.Sprintf("batch=%d trim=%.3f round=%dm redraws=%d support=%d", c.BatchSize, c.TrimFraction, c.RoundMinutes, c.MaxRedraws, c.MaxSupport)
}

// Observer receives engine events. It is implemented by the Prometheus
// collectors in internal/observability/metrics.
type Observer interface {
	SamplerBuilt(kind Kind, observed int, elapsed time.Duration)
	BufferRefilled(kind Kind, size int)
	DurationRedrawn()
}

type noopObserver struct{}

func (noopObserver) SamplerBuilt(Kind, int, time.Duration) {}
func (noopObserver) BufferRefilled(Kind, int)              {}
func (noopObserver) DurationRedrawn()                      {}
