package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/inferloop/synthetizer/internal/sampling"
	"github.com/inferloop/synthetizer/internal/server"
	"github.com/inferloop/synthetizer/pkg/constants"
)

// EnvPrefix prefixes environment overrides, e.g. SYNTH_SAMPLING_SEED
const EnvPrefix = "SYNTH"

type CLIConfig struct {
	Sampling sampling.Config `mapstructure:"sampling"`
	Server   server.Config   `mapstructure:"server"`
	Log      LogConfig       `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads cfgFile, or $HOME/.synthetizer/config.yaml when empty,
// on top of the built-in defaults. A missing default file is not an error.
func LoadConfig(cfgFile string) (*CLIConfig, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, "."+constants.AppName))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &CLIConfig{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Sampling.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns the configuration used without a config file
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		Sampling: *sampling.DefaultConfig(),
		Server:   *server.DefaultConfig(),
		Log: LogConfig{
			Level:  constants.DefaultLogLevel,
			Format: constants.DefaultLogFormat,
		},
	}
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("sampling.batch_size", defaults.Sampling.BatchSize)
	v.SetDefault("sampling.trim_fraction", defaults.Sampling.TrimFraction)
	v.SetDefault("sampling.round_minutes", defaults.Sampling.RoundMinutes)
	v.SetDefault("sampling.max_redraws", defaults.Sampling.MaxRedraws)
	v.SetDefault("sampling.seed", defaults.Sampling.Seed)
	v.SetDefault("sampling.infinite_end", defaults.Sampling.InfiniteEnd)
	v.SetDefault("sampling.workers", defaults.Sampling.Workers)
	v.SetDefault("sampling.max_support", defaults.Sampling.MaxSupport)

	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.metrics_port", defaults.Server.MetricsPort)
	v.SetDefault("server.read_timeout", defaults.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", defaults.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", defaults.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)
	v.SetDefault("server.enable_metrics", defaults.Server.EnableMetrics)
	v.SetDefault("server.enable_profiling", defaults.Server.EnableProfiling)
	v.SetDefault("server.max_request_size", defaults.Server.MaxRequestSize)
	v.SetDefault("server.tls_cert_file", defaults.Server.TLSCertFile)
	v.SetDefault("server.tls_key_file", defaults.Server.TLSKeyFile)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
}

// NewLogger builds the process logger. Logs go to stderr so that sampled
// values on stdout stay machine readable.
func (c LogConfig) NewLogger(verbose bool) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	name := c.Level
	if verbose {
		name = constants.LogLevelDebug
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	logger.SetLevel(level)

	switch c.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q", c.Format)
	}

	return logger, nil
}
