package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/inferloop/synthetizer/pkg/constants"
)

var logLevels = []string{
	constants.LogLevelDebug,
	constants.LogLevelInfo,
	constants.LogLevelWarn,
	constants.LogLevelError,
}

type Flags struct {
	ConfigFile  string
	Host        string
	Port        int
	MetricsPort int
	LogLevel    string
	LogFormat   string
	Seed        uint64
	Version     bool
}

func ParseFlags(args []string) (*Flags, error) {
	flags := &Flags{}

	fs := flag.NewFlagSet("synthetizer-server", flag.ContinueOnError)
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to configuration file")
	fs.StringVar(&flags.Host, "host", "", "Server host, overrides server.host")
	fs.IntVar(&flags.Port, "port", 0, "Server port, overrides server.port")
	fs.IntVar(&flags.MetricsPort, "metrics-port", 0, "Prometheus metrics port, overrides server.metrics_port")
	fs.StringVar(&flags.LogLevel, "log-level", "", fmt.Sprintf("Log level (%s)", strings.Join(logLevels, ", ")))
	fs.StringVar(&flags.LogFormat, "log-format", "", "Log format (json, text)")
	fs.Uint64Var(&flags.Seed, "seed", 0, "Random seed for fitted samplers, 0 seeds from the runtime")
	fs.BoolVar(&flags.Version, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", fs.Name())
		fmt.Fprintf(os.Stderr, "\nSynthetic value sampling API server\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if flags.LogLevel != "" && !slices.Contains(logLevels, flags.LogLevel) {
		return nil, fmt.Errorf("invalid log level %q", flags.LogLevel)
	}
	return flags, nil
}
