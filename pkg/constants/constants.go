package constants

import "time"

// Application constants
const (
	// Application metadata
	AppName        = "synthetizer"
	AppDescription = "Synthetic value sampling engine"
	AppVersion     = "0.1.0"

	// API constants
	APIPrefix = "/api/v1"

	// Default configuration values
	DefaultPort            = 8080
	DefaultMetricsPort     = 9090
	DefaultHost            = "0.0.0.0"
	DefaultLogLevel        = LogLevelInfo
	DefaultLogFormat       = "text"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	MaxRequestSize         = 32 * 1024 * 1024

	// Sampling defaults
	DefaultBatchSize     = 100
	DefaultTrimFraction  = 0.03
	DefaultRoundMinutes  = 5
	DefaultMaxRedraws    = 1000
	DefaultHistogramBins = 50
	DefaultTopValues     = 5
	DefaultMaxSupport    = 1 << 20
)

// InfiniteEnd marks an open-ended interval in place of a real end
// timestamp. Callers compare against it byte for byte.
const InfiniteEnd = "9999-12-31T23:59:59"

// Sampler kinds
const (
	SamplerKindCategorical       = "categorical"
	SamplerKindUniqueCategorical = "unique_categorical"
	SamplerKindContinuous        = "continuous"
	SamplerKindDatetime          = "datetime"
	SamplerKindDuration          = "duration"
	SamplerKindBoundedInterval   = "bounded_interval"
	SamplerKindGroup             = "group"
)

// Output representations
const (
	OutputModeString  = "str"
	OutputModeMapping = "dict"
	OutputModeTuple   = "tuple"
)

// Interval mapping keys
const (
	KeyStart = "start"
	KeyEnd   = "end"
)

// HTTP headers
const (
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-ID"
)

// Content types
const (
	ContentTypeJSON      = "application/json"
	ContentTypePlainText = "text/plain"
	ContentTypeHTML      = "text/html"
)

// Log levels
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)
