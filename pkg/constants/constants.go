// Package constants provides shared constants for the car-cost-forecast application.
package constants

// DateTimeLayout is the format expected for scenario start dates and is also the
// output date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the number of decimal places used for currency rounding
	DecimalPrecision = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// KilometerBasis is the distance that fuel consumption figures refer to
	KilometerBasis = 100.0

	// NegligiblePayment is the threshold below which a computed payment is treated as 0
	NegligiblePayment = 0.000001

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// MaxYears bounds both the planned lifetime and the financing duration
	MaxYears = 100

	// MinInflationPercent is the exclusive lower bound for the annual inflation rate
	MinInflationPercent = -100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultPresetFile is the default file backing the named preset store
	DefaultPresetFile = "presets.yaml"

	// DefaultPresetDatabase is the default SQLite database for the preset store
	DefaultPresetDatabase = "presets.db"

	// DefaultRedisAddr is the default Redis address for the preset store
	DefaultRedisAddr = "localhost:6379"
)

// Preset store backends
const (
	StoreBackendFile   = "file"
	StoreBackendSQLite = "sqlite"
	StoreBackendRedis  = "redis"

	// DefaultRedisPrefix namespaces preset keys in Redis
	DefaultRedisPrefix = "car-cost-forecast:preset:"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// ServiceName identifies the service in traces and version responses
	ServiceName = "car-cost-forecast"
)
