// Package constants provides shared constants for the mortgage-calculator application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyPlaces is the number of decimal places shown for currency
	CurrencyPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxProjectionYears bounds the amortization loop whatever term is given
	MaxProjectionYears = 100

	// MaxIncidentalCostPercent caps the sum of the three incidental cost percentages
	MaxIncidentalCostPercent = 25.0
)

// Default scenario, matching the initial values of the calculator form.
const (
	DefaultPrice             = 350000.0
	DefaultEquity            = 70000.0
	DefaultTransferTax       = 6.5
	DefaultNotaryFee         = 1.5
	DefaultBrokerFee         = 3.5
	DefaultInterestRate      = 3.5
	DefaultRepaymentRate     = 2.0
	DefaultTermYears         = 25
	DefaultLocale            = "de-DE"
	DefaultCurrencyCode      = "EUR"
	DefaultEnvironmentPrefix = "MORTGAGE"
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
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
)

// Cache backends
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	// DefaultCacheKeyPrefix namespaces cached results in shared stores
	DefaultCacheKeyPrefix = "mortgage:result:"

	// DefaultRedisAddress is used when the redis backend is chosen without an address
	DefaultRedisAddress = "localhost:6379"
)

// Validation constants
const (
	// SeriesTolerance is the tolerance used when checking the balance identity
	SeriesTolerance = 1e-6

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)
