// Package constants provides shared constants for the loan-repayments application.
package constants

// DateTimeLayout is the format expected for scenario start dates and is also
// the output date format for labelled payment periods.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of payment periods in a year
	MonthsPerYear = 12

	// MaxLoanTermYears bounds the loan term so the schedule stays a realistic size
	MaxLoanTermYears = 100

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Calculator defaults, matching the values the input form is pre-filled with.
const (
	// DefaultHomeValue is the default home value in USD
	DefaultHomeValue = 500000.0

	// DefaultDeposit is the default deposit in USD
	DefaultDeposit = 100000.0

	// DefaultInterestRate is the default annual interest rate percentage
	DefaultInterestRate = 5.5

	// DefaultLoanTerm is the default loan term in years
	DefaultLoanTerm = 30

	// DefaultCurrency is the default currency code
	DefaultCurrency = "USD"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "LOANCALC"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultCacheTTLSeconds is how long a computed schedule stays cached
	DefaultCacheTTLSeconds = 600

	// DefaultCacheMaxEntries bounds the in-memory schedule cache
	DefaultCacheMaxEntries = 1024
)

// Cache backends
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)
