// Package constants provides shared constants for the valuation application.
package constants

// Modeling constants
const (
	// DepreciationShareOfEBITDA is the share of EBITDA treated as
	// depreciation; EBIT is the remaining share.
	DepreciationShareOfEBITDA = 0.2

	// LBOEntryMultiple is the fixed purchase multiple used to back into
	// entry EBITDA from the purchase price.
	LBOEntryMultiple = 8.0

	// PercentageMultiplier converts a decimal rate into a percentage.
	PercentageMultiplier = 100.0

	// DecimalPlaces is the precision used when rendering currency.
	DecimalPlaces = 2
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

	// EnvPrefix is the prefix for environment overrides of config keys
	EnvPrefix = "VALUATION"

	// DotEnvFile is the optional env file loaded next to the config
	DotEnvFile = ".env"
)

// Sensitivity defaults
const (
	// DefaultGridMetric is the scalar stored in each sensitivity cell
	DefaultGridMetric = "per_share"

	// MaxGridCells bounds the size of a single sensitivity grid
	MaxGridCells = 10000
)
