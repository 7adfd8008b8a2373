package config

import (
	"fmt"
	"strings"

	"bank-ledger-reconciler/internal/matcher"
	"bank-ledger-reconciler/internal/reporter"
	"bank-ledger-reconciler/internal/server"
	"bank-ledger-reconciler/pkg/errors"
	"bank-ledger-reconciler/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Configuration keys, as used in config files. Environment variables use the
// RECONCILER_ prefix with dots replaced by underscores.
const (
	KeyDateToleranceDays   = "matching.date_tolerance_days"
	KeyAmountTolerance     = "matching.amount_tolerance"
	KeyAcceptanceThreshold = "matching.acceptance_threshold"
	KeyDescriptionCutoff   = "matching.description_cutoff"
	KeyWeightAmount        = "matching.weights.amount"
	KeyWeightDate          = "matching.weights.date"
	KeyWeightDescription   = "matching.weights.description"

	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
	KeyLogOutput = "log.output"
	KeyLogFile   = "log.file"

	KeyServerPort = "server.port"

	KeyReportSortDeltas = "report.sort_deltas"
)

// EnvPrefix is the prefix of environment variables read by viper
const EnvPrefix = "RECONCILER"

// ConfigureEnv makes v read RECONCILER_* environment variables
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// CreateMatchingConfig builds the matching configuration. Keys that are not
// set anywhere keep their default values.
func CreateMatchingConfig(v *viper.Viper) (*matcher.MatchingConfig, error) {
	config := matcher.DefaultMatchingConfig()

	if v.IsSet(KeyDateToleranceDays) {
		config.DateToleranceDays = v.GetInt(KeyDateToleranceDays)
	}
	if v.IsSet(KeyAmountTolerance) {
		raw := strings.TrimSpace(v.GetString(KeyAmountTolerance))
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyAmountTolerance, raw, err).
				WithSuggestion("Use a plain decimal amount such as 0.01")
		}
		config.AmountTolerance = amount
	}
	if v.IsSet(KeyAcceptanceThreshold) {
		config.AcceptanceThreshold = v.GetFloat64(KeyAcceptanceThreshold)
	}
	if v.IsSet(KeyDescriptionCutoff) {
		config.DescriptionCutoff = v.GetFloat64(KeyDescriptionCutoff)
	}
	if v.IsSet(KeyWeightAmount) {
		config.Weights.Amount = v.GetFloat64(KeyWeightAmount)
	}
	if v.IsSet(KeyWeightDate) {
		config.Weights.Date = v.GetFloat64(KeyWeightDate)
	}
	if v.IsSet(KeyWeightDescription) {
		config.Weights.Description = v.GetFloat64(KeyWeightDescription)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "matching", config.String(), err)
	}

	return config, nil
}

// CreateLoggerConfig builds the logger configuration; verbose forces debug level
func CreateLoggerConfig(v *viper.Viper, verbose bool) (*logger.Config, error) {
	config := logger.DefaultConfig()

	if level := v.GetString(KeyLogLevel); level != "" {
		config.Level = logger.Level(strings.ToLower(level))
	}
	if format := v.GetString(KeyLogFormat); format != "" {
		config.Format = logger.Format(strings.ToLower(format))
	}
	if output := v.GetString(KeyLogOutput); output != "" {
		config.Output = logger.Output(strings.ToLower(output))
	}
	config.File = v.GetString(KeyLogFile)

	if verbose {
		config.Level = logger.DebugLevel
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "log", config.Level, err)
	}
	return config, nil
}

// CreateServerConfig builds the HTTP server configuration
func CreateServerConfig(v *viper.Viper) (server.Config, error) {
	config := server.DefaultConfig()
	if v.IsSet(KeyServerPort) {
		config.Port = v.GetInt(KeyServerPort)
	}

	if config.Port <= 0 || config.Port > 65535 {
		return config, errors.ConfigurationError(errors.CodeOutOfRange, KeyServerPort, config.Port,
			fmt.Errorf("port must be between 1 and 65535"))
	}
	return config, nil
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format reporter.OutputFormat) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()
	config.Format = format

	switch format {
	case reporter.FormatConsole:
		config.IncludeMatches = true
		config.IncludeDeltas = true
		config.IncludeProcessingStats = true
	case reporter.FormatCSV:
		config.CSVHeaders = true
		config.CSVDelimiter = ','
		config.IncludeProcessingStats = false
	}

	return config
}
