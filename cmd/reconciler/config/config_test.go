package config

import (
	"os"
	"path/filepath"
	"testing"

	"bank-ledger-reconciler/internal/matcher"
	"bank-ledger-reconciler/internal/reporter"
	"bank-ledger-reconciler/pkg/errors"
	"bank-ledger-reconciler/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

func TestCreateMatchingConfig_Defaults(t *testing.T) {
	config, err := CreateMatchingConfig(viper.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.DateToleranceDays != matcher.DefaultDateToleranceDays {
		t.Errorf("expected date tolerance %d, got %d", matcher.DefaultDateToleranceDays, config.DateToleranceDays)
	}
	if !config.AmountTolerance.Equal(matcher.DefaultAmountTolerance) {
		t.Errorf("expected amount tolerance %s, got %s", matcher.DefaultAmountTolerance, config.AmountTolerance)
	}
	if config.AcceptanceThreshold != matcher.DefaultAcceptanceThreshold {
		t.Errorf("expected threshold %f, got %f", matcher.DefaultAcceptanceThreshold, config.AcceptanceThreshold)
	}
}

func TestCreateMatchingConfig(t *testing.T) {
	tests := []struct {
		name        string
		values      map[string]interface{}
		expectError bool
		check       func(t *testing.T, config *matcher.MatchingConfig)
	}{
		{
			name:   "tolerances",
			values: map[string]interface{}{KeyDateToleranceDays: 5, KeyAmountTolerance: "0.50"},
			check: func(t *testing.T, config *matcher.MatchingConfig) {
				if config.DateToleranceDays != 5 {
					t.Errorf("expected 5 days, got %d", config.DateToleranceDays)
				}
				if !config.AmountTolerance.Equal(decimal.RequireFromString("0.5")) {
					t.Errorf("expected 0.5, got %s", config.AmountTolerance)
				}
			},
		},
		{
			name:   "amount tolerance from a float",
			values: map[string]interface{}{KeyAmountTolerance: 0.25},
			check: func(t *testing.T, config *matcher.MatchingConfig) {
				if !config.AmountTolerance.Equal(decimal.RequireFromString("0.25")) {
					t.Errorf("expected 0.25, got %s", config.AmountTolerance)
				}
			},
		},
		{
			name: "weights and thresholds",
			values: map[string]interface{}{
				KeyWeightAmount:        0.5,
				KeyWeightDate:          0.25,
				KeyWeightDescription:   0.25,
				KeyAcceptanceThreshold: 0.7,
				KeyDescriptionCutoff:   0.6,
			},
			check: func(t *testing.T, config *matcher.MatchingConfig) {
				if config.Weights.Amount != 0.5 || config.Weights.Date != 0.25 || config.Weights.Description != 0.25 {
					t.Errorf("unexpected weights: %+v", config.Weights)
				}
				if config.AcceptanceThreshold != 0.7 || config.DescriptionCutoff != 0.6 {
					t.Errorf("unexpected thresholds: %f / %f", config.AcceptanceThreshold, config.DescriptionCutoff)
				}
			},
		},
		{
			name:        "malformed amount tolerance",
			values:      map[string]interface{}{KeyAmountTolerance: "one cent"},
			expectError: true,
		},
		{
			name:        "negative date tolerance",
			values:      map[string]interface{}{KeyDateToleranceDays: -1},
			expectError: true,
		},
		{
			name:        "weights above one",
			values:      map[string]interface{}{KeyWeightAmount: 0.9},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.values {
				v.Set(k, val)
			}

			config, err := CreateMatchingConfig(v)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if recErr, ok := errors.AsReconcilerError(err); !ok || recErr.Category != errors.CategoryConfiguration {
					t.Errorf("expected configuration error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, config)
		})
	}
}

func TestCreateMatchingConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reconciler.yaml")
	content := `matching:
  date_tolerance_days: 7
  amount_tolerance: 1.5
log:
  level: warn
server:
  port: 9090
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("failed to read config: %v", err)
	}

	config, err := CreateMatchingConfig(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.DateToleranceDays != 7 || !config.AmountTolerance.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("unexpected config: %s", config)
	}

	logConfig, err := CreateLoggerConfig(v, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logConfig.Level != logger.WarnLevel {
		t.Errorf("expected warn level, got %s", logConfig.Level)
	}

	serverConfig, err := CreateServerConfig(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if serverConfig.Port != 9090 {
		t.Errorf("expected port 9090, got %d", serverConfig.Port)
	}
}

func TestConfigureEnv(t *testing.T) {
	t.Setenv("RECONCILER_MATCHING_DATE_TOLERANCE_DAYS", "9")

	v := viper.New()
	ConfigureEnv(v)

	config, err := CreateMatchingConfig(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.DateToleranceDays != 9 {
		t.Errorf("expected 9 days from environment, got %d", config.DateToleranceDays)
	}
}

func TestCreateLoggerConfig(t *testing.T) {
	tests := []struct {
		name        string
		values      map[string]interface{}
		verbose     bool
		expected    logger.Level
		expectError bool
	}{
		{name: "defaults", expected: logger.InfoLevel},
		{name: "explicit level", values: map[string]interface{}{KeyLogLevel: "ERROR"}, expected: logger.ErrorLevel},
		{name: "verbose wins", values: map[string]interface{}{KeyLogLevel: "error"}, verbose: true, expected: logger.DebugLevel},
		{name: "invalid level", values: map[string]interface{}{KeyLogLevel: "loud"}, expectError: true},
		{name: "file output without path", values: map[string]interface{}{KeyLogOutput: "file"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.values {
				v.Set(k, val)
			}

			config, err := CreateLoggerConfig(v, tt.verbose)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if config.Level != tt.expected {
				t.Errorf("expected level %s, got %s", tt.expected, config.Level)
			}
		})
	}
}

func TestCreateServerConfig(t *testing.T) {
	v := viper.New()
	config, err := CreateServerConfig(v)
	if err != nil || config.Port != 8080 {
		t.Errorf("expected default port 8080, got %d (%v)", config.Port, err)
	}

	v.Set(KeyServerPort, 70000)
	if _, err := CreateServerConfig(v); err == nil {
		t.Error("expected error for out of range port")
	}
}

func TestCreateReportConfig(t *testing.T) {
	tests := []struct {
		format reporter.OutputFormat
	}{
		{reporter.FormatConsole},
		{reporter.FormatJSON},
		{reporter.FormatYAML},
		{reporter.FormatCSV},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			config := CreateReportConfig(tt.format)

			if config.Format != tt.format {
				t.Errorf("expected format %s, got %s", tt.format, config.Format)
			}
			if err := config.Validate(); err != nil {
				t.Errorf("report config should be valid: %v", err)
			}
		})
	}

	if CreateReportConfig(reporter.FormatCSV).IncludeProcessingStats {
		t.Error("CSV output should not include processing stats")
	}
}
