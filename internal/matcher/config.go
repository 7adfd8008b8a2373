// Package matcher provides the bank-to-ledger matching engine and its configuration.
//
// Matching is a two step process:
//  1. Every (bank transaction, ledger entry) pair that passes the amount gate is
//     scored by a weighted sum of amount, date proximity and description similarity.
//  2. Bank transactions are consumed in input order. Each one claims its best
//     scoring unclaimed ledger entry when the score clears the acceptance threshold.
//
// The assignment is greedy and order dependent. An earlier bank transaction can
// take a ledger entry that would have suited a later one better; that conflict is
// never revisited, so identical inputs always produce identical output.
//
// Example usage:
//
//	config := matcher.DefaultMatchingConfig()
//	config.DateToleranceDays = 5
//
//	engine := matcher.NewMatchingEngine(config)
//	assignment := engine.Assign(bankTransactions, ledgerEntries)
package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Default business policy values.
const (
	DefaultDateToleranceDays   = 3
	DefaultAcceptanceThreshold = 0.6
	DefaultDescriptionCutoff   = 0.5

	DefaultAmountWeight      = 0.4
	DefaultDateWeight        = 0.3
	DefaultDescriptionWeight = 0.3
)

// DefaultAmountTolerance is the absolute amount tolerance (one cent).
var DefaultAmountTolerance = decimal.New(1, -2)

// MatchingConfig holds the business policy applied when scoring and accepting matches.
type MatchingConfig struct {
	// DateToleranceDays is the widest date gap, in whole days, that still earns a date score
	DateToleranceDays int `json:"date_tolerance_days" yaml:"date_tolerance_days"`

	// AmountTolerance is the largest absolute amount difference that passes the amount gate
	AmountTolerance decimal.Decimal `json:"amount_tolerance" yaml:"amount_tolerance"`

	// AcceptanceThreshold must be strictly exceeded by the best score for a match to be recorded
	AcceptanceThreshold float64 `json:"acceptance_threshold" yaml:"acceptance_threshold"`

	// DescriptionCutoff must be strictly exceeded by the similarity ratio before descriptions count
	DescriptionCutoff float64 `json:"description_cutoff" yaml:"description_cutoff"`

	Weights MatchingWeights `json:"weights" yaml:"weights"`
}

// MatchingWeights defines the contribution of each criterion to the confidence score
type MatchingWeights struct {
	Amount      float64 `json:"amount" yaml:"amount"`
	Date        float64 `json:"date" yaml:"date"`
	Description float64 `json:"description" yaml:"description"`
}

// DefaultMatchingConfig returns the standard reconciliation policy
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		DateToleranceDays:   DefaultDateToleranceDays,
		AmountTolerance:     DefaultAmountTolerance,
		AcceptanceThreshold: DefaultAcceptanceThreshold,
		DescriptionCutoff:   DefaultDescriptionCutoff,
		Weights: MatchingWeights{
			Amount:      DefaultAmountWeight,
			Date:        DefaultDateWeight,
			Description: DefaultDescriptionWeight,
		},
	}
}

// NewMatchingConfig returns the default policy with the given tolerances
func NewMatchingConfig(toleranceDays int, toleranceAmount decimal.Decimal) *MatchingConfig {
	config := DefaultMatchingConfig()
	config.DateToleranceDays = toleranceDays
	config.AmountTolerance = toleranceAmount
	return config
}

// Validate checks if the matching configuration is valid
func (mc *MatchingConfig) Validate() error {
	if mc.DateToleranceDays < 0 {
		return fmt.Errorf("date tolerance days cannot be negative: %d", mc.DateToleranceDays)
	}

	if mc.AmountTolerance.IsNegative() {
		return fmt.Errorf("amount tolerance cannot be negative: %s", mc.AmountTolerance)
	}

	if mc.AcceptanceThreshold < 0.0 || mc.AcceptanceThreshold > 1.0 {
		return fmt.Errorf("acceptance threshold must be between 0.0 and 1.0: %f", mc.AcceptanceThreshold)
	}

	if mc.DescriptionCutoff < 0.0 || mc.DescriptionCutoff > 1.0 {
		return fmt.Errorf("description cutoff must be between 0.0 and 1.0: %f", mc.DescriptionCutoff)
	}

	if err := mc.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}

	return nil
}

// Validate checks if the matching weights are valid
func (mw *MatchingWeights) Validate() error {
	if mw.Amount < 0.0 || mw.Amount > 1.0 {
		return fmt.Errorf("amount weight must be between 0.0 and 1.0: %f", mw.Amount)
	}

	if mw.Date < 0.0 || mw.Date > 1.0 {
		return fmt.Errorf("date weight must be between 0.0 and 1.0: %f", mw.Date)
	}

	if mw.Description < 0.0 || mw.Description > 1.0 {
		return fmt.Errorf("description weight must be between 0.0 and 1.0: %f", mw.Description)
	}

	if total := mw.Amount + mw.Date + mw.Description; total > 1.0+1e-9 {
		return fmt.Errorf("weights cannot sum to more than 1.0, got %f", total)
	}

	return nil
}

// Accepts reports whether a best score is high enough to record a match
func (mc *MatchingConfig) Accepts(score float64) bool {
	return score > mc.AcceptanceThreshold
}

// Clone creates a deep copy of the matching configuration
func (mc *MatchingConfig) Clone() *MatchingConfig {
	if mc == nil {
		return nil
	}

	clone := *mc
	return &clone
}

// String returns a human-readable description of the configuration
func (mc *MatchingConfig) String() string {
	return fmt.Sprintf("MatchingConfig{DateTolerance: %d days, AmountTolerance: %s, Threshold: %.2f, DescriptionCutoff: %.2f, Weights: %.2f/%.2f/%.2f}",
		mc.DateToleranceDays, mc.AmountTolerance, mc.AcceptanceThreshold, mc.DescriptionCutoff,
		mc.Weights.Amount, mc.Weights.Date, mc.Weights.Description)
}
