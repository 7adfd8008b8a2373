// Package reconciler assembles matching results into reconciliation reports.
//
// Everything here is synchronous and free of I/O apart from debug logging.
// Inputs are never modified, so independent calls may run concurrently.
package reconciler

import (
	"bank-ledger-reconciler/internal/matcher"
	"bank-ledger-reconciler/internal/models"
	"bank-ledger-reconciler/pkg/logger"

	"github.com/shopspring/decimal"
)

// A report passes only when the variance is strictly below passVarianceLimit
// and the match rate is strictly above passMatchRate.
const passMatchRate = 0.95

var passVarianceLimit = decimal.New(1, -2)

// Reconciler runs reconciliations under a fixed matching configuration
type Reconciler struct {
	engine *matcher.MatchingEngine
	logger logger.Logger
}

// New creates a Reconciler; a nil config uses the defaults
func New(config *matcher.MatchingConfig) *Reconciler {
	return &Reconciler{
		engine: matcher.NewMatchingEngine(config),
		logger: logger.GetGlobalLogger().WithComponent("reconciler"),
	}
}

// Config returns the matching configuration in use
func (r *Reconciler) Config() *matcher.MatchingConfig {
	return r.engine.Config
}

// Reconcile matches bank transactions against ledger entries and returns the
// accepted matches and the deltas for everything left over.
func (r *Reconciler) Reconcile(bank []models.BankTransaction, ledger []models.LedgerEntry) ([]models.MatchResult, []models.Delta) {
	assignment := r.engine.Assign(bank, ledger)
	return assignment.Matches, BuildDeltas(bank, ledger, assignment)
}

// BuildReport reconciles the inputs and derives totals, variance, match rate and status
func (r *Reconciler) BuildReport(clientID, periodStart, periodEnd string, bank []models.BankTransaction, ledger []models.LedgerEntry) *models.ReconciliationReport {
	matched, deltas := r.Reconcile(bank, ledger)

	bankTotals := ComputeTotals(bank)
	ledgerTotals := ComputeTotals(ledger)
	variance := bankTotals.Balance.Sub(ledgerTotals.Balance).Abs()
	matchRate := MatchRate(len(matched), len(bank))

	report := &models.ReconciliationReport{
		ClientID:     clientID,
		Period:       models.Period{Start: periodStart, End: periodEnd},
		Matched:      matched,
		Deltas:       deltas,
		MatchRate:    matchRate,
		BankTotals:   bankTotals,
		LedgerTotals: ledgerTotals,
		Variance:     variance,
		Status:       DeriveStatus(variance, matchRate),
	}

	r.logger.WithFields(logger.Fields{
		"client_id":  clientID,
		"matched":    len(matched),
		"deltas":     len(deltas),
		"match_rate": matchRate,
		"variance":   variance.String(),
		"status":     report.Status,
	}).Debug("Reconciliation report built")

	return report
}

// MatchRate is matched over total bank transactions, or 0 with no transactions
func MatchRate(matched, bankCount int) float64 {
	if bankCount == 0 {
		return 0
	}
	return float64(matched) / float64(bankCount)
}

// DeriveStatus applies the pass rule to a variance and match rate
func DeriveStatus(variance decimal.Decimal, matchRate float64) models.Status {
	if variance.LessThan(passVarianceLimit) && matchRate > passMatchRate {
		return models.StatusPassed
	}
	return models.StatusReviewRequired
}

// Reconcile runs the default policy with the given tolerances
func Reconcile(bank []models.BankTransaction, ledger []models.LedgerEntry, toleranceDays int, toleranceAmount decimal.Decimal) ([]models.MatchResult, []models.Delta) {
	return New(matcher.NewMatchingConfig(toleranceDays, toleranceAmount)).Reconcile(bank, ledger)
}

// BuildReport builds a report with the default policy and tolerances
func BuildReport(clientID, periodStart, periodEnd string, bank []models.BankTransaction, ledger []models.LedgerEntry) *models.ReconciliationReport {
	return New(nil).BuildReport(clientID, periodStart, periodEnd, bank, ledger)
}
