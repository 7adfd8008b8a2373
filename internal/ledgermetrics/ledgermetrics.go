// Package ledgermetrics derives cash-flow figures from ledger descriptions.
//
// The figures feed report drafting when the caller did not supply them. Matching
// is a case-insensitive substring test on the description, combined with the
// sign of the amount.
package ledgermetrics

import (
	"strings"

	"bank-ledger-reconciler/internal/models"

	"github.com/shopspring/decimal"
)

// Metric keys shared with report drafting
const (
	KeyInflow      = "inflow"
	KeyOutflow     = "outflow"
	KeyFeesCharged = "feesCharged"
)

const (
	subscriptionKeyword = "subscription"
	redemptionKeyword   = "redemption"
	feeKeyword          = "fee"
)

// Metrics is an open mapping of metric name to value
type Metrics map[string]interface{}

// CashFlow holds the figures extracted from ledger entries. All values are
// non-negative.
type CashFlow struct {
	Inflow      decimal.Decimal `json:"inflow" yaml:"inflow"`
	Outflow     decimal.Decimal `json:"outflow" yaml:"outflow"`
	FeesCharged decimal.Decimal `json:"feesCharged" yaml:"feesCharged"`
}

// Extract sums subscriptions received, redemptions paid and fees charged.
// An entry may count toward more than one figure, e.g. a negative
// "redemption fee" is both an outflow and a fee.
func Extract(entries []models.LedgerEntry) CashFlow {
	flow := CashFlow{Inflow: decimal.Zero, Outflow: decimal.Zero, FeesCharged: decimal.Zero}

	for _, e := range entries {
		description := strings.ToLower(e.Description)

		switch e.Amount.Sign() {
		case 1:
			if strings.Contains(description, subscriptionKeyword) {
				flow.Inflow = flow.Inflow.Add(e.Amount)
			}
		case -1:
			if strings.Contains(description, redemptionKeyword) {
				flow.Outflow = flow.Outflow.Add(e.Amount.Abs())
			}
			if strings.Contains(description, feeKeyword) {
				flow.FeesCharged = flow.FeesCharged.Add(e.Amount.Abs())
			}
		}
	}

	return flow
}

// ToMetrics converts the figures into metric entries
func (c CashFlow) ToMetrics() Metrics {
	return Metrics{
		KeyInflow:      c.Inflow,
		KeyOutflow:     c.Outflow,
		KeyFeesCharged: c.FeesCharged,
	}
}

// Backfill returns metrics with the extracted figures merged in when the
// inflow metric is absent or zero. Extracted figures then replace any outflow
// and fee values already present. The input map is never modified.
func Backfill(metrics Metrics, entries []models.LedgerEntry) Metrics {
	merged := make(Metrics, len(metrics)+3)
	for k, v := range metrics {
		merged[k] = v
	}

	if len(entries) == 0 || !isZero(metrics[KeyInflow]) {
		return merged
	}

	for k, v := range Extract(entries).ToMetrics() {
		merged[k] = v
	}
	return merged
}

// isZero reports whether a metric value is missing or numerically zero
func isZero(v interface{}) bool {
	switch value := v.(type) {
	case nil:
		return true
	case decimal.Decimal:
		return value.IsZero()
	case float64:
		return value == 0
	case float32:
		return value == 0
	case int:
		return value == 0
	case int64:
		return value == 0
	case string:
		return value == ""
	case bool:
		return !value
	default:
		return false
	}
}
