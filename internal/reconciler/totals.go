package reconciler

import (
	"bank-ledger-reconciler/internal/models"

	"github.com/shopspring/decimal"
)

// ComputeTotals aggregates a record set under the sign convention: positive
// amounts are debits, negative amounts are credits. Zero amounts count toward
// neither side.
func ComputeTotals[T models.Amounted](records []T) models.Totals {
	debit := decimal.Zero
	credit := decimal.Zero

	for _, r := range records {
		amount := r.GetAmount()
		switch amount.Sign() {
		case 1:
			debit = debit.Add(amount)
		case -1:
			credit = credit.Add(amount.Abs())
		}
	}

	return models.Totals{
		TotalDebit:  debit,
		TotalCredit: credit,
		Balance:     debit.Sub(credit),
	}
}
