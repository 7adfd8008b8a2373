package reconciler

import (
	"bank-ledger-reconciler/internal/matcher"
	"bank-ledger-reconciler/internal/models"
)

// BuildDeltas turns every unmatched bank transaction and every unclaimed ledger
// entry of an assignment into a Delta. Bank deltas come first; each side keeps
// its input order.
func BuildDeltas(bank []models.BankTransaction, ledger []models.LedgerEntry, assignment *matcher.Assignment) []models.Delta {
	deltas := make([]models.Delta, 0, len(assignment.UnmatchedBank)+len(assignment.UnclaimedLedger))

	for _, i := range assignment.UnmatchedBank {
		deltas = append(deltas, bankDelta(bank[i]))
	}
	for _, j := range assignment.UnclaimedLedger {
		deltas = append(deltas, ledgerDelta(ledger[j]))
	}

	return deltas
}

func bankDelta(tx models.BankTransaction) models.Delta {
	return models.Delta{
		ID:          "bank-" + tx.ID,
		Type:        models.DeltaUnmatchedBank,
		Severity:    models.SeverityWarning,
		Amount:      tx.Amount,
		Date:        tx.Date,
		Description: tx.Description,
		Context:     models.DeltaContext{"source": models.SourceBank, "txId": tx.ID},
	}
}

func ledgerDelta(entry models.LedgerEntry) models.Delta {
	return models.Delta{
		ID:          "ledger-" + entry.ID,
		Type:        models.DeltaUnmatchedLedger,
		Severity:    models.SeverityInfo,
		Amount:      entry.Amount,
		Date:        entry.BookingDate,
		Description: entry.Description,
		Context:     models.DeltaContext{"source": models.SourceLedger, "entryId": entry.ID},
	}
}
