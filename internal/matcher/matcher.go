package matcher

import (
	"bank-ledger-reconciler/internal/models"
	"bank-ledger-reconciler/pkg/logger"
)

// MatchingEngine is the core engine responsible for pairing bank transactions with ledger entries
type MatchingEngine struct {
	Config *MatchingConfig
	scorer *Scorer
}

// Assignment is the outcome of one greedy matching pass
type Assignment struct {
	// Matches holds accepted pairings in bank input order
	Matches []models.MatchResult

	// UnmatchedBank holds positions of bank transactions that found no acceptable entry
	UnmatchedBank []int

	// UnclaimedLedger holds positions of ledger entries no transaction claimed
	UnclaimedLedger []int
}

// NewMatchingEngine creates a new matching engine with the specified configuration
func NewMatchingEngine(config *MatchingConfig) *MatchingEngine {
	if config == nil {
		config = DefaultMatchingConfig()
	}

	return &MatchingEngine{
		Config: config,
		scorer: NewScorer(config),
	}
}

// Assign runs the greedy assignment. Bank transactions are processed in input
// order; each one claims its highest scoring unclaimed ledger entry if that
// score is accepted by the config. Ties go to the entry with the lower
// position. Claims are never revisited.
//
// Cost is O(n*m) score evaluations in the worst case for n bank transactions
// and m ledger entries. The amount index skips pairs outside the amount
// tolerance, which is most of them on realistic data.
func (me *MatchingEngine) Assign(bank []models.BankTransaction, ledger []models.LedgerEntry) *Assignment {
	ledgerRecords := make([]record, len(ledger))
	for i, entry := range ledger {
		ledgerRecords[i] = ledgerRecord(entry)
	}

	index := NewLedgerIndex(ledger)
	claimed := make([]bool, len(ledger))
	assignment := &Assignment{
		Matches: make([]models.MatchResult, 0, len(bank)),
	}

	for i, tx := range bank {
		bankRec := bankRecord(tx)

		bestIndex := -1
		var best Score
		for _, j := range index.Candidates(tx.Amount, me.Config.AmountTolerance, claimed) {
			score, ok := me.scorer.score(bankRec, ledgerRecords[j])
			if !ok {
				continue
			}
			if score.Value > best.Value {
				best = score
				bestIndex = j
			}
		}

		if bestIndex < 0 || !me.Config.Accepts(best.Value) {
			assignment.UnmatchedBank = append(assignment.UnmatchedBank, i)
			continue
		}

		claimed[bestIndex] = true
		assignment.Matches = append(assignment.Matches, models.MatchResult{
			BankTxID:      tx.ID,
			LedgerEntryID: ledger[bestIndex].ID,
			Confidence:    best.Value,
			MatchedOn:     best.MatchedOn,
			Tolerance:     me.Config.AmountTolerance,
		})
	}

	for j := range ledger {
		if !claimed[j] {
			assignment.UnclaimedLedger = append(assignment.UnclaimedLedger, j)
		}
	}

	logger.GetGlobalLogger().WithComponent("matcher").WithFields(logger.Fields{
		"bank":             len(bank),
		"ledger":           len(ledger),
		"matched":          len(assignment.Matches),
		"unmatched_bank":   len(assignment.UnmatchedBank),
		"unclaimed_ledger": len(assignment.UnclaimedLedger),
	}).Debug("Greedy assignment complete")

	return assignment
}

// ScoreCandidates scores a single bank transaction against every ledger entry
// that passes the amount gate, in ledger order. It does not claim anything and
// is intended for explaining a match decision.
func (me *MatchingEngine) ScoreCandidates(tx models.BankTransaction, ledger []models.LedgerEntry) []Candidate {
	bankRec := bankRecord(tx)
	var candidates []Candidate
	for j, entry := range ledger {
		score, ok := me.scorer.score(bankRec, ledgerRecord(entry))
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{Position: j, LedgerEntryID: entry.ID, Score: score})
	}
	return candidates
}

// Candidate is a scored ledger entry for one bank transaction
type Candidate struct {
	Position      int
	LedgerEntryID string
	Score         Score
}
