package matcher

import (
	"sort"

	"bank-ledger-reconciler/internal/models"

	"github.com/shopspring/decimal"
)

// LedgerIndex provides amount range lookups over a list of ledger entries
type LedgerIndex struct {
	// AmountRangeIndex holds every entry sorted by amount, then by original position
	AmountRangeIndex []AmountIndexEntry
}

// AmountIndexEntry represents an entry in the sorted amount index
type AmountIndexEntry struct {
	Amount   decimal.Decimal
	Position int
}

// NewLedgerIndex creates a new index from a slice of ledger entries
func NewLedgerIndex(entries []models.LedgerEntry) *LedgerIndex {
	index := &LedgerIndex{
		AmountRangeIndex: make([]AmountIndexEntry, len(entries)),
	}

	for i, entry := range entries {
		index.AmountRangeIndex[i] = AmountIndexEntry{Amount: entry.Amount, Position: i}
	}

	sort.SliceStable(index.AmountRangeIndex, func(i, j int) bool {
		return index.AmountRangeIndex[i].Amount.LessThan(index.AmountRangeIndex[j].Amount)
	})

	return index
}

// Len returns the number of indexed entries
func (li *LedgerIndex) Len() int {
	return len(li.AmountRangeIndex)
}

// Candidates returns the positions of entries whose amount lies within
// tolerance of amount, skipping positions marked in claimed. Positions are
// returned in ascending order, the order a full scan would visit them.
func (li *LedgerIndex) Candidates(amount, tolerance decimal.Decimal, claimed []bool) []int {
	if tolerance.IsNegative() {
		return nil
	}

	minAmount := amount.Sub(tolerance)
	maxAmount := amount.Add(tolerance)

	start := sort.Search(len(li.AmountRangeIndex), func(i int) bool {
		return li.AmountRangeIndex[i].Amount.GreaterThanOrEqual(minAmount)
	})

	var positions []int
	for i := start; i < len(li.AmountRangeIndex); i++ {
		entry := li.AmountRangeIndex[i]
		if entry.Amount.GreaterThan(maxAmount) {
			break
		}
		if entry.Position < len(claimed) && claimed[entry.Position] {
			continue
		}
		positions = append(positions, entry.Position)
	}

	sort.Ints(positions)
	return positions
}
