package matcher

import (
	"math/rand"
	"reflect"
	"testing"

	"bank-ledger-reconciler/internal/models"

	"github.com/shopspring/decimal"
)

func createTestLedgerEntries() []models.LedgerEntry {
	return []models.LedgerEntry{
		{ID: "L000", Amount: decimal.RequireFromString("100.50")},
		{ID: "L001", Amount: decimal.RequireFromString("-250.00")},
		{ID: "L002", Amount: decimal.RequireFromString("100.51")},
		{ID: "L003", Amount: decimal.RequireFromString("75.25")},
		{ID: "L004", Amount: decimal.RequireFromString("100.50")},
		{ID: "L005", Amount: decimal.RequireFromString("100.52")},
	}
}

func TestNewLedgerIndex(t *testing.T) {
	index := NewLedgerIndex(createTestLedgerEntries())

	if index.Len() != 6 {
		t.Fatalf("expected 6 indexed entries, got %d", index.Len())
	}

	for i := 1; i < index.Len(); i++ {
		prev, cur := index.AmountRangeIndex[i-1], index.AmountRangeIndex[i]
		if cur.Amount.LessThan(prev.Amount) {
			t.Errorf("index not sorted by amount at %d: %s before %s", i, prev.Amount, cur.Amount)
		}
		if cur.Amount.Equal(prev.Amount) && cur.Position < prev.Position {
			t.Errorf("equal amounts not kept in original order at %d", i)
		}
	}
}

func TestLedgerIndex_Candidates(t *testing.T) {
	index := NewLedgerIndex(createTestLedgerEntries())
	cent := decimal.RequireFromString("0.01")

	tests := []struct {
		name      string
		amount    string
		tolerance decimal.Decimal
		claimed   []bool
		expected  []int
	}{
		{
			name:      "exact amount only",
			amount:    "100.50",
			tolerance: decimal.Zero,
			expected:  []int{0, 4},
		},
		{
			name:      "tolerance boundary is inclusive",
			amount:    "100.50",
			tolerance: cent,
			expected:  []int{0, 2, 4},
		},
		{
			name:      "claimed entries skipped",
			amount:    "100.51",
			tolerance: cent,
			claimed:   []bool{true, false, false, false, false, false},
			expected:  []int{2, 4, 5},
		},
		{
			name:      "negative amounts",
			amount:    "-250",
			tolerance: cent,
			expected:  []int{1},
		},
		{
			name:      "no candidates",
			amount:    "999",
			tolerance: cent,
			expected:  nil,
		},
		{
			name:      "negative tolerance matches nothing",
			amount:    "100.50",
			tolerance: decimal.RequireFromString("-0.01"),
			expected:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := index.Candidates(decimal.RequireFromString(tt.amount), tt.tolerance, tt.claimed)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected candidates %v, got %v", tt.expected, got)
			}
		})
	}
}

// The index must return exactly what a linear scan with the amount gate returns.
func TestLedgerIndex_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	amounts := []string{"10.00", "10.01", "10.02", "-10.00", "0", "99.99", "100.00", "100.01"}

	entries := make([]models.LedgerEntry, 200)
	claimed := make([]bool, len(entries))
	for i := range entries {
		entries[i] = models.LedgerEntry{Amount: decimal.RequireFromString(amounts[rng.Intn(len(amounts))])}
		claimed[i] = rng.Intn(4) == 0
	}
	index := NewLedgerIndex(entries)

	tolerances := []decimal.Decimal{decimal.Zero, decimal.RequireFromString("0.01"), decimal.RequireFromString("0.015")}
	for _, a := range amounts {
		amount := decimal.RequireFromString(a)
		for _, tol := range tolerances {
			var expected []int
			for j, entry := range entries {
				if claimed[j] {
					continue
				}
				if amount.Sub(entry.Amount).Abs().LessThanOrEqual(tol) {
					expected = append(expected, j)
				}
			}

			got := index.Candidates(amount, tol, claimed)
			if !reflect.DeepEqual(got, expected) {
				t.Errorf("amount %s tolerance %s: index returned %v, scan returned %v", a, tol, got, expected)
			}
		}
	}
}
