// Package scenarios builds bank and ledger datasets with a known answer.
//
// Each Scenario carries the pairs a correct reconciliation must produce under
// the default matching configuration, so it can drive accuracy tests,
// benchmarks and sample files for the CLI.
package scenarios

import (
	"fmt"
	"math/rand"
	"time"

	"bank-ledger-reconciler/internal/models"

	"github.com/shopspring/decimal"
)

// Scenario names
const (
	NameExact      = "exact"
	NameDateDrift  = "date-drift"
	NameDuplicates = "duplicates"
	NameMixed      = "mixed"
	NamePerf       = "performance"
)

const dateLayout = "2006-01-02"

// Scenario is a generated dataset and the matches expected from it
type Scenario struct {
	Name        string
	Description string
	Bank        []models.BankTransaction
	Ledger      []models.LedgerEntry

	// ExpectedMatches maps bank transaction id to ledger entry id
	ExpectedMatches map[string]string
}

// Generator creates scenarios from a seed. The same seed gives the same data.
type Generator struct {
	rng  *rand.Rand
	base time.Time
}

var counterparties = []string{
	"Invoice", "Card settlement", "Payroll", "Rent", "Wire transfer",
	"Supplier payment", "Subscription", "Utility bill",
}

// NewGenerator creates a generator; dates start at 2024-01-01
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:  rand.New(rand.NewSource(seed)),
		base: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Names lists the scenarios returned by All, in order
func Names() []string {
	return []string{NameExact, NameDateDrift, NameDuplicates, NameMixed}
}

// All returns every fixed-size scenario
func (g *Generator) All() []Scenario {
	return []Scenario{g.Exact(20), g.DateDrift(8), g.Duplicates(), g.Mixed(10)}
}

// ByName returns the named scenario; size applies to the sized ones
func (g *Generator) ByName(name string, size int) (Scenario, error) {
	switch name {
	case NameExact:
		return g.Exact(size), nil
	case NameDateDrift:
		return g.DateDrift(size), nil
	case NameDuplicates:
		return g.Duplicates(), nil
	case NameMixed:
		return g.Mixed(size), nil
	case NamePerf:
		return g.Performance(size), nil
	default:
		return Scenario{}, fmt.Errorf("unknown scenario: %s", name)
	}
}

// amount returns a distinct amount for position i. Amounts for different
// positions are at least 1.00 apart, so they never meet within a sane tolerance.
func (g *Generator) amount(i int) decimal.Decimal {
	cents := int64(i+1)*10000 + int64(g.rng.Intn(9900))
	if g.rng.Intn(3) == 0 {
		cents = -cents
	}
	return decimal.New(cents, -2)
}

func (g *Generator) day(offset int) string {
	return g.base.AddDate(0, 0, offset).Format(dateLayout)
}

func (g *Generator) counterparty() string {
	return counterparties[g.rng.Intn(len(counterparties))]
}

// Exact pairs every bank transaction with a ledger entry of the same amount,
// date and description. The ledger is shuffled.
func (g *Generator) Exact(n int) Scenario {
	s := newScenario(NameExact, "identical pairs, ledger in random order", n)

	for i := 0; i < n; i++ {
		amount := g.amount(i)
		date := g.day(i % 28)
		description := fmt.Sprintf("%s REF-%05d", g.counterparty(), i+1)

		bankID := fmt.Sprintf("EX-B%04d", i+1)
		ledgerID := fmt.Sprintf("EX-L%04d", i+1)
		s.Bank = append(s.Bank, models.BankTransaction{ID: bankID, Date: date, Amount: amount, Description: description})
		s.Ledger = append(s.Ledger, models.LedgerEntry{ID: ledgerID, BookingDate: date, Amount: amount, Description: description})
		s.ExpectedMatches[bankID] = ledgerID
	}

	g.rng.Shuffle(len(s.Ledger), func(i, j int) {
		s.Ledger[i], s.Ledger[j] = s.Ledger[j], s.Ledger[i]
	})
	return s
}

// DateDrift books each ledger entry 0 to 3 days after its bank transaction,
// with no descriptions. Only drifts of at most one day score above the
// default acceptance threshold.
func (g *Generator) DateDrift(n int) Scenario {
	s := newScenario(NameDateDrift, "undescribed pairs booked 0-3 days late", n)

	for i := 0; i < n; i++ {
		drift := i % 4
		amount := g.amount(i)

		bankID := fmt.Sprintf("DD-B%04d", i+1)
		ledgerID := fmt.Sprintf("DD-L%04d", i+1)
		s.Bank = append(s.Bank, models.BankTransaction{ID: bankID, Date: g.day(i), Amount: amount})
		s.Ledger = append(s.Ledger, models.LedgerEntry{ID: ledgerID, BookingDate: g.day(i + drift), Amount: amount})
		if drift <= 1 {
			s.ExpectedMatches[bankID] = ledgerID
		}
	}
	return s
}

// Duplicates has three identical bank transactions against two identical
// ledger entries. Ties go to the earlier ledger entry, the third bank
// transaction stays unmatched.
func (g *Generator) Duplicates() Scenario {
	s := newScenario(NameDuplicates, "identical duplicates on both sides", 3)

	amount := decimal.RequireFromString("100.00")
	date := g.day(14)
	for i := 1; i <= 3; i++ {
		s.Bank = append(s.Bank, models.BankTransaction{
			ID: fmt.Sprintf("DUP-B%d", i), Date: date, Amount: amount, Description: "Card settlement",
		})
	}
	for i := 1; i <= 2; i++ {
		s.Ledger = append(s.Ledger, models.LedgerEntry{
			ID: fmt.Sprintf("DUP-L%d", i), BookingDate: date, Amount: amount, Description: "Card settlement",
		})
	}
	s.ExpectedMatches["DUP-B1"] = "DUP-L1"
	s.ExpectedMatches["DUP-B2"] = "DUP-L2"
	return s
}

// Mixed combines n exact pairs with records exercising the amount tolerance
// edge and one-sided records.
func (g *Generator) Mixed(n int) Scenario {
	s := g.Exact(n)
	s.Name = NameMixed
	s.Description = "exact pairs plus tolerance edges and one-sided records"

	date := g.day(9)
	// Exactly one cent apart: inside the default tolerance
	s.Bank = append(s.Bank, models.BankTransaction{ID: "MX-B-CENT", Date: date, Amount: decimal.RequireFromString("12.50"), Description: "Bank interest"})
	s.Ledger = append(s.Ledger, models.LedgerEntry{ID: "MX-L-CENT", BookingDate: date, Amount: decimal.RequireFromString("12.51"), Description: "Bank interest"})
	s.ExpectedMatches["MX-B-CENT"] = "MX-L-CENT"

	// Two cents apart: never a candidate
	s.Bank = append(s.Bank, models.BankTransaction{ID: "MX-B-TWO", Date: date, Amount: decimal.RequireFromString("31.00"), Description: "Parking"})
	s.Ledger = append(s.Ledger, models.LedgerEntry{ID: "MX-L-TWO", BookingDate: date, Amount: decimal.RequireFromString("31.02"), Description: "Parking"})

	s.Bank = append(s.Bank, models.BankTransaction{ID: "MX-B-ONLY", Date: date, Amount: decimal.RequireFromString("-7.77"), Description: "Bank charges"})
	s.Ledger = append(s.Ledger, models.LedgerEntry{ID: "MX-L-ONLY", BookingDate: date, Amount: decimal.RequireFromString("42.00"), Description: "Accrual adjustment"})
	return s
}

// Performance is an exact scenario sized for benchmarks
func (g *Generator) Performance(n int) Scenario {
	s := g.Exact(n)
	s.Name = NamePerf
	s.Description = fmt.Sprintf("%d shuffled identical pairs", n)
	return s
}

func newScenario(name, description string, size int) Scenario {
	return Scenario{
		Name:            name,
		Description:     description,
		Bank:            make([]models.BankTransaction, 0, size),
		Ledger:          make([]models.LedgerEntry, 0, size),
		ExpectedMatches: make(map[string]string, size),
	}
}
