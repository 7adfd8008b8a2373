package matcher

import (
	"time"

	"bank-ledger-reconciler/internal/models"

	"github.com/shopspring/decimal"
)

// Score is the confidence of one candidate pair and the criteria behind it
type Score struct {
	Value     float64
	MatchedOn []models.Criterion
}

// Scorer computes pairwise confidence scores under a MatchingConfig
type Scorer struct {
	config *MatchingConfig
}

// NewScorer creates a scorer; a nil config uses the defaults
func NewScorer(config *MatchingConfig) *Scorer {
	if config == nil {
		config = DefaultMatchingConfig()
	}
	return &Scorer{config: config}
}

// record is a bank transaction or ledger entry with its date already normalized
type record struct {
	amount      decimal.Decimal
	date        time.Time
	hasDate     bool
	description string
}

func bankRecord(tx models.BankTransaction) record {
	date, ok := ParseDate(tx.Date)
	return record{amount: tx.Amount, date: date, hasDate: ok, description: tx.Description}
}

func ledgerRecord(entry models.LedgerEntry) record {
	date, ok := ParseDate(entry.BookingDate)
	return record{amount: entry.Amount, date: date, hasDate: ok, description: entry.Description}
}

// Score scores a bank transaction against a ledger entry. The boolean is false
// when the amounts differ by more than the tolerance; such a pair is not a
// candidate at all.
func (s *Scorer) Score(tx models.BankTransaction, entry models.LedgerEntry) (Score, bool) {
	return s.score(bankRecord(tx), ledgerRecord(entry))
}

func (s *Scorer) score(bank, ledger record) (Score, bool) {
	if bank.amount.Sub(ledger.amount).Abs().GreaterThan(s.config.AmountTolerance) {
		return Score{}, false
	}

	weights := s.config.Weights
	result := Score{MatchedOn: make([]models.Criterion, 0, 3)}
	result.add(models.CriterionAmount, weights.Amount)

	if bank.hasDate && ledger.hasDate {
		days := DaysBetween(bank.date, ledger.date)
		if days <= s.config.DateToleranceDays {
			result.add(models.CriterionDate, weights.Date*s.dateProximity(days))
		}
	}

	if bank.description != "" && ledger.description != "" {
		ratio := SimilarityRatio(bank.description, ledger.description)
		if ratio > s.config.DescriptionCutoff {
			result.add(models.CriterionDescription, weights.Description*ratio)
		}
	}

	return result, true
}

// dateProximity is 1 for the same day, falling linearly to 0 at the tolerance.
// With a zero tolerance only a same-day pair reaches here and scores 1.
func (s *Scorer) dateProximity(days int) float64 {
	if s.config.DateToleranceDays == 0 {
		return 1.0
	}
	return 1 - float64(days)/float64(s.config.DateToleranceDays)
}

// add records a criterion only when it actually contributes to the score
func (sc *Score) add(criterion models.Criterion, contribution float64) {
	if contribution <= 0 {
		return
	}
	sc.Value += contribution
	sc.MatchedOn = append(sc.MatchedOn, criterion)
}
