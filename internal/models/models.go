package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Sign convention used across the whole service: a positive amount is a
// debit (inflow), a negative amount is a credit (outflow).

// Criterion names a scoring criterion that contributed to a match.
type Criterion string

const (
	CriterionAmount      Criterion = "amount"
	CriterionDate        Criterion = "date"
	CriterionDescription Criterion = "description"
)

// String returns the string representation of Criterion
func (c Criterion) String() string {
	return string(c)
}

// DeltaType classifies an unresolved discrepancy
type DeltaType string

const (
	DeltaUnmatchedBank   DeltaType = "unmatched_bank"
	DeltaUnmatchedLedger DeltaType = "unmatched_ledger"
)

// IsValid checks if the delta type is known
func (t DeltaType) IsValid() bool {
	return t == DeltaUnmatchedBank || t == DeltaUnmatchedLedger
}

// Severity of a delta
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Status is the verdict of a reconciliation report
type Status string

const (
	StatusPassed         Status = "PASSED"
	StatusReviewRequired Status = "REVIEW_REQUIRED"
)

// Delta sources as they appear in Delta.Context["source"]
const (
	SourceBank   = "BANK"
	SourceLedger = "LEDGER"
)

// Amounted is implemented by every record that carries a signed amount.
type Amounted interface {
	GetAmount() decimal.Decimal
}

// BankTransaction is a single line item reported by a bank statement or feed.
// Date is kept in its raw representation; it is normalized only when scored.
type BankTransaction struct {
	ID          string          `json:"id" yaml:"id" csv:"id"`
	Date        string          `json:"date" yaml:"date" csv:"date"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount" csv:"amount"`
	Description string          `json:"description" yaml:"description" csv:"description"`
}

// GetAmount returns the signed amount of the bank transaction
func (t BankTransaction) GetAmount() decimal.Decimal {
	return t.Amount
}

// String returns a string representation of the BankTransaction
func (t BankTransaction) String() string {
	return fmt.Sprintf("BankTransaction{ID: %s, Amount: %s, Date: %s}", t.ID, t.Amount.String(), t.Date)
}

// LedgerEntry is a single line item recorded in the general ledger.
type LedgerEntry struct {
	ID          string          `json:"id" yaml:"id" csv:"id"`
	BookingDate string          `json:"bookingDate" yaml:"bookingDate" csv:"bookingDate"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount" csv:"amount"`
	Description string          `json:"description" yaml:"description" csv:"description"`
}

// GetAmount returns the signed amount of the ledger entry
func (e LedgerEntry) GetAmount() decimal.Decimal {
	return e.Amount
}

// String returns a string representation of the LedgerEntry
func (e LedgerEntry) String() string {
	return fmt.Sprintf("LedgerEntry{ID: %s, Amount: %s, BookingDate: %s}", e.ID, e.Amount.String(), e.BookingDate)
}

// MatchResult is one accepted pairing of a bank transaction and a ledger entry.
type MatchResult struct {
	BankTxID      string          `json:"bankTxId" yaml:"bankTxId"`
	LedgerEntryID string          `json:"ledgerEntryId" yaml:"ledgerEntryId"`
	Confidence    float64         `json:"confidence" yaml:"confidence"`
	MatchedOn     []Criterion     `json:"matchedOn" yaml:"matchedOn"`
	Tolerance     decimal.Decimal `json:"tolerance" yaml:"tolerance"`
}

// MatchedOnString joins the contributing criteria with "+"
func (m MatchResult) MatchedOnString() string {
	parts := make([]string, len(m.MatchedOn))
	for i, c := range m.MatchedOn {
		parts[i] = c.String()
	}
	return strings.Join(parts, "+")
}

// DeltaContext carries the source tag and the original record id.
type DeltaContext map[string]string

// Delta is an unresolved discrepancy: a record on either side left unmatched.
type Delta struct {
	ID          string          `json:"id" yaml:"id"`
	Type        DeltaType       `json:"type" yaml:"type"`
	Severity    Severity        `json:"severity" yaml:"severity"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
	Date        string          `json:"date" yaml:"date"`
	Description string          `json:"description" yaml:"description"`
	Context     DeltaContext    `json:"context" yaml:"context"`
}

// Totals aggregates debits and credits of a record set.
type Totals struct {
	TotalDebit  decimal.Decimal `json:"totalDebit" yaml:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit" yaml:"totalCredit"`
	Balance     decimal.Decimal `json:"balance" yaml:"balance"`
}

// Period is the reporting period a reconciliation covers. Values are echoed
// back as given by the caller.
type Period struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// ReconciliationReport is the fully derived result of one reconciliation run.
type ReconciliationReport struct {
	ClientID     string          `json:"clientId" yaml:"clientId"`
	Period       Period          `json:"period" yaml:"period"`
	Matched      []MatchResult   `json:"matched" yaml:"matched"`
	Deltas       []Delta         `json:"deltas" yaml:"deltas"`
	MatchRate    float64         `json:"matchRate" yaml:"matchRate"`
	BankTotals   Totals          `json:"bankTotals" yaml:"bankTotals"`
	LedgerTotals Totals          `json:"ledgerTotals" yaml:"ledgerTotals"`
	Variance     decimal.Decimal `json:"variance" yaml:"variance"`
	Status       Status          `json:"status" yaml:"status"`
}

// CountDeltas returns the number of deltas of the given type
func (r *ReconciliationReport) CountDeltas(t DeltaType) int {
	n := 0
	for _, d := range r.Deltas {
		if d.Type == t {
			n++
		}
	}
	return n
}

// ParseDecimalFromString parses an amount, tolerating currency symbols and
// thousand separators. A blank string is a missing amount and yields zero.
func ParseDecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}
