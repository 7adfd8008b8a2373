package reconciler

import (
	"fmt"
	"reflect"
	"testing"

	"bank-ledger-reconciler/internal/matcher"
	"bank-ledger-reconciler/internal/models"

	"github.com/shopspring/decimal"
)

func bankTx(id, date, amount, description string) models.BankTransaction {
	return models.BankTransaction{ID: id, Date: date, Amount: decimal.RequireFromString(amount), Description: description}
}

func ledgerEntry(id, bookingDate, amount, description string) models.LedgerEntry {
	return models.LedgerEntry{ID: id, BookingDate: bookingDate, Amount: decimal.RequireFromString(amount), Description: description}
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name    string
		amounts []string
		debit   string
		credit  string
		balance string
	}{
		{name: "mixed with zero", amounts: []string{"100", "-40", "0"}, debit: "100", credit: "40", balance: "60"},
		{name: "empty", amounts: nil, debit: "0", credit: "0", balance: "0"},
		{name: "credits only", amounts: []string{"-0.10", "-0.20"}, debit: "0", credit: "0.30", balance: "-0.30"},
		{name: "exact cents", amounts: []string{"0.1", "0.2"}, debit: "0.3", credit: "0", balance: "0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]models.LedgerEntry, len(tt.amounts))
			for i, a := range tt.amounts {
				records[i] = models.LedgerEntry{Amount: decimal.RequireFromString(a)}
			}

			totals := ComputeTotals(records)

			if !totals.TotalDebit.Equal(decimal.RequireFromString(tt.debit)) {
				t.Errorf("expected debit %s, got %s", tt.debit, totals.TotalDebit)
			}
			if !totals.TotalCredit.Equal(decimal.RequireFromString(tt.credit)) {
				t.Errorf("expected credit %s, got %s", tt.credit, totals.TotalCredit)
			}
			if !totals.Balance.Equal(decimal.RequireFromString(tt.balance)) {
				t.Errorf("expected balance %s, got %s", tt.balance, totals.Balance)
			}
		})
	}
}

func TestBuildDeltas(t *testing.T) {
	bank := []models.BankTransaction{
		bankTx("b1", "2024-01-15", "10", "matched"),
		bankTx("b2", "2024-01-16", "-500.00", "Refund XYZ"),
	}
	ledger := []models.LedgerEntry{
		ledgerEntry("l1", "2024-01-15", "10", "matched"),
		ledgerEntry("l2", "2024-01-17", "-499", "Customer Refund"),
	}
	assignment := &matcher.Assignment{UnmatchedBank: []int{1}, UnclaimedLedger: []int{1}}

	deltas := BuildDeltas(bank, ledger, assignment)

	expected := []models.Delta{
		{
			ID:          "bank-b2",
			Type:        models.DeltaUnmatchedBank,
			Severity:    models.SeverityWarning,
			Amount:      bank[1].Amount,
			Date:        "2024-01-16",
			Description: "Refund XYZ",
			Context:     models.DeltaContext{"source": "BANK", "txId": "b2"},
		},
		{
			ID:          "ledger-l2",
			Type:        models.DeltaUnmatchedLedger,
			Severity:    models.SeverityInfo,
			Amount:      ledger[1].Amount,
			Date:        "2024-01-17",
			Description: "Customer Refund",
			Context:     models.DeltaContext{"source": "LEDGER", "entryId": "l2"},
		},
	}
	if !reflect.DeepEqual(deltas, expected) {
		t.Errorf("expected deltas %+v, got %+v", expected, deltas)
	}
}

func TestBuildDeltas_EmptyIDs(t *testing.T) {
	bank := []models.BankTransaction{{}}
	deltas := BuildDeltas(bank, nil, &matcher.Assignment{UnmatchedBank: []int{0}})

	if len(deltas) != 1 || deltas[0].ID != "bank-" || deltas[0].Context["txId"] != "" {
		t.Errorf("unexpected delta for empty record: %+v", deltas)
	}
}

func TestReconcile_EndToEnd(t *testing.T) {
	bank := []models.BankTransaction{bankTx("b1", "2024-01-15", "1000.00", "Invoice 12345")}
	ledger := []models.LedgerEntry{ledgerEntry("l1", "2024-01-15", "1000.00", "Sales Invoice 12345")}

	matches, deltas := Reconcile(bank, ledger, 3, decimal.RequireFromString("0.01"))

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].MatchedOnString() != "amount+date+description" {
		t.Errorf("expected all criteria, got %s", matches[0].MatchedOnString())
	}
	if matches[0].Confidence <= 0.6 {
		t.Errorf("expected confidence above 0.6, got %f", matches[0].Confidence)
	}
	if len(deltas) != 0 {
		t.Errorf("expected no deltas, got %+v", deltas)
	}
}

func TestReconcile_CustomTolerances(t *testing.T) {
	bank := []models.BankTransaction{bankTx("b1", "2024-01-10", "99.50", "")}
	ledger := []models.LedgerEntry{ledgerEntry("l1", "2024-01-12", "100.00", "")}

	if matches, _ := Reconcile(bank, ledger, 3, decimal.RequireFromString("0.01")); len(matches) != 0 {
		t.Errorf("expected no match with default tolerances, got %+v", matches)
	}

	matches, deltas := Reconcile(bank, ledger, 10, decimal.RequireFromString("1.00"))
	if len(matches) != 1 || len(deltas) != 0 {
		t.Fatalf("expected a match with wide tolerances, got %d matches / %d deltas", len(matches), len(deltas))
	}
	if !matches[0].Tolerance.Equal(decimal.RequireFromString("1.00")) {
		t.Errorf("expected tolerance 1.00 recorded, got %s", matches[0].Tolerance)
	}
}

func TestBuildReport(t *testing.T) {
	bank := []models.BankTransaction{
		bankTx("b1", "2024-01-15", "1000.00", "Invoice 12345"),
		bankTx("b2", "2024-01-16", "-500.00", "Refund XYZ"),
	}
	ledger := []models.LedgerEntry{
		ledgerEntry("l1", "2024-01-15", "1000.00", "Sales Invoice 12345"),
		ledgerEntry("l2", "2024-01-18", "-500.00", "Customer Refund"),
	}

	report := BuildReport("client-42", "2024-01-01", "2024-01-31", bank, ledger)

	if report.ClientID != "client-42" || report.Period.Start != "2024-01-01" || report.Period.End != "2024-01-31" {
		t.Errorf("unexpected header: %+v / %+v", report.ClientID, report.Period)
	}
	if len(report.Matched) != 1 {
		t.Fatalf("expected 1 match, got %d", len(report.Matched))
	}
	if report.CountDeltas(models.DeltaUnmatchedBank) != 1 || report.CountDeltas(models.DeltaUnmatchedLedger) != 1 {
		t.Errorf("expected one delta per side, got %+v", report.Deltas)
	}
	if report.MatchRate != 0.5 {
		t.Errorf("expected match rate 0.5, got %f", report.MatchRate)
	}
	if !report.BankTotals.Balance.Equal(decimal.NewFromInt(500)) || !report.LedgerTotals.Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("unexpected balances: %s / %s", report.BankTotals.Balance, report.LedgerTotals.Balance)
	}
	if !report.Variance.IsZero() {
		t.Errorf("expected zero variance, got %s", report.Variance)
	}
	if report.Status != models.StatusReviewRequired {
		t.Errorf("expected REVIEW_REQUIRED, got %s", report.Status)
	}
}

func TestBuildReport_Passed(t *testing.T) {
	report := BuildReport("c", "", "",
		[]models.BankTransaction{bankTx("b1", "2024-01-15", "1000.00", "Invoice 12345")},
		[]models.LedgerEntry{ledgerEntry("l1", "2024-01-15", "1000.00", "Sales Invoice 12345")},
	)

	if report.Status != models.StatusPassed {
		t.Errorf("expected PASSED, got %s (variance %s, rate %f)", report.Status, report.Variance, report.MatchRate)
	}
}

func TestBuildReport_EmptyInputs(t *testing.T) {
	report := BuildReport("c", "", "", nil, nil)

	if report.MatchRate != 0 {
		t.Errorf("expected zero match rate, got %f", report.MatchRate)
	}
	if report.Matched == nil || report.Deltas == nil {
		t.Error("expected empty, non-nil slices")
	}
	if report.Status != models.StatusReviewRequired {
		t.Errorf("expected REVIEW_REQUIRED with no transactions, got %s", report.Status)
	}
}

func TestBuildReport_VarianceBoundary(t *testing.T) {
	// The pair matches (difference equals the amount tolerance) but leaves a variance of exactly 0.01
	report := BuildReport("c", "", "",
		[]models.BankTransaction{bankTx("b1", "2024-01-15", "100.01", "Wire")},
		[]models.LedgerEntry{ledgerEntry("l1", "2024-01-15", "100.00", "Wire")},
	)

	if report.MatchRate != 1 {
		t.Fatalf("expected full match rate, got %f", report.MatchRate)
	}
	if !report.Variance.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("expected variance 0.01, got %s", report.Variance)
	}
	if report.Status != models.StatusReviewRequired {
		t.Errorf("expected REVIEW_REQUIRED at variance 0.01, got %s", report.Status)
	}
}

func TestBuildReport_MatchRateBoundary(t *testing.T) {
	var bank []models.BankTransaction
	var ledger []models.LedgerEntry
	for i := 1; i <= 19; i++ {
		amount := fmt.Sprintf("%d.00", i*10)
		bank = append(bank, bankTx(fmt.Sprintf("b%d", i), "2024-02-01", amount, "Batch payment"))
		ledger = append(ledger, ledgerEntry(fmt.Sprintf("l%d", i), "2024-02-01", amount, "Batch payment"))
	}
	bank = append(bank, bankTx("b20", "2024-02-01", "0", "Zero fee reversal"))

	report := BuildReport("c", "", "", bank, ledger)

	if report.MatchRate != 0.95 {
		t.Fatalf("expected match rate 0.95, got %f", report.MatchRate)
	}
	if !report.Variance.IsZero() {
		t.Fatalf("expected zero variance, got %s", report.Variance)
	}
	if report.Status != models.StatusReviewRequired {
		t.Errorf("expected REVIEW_REQUIRED at match rate 0.95, got %s", report.Status)
	}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		variance  string
		matchRate float64
		expected  models.Status
	}{
		{"0", 1.0, models.StatusPassed},
		{"0.009", 0.951, models.StatusPassed},
		{"0.01", 1.0, models.StatusReviewRequired},
		{"0", 0.95, models.StatusReviewRequired},
		{"5", 0.5, models.StatusReviewRequired},
	}

	for _, tt := range tests {
		if got := DeriveStatus(decimal.RequireFromString(tt.variance), tt.matchRate); got != tt.expected {
			t.Errorf("DeriveStatus(%s, %f) = %s, expected %s", tt.variance, tt.matchRate, got, tt.expected)
		}
	}
}

func TestDeriveStatus_Thresholds(t *testing.T) {
	if !passVarianceLimit.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("expected variance limit 0.01, got %s", passVarianceLimit)
	}
	if passMatchRate != 0.95 {
		t.Errorf("expected match rate threshold 0.95, got %f", passMatchRate)
	}

	justBelow := passVarianceLimit.Sub(decimal.New(1, -4))
	if got := DeriveStatus(justBelow, passMatchRate+0.001); got != models.StatusPassed {
		t.Errorf("expected PASSED just inside both thresholds, got %s", got)
	}
	if got := DeriveStatus(passVarianceLimit, 1.0); got != models.StatusReviewRequired {
		t.Errorf("expected REVIEW_REQUIRED at the variance limit, got %s", got)
	}
	if got := DeriveStatus(decimal.Zero, passMatchRate); got != models.StatusReviewRequired {
		t.Errorf("expected REVIEW_REQUIRED at the match rate threshold, got %s", got)
	}
}

func TestReconcile_RunInvariants(t *testing.T) {
	bank := []models.BankTransaction{
		bankTx("b1", "2024-03-01", "20", "Lunch"),
		bankTx("b2", "2024-03-01", "20", "Lunch"),
		bankTx("b3", "2024-03-02", "20.01", "Lunch"),
		bankTx("b4", "garbage", "-75", "Transfer out"),
		bankTx("b5", "", "0", ""),
	}
	ledger := []models.LedgerEntry{
		ledgerEntry("l1", "2024-03-01", "20", "Lunch"),
		ledgerEntry("l2", "2024-03-03", "20", "Lunch meeting"),
		ledgerEntry("l3", "2024-03-04", "-75", "transfer out"),
		ledgerEntry("l4", "", "13", "Unrelated"),
	}

	matches, deltas := New(nil).Reconcile(bank, ledger)

	unmatchedBank := 0
	unmatchedLedger := 0
	for _, d := range deltas {
		switch d.Type {
		case models.DeltaUnmatchedBank:
			unmatchedBank++
		case models.DeltaUnmatchedLedger:
			unmatchedLedger++
		default:
			t.Errorf("unexpected delta type %s", d.Type)
		}
	}

	if len(matches)+unmatchedBank != len(bank) {
		t.Errorf("matches (%d) + unmatched bank (%d) != %d", len(matches), unmatchedBank, len(bank))
	}
	if len(matches)+unmatchedLedger != len(ledger) {
		t.Errorf("matches (%d) + unmatched ledger (%d) != %d", len(matches), unmatchedLedger, len(ledger))
	}

	seenBank := map[string]bool{}
	seenLedger := map[string]bool{}
	for _, m := range matches {
		if seenBank[m.BankTxID] || seenLedger[m.LedgerEntryID] {
			t.Errorf("record matched twice: %+v", m)
		}
		seenBank[m.BankTxID] = true
		seenLedger[m.LedgerEntryID] = true
	}
}

func BenchmarkBuildReport(b *testing.B) {
	var bank []models.BankTransaction
	var ledger []models.LedgerEntry
	for i := 0; i < 500; i++ {
		amount := fmt.Sprintf("%d.%02d", i%50, i%100)
		bank = append(bank, bankTx(fmt.Sprintf("b%d", i), "2024-01-15", amount, fmt.Sprintf("Payment %d", i)))
		ledger = append(ledger, ledgerEntry(fmt.Sprintf("l%d", i), "2024-01-16", amount, fmt.Sprintf("Payment ref %d", i)))
	}

	reconciler := New(nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reconciler.BuildReport("bench", "", "", bank, ledger)
	}
}
