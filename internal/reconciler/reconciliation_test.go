package reconciler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bank-ledger-reconciler/internal/matcher"
	"bank-ledger-reconciler/internal/models"
	"bank-ledger-reconciler/internal/parsers"
	"bank-ledger-reconciler/pkg/errors"
)

const (
	testBankCSV = `id,date,amount,description
B001,2024-01-15,1000.00,Invoice 12345
B002,2024-01-16,-250.00,Office supplies
B003,2024-01-20,75.25,Interest
`
	testLedgerJSON = `[
  {"id": "L001", "bookingDate": "2024-01-15", "amount": 1000.00, "description": "Sales Invoice 12345"},
  {"id": "L002", "bookingDate": "2024-01-17", "amount": "-250.00", "description": "Office supplies"},
  {"id": "L003", "bookingDate": "2024-01-25", "amount": 42, "description": "Adjustment"}
]`
)

func createTestDataFiles(t *testing.T) (bankFile, ledgerFile string) {
	t.Helper()
	dir := t.TempDir()

	bankFile = filepath.Join(dir, "bank.csv")
	if err := os.WriteFile(bankFile, []byte(testBankCSV), 0644); err != nil {
		t.Fatalf("Failed to write bank file: %v", err)
	}

	ledgerFile = filepath.Join(dir, "ledger.json")
	if err := os.WriteFile(ledgerFile, []byte(testLedgerJSON), 0644); err != nil {
		t.Fatalf("Failed to write ledger file: %v", err)
	}

	return bankFile, ledgerFile
}

func TestNewReconciliationService(t *testing.T) {
	service, err := NewReconciliationService(nil)
	if err != nil {
		t.Fatalf("Expected no error with default config, got %v", err)
	}
	if service.GetConfiguration().DateToleranceDays != matcher.DefaultDateToleranceDays {
		t.Errorf("Expected default date tolerance, got %d", service.GetConfiguration().DateToleranceDays)
	}

	config := matcher.DefaultMatchingConfig()
	config.DateToleranceDays = -1

	_, err = NewReconciliationService(config)
	if err == nil {
		t.Fatal("Expected error for invalid config")
	}
	recErr, ok := errors.AsReconcilerError(err)
	if !ok || recErr.Category != errors.CategoryConfiguration {
		t.Errorf("Expected configuration error, got %v", err)
	}
}

func TestReconciliationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request ReconciliationRequest
		wantErr bool
	}{
		{"complete", ReconciliationRequest{BankFile: "bank.csv", LedgerFile: "ledger.csv"}, false},
		{"missing bank file", ReconciliationRequest{LedgerFile: "ledger.csv"}, true},
		{"blank ledger file", ReconciliationRequest{BankFile: "bank.csv", LedgerFile: "  "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				recErr, ok := errors.AsReconcilerError(err)
				if !ok || recErr.Code != errors.CodeMissingField {
					t.Errorf("Expected missing field error, got %v", err)
				}
			}
		})
	}
}

func TestProcessReconciliation(t *testing.T) {
	bankFile, ledgerFile := createTestDataFiles(t)

	service, err := NewReconciliationService(nil)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	result, err := service.ProcessReconciliation(context.Background(), &ReconciliationRequest{
		BankFile:    bankFile,
		LedgerFile:  ledgerFile,
		ClientID:    "acme",
		PeriodStart: "2024-01-01",
		PeriodEnd:   "2024-01-31",
	})
	if err != nil {
		t.Fatalf("ProcessReconciliation failed: %v", err)
	}

	report := result.Report
	if report.ClientID != "acme" || report.Period.End != "2024-01-31" {
		t.Errorf("Unexpected report header: %s %+v", report.ClientID, report.Period)
	}
	if len(report.Matched) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(report.Matched))
	}
	if report.Matched[0].BankTxID != "B001" || report.Matched[0].LedgerEntryID != "L001" {
		t.Errorf("Unexpected first match: %+v", report.Matched[0])
	}
	if report.Matched[1].BankTxID != "B002" || report.Matched[1].LedgerEntryID != "L002" {
		t.Errorf("Unexpected second match: %+v", report.Matched[1])
	}

	if len(report.Deltas) != 2 {
		t.Fatalf("Expected 2 deltas, got %d", len(report.Deltas))
	}
	if report.Deltas[0].ID != "bank-B003" || report.Deltas[1].ID != "ledger-L003" {
		t.Errorf("Unexpected deltas: %s, %s", report.Deltas[0].ID, report.Deltas[1].ID)
	}
	if report.Status != models.StatusReviewRequired {
		t.Errorf("Expected REVIEW_REQUIRED, got %s", report.Status)
	}

	if result.BankStats == nil || result.BankStats.Format != parsers.FormatCSV || result.BankStats.RecordsParsed != 3 {
		t.Errorf("Unexpected bank stats: %+v", result.BankStats)
	}
	if result.LedgerStats == nil || result.LedgerStats.Format != parsers.FormatJSON || result.LedgerStats.RecordsParsed != 3 {
		t.Errorf("Unexpected ledger stats: %+v", result.LedgerStats)
	}
	if result.ProcessedAt.IsZero() {
		t.Error("Expected ProcessedAt to be set")
	}
}

func TestProcessReconciliation_FileNotFound(t *testing.T) {
	_, ledgerFile := createTestDataFiles(t)

	service, _ := NewReconciliationService(nil)
	_, err := service.ProcessReconciliation(context.Background(), &ReconciliationRequest{
		BankFile:   filepath.Join(t.TempDir(), "missing.csv"),
		LedgerFile: ledgerFile,
	})
	if err == nil {
		t.Fatal("Expected error for missing bank file")
	}

	recErr, ok := errors.AsReconcilerError(err)
	if !ok {
		t.Fatalf("Expected ReconcilerError in chain, got %T", err)
	}
	if recErr.Code != errors.CodeFileNotFound {
		t.Errorf("Expected %s, got %s", errors.CodeFileNotFound, recErr.Code)
	}
	if recErr.GetExitCode() != 2 {
		t.Errorf("Expected exit code 2, got %d", recErr.GetExitCode())
	}
}

func TestProcessReconciliation_InvalidRequest(t *testing.T) {
	service, _ := NewReconciliationService(nil)

	_, err := service.ProcessReconciliation(context.Background(), &ReconciliationRequest{BankFile: "bank.csv"})
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if recErr, ok := errors.AsReconcilerError(err); !ok || recErr.Category != errors.CategoryValidation {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestProcessReconciliation_Cancelled(t *testing.T) {
	bankFile, ledgerFile := createTestDataFiles(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	service, _ := NewReconciliationService(nil)
	_, err := service.ProcessReconciliation(ctx, &ReconciliationRequest{BankFile: bankFile, LedgerFile: ledgerFile})
	if err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}
