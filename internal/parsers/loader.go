package parsers

import (
	"context"

	"bank-ledger-reconciler/internal/models"
	"bank-ledger-reconciler/pkg/errors"
)

// LoadBankTransactions loads bank transactions from a .csv or .json file
func LoadBankTransactions(ctx context.Context, filePath string) ([]models.BankTransaction, *ParseStats, error) {
	switch DetectFormat(filePath) {
	case FormatCSV:
		return NewBankTransactionParser(nil).ParseBankTransactions(ctx, filePath)
	case FormatJSON:
		return NewJSONParser().ParseBankTransactions(ctx, filePath)
	default:
		return nil, nil, errors.FileError(errors.CodeUnsupportedInput, filePath, nil)
	}
}

// LoadLedgerEntries loads ledger entries from a .csv or .json file
func LoadLedgerEntries(ctx context.Context, filePath string) ([]models.LedgerEntry, *ParseStats, error) {
	switch DetectFormat(filePath) {
	case FormatCSV:
		return NewLedgerEntryParser(nil).ParseLedgerEntries(ctx, filePath)
	case FormatJSON:
		return NewJSONParser().ParseLedgerEntries(ctx, filePath)
	default:
		return nil, nil, errors.FileError(errors.CodeUnsupportedInput, filePath, nil)
	}
}
