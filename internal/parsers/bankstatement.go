package parsers

import (
	"context"
	"io"

	"bank-ledger-reconciler/internal/models"
	"bank-ledger-reconciler/pkg/errors"
)

// BankTransactionParser parses bank transaction CSV files
type BankTransactionParser struct {
	*BaseParser
	columns ColumnAliases
}

// NewBankTransactionParser creates a parser using BankColumns
func NewBankTransactionParser(config *ParseConfig) *BankTransactionParser {
	return &BankTransactionParser{
		BaseParser: NewBaseParser(config),
		columns:    BankColumns,
	}
}

// ParseBankTransactions parses a CSV file containing bank transactions
func (p *BankTransactionParser) ParseBankTransactions(ctx context.Context, filePath string) ([]models.BankTransaction, *ParseStats, error) {
	file, reader, err := p.OpenCSV(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	parseCtx := NewParseContext(ctx, filePath)
	stats := &ParseStats{FilePath: filePath, Format: FormatCSV}

	if err := p.ReadHeaders(reader, parseCtx, p.columns); err != nil {
		return nil, stats, err
	}

	var transactions []models.BankTransaction
	for {
		record, err := p.ReadRecord(reader, parseCtx)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, stats, err
		}

		tx, err := p.parseRecord(record, parseCtx)
		if err != nil {
			return nil, stats, err
		}

		transactions = append(transactions, tx)
		stats.RecordsParsed++
	}

	stats.TotalLines = parseCtx.LineNumber
	p.logger.WithField("stats", stats.String()).Debug("Parsed bank transactions")

	return transactions, stats, nil
}

func (p *BankTransactionParser) parseRecord(record []string, parseCtx *ParseContext) (models.BankTransaction, error) {
	amountStr := p.FieldValue(record, parseCtx, FieldAmount)
	amount, err := models.ParseDecimalFromString(amountStr)
	if err != nil {
		return models.BankTransaction{}, errors.ParseError(
			errors.CodeInvalidData, parseCtx.FilePath, parseCtx.LineNumber, FieldAmount, amountStr, err)
	}

	return models.BankTransaction{
		ID:          p.FieldValue(record, parseCtx, FieldID),
		Date:        p.FieldValue(record, parseCtx, FieldDate),
		Amount:      amount,
		Description: p.FieldValue(record, parseCtx, FieldDescription),
	}, nil
}
