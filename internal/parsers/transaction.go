package parsers

import (
	"context"
	"io"

	"bank-ledger-reconciler/internal/models"
	"bank-ledger-reconciler/pkg/errors"
)

// LedgerEntryParser parses general ledger CSV exports
type LedgerEntryParser struct {
	*BaseParser
	columns ColumnAliases
}

// NewLedgerEntryParser creates a parser using LedgerColumns
func NewLedgerEntryParser(config *ParseConfig) *LedgerEntryParser {
	return &LedgerEntryParser{
		BaseParser: NewBaseParser(config),
		columns:    LedgerColumns,
	}
}

// ParseLedgerEntries parses a CSV file containing ledger entries
func (p *LedgerEntryParser) ParseLedgerEntries(ctx context.Context, filePath string) ([]models.LedgerEntry, *ParseStats, error) {
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

	var entries []models.LedgerEntry
	for {
		record, err := p.ReadRecord(reader, parseCtx)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, stats, err
		}

		amountStr := p.FieldValue(record, parseCtx, FieldAmount)
		amount, err := models.ParseDecimalFromString(amountStr)
		if err != nil {
			return nil, stats, errors.ParseError(
				errors.CodeInvalidData, filePath, parseCtx.LineNumber, FieldAmount, amountStr, err)
		}

		entries = append(entries, models.LedgerEntry{
			ID:          p.FieldValue(record, parseCtx, FieldID),
			BookingDate: p.FieldValue(record, parseCtx, FieldBookingDate),
			Amount:      amount,
			Description: p.FieldValue(record, parseCtx, FieldDescription),
		})
		stats.RecordsParsed++
	}

	stats.TotalLines = parseCtx.LineNumber
	p.logger.WithField("stats", stats.String()).Debug("Parsed ledger entries")

	return entries, stats, nil
}
