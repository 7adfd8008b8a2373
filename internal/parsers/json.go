package parsers

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"bank-ledger-reconciler/internal/models"
	"bank-ledger-reconciler/pkg/errors"

	"github.com/shopspring/decimal"
)

// jsonRecord is the union of bank and ledger fields. Amount is kept raw so
// that numbers, numeric strings, blanks and null all decode.
type jsonRecord struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	BookingDate string          `json:"bookingDate"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
}

func (r jsonRecord) amount() (decimal.Decimal, error) {
	raw := bytes.TrimSpace(r.Amount)
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, nil
	}
	if raw[0] == '"' {
		s, err := strconv.Unquote(string(raw))
		if err != nil {
			return decimal.Zero, err
		}
		return models.ParseDecimalFromString(s)
	}
	return decimal.NewFromString(string(raw))
}

// bookingDate falls back to date, the alias the CSV ledger header accepts
func (r jsonRecord) bookingDate() string {
	if r.BookingDate != "" {
		return r.BookingDate
	}
	return r.Date
}

// JSONParser reads records from a JSON array file
type JSONParser struct {
	*BaseParser
}

// NewJSONParser creates a new JSONParser
func NewJSONParser() *JSONParser {
	return &JSONParser{BaseParser: NewBaseParser(nil)}
}

func (p *JSONParser) decode(ctx context.Context, filePath string) ([]jsonRecord, *ParseStats, error) {
	file, err := p.OpenFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	stats := &ParseStats{FilePath: filePath, Format: FormatJSON}

	var records []jsonRecord
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		return nil, stats, errors.ParseError(errors.CodeInvalidFormat, filePath, 0, "", "", err).
			WithSuggestion("the file must contain a JSON array of objects")
	}

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	stats.RecordsParsed = len(records)
	stats.TotalLines = len(records)
	return records, stats, nil
}

// ParseBankTransactions reads bank transactions from a JSON array
func (p *JSONParser) ParseBankTransactions(ctx context.Context, filePath string) ([]models.BankTransaction, *ParseStats, error) {
	records, stats, err := p.decode(ctx, filePath)
	if err != nil {
		return nil, stats, err
	}

	transactions := make([]models.BankTransaction, 0, len(records))
	for i, r := range records {
		amount, err := r.amount()
		if err != nil {
			return nil, stats, errors.ParseError(errors.CodeInvalidData, filePath, i+1, FieldAmount, string(r.Amount), err)
		}
		transactions = append(transactions, models.BankTransaction{
			ID:          r.ID,
			Date:        r.Date,
			Amount:      amount,
			Description: r.Description,
		})
	}

	return transactions, stats, nil
}

// ParseLedgerEntries reads ledger entries from a JSON array
func (p *JSONParser) ParseLedgerEntries(ctx context.Context, filePath string) ([]models.LedgerEntry, *ParseStats, error) {
	records, stats, err := p.decode(ctx, filePath)
	if err != nil {
		return nil, stats, err
	}

	entries := make([]models.LedgerEntry, 0, len(records))
	for i, r := range records {
		amount, err := r.amount()
		if err != nil {
			return nil, stats, errors.ParseError(errors.CodeInvalidData, filePath, i+1, FieldAmount, string(r.Amount), err)
		}
		entries = append(entries, models.LedgerEntry{
			ID:          r.ID,
			BookingDate: r.bookingDate(),
			Amount:      amount,
			Description: r.Description,
		})
	}

	return entries, stats, nil
}
