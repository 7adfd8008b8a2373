package parsers

import (
	"path/filepath"
	"sort"
	"strings"
)

// Canonical field names
const (
	FieldID          = "id"
	FieldDate        = "date"
	FieldBookingDate = "bookingDate"
	FieldAmount      = "amount"
	FieldDescription = "description"
)

// ColumnAliases maps a canonical field name to the header names accepted for it,
// in order of preference
type ColumnAliases map[string][]string

var (
	// BankColumns are the headers recognised in bank transaction files
	BankColumns = ColumnAliases{
		FieldID:          {"id", "transaction_id", "reference"},
		FieldDate:        {"date", "transaction_date", "value_date"},
		FieldAmount:      {"amount", "amt", "value"},
		FieldDescription: {"description", "memo", "narrative", "text"},
	}

	// LedgerColumns are the headers recognised in ledger entry files
	LedgerColumns = ColumnAliases{
		FieldID:          {"id", "entry_id", "transaction_id", "reference"},
		FieldBookingDate: {"bookingDate", "booking_date", "posting_date", "date"},
		FieldAmount:      {"amount", "amt", "value"},
		FieldDescription: {"description", "memo", "narrative", "text"},
	}
)

// Fields returns the canonical field names, sorted
func (ca ColumnAliases) Fields() []string {
	fields := make([]string, 0, len(ca))
	for field := range ca {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Resolve maps each canonical field to the index of the first header that
// matches one of its aliases, case-insensitively. Fields with no matching
// header are left out.
func (ca ColumnAliases) Resolve(headers []string) map[string]int {
	positions := make(map[string]int, len(headers))
	for i, header := range headers {
		key := strings.ToLower(header)
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	resolved := make(map[string]int, len(ca))
	for field, aliases := range ca {
		for _, alias := range aliases {
			if index, ok := positions[strings.ToLower(alias)]; ok {
				resolved[field] = index
				break
			}
		}
	}
	return resolved
}

// Format identifies an input file format
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatUnknown Format = "unknown"
)

// DetectFormat infers the input format from a file extension
func DetectFormat(filePath string) Format {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv", ".txt":
		return FormatCSV
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}
