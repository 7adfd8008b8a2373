// Package parsers loads bank transactions and ledger entries from CSV and JSON files.
//
// CSV files must have a header row. Columns are located by name using a set of
// accepted aliases per field (see BankColumns and LedgerColumns), so exports
// from different systems can be read without configuration. Missing columns and
// blank cells are not errors: a missing amount reads as zero and missing text
// reads as an empty string. Dates are kept as raw strings; they are only
// normalized when matching.
//
// JSON files must contain a single array of objects using the field names of
// models.BankTransaction or models.LedgerEntry. Amounts may be numbers or strings.
//
// Example usage:
//
//	bank, stats, err := parsers.LoadBankTransactions(ctx, "bank.csv")
//	ledger, _, err := parsers.LoadLedgerEntries(ctx, "ledger.json")
package parsers

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"bank-ledger-reconciler/pkg/errors"
	"bank-ledger-reconciler/pkg/logger"
)

// ParseConfig holds configuration for CSV parsing
type ParseConfig struct {
	Delimiter        rune
	Comment          rune
	TrimLeadingSpace bool
	SkipEmptyRows    bool
	ValidateEncoding bool
}

// DefaultParseConfig returns a configuration with sensible defaults
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		Delimiter:        ',',
		Comment:          0,
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
		ValidateEncoding: true,
	}
}

// BaseParser provides common CSV parsing functionality
type BaseParser struct {
	config *ParseConfig
	logger logger.Logger
}

// NewBaseParser creates a new BaseParser with the given configuration
func NewBaseParser(config *ParseConfig) *BaseParser {
	if config == nil {
		config = DefaultParseConfig()
	}

	return &BaseParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("parser"),
	}
}

// ParseContext holds state during a single file parse
type ParseContext struct {
	FilePath   string
	LineNumber int
	Headers    []string
	// Columns maps a canonical field name to its column index
	Columns map[string]int
	ctx     context.Context
}

// NewParseContext creates a new parsing context
func NewParseContext(ctx context.Context, filePath string) *ParseContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ParseContext{
		FilePath: filePath,
		Columns:  make(map[string]int),
		ctx:      ctx,
	}
}

// IsCancelled checks if the parsing context has been cancelled
func (pc *ParseContext) IsCancelled() bool {
	select {
	case <-pc.ctx.Done():
		return true
	default:
		return false
	}
}

// OpenFile opens a file and maps OS errors onto file errors
func (bp *BaseParser) OpenFile(filePath string) (*os.File, error) {
	bp.logger.WithField("file_path", filePath).Debug("Opening input file")

	file, err := os.Open(filePath)
	if err != nil {
		bp.logger.WithError(err).WithField("file_path", filePath).Error("Failed to open input file")

		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, filePath, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, filePath, err)
		}
		return nil, errors.FileError(errors.CodeFileUnreadable, filePath, err)
	}

	if info, err := file.Stat(); err == nil && info.IsDir() {
		file.Close()
		return nil, errors.FileError(errors.CodeFileUnreadable, filePath, fmt.Errorf("%s is a directory", filePath))
	}

	return file, nil
}

// OpenCSV opens a CSV file and returns a configured csv.Reader
func (bp *BaseParser) OpenCSV(filePath string) (*os.File, *csv.Reader, error) {
	file, err := bp.OpenFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	if bp.config.ValidateEncoding {
		if err := bp.validateEncoding(file, filePath); err != nil {
			file.Close()
			return nil, nil, err
		}

		if _, err := file.Seek(0, io.SeekStart); err != nil {
			file.Close()
			return nil, nil, errors.FileError(errors.CodeFileUnreadable, filePath, err)
		}
	}

	reader := csv.NewReader(file)
	reader.Comma = bp.config.Delimiter
	reader.Comment = bp.config.Comment
	reader.TrimLeadingSpace = bp.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1

	return file, reader, nil
}

// validateEncoding checks that the file contains valid UTF-8 text
func (bp *BaseParser) validateEncoding(file *os.File, filePath string) error {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if !utf8.Valid(scanner.Bytes()) {
			return errors.ParseError(errors.CodeEncodingError, filePath, lineNum, "", "", nil)
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.FileError(errors.CodeFileUnreadable, filePath, err)
	}

	return nil
}

// ReadHeaders reads the header row and resolves each canonical field through
// its aliases. At least one known column must be present.
func (bp *BaseParser) ReadHeaders(reader *csv.Reader, parseCtx *ParseContext, columns ColumnAliases) error {
	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return errors.ParseError(errors.CodeMissingColumn, parseCtx.FilePath, 1, "headers", "", nil).
				WithSuggestion("the file is empty; add a header row")
		}
		return errors.ParseError(errors.CodeInvalidFormat, parseCtx.FilePath, 1, "headers", "", err)
	}

	parseCtx.LineNumber++
	parseCtx.Headers = make([]string, len(headers))
	for i, h := range headers {
		parseCtx.Headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	parseCtx.Columns = columns.Resolve(parseCtx.Headers)

	if len(parseCtx.Columns) == 0 {
		return errors.ParseError(
			errors.CodeMissingColumn,
			parseCtx.FilePath,
			parseCtx.LineNumber,
			strings.Join(columns.Fields(), ", "),
			strings.Join(parseCtx.Headers, ","),
			nil,
		)
	}

	bp.logger.WithFields(logger.Fields{
		"file_path": parseCtx.FilePath,
		"headers":   parseCtx.Headers,
		"resolved":  parseCtx.Columns,
	}).Debug("Resolved CSV headers")

	return nil
}

// ReadRecord reads the next non-empty CSV record
func (bp *BaseParser) ReadRecord(reader *csv.Reader, parseCtx *ParseContext) ([]string, error) {
	for {
		if parseCtx.IsCancelled() {
			return nil, parseCtx.ctx.Err()
		}

		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil, err
			}
			line := parseCtx.LineNumber + 1
			if pe, ok := err.(*csv.ParseError); ok {
				line = pe.Line
			}
			return nil, errors.ParseError(errors.CodeInvalidFormat, parseCtx.FilePath, line, "", "", err)
		}

		parseCtx.LineNumber, _ = reader.FieldPos(0)

		if bp.config.SkipEmptyRows && isEmptyRecord(record) {
			continue
		}

		return record, nil
	}
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// FieldValue returns the trimmed value of a canonical field, or "" when the
// column is absent or the row is short.
func (bp *BaseParser) FieldValue(record []string, parseCtx *ParseContext, field string) string {
	index, ok := parseCtx.Columns[field]
	if !ok || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

// ParseStats holds statistics about a parsing operation
type ParseStats struct {
	FilePath      string
	Format        Format
	TotalLines    int
	RecordsParsed int
}

// String returns a human-readable summary of parsing statistics
func (ps *ParseStats) String() string {
	return fmt.Sprintf("Parsed %s (%s): %d lines, %d records", ps.FilePath, ps.Format, ps.TotalLines, ps.RecordsParsed)
}
