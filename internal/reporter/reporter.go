// Package reporter renders reconciliation reports.
//
// Supported output formats:
//   - Console: human-readable tables for terminal display
//   - JSON: the full report for programmatic consumption
//   - YAML: the same document as JSON, for configuration-style tooling
//   - CSV: one row per match and one row per delta, for spreadsheets
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(&reporter.ReportConfig{Format: reporter.FormatJSON})
//	err = generator.GenerateReport(result, os.Stdout)
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"bank-ledger-reconciler/internal/models"
	"bank-ledger-reconciler/internal/parsers"
	"bank-ledger-reconciler/internal/reconciler"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatYAML, FormatCSV:
		return true
	default:
		return false
	}
}

// ParseOutputFormat converts a user supplied name into an OutputFormat
func ParseOutputFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		f = FormatYAML
	}
	if !f.IsValid() {
		return "", fmt.Errorf("unsupported output format %q (use console, json, yaml or csv)", s)
	}
	return f, nil
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Console and CSV detail options. JSON and YAML always carry the full report.
	IncludeMatches         bool `json:"include_matches"`
	IncludeDeltas          bool `json:"include_deltas"`
	IncludeProcessingStats bool `json:"include_processing_stats"`

	// MaxItems caps the rows of each console section; 0 means unlimited
	MaxItems int `json:"max_items"`
	// MaxDescriptionWidth truncates descriptions in console tables
	MaxDescriptionWidth int `json:"max_description_width"`

	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`

	SortDeltasByAmount bool `json:"sort_deltas_by_amount"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:                 FormatConsole,
		IncludeMatches:         true,
		IncludeDeltas:          true,
		IncludeProcessingStats: true,
		MaxItems:               50,
		MaxDescriptionWidth:    40,
		CSVDelimiter:           ',',
		CSVHeaders:             true,
		SortDeltasByAmount:     false,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.MaxItems < 0 {
		return fmt.Errorf("max items cannot be negative, got %d", c.MaxItems)
	}

	if c.MaxDescriptionWidth != 0 && c.MaxDescriptionWidth < 10 {
		return fmt.Errorf("description width must be at least 10 characters, got %d", c.MaxDescriptionWidth)
	}

	if c.Format == FormatCSV && (c.CSVDelimiter == 0 || c.CSVDelimiter == '"' || c.CSVDelimiter == '\n') {
		return fmt.Errorf("invalid CSV delimiter %q", c.CSVDelimiter)
	}

	return nil
}

// ReportGenerator generates reconciliation reports in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateReport writes the reconciliation result to the provided writer
func (rg *ReportGenerator) GenerateReport(result *reconciler.ReconciliationResult, writer io.Writer) error {
	if result == nil || result.Report == nil {
		return fmt.Errorf("reconciliation result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	case FormatYAML:
		return rg.generateYAMLReport(result, writer)
	case FormatCSV:
		return rg.generateCSVReport(result.Report, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// processingInfo describes how a report was produced
type processingInfo struct {
	ProcessedAt time.Time `json:"processedAt" yaml:"processedAt"`
	Duration    string    `json:"duration" yaml:"duration"`
	BankFile    string    `json:"bankFile,omitempty" yaml:"bankFile,omitempty"`
	BankRecords int       `json:"bankRecords" yaml:"bankRecords"`
	LedgerFile  string    `json:"ledgerFile,omitempty" yaml:"ledgerFile,omitempty"`
	LedgerRecs  int       `json:"ledgerRecords" yaml:"ledgerRecords"`
}

// reportDocument is the JSON and YAML output shape
type reportDocument struct {
	Report     *models.ReconciliationReport `json:"report" yaml:"report"`
	Processing *processingInfo              `json:"processing,omitempty" yaml:"processing,omitempty"`
}

func (rg *ReportGenerator) document(result *reconciler.ReconciliationResult) reportDocument {
	doc := reportDocument{Report: result.Report}
	if !rg.config.IncludeProcessingStats {
		return doc
	}

	info := &processingInfo{
		ProcessedAt: result.ProcessedAt.UTC(),
		Duration:    result.Duration.String(),
	}
	if result.BankStats != nil {
		info.BankFile = result.BankStats.FilePath
		info.BankRecords = result.BankStats.RecordsParsed
	}
	if result.LedgerStats != nil {
		info.LedgerFile = result.LedgerStats.FilePath
		info.LedgerRecs = result.LedgerStats.RecordsParsed
	}
	doc.Processing = info
	return doc
}

// generateJSONReport generates a structured JSON report
func (rg *ReportGenerator) generateJSONReport(result *reconciler.ReconciliationResult, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(rg.document(result))
}

// generateYAMLReport generates the same document as JSON in YAML
func (rg *ReportGenerator) generateYAMLReport(result *reconciler.ReconciliationResult, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)

	if err := encoder.Encode(rg.document(result)); err != nil {
		return fmt.Errorf("failed to encode YAML report: %w", err)
	}
	return encoder.Close()
}

var csvHeaders = []string{
	"Record_Type",
	"Bank_Tx_ID",
	"Ledger_Entry_ID",
	"Confidence",
	"Matched_On",
	"Delta_ID",
	"Delta_Type",
	"Severity",
	"Amount",
	"Date",
	"Description",
}

// generateCSVReport writes one row per match and one row per delta
func (rg *ReportGenerator) generateCSVReport(report *models.ReconciliationReport, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		if err := csvWriter.Write(csvHeaders); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	if rg.config.IncludeMatches {
		for _, match := range report.Matched {
			record := []string{
				"match",
				match.BankTxID,
				match.LedgerEntryID,
				fmt.Sprintf("%.4f", match.Confidence),
				match.MatchedOnString(),
				"", "", "", "", "", "",
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write match record: %w", err)
			}
		}
	}

	if rg.config.IncludeDeltas {
		for _, delta := range rg.orderedDeltas(report.Deltas) {
			record := []string{
				"delta",
				delta.Context["txId"],
				delta.Context["entryId"],
				"",
				"",
				delta.ID,
				string(delta.Type),
				string(delta.Severity),
				delta.Amount.String(),
				delta.Date,
				delta.Description,
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write delta record: %w", err)
			}
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// generateConsoleReport generates a human-readable console report
func (rg *ReportGenerator) generateConsoleReport(result *reconciler.ReconciliationResult, writer io.Writer) error {
	report := result.Report

	fmt.Fprintf(writer, "RECONCILIATION REPORT\n")
	if report.ClientID != "" {
		fmt.Fprintf(writer, "Client: %s\n", report.ClientID)
	}
	if report.Period.Start != "" || report.Period.End != "" {
		fmt.Fprintf(writer, "Period: %s to %s\n", report.Period.Start, report.Period.End)
	}
	if !result.ProcessedAt.IsZero() {
		fmt.Fprintf(writer, "Generated: %s\n", result.ProcessedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	rg.printSummary(report, writer)
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== TOTALS ===\n")
	if err := rg.printTotals(report, writer); err != nil {
		return err
	}
	fmt.Fprintf(writer, "\n")

	if rg.config.IncludeMatches && len(report.Matched) > 0 {
		fmt.Fprintf(writer, "=== MATCHES ===\n")
		if err := rg.printMatches(report.Matched, writer); err != nil {
			return err
		}
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeDeltas && len(report.Deltas) > 0 {
		fmt.Fprintf(writer, "=== DELTAS ===\n")
		if err := rg.printDeltas(report.Deltas, writer); err != nil {
			return err
		}
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeProcessingStats && (result.BankStats != nil || result.LedgerStats != nil) {
		fmt.Fprintf(writer, "=== PROCESSING STATISTICS ===\n")
		rg.printProcessingStats(result, writer)
	}

	return nil
}

// Helper methods for console output formatting

func (rg *ReportGenerator) printSummary(report *models.ReconciliationReport, writer io.Writer) {
	unmatchedBank := report.CountDeltas(models.DeltaUnmatchedBank)
	bankTotal := len(report.Matched) + unmatchedBank

	fmt.Fprintf(writer, "Status:            %s\n", report.Status)
	fmt.Fprintf(writer, "Match Rate:        %.1f%%\n", report.MatchRate*100)
	fmt.Fprintf(writer, "Matched:           %d of %d bank transactions\n", len(report.Matched), bankTotal)
	fmt.Fprintf(writer, "Unmatched Bank:    %d (%.1f%%)\n", unmatchedBank, calculatePercentage(unmatchedBank, bankTotal))
	fmt.Fprintf(writer, "Unmatched Ledger:  %d\n", report.CountDeltas(models.DeltaUnmatchedLedger))
}

func (rg *ReportGenerator) printTotals(report *models.ReconciliationReport, writer io.Writer) error {
	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Source\tDebit\tCredit\tBalance\t\n")
	printTotalsRow(tw, "Bank", report.BankTotals)
	printTotalsRow(tw, "Ledger", report.LedgerTotals)
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write totals: %w", err)
	}

	fmt.Fprintf(writer, "Variance: %s\n", report.Variance.StringFixed(2))
	return nil
}

func printTotalsRow(w io.Writer, source string, totals models.Totals) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
		source,
		totals.TotalDebit.StringFixed(2),
		totals.TotalCredit.StringFixed(2),
		totals.Balance.StringFixed(2))
}

func (rg *ReportGenerator) printMatches(matches []models.MatchResult, writer io.Writer) error {
	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Bank Tx\tLedger Entry\tConfidence\tMatched On\n")

	for i, match := range matches {
		if rg.limitReached(i, len(matches), tw) {
			break
		}
		fmt.Fprintf(tw, "  %s\t%s\t%.2f\t%s\n",
			match.BankTxID,
			match.LedgerEntryID,
			match.Confidence,
			match.MatchedOnString())
	}

	return tw.Flush()
}

func (rg *ReportGenerator) printDeltas(deltas []models.Delta, writer io.Writer) error {
	fmt.Fprintf(writer, "Total Deltas: %d\n\n", len(deltas))

	groups := make(map[models.Severity][]models.Delta)
	for _, d := range rg.orderedDeltas(deltas) {
		groups[d.Severity] = append(groups[d.Severity], d)
	}

	for _, severity := range []models.Severity{models.SeverityWarning, models.SeverityInfo} {
		group := groups[severity]
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(writer, "%s (%d):\n", strings.ToUpper(string(severity)), len(group))
		tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
		for i, d := range group {
			if rg.limitReached(i, len(group), tw) {
				break
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				d.ID,
				d.Type,
				d.Amount.StringFixed(2),
				d.Date,
				rg.truncate(d.Description))
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("failed to write deltas: %w", err)
		}
		fmt.Fprintf(writer, "\n")
	}

	return nil
}

func (rg *ReportGenerator) printProcessingStats(result *reconciler.ReconciliationResult, writer io.Writer) {
	for _, stats := range []*parsers.ParseStats{result.BankStats, result.LedgerStats} {
		if stats != nil {
			fmt.Fprintf(writer, "%s\n", stats)
		}
	}
	fmt.Fprintf(writer, "Total Processing: %v\n", result.Duration)
}

// limitReached writes the overflow line once MaxItems rows were printed
func (rg *ReportGenerator) limitReached(i, total int, w io.Writer) bool {
	if rg.config.MaxItems == 0 || i < rg.config.MaxItems {
		return false
	}
	fmt.Fprintf(w, "  ... and %d more\n", total-i)
	return true
}

func (rg *ReportGenerator) truncate(s string) string {
	limit := rg.config.MaxDescriptionWidth
	runes := []rune(s)
	if limit == 0 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// orderedDeltas returns the deltas in report order, or by descending absolute
// amount when SortDeltasByAmount is set. The input is never reordered.
func (rg *ReportGenerator) orderedDeltas(deltas []models.Delta) []models.Delta {
	if !rg.config.SortDeltasByAmount {
		return deltas
	}

	sorted := make([]models.Delta, len(deltas))
	copy(sorted, deltas)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.Abs().GreaterThan(sorted[j].Amount.Abs())
	})
	return sorted
}

func calculatePercentage(part, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(part) / float64(total) * 100.0
}
