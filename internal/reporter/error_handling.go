package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bank-ledger-reconciler/internal/reconciler"
	"bank-ledger-reconciler/pkg/errors"
	"bank-ledger-reconciler/pkg/logger"
)

// SafeReportGenerator wraps ReportGenerator with error handling and fallbacks
type SafeReportGenerator struct {
	*ReportGenerator
	logger logger.Logger
}

// NewSafeReportGenerator creates a new safe report generator with error handling
func NewSafeReportGenerator(config *ReportConfig, log logger.Logger) (*SafeReportGenerator, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	generator, err := NewReportGenerator(config)
	if err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"report_config",
			config,
			err,
		).WithSuggestion("Check the report configuration values")
	}

	return &SafeReportGenerator{
		ReportGenerator: generator,
		logger:          log.WithComponent("reporter"),
	}, nil
}

// GenerateReportSafely generates a report, falling back to console output when
// a structured format fails
func (srg *SafeReportGenerator) GenerateReportSafely(result *reconciler.ReconciliationResult, writer io.Writer) error {
	srg.logger.WithFields(logger.Fields{
		"format": srg.config.Format,
		"output": getWriterDescription(writer),
	}).Debug("Starting report generation")

	if err := srg.validateInputs(result, writer); err != nil {
		srg.logger.WithError(err).Error("Report generation failed: input validation")
		return err
	}

	if err := srg.generateWithFallback(result, writer); err != nil {
		srg.logger.WithError(err).Error("Report generation failed")
		return err
	}

	srg.logger.Debug("Report generation completed successfully")
	return nil
}

// WriteReportFile writes the report to path. When path cannot be created the
// report goes to a sibling backup file instead.
func (srg *SafeReportGenerator) WriteReportFile(result *reconciler.ReconciliationResult, path string) (string, error) {
	if err := srg.validateInputs(result, io.Discard); err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		if !isFileError(err) {
			return "", errors.FileError(errors.CodeFileUnreadable, path, err)
		}
		return srg.writeBackup(result, path, err)
	}
	defer file.Close()

	if err := srg.generateWithFallback(result, file); err != nil {
		return "", err
	}
	return path, nil
}

// validateInputs validates the inputs for report generation
func (srg *SafeReportGenerator) validateInputs(result *reconciler.ReconciliationResult, writer io.Writer) error {
	if result == nil || result.Report == nil {
		return errors.ValidationError(
			errors.CodeMissingField,
			"result",
			nil,
			nil,
		).WithSuggestion("Provide a valid reconciliation result")
	}

	if writer == nil {
		return errors.ValidationError(
			errors.CodeMissingField,
			"writer",
			nil,
			nil,
		).WithSuggestion("Provide a valid output writer")
	}

	return nil
}

// generateWithFallback attempts to generate the report with fallback strategies
func (srg *SafeReportGenerator) generateWithFallback(result *reconciler.ReconciliationResult, writer io.Writer) error {
	err := srg.GenerateReport(result, writer)
	if err == nil {
		return nil
	}

	srg.logger.WithError(err).Warn("Primary report generation failed, attempting fallback")

	if srg.config.Format != FormatConsole && !isFileError(err) {
		return srg.generateWithFormatFallback(result, writer, err)
	}

	return srg.wrapGenerationError(err)
}

// generateWithFormatFallback regenerates the report as console output
func (srg *SafeReportGenerator) generateWithFormatFallback(result *reconciler.ReconciliationResult, writer io.Writer, originalErr error) error {
	fallbackConfig := *srg.config
	fallbackConfig.Format = FormatConsole

	srg.logger.WithField("fallback_format", FormatConsole).Info("Attempting format fallback")

	fallbackGenerator, err := NewReportGenerator(&fallbackConfig)
	if err != nil {
		return srg.wrapGenerationError(originalErr)
	}

	fmt.Fprintf(writer, "NOTE: Report generated in fallback format due to error with requested format\n")
	fmt.Fprintf(writer, "Original error: %v\n\n", originalErr)

	if err := fallbackGenerator.GenerateReport(result, writer); err != nil {
		return errors.InternalError(
			errors.CodeUnexpectedError,
			"report_fallback",
			fmt.Errorf("both primary and fallback generation failed: primary=%v, fallback=%v", originalErr, err),
		)
	}

	srg.logger.Info("Report generated successfully using format fallback")
	return nil
}

// writeBackup writes the report next to the original path
func (srg *SafeReportGenerator) writeBackup(result *reconciler.ReconciliationResult, originalPath string, originalErr error) (string, error) {
	backupPath := generateBackupPath(originalPath)

	srg.logger.WithFields(logger.Fields{
		"original_file": originalPath,
		"backup_file":   backupPath,
	}).Warn("Attempting output fallback")

	backupFile, err := os.Create(backupPath)
	if err != nil {
		return "", errors.FileError(errors.CodeFilePermission, originalPath, originalErr).
			WithContext("backup_file", backupPath)
	}
	defer backupFile.Close()

	if err := srg.generateWithFallback(result, backupFile); err != nil {
		return "", errors.InternalError(
			errors.CodeUnexpectedError,
			"report_output_fallback",
			fmt.Errorf("both primary and backup output failed: primary=%v, backup=%v", originalErr, err),
		)
	}

	srg.logger.WithField("backup_file", backupPath).Info("Report generated successfully using output fallback")
	return backupPath, nil
}

// wrapGenerationError wraps generation errors with context
func (srg *SafeReportGenerator) wrapGenerationError(err error) error {
	if reconcilerErr, ok := errors.AsReconcilerError(err); ok {
		return reconcilerErr
	}

	return errors.InternalError(
		errors.CodeUnexpectedError,
		"report_generation",
		err,
	).WithSuggestion("Check the output destination and report format settings")
}

// Utility functions

func generateBackupPath(originalPath string) string {
	dir := filepath.Dir(originalPath)
	base := filepath.Base(originalPath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	return filepath.Join(dir, fmt.Sprintf("%s_backup%s", name, ext))
}

func isFileError(err error) bool {
	return os.IsPermission(err) ||
		os.IsNotExist(err) ||
		os.IsExist(err) ||
		isSpaceError(err)
}

func isSpaceError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no space left") ||
		strings.Contains(msg, "disk full") ||
		strings.Contains(msg, "device full")
}

func getWriterDescription(writer io.Writer) string {
	switch w := writer.(type) {
	case *os.File:
		if w.Name() != "" {
			return fmt.Sprintf("file:%s", w.Name())
		}
		return "file:unnamed"
	default:
		return fmt.Sprintf("writer:%T", writer)
	}
}
