package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"bank-ledger-reconciler/pkg/errors"
	"bank-ledger-reconciler/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler turns command errors into messages and exit codes
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
	out     io.Writer
}

// NewCLIErrorHandler creates a handler writing to stderr
func NewCLIErrorHandler() *CLIErrorHandler {
	return NewCLIErrorHandlerWithWriter(os.Stderr)
}

// NewCLIErrorHandlerWithWriter creates a handler writing to w
func NewCLIErrorHandlerWithWriter(w io.Writer) *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
		out:     w,
	}
}

// HandleError prints err and returns the process exit code
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	if stderrors.Is(err, ErrReviewRequired) {
		fmt.Fprintf(h.out, "Reconciliation completed with status REVIEW_REQUIRED\n")
		return 1
	}

	h.logger.WithError(err).Debug("Command failed")

	if reconcilerErr, ok := errors.AsReconcilerError(err); ok {
		return h.handleReconcilerError(reconcilerErr)
	}

	return h.handleGenericError(err)
}

func (h *CLIErrorHandler) handleReconcilerError(err *errors.ReconcilerError) int {
	fmt.Fprintf(h.out, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		keys := make([]string, 0, len(err.Context))
		for key := range err.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(h.out, "\nContext:\n")
		for _, key := range keys {
			fmt.Fprintf(h.out, "  %s: %v\n", key, err.Context[key])
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(h.out, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(h.out, "\n%s\n", h.getCategoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(h.out, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

func (h *CLIErrorHandler) handleGenericError(err error) int {
	var pathErr *os.PathError
	if stderrors.As(err, &pathErr) && (os.IsNotExist(pathErr.Err) || os.IsPermission(pathErr.Err)) {
		fmt.Fprint(h.out, FormatFileError(pathErr.Path, pathErr.Err))
		return 2
	}

	if h.isFileNotFoundError(err) {
		fmt.Fprintf(h.out, "Error: File not found\n")
		fmt.Fprintf(h.out, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(h.out, "Error: Permission denied\n")
		fmt.Fprintf(h.out, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	if h.isDiskFullError(err) {
		fmt.Fprintf(h.out, "Error: Insufficient disk space\n")
		fmt.Fprintf(h.out, "Suggestion: Free up disk space and try again\n")
		return 2
	}

	fmt.Fprintf(h.out, "Error: %v\n", err)
	if !h.verbose {
		fmt.Fprintf(h.out, "Run with --verbose for more detail\n")
	}

	return 1
}

func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check that the file exists and is readable
• Use an absolute path if the working directory is unclear
• Input files must end in .csv or .json`

	case errors.CategoryParse:
		return `Parse error help:
• CSV files need a header row naming the id, date, amount and description columns
• JSON files must hold an array of objects
• Amounts are plain decimals without currency symbols
• Dates use YYYY-MM-DD or an ISO-8601 timestamp`

	case errors.CategoryValidation:
		return `Validation error help:
• Check that every record has an id and a date
• Check that values are within acceptable ranges`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and the file given with --config
• Tolerances must not be negative and weights must sum to at most 1
• Use 'reconciler reconcile --help' to see all available options`

	default:
		return `For more help:
• Use 'reconciler --help' for general help
• Use 'reconciler reconcile --help' for command-specific help`
	}
}

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) ||
		strings.Contains(err.Error(), "permission denied") ||
		strings.Contains(err.Error(), "access denied")
}

func (h *CLIErrorHandler) isDiskFullError(err error) bool {
	if stderrors.Is(err, syscall.ENOSPC) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no space left") ||
		strings.Contains(errStr, "disk full") ||
		strings.Contains(errStr, "device full")
}

// FormatFileError formats a file error, listing similarly named files when the path is missing
func FormatFileError(filePath string, err error) string {
	baseName := filepath.Base(filePath)
	dir := filepath.Dir(filePath)

	var message strings.Builder
	message.WriteString(fmt.Sprintf("Error with file '%s':\n", baseName))
	message.WriteString(fmt.Sprintf("  Path: %s\n", filePath))
	message.WriteString(fmt.Sprintf("  Error: %v\n", err))

	if os.IsNotExist(err) {
		message.WriteString("  Suggestion: Check if the file exists in the specified location\n")

		prefix := strings.ToLower(baseName[:min(len(baseName), 3)])
		if entries, dirErr := os.ReadDir(dir); dirErr == nil {
			var similar []string
			for _, entry := range entries {
				if !entry.IsDir() && strings.Contains(strings.ToLower(entry.Name()), prefix) {
					similar = append(similar, entry.Name())
				}
			}
			if len(similar) > 0 {
				message.WriteString("  Similar files found:\n")
				for _, name := range similar[:min(len(similar), 3)] {
					message.WriteString(fmt.Sprintf("    - %s\n", name))
				}
			}
		}
	} else if os.IsPermission(err) {
		message.WriteString("  Suggestion: Check file permissions - you may need read access\n")
	}

	return message.String()
}
