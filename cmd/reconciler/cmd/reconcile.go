package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bank-ledger-reconciler/cmd/reconciler/config"
	"bank-ledger-reconciler/internal/models"
	"bank-ledger-reconciler/internal/reconciler"
	"bank-ledger-reconciler/internal/reporter"
	"bank-ledger-reconciler/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrReviewRequired is returned with --fail-on-review when the report needs review
var ErrReviewRequired = stderrors.New("reconciliation requires review")

// Flags for the reconcile command
var (
	bankFile     string
	ledgerFile   string
	clientID     string
	periodStart  string
	periodEnd    string
	outputFormat reporter.OutputFormat
	outputFile   string
	showMetrics  bool
	failOnReview bool
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile bank transactions with ledger entries",
	Long: `Reconcile matches every bank transaction against the ledger entries of the
same period, reports unmatched records on either side as deltas and derives
the period status.

Input files may be CSV (header row required) or JSON arrays. The format is
chosen by file extension.

Examples:
  # Basic reconciliation
  reconciler reconcile --bank-file bank.csv --ledger-file ledger.csv

  # Identify the client and period in the report
  reconciler reconcile --bank-file bank.csv --ledger-file ledger.json \
    --client-id acme --period-start 2024-01-01 --period-end 2024-01-31

  # Wider tolerances, YAML report written to a file
  reconciler reconcile --bank-file bank.csv --ledger-file ledger.csv \
    --date-tolerance 5 --amount-tolerance 0.50 \
    --output-format yaml --output-file report.yaml

  # List the largest deltas first
  reconciler reconcile --bank-file bank.csv --ledger-file ledger.csv --sort-deltas

  # Exit with status 1 when the period needs review
  reconciler reconcile --bank-file bank.csv --ledger-file ledger.csv --fail-on-review`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Required flags
	reconcileCmd.Flags().StringVarP(&bankFile, "bank-file", "b", "", "path to the bank transaction file, CSV or JSON (required)")
	reconcileCmd.Flags().StringVarP(&ledgerFile, "ledger-file", "l", "", "path to the ledger entry file, CSV or JSON (required)")

	// Report identification
	reconcileCmd.Flags().StringVar(&clientID, "client-id", "", "client identifier echoed in the report")
	reconcileCmd.Flags().StringVar(&periodStart, "period-start", "", "period start (YYYY-MM-DD)")
	reconcileCmd.Flags().StringVar(&periodEnd, "period-end", "", "period end (YYYY-MM-DD)")

	// Output flags
	reconcileCmd.Flags().StringP("output-format", "f", "console", "output format: console, json, yaml, csv")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	reconcileCmd.Flags().BoolVar(&showMetrics, "metrics", false, "print cash-flow metrics extracted from the ledger to stderr")
	reconcileCmd.Flags().BoolVar(&failOnReview, "fail-on-review", false, "exit with status 1 when the report status is REVIEW_REQUIRED")
	reconcileCmd.Flags().Bool("sort-deltas", false, "list deltas by descending absolute amount in console and CSV reports")

	// Matching configuration flags
	reconcileCmd.Flags().IntP("date-tolerance", "d", 3, "date matching tolerance in days")
	reconcileCmd.Flags().StringP("amount-tolerance", "a", "0.01", "absolute amount tolerance")

	// Mark required flags
	reconcileCmd.MarkFlagRequired("bank-file")
	reconcileCmd.MarkFlagRequired("ledger-file")

	// Bind flags to viper
	viper.BindPFlag("bank-file", reconcileCmd.Flags().Lookup("bank-file"))
	viper.BindPFlag("ledger-file", reconcileCmd.Flags().Lookup("ledger-file"))
	viper.BindPFlag("client-id", reconcileCmd.Flags().Lookup("client-id"))
	viper.BindPFlag("period-start", reconcileCmd.Flags().Lookup("period-start"))
	viper.BindPFlag("period-end", reconcileCmd.Flags().Lookup("period-end"))
	viper.BindPFlag("output-format", reconcileCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("metrics", reconcileCmd.Flags().Lookup("metrics"))
	viper.BindPFlag("fail-on-review", reconcileCmd.Flags().Lookup("fail-on-review"))
	viper.BindPFlag(config.KeyReportSortDeltas, reconcileCmd.Flags().Lookup("sort-deltas"))
	viper.BindPFlag(config.KeyDateToleranceDays, reconcileCmd.Flags().Lookup("date-tolerance"))
	viper.BindPFlag(config.KeyAmountTolerance, reconcileCmd.Flags().Lookup("amount-tolerance"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	bankFile = viper.GetString("bank-file")
	ledgerFile = viper.GetString("ledger-file")
	clientID = viper.GetString("client-id")
	periodStart = viper.GetString("period-start")
	periodEnd = viper.GetString("period-end")
	outputFile = viper.GetString("output-file")
	showMetrics = viper.GetBool("metrics")
	failOnReview = viper.GetBool("fail-on-review")

	// Validate required flags
	if bankFile == "" {
		return fmt.Errorf("bank-file is required")
	}
	if ledgerFile == "" {
		return fmt.Errorf("ledger-file is required")
	}

	// Validate file existence
	if err := validateFileExists(bankFile, "bank transaction file"); err != nil {
		return err
	}
	if err := validateFileExists(ledgerFile, "ledger entry file"); err != nil {
		return err
	}

	// Validate output format
	format := viper.GetString("output-format")
	if format == "" {
		format = string(reporter.FormatConsole)
	}
	parsed, err := reporter.ParseOutputFormat(format)
	if err != nil {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, yaml, csv", format)
	}
	outputFormat = parsed

	// Validate period
	start, err := parsePeriodDate(periodStart)
	if err != nil {
		return fmt.Errorf("invalid period start format. Use YYYY-MM-DD: %w", err)
	}
	end, err := parsePeriodDate(periodEnd)
	if err != nil {
		return fmt.Errorf("invalid period end format. Use YYYY-MM-DD: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return fmt.Errorf("period start cannot be after period end")
	}

	// Validate tolerances
	if _, err := config.CreateMatchingConfig(viper.GetViper()); err != nil {
		return err
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func parsePeriodDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.GetGlobalLogger().WithComponent("cli")
	log.WithFields(logger.Fields{
		"bank_file":     bankFile,
		"ledger_file":   ledgerFile,
		"output_format": outputFormat,
		"output_file":   outputFile,
	}).Debug("Starting reconciliation")

	matchingConfig, err := config.CreateMatchingConfig(viper.GetViper())
	if err != nil {
		return err
	}

	service, err := reconciler.NewReconciliationService(matchingConfig)
	if err != nil {
		return err
	}

	result, err := service.ProcessReconciliation(ctx, &reconciler.ReconciliationRequest{
		BankFile:    bankFile,
		LedgerFile:  ledgerFile,
		ClientID:    clientID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	})
	if err != nil {
		return err
	}

	reportConfig := config.CreateReportConfig(outputFormat)
	reportConfig.SortDeltasByAmount = viper.GetBool(config.KeyReportSortDeltas)

	generator, err := reporter.NewSafeReportGenerator(reportConfig, log)
	if err != nil {
		return err
	}

	if outputFile != "" {
		written, err := generator.WriteReportFile(result, outputFile)
		if err != nil {
			return err
		}
		if written != outputFile {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not write to %s, report saved to %s\n", outputFile, written)
		}
	} else if err := generator.GenerateReportSafely(result, cmd.OutOrStdout()); err != nil {
		return err
	}

	if showMetrics {
		fmt.Fprintf(cmd.ErrOrStderr(), "Ledger metrics: inflow=%s outflow=%s feesCharged=%s\n",
			result.CashFlow.Inflow.StringFixed(2),
			result.CashFlow.Outflow.StringFixed(2),
			result.CashFlow.FeesCharged.StringFixed(2))
	}

	report := result.Report
	log.WithFields(logger.Fields{
		"status":     report.Status,
		"matched":    len(report.Matched),
		"deltas":     len(report.Deltas),
		"match_rate": report.MatchRate,
		"duration":   result.Duration.String(),
	}).Info("Reconciliation finished")

	if failOnReview && report.Status == models.StatusReviewRequired {
		return ErrReviewRequired
	}

	return nil
}
