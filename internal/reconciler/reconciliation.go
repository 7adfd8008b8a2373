package reconciler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bank-ledger-reconciler/internal/ledgermetrics"
	"bank-ledger-reconciler/internal/matcher"
	"bank-ledger-reconciler/internal/models"
	"bank-ledger-reconciler/internal/parsers"
	"bank-ledger-reconciler/pkg/errors"
	"bank-ledger-reconciler/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// ReconciliationService loads input files and reconciles them
type ReconciliationService struct {
	reconciler *Reconciler
	logger     logger.Logger
}

// ReconciliationRequest names the files and period of one run
type ReconciliationRequest struct {
	BankFile    string
	LedgerFile  string
	ClientID    string
	PeriodStart string
	PeriodEnd   string
}

// Validate validates the reconciliation request
func (r *ReconciliationRequest) Validate() error {
	if strings.TrimSpace(r.BankFile) == "" {
		return errors.ValidationError(errors.CodeMissingField, "bank_file", "", nil)
	}
	if strings.TrimSpace(r.LedgerFile) == "" {
		return errors.ValidationError(errors.CodeMissingField, "ledger_file", "", nil)
	}
	return nil
}

// ReconciliationResult is a report plus information about how it was produced
type ReconciliationResult struct {
	Report      *models.ReconciliationReport
	BankStats   *parsers.ParseStats
	LedgerStats *parsers.ParseStats
	// CashFlow is extracted from the ledger descriptions
	CashFlow    ledgermetrics.CashFlow
	Duration    time.Duration
	ProcessedAt time.Time
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(config *matcher.MatchingConfig) (*ReconciliationService, error) {
	if config == nil {
		config = matcher.DefaultMatchingConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "matching", config.String(), err)
	}

	return &ReconciliationService{
		reconciler: New(config),
		logger:     logger.GetGlobalLogger().WithComponent("reconciliation_service"),
	}, nil
}

// ProcessReconciliation loads both files concurrently and builds the report
func (rs *ReconciliationService) ProcessReconciliation(ctx context.Context, request *ReconciliationRequest) (*ReconciliationResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	result := &ReconciliationResult{ProcessedAt: startTime}

	var bank []models.BankTransaction
	var ledger []models.LedgerEntry

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bank, result.BankStats, err = parsers.LoadBankTransactions(gctx, request.BankFile)
		if err != nil {
			return fmt.Errorf("failed to load bank transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ledger, result.LedgerStats, err = parsers.LoadLedgerEntries(gctx, request.LedgerFile)
		if err != nil {
			return fmt.Errorf("failed to load ledger entries: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rs.logger.WithFields(logger.Fields{
		"bank_file":    request.BankFile,
		"bank_count":   len(bank),
		"ledger_file":  request.LedgerFile,
		"ledger_count": len(ledger),
	}).Info("Loaded reconciliation inputs")

	result.Report = rs.reconciler.BuildReport(request.ClientID, request.PeriodStart, request.PeriodEnd, bank, ledger)
	result.CashFlow = ledgermetrics.Extract(ledger)
	result.Duration = time.Since(startTime)

	rs.logger.WithFields(logger.Fields{
		"status":     result.Report.Status,
		"match_rate": result.Report.MatchRate,
		"duration":   result.Duration.String(),
	}).Info("Reconciliation complete")

	return result, nil
}

// GetConfiguration returns the matching configuration in use
func (rs *ReconciliationService) GetConfiguration() *matcher.MatchingConfig {
	return rs.reconciler.Config()
}
