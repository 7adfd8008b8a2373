package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bank-ledger-reconciler/internal/ledgermetrics"
	"bank-ledger-reconciler/internal/matcher"
	"bank-ledger-reconciler/internal/models"
	"bank-ledger-reconciler/internal/reconciler"
	"bank-ledger-reconciler/pkg/logger"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunIDHeader carries the id assigned to a reconciliation run
const RunIDHeader = "X-Run-ID"

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// reconciliationRequest is the body of POST /v1/reconciliations. The optional
// tolerances override the server's matching configuration for one run.
type reconciliationRequest struct {
	ClientID         string                   `json:"clientId"`
	PeriodStart      string                   `json:"periodStart"`
	PeriodEnd        string                   `json:"periodEnd"`
	BankTransactions []models.BankTransaction `json:"bankTransactions"`
	LedgerEntries    []models.LedgerEntry     `json:"ledgerEntries"`
	ToleranceDays    *int                     `json:"toleranceDays,omitempty"`
	ToleranceAmount  *decimal.Decimal         `json:"toleranceAmount,omitempty"`
}

// explanationRequest is the body of POST /v1/explanations
type explanationRequest struct {
	BankTransaction models.BankTransaction `json:"bankTransaction"`
	LedgerEntries   []models.LedgerEntry   `json:"ledgerEntries"`
	ToleranceDays   *int                   `json:"toleranceDays,omitempty"`
	ToleranceAmount *decimal.Decimal       `json:"toleranceAmount,omitempty"`
}

type candidateResponse struct {
	Position      int                `json:"position"`
	LedgerEntryID string             `json:"ledgerEntryId"`
	Score         float64            `json:"score"`
	MatchedOn     []models.Criterion `json:"matchedOn"`
	Acceptable    bool               `json:"acceptable"`
}

// explanationResponse lists every ledger entry within the amount tolerance of
// one bank transaction, in ledger order, with the score it would get.
type explanationResponse struct {
	BankTransactionID   string              `json:"bankTransactionId"`
	AcceptanceThreshold float64             `json:"acceptanceThreshold"`
	Candidates          []candidateResponse `json:"candidates"`
}

// ledgerMetricsRequest is the body of POST /v1/ledger-metrics
type ledgerMetricsRequest struct {
	Metrics       ledgermetrics.Metrics `json:"metrics"`
	LedgerEntries []models.LedgerEntry  `json:"ledgerEntries"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// runConfig applies per-request tolerance overrides to a copy of the server's
// matching configuration.
func (s *Server) runConfig(w http.ResponseWriter, days *int, amount *decimal.Decimal) (*matcher.MatchingConfig, bool) {
	config := s.matching.Clone()
	if days != nil {
		config.DateToleranceDays = *days
	}
	if amount != nil {
		config.AmountTolerance = *amount
	}
	if err := config.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return config, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req reconciliationRequest
	if !s.decode(w, r, &req) {
		return
	}

	config, ok := s.runConfig(w, req.ToleranceDays, req.ToleranceAmount)
	if !ok {
		return
	}

	runID := uuid.New().String()
	start := time.Now()

	report := reconciler.New(config).BuildReport(req.ClientID, req.PeriodStart, req.PeriodEnd, req.BankTransactions, req.LedgerEntries)

	duration := time.Since(start)
	s.metrics.RecordRun(report, duration)

	s.logger.WithFields(logger.Fields{
		"run_id":     runID,
		"request_id": middleware.GetReqID(r.Context()),
		"client_id":  req.ClientID,
		"status":     report.Status,
		"match_rate": report.MatchRate,
		"deltas":     len(report.Deltas),
		"duration":   duration.String(),
	}).Info("Reconciliation run complete")

	w.Header().Set(RunIDHeader, runID)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLedgerMetrics(w http.ResponseWriter, r *http.Request) {
	var req ledgerMetricsRequest
	if !s.decode(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, ledgermetrics.Backfill(req.Metrics, req.LedgerEntries))
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explanationRequest
	if !s.decode(w, r, &req) {
		return
	}

	config, ok := s.runConfig(w, req.ToleranceDays, req.ToleranceAmount)
	if !ok {
		return
	}

	resp := explanationResponse{
		BankTransactionID:   req.BankTransaction.ID,
		AcceptanceThreshold: config.AcceptanceThreshold,
		Candidates:          []candidateResponse{},
	}
	for _, c := range matcher.NewMatchingEngine(config).ScoreCandidates(req.BankTransaction, req.LedgerEntries) {
		resp.Candidates = append(resp.Candidates, candidateResponse{
			Position:      c.Position,
			LedgerEntryID: c.LedgerEntryID,
			Score:         c.Score.Value,
			MatchedOn:     c.Score.MatchedOn,
			Acceptable:    config.Accepts(c.Score.Value),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
