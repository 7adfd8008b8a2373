package scenarios

import (
	"fmt"

	"bank-ledger-reconciler/internal/models"
)

// Accuracy compares the matches of a report with a scenario's expected matches
type Accuracy struct {
	Expected int
	Found    int
	Correct  int

	// Missed counts expected pairs absent from the report
	Missed int

	// Wrong lists found pairs that were not expected, as bank id -> ledger id
	Wrong map[string]string
}

// Evaluate scores report against the scenario
func Evaluate(report *models.ReconciliationReport, s Scenario) Accuracy {
	acc := Accuracy{
		Expected: len(s.ExpectedMatches),
		Found:    len(report.Matched),
		Wrong:    make(map[string]string),
	}

	for _, m := range report.Matched {
		if want, ok := s.ExpectedMatches[m.BankTxID]; ok && want == m.LedgerEntryID {
			acc.Correct++
			continue
		}
		acc.Wrong[m.BankTxID] = m.LedgerEntryID
	}
	acc.Missed = acc.Expected - acc.Correct

	return acc
}

// Precision is the share of found matches that were expected
func (a Accuracy) Precision() float64 {
	if a.Found == 0 {
		return 1.0
	}
	return float64(a.Correct) / float64(a.Found)
}

// Recall is the share of expected matches that were found
func (a Accuracy) Recall() float64 {
	if a.Expected == 0 {
		return 1.0
	}
	return float64(a.Correct) / float64(a.Expected)
}

// Perfect reports whether the report found exactly the expected matches
func (a Accuracy) Perfect() bool {
	return a.Missed == 0 && len(a.Wrong) == 0
}

func (a Accuracy) String() string {
	return fmt.Sprintf("expected=%d found=%d correct=%d missed=%d wrong=%d precision=%.3f recall=%.3f",
		a.Expected, a.Found, a.Correct, a.Missed, len(a.Wrong), a.Precision(), a.Recall())
}
