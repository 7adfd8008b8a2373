package scenarios

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

var bankHeader = []string{"id", "date", "amount", "description"}

// WriteFiles writes the scenario as <name>_bank.csv and <name>_ledger.json
// under dir and returns both paths.
func WriteFiles(dir string, s Scenario) (bankPath, ledgerPath string, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}

	bankPath = filepath.Join(dir, s.Name+"_bank.csv")
	if err := writeBankCSV(bankPath, s); err != nil {
		return "", "", err
	}

	ledgerPath = filepath.Join(dir, s.Name+"_ledger.json")
	if err := writeLedgerJSON(ledgerPath, s); err != nil {
		return "", "", err
	}

	return bankPath, ledgerPath, nil
}

func writeBankCSV(path string, s Scenario) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(bankHeader); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	for _, tx := range s.Bank {
		record := []string{tx.ID, tx.Date, tx.Amount.StringFixed(2), tx.Description}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record to %s: %w", path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

func writeLedgerJSON(path string, s Scenario) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.Ledger); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
