package content

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/navprep/engine/models"
	"github.com/navprep/engine/utils"
)

// ImportConfig controls spreadsheet imports. Column layout matches the CSV
// bank format, so both paths share the same row validation.
type ImportConfig struct {
	FilePath   string
	SheetName  string
	SkipHeader bool
}

// DefaultImportConfig returns the import configuration used when nothing is
// overridden: first sheet, header row skipped.
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{
		FilePath:   path,
		SheetName:  "Sheet1",
		SkipHeader: true,
	}
}

// LoadBank loads a question bank from either a CSV or XLSX file based on the
// file extension.
func LoadBank(path string) ([]models.Question, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ImportXLSX(DefaultImportConfig(path))
	}
	return LoadBankFile(path)
}

// ImportXLSX reads a question bank from a spreadsheet. Row validity rules are
// identical to the CSV path: malformed rows are dropped, an empty result is
// an error.
func ImportXLSX(config ImportConfig) ([]models.Question, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	var questions []models.Question
	seen := make(map[int]bool)
	dropped := 0

	for i, row := range rows {
		if i == 0 && config.SkipHeader {
			continue
		}
		q, ok := parseRow(row)
		if !ok || seen[q.ID] {
			dropped++
			continue
		}
		seen[q.ID] = true
		questions = append(questions, q)
	}

	if dropped > 0 {
		utils.LogImport("Dropped %d malformed or duplicate spreadsheet rows", dropped)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	utils.LogImport("Imported %d questions from %s (sheet %s)", len(questions), config.FilePath, sheet)
	return questions, nil
}
