package content

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/navprep/engine/models"
	"github.com/navprep/engine/utils"
)

// Bank file columns. The first seven are required, the rest are optional.
const (
	colID = iota
	colText
	colOptionA
	colOptionB
	colOptionC
	colOptionD
	colAnswer
	colDiagram
	colCategory
	colExplanation
	colRule

	minColumns = colAnswer + 1
)

// ErrNoQuestions is returned when a bank file yields zero valid rows.
var ErrNoQuestions = errors.New("no valid questions in bank file")

// ParseBank reads a comma-delimited question bank. Quoted fields may contain
// commas, newlines and doubled-quote escapes. Malformed rows are dropped and
// counted, not fatal; only a bank with zero valid rows fails the load.
func ParseBank(r io.Reader) ([]models.Question, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var questions []models.Question
	seen := make(map[int]bool)
	dropped := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Row-level parse failure; the reader resumes at the next record.
			dropped++
			continue
		}
		q, ok := parseRow(record)
		if !ok || seen[q.ID] {
			dropped++
			continue
		}
		seen[q.ID] = true
		questions = append(questions, q)
	}

	if dropped > 0 {
		utils.LogImport("Dropped %d malformed or duplicate rows", dropped)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return questions, nil
}

// LoadBankFile parses a bank from disk.
func LoadBankFile(path string) ([]models.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	questions, err := ParseBank(f)
	if err != nil {
		return nil, err
	}
	utils.LogImport("Loaded %d questions from %s", len(questions), path)
	return questions, nil
}

func parseRow(record []string) (models.Question, bool) {
	if len(record) < minColumns {
		return models.Question{}, false
	}

	id, err := strconv.Atoi(strings.TrimSpace(record[colID]))
	if err != nil || id <= 0 {
		return models.Question{}, false
	}

	correct := utils.AnswerLetterToIndex(record[colAnswer])
	if correct < 0 {
		return models.Question{}, false
	}

	q := models.Question{
		ID:            id,
		Text:          strings.TrimSpace(record[colText]),
		CorrectOption: correct,
	}
	q.Options[0] = strings.TrimSpace(record[colOptionA])
	q.Options[1] = strings.TrimSpace(record[colOptionB])
	q.Options[2] = strings.TrimSpace(record[colOptionC])
	q.Options[3] = strings.TrimSpace(record[colOptionD])

	if len(record) > colDiagram {
		q.DiagramRef = strings.TrimSpace(record[colDiagram])
	}
	if len(record) > colCategory {
		q.Category = models.MatchCategory(record[colCategory])
	} else {
		q.Category = models.MatchCategory("")
	}
	if len(record) > colExplanation {
		q.Explanation = strings.TrimSpace(record[colExplanation])
	}
	if len(record) > colRule {
		q.Rule = strings.TrimSpace(record[colRule])
	}
	return q, true
}
