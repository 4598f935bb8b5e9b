package models

import "strings"

// Category is the closed set of question categories. Bank files may label
// categories loosely; MatchCategory maps free-form labels onto this set.
type Category string

const (
	CategorySteering   Category = "Steering & Sailing"
	CategoryLights     Category = "Lights & Shapes"
	CategorySound      Category = "Sound Signals"
	CategoryNavAids    Category = "Navigation Aids"
	CategoryEmergency  Category = "Emergencies"
	CategoryUnassigned Category = ""
)

// AllCategories in display order.
var AllCategories = []Category{
	CategorySteering,
	CategoryLights,
	CategorySound,
	CategoryNavAids,
	CategoryEmergency,
}

// OptionCount is the fixed number of choices per question.
const OptionCount = 4

// Question is one immutable multiple-choice question record.
type Question struct {
	ID             int                 `json:"id"`
	Text           string              `json:"text"`
	Options        [OptionCount]string `json:"options"`
	CorrectOption  int                 `json:"correct_option"`
	DiagramRef     string              `json:"diagram_ref,omitempty"`
	Category       Category            `json:"category"`
	Rule           string              `json:"rule,omitempty"`
	Explanation    string              `json:"explanation,omitempty"`
}

// IsCorrect reports whether the chosen option index is the correct answer.
func (q *Question) IsCorrect(optionIndex int) bool {
	return optionIndex == q.CorrectOption
}

// MatchCategory fuzzy-matches a free-form bank label onto the closed set.
// Unrecognized labels land in CategorySteering, the catch-all for general
// rules questions, so a sloppy bank never loses rows over a label typo.
func MatchCategory(label string) Category {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(l, "light") || strings.Contains(l, "shape") || strings.Contains(l, "dayshape"):
		return CategoryLights
	case strings.Contains(l, "emergenc") || strings.Contains(l, "distress") || strings.Contains(l, "safety"):
		return CategoryEmergency
	case strings.Contains(l, "sound") || strings.Contains(l, "signal") || strings.Contains(l, "whistle") || strings.Contains(l, "horn"):
		return CategorySound
	case strings.Contains(l, "aid") || strings.Contains(l, "buoy") || strings.Contains(l, "beacon") || strings.Contains(l, "mark"):
		return CategoryNavAids
	default:
		return CategorySteering
	}
}
