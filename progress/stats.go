package progress

import (
	"sort"

	"github.com/navprep/engine/models"
)

// Minimum attempts before a category or rule is considered statistically
// significant for weak-area detection. Product heuristics carried over from
// the original thresholds; tune only with intent.
const (
	CategoryMinAttempts = 5
	RuleMinAttempts     = 3
)

// MasteryLevel classifies global accuracy into six tiers.
func (t *Tracker) MasteryLevel() models.MasteryLevel {
	t.mu.Lock()
	defer t.mu.Unlock()

	accuracy := 0.0
	if t.progress.QuestionsAnswered > 0 {
		accuracy = float64(t.progress.CorrectAnswers) / float64(t.progress.QuestionsAnswered) * 100
	}

	switch {
	case accuracy < 25:
		return models.MasteryBeginner
	case accuracy < 50:
		return models.MasteryNovice
	case accuracy < 70:
		return models.MasteryIntermediate
	case accuracy < 85:
		return models.MasteryAdvanced
	case accuracy < 95:
		return models.MasteryExpert
	default:
		return models.MasteryMaster
	}
}

// WeakestCategory returns the lowest-accuracy category among those with at
// least CategoryMinAttempts answers. The second result is false when no
// category has enough data; a thin sample never produces a recommendation.
func (t *Tracker) WeakestCategory() (models.Category, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var weakest models.Category
	found := false
	best := 0.0
	for _, c := range models.AllCategories {
		stat, ok := t.progress.CategoryStats[c]
		if !ok || stat.Answered < CategoryMinAttempts {
			continue
		}
		if !found || stat.Accuracy() < best {
			weakest = c
			best = stat.Accuracy()
			found = true
		}
	}
	return weakest, found
}

// WeakestRule is WeakestCategory for rule labels, with its own threshold.
// Rules are visited in sorted order so ties resolve deterministically.
func (t *Tracker) WeakestRule() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rules := make([]string, 0, len(t.progress.RuleStats))
	for rule := range t.progress.RuleStats {
		rules = append(rules, rule)
	}
	sort.Strings(rules)

	var weakest string
	found := false
	best := 0.0
	for _, rule := range rules {
		stat := t.progress.RuleStats[rule]
		if stat.Answered < RuleMinAttempts {
			continue
		}
		if !found || stat.Accuracy() < best {
			weakest = rule
			best = stat.Accuracy()
			found = true
		}
	}
	return weakest, found
}

// RecommendedCategory suggests what to practice next: the weakest significant
// category, or the least-attempted one while data is still thin.
func (t *Tracker) RecommendedCategory() models.Category {
	if weakest, ok := t.WeakestCategory(); ok {
		return weakest
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	least := models.AllCategories[0]
	min := -1
	for _, c := range models.AllCategories {
		answered := t.progress.CategoryStats[c].Answered
		if min < 0 || answered < min {
			least = c
			min = answered
		}
	}
	return least
}
