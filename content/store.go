package content

import (
	"math/rand"
	"sync"
	"time"

	"github.com/navprep/engine/models"
)

// Store holds the validated question bank in memory and serves filtered and
// randomly sampled views of it. Questions are immutable after load.
type Store struct {
	mu        sync.RWMutex
	questions []models.Question
	byID      map[int]models.Question
	rng       *rand.Rand
	rngMu     sync.Mutex
}

// NewStore builds a Store over a validated question list.
func NewStore(questions []models.Question) *Store {
	byID := make(map[int]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return &Store{
		questions: questions,
		byID:      byID,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Count returns the total number of questions in the bank.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions)
}

// All returns a copy of every question.
func (s *Store) All() []models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// ByID looks up a single question.
func (s *Store) ByID(id int) (models.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.byID[id]
	return q, ok
}

// ByIDs resolves a list of ids, skipping unknown ones.
func (s *Store) ByIDs(ids []int) []models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := s.byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

// ByCategory returns all questions in one category.
func (s *Store) ByCategory(category models.Category) []models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Question
	for _, q := range s.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

// ByRule returns all questions sharing a rule label.
func (s *Store) ByRule(rule string) []models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Question
	for _, q := range s.questions {
		if q.Rule == rule {
			out = append(out, q)
		}
	}
	return out
}

// Sample returns up to count distinct questions from pool in random order
// using a Fisher-Yates shuffle of a copy. The pool itself is not mutated.
func (s *Store) Sample(pool []models.Question, count int) []models.Question {
	shuffled := make([]models.Question, len(pool))
	copy(shuffled, pool)

	s.rngMu.Lock()
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	s.rngMu.Unlock()

	if count <= 0 || count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}

// SampleAll is Sample over the whole bank.
func (s *Store) SampleAll(count int) []models.Question {
	return s.Sample(s.All(), count)
}
