package jobs

import (
	"time"

	"github.com/go-co-op/gocron"

	"github.com/navprep/engine/progress"
	"github.com/navprep/engine/quiz"
	"github.com/navprep/engine/utils"
)

// Scheduler drives the exam countdown. Sessions never check the clock on
// their own; the sweep job finishes any timed session whose limit has
// passed and records the attempt with whatever was answered.
type Scheduler struct {
	scheduler *gocron.Scheduler
	manager   *quiz.Manager
	tracker   *progress.Tracker
}

func NewScheduler(manager *quiz.Manager, tracker *progress.Tracker) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		manager:   manager,
		tracker:   tracker,
	}
}

// Start begins the background sweep. It returns immediately.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Second().Do(s.sweep); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	utils.LogStartup("Session timer sweep scheduled")
	return nil
}

// Stop halts the background jobs and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	utils.LogShutdown("Session timer sweep stopped")
}

func (s *Scheduler) sweep() {
	for _, session := range s.manager.SweepExpired() {
		utils.LogQuiz("Session %s timed out", session.ID)
		if err := s.tracker.FinalizeSession(session); err != nil {
			utils.LogError("Failed to finalize expired session %s: %v", session.ID, err)
		}
	}
}
