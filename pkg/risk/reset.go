package risk

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Daily-loss reset runs at UTC midnight, complementing the lazy date-key
// reset applied on first touch of each user.
const resetSchedule = "0 0 * * *"

// ResetScheduler sweeps every user's daily loss at the UTC day boundary.
type ResetScheduler struct {
	cron   *cron.Cron
	gate   *Gate
	logger *slog.Logger
}

func NewResetScheduler(gate *Gate, logger *slog.Logger) *ResetScheduler {
	return &ResetScheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		gate:   gate,
		logger: logger,
	}
}

func (s *ResetScheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(resetSchedule, func() {
		err := s.gate.ResetAllDailyLoss(ctx)
		if err != nil {
			s.logger.Error("Scheduled daily loss reset failed", "error", err)

			return
		}

		s.logger.Info("Scheduled daily loss reset completed")
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *ResetScheduler) Stop() {
	<-s.cron.Stop().Done()
}
