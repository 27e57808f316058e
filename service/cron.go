package service

import (
	"context"
	"time"

	"coursegen/model"

	"github.com/google/uuid"
	cron "github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"
)

const cronJobTimeout = 10 * time.Minute

// StartCronJob schedules the all-users streak recomputation. The returned
// scheduler is already running; Stop it on shutdown.
func (s *Service) StartCronJob(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		traceID := uuid.New().String()
		ctx, cancel := context.WithTimeout(context.Background(), cronJobTimeout)
		defer cancel()
		s.logger.Log(zapcore.InfoLevel, traceID, "Recomputing streaks "+time.Now().String(), map[string]any{
			"method": "STREAK CRON JOB",
		}, "CRON", nil)
		if _, err := s.RecomputeAllStreaks(ctx, model.Session{TraceID: traceID, Role: "system"}); err != nil {
			s.logger.Log(zapcore.ErrorLevel, traceID, "Streak cron job failed", map[string]any{
				"method":    "STREAK CRON JOB",
				"errorType": "CRON_FAILED",
			}, "CRON", err)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
