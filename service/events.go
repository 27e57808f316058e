package service

import (
	"context"
	"encoding/json"
	"time"

	"coursegen/model"
	"coursegen/natsclient"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap/zapcore"
)

const streakWorkers = "streak-workers"

type QueueSubscriber interface {
	QueueSubscribe(subject, group string, handler func(*nats.Msg)) (*nats.Subscription, error)
}

// SubscribeScoreEvents recomputes a user's streak whenever a score for them
// is recorded. Replicas share the work through a queue group.
func (s *Service) SubscribeScoreEvents(sub QueueSubscriber) (*nats.Subscription, error) {
	return sub.QueueSubscribe(natsclient.SubjectScoreRecorded, streakWorkers, func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.HandleScoreRecorded(ctx, msg.Data)
	})
}

func (s *Service) HandleScoreRecorded(ctx context.Context, data []byte) {
	traceID := uuid.New().String()
	var evt ScoreRecordedEvent
	if err := json.Unmarshal(data, &evt); err != nil || evt.UID == "" {
		s.logger.Log(zapcore.WarnLevel, traceID, "Ignoring malformed score event", map[string]any{
			"method":    "HandleScoreRecorded",
			"errorType": "EVENT_DECODE_FAILED",
		}, "NATS", err)
		return
	}
	if _, err := s.RecomputeUserStreak(ctx, model.Session{TraceID: traceID, Role: "system"}, evt.UID); err != nil {
		s.logger.Log(zapcore.ErrorLevel, traceID, "Streak update from event failed", map[string]any{
			"method":    "HandleScoreRecorded",
			"uid":       evt.UID,
			"errorType": "STREAK_UPDATE_FAILED",
		}, "NATS", err)
	}
}
