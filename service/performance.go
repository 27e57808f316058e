package service

import (
	"context"
	"time"

	"coursegen/apierr"
	"coursegen/model"
	"coursegen/natsclient"

	"go.uber.org/zap/zapcore"
)

func performanceKey(uid string) string { return "performance:" + uid }

const allPerformanceKey = "performance:all"

type ScoreRecordedEvent struct {
	UID        string    `json:"uid"`
	TotalScore float64   `json:"totalScore"`
	Date       time.Time `json:"date"`
}

// RecordDailyScore appends a raw sample for uid. Several samples for the same
// day are allowed; the aggregator keeps the highest. Only admins may write for
// another user or backfill a date; everyone else is stamped with today.
func (s *Service) RecordDailyScore(ctx context.Context, sess model.Session, uid, email string, totalScore float64, at time.Time) error {
	traceID := traceOf(sess)
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting RecordDailyScore", map[string]any{
		"method":     "RecordDailyScore",
		"uid":        uid,
		"totalScore": totalScore,
	}, "SERVICE", nil)

	if uid == "" {
		uid = sess.UserID
	}
	if uid == "" {
		return apierr.Validation("uid is required")
	}
	if uid != sess.UserID && !sess.IsAdmin() {
		aerr := apierr.Forbidden("cannot record scores for another user")
		s.logFailure(traceID, "RecordDailyScore", "Score write for another user rejected", aerr, map[string]any{"uid": uid})
		return aerr
	}
	if totalScore < 0 {
		return apierr.Validation("totalScore must not be negative")
	}
	if at.IsZero() || !sess.IsAdmin() {
		at = s.now()
	}
	sample := model.DailyPerformance{Date: Day(at), TotalScore: totalScore}
	if err := s.tracks.AppendDailyPerformance(ctx, uid, email, sample); err != nil {
		aerr := storeError(err, "user")
		s.logFailure(traceID, "RecordDailyScore", "Failed to record score", aerr, map[string]any{"uid": uid})
		return aerr
	}
	s.cacheDelete(ctx, traceID, performanceKey(uid))
	s.publish(traceID, natsclient.SubjectScoreRecorded, ScoreRecordedEvent{UID: uid, TotalScore: totalScore, Date: sample.Date})
	return nil
}

// RecomputeUserStreak rewrites uid's samples and streak counters from what is
// stored.
func (s *Service) RecomputeUserStreak(ctx context.Context, sess model.Session, uid string) (model.StreakState, error) {
	traceID := traceOf(sess)
	user, err := s.tracks.GetTrackUser(ctx, uid)
	if err != nil {
		aerr := storeError(err, "user")
		s.logFailure(traceID, "RecomputeUserStreak", "Failed to load track user", aerr, map[string]any{"uid": uid})
		return model.StreakState{}, aerr
	}
	state, err := s.recompute(ctx, user)
	if err != nil {
		aerr := storeError(err, "user")
		s.logFailure(traceID, "RecomputeUserStreak", "Failed to save streak", aerr, map[string]any{"uid": uid})
		return model.StreakState{}, aerr
	}
	s.cacheDelete(ctx, traceID, performanceKey(uid))
	s.logger.Log(zapcore.InfoLevel, traceID, "Streak recomputed", map[string]any{
		"method":    "RecomputeUserStreak",
		"uid":       uid,
		"strick":    state.Strick,
		"maxStrick": state.MaxStrick,
	}, "SERVICE", nil)
	return state, nil
}

func (s *Service) recompute(ctx context.Context, user *model.TrackUser) (model.StreakState, error) {
	days, state := AggregateDailyPerformance(user.DailyPerformance)
	if err := s.tracks.SaveStreak(ctx, user.UID, days, state); err != nil {
		return model.StreakState{}, err
	}
	return state, nil
}

// RecomputeAllStreaks runs the aggregator over every tracked user and returns
// how many were updated. A failure on one user is logged and skipped.
func (s *Service) RecomputeAllStreaks(ctx context.Context, sess model.Session) (int, error) {
	traceID := traceOf(sess)
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting RecomputeAllStreaks", map[string]any{
		"method": "RecomputeAllStreaks",
	}, "SERVICE", nil)

	users, err := s.tracks.ListTrackUsers(ctx)
	if err != nil {
		aerr := storeError(err, "user")
		s.logFailure(traceID, "RecomputeAllStreaks", "Failed to list track users", aerr, nil)
		return 0, aerr
	}
	updated := 0
	keys := make([]string, 0, len(users))
	for i := range users {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if _, err := s.recompute(ctx, &users[i]); err != nil {
			s.logger.Log(zapcore.ErrorLevel, traceID, "Failed to recompute streak", map[string]any{
				"method":    "RecomputeAllStreaks",
				"uid":       users[i].UID,
				"errorType": apierr.CodeDB,
			}, "SERVICE", err)
			continue
		}
		keys = append(keys, performanceKey(users[i].UID))
		updated++
	}
	s.cacheDelete(ctx, traceID, keys...)
	s.logger.Log(zapcore.InfoLevel, traceID, "Streaks recomputed", map[string]any{
		"method":       "RecomputeAllStreaks",
		"updatedCount": updated,
		"total":        len(users),
	}, "SERVICE", nil)
	return updated, nil
}

// GetPerformance returns uid's track document with samples in date order. It
// is cached until the next midnight.
func (s *Service) GetPerformance(ctx context.Context, sess model.Session, uid string) (*model.TrackUser, error) {
	traceID := traceOf(sess)
	if uid == "" {
		return nil, apierr.Validation("uid is required")
	}
	var cached model.TrackUser
	if s.cacheGet(ctx, traceID, performanceKey(uid), &cached) {
		return &cached, nil
	}
	user, err := s.tracks.GetTrackUser(ctx, uid)
	if err != nil {
		aerr := storeError(err, "user")
		s.logFailure(traceID, "GetPerformance", "Failed to load performance", aerr, map[string]any{"uid": uid})
		return nil, aerr
	}
	sortSamples(user.DailyPerformance)
	s.cacheSet(ctx, traceID, performanceKey(uid), user, untilMidnight(s.now()))
	return user, nil
}

func (s *Service) GetAllPerformance(ctx context.Context, sess model.Session) ([]model.UserPerformanceSummary, error) {
	traceID := traceOf(sess)
	var cached []model.UserPerformanceSummary
	if s.cacheGet(ctx, traceID, allPerformanceKey, &cached) {
		return cached, nil
	}
	rows, err := s.tracks.AllPerformance(ctx)
	if err != nil {
		aerr := storeError(err, "performance")
		s.logFailure(traceID, "GetAllPerformance", "Failed to aggregate performance", aerr, nil)
		return nil, aerr
	}
	s.cacheSet(ctx, traceID, allPerformanceKey, rows, 10*time.Minute)
	return rows, nil
}
