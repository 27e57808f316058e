package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"coursegen/apierr"
	"coursegen/model"
	"coursegen/utils"

	"go.uber.org/zap/zapcore"
)

const (
	courseCacheTTL = 30 * time.Minute
	courseStatsKey = "course:stats"
)

func courseKey(id string) string { return "course:" + id }

type CreateCourseRequest struct {
	MainTopic string          `json:"mainTopic"`
	Type      string          `json:"type"`
	Language  string          `json:"language"`
	Content   json.RawMessage `json:"content,omitempty"`
	Topics    []model.Topic   `json:"topics,omitempty"`
}

func requireUser(sess model.Session) error {
	if strings.TrimSpace(sess.UserID) == "" {
		return apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errMissingUser)
	}
	return nil
}

func (s *Service) CreateCourse(ctx context.Context, sess model.Session, req CreateCourseRequest) (*model.Course, error) {
	traceID := traceOf(sess)
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting CreateCourse", map[string]any{
		"method":    "CreateCourse",
		"userId":    sess.UserID,
		"mainTopic": req.MainTopic,
	}, "SERVICE", nil)

	if err := requireUser(sess); err != nil {
		return nil, err
	}
	mainTopic := strings.TrimSpace(req.MainTopic)
	if mainTopic == "" {
		return nil, apierr.Validation("mainTopic is required")
	}
	courseType := strings.TrimSpace(req.Type)
	switch courseType {
	case "":
		courseType = model.CourseTypeVideoText
	case model.CourseTypeVideoText, model.CourseTypeTextImage:
	default:
		return nil, apierr.Validation("type must be \"" + model.CourseTypeVideoText + "\" or \"" + model.CourseTypeTextImage + "\"")
	}

	topics := req.Topics
	if len(topics) == 0 {
		if len(req.Content) == 0 {
			return nil, apierr.Validation("content or topics is required")
		}
		parsed, err := model.ParseOutline(req.Content, mainTopic)
		if err != nil {
			return nil, apierr.Validation("content is not a valid outline: " + err.Error())
		}
		topics = parsed
	}

	photo, _ := s.covers.FindImage(ctx, mainTopic)
	course := &model.Course{
		UserID:    sess.UserID,
		MainTopic: mainTopic,
		Type:      courseType,
		Language:  utils.NormalizeLanguage(req.Language),
		Photo:     photo,
		Topics:    topics,
	}
	if err := s.courses.CreateCourse(ctx, course); err != nil {
		aerr := storeError(err, "course")
		s.logFailure(traceID, "CreateCourse", "Failed to create course", aerr, nil)
		return nil, aerr
	}
	s.cacheDelete(ctx, traceID, courseStatsKey)

	s.logger.Log(zapcore.InfoLevel, traceID, "Course created", map[string]any{
		"method":   "CreateCourse",
		"courseId": course.ID.Hex(),
	}, "SERVICE", nil)
	return course, nil
}

func (s *Service) GetCourse(ctx context.Context, sess model.Session, courseID string) (*model.Course, error) {
	traceID := traceOf(sess)
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting GetCourse", map[string]any{
		"method":   "GetCourse",
		"courseId": courseID,
	}, "SERVICE", nil)

	var cached model.Course
	if s.cacheGet(ctx, traceID, courseKey(courseID), &cached) {
		return &cached, nil
	}
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		aerr := storeError(err, "course")
		s.logFailure(traceID, "GetCourse", "Failed to get course", aerr, map[string]any{"courseId": courseID})
		return nil, aerr
	}
	s.cacheSet(ctx, traceID, courseKey(courseID), course, courseCacheTTL)
	return course, nil
}

// ListUserCourses lists the courses of uid, or of the session user when uid
// is empty.
func (s *Service) ListUserCourses(ctx context.Context, sess model.Session, uid string) ([]model.Course, error) {
	traceID := traceOf(sess)
	if uid == "" {
		uid = sess.UserID
	}
	if uid == "" {
		return nil, apierr.Validation("user id is required")
	}
	courses, err := s.courses.ListCourses(ctx, uid)
	if err != nil {
		aerr := storeError(err, "course")
		s.logFailure(traceID, "ListUserCourses", "Failed to list courses", aerr, map[string]any{"userId": uid})
		return nil, aerr
	}
	return courses, nil
}

func (s *Service) ListAllCourses(ctx context.Context, sess model.Session) ([]model.Course, error) {
	traceID := traceOf(sess)
	courses, err := s.courses.ListCourses(ctx, "")
	if err != nil {
		aerr := storeError(err, "course")
		s.logFailure(traceID, "ListAllCourses", "Failed to list courses", aerr, nil)
		return nil, aerr
	}
	return courses, nil
}

func (s *Service) DeleteCourse(ctx context.Context, sess model.Session, courseID string) error {
	traceID := traceOf(sess)
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting DeleteCourse", map[string]any{
		"method":   "DeleteCourse",
		"courseId": courseID,
	}, "SERVICE", nil)
	if err := s.courses.DeleteCourse(ctx, courseID); err != nil {
		aerr := storeError(err, "course")
		s.logFailure(traceID, "DeleteCourse", "Failed to delete course", aerr, map[string]any{"courseId": courseID})
		return aerr
	}
	s.cacheDelete(ctx, traceID, courseKey(courseID), courseStatsKey)
	return nil
}

func (s *Service) UpdateProgress(ctx context.Context, sess model.Session, courseID string, progress float64) (*model.Course, error) {
	traceID := traceOf(sess)
	if progress < 0 || progress > 100 {
		return nil, apierr.Validation("progress must be between 0 and 100")
	}
	course, err := s.courses.UpdateProgress(ctx, courseID, progress)
	if err != nil {
		aerr := storeError(err, "course")
		s.logFailure(traceID, "UpdateProgress", "Failed to update progress", aerr, map[string]any{"courseId": courseID})
		return nil, aerr
	}
	s.cacheDelete(ctx, traceID, courseKey(courseID), courseStatsKey)
	return course, nil
}

func (s *Service) FinishCourse(ctx context.Context, sess model.Session, courseID string) (*model.Course, error) {
	traceID := traceOf(sess)
	course, err := s.courses.FinishCourse(ctx, courseID)
	if err != nil {
		aerr := storeError(err, "course")
		s.logFailure(traceID, "FinishCourse", "Failed to finish course", aerr, map[string]any{"courseId": courseID})
		return nil, aerr
	}
	s.cacheDelete(ctx, traceID, courseKey(courseID), courseStatsKey)
	s.logger.Log(zapcore.InfoLevel, traceID, "Course finished", map[string]any{
		"method":   "FinishCourse",
		"courseId": courseID,
	}, "SERVICE", nil)
	return course, nil
}

func (s *Service) CourseStats(ctx context.Context, sess model.Session) (model.CourseStats, error) {
	traceID := traceOf(sess)
	var stats model.CourseStats
	if s.cacheGet(ctx, traceID, courseStatsKey, &stats) {
		return stats, nil
	}
	stats, err := s.courses.CourseStats(ctx)
	if err != nil {
		aerr := storeError(err, "course")
		s.logFailure(traceID, "CourseStats", "Failed to count courses", aerr, nil)
		return stats, aerr
	}
	s.cacheSet(ctx, traceID, courseStatsKey, stats, 5*time.Minute)
	return stats, nil
}
