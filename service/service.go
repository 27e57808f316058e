package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coursegen/ai"
	"coursegen/apierr"
	"coursegen/cache"
	"coursegen/logger"
	"coursegen/media"
	"coursegen/model"
	"coursegen/repository"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
)

type CourseStore interface {
	CreateCourse(ctx context.Context, course *model.Course) error
	GetCourse(ctx context.Context, courseID string) (*model.Course, error)
	ListCourses(ctx context.Context, userID string) ([]model.Course, error)
	DeleteCourse(ctx context.Context, courseID string) error
	UpdateProgress(ctx context.Context, courseID string, progress float64) (*model.Course, error)
	FinishCourse(ctx context.Context, courseID string) (*model.Course, error)
	SetSubtopic(ctx context.Context, courseID, topicTitle string, st model.Subtopic) (*model.Course, error)
	CourseStats(ctx context.Context) (model.CourseStats, error)
}

type TrackStore interface {
	GetTrackUser(ctx context.Context, uid string) (*model.TrackUser, error)
	ListTrackUsers(ctx context.Context) ([]model.TrackUser, error)
	AppendDailyPerformance(ctx context.Context, uid, email string, sample model.DailyPerformance) error
	SaveStreak(ctx context.Context, uid string, samples []model.DailyPerformance, state model.StreakState) error
	AllPerformance(ctx context.Context) ([]model.UserPerformanceSummary, error)
}

type TemplateStore interface {
	SearchTemplates(ctx context.Context, phrase string, limit int64) ([]model.ProjectTemplate, error)
	ListTemplates(ctx context.Context, limit int64) ([]model.ProjectTemplate, error)
	InsertTemplates(ctx context.Context, templates []model.ProjectTemplate) (int, error)
	AssignTemplate(ctx context.Context, templateID string, a model.Assignment) (*model.ProjectTemplate, error)
}

type ProjectStore interface {
	CreateUserProject(ctx context.Context, p *model.UserProject) error
	ListUserProjects(ctx context.Context, uid string) ([]model.UserProject, error)
	UpdateUserProject(ctx context.Context, projectID string, patch model.UserProjectPatch) (*model.UserProject, error)
	DeleteUserProject(ctx context.Context, projectID string) error
}

type QuizStore interface {
	SaveQuizResult(ctx context.Context, q *model.QuizResult) error
	ListQuizResults(ctx context.Context, uid string) ([]model.QuizResult, error)
}

// EventPublisher is satisfied by the NATS client.
type EventPublisher interface {
	PublishJSON(subject string, v any) error
}

// Deps lists everything the service talks to. Only the stores are required;
// a nil collaborator turns its feature into a graceful fallback.
type Deps struct {
	Courses   CourseStore
	Tracks    TrackStore
	Templates TemplateStore
	Projects  ProjectStore
	Quizzes   QuizStore

	Cache  cache.Cache
	Events EventPublisher

	AI        ai.TextGenerator
	AIWithKey func(apiKey string) (ai.TextGenerator, error)

	Videos      media.VideoSearcher
	Images      media.ImageSource
	Covers      media.ImageSource
	Transcripts media.TranscriptFetcher

	Logger *logger.Logger
	Now    func() time.Time
}

type Service struct {
	courses   CourseStore
	tracks    TrackStore
	templates TemplateStore
	projects  ProjectStore
	quizzes   QuizStore

	cache  cache.Cache
	events EventPublisher

	ai        ai.TextGenerator
	aiWithKey func(apiKey string) (ai.TextGenerator, error)

	videos      media.VideoSearcher
	images      media.ImageSource
	covers      media.ImageSource
	transcripts media.TranscriptFetcher

	logger *logger.Logger
	now    func() time.Time
}

func NewService(d Deps) *Service {
	s := &Service{
		courses:     d.Courses,
		tracks:      d.Tracks,
		templates:   d.Templates,
		projects:    d.Projects,
		quizzes:     d.Quizzes,
		cache:       d.Cache,
		events:      d.Events,
		ai:          d.AI,
		aiWithKey:   d.AIWithKey,
		videos:      d.Videos,
		images:      d.Images,
		covers:      d.Covers,
		transcripts: d.Transcripts,
		logger:      d.Logger,
		now:         d.Now,
	}
	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.images == nil {
		s.images = media.NewImageFinder(media.PlaceholderImage)
	}
	if s.covers == nil {
		s.covers = media.NewImageFinder(media.PlaceholderCourseImage)
	}
	s.logger.Log(zapcore.InfoLevel, uuid.New().String(), "CourseService initialized", map[string]any{
		"method":         "NewService",
		"aiConfigured":   s.ai != nil,
		"videoSearch":    s.videos != nil,
		"eventPublisher": s.events != nil,
	}, "SERVICE", nil)
	return s
}

var errMissingUser = errors.New("missing user identity")

func traceOf(sess model.Session) string {
	if sess.TraceID != "" {
		return sess.TraceID
	}
	return uuid.New().String()
}

// generator picks the text generator for a request, preferring the caller's
// own API key when one was supplied.
func (s *Service) generator(sess model.Session) (ai.TextGenerator, error) {
	if sess.UserAPIKey != "" && s.aiWithKey != nil {
		return s.aiWithKey(sess.UserAPIKey)
	}
	if s.ai == nil {
		return nil, ai.ErrUnavailable
	}
	return s.ai, nil
}

func (s *Service) aiAvailable(sess model.Session) bool {
	_, err := s.generator(sess)
	return err == nil
}

// storeError maps repository failures onto service errors.
func storeError(err error, what string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apierr.NotFound(what + " not found")
	case errors.Is(err, repository.ErrInvalidID):
		return apierr.Validation(fmt.Sprintf("invalid %s id", what))
	default:
		return apierr.DB(err)
	}
}

func (s *Service) logFailure(traceID, method, msg string, err error, fields map[string]any) {
	f := map[string]any{"method": method, "errorType": apierr.From(err).Code}
	for k, v := range fields {
		f[k] = v
	}
	s.logger.Log(zapcore.ErrorLevel, traceID, msg, f, "SERVICE", err)
}

func (s *Service) publish(traceID, subject string, v any) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(subject, v); err != nil {
		s.logger.Log(zapcore.WarnLevel, traceID, "Failed to publish event", map[string]any{
			"subject":   subject,
			"errorType": "EVENT_PUBLISH_FAILED",
		}, "SERVICE", err)
	}
}

func (s *Service) cacheGet(ctx context.Context, traceID, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, found, err := s.cache.Get(ctx, key)
	if err != nil || !found {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Log(zapcore.WarnLevel, traceID, "Failed to unmarshal cached value", map[string]any{
			"cacheKey":  key,
			"errorType": "CACHE_DECODE_FAILED",
		}, "SERVICE", err)
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, traceID, key string, v any, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		s.logger.Log(zapcore.WarnLevel, traceID, "Failed to cache value", map[string]any{
			"cacheKey":  key,
			"errorType": "CACHE_SET_FAILED",
		}, "SERVICE", err)
	}
}

func (s *Service) cacheDelete(ctx context.Context, traceID string, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Log(zapcore.WarnLevel, traceID, "Failed to invalidate cache", map[string]any{
			"cacheKeys": keys,
			"errorType": "CACHE_DELETE_FAILED",
		}, "SERVICE", err)
	}
}

// untilMidnight is the TTL for values that roll over with the calendar day.
func untilMidnight(now time.Time) time.Duration {
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}
