package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"coursegen/ai"
	"coursegen/apierr"
	"coursegen/model"
	"coursegen/utils"

	"go.uber.org/zap/zapcore"
)

const (
	quizQuestions = 10
	quizOptions   = 4
)

var errNoTopicsCompleted = errors.New("no topics have been completed yet")

func buildQuizPrompt(mainTopic string, completed []string) string {
	return fmt.Sprintf(`Generate a %d-question multiple-choice quiz for the course %q. The user has only completed the following topics: %s.

Please ensure ALL questions are based ONLY on these topics.

Format the response as a valid JSON array of objects. Each object must have a "question" (string), "options" (array of %d strings), and "answer" (string that matches one of the options exactly).`,
		quizQuestions, mainTopic, strings.Join(completed, ", "), quizOptions)
}

// GenerateQuiz builds a quiz scoped to the course's done subtopics. A course
// with nothing done fails before the provider is called.
func (s *Service) GenerateQuiz(ctx context.Context, sess model.Session, courseID string) ([]model.QuizQuestion, error) {
	traceID := traceOf(sess)
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting GenerateQuiz", map[string]any{
		"method":   "GenerateQuiz",
		"courseId": courseID,
	}, "SERVICE", nil)

	if courseID == "" {
		return nil, apierr.Validation("courseId is required")
	}
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		aerr := storeError(err, "course")
		s.logFailure(traceID, "GenerateQuiz", "Failed to load course", aerr, map[string]any{"courseId": courseID})
		return nil, aerr
	}
	completed := course.CompletedSubtopics()
	if len(completed) == 0 {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeNoTopicsCompleted, errNoTopicsCompleted)
	}

	gen, err := s.generator(sess)
	if err != nil {
		return nil, ai.ClassifyError(err)
	}
	text, err := gen.GenerateText(ctx, buildQuizPrompt(course.MainTopic, completed))
	if err != nil {
		aerr := ai.ClassifyError(err)
		s.logFailure(traceID, "GenerateQuiz", "AI provider failed", aerr, nil)
		return nil, aerr
	}

	raw, err := utils.ExtractJSON(utils.StripCodeFences(text))
	if err != nil {
		aerr := apierr.InvalidAIOutput(err)
		s.logFailure(traceID, "GenerateQuiz", "Quiz response is not JSON", aerr, nil)
		return nil, aerr
	}
	var questions []model.QuizQuestion
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		aerr := apierr.InvalidAIOutput(err)
		s.logFailure(traceID, "GenerateQuiz", "Quiz response has the wrong shape", aerr, nil)
		return nil, aerr
	}

	valid, dropped := NormalizeQuiz(questions)
	if dropped > 0 {
		s.logger.Log(zapcore.WarnLevel, traceID, "Dropped quiz questions with unmatched answers", map[string]any{
			"method":  "GenerateQuiz",
			"dropped": dropped,
		}, "SERVICE", nil)
	}
	if len(valid) == 0 {
		aerr := apierr.InvalidAIOutput(errors.New("no question has an answer matching its options"))
		s.logFailure(traceID, "GenerateQuiz", "Quiz has no usable questions", aerr, nil)
		return nil, aerr
	}
	return valid, nil
}

// NormalizeQuiz trims every field and rewrites each answer to the option it
// matches, ignoring case and surrounding whitespace. Questions whose answer
// matches no option, or that have no question text, are dropped.
func NormalizeQuiz(questions []model.QuizQuestion) ([]model.QuizQuestion, int) {
	out := make([]model.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		q.Question = strings.TrimSpace(q.Question)
		options := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			if o = strings.TrimSpace(o); o != "" {
				options = append(options, o)
			}
		}
		q.Options = options
		answer := strings.TrimSpace(q.Answer)
		matched := ""
		for _, o := range options {
			if strings.EqualFold(o, answer) {
				matched = o
				break
			}
		}
		if q.Question == "" || matched == "" {
			continue
		}
		q.Answer = matched
		out = append(out, q)
	}
	return out, len(questions) - len(out)
}

func (s *Service) SaveQuizResult(ctx context.Context, sess model.Session, courseID string, score float64) (*model.QuizResult, error) {
	traceID := traceOf(sess)
	if err := requireUser(sess); err != nil {
		return nil, err
	}
	if courseID == "" {
		return nil, apierr.Validation("courseId is required")
	}
	if score < 0 {
		return nil, apierr.Validation("score must not be negative")
	}
	result := &model.QuizResult{UserID: sess.UserID, CourseID: courseID, Score: score}
	if err := s.quizzes.SaveQuizResult(ctx, result); err != nil {
		aerr := storeError(err, "quiz result")
		s.logFailure(traceID, "SaveQuizResult", "Failed to save quiz result", aerr, nil)
		return nil, aerr
	}
	s.cacheDelete(ctx, traceID, allPerformanceKey)
	return result, nil
}

func (s *Service) ListQuizResults(ctx context.Context, sess model.Session, uid string) ([]model.QuizResult, error) {
	traceID := traceOf(sess)
	if uid == "" {
		uid = sess.UserID
	}
	if uid == "" {
		return nil, apierr.Validation("user id is required")
	}
	results, err := s.quizzes.ListQuizResults(ctx, uid)
	if err != nil {
		aerr := storeError(err, "quiz result")
		s.logFailure(traceID, "ListQuizResults", "Failed to list quiz results", aerr, nil)
		return nil, aerr
	}
	return results, nil
}
