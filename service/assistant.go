package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"coursegen/ai"
	"coursegen/apierr"
	"coursegen/media"
	"coursegen/model"
	"coursegen/utils"

	"go.uber.org/zap/zapcore"
)

// Prompt forwards a free-form prompt and returns the raw text.
func (s *Service) Prompt(ctx context.Context, sess model.Session, prompt string) (string, error) {
	traceID := traceOf(sess)
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting Prompt", map[string]any{
		"method":     "Prompt",
		"userApiKey": sess.UserAPIKey != "",
	}, "SERVICE", nil)
	if strings.TrimSpace(prompt) == "" {
		return "", apierr.Validation("prompt is required")
	}
	gen, err := s.generator(sess)
	if err != nil {
		return "", ai.ClassifyError(err)
	}
	text, err := gen.GenerateText(ctx, prompt)
	if err != nil {
		aerr := ai.ClassifyError(err)
		s.logFailure(traceID, "Prompt", "AI provider failed", aerr, nil)
		return "", aerr
	}
	return text, nil
}

// Generate is Prompt with the Markdown reply rendered to HTML.
func (s *Service) Generate(ctx context.Context, sess model.Session, prompt string) (string, error) {
	text, err := s.Prompt(ctx, sess, prompt)
	if err != nil {
		return "", err
	}
	return s.renderHTML(sess, "Generate", text)
}

// Chat answers a learner's question, optionally grounded on the course they
// are reading.
func (s *Service) Chat(ctx context.Context, sess model.Session, courseTopic, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", apierr.Validation("prompt is required")
	}
	prompt := question
	if t := strings.TrimSpace(courseTopic); t != "" {
		prompt = "You are a helpful tutor for a course on \"" + t + "\". Answer in Markdown.\n\n" + question
	}
	text, err := s.Prompt(ctx, sess, prompt)
	if err != nil {
		return "", err
	}
	return s.renderHTML(sess, "Chat", text)
}

func (s *Service) renderHTML(sess model.Session, method, text string) (string, error) {
	html, err := utils.MarkdownToHTML(text)
	if err != nil {
		aerr := apierr.From(err)
		s.logFailure(traceOf(sess), method, "Failed to render markdown", aerr, nil)
		return "", aerr
	}
	return html, nil
}

// FindVideo returns the id of the best-matching video for query.
func (s *Service) FindVideo(ctx context.Context, sess model.Session, query string) (string, error) {
	traceID := traceOf(sess)
	if strings.TrimSpace(query) == "" {
		return "", apierr.Validation("prompt is required")
	}
	if s.videos == nil {
		return "", apierr.New(http.StatusServiceUnavailable, apierr.CodeAIProvider, errors.New("video search is not configured"))
	}
	candidates, err := s.videos.SearchVideos(ctx, query, videoCandidates)
	if err != nil {
		aerr := apierr.New(http.StatusBadGateway, apierr.CodeAIProvider, err)
		s.logFailure(traceID, "FindVideo", "Video search failed", aerr, nil)
		return "", aerr
	}
	titles := make([]string, len(candidates))
	for i, c := range candidates {
		titles[i] = c.Title
	}
	best := utils.BestMatch(query, titles)
	if best < 0 {
		return "", apierr.NotFound("no video found")
	}
	return candidates[best].ID, nil
}

// FindImage never fails; it degrades to a placeholder URL.
func (s *Service) FindImage(ctx context.Context, sess model.Session, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", apierr.Validation("prompt is required")
	}
	url, err := s.images.FindImage(ctx, query)
	if err != nil || url == "" {
		return media.PlaceholderImage, nil
	}
	return url, nil
}

func (s *Service) Transcript(ctx context.Context, sess model.Session, videoID string) ([]media.TranscriptLine, error) {
	traceID := traceOf(sess)
	if strings.TrimSpace(videoID) == "" {
		return nil, apierr.Validation("video id is required")
	}
	if s.transcripts == nil {
		return nil, apierr.NotFound("transcript not available")
	}
	lines, err := s.transcripts.FetchTranscript(ctx, videoID)
	if err != nil {
		s.logger.Log(zapcore.WarnLevel, traceID, "Transcript fetch failed", map[string]any{
			"method":    "Transcript",
			"videoId":   videoID,
			"errorType": apierr.CodeNotFound,
		}, "SERVICE", err)
		return nil, apierr.NotFound("transcript not available")
	}
	if len(lines) == 0 {
		return nil, apierr.NotFound("transcript not available")
	}
	return lines, nil
}
