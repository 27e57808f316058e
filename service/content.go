package service

import (
	"context"
	"fmt"
	"strings"

	"coursegen/apierr"
	"coursegen/media"
	"coursegen/model"
	"coursegen/natsclient"
	"coursegen/utils"

	"go.uber.org/zap/zapcore"
)

// FallbackTheory replaces the theory of a subtopic whose generation failed.
const FallbackTheory = "### Error\nSorry, the AI could not generate content for this topic. Please try again later."

const videoCandidates = 5

type FillRequest struct {
	CourseID      string `json:"courseId"`
	TopicTitle    string `json:"topicTitle"`
	SubtopicTitle string `json:"subtopicTitle"`
}

type SubtopicFilledEvent struct {
	CourseID      string `json:"courseId"`
	UserID        string `json:"userId"`
	TopicTitle    string `json:"topicTitle"`
	SubtopicTitle string `json:"subtopicTitle"`
	HasVideo      bool   `json:"hasVideo"`
	Fallback      bool   `json:"fallback"`
}

func buildTheoryPrompt(subtopic, topic, language string) string {
	return fmt.Sprintf(`You are an expert instructor. Explain the subtopic %q, which is part of a course on %q, in %s.

Your response MUST be well-structured Markdown with these sections, each under a ## heading:
## Overview
## Why It Matters
## Core Concepts
## Code Example
## Key Takeaways

- Use ### subheadings for smaller parts.
- Use backticks for inline code such as package names or commands.
- Use fenced code blocks with a language identifier for every code sample.
- Use bold text to emphasize key terms.
- The explanation must be at least 400 words long.

Do not include a main title; start directly with the content.`, subtopic, topic, language)
}

// FillSubtopic populates one subtopic with a video (or image) and theory and
// marks it done. Neither lookup can fail the call: the video degrades to an
// empty id, the image to a placeholder and the theory to FallbackTheory.
// Already-done subtopics are filled again; callers gate on Done.
func (s *Service) FillSubtopic(ctx context.Context, sess model.Session, req FillRequest) (*model.Course, error) {
	traceID := traceOf(sess)
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting FillSubtopic", map[string]any{
		"method":        "FillSubtopic",
		"courseId":      req.CourseID,
		"topicTitle":    req.TopicTitle,
		"subtopicTitle": req.SubtopicTitle,
	}, "SERVICE", nil)

	if req.CourseID == "" || req.TopicTitle == "" || req.SubtopicTitle == "" {
		return nil, apierr.Validation("courseId, topicTitle and subtopicTitle are required")
	}
	course, err := s.courses.GetCourse(ctx, req.CourseID)
	if err != nil {
		aerr := storeError(err, "course")
		s.logFailure(traceID, "FillSubtopic", "Failed to load course", aerr, map[string]any{"courseId": req.CourseID})
		return nil, aerr
	}
	topic, subtopic := course.FindSubtopic(req.TopicTitle, req.SubtopicTitle)
	if topic == nil {
		return nil, apierr.NotFound("topic not found")
	}
	if subtopic == nil {
		return nil, apierr.NotFound("subtopic not found")
	}

	filled := *subtopic
	if course.Type == model.CourseTypeTextImage {
		filled.Image = s.findSubtopicImage(ctx, traceID, req.SubtopicTitle, req.TopicTitle)
	} else {
		filled.Youtube = s.findSubtopicVideo(ctx, traceID, req.SubtopicTitle, req.TopicTitle)
	}
	filled.Theory = s.generateTheory(ctx, sess, traceID, req.SubtopicTitle, req.TopicTitle, course.Language)
	filled.Done = true

	updated, err := s.courses.SetSubtopic(ctx, req.CourseID, req.TopicTitle, filled)
	if err != nil {
		aerr := storeError(err, "course")
		s.logFailure(traceID, "FillSubtopic", "Failed to persist subtopic", aerr, map[string]any{"courseId": req.CourseID})
		return nil, aerr
	}
	s.cacheDelete(ctx, traceID, courseKey(req.CourseID))

	s.publish(traceID, natsclient.SubjectSubtopicFilled, SubtopicFilledEvent{
		CourseID:      req.CourseID,
		UserID:        course.UserID,
		TopicTitle:    req.TopicTitle,
		SubtopicTitle: req.SubtopicTitle,
		HasVideo:      filled.Youtube != "",
		Fallback:      filled.Theory == FallbackTheory,
	})
	s.logger.Log(zapcore.InfoLevel, traceID, "Subtopic filled", map[string]any{
		"method":   "FillSubtopic",
		"courseId": req.CourseID,
		"video":    filled.Youtube,
	}, "SERVICE", nil)
	return updated, nil
}

// findSubtopicVideo returns the id of the candidate whose title is closest to
// "{subtopic} {topic}", or "" when the search fails or finds nothing.
func (s *Service) findSubtopicVideo(ctx context.Context, traceID, subtopic, topic string) string {
	if s.videos == nil {
		return ""
	}
	query := fmt.Sprintf("%s tutorial %s", subtopic, topic)
	candidates, err := s.videos.SearchVideos(ctx, query, videoCandidates)
	if err != nil {
		s.logger.Log(zapcore.WarnLevel, traceID, "Video search failed", map[string]any{
			"method":    "FillSubtopic",
			"query":     query,
			"errorType": "VIDEO_SEARCH_FAILED",
		}, "SERVICE", err)
		return ""
	}
	titles := make([]string, len(candidates))
	for i, c := range candidates {
		titles[i] = c.Title
	}
	best := utils.BestMatch(subtopic+" "+topic, titles)
	if best < 0 {
		return ""
	}
	return candidates[best].ID
}

func (s *Service) findSubtopicImage(ctx context.Context, traceID, subtopic, topic string) string {
	url, err := s.images.FindImage(ctx, subtopic+" "+topic)
	if err != nil || url == "" {
		s.logger.Log(zapcore.WarnLevel, traceID, "Image search failed", map[string]any{
			"method":    "FillSubtopic",
			"errorType": "IMAGE_SEARCH_FAILED",
		}, "SERVICE", err)
		return media.PlaceholderImage
	}
	return url
}

func (s *Service) generateTheory(ctx context.Context, sess model.Session, traceID, subtopic, topic, language string) string {
	if language == "" {
		language = utils.NormalizeLanguage("")
	}
	gen, err := s.generator(sess)
	if err == nil {
		var text string
		text, err = gen.GenerateText(ctx, buildTheoryPrompt(subtopic, topic, language))
		if err == nil && strings.TrimSpace(text) != "" {
			return text
		}
	}
	s.logger.Log(zapcore.WarnLevel, traceID, "Theory generation failed, using fallback", map[string]any{
		"method":    "FillSubtopic",
		"errorType": "THEORY_FALLBACK",
	}, "SERVICE", err)
	return FallbackTheory
}
