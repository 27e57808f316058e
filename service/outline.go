package service

import (
	"context"
	"fmt"
	"strings"

	"coursegen/ai"
	"coursegen/apierr"
	"coursegen/model"
	"coursegen/utils"

	"go.uber.org/zap/zapcore"
)

const maxOutlineSubtopics = 5

type OutlineRequest struct {
	MainTopic string   `json:"mainTopic"`
	Subtopics []string `json:"subtopics"`
	Language  string   `json:"language"`
	Type      string   `json:"type"`
}

type Outline struct {
	MainTopic string        `json:"mainTopic"`
	Language  string        `json:"language"`
	Topics    []model.Topic `json:"topics"`
}

func buildOutlinePrompt(mainTopic string, subtopics []string, language string) string {
	key := strings.ToLower(mainTopic)
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a structured course outline on %q in %s.\n", mainTopic, language)
	if len(subtopics) > 0 {
		fmt.Fprintf(&b, "The outline must cover these subtopics: %s.\n", strings.Join(subtopics, ", "))
	}
	b.WriteString("Order the topics from fundamentals to advanced material.\n")
	b.WriteString("Respond ONLY with a single valid JSON object in exactly this shape, with no commentary:\n")
	fmt.Fprintf(&b, `{"%s": [{"title": "Topic title", "subtopics": [{"title": "Subtopic title", "theory": "", "youtube": "", "image": "", "done": false}]}]}`, key)
	b.WriteString("\nLeave theory, youtube and image empty and done false for every subtopic.")
	return b.String()
}

// GenerateOutline asks the text provider for a course skeleton. Unparseable
// output is reported as INVALID_AI_OUTPUT; the caller decides whether to retry.
func (s *Service) GenerateOutline(ctx context.Context, sess model.Session, req OutlineRequest) (*Outline, error) {
	traceID := traceOf(sess)
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting GenerateOutline", map[string]any{
		"method":    "GenerateOutline",
		"mainTopic": req.MainTopic,
	}, "SERVICE", nil)

	mainTopic := strings.TrimSpace(req.MainTopic)
	if mainTopic == "" {
		return nil, apierr.Validation("mainTopic is required")
	}
	var subtopics []string
	for _, st := range req.Subtopics {
		if st = strings.TrimSpace(st); st != "" {
			subtopics = append(subtopics, st)
		}
	}
	if len(subtopics) > maxOutlineSubtopics {
		return nil, apierr.Validation(fmt.Sprintf("at most %d subtopics are allowed", maxOutlineSubtopics))
	}
	language := utils.NormalizeLanguage(req.Language)

	gen, err := s.generator(sess)
	if err != nil {
		aerr := ai.ClassifyError(err)
		s.logFailure(traceID, "GenerateOutline", "AI provider unavailable", aerr, nil)
		return nil, aerr
	}
	text, err := gen.GenerateText(ctx, buildOutlinePrompt(mainTopic, subtopics, language))
	if err != nil {
		aerr := ai.ClassifyError(err)
		s.logFailure(traceID, "GenerateOutline", "AI provider failed", aerr, nil)
		return nil, aerr
	}

	raw, err := utils.ExtractJSON(utils.StripCodeFences(text))
	if err != nil {
		aerr := apierr.InvalidAIOutput(err)
		s.logFailure(traceID, "GenerateOutline", "Outline response is not JSON", aerr, nil)
		return nil, aerr
	}
	topics, err := model.ParseOutline([]byte(raw), mainTopic)
	if err != nil {
		aerr := apierr.InvalidAIOutput(err)
		s.logFailure(traceID, "GenerateOutline", "Outline response has the wrong shape", aerr, nil)
		return nil, aerr
	}

	outline := &Outline{MainTopic: mainTopic, Language: language, Topics: model.ResetContent(topics)}
	s.logger.Log(zapcore.InfoLevel, traceID, "Outline generated", map[string]any{
		"method": "GenerateOutline",
		"topics": len(outline.Topics),
	}, "SERVICE", nil)
	return outline, nil
}
