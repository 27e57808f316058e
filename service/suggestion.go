package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"coursegen/apierr"
	"coursegen/model"
	"coursegen/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zapcore"
)

const (
	suggestionMatchLimit  = 200
	suggestionEvalLimit   = 20
	suggestionFallback    = 50
	suggestionMinResults  = 3
	suggestionMinScore    = 7
	suggestionMaxGenerate = 6
	suggestionCacheTTL    = 10 * time.Minute

	SourceDB          = "db"
	SourceAIEvaluated = "ai-evaluated"
	SourceAIGenerated = "ai-generated"
	SourceDBFallback  = "db-fallback"

	noteAIUnavailable = "AI unavailable, returned DB templates."
	noteNoStrongMatch = "AI returned no strong results; falling back to DB templates."
)

func suggestionKey(topic string) string {
	return "suggestions:" + strings.ToLower(strings.TrimSpace(topic))
}

// suggestionState is shared by the strategies of one resolution.
type suggestionState struct {
	sess    model.Session
	traceID string
	topic   string
	aiOK    bool
	matches []model.ProjectTemplate
}

// suggestionStrategy either settles the result or reports it could not.
type suggestionStrategy struct {
	name string
	run  func(ctx context.Context, st *suggestionState) (*model.SuggestionResult, error)
}

func (s *Service) suggestionChain() []suggestionStrategy {
	return []suggestionStrategy{
		{name: "dbMatch", run: s.suggestFromDB},
		{name: "aiEvaluate", run: s.suggestByEvaluation},
		{name: "aiGenerate", run: s.suggestByGeneration},
		{name: "dbFallback", run: s.suggestFallback},
	}
}

// ResolveSuggestions finds project templates for a topic by trying the
// strategies in order until one is satisfied.
func (s *Service) ResolveSuggestions(ctx context.Context, sess model.Session, topic string) (*model.SuggestionResult, error) {
	traceID := traceOf(sess)
	topic = strings.TrimSpace(topic)
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting ResolveSuggestions", map[string]any{
		"method": "ResolveSuggestions",
		"topic":  topic,
	}, "SERVICE", nil)

	var cached model.SuggestionResult
	if topic != "" && s.cacheGet(ctx, traceID, suggestionKey(topic), &cached) {
		return &cached, nil
	}

	st := &suggestionState{sess: sess, traceID: traceID, topic: topic, aiOK: s.aiAvailable(sess)}
	for _, strategy := range s.suggestionChain() {
		result, err := strategy.run(ctx, st)
		if err != nil {
			s.logFailure(traceID, "ResolveSuggestions", "Suggestion strategy failed", err, map[string]any{"strategy": strategy.name})
			return nil, err
		}
		if result == nil {
			s.logger.Log(zapcore.DebugLevel, traceID, "Suggestion strategy insufficient", map[string]any{
				"method":   "ResolveSuggestions",
				"strategy": strategy.name,
			}, "SERVICE", nil)
			continue
		}
		if topic != "" && result.Source != SourceDBFallback {
			s.cacheSet(ctx, traceID, suggestionKey(topic), result, suggestionCacheTTL)
		}
		s.logger.Log(zapcore.InfoLevel, traceID, "Suggestions resolved", map[string]any{
			"method":   "ResolveSuggestions",
			"strategy": strategy.name,
			"count":    len(result.Templates),
		}, "SERVICE", nil)
		return result, nil
	}
	return &model.SuggestionResult{Templates: []model.ProjectTemplate{}, Source: SourceDBFallback}, nil
}

func (s *Service) suggestFromDB(ctx context.Context, st *suggestionState) (*model.SuggestionResult, error) {
	if st.topic == "" {
		return nil, nil
	}
	matches, err := s.templates.SearchTemplates(ctx, st.topic, suggestionMatchLimit)
	if err != nil {
		return nil, storeError(err, "template")
	}
	st.matches = matches
	if len(matches) >= suggestionMinResults || (!st.aiOK && len(matches) > 0) {
		return &model.SuggestionResult{Templates: matches, Source: SourceDB}, nil
	}
	return nil, nil
}

type templateEvaluation struct {
	Evaluations []struct {
		ProjectIndex int     `json:"projectIndex"`
		Score        float64 `json:"score"`
	} `json:"evaluations"`
}

func buildEvaluationPrompt(topic string, candidates []model.ProjectTemplate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I have a topic: %q and a list of projects. For each project return JSON with { \"projectIndex\": i, \"score\": 0-10 } rating how relevant it is to the topic.\nProjects:\n", topic)
	for i, p := range candidates {
		fmt.Fprintf(&b, "INDEX:%d TITLE:%s CATEGORY:%s TECH:%s\n", i, p.Title, p.Category, strings.Join(p.Technologies, ","))
	}
	b.WriteString(`Respond ONLY with valid JSON: { "evaluations": [{ "projectIndex": 0, "score": 8 }] }`)
	return b.String()
}

// suggestByEvaluation lets the provider score the weak matches plus a sample
// of the store, keeping the templates that score high enough.
func (s *Service) suggestByEvaluation(ctx context.Context, st *suggestionState) (*model.SuggestionResult, error) {
	if !st.aiOK || st.topic == "" {
		return nil, nil
	}
	sample, err := s.templates.ListTemplates(ctx, suggestionEvalLimit)
	if err != nil {
		return nil, storeError(err, "template")
	}
	candidates := mergeTemplates(st.matches, sample, suggestionEvalLimit)
	if len(candidates) == 0 {
		return nil, nil
	}

	gen, err := s.generator(st.sess)
	if err != nil {
		return nil, nil
	}
	text, err := gen.GenerateText(ctx, buildEvaluationPrompt(st.topic, candidates))
	if err != nil {
		s.logger.Log(zapcore.WarnLevel, st.traceID, "Template evaluation failed", map[string]any{
			"method":    "ResolveSuggestions",
			"errorType": apierr.CodeAIProvider,
		}, "SERVICE", err)
		return nil, nil
	}
	raw, err := utils.ExtractJSON(text)
	if err != nil {
		return nil, nil
	}
	var eval templateEvaluation
	if err := json.Unmarshal([]byte(raw), &eval); err != nil {
		return nil, nil
	}

	seen := map[int]bool{}
	var relevant []model.ProjectTemplate
	for _, e := range eval.Evaluations {
		if e.Score < suggestionMinScore || e.ProjectIndex < 0 || e.ProjectIndex >= len(candidates) || seen[e.ProjectIndex] {
			continue
		}
		seen[e.ProjectIndex] = true
		relevant = append(relevant, candidates[e.ProjectIndex])
	}
	if len(relevant) >= suggestionMinResults {
		return &model.SuggestionResult{Templates: relevant, Source: SourceAIEvaluated}, nil
	}
	return nil, nil
}

type generatedTemplate struct {
	Title              string   `json:"title"`
	MainTopic          string   `json:"mainTopic"`
	Category           string   `json:"category"`
	Description        string   `json:"description"`
	Difficulty         string   `json:"difficulty"`
	TimeEstimate       string   `json:"timeEstimate"`
	LearningObjectives []string `json:"learningObjectives"`
	Deliverables       []string `json:"deliverables"`
	Technologies       []string `json:"technologies"`
}

func buildGenerationPrompt(topic string) string {
	return fmt.Sprintf(`Generate up to %d hands-on project templates for the exact topic: %q.
Output must be a valid JSON array of objects: each object { "title", "mainTopic", "category", "description", "difficulty", "timeEstimate", "learningObjectives": [], "deliverables": [], "technologies": [] }.
Use technologies only relevant to the topic.`, suggestionMaxGenerate, topic)
}

// suggestByGeneration synthesizes new templates and stores them best effort.
func (s *Service) suggestByGeneration(ctx context.Context, st *suggestionState) (*model.SuggestionResult, error) {
	if !st.aiOK || st.topic == "" {
		return nil, nil
	}
	gen, err := s.generator(st.sess)
	if err != nil {
		return nil, nil
	}
	text, err := gen.GenerateText(ctx, buildGenerationPrompt(st.topic))
	if err != nil {
		s.logger.Log(zapcore.WarnLevel, st.traceID, "Template generation failed", map[string]any{
			"method":    "ResolveSuggestions",
			"errorType": apierr.CodeAIProvider,
		}, "SERVICE", err)
		return nil, nil
	}
	raw, err := utils.ExtractJSON(text)
	if err != nil {
		return nil, nil
	}
	var generated []generatedTemplate
	if err := json.Unmarshal([]byte(raw), &generated); err != nil || len(generated) == 0 {
		return nil, nil
	}
	if len(generated) > suggestionMaxGenerate {
		generated = generated[:suggestionMaxGenerate]
	}

	templates := make([]model.ProjectTemplate, 0, len(generated))
	for _, g := range generated {
		templates = append(templates, g.toTemplate(st.topic))
	}
	if n, err := s.templates.InsertTemplates(ctx, templates); err != nil {
		s.logger.Log(zapcore.WarnLevel, st.traceID, "Failed to save generated templates", map[string]any{
			"method":    "ResolveSuggestions",
			"inserted":  n,
			"errorType": apierr.CodeDB,
		}, "SERVICE", err)
	}
	return &model.SuggestionResult{Templates: templates, Source: SourceAIGenerated}, nil
}

func (g generatedTemplate) toTemplate(topic string) model.ProjectTemplate {
	t := model.ProjectTemplate{
		MainTopic:          orDefault(g.MainTopic, topic),
		Title:              orDefault(g.Title, topic+" Project"),
		Category:           orDefault(g.Category, "General"),
		Description:        strings.TrimSpace(g.Description),
		Difficulty:         orDefault(g.Difficulty, "Intermediate"),
		Time:               orDefault(g.TimeEstimate, "3-7 days"),
		LearningObjectives: g.LearningObjectives,
		Deliverables:       g.Deliverables,
		Technologies:       g.Technologies,
		AssignedTo:         []model.Assignment{},
	}
	if t.Technologies == nil {
		t.Technologies = []string{}
	}
	return t
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// suggestFallback always settles: weak matches if there were any, otherwise
// the first templates in the store.
func (s *Service) suggestFallback(ctx context.Context, st *suggestionState) (*model.SuggestionResult, error) {
	note := noteNoStrongMatch
	if !st.aiOK {
		note = noteAIUnavailable
	}
	if len(st.matches) > 0 {
		return &model.SuggestionResult{Templates: st.matches, Source: SourceDBFallback, Note: note}, nil
	}
	all, err := s.templates.ListTemplates(ctx, suggestionFallback)
	if err != nil {
		return nil, storeError(err, "template")
	}
	return &model.SuggestionResult{Templates: all, Source: SourceDBFallback, Note: note}, nil
}

func mergeTemplates(first, rest []model.ProjectTemplate, limit int) []model.ProjectTemplate {
	seen := make(map[primitive.ObjectID]bool, len(first)+len(rest))
	out := make([]model.ProjectTemplate, 0, limit)
	for _, list := range [][]model.ProjectTemplate{first, rest} {
		for _, t := range list {
			if len(out) >= limit {
				return out
			}
			if !t.ID.IsZero() && seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) ListTemplates(ctx context.Context, sess model.Session) ([]model.ProjectTemplate, error) {
	traceID := traceOf(sess)
	templates, err := s.templates.ListTemplates(ctx, 0)
	if err != nil {
		aerr := storeError(err, "template")
		s.logFailure(traceID, "ListTemplates", "Failed to list templates", aerr, nil)
		return nil, aerr
	}
	return templates, nil
}

// AssignTemplate records that uid picked a template. Repeating the same
// assignment is a no-op.
func (s *Service) AssignTemplate(ctx context.Context, sess model.Session, templateID, uid, title string) (*model.ProjectTemplate, error) {
	traceID := traceOf(sess)
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting AssignTemplate", map[string]any{
		"method":     "AssignTemplate",
		"templateId": templateID,
	}, "SERVICE", nil)
	if uid == "" {
		uid = sess.UserID
	}
	if templateID == "" || uid == "" {
		return nil, apierr.Validation("templateId and user id are required")
	}
	tpl, err := s.templates.AssignTemplate(ctx, templateID, model.Assignment{UserID: uid, Title: strings.TrimSpace(title)})
	if err != nil {
		aerr := storeError(err, "template")
		s.logFailure(traceID, "AssignTemplate", "Failed to assign template", aerr, map[string]any{"templateId": templateID})
		return nil, aerr
	}
	return tpl, nil
}
