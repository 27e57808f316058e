package service

import (
	"context"
	"fmt"
	"testing"

	"coursegen/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func templates(n int, prefix string) []model.ProjectTemplate {
	out := make([]model.ProjectTemplate, n)
	for i := range out {
		out[i] = model.ProjectTemplate{ID: primitive.NewObjectID(), Title: fmt.Sprintf("%s %d", prefix, i)}
	}
	return out
}

func TestSuggestionsEmptyMatchesNoAI(t *testing.T) {
	store := &fakeTemplates{all: templates(80, "Template")}
	svc := newTestService(t, Deps{Templates: store})

	res, err := svc.ResolveSuggestions(context.Background(), model.Session{}, "quantum basket weaving")
	require.NoError(t, err)
	assert.Len(t, res.Templates, 50)
	assert.Equal(t, "Template 0", res.Templates[0].Title)
	assert.Equal(t, SourceDBFallback, res.Source)
	assert.Equal(t, noteAIUnavailable, res.Note)
}

func TestSuggestionsEmptyStore(t *testing.T) {
	svc := newTestService(t, Deps{Templates: &fakeTemplates{}})
	res, err := svc.ResolveSuggestions(context.Background(), model.Session{}, "go")
	require.NoError(t, err)
	assert.Empty(t, res.Templates)
}

func TestSuggestionsEnoughDBMatches(t *testing.T) {
	gen := &fakeGen{}
	store := &fakeTemplates{matches: templates(3, "Go")}
	svc := newTestService(t, Deps{Templates: store, AI: gen})

	res, err := svc.ResolveSuggestions(context.Background(), model.Session{}, "go")
	require.NoError(t, err)
	assert.Equal(t, SourceDB, res.Source)
	assert.Len(t, res.Templates, 3)
	assert.Empty(t, gen.prompts)
}

func TestSuggestionsWeakMatchesWithoutAI(t *testing.T) {
	store := &fakeTemplates{matches: templates(1, "Go"), all: templates(10, "Other")}
	svc := newTestService(t, Deps{Templates: store})

	res, err := svc.ResolveSuggestions(context.Background(), model.Session{}, "go")
	require.NoError(t, err)
	assert.Equal(t, SourceDB, res.Source)
	assert.Len(t, res.Templates, 1)
}

func TestSuggestionsAIEvaluation(t *testing.T) {
	all := templates(5, "Candidate")
	gen := &fakeGen{replies: []string{`{"evaluations":[
		{"projectIndex":0,"score":9},{"projectIndex":1,"score":3},
		{"projectIndex":2,"score":7},{"projectIndex":4,"score":8},{"projectIndex":42,"score":10}
	]}`}}
	svc := newTestService(t, Deps{Templates: &fakeTemplates{all: all}, AI: gen})

	res, err := svc.ResolveSuggestions(context.Background(), model.Session{}, "rust")
	require.NoError(t, err)
	assert.Equal(t, SourceAIEvaluated, res.Source)
	assert.Equal(t, []model.ProjectTemplate{all[0], all[2], all[4]}, res.Templates)
	assert.Contains(t, gen.prompts[0], "INDEX:4 TITLE:Candidate 4")
}

func TestSuggestionsAIGeneration(t *testing.T) {
	store := &fakeTemplates{all: templates(2, "Candidate")}
	gen := &fakeGen{replies: []string{
		`{"evaluations":[{"projectIndex":0,"score":9}]}`,
		"```json\n" + `[{"title":"CLI todo app","technologies":["Rust","clap"]},{"description":"no title"}]` + "\n```",
	}}
	svc := newTestService(t, Deps{Templates: store, AI: gen})

	res, err := svc.ResolveSuggestions(context.Background(), model.Session{}, "rust")
	require.NoError(t, err)
	assert.Equal(t, SourceAIGenerated, res.Source)
	require.Len(t, res.Templates, 2)
	assert.Equal(t, "CLI todo app", res.Templates[0].Title)
	assert.Equal(t, "rust Project", res.Templates[1].Title)
	assert.Equal(t, "General", res.Templates[1].Category)
	assert.Equal(t, "Intermediate", res.Templates[1].Difficulty)
	assert.Equal(t, "rust", res.Templates[0].MainTopic)
	assert.Len(t, store.inserted, 2)
	for _, tpl := range res.Templates {
		assert.False(t, tpl.ID.IsZero(), "generated templates can be assigned")
	}
}

func TestSuggestionsAIFailsFallsBackToMatches(t *testing.T) {
	store := &fakeTemplates{matches: templates(2, "Weak"), all: templates(10, "Other")}
	svc := newTestService(t, Deps{Templates: store, AI: &fakeGen{replies: []string{"garbage", "more garbage"}}})

	res, err := svc.ResolveSuggestions(context.Background(), model.Session{}, "go")
	require.NoError(t, err)
	assert.Equal(t, SourceDBFallback, res.Source)
	assert.Equal(t, noteNoStrongMatch, res.Note)
	assert.Len(t, res.Templates, 2)
}

func TestAssignTemplateIsIdempotent(t *testing.T) {
	store := &fakeTemplates{}
	svc := newTestService(t, Deps{Templates: store})
	sess := model.Session{UserID: "u1"}

	for i := 0; i < 2; i++ {
		_, err := svc.AssignTemplate(context.Background(), sess, "t1", "", "My take")
		require.NoError(t, err)
	}
	assert.Equal(t, []model.Assignment{{UserID: "u1", Title: "My take"}}, store.assigned)
}
