package service

import (
	"context"
	"testing"

	"coursegen/apierr"
	"coursegen/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQuizNoCompletedTopics(t *testing.T) {
	course := sampleCourse()
	gen := &fakeGen{}
	svc := newTestService(t, Deps{Courses: newFakeCourses(course), AI: gen})

	_, err := svc.GenerateQuiz(context.Background(), model.Session{}, course.ID.Hex())
	assert.Equal(t, apierr.CodeNoTopicsCompleted, apierr.From(err).Code)
	assert.Empty(t, gen.prompts)
}

func TestGenerateQuizScopesToDoneSubtopics(t *testing.T) {
	course := sampleCourse()
	course.Topics[0].Subtopics[1].Done = true
	course.Topics[1].Subtopics[0].Done = true
	gen := &fakeGen{replies: []string{"```json\n" + `[
		{"question":"What does range iterate?","options":["Slices","Nothing","Files","Ports"],"answer":" slices "},
		{"question":"Unbuffered channel send blocks until?","options":["A receive","Never","GC","Exit"],"answer":"A receive"},
		{"question":"Bad one","options":["a","b","c","d"],"answer":"e"}
	]` + "\n```"}}
	svc := newTestService(t, Deps{Courses: newFakeCourses(course), AI: gen})

	qs, err := svc.GenerateQuiz(context.Background(), model.Session{}, course.ID.Hex())
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "Slices", qs[0].Answer)
	assert.Equal(t, "A receive", qs[1].Answer)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Loops, Channels")
	assert.NotContains(t, gen.prompts[0], "Variables")
}

func TestGenerateQuizInvalidOutput(t *testing.T) {
	course := sampleCourse()
	course.Topics[0].Subtopics[0].Done = true

	for _, reply := range []string{"sorry, I cannot", `[{"question":"q","options":["a"],"answer":"b"}]`} {
		svc := newTestService(t, Deps{Courses: newFakeCourses(course), AI: &fakeGen{replies: []string{reply}}})
		_, err := svc.GenerateQuiz(context.Background(), model.Session{}, course.ID.Hex())
		ae := apierr.From(err)
		assert.Equal(t, apierr.CodeInvalidAIOutput, ae.Code)
		assert.True(t, ae.Retryable())
	}
}

func TestNormalizeQuiz(t *testing.T) {
	in := []model.QuizQuestion{
		{Question: " Q1 ", Options: []string{" A ", "B", "", "C"}, Answer: "a"},
		{Question: "", Options: []string{"A"}, Answer: "A"},
	}
	out, dropped := NormalizeQuiz(in)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []model.QuizQuestion{{Question: "Q1", Options: []string{"A", "B", "C"}, Answer: "A"}}, out)
}

func TestSaveQuizResultRequiresUser(t *testing.T) {
	quizzes := &fakeQuizzes{}
	svc := newTestService(t, Deps{Quizzes: quizzes})

	_, err := svc.SaveQuizResult(context.Background(), model.Session{}, "c1", 80)
	assert.Equal(t, apierr.CodeUnauthorized, apierr.From(err).Code)

	res, err := svc.SaveQuizResult(context.Background(), model.Session{UserID: "u1"}, "c1", 80)
	require.NoError(t, err)
	assert.Equal(t, "u1", res.UserID)
	assert.Len(t, quizzes.saved, 1)
}
