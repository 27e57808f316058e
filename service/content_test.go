package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"coursegen/apierr"
	"coursegen/media"
	"coursegen/model"
	"coursegen/natsclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillSubtopicPicksClosestVideo(t *testing.T) {
	course := sampleCourse()
	courses := newFakeCourses(course)
	videos := &fakeVideos{candidates: []media.VideoCandidate{
		{ID: "v1", Title: "Cooking pasta at home"},
		{ID: "v2", Title: "Channels Concurrency in Go"},
		{ID: "v3", Title: "Go tutorial"},
	}}
	gen := &fakeGen{replies: []string{"## Overview\nChannels connect goroutines."}}
	events := &fakeEvents{}
	svc := newTestService(t, Deps{Courses: courses, Videos: videos, AI: gen, Events: events})

	updated, err := svc.FillSubtopic(context.Background(), model.Session{UserID: "u1"}, FillRequest{
		CourseID: course.ID.Hex(), TopicTitle: "Concurrency", SubtopicTitle: "Channels",
	})
	require.NoError(t, err)

	_, st := updated.FindSubtopic("Concurrency", "Channels")
	require.NotNil(t, st)
	assert.True(t, st.Done)
	assert.Equal(t, "v2", st.Youtube)
	assert.Equal(t, "## Overview\nChannels connect goroutines.", st.Theory)
	assert.Equal(t, []string{"Channels tutorial Concurrency"}, videos.queries)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "400 words")
	assert.Equal(t, []string{natsclient.SubjectSubtopicFilled}, events.subjects)

	// siblings are untouched
	_, other := updated.FindSubtopic("Basics", "Variables")
	assert.False(t, other.Done)
}

func TestFillSubtopicAlwaysMarksDone(t *testing.T) {
	course := sampleCourse()
	svc := newTestService(t, Deps{
		Courses: newFakeCourses(course),
		Videos:  &fakeVideos{err: errors.New("quota exceeded")},
		AI:      &fakeGen{err: errors.New("API key expired")},
	})

	updated, err := svc.FillSubtopic(context.Background(), model.Session{}, FillRequest{
		CourseID: course.ID.Hex(), TopicTitle: "Basics", SubtopicTitle: "Loops",
	})
	require.NoError(t, err)
	_, st := updated.FindSubtopic("Basics", "Loops")
	assert.True(t, st.Done)
	assert.Empty(t, st.Youtube)
	assert.Equal(t, FallbackTheory, st.Theory)
}

func TestFillSubtopicWithoutProviders(t *testing.T) {
	course := sampleCourse()
	svc := newTestService(t, Deps{Courses: newFakeCourses(course)})

	updated, err := svc.FillSubtopic(context.Background(), model.Session{}, FillRequest{
		CourseID: course.ID.Hex(), TopicTitle: "Basics", SubtopicTitle: "Variables",
	})
	require.NoError(t, err)
	_, st := updated.FindSubtopic("Basics", "Variables")
	assert.True(t, st.Done)
	assert.Equal(t, FallbackTheory, st.Theory)
}

func TestFillSubtopicImageCourse(t *testing.T) {
	course := sampleCourse()
	course.Type = model.CourseTypeTextImage
	videos := &fakeVideos{}
	svc := newTestService(t, Deps{
		Courses: newFakeCourses(course),
		Videos:  videos,
		Images:  fakeImages{err: errors.New("down")},
		AI:      &fakeGen{replies: []string{"text"}},
	})

	updated, err := svc.FillSubtopic(context.Background(), model.Session{}, FillRequest{
		CourseID: course.ID.Hex(), TopicTitle: "Basics", SubtopicTitle: "Variables",
	})
	require.NoError(t, err)
	_, st := updated.FindSubtopic("Basics", "Variables")
	assert.Equal(t, media.PlaceholderImage, st.Image)
	assert.Empty(t, st.Youtube)
	assert.Empty(t, videos.queries)
}

func TestFillSubtopicNotFound(t *testing.T) {
	course := sampleCourse()
	svc := newTestService(t, Deps{Courses: newFakeCourses(course)})
	ctx := context.Background()

	cases := []FillRequest{
		{CourseID: "507f1f77bcf86cd799439011", TopicTitle: "Basics", SubtopicTitle: "Loops"},
		{CourseID: course.ID.Hex(), TopicTitle: "Nope", SubtopicTitle: "Loops"},
		{CourseID: course.ID.Hex(), TopicTitle: "Basics", SubtopicTitle: "Nope"},
	}
	for _, req := range cases {
		_, err := svc.FillSubtopic(ctx, model.Session{}, req)
		var ae *apierr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, http.StatusNotFound, ae.Status)
	}

	_, err := svc.FillSubtopic(ctx, model.Session{}, FillRequest{CourseID: course.ID.Hex()})
	assert.Equal(t, apierr.CodeValidation, apierr.From(err).Code)
}
