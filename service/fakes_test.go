package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"coursegen/media"
	"coursegen/model"
	"coursegen/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeCourses struct {
	mu      sync.Mutex
	courses map[string]*model.Course
	setErr  error
}

func newFakeCourses(cs ...*model.Course) *fakeCourses {
	f := &fakeCourses{courses: map[string]*model.Course{}}
	for _, c := range cs {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		f.courses[c.ID.Hex()] = c
	}
	return f
}

func (f *fakeCourses) get(id string) (*model.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	cp.Topics = cloneTopics(c.Topics)
	return &cp, nil
}

func cloneTopics(ts []model.Topic) []model.Topic {
	out := make([]model.Topic, len(ts))
	for i, t := range ts {
		t.Subtopics = append([]model.Subtopic(nil), t.Subtopics...)
		out[i] = t
	}
	return out
}

func (f *fakeCourses) CreateCourse(_ context.Context, c *model.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = primitive.NewObjectID()
	f.courses[c.ID.Hex()] = c
	return nil
}

func (f *fakeCourses) GetCourse(_ context.Context, id string) (*model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(id)
}

func (f *fakeCourses) ListCourses(_ context.Context, uid string) ([]model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Course
	for _, c := range f.courses {
		if uid == "" || c.UserID == uid {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourses) DeleteCourse(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeCourses) UpdateProgress(_ context.Context, id string, progress float64) (*model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Progress = progress
	c.Completed = progress >= 100
	return f.get(id)
}

func (f *fakeCourses) FinishCourse(_ context.Context, id string) (*model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	now := time.Now()
	c.Progress, c.Completed, c.EndedAt = 100, true, &now
	return f.get(id)
}

func (f *fakeCourses) SetSubtopic(_ context.Context, id, topicTitle string, st model.Subtopic) (*model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return nil, f.setErr
	}
	c, ok := f.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	_, target := c.FindSubtopic(topicTitle, st.Title)
	if target == nil {
		return nil, repository.ErrNotFound
	}
	*target = st
	return f.get(id)
}

func (f *fakeCourses) CourseStats(context.Context) (model.CourseStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var s model.CourseStats
	for _, c := range f.courses {
		s.Courses++
		if c.Completed {
			s.CompletedCourses++
		}
	}
	return s, nil
}

type fakeTracks struct {
	mu    sync.Mutex
	users map[string]*model.TrackUser
	saves int
}

func newFakeTracks(users ...model.TrackUser) *fakeTracks {
	f := &fakeTracks{users: map[string]*model.TrackUser{}}
	for i := range users {
		u := users[i]
		f.users[u.UID] = &u
	}
	return f
}

func (f *fakeTracks) GetTrackUser(_ context.Context, uid string) (*model.TrackUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	cp.DailyPerformance = append([]model.DailyPerformance(nil), u.DailyPerformance...)
	return &cp, nil
}

func (f *fakeTracks) ListTrackUsers(context.Context) ([]model.TrackUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.TrackUser
	for _, u := range f.users {
		cp := *u
		cp.DailyPerformance = append([]model.DailyPerformance(nil), u.DailyPerformance...)
		out = append(out, cp)
	}
	return out, nil
}

func (f *fakeTracks) AppendDailyPerformance(_ context.Context, uid, email string, s model.DailyPerformance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		u = &model.TrackUser{UID: uid, Email: email}
		f.users[uid] = u
	}
	u.DailyPerformance = append(u.DailyPerformance, s)
	return nil
}

func (f *fakeTracks) SaveStreak(_ context.Context, uid string, samples []model.DailyPerformance, state model.StreakState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return repository.ErrNotFound
	}
	u.DailyPerformance = samples
	u.Strick, u.MaxStrick = state.Strick, state.MaxStrick
	f.saves++
	return nil
}

func (f *fakeTracks) AllPerformance(context.Context) ([]model.UserPerformanceSummary, error) {
	return nil, errors.New("not implemented")
}

type fakeTemplates struct {
	matches  []model.ProjectTemplate
	all      []model.ProjectTemplate
	inserted []model.ProjectTemplate
	assigned []model.Assignment
}

func (f *fakeTemplates) SearchTemplates(context.Context, string, int64) ([]model.ProjectTemplate, error) {
	return f.matches, nil
}

func (f *fakeTemplates) ListTemplates(_ context.Context, limit int64) ([]model.ProjectTemplate, error) {
	if limit > 0 && int(limit) < len(f.all) {
		return f.all[:limit], nil
	}
	return f.all, nil
}

func (f *fakeTemplates) InsertTemplates(_ context.Context, ts []model.ProjectTemplate) (int, error) {
	for i := range ts {
		if ts[i].ID.IsZero() {
			ts[i].ID = primitive.NewObjectID()
		}
	}
	f.inserted = append(f.inserted, ts...)
	return len(ts), nil
}

func (f *fakeTemplates) AssignTemplate(_ context.Context, id string, a model.Assignment) (*model.ProjectTemplate, error) {
	for _, existing := range f.assigned {
		if existing == a {
			return &model.ProjectTemplate{AssignedTo: f.assigned}, nil
		}
	}
	f.assigned = append(f.assigned, a)
	return &model.ProjectTemplate{AssignedTo: f.assigned}, nil
}

type fakeQuizzes struct{ saved []model.QuizResult }

func (f *fakeQuizzes) SaveQuizResult(_ context.Context, q *model.QuizResult) error {
	f.saved = append(f.saved, *q)
	return nil
}

func (f *fakeQuizzes) ListQuizResults(context.Context, string) ([]model.QuizResult, error) {
	return f.saved, nil
}

// fakeGen answers prompts in order; once replies run out it returns err.
type fakeGen struct {
	replies []string
	err     error
	prompts []string
}

func (f *fakeGen) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.replies) == 0 {
		if f.err != nil {
			return "", f.err
		}
		return "", errors.New("no reply scripted")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

type fakeVideos struct {
	candidates []media.VideoCandidate
	err        error
	queries    []string
}

func (f *fakeVideos) SearchVideos(_ context.Context, q string, _ int64) ([]media.VideoCandidate, error) {
	f.queries = append(f.queries, q)
	return f.candidates, f.err
}

type fakeImages struct {
	url string
	err error
}

func (f fakeImages) FindImage(context.Context, string) (string, error) { return f.url, f.err }

type fakeEvents struct {
	mu       sync.Mutex
	subjects []string
	payloads []any
}

func (f *fakeEvents) PublishJSON(subject string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, v)
	return nil
}

type fakeProjects struct {
	mu       sync.Mutex
	projects map[string]*model.UserProject
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{projects: map[string]*model.UserProject{}}
}

func (f *fakeProjects) CreateUserProject(_ context.Context, p *model.UserProject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = primitive.NewObjectID()
	cp := *p
	f.projects[p.ID.Hex()] = &cp
	return nil
}

func (f *fakeProjects) ListUserProjects(_ context.Context, uid string) ([]model.UserProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.UserProject
	for _, p := range f.projects {
		if uid == "" || p.UserID == uid || p.FirebaseUID == uid {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProjects) UpdateUserProject(_ context.Context, id string, patch model.UserProjectPatch) (*model.UserProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Completed != nil {
		p.Completed = *patch.Completed
	}
	if patch.GithubURL != nil {
		p.GithubURL = *patch.GithubURL
	}
	if patch.VideoURL != nil {
		p.VideoURL = *patch.VideoURL
	}
	if patch.Approve != nil {
		p.Approve = *patch.Approve
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) DeleteUserProject(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

func newTestService(t *testing.T, d Deps) *Service {
	t.Helper()
	if d.Courses == nil {
		d.Courses = newFakeCourses()
	}
	if d.Tracks == nil {
		d.Tracks = newFakeTracks()
	}
	if d.Templates == nil {
		d.Templates = &fakeTemplates{}
	}
	if d.Quizzes == nil {
		d.Quizzes = &fakeQuizzes{}
	}
	if d.Projects == nil {
		d.Projects = newFakeProjects()
	}
	return NewService(d)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleCourse() *model.Course {
	return &model.Course{
		UserID:    "u1",
		MainTopic: "Go",
		Type:      model.CourseTypeVideoText,
		Language:  "English",
		Topics: []model.Topic{
			{Title: "Basics", Subtopics: []model.Subtopic{{Title: "Variables"}, {Title: "Loops"}}},
			{Title: "Concurrency", Subtopics: []model.Subtopic{{Title: "Channels"}}},
		},
	}
}
