package repository

import (
	"context"
	"fmt"
	"time"

	"coursegen/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *Repository) CreateCourse(ctx context.Context, course *model.Course) error {
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	res, err := r.courses.InsertOne(ctx, course)
	if err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	course.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *Repository) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	id, err := objectID(courseID)
	if err != nil {
		return nil, err
	}
	var course model.Course
	if err := r.courses.FindOne(ctx, bson.M{"_id": id}).Decode(&course); err != nil {
		return nil, notFound(err)
	}
	return &course, nil
}

func (r *Repository) ListCourses(ctx context.Context, userID string) ([]model.Course, error) {
	filter := bson.M{}
	if userID != "" {
		filter["user"] = userID
	}
	cursor, err := r.courses.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	courses := []model.Course{}
	if err = cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *Repository) DeleteCourse(ctx context.Context, courseID string) error {
	id, err := objectID(courseID)
	if err != nil {
		return err
	}
	result, err := r.courses.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProgress stores progress and derives completion from it.
func (r *Repository) UpdateProgress(ctx context.Context, courseID string, progress float64) (*model.Course, error) {
	return r.updateCourse(ctx, courseID, bson.M{"$set": bson.M{
		"progress":   progress,
		"completed":  progress >= 100,
		"updated_at": time.Now().UTC(),
	}})
}

func (r *Repository) FinishCourse(ctx context.Context, courseID string) (*model.Course, error) {
	now := time.Now().UTC()
	return r.updateCourse(ctx, courseID, bson.M{"$set": bson.M{
		"progress":   100,
		"completed":  true,
		"end":        now,
		"updated_at": now,
	}})
}

// SetSubtopic overwrites a single subtopic in place. Array filters address
// the subtopic by its topic and subtopic titles, so fills of sibling
// subtopics do not clobber each other.
func (r *Repository) SetSubtopic(ctx context.Context, courseID, topicTitle string, st model.Subtopic) (*model.Course, error) {
	id, err := objectID(courseID)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().
		SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
			bson.M{"t.title": topicTitle},
			bson.M{"s.title": st.Title},
		}}).
		SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{
		"topics.$[t].subtopics.$[s]": st,
		"updated_at":                 time.Now().UTC(),
	}}
	var course model.Course
	if err := r.courses.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&course); err != nil {
		return nil, notFound(err)
	}
	return &course, nil
}

func (r *Repository) updateCourse(ctx context.Context, courseID string, update bson.M) (*model.Course, error) {
	id, err := objectID(courseID)
	if err != nil {
		return nil, err
	}
	var course model.Course
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.courses.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&course); err != nil {
		return nil, notFound(err)
	}
	return &course, nil
}

func (r *Repository) CourseStats(ctx context.Context) (model.CourseStats, error) {
	var stats model.CourseStats
	counts := []struct {
		filter bson.M
		dst    *int64
	}{
		{bson.M{}, &stats.Courses},
		{bson.M{"type": model.CourseTypeVideoText}, &stats.VideoAndTextCourses},
		{bson.M{"type": model.CourseTypeTextImage}, &stats.TextAndImageCourses},
		{bson.M{"completed": true}, &stats.CompletedCourses},
	}
	for _, c := range counts {
		n, err := r.courses.CountDocuments(ctx, c.filter)
		if err != nil {
			return stats, err
		}
		*c.dst = n
	}
	return stats, nil
}
