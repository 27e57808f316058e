package repository

import (
	"context"
	"fmt"

	"coursegen/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *Repository) GetTrackUser(ctx context.Context, uid string) (*model.TrackUser, error) {
	var user model.TrackUser
	if err := r.trackUsers.FindOne(ctx, bson.M{"uid": uid}).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *Repository) ListTrackUsers(ctx context.Context) ([]model.TrackUser, error) {
	cursor, err := r.trackUsers.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	users := []model.TrackUser{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AppendDailyPerformance pushes a raw sample, creating the track document on
// first use. Duplicate days are left for the aggregator to collapse.
func (r *Repository) AppendDailyPerformance(ctx context.Context, uid, email string, sample model.DailyPerformance) error {
	update := bson.M{
		"$push":        bson.M{"dailyPerformance": sample},
		"$setOnInsert": bson.M{"uid": uid, "email": email, "strick": 0, "max_strick": 0},
	}
	_, err := r.trackUsers.UpdateOne(ctx, bson.M{"uid": uid}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("append daily performance for %s: %w", uid, err)
	}
	return nil
}

// SaveStreak replaces the sample list and streak counters wholesale.
func (r *Repository) SaveStreak(ctx context.Context, uid string, samples []model.DailyPerformance, state model.StreakState) error {
	if samples == nil {
		samples = []model.DailyPerformance{}
	}
	result, err := r.trackUsers.UpdateOne(ctx, bson.M{"uid": uid}, bson.M{"$set": bson.M{
		"dailyPerformance": samples,
		"strick":           state.Strick,
		"max_strick":       state.MaxStrick,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AllPerformance joins every tracked user with their projects, courses and
// quiz results and reduces them to counts and averages.
func (r *Repository) AllPerformance(ctx context.Context) ([]model.UserPerformanceSummary, error) {
	avgOrZero := func(arr, field string) bson.M {
		return bson.M{"$cond": bson.M{
			"if":   bson.M{"$gt": bson.A{bson.M{"$size": arr}, 0}},
			"then": bson.M{"$avg": arr + "." + field},
			"else": 0,
		}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{"from": UserProjectsCollection, "localField": "uid", "foreignField": "firebaseUId", "as": "projects"}}},
		{{Key: "$lookup", Value: bson.M{"from": CoursesCollection, "localField": "uid", "foreignField": "user", "as": "courses"}}},
		{{Key: "$lookup", Value: bson.M{"from": QuizzesCollection, "localField": "uid", "foreignField": "userId", "as": "quizzes"}}},
		{{Key: "$project", Value: bson.M{
			"uid":             1,
			"email":           1,
			"mName":           1,
			"type":            1,
			"projectCount":    bson.M{"$size": "$projects"},
			"courseCount":     bson.M{"$size": "$courses"},
			"quizScoreAvg":    avgOrZero("$quizzes", "score"),
			"averageProgress": avgOrZero("$courses", "progress"),
		}}},
	}
	cursor, err := r.trackUsers.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate performance: %w", err)
	}
	defer cursor.Close(ctx)
	out := []model.UserPerformanceSummary{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
