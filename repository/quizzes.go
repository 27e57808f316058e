package repository

import (
	"context"
	"time"

	"coursegen/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *Repository) SaveQuizResult(ctx context.Context, q *model.QuizResult) error {
	q.CreatedAt = time.Now().UTC()
	res, err := r.quizzes.InsertOne(ctx, q)
	if err != nil {
		return err
	}
	q.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *Repository) ListQuizResults(ctx context.Context, uid string) ([]model.QuizResult, error) {
	cursor, err := r.quizzes.Find(ctx, bson.M{"userId": uid}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := []model.QuizResult{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
