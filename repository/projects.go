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

func (r *Repository) CreateUserProject(ctx context.Context, p *model.UserProject) error {
	p.DateCreated = time.Now().UTC()
	if p.Approve == "" {
		p.Approve = model.ApprovalPending
	}
	res, err := r.userProjects.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *Repository) ListUserProjects(ctx context.Context, uid string) ([]model.UserProject, error) {
	filter := bson.M{}
	if uid != "" {
		filter["$or"] = bson.A{bson.M{"userId": uid}, bson.M{"firebaseUId": uid}}
	}
	cursor, err := r.userProjects.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "dateCreated", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := []model.UserProject{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUserProject applies only the non-nil fields of patch.
func (r *Repository) UpdateUserProject(ctx context.Context, projectID string, patch model.UserProjectPatch) (*model.UserProject, error) {
	set := bson.M{}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}
	if patch.GithubURL != nil {
		set["github_url"] = *patch.GithubURL
	}
	if patch.VideoURL != nil {
		set["video_url"] = *patch.VideoURL
	}
	if patch.Approve != nil {
		set["approve"] = *patch.Approve
	}
	if len(set) == 0 {
		return r.getUserProject(ctx, projectID)
	}
	id, err := objectID(projectID)
	if err != nil {
		return nil, err
	}
	var p model.UserProject
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.userProjects.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *Repository) getUserProject(ctx context.Context, projectID string) (*model.UserProject, error) {
	id, err := objectID(projectID)
	if err != nil {
		return nil, err
	}
	var p model.UserProject
	if err := r.userProjects.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *Repository) DeleteUserProject(ctx context.Context, projectID string) error {
	id, err := objectID(projectID)
	if err != nil {
		return err
	}
	result, err := r.userProjects.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
