package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CoursesCollection      = "courses"
	TrackUsersCollection   = "track_users"
	TemplatesCollection    = "main_projects"
	UserProjectsCollection = "project-users"
	QuizzesCollection      = "quizzes"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid id")
)

type Repository struct {
	mongoclientInstance *mongo.Client
	db                  *mongo.Database
	courses             *mongo.Collection
	trackUsers          *mongo.Collection
	templates           *mongo.Collection
	userProjects        *mongo.Collection
	quizzes             *mongo.Collection
}

func NewRepository(client *mongo.Client, database string) *Repository {
	db := client.Database(database)
	return &Repository{
		mongoclientInstance: client,
		db:                  db,
		courses:             db.Collection(CoursesCollection),
		trackUsers:          db.Collection(TrackUsersCollection),
		templates:           db.Collection(TemplatesCollection),
		userProjects:        db.Collection(UserProjectsCollection),
		quizzes:             db.Collection(QuizzesCollection),
	}
}

// Ping reports whether the primary is reachable; used by the health server.
func (r *Repository) Ping(ctx context.Context) error {
	return r.mongoclientInstance.Ping(ctx, nil)
}

func objectID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, hex)
	}
	return id, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
