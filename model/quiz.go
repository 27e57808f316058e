package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

type QuizResult struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"userId" json:"userId"`
	CourseID  string             `bson:"courseId" json:"courseId"`
	Score     float64            `bson:"score" json:"score"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
