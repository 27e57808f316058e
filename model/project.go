package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ApprovalPending  = "pending"
	ApprovalAccepted = "accepted"
	ApprovalRejected = "rejected"
)

type ProjectTemplate struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MainTopic          string             `bson:"mainTopic,omitempty" json:"mainTopic,omitempty"`
	Title              string             `bson:"title" json:"title"`
	Category           string             `bson:"category" json:"category"`
	Description        string             `bson:"description" json:"description"`
	Difficulty         string             `bson:"difficulty" json:"difficulty"`
	Time               string             `bson:"time" json:"time"`
	LearningObjectives []string           `bson:"learningObjectives,omitempty" json:"learningObjectives,omitempty"`
	Deliverables       []string           `bson:"deliverables,omitempty" json:"deliverables,omitempty"`
	Technologies       []string           `bson:"technologies" json:"technologies"`
	AssignedTo         []Assignment       `bson:"assignedTo" json:"assignedTo"`
	CreatedAt          time.Time          `bson:"date" json:"date"`
}

type Assignment struct {
	UserID string `bson:"userid" json:"userid"`
	Title  string `bson:"title" json:"title"`
}

type UserProject struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Difficulty  string             `bson:"difficulty" json:"difficulty"`
	Time        string             `bson:"time" json:"time"`
	UserID      string             `bson:"userId" json:"userId"`
	FirebaseUID string             `bson:"firebaseUId" json:"firebaseUId"`
	Email       string             `bson:"email" json:"email"`
	Completed   bool               `bson:"completed" json:"completed"`
	GithubURL   string             `bson:"github_url,omitempty" json:"github_url,omitempty"`
	VideoURL    string             `bson:"video_url,omitempty" json:"video_url,omitempty"`
	Approve     string             `bson:"approve" json:"approve"`
	DateCreated time.Time          `bson:"dateCreated" json:"dateCreated"`
}

// SuggestionResult is what the project-suggestion chain hands back.
type SuggestionResult struct {
	Templates []ProjectTemplate `json:"templates"`
	Source    string            `json:"source"`
	Note      string            `json:"note,omitempty"`
}

// UserProjectPatch carries the optional fields a project update may change.
type UserProjectPatch struct {
	Completed *bool   `json:"completed,omitempty"`
	GithubURL *string `json:"github_url,omitempty"`
	VideoURL  *string `json:"video_url,omitempty"`
	Approve   *string `json:"-"`
}
