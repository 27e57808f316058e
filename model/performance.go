package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrackUser holds a user's daily performance history and derived streaks.
type TrackUser struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UID              string             `bson:"uid" json:"uid"`
	Email            string             `bson:"email" json:"email"`
	Name             string             `bson:"mName,omitempty" json:"mName,omitempty"`
	Type             string             `bson:"type,omitempty" json:"type,omitempty"`
	Strick           int                `bson:"strick" json:"strick"`
	MaxStrick        int                `bson:"max_strick" json:"max_strick"`
	TestScore        float64            `bson:"testScore" json:"testScore"`
	DailyPerformance []DailyPerformance `bson:"dailyPerformance" json:"dailyPerformance"`
	PerformanceScore PerformanceScore   `bson:"performanceScore" json:"performanceScore"`
}

type DailyPerformance struct {
	Date       time.Time `bson:"date" json:"date"`
	TotalScore float64   `bson:"totalScore" json:"totalScore"`
	Count      int       `bson:"count" json:"count"`
}

type StreakState struct {
	Strick    int `json:"strick" bson:"strick"`
	MaxStrick int `json:"max_strick" bson:"max_strick"`
}

type PerformanceScore struct {
	ProjectCount    int64   `bson:"projectCount" json:"projectCount"`
	CourseCount     int64   `bson:"courseCount" json:"courseCount"`
	QuizScoreAvg    float64 `bson:"quizScoreAvg" json:"quizScoreAvg"`
	AverageProgress float64 `bson:"averageProgress" json:"averageProgress"`
}

// UserPerformanceSummary is one row of the all-users performance report.
type UserPerformanceSummary struct {
	UID   string `bson:"uid" json:"uid"`
	Email string `bson:"email" json:"email"`
	Name  string `bson:"mName,omitempty" json:"mName,omitempty"`
	Type  string `bson:"type,omitempty" json:"type,omitempty"`
	PerformanceScore `bson:",inline"`
}
