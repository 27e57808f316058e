package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CourseTypeVideoText = "video & text course"
	CourseTypeTextImage = "text & image course"
)

type Course struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user" json:"user"`
	MainTopic string             `bson:"mainTopic" json:"mainTopic"`
	Type      string             `bson:"type" json:"type"`
	Language  string             `bson:"language" json:"language"`
	Photo     string             `bson:"photo" json:"photo"`
	Topics    []Topic            `bson:"topics" json:"topics"`
	Progress  float64            `bson:"progress" json:"progress"`
	Completed bool               `bson:"completed" json:"completed"`
	CreatedAt time.Time          `bson:"date" json:"date"`
	EndedAt   *time.Time         `bson:"end,omitempty" json:"end,omitempty"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

type Topic struct {
	Title     string     `bson:"title" json:"title"`
	Subtopics []Subtopic `bson:"subtopics" json:"subtopics"`
}

type Subtopic struct {
	Title   string `bson:"title" json:"title"`
	Theory  string `bson:"theory" json:"theory"`
	Youtube string `bson:"youtube" json:"youtube"`
	Image   string `bson:"image,omitempty" json:"image,omitempty"`
	Done    bool   `bson:"done" json:"done"`
}

// ContentKey is the key the outline is published under in the legacy
// { "<main topic>": [...] } content shape.
func (c *Course) ContentKey() string {
	return strings.ToLower(strings.TrimSpace(c.MainTopic))
}

// Content renders the outline in the legacy keyed shape.
func (c *Course) Content() map[string][]Topic {
	return map[string][]Topic{c.ContentKey(): c.Topics}
}

func (c *Course) FindSubtopic(topicTitle, subtopicTitle string) (*Topic, *Subtopic) {
	for i := range c.Topics {
		if c.Topics[i].Title != topicTitle {
			continue
		}
		t := &c.Topics[i]
		for j := range t.Subtopics {
			if t.Subtopics[j].Title == subtopicTitle {
				return t, &t.Subtopics[j]
			}
		}
		return t, nil
	}
	return nil, nil
}

// CompletedSubtopics lists done subtopic titles in outline order.
func (c *Course) CompletedSubtopics() []string {
	var out []string
	for _, t := range c.Topics {
		for _, st := range t.Subtopics {
			if st.Done {
				out = append(out, st.Title)
			}
		}
	}
	return out
}

type CourseStats struct {
	Courses             int64 `json:"courses" bson:"courses"`
	VideoAndTextCourses int64 `json:"videoAndTextCourses" bson:"videoAndTextCourses"`
	TextAndImageCourses int64 `json:"textAndImageCourses" bson:"textAndImageCourses"`
	CompletedCourses    int64 `json:"completedCourses" bson:"completedCourses"`
}
