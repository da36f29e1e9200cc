// internal/domain/models/interview.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interview statuses.
const (
	InterviewScheduled   = "scheduled"
	InterviewCompleted   = "completed"
	InterviewCancelled   = "cancelled"
	InterviewRescheduled = "rescheduled"
)

// Interview records the scheduling details attached to an application that
// reached interview_scheduled. One interview per application.
type Interview struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Nanoid        string             `bson:"nanoid" json:"nanoid"`
	ApplicationID primitive.ObjectID `bson:"application_id" json:"application_id"`
	InterviewerID primitive.ObjectID `bson:"interviewer_id" json:"interviewer_id"` // mentor profile _id

	ScheduledAt time.Time `bson:"scheduled_at" json:"scheduled_at"`
	Location    string    `bson:"location,omitempty" json:"location,omitempty"` // or meeting link
	Status      string    `bson:"status" json:"status"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
	Feedback    string    `bson:"feedback,omitempty" json:"feedback,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
