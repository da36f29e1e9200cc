// internal/domain/models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application statuses. pending → under_review → interview_scheduled →
// approved; rejected is reachable from any reviewable status; withdrawn is
// student-initiated and additionally reachable from approved.
const (
	AppStatusPending            = "pending"
	AppStatusUnderReview        = "under_review"
	AppStatusInterviewScheduled = "interview_scheduled"
	AppStatusApproved           = "approved"
	AppStatusRejected           = "rejected"
	AppStatusWithdrawn          = "withdrawn"
)

// ActiveAppStatuses is the status set that blocks a second application for
// the same (student, position) pair. Approved counts as active; only
// rejected and withdrawn free the pair for re-application.
var ActiveAppStatuses = []string{
	AppStatusPending,
	AppStatusUnderReview,
	AppStatusInterviewScheduled,
	AppStatusApproved,
}

// ReviewableAppStatuses are the statuses a mentor decision (approve, reject,
// schedule interview) may act on.
var ReviewableAppStatuses = []string{
	AppStatusPending,
	AppStatusUnderReview,
	AppStatusInterviewScheduled,
}

// WithdrawnByStudentNote is stored in ReviewerNotes on withdrawal.
const WithdrawnByStudentNote = "withdrawn by student"

// Application links a student to a position and carries the review state
// machine. At most one active application per (student, position) pair,
// enforced by a partial unique index.
type Application struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Nanoid     string             `bson:"nanoid" json:"nanoid"`
	StudentID  primitive.ObjectID `bson:"student_id" json:"student_id"`
	PositionID primitive.ObjectID `bson:"position_id" json:"position_id"`

	CoverLetter   string     `bson:"cover_letter" json:"cover_letter"`
	Status        string     `bson:"status" json:"status"`
	AppliedAt     time.Time  `bson:"applied_at" json:"applied_at"`
	ReviewedAt    *time.Time `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	ReviewerNotes string     `bson:"reviewer_notes,omitempty" json:"reviewer_notes,omitempty"`
}

// IsTerminal reports whether the application has reached a final state for
// this instance. Approved is terminal for mentor decisions, but the owning
// student may still withdraw it.
func (a *Application) IsTerminal() bool {
	switch a.Status {
	case AppStatusApproved, AppStatusRejected, AppStatusWithdrawn:
		return true
	}
	return false
}

// Reviewable reports whether a mentor decision may act on the current status.
func (a *Application) Reviewable() bool {
	switch a.Status {
	case AppStatusPending, AppStatusUnderReview, AppStatusInterviewScheduled:
		return true
	}
	return false
}

// Withdrawable reports whether the owning student may withdraw. This is the
// one place approved is not terminal.
func (a *Application) Withdrawable() bool {
	switch a.Status {
	case AppStatusPending, AppStatusUnderReview, AppStatusInterviewScheduled, AppStatusApproved:
		return true
	}
	return false
}

// ValidAppStatus reports whether s is a known application status.
func ValidAppStatus(s string) bool {
	switch s {
	case AppStatusPending, AppStatusUnderReview, AppStatusInterviewScheduled,
		AppStatusApproved, AppStatusRejected, AppStatusWithdrawn:
		return true
	}
	return false
}
