// internal/domain/models/internship.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Internship statuses. Created active from an approved application; moved by
// mentor or teacher thereafter.
const (
	InternshipActive     = "active"
	InternshipCompleted  = "completed"
	InternshipTerminated = "terminated"
	InternshipOnHold     = "on_hold"
)

// Final grades a mentor or teacher may assign.
var FinalGrades = []string{"A", "B", "C", "D", "F"}

// Internship is the materialized placement derived from exactly one approved
// application.
type Internship struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Nanoid        string              `bson:"nanoid" json:"nanoid"`
	ApplicationID primitive.ObjectID  `bson:"application_id" json:"application_id"`
	StudentID     primitive.ObjectID  `bson:"student_id" json:"student_id"`
	MentorID      primitive.ObjectID  `bson:"mentor_id" json:"mentor_id"`
	TeacherID     *primitive.ObjectID `bson:"teacher_id,omitempty" json:"teacher_id,omitempty"`

	StartDate time.Time `bson:"start_date" json:"start_date"`
	EndDate   time.Time `bson:"end_date" json:"end_date"`
	Status    string    `bson:"status" json:"status"`

	// Free-standing fields, settable at any status.
	FinalGrade        string     `bson:"final_grade,omitempty" json:"final_grade,omitempty"`
	CertificateIssued bool       `bson:"certificate_issued" json:"certificate_issued"`
	CertificateDate   *time.Time `bson:"certificate_date,omitempty" json:"certificate_date,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ProgressPercentage returns how far along the internship is as of the given
// time: 0 before the start, 100 after the end, linear in between. A
// zero-length internship reports 0 rather than dividing by zero.
func (i *Internship) ProgressPercentage(asOf time.Time) int {
	if asOf.Before(i.StartDate) {
		return 0
	}
	if asOf.After(i.EndDate) {
		return 100
	}
	total := i.EndDate.Sub(i.StartDate)
	if total <= 0 {
		return 0
	}
	pct := int(asOf.Sub(i.StartDate) * 100 / total)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ValidInternshipStatus reports whether s is a known internship status.
func ValidInternshipStatus(s string) bool {
	switch s {
	case InternshipActive, InternshipCompleted, InternshipTerminated, InternshipOnHold:
		return true
	}
	return false
}

// ValidFinalGrade reports whether g is an assignable grade.
func ValidFinalGrade(g string) bool {
	for _, fg := range FinalGrades {
		if fg == g {
			return true
		}
	}
	return false
}
