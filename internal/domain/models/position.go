// internal/domain/models/position.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Internship durations offered, in months.
var PositionDurations = []int{2, 3, 4, 6}

// Position is an internship slot set offered by a company. Mutable only
// until the first application references it; after that, edits are blocked
// rather than merged.
type Position struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Nanoid    string             `bson:"nanoid" json:"nanoid"`
	CompanyID primitive.ObjectID `bson:"company_id" json:"company_id"`
	MentorID  primitive.ObjectID `bson:"mentor_id" json:"mentor_id"`

	Title          string   `bson:"title" json:"title"`
	Description    string   `bson:"description,omitempty" json:"description,omitempty"`
	Requirements   string   `bson:"requirements,omitempty" json:"requirements,omitempty"`
	SkillsRequired string   `bson:"skills_required,omitempty" json:"skills_required,omitempty"`
	DurationMonths int      `bson:"duration_months" json:"duration_months"` // 2 | 3 | 4 | 6
	StartDate      time.Time `bson:"start_date" json:"start_date"`
	EndDate        time.Time `bson:"end_date" json:"end_date"`
	Stipend        *float64 `bson:"stipend,omitempty" json:"stipend,omitempty"`

	MaxStudents int  `bson:"max_students" json:"max_students"`
	IsActive    bool `bson:"is_active" json:"is_active"`

	// ApprovedCount is the number of approved applications, maintained in the
	// same atomic unit as approval/withdrawal status writes so the capacity
	// check cannot race. ApplicationCount counts applications of any status
	// and drives the edit lockout.
	ApprovedCount    int `bson:"approved_count" json:"approved_count"`
	ApplicationCount int `bson:"application_count" json:"application_count"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AvailableSpots returns the remaining approval capacity, never negative.
func (p *Position) AvailableSpots() int {
	spots := p.MaxStudents - p.ApprovedCount
	if spots < 0 {
		return 0
	}
	return spots
}

// OpenForApplications reports whether new applications are accepted as of the
// given date. Derived at query time, not stored.
func (p *Position) OpenForApplications(today time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.EndDate.IsZero() {
		return true
	}
	return !today.After(p.EndDate)
}

// EditLocked reports whether the position has been acted upon and is
// therefore immutable.
func (p *Position) EditLocked() bool {
	return p.ApplicationCount > 0
}

// ValidDuration reports whether months is an offered duration.
func ValidDuration(months int) bool {
	for _, d := range PositionDurations {
		if d == months {
			return true
		}
	}
	return false
}
