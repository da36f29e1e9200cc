// internal/domain/models/report.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressReport is the weekly periodic record for an internship. At most
// one report per (internship, reporter role, week); duplicates are rejected
// at the store by a unique index.
//
// Each reporter role fills its own section; the others stay nil.
type ProgressReport struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Nanoid         string             `bson:"nanoid" json:"nanoid"`
	InternshipID   primitive.ObjectID `bson:"internship_id" json:"internship_id"`
	ReporterRole   string             `bson:"reporter_role" json:"reporter_role"` // student | mentor | teacher
	ReporterUserID primitive.ObjectID `bson:"reporter_user_id" json:"reporter_user_id"`
	WeekNumber     int                `bson:"week_number" json:"week_number"`

	Student *StudentReport `bson:"student,omitempty" json:"student,omitempty"`
	Mentor  *MentorReport  `bson:"mentor,omitempty" json:"mentor,omitempty"`
	Teacher *TeacherReport `bson:"teacher,omitempty" json:"teacher,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// StudentReport is the intern's own weekly log.
type StudentReport struct {
	TasksCompleted     string `bson:"tasks_completed,omitempty" json:"tasks_completed,omitempty"`
	LearningOutcomes   string `bson:"learning_outcomes,omitempty" json:"learning_outcomes,omitempty"`
	ChallengesFaced    string `bson:"challenges_faced,omitempty" json:"challenges_faced,omitempty"`
	SatisfactionRating int    `bson:"satisfaction_rating,omitempty" json:"satisfaction_rating,omitempty"` // 1-5
}

// MentorReport is the company-side weekly assessment.
type MentorReport struct {
	StudentPerformance  string `bson:"student_performance,omitempty" json:"student_performance,omitempty"`
	SkillsDemonstrated  string `bson:"skills_demonstrated,omitempty" json:"skills_demonstrated,omitempty"`
	AreasForImprovement string `bson:"areas_for_improvement,omitempty" json:"areas_for_improvement,omitempty"`
	AttendanceRating    int    `bson:"attendance_rating,omitempty" json:"attendance_rating,omitempty"` // 1-5
}

// TeacherReport is the institute-side weekly evaluation.
type TeacherReport struct {
	DiscussionNotes   string `bson:"discussion_notes,omitempty" json:"discussion_notes,omitempty"`
	AcademicAlignment string `bson:"academic_alignment,omitempty" json:"academic_alignment,omitempty"`
	Recommendations   string `bson:"recommendations,omitempty" json:"recommendations,omitempty"`
}

// ValidReporterRole reports whether r may file progress reports.
func ValidReporterRole(r string) bool {
	return r == RoleStudent || r == RoleMentor || r == RoleTeacher
}

// ValidRating reports whether n is a 1-5 rating.
func ValidRating(n int) bool {
	return n >= 1 && n <= 5
}
