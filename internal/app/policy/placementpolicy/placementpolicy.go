// internal/app/policy/placementpolicy/placementpolicy.go

// Package placementpolicy holds the pure authorization and applicability
// decisions for positions, applications, and internships. The lifecycle
// services call these before touching the stores, so every rule lives in one
// place and is testable without a database.
package placementpolicy

import (
	"time"

	"github.com/dalemusser/internhub/internal/domain/models"
)

// CanCreatePosition reports whether the profile may post positions: only a
// verified mentor whose company is approved.
func CanCreatePosition(mentor models.Profile, company models.Organization) bool {
	if !mentor.IsVerifiedMentor() {
		return false
	}
	if mentor.OrganizationID == nil || *mentor.OrganizationID != company.ID {
		return false
	}
	return company.Kind == models.OrgKindCompany && company.IsApproved()
}

// CanApply reports whether the student may apply to the position as of now.
// Eligibility (year of study, availability) is the student-side half;
// openness is the position-side half.
func CanApply(student models.Profile, pos models.Position, now time.Time) (bool, string) {
	if !student.EligibleForInternship() {
		return false, "student is not eligible for internships"
	}
	if !pos.OpenForApplications(now) {
		return false, "position is not open for applications"
	}
	return true, ""
}

// CanReview reports whether the profile may decide on applications to the
// position. Only the position's own mentor reviews its applications.
func CanReview(reviewer models.Profile, pos models.Position) bool {
	return reviewer.Role == models.RoleMentor && reviewer.ID == pos.MentorID
}

// CanWithdraw reports whether the profile owns the application and the
// application is in a withdrawable state.
func CanWithdraw(student models.Profile, app models.Application) bool {
	if student.Role != models.RoleStudent || student.ID != app.StudentID {
		return false
	}
	return app.Withdrawable()
}

// CanManageInternship reports whether the profile may change the internship's
// status or record grades: its mentor or its assigned teacher.
func CanManageInternship(p models.Profile, in models.Internship) bool {
	switch p.Role {
	case models.RoleMentor:
		return p.ID == in.MentorID
	case models.RoleTeacher:
		return in.TeacherID != nil && p.ID == *in.TeacherID
	}
	return false
}

// CanReport reports whether the profile may file a weekly progress report on
// the internship: its student, its mentor, or its assigned teacher.
func CanReport(p models.Profile, in models.Internship) bool {
	switch p.Role {
	case models.RoleStudent:
		return p.ID == in.StudentID
	case models.RoleMentor:
		return p.ID == in.MentorID
	case models.RoleTeacher:
		return in.TeacherID != nil && p.ID == *in.TeacherID
	}
	return false
}

// InternshipTransitionAllowed reports whether moving from one internship
// status to another is legal. Completed and terminated are terminal. A
// paused internship resumes or terminates; it must return to active before
// it can complete.
func InternshipTransitionAllowed(from, to string) bool {
	if !models.ValidInternshipStatus(to) || from == to {
		return false
	}
	switch from {
	case models.InternshipActive:
		return to == models.InternshipCompleted ||
			to == models.InternshipTerminated ||
			to == models.InternshipOnHold
	case models.InternshipOnHold:
		return to == models.InternshipActive || to == models.InternshipTerminated
	}
	return false
}
