package placementpolicy_test

import (
	"testing"
	"time"

	"github.com/dalemusser/internhub/internal/app/policy/placementpolicy"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func verifiedMentor(companyID primitive.ObjectID) models.Profile {
	return models.Profile{
		ID:             primitive.NewObjectID(),
		Role:           models.RoleMentor,
		OrganizationID: &companyID,
		Mentor:         &models.MentorDetails{Verified: true},
	}
}

func eligibleStudent() models.Profile {
	return models.Profile{
		ID:   primitive.NewObjectID(),
		Role: models.RoleStudent,
		Student: &models.StudentDetails{
			YearOfStudy:            models.YearThird,
			AvailableForInternship: true,
		},
	}
}

func approvedCompany() models.Organization {
	return models.Organization{
		ID:                 primitive.NewObjectID(),
		Kind:               models.OrgKindCompany,
		Name:               "Acme",
		RegistrationStatus: models.OrgStatusApproved,
	}
}

func TestCanCreatePosition(t *testing.T) {
	company := approvedCompany()
	mentor := verifiedMentor(company.ID)

	assert.True(t, placementpolicy.CanCreatePosition(mentor, company))

	unverified := mentor
	unverified.Mentor = &models.MentorDetails{Verified: false}
	assert.False(t, placementpolicy.CanCreatePosition(unverified, company))

	otherID := primitive.NewObjectID()
	outsider := mentor
	outsider.OrganizationID = &otherID
	assert.False(t, placementpolicy.CanCreatePosition(outsider, company))

	pending := company
	pending.RegistrationStatus = models.OrgStatusPending
	assert.False(t, placementpolicy.CanCreatePosition(mentor, pending))

	institute := company
	institute.Kind = models.OrgKindInstitute
	assert.False(t, placementpolicy.CanCreatePosition(mentor, institute))
}

func TestCanApply(t *testing.T) {
	now := time.Now().UTC()
	pos := models.Position{
		IsActive: true,
		EndDate:  now.AddDate(0, 2, 0),
	}

	ok, reason := placementpolicy.CanApply(eligibleStudent(), pos, now)
	assert.True(t, ok)
	assert.Empty(t, reason)

	secondYear := eligibleStudent()
	secondYear.Student.YearOfStudy = "2"
	ok, reason = placementpolicy.CanApply(secondYear, pos, now)
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	unavailable := eligibleStudent()
	unavailable.Student.AvailableForInternship = false
	ok, _ = placementpolicy.CanApply(unavailable, pos, now)
	assert.False(t, ok)

	inactive := pos
	inactive.IsActive = false
	ok, _ = placementpolicy.CanApply(eligibleStudent(), inactive, now)
	assert.False(t, ok)

	expired := pos
	expired.EndDate = now.AddDate(0, 0, -1)
	ok, _ = placementpolicy.CanApply(eligibleStudent(), expired, now)
	assert.False(t, ok)
}

func TestCanReview(t *testing.T) {
	mentorID := primitive.NewObjectID()
	pos := models.Position{MentorID: mentorID}

	owner := models.Profile{ID: mentorID, Role: models.RoleMentor}
	assert.True(t, placementpolicy.CanReview(owner, pos))

	other := models.Profile{ID: primitive.NewObjectID(), Role: models.RoleMentor}
	assert.False(t, placementpolicy.CanReview(other, pos))

	// A student with the mentor's ID is still not a reviewer.
	impostor := models.Profile{ID: mentorID, Role: models.RoleStudent}
	assert.False(t, placementpolicy.CanReview(impostor, pos))
}

func TestCanWithdraw(t *testing.T) {
	studentID := primitive.NewObjectID()
	owner := models.Profile{ID: studentID, Role: models.RoleStudent}

	for _, status := range []string{
		models.AppStatusPending,
		models.AppStatusUnderReview,
		models.AppStatusInterviewScheduled,
		models.AppStatusApproved,
	} {
		app := models.Application{StudentID: studentID, Status: status}
		assert.True(t, placementpolicy.CanWithdraw(owner, app), "status %s", status)
	}

	rejected := models.Application{StudentID: studentID, Status: models.AppStatusRejected}
	assert.False(t, placementpolicy.CanWithdraw(owner, rejected))

	other := models.Profile{ID: primitive.NewObjectID(), Role: models.RoleStudent}
	pending := models.Application{StudentID: studentID, Status: models.AppStatusPending}
	assert.False(t, placementpolicy.CanWithdraw(other, pending))
}

func TestCanManageInternship(t *testing.T) {
	mentorID := primitive.NewObjectID()
	teacherID := primitive.NewObjectID()
	studentID := primitive.NewObjectID()

	in := models.Internship{
		StudentID: studentID,
		MentorID:  mentorID,
		TeacherID: &teacherID,
	}

	assert.True(t, placementpolicy.CanManageInternship(models.Profile{ID: mentorID, Role: models.RoleMentor}, in))
	assert.True(t, placementpolicy.CanManageInternship(models.Profile{ID: teacherID, Role: models.RoleTeacher}, in))
	assert.False(t, placementpolicy.CanManageInternship(models.Profile{ID: studentID, Role: models.RoleStudent}, in))
	assert.False(t, placementpolicy.CanManageInternship(models.Profile{ID: primitive.NewObjectID(), Role: models.RoleMentor}, in))

	unassigned := in
	unassigned.TeacherID = nil
	assert.False(t, placementpolicy.CanManageInternship(models.Profile{ID: teacherID, Role: models.RoleTeacher}, unassigned))
}

func TestCanReport(t *testing.T) {
	mentorID := primitive.NewObjectID()
	teacherID := primitive.NewObjectID()
	studentID := primitive.NewObjectID()

	in := models.Internship{
		StudentID: studentID,
		MentorID:  mentorID,
		TeacherID: &teacherID,
	}

	assert.True(t, placementpolicy.CanReport(models.Profile{ID: studentID, Role: models.RoleStudent}, in))
	assert.True(t, placementpolicy.CanReport(models.Profile{ID: mentorID, Role: models.RoleMentor}, in))
	assert.True(t, placementpolicy.CanReport(models.Profile{ID: teacherID, Role: models.RoleTeacher}, in))
	assert.False(t, placementpolicy.CanReport(models.Profile{ID: primitive.NewObjectID(), Role: models.RoleStudent}, in))
}

func TestInternshipTransitionAllowed(t *testing.T) {
	allowed := [][2]string{
		{models.InternshipActive, models.InternshipCompleted},
		{models.InternshipActive, models.InternshipTerminated},
		{models.InternshipActive, models.InternshipOnHold},
		{models.InternshipOnHold, models.InternshipActive},
		{models.InternshipOnHold, models.InternshipTerminated},
	}
	for _, tr := range allowed {
		assert.True(t, placementpolicy.InternshipTransitionAllowed(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]string{
		{models.InternshipCompleted, models.InternshipActive},
		{models.InternshipTerminated, models.InternshipActive},
		{models.InternshipOnHold, models.InternshipCompleted},
		{models.InternshipActive, models.InternshipActive},
		{models.InternshipActive, "bogus"},
	}
	for _, tr := range denied {
		assert.False(t, placementpolicy.InternshipTransitionAllowed(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}
