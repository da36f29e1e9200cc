package orgdirectory_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/internhub/internal/app/lifecycle/orgdirectory"
	"github.com/dalemusser/internhub/internal/app/notify"
	organizationstore "github.com/dalemusser/internhub/internal/app/store/organizations"
	profilestore "github.com/dalemusser/internhub/internal/app/store/profiles"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/internhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newService(db *mongo.Database, dispatcher notify.Dispatcher) *orgdirectory.Service {
	return orgdirectory.New(organizationstore.New(db), profilestore.New(db), dispatcher, nil, zap.NewNop())
}

func TestService_Register(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := newService(db, notify.Nop{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	institute := fixtures.CreateOrganization(ctx, models.OrgKindInstitute, "Seed Institute", models.OrgStatusApproved)
	teacherUser := fixtures.CreateUser(ctx, "Teacher", "teacher@seed.edu", models.RoleTeacher)
	teacher := fixtures.CreateTeacherProfile(ctx, teacherUser.ID, institute.ID)

	org, err := svc.Register(ctx, teacher, models.Organization{
		Kind:        models.OrgKindInstitute,
		Name:        "State University",
		EmailDomain: "state.edu",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if org.RegistrationStatus != models.OrgStatusPending {
		t.Errorf("RegistrationStatus: got %q, want %q", org.RegistrationStatus, models.OrgStatusPending)
	}
	if org.DomainVerified {
		t.Error("a fresh registration must not have a verified domain")
	}
	if org.RegisteredBy == nil || *org.RegisteredBy != teacher.ID {
		t.Error("expected RegisteredBy to record the registrant")
	}
}

func TestService_Register_RoleKindMismatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := newService(db, notify.Nop{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	company := fixtures.CreateOrganization(ctx, models.OrgKindCompany, "Seed Co", models.OrgStatusApproved)
	mentorUser := fixtures.CreateUser(ctx, "Mentor", "mentor@seed.com", models.RoleMentor)
	mentor := fixtures.CreateMentorProfile(ctx, mentorUser.ID, company.ID, true)

	// Mentors register companies, not institutes.
	_, err := svc.Register(ctx, mentor, models.Organization{
		Kind: models.OrgKindInstitute,
		Name: "Mentor University",
	})
	if !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}

	if _, err := svc.Register(ctx, mentor, models.Organization{
		Kind: models.OrgKindCompany,
		Name: "Mentor Labs",
	}); err != nil {
		t.Errorf("mentor registering a company failed: %v", err)
	}
}

func TestService_Register_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := newService(db, notify.Nop{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	officialUser := fixtures.CreateUser(ctx, "Official", "official@gov.example", models.RoleOfficial)
	official := fixtures.CreateOfficialProfile(ctx, officialUser.ID)

	if _, err := svc.Register(ctx, official, models.Organization{Kind: "club", Name: "X"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown kind: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Register(ctx, official, models.Organization{Kind: models.OrgKindCompany}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("missing name: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Register(ctx, official, models.Organization{
		Kind:        models.OrgKindCompany,
		Name:        "Bad Domain Co",
		EmailDomain: "not a domain",
	}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad domain: expected ErrValidation, got %v", err)
	}
}

func TestService_ReviewFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	recorder := &notify.Recorder{}
	svc := newService(db, recorder)
	orgs := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	officialUser := fixtures.CreateUser(ctx, "Official", "official@gov.example", models.RoleOfficial)
	official := fixtures.CreateOfficialProfile(ctx, officialUser.ID)

	teacherUser := fixtures.CreateUser(ctx, "Teacher", "teacher@state.edu", models.RoleTeacher)
	teacher := fixtures.CreateTeacherProfile(ctx, teacherUser.ID, fixtures.CreateOrganization(ctx, models.OrgKindInstitute, "Seed", models.OrgStatusApproved).ID)

	org, err := svc.Register(ctx, teacher, models.Organization{
		Kind: models.OrgKindInstitute,
		Name: "State University",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.Approve(ctx, org.ID, official, "verified against the registry"); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	got, err := orgs.GetByID(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.RegistrationStatus != models.OrgStatusApproved {
		t.Errorf("RegistrationStatus: got %q, want %q", got.RegistrationStatus, models.OrgStatusApproved)
	}
	if got.ApprovedBy == nil || *got.ApprovedBy != official.ID {
		t.Error("expected ApprovedBy to record the official")
	}

	// The registrant hears about the decision.
	if len(recorder.SentTo(teacherUser.ID)) == 0 {
		t.Error("expected a notification for the registrant")
	}

	// Approving twice is an invalid transition.
	if err := svc.Approve(ctx, org.ID, official, ""); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	// Approved organizations can be suspended and re-approved.
	if err := svc.Suspend(ctx, org.ID, official, "compliance review"); err != nil {
		t.Fatalf("Suspend failed: %v", err)
	}
	if err := svc.Approve(ctx, org.ID, official, "review cleared"); err != nil {
		t.Fatalf("re-Approve failed: %v", err)
	}
}

func TestService_Review_RequiresAuthority(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := newService(db, notify.Nop{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, models.OrgKindCompany, "Acme", models.OrgStatusPending)

	teacherUser := fixtures.CreateUser(ctx, "Teacher", "teacher@state.edu", models.RoleTeacher)
	teacher := fixtures.CreateTeacherProfile(ctx, teacherUser.ID, org.ID)

	if err := svc.Approve(ctx, org.ID, teacher, ""); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestService_VerifyDomain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := newService(db, notify.Nop{})
	orgs := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	officialUser := fixtures.CreateUser(ctx, "Official", "official@gov.example", models.RoleOfficial)
	official := fixtures.CreateOfficialProfile(ctx, officialUser.ID)

	org := fixtures.CreateOrganization(ctx, models.OrgKindInstitute, "No Domain U", models.OrgStatusApproved)

	// Verification requires a domain on record.
	if err := svc.VerifyDomain(ctx, org.ID, official); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	if err := orgs.SetEmailDomain(ctx, org.ID, "state.edu"); err != nil {
		t.Fatalf("SetEmailDomain failed: %v", err)
	}
	if err := svc.VerifyDomain(ctx, org.ID, official); err != nil {
		t.Fatalf("VerifyDomain failed: %v", err)
	}

	got, err := orgs.GetByID(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.DomainVerified {
		t.Error("expected DomainVerified to be set")
	}

	if err := svc.UnverifyDomain(ctx, org.ID, official); err != nil {
		t.Fatalf("UnverifyDomain failed: %v", err)
	}
	got, _ = orgs.GetByID(ctx, org.ID)
	if got.DomainVerified {
		t.Error("expected DomainVerified to be cleared")
	}
}

func TestService_Join(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := newService(db, notify.Nop{})
	profiles := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateVerifiedOrganization(ctx, models.OrgKindInstitute, "State University", "state.edu")

	studentUser := fixtures.CreateUser(ctx, "Student", "student@state.edu", models.RoleStudent)
	student := fixtures.CreateStudentProfile(ctx, studentUser.ID, nil, models.YearThird)

	if err := svc.Join(ctx, student, studentUser.Email, org.ID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	got, err := profiles.GetByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.OrganizationID == nil || *got.OrganizationID != org.ID {
		t.Error("expected profile to be linked to the organization")
	}

	// A mismatched domain is refused.
	outsiderUser := fixtures.CreateUser(ctx, "Outsider", "outsider@other.edu", models.RoleStudent)
	outsider := fixtures.CreateStudentProfile(ctx, outsiderUser.ID, nil, models.YearThird)
	if err := svc.Join(ctx, outsider, outsiderUser.Email, org.ID); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}

	// The domain check is status-blind, but only approved organizations
	// accept members.
	pending := fixtures.CreateOrganization(ctx, models.OrgKindInstitute, "Pending University", models.OrgStatusPending)
	decision, err := svc.ValidateMembership(ctx, studentUser.Email, pending.ID)
	if err != nil {
		t.Fatalf("ValidateMembership failed: %v", err)
	}
	if !decision.Allowed {
		t.Errorf("unrestricted pending organization: expected allowed, got denied with %q", decision.Reason)
	}
	if err := svc.Join(ctx, student, studentUser.Email, pending.ID); !errors.Is(err, apperr.ErrPermissionDenied) {
		t.Errorf("join pending organization: expected ErrPermissionDenied, got %v", err)
	}
}

func TestService_SuggestByDomain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	svc := newService(db, notify.Nop{})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	match := fixtures.CreateVerifiedOrganization(ctx, models.OrgKindInstitute, "State University", "state.edu")
	fixtures.CreateVerifiedOrganization(ctx, models.OrgKindInstitute, "Other University", "other.edu")

	got, err := svc.SuggestByDomain(ctx, "student@state.edu", models.OrgKindInstitute)
	if err != nil {
		t.Fatalf("SuggestByDomain failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != match.ID {
		t.Errorf("suggestions: got %d, want the matching organization", len(got))
	}

	none, err := svc.SuggestByDomain(ctx, "garbage", models.OrgKindInstitute)
	if err != nil {
		t.Fatalf("SuggestByDomain failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no suggestions for a malformed email, got %d", len(none))
	}
}
