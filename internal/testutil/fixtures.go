package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	userstore "github.com/dalemusser/internhub/internal/app/store/users"
	"github.com/dalemusser/internhub/internal/app/system/ids"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization creates a test organization of the given kind in the
// given registration status.
func (f *Fixtures) CreateOrganization(ctx context.Context, kind, name, status string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:                 primitive.NewObjectID(),
		Nanoid:             ids.Organization(),
		Kind:               kind,
		Name:               name,
		NameCI:             text.Fold(name),
		RegistrationStatus: status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	_, err := f.db.Collection("organizations").InsertOne(ctx, org)
	if err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}

	return org
}

// CreateVerifiedOrganization creates an approved organization with a
// verified email domain, so membership checks apply to it.
func (f *Fixtures) CreateVerifiedOrganization(ctx context.Context, kind, name, domain string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:                 primitive.NewObjectID(),
		Nanoid:             ids.Organization(),
		Kind:               kind,
		Name:               name,
		NameCI:             text.Fold(name),
		EmailDomain:        domain,
		DomainVerified:     true,
		RegistrationStatus: models.OrgStatusApproved,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	_, err := f.db.Collection("organizations").InsertOne(ctx, org)
	if err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}

	return org
}

// CreateUser creates a test user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	user, err := userstore.New(f.db).Create(ctx, models.User{
		FullName: fullName,
		Email:    email,
		Role:     role,
	})
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

func (f *Fixtures) insertProfile(ctx context.Context, p models.Profile) models.Profile {
	f.t.Helper()

	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.Nanoid = ids.Profile()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := f.db.Collection("profiles").InsertOne(ctx, p)
	if err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

// CreateStudentProfile creates an eligible student profile: available and in
// the given year of study.
func (f *Fixtures) CreateStudentProfile(ctx context.Context, userID primitive.ObjectID, orgID *primitive.ObjectID, year string) models.Profile {
	f.t.Helper()
	return f.insertProfile(ctx, models.Profile{
		UserID:         userID,
		Role:           models.RoleStudent,
		OrganizationID: orgID,
		Student: &models.StudentDetails{
			YearOfStudy:            year,
			Major:                  "Computer Science",
			GPA:                    3.5,
			AvailableForInternship: true,
		},
	})
}

// CreateMentorProfile creates a mentor profile for a company.
func (f *Fixtures) CreateMentorProfile(ctx context.Context, userID, companyID primitive.ObjectID, verified bool) models.Profile {
	f.t.Helper()
	return f.insertProfile(ctx, models.Profile{
		UserID:         userID,
		Role:           models.RoleMentor,
		OrganizationID: &companyID,
		Mentor: &models.MentorDetails{
			Position: "Senior Engineer",
			Verified: verified,
		},
	})
}

// CreateTeacherProfile creates a teacher profile for an institute.
func (f *Fixtures) CreateTeacherProfile(ctx context.Context, userID, instituteID primitive.ObjectID) models.Profile {
	f.t.Helper()
	return f.insertProfile(ctx, models.Profile{
		UserID:         userID,
		Role:           models.RoleTeacher,
		OrganizationID: &instituteID,
		Teacher: &models.TeacherDetails{
			Department: "Engineering",
			Title:      "Professor",
		},
	})
}

// CreateOfficialProfile creates a government official profile with
// organization-approval authority.
func (f *Fixtures) CreateOfficialProfile(ctx context.Context, userID primitive.ObjectID) models.Profile {
	f.t.Helper()
	return f.insertProfile(ctx, models.Profile{
		UserID: userID,
		Role:   models.RoleOfficial,
		Official: &models.OfficialDetails{
			Department:              "Ministry of Education",
			CanApproveOrganizations: true,
			AuthorityLevel:          models.AuthorityFederal,
		},
	})
}

// CreatePosition creates an active position with the given capacity, open
// for roughly the next three months.
func (f *Fixtures) CreatePosition(ctx context.Context, companyID, mentorID primitive.ObjectID, title string, maxStudents int) models.Position {
	f.t.Helper()

	now := time.Now().UTC()
	pos := models.Position{
		ID:             primitive.NewObjectID(),
		Nanoid:         ids.Position(),
		CompanyID:      companyID,
		MentorID:       mentorID,
		Title:          title,
		DurationMonths: 3,
		StartDate:      now.AddDate(0, 1, 0),
		EndDate:        now.AddDate(0, 3, 0),
		MaxStudents:    maxStudents,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := f.db.Collection("positions").InsertOne(ctx, pos)
	if err != nil {
		f.t.Fatalf("failed to create test position: %v", err)
	}

	return pos
}

// CreateApplication creates an application in the given status.
func (f *Fixtures) CreateApplication(ctx context.Context, studentID, positionID primitive.ObjectID, status string) models.Application {
	f.t.Helper()

	app := models.Application{
		ID:          primitive.NewObjectID(),
		Nanoid:      ids.Application(),
		StudentID:   studentID,
		PositionID:  positionID,
		CoverLetter: "I would like to apply.",
		Status:      status,
		AppliedAt:   time.Now().UTC(),
	}

	_, err := f.db.Collection("applications").InsertOne(ctx, app)
	if err != nil {
		f.t.Fatalf("failed to create test application: %v", err)
	}

	return app
}

// CreateInternship creates an active internship running from a month ago to
// two months from now.
func (f *Fixtures) CreateInternship(ctx context.Context, applicationID, studentID, mentorID primitive.ObjectID) models.Internship {
	f.t.Helper()

	now := time.Now().UTC()
	in := models.Internship{
		ID:            primitive.NewObjectID(),
		Nanoid:        ids.Internship(),
		ApplicationID: applicationID,
		StudentID:     studentID,
		MentorID:      mentorID,
		StartDate:     now.AddDate(0, -1, 0),
		EndDate:       now.AddDate(0, 2, 0),
		Status:        models.InternshipActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := f.db.Collection("internships").InsertOne(ctx, in)
	if err != nil {
		f.t.Fatalf("failed to create test internship: %v", err)
	}

	return in
}
