// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Years of study during which students may apply for internships.
const (
	YearThird  = "3"
	YearFourth = "4"
)

// Official approval authority levels.
const (
	AuthorityLocal      = "local"
	AuthorityProvincial = "provincial"
	AuthorityFederal    = "federal"
)

// Profile is the single tagged role profile for a user. Exactly one document
// per (user_id); the Role tag selects which of the embedded sections is
// meaningful. Organization linkage is optional until the person joins one.
type Profile struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Nanoid         string              `bson:"nanoid" json:"nanoid"`
	UserID         primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Role           string              `bson:"role" json:"role"`
	OrganizationID *primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`

	Student  *StudentDetails  `bson:"student,omitempty" json:"student,omitempty"`
	Mentor   *MentorDetails   `bson:"mentor,omitempty" json:"mentor,omitempty"`
	Teacher  *TeacherDetails  `bson:"teacher,omitempty" json:"teacher,omitempty"`
	Official *OfficialDetails `bson:"official,omitempty" json:"official,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// StudentDetails holds academic information for student profiles.
type StudentDetails struct {
	StudentNumber          string     `bson:"student_number,omitempty" json:"student_number,omitempty"`
	YearOfStudy            string     `bson:"year_of_study,omitempty" json:"year_of_study,omitempty"` // "3" | "4"
	Major                  string     `bson:"major,omitempty" json:"major,omitempty"`
	GPA                    float64    `bson:"gpa,omitempty" json:"gpa,omitempty"` // 0.00 - 4.00
	Skills                 string     `bson:"skills,omitempty" json:"skills,omitempty"`
	PortfolioURL           string     `bson:"portfolio_url,omitempty" json:"portfolio_url,omitempty"`
	ExpectedGraduation     *time.Time `bson:"expected_graduation,omitempty" json:"expected_graduation,omitempty"`
	AvailableForInternship bool       `bson:"available_for_internship" json:"available_for_internship"`
}

// MentorDetails holds company-representative information for mentor profiles.
type MentorDetails struct {
	Position        string `bson:"position,omitempty" json:"position,omitempty"`
	Department      string `bson:"department,omitempty" json:"department,omitempty"`
	ExperienceYears int    `bson:"experience_years,omitempty" json:"experience_years,omitempty"`
	Specialization  string `bson:"specialization,omitempty" json:"specialization,omitempty"`
	Verified        bool   `bson:"verified" json:"verified"`
	AdminContact    bool   `bson:"admin_contact" json:"admin_contact"`
}

// TeacherDetails holds institute-staff information for teacher profiles.
type TeacherDetails struct {
	Department   string `bson:"department,omitempty" json:"department,omitempty"`
	Title        string `bson:"title,omitempty" json:"title,omitempty"` // Professor, Associate Professor, etc.
	EmployeeID   string `bson:"employee_id,omitempty" json:"employee_id,omitempty"`
	AdminContact bool   `bson:"admin_contact" json:"admin_contact"`
}

// OfficialDetails holds government-official information.
type OfficialDetails struct {
	Department              string `bson:"department,omitempty" json:"department,omitempty"`
	Position                string `bson:"position,omitempty" json:"position,omitempty"`
	EmployeeID              string `bson:"employee_id,omitempty" json:"employee_id,omitempty"`
	CanApproveOrganizations bool   `bson:"can_approve_organizations" json:"can_approve_organizations"`
	AuthorityLevel          string `bson:"authority_level,omitempty" json:"authority_level,omitempty"`
}

// IsVerifiedMentor reports whether this profile is a mentor cleared to create
// internship positions.
func (p *Profile) IsVerifiedMentor() bool {
	return p.Role == RoleMentor && p.Mentor != nil && p.Mentor.Verified
}

// CanRegisterOrganization reports whether this profile may register an
// organization of the given kind. Teachers register institutes, mentors
// register companies, and officials may register either.
func (p *Profile) CanRegisterOrganization(kind string) bool {
	switch p.Role {
	case RoleTeacher:
		return kind == OrgKindInstitute
	case RoleMentor:
		return kind == OrgKindCompany
	case RoleOfficial:
		return kind == OrgKindInstitute || kind == OrgKindCompany
	}
	return false
}

// CanApproveOrganizations reports whether this profile is an official with
// organization-approval authority.
func (p *Profile) CanApproveOrganizations() bool {
	return p.Role == RoleOfficial && p.Official != nil && p.Official.CanApproveOrganizations
}

// EligibleForInternship reports whether a student profile satisfies the
// applicability policy: available, and within the third/fourth-year window.
func (p *Profile) EligibleForInternship() bool {
	if p.Role != RoleStudent || p.Student == nil {
		return false
	}
	if !p.Student.AvailableForInternship {
		return false
	}
	return p.Student.YearOfStudy == YearThird || p.Student.YearOfStudy == YearFourth
}
