// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization kinds. Institutes send students; companies host them.
const (
	OrgKindInstitute = "institute"
	OrgKindCompany   = "company"
)

// Registration statuses an organization moves through. Created pending;
// only a government official moves it to approved/rejected/suspended.
const (
	OrgStatusPending   = "pending"
	OrgStatusApproved  = "approved"
	OrgStatusRejected  = "rejected"
	OrgStatusSuspended = "suspended"
)

// Organization is an institute or company, optionally bound to a verified
// email domain. Includes case/diacritic-insensitive fields for search/sort.
type Organization struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Nanoid string             `bson:"nanoid" json:"nanoid"`
	Kind   string             `bson:"kind" json:"kind"` // "institute" | "company"

	Name        string `bson:"name" json:"name"`
	NameCI      string `bson:"name_ci" json:"-"` // folded Name, backs the per-kind unique index
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Industry    string `bson:"industry,omitempty" json:"industry,omitempty"` // companies only
	Address     string `bson:"address,omitempty" json:"address,omitempty"`
	Website     string `bson:"website,omitempty" json:"website,omitempty"`
	ContactEmail string `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	Phone       string `bson:"phone,omitempty" json:"phone,omitempty"`

	// Domain verification. Membership is only restricted when EmailDomain is
	// non-empty AND DomainVerified is true.
	EmailDomain    string `bson:"email_domain,omitempty" json:"email_domain,omitempty"`
	DomainVerified bool   `bson:"domain_verified" json:"domain_verified"`

	// Registration and approval workflow.
	RegistrationStatus string              `bson:"registration_status" json:"registration_status"`
	RegisteredBy       *primitive.ObjectID `bson:"registered_by,omitempty" json:"registered_by,omitempty"` // profile _id
	ApprovedBy         *primitive.ObjectID `bson:"approved_by,omitempty" json:"approved_by,omitempty"`     // official profile _id
	ApprovedAt         *time.Time          `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	RegistrationNotes  string              `bson:"registration_notes,omitempty" json:"registration_notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsApproved reports whether the organization is approved for operations.
func (o *Organization) IsApproved() bool {
	return o.RegistrationStatus == OrgStatusApproved
}

// RequiresDomainMatch reports whether membership checks apply to this
// organization. Both conditions must hold; a verified flag with no domain on
// record restricts nothing.
func (o *Organization) RequiresDomainMatch() bool {
	return o.DomainVerified && o.EmailDomain != ""
}

// ValidOrgStatus reports whether s is a known registration status.
func ValidOrgStatus(s string) bool {
	switch s {
	case OrgStatusPending, OrgStatusApproved, OrgStatusRejected, OrgStatusSuspended:
		return true
	}
	return false
}
