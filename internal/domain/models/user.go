// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role tags. A person holds at most one role profile; code resolves the role
// by matching the tag, never by probing for profile fields.
const (
	RoleStudent  = "student"
	RoleMentor   = "mentor"
	RoleTeacher  = "teacher"
	RoleOfficial = "official"
)

// User represents a person on the platform: students, mentors, teachers,
// and government officials. Authentication lives outside this service; the
// boundary supplies the authenticated user's identity.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	Role       string             `bson:"role" json:"role"` // student | mentor | teacher | official

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ValidRole reports whether r is a known role tag.
func ValidRole(r string) bool {
	switch r {
	case RoleStudent, RoleMentor, RoleTeacher, RoleOfficial:
		return true
	}
	return false
}
