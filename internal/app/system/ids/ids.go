// internal/app/system/ids/ids.go

// Package ids generates the public external identifiers carried by every
// entity. These are URL-safe nanoids, distinct from the Mongo _id, assigned
// once at creation and never reused or mutated. Lengths differ per entity
// class and are part of the external contract.
package ids

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// External identifier lengths per entity class.
const (
	OrganizationLen = 10
	ProfileLen      = 12
	PositionLen     = 12
	InternshipLen   = 12
	ApplicationLen  = 14
)

// mustGenerate wraps gonanoid; generation only fails when the OS entropy
// source is broken, which is not a recoverable application error.
func mustGenerate(size int) string {
	id, err := gonanoid.New(size)
	if err != nil {
		panic("ids: entropy source failed: " + err.Error())
	}
	return id
}

// Organization returns a new 10-character organization identifier.
func Organization() string { return mustGenerate(OrganizationLen) }

// Profile returns a new 12-character role-profile identifier.
func Profile() string { return mustGenerate(ProfileLen) }

// Position returns a new 12-character position identifier.
func Position() string { return mustGenerate(PositionLen) }

// Internship returns a new 12-character internship identifier.
func Internship() string { return mustGenerate(InternshipLen) }

// Application returns a new 14-character application identifier.
func Application() string { return mustGenerate(ApplicationLen) }

// Record returns a new 12-character identifier for interviews, reports, and
// notifications.
func Record() string { return mustGenerate(ProfileLen) }
