// internal/app/policy/membershippolicy/membershippolicy.go

// Package membershippolicy decides whether a user may join an organization.
//
// Membership rules:
//   - An organization with a verified email domain only admits users whose
//     email domain matches it exactly (case-insensitive, no subdomains)
//   - An organization without a verified domain admits any user
//   - An email that cannot be parsed unambiguously fails closed: it matches
//     no domain-restricted organization
//
// The policy is a pure domain check; registration status is not consulted.
// Callers that only admit approved organizations filter before calling.
package membershippolicy

import (
	"fmt"

	"github.com/dalemusser/internhub/internal/app/system/inputval"
	"github.com/dalemusser/internhub/internal/domain/models"
)

// Decision is the outcome of a membership check. Reason is set when Allowed
// is false and is safe to show the user.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(format string, args ...any) Decision {
	return Decision{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// ValidateMembership decides whether a user with the given email may join
// the organization.
func ValidateMembership(email string, org models.Organization) Decision {
	if !org.RequiresDomainMatch() {
		return allow()
	}
	domain, ok := inputval.EmailDomain(email)
	if !ok {
		return deny("email address %q could not be parsed", email)
	}
	if !inputval.SameDomain(domain, org.EmailDomain) {
		return deny("email domain %q does not match the organization's verified domain %q",
			domain, org.EmailDomain)
	}
	return allow()
}

// EligibleOrganizations filters orgs down to those the user may join.
func EligibleOrganizations(email string, orgs []models.Organization) []models.Organization {
	var eligible []models.Organization
	for _, org := range orgs {
		if ValidateMembership(email, org).Allowed {
			eligible = append(eligible, org)
		}
	}
	return eligible
}

// SuggestByDomain returns the organizations whose verified domain matches
// the user's email domain exactly, used to propose a home organization at
// signup. A malformed email suggests nothing.
func SuggestByDomain(email string, orgs []models.Organization) []models.Organization {
	domain, ok := inputval.EmailDomain(email)
	if !ok {
		return nil
	}
	var matched []models.Organization
	for _, org := range orgs {
		if !org.RequiresDomainMatch() {
			continue
		}
		if inputval.SameDomain(domain, org.EmailDomain) {
			matched = append(matched, org)
		}
	}
	return matched
}
