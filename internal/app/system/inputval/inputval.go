// internal/app/system/inputval/inputval.go

// Package inputval validates boundary-supplied field values before they
// reach the stores.
//
// Email handling here is deliberately stricter than RFC 5322: membership
// validation compares the literal domain text after the single "@" against
// an organization's verified domain, so anything that cannot be split
// unambiguously is rejected rather than parsed leniently.
package inputval

import "strings"

// IsValidEmail reports whether email has exactly one "@", a non-empty local
// part, and a non-empty domain containing at least one dot. Addresses that
// fail here fail closed in membership checks.
func IsValidEmail(email string) bool {
	_, ok := EmailDomain(email)
	return ok
}

// EmailDomain extracts the lowercased domain part of email. Returns ok=false
// for anything malformed: zero or multiple "@", empty local or domain part,
// a domain without a dot, or embedded whitespace.
func EmailDomain(email string) (string, bool) {
	email = strings.TrimSpace(email)
	if email == "" || strings.ContainsAny(email, " \t\n\r") {
		return "", false
	}
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return "", false
	}
	domain := email[at+1:]
	if domain == "" || !strings.Contains(domain, ".") {
		return "", false
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") || strings.Contains(domain, "..") {
		return "", false
	}
	return strings.ToLower(domain), true
}

// SameDomain reports whether two domain strings match case-insensitively.
// Exact match only; subdomains of a verified domain do not match it.
func SameDomain(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
