package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		// Valid emails
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},
		{"user123@example.co.uk", true},
		{"a@b.co", true},

		// Invalid - empty/whitespace
		{"", false},
		{"   ", false},

		// Invalid - missing parts
		{"user", false},
		{"user@", false},
		{"@example.com", false},

		// Invalid - domain without a dot (fail closed for membership checks)
		{"user@localhost", false},
		{"admin@mailserver", false},

		// Invalid - multiple @
		{"user@one@two.com", false},

		// Invalid - dot placement in domain
		{"user@.example.com", false},
		{"user@example.com.", false},
		{"user@example..com", false},

		// Invalid - whitespace inside
		{"user @example.com", false},
		{"user@ example.com", false},
		{"user@exam ple.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got := IsValidEmail(tt.email)
			if got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		email  string
		domain string
		ok     bool
	}{
		{"a@UNIV.EDU", "univ.edu", true},
		{"student@cs.univ.edu", "cs.univ.edu", true},
		{"  padded@example.com  ", "example.com", true},
		{"no-at-sign", "", false},
		{"@example.com", "", false},
		{"user@", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			domain, ok := EmailDomain(tt.email)
			if ok != tt.ok || domain != tt.domain {
				t.Errorf("EmailDomain(%q) = (%q, %v), want (%q, %v)", tt.email, domain, ok, tt.domain, tt.ok)
			}
		})
	}
}

func TestSameDomain(t *testing.T) {
	if !SameDomain("univ.edu", "UNIV.EDU") {
		t.Error("expected case-insensitive match")
	}
	// Subdomains are not treated as matching the parent domain.
	if SameDomain("cs.univ.edu", "univ.edu") {
		t.Error("subdomain must not match parent domain")
	}
	if SameDomain("", "") {
		t.Error("empty domains must not match")
	}
}
