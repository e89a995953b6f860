package entity

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Validation limits for the user aggregate.
const (
	MaxEmailLength = 256
	MaxNameLength  = 50
	MaxBioLength   = 80
	MinimumAge     = 12
)

var (
	usernameRegex = regexp.MustCompile(`^[a-z0-9._]{2,24}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// IsValidEmail reports whether s looks like local@domain.tld and is not
// longer than MaxEmailLength.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len(s) <= MaxEmailLength && emailRegex.MatchString(s)
}

// IsValidUsername reports whether s matches the canonical username shape.
// The caller is expected to lowercase/trim first; this function does not.
func IsValidUsername(s string) bool {
	return usernameRegex.MatchString(s)
}

// IsValidBirthDate reports whether a person born on birthDate is at least
// MinimumAge years old at ref. The boundary is inclusive: on the twelfth
// birthday the date is valid.
func IsValidBirthDate(birthDate, ref time.Time) bool {
	if birthDate.IsZero() || birthDate.After(ref) {
		return false
	}
	age := ref.Year() - birthDate.Year()
	// birthday not reached yet this year
	if ref.Month() < birthDate.Month() ||
		(ref.Month() == birthDate.Month() && ref.Day() < birthDate.Day()) {
		age--
	}
	return age >= MinimumAge
}

// IsAbsoluteURL reports whether s is a well-formed absolute URL.
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs() && u.Host != ""
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
