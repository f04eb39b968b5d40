// Package rules holds the state-derivation rules that keep denormalized
// fields consistent. Nothing here touches a datastore.
package rules

import (
	"regexp"
	"strings"

	"p9e.in/sitecore/pkg/apperr"
)

var (
	projectCodePattern = regexp.MustCompile(`^[A-Z]{3}-[0-9]{3}$`)
	phonePattern       = regexp.MustCompile(`^[0-9]{10}$`)
	emailPattern       = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
)

// MinEmployeeIDLength is the shortest accepted employee identifier.
const MinEmployeeIDLength = 3

// NormalizeProjectCode uppercases code and checks the XXX-000 format.
func NormalizeProjectCode(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if !projectCodePattern.MatchString(normalized) {
		return "", apperr.Validation("project", "projectId", "must be in format XXX-000")
	}
	return normalized, nil
}

// ValidateEmployeeID trims id and enforces the minimum length.
func ValidateEmployeeID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if len(trimmed) < MinEmployeeIDLength {
		return "", apperr.Validation("manpower", "employeeId", "must be at least 3 characters")
	}
	return trimmed, nil
}

// NormalizePhone accepts an empty value or exactly ten digits.
func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone != "" && !phonePattern.MatchString(phone) {
		return "", apperr.Validation("manpower", "phone", "must be a 10-digit number")
	}
	return phone, nil
}

// NormalizeEmail lowercases and checks the address shape.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" && !emailPattern.MatchString(email) {
		return "", apperr.Validation("manpower", "email", "must be a valid email")
	}
	return email, nil
}

// RequireText trims v and rejects an empty result.
func RequireText(entity, field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", apperr.Validation(entity, field, "is required")
	}
	return v, nil
}

// ValidatePercent checks a 0-100 integer percentage.
func ValidatePercent(entity, field string, v int) error {
	if v < 0 || v > 100 {
		return apperr.Validation(entity, field, "must be between 0 and 100")
	}
	return nil
}
