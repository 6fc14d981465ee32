package visitors

import (
	"regexp"
	"strings"
)

// Validation rules for registration input. Failures are collected, not
// fail-fast, so the form can show every problem in one pass.

var (
	reEmail = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	// Dutch number: leading trunk zero or +31 prefix, then 9-10 digits.
	rePhone      = regexp.MustCompile(`^(\+31|0)[0-9]{9,10}$`)
	rePhoneNoise = regexp.MustCompile(`[\s\-()]`)
)

// ValidationError aggregates every rule violation of a single submission.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func validEmail(email string) bool {
	return reEmail.MatchString(email)
}

func validPhone(phone string) bool {
	clean := rePhoneNoise.ReplaceAllString(phone, "")
	return rePhone.MatchString(clean)
}

func validateRegistration(reg Registration) []string {
	var problems []string

	if len([]rune(strings.TrimSpace(reg.Name))) < 2 {
		problems = append(problems, "name must be at least 2 characters")
	}

	if !validEmail(strings.TrimSpace(reg.Email)) {
		problems = append(problems, "a valid email address is required")
	}

	if !validPhone(strings.TrimSpace(reg.Phone)) {
		problems = append(problems, "a valid Dutch phone number is required")
	}

	if strings.TrimSpace(reg.Company) == "" {
		problems = append(problems, "company is required")
	}
	if strings.TrimSpace(reg.Host) == "" {
		problems = append(problems, "the person you are visiting is required")
	}
	if strings.TrimSpace(reg.Reason) == "" {
		problems = append(problems, "reason of visit is required")
	}

	return problems
}
