package messaging

import (
	"errors"
	"strings"
)

// ErrInvalidPhone is returned when a phone number cannot be normalized.
var ErrInvalidPhone = errors.New("invalid phone number")

var phoneSeparators = strings.NewReplacer(" ", "", "\t", "", "-", "", "(", "", ")", "", ".", "")

// NormalizePhone converts heterogeneous phone input into a canonical
// international digit string. Local numbers are completed with
// defaultCountryCode: a 10-digit number with a leading trunk zero has the
// zero replaced, and a bare 9-digit subscriber number gets the code
// prepended. The result is all digits, 10 to 15 characters.
func NormalizePhone(raw, defaultCountryCode string) (string, error) {
	cleaned := phoneSeparators.Replace(strings.TrimSpace(raw))
	cleaned = strings.TrimPrefix(cleaned, "+")
	if !isDigits(cleaned) {
		return "", ErrInvalidPhone
	}
	if len(cleaned) < 9 || len(cleaned) > 15 {
		return "", ErrInvalidPhone
	}

	switch {
	case strings.HasPrefix(cleaned, "0") && len(cleaned) == 10:
		cleaned = defaultCountryCode + cleaned[1:]
	case len(cleaned) == 9:
		cleaned = defaultCountryCode + cleaned
	}

	if !isDigits(cleaned) || len(cleaned) < 10 || len(cleaned) > 15 {
		return "", ErrInvalidPhone
	}
	return cleaned, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
