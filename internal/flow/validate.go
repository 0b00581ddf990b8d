package flow

import (
	"regexp"
	"strings"
	"time"
)

var phonePattern = regexp.MustCompile(`^\+?\d[\d\s\-]{7,20}$`)

// ValidatePhone reports whether text looks like a phone number.
func ValidatePhone(text string) bool {
	return phonePattern.MatchString(strings.TrimSpace(text))
}

// ValidateDate reports whether text is a calendar-valid DD.MM.YYYY date.
func ValidateDate(text string) bool {
	_, err := time.Parse("02.01.2006", strings.TrimSpace(text))
	return err == nil
}
