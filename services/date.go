package services

import (
	"fmt"
	"strings"
	"time"

	"case_docket_app_go/models"
)

// ParseDate parses a date string in the YYYY-MM-DD format.
// Surrounding whitespace is ignored; anything else that is not a real
// calendar date is rejected.
func ParseDate(dateStr string) (time.Time, error) {
	parsedTime, err := time.Parse(models.DateLayout, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: expected YYYY-MM-DD")
	}

	return parsedTime, nil
}

// ParseOptionalDate returns nil for a blank string and a parsed date otherwise
func ParseOptionalDate(dateStr string) (*time.Time, error) {
	if strings.TrimSpace(dateStr) == "" {
		return nil, nil
	}
	parsed, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
