package tech

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Field constraints enforced at the repository boundary.
const (
	MinTitleLen       = 2
	MaxTitleLen       = 50
	MinDescriptionLen = 10
	MaxDeadlineYears  = 5
)

// DateLayout is the stored form of a deadline.
const DateLayout = "2006-01-02"

// ValidateTitle checks the trimmed title length in characters.
func ValidateTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	switch {
	case n == 0:
		return NewValidationError("title", "title is required")
	case n < MinTitleLen:
		return NewValidationError("title", fmt.Sprintf("title must be at least %d characters", MinTitleLen))
	case n > MaxTitleLen:
		return NewValidationError("title", fmt.Sprintf("title must be at most %d characters", MaxTitleLen))
	}
	return nil
}

// ValidateID checks a caller-supplied id. Zero means "assign one".
func ValidateID(id ID) error {
	switch {
	case id < 0:
		return NewValidationError("id", "id must not be negative")
	case id > MaxID:
		return NewValidationError("id", fmt.Sprintf("id must be at most %d", MaxID))
	}
	return nil
}

// ValidateStatus checks s is one of the enumerated statuses.
func ValidateStatus(s Status) error {
	if !s.Valid() {
		return NewValidationError("status", fmt.Sprintf("unknown status %q (want one of %s)", s, statusList()))
	}
	return nil
}

// ValidateDescription checks the trimmed description length in characters.
func ValidateDescription(desc string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(desc))
	switch {
	case n == 0:
		return NewValidationError("description", "description is required")
	case n < MinDescriptionLen:
		return NewValidationError("description", fmt.Sprintf("description must be at least %d characters", MinDescriptionLen))
	}
	return nil
}

// NormalizeDeadline parses a deadline and checks it falls within
// [today, today+MaxDeadlineYears] relative to now's calendar date.
// It accepts YYYY-MM-DD or an RFC 3339 timestamp and returns YYYY-MM-DD.
// An empty string clears the deadline and is always valid.
func NormalizeDeadline(deadline string, now time.Time) (string, error) {
	deadline = strings.TrimSpace(deadline)
	if deadline == "" {
		return "", nil
	}

	loc := now.Location()
	d, err := time.ParseInLocation(DateLayout, deadline, loc)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, deadline)
		if tsErr != nil {
			return "", NewValidationError("deadline", fmt.Sprintf("invalid date %q: want YYYY-MM-DD", deadline))
		}
		d = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if d.Before(today) {
		return "", NewValidationError("deadline", "deadline cannot be in the past")
	}
	if d.After(today.AddDate(MaxDeadlineYears, 0, 0)) {
		return "", NewValidationError("deadline", fmt.Sprintf("deadline cannot be more than %d years away", MaxDeadlineYears))
	}
	return d.Format(DateLayout), nil
}
