package tech

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Status is the learning-progress marker of a record.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusOnHold     Status = "on-hold"
)

// AllStatuses lists the valid statuses in display order.
var AllStatuses = []Status{StatusNotStarted, StatusInProgress, StatusCompleted, StatusOnHold}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus converts user input into a Status.
// Matching is case-insensitive and accepts underscores for hyphens.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	if !st.Valid() {
		return "", NewValidationError("status", fmt.Sprintf("unknown status %q (want one of %s)", s, statusList()))
	}
	return st, nil
}

func statusList() string {
	names := make([]string, len(AllStatuses))
	for i, s := range AllStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// ID identifies a record within the collection.
//
// It encodes as a JSON number. Decoding also accepts a string holding a
// decimal integer, which older exports and hand-written import files use.
type ID int64

// ParseID parses a decimal record identifier.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(n), nil
}

// String returns the decimal form of the id.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		// Date.now()-style ids are integral; reject fractional values.
		return fmt.Errorf("invalid id %s: must be an integer", data)
	}
	*id = ID(n)
	return nil
}

// Record is one tracked technology.
type Record struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"createdAt"`
	Deadline    string `json:"deadline,omitempty"`
}

// Validate checks the invariants every stored record must satisfy.
// Deadlines are checked separately because their range depends on the
// current date.
func (r Record) Validate() error {
	if err := ValidateTitle(r.Title); err != nil {
		return err
	}
	if err := ValidateDescription(r.Description); err != nil {
		return err
	}
	return ValidateStatus(r.Status)
}
