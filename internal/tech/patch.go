package tech

import "strings"

// Draft holds the caller-supplied fields of a record that does not exist yet.
// A zero ID or empty CreatedAt asks the repository to assign one; imports
// supply both to keep a record's identity across export and import.
type Draft struct {
	ID          ID     `json:"id,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
}

// Patch is a field-level merge applied by update and bulk update.
// Nil fields are left untouched. ID and CreatedAt cannot be patched.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
}

// StatusPatch returns a patch that only changes the status.
func StatusPatch(s Status) Patch {
	return Patch{Status: &s}
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Notes == nil && p.Deadline == nil
}

// Validate checks the fields the patch sets. Deadlines depend on the
// current date and are checked by the caller.
func (p Patch) Validate() error {
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := ValidateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Status != nil {
		return ValidateStatus(*p.Status)
	}
	return nil
}

// Apply returns a copy of r with the patch merged in.
// Title and description are stored trimmed.
func (p Patch) Apply(r Record) Record {
	if p.Title != nil {
		r.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		r.Description = strings.TrimSpace(*p.Description)
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.Deadline != nil {
		r.Deadline = *p.Deadline
	}
	return r
}
