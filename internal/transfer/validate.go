package transfer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/fetrias/techtrack/internal/tech"
)

//go:embed import.cue
var entrySchemaSource string

// Entry is one validated import entry.
type Entry = tech.Draft

// fieldOrder is the order fields are reported in when an entry has several
// problems.
var fieldOrder = []string{"title", "description", "id", "status", "notes", "createdAt", "deadline"}

var fieldReasons = map[string]string{
	"title":       fmt.Sprintf("title must be a non-blank string of at most %d characters", tech.MaxTitleLen),
	"description": "description must be a non-blank string",
	"id":          fmt.Sprintf("id must be an integer from 0 to %d or a numeric string", tech.MaxID),
	"status":      "status must be one of not-started, in-progress, completed, on-hold",
	"notes":       "notes must be a string",
	"createdAt":   "createdAt must be a string",
	"deadline":    "deadline must be a string",
}

type schema struct {
	ctx   *cue.Context
	entry cue.Value
}

var (
	schemaOnce sync.Once
	schemaVal  *schema
	schemaErr  error

	// cue.Context is not safe for concurrent use.
	schemaMu sync.Mutex
)

func loadSchema() (*schema, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(entrySchemaSource, cue.Filename("import.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile import schema: %w", err)
			return
		}
		schemaVal = &schema{ctx: ctx, entry: v.LookupPath(cue.ParsePath("#Entry"))}
	})
	return schemaVal, schemaErr
}

// Validate parses an import payload and checks every entry in order.
//
// The payload must be strict JSON with a "technologies" list. The first
// entry that fails the schema is reported as a *tech.ValidationError
// carrying its index and title; nothing is returned for the others.
func Validate(payload []byte) ([]Entry, error) {
	if !json.Valid(payload) {
		return nil, tech.NewValidationError("", "not valid JSON")
	}

	s, err := loadSchema()
	if err != nil {
		return nil, err
	}

	schemaMu.Lock()
	defer schemaMu.Unlock()

	expr, err := cuejson.Extract("import.json", payload)
	if err != nil {
		return nil, tech.NewValidationError("", fmt.Sprintf("not valid JSON: %v", err))
	}
	root := s.ctx.BuildExpr(expr)
	if err := root.Err(); err != nil {
		return nil, tech.NewValidationError("", fmt.Sprintf("not valid JSON: %v", err))
	}

	list := root.LookupPath(cue.ParsePath("technologies"))
	if !list.Exists() {
		return nil, tech.NewValidationError("technologies", "missing technologies array")
	}
	if list.IncompleteKind() != cue.ListKind {
		return nil, tech.NewValidationError("technologies", "technologies must be an array")
	}

	var doc struct {
		Technologies []json.RawMessage `json:"technologies"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, tech.NewValidationError("technologies", err.Error())
	}
	raw := doc.Technologies

	iter, err := list.List()
	if err != nil {
		return nil, tech.NewValidationError("technologies", err.Error())
	}

	entries := make([]Entry, 0, len(raw))
	for i := 0; iter.Next() && i < len(raw); i++ {
		v := iter.Value()
		if verr := checkEntry(s.entry, v, i); verr != nil {
			return nil, verr
		}

		var e Entry
		if err := json.Unmarshal(raw[i], &e); err != nil {
			return nil, &tech.ValidationError{Index: i, Title: entryTitle(v), Field: "entry", Reason: err.Error()}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// checkEntry unifies one entry with the schema and converts the first
// failure into a ValidationError.
func checkEntry(def, v cue.Value, index int) *tech.ValidationError {
	if v.IncompleteKind() != cue.StructKind {
		return &tech.ValidationError{Index: index, Field: "entry", Reason: "entry must be an object"}
	}

	err := def.Unify(v).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	field := failingField(err)
	reason, ok := fieldReasons[field]
	switch {
	case !ok:
		field, reason = "entry", cueerrors.Details(err, nil)
	case !v.LookupPath(cue.ParsePath(field)).Exists():
		reason = field + " is required"
	}
	return &tech.ValidationError{Index: index, Title: entryTitle(v), Field: field, Reason: reason}
}

// failingField picks the earliest schema field named in the error paths.
func failingField(err error) string {
	seen := map[string]bool{}
	for _, e := range cueerrors.Errors(err) {
		for _, sel := range e.Path() {
			seen[sel] = true
		}
	}
	for _, f := range fieldOrder {
		if seen[f] {
			return f
		}
	}
	return ""
}

func entryTitle(v cue.Value) string {
	s, err := v.LookupPath(cue.ParsePath("title")).String()
	if err != nil {
		return ""
	}
	return s
}
