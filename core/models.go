package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID is the identifier of a directory user. IDs are assigned by the
// directory service and are never minted locally.
type ID int64

// ParseID coerces a loosely-typed value (JSON number, float, string) to an ID.
// Model output and directory payloads both arrive as untyped JSON, so this is
// the single place where "something that looks like an id" becomes an ID.
func ParseID(v any) (ID, error) {
	switch t := v.(type) {
	case ID:
		return t, nil
	case int:
		return ID(t), nil
	case int64:
		return ID(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedID, t.String())
		}
		return ID(n), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("%w: %v", ErrMalformedID, t)
		}
		return ID(t), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedID, t)
		}
		return ID(n), nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrMalformedID, v)
	}
}

// User is a full directory record. The directory owns these; the pipeline
// only ever reads snapshots of them.
type User struct {
	ID         ID
	Attributes map[string]string
}

// UnmarshalJSON accepts an arbitrary directory payload, pulls the id, and
// flattens every other attribute to a string. The directory schema is not
// under our control beyond the id field.
func (u *User) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	idVal, ok := raw["id"]
	if !ok {
		return fmt.Errorf("%w: missing id", ErrInvalidUser)
	}
	id, err := ParseID(idVal)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}

	attrs := make(map[string]string, len(raw)-1)
	for key, val := range raw {
		if key == "id" {
			continue
		}
		attrs[key] = stringifyAttribute(val)
	}

	u.ID = id
	u.Attributes = attrs
	return nil
}

// MarshalJSON renders the user back to a flat object with the id restored.
func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Attributes)+1)
	for k, v := range u.Attributes {
		out[k] = v
	}
	out["id"] = int64(u.ID)
	return json.Marshal(out)
}

// About returns the free-text bio attribute, or "" when the user has none.
// Directories disagree on the attribute name, so both spellings are accepted.
func (u *User) About() string {
	if v := u.Attributes["about"]; v != "" {
		return v
	}
	return u.Attributes["about_me"]
}

func stringifyAttribute(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// Document is the compact projection of a user used for embedding.
// It is immutable: sync discards and regenerates documents, never patches them.
type Document struct {
	ID   ID
	Text string
}

// CompactUser projects a full user record to the minimal embedding text.
// Only the id and the bio ever enter the text; this bounds both token cost
// and PII exposure. A missing bio yields empty text, never an error.
func CompactUser(user *User) Document {
	var sb strings.Builder
	sb.WriteString("user_id: ")
	sb.WriteString(strconv.FormatInt(int64(user.ID), 10))
	sb.WriteString("\nabout: ")
	sb.WriteString(user.About())
	sb.WriteString("\n")
	return Document{ID: user.ID, Text: sb.String()}
}

// IndexEntry is a persisted vector index record.
type IndexEntry struct {
	ID     ID
	Text   string
	Vector []float32
}

// Document returns the compact document the entry was built from.
func (e *IndexEntry) Document() Document {
	return Document{ID: e.ID, Text: e.Text}
}

// Match is a similarity search hit.
type Match struct {
	Document Document
	Score    float32
}

// ExtractionStatus tags how an extraction result was obtained.
type ExtractionStatus int

const (
	// ExtractionEmpty means the model produced nothing usable.
	ExtractionEmpty ExtractionStatus = iota
	// ExtractionValid means the model output passed strict schema validation.
	ExtractionValid
	// ExtractionRecovered means the output failed the strict schema but a
	// lenient parse salvaged a matches mapping.
	ExtractionRecovered
)

// String returns the status name for logging.
func (s ExtractionStatus) String() string {
	switch s {
	case ExtractionValid:
		return "valid"
	case ExtractionRecovered:
		return "recovered"
	default:
		return "empty"
	}
}

// Extraction is the untrusted category -> ids mapping produced by the model.
// Every id in it must be independently verified before it reaches a caller.
type Extraction struct {
	Status  ExtractionStatus
	Matches map[string][]ID
}

// IsEmpty reports whether the extraction carries no identifiers at all.
func (e Extraction) IsEmpty() bool {
	for _, ids := range e.Matches {
		if len(ids) > 0 {
			return false
		}
	}
	return true
}

// Grouped is the grounded result: category -> verified full user records.
// Every user in it was confirmed against the directory after extraction.
// Categories whose every id failed verification are absent, not empty.
type Grouped map[string][]*User
