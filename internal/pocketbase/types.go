package pocketbase

import (
	"encoding/json"
	"fmt"
)

// Record is one backend record: an untyped field bag.
type Record map[string]any

// ID returns the record id.
func (r Record) ID() string { return r.String("id") }

// String returns a field as a string, or "" when absent.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int returns a numeric field, or 0 when absent or not numeric.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

// RecordList is one page of records.
type RecordList struct {
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalItems int      `json:"totalItems"`
	TotalPages int      `json:"totalPages"`
	Items      []Record `json:"items"`
}

// ListQuery selects a page of records.
type ListQuery struct {
	Page    int
	PerPage int
	Sort    string
	Filter  string
}

// Collection is a collection definition. Raw holds the definition exactly
// as received so imports round-trip fields this client does not model.
type Collection struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	System bool            `json:"system"`
	Raw    json.RawMessage `json:"-"`
}

// CollectionTypeAuth marks user/auth collections.
const CollectionTypeAuth = "auth"

// UnmarshalJSON keeps a copy of the raw definition.
func (c *Collection) UnmarshalJSON(data []byte) error {
	type plain Collection
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Collection(p)
	c.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON emits the raw definition when present.
func (c Collection) MarshalJSON() ([]byte, error) {
	if len(c.Raw) > 0 {
		return c.Raw, nil
	}
	type plain Collection
	return json.Marshal(plain(c))
}

// AuthResult is the response of a password auth call.
type AuthResult struct {
	Token  string `json:"token"`
	Record Record `json:"record"`
}

type collectionList struct {
	Page       int          `json:"page"`
	PerPage    int          `json:"perPage"`
	TotalItems int          `json:"totalItems"`
	TotalPages int          `json:"totalPages"`
	Items      []Collection `json:"items"`
}
