// Package schema provisions backend collections from an exported schema
// file, one collection at a time in dependency order.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/pocketbase"
)

// ImportOrder lists collections so that every relation target is imported
// before the collections pointing at it.
var ImportOrder = []string{
	"users",
	"projects",
	"templates",
	"changelog_headers",
	"changelog_footers",
	"documentation_headers",
	"documentation_footers",
	"entries",
	"audit_logs",
}

// ErrInvalidSchema is returned for schema files that are not a non-empty array of
// named collection definitions.
var ErrInvalidSchema = errors.New("invalid schema file")

// LoadFile reads a schema export: a JSON array of collection definitions.
func LoadFile(path string) ([]pocketbase.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a schema export.
func Parse(data []byte) ([]pocketbase.Collection, error) {
	var defs []pocketbase.Collection
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if defs == nil {
		return nil, fmt.Errorf("%w: not an array", ErrInvalidSchema)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no collections", ErrInvalidSchema)
	}

	seen := make(map[string]bool, len(defs))
	for i, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: collection #%d has no name", ErrInvalidSchema, i)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("%w: collection %q defined twice", ErrInvalidSchema, d.Name)
		}
		seen[d.Name] = true
	}
	return defs, nil
}
