// Package resources describes the record tables the admin panel lists.
// The tables differ only in name, backend collection and columns.
package resources

import (
	"sort"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/listing"
)

// Column is one table column.
type Column struct {
	Key      string
	Label    string
	Sortable bool
	// Date renders the value as a timestamp.
	Date bool
}

// Resource is one list entity.
type Resource struct {
	// Name is the URL segment: /{Name} and /api/{Name}.
	Name string
	// Collection is the backend collection.
	Collection string
	Title       string
	Singular    string
	Columns     []Column
	DefaultSort string
	DefaultDir  listing.Direction
	// Editable lists the fields PATCH may change.
	Editable []string
	// Deletable enables DELETE /api/{Name}/{id}.
	Deletable bool
}

// Sortable returns the keys of sortable columns.
func (r Resource) Sortable() []string {
	var keys []string
	for _, c := range r.Columns {
		if c.Sortable {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// Defaults returns the listing defaults of the resource.
func (r Resource) Defaults(perPage, maxPerPage int) listing.Defaults {
	return listing.Defaults{
		PerPage:    perPage,
		MaxPerPage: maxPerPage,
		SortKey:    r.DefaultSort,
		SortDir:    r.DefaultDir,
		Sortable:   r.Sortable(),
	}
}

// CanEdit reports whether field may be changed through the API.
func (r Resource) CanEdit(field string) bool {
	for _, f := range r.Editable {
		if f == field {
			return true
		}
	}
	return false
}

var (
	nameCol    = Column{Key: "name", Label: "Name", Sortable: true}
	updatedCol = Column{Key: "updated", Label: "Last updated", Sortable: true, Date: true}
)

func contentBlock(name, collection, title, singular string) Resource {
	return Resource{
		Name:        name,
		Collection:  collection,
		Title:       title,
		Singular:    singular,
		Columns:     []Column{nameCol, updatedCol},
		DefaultSort: "updated",
		DefaultDir:  listing.Desc,
		Editable:    []string{"name", "content"},
		Deletable:   true,
	}
}

var registry = map[string]Resource{
	"templates":             contentBlock("templates", "templates", "Templates", "template"),
	"headers":               contentBlock("headers", "changelog_headers", "Changelog headers", "header"),
	"footers":               contentBlock("footers", "changelog_footers", "Changelog footers", "footer"),
	"documentation_headers": contentBlock("documentation_headers", "documentation_headers", "Documentation headers", "documentation header"),
	"documentation_footers": contentBlock("documentation_footers", "documentation_footers", "Documentation footers", "documentation footer"),
	"projects": {
		Name:       "projects",
		Collection: "projects",
		Title:      "Projects",
		Singular:   "project",
		Columns: []Column{
			nameCol,
			{Key: "description", Label: "Description"},
			updatedCol,
		},
		DefaultSort: "name",
		DefaultDir:  listing.Asc,
		Editable:    []string{"name", "description"},
		Deletable:   true,
	},
	"entries": {
		Name:       "entries",
		Collection: "entries",
		Title:      "Entries",
		Singular:   "entry",
		Columns: []Column{
			{Key: "title", Label: "Title", Sortable: true},
			{Key: "type", Label: "Type", Sortable: true},
			{Key: "status", Label: "Status", Sortable: true},
			updatedCol,
		},
		DefaultSort: "updated",
		DefaultDir:  listing.Desc,
		Editable:    []string{"title", "content", "type", "status", "tags"},
		Deletable:   true,
	},
}

// Lookup returns the resource registered under name.
func Lookup(name string) (Resource, bool) {
	r, ok := registry[name]
	return r, ok
}

// All returns every resource ordered by name.
func All() []Resource {
	out := make([]Resource, 0, len(registry))
	for _, r := range registry {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Navigation returns the resources shown in the sidebar, in display order.
func Navigation() []Resource {
	names := []string{"projects", "templates", "headers", "footers", "documentation_headers", "documentation_footers"}
	out := make([]Resource, 0, len(names))
	for _, n := range names {
		out = append(out, registry[n])
	}
	return out
}
