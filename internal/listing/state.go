// Package listing holds the pagination and sort state of a record table.
package listing

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// State is the view state of one paginated table.
type State struct {
	Page       int       `json:"page"`
	PerPage    int       `json:"perPage"`
	TotalPages int       `json:"totalPages"`
	TotalItems int       `json:"totalItems"`
	SortKey    string    `json:"sortKey"`
	SortDir    Direction `json:"sortDir"`
}

// Defaults bounds what FromQuery accepts.
type Defaults struct {
	PerPage    int
	MaxPerPage int
	SortKey    string
	SortDir    Direction
	// Sortable lists the accepted sort keys. Empty accepts any key.
	Sortable []string
}

// Toggle applies a click on a sort header: the current key flips direction,
// any other key becomes current in ascending order. The page resets to 1.
func (s *State) Toggle(key string) {
	if key == s.SortKey {
		if s.SortDir == Asc {
			s.SortDir = Desc
		} else {
			s.SortDir = Asc
		}
	} else {
		s.SortKey = key
		s.SortDir = Asc
	}
	s.Page = 1
}

// SortParam renders the sort as the backend expects it: "key" or "-key".
func (s State) SortParam() string {
	if s.SortKey == "" {
		return ""
	}
	if s.SortDir == Desc {
		return "-" + s.SortKey
	}
	return s.SortKey
}

// HasPrev reports whether the "previous" control is enabled.
func (s State) HasPrev() bool { return s.Page > 1 }

// HasNext reports whether the "next" control is enabled. It is disabled
// once Page >= TotalPages, including for an empty table.
func (s State) HasNext() bool { return s.Page < s.TotalPages }

// PrevPage returns the page the "previous" control leads to.
func (s State) PrevPage() int {
	if s.HasPrev() {
		return s.Page - 1
	}
	return s.Page
}

// NextPage returns the page the "next" control leads to.
func (s State) NextPage() int {
	if s.HasNext() {
		return s.Page + 1
	}
	return s.Page
}

// Update copies the counts of a fetched page into the state.
func (s *State) Update(page, totalPages, totalItems int) {
	s.Page = page
	s.TotalPages = totalPages
	s.TotalItems = totalItems
}

// Query encodes the state as list query parameters.
func (s State) Query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(s.Page))
	q.Set("perPage", strconv.Itoa(s.PerPage))
	if sp := s.SortParam(); sp != "" {
		q.Set("sort", sp)
	}
	return q
}

// FromQuery reads page, perPage and sort from request parameters. Out of
// range values are clamped and unknown sort keys fall back to the default.
func FromQuery(q url.Values, d Defaults) State {
	s := State{
		Page:    1,
		PerPage: d.PerPage,
		SortKey: d.SortKey,
		SortDir: d.SortDir,
	}
	if s.SortDir == "" {
		s.SortDir = Asc
	}

	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		s.Page = n
	}
	if n, err := strconv.Atoi(q.Get("perPage")); err == nil && n > 0 {
		s.PerPage = n
	}
	if s.PerPage < 1 {
		s.PerPage = 1
	}
	if d.MaxPerPage > 0 && s.PerPage > d.MaxPerPage {
		s.PerPage = d.MaxPerPage
	}

	if raw := strings.TrimSpace(q.Get("sort")); raw != "" {
		key, dir := raw, Asc
		if strings.HasPrefix(raw, "-") {
			key, dir = raw[1:], Desc
		} else if strings.HasPrefix(raw, "+") {
			key = raw[1:]
		}
		if key != "" && (len(d.Sortable) == 0 || slices.Contains(d.Sortable, key)) {
			s.SortKey, s.SortDir = key, dir
		}
	}
	return s
}
