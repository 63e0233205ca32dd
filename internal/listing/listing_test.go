package listing

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/pocketbase"
)

func TestToggleTwiceReturnsToAscending(t *testing.T) {
	s := State{Page: 3, SortKey: "name", SortDir: Asc}

	s.Toggle("name")
	assert.Equal(t, Desc, s.SortDir)
	assert.Equal(t, 1, s.Page)

	s.Toggle("name")
	assert.Equal(t, Asc, s.SortDir)
	assert.Equal(t, "name", s.SortKey)
}

func TestToggleNewKeyStartsAscending(t *testing.T) {
	s := State{SortKey: "updated", SortDir: Desc}
	s.Toggle("name")
	assert.Equal(t, "name", s.SortKey)
	assert.Equal(t, Asc, s.SortDir)
}

func TestSortParam(t *testing.T) {
	assert.Equal(t, "", State{}.SortParam())
	assert.Equal(t, "name", State{SortKey: "name", SortDir: Asc}.SortParam())
	assert.Equal(t, "-updated", State{SortKey: "updated", SortDir: Desc}.SortParam())
}

func TestNextDisabledAtLastPage(t *testing.T) {
	tests := []struct {
		page, total int
		want        bool
	}{
		{1, 3, true},
		{2, 3, true},
		{3, 3, false},
		{4, 3, false},
		{1, 0, false},
		{1, 1, false},
	}
	for _, tt := range tests {
		s := State{Page: tt.page, TotalPages: tt.total}
		assert.Equal(t, tt.want, s.HasNext(), "page %d of %d", tt.page, tt.total)
		if !tt.want {
			assert.Equal(t, tt.page, s.NextPage())
		}
	}
}

func TestPrevDisabledOnFirstPage(t *testing.T) {
	assert.False(t, State{Page: 1, TotalPages: 4}.HasPrev())
	assert.True(t, State{Page: 2, TotalPages: 4}.HasPrev())
	assert.Equal(t, 1, State{Page: 2}.PrevPage())
}

func TestFromQuery(t *testing.T) {
	d := Defaults{PerPage: 10, MaxPerPage: 50, SortKey: "updated", SortDir: Desc, Sortable: []string{"name", "updated"}}

	tests := []struct {
		name  string
		query string
		want  State
	}{
		{"defaults", "", State{Page: 1, PerPage: 10, SortKey: "updated", SortDir: Desc}},
		{"explicit", "page=3&perPage=20&sort=name", State{Page: 3, PerPage: 20, SortKey: "name", SortDir: Asc}},
		{"descending", "sort=-name", State{Page: 1, PerPage: 10, SortKey: "name", SortDir: Desc}},
		{"clamped", "page=-4&perPage=500", State{Page: 1, PerPage: 50, SortKey: "updated", SortDir: Desc}},
		{"garbage", "page=abc&perPage=x", State{Page: 1, PerPage: 10, SortKey: "updated", SortDir: Desc}},
		{"unknown sort key", "sort=-password", State{Page: 1, PerPage: 10, SortKey: "updated", SortDir: Desc}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, FromQuery(q, d)); diff != "" {
				t.Errorf("FromQuery(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestQueryRoundTrip(t *testing.T) {
	s := State{Page: 2, PerPage: 15, SortKey: "name", SortDir: Desc}
	got := FromQuery(s.Query(), Defaults{PerPage: 10})
	assert.Equal(t, s, got)
}

type fakeFetcher struct {
	total   int
	perPage int
	calls   []pocketbase.ListQuery
	block   chan struct{}
	started chan struct{}
	err     error
}

func (f *fakeFetcher) ListRecords(ctx context.Context, collection string, q pocketbase.ListQuery) (*pocketbase.RecordList, error) {
	f.calls = append(f.calls, q)
	if f.started != nil {
		close(f.started)
		f.started = nil
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	totalPages := (f.total + f.perPage - 1) / f.perPage
	var items []pocketbase.Record
	for i := (q.Page - 1) * f.perPage; i < f.total && i < q.Page*f.perPage; i++ {
		items = append(items, pocketbase.Record{"id": i})
	}
	return &pocketbase.RecordList{Page: q.Page, PerPage: f.perPage, TotalItems: f.total, TotalPages: totalPages, Items: items}, nil
}

func TestPagerEachWalksAllPages(t *testing.T) {
	f := &fakeFetcher{total: 7, perPage: 3}
	p := NewPager(f, "templates", State{PerPage: 3, SortKey: "name", SortDir: Asc})

	var seen int
	err := p.Each(context.Background(), func(items []pocketbase.Record) error {
		seen += len(items)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, seen)
	assert.Len(t, f.calls, 3)
	assert.Equal(t, "name", f.calls[0].Sort)

	_, ok, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "next must be disabled on the last page")
}

func TestPagerSortReloadsFirstPage(t *testing.T) {
	f := &fakeFetcher{total: 10, perPage: 5}
	p := NewPager(f, "headers", State{Page: 2, PerPage: 5, SortKey: "name", SortDir: Asc})

	_, err := p.Sort(context.Background(), "name")
	require.NoError(t, err)
	assert.Equal(t, pocketbase.ListQuery{Page: 1, PerPage: 5, Sort: "-name"}, f.calls[0])

	_, err = p.Sort(context.Background(), "name")
	require.NoError(t, err)
	assert.Equal(t, "name", f.calls[1].Sort)
}

func TestPagerRejectsOverlappingLoads(t *testing.T) {
	f := &fakeFetcher{total: 10, perPage: 5, block: make(chan struct{}), started: make(chan struct{})}
	p := NewPager(f, "footers", State{PerPage: 5})

	started := f.started
	done := make(chan error, 1)
	go func() {
		_, err := p.Load(context.Background(), 1)
		done <- err
	}()
	<-started

	_, err := p.Load(context.Background(), 2)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = p.Sort(context.Background(), "name")
	assert.ErrorIs(t, err, ErrBusy)

	close(f.block)
	require.NoError(t, <-done)

	f.block = nil
	_, err = p.Load(context.Background(), 2)
	assert.NoError(t, err, "busy flag must clear after the request completes")
}

func TestPagerErrorKeepsState(t *testing.T) {
	f := &fakeFetcher{total: 10, perPage: 5, err: errors.New("backend down")}
	p := NewPager(f, "templates", State{Page: 1, PerPage: 5, TotalPages: 2})

	_, ok, err := p.Next(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, p.State().Page)
}
