package listing

import (
	"context"
	"errors"
	"sync"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/pocketbase"
)

// ErrBusy is returned when a page is requested while another is in flight.
var ErrBusy = errors.New("listing: request already in flight")

// Fetcher loads one page of a collection.
type Fetcher interface {
	ListRecords(ctx context.Context, collection string, q pocketbase.ListQuery) (*pocketbase.RecordList, error)
}

// Pager drives a State against a Fetcher. At most one fetch runs at a
// time; a concurrent call fails fast with ErrBusy instead of queueing.
type Pager struct {
	fetcher    Fetcher
	collection string
	filter     string

	mu    sync.Mutex
	busy  bool
	state State
}

// NewPager creates a pager over collection starting from state.
func NewPager(f Fetcher, collection string, state State) *Pager {
	if state.Page < 1 {
		state.Page = 1
	}
	return &Pager{fetcher: f, collection: collection, state: state}
}

// SetFilter restricts every fetch with a backend filter expression.
func (p *Pager) SetFilter(filter string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = filter
}

// State returns a copy of the current view state.
func (p *Pager) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Load fetches the given page with the current sort.
func (p *Pager) Load(ctx context.Context, page int) ([]pocketbase.Record, error) {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	p.busy = true
	q := pocketbase.ListQuery{Page: page, PerPage: p.state.PerPage, Sort: p.state.SortParam(), Filter: p.filter}
	p.mu.Unlock()

	list, err := p.fetcher.ListRecords(ctx, p.collection, q)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = false
	if err != nil {
		return nil, err
	}
	p.state.Update(list.Page, list.TotalPages, list.TotalItems)
	return list.Items, nil
}

// Next loads the following page. ok is false when the next control is
// disabled.
func (p *Pager) Next(ctx context.Context) (items []pocketbase.Record, ok bool, err error) {
	s := p.State()
	if !s.HasNext() {
		return nil, false, nil
	}
	items, err = p.Load(ctx, s.Page+1)
	return items, err == nil, err
}

// Prev loads the preceding page. ok is false when the previous control is
// disabled.
func (p *Pager) Prev(ctx context.Context) (items []pocketbase.Record, ok bool, err error) {
	s := p.State()
	if !s.HasPrev() {
		return nil, false, nil
	}
	items, err = p.Load(ctx, s.Page-1)
	return items, err == nil, err
}

// Sort toggles the sort on key and reloads the first page.
func (p *Pager) Sort(ctx context.Context, key string) ([]pocketbase.Record, error) {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	p.state.Toggle(key)
	p.mu.Unlock()
	return p.Load(ctx, 1)
}

// Each walks every page from the current one onwards, calling fn per page.
func (p *Pager) Each(ctx context.Context, fn func([]pocketbase.Record) error) error {
	items, err := p.Load(ctx, p.State().Page)
	if err != nil {
		return err
	}
	for {
		if err := fn(items); err != nil {
			return err
		}
		var ok bool
		items, ok, err = p.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}
