package dashboard

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/pocketbase"
)

type updateCall struct {
	Collection string
	ID         string
	Fields     map[string]any
}

// fakeBackend keeps records in memory and understands the single filter
// shape the panel sends.
type fakeBackend struct {
	mu       sync.Mutex
	records  map[string]map[string]pocketbase.Record
	updates  []updateCall
	authErr  error
	listErr  error
	failOnID string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{records: map[string]map[string]pocketbase.Record{}}
}

func (f *fakeBackend) put(collection string, rec pocketbase.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records[collection] == nil {
		f.records[collection] = map[string]pocketbase.Record{}
	}
	f.records[collection][rec.ID()] = rec
}

func (f *fakeBackend) get(collection, id string) (pocketbase.Record, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[collection][id]
	return rec, ok
}

func notFound() error {
	return &pocketbase.APIError{Status: http.StatusNotFound, Message: "The requested resource wasn't found."}
}

func (f *fakeBackend) AuthWithPassword(ctx context.Context, collection, identity, password string) (*pocketbase.AuthResult, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &pocketbase.AuthResult{
		Token:  "token-" + identity,
		Record: pocketbase.Record{"id": "u_" + collection, "email": identity, "name": "Ada"},
	}, nil
}

func (f *fakeBackend) ListRecords(ctx context.Context, collection string, q pocketbase.ListQuery) (*pocketbase.RecordList, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	items := []pocketbase.Record{}
	for _, rec := range f.records[collection] {
		if want, ok := strings.CutPrefix(q.Filter, "project = "); ok {
			if rec.String("project") != strings.Trim(want, `"`) {
				continue
			}
		}
		items = append(items, rec)
	}

	key, desc := q.Sort, false
	if strings.HasPrefix(key, "-") {
		key, desc = key[1:], true
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if key == "" {
			return a.ID() < b.ID()
		}
		c := strings.Compare(fmt.Sprint(a[key]), fmt.Sprint(b[key]))
		if _, ok := a[key].(int); ok {
			c = cmp.Compare(a.Int(key), b.Int(key))
		}
		if desc {
			c = -c
		}
		return c < 0
	})

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = 30
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	total := len(items)
	totalPages := (total + perPage - 1) / perPage
	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	return &pocketbase.RecordList{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
		Items:      items[start:end],
	}, nil
}

func (f *fakeBackend) GetRecord(ctx context.Context, collection, id string) (pocketbase.Record, error) {
	rec, ok := f.get(collection, id)
	if !ok {
		return nil, notFound()
	}
	out := pocketbase.Record{}
	for k, v := range rec {
		out[k] = v
	}
	return out, nil
}

func (f *fakeBackend) UpdateRecord(ctx context.Context, collection, id string, fields map[string]any) (pocketbase.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == f.failOnID {
		return nil, fmt.Errorf("connection reset")
	}
	rec, ok := f.records[collection][id]
	if !ok {
		return nil, notFound()
	}
	for k, v := range fields {
		rec[k] = v
	}
	f.updates = append(f.updates, updateCall{Collection: collection, ID: id, Fields: fields})
	return rec, nil
}

func (f *fakeBackend) DeleteRecord(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[collection][id]; !ok {
		return notFound()
	}
	delete(f.records[collection], id)
	return nil
}
