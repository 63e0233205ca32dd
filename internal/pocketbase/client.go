// Package pocketbase is a small client for the PocketBase REST API: password
// auth, collection import and record CRUD. Requests are never retried.
package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SuperusersCollection is the built-in collection holding superusers.
const SuperusersCollection = "_superusers"

// Client talks to one backend instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken sets the token sent when the request context carries none.
func (c *Client) SetToken(token string) { c.token = token }

type tokenKey struct{}

// WithToken returns a context whose requests authenticate with token,
// overriding the client's own token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *Client) tokenFor(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey{}).(string); ok && t != "" {
		return t
	}
	return c.token
}

// AuthWithPassword authenticates a record of an auth collection.
func (c *Client) AuthWithPassword(ctx context.Context, collection, identity, password string) (*AuthResult, error) {
	body := map[string]string{"identity": identity, "password": password}
	var res AuthResult
	path := "/api/collections/" + url.PathEscape(collection) + "/auth-with-password"
	if err := c.do(ctx, http.MethodPost, path, nil, body, &res); err != nil {
		return nil, fmt.Errorf("authenticating against %s: %w", collection, err)
	}
	if res.Token == "" {
		return nil, fmt.Errorf("authenticating against %s: empty token", collection)
	}
	return &res, nil
}

// AuthSuperuser authenticates as a superuser and keeps the token on the client.
func (c *Client) AuthSuperuser(ctx context.Context, email, password string) error {
	res, err := c.AuthWithPassword(ctx, SuperusersCollection, email, password)
	if err != nil {
		return err
	}
	c.token = res.Token
	return nil
}

// ListCollections returns every collection defined on the backend.
func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	var all []Collection
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("perPage", "200")

		var res collectionList
		if err := c.do(ctx, http.MethodGet, "/api/collections", q, nil, &res); err != nil {
			return nil, fmt.Errorf("listing collections: %w", err)
		}
		all = append(all, res.Items...)
		if page >= res.TotalPages || len(res.Items) == 0 {
			return all, nil
		}
	}
}

// ImportCollections creates or updates the given collection definitions.
// With deleteMissing, collections absent from defs are dropped.
func (c *Client) ImportCollections(ctx context.Context, defs []Collection, deleteMissing bool) error {
	body := struct {
		Collections   []Collection `json:"collections"`
		DeleteMissing bool         `json:"deleteMissing"`
	}{defs, deleteMissing}
	if err := c.do(ctx, http.MethodPut, "/api/collections/import", nil, body, nil); err != nil {
		return fmt.Errorf("importing collections: %w", err)
	}
	return nil
}

func recordsPath(collection string) string {
	return "/api/collections/" + url.PathEscape(collection) + "/records"
}

// ListRecords returns one page of records.
func (c *Client) ListRecords(ctx context.Context, collection string, lq ListQuery) (*RecordList, error) {
	q := url.Values{}
	if lq.Page > 0 {
		q.Set("page", strconv.Itoa(lq.Page))
	}
	if lq.PerPage > 0 {
		q.Set("perPage", strconv.Itoa(lq.PerPage))
	}
	if lq.Sort != "" {
		q.Set("sort", lq.Sort)
	}
	if lq.Filter != "" {
		q.Set("filter", lq.Filter)
	}

	var res RecordList
	if err := c.do(ctx, http.MethodGet, recordsPath(collection), q, nil, &res); err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	if res.Items == nil {
		res.Items = []Record{}
	}
	return &res, nil
}

// GetRecord fetches a single record.
func (c *Client) GetRecord(ctx context.Context, collection, id string) (Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodGet, recordsPath(collection)+"/"+url.PathEscape(id), nil, nil, &rec); err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

// CreateRecord creates a record from the given fields.
func (c *Client) CreateRecord(ctx context.Context, collection string, fields map[string]any) (Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodPost, recordsPath(collection), nil, fields, &rec); err != nil {
		return nil, fmt.Errorf("creating %s record: %w", collection, err)
	}
	return rec, nil
}

// UpdateRecord patches the given fields of a record.
func (c *Client) UpdateRecord(ctx context.Context, collection, id string, fields map[string]any) (Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodPatch, recordsPath(collection)+"/"+url.PathEscape(id), nil, fields, &rec); err != nil {
		return nil, fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

// DeleteRecord deletes a record.
func (c *Client) DeleteRecord(ctx context.Context, collection, id string) error {
	if err := c.do(ctx, http.MethodDelete, recordsPath(collection)+"/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

// Health checks that the backend answers.
func (c *Client) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, nil); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokenFor(ctx); token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{}
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}
