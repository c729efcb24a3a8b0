// Package client provides an HTTP client for the front-desk REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/evcraddock/front-desk/internal/visitor"
)

// Client is an HTTP client for the front-desk API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     []visitor.FieldError
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %s", http.StatusText(e.StatusCode))
	}
	return e.Message
}

// ListParams controls filtering for ListVisitors. Zero values are omitted.
type ListParams struct {
	Search    string
	Statuses  []string
	Company   string
	Purpose   string
	SortField string
	SortOrder string // asc or desc
	Page      int
	Limit     int
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	set := func(key, val string) {
		if val != "" {
			q.Set(key, val)
		}
	}
	set("search", p.Search)
	set("company", p.Company)
	set("purpose", p.Purpose)
	set("sort_field", p.SortField)
	set("sort_order", p.SortOrder)
	for _, s := range p.Statuses {
		q.Add("status", s)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

// withQuery appends encoded query parameters to path.
func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// dateQuery builds start_date/end_date parameters; empty values are omitted.
func dateQuery(start, end string) url.Values {
	q := url.Values{}
	if start != "" {
		q.Set("start_date", start)
	}
	if end != "" {
		q.Set("end_date", end)
	}
	return q
}

func visitorPath(id string, rest ...string) string {
	p := "/api/visitors/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// RegisterVisitor checks a visitor in.
func (c *Client) RegisterVisitor(ctx context.Context, req visitor.RegisterRequest) (*visitor.Registration, error) {
	var reg visitor.Registration
	if err := c.send(ctx, http.MethodPost, "/api/visitors", req, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// ListVisitors returns one page of visitors.
func (c *Client) ListVisitors(ctx context.Context, params ListParams) (*visitor.Page, error) {
	var page visitor.Page
	if err := c.get(ctx, withQuery("/api/visitors", params.query()), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetVisitor returns a single visitor.
func (c *Client) GetVisitor(ctx context.Context, id string) (*visitor.Visitor, error) {
	var v visitor.Visitor
	if err := c.get(ctx, visitorPath(id), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// CheckOut ends a visit.
func (c *Client) CheckOut(ctx context.Context, id string) (*visitor.CheckOutResult, error) {
	var result visitor.CheckOutResult
	if err := c.send(ctx, http.MethodPut, visitorPath(id, "checkout"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateExpectedDuration changes how long a visitor is expected to stay.
// Notes are left unchanged when nil.
func (c *Client) UpdateExpectedDuration(ctx context.Context, id string, minutes int, notes *string) (*visitor.Visitor, error) {
	body := struct {
		ExpectedDurationMinutes int     `json:"expected_duration_minutes"`
		Notes                   *string `json:"notes,omitempty"`
	}{minutes, notes}

	var v visitor.Visitor
	if err := c.send(ctx, http.MethodPatch, visitorPath(id, "duration"), body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// AcknowledgeAlert marks an alert as seen. An empty acknowledgedBy lets
// the server record the API key owner.
func (c *Client) AcknowledgeAlert(ctx context.Context, id, alertID, acknowledgedBy string) (*visitor.Alert, error) {
	body := map[string]string{}
	if acknowledgedBy != "" {
		body["acknowledged_by"] = acknowledgedBy
	}
	var a visitor.Alert
	if err := c.send(ctx, http.MethodPost, visitorPath(id, "alerts", alertID, "ack"), body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Sweep runs the overstay check on the server.
func (c *Client) Sweep(ctx context.Context) (*visitor.SweepResult, error) {
	var result visitor.SweepResult
	if err := c.get(ctx, "/api/visitors/alerts/overstayed", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DurationAnalytics reports visit durations between start and end
// (YYYY-MM-DD, both optional).
func (c *Client) DurationAnalytics(ctx context.Context, start, end string) (*visitor.DurationAnalytics, error) {
	var result visitor.DurationAnalytics
	if err := c.get(ctx, withQuery("/api/visitors/analytics/duration", dateQuery(start, end)), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Report lists visitors whose visit date is between start and end.
func (c *Client) Report(ctx context.Context, start, end string) ([]*visitor.Visitor, error) {
	var visitors []*visitor.Visitor
	if err := c.get(ctx, withQuery("/api/visitors/reports", dateQuery(start, end)), &visitors); err != nil {
		return nil, err
	}
	return visitors, nil
}

// DailyCounts returns visitors per day between start and end.
func (c *Client) DailyCounts(ctx context.Context, start, end string) ([]visitor.DailyCount, error) {
	var counts []visitor.DailyCount
	if err := c.get(ctx, withQuery("/api/visitors/reports/daily", dateQuery(start, end)), &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// Pass downloads a visitor's pass QR code as PNG.
func (c *Client) Pass(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+visitorPath(id, "pass"), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.do(req)
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.send(ctx, http.MethodGet, path, nil, result)
}

// send performs a request with an optional JSON body and decodes the
// response into result.
func (c *Client) send(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	respBody, err := c.do(req)
	if err != nil {
		return err
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// do executes an HTTP request with the auth header and returns the body
// of a successful response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Debug("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp struct {
			Error  string               `json:"error"`
			Fields []visitor.FieldError `json:"fields"`
		}
		if json.Unmarshal(respBody, &errResp) == nil {
			apiErr.Message = errResp.Error
			apiErr.Fields = errResp.Fields
		}
		return nil, apiErr
	}

	return respBody, nil
}
