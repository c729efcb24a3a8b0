package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evcraddock/front-desk/internal/visitor"
)

func jsonHandler(t *testing.T, check func(r *http.Request), status int, resp interface{}) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer testkey" {
			t.Error("expected Bearer testkey")
		}
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
}

func TestListVisitors(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		if r.URL.Path != "/api/visitors" {
			t.Errorf("path = %q, want /api/visitors", r.URL.Path)
		}
		q := r.URL.Query()
		if got := q["status"]; len(got) != 2 || got[0] != "checked_in" || got[1] != "checked_out" {
			t.Errorf("status = %v", got)
		}
		if q.Get("search") != "jane doe" || q.Get("limit") != "5" || q.Get("sort_order") != "asc" {
			t.Errorf("query = %v", q)
		}
		if q.Has("page") {
			t.Error("zero page should be omitted")
		}
	}, http.StatusOK, visitor.Page{
		Data:       []*visitor.Visitor{{ID: "v1", FullName: "Jane Doe"}},
		Pagination: visitor.Pagination{CurrentPage: 1, Total: 1, TotalPages: 1, PerPage: 5},
	}))
	defer srv.Close()

	c := New(srv.URL, "testkey")
	page, err := c.ListVisitors(context.Background(), ListParams{
		Search:    "jane doe",
		Statuses:  []string{"checked_in", "checked_out"},
		SortOrder: "asc",
		Limit:     5,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].FullName != "Jane Doe" {
		t.Errorf("data = %+v", page.Data)
	}
	if page.Pagination.PerPage != 5 {
		t.Errorf("per page = %d", page.Pagination.PerPage)
	}
}

func TestRegisterVisitor(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var req visitor.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.FullName != "Jane" || req.HostName != "Principal" {
			t.Errorf("request = %+v", req)
		}
	}, http.StatusCreated, visitor.Registration{
		Visitor: &visitor.Visitor{ID: "v1", FullName: "Jane"},
		QRCode:  "data:image/png;base64,AAAA",
	}))
	defer srv.Close()

	c := New(srv.URL, "testkey")
	reg, err := c.RegisterVisitor(context.Background(), visitor.RegisterRequest{FullName: "Jane", HostName: "Principal"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Visitor.ID != "v1" || reg.QRCode == "" {
		t.Errorf("registration = %+v", reg)
	}
}

func TestCheckOut(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/visitors/v1/checkout" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
	}, http.StatusOK, visitor.CheckOutResult{ActualDurationMinutes: 75, IsOverstayed: true, OverstayMinutes: 15}))
	defer srv.Close()

	c := New(srv.URL, "testkey")
	result, err := c.CheckOut(context.Background(), "v1")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !result.IsOverstayed || result.OverstayMinutes != 15 {
		t.Errorf("result = %+v", result)
	}
}

func TestUpdateExpectedDurationOmitsNilNotes(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/visitors/v1/duration" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["expected_duration_minutes"] != float64(90) {
			t.Errorf("minutes = %v", body["expected_duration_minutes"])
		}
		if _, ok := body["notes"]; ok {
			t.Error("nil notes should be omitted")
		}
	}, http.StatusOK, visitor.Visitor{ID: "v1", ExpectedDurationMinutes: 90}))
	defer srv.Close()

	c := New(srv.URL, "testkey")
	v, err := c.UpdateExpectedDuration(context.Background(), "v1", 90, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if v.ExpectedDurationMinutes != 90 {
		t.Errorf("expected = %d", v.ExpectedDurationMinutes)
	}
}

func TestAcknowledgeAlert(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		if r.URL.Path != "/api/visitors/v1/alerts/a1/ack" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "{}" {
			t.Errorf("body = %s, want {}", body)
		}
	}, http.StatusOK, visitor.Alert{ID: "a1", Acknowledged: true, AcknowledgedBy: "Front Office"}))
	defer srv.Close()

	c := New(srv.URL, "testkey")
	a, err := c.AcknowledgeAlert(context.Background(), "v1", "a1", "")
	if err != nil {
		t.Fatalf("ack: %v", err)
	}
	if !a.Acknowledged {
		t.Error("expected acknowledged alert")
	}
}

func TestDurationAnalyticsQuery(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		if r.URL.Path != "/api/visitors/analytics/duration" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("start_date") != "2026-10-01" {
			t.Errorf("start = %q", r.URL.Query().Get("start_date"))
		}
		if r.URL.Query().Has("end_date") {
			t.Error("empty end_date should be omitted")
		}
	}, http.StatusOK, visitor.DurationAnalytics{Statistics: visitor.DurationStatistics{TotalVisitors: 4}}))
	defer srv.Close()

	c := New(srv.URL, "testkey")
	a, err := c.DurationAnalytics(context.Background(), "2026-10-01", "")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if a.Statistics.TotalVisitors != 4 {
		t.Errorf("total = %d", a.Statistics.TotalVisitors)
	}
}

func TestAPIErrorCarriesFields(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, nil, http.StatusBadRequest, map[string]interface{}{
		"error":  "invalid input: host_name: this field is required",
		"fields": []visitor.FieldError{{Field: "host_name", Message: "this field is required"}},
	}))
	defer srv.Close()

	c := New(srv.URL, "testkey")
	_, err := c.RegisterVisitor(context.Background(), visitor.RegisterRequest{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if len(apiErr.Fields) != 1 || apiErr.Fields[0].Field != "host_name" {
		t.Errorf("fields = %+v", apiErr.Fields)
	}
}

func TestAPIErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid API key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "bad")
	_, err := c.Sweep(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "server error: Unauthorized" {
		t.Errorf("err = %q", err.Error())
	}
}

func TestPass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/visitors/v1/pass" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNGdata"))
	}))
	defer srv.Close()

	c := New(srv.URL, "testkey")
	png, err := c.Pass(context.Background(), "v1")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if string(png) != "\x89PNGdata" {
		t.Errorf("body = %q", png)
	}
}
