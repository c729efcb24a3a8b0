package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/evcraddock/front-desk/internal/auth"
	"github.com/evcraddock/front-desk/internal/visitor"
)

const dateLayout = "2006-01-02"

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// apiServiceError maps visitor service errors to HTTP responses.
func apiServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *visitor.ValidationError
	switch {
	case errors.As(err, &verr):
		apiJSON(w, map[string]interface{}{"error": verr.Error(), "fields": verr.Fields}, http.StatusBadRequest)
	case errors.Is(err, visitor.ErrValidation):
		apiError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, visitor.ErrNotFound):
		apiError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, visitor.ErrConflict):
		apiError(w, err.Error(), http.StatusConflict)
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		apiError(w, "internal error", http.StatusInternalServerError)
	}
}

// decodeBody decodes an optional JSON body into dst. An empty body leaves
// dst untouched.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// handleAPIVisitors routes /api/visitors requests.
func (s *Server) handleAPIVisitors(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/visitors")
	path = strings.Trim(path, "/")

	// /api/visitors: list or register
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			s.apiListVisitors(w, r)
		case http.MethodPost:
			s.apiRegisterVisitor(w, r)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// Collection reports. Visitor ids are UUIDs so these never collide.
	switch path {
	case "alerts/overstayed":
		s.onlyGet(w, r, s.apiSweep)
		return
	case "analytics/duration":
		s.onlyGet(w, r, s.apiDurationAnalytics)
		return
	case "reports":
		s.onlyGet(w, r, s.apiReport)
		return
	case "reports/daily":
		s.onlyGet(w, r, s.apiDailyCounts)
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]

	switch {
	// /api/visitors/{id}
	case len(parts) == 1:
		s.onlyGet(w, r, func(w http.ResponseWriter, r *http.Request) { s.apiGetVisitor(w, r, id) })

	// /api/visitors/{id}/checkout
	case len(parts) == 2 && parts[1] == "checkout":
		if r.Method != http.MethodPut && r.Method != http.MethodPost {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiCheckOut(w, r, id)

	// /api/visitors/{id}/duration
	case len(parts) == 2 && parts[1] == "duration":
		if r.Method != http.MethodPatch && r.Method != http.MethodPut {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiUpdateDuration(w, r, id)

	// /api/visitors/{id}/pass
	case len(parts) == 2 && parts[1] == "pass":
		s.onlyGet(w, r, func(w http.ResponseWriter, r *http.Request) { s.apiPass(w, r, id) })

	// /api/visitors/{id}/alerts/{alertID}/ack
	case len(parts) == 4 && parts[1] == "alerts" && parts[3] == "ack":
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiAcknowledgeAlert(w, r, id, parts[2])

	default:
		apiError(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) onlyGet(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h(w, r)
}

// apiRegisterVisitor checks a visitor in and returns the record with its
// pass QR code.
func (s *Server) apiRegisterVisitor(w http.ResponseWriter, r *http.Request) {
	var req visitor.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	reg, err := s.visitors.Register(r.Context(), req)
	if err != nil {
		apiServiceError(w, r, err)
		return
	}

	apiJSON(w, reg, http.StatusCreated)
}

// apiListVisitors returns one page of visitors.
func (s *Server) apiListVisitors(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptionsFromQuery(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := s.visitors.List(r.Context(), opts)
	if err != nil {
		apiServiceError(w, r, err)
		return
	}

	apiJSON(w, page, http.StatusOK)
}

// listOptionsFromQuery parses list filters. Statuses may be repeated or
// comma-separated.
func listOptionsFromQuery(r *http.Request) (visitor.ListOptions, error) {
	q := r.URL.Query()
	opts := visitor.ListOptions{
		Search:    strings.TrimSpace(q.Get("search")),
		Company:   strings.TrimSpace(q.Get("company")),
		Purpose:   strings.TrimSpace(q.Get("purpose")),
		SortField: q.Get("sort_field"),
	}

	for _, raw := range q["status"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			st, ok := visitor.ParseStatus(part)
			if !ok {
				return opts, errors.New("status must be checked_in or checked_out")
			}
			opts.Statuses = append(opts.Statuses, st)
		}
	}

	switch strings.ToLower(q.Get("sort_order")) {
	case "", "desc":
	case "asc":
		opts.SortAsc = true
	default:
		return opts, errors.New("sort_order must be asc or desc")
	}

	var err error
	if opts.Page, err = positiveQueryInt(q.Get("page")); err != nil {
		return opts, errors.New("page must be a positive integer")
	}
	if opts.Limit, err = positiveQueryInt(q.Get("limit")); err != nil {
		return opts, errors.New("limit must be a positive integer")
	}

	return opts, nil
}

// positiveQueryInt parses an optional positive integer; "" yields 0.
func positiveQueryInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}

// apiGetVisitor returns one visitor.
func (s *Server) apiGetVisitor(w http.ResponseWriter, r *http.Request, id string) {
	v, err := s.visitors.Get(r.Context(), id)
	if err != nil {
		apiServiceError(w, r, err)
		return
	}
	apiJSON(w, v, http.StatusOK)
}

// apiCheckOut ends a visit.
func (s *Server) apiCheckOut(w http.ResponseWriter, r *http.Request, id string) {
	result, err := s.visitors.CheckOut(r.Context(), id)
	if err != nil {
		apiServiceError(w, r, err)
		return
	}
	apiJSON(w, result, http.StatusOK)
}

// apiUpdateDuration changes the expected duration of a visit in progress.
func (s *Server) apiUpdateDuration(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		ExpectedDurationMinutes int     `json:"expected_duration_minutes"`
		Notes                   *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	v, err := s.visitors.UpdateExpectedDuration(r.Context(), id, req.ExpectedDurationMinutes, req.Notes)
	if err != nil {
		apiServiceError(w, r, err)
		return
	}
	apiJSON(w, v, http.StatusOK)
}

// apiAcknowledgeAlert marks an alert as seen. Without acknowledged_by the
// owner of the calling API key is recorded.
func (s *Server) apiAcknowledgeAlert(w http.ResponseWriter, r *http.Request, id, alertID string) {
	var req struct {
		AcknowledgedBy string `json:"acknowledged_by"`
	}
	if err := decodeBody(r, &req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	by := strings.TrimSpace(req.AcknowledgedBy)
	if by == "" {
		by = auth.OwnerFromContext(r.Context())
	}

	alert, err := s.visitors.AcknowledgeAlert(r.Context(), id, alertID, by)
	if err != nil {
		apiServiceError(w, r, err)
		return
	}
	apiJSON(w, alert, http.StatusOK)
}

// apiPass returns the visitor's pass as a QR code PNG.
func (s *Server) apiPass(w http.ResponseWriter, r *http.Request, id string) {
	v, err := s.visitors.Get(r.Context(), id)
	if err != nil {
		apiServiceError(w, r, err)
		return
	}

	png, err := visitor.PassPNG(v.PassID)
	if err != nil {
		apiServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	if _, err := w.Write(png); err != nil {
		slog.Error("writing pass", "visitor_id", id, "error", err)
	}
}

// apiSweep runs the overstay check and returns the flagged visitors.
func (s *Server) apiSweep(w http.ResponseWriter, r *http.Request) {
	result, err := s.visitors.Sweep(r.Context())
	if err != nil {
		apiServiceError(w, r, err)
		return
	}
	apiJSON(w, result, http.StatusOK)
}

// apiDurationAnalytics reports visit durations. The date range is optional.
func (s *Server) apiDurationAnalytics(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRangeFromQuery(r, false)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.visitors.DurationAnalytics(r.Context(), dr)
	if err != nil {
		apiServiceError(w, r, err)
		return
	}
	apiJSON(w, result, http.StatusOK)
}

// apiReport lists visitors whose visit date falls in the range.
func (s *Server) apiReport(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRangeFromQuery(r, true)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	visitors, err := s.visitors.Report(r.Context(), dr)
	if err != nil {
		apiServiceError(w, r, err)
		return
	}
	apiJSON(w, visitors, http.StatusOK)
}

// apiDailyCounts returns visitors per day in the range.
func (s *Server) apiDailyCounts(w http.ResponseWriter, r *http.Request) {
	dr, err := dateRangeFromQuery(r, true)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	counts, err := s.visitors.DailyCounts(r.Context(), dr)
	if err != nil {
		apiServiceError(w, r, err)
		return
	}
	apiJSON(w, counts, http.StatusOK)
}

// dateRangeFromQuery parses start_date and end_date (YYYY-MM-DD, UTC). The
// end date is inclusive: the range runs to the last instant of that day.
func dateRangeFromQuery(r *http.Request, required bool) (visitor.DateRange, error) {
	var dr visitor.DateRange
	q := r.URL.Query()
	start, end := q.Get("start_date"), q.Get("end_date")

	if required && (start == "" || end == "") {
		return dr, errors.New("start_date and end_date are required (YYYY-MM-DD)")
	}

	if start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return dr, errors.New("start_date must be YYYY-MM-DD")
		}
		dr.From = t
	}
	if end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return dr, errors.New("end_date must be YYYY-MM-DD")
		}
		dr.To = t.Add(24*time.Hour - time.Nanosecond)
	}

	if !dr.From.IsZero() && !dr.To.IsZero() && dr.To.Before(dr.From) {
		return dr, errors.New("end_date must not be before start_date")
	}
	return dr, nil
}
