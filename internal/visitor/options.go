package visitor

import (
	"fmt"
	"math"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// sortColumns maps accepted sort field names to columns. Both snake_case
// and the camelCase names used by the front-office UI are accepted.
var sortColumns = map[string]string{
	"created_at":                "created_at",
	"createdAt":                 "created_at",
	"full_name":                 "full_name",
	"fullName":                  "full_name",
	"check_in_time":             "check_in_time",
	"checkInTime":               "check_in_time",
	"check_out_time":            "check_out_time",
	"checkOutTime":              "check_out_time",
	"visit_date":                "visit_date",
	"visitDate":                 "visit_date",
	"status":                    "status",
	"company":                   "company",
	"purpose":                   "purpose",
	"host_name":                 "host_name",
	"hostName":                  "host_name",
	"expected_duration_minutes": "expected_duration",
	"expectedDuration":          "expected_duration",
	"overstay_minutes":          "overstay_minutes",
	"overstayMinutes":           "overstay_minutes",
}

// ListOptions controls filtering, sorting and paging for List.
type ListOptions struct {
	Search    string   // case-insensitive substring over identity, company, purpose and host
	Statuses  []Status // empty = all
	Company   string   // exact match
	Purpose   string   // exact match
	SortField string   // key of sortColumns; empty = created_at
	SortAsc   bool
	Page      int // 1-based
	Limit     int
}

// normalize fills defaults and rejects unknown sort fields or statuses.
func (o *ListOptions) normalize() error {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = defaultPageSize
	}
	if o.Limit > maxPageSize {
		o.Limit = maxPageSize
	}
	if o.SortField == "" {
		o.SortField = "created_at"
	}
	if _, ok := sortColumns[o.SortField]; !ok {
		return invalidField("sort_field", fmt.Sprintf("unknown sort field %q", o.SortField))
	}
	for _, s := range o.Statuses {
		if !s.IsValid() {
			return invalidField("status", fmt.Sprintf("unknown status %q", s))
		}
	}
	return nil
}

// SortColumn returns the column for the normalized sort field.
func (o ListOptions) SortColumn() string {
	if col, ok := sortColumns[o.SortField]; ok {
		return col
	}
	return "created_at"
}

// Offset is the number of rows skipped before the current page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
	PerPage     int `json:"per_page"`
}

// Page is one page of visitors.
type Page struct {
	Data       []*Visitor `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func newPagination(page, perPage, total int) Pagination {
	return Pagination{
		CurrentPage: page,
		Total:       total,
		TotalPages:  int(math.Ceil(float64(total) / float64(perPage))),
		PerPage:     perPage,
	}
}
