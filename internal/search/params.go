package search

import (
	"strings"
	"time"

	"github.com/packtrace/packtrace/internal/model"
)

// Params are the raw, string-typed search parameters shared by the HTTP
// query string, CLI flags, and MCP tool arguments.
type Params struct {
	Scope     string `json:"searchScope"`
	Start     string `json:"startSerial"`
	End       string `json:"endSerial"`
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	GroupBy   string `json:"groupBy"`
}

// dateLayouts are tried in order. A bare date on the upper bound covers the
// whole day.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02 15:04", time.DateOnly}

// Request validates p and converts it into a Request.
func (p Params) Request() (Request, error) {
	scope, err := model.ParseLevel(p.Scope)
	if err != nil {
		return Request{}, invalid(CodeInvalidInput, "%v", err)
	}
	group, err := model.ParseGroupBy(p.GroupBy)
	if err != nil {
		return Request{}, invalid(CodeInvalidInput, "%v", err)
	}

	req := Request{
		Scope:   scope,
		Start:   p.Start,
		End:     p.End,
		Type:    p.Type,
		GroupBy: group,
	}
	if req.From, err = parseDate(p.StartDate, false); err != nil {
		return Request{}, err
	}
	if req.To, err = parseDate(p.EndDate, true); err != nil {
		return Request{}, err
	}
	return req, nil
}

func parseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err != nil {
			continue
		}
		if layout == time.DateOnly && endOfDay {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		return t, nil
	}
	return time.Time{}, invalid(CodeInvalidDate, "invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
}
