package http

import (
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// parseFilter reads the list query parameters. Missing, non-numeric or
// non-positive pagination values fall back to the defaults; malformed
// dates are treated as absent rather than rejected.
func parseFilter(values url.Values) core.Filter {
	f := core.Filter{
		Type:     core.TransactionType(strings.TrimSpace(values.Get("type"))),
		Category: strings.TrimSpace(values.Get("category")),
		Search:   values.Get("search"),
		Page:     parsePositiveInt(values.Get("page")),
		PageSize: parsePositiveInt(values.Get("pageSize")),
	}

	if d, err := core.ParseDate(values.Get("startDate")); err == nil {
		f.StartDate = d
	}
	if d, err := core.ParseDate(values.Get("endDate")); err == nil {
		f.EndDate = d
	}

	return f.Normalize()
}

func parsePositiveInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
