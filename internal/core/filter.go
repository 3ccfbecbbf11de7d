package core

import (
	"sort"
	"strconv"
	"strings"
)

// Pagination defaults applied when a filter carries no usable values.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Filter is the optional combination of parameters controlling a list
// query. Zero values mean "no constraint".
type Filter struct {
	Type      TransactionType
	Category  string
	StartDate Date
	EndDate   Date
	Search    string
	Page      int
	PageSize  int
}

// Page is one page of matching transactions plus the pre-pagination
// total. TotalPages is ceil(Total/PageSize), so an empty result set
// yields zero pages.
type Page struct {
	Data       []Transaction `json:"data"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}

// Normalize coerces missing or non-positive pagination values to their
// defaults and trims the search string.
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// Matches reports whether t satisfies every constraint in the filter.
// Type, category and the date range combine with the search term via
// logical AND; the search term's internal clauses are OR-ed.
func (f Filter) Matches(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if !f.StartDate.IsZero() && t.Date.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && t.Date.After(f.EndDate) {
		return false
	}
	return f.matchesSearch(t)
}

// matchesSearch implements the dual-branch search heuristic: a term
// that parses as a number matches the amount exactly in addition to the
// case-insensitive substring match on description and category; a
// non-numeric term matches text only.
func (f Filter) matchesSearch(t Transaction) bool {
	term := strings.TrimSpace(f.Search)
	if term == "" {
		return true
	}

	lower := strings.ToLower(term)
	if strings.Contains(strings.ToLower(t.Description), lower) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Category), lower) {
		return true
	}

	if _, err := strconv.ParseFloat(term, 64); err == nil {
		if cents, err := ParseCents(term); err == nil && t.Amount.Cents == cents {
			return true
		}
	}
	return false
}

// SortForListing orders transactions by date descending, newest first,
// falling back to id descending so that pages are stable.
func SortForListing(ts []Transaction) {
	sort.SliceStable(ts, func(i, j int) bool {
		if !ts[i].Date.Equal(ts[j].Date.Time) {
			return ts[i].Date.After(ts[j].Date)
		}
		return ts[i].ID > ts[j].ID
	})
}

// Paginate slices an already sorted, already filtered result set into
// the requested page. page and pageSize must be normalized beforehand.
func Paginate(ts []Transaction, page, pageSize int) Page {
	total := len(ts)
	totalPages := (total + pageSize - 1) / pageSize

	skip := (page - 1) * pageSize
	if skip > total {
		skip = total
	}
	end := skip + pageSize
	if end > total {
		end = total
	}

	data := make([]Transaction, end-skip)
	copy(data, ts[skip:end])

	return Page{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
