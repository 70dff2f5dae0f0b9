// Package types contains the view and query values shared across the application.
package types

import (
	"fmt"
	"net/url"
	"strings"
)

// View is a top-level screen.
type View int

// Views in tab order.
const (
	ViewHome View = iota
	ViewInsights
	ViewHistory
)

// Views lists every view in tab order.
var Views = []View{ViewHome, ViewInsights, ViewHistory}

func (v View) String() string {
	switch v {
	case ViewHome:
		return "home"
	case ViewInsights:
		return "insights"
	case ViewHistory:
		return "history"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// Valid reports whether v is one of the enumerated views.
func (v View) Valid() bool {
	return v >= ViewHome && v <= ViewHistory
}

// ParseView parses a view name.
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if strings.EqualFold(strings.TrimSpace(s), v.String()) {
			return v, nil
		}
	}
	return ViewHome, fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// SortOrder orders history by upload time.
type SortOrder int

// Sort orders. Newest is the backend default.
const (
	SortNewest SortOrder = iota
	SortOldest
)

func (s SortOrder) String() string {
	if s == SortOldest {
		return "oldest"
	}
	return "newest"
}

// Param returns the wire value of the sort parameter.
func (s SortOrder) Param() string {
	if s == SortOldest {
		return "asc"
	}
	return "desc"
}

// Toggle returns the other sort order.
func (s SortOrder) Toggle() SortOrder {
	if s == SortOldest {
		return SortNewest
	}
	return SortOldest
}

// ParseSortOrder accepts newest/oldest and the wire values desc/asc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "newest", "desc":
		return SortNewest, nil
	case "oldest", "asc":
		return SortOldest, nil
	default:
		return SortNewest, fmt.Errorf("%w: %q", ErrUnknownSortOrder, s)
	}
}

// HistoryQuery filters and orders the history listing.
type HistoryQuery struct {
	Text string
	Sort SortOrder
}

// Params encodes the query. Empty values are omitted.
func (q HistoryQuery) Params() url.Values {
	params := url.Values{}
	if q.Text != "" {
		params.Set("q", q.Text)
	}
	if sort := q.Sort.Param(); sort != "" {
		params.Set("sort", sort)
	}
	return params
}

// NoExpansion marks that no history entry is expanded.
const NoExpansion = -1

// ViewState is the navigation state of a session.
type ViewState struct {
	ActiveView    View
	ExpandedIndex int
}

// NewViewState returns the state a session starts with.
func NewViewState() ViewState {
	return ViewState{ActiveView: ViewHome, ExpandedIndex: NoExpansion}
}

// HasExpansion reports whether an entry is expanded.
func (s ViewState) HasExpansion() bool {
	return s.ExpandedIndex != NoExpansion
}
