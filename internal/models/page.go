package models

import "math"

// PerPage is the fixed page size of every paginated collection.
const PerPage = 10

type Page[T any] struct {
	Items       []T
	CurrentPage int
	LastPage    int
	PerPage     int
	Total       int
}

// NewPage clamps page to 1 and derives LastPage, which is never below 1.
func NewPage[T any](items []T, page, total int) Page[T] {
	if page < 1 {
		page = 1
	}
	lastPage := (total + PerPage - 1) / PerPage
	if lastPage < 1 {
		lastPage = 1
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:       items,
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     PerPage,
		Total:       total,
	}
}

// Offset returns the row offset of a 1-based page. Pages past the largest
// representable offset are clamped to it.
func Offset(page int) int {
	if page < 1 {
		page = 1
	}
	if page-1 > math.MaxInt/PerPage {
		page = math.MaxInt/PerPage + 1
	}
	return (page - 1) * PerPage
}
