package utils

import "strconv"

const DefaultPageSize = 10

type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	NumPages int   `json:"num_pages"`
	Total    int64 `json:"total"`
	HasNext  bool  `json:"has_next"`
	HasPrev  bool  `json:"has_prev"`
}

// PageWindow is the resolved slice of a result set.
type PageWindow struct {
	Page     int
	PageSize int
	NumPages int
	Offset   int
}

// ResolvePage turns a raw page parameter into a window over total rows.
// A non-numeric page gives the first page; a page below 1 or past the end
// gives the last page. There is always at least one page.
func ResolvePage(raw string, pageSize int, total int64) PageWindow {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	numPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if numPages < 1 {
		numPages = 1
	}

	page, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		page = 1
	case page < 1 || page > numPages:
		page = numPages
	}

	return PageWindow{
		Page:     page,
		PageSize: pageSize,
		NumPages: numPages,
		Offset:   (page - 1) * pageSize,
	}
}

func NewPage[T any](items []T, w PageWindow, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Page:     w.Page,
		PageSize: w.PageSize,
		NumPages: w.NumPages,
		Total:    total,
		HasNext:  w.Page < w.NumPages,
		HasPrev:  w.Page > 1,
	}
}
