// Package pagination slices an ordered sequence into fixed-size pages.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const DefaultPageSize = 10

type Page[T any] struct {
	Items       []T  `json:"items"`
	Number      int  `json:"number"`
	Size        int  `json:"size"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// Paginate returns page `number` (1-indexed) of items. A number beyond the
// last page yields the last page, a number below 1 yields the first. The
// input slice is never modified.
func Paginate[T any](items []T, number, size int) Page[T] {
	if size < 1 {
		size = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}
	start := (number - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return Page[T]{
		Items:       items[start:end],
		Number:      number,
		Size:        size,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     number < totalPages,
		HasPrevious: number > 1,
	}
}

// PageParam reads the "page" query parameter. Anything non-numeric counts
// as the first page.
func PageParam(c *gin.Context) int {
	number, err := strconv.Atoi(c.Query("page"))
	if err != nil || number < 1 {
		return 1
	}
	return number
}
