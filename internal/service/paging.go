package service

import (
	"fmt"
	"math"

	"github.com/Skotchmaster/inventory/internal/models"
)

// Paging holds the process-wide page size limits.
type Paging struct {
	DefaultPageSize int
	MaxPageSize     int
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

type ProductPage struct {
	Products   []models.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

// normalize coerces page to >= 1 and limit into [1, MaxPageSize]; a zero
// limit means "not given" and selects DefaultPageSize.
func (p Paging) normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit == 0:
		limit = p.DefaultPageSize
	case limit < 1:
		limit = 1
	}
	if limit > p.MaxPageSize {
		limit = p.MaxPageSize
	}
	return page, limit
}

// pageOffset returns the first row index of page. ok is false when the
// offset does not fit in an int; such a page is past any real result set.
func pageOffset(page, limit int) (offset int, ok bool) {
	if page-1 > math.MaxInt/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}

func pageCount(total int64, limit int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func sortRequest(sortBy, sortOrder string) (models.SortField, bool, error) {
	field := models.SortCreatedAt
	if sortBy != "" {
		field = models.SortField(sortBy)
	}
	if _, ok := field.Column(); !ok {
		return "", false, fmt.Errorf("%w: unsupported sortBy %q", ErrValidation, sortBy)
	}

	switch sortOrder {
	case "", "desc":
		return field, true, nil
	case "asc":
		return field, false, nil
	default:
		return "", false, fmt.Errorf("%w: sortOrder must be asc or desc", ErrValidation)
	}
}
