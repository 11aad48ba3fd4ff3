package models

// ProductCriteria is the filter half of a product query. Every pointer field
// is optional and only constrains the result when set; range bounds are
// inclusive.
type ProductCriteria struct {
	ActiveOnly  bool
	Category    *string
	MinPrice    *float64
	MaxPrice    *float64
	MinQuantity *int
	MaxQuantity *int
	// Term is matched case-insensitively as a substring of name,
	// description or category.
	Term string
}

type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortName      SortField = "name"
	SortPrice     SortField = "price"
	SortQuantity  SortField = "quantity"
	SortCategory  SortField = "category"
)

var sortColumns = map[SortField]string{
	SortCreatedAt: "created_at",
	SortUpdatedAt: "updated_at",
	SortName:      "name",
	SortPrice:     "price",
	SortQuantity:  "quantity",
	SortCategory:  "category",
}

// Column returns the storage column for f and whether f is sortable.
func (f SortField) Column() (string, bool) {
	c, ok := sortColumns[f]
	return c, ok
}

type PageRequest struct {
	Offset int
	Limit  int
	SortBy SortField
	Desc   bool
}
