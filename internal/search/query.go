package search

import (
	"fmt"
	"strings"

	"github.com/Skotchmaster/inventory/internal/models"
)

// name and description carry a wildcard subfield so substring matches work
// on values of any length. name.keyword exists only for sorting.
var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id": map[string]any{"type": "keyword"},
			"name": map[string]any{
				"type": "text",
				"fields": map[string]any{
					"keyword": map[string]any{"type": "keyword", "ignore_above": 1024},
					"wc":      map[string]any{"type": "wildcard"},
				},
			},
			"description": map[string]any{
				"type": "text",
				"fields": map[string]any{
					"wc": map[string]any{"type": "wildcard"},
				},
			},
			"category":  map[string]any{"type": "keyword"},
			"price":     map[string]any{"type": "double"},
			"quantity":  map[string]any{"type": "integer"},
			"isActive":  map[string]any{"type": "boolean"},
			"createdAt": map[string]any{"type": "date"},
			"updatedAt": map[string]any{"type": "date"},
		},
	},
}

var sortFields = map[models.SortField]string{
	models.SortCreatedAt: "createdAt",
	models.SortUpdatedAt: "updatedAt",
	models.SortName:      "name.keyword",
	models.SortPrice:     "price",
	models.SortQuantity:  "quantity",
	models.SortCategory:  "category",
}

var searchFields = []string{"name.wc", "description.wc", "category"}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// buildQuery translates criteria into a bool query. The term matches as a
// case-insensitive substring of name, description or category.
func buildQuery(c models.ProductCriteria) map[string]any {
	filter := []any{}
	if c.ActiveOnly {
		filter = append(filter, map[string]any{"term": map[string]any{"isActive": true}})
	}
	if c.Category != nil {
		filter = append(filter, map[string]any{"term": map[string]any{"category": *c.Category}})
	}
	if r := rangeOf(c.MinPrice, c.MaxPrice); r != nil {
		filter = append(filter, map[string]any{"range": map[string]any{"price": r}})
	}
	if r := rangeOf(c.MinQuantity, c.MaxQuantity); r != nil {
		filter = append(filter, map[string]any{"range": map[string]any{"quantity": r}})
	}

	b := map[string]any{"filter": filter}
	if c.Term != "" {
		pattern := "*" + wildcardEscaper.Replace(c.Term) + "*"
		should := make([]any, 0, 3)
		for _, field := range searchFields {
			should = append(should, map[string]any{
				"wildcard": map[string]any{
					field: map[string]any{"value": pattern, "case_insensitive": true},
				},
			})
		}
		b["should"] = should
		b["minimum_should_match"] = 1
	}
	return map[string]any{"bool": b}
}

func rangeOf[T int | float64](lo, hi *T) map[string]any {
	if lo == nil && hi == nil {
		return nil
	}
	r := map[string]any{}
	if lo != nil {
		r["gte"] = *lo
	}
	if hi != nil {
		r["lte"] = *hi
	}
	return r
}

func buildSearch(c models.ProductCriteria, page models.PageRequest) (map[string]any, error) {
	field, ok := sortFields[page.SortBy]
	if !ok {
		return nil, fmt.Errorf("search: unsupported sort field %q", page.SortBy)
	}
	order := "asc"
	if page.Desc {
		order = "desc"
	}
	return map[string]any{
		"query": buildQuery(c),
		"from":  page.Offset,
		"size":  page.Limit,
		"sort": []any{
			map[string]any{field: map[string]any{"order": order}},
			map[string]any{"id": map[string]any{"order": order}},
		},
	}, nil
}
