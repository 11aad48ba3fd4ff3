package httpserver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/service"
)

// parseIntDefault returns def for empty or non-numeric input.
func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return v
	}
	return def
}

func optionalFloat(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", service.ErrValidation, name)
	}
	return &v, nil
}

func optionalInt(c echo.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", service.ErrValidation, name)
	}
	return &v, nil
}

func listOptions(c echo.Context) (service.ListOptions, error) {
	opts := service.ListOptions{
		Page:      parseIntDefault(c.QueryParam("page"), 1),
		Limit:     parseIntDefault(c.QueryParam("limit"), 0),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: strings.ToLower(c.QueryParam("sortOrder")),
	}
	if category := c.QueryParam("category"); category != "" {
		opts.Category = &category
	}

	var err error
	if opts.MinPrice, err = optionalFloat(c, "minPrice"); err != nil {
		return opts, err
	}
	if opts.MaxPrice, err = optionalFloat(c, "maxPrice"); err != nil {
		return opts, err
	}
	if opts.MinQuantity, err = optionalInt(c, "minQuantity"); err != nil {
		return opts, err
	}
	if opts.MaxQuantity, err = optionalInt(c, "maxQuantity"); err != nil {
		return opts, err
	}
	return opts, nil
}
