package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/transport"
)

// ProductStore persists products. Update returns repo.ErrNotFound when no
// row has the given id.
type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id string, patch models.ProductPatch, now time.Time) (*models.Product, error)
	Count(ctx context.Context, c models.ProductCriteria) (int64, error)
	Find(ctx context.Context, c models.ProductCriteria, page models.PageRequest) ([]models.Product, error)
}

type ListOptions struct {
	Page        int
	Limit       int
	SortBy      string
	SortOrder   string
	Category    *string
	MinPrice    *float64
	MaxPrice    *float64
	MinQuantity *int
	MaxQuantity *int
}

type ProductService struct {
	Store  ProductStore
	Paging Paging
	Events Publisher
	now    func() time.Time
}

func NewProductService(store ProductStore, paging Paging, events Publisher) *ProductService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &ProductService{
		Store:  store,
		Paging: paging,
		Events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProductService) List(ctx context.Context, opts ListOptions) (*ProductPage, error) {
	sortBy, desc, err := sortRequest(opts.SortBy, opts.SortOrder)
	if err != nil {
		return nil, err
	}
	if opts.MinPrice != nil && opts.MaxPrice != nil && *opts.MinPrice > *opts.MaxPrice {
		return nil, fmt.Errorf("%w: minPrice is greater than maxPrice", ErrValidation)
	}
	if opts.MinQuantity != nil && opts.MaxQuantity != nil && *opts.MinQuantity > *opts.MaxQuantity {
		return nil, fmt.Errorf("%w: minQuantity is greater than maxQuantity", ErrValidation)
	}

	criteria := models.ProductCriteria{
		ActiveOnly:  true,
		MinPrice:    opts.MinPrice,
		MaxPrice:    opts.MaxPrice,
		MinQuantity: opts.MinQuantity,
		MaxQuantity: opts.MaxQuantity,
	}
	if opts.Category != nil && *opts.Category != "" {
		criteria.Category = opts.Category
	}

	return s.query(ctx, criteria, opts.Page, opts.Limit, sortBy, desc)
}

func (s *ProductService) Search(ctx context.Context, term string, page, limit int) (*ProductPage, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", ErrValidation)
	}

	criteria := models.ProductCriteria{ActiveOnly: true, Term: term}
	return s.query(ctx, criteria, page, limit, models.SortCreatedAt, true)
}

// query counts and fetches the requested page concurrently. The total may be
// stale relative to the page if a write lands in between.
func (s *ProductService) query(ctx context.Context, c models.ProductCriteria, page, limit int, sortBy models.SortField, desc bool) (*ProductPage, error) {
	page, limit = s.Paging.normalize(page, limit)
	offset, inRange := pageOffset(page, limit)
	req := models.PageRequest{
		Offset: offset,
		Limit:  limit,
		SortBy: sortBy,
		Desc:   desc,
	}

	var (
		total int64
		items []models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.Store.Count(gctx, c)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		total = n
		return nil
	})
	if inRange {
		g.Go(func() error {
			found, err := s.Store.Find(gctx, c, req)
			if err != nil {
				return fmt.Errorf("find products: %w", err)
			}
			items = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if items == nil {
		items = []models.Product{}
	}
	return &ProductPage{
		Products: items,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Pages: pageCount(total, limit),
		},
	}, nil
}

func (s *ProductService) Create(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.create")

	if err := validateCreate(req); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Quantity:    *req.Quantity,
		IsActive:    true,
	}
	if err := s.Store.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	publish(ctx, s.Events, TopicProductEvents, product.ID, map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})

	l.Info("create_product_success", "product_id", product.ID)
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id string, req transport.UpdateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.update", "product_id", id)

	if err := validatePatch(req); err != nil {
		return nil, err
	}

	patch := models.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Quantity:    req.Quantity,
		IsActive:    req.IsActive,
	}
	product, err := s.Store.Update(ctx, id, patch, s.now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	publish(ctx, s.Events, TopicProductEvents, product.ID, map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})

	l.Info("update_product_success")
	return product, nil
}

// Delete is a soft delete: the row stays, isActive becomes false.
func (s *ProductService) Delete(ctx context.Context, id string) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.delete", "product_id", id)

	inactive := false
	product, err := s.Store.Update(ctx, id, models.ProductPatch{IsActive: &inactive}, s.now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}

	publish(ctx, s.Events, TopicProductEvents, product.ID, map[string]any{
		"type":      "product_deleted",
		"productID": product.ID,
	})

	l.Info("delete_product_success")
	return product, nil
}

func validateCreate(req transport.CreateProductRequest) error {
	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.Description) == "" {
		missing = append(missing, "description")
	}
	if req.Price == nil {
		missing = append(missing, "price")
	}
	if strings.TrimSpace(req.Category) == "" {
		missing = append(missing, "category")
	}
	if req.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if *req.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if *req.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	return nil
}

func validatePatch(req transport.UpdateProductRequest) error {
	if req.Price != nil && *req.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	for field, v := range map[string]*string{"name": req.Name, "description": req.Description, "category": req.Category} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrValidation, field)
		}
	}
	return nil
}
