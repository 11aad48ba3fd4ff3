package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/inventory/internal/models"
)

// ProductRepo is the gorm-backed product store. Rows are never deleted.
type ProductRepo struct {
	*GormRepo
}

func NewProductRepo(g *GormRepo) *ProductRepo {
	return &ProductRepo{GormRepo: g}
}

func (r *ProductRepo) Create(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return translate(r.DB.WithContext(ctx).Create(p).Error)
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// Update applies patch in a single UPDATE statement and returns the full
// row as stored afterwards.
func (r *ProductRepo) Update(ctx context.Context, id string, patch models.ProductPatch, now time.Time) (*models.Product, error) {
	fields := map[string]any{"updated_at": now}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.Quantity != nil {
		fields["quantity"] = *patch.Quantity
	}
	if patch.IsActive != nil {
		fields["is_active"] = *patch.IsActive
	}

	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *ProductRepo) Count(ctx context.Context, c models.ProductCriteria) (int64, error) {
	var total int64
	tx := applyCriteria(r.DB.WithContext(ctx).Model(&models.Product{}), c)
	if err := tx.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ProductRepo) Find(ctx context.Context, c models.ProductCriteria, page models.PageRequest) ([]models.Product, error) {
	col, ok := page.SortBy.Column()
	if !ok {
		return nil, fmt.Errorf("unsupported sort field %q", page.SortBy)
	}

	items := make([]models.Product, 0, page.Limit)
	tx := applyCriteria(r.DB.WithContext(ctx).Model(&models.Product{}), c).
		Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: page.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Offset(page.Offset).
		Limit(page.Limit)
	if err := tx.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func applyCriteria(tx *gorm.DB, c models.ProductCriteria) *gorm.DB {
	if c.ActiveOnly {
		tx = tx.Where("is_active = ?", true)
	}
	if c.Category != nil {
		tx = tx.Where("category = ?", *c.Category)
	}
	if c.MinPrice != nil {
		tx = tx.Where("price >= ?", *c.MinPrice)
	}
	if c.MaxPrice != nil {
		tx = tx.Where("price <= ?", *c.MaxPrice)
	}
	if c.MinQuantity != nil {
		tx = tx.Where("quantity >= ?", *c.MinQuantity)
	}
	if c.MaxQuantity != nil {
		tx = tx.Where("quantity <= ?", *c.MaxQuantity)
	}
	if c.Term != "" {
		pattern := "%" + escapeLike(strings.ToLower(c.Term)) + "%"
		tx = tx.Where(
			`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}
	return tx
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
