package catalog

import (
	"context"
	"errors"

	"catalog-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var p models.Product
	in.applyTo(&p)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureProductRefs(tx, in, 0); err != nil {
			return err
		}
		if err := translateWriteError(tx.Create(&p).Error, "sku"); err != nil {
			return err
		}
		return tx.Preload("Brand").First(&p, "id = ?", p.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Get(ctx context.Context, id uint) (*models.Product, error) {
	return findProduct(r.db.WithContext(ctx), id)
}

// FindBySKU returns the product carrying sku, compared exactly.
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Preload("Brand").Where("sku = ?", sku).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update replaces every writable field with in and returns both states.
func (r *ProductRepository) Update(ctx context.Context, id uint, in ProductInput) (before, after *models.Product, err error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockProduct(tx, id)
		if err != nil {
			return err
		}
		before = current
		after, err = writeProduct(tx, id, in)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// Patch applies a partial update on top of the stored product. The row stays
// locked from the read to the write so concurrent patches do not drop fields.
func (r *ProductRepository) Patch(ctx context.Context, id uint, patch ProductPatch) (before, after *models.Product, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockProduct(tx, id)
		if err != nil {
			return err
		}
		before = current

		in := InputFromProduct(current)
		patch.Apply(&in)
		after, err = writeProduct(tx, id, in)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func writeProduct(tx *gorm.DB, id uint, in ProductInput) (*models.Product, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := ensureProductRefs(tx, in, id); err != nil {
		return nil, err
	}

	var next models.Product
	in.applyTo(&next)
	err := tx.Model(&models.Product{ID: id}).Updates(map[string]any{
		"name":        next.Name,
		"sku":         next.SKU,
		"brand_id":    next.BrandID,
		"color":       next.Color,
		"price":       next.Price,
		"cost":        next.Cost,
		"stock_qty":   next.StockQty,
		"description": next.Description,
		"is_active":   next.IsActive,
	}).Error
	if err := translateWriteError(err, "sku"); err != nil {
		return nil, err
	}
	return findProduct(tx, id)
}

func (r *ProductRepository) List(ctx context.Context, f ProductFilters) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Joins("JOIN brands ON brands.id = products.brand_id")
	q = f.apply(q).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page.Clamp()
	var products []models.Product
	err := q.
		Select("products.*").
		Preload("Brand").
		Order(orderClause(productSorts, f.Sort, f.Desc, "products.name")).
		Order("products.id ASC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// All returns every product matching f, ignoring paging.
func (r *ProductRepository) All(ctx context.Context, f ProductFilters) ([]models.Product, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Joins("JOIN brands ON brands.id = products.brand_id")

	var products []models.Product
	err := f.apply(q).
		Select("products.*").
		Preload("Brand").
		Order(orderClause(productSorts, f.Sort, f.Desc, "products.name")).
		Order("products.id ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Delete removes one product and returns it as it was.
func (r *ProductRepository) Delete(ctx context.Context, id uint) (*models.Product, error) {
	var p *models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findProduct(tx, id)
		if err != nil {
			return err
		}
		p = found
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteMany removes every listed product that exists. Unknown ids are skipped.
func (r *ProductRepository) DeleteMany(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Brand").Where("id IN ?", ids).Order("id ASC").Find(&products).Error; err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}
		found := make([]uint, 0, len(products))
		for _, p := range products {
			found = append(found, p.ID)
		}
		return tx.Where("id IN ?", found).Delete(&models.Product{}).Error
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Restore re-inserts a deleted product with its original id.
func (r *ProductRepository) Restore(ctx context.Context, p models.Product) (*models.Product, error) {
	p.Brand = nil
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertRestoredProduct(tx, &p)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, p.ID)
}

func insertRestoredProduct(tx *gorm.DB, p *models.Product) error {
	in := InputFromProduct(p)
	in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	if err := ensureProductRefs(tx, in, 0); err != nil {
		return err
	}
	return translateWriteError(tx.Create(p).Error, "sku")
}

func lockProduct(tx *gorm.DB, id uint) (*models.Product, error) {
	var p models.Product
	if err := lockingFirst(tx.Preload("Brand"), &p, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// lockingFirst loads a row by id and holds a row lock until the transaction
// ends. SQLite has no FOR UPDATE and serialises writers on its own.
func lockingFirst(tx *gorm.DB, dest any, id uint) error {
	if tx.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	return tx.First(dest, "id = ?", id).Error
}

func findProduct(db *gorm.DB, id uint) (*models.Product, error) {
	var p models.Product
	if err := db.Preload("Brand").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ensureProductRefs checks the brand reference and sku uniqueness ahead of
// the constraints so the caller gets a field-level message.
func ensureProductRefs(tx *gorm.DB, in ProductInput, exceptID uint) error {
	var n int64
	if err := tx.Model(&models.Brand{}).Where("id = ?", in.BrandID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return unknownBrandError()
	}

	if in.SKU == nil {
		return nil
	}
	q := tx.Model(&models.Product{}).Where("sku = ?", *in.SKU)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return takenError("sku")
	}
	return nil
}

func (in ProductInput) applyTo(p *models.Product) {
	active := defaultProductActive
	if in.IsActive != nil {
		active = *in.IsActive
	}
	p.Name = in.Name
	p.SKU = copyString(in.SKU)
	p.BrandID = in.BrandID
	p.Color = copyString(in.Color)
	p.Price = amountToColumn(in.Price)
	p.Cost = amountToColumn(in.Cost)
	p.StockQty = in.StockQty
	p.Description = copyString(in.Description)
	p.IsActive = &active
}
