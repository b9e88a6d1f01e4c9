package catalog

import (
	"context"
	"errors"

	"catalog-backend/internal/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// BrandSummary is a brand with the number of products that reference it.
type BrandSummary struct {
	models.Brand
	ProductsCount int64 `json:"products_count"`
}

// BrandSnapshot is everything removed by a brand delete.
type BrandSnapshot struct {
	Brand    models.Brand     `json:"brand"`
	Products []models.Product `json:"products"`
}

type BrandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

func (r *BrandRepository) Create(ctx context.Context, in BrandInput) (*models.Brand, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	brand := models.Brand{
		Name: in.Name,
		Slug: slug.Make(in.Name),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureBrandNameFree(tx, in.Name, 0); err != nil {
			return err
		}
		return translateWriteError(tx.Create(&brand).Error, "name")
	})
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *BrandRepository) Get(ctx context.Context, id uint) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return &brand, nil
}

// FindByName matches case-insensitively, the same way uniqueness is enforced.
func (r *BrandRepository) FindByName(ctx context.Context, name string) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&brand).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return &brand, nil
}

// Update returns the brand as it was before the change and after it.
func (r *BrandRepository) Update(ctx context.Context, id uint, in BrandInput) (before, after *models.Brand, err error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	var brand models.Brand
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&brand, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBrandNotFound
			}
			return err
		}
		old := brand
		before = &old

		if err := ensureBrandNameFree(tx, in.Name, id); err != nil {
			return err
		}

		brand.Name = in.Name
		brand.Slug = slug.Make(in.Name)
		return translateWriteError(tx.Save(&brand).Error, "name")
	})
	if err != nil {
		return nil, nil, err
	}
	return before, &brand, nil
}

func (r *BrandRepository) List(ctx context.Context, f BrandFilters) ([]BrandSummary, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Brand{})
	if term := likeTerm(f.Search); term != "" {
		q = q.Where(`LOWER(brands.name) LIKE ? ESCAPE '\'`, term)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page.Clamp()
	var rows []BrandSummary
	err := q.
		Select("brands.*, (SELECT COUNT(*) FROM products WHERE products.brand_id = brands.id) AS products_count").
		Order(orderClause(brandSorts, f.Sort, f.Desc, "brands.name")).
		Order("brands.id ASC").
		Offset(page.Offset).
		Limit(page.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// All returns every brand ordered by name, for select inputs and exports.
func (r *BrandRepository) All(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

// Delete removes the brand and all of its products in one transaction.
// ON DELETE CASCADE on products.brand_id guards writers that bypass it.
func (r *BrandRepository) Delete(ctx context.Context, id uint) (*BrandSnapshot, error) {
	var snap *BrandSnapshot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := deleteBrand(tx, id)
		snap = s
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// DeleteEmpty removes the brand only while no product references it.
func (r *BrandRepository) DeleteEmpty(ctx context.Context, id uint) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockingFirst(tx, &brand, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBrandNotFound
			}
			return err
		}
		var n int64
		if err := tx.Model(&models.Product{}).Where("brand_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrBrandHasProducts
		}
		return tx.Delete(&brand).Error
	})
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

// DeleteMany removes every listed brand that exists. Unknown ids are skipped.
func (r *BrandRepository) DeleteMany(ctx context.Context, ids []uint) ([]BrandSnapshot, error) {
	snaps := make([]BrandSnapshot, 0, len(ids))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			s, err := deleteBrand(tx, id)
			if errors.Is(err, ErrBrandNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			snaps = append(snaps, *s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snaps, nil
}

// Restore re-inserts a deleted brand and its products with their original ids.
func (r *BrandRepository) Restore(ctx context.Context, snap BrandSnapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		brand := snap.Brand
		if err := ensureBrandNameFree(tx, brand.Name, 0); err != nil {
			return err
		}
		if err := translateWriteError(tx.Create(&brand).Error, "name"); err != nil {
			return err
		}
		for i := range snap.Products {
			p := snap.Products[i]
			p.Brand = nil
			if err := insertRestoredProduct(tx, &p); err != nil {
				return err
			}
		}
		return nil
	})
}

func deleteBrand(tx *gorm.DB, id uint) (*BrandSnapshot, error) {
	var brand models.Brand
	if err := tx.First(&brand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}

	var products []models.Product
	if err := tx.Where("brand_id = ?", id).Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("brand_id = ?", id).Delete(&models.Product{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Delete(&brand).Error; err != nil {
		return nil, err
	}
	return &BrandSnapshot{Brand: brand, Products: products}, nil
}

func ensureBrandNameFree(tx *gorm.DB, name string, exceptID uint) error {
	q := tx.Model(&models.Brand{}).Where("LOWER(name) = LOWER(?)", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return takenError("name")
	}
	return nil
}
