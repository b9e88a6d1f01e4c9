package dashboard

import (
	"context"

	"catalog-backend/internal/catalog"
	"catalog-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const topBrandsLimit = 5

type BrandCount struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	ProductsCount int64  `json:"products_count"`
}

type Stats struct {
	Brands           int64        `json:"brands"`
	Products         int64        `json:"products"`
	ActiveProducts   int64        `json:"active_products"`
	InactiveProducts int64        `json:"inactive_products"`
	LowStock         int64        `json:"low_stock"`
	OutOfStock       int64        `json:"out_of_stock"`
	InventoryValue   string       `json:"inventory_value"`
	TopBrands        []BrandCount `json:"top_brands"`
}

func LoadStats(ctx context.Context, db *gorm.DB) (*Stats, error) {
	db = db.WithContext(ctx)
	var s Stats

	if err := db.Model(&models.Brand{}).Count(&s.Brands).Error; err != nil {
		return nil, err
	}

	products := func() *gorm.DB { return db.Model(&models.Product{}) }
	if err := products().Count(&s.Products).Error; err != nil {
		return nil, err
	}
	if err := products().Where("is_active = ?", true).Count(&s.ActiveProducts).Error; err != nil {
		return nil, err
	}
	s.InactiveProducts = s.Products - s.ActiveProducts

	if err := products().Where("stock_qty <= ?", catalog.LowStockThreshold).Count(&s.LowStock).Error; err != nil {
		return nil, err
	}
	if err := products().Where("stock_qty <= ?", catalog.OutOfStockThreshold).Count(&s.OutOfStock).Error; err != nil {
		return nil, err
	}

	// negative stock never adds value
	var total struct {
		Value decimal.NullDecimal
	}
	err := products().
		Select("SUM(price * stock_qty) AS value").
		Where("price IS NOT NULL AND stock_qty > 0").
		Scan(&total).Error
	if err != nil {
		return nil, err
	}
	s.InventoryValue = total.Value.Decimal.Round(2).StringFixed(2)

	s.TopBrands = []BrandCount{}
	err = db.Model(&models.Brand{}).
		Select("brands.id, brands.name, COUNT(products.id) AS products_count").
		Joins("JOIN products ON products.brand_id = brands.id").
		Group("brands.id, brands.name").
		Order("products_count DESC").
		Order("brands.name ASC").
		Limit(topBrandsLimit).
		Scan(&s.TopBrands).Error
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// GET /api/dashboard/stats
func StatsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := LoadStats(c.UserContext(), db)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load dashboard stats")
		}
		return c.JSON(s)
	}
}
