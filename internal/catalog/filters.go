package catalog

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type Page struct {
	Offset int
	Limit  int
}

// Clamp applies the default and bounds used by every list endpoint.
func (p Page) Clamp() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	switch {
	case p.Limit == 0:
		p.Limit = DefaultLimit
	case p.Limit < 1:
		p.Limit = 1
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	return p
}

type BrandFilters struct {
	Search string
	Sort   string // name | created_at | updated_at
	Desc   bool
	Page   Page
}

var brandSorts = map[string]string{
	"name":       "brands.name",
	"created_at": "brands.created_at",
	"updated_at": "brands.updated_at",
}

type ProductFilters struct {
	Search     string
	BrandID    *uint
	IsActive   *bool
	LowStock   bool
	OutOfStock bool
	Sort       string // name | price | stock_qty | updated_at | brand
	Desc       bool
	Page       Page
}

var productSorts = map[string]string{
	"name":       "products.name",
	"price":      "products.price",
	"stock_qty":  "products.stock_qty",
	"updated_at": "products.updated_at",
	"brand":      "brands.name",
}

func (f ProductFilters) apply(q *gorm.DB) *gorm.DB {
	if term := likeTerm(f.Search); term != "" {
		q = q.Where(`(LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.sku) LIKE ? ESCAPE '\')`, term, term)
	}
	if f.BrandID != nil {
		q = q.Where("products.brand_id = ?", *f.BrandID)
	}
	if f.IsActive != nil {
		q = q.Where("products.is_active = ?", *f.IsActive)
	}
	if f.LowStock {
		q = q.Where("products.stock_qty <= ?", LowStockThreshold)
	}
	if f.OutOfStock {
		q = q.Where("products.stock_qty <= ?", OutOfStockThreshold)
	}
	return q
}

func orderClause(sorts map[string]string, sort string, desc bool, fallback string) string {
	col, ok := sorts[sort]
	if !ok {
		col = fallback
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return col + " " + dir
}

// likeTerm lower-cases s and escapes LIKE wildcards.
func likeTerm(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
