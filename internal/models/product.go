package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product belongs to a Brand and is removed together with it.
type Product struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	Name        string              `gorm:"size:255;not null;index" json:"name"`
	SKU         *string             `gorm:"column:sku;size:100;uniqueIndex" json:"sku"`
	BrandID     uint                `gorm:"not null;index" json:"brand_id"`
	Brand       *Brand              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"brand,omitempty"`
	Color       *string             `gorm:"size:100" json:"color"`
	Price       decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"price"`
	Cost        decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"cost"`
	StockQty    int                 `gorm:"not null;default:0" json:"stock_qty"`
	Description *string             `gorm:"type:text" json:"description"`
	// Pointer so that an explicit false is not replaced by the column default.
	IsActive  *bool     `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) Active() bool {
	return p.IsActive == nil || *p.IsActive
}
