package inventory

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"catalog-backend/internal/audit"
	"catalog-backend/internal/catalog"
	"catalog-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const timeLayout = "2006-01-02 15:04:05"

// Recorder receives one entry per catalog change.
type Recorder interface {
	Record(ctx context.Context, opts audit.LogOptions)
}

type BrandResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	ProductsCount *int64 `json:"products_count,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func brandResponse(b *models.Brand) BrandResponse {
	return BrandResponse{
		ID:        b.ID,
		Name:      b.Name,
		Slug:      b.Slug,
		CreatedAt: b.CreatedAt.Format(timeLayout),
		UpdatedAt: b.UpdatedAt.Format(timeLayout),
	}
}

type ProductResponse struct {
	ID          uint          `json:"id"`
	Name        string        `json:"name"`
	SKU         *string       `json:"sku"`
	BrandID     uint          `json:"brand_id"`
	BrandName   string        `json:"brand_name"`
	Color       *string       `json:"color"`
	Price       *string       `json:"price"`
	Cost        *string       `json:"cost"`
	StockQty    int           `json:"stock_qty"`
	StockBadge  catalog.Badge `json:"stock_badge"`
	Description *string       `json:"description"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at"`
}

func productResponse(p *models.Product) ProductResponse {
	res := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		SKU:         p.SKU,
		BrandID:     p.BrandID,
		Color:       p.Color,
		Price:       catalog.FormatAmount(p.Price),
		Cost:        catalog.FormatAmount(p.Cost),
		StockQty:    p.StockQty,
		StockBadge:  catalog.StockBadge(p.StockQty),
		Description: p.Description,
		IsActive:    p.Active(),
		CreatedAt:   p.CreatedAt.Format(timeLayout),
		UpdatedAt:   p.UpdatedAt.Format(timeLayout),
	}
	if p.Brand != nil {
		res.BrandName = p.Brand.Name
	}
	return res
}

type ListResponse[T any] struct {
	Data   []T   `json:"data"`
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}

type BulkDeleteRequest struct {
	IDs []uint `json:"ids"`
}

type BulkDeleteResponse struct {
	Deleted []uint `json:"deleted"`
	Count   int    `json:"count"`
}

// writeError maps catalog errors onto the HTTP error shape.
func writeError(c *fiber.Ctx, err error) error {
	var ve *catalog.ValidationError
	switch {
	case errors.As(err, &ve):
		status := fiber.StatusUnprocessableEntity
		if ve.Conflict {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(fiber.Map{
			"error":  firstMessage(ve),
			"fields": ve.Fields,
		})
	case errors.Is(err, catalog.ErrBrandNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Brand not found")
	case errors.Is(err, catalog.ErrProductNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Product not found")
	}
	return err
}

func firstMessage(ve *catalog.ValidationError) string {
	if len(ve.Fields) == 1 {
		for _, msg := range ve.Fields {
			return msg
		}
	}
	return "The given data was invalid."
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return uint(id), nil
}

// parsePage reads offset and limit, ignoring values that are not integers.
func parsePage(c *fiber.Ctx) catalog.Page {
	var p catalog.Page
	if o, err := strconv.Atoi(c.Query("offset")); err == nil {
		p.Offset = o
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil {
		p.Limit = l
	}
	return p.Clamp()
}

// parseTernary reads an optional boolean filter. Empty and "all" mean no filter.
func parseTernary(v string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "all":
		return nil, nil
	case "1", "true", "yes":
		b := true
		return &b, nil
	case "0", "false", "no":
		b := false
		return &b, nil
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid boolean filter value")
}

func parseFlag(v string) bool {
	b, err := parseTernary(v)
	return err == nil && b != nil && *b
}

func parseSort(c *fiber.Ctx) (string, bool) {
	return c.Query("sort"), strings.EqualFold(c.Query("direction"), "desc")
}
