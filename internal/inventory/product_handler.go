package inventory

import (
	"fmt"
	"strconv"

	"catalog-backend/internal/audit"
	"catalog-backend/internal/auth"
	"catalog-backend/internal/catalog"
	"catalog-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/products?search=&brand_id=&is_active=&low_stock=1&out_of_stock=1&sort=price&direction=desc
func ListProductsHandler(products *catalog.ProductRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := productFilters(c)
		if err != nil {
			return err
		}

		rows, total, err := products.List(c.UserContext(), f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}

		data := make([]ProductResponse, 0, len(rows))
		for i := range rows {
			data = append(data, productResponse(&rows[i]))
		}
		return c.JSON(ListResponse[ProductResponse]{Data: data, Total: total, Offset: f.Page.Offset, Limit: f.Page.Limit})
	}
}

func productFilters(c *fiber.Ctx) (catalog.ProductFilters, error) {
	sort, desc := parseSort(c)
	f := catalog.ProductFilters{
		Search:     c.Query("search"),
		LowStock:   parseFlag(c.Query("low_stock")),
		OutOfStock: parseFlag(c.Query("out_of_stock")),
		Sort:       sort,
		Desc:       desc,
		Page:       parsePage(c),
	}

	if v := c.Query("brand_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "Invalid brand_id filter")
		}
		brandID := uint(id)
		f.BrandID = &brandID
	}

	active, err := parseTernary(c.Query("is_active"))
	if err != nil {
		return f, err
	}
	f.IsActive = active
	return f, nil
}

// GET /api/products/:id
func GetProductHandler(products *catalog.ProductRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		p, err := products.Get(c.UserContext(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(productResponse(p))
	}
}

// POST /api/admin/products
func CreateProductHandler(products *catalog.ProductRepository, rec Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		var body catalog.ProductInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		p, err := products.Create(c.UserContext(), body)
		if err != nil {
			return writeError(c, err)
		}

		rec.Record(c.UserContext(), audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  models.EntityProduct,
			EntityID:    p.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Created product %s", p.Name),
			After:       p,
		})

		return c.Status(fiber.StatusCreated).JSON(productResponse(p))
	}
}

// PUT /api/admin/products/:id changes only the fields present in the body.
// An explicit null clears an optional field.
func UpdateProductHandler(products *catalog.ProductRepository, rec Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body catalog.ProductPatch
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before, after, err := products.Patch(c.UserContext(), id, body)
		if err != nil {
			return writeError(c, err)
		}

		rec.Record(c.UserContext(), audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  models.EntityProduct,
			EntityID:    after.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Updated product %s", after.Name),
			Before:      before,
			After:       after,
		})

		return c.JSON(productResponse(after))
	}
}

// DELETE /api/admin/products/:id
func DeleteProductHandler(products *catalog.ProductRepository, rec Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		p, err := products.Delete(c.UserContext(), id)
		if err != nil {
			return writeError(c, err)
		}
		recordProductDelete(c, rec, actor, p)

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/products/bulk-delete
func BulkDeleteProductsHandler(products *catalog.ProductRepository, rec Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		var body BulkDeleteRequest
		if err := c.BodyParser(&body); err != nil || len(body.IDs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ids must be a non-empty list")
		}

		removed, err := products.DeleteMany(c.UserContext(), body.IDs)
		if err != nil {
			return writeError(c, err)
		}

		deleted := make([]uint, 0, len(removed))
		for i := range removed {
			recordProductDelete(c, rec, actor, &removed[i])
			deleted = append(deleted, removed[i].ID)
		}
		return c.JSON(BulkDeleteResponse{Deleted: deleted, Count: len(deleted)})
	}
}

func recordProductDelete(c *fiber.Ctx, rec Recorder, actor auth.Actor, p *models.Product) {
	rec.Record(c.UserContext(), audit.LogOptions{
		UserID:      actor.ID,
		UserName:    actor.Name,
		EntityType:  models.EntityProduct,
		EntityID:    p.ID,
		Action:      models.AuditActionDelete,
		Description: fmt.Sprintf("Deleted product %s", p.Name),
		Before:      p,
	})
}
