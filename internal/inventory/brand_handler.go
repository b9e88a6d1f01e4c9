package inventory

import (
	"fmt"

	"catalog-backend/internal/audit"
	"catalog-backend/internal/auth"
	"catalog-backend/internal/catalog"
	"catalog-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/brands?search=&sort=name&direction=asc&offset=0&limit=10
func ListBrandsHandler(brands *catalog.BrandRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sort, desc := parseSort(c)
		page := parsePage(c)

		rows, total, err := brands.List(c.UserContext(), catalog.BrandFilters{
			Search: c.Query("search"),
			Sort:   sort,
			Desc:   desc,
			Page:   page,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list brands")
		}

		data := make([]BrandResponse, 0, len(rows))
		for i := range rows {
			res := brandResponse(&rows[i].Brand)
			count := rows[i].ProductsCount
			res.ProductsCount = &count
			data = append(data, res)
		}
		return c.JSON(ListResponse[BrandResponse]{Data: data, Total: total, Offset: page.Offset, Limit: page.Limit})
	}
}

// GET /api/brands/:id
func GetBrandHandler(brands *catalog.BrandRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		b, err := brands.Get(c.UserContext(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(brandResponse(b))
	}
}

// POST /api/admin/brands
func CreateBrandHandler(brands *catalog.BrandRepository, rec Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		var body catalog.BrandInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		b, err := brands.Create(c.UserContext(), body)
		if err != nil {
			return writeError(c, err)
		}

		rec.Record(c.UserContext(), audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  models.EntityBrand,
			EntityID:    b.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Created brand %s", b.Name),
			After:       b,
		})

		return c.Status(fiber.StatusCreated).JSON(brandResponse(b))
	}
}

// PUT /api/admin/brands/:id
func UpdateBrandHandler(brands *catalog.BrandRepository, rec Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body catalog.BrandInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before, after, err := brands.Update(c.UserContext(), id, body)
		if err != nil {
			return writeError(c, err)
		}

		if before.Name != after.Name {
			rec.Record(c.UserContext(), audit.LogOptions{
				UserID:      actor.ID,
				UserName:    actor.Name,
				EntityType:  models.EntityBrand,
				EntityID:    after.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Renamed brand %s to %s", before.Name, after.Name),
				Before:      before,
				After:       after,
			})
		}

		return c.JSON(brandResponse(after))
	}
}

// DELETE /api/admin/brands/:id removes the brand and all of its products.
func DeleteBrandHandler(brands *catalog.BrandRepository, rec Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		snap, err := brands.Delete(c.UserContext(), id)
		if err != nil {
			return writeError(c, err)
		}
		recordBrandDelete(c, rec, actor, snap)

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/brands/bulk-delete
func BulkDeleteBrandsHandler(brands *catalog.BrandRepository, rec Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		var body BulkDeleteRequest
		if err := c.BodyParser(&body); err != nil || len(body.IDs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ids must be a non-empty list")
		}

		snaps, err := brands.DeleteMany(c.UserContext(), body.IDs)
		if err != nil {
			return writeError(c, err)
		}

		deleted := make([]uint, 0, len(snaps))
		for i := range snaps {
			recordBrandDelete(c, rec, actor, &snaps[i])
			deleted = append(deleted, snaps[i].Brand.ID)
		}
		return c.JSON(BulkDeleteResponse{Deleted: deleted, Count: len(deleted)})
	}
}

func recordBrandDelete(c *fiber.Ctx, rec Recorder, actor auth.Actor, snap *catalog.BrandSnapshot) {
	rec.Record(c.UserContext(), audit.LogOptions{
		UserID:      actor.ID,
		UserName:    actor.Name,
		EntityType:  models.EntityBrand,
		EntityID:    snap.Brand.ID,
		Action:      models.AuditActionDelete,
		Description: fmt.Sprintf("Deleted brand %s and %d product(s)", snap.Brand.Name, len(snap.Products)),
		Before:      snap,
	})
}
