package server

import (
	"errors"
	"log"
	"strings"

	"catalog-backend/internal/admin"
	"catalog-backend/internal/audit"
	"catalog-backend/internal/auth"
	"catalog-backend/internal/catalog"
	"catalog-backend/internal/config"
	"catalog-backend/internal/dashboard"
	"catalog-backend/internal/inventory"
	"catalog-backend/internal/models"
	"catalog-backend/internal/resource"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxUploadSize bounds request bodies, xlsx imports included.
const maxUploadSize = 10 << 20

// ErrorHandler renders every error as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var e *fiber.Error
	if errors.As(err, &e) {
		return c.Status(e.Code).JSON(fiber.Map{
			"error": e.Message,
		})
	}
	log.Printf("[%v] unexpected error: %v", c.Locals(requestid.ConfigDefault.ContextKey), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Unexpected server error",
	})
}

// New builds the HTTP application with every route registered.
func New(cfg *config.Config, db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		BodyLimit:    maxUploadSize,
		AppName:      "catalog-backend",
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	brands := catalog.NewBrandRepository(db)
	products := catalog.NewProductRepository(db)
	auditSvc := audit.NewService(db, brands, products)

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(db))
	api.Post("/auth/login", auth.LoginHandler(cfg, db))

	// Every authenticated role
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg), auth.RequireUser(db))

	protected.Get("/auth/me", auth.MeHandler(db))

	protected.Get("/resources", resource.ListHandler())
	protected.Get("/resources/:name", resource.GetHandler())

	protected.Get("/brands", inventory.ListBrandsHandler(brands))
	protected.Get("/brands/:id", inventory.GetBrandHandler(brands))
	protected.Get("/products", inventory.ListProductsHandler(products))
	protected.Get("/products/:id", inventory.GetProductHandler(products))

	protected.Get("/dashboard/stats", dashboard.StatsHandler(db))

	// Catalog writes
	writers := auth.RequireRole(models.RoleAdmin, models.RoleEditor)

	adminRoutes := protected.Group("/admin", writers)

	adminRoutes.Post("/brands", inventory.CreateBrandHandler(brands, auditSvc))
	adminRoutes.Post("/brands/bulk-delete", inventory.BulkDeleteBrandsHandler(brands, auditSvc))
	adminRoutes.Put("/brands/:id", inventory.UpdateBrandHandler(brands, auditSvc))
	adminRoutes.Delete("/brands/:id", inventory.DeleteBrandHandler(brands, auditSvc))

	adminRoutes.Get("/products/export", inventory.ExportProductsHandler(products, brands))
	adminRoutes.Post("/products/import", inventory.ImportProductsHandler(products, brands, auditSvc))
	adminRoutes.Post("/products", inventory.CreateProductHandler(products, auditSvc))
	adminRoutes.Post("/products/bulk-delete", inventory.BulkDeleteProductsHandler(products, auditSvc))
	adminRoutes.Put("/products/:id", inventory.UpdateProductHandler(products, auditSvc))
	adminRoutes.Delete("/products/:id", inventory.DeleteProductHandler(products, auditSvc))

	// User management
	users := adminRoutes.Group("/users", auth.RequireRole(models.RoleAdmin))
	users.Post("", admin.CreateUserHandler(db))
	users.Get("", admin.ListUsersHandler(db))
	users.Delete("/:id", admin.DeleteUserHandler(db))

	// Audit logs
	protected.Get("/audit-logs", writers, audit.ListAuditLogsHandler(auditSvc))
	protected.Post("/audit-logs/:id/undo", writers, audit.UndoAuditLogHandler(auditSvc))

	return app
}
