package auth

import (
	"errors"
	"strings"

	"catalog-backend/internal/config"
	"catalog-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserRoleKey = "user_role"
	CtxUserNameKey = "user_name"
)

// Actor is the authenticated user behind a request.
type Actor struct {
	ID   uint
	Name string
	Role models.UserRole
}

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header is missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxUserNameKey, claims.Name)

		return c.Next()
	}
}

// RequireUser runs after JWTMiddleware. It rejects tokens whose user has been
// deleted and replaces the role and name from the token with the stored ones.
func RequireUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := c.Locals(CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "User information is missing")
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "This account no longer exists")
			}
			return err
		}

		c.Locals(CtxUserRoleKey, user.Role)
		c.Locals(CtxUserNameKey, user.Name)
		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Role information is missing")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "You are not allowed to perform this action")
	}
}

// CurrentActor reads the user stored by JWTMiddleware.
func CurrentActor(c *fiber.Ctx) (Actor, error) {
	id, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok {
		return Actor{}, fiber.NewError(fiber.StatusForbidden, "User information is missing")
	}
	role, _ := c.Locals(CtxUserRoleKey).(models.UserRole)
	name, _ := c.Locals(CtxUserNameKey).(string)
	return Actor{ID: id, Name: name, Role: role}, nil
}
