package admin

import (
	"errors"
	"strings"

	"catalog-backend/internal/auth"
	"catalog-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

type UserListItem struct {
	auth.UserResponse
	CreatedAt string `json:"created_at"`
}

// POST /api/admin/users
func CreateUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Email = auth.NormalizeEmail(body.Email)
		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name, a valid email and password are required")
		}
		if body.Role == "" {
			body.Role = models.RoleEditor
		}
		if !body.Role.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Role must be admin, editor or viewer")
		}

		var n int64
		if err := db.WithContext(c.UserContext()).Model(&models.User{}).Where("email = ?", body.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fiber.NewError(fiber.StatusConflict, "This email is already registered")
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			return err
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: hash,
			Role:         body.Role,
		}
		if err := db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
		}

		return c.Status(fiber.StatusCreated).JSON(auth.NewUserResponse(&user))
	}
}

// GET /api/admin/users
func ListUsersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := db.WithContext(c.UserContext()).Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list users")
		}

		res := make([]UserListItem, 0, len(users))
		for i := range users {
			res = append(res, UserListItem{
				UserResponse: auth.NewUserResponse(&users[i]),
				CreatedAt:    users[i].CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}

// DELETE /api/admin/users/:id
func DeleteUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}
		if uint(id) == actor.ID {
			return fiber.NewError(fiber.StatusForbidden, "You cannot delete your own account")
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "User not found")
			}
			return err
		}
		if err := db.WithContext(c.UserContext()).Delete(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete user")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
