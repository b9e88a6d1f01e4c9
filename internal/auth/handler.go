package auth

import (
	"errors"
	"net/mail"
	"strings"

	"catalog-backend/internal/config"
	"catalog-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type RegisterAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// NormalizeEmail lower-cases and trims an address, returning "" when invalid.
func NormalizeEmail(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return ""
	}
	return s
}

// HashPassword enforces the minimum length and returns a bcrypt hash.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", fiber.NewError(fiber.StatusUnprocessableEntity, "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// POST /api/auth/register-admin creates the first admin. Refused once one exists.
func RegisterAdminHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Email = NormalizeEmail(body.Email)
		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name, a valid email and password are required")
		}

		hash, err := HashPassword(body.Password)
		if err != nil {
			return err
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
		}

		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fiber.NewError(fiber.StatusForbidden, "An admin already exists")
			}
			return tx.Create(&user).Error
		})
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(NewUserResponse(&user))
	}
}

func LoginHandler(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		email := strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := db.WithContext(c.UserContext()).Where("email = ?", email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
			}
			return err
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}

		token, err := GenerateToken(cfg.JWTSecret, cfg.TokenTTL, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create token")
		}

		return c.JSON(fiber.Map{
			"token":      token,
			"expires_in": int(cfg.TokenTTL.Seconds()),
			"user":       NewUserResponse(&user),
		})
	}
}

// GET /api/auth/me
func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := CurrentActor(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, actor.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "User no longer exists")
			}
			return err
		}
		return c.JSON(NewUserResponse(&user))
	}
}
