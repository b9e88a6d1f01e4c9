package audit

import (
	"errors"
	"time"

	"catalog-backend/internal/auth"
	"catalog-backend/internal/catalog"
	"catalog-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const timeLayout = "2006-01-02 15:04:05"

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	IsUndone    bool               `json:"is_undone"`
	UndoneBy    *uint              `json:"undone_by"`
	UndoneAt    *string            `json:"undone_at"`
}

func toResponse(l models.AuditLog) AuditLogResponse {
	var undoneAt *string
	if l.UndoneAt != nil {
		formatted := l.UndoneAt.Format(timeLayout)
		undoneAt = &formatted
	}
	return AuditLogResponse{
		ID:          l.ID,
		CreatedAt:   l.CreatedAt.Format(timeLayout),
		UserID:      l.UserID,
		UserName:    l.UserName,
		EntityType:  l.EntityType,
		EntityID:    l.EntityID,
		Action:      l.Action,
		Description: l.Description,
		IsUndone:    l.IsUndone,
		UndoneBy:    l.UndoneBy,
		UndoneAt:    undoneAt,
	}
}

// GET /api/audit-logs?entity_type=product&entity_id=1&user_id=2
func ListAuditLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := ListFilters{
			EntityType: c.Query("entity_type"),
			Limit:      c.QueryInt("limit", 200),
		}
		if id := c.QueryInt("entity_id"); id > 0 {
			f.EntityID = uint(id)
		}
		if id := c.QueryInt("user_id"); id > 0 {
			f.UserID = uint(id)
		}
		if f.Limit < 1 || f.Limit > 1000 {
			f.Limit = 200
		}

		logs, err := svc.List(c.UserContext(), f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list audit logs")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, toResponse(l))
		}
		return c.JSON(resp)
	}
}

// POST /api/audit-logs/:id/undo
func UndoAuditLogHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logID, err := c.ParamsInt("id")
		if err != nil || logID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid log id")
		}

		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		err = svc.Undo(c.UserContext(), uint(logID), actor.ID, actor.Name)
		switch {
		case err == nil:
		case errors.Is(err, ErrLogNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Log not found")
		case errors.Is(err, ErrAlreadyUndone), errors.Is(err, ErrNotUndoable):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case stale(err):
			return fiber.NewError(fiber.StatusConflict, "Could not undo: "+err.Error())
		default:
			return err
		}

		return c.JSON(fiber.Map{
			"message":   "Change undone",
			"undone_at": time.Now().Format(timeLayout),
		})
	}
}

// stale reports whether the record changed since the log was written.
func stale(err error) bool {
	var ve *catalog.ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, catalog.ErrBrandNotFound) ||
		errors.Is(err, catalog.ErrBrandHasProducts) ||
		errors.Is(err, catalog.ErrProductNotFound)
}
