package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"catalog-backend/internal/catalog"
	"catalog-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrLogNotFound   = errors.New("audit log not found")
	ErrAlreadyUndone = errors.New("this change has already been undone")
	ErrNotUndoable   = errors.New("this change cannot be undone")
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

type Service struct {
	db       *gorm.DB
	brands   *catalog.BrandRepository
	products *catalog.ProductRepository
}

func NewService(db *gorm.DB, brands *catalog.BrandRepository, products *catalog.ProductRepository) *Service {
	return &Service{db: db, brands: brands, products: products}
}

func (s *Service) WriteLog(ctx context.Context, opts LogOptions) error {
	return s.insert(ctx, newEntry(opts))
}

func (s *Service) insert(ctx context.Context, entry models.AuditLog) error {
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

func newEntry(opts LogOptions) models.AuditLog {
	return models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: clip(opts.Description, descriptionMax),
		BeforeData:  encode(opts.Before),
		AfterData:   encode(opts.After),
	}
}

// Record writes a log entry and only reports a failure, so the change it
// describes is never rolled back because of the audit trail.
func (s *Service) Record(ctx context.Context, opts LogOptions) {
	if err := s.WriteLog(ctx, opts); err != nil {
		log.Printf("[audit] %s %s #%d: %v", opts.Action, opts.EntityType, opts.EntityID, err)
	}
}

const descriptionMax = 255

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// jsonb columns need the literal null rather than an empty string.
func encode(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

type ListFilters struct {
	EntityType string
	EntityID   uint
	UserID     uint
	Limit      int
}

func (s *Service) List(ctx context.Context, f ListFilters) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var logs []models.AuditLog
	if err := q.Order("created_at DESC").Order("id DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Undo reverts the change recorded by logID and records the reversal.
func (s *Service) Undo(ctx context.Context, logID, userID uint, userName string) error {
	var entry models.AuditLog
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", logID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLogNotFound
		}
		return err
	}
	if entry.IsUndone {
		return ErrAlreadyUndone
	}
	if entry.Action == models.AuditActionUndo {
		return ErrNotUndoable
	}

	// Claim the entry first so two concurrent undos cannot both apply.
	now := time.Now()
	res := s.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Where("id = ? AND is_undone = ?", logID, false).
		Updates(map[string]any{"is_undone": true, "undone_by": userID, "undone_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyUndone
	}

	if err := s.revert(ctx, entry); err != nil {
		release := s.db.WithContext(ctx).
			Model(&models.AuditLog{}).
			Where("id = ?", logID).
			Updates(map[string]any{"is_undone": false, "undone_by": nil, "undone_at": nil})
		if release.Error != nil {
			log.Printf("[audit] could not release log #%d after failed undo: %v", logID, release.Error)
		}
		return err
	}

	undo := newEntry(LogOptions{
		UserID:      userID,
		UserName:    userName,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Undone: %s", entry.Description),
	})
	undo.BeforeData = entry.AfterData
	undo.AfterData = entry.BeforeData
	undo.Undone = true
	return s.insert(ctx, undo)
}

func (s *Service) revert(ctx context.Context, entry models.AuditLog) error {
	switch entry.Action {
	case models.AuditActionCreate:
		return s.deleteEntity(ctx, entry.EntityType, entry.EntityID)
	case models.AuditActionUpdate:
		return s.restoreEntity(ctx, entry.EntityType, entry.EntityID, entry.BeforeData)
	case models.AuditActionDelete:
		return s.recreateEntity(ctx, entry.EntityType, entry.BeforeData)
	}
	return ErrNotUndoable
}

func (s *Service) deleteEntity(ctx context.Context, entityType string, id uint) error {
	var err error
	switch entityType {
	case models.EntityBrand:
		// products added under the brand since would go with it
		_, err = s.brands.DeleteEmpty(ctx, id)
	case models.EntityProduct:
		_, err = s.products.Delete(ctx, id)
	default:
		return fmt.Errorf("%w: unknown entity type %q", ErrNotUndoable, entityType)
	}
	return err
}

func (s *Service) restoreEntity(ctx context.Context, entityType string, id uint, data string) error {
	switch entityType {
	case models.EntityBrand:
		var b models.Brand
		if err := json.Unmarshal([]byte(data), &b); err != nil {
			return fmt.Errorf("decode brand snapshot: %w", err)
		}
		_, _, err := s.brands.Update(ctx, id, catalog.BrandInput{Name: b.Name})
		return err

	case models.EntityProduct:
		var p models.Product
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return fmt.Errorf("decode product snapshot: %w", err)
		}
		_, _, err := s.products.Update(ctx, id, catalog.InputFromProduct(&p))
		return err
	}
	return fmt.Errorf("%w: unknown entity type %q", ErrNotUndoable, entityType)
}

func (s *Service) recreateEntity(ctx context.Context, entityType string, data string) error {
	switch entityType {
	case models.EntityBrand:
		var snap catalog.BrandSnapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			return fmt.Errorf("decode brand snapshot: %w", err)
		}
		return s.brands.Restore(ctx, snap)

	case models.EntityProduct:
		var p models.Product
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return fmt.Errorf("decode product snapshot: %w", err)
		}
		_, err := s.products.Restore(ctx, p)
		return err
	}
	return fmt.Errorf("%w: unknown entity type %q", ErrNotUndoable, entityType)
}
